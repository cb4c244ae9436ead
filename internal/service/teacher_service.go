package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jp3/expedientes-api/internal/models"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
	ReferenceCount(ctx context.Context, id string) (int, error)
}

// TeacherRequest is the payload for creating or updating docentes.
type TeacherRequest struct {
	Nombre   string  `json:"nombre" validate:"required"`
	Apellido string  `json:"apellido" validate:"required"`
	DNI      string  `json:"dni" validate:"required,max=20"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Telefono *string `json:"telefono" validate:"omitempty,max=50"`
}

// TeacherService orchestrates docente operations.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns one page of docentes plus pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.ListFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list docentes")
	}
	return teachers, models.NewPagination(filter, total), nil
}

// Get returns a docente by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "docente not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load docente")
	}
	return teacher, nil
}

// Create registers a new docente.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid docente payload")
	}

	teacher := &models.Teacher{
		Nombre:   strings.TrimSpace(req.Nombre),
		Apellido: strings.TrimSpace(req.Apellido),
		DNI:      strings.TrimSpace(req.DNI),
		Email:    normalizeOptional(req.Email),
		Telefono: normalizeOptional(req.Telefono),
	}

	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create docente")
	}
	return teacher, nil
}

// Update modifies an existing docente.
func (s *TeacherService) Update(ctx context.Context, id string, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid docente payload")
	}

	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	teacher.Nombre = strings.TrimSpace(req.Nombre)
	teacher.Apellido = strings.TrimSpace(req.Apellido)
	teacher.DNI = strings.TrimSpace(req.DNI)
	teacher.Email = normalizeOptional(req.Email)
	teacher.Telefono = normalizeOptional(req.Telefono)

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update docente")
	}
	return teacher, nil
}

// Delete removes a docente. Deletion is blocked while disposiciones or
// expedientes still reference the record.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	refs, err := s.repo.ReferenceCount(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check docente references")
	}
	if refs > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "docente is referenced by disposiciones or expedientes")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete docente")
	}
	return nil
}
