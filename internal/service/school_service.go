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

type schoolRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.School, int, error)
	FindByID(ctx context.Context, id string) (*models.School, error)
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, school *models.School) error
	Delete(ctx context.Context, id string) error
	ReferenceCount(ctx context.Context, id string) (int, error)
}

// SchoolRequest is the payload for creating or updating escuelas.
type SchoolRequest struct {
	Nombre    string  `json:"nombre" validate:"required"`
	Direccion *string `json:"direccion" validate:"omitempty,max=500"`
	Telefono  *string `json:"telefono" validate:"omitempty,max=50"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Nivel     *string `json:"nivel" validate:"omitempty,max=100"`
}

// SchoolService orchestrates escuela operations.
type SchoolService struct {
	repo      schoolRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolService constructs a SchoolService.
func NewSchoolService(repo schoolRepository, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, validator: validate, logger: logger}
}

// List returns one page of escuelas plus pagination metadata.
func (s *SchoolService) List(ctx context.Context, filter models.ListFilter) ([]models.School, *models.Pagination, error) {
	schools, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list escuelas")
	}
	return schools, models.NewPagination(filter, total), nil
}

// Get returns an escuela by id.
func (s *SchoolService) Get(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "escuela not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load escuela")
	}
	return school, nil
}

// Create registers a new escuela.
func (s *SchoolService) Create(ctx context.Context, req SchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid escuela payload")
	}

	school := &models.School{
		Nombre:    strings.TrimSpace(req.Nombre),
		Direccion: normalizeOptional(req.Direccion),
		Telefono:  normalizeOptional(req.Telefono),
		Email:     normalizeOptional(req.Email),
		Nivel:     normalizeOptional(req.Nivel),
	}

	if err := s.repo.Create(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create escuela")
	}
	return school, nil
}

// Update modifies an existing escuela.
func (s *SchoolService) Update(ctx context.Context, id string, req SchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid escuela payload")
	}

	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	school.Nombre = strings.TrimSpace(req.Nombre)
	school.Direccion = normalizeOptional(req.Direccion)
	school.Telefono = normalizeOptional(req.Telefono)
	school.Email = normalizeOptional(req.Email)
	school.Nivel = normalizeOptional(req.Nivel)

	if err := s.repo.Update(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update escuela")
	}
	return school, nil
}

// Delete removes an escuela, blocked while references remain.
func (s *SchoolService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	refs, err := s.repo.ReferenceCount(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check escuela references")
	}
	if refs > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "escuela is referenced by disposiciones or expedientes")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete escuela")
	}
	return nil
}
