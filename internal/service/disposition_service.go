package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jp3/expedientes-api/internal/models"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
)

type dispositionRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Disposition, int, error)
	FindByID(ctx context.Context, id string) (*models.Disposition, error)
	ListByCaseFile(ctx context.Context, caseFileID string) ([]models.Disposition, error)
	Create(ctx context.Context, disposition *models.Disposition) error
	Update(ctx context.Context, disposition *models.Disposition) error
	Delete(ctx context.Context, id string) error
}

// displayLookup is the enrichment contract: one batched id→display query for
// exactly the requested ids.
type displayLookup interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// DispositionRequest is the payload for creating or updating disposiciones.
// The legacy array-vs-single compatibility shim happens at the handler edge;
// by the time a request reaches this service each reference is singular.
type DispositionRequest struct {
	Numero       string  `json:"numero" validate:"required"`
	Fecha        string  `json:"fecha" validate:"required"`
	Dispo        string  `json:"dispo" validate:"required"`
	DocenteID    *string `json:"docente_id"`
	EscuelaID    *string `json:"escuela_id"`
	ExpedienteID *string `json:"expediente_id"`
	Cargo        *string `json:"cargo" validate:"omitempty,max=200"`
	Motivo       *string `json:"motivo" validate:"omitempty,max=500"`
	Enlace       *string `json:"enlace" validate:"omitempty,max=1000"`
}

// DispositionService orchestrates disposición operations including display
// enrichment of the docente/escuela references.
type DispositionService struct {
	repo      dispositionRepository
	teachers  displayLookup
	schools   displayLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDispositionService constructs a DispositionService.
func NewDispositionService(repo dispositionRepository, teachers, schools displayLookup, validate *validator.Validate, logger *zap.Logger) *DispositionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispositionService{repo: repo, teachers: teachers, schools: schools, validator: validate, logger: logger}
}

// List returns one enriched page of disposiciones plus pagination metadata.
func (s *DispositionService) List(ctx context.Context, filter models.ListFilter) ([]models.Disposition, *models.Pagination, error) {
	dispositions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list disposiciones")
	}
	if err := s.enrich(ctx, dispositions); err != nil {
		return nil, nil, err
	}
	return dispositions, models.NewPagination(filter, total), nil
}

// Get returns an enriched disposición by id.
func (s *DispositionService) Get(ctx context.Context, id string) (*models.Disposition, error) {
	disposition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "disposición not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load disposición")
	}
	page := []models.Disposition{*disposition}
	if err := s.enrich(ctx, page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

// ListByCaseFile returns the enriched disposiciones attached to an expediente.
func (s *DispositionService) ListByCaseFile(ctx context.Context, caseFileID string) ([]models.Disposition, error) {
	dispositions, err := s.repo.ListByCaseFile(ctx, caseFileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list disposiciones for expediente")
	}
	if err := s.enrich(ctx, dispositions); err != nil {
		return nil, err
	}
	return dispositions, nil
}

// Create registers a new disposición.
func (s *DispositionService) Create(ctx context.Context, req DispositionRequest) (*models.Disposition, error) {
	disposition, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, disposition); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create disposición")
	}
	return s.Get(ctx, disposition.ID)
}

// Update modifies an existing disposición.
func (s *DispositionService) Update(ctx context.Context, id string, req DispositionRequest) (*models.Disposition, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "disposición not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load disposición")
	}

	updated, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update disposición")
	}
	return s.Get(ctx, id)
}

// Delete removes a disposición unconditionally.
func (s *DispositionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "disposición not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load disposición")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete disposición")
	}
	return nil
}

// enrich attaches docente_nombre / escuela_nombre to every row, issuing at
// most one lookup per foreign table for the whole page. A dangling reference
// leaves the derived field nil.
func (s *DispositionService) enrich(ctx context.Context, dispositions []models.Disposition) error {
	if len(dispositions) == 0 {
		return nil
	}

	docenteRefs := make([]*string, 0, len(dispositions))
	escuelaRefs := make([]*string, 0, len(dispositions))
	for i := range dispositions {
		docenteRefs = append(docenteRefs, dispositions[i].DocenteID)
		escuelaRefs = append(escuelaRefs, dispositions[i].EscuelaID)
	}

	teacherNames := map[string]string{}
	if ids := distinct(docenteRefs); len(ids) > 0 {
		names, err := s.teachers.DisplayNames(ctx, ids)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve docente names")
		}
		teacherNames = names
	}

	schoolNames := map[string]string{}
	if ids := distinct(escuelaRefs); len(ids) > 0 {
		names, err := s.schools.DisplayNames(ctx, ids)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve escuela names")
		}
		schoolNames = names
	}

	for i := range dispositions {
		dispositions[i].DocenteNombre = nil
		dispositions[i].EscuelaNombre = nil
		if id := dispositions[i].DocenteID; id != nil {
			if name, ok := teacherNames[*id]; ok {
				dispositions[i].DocenteNombre = &name
			}
		}
		if id := dispositions[i].EscuelaID; id != nil {
			if name, ok := schoolNames[*id]; ok {
				dispositions[i].EscuelaNombre = &name
			}
		}
	}

	return nil
}

func (s *DispositionService) fromRequest(req DispositionRequest) (*models.Disposition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid disposición payload")
	}

	fecha, err := parseDate(req.Fecha)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid fecha: expected YYYY-MM-DD")
	}

	return &models.Disposition{
		Numero:       strings.TrimSpace(req.Numero),
		FechaDispo:   fecha,
		Dispo:        strings.TrimSpace(req.Dispo),
		DocenteID:    normalizeOptional(req.DocenteID),
		EscuelaID:    normalizeOptional(req.EscuelaID),
		ExpedienteID: normalizeOptional(req.ExpedienteID),
		Cargo:        normalizeOptional(req.Cargo),
		Motivo:       normalizeOptional(req.Motivo),
		Enlace:       normalizeOptional(req.Enlace),
	}, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
