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

type caseFileRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.CaseFile, int, error)
	FindByID(ctx context.Context, id string) (*models.CaseFile, error)
	Relations(ctx context.Context, caseFileIDs []string) (map[string][]string, map[string][]string, error)
	Create(ctx context.Context, caseFile *models.CaseFile, teacherIDs, schoolIDs []string) error
	Update(ctx context.Context, caseFile *models.CaseFile, teacherIDs, schoolIDs []string) error
	Delete(ctx context.Context, id string) error
	AssociateTeachers(ctx context.Context, caseFileID string, teacherIDs []string) error
	AssociateSchools(ctx context.Context, caseFileID string, schoolIDs []string) error
	DisassociateTeacher(ctx context.Context, caseFileID, teacherID string) error
	DisassociateSchool(ctx context.Context, caseFileID, schoolID string) error
}

type teacherRefLookup interface {
	FindRefs(ctx context.Context, ids []string) ([]models.TeacherRef, error)
}

type schoolRefLookup interface {
	FindRefs(ctx context.Context, ids []string) ([]models.SchoolRef, error)
}

// CaseFileRequest is the payload for creating or updating expedientes. The
// Docentes/Escuelas id lists always describe the COMPLETE desired relation
// set; update replaces, it does not merge.
type CaseFileRequest struct {
	Numero        string   `json:"numero" validate:"required"`
	Asunto        string   `json:"asunto" validate:"required"`
	FechaRecibido string   `json:"fecha_recibido" validate:"required"`
	Notificacion  *string  `json:"notificacion"`
	Resolucion    *string  `json:"resolucion"`
	Pase          *string  `json:"pase"`
	Observaciones *string  `json:"observaciones"`
	Estado        *string  `json:"estado" validate:"omitempty,max=50"`
	Docentes      []string `json:"docentes"`
	Escuelas      []string `json:"escuelas"`
}

// CaseFileService orchestrates expediente operations including relation
// management and reference enrichment.
type CaseFileService struct {
	repo      caseFileRepository
	teachers  teacherRefLookup
	schools   schoolRefLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCaseFileService constructs a CaseFileService.
func NewCaseFileService(repo caseFileRepository, teachers teacherRefLookup, schools schoolRefLookup, validate *validator.Validate, logger *zap.Logger) *CaseFileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaseFileService{repo: repo, teachers: teachers, schools: schools, validator: validate, logger: logger}
}

// List returns one enriched page of expedientes plus pagination metadata.
func (s *CaseFileService) List(ctx context.Context, filter models.ListFilter) ([]models.CaseFile, *models.Pagination, error) {
	caseFiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expedientes")
	}
	if err := s.enrich(ctx, caseFiles); err != nil {
		return nil, nil, err
	}
	return caseFiles, models.NewPagination(filter, total), nil
}

// Get returns an enriched expediente by id.
func (s *CaseFileService) Get(ctx context.Context, id string) (*models.CaseFile, error) {
	caseFile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expediente not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expediente")
	}
	page := []models.CaseFile{*caseFile}
	if err := s.enrich(ctx, page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

// Create registers a new expediente with its initial relation sets.
func (s *CaseFileService) Create(ctx context.Context, req CaseFileRequest) (*models.CaseFile, error) {
	caseFile, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	caseFile.Estado = models.CaseFileStatePending
	if req.Estado != nil && strings.TrimSpace(*req.Estado) != "" {
		caseFile.Estado = strings.TrimSpace(*req.Estado)
	}

	if err := s.repo.Create(ctx, caseFile, distinctStrings(req.Docentes), distinctStrings(req.Escuelas)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create expediente")
	}
	return s.Get(ctx, caseFile.ID)
}

// Update rewrites an expediente and fully replaces both relation sets with the
// ids in the request.
func (s *CaseFileService) Update(ctx context.Context, id string, req CaseFileRequest) (*models.CaseFile, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expediente not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expediente")
	}

	updated, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.Estado = existing.Estado
	if req.Estado != nil && strings.TrimSpace(*req.Estado) != "" {
		updated.Estado = strings.TrimSpace(*req.Estado)
	}

	if err := s.repo.Update(ctx, updated, distinctStrings(req.Docentes), distinctStrings(req.Escuelas)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update expediente")
	}
	return s.Get(ctx, id)
}

// Delete removes an expediente and its join rows.
func (s *CaseFileService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "expediente not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expediente")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete expediente")
	}
	return nil
}

// AssociateTeachers links additional docentes to an expediente.
func (s *CaseFileService) AssociateTeachers(ctx context.Context, id string, teacherIDs []string) error {
	ids := distinctStrings(teacherIDs)
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.AssociateTeachers(ctx, id, ids); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to associate docentes")
	}
	return nil
}

// AssociateSchools links additional escuelas to an expediente.
func (s *CaseFileService) AssociateSchools(ctx context.Context, id string, schoolIDs []string) error {
	ids := distinctStrings(schoolIDs)
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.AssociateSchools(ctx, id, ids); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to associate escuelas")
	}
	return nil
}

// DisassociateTeacher unlinks a single docente from an expediente.
func (s *CaseFileService) DisassociateTeacher(ctx context.Context, id, teacherID string) error {
	if err := s.repo.DisassociateTeacher(ctx, id, teacherID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to disassociate docente")
	}
	return nil
}

// DisassociateSchool unlinks a single escuela from an expediente.
func (s *CaseFileService) DisassociateSchool(ctx context.Context, id, schoolID string) error {
	if err := s.repo.DisassociateSchool(ctx, id, schoolID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to disassociate escuela")
	}
	return nil
}

// enrich fills the Docentes/Escuelas slices for a page of expedientes: one
// query per join table, then one lookup per foreign table, regardless of page
// size. Dangling relation ids are skipped silently.
func (s *CaseFileService) enrich(ctx context.Context, caseFiles []models.CaseFile) error {
	if len(caseFiles) == 0 {
		return nil
	}

	ids := make([]string, 0, len(caseFiles))
	for i := range caseFiles {
		ids = append(ids, caseFiles[i].ID)
	}

	teacherRel, schoolRel, err := s.repo.Relations(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expediente relations")
	}

	var allTeacherIDs, allSchoolIDs []string
	for _, tIDs := range teacherRel {
		allTeacherIDs = append(allTeacherIDs, tIDs...)
	}
	for _, sIDs := range schoolRel {
		allSchoolIDs = append(allSchoolIDs, sIDs...)
	}

	teacherByID := map[string]models.TeacherRef{}
	if ids := distinctStrings(allTeacherIDs); len(ids) > 0 {
		refs, err := s.teachers.FindRefs(ctx, ids)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve docentes")
		}
		for _, ref := range refs {
			teacherByID[ref.ID] = ref
		}
	}

	schoolByID := map[string]models.SchoolRef{}
	if ids := distinctStrings(allSchoolIDs); len(ids) > 0 {
		refs, err := s.schools.FindRefs(ctx, ids)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve escuelas")
		}
		for _, ref := range refs {
			schoolByID[ref.ID] = ref
		}
	}

	for i := range caseFiles {
		caseFiles[i].Docentes = make([]models.TeacherRef, 0)
		caseFiles[i].Escuelas = make([]models.SchoolRef, 0)
		for _, tID := range teacherRel[caseFiles[i].ID] {
			if ref, ok := teacherByID[tID]; ok {
				caseFiles[i].Docentes = append(caseFiles[i].Docentes, ref)
			}
		}
		for _, sID := range schoolRel[caseFiles[i].ID] {
			if ref, ok := schoolByID[sID]; ok {
				caseFiles[i].Escuelas = append(caseFiles[i].Escuelas, ref)
			}
		}
	}

	return nil
}

func (s *CaseFileService) fromRequest(req CaseFileRequest) (*models.CaseFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expediente payload")
	}

	fecha, err := parseDate(req.FechaRecibido)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid fecha_recibido: expected YYYY-MM-DD")
	}

	return &models.CaseFile{
		Numero:        strings.TrimSpace(req.Numero),
		Asunto:        strings.TrimSpace(req.Asunto),
		FechaRecibido: fecha,
		Notificacion:  normalizeOptional(req.Notificacion),
		Resolucion:    normalizeOptional(req.Resolucion),
		Pase:          normalizeOptional(req.Pase),
		Observaciones: normalizeOptional(req.Observaciones),
	}, nil
}
