package migration

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jp3/expedientes-api/internal/models"
)

type legacyReader interface {
	Teachers(ctx context.Context) ([]LegacyTeacher, error)
	Schools(ctx context.Context) ([]LegacySchool, error)
	CaseFiles(ctx context.Context) ([]LegacyCaseFile, error)
	Dispositions(ctx context.Context) ([]LegacyDisposition, error)
}

type teacherSink interface {
	UpsertBatch(ctx context.Context, teachers []models.Teacher) error
}

type schoolSink interface {
	UpsertBatch(ctx context.Context, schools []models.School) error
}

type caseFileSink interface {
	UpsertBatch(ctx context.Context, caseFiles []models.CaseFile) error
	AssociateTeachers(ctx context.Context, caseFileID string, teacherIDs []string) error
	AssociateSchools(ctx context.Context, caseFileID string, schoolIDs []string) error
}

type dispositionSink interface {
	UpsertBatch(ctx context.Context, dispositions []models.Disposition) error
}

// Options control batch sizes and where the id-map files live.
type Options struct {
	MappingDir    string
	BatchSize     int
	CaseFileBatch int
}

// Report summarizes one entity migration: how many legacy rows were read,
// written, and skipped due to failed batches.
type Report struct {
	Entity  string
	Read    int
	Written int
	Skipped int
}

// Migrator copies the legacy tables into the target repositories in
// dependency order. Failed batches are logged and skipped so one bad row
// cannot abort the whole run.
type Migrator struct {
	source       legacyReader
	teachers     teacherSink
	schools      schoolSink
	caseFiles    caseFileSink
	dispositions dispositionSink
	logger       *zap.Logger
	opts         Options
}

// NewMigrator constructs a Migrator.
func NewMigrator(source legacyReader, teachers teacherSink, schools schoolSink, caseFiles caseFileSink, dispositions dispositionSink, logger *zap.Logger, opts Options) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.CaseFileBatch <= 0 {
		opts.CaseFileBatch = 20
	}
	return &Migrator{
		source:       source,
		teachers:     teachers,
		schools:      schools,
		caseFiles:    caseFiles,
		dispositions: dispositions,
		logger:       logger,
		opts:         opts,
	}
}

// Run migrates every entity in dependency order: docentes and escuelas first,
// then expedientes and disposiciones which reference them. The id maps are
// loaded from the mapping directory and threaded through explicitly, so each
// step's inputs are visible in its signature.
func (m *Migrator) Run(ctx context.Context) ([]Report, error) {
	teacherMap, err := LoadIDMap(filepath.Join(m.opts.MappingDir, "docentes_id_mapping.json"))
	if err != nil {
		return nil, err
	}
	schoolMap, err := LoadIDMap(filepath.Join(m.opts.MappingDir, "escuelas_id_mapping.json"))
	if err != nil {
		return nil, err
	}
	caseFileMap, err := LoadIDMap(filepath.Join(m.opts.MappingDir, "expedientes_id_mapping.json"))
	if err != nil {
		return nil, err
	}
	dispositionMap, err := LoadIDMap(filepath.Join(m.opts.MappingDir, "disposiciones_id_mapping.json"))
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, 4)

	report, err := m.MigrateTeachers(ctx, teacherMap)
	if err != nil {
		return reports, err
	}
	reports = append(reports, report)

	report, err = m.MigrateSchools(ctx, schoolMap)
	if err != nil {
		return reports, err
	}
	reports = append(reports, report)

	report, err = m.MigrateCaseFiles(ctx, caseFileMap, teacherMap, schoolMap)
	if err != nil {
		return reports, err
	}
	reports = append(reports, report)

	report, err = m.MigrateDispositions(ctx, dispositionMap, teacherMap, schoolMap, caseFileMap)
	if err != nil {
		return reports, err
	}
	reports = append(reports, report)

	return reports, nil
}

// MigrateTeachers copies the docentes table.
func (m *Migrator) MigrateTeachers(ctx context.Context, ids IDMap) (Report, error) {
	report := Report{Entity: "docentes"}

	rows, err := m.source.Teachers(ctx)
	if err != nil {
		return report, err
	}
	report.Read = len(rows)

	now := time.Now().UTC()
	teachers := make([]models.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, models.Teacher{
			ID:        ids.Assign(row.ID),
			Nombre:    text(row.Nombre),
			Apellido:  text(row.Apellido),
			DNI:       text(row.Documento),
			Email:     optional(row.Email),
			Telefono:  optional(row.Telefono),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	for _, batch := range chunk(teachers, m.opts.BatchSize) {
		if err := m.teachers.UpsertBatch(ctx, batch); err != nil {
			m.logger.Error("docente batch failed, skipping", zap.Int("size", len(batch)), zap.Error(err))
			report.Skipped += len(batch)
			continue
		}
		report.Written += len(batch)
	}

	m.logger.Info("docentes migrated", zap.Int("read", report.Read), zap.Int("written", report.Written), zap.Int("skipped", report.Skipped))
	return report, nil
}

// MigrateSchools copies the escuelas table. The legacy localidad column folds
// into direccion since the target schema keeps a single address field.
func (m *Migrator) MigrateSchools(ctx context.Context, ids IDMap) (Report, error) {
	report := Report{Entity: "escuelas"}

	rows, err := m.source.Schools(ctx)
	if err != nil {
		return report, err
	}
	report.Read = len(rows)

	now := time.Now().UTC()
	schools := make([]models.School, 0, len(rows))
	for _, row := range rows {
		direccion := text(row.Direccion)
		if loc := text(row.Localidad); loc != "" {
			if direccion != "" {
				direccion += ", " + loc
			} else {
				direccion = loc
			}
		}
		nombre := text(row.Nombre)
		if num := text(row.Numero); num != "" && !strings.Contains(nombre, num) {
			nombre = nombre + " N° " + num
		}
		schools = append(schools, models.School{
			ID:        ids.Assign(row.ID),
			Nombre:    nombre,
			Direccion: optionalText(direccion),
			Telefono:  optional(row.Telefono),
			Email:     optional(row.Email),
			Nivel:     optional(row.Nivel),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	for _, batch := range chunk(schools, m.opts.BatchSize) {
		if err := m.schools.UpsertBatch(ctx, batch); err != nil {
			m.logger.Error("escuela batch failed, skipping", zap.Int("size", len(batch)), zap.Error(err))
			report.Skipped += len(batch)
			continue
		}
		report.Written += len(batch)
	}

	m.logger.Info("escuelas migrated", zap.Int("read", report.Read), zap.Int("written", report.Written), zap.Int("skipped", report.Skipped))
	return report, nil
}

// MigrateCaseFiles copies the expedientes table. Legacy rows hold single
// docente_id/escuela_id columns; the target models the relation as join
// tables, so each resolved reference becomes a join row after the upsert.
func (m *Migrator) MigrateCaseFiles(ctx context.Context, ids, teacherIDs, schoolIDs IDMap) (Report, error) {
	report := Report{Entity: "expedientes"}

	rows, err := m.source.CaseFiles(ctx)
	if err != nil {
		return report, err
	}
	report.Read = len(rows)

	now := time.Now().UTC()
	type links struct {
		teachers []string
		schools  []string
	}
	caseFiles := make([]models.CaseFile, 0, len(rows))
	linksByID := make(map[string]links, len(rows))

	for _, row := range rows {
		id := ids.Assign(row.ID)

		numero := text(row.Numero)
		if anio := text(row.Anio); anio != "" {
			numero = numero + "/" + anio
		}
		estado := text(row.Estado)
		if estado == "" {
			estado = models.CaseFileStatePending
		}
		fecha := now
		if row.FechaInicio != nil {
			fecha = *row.FechaInicio
		}

		caseFiles = append(caseFiles, models.CaseFile{
			ID:            id,
			Numero:        numero,
			Asunto:        text(row.Caratula),
			FechaRecibido: fecha,
			Notificacion:  optional(row.Iniciador),
			Pase:          optional(row.Ubicacion),
			Observaciones: optional(row.Observaciones),
			Estado:        estado,
			CreatedAt:     now,
			UpdatedAt:     now,
		})

		var l links
		if row.DocenteID != nil {
			if uid, ok := teacherIDs.Resolve(*row.DocenteID); ok {
				l.teachers = append(l.teachers, uid)
			} else {
				m.logger.Warn("expediente references unknown docente", zap.Int64("legacyExpediente", row.ID), zap.Int64("legacyDocente", *row.DocenteID))
			}
		}
		if row.EscuelaID != nil {
			if uid, ok := schoolIDs.Resolve(*row.EscuelaID); ok {
				l.schools = append(l.schools, uid)
			} else {
				m.logger.Warn("expediente references unknown escuela", zap.Int64("legacyExpediente", row.ID), zap.Int64("legacyEscuela", *row.EscuelaID))
			}
		}
		linksByID[id] = l
	}

	for _, batch := range chunk(caseFiles, m.opts.CaseFileBatch) {
		if err := m.caseFiles.UpsertBatch(ctx, batch); err != nil {
			m.logger.Error("expediente batch failed, skipping", zap.Int("size", len(batch)), zap.Error(err))
			report.Skipped += len(batch)
			continue
		}
		report.Written += len(batch)

		for _, caseFile := range batch {
			l := linksByID[caseFile.ID]
			if len(l.teachers) > 0 {
				if err := m.caseFiles.AssociateTeachers(ctx, caseFile.ID, l.teachers); err != nil {
					m.logger.Error("expediente docente link failed", zap.String("expediente", caseFile.ID), zap.Error(err))
				}
			}
			if len(l.schools) > 0 {
				if err := m.caseFiles.AssociateSchools(ctx, caseFile.ID, l.schools); err != nil {
					m.logger.Error("expediente escuela link failed", zap.String("expediente", caseFile.ID), zap.Error(err))
				}
			}
		}
	}

	m.logger.Info("expedientes migrated", zap.Int("read", report.Read), zap.Int("written", report.Written), zap.Int("skipped", report.Skipped))
	return report, nil
}

// MigrateDispositions copies the disposiciones table, remapping every foreign
// key through the already-built id maps. Unresolvable references migrate as
// nil rather than dropping the row.
func (m *Migrator) MigrateDispositions(ctx context.Context, ids, teacherIDs, schoolIDs, caseFileIDs IDMap) (Report, error) {
	report := Report{Entity: "disposiciones"}

	rows, err := m.source.Dispositions(ctx)
	if err != nil {
		return report, err
	}
	report.Read = len(rows)

	now := time.Now().UTC()
	dispositions := make([]models.Disposition, 0, len(rows))
	for _, row := range rows {
		fecha := now
		if row.FechaDispo != nil {
			fecha = *row.FechaDispo
		}
		dispositions = append(dispositions, models.Disposition{
			ID:           ids.Assign(row.ID),
			Numero:       text(row.Numero),
			FechaDispo:   fecha,
			Dispo:        text(row.Dispo),
			DocenteID:    remap(teacherIDs, row.DocenteID),
			EscuelaID:    remap(schoolIDs, row.EscuelaID),
			ExpedienteID: remap(caseFileIDs, row.ExpedienteID),
			Cargo:        optional(row.Cargo),
			Motivo:       optional(row.Motivo),
			Enlace:       optional(row.Enlace),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	for _, batch := range chunk(dispositions, m.opts.BatchSize) {
		if err := m.dispositions.UpsertBatch(ctx, batch); err != nil {
			m.logger.Error("disposicion batch failed, skipping", zap.Int("size", len(batch)), zap.Error(err))
			report.Skipped += len(batch)
			continue
		}
		report.Written += len(batch)
	}

	m.logger.Info("disposiciones migrated", zap.Int("read", report.Read), zap.Int("written", report.Written), zap.Int("skipped", report.Skipped))
	return report, nil
}

// remap resolves a legacy foreign key through an id map, dropping references
// the map does not know.
func remap(ids IDMap, legacyID *int64) *string {
	if legacyID == nil {
		return nil
	}
	id, ok := ids.Resolve(*legacyID)
	if !ok {
		return nil
	}
	return &id
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		if len(items) == 0 {
			return nil
		}
		return [][]T{items}
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func optional(s *string) *string {
	trimmed := text(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
