package migration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp3/expedientes-api/internal/models"
)

type stubSource struct {
	teachers     []LegacyTeacher
	schools      []LegacySchool
	caseFiles    []LegacyCaseFile
	dispositions []LegacyDisposition
}

func (s *stubSource) Teachers(ctx context.Context) ([]LegacyTeacher, error)  { return s.teachers, nil }
func (s *stubSource) Schools(ctx context.Context) ([]LegacySchool, error)    { return s.schools, nil }
func (s *stubSource) CaseFiles(ctx context.Context) ([]LegacyCaseFile, error) {
	return s.caseFiles, nil
}
func (s *stubSource) Dispositions(ctx context.Context) ([]LegacyDisposition, error) {
	return s.dispositions, nil
}

type recordingTeacherSink struct {
	batches [][]models.Teacher
	failOn  int // 1-based batch index to fail, 0 disables
}

func (r *recordingTeacherSink) UpsertBatch(ctx context.Context, teachers []models.Teacher) error {
	if r.failOn > 0 && len(r.batches)+1 == r.failOn {
		r.batches = append(r.batches, nil)
		return errors.New("batch failed")
	}
	r.batches = append(r.batches, teachers)
	return nil
}

type recordingSchoolSink struct {
	batches [][]models.School
}

func (r *recordingSchoolSink) UpsertBatch(ctx context.Context, schools []models.School) error {
	r.batches = append(r.batches, schools)
	return nil
}

type recordingCaseFileSink struct {
	batches  [][]models.CaseFile
	teachers map[string][]string
	schools  map[string][]string
}

func (r *recordingCaseFileSink) UpsertBatch(ctx context.Context, caseFiles []models.CaseFile) error {
	r.batches = append(r.batches, caseFiles)
	return nil
}

func (r *recordingCaseFileSink) AssociateTeachers(ctx context.Context, id string, teacherIDs []string) error {
	if r.teachers == nil {
		r.teachers = make(map[string][]string)
	}
	r.teachers[id] = append(r.teachers[id], teacherIDs...)
	return nil
}

func (r *recordingCaseFileSink) AssociateSchools(ctx context.Context, id string, schoolIDs []string) error {
	if r.schools == nil {
		r.schools = make(map[string][]string)
	}
	r.schools[id] = append(r.schools[id], schoolIDs...)
	return nil
}

type recordingDispositionSink struct {
	batches [][]models.Disposition
}

func (r *recordingDispositionSink) UpsertBatch(ctx context.Context, dispositions []models.Disposition) error {
	r.batches = append(r.batches, dispositions)
	return nil
}

func s(v string) *string { return &v }
func i(v int64) *int64   { return &v }

func TestLoadIDMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docentes_id_mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1":"uuid-1","42":"uuid-42"}`), 0o644))

	m, err := LoadIDMap(path)
	require.NoError(t, err)

	id, ok := m.Resolve(42)
	assert.True(t, ok)
	assert.Equal(t, "uuid-42", id)

	_, ok = m.Resolve(99)
	assert.False(t, ok)
}

func TestLoadIDMapMissingFileIsEmpty(t *testing.T) {
	m, err := LoadIDMap(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestIDMapAssignIsStable(t *testing.T) {
	m := IDMap{1: "uuid-1"}
	assert.Equal(t, "uuid-1", m.Assign(1))

	minted := m.Assign(2)
	assert.NotEmpty(t, minted)
	assert.Equal(t, minted, m.Assign(2))
}

func TestChunk(t *testing.T) {
	items := make([]int, 12)
	batches := chunk(items, 5)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 5)
	assert.Len(t, batches[2], 2)

	assert.Nil(t, chunk([]int{}, 5))
}

func newTestMigrator(source *stubSource, teachers *recordingTeacherSink, caseFiles *recordingCaseFileSink, dispositions *recordingDispositionSink) *Migrator {
	return NewMigrator(source, teachers, &recordingSchoolSink{}, caseFiles, dispositions, nil, Options{BatchSize: 2, CaseFileBatch: 2})
}

func TestMigrateTeachersBatchesAndSkipsFailures(t *testing.T) {
	source := &stubSource{teachers: []LegacyTeacher{
		{ID: 1, Nombre: s("Ana"), Apellido: s("Gomez"), Documento: s("111")},
		{ID: 2, Nombre: s("Luis"), Apellido: s("Diaz"), Documento: s("222")},
		{ID: 3, Nombre: s("Eva"), Apellido: s("Soto"), Documento: s("333")},
	}}
	sink := &recordingTeacherSink{failOn: 1}
	m := newTestMigrator(source, sink, &recordingCaseFileSink{}, &recordingDispositionSink{})

	ids := IDMap{1: "uuid-1"}
	report, err := m.MigrateTeachers(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Read)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Written)

	// Mapped id kept, unmapped ids minted.
	require.Len(t, sink.batches, 2)
	assert.Equal(t, "uuid-1", ids[1])
	assert.NotEmpty(t, ids[2])
	assert.NotEmpty(t, ids[3])
}

func TestMigrateCaseFilesRemapsRelations(t *testing.T) {
	fecha := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	source := &stubSource{caseFiles: []LegacyCaseFile{
		{ID: 10, Numero: s("100"), Anio: s("2023"), Caratula: s("Licencia"), FechaInicio: &fecha, DocenteID: i(1), EscuelaID: i(7)},
		{ID: 11, Numero: s("101"), Caratula: s("Traslado"), DocenteID: i(99)},
	}}
	caseFiles := &recordingCaseFileSink{}
	m := newTestMigrator(source, &recordingTeacherSink{}, caseFiles, &recordingDispositionSink{})

	ids := IDMap{}
	teacherIDs := IDMap{1: "docente-uuid"}
	schoolIDs := IDMap{7: "escuela-uuid"}

	report, err := m.MigrateCaseFiles(context.Background(), ids, teacherIDs, schoolIDs)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Read)
	assert.Equal(t, 2, report.Written)

	require.Len(t, caseFiles.batches, 1)
	batch := caseFiles.batches[0]
	assert.Equal(t, "100/2023", batch[0].Numero)
	assert.Equal(t, "Licencia", batch[0].Asunto)
	assert.Equal(t, fecha, batch[0].FechaRecibido)
	assert.Equal(t, models.CaseFileStatePending, batch[0].Estado)

	firstID := ids[10]
	assert.Equal(t, []string{"docente-uuid"}, caseFiles.teachers[firstID])
	assert.Equal(t, []string{"escuela-uuid"}, caseFiles.schools[firstID])

	// Unknown legacy docente id leaves the second expediente unlinked.
	secondID := ids[11]
	assert.Empty(t, caseFiles.teachers[secondID])
}

func TestMigrateDispositionsRemapsForeignKeys(t *testing.T) {
	fecha := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)
	source := &stubSource{dispositions: []LegacyDisposition{
		{ID: 20, Numero: s("450/23"), FechaDispo: &fecha, Dispo: s("Designación"), DocenteID: i(1), ExpedienteID: i(10)},
		{ID: 21, Numero: s("451/23"), Dispo: s("Traslado"), EscuelaID: i(99)},
	}}
	dispositions := &recordingDispositionSink{}
	m := newTestMigrator(source, &recordingTeacherSink{}, &recordingCaseFileSink{}, dispositions)

	report, err := m.MigrateDispositions(context.Background(), IDMap{}, IDMap{1: "docente-uuid"}, IDMap{}, IDMap{10: "expediente-uuid"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Written)

	require.Len(t, dispositions.batches, 1)
	batch := dispositions.batches[0]
	require.NotNil(t, batch[0].DocenteID)
	assert.Equal(t, "docente-uuid", *batch[0].DocenteID)
	require.NotNil(t, batch[0].ExpedienteID)
	assert.Equal(t, "expediente-uuid", *batch[0].ExpedienteID)

	// Unresolvable escuela reference migrates as nil.
	assert.Nil(t, batch[1].EscuelaID)
}
