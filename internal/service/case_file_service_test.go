package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp3/expedientes-api/internal/models"
)

type mockCaseFileRepo struct {
	items      map[string]*models.CaseFile
	listResult []models.CaseFile
	listTotal  int

	teacherRel map[string][]string
	schoolRel  map[string][]string

	lastTeacherIDs []string
	lastSchoolIDs  []string
	updates        int
}

func (m *mockCaseFileRepo) List(ctx context.Context, filter models.ListFilter) ([]models.CaseFile, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockCaseFileRepo) FindByID(ctx context.Context, id string) (*models.CaseFile, error) {
	if cf, ok := m.items[id]; ok {
		cp := *cf
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCaseFileRepo) Relations(ctx context.Context, ids []string) (map[string][]string, map[string][]string, error) {
	teachers := make(map[string][]string)
	schools := make(map[string][]string)
	for _, id := range ids {
		if rel, ok := m.teacherRel[id]; ok {
			teachers[id] = rel
		}
		if rel, ok := m.schoolRel[id]; ok {
			schools[id] = rel
		}
	}
	return teachers, schools, nil
}

func (m *mockCaseFileRepo) Create(ctx context.Context, cf *models.CaseFile, teacherIDs, schoolIDs []string) error {
	if m.items == nil {
		m.items = make(map[string]*models.CaseFile)
	}
	if cf.ID == "" {
		cf.ID = "generated"
	}
	cp := *cf
	m.items[cf.ID] = &cp
	m.lastTeacherIDs = teacherIDs
	m.lastSchoolIDs = schoolIDs
	if m.teacherRel == nil {
		m.teacherRel = make(map[string][]string)
	}
	if m.schoolRel == nil {
		m.schoolRel = make(map[string][]string)
	}
	m.teacherRel[cf.ID] = teacherIDs
	m.schoolRel[cf.ID] = schoolIDs
	return nil
}

func (m *mockCaseFileRepo) Update(ctx context.Context, cf *models.CaseFile, teacherIDs, schoolIDs []string) error {
	cp := *cf
	m.items[cf.ID] = &cp
	m.lastTeacherIDs = teacherIDs
	m.lastSchoolIDs = schoolIDs
	m.teacherRel[cf.ID] = teacherIDs
	m.schoolRel[cf.ID] = schoolIDs
	m.updates++
	return nil
}

func (m *mockCaseFileRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockCaseFileRepo) AssociateTeachers(ctx context.Context, id string, teacherIDs []string) error {
	m.teacherRel[id] = append(m.teacherRel[id], teacherIDs...)
	return nil
}

func (m *mockCaseFileRepo) AssociateSchools(ctx context.Context, id string, schoolIDs []string) error {
	m.schoolRel[id] = append(m.schoolRel[id], schoolIDs...)
	return nil
}

func (m *mockCaseFileRepo) DisassociateTeacher(ctx context.Context, id, teacherID string) error {
	var kept []string
	for _, tID := range m.teacherRel[id] {
		if tID != teacherID {
			kept = append(kept, tID)
		}
	}
	m.teacherRel[id] = kept
	return nil
}

func (m *mockCaseFileRepo) DisassociateSchool(ctx context.Context, id, schoolID string) error {
	var kept []string
	for _, sID := range m.schoolRel[id] {
		if sID != schoolID {
			kept = append(kept, sID)
		}
	}
	m.schoolRel[id] = kept
	return nil
}

type mockTeacherRefLookup struct {
	refs  map[string]models.TeacherRef
	calls int
}

func (m *mockTeacherRefLookup) FindRefs(ctx context.Context, ids []string) ([]models.TeacherRef, error) {
	m.calls++
	var out []models.TeacherRef
	for _, id := range ids {
		if ref, ok := m.refs[id]; ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

type mockSchoolRefLookup struct {
	refs  map[string]models.SchoolRef
	calls int
}

func (m *mockSchoolRefLookup) FindRefs(ctx context.Context, ids []string) ([]models.SchoolRef, error) {
	m.calls++
	var out []models.SchoolRef
	for _, id := range ids {
		if ref, ok := m.refs[id]; ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

func newCaseFileFixture() (*mockCaseFileRepo, *mockTeacherRefLookup, *mockSchoolRefLookup, *CaseFileService) {
	repo := &mockCaseFileRepo{
		items:      map[string]*models.CaseFile{},
		teacherRel: map[string][]string{},
		schoolRel:  map[string][]string{},
	}
	teachers := &mockTeacherRefLookup{refs: map[string]models.TeacherRef{
		"d1": {ID: "d1", Nombre: "Ana", Apellido: "Gomez"},
		"d2": {ID: "d2", Nombre: "Luis", Apellido: "Diaz"},
	}}
	schools := &mockSchoolRefLookup{refs: map[string]models.SchoolRef{
		"s1": {ID: "s1", Nombre: "Escuela 12"},
	}}
	svc := NewCaseFileService(repo, teachers, schools, nil, nil)
	return repo, teachers, schools, svc
}

func TestCaseFileServiceListEnrichesWithOneLookupPerTable(t *testing.T) {
	repo, teachers, schools, svc := newCaseFileFixture()
	repo.listResult = []models.CaseFile{{ID: "e1"}, {ID: "e2"}}
	repo.listTotal = 2
	repo.teacherRel = map[string][]string{"e1": {"d1", "d2"}, "e2": {"d1", "missing"}}
	repo.schoolRel = map[string][]string{"e2": {"s1"}}

	list, _, err := svc.List(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, 1, teachers.calls)
	assert.Equal(t, 1, schools.calls)

	assert.Len(t, list[0].Docentes, 2)
	assert.NotNil(t, list[0].Escuelas)
	assert.Empty(t, list[0].Escuelas)

	// Dangling relation ids are skipped silently.
	assert.Len(t, list[1].Docentes, 1)
	assert.Len(t, list[1].Escuelas, 1)
}

func TestCaseFileServiceEnrichmentIsRepeatable(t *testing.T) {
	repo, _, _, svc := newCaseFileFixture()
	repo.listResult = []models.CaseFile{
		{ID: "e1", Docentes: []models.TeacherRef{{ID: "stale", Nombre: "Viejo"}}},
		{ID: "e2"},
	}
	repo.listTotal = 2
	repo.teacherRel = map[string][]string{"e1": {"d1"}}
	repo.schoolRel = map[string][]string{"e2": {"s1"}}

	first, _, err := svc.List(context.Background(), models.ListFilter{})
	require.NoError(t, err)

	// Pre-populated refs are rebuilt from the relation rows, not kept.
	require.Len(t, first[0].Docentes, 1)
	assert.Equal(t, "d1", first[0].Docentes[0].ID)

	snapshot := make([]models.CaseFile, len(first))
	copy(snapshot, first)

	second, _, err := svc.List(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, snapshot, second)
}

func TestCaseFileServiceCreateDefaultsEstado(t *testing.T) {
	repo, _, _, svc := newCaseFileFixture()

	created, err := svc.Create(context.Background(), CaseFileRequest{
		Numero:        "100/2023",
		Asunto:        "Licencia médica",
		FechaRecibido: "2023-04-01",
		Docentes:      []string{"d1", "d1", "d2"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CaseFileStatePending, created.Estado)
	// Duplicate relation ids collapse before reaching the repository.
	assert.Equal(t, []string{"d1", "d2"}, repo.lastTeacherIDs)
}

func TestCaseFileServiceUpdateReplacesRelations(t *testing.T) {
	repo, _, _, svc := newCaseFileFixture()

	created, err := svc.Create(context.Background(), CaseFileRequest{
		Numero:        "100/2023",
		Asunto:        "Licencia médica",
		FechaRecibido: "2023-04-01",
		Docentes:      []string{"d1"},
		Escuelas:      []string{"s1"},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, CaseFileRequest{
		Numero:        "100/2023",
		Asunto:        "Licencia médica ampliada",
		FechaRecibido: "2023-04-01",
		Docentes:      []string{"d2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, []string{"d2"}, repo.lastTeacherIDs)
	assert.Empty(t, repo.lastSchoolIDs)
	// Relation set was replaced, not merged.
	require.Len(t, updated.Docentes, 1)
	assert.Equal(t, "d2", updated.Docentes[0].ID)
	assert.Empty(t, updated.Escuelas)
}

func TestCaseFileServiceUpdateKeepsEstadoWhenOmitted(t *testing.T) {
	_, _, _, svc := newCaseFileFixture()

	enProceso := models.CaseFileStateInProcess
	created, err := svc.Create(context.Background(), CaseFileRequest{
		Numero:        "100/2023",
		Asunto:        "Licencia",
		FechaRecibido: "2023-04-01",
		Estado:        &enProceso,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CaseFileStateInProcess, created.Estado)

	updated, err := svc.Update(context.Background(), created.ID, CaseFileRequest{
		Numero:        "100/2023",
		Asunto:        "Licencia",
		FechaRecibido: "2023-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CaseFileStateInProcess, updated.Estado)
}

func TestCaseFileServiceAssociateAndDisassociate(t *testing.T) {
	repo, _, _, svc := newCaseFileFixture()

	created, err := svc.Create(context.Background(), CaseFileRequest{
		Numero:        "100/2023",
		Asunto:        "Licencia",
		FechaRecibido: "2023-04-01",
	})
	require.NoError(t, err)

	require.NoError(t, svc.AssociateTeachers(context.Background(), created.ID, []string{"d1", "d1"}))
	assert.Equal(t, []string{"d1"}, repo.teacherRel[created.ID])

	require.NoError(t, svc.DisassociateTeacher(context.Background(), created.ID, "d1"))
	assert.Empty(t, repo.teacherRel[created.ID])
}
