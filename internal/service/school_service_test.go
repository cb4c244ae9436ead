package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp3/expedientes-api/internal/models"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
)

type mockSchoolRepo struct {
	items    map[string]*models.School
	refCount int
	deleted  []string
}

func (m *mockSchoolRepo) List(ctx context.Context, filter models.ListFilter) ([]models.School, int, error) {
	return nil, 0, nil
}

func (m *mockSchoolRepo) FindByID(ctx context.Context, id string) (*models.School, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSchoolRepo) Create(ctx context.Context, school *models.School) error {
	if m.items == nil {
		m.items = make(map[string]*models.School)
	}
	if school.ID == "" {
		school.ID = "s1"
	}
	cp := *school
	m.items[school.ID] = &cp
	return nil
}

func (m *mockSchoolRepo) Update(ctx context.Context, school *models.School) error {
	cp := *school
	m.items[school.ID] = &cp
	return nil
}

func (m *mockSchoolRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockSchoolRepo) ReferenceCount(ctx context.Context, id string) (int, error) {
	return m.refCount, nil
}

func TestSchoolServiceCreateNormalizesOptionals(t *testing.T) {
	repo := &mockSchoolRepo{}
	svc := NewSchoolService(repo, nil, nil)

	blank := "   "
	nivel := " Primaria "
	school, err := svc.Create(context.Background(), SchoolRequest{
		Nombre:   "  Escuela 12  ",
		Telefono: &blank,
		Nivel:    &nivel,
	})
	require.NoError(t, err)
	assert.Equal(t, "Escuela 12", school.Nombre)
	assert.Nil(t, school.Telefono)
	require.NotNil(t, school.Nivel)
	assert.Equal(t, "Primaria", *school.Nivel)
}

func TestSchoolServiceCreateRequiresNombre(t *testing.T) {
	svc := NewSchoolService(&mockSchoolRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), SchoolRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestSchoolServiceGetNotFound(t *testing.T) {
	svc := NewSchoolService(&mockSchoolRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestSchoolServiceDeleteBlockedWhileReferenced(t *testing.T) {
	repo := &mockSchoolRepo{refCount: 3}
	svc := NewSchoolService(repo, nil, nil)

	created, err := svc.Create(context.Background(), SchoolRequest{Nombre: "Escuela 12"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), created.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Empty(t, repo.deleted)
}

func TestSchoolServiceDeleteUnreferenced(t *testing.T) {
	repo := &mockSchoolRepo{}
	svc := NewSchoolService(repo, nil, nil)

	created, err := svc.Create(context.Background(), SchoolRequest{Nombre: "Escuela 12"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, []string{created.ID}, repo.deleted)
}
