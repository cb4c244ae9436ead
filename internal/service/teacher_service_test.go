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

type mockTeacherRepo struct {
	items      map[string]*models.Teacher
	listResult []models.Teacher
	listTotal  int
	refCount   int
	deleted    []string
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.ListFilter) ([]models.Teacher, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := m.items[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.items == nil {
		m.items = make(map[string]*models.Teacher)
	}
	if teacher.ID == "" {
		teacher.ID = "generated"
	}
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func (m *mockTeacherRepo) ReferenceCount(ctx context.Context, id string) (int, error) {
	return m.refCount, nil
}

func TestTeacherServiceListPagination(t *testing.T) {
	repo := &mockTeacherRepo{
		listResult: []models.Teacher{{ID: "d1"}},
		listTotal:  12,
	}
	svc := NewTeacherService(repo, nil, nil)

	teachers, pagination, err := svc.List(context.Background(), models.ListFilter{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 12, pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)
}

func TestTeacherServiceCreateValidation(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), TeacherRequest{Nombre: "Ana"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestTeacherServiceCreateTrimsAndNormalizes(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, nil, nil)

	blank := "   "
	teacher, err := svc.Create(context.Background(), TeacherRequest{
		Nombre:   " Ana ",
		Apellido: "Gomez",
		DNI:      "20111222",
		Telefono: &blank,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", teacher.Nombre)
	assert.Nil(t, teacher.Telefono)
}

func TestTeacherServiceGetNotFound(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestTeacherServiceDeleteBlockedByReferences(t *testing.T) {
	repo := &mockTeacherRepo{
		items:    map[string]*models.Teacher{"d1": {ID: "d1"}},
		refCount: 2,
	}
	svc := NewTeacherService(repo, nil, nil)

	err := svc.Delete(context.Background(), "d1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Empty(t, repo.deleted)
}

func TestTeacherServiceDeleteUnreferenced(t *testing.T) {
	repo := &mockTeacherRepo{
		items: map[string]*models.Teacher{"d1": {ID: "d1"}},
	}
	svc := NewTeacherService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "d1"))
	assert.Equal(t, []string{"d1"}, repo.deleted)
}
