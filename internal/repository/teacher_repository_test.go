package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp3/expedientes-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "nombre", "apellido", "dni", "email", "telefono", "fecha_creacion", "fecha_actualizacion"}).
		AddRow("d1", "Ana", "Gomez", "20111222", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nombre, apellido, dni, email, telefono, fecha_creacion, fecha_actualizacion FROM docentes WHERE 1=1 ORDER BY apellido ASC, nombre ASC LIMIT 25 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM docentes WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListSearchWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	// Page 2 with limit 5 over 12 matching rows: offset 5, total still 12.
	rows := sqlmock.NewRows([]string{"id", "nombre", "apellido", "dni", "email", "telefono", "fecha_creacion", "fecha_actualizacion"})
	for _, id := range []string{"d6", "d7", "d8", "d9", "d10"} {
		rows.AddRow(id, "Nombre", "Perez", "123", nil, nil, time.Now(), time.Now())
	}
	mock.ExpectQuery(regexp.QuoteMeta("AND (nombre ILIKE $1 OR apellido ILIKE $1 OR dni ILIKE $1 OR COALESCE(email, '') ILIKE $1) ORDER BY apellido ASC, nombre ASC LIMIT 5 OFFSET 5")).
		WithArgs("%perez%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM docentes WHERE 1=1 AND")).
		WithArgs("%perez%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	list, total, err := repo.List(context.Background(), models.ListFilter{Search: "perez", Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO docentes").
		WithArgs(sqlmock.AnyArg(), "Ana", "Gomez", "20111222", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{Nombre: "Ana", Apellido: "Gomez", DNI: "20111222"}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDisplayNames(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "nombre", "apellido"}).
		AddRow("d1", "Ana", "Gomez").
		AddRow("d2", "Luis", "Diaz")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nombre, apellido FROM docentes WHERE id IN")).
		WithArgs("d1", "d2").
		WillReturnRows(rows)

	names, err := repo.DisplayNames(context.Background(), []string{"d1", "d2"})
	require.NoError(t, err)
	assert.Equal(t, "Gomez, Ana", names["d1"])
	assert.Equal(t, "Diaz, Luis", names["d2"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryReferenceCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery("SELECT").
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.ReferenceCount(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
