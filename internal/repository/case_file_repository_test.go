package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp3/expedientes-api/internal/models"
)

func TestCaseFileRepositoryRelations(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCaseFileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT expediente_id, docente_id FROM expedientes_docentes WHERE expediente_id IN")).
		WithArgs("e1", "e2").
		WillReturnRows(sqlmock.NewRows([]string{"expediente_id", "docente_id"}).
			AddRow("e1", "d1").
			AddRow("e1", "d2").
			AddRow("e2", "d1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT expediente_id, escuela_id FROM expedientes_escuelas WHERE expediente_id IN")).
		WithArgs("e1", "e2").
		WillReturnRows(sqlmock.NewRows([]string{"expediente_id", "escuela_id"}).
			AddRow("e2", "s1"))

	teachers, schools, err := repo.Relations(context.Background(), []string{"e1", "e2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, teachers["e1"])
	assert.Equal(t, []string{"d1"}, teachers["e2"])
	assert.Empty(t, schools["e1"])
	assert.Equal(t, []string{"s1"}, schools["e2"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseFileRepositoryUpdateReplacesRelationsInOneTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCaseFileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE expedientes SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM expedientes_docentes WHERE expediente_id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM expedientes_escuelas WHERE expediente_id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO expedientes_docentes").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO expedientes_escuelas").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	caseFile := &models.CaseFile{
		ID:            "e1",
		Numero:        "100/2023",
		Asunto:        "Licencia",
		FechaRecibido: time.Now(),
		Estado:        models.CaseFileStatePending,
	}
	err := repo.Update(context.Background(), caseFile, []string{"d9"}, []string{"s3"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseFileRepositoryUpdateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCaseFileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE expedientes SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM expedientes_docentes WHERE expediente_id = $1")).
		WithArgs("e1").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	caseFile := &models.CaseFile{ID: "e1", Numero: "100", Asunto: "x", FechaRecibido: time.Now(), Estado: "pendiente"}
	err := repo.Update(context.Background(), caseFile, nil, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseFileRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCaseFileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM expedientes_docentes WHERE expediente_id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM expedientes_escuelas WHERE expediente_id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM expedientes WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseFileRepositoryAssociateSkipsBlankIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCaseFileRepository(db)

	// Only blank ids: no statement should run.
	require.NoError(t, repo.AssociateTeachers(context.Background(), "e1", []string{"", "  "}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
