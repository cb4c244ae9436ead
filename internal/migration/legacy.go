package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Legacy row shapes as stored in the MySQL schema. Integer keys, loose
// nullability and a handful of columns the target schema folds together.

type LegacyTeacher struct {
	ID        int64      `db:"id"`
	Nombre    *string    `db:"nombre"`
	Apellido  *string    `db:"apellido"`
	Documento *string    `db:"documento"`
	Telefono  *string    `db:"telefono"`
	Email     *string    `db:"email"`
	Domicilio *string    `db:"domicilio"`
	Nacido    *time.Time `db:"fecha_nacimiento"`
}

type LegacySchool struct {
	ID        int64   `db:"id"`
	Nombre    *string `db:"nombre"`
	Numero    *string `db:"numero"`
	Direccion *string `db:"direccion"`
	Localidad *string `db:"localidad"`
	Telefono  *string `db:"telefono"`
	Email     *string `db:"email"`
	Nivel     *string `db:"nivel"`
}

type LegacyCaseFile struct {
	ID            int64      `db:"id"`
	Numero        *string    `db:"numero"`
	Anio          *string    `db:"anio"`
	Caratula      *string    `db:"caratula"`
	Iniciador     *string    `db:"iniciador"`
	FechaInicio   *time.Time `db:"fecha_inicio"`
	Estado        *string    `db:"estado"`
	Ubicacion     *string    `db:"ubicacion"`
	DocenteID     *int64     `db:"docente_id"`
	EscuelaID     *int64     `db:"escuela_id"`
	Observaciones *string    `db:"observaciones"`
}

type LegacyDisposition struct {
	ID           int64      `db:"id"`
	Numero       *string    `db:"numero"`
	FechaDispo   *time.Time `db:"fecha_dispo"`
	Dispo        *string    `db:"dispo"`
	DocenteID    *int64     `db:"docente_id"`
	EscuelaID    *int64     `db:"escuela_id"`
	ExpedienteID *int64     `db:"expediente_id"`
	Cargo        *string    `db:"cargo"`
	Motivo       *string    `db:"motivo"`
	Enlace       *string    `db:"enlace"`
}

// LegacyStore reads full tables from the legacy MySQL database. The migration
// is one-shot over small datasets, so every reader loads the whole table.
type LegacyStore struct {
	db *sqlx.DB
}

// NewLegacyStore constructs a LegacyStore.
func NewLegacyStore(db *sqlx.DB) *LegacyStore {
	return &LegacyStore{db: db}
}

func (s *LegacyStore) Teachers(ctx context.Context) ([]LegacyTeacher, error) {
	var rows []LegacyTeacher
	const query = `SELECT id, nombre, apellido, documento, telefono, email, domicilio, fecha_nacimiento FROM docentes ORDER BY id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("read legacy docentes: %w", err)
	}
	return rows, nil
}

func (s *LegacyStore) Schools(ctx context.Context) ([]LegacySchool, error) {
	var rows []LegacySchool
	const query = `SELECT id, nombre, numero, direccion, localidad, telefono, email, nivel FROM escuelas ORDER BY id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("read legacy escuelas: %w", err)
	}
	return rows, nil
}

func (s *LegacyStore) CaseFiles(ctx context.Context) ([]LegacyCaseFile, error) {
	var rows []LegacyCaseFile
	const query = `SELECT id, numero, anio, caratula, iniciador, fecha_inicio, estado, ubicacion, docente_id, escuela_id, observaciones FROM expedientes ORDER BY id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("read legacy expedientes: %w", err)
	}
	return rows, nil
}

func (s *LegacyStore) Dispositions(ctx context.Context) ([]LegacyDisposition, error) {
	var rows []LegacyDisposition
	const query = `SELECT id, numero, fecha_dispo, dispo, docente_id, escuela_id, expediente_id, cargo, motivo, enlace FROM disposiciones ORDER BY id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("read legacy disposiciones: %w", err)
	}
	return rows, nil
}
