package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jp3/expedientes-api/internal/models"
)

const schoolColumns = "id, nombre, direccion, telefono, email, nivel, fecha_creacion, fecha_actualizacion"

// SchoolRepository manages persistence for escuelas.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs a SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// List returns one page of escuelas plus the exact total count, ordered by
// nombre ascending.
func (r *SchoolRepository) List(ctx context.Context, filter models.ListFilter) ([]models.School, int, error) {
	filter = filter.Normalized()
	base := "FROM escuelas WHERE 1=1"
	var args []interface{}

	if term := strings.TrimSpace(filter.Search); term != "" {
		base += fmt.Sprintf(" AND (nombre ILIKE $%d OR COALESCE(direccion, '') ILIKE $%d OR COALESCE(email, '') ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+term+"%")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY nombre ASC LIMIT %d OFFSET %d",
		schoolColumns, base, filter.Limit, filter.Offset())
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list escuelas: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count escuelas: %w", err)
	}

	return schools, total, nil
}

// FindByID fetches an escuela by ID.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	query := fmt.Sprintf("SELECT %s FROM escuelas WHERE id = $1", schoolColumns)
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, err
	}
	return &school, nil
}

// FindRefs returns the reduced projection for exactly the given ids in one
// query.
func (r *SchoolRepository) FindRefs(ctx context.Context, ids []string) ([]models.SchoolRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id, nombre FROM escuelas WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build escuela lookup: %w", err)
	}
	query = r.db.Rebind(query)
	var refs []models.SchoolRef
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("lookup escuelas: %w", err)
	}
	return refs, nil
}

// DisplayNames maps each found id to its nombre.
func (r *SchoolRepository) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	refs, err := r.FindRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(refs))
	for _, ref := range refs {
		names[ref.ID] = ref.Nombre
	}
	return names, nil
}

// Create inserts a new escuela.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if school.CreatedAt.IsZero() {
		school.CreatedAt = now
	}
	school.UpdatedAt = now

	const query = `INSERT INTO escuelas (id, nombre, direccion, telefono, email, nivel, fecha_creacion, fecha_actualizacion)
		VALUES (:id, :nombre, :direccion, :telefono, :email, :nivel, :fecha_creacion, :fecha_actualizacion)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create escuela: %w", err)
	}
	return nil
}

// Update modifies an existing escuela.
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) error {
	school.UpdatedAt = time.Now().UTC()
	const query = `UPDATE escuelas SET nombre = :nombre, direccion = :direccion, telefono = :telefono, email = :email, nivel = :nivel, fecha_actualizacion = :fecha_actualizacion WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("update escuela: %w", err)
	}
	return nil
}

// Delete removes an escuela by id.
func (r *SchoolRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM escuelas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete escuela: %w", err)
	}
	return nil
}

// ReferenceCount counts disposiciones and expediente links still pointing at
// the escuela.
func (r *SchoolRepository) ReferenceCount(ctx context.Context, id string) (int, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM disposiciones WHERE escuela_id = $1) +
		(SELECT COUNT(*) FROM expedientes_escuelas WHERE escuela_id = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count escuela references: %w", err)
	}
	return count, nil
}

// UpsertBatch writes one migration batch keyed by id.
func (r *SchoolRepository) UpsertBatch(ctx context.Context, schools []models.School) error {
	if len(schools) == 0 {
		return nil
	}
	const query = `INSERT INTO escuelas (id, nombre, direccion, telefono, email, nivel, fecha_creacion, fecha_actualizacion)
		VALUES (:id, :nombre, :direccion, :telefono, :email, :nivel, :fecha_creacion, :fecha_actualizacion)
		ON CONFLICT (id) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			direccion = EXCLUDED.direccion,
			telefono = EXCLUDED.telefono,
			email = EXCLUDED.email,
			nivel = EXCLUDED.nivel,
			fecha_actualizacion = EXCLUDED.fecha_actualizacion`
	if _, err := r.db.NamedExecContext(ctx, query, schools); err != nil {
		return fmt.Errorf("upsert escuelas: %w", err)
	}
	return nil
}
