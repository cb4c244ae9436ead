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

const teacherColumns = "id, nombre, apellido, dni, email, telefono, fecha_creacion, fecha_actualizacion"

// TeacherRepository manages persistence for docentes.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns one page of docentes plus the exact total count. The search
// term is matched case-insensitively as a substring against nombre, apellido,
// dni and email; ordering is apellido then nombre, ascending.
func (r *TeacherRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Teacher, int, error) {
	filter = filter.Normalized()
	base := "FROM docentes WHERE 1=1"
	var args []interface{}

	if term := strings.TrimSpace(filter.Search); term != "" {
		base += fmt.Sprintf(" AND (nombre ILIKE $%d OR apellido ILIKE $%d OR dni ILIKE $%d OR COALESCE(email, '') ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+term+"%")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY apellido ASC, nombre ASC LIMIT %d OFFSET %d",
		teacherColumns, base, filter.Limit, filter.Offset())
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list docentes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count docentes: %w", err)
	}

	return teachers, total, nil
}

// FindByID fetches a docente by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM docentes WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindRefs returns the reduced projection for exactly the given ids in one
// query. Unknown ids are simply absent from the result.
func (r *TeacherRepository) FindRefs(ctx context.Context, ids []string) ([]models.TeacherRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id, nombre, apellido FROM docentes WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build docente lookup: %w", err)
	}
	query = r.db.Rebind(query)
	var refs []models.TeacherRef
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("lookup docentes: %w", err)
	}
	return refs, nil
}

// DisplayNames maps each found id to "apellido, nombre".
func (r *TeacherRepository) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	refs, err := r.FindRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(refs))
	for _, ref := range refs {
		names[ref.ID] = ref.Apellido + ", " + ref.Nombre
	}
	return names, nil
}

// Create inserts a new docente.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	const query = `INSERT INTO docentes (id, nombre, apellido, dni, email, telefono, fecha_creacion, fecha_actualizacion)
		VALUES (:id, :nombre, :apellido, :dni, :email, :telefono, :fecha_creacion, :fecha_actualizacion)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create docente: %w", err)
	}
	return nil
}

// Update modifies an existing docente.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE docentes SET nombre = :nombre, apellido = :apellido, dni = :dni, email = :email, telefono = :telefono, fecha_actualizacion = :fecha_actualizacion WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update docente: %w", err)
	}
	return nil
}

// Delete removes a docente by id.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM docentes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete docente: %w", err)
	}
	return nil
}

// ReferenceCount counts disposiciones and expediente links still pointing at
// the docente. Deletion is blocked while this is non-zero.
func (r *TeacherRepository) ReferenceCount(ctx context.Context, id string) (int, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM disposiciones WHERE docente_id = $1) +
		(SELECT COUNT(*) FROM expedientes_docentes WHERE docente_id = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count docente references: %w", err)
	}
	return count, nil
}

// UpsertBatch writes one migration batch keyed by id. Re-running a batch with
// the same ids overwrites rather than duplicates.
func (r *TeacherRepository) UpsertBatch(ctx context.Context, teachers []models.Teacher) error {
	if len(teachers) == 0 {
		return nil
	}
	const query = `INSERT INTO docentes (id, nombre, apellido, dni, email, telefono, fecha_creacion, fecha_actualizacion)
		VALUES (:id, :nombre, :apellido, :dni, :email, :telefono, :fecha_creacion, :fecha_actualizacion)
		ON CONFLICT (id) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			apellido = EXCLUDED.apellido,
			dni = EXCLUDED.dni,
			email = EXCLUDED.email,
			telefono = EXCLUDED.telefono,
			fecha_actualizacion = EXCLUDED.fecha_actualizacion`
	if _, err := r.db.NamedExecContext(ctx, query, teachers); err != nil {
		return fmt.Errorf("upsert docentes: %w", err)
	}
	return nil
}
