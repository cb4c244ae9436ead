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

const dispositionColumns = "id, numero, fecha_dispo, dispo, docente_id, escuela_id, expediente_id, cargo, motivo, enlace, fecha_creacion, fecha_actualizacion"

// DispositionRepository manages persistence for disposiciones.
type DispositionRepository struct {
	db *sqlx.DB
}

// NewDispositionRepository constructs a DispositionRepository.
func NewDispositionRepository(db *sqlx.DB) *DispositionRepository {
	return &DispositionRepository{db: db}
}

// List returns one page of disposiciones plus the exact total count, ordered
// by fecha_dispo descending.
func (r *DispositionRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Disposition, int, error) {
	filter = filter.Normalized()
	base := "FROM disposiciones WHERE 1=1"
	var args []interface{}

	if term := strings.TrimSpace(filter.Search); term != "" {
		base += fmt.Sprintf(" AND (numero ILIKE $%d OR dispo ILIKE $%d OR COALESCE(cargo, '') ILIKE $%d OR COALESCE(motivo, '') ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+term+"%")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY fecha_dispo DESC LIMIT %d OFFSET %d",
		dispositionColumns, base, filter.Limit, filter.Offset())
	var dispositions []models.Disposition
	if err := r.db.SelectContext(ctx, &dispositions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list disposiciones: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count disposiciones: %w", err)
	}

	return dispositions, total, nil
}

// FindByID fetches a disposición by ID.
func (r *DispositionRepository) FindByID(ctx context.Context, id string) (*models.Disposition, error) {
	query := fmt.Sprintf("SELECT %s FROM disposiciones WHERE id = $1", dispositionColumns)
	var disposition models.Disposition
	if err := r.db.GetContext(ctx, &disposition, query, id); err != nil {
		return nil, err
	}
	return &disposition, nil
}

// ListByCaseFile returns every disposición attached to the expediente,
// newest first.
func (r *DispositionRepository) ListByCaseFile(ctx context.Context, caseFileID string) ([]models.Disposition, error) {
	query := fmt.Sprintf("SELECT %s FROM disposiciones WHERE expediente_id = $1 ORDER BY fecha_dispo DESC", dispositionColumns)
	var dispositions []models.Disposition
	if err := r.db.SelectContext(ctx, &dispositions, query, caseFileID); err != nil {
		return nil, fmt.Errorf("list disposiciones by expediente: %w", err)
	}
	return dispositions, nil
}

// Create inserts a new disposición.
func (r *DispositionRepository) Create(ctx context.Context, disposition *models.Disposition) error {
	if disposition.ID == "" {
		disposition.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if disposition.CreatedAt.IsZero() {
		disposition.CreatedAt = now
	}
	disposition.UpdatedAt = now

	const query = `INSERT INTO disposiciones (id, numero, fecha_dispo, dispo, docente_id, escuela_id, expediente_id, cargo, motivo, enlace, fecha_creacion, fecha_actualizacion)
		VALUES (:id, :numero, :fecha_dispo, :dispo, :docente_id, :escuela_id, :expediente_id, :cargo, :motivo, :enlace, :fecha_creacion, :fecha_actualizacion)`
	if _, err := r.db.NamedExecContext(ctx, query, disposition); err != nil {
		return fmt.Errorf("create disposición: %w", err)
	}
	return nil
}

// Update modifies an existing disposición.
func (r *DispositionRepository) Update(ctx context.Context, disposition *models.Disposition) error {
	disposition.UpdatedAt = time.Now().UTC()
	const query = `UPDATE disposiciones SET numero = :numero, fecha_dispo = :fecha_dispo, dispo = :dispo, docente_id = :docente_id, escuela_id = :escuela_id, expediente_id = :expediente_id, cargo = :cargo, motivo = :motivo, enlace = :enlace, fecha_actualizacion = :fecha_actualizacion WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, disposition); err != nil {
		return fmt.Errorf("update disposición: %w", err)
	}
	return nil
}

// Delete removes a disposición by id.
func (r *DispositionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM disposiciones WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete disposición: %w", err)
	}
	return nil
}

// UpsertBatch writes one migration batch keyed by id.
func (r *DispositionRepository) UpsertBatch(ctx context.Context, dispositions []models.Disposition) error {
	if len(dispositions) == 0 {
		return nil
	}
	const query = `INSERT INTO disposiciones (id, numero, fecha_dispo, dispo, docente_id, escuela_id, expediente_id, cargo, motivo, enlace, fecha_creacion, fecha_actualizacion)
		VALUES (:id, :numero, :fecha_dispo, :dispo, :docente_id, :escuela_id, :expediente_id, :cargo, :motivo, :enlace, :fecha_creacion, :fecha_actualizacion)
		ON CONFLICT (id) DO UPDATE SET
			numero = EXCLUDED.numero,
			fecha_dispo = EXCLUDED.fecha_dispo,
			dispo = EXCLUDED.dispo,
			docente_id = EXCLUDED.docente_id,
			escuela_id = EXCLUDED.escuela_id,
			expediente_id = EXCLUDED.expediente_id,
			cargo = EXCLUDED.cargo,
			motivo = EXCLUDED.motivo,
			enlace = EXCLUDED.enlace,
			fecha_actualizacion = EXCLUDED.fecha_actualizacion`
	if _, err := r.db.NamedExecContext(ctx, query, dispositions); err != nil {
		return fmt.Errorf("upsert disposiciones: %w", err)
	}
	return nil
}
