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

const caseFileColumns = "id, numero, asunto, fecha_recibido, notificacion, resolucion, pase, observaciones, estado, fecha_creacion, fecha_actualizacion"

type teacherLink struct {
	ExpedienteID string `db:"expediente_id"`
	DocenteID    string `db:"docente_id"`
}

type schoolLink struct {
	ExpedienteID string `db:"expediente_id"`
	EscuelaID    string `db:"escuela_id"`
}

// CaseFileRepository manages expedientes and their two join tables. The join
// rows are the only representation of the many-to-many relations; replacing
// them happens inside a single transaction.
type CaseFileRepository struct {
	db *sqlx.DB
}

// NewCaseFileRepository constructs a CaseFileRepository.
func NewCaseFileRepository(db *sqlx.DB) *CaseFileRepository {
	return &CaseFileRepository{db: db}
}

// List returns one page of expedientes plus the exact total count, ordered by
// fecha_recibido descending. Relations are NOT loaded here; callers fetch them
// batched via Relations.
func (r *CaseFileRepository) List(ctx context.Context, filter models.ListFilter) ([]models.CaseFile, int, error) {
	filter = filter.Normalized()
	base := "FROM expedientes WHERE 1=1"
	var args []interface{}

	if term := strings.TrimSpace(filter.Search); term != "" {
		base += fmt.Sprintf(" AND (numero ILIKE $%d OR asunto ILIKE $%d OR COALESCE(observaciones, '') ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+term+"%")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY fecha_recibido DESC LIMIT %d OFFSET %d",
		caseFileColumns, base, filter.Limit, filter.Offset())
	var caseFiles []models.CaseFile
	if err := r.db.SelectContext(ctx, &caseFiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list expedientes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count expedientes: %w", err)
	}

	return caseFiles, total, nil
}

// FindByID fetches an expediente row by ID.
func (r *CaseFileRepository) FindByID(ctx context.Context, id string) (*models.CaseFile, error) {
	query := fmt.Sprintf("SELECT %s FROM expedientes WHERE id = $1", caseFileColumns)
	var caseFile models.CaseFile
	if err := r.db.GetContext(ctx, &caseFile, query, id); err != nil {
		return nil, err
	}
	return &caseFile, nil
}

// Relations loads the join rows for the given expediente ids: one query per
// join table regardless of how many expedientes the page holds.
func (r *CaseFileRepository) Relations(ctx context.Context, caseFileIDs []string) (map[string][]string, map[string][]string, error) {
	teacherIDs := make(map[string][]string)
	schoolIDs := make(map[string][]string)
	if len(caseFileIDs) == 0 {
		return teacherIDs, schoolIDs, nil
	}

	query, args, err := sqlx.In("SELECT expediente_id, docente_id FROM expedientes_docentes WHERE expediente_id IN (?)", caseFileIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("build docente relation lookup: %w", err)
	}
	var tLinks []teacherLink
	if err := r.db.SelectContext(ctx, &tLinks, r.db.Rebind(query), args...); err != nil {
		return nil, nil, fmt.Errorf("load docente relations: %w", err)
	}
	for _, link := range tLinks {
		teacherIDs[link.ExpedienteID] = append(teacherIDs[link.ExpedienteID], link.DocenteID)
	}

	query, args, err = sqlx.In("SELECT expediente_id, escuela_id FROM expedientes_escuelas WHERE expediente_id IN (?)", caseFileIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("build escuela relation lookup: %w", err)
	}
	var sLinks []schoolLink
	if err := r.db.SelectContext(ctx, &sLinks, r.db.Rebind(query), args...); err != nil {
		return nil, nil, fmt.Errorf("load escuela relations: %w", err)
	}
	for _, link := range sLinks {
		schoolIDs[link.ExpedienteID] = append(schoolIDs[link.ExpedienteID], link.EscuelaID)
	}

	return teacherIDs, schoolIDs, nil
}

// Create inserts the expediente row and its initial join rows atomically.
func (r *CaseFileRepository) Create(ctx context.Context, caseFile *models.CaseFile, teacherIDs, schoolIDs []string) error {
	if caseFile.ID == "" {
		caseFile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if caseFile.CreatedAt.IsZero() {
		caseFile.CreatedAt = now
	}
	caseFile.UpdatedAt = now
	if caseFile.Estado == "" {
		caseFile.Estado = models.CaseFileStatePending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create expediente: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO expedientes (id, numero, asunto, fecha_recibido, notificacion, resolucion, pase, observaciones, estado, fecha_creacion, fecha_actualizacion)
		VALUES (:id, :numero, :asunto, :fecha_recibido, :notificacion, :resolucion, :pase, :observaciones, :estado, :fecha_creacion, :fecha_actualizacion)`
	if _, err := tx.NamedExecContext(ctx, query, caseFile); err != nil {
		return fmt.Errorf("create expediente: %w", err)
	}

	if err := insertLinks(ctx, tx, caseFile.ID, teacherIDs, schoolIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create expediente: %w", err)
	}
	return nil
}

// Update rewrites the expediente row and replaces BOTH join sets with the
// provided ids. The whole replace is one transaction, so readers never observe
// a half-replaced relation set.
func (r *CaseFileRepository) Update(ctx context.Context, caseFile *models.CaseFile, teacherIDs, schoolIDs []string) error {
	caseFile.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update expediente: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE expedientes SET numero = :numero, asunto = :asunto, fecha_recibido = :fecha_recibido, notificacion = :notificacion, resolucion = :resolucion, pase = :pase, observaciones = :observaciones, estado = :estado, fecha_actualizacion = :fecha_actualizacion WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, caseFile); err != nil {
		return fmt.Errorf("update expediente: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expedientes_docentes WHERE expediente_id = $1`, caseFile.ID); err != nil {
		return fmt.Errorf("clear docente relations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM expedientes_escuelas WHERE expediente_id = $1`, caseFile.ID); err != nil {
		return fmt.Errorf("clear escuela relations: %w", err)
	}

	if err := insertLinks(ctx, tx, caseFile.ID, teacherIDs, schoolIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update expediente: %w", err)
	}
	return nil
}

// Delete removes the join rows and then the expediente row, atomically.
func (r *CaseFileRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete expediente: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM expedientes_docentes WHERE expediente_id = $1`, id); err != nil {
		return fmt.Errorf("clear docente relations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM expedientes_escuelas WHERE expediente_id = $1`, id); err != nil {
		return fmt.Errorf("clear escuela relations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM expedientes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete expediente: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete expediente: %w", err)
	}
	return nil
}

// AssociateTeachers adds join rows for the given docentes without touching
// existing relations.
func (r *CaseFileRepository) AssociateTeachers(ctx context.Context, caseFileID string, teacherIDs []string) error {
	links := buildTeacherLinks(caseFileID, teacherIDs)
	if len(links) == 0 {
		return nil
	}
	const query = `INSERT INTO expedientes_docentes (expediente_id, docente_id) VALUES (:expediente_id, :docente_id)`
	if _, err := r.db.NamedExecContext(ctx, query, links); err != nil {
		return fmt.Errorf("associate docentes: %w", err)
	}
	return nil
}

// AssociateSchools adds join rows for the given escuelas.
func (r *CaseFileRepository) AssociateSchools(ctx context.Context, caseFileID string, schoolIDs []string) error {
	links := buildSchoolLinks(caseFileID, schoolIDs)
	if len(links) == 0 {
		return nil
	}
	const query = `INSERT INTO expedientes_escuelas (expediente_id, escuela_id) VALUES (:expediente_id, :escuela_id)`
	if _, err := r.db.NamedExecContext(ctx, query, links); err != nil {
		return fmt.Errorf("associate escuelas: %w", err)
	}
	return nil
}

// DisassociateTeacher removes one docente pair.
func (r *CaseFileRepository) DisassociateTeacher(ctx context.Context, caseFileID, teacherID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expedientes_docentes WHERE expediente_id = $1 AND docente_id = $2`, caseFileID, teacherID); err != nil {
		return fmt.Errorf("disassociate docente: %w", err)
	}
	return nil
}

// DisassociateSchool removes one escuela pair.
func (r *CaseFileRepository) DisassociateSchool(ctx context.Context, caseFileID, schoolID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expedientes_escuelas WHERE expediente_id = $1 AND escuela_id = $2`, caseFileID, schoolID); err != nil {
		return fmt.Errorf("disassociate escuela: %w", err)
	}
	return nil
}

// UpsertBatch writes one migration batch of expediente rows keyed by id.
func (r *CaseFileRepository) UpsertBatch(ctx context.Context, caseFiles []models.CaseFile) error {
	if len(caseFiles) == 0 {
		return nil
	}
	const query = `INSERT INTO expedientes (id, numero, asunto, fecha_recibido, notificacion, resolucion, pase, observaciones, estado, fecha_creacion, fecha_actualizacion)
		VALUES (:id, :numero, :asunto, :fecha_recibido, :notificacion, :resolucion, :pase, :observaciones, :estado, :fecha_creacion, :fecha_actualizacion)
		ON CONFLICT (id) DO UPDATE SET
			numero = EXCLUDED.numero,
			asunto = EXCLUDED.asunto,
			fecha_recibido = EXCLUDED.fecha_recibido,
			notificacion = EXCLUDED.notificacion,
			resolucion = EXCLUDED.resolucion,
			pase = EXCLUDED.pase,
			observaciones = EXCLUDED.observaciones,
			estado = EXCLUDED.estado,
			fecha_actualizacion = EXCLUDED.fecha_actualizacion`
	if _, err := r.db.NamedExecContext(ctx, query, caseFiles); err != nil {
		return fmt.Errorf("upsert expedientes: %w", err)
	}
	return nil
}

func insertLinks(ctx context.Context, tx *sqlx.Tx, caseFileID string, teacherIDs, schoolIDs []string) error {
	if links := buildTeacherLinks(caseFileID, teacherIDs); len(links) > 0 {
		const query = `INSERT INTO expedientes_docentes (expediente_id, docente_id) VALUES (:expediente_id, :docente_id)`
		if _, err := tx.NamedExecContext(ctx, query, links); err != nil {
			return fmt.Errorf("insert docente relations: %w", err)
		}
	}
	if links := buildSchoolLinks(caseFileID, schoolIDs); len(links) > 0 {
		const query = `INSERT INTO expedientes_escuelas (expediente_id, escuela_id) VALUES (:expediente_id, :escuela_id)`
		if _, err := tx.NamedExecContext(ctx, query, links); err != nil {
			return fmt.Errorf("insert escuela relations: %w", err)
		}
	}
	return nil
}

func buildTeacherLinks(caseFileID string, ids []string) []teacherLink {
	links := make([]teacherLink, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		links = append(links, teacherLink{ExpedienteID: caseFileID, DocenteID: id})
	}
	return links
}

func buildSchoolLinks(caseFileID string, ids []string) []schoolLink {
	links := make([]schoolLink, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		links = append(links, schoolLink{ExpedienteID: caseFileID, EscuelaID: id})
	}
	return links
}
