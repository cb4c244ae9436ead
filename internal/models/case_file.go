package models

import "time"

// Case file states. New expedientes always start as pending.
const (
	CaseFileStatePending   = "pendiente"
	CaseFileStateInProcess = "en proceso"
)

// CaseFile is an expediente row plus its many-to-many relations. The linked
// docentes/escuelas live only in the join tables; the slices here are filled
// by the service layer after a batched lookup.
type CaseFile struct {
	ID            string    `db:"id" json:"id"`
	Numero        string    `db:"numero" json:"numero"`
	Asunto        string    `db:"asunto" json:"asunto"`
	FechaRecibido time.Time `db:"fecha_recibido" json:"fecha_recibido"`
	Notificacion  *string   `db:"notificacion" json:"notificacion"`
	Resolucion    *string   `db:"resolucion" json:"resolucion"`
	Pase          *string   `db:"pase" json:"pase"`
	Observaciones *string   `db:"observaciones" json:"observaciones"`
	Estado        string    `db:"estado" json:"estado"`
	CreatedAt     time.Time `db:"fecha_creacion" json:"fecha_creacion"`
	UpdatedAt     time.Time `db:"fecha_actualizacion" json:"fecha_actualizacion"`

	Docentes []TeacherRef `db:"-" json:"docentes"`
	Escuelas []SchoolRef  `db:"-" json:"escuelas"`
}
