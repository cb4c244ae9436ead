package models

import "time"

// Disposition is a disposición row: an administrative order referencing at
// most one docente and one escuela, optionally attached to an expediente.
// DocenteNombre/EscuelaNombre are derived display fields filled by enrichment;
// they stay nil when the foreign key is null or dangling.
type Disposition struct {
	ID           string    `db:"id" json:"id"`
	Numero       string    `db:"numero" json:"numero"`
	FechaDispo   time.Time `db:"fecha_dispo" json:"fecha_dispo"`
	Dispo        string    `db:"dispo" json:"dispo"`
	DocenteID    *string   `db:"docente_id" json:"docente_id"`
	EscuelaID    *string   `db:"escuela_id" json:"escuela_id"`
	ExpedienteID *string   `db:"expediente_id" json:"expediente_id"`
	Cargo        *string   `db:"cargo" json:"cargo"`
	Motivo       *string   `db:"motivo" json:"motivo"`
	Enlace       *string   `db:"enlace" json:"enlace"`
	CreatedAt    time.Time `db:"fecha_creacion" json:"fecha_creacion"`
	UpdatedAt    time.Time `db:"fecha_actualizacion" json:"fecha_actualizacion"`

	DocenteNombre *string `db:"-" json:"docente_nombre"`
	EscuelaNombre *string `db:"-" json:"escuela_nombre"`
}
