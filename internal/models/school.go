package models

import "time"

// School is an escuela row.
type School struct {
	ID        string    `db:"id" json:"id"`
	Nombre    string    `db:"nombre" json:"nombre"`
	Direccion *string   `db:"direccion" json:"direccion"`
	Telefono  *string   `db:"telefono" json:"telefono"`
	Email     *string   `db:"email" json:"email"`
	Nivel     *string   `db:"nivel" json:"nivel"`
	CreatedAt time.Time `db:"fecha_creacion" json:"fecha_creacion"`
	UpdatedAt time.Time `db:"fecha_actualizacion" json:"fecha_actualizacion"`
}

// SchoolRef is the reduced projection used when enriching related records.
type SchoolRef struct {
	ID     string `db:"id" json:"id"`
	Nombre string `db:"nombre" json:"nombre"`
}
