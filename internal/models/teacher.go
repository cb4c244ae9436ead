package models

import "time"

// Teacher is a docente row. Column and wire names keep the legacy Spanish
// schema so existing clients continue to work unchanged.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	Nombre    string    `db:"nombre" json:"nombre"`
	Apellido  string    `db:"apellido" json:"apellido"`
	DNI       string    `db:"dni" json:"dni"`
	Email     *string   `db:"email" json:"email"`
	Telefono  *string   `db:"telefono" json:"telefono"`
	CreatedAt time.Time `db:"fecha_creacion" json:"fecha_creacion"`
	UpdatedAt time.Time `db:"fecha_actualizacion" json:"fecha_actualizacion"`
}

// DisplayName is the derived label attached to records referencing a teacher.
func (t Teacher) DisplayName() string {
	return t.Apellido + ", " + t.Nombre
}

// TeacherRef is the reduced projection used when enriching related records.
type TeacherRef struct {
	ID       string `db:"id" json:"id"`
	Nombre   string `db:"nombre" json:"nombre"`
	Apellido string `db:"apellido" json:"apellido"`
}
