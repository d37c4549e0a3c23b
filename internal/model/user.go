package model

import "time"

// User is a registered account.
//
// Role is stored as its string form ("usuario" or "admin"); authorization code
// works with authz.Role instead of comparing strings.
type User struct {
	ID           int64     `json:"id_usuario"`
	Name         string    `json:"nombre_completo"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"rol"`
	CreatedAt    time.Time `json:"fecha_creacion"`
}
