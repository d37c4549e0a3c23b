package model

import "time"

// Visibility controls who may read a collection.
type Visibility string

const (
	VisibilityPublica Visibility = "publica"
	VisibilityPrivada Visibility = "privada"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	return v == VisibilityPublica || v == VisibilityPrivada
}

// Collection is a named, visibility-scoped grouping of snippets.
type Collection struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"usuario_id"`
	Name        string     `json:"nombre"`
	Description *string    `json:"descripcion"`
	Visibility  Visibility `json:"visibilidad"`
}

// CollectionMembership is a collection that contains a given snippet, with the
// time the snippet was added to it.
type CollectionMembership struct {
	Collection
	AddedAt time.Time `json:"fecha_agregado"`
}
