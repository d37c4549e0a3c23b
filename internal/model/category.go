package model

// CategoryState is the lifecycle state of a category.
type CategoryState string

const (
	EstadoActivo   CategoryState = "activo"
	EstadoInactivo CategoryState = "inactivo"
)

func (s CategoryState) Valid() bool {
	return s == EstadoActivo || s == EstadoInactivo
}

// Category is a taxonomy node. Categories have no owner.
type Category struct {
	ID          int64         `json:"id"`
	Name        string        `json:"nombre"`
	Description string        `json:"descripcion"`
	State       CategoryState `json:"estado"`
}
