package entity

import "time"

// Category representa una categoría del catálogo (solo lectura para el core).
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
