package entity

import "time"

// Supplier representa un proveedor del catálogo (solo lectura para el core).
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	Email     string
	Phone     string
	CreatedAt time.Time
}
