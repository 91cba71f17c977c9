package entity

import "time"

// User representa un usuario del sistema. Solo se usa para estampar el
// user_id en órdenes y entradas de ledger; no hay autenticación en scope.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt; nunca se expone en respuestas
	CreatedAt    time.Time
}
