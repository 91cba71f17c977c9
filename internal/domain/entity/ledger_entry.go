package entity

import "time"

// Tipos de transacción del libro de stock.
const (
	LedgerKindSale       = "sale"       // venta: delta negativo
	LedgerKindPurchase   = "purchase"   // compra/reabastecimiento: delta positivo
	LedgerKindAdjustment = "adjustment" // ajuste manual: cualquier signo
)

// ValidLedgerKind indica si kind es uno de los tres tipos soportados.
func ValidLedgerKind(kind string) bool {
	switch kind {
	case LedgerKindSale, LedgerKindPurchase, LedgerKindAdjustment:
		return true
	}
	return false
}

// LedgerEntry es un registro inmutable del libro de stock: un cambio de
// cantidad con su causa. Nunca se actualiza ni se borra después de creado.
// Invariante: para cada producto, stock_quantity == suma de Delta de todas
// sus entradas al cierre de cada transacción.
type LedgerEntry struct {
	ID          string
	ProductID   string
	Delta       int64  // negativo en ventas, positivo en compras, cualquier signo en ajustes
	Kind        string // ver constantes LedgerKind*
	ReferenceID string // ID de la orden de venta que originó la entrada; vacío si manual
	Note        string
	CreatedBy   string // UserID
	CreatedAt   time.Time
}
