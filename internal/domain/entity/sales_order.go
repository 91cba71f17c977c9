package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una orden de venta.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Estados de cumplimiento de una orden de venta.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// SalesOrder representa la cabecera de una venta multi-línea. Se crea una
// sola vez, en la misma transacción que sus líneas y sus entradas de ledger.
// TotalAmount es derivado: suma de quantity*unit_price de sus líneas.
type SalesOrder struct {
	ID            string
	UserID        string // usuario que registró la venta
	CustomerName  string
	TotalAmount   decimal.Decimal
	PaymentStatus string // ver constantes PaymentStatus*
	Status        string // ver constantes OrderStatus*
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SalesOrderLine representa una línea de una orden de venta. Se crea junto
// con la cabecera y no se modifica después; las correcciones van por nuevas
// órdenes o ajustes de ledger, no por mutación.
type SalesOrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int64           // entero positivo
	UnitPrice decimal.Decimal // no negativo
	CreatedAt time.Time
}
