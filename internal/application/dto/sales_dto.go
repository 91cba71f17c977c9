package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest una línea pedida: producto, cantidad y precio unitario.
// UnitPrice nil usa el precio de catálogo del producto; cero explícito se
// respeta tal cual.
type SaleItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	UserID       string            `json:"user_id"`
	CustomerName string            `json:"customer_name"`
	Items        []SaleItemRequest `json:"items"`
}

// SaleLineResponse línea de una orden en respuestas.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SalesOrderResponse cabecera + líneas de una orden de venta.
type SalesOrderResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	CustomerName  string             `json:"customer_name"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentStatus string             `json:"payment_status"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	Lines         []SaleLineResponse `json:"lines"`
}
