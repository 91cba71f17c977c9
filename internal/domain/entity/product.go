package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo de mercancía.
// StockQuantity es la cantidad actual en bodega y SOLO se modifica vía el
// libro de stock (Apply); nunca directamente por el motor de ventas.
type Product struct {
	ID            string
	SKU           string // código único
	Name          string
	Description   string
	CategoryID    string // vacío si no clasificado
	SupplierID    string // vacío si sin proveedor
	Price         decimal.Decimal // precio de venta
	CostPrice     decimal.Decimal // costo de adquisición
	StockQuantity int64           // cantidad actual; igual a la suma de deltas del ledger
	ReorderLevel  int64           // umbral para reposición
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
