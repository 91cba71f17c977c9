package dto

import "time"

// ApplyEntryRequest body para POST /api/ledger/entries (compras y ajustes
// manuales; las ventas entran por POST /api/sales).
type ApplyEntryRequest struct {
	ProductID string `json:"product_id"`
	Delta     int64  `json:"delta"`
	Kind      string `json:"kind"` // purchase, adjustment
	Note      string `json:"note,omitempty"`
	UserID    string `json:"user_id"`
}

// LedgerEntryResponse una entrada del libro de stock.
type LedgerEntryResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Delta       int64     `json:"delta"`
	Kind        string    `json:"kind"`
	ReferenceID string    `json:"reference_id,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StockResponse cantidad actual de un producto junto con el balance del
// ledger; bajo el invariante ambos valores coinciden.
type StockResponse struct {
	ProductID     string `json:"product_id"`
	StockQuantity int64  `json:"stock_quantity"`
	LedgerBalance int64  `json:"ledger_balance"`
	Consistent    bool   `json:"consistent"`
}
