package sales

import (
	"context"
	"time"

	"github.com/jortega/stockbook-api/internal/domain/entity"
	"github.com/jortega/stockbook-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de ledger, productos y órdenes. Es la unidad de trabajo del
// motor de ventas: o se confirma todo (orden, líneas, entradas de ledger,
// decrementos de stock) o nada.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.SalesOrderRepository,
	) error) error
}

// StockLedger interfaz para integrar el motor de ventas con el libro de
// stock. ApplyInTx registra el cambio usando los repositorios del caller
// (misma transacción); si retorna error el caller debe hacer rollback.
type StockLedger interface {
	ApplyInTx(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		productID string,
		delta int64,
		kind, referenceID, note, userID string,
		now time.Time,
	) (*entity.LedgerEntry, error)
}

// ReceiptGenerator genera el PDF del comprobante de una orden de venta.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, order *entity.SalesOrder, user *entity.User, lines []ReceiptLine) ([]byte, error)
}

// ReceiptLine línea de la orden enriquecida con datos de catálogo para el PDF.
type ReceiptLine struct {
	Line        *entity.SalesOrderLine
	ProductName string
	SKU         string
}
