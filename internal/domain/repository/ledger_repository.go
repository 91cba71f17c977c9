package repository

import (
	"time"

	"github.com/jortega/stockbook-api/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia del libro de stock.
// Solo inserción y lectura: las entradas son inmutables.
type LedgerRepository interface {
	Create(entry *entity.LedgerEntry) error
	GetByID(id string) (*entity.LedgerEntry, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
	// SumDeltasByProduct devuelve la suma de deltas comprometidos de un
	// producto (verificación del invariante del ledger).
	SumDeltasByProduct(productID string) (int64, error)
}
