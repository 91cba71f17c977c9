package ledger

import (
	"context"

	"github.com/jortega/stockbook-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la entrada de ledger y la
// actualización de stock nunca se observen por separado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
	) error) error
}
