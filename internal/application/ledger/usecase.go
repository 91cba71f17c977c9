package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jortega/stockbook-api/internal/domain"
	"github.com/jortega/stockbook-api/internal/domain/entity"
	"github.com/jortega/stockbook-api/internal/domain/repository"
)

// UseCase es el libro de stock: registro autoritativo de la cantidad actual
// por producto y del historial inmutable de cambios. Cada Apply agrega una
// entrada al ledger Y actualiza products.stock_quantity en la misma
// transacción, de modo que el invariante stock == Σdelta se cumple en cada
// punto de commit.
//
// Apply NO impone stock no negativo: esa política es del caller (el motor de
// ventas la aplica; compras y ajustes entran sin chequeo).
type UseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
}

// NewUseCase construye el libro de stock.
func NewUseCase(txRunner TxRunner, productRepo repository.ProductRepository, ledgerRepo repository.LedgerRepository) *UseCase {
	return &UseCase{txRunner: txRunner, productRepo: productRepo, ledgerRepo: ledgerRepo}
}

// ApplyInput entrada para registrar un cambio de stock.
type ApplyInput struct {
	ProductID   string
	Delta       int64  // distinto de cero
	Kind        string // sale, purchase, adjustment
	ReferenceID string // orden de venta que origina la entrada; vacío si manual
	Note        string
	UserID      string
}

// Validate verifica las restricciones de entrada sin tocar estado.
func (in ApplyInput) Validate() error {
	if in.ProductID == "" || in.Delta == 0 || !entity.ValidLedgerKind(in.Kind) {
		return domain.ErrInvalidInput
	}
	return nil
}

// Apply registra un cambio de stock en su propia transacción: bloquea la fila
// del producto, suma el delta y agrega la entrada de ledger. Commit o
// Rollback completo (TxRunner.Run lo garantiza).
func (uc *UseCase) Apply(ctx context.Context, input ApplyInput) (*entity.LedgerEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	var entry *entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		entry, err = uc.ApplyInTx(ledgerRepo, productRepo,
			input.ProductID, input.Delta, input.Kind, input.ReferenceID, input.Note, input.UserID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyInTx ejecuta el cambio de stock usando los repositorios del caller
// (misma transacción). Bloquea la fila del producto (SELECT FOR UPDATE),
// aplica stock_quantity += delta y persiste la entrada. Si el producto no
// existe retorna ErrNotFound y el caller debe hacer rollback.
func (uc *UseCase) ApplyInTx(
	ledgerRepo repository.LedgerRepository,
	productRepo repository.ProductRepository,
	productID string,
	delta int64,
	kind, referenceID, note, userID string,
	now time.Time,
) (*entity.LedgerEntry, error) {
	product, err := productRepo.GetForUpdate(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := productRepo.AdjustStock(productID, delta); err != nil {
		return nil, err
	}
	entry := &entity.LedgerEntry{
		ID:          uuid.New().String(),
		ProductID:   productID,
		Delta:       delta,
		Kind:        kind,
		ReferenceID: referenceID,
		Note:        note,
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	if err := ledgerRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CurrentStock lee la cantidad actual comprometida de un producto.
func (uc *UseCase) CurrentStock(ctx context.Context, productID string) (int64, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	return product.StockQuantity, nil
}

// LedgerBalance devuelve la suma de deltas comprometidos de un producto.
// Bajo el invariante del ledger debe coincidir con CurrentStock.
func (uc *UseCase) LedgerBalance(ctx context.Context, productID string) (int64, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	return uc.ledgerRepo.SumDeltasByProduct(productID)
}

// History lista las entradas de ledger de un producto (más recientes primero).
func (uc *UseCase) History(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.ledgerRepo.ListByProduct(productID, from, to, limit, offset)
}
