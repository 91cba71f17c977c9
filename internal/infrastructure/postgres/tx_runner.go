package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jortega/stockbook-api/internal/application/ledger"
	"github.com/jortega/stockbook-api/internal/application/sales"
	"github.com/jortega/stockbook-api/internal/domain"
	"github.com/jortega/stockbook-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner and sales.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Fallos de
// serialización y deadlocks se traducen a domain.ErrConflict para que el
// caller pueda reintentar la unidad de trabajo completa.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con repos de ledger y productos, ejecuta fn y
// hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ledgerRepo := NewLedgerRepository(tx)
	productRepo := NewProductRepository(tx)

	if err := fn(ledgerRepo, productRepo); err != nil {
		return translateConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translateConflict(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// RunSale inicia una transacción con repos de ledger, productos y órdenes
// (para CreateSale).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.SalesOrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ledgerRepo := NewLedgerRepository(tx)
	productRepo := NewProductRepository(tx)
	orderRepo := NewSalesOrderRepository(tx)

	if err := fn(ledgerRepo, productRepo, orderRepo); err != nil {
		return translateConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translateConflict(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// translateConflict mapea errores pg de serialización/deadlock a ErrConflict.
func translateConflict(err error) error {
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}
