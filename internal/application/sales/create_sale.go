package sales

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jortega/stockbook-api/internal/application/dto"
	"github.com/jortega/stockbook-api/internal/domain"
	"github.com/jortega/stockbook-api/internal/domain/entity"
	"github.com/jortega/stockbook-api/internal/domain/repository"
)

// retryBackoff espera base entre reintentos por conflicto de concurrencia.
const retryBackoff = 25 * time.Millisecond

// CreateSaleUseCase cumple ventas multi-línea contra el libro de stock:
// crea la orden, sus líneas, una entrada de ledger y un decremento de stock
// por línea, todo en UNA transacción. Si cualquier línea falla (sin stock,
// producto inexistente, violación de constraint) no queda NADA persistido.
//
// El chequeo de disponibilidad ocurre dentro de la misma transacción que el
// decremento: un check-then-decrement partido en dos transacciones dejaría
// que dos ventas concurrentes pasaran ambas el chequeo y sobrevendieran.
type CreateSaleUseCase struct {
	txRunner    TxRunner
	stockLedger StockLedger
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.SalesOrderRepository
	maxRetries  int
}

// NewCreateSaleUseCase construye el motor de ventas. maxRetries acota los
// reintentos automáticos ante ErrConflict (serialización/deadlock).
func NewCreateSaleUseCase(
	txRunner TxRunner,
	stockLedger StockLedger,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.SalesOrderRepository,
	maxRetries int,
) *CreateSaleUseCase {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &CreateSaleUseCase{
		txRunner:    txRunner,
		stockLedger: stockLedger,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		maxRetries:  maxRetries,
	}
}

// CreateSale valida la entrada, y ejecuta la venta como unidad de trabajo
// atómica. Solo ErrConflict se reintenta (acotado); el resto de errores se
// reporta al caller tal cual, con el estado durable intacto.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SalesOrderResponse, error) {
	if in.UserID == "" || strings.TrimSpace(in.CustomerName) == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if item.UnitPrice != nil && item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	// Usuario que estampa la orden
	user, err := uc.userRepo.GetByID(in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	// Resolver precios de catálogo para líneas sin precio (lectura fuera de la tx)
	unitPrices := make([]decimal.Decimal, len(in.Items))
	for i, item := range in.Items {
		if item.UnitPrice != nil {
			unitPrices[i] = *item.UnitPrice
			continue
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		unitPrices[i] = product.Price
	}

	// Orden fija de bloqueo: IDs de producto distintos, ascendente. Evita
	// deadlocks entre ventas que tocan los mismos productos en distinto orden.
	lockOrder := distinctSorted(in.Items)

	var resp *dto.SalesOrderResponse
	for attempt := 0; ; attempt++ {
		resp, err = uc.attemptSale(ctx, in, unitPrices, lockOrder)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= uc.maxRetries {
			return nil, err
		}
		// Backoff corto antes de reintentar la venta completa
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt+1)):
		}
	}
}

// attemptSale ejecuta un intento completo de la venta en una transacción.
func (uc *CreateSaleUseCase) attemptSale(
	ctx context.Context,
	in dto.CreateSaleRequest,
	unitPrices []decimal.Decimal,
	lockOrder []string,
) (*dto.SalesOrderResponse, error) {
	now := time.Now()
	orderID := uuid.New().String()
	var order *entity.SalesOrder
	var lines []*entity.SalesOrderLine

	err := uc.txRunner.RunSale(ctx, func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.SalesOrderRepository,
	) error {
		// 1) Cabecera provisional con total 0
		order = &entity.SalesOrder{
			ID:            orderID,
			UserID:        in.UserID,
			CustomerName:  strings.TrimSpace(in.CustomerName),
			TotalAmount:   decimal.Zero,
			PaymentStatus: entity.PaymentStatusPending,
			Status:        entity.OrderStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}

		// 2) Bloquear todas las filas de producto en orden fijo y tomar el
		// stock disponible bajo el lock
		remaining := make(map[string]int64, len(lockOrder))
		for _, productID := range lockOrder {
			product, err := productRepo.GetForUpdate(productID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			remaining[productID] = product.StockQuantity
		}

		// 3) Procesar los ítems en el orden del caller: el primero que falle
		// stock es el que se reporta
		total := decimal.Zero
		for i, item := range in.Items {
			available := remaining[item.ProductID]
			if available < item.Quantity {
				return &domain.InsufficientStockError{
					ProductID: item.ProductID,
					Requested: item.Quantity,
					Available: available,
				}
			}
			line := &entity.SalesOrderLine{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: unitPrices[i],
				CreatedAt: now,
			}
			if err := orderRepo.CreateLine(line); err != nil {
				return err
			}
			if _, err := uc.stockLedger.ApplyInTx(
				ledgerRepo, productRepo,
				item.ProductID, -item.Quantity,
				entity.LedgerKindSale, orderID, "Sale order item", in.UserID,
				now,
			); err != nil {
				return err
			}
			remaining[item.ProductID] = available - item.Quantity
			total = total.Add(unitPrices[i].Mul(decimal.NewFromInt(item.Quantity)))
			lines = append(lines, line)
		}

		// 4) Total acumulado y cierre de la orden
		if err := orderRepo.Finalize(orderID, total, entity.OrderStatusCompleted); err != nil {
			return err
		}
		order.TotalAmount = total
		order.Status = entity.OrderStatusCompleted
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order, lines), nil
}

// GetSale obtiene una orden con sus líneas.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id string) (*dto.SalesOrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.orderRepo.GetLinesByOrderID(id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order, lines), nil
}

// distinctSorted devuelve los IDs de producto únicos, ordenados ascendente.
func distinctSorted(items []dto.SaleItemRequest) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Strings(ids)
	return ids
}

func toOrderResponse(order *entity.SalesOrder, lines []*entity.SalesOrderLine) *dto.SalesOrderResponse {
	resp := &dto.SalesOrderResponse{
		ID:            order.ID,
		UserID:        order.UserID,
		CustomerName:  order.CustomerName,
		TotalAmount:   order.TotalAmount,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt,
		Lines:         make([]dto.SaleLineResponse, 0, len(lines)),
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)),
		})
	}
	return resp
}
