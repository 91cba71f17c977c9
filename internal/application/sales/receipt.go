package sales

import (
	"context"

	"github.com/jortega/stockbook-api/internal/domain"
	"github.com/jortega/stockbook-api/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una orden de venta confirmada.
type ReceiptUseCase struct {
	orderRepo   repository.SalesOrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	generator   ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	orderRepo repository.SalesOrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	generator ReceiptGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		generator:   generator,
	}
}

// GenerateReceipt arma las líneas con datos de catálogo y delega en el
// generador PDF. Devuelve los bytes del documento.
func (uc *ReceiptUseCase) GenerateReceipt(ctx context.Context, orderID string) ([]byte, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.orderRepo.GetLinesByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	receiptLines := make([]ReceiptLine, 0, len(lines))
	for _, line := range lines {
		rl := ReceiptLine{Line: line}
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product != nil {
			rl.ProductName = product.Name
			rl.SKU = product.SKU
		}
		receiptLines = append(receiptLines, rl)
	}
	user, err := uc.userRepo.GetByID(order.UserID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateReceiptPDF(ctx, order, user, receiptLines)
}
