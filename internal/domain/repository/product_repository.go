package repository

import "github.com/jortega/stockbook-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetForUpdate y AdjustStock solo tienen sentido dentro de una transacción.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) y la
	// devuelve; nil si no existe.
	GetForUpdate(id string) (*entity.Product, error)
	// AdjustStock aplica stock_quantity += delta sobre la fila del producto.
	AdjustStock(id string, delta int64) error
}
