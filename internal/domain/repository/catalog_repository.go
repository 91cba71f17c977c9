package repository

import "github.com/jortega/stockbook-api/internal/domain/entity"

// CategoryRepository acceso a categorías del catálogo. El core solo lee;
// Create existe para la carga de datos (seed).
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id string) (*entity.Category, error)
	List(limit, offset int) ([]*entity.Category, error)
}

// SupplierRepository acceso a proveedores del catálogo. El core solo lee;
// Create existe para la carga de datos (seed).
type SupplierRepository interface {
	Create(supplier *entity.Supplier) error
	GetByID(id string) (*entity.Supplier, error)
	List(limit, offset int) ([]*entity.Supplier, error)
}
