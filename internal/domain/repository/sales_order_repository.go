package repository

import (
	"github.com/shopspring/decimal"
	"github.com/jortega/stockbook-api/internal/domain/entity"
)

// SalesOrderRepository define el puerto de persistencia para órdenes de venta.
type SalesOrderRepository interface {
	Create(order *entity.SalesOrder) error
	CreateLine(line *entity.SalesOrderLine) error
	GetByID(id string) (*entity.SalesOrder, error)
	GetLinesByOrderID(orderID string) ([]*entity.SalesOrderLine, error)
	// Finalize fija el total acumulado y el estado de cumplimiento de la
	// orden (último paso de la transacción de venta).
	Finalize(orderID string, total decimal.Decimal, status string) error
}
