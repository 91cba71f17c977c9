package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jortega/stockbook-api/internal/application/ledger"
	"github.com/jortega/stockbook-api/internal/application/sales"
	"github.com/jortega/stockbook-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC  *usecase.CatalogUseCase
	UserUC     *usecase.UserUseCase
	LedgerUC   *ledger.UseCase
	CreateSale *sales.CreateSaleUseCase
	Receipt    *sales.ReceiptUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Usuarios (identidad para estampar user_id en órdenes)
	users := api.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)

	// Catálogo (solo lectura)
	productHandler := NewProductHandler(deps.CatalogUC)
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/stock", ledgerHandler.Stock)
	products.Get("/:id/ledger", ledgerHandler.History)
	api.Get("/categories", productHandler.ListCategories)
	api.Get("/suppliers", productHandler.ListSuppliers)

	// Libro de stock (entradas manuales: compras y ajustes)
	ledgerGroup := api.Group("/ledger")
	ledgerGroup.Post("/entries", ledgerHandler.ApplyEntry)

	// Ventas
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.Receipt)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)
}
