// Comando de arranque para entornos locales: aplica el esquema y carga
// datos de demostración (usuario, catálogo y stock inicial vía ledger).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jortega/stockbook-api/internal/application/ledger"
	"github.com/jortega/stockbook-api/internal/domain/entity"
	"github.com/jortega/stockbook-api/internal/infrastructure/postgres"
	"github.com/jortega/stockbook-api/pkg/config"
	"github.com/jortega/stockbook-api/pkg/logger"
)

const schemaPath = "migrations/schema.sql"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", schemaPath).Msg("leer esquema")
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}
	log.Info().Msg("esquema aplicado")

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	ledgerUC := ledger.NewUseCase(txRunner, productRepo, ledgerRepo)

	now := time.Now()

	// Usuario demo (idempotente: si ya existe lo reutilizamos)
	adminEmail := "admin@stockbook.local"
	admin, err := userRepo.GetByEmail(adminEmail)
	if err != nil {
		log.Fatal().Err(err).Msg("consultar usuario demo")
	}
	if admin == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("stockbook123"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash de contraseña")
		}
		admin = &entity.User{
			ID:           uuid.New().String(),
			Name:         "Administrador Demo",
			Email:        adminEmail,
			PasswordHash: string(hash),
			CreatedAt:    now,
		}
		if err := userRepo.Create(admin); err != nil {
			log.Fatal().Err(err).Msg("crear usuario demo")
		}
		log.Info().Str("email", adminEmail).Msg("usuario demo creado")
	}

	// Catálogo demo: reutilizamos lo que ya exista para que el comando sea
	// re-ejecutable sin duplicar filas.
	var category *entity.Category
	categories, err := categoryRepo.List(1, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("consultar categorías")
	}
	if len(categories) > 0 {
		category = categories[0]
	} else {
		category = &entity.Category{
			ID:          uuid.New().String(),
			Name:        "Bebidas",
			Description: "Bebidas y refrescos",
			CreatedAt:   now,
		}
		if err := categoryRepo.Create(category); err != nil {
			log.Fatal().Err(err).Msg("crear categoría demo")
		}
	}

	var supplier *entity.Supplier
	suppliers, err := supplierRepo.List(1, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("consultar proveedores")
	}
	if len(suppliers) > 0 {
		supplier = suppliers[0]
	} else {
		supplier = &entity.Supplier{
			ID:        uuid.New().String(),
			Name:      "Distribuidora Central",
			Contact:   "María Gómez",
			Email:     "ventas@distcentral.example",
			Phone:     "+57 300 555 0101",
			CreatedAt: now,
		}
		if err := supplierRepo.Create(supplier); err != nil {
			log.Fatal().Err(err).Msg("crear proveedor demo")
		}
	}

	type seedProduct struct {
		sku   string
		name  string
		price string
		cost  string
		stock int64
	}
	seedProducts := []seedProduct{
		{"BEB-001", "Agua mineral 600ml", "2500", "1400", 120},
		{"BEB-002", "Jugo de naranja 1L", "7800", "4900", 60},
		{"BEB-003", "Café molido 500g", "18500", "11200", 35},
	}

	for _, sp := range seedProducts {
		existing, err := productRepo.GetBySKU(sp.sku)
		if err != nil {
			log.Fatal().Err(err).Str("sku", sp.sku).Msg("consultar producto demo")
		}
		if existing != nil {
			log.Info().Str("sku", sp.sku).Msg("producto demo ya existe, omitido")
			continue
		}
		product := &entity.Product{
			ID:         uuid.New().String(),
			SKU:        sp.sku,
			Name:       sp.name,
			CategoryID: category.ID,
			SupplierID: supplier.ID,
			Price:      decimal.RequireFromString(sp.price),
			CostPrice:  decimal.RequireFromString(sp.cost),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := productRepo.Create(product); err != nil {
			log.Fatal().Err(err).Str("sku", sp.sku).Msg("crear producto demo")
		}

		// El stock inicial entra por el libro, nunca por UPDATE directo:
		// así la suma de deltas y stock_quantity nacen consistentes.
		if _, err := ledgerUC.Apply(ctx, ledger.ApplyInput{
			ProductID: product.ID,
			Delta:     sp.stock,
			Kind:      entity.LedgerKindPurchase,
			Note:      "Carga inicial de inventario",
			UserID:    admin.ID,
		}); err != nil {
			log.Fatal().Err(err).Str("sku", sp.sku).Msg("cargar stock inicial")
		}
		log.Info().
			Str("sku", sp.sku).
			Int64("stock", sp.stock).
			Msg("producto demo creado")
	}

	fmt.Println("seed completado")
}
