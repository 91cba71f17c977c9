package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/stockbook-api/internal/application/dto"
	"github.com/jortega/stockbook-api/internal/application/ledger"
	"github.com/jortega/stockbook-api/internal/domain"
	"github.com/jortega/stockbook-api/internal/domain/entity"
	"github.com/jortega/stockbook-api/internal/domain/repository"
)

// memStore estado compartido en memoria para las pruebas del motor de ventas.
type memStore struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	entries  []*entity.LedgerEntry
	orders   map[string]*entity.SalesOrder
	lines    map[string][]*entity.SalesOrderLine
	users    map[string]*entity.User
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*entity.Product),
		orders:   make(map[string]*entity.SalesOrder),
		lines:    make(map[string][]*entity.SalesOrderLine),
		users:    make(map[string]*entity.User),
	}
}

func (s *memStore) addUser(id string) {
	s.users[id] = &entity.User{ID: id, Name: "Vendedor " + id, Email: id + "@test.local"}
}

func (s *memStore) addProduct(id string, stock int64, price string) {
	s.products[id] = &entity.Product{
		ID:            id,
		SKU:           "SKU-" + id,
		Name:          "Producto " + id,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for k, v := range s.products {
		cp := *v
		snap.products[k] = &cp
	}
	snap.entries = append([]*entity.LedgerEntry(nil), s.entries...)
	for k, v := range s.orders {
		cp := *v
		snap.orders[k] = &cp
	}
	for k, v := range s.lines {
		snap.lines[k] = append([]*entity.SalesOrderLine(nil), v...)
	}
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.entries = snap.entries
	s.orders = snap.orders
	s.lines = snap.lines
}

// lock toma el mutex del store salvo que el repo esté atado a una
// transacción (el runner ya lo sostiene). Devuelve el unlock a diferir.
func (s *memStore) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memProductRepo struct {
	s    *memStore
	inTx bool
}

func (r *memProductRepo) Create(p *entity.Product) error {
	defer r.s.lock(r.inTx)()
	r.s.products[p.ID] = p
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	var out []*entity.Product
	for _, p := range r.s.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *memProductRepo) AdjustStock(id string, delta int64) error {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.StockQuantity += delta
	return nil
}

type memLedgerRepo struct {
	s    *memStore
	inTx bool
}

func (r *memLedgerRepo) Create(e *entity.LedgerEntry) error {
	defer r.s.lock(r.inTx)()
	cp := *e
	r.s.entries = append(r.s.entries, &cp)
	return nil
}

func (r *memLedgerRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	defer r.s.lock(r.inTx)()
	for _, e := range r.s.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memLedgerRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	defer r.s.lock(r.inTx)()
	var out []*entity.LedgerEntry
	for _, e := range r.s.entries {
		if e.ProductID == productID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLedgerRepo) SumDeltasByProduct(productID string) (int64, error) {
	defer r.s.lock(r.inTx)()
	var sum int64
	for _, e := range r.s.entries {
		if e.ProductID == productID {
			sum += e.Delta
		}
	}
	return sum, nil
}

type memOrderRepo struct {
	s    *memStore
	inTx bool
}

func (r *memOrderRepo) Create(o *entity.SalesOrder) error {
	defer r.s.lock(r.inTx)()
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) CreateLine(l *entity.SalesOrderLine) error {
	defer r.s.lock(r.inTx)()
	cp := *l
	r.s.lines[l.OrderID] = append(r.s.lines[l.OrderID], &cp)
	return nil
}

func (r *memOrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	defer r.s.lock(r.inTx)()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) GetLinesByOrderID(orderID string) ([]*entity.SalesOrderLine, error) {
	defer r.s.lock(r.inTx)()
	return append([]*entity.SalesOrderLine(nil), r.s.lines[orderID]...), nil
}

func (r *memOrderRepo) Finalize(orderID string, total decimal.Decimal, status string) error {
	defer r.s.lock(r.inTx)()
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.TotalAmount = total
	o.Status = status
	return nil
}

type memUserRepo struct {
	s    *memStore
	inTx bool
}

func (r *memUserRepo) Create(u *entity.User) error {
	defer r.s.lock(r.inTx)()
	r.s.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	defer r.s.lock(r.inTx)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(email string) (*entity.User, error) {
	defer r.s.lock(r.inTx)()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// memTxRunner serializa transacciones con un mutex (como lo hace FOR UPDATE
// sobre las mismas filas) y restaura el estado si la función falla (rollback).
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) RunSale(ctx context.Context, fn func(
	repository.LedgerRepository,
	repository.ProductRepository,
	repository.SalesOrderRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	snap := t.s.snapshot()
	err := fn(
		&memLedgerRepo{s: t.s, inTx: true},
		&memProductRepo{s: t.s, inTx: true},
		&memOrderRepo{s: t.s, inTx: true},
	)
	if err != nil {
		t.s.restore(snap)
	}
	return err
}

// conflictTxRunner falla con ErrConflict las primeras N ejecuciones y luego
// delega en el runner real. Simula fallos de serialización transitorios.
type conflictTxRunner struct {
	inner     TxRunner
	conflicts int
	calls     int
}

func (t *conflictTxRunner) RunSale(ctx context.Context, fn func(
	repository.LedgerRepository,
	repository.ProductRepository,
	repository.SalesOrderRepository,
) error) error {
	t.calls++
	if t.calls <= t.conflicts {
		return domain.ErrConflict
	}
	return t.inner.RunSale(ctx, fn)
}

func newSaleUseCase(s *memStore, runner TxRunner, maxRetries int) *CreateSaleUseCase {
	if runner == nil {
		runner = &memTxRunner{s: s}
	}
	stockLedger := ledger.NewUseCase(nil, &memProductRepo{s: s}, &memLedgerRepo{s: s})
	return NewCreateSaleUseCase(
		runner, stockLedger,
		&memUserRepo{s: s}, &memProductRepo{s: s}, &memOrderRepo{s: s},
		maxRetries,
	)
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCreateSaleValidacion(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 10, "9.99")
	uc := newSaleUseCase(s, nil, 3)

	cases := []struct {
		name string
		in   dto.CreateSaleRequest
	}{
		{"sin usuario", dto.CreateSaleRequest{CustomerName: "Ana", Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}}}},
		{"sin cliente", dto.CreateSaleRequest{UserID: "u1", CustomerName: "  ", Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}}}},
		{"sin ítems", dto.CreateSaleRequest{UserID: "u1", CustomerName: "Ana"}},
		{"cantidad cero", dto.CreateSaleRequest{UserID: "u1", CustomerName: "Ana", Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 0}}}},
		{"cantidad negativa", dto.CreateSaleRequest{UserID: "u1", CustomerName: "Ana", Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: -2}}}},
		{"precio negativo", dto.CreateSaleRequest{UserID: "u1", CustomerName: "Ana", Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1, UnitPrice: price("-1")}}}},
		{"ítem sin producto", dto.CreateSaleRequest{UserID: "u1", CustomerName: "Ana", Items: []dto.SaleItemRequest{{Quantity: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateSale(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, s.orders)
	assert.Empty(t, s.entries)
	assert.Equal(t, int64(10), s.products["p1"].StockQuantity)
}

func TestCreateSaleUsuarioInexistente(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", 10, "9.99")
	uc := newSaleUseCase(s, nil, 3)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "fantasma",
		CustomerName: "Ana",
		Items:        []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, s.orders)
}

func TestCreateSaleExitosa(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 5, "9.99")
	uc := newSaleUseCase(s, nil, 3)

	resp, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana Torres",
		Items:        []dto.SaleItemRequest{{ProductID: "p1", Quantity: 3}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "Ana Torres", resp.CustomerName)
	assert.Equal(t, entity.OrderStatusCompleted, resp.Status)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("29.97")),
		"total esperado 29.97, fue %s", resp.TotalAmount)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(3), resp.Lines[0].Quantity)
	assert.True(t, resp.Lines[0].Subtotal.Equal(decimal.RequireFromString("29.97")))

	// Stock decrementado y ledger consistente
	assert.Equal(t, int64(2), s.products["p1"].StockQuantity)
	require.Len(t, s.entries, 1)
	entry := s.entries[0]
	assert.Equal(t, int64(-3), entry.Delta)
	assert.Equal(t, entity.LedgerKindSale, entry.Kind)
	assert.Equal(t, resp.ID, entry.ReferenceID)
	assert.Equal(t, "u1", entry.CreatedBy)
}

func TestCreateSaleUsaPrecioDeCatalogo(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 10, "4.50")
	uc := newSaleUseCase(s, nil, 3)

	resp, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: 2},                          // precio de catálogo
			{ProductID: "p1", Quantity: 1, UnitPrice: price("0")},   // cero explícito se respeta
			{ProductID: "p1", Quantity: 1, UnitPrice: price("3.00")}, // precio negociado
		},
	})
	require.NoError(t, err)
	// 2*4.50 + 1*0 + 1*3.00 = 12.00
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("12.00")),
		"total esperado 12.00, fue %s", resp.TotalAmount)
	assert.Equal(t, int64(6), s.products["p1"].StockQuantity)
}

func TestCreateSaleStockInsuficiente(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 2, "9.99")
	uc := newSaleUseCase(s, nil, 3)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items:        []dto.SaleItemRequest{{ProductID: "p1", Quantity: 5}},
	})
	require.Error(t, err)

	var insuff *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuff)
	assert.Equal(t, "p1", insuff.ProductID)
	assert.Equal(t, int64(5), insuff.Requested)
	assert.Equal(t, int64(2), insuff.Available)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada persistido: ni orden, ni líneas, ni ledger, ni cambio de stock
	assert.Empty(t, s.orders)
	assert.Empty(t, s.lines)
	assert.Empty(t, s.entries)
	assert.Equal(t, int64(2), s.products["p1"].StockQuantity)
}

func TestCreateSaleMultiItemTodoONada(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 10, "5.00")
	s.addProduct("p2", 1, "7.00")
	uc := newSaleUseCase(s, nil, 3)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: 4}, // alcanzaría
			{ProductID: "p2", Quantity: 3}, // insuficiente
		},
	})
	var insuff *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuff)
	assert.Equal(t, "p2", insuff.ProductID)

	// La línea de p1 que sí alcanzaba tampoco quedó persistida
	assert.Empty(t, s.orders)
	assert.Empty(t, s.entries)
	assert.Equal(t, int64(10), s.products["p1"].StockQuantity)
	assert.Equal(t, int64(1), s.products["p2"].StockQuantity)
}

func TestCreateSaleMismoProductoEnVariasLineas(t *testing.T) {
	// Dos líneas del mismo producto compiten por el mismo stock dentro de
	// la orden: la disponibilidad se consume línea a línea.
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 5, "2.00")
	uc := newSaleUseCase(s, nil, 3)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p1", Quantity: 3},
		},
	})
	var insuff *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuff)
	assert.Equal(t, int64(3), insuff.Requested)
	assert.Equal(t, int64(2), insuff.Available)
	assert.Equal(t, int64(5), s.products["p1"].StockQuantity)

	// Con stock exacto las dos líneas pasan
	resp, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p1", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Lines, 2)
	assert.Equal(t, int64(0), s.products["p1"].StockQuantity)
}

func TestCreateSaleConcurrenteNoSobrevende(t *testing.T) {
	// Dos ventas concurrentes de 6 unidades sobre stock 10: exactamente una
	// debe pasar y la otra fallar con stock insuficiente.
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 10, "1.00")
	uc := newSaleUseCase(s, nil, 3)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = uc.CreateSale(context.Background(), dto.CreateSaleRequest{
				UserID:       "u1",
				CustomerName: "Cliente concurrente",
				Items:        []dto.SaleItemRequest{{ProductID: "p1", Quantity: 6}},
			})
		}(i)
	}
	wg.Wait()

	var okCount, insuffCount int
	for _, err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, domain.ErrInsufficientStock):
			insuffCount++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, okCount, "exactamente una venta debe completarse")
	assert.Equal(t, 1, insuffCount, "la otra debe fallar por stock")

	// Stock final y ledger consistentes con UNA sola venta
	assert.Equal(t, int64(4), s.products["p1"].StockQuantity)
	var sum int64
	for _, e := range s.entries {
		sum += e.Delta
	}
	assert.Equal(t, int64(-6), sum)
	assert.Len(t, s.orders, 1)
}

func TestCreateSaleReintentaConflictos(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 10, "1.00")

	runner := &conflictTxRunner{inner: &memTxRunner{s: s}, conflicts: 2}
	uc := newSaleUseCase(s, runner, 3)

	resp, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items:        []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, resp.Status)
	assert.Equal(t, 3, runner.calls, "dos conflictos más el intento exitoso")
	assert.Equal(t, int64(9), s.products["p1"].StockQuantity)
}

func TestCreateSaleAgotaReintentos(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 10, "1.00")

	runner := &conflictTxRunner{inner: &memTxRunner{s: s}, conflicts: 10}
	uc := newSaleUseCase(s, runner, 2)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items:        []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, runner.calls, "intento inicial más dos reintentos")
	assert.Empty(t, s.orders)
	assert.Equal(t, int64(10), s.products["p1"].StockQuantity)
}

func TestCreateSaleProductoInexistente(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	uc := newSaleUseCase(s, nil, 3)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items:        []dto.SaleItemRequest{{ProductID: "fantasma", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, s.orders)
}

func TestGetSale(t *testing.T) {
	s := newMemStore()
	s.addUser("u1")
	s.addProduct("p1", 10, "3.00")
	uc := newSaleUseCase(s, nil, 3)
	ctx := context.Background()

	created, err := uc.CreateSale(ctx, dto.CreateSaleRequest{
		UserID:       "u1",
		CustomerName: "Ana",
		Items:        []dto.SaleItemRequest{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	got, err := uc.GetSale(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.TotalAmount.Equal(created.TotalAmount))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "p1", got.Lines[0].ProductID)

	_, err = uc.GetSale(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
