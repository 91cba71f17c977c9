package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jortega/stockbook-api/internal/application/dto"
	"github.com/jortega/stockbook-api/internal/application/ledger"
	"github.com/jortega/stockbook-api/internal/domain/entity"
)

// LedgerHandler maneja las peticiones HTTP del libro de stock.
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// ApplyEntry godoc
// @Summary      Registrar una entrada manual del libro de stock
// @Description  Compras (delta positivo) y ajustes (cualquier signo). Las
//               ventas entran por POST /api/sales; aquí el tipo sale se rechaza.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyEntryRequest  true  "product_id, delta, kind (purchase|adjustment), note, user_id"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/entries [post]
func (h *LedgerHandler) ApplyEntry(c *fiber.Ctx) error {
	var in dto.ApplyEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	// Las ventas llevan chequeo de disponibilidad y orden asociada; no se
	// aceptan como entrada manual.
	if in.Kind == entity.LedgerKindSale {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "las ventas se registran vía POST /api/sales"})
	}
	entry, err := h.uc.Apply(c.Context(), ledger.ApplyInput{
		ProductID: in.ProductID,
		Delta:     in.Delta,
		Kind:      in.Kind,
		Note:      in.Note,
		UserID:    in.UserID,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerEntryResponse(entry))
}

// Stock godoc
// @Summary      Cantidad actual de un producto y balance del ledger
// @Tags         ledger
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *LedgerHandler) Stock(c *fiber.Ctx) error {
	productID := c.Params("id")
	stock, err := h.uc.CurrentStock(c.Context(), productID)
	if err != nil {
		return respondDomainError(c, err)
	}
	balance, err := h.uc.LedgerBalance(c.Context(), productID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ProductID:     productID,
		StockQuantity: stock,
		LedgerBalance: balance,
		Consistent:    stock == balance,
	})
}

// History godoc
// @Summary      Historial del libro de stock de un producto
// @Tags         ledger
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Fecha inicial (RFC3339)"
// @Param        to      query  string  false  "Fecha final (RFC3339)"
// @Param        limit   query  int     false  "Máximo de entradas (default 50)"
// @Param        offset  query  int     false  "Offset de paginación"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/ledger [get]
func (h *LedgerHandler) History(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida en from"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida en to"})
	}
	entries, err := h.uc.History(c.Context(), c.Params("id"), from, to, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	return c.JSON(out)
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:          e.ID,
		ProductID:   e.ProductID,
		Delta:       e.Delta,
		Kind:        e.Kind,
		ReferenceID: e.ReferenceID,
		Note:        e.Note,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}
