package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/alfamart-stock-api/internal/application/dto"
	"github.com/jhoicas/alfamart-stock-api/internal/application/inventory"
	"github.com/jhoicas/alfamart-stock-api/internal/domain"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
)

// TransactionHandler maneja las peticiones HTTP de transacciones de stock.
type TransactionHandler struct {
	uc *inventory.TransactionUseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *inventory.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// Create godoc
// @Summary      Crear transacción de stock
// @Description  Crea una transacción PENDING. Con auto_process=true se crea y
//               procesa en la misma operación (atómico).
// @Tags         stock-transactions
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "reference_number, transaction_type, product_id, quantity, unit_cost (STOCK_IN), auto_process"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos: cantidad positiva, tipo soportado y unit_cost en STOCK_IN"})
		case domain.ErrDuplicate:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "reference_number ya existe"})
		case domain.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		case domain.ErrInsufficientStock:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Process godoc
// @Summary      Procesar transacción de stock
// @Description  Aplica la transacción al stock del producto exactamente una vez.
// @Tags         stock-transactions
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.ProcessTransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id}/process [post]
func (h *TransactionHandler) Process(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.uc.Process(c.Context(), id)
	if err != nil {
		switch err {
		case domain.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
		case domain.ErrAlreadyProcessed:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_PROCESSED", Message: "la transacción ya fue procesada"})
		case domain.ErrInsufficientStock:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente; la transacción sigue PENDING"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener transacción por ID
// @Tags         stock-transactions
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar transacciones de stock
// @Tags         stock-transactions
// @Produce      json
// @Param        product_id      query  string  false  "Filtrar por producto"
// @Param        transaction_type query  string false  "STOCK_IN, STOCK_OUT o ADJUSTMENT"
// @Param        processed_only  query  bool    false  "Solo procesadas"
// @Param        start_date      query  string  false  "YYYY-MM-DD"
// @Param        end_date        query  string  false  "YYYY-MM-DD"
// @Param        limit           query  int     false  "Tamaño de página"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, usar YYYY-MM-DD"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	out, err := h.uc.List(filter, page)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "transaction_type no soportado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar transacción PENDING
// @Description  Solo notes, processed_by y unit_cost; una transacción procesada es inmutable.
// @Tags         stock-transactions
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción"
// @Param        body  body  dto.UpdateTransactionRequest  true  "Campos mutables"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id} [put]
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		switch err {
		case domain.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
		case domain.ErrAlreadyProcessed:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_PROCESSED", Message: "no se puede modificar una transacción procesada"})
		case domain.ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar transacción PENDING
// @Tags         stock-transactions
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	err := h.uc.Delete(c.Params("id"))
	if err != nil {
		switch err {
		case domain.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
		case domain.ErrAlreadyProcessed:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_PROCESSED", Message: "no se puede eliminar una transacción procesada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "transacción eliminada"})
}

// Types godoc
// @Summary      Tipos de transacción soportados
// @Tags         stock-transactions
// @Produce      json
// @Success      200  {array}  string
// @Router       /api/stock-transactions/types [get]
func (h *TransactionHandler) Types(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": entity.TransactionTypes})
}

// Summary godoc
// @Summary      Resumen de transacciones procesadas por tipo
// @Tags         stock-transactions
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.TransactionSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/summary [get]
func (h *TransactionHandler) Summary(c *fiber.Ctx) error {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, usar YYYY-MM-DD"})
	}
	out, err := h.uc.Summary(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// parseTransactionFilter arma el filtro desde query params. end_date se
// extiende a 23:59:59 para incluir el día completo.
func parseTransactionFilter(c *fiber.Ctx) (repository.TransactionFilter, error) {
	filter := repository.TransactionFilter{
		ProductID:     c.Query("product_id"),
		Type:          c.Query("transaction_type"),
		ProcessedOnly: c.QueryBool("processed_only"),
	}
	if v := c.Query("start_date"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if v := c.Query("end_date"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		to = to.Add(24*time.Hour - time.Second)
		filter.To = &to
	}
	return filter, nil
}
