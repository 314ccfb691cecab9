package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransactionRequest entrada para crear una transacción de stock.
// unit_cost es obligatorio (y >= 0) para STOCK_IN; se ignora en el resto.
// Con auto_process=true la transacción se crea y procesa en la misma
// operación: nunca es observable externamente como PENDING.
type CreateTransactionRequest struct {
	ReferenceNumber string           `json:"reference_number" validate:"required,min=3,max=50"`
	Type            string           `json:"transaction_type" validate:"required"`
	ProductID       string           `json:"product_id" validate:"required"`
	Quantity        int              `json:"quantity" validate:"required,gt=0"`
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	Notes           string           `json:"notes"`
	ProcessedBy     string           `json:"processed_by"`
	AutoProcess     bool             `json:"auto_process"`
}

// UpdateTransactionRequest entrada para actualizar una transacción PENDING.
// Una transacción procesada es inmutable (409).
type UpdateTransactionRequest struct {
	Notes       *string          `json:"notes"`
	ProcessedBy *string          `json:"processed_by"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
}

// TransactionResponse salida de una transacción de stock.
type TransactionResponse struct {
	ID              string           `json:"id"`
	ReferenceNumber string           `json:"reference_number"`
	Type            string           `json:"transaction_type"`
	ProductID       string           `json:"product_id"`
	Quantity        int              `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
	Notes           string           `json:"notes,omitempty"`
	ProcessedBy     string           `json:"processed_by,omitempty"`
	IsProcessed     bool             `json:"is_processed"`
	Product         *ProductBrief    `json:"product,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ProductBrief resumen del producto asociado a una transacción.
type ProductBrief struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
}

// ProcessTransactionResponse salida del procesamiento explícito: incluye el
// cambio de stock aplicado al producto.
type ProcessTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	StockChange StockChange         `json:"stock_change"`
}

// StockChange stock del producto antes y después de procesar.
type StockChange struct {
	OldStock int `json:"old_stock"`
	NewStock int `json:"new_stock"`
	Change   int `json:"change"`
}

// TransactionListResponse lista paginada de transacciones.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// TransactionSummaryResponse agregados de transacciones procesadas por tipo.
type TransactionSummaryResponse struct {
	TotalTransactions    int             `json:"total_transactions"`
	StockInCount         int             `json:"stock_in_count"`
	StockOutCount        int             `json:"stock_out_count"`
	AdjustmentCount      int             `json:"adjustment_count"`
	TotalStockInValue    decimal.Decimal `json:"total_stock_in_value"`
	TotalStockOutValue   decimal.Decimal `json:"total_stock_out_value"`
	TotalAdjustmentValue decimal.Decimal `json:"total_adjustment_value"`
}
