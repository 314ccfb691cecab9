package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicia en 0
// y solo cambia procesando transacciones de stock.
type CreateProductRequest struct {
	Code          string          `json:"code" validate:"required,min=2,max=50"`
	Barcode       string          `json:"barcode" validate:"omitempty,min=8"`
	Name          string          `json:"name" validate:"required,min=2,max=200"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	MinimumStock  int             `json:"minimum_stock"`
	MaximumStock  int             `json:"maximum_stock"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	CategoryID    string          `json:"category_id" validate:"required"`
	SupplierID    string          `json:"supplier_id" validate:"required"`
}

// UpdateProductRequest entrada para actualizar un producto.
// No incluye stock_quantity: el stock solo se modifica vía transacciones.
type UpdateProductRequest struct {
	Barcode       *string          `json:"barcode"`
	Name          *string          `json:"name" validate:"omitempty,min=2,max=200"`
	Description   *string          `json:"description"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	MinimumStock  *int             `json:"minimum_stock"`
	MaximumStock  *int             `json:"maximum_stock"`
	UnitOfMeasure *string          `json:"unit_of_measure"`
	ExpiryDate    *time.Time       `json:"expiry_date"`
	CategoryID    *string          `json:"category_id"`
	SupplierID    *string          `json:"supplier_id"`
	IsActive      *bool            `json:"is_active"`
}

// ProductResponse salida de un producto. StockStatus, ProfitMargin,
// StockValue, IsExpired y DaysUntilExpiry son derivados: se recalculan en
// cada lectura, nunca se almacenan.
type ProductResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Barcode         string          `json:"barcode,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	StockQuantity   int             `json:"stock_quantity"`
	MinimumStock    int             `json:"minimum_stock"`
	MaximumStock    int             `json:"maximum_stock"`
	UnitOfMeasure   string          `json:"unit_of_measure"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	IsActive        bool            `json:"is_active"`
	CategoryID      string          `json:"category_id"`
	SupplierID      string          `json:"supplier_id"`
	StockStatus     string          `json:"stock_status"`
	ProfitMargin    decimal.Decimal `json:"profit_margin"`
	StockValue      decimal.Decimal `json:"stock_value"`
	IsExpired       bool            `json:"is_expired"`
	DaysUntilExpiry *int            `json:"days_until_expiry,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
