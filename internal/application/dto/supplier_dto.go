package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=100"`
	Code           string          `json:"code" validate:"required,min=2,max=20"`
	ContactPhone   string          `json:"contact_phone"`
	ContactEmail   string          `json:"contact_email" validate:"omitempty,email"`
	ContactAddress string          `json:"contact_address"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	PaymentTerms   int             `json:"payment_terms"`
}

// UpdateSupplierRequest entrada para actualizar un proveedor.
type UpdateSupplierRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=2,max=100"`
	ContactPhone   *string          `json:"contact_phone"`
	ContactEmail   *string          `json:"contact_email" validate:"omitempty,email"`
	ContactAddress *string          `json:"contact_address"`
	CreditLimit    *decimal.Decimal `json:"credit_limit"`
	PaymentTerms   *int             `json:"payment_terms"`
	IsActive       *bool            `json:"is_active"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Code           string          `json:"code"`
	ContactPhone   string          `json:"contact_phone,omitempty"`
	ContactEmail   string          `json:"contact_email,omitempty"`
	ContactAddress string          `json:"contact_address,omitempty"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	PaymentTerms   int             `json:"payment_terms"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
