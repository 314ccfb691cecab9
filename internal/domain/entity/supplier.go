package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier representa un proveedor de productos.
type Supplier struct {
	ID             string
	Name           string
	Code           string // código único
	ContactPhone   string
	ContactEmail   string
	ContactAddress string
	CreditLimit    decimal.Decimal
	PaymentTerms   int // días
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
