package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock derivados (nunca se almacenan; se recalculan en cada lectura).
const (
	StockStatusOutOfStock = "OUT_OF_STOCK"
	StockStatusLow        = "LOW_STOCK"
	StockStatusOverstock  = "OVERSTOCK"
	StockStatusNormal     = "NORMAL"
)

// UnidadesValidas unidades de medida aceptadas para productos.
var UnidadesValidas = []string{"PCS", "KG", "LTR", "MTR", "BOX", "PACK"}

// Product representa un producto del catálogo con su stock actual y umbrales.
// StockQuantity solo se modifica procesando transacciones de stock, nunca
// directamente desde peticiones de clientes.
type Product struct {
	ID            string
	Code          string // código único, asignado por el usuario, en mayúsculas
	Barcode       string // opcional, único si existe
	Name          string
	Description   string
	UnitPrice     decimal.Decimal // precio de venta
	CostPrice     decimal.Decimal // precio de costo
	StockQuantity int             // nunca negativo
	MinimumStock  int
	MaximumStock  int // siempre >= MinimumStock
	UnitOfMeasure string
	ExpiryDate    *time.Time // opcional; solo productos perecederos
	IsActive      bool
	CategoryID    string
	SupplierID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StockStatus clasifica una cantidad frente a sus umbrales. Función pura y total;
// el orden de evaluación es contractual: cero, bajo mínimo, sobre máximo, normal.
func StockStatus(quantity, minimum, maximum int) string {
	switch {
	case quantity == 0:
		return StockStatusOutOfStock
	case quantity <= minimum:
		return StockStatusLow
	case quantity > maximum:
		return StockStatusOverstock
	default:
		return StockStatusNormal
	}
}

// StockStatus devuelve el estado derivado del stock actual del producto.
func (p *Product) StockStatus() string {
	return StockStatus(p.StockQuantity, p.MinimumStock, p.MaximumStock)
}

// ProfitMargin margen de ganancia porcentual sobre el costo. 0 si el costo es 0.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return p.UnitPrice.Sub(p.CostPrice).Div(p.CostPrice).Mul(hundred)
}

// StockValue valor total del stock al precio de costo.
func (p *Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}

// IsExpired indica si el producto ya venció. Sin fecha de vencimiento
// nunca se considera vencido. La comparación es por día calendario.
func (p *Product) IsExpired() bool {
	if p.ExpiryDate == nil {
		return false
	}
	return startOfDay(time.Now()).After(startOfDay(*p.ExpiryDate))
}

// DaysUntilExpiry días calendario hasta el vencimiento (negativo si ya
// venció). ok=false cuando el producto no tiene fecha de vencimiento.
func (p *Product) DaysUntilExpiry() (days int, ok bool) {
	if p.ExpiryDate == nil {
		return 0, false
	}
	delta := startOfDay(*p.ExpiryDate).Sub(startOfDay(time.Now()))
	// Redondeo por los días de 23/25 horas en cambios de horario
	return int(math.Round(delta.Hours() / 24)), true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsValidUnit verifica que la unidad de medida esté en el catálogo permitido.
func IsValidUnit(unit string) bool {
	for _, u := range UnidadesValidas {
		if u == unit {
			return true
		}
	}
	return false
}
