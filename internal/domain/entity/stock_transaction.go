package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de stock. Variante etiquetada cerrada: la lógica de
// aplicación vive en un único switch del caso de uso, no en subtipos.
//
// CONTRATO ASIMÉTRICO: en STOCK_IN y STOCK_OUT Quantity es un delta; en
// ADJUSTMENT Quantity es el valor ABSOLUTO al que queda el stock (no un
// delta). Pasar un delta a un ADJUSTMENT pisa el stock real del producto.
const (
	TransactionTypeStockIn    = "STOCK_IN"
	TransactionTypeStockOut   = "STOCK_OUT"
	TransactionTypeAdjustment = "ADJUSTMENT"
)

// TransactionTypes tipos soportados, en orden estable para la API.
var TransactionTypes = []string{
	TransactionTypeStockIn,
	TransactionTypeStockOut,
	TransactionTypeAdjustment,
}

// StockTransaction representa un movimiento de inventario sobre un producto.
// Nace PENDING (IsProcessed=false) y pasa a PROCESSED exactamente una vez;
// una vez procesada es inmutable y no puede reprocesarse.
type StockTransaction struct {
	ID              string
	ReferenceNumber string // único global, asignado por el caller, en mayúsculas
	Type            string
	ProductID       string
	Quantity        int              // siempre positivo; ver contrato de ADJUSTMENT
	UnitCost        *decimal.Decimal // obligatorio y >= 0 en STOCK_IN, ausente en el resto
	Notes           string
	ProcessedBy     string
	IsProcessed     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsValidTransactionType verifica que el tipo esté soportado.
func IsValidTransactionType(t string) bool {
	for _, v := range TransactionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// TotalCost costo total de la transacción (cantidad por costo unitario).
// 0 si no tiene costo unitario.
func (t *StockTransaction) TotalCost() decimal.Decimal {
	if t.UnitCost == nil {
		return decimal.Zero
	}
	return t.UnitCost.Mul(decimal.NewFromInt(int64(t.Quantity)))
}
