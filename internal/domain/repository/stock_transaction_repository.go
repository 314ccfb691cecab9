package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
)

// TransactionFilter filtros opcionales para listar transacciones de stock.
type TransactionFilter struct {
	ProductID     string
	Type          string
	ProcessedOnly bool
	From          *time.Time
	To            *time.Time
}

// TypeSummary agregado por tipo de transacción (solo procesadas).
type TypeSummary struct {
	Count      int
	TotalValue decimal.Decimal
}

// StockTransactionRepository define el puerto de persistencia para StockTransaction.
// GetByIDForUpdate bloquea la fila (SELECT FOR UPDATE): úsese solo dentro de una
// transacción del TxRunner.
type StockTransactionRepository interface {
	Create(trx *entity.StockTransaction) error
	GetByID(id string) (*entity.StockTransaction, error)
	GetByIDForUpdate(id string) (*entity.StockTransaction, error)
	GetByReference(referenceNumber string) (*entity.StockTransaction, error)
	Update(trx *entity.StockTransaction) error
	// MarkProcessed fija IsProcessed=true; debe ejecutarse en la misma transacción
	// de BD que la mutación de stock del producto.
	MarkProcessed(id string, processedAt time.Time) error
	List(filter TransactionFilter, limit, offset int) ([]*entity.StockTransaction, error)
	SummaryByType(from, to *time.Time) (map[string]TypeSummary, error)
	Delete(id string) error
}
