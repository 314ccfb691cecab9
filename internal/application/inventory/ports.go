package inventory

import (
	"context"

	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la mutación de stock del
// producto y el flip de IsProcessed ocurran como una unidad atómica:
// o ambas o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		trxRepo repository.StockTransactionRepository,
		productRepo repository.ProductRepository,
	) error) error
}
