package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/alfamart-stock-api/internal/domain"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

const transactionColumns = `id, reference_number, transaction_type, product_id, quantity,
		unit_cost, notes, processed_by, is_processed, created_at, updated_at`

// StockTransactionRepo implementación del puerto StockTransactionRepository
// sobre PostgreSQL (usable con pool o tx).
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create persiste una transacción nueva (PENDING). La unicidad de
// reference_number la respalda el constraint de la tabla (23505 -> ErrDuplicate).
func (r *StockTransactionRepo) Create(trx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, reference_number, transaction_type, product_id,
			quantity, unit_cost, notes, processed_by, is_processed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		trx.ID, trx.ReferenceNumber, trx.Type, trx.ProductID, trx.Quantity,
		trx.UnitCost, trx.Notes, trx.ProcessedBy, trx.IsProcessed, trx.CreatedAt, trx.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID.
func (r *StockTransactionRepo) GetByID(id string) (*entity.StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get stock transaction")
}

// GetByIDForUpdate obtiene una transacción y bloquea su fila (SELECT FOR UPDATE).
// Usar solo dentro de una transacción del TxRunner: evita el doble
// procesamiento concurrente de la misma transacción.
func (r *StockTransactionRepo) GetByIDForUpdate(id string) (*entity.StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get stock transaction for update")
}

// GetByReference obtiene una transacción por su reference_number único.
func (r *StockTransactionRepo) GetByReference(referenceNumber string) (*entity.StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE reference_number = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, referenceNumber), "get stock transaction by reference")
}

// Update actualiza los campos mutables de una transacción PENDING.
func (r *StockTransactionRepo) Update(trx *entity.StockTransaction) error {
	query := `
		UPDATE stock_transactions SET notes = $2, processed_by = $3, unit_cost = $4, updated_at = $5
		WHERE id = $1 AND is_processed = false`
	cmd, err := r.q.Exec(context.Background(), query,
		trx.ID, trx.Notes, trx.ProcessedBy, trx.UnitCost, trx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

// MarkProcessed fija is_processed=true una única vez. El guard
// is_processed=false hace imposible el doble conteo incluso si dos tx
// compiten por la misma fila.
func (r *StockTransactionRepo) MarkProcessed(id string, processedAt time.Time) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_transactions SET is_processed = true, updated_at = $2
		 WHERE id = $1 AND is_processed = false`,
		id, processedAt,
	)
	if err != nil {
		return fmt.Errorf("mark transaction processed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

// List lista transacciones con filtros opcionales, más recientes primero.
func (r *StockTransactionRepo) List(filter repository.TransactionFilter, limit, offset int) ([]*entity.StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE 1=1`
	args := []any{}
	n := 0
	if filter.ProductID != "" {
		n++
		query += fmt.Sprintf(" AND product_id = $%d", n)
		args = append(args, filter.ProductID)
	}
	if filter.Type != "" {
		n++
		query += fmt.Sprintf(" AND transaction_type = $%d", n)
		args = append(args, filter.Type)
	}
	if filter.ProcessedOnly {
		query += " AND is_processed = true"
	}
	if filter.From != nil {
		n++
		query += fmt.Sprintf(" AND created_at >= $%d", n)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		n++
		query += fmt.Sprintf(" AND created_at <= $%d", n)
		args = append(args, *filter.To)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransaction
	for rows.Next() {
		var t entity.StockTransaction
		if err := rows.Scan(&t.ID, &t.ReferenceNumber, &t.Type, &t.ProductID, &t.Quantity,
			&t.UnitCost, &t.Notes, &t.ProcessedBy, &t.IsProcessed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// SummaryByType agrega transacciones procesadas por tipo (conteo y valor total).
func (r *StockTransactionRepo) SummaryByType(from, to *time.Time) (map[string]repository.TypeSummary, error) {
	query := `
		SELECT transaction_type, COUNT(*), COALESCE(SUM(quantity * COALESCE(unit_cost, 0)), 0)
		FROM stock_transactions WHERE is_processed = true`
	args := []any{}
	n := 0
	if from != nil {
		n++
		query += fmt.Sprintf(" AND created_at >= $%d", n)
		args = append(args, *from)
	}
	if to != nil {
		n++
		query += fmt.Sprintf(" AND created_at <= $%d", n)
		args = append(args, *to)
	}
	query += " GROUP BY transaction_type"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary by type: %w", err)
	}
	defer rows.Close()
	out := make(map[string]repository.TypeSummary)
	for rows.Next() {
		var (
			trxType string
			count   int
			total   decimal.Decimal
		)
		if err := rows.Scan(&trxType, &count, &total); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out[trxType] = repository.TypeSummary{Count: count, TotalValue: total}
	}
	return out, rows.Err()
}

// Delete elimina una transacción PENDING. Las procesadas son inmutables.
func (r *StockTransactionRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM stock_transactions WHERE id = $1 AND is_processed = false`, id)
	if err != nil {
		return fmt.Errorf("delete stock transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func (r *StockTransactionRepo) scanOne(row pgx.Row, op string) (*entity.StockTransaction, error) {
	var t entity.StockTransaction
	err := row.Scan(&t.ID, &t.ReferenceNumber, &t.Type, &t.ProductID, &t.Quantity,
		&t.UnitCost, &t.Notes, &t.ProcessedBy, &t.IsProcessed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}
