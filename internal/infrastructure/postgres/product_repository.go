package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/alfamart-stock-api/internal/domain"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, code, barcode, name, description, unit_price, cost_price,
		stock_quantity, minimum_stock, maximum_stock, unit_of_measure, expiry_date,
		is_active, category_id, supplier_id, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. El stock inicia en 0.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (id, code, barcode, name, description, unit_price, cost_price,
			stock_quantity, minimum_stock, maximum_stock, unit_of_measure, expiry_date,
			is_active, category_id, supplier_id, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Code, product.Barcode, product.Name, product.Description,
		product.UnitPrice, product.CostPrice, product.StockQuantity, product.MinimumStock,
		product.MaximumStock, product.UnitOfMeasure, product.ExpiryDate, product.IsActive,
		product.CategoryID, product.SupplierID, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get product")
}

// GetByCode obtiene un producto por su código único.
func (r *ProductRepo) GetByCode(code string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE code = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, code), "get product by code")
}

// GetByIDForUpdate obtiene un producto y bloquea su fila (SELECT FOR UPDATE).
// Usar solo dentro de una transacción del TxRunner: serializa el
// read-modify-write de stock por producto.
func (r *ProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get product for update")
}

// Update actualiza un producto existente. No toca stock_quantity
// (solo el motor de transacciones muta stock, vía UpdateStock).
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products SET barcode = NULLIF($2, ''), name = $3, description = $4,
			unit_price = $5, cost_price = $6, minimum_stock = $7, maximum_stock = $8,
			unit_of_measure = $9, expiry_date = $10, is_active = $11, category_id = $12,
			supplier_id = $13, updated_at = $14
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Barcode, product.Name, product.Description,
		product.UnitPrice, product.CostPrice, product.MinimumStock, product.MaximumStock,
		product.UnitOfMeasure, product.ExpiryDate, product.IsActive, product.CategoryID,
		product.SupplierID, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateStock fija la cantidad de stock. El CHECK (stock_quantity >= 0) de la
// tabla respalda el invariante que el caso de uso ya valida.
func (r *ProductRepo) UpdateStock(productID string, quantity int) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET stock_quantity = $2, updated_at = now() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return nil
}

// List lista productos con filtros opcionales, ordenados por código.
// limit <= 0 devuelve el escaneo completo (consulta de stock bajo).
func (r *ProductRepo) List(filter repository.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	n := 0
	if filter.Search != "" {
		n++
		query += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", n, n)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.CategoryID != "" {
		n++
		query += fmt.Sprintf(" AND category_id = $%d", n)
		args = append(args, filter.CategoryID)
	}
	if filter.SupplierID != "" {
		n++
		query += fmt.Sprintf(" AND supplier_id = $%d", n)
		args = append(args, filter.SupplierID)
	}
	if filter.ActiveOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY code"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
		args = append(args, limit, offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row, op string) (*entity.Product, error) {
	p, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanProductRow(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var barcode *string
	err := row.Scan(
		&p.ID, &p.Code, &barcode, &p.Name, &p.Description, &p.UnitPrice, &p.CostPrice,
		&p.StockQuantity, &p.MinimumStock, &p.MaximumStock, &p.UnitOfMeasure, &p.ExpiryDate,
		&p.IsActive, &p.CategoryID, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if barcode != nil {
		p.Barcode = *barcode
	}
	return &p, nil
}

func scanProduct(rows pgx.Rows) (*entity.Product, error) {
	p, err := scanProductRow(rows)
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
