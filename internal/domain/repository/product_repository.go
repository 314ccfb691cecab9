package repository

import "github.com/jhoicas/alfamart-stock-api/internal/domain/entity"

// ProductFilter filtros opcionales para listar productos.
type ProductFilter struct {
	Search     string // busca en name y code (ILIKE)
	CategoryID string
	SupplierID string
	ActiveOnly bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByIDForUpdate bloquea la fila (SELECT FOR UPDATE): úsese solo dentro
// de una transacción del TxRunner.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
	GetByIDForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateStock fija la cantidad de stock (usado solo por el motor de transacciones).
	UpdateStock(productID string, quantity int) error
	List(filter ProductFilter, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
