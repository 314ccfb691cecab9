package repository

import "github.com/jhoicas/alfamart-stock-api/internal/domain/entity"

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id string) (*entity.Category, error)
	GetByCode(code string) (*entity.Category, error)
	Update(category *entity.Category) error
	List(search string, activeOnly bool) ([]*entity.Category, error)
	Delete(id string) error
}
