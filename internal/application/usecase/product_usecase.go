package usecase

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/alfamart-stock-api/internal/application/dto"
	"github.com/jhoicas/alfamart-stock-api/internal/domain"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
)

// defaultMaximumStock tope por defecto cuando el caller no envía maximum_stock.
const defaultMaximumStock = 1000

// ProductUseCase casos de uso CRUD para productos. El stock se maneja
// exclusivamente vía transacciones (paquete inventory), nunca aquí.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, supplierRepo: supplierRepo}
}

// Create crea un producto. El stock inicia en 0.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	if len(in.Code) < 2 || len(in.Name) < 2 {
		return nil, domain.ErrInvalidInput
	}
	in.Barcode = strings.TrimSpace(in.Barcode)
	if in.Barcode != "" && len(in.Barcode) < 8 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice.LessThan(decimal.Zero) || in.CostPrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.MaximumStock == 0 {
		in.MaximumStock = defaultMaximumStock
	}
	if in.MinimumStock < 0 || in.MaximumStock < in.MinimumStock {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitOfMeasure == "" {
		in.UnitOfMeasure = "PCS"
	}
	in.UnitOfMeasure = strings.ToUpper(in.UnitOfMeasure)
	if !entity.IsValidUnit(in.UnitOfMeasure) {
		return nil, domain.ErrInvalidInput
	}

	existing, _ := uc.repo.GetByCode(in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if cat, err := uc.categoryRepo.GetByID(in.CategoryID); err != nil || cat == nil {
		return nil, domain.ErrNotFound
	}
	if sup, err := uc.supplierRepo.GetByID(in.SupplierID); err != nil || sup == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Code:          in.Code,
		Barcode:       in.Barcode,
		Name:          in.Name,
		Description:   strings.TrimSpace(in.Description),
		UnitPrice:     in.UnitPrice,
		CostPrice:     in.CostPrice,
		StockQuantity: 0,
		MinimumStock:  in.MinimumStock,
		MaximumStock:  in.MaximumStock,
		UnitOfMeasure: in.UnitOfMeasure,
		ExpiryDate:    in.ExpiryDate,
		IsActive:      true,
		CategoryID:    in.CategoryID,
		SupplierID:    in.SupplierID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto con su estado de stock derivado.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar StockQuantity
// (solo el motor de transacciones muta stock).
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < 2 {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Barcode != nil {
		barcode := strings.TrimSpace(*in.Barcode)
		if barcode != "" && len(barcode) < 8 {
			return nil, domain.ErrInvalidInput
		}
		product.Barcode = barcode
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.UnitPrice = *in.UnitPrice
	}
	if in.CostPrice != nil {
		if in.CostPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.CostPrice = *in.CostPrice
	}
	if in.MinimumStock != nil {
		product.MinimumStock = *in.MinimumStock
	}
	if in.MaximumStock != nil {
		product.MaximumStock = *in.MaximumStock
	}
	if product.MinimumStock < 0 || product.MaximumStock < product.MinimumStock {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitOfMeasure != nil {
		unit := strings.ToUpper(*in.UnitOfMeasure)
		if !entity.IsValidUnit(unit) {
			return nil, domain.ErrInvalidInput
		}
		product.UnitOfMeasure = unit
	}
	if in.ExpiryDate != nil {
		product.ExpiryDate = in.ExpiryDate
	}
	if in.CategoryID != nil {
		if cat, err := uc.categoryRepo.GetByID(*in.CategoryID); err != nil || cat == nil {
			return nil, domain.ErrNotFound
		}
		product.CategoryID = *in.CategoryID
	}
	if in.SupplierID != nil {
		if sup, err := uc.supplierRepo.GetByID(*in.SupplierID); err != nil || sup == nil {
			return nil, domain.ErrNotFound
		}
		product.SupplierID = *in.SupplierID
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con filtros y paginación. stockStatus filtra por el
// estado derivado (se evalúa sobre el resultado, nunca se almacena).
func (uc *ProductUseCase) List(filter repository.ProductFilter, stockStatus string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	stockStatus = strings.ToUpper(stockStatus)
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		if stockStatus != "" && p.StockStatus() != stockStatus {
			continue
		}
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// LowStock devuelve los productos cuyo estado derivado es LOW_STOCK u
// OUT_OF_STOCK, ordenados por código de producto.
func (uc *ProductUseCase) LowStock() ([]dto.ProductResponse, error) {
	// Escaneo completo; el orden por código lo garantiza el repositorio.
	list, err := uc.repo.List(repository.ProductFilter{ActiveOnly: true}, 0, 0)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0)
	for _, p := range list {
		switch p.StockStatus() {
		case entity.StockStatusLow, entity.StockStatusOutOfStock:
			items = append(items, *toProductResponse(p))
		}
	}
	return items, nil
}

// Expiring devuelve los productos activos con fecha de vencimiento que vencen
// dentro de los próximos days días (incluye los ya vencidos), ordenados por
// código de producto. days <= 0 usa el horizonte por defecto de 30 días.
func (uc *ProductUseCase) Expiring(days int) ([]dto.ProductResponse, error) {
	if days <= 0 {
		days = 30
	}
	list, err := uc.repo.List(repository.ProductFilter{ActiveOnly: true}, 0, 0)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0)
	for _, p := range list {
		until, ok := p.DaysUntilExpiry()
		if !ok || until > days {
			continue
		}
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

// Delete elimina un producto por ID.
func (uc *ProductUseCase) Delete(id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	var daysUntilExpiry *int
	if d, ok := p.DaysUntilExpiry(); ok {
		daysUntilExpiry = &d
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		Code:            p.Code,
		Barcode:         p.Barcode,
		Name:            p.Name,
		Description:     p.Description,
		UnitPrice:       p.UnitPrice,
		CostPrice:       p.CostPrice,
		StockQuantity:   p.StockQuantity,
		MinimumStock:    p.MinimumStock,
		MaximumStock:    p.MaximumStock,
		UnitOfMeasure:   p.UnitOfMeasure,
		ExpiryDate:      p.ExpiryDate,
		IsActive:        p.IsActive,
		CategoryID:      p.CategoryID,
		SupplierID:      p.SupplierID,
		StockStatus:     p.StockStatus(),
		ProfitMargin:    p.ProfitMargin(),
		StockValue:      p.StockValue(),
		IsExpired:       p.IsExpired(),
		DaysUntilExpiry: daysUntilExpiry,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
