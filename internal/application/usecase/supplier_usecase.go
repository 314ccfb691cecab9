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

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create crea un proveedor con código único.
func (uc *SupplierUseCase) Create(in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if len(in.Name) < 2 || len(in.Code) < 2 {
		return nil, domain.ErrInvalidInput
	}
	if in.CreditLimit.LessThan(decimal.Zero) || in.PaymentTerms < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCode(in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	supplier := &entity.Supplier{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Code:           in.Code,
		ContactPhone:   strings.TrimSpace(in.ContactPhone),
		ContactEmail:   strings.TrimSpace(in.ContactEmail),
		ContactAddress: strings.TrimSpace(in.ContactAddress),
		CreditLimit:    in.CreditLimit,
		PaymentTerms:   in.PaymentTerms,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// GetByID obtiene un proveedor por ID.
func (uc *SupplierUseCase) GetByID(id string) (*dto.SupplierResponse, error) {
	supplier, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	return toSupplierResponse(supplier), nil
}

// Update actualiza los datos de contacto y condiciones de un proveedor.
func (uc *SupplierUseCase) Update(id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	supplier, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < 2 {
			return nil, domain.ErrInvalidInput
		}
		supplier.Name = name
	}
	if in.ContactPhone != nil {
		supplier.ContactPhone = strings.TrimSpace(*in.ContactPhone)
	}
	if in.ContactEmail != nil {
		supplier.ContactEmail = strings.TrimSpace(*in.ContactEmail)
	}
	if in.ContactAddress != nil {
		supplier.ContactAddress = strings.TrimSpace(*in.ContactAddress)
	}
	if in.CreditLimit != nil {
		if in.CreditLimit.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		supplier.CreditLimit = *in.CreditLimit
	}
	if in.PaymentTerms != nil {
		if *in.PaymentTerms < 0 {
			return nil, domain.ErrInvalidInput
		}
		supplier.PaymentTerms = *in.PaymentTerms
	}
	if in.IsActive != nil {
		supplier.IsActive = *in.IsActive
	}
	supplier.UpdatedAt = time.Now()
	if err := uc.repo.Update(supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// List lista proveedores con búsqueda por nombre y filtro de activos.
func (uc *SupplierUseCase) List(search string, activeOnly bool) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(search, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return items, nil
}

// Delete elimina un proveedor por ID.
func (uc *SupplierUseCase) Delete(id string) error {
	supplier, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	if s == nil {
		return nil
	}
	return &dto.SupplierResponse{
		ID:             s.ID,
		Name:           s.Name,
		Code:           s.Code,
		ContactPhone:   s.ContactPhone,
		ContactEmail:   s.ContactEmail,
		ContactAddress: s.ContactAddress,
		CreditLimit:    s.CreditLimit,
		PaymentTerms:   s.PaymentTerms,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
