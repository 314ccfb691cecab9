package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/alfamart-stock-api/internal/application/dto"
	"github.com/jhoicas/alfamart-stock-api/internal/domain"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
)

// GetByID obtiene una transacción con el resumen de su producto.
func (uc *TransactionUseCase) GetByID(id string) (*dto.TransactionResponse, error) {
	trx, err := uc.trxRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if trx == nil {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(trx.ProductID)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(trx, product), nil
}

// List lista transacciones con filtros y paginación, más recientes primero.
func (uc *TransactionUseCase) List(filter repository.TransactionFilter, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	if filter.Type != "" {
		filter.Type = strings.ToUpper(filter.Type)
		if !entity.IsValidTransactionType(filter.Type) {
			return nil, domain.ErrInvalidInput
		}
	}
	page.DefaultPage()
	list, err := uc.trxRepo.List(filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransactionResponse(t, nil))
	}
	return &dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update modifica los campos mutables (notes, processed_by, unit_cost) de una
// transacción PENDING. Una transacción PROCESSED es inmutable.
func (uc *TransactionUseCase) Update(id string, in dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	trx, err := uc.trxRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if trx == nil {
		return nil, domain.ErrNotFound
	}
	if trx.IsProcessed {
		return nil, domain.ErrAlreadyProcessed
	}
	if in.Notes != nil {
		trx.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.ProcessedBy != nil {
		trx.ProcessedBy = strings.TrimSpace(*in.ProcessedBy)
	}
	if in.UnitCost != nil {
		if trx.Type != entity.TransactionTypeStockIn || in.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		trx.UnitCost = in.UnitCost
	}
	if err := uc.trxRepo.Update(trx); err != nil {
		return nil, err
	}
	return toTransactionResponse(trx, nil), nil
}

// Delete elimina una transacción PENDING. Una PROCESSED no puede borrarse:
// su efecto sobre el stock ya es definitivo.
func (uc *TransactionUseCase) Delete(id string) error {
	trx, err := uc.trxRepo.GetByID(id)
	if err != nil {
		return err
	}
	if trx == nil {
		return domain.ErrNotFound
	}
	if trx.IsProcessed {
		return domain.ErrAlreadyProcessed
	}
	return uc.trxRepo.Delete(id)
}

// Summary agregados de transacciones procesadas por tipo, con rango de fechas opcional.
func (uc *TransactionUseCase) Summary(filter repository.TransactionFilter) (*dto.TransactionSummaryResponse, error) {
	byType, err := uc.trxRepo.SummaryByType(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	out := &dto.TransactionSummaryResponse{
		TotalStockInValue:    decimal.Zero,
		TotalStockOutValue:   decimal.Zero,
		TotalAdjustmentValue: decimal.Zero,
	}
	if s, ok := byType[entity.TransactionTypeStockIn]; ok {
		out.StockInCount = s.Count
		out.TotalStockInValue = s.TotalValue
	}
	if s, ok := byType[entity.TransactionTypeStockOut]; ok {
		out.StockOutCount = s.Count
		out.TotalStockOutValue = s.TotalValue
	}
	if s, ok := byType[entity.TransactionTypeAdjustment]; ok {
		out.AdjustmentCount = s.Count
		out.TotalAdjustmentValue = s.TotalValue
	}
	out.TotalTransactions = out.StockInCount + out.StockOutCount + out.AdjustmentCount
	return out, nil
}
