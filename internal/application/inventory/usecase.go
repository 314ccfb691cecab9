package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/alfamart-stock-api/internal/application/dto"
	"github.com/jhoicas/alfamart-stock-api/internal/domain"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
)

// TransactionUseCase crea y procesa transacciones de stock de forma
// transaccional (STOCK_IN, STOCK_OUT, ADJUSTMENT) con bloqueo de fila
// (SELECT FOR UPDATE) y Commit/Rollback.
//
// Máquina de estados: PENDING -> PROCESSED, unidireccional y de un solo
// disparo. No existe reversa, cancelación ni reprocesamiento.
type TransactionUseCase struct {
	txRunner    TxRunner
	trxRepo     repository.StockTransactionRepository
	productRepo repository.ProductRepository
}

// NewTransactionUseCase construye el caso de uso.
func NewTransactionUseCase(
	txRunner TxRunner,
	trxRepo repository.StockTransactionRepository,
	productRepo repository.ProductRepository,
) *TransactionUseCase {
	return &TransactionUseCase{
		txRunner:    txRunner,
		trxRepo:     trxRepo,
		productRepo: productRepo,
	}
}

// Create crea una transacción en estado PENDING. La unicidad del
// reference_number se valida en la creación, no al procesar. Con
// AutoProcess=true la creación y el procesamiento corren dentro de la misma
// transacción de BD: no hay ventana en la que sea observable como PENDING.
func (uc *TransactionUseCase) Create(ctx context.Context, in dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	in.ReferenceNumber = strings.ToUpper(strings.TrimSpace(in.ReferenceNumber))
	if len(in.ReferenceNumber) < 3 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.IsValidTransactionType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Type == entity.TransactionTypeStockIn {
		if in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	} else {
		// unit_cost solo aplica a entradas
		in.UnitCost = nil
	}

	existing, err := uc.trxRepo.GetByReference(in.ReferenceNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	trx := &entity.StockTransaction{
		ID:              uuid.New().String(),
		ReferenceNumber: in.ReferenceNumber,
		Type:            in.Type,
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		Notes:           strings.TrimSpace(in.Notes),
		ProcessedBy:     strings.TrimSpace(in.ProcessedBy),
		IsProcessed:     false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if !in.AutoProcess {
		if err := uc.trxRepo.Create(trx); err != nil {
			return nil, err
		}
		return toTransactionResponse(trx, nil), nil
	}

	// Crear y aplicar en la misma transacción de BD
	var updated *entity.Product
	err = uc.txRunner.Run(ctx, func(
		trxRepo repository.StockTransactionRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := trxRepo.Create(trx); err != nil {
			return err
		}
		var applyErr error
		_, updated, applyErr = uc.apply(trxRepo, productRepo, trx, now)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(trx, updated), nil
}

// Process aplica una transacción PENDING a su producto exactamente una vez.
// Sobre una transacción ya PROCESSED falla con ErrAlreadyProcessed sin mutar
// nada: las llamadas repetidas se rechazan, no se aceptan en silencio, para
// evitar contar stock dos veces.
func (uc *TransactionUseCase) Process(ctx context.Context, id string) (*dto.ProcessTransactionResponse, error) {
	var (
		trx      *entity.StockTransaction
		oldStock int
		updated  *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(
		trxRepo repository.StockTransactionRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		trx, err = trxRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if trx == nil {
			return domain.ErrNotFound
		}
		if trx.IsProcessed {
			return domain.ErrAlreadyProcessed
		}
		oldStock, updated, err = uc.apply(trxRepo, productRepo, trx, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProcessTransactionResponse{
		Transaction: *toTransactionResponse(trx, updated),
		StockChange: dto.StockChange{
			OldStock: oldStock,
			NewStock: updated.StockQuantity,
			Change:   updated.StockQuantity - oldStock,
		},
	}, nil
}

// apply bloquea la fila del producto, calcula la nueva cantidad según el tipo
// y persiste mutación de stock + IsProcessed dentro de la tx del caller.
// Devuelve el stock previo y el producto actualizado.
//
// ADJUSTMENT interpreta Quantity como valor ABSOLUTO final del stock, no como
// delta (contrato heredado del sistema original; ver entity.TransactionType*).
func (uc *TransactionUseCase) apply(
	trxRepo repository.StockTransactionRepository,
	productRepo repository.ProductRepository,
	trx *entity.StockTransaction,
	now time.Time,
) (int, *entity.Product, error) {
	product, err := productRepo.GetByIDForUpdate(trx.ProductID)
	if err != nil {
		return 0, nil, err
	}
	if product == nil {
		return 0, nil, domain.ErrNotFound
	}

	oldStock := product.StockQuantity
	var newStock int
	switch trx.Type {
	case entity.TransactionTypeStockIn:
		newStock = oldStock + trx.Quantity
	case entity.TransactionTypeStockOut:
		if oldStock < trx.Quantity {
			// La tx de BD se revierte: la transacción sigue PENDING y el
			// caller puede reintentar tras reponer stock.
			return 0, nil, domain.ErrInsufficientStock
		}
		newStock = oldStock - trx.Quantity
	case entity.TransactionTypeAdjustment:
		newStock = trx.Quantity
	default:
		return 0, nil, domain.ErrInvalidInput
	}

	if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
		return 0, nil, err
	}
	if err := trxRepo.MarkProcessed(trx.ID, now); err != nil {
		return 0, nil, err
	}
	product.StockQuantity = newStock
	product.UpdatedAt = now
	trx.IsProcessed = true
	trx.UpdatedAt = now
	return oldStock, product, nil
}

func toTransactionResponse(t *entity.StockTransaction, p *entity.Product) *dto.TransactionResponse {
	if t == nil {
		return nil
	}
	resp := &dto.TransactionResponse{
		ID:              t.ID,
		ReferenceNumber: t.ReferenceNumber,
		Type:            t.Type,
		ProductID:       t.ProductID,
		Quantity:        t.Quantity,
		UnitCost:        t.UnitCost,
		TotalCost:       t.TotalCost(),
		Notes:           t.Notes,
		ProcessedBy:     t.ProcessedBy,
		IsProcessed:     t.IsProcessed,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if p != nil {
		resp.Product = &dto.ProductBrief{
			ID:           p.ID,
			Code:         p.Code,
			Name:         p.Name,
			CurrentStock: p.StockQuantity,
		}
	}
	return resp
}
