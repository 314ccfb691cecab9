package inventory_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/alfamart-stock-api/internal/application/dto"
	"github.com/jhoicas/alfamart-stock-api/internal/application/inventory"
	"github.com/jhoicas/alfamart-stock-api/internal/domain"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// memStore simula la base de datos; el fakeTxRunner clona el estado, ejecuta
// la función sobre el clon y solo publica los cambios si no hubo error. Esto
// reproduce la semántica Commit/Rollback que el caso de uso exige: un
// STOCK_OUT sin stock suficiente no debe dejar rastro.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	products     map[string]*entity.Product
	transactions map[string]*entity.StockTransaction
}

func newMemStore() *memStore {
	return &memStore{
		products:     map[string]*entity.Product{},
		transactions: map[string]*entity.StockTransaction{},
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, t := range s.transactions {
		ct := *t
		c.transactions[id] = &ct
	}
	return c
}

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByCode(code string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateStock(productID string, quantity int) error {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.StockQuantity = quantity
	return nil
}

func (r *fakeProductRepo) List(filter repository.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *fakeProductRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

type fakeTrxRepo struct{ s *memStore }

func (r *fakeTrxRepo) Create(t *entity.StockTransaction) error {
	for _, other := range r.s.transactions {
		if other.ReferenceNumber == t.ReferenceNumber {
			return domain.ErrDuplicate
		}
	}
	ct := *t
	r.s.transactions[t.ID] = &ct
	return nil
}

func (r *fakeTrxRepo) GetByID(id string) (*entity.StockTransaction, error) {
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	ct := *t
	return &ct, nil
}

func (r *fakeTrxRepo) GetByIDForUpdate(id string) (*entity.StockTransaction, error) {
	return r.GetByID(id)
}

func (r *fakeTrxRepo) GetByReference(ref string) (*entity.StockTransaction, error) {
	for _, t := range r.s.transactions {
		if t.ReferenceNumber == ref {
			ct := *t
			return &ct, nil
		}
	}
	return nil, nil
}

func (r *fakeTrxRepo) Update(t *entity.StockTransaction) error {
	existing, ok := r.s.transactions[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if existing.IsProcessed {
		return domain.ErrAlreadyProcessed
	}
	ct := *t
	r.s.transactions[t.ID] = &ct
	return nil
}

func (r *fakeTrxRepo) MarkProcessed(id string, processedAt time.Time) error {
	t, ok := r.s.transactions[id]
	if !ok || t.IsProcessed {
		return domain.ErrAlreadyProcessed
	}
	t.IsProcessed = true
	t.UpdatedAt = processedAt
	return nil
}

func (r *fakeTrxRepo) List(filter repository.TransactionFilter, limit, offset int) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	for _, t := range r.s.transactions {
		if filter.ProductID != "" && t.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.ProcessedOnly && !t.IsProcessed {
			continue
		}
		if !inRange(t.CreatedAt, filter.From, filter.To) {
			continue
		}
		ct := *t
		out = append(out, &ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTrxRepo) SummaryByType(from, to *time.Time) (map[string]repository.TypeSummary, error) {
	out := map[string]repository.TypeSummary{}
	for _, t := range r.s.transactions {
		if !t.IsProcessed {
			continue
		}
		if !inRange(t.CreatedAt, from, to) {
			continue
		}
		s := out[t.Type]
		s.Count++
		s.TotalValue = s.TotalValue.Add(t.TotalCost())
		out[t.Type] = s
	}
	return out, nil
}

// inRange replica los límites inclusivos de created_at que aplica el repositorio
// de Postgres (created_at >= from y created_at <= to).
func inRange(at time.Time, from, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && at.After(*to) {
		return false
	}
	return true
}

func (r *fakeTrxRepo) Delete(id string) error {
	delete(r.s.transactions, id)
	return nil
}

// fakeTxRunner publica el clon solo en caso de éxito.
type fakeTxRunner struct{ s *memStore }

func (f *fakeTxRunner) Run(ctx context.Context, fn func(
	trxRepo repository.StockTransactionRepository,
	productRepo repository.ProductRepository,
) error) error {
	clone := f.s.clone()
	if err := fn(&fakeTrxRepo{s: clone}, &fakeProductRepo{s: clone}); err != nil {
		return err
	}
	f.s.products = clone.products
	f.s.transactions = clone.transactions
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const testProductID = "00000000-0000-0000-0000-00000000000a"

func buildUseCase(t *testing.T, initialStock int) (*inventory.TransactionUseCase, *memStore) {
	t.Helper()
	store := newMemStore()
	store.products[testProductID] = &entity.Product{
		ID:            testProductID,
		Code:          "SKU-001",
		Name:          "Arroz Premium 1kg",
		StockQuantity: initialStock,
		MinimumStock:  5,
		MaximumStock:  100,
		IsActive:      true,
	}
	uc := inventory.NewTransactionUseCase(
		&fakeTxRunner{s: store},
		&fakeTrxRepo{s: store},
		&fakeProductRepo{s: store},
	)
	return uc, store
}

func stockInRequest(ref string, qty int) dto.CreateTransactionRequest {
	cost := decimal.NewFromFloat(2.0)
	return dto.CreateTransactionRequest{
		ReferenceNumber: ref,
		Type:            entity.TransactionTypeStockIn,
		ProductID:       testProductID,
		Quantity:        qty,
		UnitCost:        &cost,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_NacePendiente(t *testing.T) {
	uc, store := buildUseCase(t, 20)

	resp, err := uc.Create(context.Background(), stockInRequest("in-001", 10))
	require.NoError(t, err)

	assert.False(t, resp.IsProcessed, "sin auto_process la transacción nace PENDING")
	assert.Equal(t, "IN-001", resp.ReferenceNumber, "la referencia se normaliza a mayúsculas")
	assert.Equal(t, 20, store.products[testProductID].StockQuantity,
		"crear una transacción no debe tocar el stock")
}

func TestCreate_ReferenciaDuplicada(t *testing.T) {
	uc, _ := buildUseCase(t, 20)

	_, err := uc.Create(context.Background(), stockInRequest("IN-001", 10))
	require.NoError(t, err)

	// Misma referencia con distinta capitalización: sigue siendo duplicada
	_, err = uc.Create(context.Background(), stockInRequest("in-001", 5))
	assert.Equal(t, domain.ErrDuplicate, err)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := buildUseCase(t, 20)
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.CreateTransactionRequest
		want error
	}{
		{"referencia muy corta", stockInRequest("ab", 10), domain.ErrInvalidInput},
		{"tipo desconocido", func() dto.CreateTransactionRequest {
			r := stockInRequest("REF-100", 10)
			r.Type = "TRANSFER"
			return r
		}(), domain.ErrInvalidInput},
		{"cantidad cero", stockInRequest("REF-101", 0), domain.ErrInvalidInput},
		{"cantidad negativa", stockInRequest("REF-102", -5), domain.ErrInvalidInput},
		{"entrada sin costo unitario", func() dto.CreateTransactionRequest {
			r := stockInRequest("REF-103", 10)
			r.UnitCost = nil
			return r
		}(), domain.ErrInvalidInput},
		{"entrada con costo negativo", func() dto.CreateTransactionRequest {
			r := stockInRequest("REF-104", 10)
			neg := decimal.NewFromInt(-1)
			r.UnitCost = &neg
			return r
		}(), domain.ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tc.in)
			assert.Equal(t, tc.want, err)
		})
	}
}

func TestCreate_ProductoInexistente(t *testing.T) {
	uc, _ := buildUseCase(t, 20)

	in := stockInRequest("REF-200", 10)
	in.ProductID = "no-existe"
	_, err := uc.Create(context.Background(), in)
	assert.Equal(t, domain.ErrNotFound, err)
}

func TestCreate_SalidaIgnoraCostoUnitario(t *testing.T) {
	uc, _ := buildUseCase(t, 20)

	cost := decimal.NewFromFloat(9.99)
	resp, err := uc.Create(context.Background(), dto.CreateTransactionRequest{
		ReferenceNumber: "OUT-001",
		Type:            entity.TransactionTypeStockOut,
		ProductID:       testProductID,
		Quantity:        5,
		UnitCost:        &cost,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.UnitCost, "unit_cost solo aplica a STOCK_IN")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Process
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_EntradaSumaStock(t *testing.T) {
	uc, store := buildUseCase(t, 20)

	created, err := uc.Create(context.Background(), stockInRequest("IN-010", 10))
	require.NoError(t, err)

	resp, err := uc.Process(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, 20, resp.StockChange.OldStock)
	assert.Equal(t, 30, resp.StockChange.NewStock)
	assert.Equal(t, 10, resp.StockChange.Change)
	assert.True(t, resp.Transaction.IsProcessed)
	assert.Equal(t, 30, store.products[testProductID].StockQuantity)
}

func TestProcess_SalidaRestaStock(t *testing.T) {
	uc, store := buildUseCase(t, 20)

	created, err := uc.Create(context.Background(), dto.CreateTransactionRequest{
		ReferenceNumber: "OUT-010",
		Type:            entity.TransactionTypeStockOut,
		ProductID:       testProductID,
		Quantity:        8,
	})
	require.NoError(t, err)

	resp, err := uc.Process(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, 12, resp.StockChange.NewStock)
	assert.Equal(t, -8, resp.StockChange.Change)
	assert.Equal(t, 12, store.products[testProductID].StockQuantity)
}

// El caso crítico del motor: una salida mayor al stock disponible falla, el
// stock no cambia y la transacción sigue PENDING (puede reintentarse luego).
func TestProcess_StockInsuficienteRevierteTodo(t *testing.T) {
	uc, store := buildUseCase(t, 20)

	created, err := uc.Create(context.Background(), dto.CreateTransactionRequest{
		ReferenceNumber: "OUT-020",
		Type:            entity.TransactionTypeStockOut,
		ProductID:       testProductID,
		Quantity:        25,
	})
	require.NoError(t, err)

	_, err = uc.Process(context.Background(), created.ID)
	assert.Equal(t, domain.ErrInsufficientStock, err)

	assert.Equal(t, 20, store.products[testProductID].StockQuantity,
		"el stock no debe cambiar tras un rollback")
	assert.False(t, store.transactions[created.ID].IsProcessed,
		"la transacción debe seguir PENDING para poder reintentarse")

	// Tras reponer stock, el reintento sí procede
	store.products[testProductID].StockQuantity = 30
	resp, err := uc.Process(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.StockChange.NewStock)
}

func TestProcess_AjusteFijaValorAbsoluto(t *testing.T) {
	uc, store := buildUseCase(t, 100)

	created, err := uc.Create(context.Background(), dto.CreateTransactionRequest{
		ReferenceNumber: "ADJ-001",
		Type:            entity.TransactionTypeAdjustment,
		ProductID:       testProductID,
		Quantity:        7,
	})
	require.NoError(t, err)

	resp, err := uc.Process(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, 7, resp.StockChange.NewStock,
		"ADJUSTMENT fija el stock al valor absoluto, no aplica un delta")
	assert.Equal(t, -93, resp.StockChange.Change)
	assert.Equal(t, 7, store.products[testProductID].StockQuantity)
}

func TestProcess_DobleProcesamientoRechazado(t *testing.T) {
	uc, store := buildUseCase(t, 20)

	created, err := uc.Create(context.Background(), stockInRequest("IN-030", 10))
	require.NoError(t, err)

	_, err = uc.Process(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = uc.Process(context.Background(), created.ID)
	assert.Equal(t, domain.ErrAlreadyProcessed, err,
		"reprocesar debe fallar explícitamente, no aceptarse en silencio")
	assert.Equal(t, 30, store.products[testProductID].StockQuantity,
		"el stock debe haber cambiado exactamente una vez")
}

func TestProcess_TransaccionInexistente(t *testing.T) {
	uc, _ := buildUseCase(t, 20)

	_, err := uc.Process(context.Background(), "no-existe")
	assert.Equal(t, domain.ErrNotFound, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests auto_process
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_AutoProcessAplicaDeInmediato(t *testing.T) {
	uc, store := buildUseCase(t, 20)

	in := stockInRequest("IN-040", 10)
	in.AutoProcess = true
	resp, err := uc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, resp.IsProcessed, "con auto_process la respuesta ya es PROCESSED")
	require.NotNil(t, resp.Product)
	assert.Equal(t, 30, resp.Product.CurrentStock)
	assert.Equal(t, 30, store.products[testProductID].StockQuantity)
}

func TestCreate_AutoProcessSinStockNoDejaRastro(t *testing.T) {
	uc, store := buildUseCase(t, 20)

	in := dto.CreateTransactionRequest{
		ReferenceNumber: "OUT-040",
		Type:            entity.TransactionTypeStockOut,
		ProductID:       testProductID,
		Quantity:        25,
		AutoProcess:     true,
	}
	_, err := uc.Create(context.Background(), in)
	assert.Equal(t, domain.ErrInsufficientStock, err)

	assert.Equal(t, 20, store.products[testProductID].StockQuantity)
	assert.Empty(t, store.transactions,
		"con auto_process el rollback también descarta la creación")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Update / Delete sobre PENDING vs PROCESSED
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_SoloPendientes(t *testing.T) {
	uc, _ := buildUseCase(t, 20)

	created, err := uc.Create(context.Background(), stockInRequest("IN-050", 10))
	require.NoError(t, err)

	notes := "conteo físico de bodega"
	resp, err := uc.Update(created.ID, dto.UpdateTransactionRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, resp.Notes)

	_, err = uc.Process(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = uc.Update(created.ID, dto.UpdateTransactionRequest{Notes: &notes})
	assert.Equal(t, domain.ErrAlreadyProcessed, err, "una transacción procesada es inmutable")
}

func TestUpdate_CostoSoloParaEntradas(t *testing.T) {
	uc, _ := buildUseCase(t, 20)

	created, err := uc.Create(context.Background(), dto.CreateTransactionRequest{
		ReferenceNumber: "OUT-050",
		Type:            entity.TransactionTypeStockOut,
		ProductID:       testProductID,
		Quantity:        5,
	})
	require.NoError(t, err)

	cost := decimal.NewFromFloat(3.5)
	_, err = uc.Update(created.ID, dto.UpdateTransactionRequest{UnitCost: &cost})
	assert.Equal(t, domain.ErrInvalidInput, err)
}

func TestDelete_SoloPendientes(t *testing.T) {
	uc, store := buildUseCase(t, 20)

	created, err := uc.Create(context.Background(), stockInRequest("IN-060", 10))
	require.NoError(t, err)

	_, err = uc.Process(context.Background(), created.ID)
	require.NoError(t, err)

	err = uc.Delete(created.ID)
	assert.Equal(t, domain.ErrAlreadyProcessed, err,
		"una transacción procesada no puede borrarse: su efecto ya es definitivo")

	pendiente, err := uc.Create(context.Background(), stockInRequest("IN-061", 10))
	require.NoError(t, err)
	require.NoError(t, uc.Delete(pendiente.ID))
	_, ok := store.transactions[pendiente.ID]
	assert.False(t, ok)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Summary
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_SoloCuentaProcesadas(t *testing.T) {
	uc, _ := buildUseCase(t, 50)
	ctx := context.Background()

	// Entrada procesada: 10 unidades a 2.0 => valor 20
	in := stockInRequest("IN-070", 10)
	in.AutoProcess = true
	_, err := uc.Create(ctx, in)
	require.NoError(t, err)

	// Salida procesada, sin costo => valor 0
	_, err = uc.Create(ctx, dto.CreateTransactionRequest{
		ReferenceNumber: "OUT-070",
		Type:            entity.TransactionTypeStockOut,
		ProductID:       testProductID,
		Quantity:        5,
		AutoProcess:     true,
	})
	require.NoError(t, err)

	// Entrada PENDING: no debe aparecer en el resumen
	_, err = uc.Create(ctx, stockInRequest("IN-071", 99))
	require.NoError(t, err)

	summary, err := uc.Summary(repository.TransactionFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalTransactions)
	assert.Equal(t, 1, summary.StockInCount)
	assert.Equal(t, 1, summary.StockOutCount)
	assert.Equal(t, 0, summary.AdjustmentCount)
	assert.True(t, summary.TotalStockInValue.Equal(decimal.NewFromInt(20)),
		"el valor de entradas debe ser cantidad * costo unitario")

	// Un rango que cubre el momento actual incluye las dos procesadas.
	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	summary, err = uc.Summary(repository.TransactionFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTransactions)
	assert.Equal(t, 1, summary.StockInCount)
	assert.Equal(t, 1, summary.StockOutCount)

	// Un rango completamente en el futuro no incluye nada.
	futuro := time.Now().Add(24 * time.Hour)
	summary, err = uc.Summary(repository.TransactionFilter{From: &futuro})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTransactions)
	assert.Equal(t, 0, summary.StockInCount)
	assert.Equal(t, 0, summary.StockOutCount)
	assert.True(t, summary.TotalStockInValue.IsZero(),
		"sin transacciones en el rango, el valor debe ser cero")
}
