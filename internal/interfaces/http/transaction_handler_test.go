package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/alfamart-stock-api/internal/application/dto"
	"github.com/jhoicas/alfamart-stock-api/internal/application/inventory"
	"github.com/jhoicas/alfamart-stock-api/internal/domain"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/entity"
	"github.com/jhoicas/alfamart-stock-api/internal/domain/repository"
	apphttp "github.com/jhoicas/alfamart-stock-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// El handler recibe el caso de uso real; solo la persistencia se simula.
// El fakeTxRunner clona el estado y lo publica únicamente si la función
// termina sin error (semántica Commit/Rollback).
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

func (r *fakeProductRepo) GetByCode(code string) (*entity.Product, error) { return nil, nil }

func (r *fakeProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
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
	return nil, nil
}

func (r *fakeProductRepo) Delete(id string) error { return nil }

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

// inRange replica los límites inclusivos de created_at del repositorio de
// Postgres (created_at >= from y created_at <= to).
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

func buildTestApp(t *testing.T, initialStock int) (*fiber.App, *memStore) {
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
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{TransactionUC: uc})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func createRequest(ref string, qty int, autoProcess bool) dto.CreateTransactionRequest {
	cost := decimal.NewFromFloat(2.0)
	return dto.CreateTransactionRequest{
		ReferenceNumber: ref,
		Type:            entity.TransactionTypeStockIn,
		ProductID:       testProductID,
		Quantity:        qty,
		UnitCost:        &cost,
		AutoProcess:     autoProcess,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateTransaction_Retorna201(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", createRequest("IN-001", 10, false))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dto.TransactionResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "IN-001", out.ReferenceNumber)
	assert.False(t, out.IsProcessed)
}

func TestCreateTransaction_CuerpoInvalido(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	req := httptest.NewRequest(http.MethodPost, "/api/stock-transactions/", bytes.NewReader([]byte("{no es json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTransaction_Validacion400(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	in := createRequest("IN-002", 0, false) // cantidad inválida
	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", in)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out dto.ErrorResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "VALIDATION", out.Code)
}

func TestCreateTransaction_ReferenciaDuplicada409(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", createRequest("IN-003", 10, false))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/stock-transactions/", createRequest("IN-003", 5, false))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var out dto.ErrorResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "DUPLICATE", out.Code)
}

func TestCreateTransaction_ProductoInexistente404(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	in := createRequest("IN-004", 10, false)
	in.ProductID = "no-existe"
	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", in)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProcessTransaction_AplicaStock(t *testing.T) {
	app, store := buildTestApp(t, 20)

	var created dto.TransactionResponse
	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", createRequest("IN-005", 10, false))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, http.MethodPost, "/api/stock-transactions/"+created.ID+"/process", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ProcessTransactionResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, 20, out.StockChange.OldStock)
	assert.Equal(t, 30, out.StockChange.NewStock)
	assert.Equal(t, 30, store.products[testProductID].StockQuantity)
}

func TestProcessTransaction_DobleProceso409(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	var created dto.TransactionResponse
	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", createRequest("IN-006", 10, false))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, http.MethodPost, "/api/stock-transactions/"+created.ID+"/process", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/stock-transactions/"+created.ID+"/process", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var out dto.ErrorResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "ALREADY_PROCESSED", out.Code)
}

func TestProcessTransaction_StockInsuficiente409(t *testing.T) {
	app, store := buildTestApp(t, 20)

	in := dto.CreateTransactionRequest{
		ReferenceNumber: "OUT-001",
		Type:            entity.TransactionTypeStockOut,
		ProductID:       testProductID,
		Quantity:        25,
	}
	var created dto.TransactionResponse
	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", in)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, http.MethodPost, "/api/stock-transactions/"+created.ID+"/process", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var out dto.ErrorResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Code)
	assert.Equal(t, 20, store.products[testProductID].StockQuantity,
		"el stock no debe cambiar tras un rechazo por stock insuficiente")
}

func TestProcessTransaction_NoEncontrada404(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/no-existe/process", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateTransaction_AutoProcess(t *testing.T) {
	app, store := buildTestApp(t, 20)

	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", createRequest("IN-007", 10, true))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dto.TransactionResponse
	decodeBody(t, resp, &out)
	assert.True(t, out.IsProcessed)
	assert.Equal(t, 30, store.products[testProductID].StockQuantity)
}

func TestGetTransaction_NoEncontrada404(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	resp := doJSON(t, app, http.MethodGet, "/api/stock-transactions/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTransactions_FechaInvalida400(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	resp := doJSON(t, app, http.MethodGet, "/api/stock-transactions/?start_date=30-08-2026", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTransactions_TipoInvalido400(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	resp := doJSON(t, app, http.MethodGet, "/api/stock-transactions/?transaction_type=TRANSFER", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransactionTypes(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	resp := doJSON(t, app, http.MethodGet, "/api/stock-transactions/types", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data []string `json:"data"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, []string{"STOCK_IN", "STOCK_OUT", "ADJUSTMENT"}, out.Data)
}

func TestDeleteTransaction_ProcesadaEsInmutable(t *testing.T) {
	app, _ := buildTestApp(t, 20)

	var created dto.TransactionResponse
	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", createRequest("IN-008", 10, true))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &created)

	resp = doJSON(t, app, http.MethodDelete, "/api/stock-transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSummary_AgregaProcesadas(t *testing.T) {
	app, _ := buildTestApp(t, 50)

	resp := doJSON(t, app, http.MethodPost, "/api/stock-transactions/", createRequest("IN-009", 10, true))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stock-transactions/summary", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.TransactionSummaryResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, 1, out.TotalTransactions)
	assert.Equal(t, 1, out.StockInCount)
	assert.True(t, out.TotalStockInValue.Equal(decimal.NewFromInt(20)))
}
