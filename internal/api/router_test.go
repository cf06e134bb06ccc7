package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ledgerport/order-admission/internal/core/domain"
	"github.com/ledgerport/order-admission/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Fake services
//
// Function-field fakes so each test swaps in just the behavior it needs. The
// router is built once for the whole package because the prometheus
// middleware registers its collectors globally.
// ---------------------------------------------------------------------------

type fakeClientService struct {
	create         func(in ports.CreateClientInput) (*domain.Client, error)
	getByID        func(id string) (*domain.Client, error)
	listOrSearch   func(q string) ([]*domain.Client, error)
	update         func(id string, in ports.UpdateClientInput) (*domain.Client, error)
	setActive      func(id string, active bool) (*domain.Client, error)
	listOrders     func(clientID string) ([]*domain.Order, error)
	profit         func(clientID string) (*ports.ClientProfit, error)
	profitsInRange func(r ports.ProfitRange) ([]*ports.ClientProfit, error)
}

func (f *fakeClientService) Create(_ context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	return f.create(in)
}
func (f *fakeClientService) GetByID(_ context.Context, id string) (*domain.Client, error) {
	return f.getByID(id)
}
func (f *fakeClientService) ListOrSearch(_ context.Context, q string) ([]*domain.Client, error) {
	return f.listOrSearch(q)
}
func (f *fakeClientService) Update(_ context.Context, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	return f.update(id, in)
}
func (f *fakeClientService) SetActive(_ context.Context, id string, active bool) (*domain.Client, error) {
	return f.setActive(id, active)
}
func (f *fakeClientService) ListOrders(_ context.Context, clientID string) ([]*domain.Order, error) {
	return f.listOrders(clientID)
}
func (f *fakeClientService) Profit(_ context.Context, clientID string) (*ports.ClientProfit, error) {
	return f.profit(clientID)
}
func (f *fakeClientService) ProfitsInRange(_ context.Context, r ports.ProfitRange) ([]*ports.ClientProfit, error) {
	return f.profitsInRange(r)
}

type fakeOrderService struct {
	admit        func(in ports.AdmitOrderInput) (*domain.Order, error)
	getByID      func(id string) (*domain.Order, error)
	list         func() ([]*domain.Order, error)
	listByClient func(clientID string) ([]*domain.Order, error)
	update       func(id string, in ports.UpdateOrderInput) (*domain.Order, error)
	delete       func(id string) error
}

func (f *fakeOrderService) Admit(_ context.Context, in ports.AdmitOrderInput) (*domain.Order, error) {
	return f.admit(in)
}
func (f *fakeOrderService) GetByID(_ context.Context, id string) (*domain.Order, error) { return f.getByID(id) }
func (f *fakeOrderService) List(_ context.Context) ([]*domain.Order, error)             { return f.list() }
func (f *fakeOrderService) ListByClient(_ context.Context, clientID string) ([]*domain.Order, error) {
	return f.listByClient(clientID)
}
func (f *fakeOrderService) Update(_ context.Context, id string, in ports.UpdateOrderInput) (*domain.Order, error) {
	return f.update(id, in)
}
func (f *fakeOrderService) Delete(_ context.Context, id string) error { return f.delete(id) }

type fakeScenarioService struct {
	duplicates   func(n int) (*ports.ScenarioSummary, error)
	descending   func(n int) (*ports.ScenarioSummary, error)
	deactivation func(n int, after time.Duration) (*ports.ScenarioSummary, error)
}

func (f *fakeScenarioService) RunDuplicates(_ context.Context, n int) (*ports.ScenarioSummary, error) {
	return f.duplicates(n)
}
func (f *fakeScenarioService) RunDescending(_ context.Context, n int) (*ports.ScenarioSummary, error) {
	return f.descending(n)
}
func (f *fakeScenarioService) RunDeactivationRace(_ context.Context, n int, after time.Duration) (*ports.ScenarioSummary, error) {
	return f.deactivation(n, after)
}

var (
	routerOnce    sync.Once
	router        *echo.Echo
	clientsFake   = &fakeClientService{}
	ordersFake    = &fakeOrderService{}
	scenariosFake = &fakeScenarioService{}
)

func testRouter() *echo.Echo {
	routerOnce.Do(func() {
		router = NewRouter(nil, nil, clientsFake, ordersFake, scenariosFake, zerolog.Nop())
	})
	return router
}

func do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func sampleOrder() *domain.Order {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:         "order-001",
		Title:      "Deal",
		TitleLower: "deal",
		SupplierID: "client-001",
		ConsumerID: "client-002",
		Price:      2500,
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		CreatedAt:  now.Add(time.Second),
		UpdatedAt:  now.Add(time.Second),
	}
}

// ---------------------------------------------------------------------------
// Order admission surface
// ---------------------------------------------------------------------------

func TestCreateOrderSuccess(t *testing.T) {
	var got ports.AdmitOrderInput
	ordersFake.admit = func(in ports.AdmitOrderInput) (*domain.Order, error) {
		got = in
		return sampleOrder(), nil
	}

	rec := do(t, http.MethodPost, "/v1/orders",
		`{"title":"Deal","supplier_id":"client-001","consumer_id":"client-002","price":25.00}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got.Price != 2500 {
		t.Fatalf("price must reach the service in cents, got %d", got.Price)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != "order-001" || body["price"] != 25.0 {
		t.Fatalf("response = %v", body)
	}
}

func TestCreateOrderPriceScale(t *testing.T) {
	ordersFake.admit = func(ports.AdmitOrderInput) (*domain.Order, error) {
		t.Fatal("service must not be reached on a malformed price")
		return nil, nil
	}

	rec := do(t, http.MethodPost, "/v1/orders",
		`{"title":"Deal","supplier_id":"a","consumer_id":"b","price":10.005}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderMissingFields(t *testing.T) {
	rec := do(t, http.MethodPost, "/v1/orders", `{"title":"Deal"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   int
		wantReason string
	}{
		{"validation", &domain.ValidationError{Message: "bad"}, http.StatusBadRequest, ""},
		{"not found", domain.ErrClientNotFound, http.StatusNotFound, ""},
		{"duplicate", domain.ErrDuplicateOrder, http.StatusConflict, "duplicate"},
		{"inactive", domain.Reject(domain.ReasonInactiveParty, "x"), http.StatusUnprocessableEntity, "inactive"},
		{"became inactive", domain.Reject(domain.ReasonBecameInactive, "x"), http.StatusUnprocessableEntity, "became_inactive_during_processing"},
		{"floor", domain.Reject(domain.ReasonFloorBreach, "x"), http.StatusUnprocessableEntity, "floor_breach"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ordersFake.admit = func(ports.AdmitOrderInput) (*domain.Order, error) {
				return nil, tc.err
			}
			rec := do(t, http.MethodPost, "/v1/orders",
				`{"title":"t","supplier_id":"a","consumer_id":"b","price":1}`)
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantCode, rec.Body.String())
			}
			if body := decodeErr(t, rec); body.Reason != tc.wantReason {
				t.Fatalf("reason = %q, want %q", body.Reason, tc.wantReason)
			}
		})
	}
}

func TestGetOrderNotFound(t *testing.T) {
	ordersFake.getByID = func(string) (*domain.Order, error) { return nil, domain.ErrOrderNotFound }
	rec := do(t, http.MethodGet, "/v1/orders/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteOrder(t *testing.T) {
	ordersFake.delete = func(id string) error {
		if id != "order-001" {
			t.Fatalf("id = %q", id)
		}
		return nil
	}
	rec := do(t, http.MethodDelete, "/v1/orders/order-001", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Client surface
// ---------------------------------------------------------------------------

func TestCreateClient(t *testing.T) {
	clientsFake.create = func(in ports.CreateClientInput) (*domain.Client, error) {
		return &domain.Client{ID: "client-001", Name: in.Name, Email: in.Email, Active: true}, nil
	}
	rec := do(t, http.MethodPost, "/v1/clients", `{"name":"Alice","email":"alice@mail.test"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateClientBadEmail(t *testing.T) {
	rec := do(t, http.MethodPost, "/v1/clients", `{"name":"Alice","email":"not-an-email"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateClientEmailConflict(t *testing.T) {
	clientsFake.create = func(ports.CreateClientInput) (*domain.Client, error) {
		return nil, domain.ErrEmailTaken
	}
	rec := do(t, http.MethodPost, "/v1/clients", `{"name":"Alice","email":"alice@mail.test"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSetClientStatus(t *testing.T) {
	var gotActive bool
	clientsFake.setActive = func(id string, active bool) (*domain.Client, error) {
		gotActive = active
		now := time.Now().UTC()
		return &domain.Client{ID: id, Name: "Alice", Active: active, DeactivatedAt: &now}, nil
	}
	rec := do(t, http.MethodPatch, "/v1/clients/client-001/status", `{"active":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if gotActive {
		t.Fatal("active=false must reach the service")
	}

	// A missing active field is a bind/validate failure, not a silent false.
	rec = do(t, http.MethodPatch, "/v1/clients/client-001/status", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing active", rec.Code)
	}
}

func TestClientProfitRange(t *testing.T) {
	var gotRange ports.ProfitRange
	clientsFake.profitsInRange = func(r ports.ProfitRange) ([]*ports.ClientProfit, error) {
		gotRange = r
		return []*ports.ClientProfit{{ClientID: "client-001", Name: "Alice", Profit: 1500}}, nil
	}

	rec := do(t, http.MethodGet, "/v1/clients/profit?min=-1000&max=15.50", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if gotRange.Min == nil || *gotRange.Min != -100000 {
		t.Fatalf("min = %v, want -100000 cents", gotRange.Min)
	}
	if gotRange.Max == nil || *gotRange.Max != 1550 {
		t.Fatalf("max = %v, want 1550 cents", gotRange.Max)
	}

	rec = do(t, http.MethodGet, "/v1/clients/profit?min=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a malformed bound", rec.Code)
	}
}

func TestClientProfit(t *testing.T) {
	clientsFake.profit = func(clientID string) (*ports.ClientProfit, error) {
		return &ports.ClientProfit{ClientID: clientID, Name: "Alice", Profit: -2500}, nil
	}
	rec := do(t, http.MethodGet, "/v1/clients/client-001/profit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["profit"] != -25.0 {
		t.Fatalf("profit = %v, want dollars", body["profit"])
	}
}

// ---------------------------------------------------------------------------
// Scenario surface
// ---------------------------------------------------------------------------

func TestScenarioDefaults(t *testing.T) {
	var gotN int
	var gotAfter time.Duration
	scenariosFake.deactivation = func(n int, after time.Duration) (*ports.ScenarioSummary, error) {
		gotN, gotAfter = n, after
		return &ports.ScenarioSummary{Scenario: "deactivation_race", Requested: n}, nil
	}

	rec := do(t, http.MethodPost, "/v1/scenarios/deactivation", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if gotN != 10 || gotAfter != time.Second {
		t.Fatalf("defaults = (%d, %s), want (10, 1s)", gotN, gotAfter)
	}

	rec = do(t, http.MethodPost, "/v1/scenarios/deactivation?n=5&deactivateAfterMs=250", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotN != 5 || gotAfter != 250*time.Millisecond {
		t.Fatalf("params = (%d, %s), want (5, 250ms)", gotN, gotAfter)
	}

	rec = do(t, http.MethodPost, "/v1/scenarios/duplicates?n=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for non-integer n", rec.Code)
	}
}

func TestScenarioSummaryPassthrough(t *testing.T) {
	scenariosFake.duplicates = func(n int) (*ports.ScenarioSummary, error) {
		return &ports.ScenarioSummary{
			Scenario:  "duplicates",
			Requested: n,
			Succeeded: 1,
			Failed:    n - 1,
			Attempts: []ports.ScenarioAttempt{
				{Index: 0, Success: true, OrderID: "order-001", Message: "created"},
				{Index: 1, Success: false, Reason: "duplicate", Message: "duplicate order"},
			},
		}, nil
	}

	rec := do(t, http.MethodPost, "/v1/scenarios/duplicates?n=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var sum ports.ScenarioSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Succeeded != 1 || sum.Failed != 1 || len(sum.Attempts) != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Attempts[1].Reason != "duplicate" {
		t.Fatalf("reason = %q", sum.Attempts[1].Reason)
	}
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestLiveness(t *testing.T) {
	rec := do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
