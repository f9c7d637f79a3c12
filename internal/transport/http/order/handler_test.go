package order_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	repo "github.com/Additional-Code/orderdesk/internal/repository/order"
	service "github.com/Additional-Code/orderdesk/internal/service/order"
	"github.com/Additional-Code/orderdesk/internal/testutil"
	transport "github.com/Additional-Code/orderdesk/internal/transport/http/order"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind    string         `json:"kind"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newServer(t *testing.T) *echo.Echo {
	t.Helper()

	conns, cfg := testutil.NewDatabase(t)
	lc := fxtest.NewLifecycle(t)
	store, err := cache.NewStore(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	publisher, err := messaging.NewClient(lc, cfg, zap.NewNop())
	require.NoError(t, err)

	svc, err := service.NewService(service.Params{
		Repository: repo.NewRepository(conns, cfg),
		Cache:      store,
		Config:     cfg,
		Logger:     zap.NewNop(),
		Publisher:  publisher,
	})
	require.NoError(t, err)

	e := echo.New()
	transport.Register(e, transport.NewHandler(svc, cfg))
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func createOrder(t *testing.T, e *echo.Echo, body string) map[string]any {
	t.Helper()

	rec, env := do(t, e, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestCreateAndGetOrder(t *testing.T) {
	e := newServer(t)

	created := createOrder(t, e, `{"customer":{"name":"Ada","email":"ada@example.com"},"total_amount":60.56,"order_date":"2024-12-01"}`)
	assert.Equal(t, "1", created["id"])
	assert.Equal(t, "#ORD1000", created["order_number"])
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "unpaid", created["payment_status"])
	assert.Equal(t, 60.56, created["total_amount"])
	assert.Equal(t, map[string]any{"name": "Ada", "email": "ada@example.com", "avatar": ""}, created["customer"])

	rec, env := do(t, e, http.MethodGet, "/orders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "#ORD1000", got["order_number"])
}

func TestCreateOrderValidation(t *testing.T) {
	e := newServer(t)

	cases := map[string]string{
		"missing amount":  `{"customer_name":"Ada"}`,
		"negative amount": `{"total_amount":-1}`,
		"bad date":        `{"total_amount":1,"order_date":"01-12-2024"}`,
		"bad status":      `{"total_amount":1,"status":"shipped"}`,
		"malformed":       `{"total_amount":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, env := do(t, e, http.MethodPost, "/orders", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "bad_request", env.Error.Kind)
		})
	}
}

func TestGetUnknownOrder(t *testing.T) {
	e := newServer(t)

	rec, env := do(t, e, http.MethodGet, "/orders/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error.Kind)

	rec, _ = do(t, e, http.MethodGet, "/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteOrder(t *testing.T) {
	e := newServer(t)
	createOrder(t, e, `{"customer_name":"Ada","total_amount":10,"order_date":"2024-12-01"}`)

	rec, env := do(t, e, http.MethodPut, "/orders/1", `{"status":"completed","payment_status":"paid"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "completed", updated["status"])
	assert.Equal(t, "paid", updated["payment_status"])

	rec, _ = do(t, e, http.MethodDelete, "/orders/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec, _ = do(t, e, http.MethodDelete, "/orders/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersPagination(t *testing.T) {
	e := newServer(t)
	for i := 0; i < 3; i++ {
		createOrder(t, e, `{"customer_name":"Ada","total_amount":10,"order_date":"2024-12-01"}`)
	}

	rec, env := do(t, e, http.MethodGet, "/orders?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Orders     []map[string]any `json:"orders"`
		Total      int              `json:"total"`
		Page       int              `json:"page"`
		Limit      int              `json:"limit"`
		TotalPages int              `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "1", page.Orders[0]["id"])

	for _, target := range []string{"/orders?page=0", "/orders?limit=101", "/orders?limit=x", "/orders?status=archived"} {
		rec, _ := do(t, e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestStatsEndpoint(t *testing.T) {
	e := newServer(t)
	createOrder(t, e, `{"total_amount":10,"status":"completed"}`)
	createOrder(t, e, `{"total_amount":10}`)

	rec, env := do(t, e, http.MethodGet, "/orders/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_orders_this_month":2,"pending_orders":1,"shipped_orders":1,"refunded_orders":0}`, string(env.Data))
}

func TestBulkEndpoints(t *testing.T) {
	e := newServer(t)
	createOrder(t, e, `{"total_amount":10}`)
	createOrder(t, e, `{"total_amount":20}`)

	rec, env := do(t, e, http.MethodPut, "/orders/bulk/status", `{"order_ids":[1,2],"status":"refunded"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated_count":2,"orders":[{"id":"1","status":"refunded"},{"id":"2","status":"refunded"}]}`, string(env.Data))

	rec, env = do(t, e, http.MethodPost, "/orders/bulk/duplicate", `{"order_ids":[2]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"duplicated_count":1,"new_orders":[{"id":"3","order_number":"#ORD1002","original_order_id":"2"}]}`, string(env.Data))

	rec, env = do(t, e, http.MethodDelete, "/orders/bulk", `{"order_ids":[1,9]}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []any{float64(9)}, env.Error.Details["missing_ids"])

	rec, env = do(t, e, http.MethodDelete, "/orders/bulk", `{"order_ids":[1,3]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted_count":2,"deleted_ids":["1","3"]}`, string(env.Data))

	rec, _ = do(t, e, http.MethodDelete, "/orders/bulk", `{"order_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodPut, "/orders/bulk/status", `{"order_ids":[2],"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
