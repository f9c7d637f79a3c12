package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	e := NewEcho(config.Config{}, nil, zap.NewNop())

	rec := serve(e, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	e := NewEcho(config.Config{}, nil, zap.NewNop())

	rec := serve(e, http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "not_found", body.Error.Kind)
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	e := NewEcho(config.Config{}, nil, zap.NewNop())
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := serve(e, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"internal"`)
}

func TestFromHTTPError(t *testing.T) {
	cases := []struct {
		code int
		kind errorbank.Kind
	}{
		{http.StatusNotFound, errorbank.KindNotFound},
		{http.StatusMethodNotAllowed, errorbank.KindBadRequest},
		{http.StatusUnsupportedMediaType, errorbank.KindBadRequest},
		{http.StatusConflict, errorbank.KindConflict},
		{http.StatusServiceUnavailable, errorbank.KindInternal},
	}
	for _, tc := range cases {
		err := fromHTTPError(echo.NewHTTPError(tc.code))
		assert.True(t, errorbank.Is(err, tc.kind), tc.code)
		assert.Equal(t, http.StatusText(tc.code), errorbank.From(err).Message())
	}
}
