package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestKindMappings(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   codes.Code
	}{
		{BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{Conflict("dup"), http.StatusConflict, codes.AlreadyExists},
		{NotFound("gone"), http.StatusNotFound, codes.NotFound},
		{Unprocessable("nope"), http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{Internal("boom"), http.StatusInternalServerError, codes.Internal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Kind())
		assert.Equal(t, tc.code, tc.err.GRPCCode(), tc.err.Kind())
	}
}

func TestDetailsAndCause(t *testing.T) {
	cause := errors.New("driver: connection refused")
	err := NotFound("orders not found",
		WithDetail("missing_ids", []int64{7}),
		WithDetails(map[string]any{"operation": "bulk_delete"}),
		WithCause(cause),
	)

	assert.Equal(t, "orders not found", err.Message())
	assert.Equal(t, []int64{7}, err.Details()["missing_ids"])
	assert.Equal(t, "bulk_delete", err.Details()["operation"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	assert.Nil(t, From(nil))

	raw := errors.New("select * from orders failed")
	appErr := From(raw)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.Equal(t, "internal error", appErr.Message())

	wrapped := fmt.Errorf("service: %w", Conflict("retry"))
	assert.Equal(t, KindConflict, From(wrapped).Kind())
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("order not found"))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))
	assert.False(t, Is(errors.New("plain"), KindNotFound))
}

func TestNilAppError(t *testing.T) {
	var appErr *AppError
	assert.Equal(t, "<nil>", appErr.Error())
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode())
}
