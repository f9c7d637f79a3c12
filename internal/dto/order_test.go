package dto_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCreateOrderRequestValidate(t *testing.T) {
	cases := map[string]struct {
		req     dto.CreateOrderRequest
		wantErr bool
	}{
		"valid":           {req: dto.CreateOrderRequest{TotalAmount: amount("60.56"), OrderDate: "2024-12-01"}},
		"zero amount":     {req: dto.CreateOrderRequest{TotalAmount: amount("0")}},
		"missing amount":  {req: dto.CreateOrderRequest{OrderDate: "2024-12-01"}, wantErr: true},
		"negative amount": {req: dto.CreateOrderRequest{TotalAmount: amount("-1")}, wantErr: true},
		"bad date":        {req: dto.CreateOrderRequest{TotalAmount: amount("1"), OrderDate: "12/01/2024"}, wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.req.Validate()
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errorbank.Is(err, errorbank.KindBadRequest))
		})
	}
}

func TestUpdateOrderRequestValidate(t *testing.T) {
	bad := "2024/12/01"
	good := "2024-12-01"

	assert.NoError(t, dto.UpdateOrderRequest{}.Validate())
	assert.NoError(t, dto.UpdateOrderRequest{OrderDate: &good, TotalAmount: amount("5")}.Validate())

	err := dto.UpdateOrderRequest{TotalAmount: amount("-0.01")}.Validate()
	assert.True(t, errorbank.Is(err, errorbank.KindBadRequest))

	err = dto.UpdateOrderRequest{OrderDate: &bad}.Validate()
	require.True(t, errorbank.Is(err, errorbank.KindBadRequest))
	assert.Equal(t, bad, errorbank.From(err).Details()["value"])
}

func TestCreateOrderRequestInput(t *testing.T) {
	name := "Ada"
	req := dto.CreateOrderRequest{
		CustomerName: &name,
		TotalAmount:  amount("10.50"),
		Status:       "completed",
	}

	in := req.Input()
	assert.Equal(t, &name, in.CustomerName)
	assert.True(t, decimal.RequireFromString("10.50").Equal(in.TotalAmount))
	assert.EqualValues(t, "completed", in.Status)
	assert.Nil(t, in.Customer)
}

func TestBulkRequestsValidate(t *testing.T) {
	assert.NoError(t, dto.BulkIDsRequest{OrderIDs: []int64{1, 2}}.Validate())
	assert.True(t, errorbank.Is(dto.BulkIDsRequest{}.Validate(), errorbank.KindBadRequest))
	assert.True(t, errorbank.Is(dto.BulkIDsRequest{OrderIDs: []int64{0}}.Validate(), errorbank.KindBadRequest))

	assert.NoError(t, dto.BulkStatusRequest{OrderIDs: []int64{1}, Status: "refunded"}.Validate())
	assert.True(t, errorbank.Is(dto.BulkStatusRequest{OrderIDs: []int64{1}, Status: "lost"}.Validate(), errorbank.KindBadRequest))
}
