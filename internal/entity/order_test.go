package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestPaymentStatusValid(t *testing.T) {
	assert.True(t, PaymentStatusPaid.Valid())
	assert.True(t, PaymentStatusUnpaid.Valid())
	assert.False(t, PaymentStatus("PAID").Valid())
}
