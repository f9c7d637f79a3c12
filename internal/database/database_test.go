package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

func TestIsUniqueViolationOnSQLiteDuplicate(t *testing.T) {
	conns, _ := testutil.NewDatabase(t)
	ctx := context.Background()

	order := func() *entity.Order {
		return &entity.Order{
			OrderNumber:   "#ORD1000",
			OrderDate:     "2024-12-16",
			Status:        entity.OrderStatusPending,
			PaymentStatus: entity.PaymentStatusUnpaid,
			TotalAmount:   decimal.NewFromInt(1),
		}
	}
	_, err := conns.Writer.NewInsert().Model(order()).Exec(ctx)
	require.NoError(t, err)

	_, err = conns.Writer.NewInsert().Model(order()).Exec(ctx)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.True(t, database.IsUniqueViolation(fmt.Errorf("insert: %w", err)))
}

func TestIsUniqueViolationOnOtherErrors(t *testing.T) {
	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(errors.New("boom")))
	assert.True(t, database.IsUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, database.IsUniqueViolation(&mysql.MySQLError{Number: 1452}))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := database.New(fxtest.NewLifecycle(t), config.Config{
		Database: config.Database{Driver: "oracle", WriterDSN: "x", ReaderDSN: "x"},
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewSharesReaderWhenDSNMatches(t *testing.T) {
	conns, _ := testutil.NewDatabase(t)

	assert.Equal(t, "sqlite", conns.Driver)
	assert.Same(t, conns.Writer, conns.Reader)
}
