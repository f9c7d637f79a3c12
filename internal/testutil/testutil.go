// Package testutil provides a migrated SQLite database and fixed clocks for
// package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/migration"
)

// Config returns configuration pointing at a fresh SQLite file under the
// test's temp dir, with caching and messaging disabled.
func Config(t *testing.T) config.Config {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "orders.db") + "?_busy_timeout=5000"
	return config.Config{
		Cache: config.Cache{Driver: "noop", DefaultTTL: time.Minute},
		Messaging: config.Messaging{
			Driver: "noop",
			Kafka:  config.Kafka{Topic: "orders.events"},
		},
		Database: config.Database{
			Driver:    "sqlite",
			WriterDSN: dsn,
			ReaderDSN: dsn,
		},
		Observability: config.Observability{ServiceName: "orderdesk-test", Environment: "test"},
		Orders: config.Orders{
			NumberRetries:   3,
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
	}
}

// OpenDatabase opens cfg's database, applies every migration and closes the
// connections when the test ends.
func OpenDatabase(t *testing.T, cfg config.Config) *database.Connections {
	t.Helper()

	lc := fxtest.NewLifecycle(t)
	conns, err := database.New(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	lc.RequireStart()
	t.Cleanup(func() { lc.RequireStop() })

	mig, err := migration.New(cfg, conns, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, mig.Up(ctx))

	return conns
}

// NewDatabase is Config followed by OpenDatabase.
func NewDatabase(t *testing.T) (*database.Connections, config.Config) {
	t.Helper()

	cfg := Config(t)
	return OpenDatabase(t, cfg), cfg
}

// Clock is a manually advanced time source.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{current: start}
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}
