package lifecycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/models"
)

func TestParseStatus(t *testing.T) {
	for _, st := range lifecycle.Statuses {
		got, err := lifecycle.ParseStatus(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := lifecycle.ParseStatus("shipped")
	assert.ErrorIs(t, err, lifecycle.ErrUnknownStatus)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, lifecycle.IsTerminal(models.StatusDelivered))
	assert.True(t, lifecycle.IsTerminal(models.StatusCancelled))
	assert.False(t, lifecycle.IsTerminal(models.StatusOutForDelivery))
	assert.Empty(t, lifecycle.Next(models.StatusDelivered))
	assert.Empty(t, lifecycle.Next(models.StatusCancelled))
}

func TestCancelReachableFromEveryActiveStatus(t *testing.T) {
	for _, st := range lifecycle.Statuses {
		if lifecycle.IsTerminal(st) {
			continue
		}
		assert.True(t, lifecycle.CanTransition(st, models.StatusCancelled), "from %s", st)
	}
}

func TestPolicyCheck(t *testing.T) {
	tests := []struct {
		name    string
		policy  lifecycle.Policy
		from    models.OrderStatus
		to      models.OrderStatus
		wantErr error
	}{
		{"permissive backwards", lifecycle.Permissive, models.StatusDelivered, models.StatusPending, nil},
		{"permissive unknown", lifecycle.Permissive, models.StatusPending, "lost", lifecycle.ErrUnknownStatus},
		{"strict forward", lifecycle.Strict, models.StatusPending, models.StatusConfirmed, nil},
		{"strict skip", lifecycle.Strict, models.StatusPending, models.StatusDelivered, lifecycle.ErrTransitionNotAllowed},
		{"strict from terminal", lifecycle.Strict, models.StatusCancelled, models.StatusPending, lifecycle.ErrTransitionNotAllowed},
		{"strict same status", lifecycle.Strict, models.StatusDelivered, models.StatusDelivered, nil},
		{"strict cancel", lifecycle.Strict, models.StatusOutForDelivery, models.StatusCancelled, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Check(tt.from, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTotalIsExactInCents(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 1, Price: 45.99, Quantity: 1},
		{ProductID: 3, Price: 12.99, Quantity: 1},
	}
	assert.Equal(t, 58.98, lifecycle.Total(items))

	items = append(items, models.CartItem{ProductID: 6, Price: 9.99, Quantity: 3})
	assert.Equal(t, 88.95, lifecycle.Total(items))

	assert.Equal(t, 0.0, lifecycle.Total(nil))
}

func TestTotalRoundsLinesNotUnitPrices(t *testing.T) {
	items := []models.CartItem{{ProductID: 9, Price: 0.125, Quantity: 100}}
	assert.Equal(t, 12.5, lifecycle.Total(items))

	q := lifecycle.NewQuote(items)
	assert.Equal(t, 12.5, q.Subtotal)
	assert.Equal(t, 1.0, q.Tax)
	assert.Equal(t, 23.5, q.Total)

	// 0.333 × 3 = 0.999 rounds once to 1.00
	assert.Equal(t, 1.0, lifecycle.Total([]models.CartItem{{Price: 0.333, Quantity: 3}}))
}

func TestNewQuote(t *testing.T) {
	q := lifecycle.NewQuote([]models.CartItem{{Price: 12.99, Quantity: 2}})
	assert.Equal(t, 25.98, q.Subtotal)
	assert.Equal(t, 10.0, q.Shipping)
	assert.Equal(t, 2.08, q.Tax)
	assert.Equal(t, 38.06, q.Total)
	assert.Equal(t, 2, q.Items)

	q = lifecycle.NewQuote([]models.CartItem{{Price: 45.99, Quantity: 2}})
	assert.Equal(t, 0.0, q.Shipping)
	assert.Equal(t, 7.36, q.Tax)
	assert.Equal(t, 99.34, q.Total)
}

func TestOrderID(t *testing.T) {
	now := time.UnixMilli(1_700_000_123_456)
	assert.Equal(t, "ORD-123456", lifecycle.OrderID(now, nil))

	taken := map[string]bool{"ORD-123456": true, "ORD-123457": true}
	id := lifecycle.OrderID(now, func(id string) bool { return taken[id] })
	assert.Equal(t, "ORD-123458", id)
}

func TestOrderIDWrapsSuffix(t *testing.T) {
	now := time.UnixMilli(1_700_000_999_999)
	taken := map[string]bool{"ORD-999999": true}
	assert.Equal(t, "ORD-000000", lifecycle.OrderID(now, func(id string) bool { return taken[id] }))
}
