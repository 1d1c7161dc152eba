package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"storefront/internal/domain/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TEST_REDIS_ADDR があるときだけ実Redisで確認する
func newTestCache(t *testing.T) *OrderCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := NewClient(addr)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return NewOrderCache(rdb)
}

func TestOrderCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	orderID := time.Now().UnixNano()
	_, found, err := c.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, found)

	o := model.Order{
		ID:          orderID,
		UserID:      7,
		TotalAmount: decimal.RequireFromString("25.99"),
		Status:      model.OrderStatusPending,
		Items: []model.OrderItem{
			{ProductID: 1, ProductNameSnapshot: "Apples", Quantity: 2, Price: decimal.RequireFromString("10.00")},
		},
	}
	require.NoError(t, c.SetOrder(ctx, o))

	got, found, err := c.GetOrder(ctx, orderID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.TotalAmount.Equal(o.TotalAmount))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Apples", got.Items[0].ProductNameSnapshot)
}

func TestOrderCache_IdempotencyKey(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := uuid.NewString()

	_, found, err := c.GetIdempotentOrderID(ctx, 1, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetIdempotentOrderID(ctx, 1, key, 42))

	id, found, err := c.GetIdempotentOrderID(ctx, 1, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), id)

	// ユーザーが違えば別キー
	_, found, err = c.GetIdempotentOrderID(ctx, 2, key)
	require.NoError(t, err)
	assert.False(t, found)
}
