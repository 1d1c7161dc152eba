package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const (
	// order:{order_id} -> 注文詳細JSON
	KeyOrder = "order:%d"
	// idem:order:create:{user_id}:{key} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%d:%s"
)

var (
	TTLOrder       = 5 * time.Minute
	TTLIdempotency = 24 * time.Hour
)

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// OrderCache は注文詳細と冪等キーをRedisに置く。DBが正なので消えても困らない。
type OrderCache struct {
	rdb *redis.Client
}

func NewOrderCache(rdb *redis.Client) *OrderCache {
	return &OrderCache{rdb: rdb}
}

func (c *OrderCache) GetOrder(ctx context.Context, orderID int64) (model.Order, bool, error) {
	s, err := c.rdb.Get(ctx, fmt.Sprintf(KeyOrder, orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}

	var o model.Order
	if err := json.Unmarshal([]byte(s), &o); err != nil {
		return model.Order{}, false, fmt.Errorf("decode cached order: %w", err)
	}
	return o, true, nil
}

func (c *OrderCache) SetOrder(ctx context.Context, order model.Order) error {
	b, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(KeyOrder, order.ID), b, TTLOrder).Err()
}

func (c *OrderCache) GetIdempotentOrderID(ctx context.Context, userID int64, key string) (int64, bool, error) {
	s, err := c.rdb.Get(ctx, fmt.Sprintf(KeyIdemOrderCreate, userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("decode cached order id: %w", err)
	}
	return id, true, nil
}

func (c *OrderCache) SetIdempotentOrderID(ctx context.Context, userID int64, key string, orderID int64) error {
	return c.rdb.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, userID, key), orderID, TTLIdempotency).Err()
}
