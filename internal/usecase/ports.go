package usecase

import (
	"context"

	"storefront/internal/domain/model"
)

// 注文の読み取りキャッシュと冪等キーの近道。DBが正。
type OrderCache interface {
	GetOrder(ctx context.Context, orderID int64) (model.Order, bool, error)
	SetOrder(ctx context.Context, order model.Order) error
	GetIdempotentOrderID(ctx context.Context, userID int64, key string) (int64, bool, error)
	SetIdempotentOrderID(ctx context.Context, userID int64, key string, orderID int64) error
}

// コミット後に注文確定イベントを流す
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order model.Order) error
}

type nopOrderCache struct{}

func (nopOrderCache) GetOrder(context.Context, int64) (model.Order, bool, error) {
	return model.Order{}, false, nil
}
func (nopOrderCache) SetOrder(context.Context, model.Order) error { return nil }
func (nopOrderCache) GetIdempotentOrderID(context.Context, int64, string) (int64, bool, error) {
	return 0, false, nil
}
func (nopOrderCache) SetIdempotentOrderID(context.Context, int64, string, int64) error { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishOrderPlaced(context.Context, model.Order) error { return nil }
