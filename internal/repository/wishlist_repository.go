package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type WishlistRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)
	// 既にあればErrDuplicate
	Create(ctx context.Context, userID int64, productID int64) (model.WishlistItem, error)
	DeleteByUserAndProduct(ctx context.Context, userID int64, productID int64) error
	DeleteAllByUserID(ctx context.Context, userID int64) (int64, error)
}
