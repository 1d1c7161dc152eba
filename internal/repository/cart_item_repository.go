package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	// Productも一緒に読む（消えた商品はnil）
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)

	// 行ロック付きで取得。他人の明細はErrNotFound。
	FindByIDForUser(ctx context.Context, cartItemID int64, userID int64) (model.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, bool, error)

	// 同一商品は数量加算、無ければ作成。結果の行を返す。
	AddQuantity(ctx context.Context, userID int64, productID int64, addQty int64) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) (model.CartItem, error)

	DeleteByIDForUser(ctx context.Context, cartItemID int64, userID int64) error
	DeleteAllByUserID(ctx context.Context, userID int64) (int64, error)
}
