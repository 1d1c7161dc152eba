package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 在庫を減らせるのは注文確定だけ。
type InventoryRepository interface {
	// 商品行をロックして取得（SELECT ... FOR UPDATE）
	LockByID(ctx context.Context, productID int64) (model.Product, error)
	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
	// 増減の履歴を1件残す
	RecordAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
	ListAdjustments(ctx context.Context, productID int64) ([]model.InventoryAdjustment, error)
}
