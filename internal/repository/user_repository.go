package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// ユーザー管理は外部サービス。ここでは存在確認だけ。
type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}
