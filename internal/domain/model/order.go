package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
)

type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"not null;index;uniqueIndex:idx_orders_user_idempotency" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Status      OrderStatus     `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`
	// 同じキーの再送は同じ注文を返す（NULLは重複可）
	IdempotencyKey *string     `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idempotency" json:"-"`
	CreatedAt      time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	Items          []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}
