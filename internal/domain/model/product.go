package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// カテゴリ（カタログ側の持ち物。コアからは参照のみ）
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"-"`
}

// 商品。stockは注文確定でのみ減る。
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Unit        string          `gorm:"type:varchar(20);not null;default:''" json:"unit"`
	Stock       int64           `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock >= 0" json:"stock"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url"`
	Rating      decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0" json:"rating"`
	CategoryID  int64           `gorm:"not null;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// 購入できる状態か（論理削除済み・非公開は不可）
func (p Product) Available() bool {
	return p.IsActive && !p.DeletedAt.Valid
}
