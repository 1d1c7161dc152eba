package repository

import (
	"context"
	"database/sql"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	db *gorm.DB

	users      repo.UserRepository
	categories repo.CategoryRepository
	products   repo.ProductRepository
	inventory  repo.InventoryRepository
	cartItems  repo.CartItemRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	wishlist   repo.WishlistRepository
}

//repoはtxを持ったDBで作り直す
func newTxReposGorm(tx *gorm.DB) *txReposGorm {
	return &txReposGorm{
		db:         tx,
		users:      NewUserGormRepository(tx),
		categories: NewCategoryGormRepository(tx),
		products:   NewProductGormRepository(tx),
		inventory:  NewInventoryGormRepository(tx),
		cartItems:  NewCartItemGormRepository(tx),
		orders:     NewOrderGormRepository(tx),
		orderItems: NewOrderItemGormRepository(tx),
		wishlist:   NewWishlistGormRepository(tx),
	}
}

func (r *txReposGorm) Users() repo.UserRepository           { return r.users }
func (r *txReposGorm) Categories() repo.CategoryRepository  { return r.categories }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) Wishlist() repo.WishlistRepository    { return r.wishlist }

// Tx中のTransactionはgormがSAVEPOINTにする
func (r *txReposGorm) Savepoint(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return r.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return fn(newTxReposGorm(sp))
	})
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxReposGorm(tx))
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}
