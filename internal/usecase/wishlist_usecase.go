package usecase

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// ウィッシュリスト。カートと同じ一意制約だが在庫は見ない。
type WishlistUsecase struct {
	tx repo.TransactionManager
}

func NewWishlistUsecase(tx repo.TransactionManager) *WishlistUsecase {
	return &WishlistUsecase{tx: tx}
}

type WishlistItemOutput struct {
	ID        int64          `json:"id"`
	ProductID int64          `json:"product_id"`
	Product   *ProductOutput `json:"product"`
	CreatedAt time.Time      `json:"created_at"`
}

// 新しい順。消えた商品は出さない。
func (u *WishlistUsecase) List(ctx context.Context, userID int64) ([]WishlistItemOutput, error) {
	var out []WishlistItemOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		items, err := r.Wishlist().ListByUserID(ctx, userID)
		if err != nil {
			return Internal(err)
		}
		out = make([]WishlistItemOutput, 0, len(items))
		for _, it := range items {
			if it.Product == nil {
				continue
			}
			out = append(out, toWishlistItemOutput(it))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *WishlistUsecase) Add(ctx context.Context, userID int64, productID int64) (WishlistItemOutput, error) {
	if productID <= 0 {
		return WishlistItemOutput{}, Validation("product_id is required")
	}

	var out WishlistItemOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Product not found")
		}
		if err != nil {
			return Internal(err)
		}

		it, err := r.Wishlist().Create(ctx, userID, productID)
		if errors.Is(err, repo.ErrDuplicate) {
			return Conflict("Product already in wishlist")
		}
		if err != nil {
			return Internal(err)
		}
		it.Product = &p
		out = toWishlistItemOutput(it)
		return nil
	})
	return out, err
}

func (u *WishlistUsecase) Remove(ctx context.Context, userID int64, productID int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		err := r.Wishlist().DeleteByUserAndProduct(ctx, userID, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Item not found in wishlist")
		}
		if err != nil {
			return Internal(err)
		}
		return nil
	})
}

func (u *WishlistUsecase) Clear(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		removed, err := r.Wishlist().DeleteAllByUserID(ctx, userID)
		if err != nil {
			return Internal(err)
		}
		n = removed
		return nil
	})
	return n, err
}

func toWishlistItemOutput(it model.WishlistItem) WishlistItemOutput {
	out := WishlistItemOutput{
		ID:        it.ID,
		ProductID: it.ProductID,
		CreatedAt: it.CreatedAt,
	}
	if it.Product != nil {
		p := toProductOutput(*it.Product)
		out.Product = &p
	}
	return out
}
