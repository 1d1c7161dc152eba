package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// CartUsecase は /users/{id}/cart の業務ロジックです。
// 在庫は読むだけ。減らすのは注文確定だけ。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

type CartItemOutput struct {
	ID        int64          `json:"id"`
	ProductID int64          `json:"product_id"`
	Quantity  int64          `json:"quantity"`
	Product   *ProductOutput `json:"product"`
	Subtotal  model.Money    `json:"subtotal"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type CartOutput struct {
	Items     []CartItemOutput `json:"items"`
	Total     model.Money      `json:"total"`
	ItemCount int              `json:"item_count"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type SyncItemInput struct {
	ProductID int64
	Quantity  int64
}

type CartIssueOutput struct {
	CartItemID     int64  `json:"cart_item_id"`
	ProductID      int64  `json:"product_id"`
	Type           string `json:"type"`
	Message        string `json:"message"`
	CartQuantity   int64  `json:"cart_quantity"`
	AvailableStock int64  `json:"available_stock"`
}

type CartValidationOutput struct {
	IsValid    bool              `json:"is_valid"`
	Issues     []CartIssueOutput `json:"issues"`
	ValidItems []CartItemOutput  `json:"valid_items"`
}

type BatchFailure struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason"`
}

type BatchAddOutput struct {
	Succeeded []CartItemOutput
	Failed    []BatchFailure
}

type CartStatsOutput struct {
	TotalItems              int         `json:"total_items"`
	TotalQuantity           int64       `json:"total_quantity"`
	Subtotal                model.Money `json:"subtotal"`
	EstimatedDelivery       model.Money `json:"estimated_delivery"`
	Total                   model.Money `json:"total"`
	FreeDeliveryThreshold   model.Money `json:"free_delivery_threshold"`
	AmountUntilFreeDelivery model.Money `json:"amount_until_free_delivery"`
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := loadCart(ctx, r, userID)
		if err != nil {
			return err
		}

		// 商品が消えた明細は表示しない
		out.Items = make([]CartItemOutput, 0, len(items))
		for _, it := range items {
			if it.Product == nil {
				continue
			}
			out.Items = append(out.Items, toCartItemOutput(it))
		}
		s := cart.Summarize(items)
		out.Total = model.NewMoney(s.Subtotal)
		out.ItemCount = s.ItemCount
		return nil
	})
	return out, err
}

// AddItem は同一商品なら数量加算。既存数量＋追加分が在庫を超えたら失敗。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (CartItemOutput, error) {
	var out CartItemOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		it, err := addItem(ctx, r, userID, in)
		if err != nil {
			return err
		}
		out = toCartItemOutput(it)
		return nil
	})
	return out, err
}

func addItem(ctx context.Context, r repo.TxRepos, userID int64, in AddCartInput) (model.CartItem, error) {
	if in.ProductID <= 0 {
		return model.CartItem{}, Validation("product_id is required")
	}
	if in.Quantity < 1 {
		return model.CartItem{}, Validation("quantity must be at least 1")
	}

	p, err := r.Products().FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, NotFound("Product not found")
	}
	if err != nil {
		return model.CartItem{}, Internal(err)
	}
	if !p.Available() {
		return model.CartItem{}, Validation("%s is no longer available", p.Name)
	}

	existing, found, err := r.CartItems().FindByUserAndProduct(ctx, userID, p.ID)
	if err != nil {
		return model.CartItem{}, Internal(err)
	}
	var inCart int64
	if found {
		inCart = existing.Quantity
	}
	// 加算せずに比較する（桁あふれ防止）
	if in.Quantity > p.Stock-inCart {
		return model.CartItem{}, InsufficientStock(p.Stock)
	}

	it, err := r.CartItems().AddQuantity(ctx, userID, p.ID, in.Quantity)
	if err != nil {
		return model.CartItem{}, Internal(err)
	}
	it.Product = &p
	return it, nil
}

// SetQuantity は0以下なら削除（removed=true）。
func (u *CartUsecase) SetQuantity(ctx context.Context, userID int64, cartItemID int64, qty int64) (CartItemOutput, bool, error) {
	if cartItemID <= 0 {
		return CartItemOutput{}, false, Validation("invalid cart item id")
	}

	var (
		out     CartItemOutput
		removed bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}

		//所有チェック（他人の明細は見えない扱い）
		it, err := r.CartItems().FindByIDForUser(ctx, cartItemID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Cart item not found")
		}
		if err != nil {
			return Internal(err)
		}

		if qty <= 0 {
			if err := r.CartItems().DeleteByIDForUser(ctx, cartItemID, userID); err != nil {
				return Internal(err)
			}
			removed = true
			return nil
		}

		p, err := r.Products().FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Product not found")
		}
		if err != nil {
			return Internal(err)
		}
		if qty > p.Stock {
			return InsufficientStock(p.Stock)
		}

		updated, err := r.CartItems().UpdateQuantity(ctx, cartItemID, qty)
		if err != nil {
			return Internal(err)
		}
		updated.Product = &p
		out = toCartItemOutput(updated)
		return nil
	})
	return out, removed, err
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) error {
	if cartItemID <= 0 {
		return Validation("invalid cart item id")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		err := r.CartItems().DeleteByIDForUser(ctx, cartItemID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Cart item not found")
		}
		if err != nil {
			return Internal(err)
		}
		return nil
	})
}

// Clear は削除した件数を返す
func (u *CartUsecase) Clear(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		removed, err := r.CartItems().DeleteAllByUserID(ctx, userID)
		if err != nil {
			return Internal(err)
		}
		n = removed
		return nil
	})
	return n, err
}

// Sync はクライアントのカートを取り込む。
// 既存行は max(サーバー, クライアント)。不正な行と存在しない商品は読み飛ばす。在庫は見ない。
func (u *CartUsecase) Sync(ctx context.Context, userID int64, items []SyncItemInput) (int, error) {
	var synced int
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}

		touched := map[int64]struct{}{}
		for _, in := range items {
			if in.ProductID <= 0 || in.Quantity <= 0 {
				continue
			}
			if _, err := r.Products().FindByID(ctx, in.ProductID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					continue
				}
				return Internal(err)
			}

			existing, found, err := r.CartItems().FindByUserAndProduct(ctx, userID, in.ProductID)
			if err != nil {
				return Internal(err)
			}
			switch {
			case !found:
				if _, err := r.CartItems().AddQuantity(ctx, userID, in.ProductID, in.Quantity); err != nil {
					return Internal(err)
				}
			case in.Quantity > existing.Quantity:
				if _, err := r.CartItems().UpdateQuantity(ctx, existing.ID, in.Quantity); err != nil {
					return Internal(err)
				}
			}
			touched[in.ProductID] = struct{}{}
		}
		synced = len(touched)
		return nil
	})
	return synced, err
}

// Validate は現在の在庫と公開状態でカートを検査する（変更はしない）
func (u *CartUsecase) Validate(ctx context.Context, userID int64) (CartValidationOutput, error) {
	var out CartValidationOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := loadCart(ctx, r, userID)
		if err != nil {
			return err
		}

		rep := cart.Validate(items)
		out.IsValid = rep.Valid
		out.Issues = make([]CartIssueOutput, 0, len(rep.Issues))
		for _, is := range rep.Issues {
			out.Issues = append(out.Issues, CartIssueOutput{
				CartItemID:     is.CartItemID,
				ProductID:      is.ProductID,
				Type:           string(is.Kind),
				Message:        is.Message,
				CartQuantity:   is.Requested,
				AvailableStock: is.Available,
			})
		}
		out.ValidItems = make([]CartItemOutput, 0, len(rep.ValidItems))
		for _, it := range rep.ValidItems {
			out.ValidItems = append(out.ValidItems, toCartItemOutput(it))
		}
		return nil
	})
	return out, err
}

// BatchAdd は1件ずつセーブポイントで追加する。失敗した行だけ戻して残りはコミット。
func (u *CartUsecase) BatchAdd(ctx context.Context, userID int64, items []AddCartInput) (BatchAddOutput, error) {
	if len(items) == 0 {
		return BatchAddOutput{}, Validation("No items provided")
	}

	var out BatchAddOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}

		out = BatchAddOutput{
			Succeeded: make([]CartItemOutput, 0, len(items)),
			Failed:    []BatchFailure{},
		}
		for _, in := range items {
			var added model.CartItem
			err := r.Savepoint(ctx, func(sp repo.TxRepos) error {
				it, err := addItem(ctx, sp, userID, in)
				added = it
				return err
			})
			if err != nil {
				out.Failed = append(out.Failed, BatchFailure{
					ProductID: in.ProductID,
					Quantity:  in.Quantity,
					Reason:    batchReason(in.ProductID, err),
				})
				continue
			}
			out.Succeeded = append(out.Succeeded, toCartItemOutput(added))
		}
		return nil
	})
	if err != nil {
		return BatchAddOutput{}, err
	}
	return out, nil
}

func batchReason(productID int64, err error) string {
	msg := "internal error"
	if he, ok := AsHTTPError(err); ok {
		msg = he.Message
	}
	return fmt.Sprintf("Product %d: %s", productID, msg)
}

func (u *CartUsecase) Stats(ctx context.Context, userID int64) (CartStatsOutput, error) {
	var out CartStatsOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := loadCart(ctx, r, userID)
		if err != nil {
			return err
		}
		s := cart.Summarize(items)
		out = CartStatsOutput{
			TotalItems:              s.ItemCount,
			TotalQuantity:           s.TotalQuantity,
			Subtotal:                model.NewMoney(s.Subtotal),
			EstimatedDelivery:       model.NewMoney(s.DeliveryFee),
			Total:                   model.NewMoney(s.Total),
			FreeDeliveryThreshold:   model.NewMoney(cart.FreeDeliveryThreshold),
			AmountUntilFreeDelivery: model.NewMoney(s.AmountUntilFreeDelivery),
		}
		return nil
	})
	return out, err
}

func loadCart(ctx context.Context, r repo.TxRepos, userID int64) ([]model.CartItem, error) {
	if err := requireUser(ctx, r, userID); err != nil {
		return nil, err
	}
	items, err := r.CartItems().ListByUserID(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	return items, nil
}

// ユーザーの存在確認（無ければ404）
func requireUser(ctx context.Context, r repo.TxRepos, userID int64) error {
	if userID <= 0 {
		return NotFound("User not found")
	}
	_, err := r.Users().FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("User not found")
	}
	if err != nil {
		return Internal(err)
	}
	return nil
}

func toCartItemOutput(it model.CartItem) CartItemOutput {
	out := CartItemOutput{
		ID:        it.ID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Subtotal:  model.NewMoney(cart.LineSubtotal(it)),
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
	if it.Product != nil {
		p := toProductOutput(*it.Product)
		out.Product = &p
	}
	return out
}
