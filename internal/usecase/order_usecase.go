package usecase

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/model"
	"storefront/internal/obs"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// 同じ冪等キーで先に別の注文がコミットされた
var errIdempotentRace = errors.New("idempotency key already used")

type OrderUsecase struct {
	tx     repo.TransactionManager
	cache  OrderCache
	events OrderEventPublisher
}

// cache/events はnilなら何もしない実装を使う
func NewOrderUsecase(tx repo.TransactionManager, cache OrderCache, events OrderEventPublisher) *OrderUsecase {
	if cache == nil {
		cache = nopOrderCache{}
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &OrderUsecase{tx: tx, cache: cache, events: events}
}

// Price はクライアント表示用のヒント。確定価格はサーバーで決める。
type PlaceOrderItemInput struct {
	ProductID int64
	Quantity  int64
	Price     *model.Money
}

type PlaceOrderInput struct {
	UserID         int64
	TotalAmount    *model.Money
	Items          []PlaceOrderItemInput
	IdempotencyKey string
}

type PlaceOrderOutput struct {
	OrderID     int64
	TotalAmount model.Money
	// 同じ冪等キーの再送で既存の注文を返した
	Replayed bool
}

type OrderItemOutput struct {
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int64       `json:"quantity"`
	Price       model.Money `json:"price"`
}

type OrderOutput struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	TotalAmount model.Money       `json:"total_amount"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []OrderItemOutput `json:"items"`
}

type OrderSummaryOutput struct {
	ID          int64       `json:"id"`
	TotalAmount model.Money `json:"total_amount"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ItemsCount  int         `json:"items_count"`
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if in.UserID <= 0 {
		return PlaceOrderOutput{}, Validation("user_id is required")
	}
	if in.TotalAmount == nil {
		return PlaceOrderOutput{}, Validation("total_amount is required")
	}
	if len(in.Items) == 0 {
		return PlaceOrderOutput{}, Validation("items are required")
	}
	perProduct := make(map[int64]int64, len(in.Items))
	for i, it := range in.Items {
		if it.ProductID <= 0 {
			return PlaceOrderOutput{}, Validation("items[%d]: product_id is required", i)
		}
		if it.Quantity <= 0 {
			return PlaceOrderOutput{}, Validation("items[%d]: quantity must be at least 1", i)
		}
		// 同じ商品の合計がint64を超えないこと
		if it.Quantity > math.MaxInt64-perProduct[it.ProductID] {
			return PlaceOrderOutput{}, Validation("items[%d]: quantity is too large", i)
		}
		perProduct[it.ProductID] += it.Quantity
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return PlaceOrderOutput{}, Validation("invalid idempotency key")
	}

	// キャッシュに同じキーがあれば近道
	if key != "" {
		if out, ok := u.replayFromCache(ctx, in.UserID, key); ok {
			return out, nil
		}
	}

	var created model.Order
	var out PlaceOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, in.UserID); err != nil {
			return err
		}

		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, in.UserID, key)
			if err != nil {
				return Internal(err)
			}
			if found {
				out = replayed(existing)
				return nil
			}
		}

		items, moves, subtotal, err := reserveStock(ctx, r, in.Items)
		if err != nil {
			return err
		}

		total := subtotal.Add(cart.DeliveryFee(subtotal)).Round(2)
		if !in.TotalAmount.Decimal().Round(2).Equal(total) {
			obs.Logger.Warn("order total differs from client",
				"user_id", in.UserID,
				"client_total", in.TotalAmount.Decimal().StringFixed(2),
				"server_total", total.StringFixed(2),
			)
		}

		order := model.Order{
			UserID:      in.UserID,
			TotalAmount: total,
			Status:      model.OrderStatusPending,
			CreatedAt:   time.Now(),
		}
		if key != "" {
			order.IdempotencyKey = &key
		}

		o, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicate) {
			// 在庫減算ごと巻き戻してから既存の注文を読み直す
			return errIdempotentRace
		}
		if err != nil {
			return Internal(err)
		}

		saved, err := r.OrderItems().CreateBulk(ctx, o.ID, items)
		if err != nil {
			return Internal(err)
		}
		o.Items = saved

		for _, m := range moves {
			m.OrderID = &o.ID
			if err := r.Inventory().RecordAdjustment(ctx, m); err != nil {
				return Internal(err)
			}
		}

		created = o
		out = PlaceOrderOutput{OrderID: o.ID, TotalAmount: model.NewMoney(o.TotalAmount)}
		return nil
	})
	if errors.Is(err, errIdempotentRace) {
		return u.replayFromStore(ctx, in.UserID, key)
	}
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	if created.ID != 0 {
		u.afterCommit(ctx, created, key)
	}
	return out, nil
}

// 商品IDの昇順でロックして在庫を減らす。明細は送られてきた順。
func reserveStock(ctx context.Context, r repo.TxRepos, in []PlaceOrderItemInput) ([]model.OrderItem, []model.InventoryAdjustment, decimal.Decimal, error) {
	qtyByProduct := map[int64]int64{}
	for _, it := range in {
		qtyByProduct[it.ProductID] += it.Quantity
	}
	ids := make([]int64, 0, len(qtyByProduct))
	for id := range qtyByProduct {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := make(map[int64]model.Product, len(ids))
	moves := make([]model.InventoryAdjustment, 0, len(ids))
	for _, id := range ids {
		p, err := r.Inventory().LockByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, decimal.Zero, NotFound("Product %d not found", id)
		}
		if err != nil {
			return nil, nil, decimal.Zero, Internal(err)
		}
		if !p.Available() {
			return nil, nil, decimal.Zero, Validation("%s is no longer available", p.Name)
		}

		qty := qtyByProduct[id]
		if qty > p.Stock {
			return nil, nil, decimal.Zero, InsufficientStock(p.Stock)
		}
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, id, qty)
		if err != nil {
			return nil, nil, decimal.Zero, Internal(err)
		}
		if !ok {
			return nil, nil, decimal.Zero, InsufficientStock(p.Stock)
		}
		products[id] = p
		moves = append(moves, model.InventoryAdjustment{
			ProductID: id,
			Delta:     -qty,
			Reason:    model.AdjustmentReasonOrderPlaced,
		})
	}

	items := make([]model.OrderItem, 0, len(in))
	subtotal := decimal.Zero
	for _, it := range in {
		p := products[it.ProductID]
		if it.Price != nil && !it.Price.Decimal().Round(2).Equal(p.Price.Round(2)) {
			obs.Logger.Warn("item price differs from catalog",
				"product_id", p.ID,
				"client_price", it.Price.Decimal().StringFixed(2),
				"price", p.Price.StringFixed(2),
			)
		}
		items = append(items, model.OrderItem{
			ProductID:           p.ID,
			ProductNameSnapshot: p.Name,
			Quantity:            it.Quantity,
			Price:               p.Price,
		})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return items, moves, subtotal.Round(2), nil
}

func (u *OrderUsecase) replayFromCache(ctx context.Context, userID int64, key string) (PlaceOrderOutput, bool) {
	orderID, ok, err := u.cache.GetIdempotentOrderID(ctx, userID, key)
	if err != nil {
		obs.Logger.Warn("idempotency cache read failed", "err", err)
		return PlaceOrderOutput{}, false
	}
	if !ok {
		return PlaceOrderOutput{}, false
	}

	var out PlaceOrderOutput
	found := false
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		// DBが正。キーが一致しなければ使わない
		if o.UserID != userID || o.IdempotencyKey == nil || *o.IdempotencyKey != key {
			return nil
		}
		out = replayed(o)
		found = true
		return nil
	})
	if err != nil {
		obs.Logger.Warn("idempotency replay lookup failed", "order_id", orderID, "err", err)
		return PlaceOrderOutput{}, false
	}
	return out, found
}

func (u *OrderUsecase) replayFromStore(ctx context.Context, userID int64, key string) (PlaceOrderOutput, error) {
	var out PlaceOrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return Internal(err)
		}
		if !found {
			return Conflict("idempotency conflict")
		}
		out = replayed(existing)
		return nil
	})
	return out, err
}

// キャッシュとイベントは失敗してもログだけ（注文はコミット済み）
func (u *OrderUsecase) afterCommit(ctx context.Context, o model.Order, key string) {
	if err := u.cache.SetOrder(ctx, o); err != nil {
		obs.Logger.Warn("order cache write failed", "order_id", o.ID, "err", err)
	}
	if key != "" {
		if err := u.cache.SetIdempotentOrderID(ctx, o.UserID, key, o.ID); err != nil {
			obs.Logger.Warn("idempotency cache write failed", "order_id", o.ID, "err", err)
		}
	}
	if err := u.events.PublishOrderPlaced(ctx, o); err != nil {
		obs.Logger.Error("order placed event failed", "order_id", o.ID, "err", err)
	}
	obs.Logger.Info("order placed",
		"order_id", o.ID,
		"user_id", o.UserID,
		"total_amount", o.TotalAmount.StringFixed(2),
		"items", len(o.Items),
	)
}

func replayed(o model.Order) PlaceOrderOutput {
	return PlaceOrderOutput{
		OrderID:     o.ID,
		TotalAmount: model.NewMoney(o.TotalAmount),
		Replayed:    true,
	}
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, Validation("invalid order id")
	}

	if o, ok, err := u.cache.GetOrder(ctx, orderID); err != nil {
		obs.Logger.Warn("order cache read failed", "order_id", orderID, "err", err)
	} else if ok {
		return toOrderOutput(o), nil
	}

	var o model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Order not found")
		}
		if err != nil {
			return Internal(err)
		}
		o = found
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if err := u.cache.SetOrder(ctx, o); err != nil {
		obs.Logger.Warn("order cache write failed", "order_id", o.ID, "err", err)
	}
	return toOrderOutput(o), nil
}

// 新しい順
func (u *OrderUsecase) ListOrdersForUser(ctx context.Context, userID int64) ([]OrderSummaryOutput, error) {
	var outs []OrderSummaryOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := requireUser(ctx, r, userID); err != nil {
			return err
		}
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return Internal(err)
		}
		outs = make([]OrderSummaryOutput, 0, len(orders))
		for _, o := range orders {
			outs = append(outs, OrderSummaryOutput{
				ID:          o.ID,
				TotalAmount: model.NewMoney(o.TotalAmount),
				Status:      string(o.Status),
				CreatedAt:   o.CreatedAt,
				ItemsCount:  len(o.Items),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outs, nil
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			ProductID:   it.ProductID,
			ProductName: it.ProductNameSnapshot,
			Quantity:    it.Quantity,
			Price:       model.NewMoney(it.Price),
		})
	}
	return OrderOutput{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: model.NewMoney(o.TotalAmount),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		Items:       items,
	}
}
