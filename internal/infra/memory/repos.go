package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type txRepos struct {
	st  *state
	now func() time.Time
}

func newTxRepos(st *state, now func() time.Time) *txRepos {
	return &txRepos{st: st, now: now}
}

func (r *txRepos) Users() repo.UserRepository           { return users{r} }
func (r *txRepos) Categories() repo.CategoryRepository  { return categories{r} }
func (r *txRepos) Products() repo.ProductRepository     { return products{r} }
func (r *txRepos) Inventory() repo.InventoryRepository  { return inventory{r} }
func (r *txRepos) CartItems() repo.CartItemRepository   { return cartItems{r} }
func (r *txRepos) Orders() repo.OrderRepository         { return orders{r} }
func (r *txRepos) OrderItems() repo.OrderItemRepository { return orderItems{r} }
func (r *txRepos) Wishlist() repo.WishlistRepository    { return wishlist{r} }

func (r *txRepos) Savepoint(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := r.st.clone()
	if err := fn(r); err != nil {
		*r.st = *snap
		return err
	}
	return nil
}

// 論理削除されていない商品
func (r *txRepos) liveProduct(id int64) (model.Product, bool) {
	p, ok := r.st.products[id]
	if !ok || p.DeletedAt.Valid {
		return model.Product{}, false
	}
	return p, true
}

// 読み取り用にCategoryを付ける（保存はしない）
func (r *txRepos) withCategory(p model.Product) model.Product {
	if c, ok := r.st.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return p
}

type users struct{ *txRepos }

func (r users) FindByID(ctx context.Context, userID int64) (model.User, error) {
	u, ok := r.st.users[userID]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

type categories struct{ *txRepos }

func (r categories) List(ctx context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(r.st.categories))
	for _, c := range r.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r categories) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	for _, c := range r.st.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return model.Category{}, repo.ErrNotFound
}

type products struct{ *txRepos }

func (r products) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	// 知らないslugは絞り込みなし
	categoryID := int64(0)
	if slug := strings.TrimSpace(q.CategorySlug); slug != "" {
		if c, err := (categories{r.txRepos}).FindBySlug(ctx, slug); err == nil {
			categoryID = c.ID
		}
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.Product, 0)
	for _, p := range r.st.products {
		if p.DeletedAt.Valid || !p.IsActive {
			continue
		}
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, r.withCategory(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r products) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := r.liveProduct(id)
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return r.withCategory(p), nil
}

type inventory struct{ *txRepos }

func (r inventory) LockByID(ctx context.Context, productID int64) (model.Product, error) {
	p, ok := r.liveProduct(productID)
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r inventory) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	p, ok := r.liveProduct(productID)
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	p.UpdatedAt = r.now()
	r.st.products[productID] = p
	return true, nil
}

func (r inventory) RecordAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	adj.ID = r.st.nextID("inventory_adjustments")
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = r.now()
	}
	adj.Product = nil
	r.st.adjusts[adj.ID] = adj
	return nil
}

func (r inventory) ListAdjustments(ctx context.Context, productID int64) ([]model.InventoryAdjustment, error) {
	out := make([]model.InventoryAdjustment, 0)
	for _, a := range r.st.adjusts {
		if a.ProductID == productID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type cartItems struct{ *txRepos }

func (r cartItems) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	out := make([]model.CartItem, 0)
	for _, it := range r.st.cartItems {
		if it.UserID != userID {
			continue
		}
		if p, ok := r.liveProduct(it.ProductID); ok {
			p = r.withCategory(p)
			it.Product = &p
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r cartItems) FindByIDForUser(ctx context.Context, cartItemID int64, userID int64) (model.CartItem, error) {
	it, ok := r.st.cartItems[cartItemID]
	if !ok || it.UserID != userID {
		return model.CartItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (r cartItems) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, bool, error) {
	for _, it := range r.st.cartItems {
		if it.UserID == userID && it.ProductID == productID {
			return it, true, nil
		}
	}
	return model.CartItem{}, false, nil
}

func (r cartItems) AddQuantity(ctx context.Context, userID int64, productID int64, addQty int64) (model.CartItem, error) {
	now := r.now()
	it, found, _ := r.FindByUserAndProduct(ctx, userID, productID)
	if found {
		it.Quantity += addQty
		it.UpdatedAt = now
	} else {
		it = model.CartItem{
			ID:        r.st.nextID("cart_items"),
			UserID:    userID,
			ProductID: productID,
			Quantity:  addQty,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	r.st.cartItems[it.ID] = it
	return it, nil
}

func (r cartItems) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) (model.CartItem, error) {
	it, ok := r.st.cartItems[cartItemID]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	it.Quantity = qty
	it.UpdatedAt = r.now()
	r.st.cartItems[cartItemID] = it
	return it, nil
}

func (r cartItems) DeleteByIDForUser(ctx context.Context, cartItemID int64, userID int64) error {
	it, ok := r.st.cartItems[cartItemID]
	if !ok || it.UserID != userID {
		return repo.ErrNotFound
	}
	delete(r.st.cartItems, cartItemID)
	return nil
}

func (r cartItems) DeleteAllByUserID(ctx context.Context, userID int64) (int64, error) {
	var n int64
	for id, it := range r.st.cartItems {
		if it.UserID == userID {
			delete(r.st.cartItems, id)
			n++
		}
	}
	return n, nil
}

type orders struct{ *txRepos }

func (r orders) withItems(o model.Order) model.Order {
	items, _ := orderItems(r).ListByOrderID(context.Background(), o.ID)
	o.Items = items
	return o
}

func (r orders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := r.st.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return r.withItems(o), nil
}

func (r orders) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	out := make([]model.Order, 0)
	for _, o := range r.st.orders {
		if o.UserID == userID {
			out = append(out, r.withItems(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r orders) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if order.IdempotencyKey != nil {
		if _, found, _ := r.FindByIdempotencyKey(ctx, order.UserID, *order.IdempotencyKey); found {
			return model.Order{}, repo.ErrDuplicate
		}
	}
	order.ID = r.st.nextID("orders")
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.now()
	}
	order.Items = nil
	r.st.orders[order.ID] = order
	return order, nil
}

func (r orders) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	for _, o := range r.st.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return r.withItems(o), true, nil
		}
	}
	return model.Order{}, false, nil
}

type orderItems struct{ *txRepos }

func (r orderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error) {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		it.ID = r.st.nextID("order_items")
		it.OrderID = orderID
		it.Product = nil
		r.st.orderItems[it.ID] = it
		out = append(out, it)
	}
	return out, nil
}

func (r orderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	out := make([]model.OrderItem, 0)
	for _, it := range r.st.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type wishlist struct{ *txRepos }

func (r wishlist) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	out := make([]model.WishlistItem, 0)
	for _, it := range r.st.wishlist {
		if it.UserID != userID {
			continue
		}
		if p, ok := r.liveProduct(it.ProductID); ok {
			p = r.withCategory(p)
			it.Product = &p
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r wishlist) Create(ctx context.Context, userID int64, productID int64) (model.WishlistItem, error) {
	for _, it := range r.st.wishlist {
		if it.UserID == userID && it.ProductID == productID {
			return model.WishlistItem{}, repo.ErrDuplicate
		}
	}
	it := model.WishlistItem{
		ID:        r.st.nextID("wishlist_items"),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: r.now(),
	}
	r.st.wishlist[it.ID] = it
	return it, nil
}

func (r wishlist) DeleteByUserAndProduct(ctx context.Context, userID int64, productID int64) error {
	for id, it := range r.st.wishlist {
		if it.UserID == userID && it.ProductID == productID {
			delete(r.st.wishlist, id)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r wishlist) DeleteAllByUserID(ctx context.Context, userID int64) (int64, error) {
	var n int64
	for id, it := range r.st.wishlist {
		if it.UserID == userID {
			delete(r.st.wishlist, id)
			n++
		}
	}
	return n, nil
}
