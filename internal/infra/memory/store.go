// リポジトリのインメモリ実装。Txは1つのmutexの下でコピーに書き、成功時だけ差し替える。
package memory

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type state struct {
	users      map[int64]model.User
	categories map[int64]model.Category
	products   map[int64]model.Product
	cartItems  map[int64]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64]model.OrderItem
	wishlist   map[int64]model.WishlistItem
	adjusts    map[int64]model.InventoryAdjustment
	seq        map[string]int64
}

func newState() *state {
	return &state{
		users:      map[int64]model.User{},
		categories: map[int64]model.Category{},
		products:   map[int64]model.Product{},
		cartItems:  map[int64]model.CartItem{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64]model.OrderItem{},
		wishlist:   map[int64]model.WishlistItem{},
		adjusts:    map[int64]model.InventoryAdjustment{},
		seq:        map[string]int64{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		users:      cloneMap(s.users),
		categories: cloneMap(s.categories),
		products:   cloneMap(s.products),
		cartItems:  cloneMap(s.cartItems),
		orders:     cloneMap(s.orders),
		orderItems: cloneMap(s.orderItems),
		wishlist:   cloneMap(s.wishlist),
		adjusts:    cloneMap(s.adjusts),
		seq:        cloneMap(s.seq),
	}
}

func (s *state) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// WithinTx implements repository.TransactionManager.
func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(newTxRepos(work, s.now)); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == 0 {
		u.ID = s.st.nextID("users")
	} else if u.ID > s.st.seq["users"] {
		s.st.seq["users"] = u.ID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.st.users[u.ID] = u
	return u
}

func (s *Store) AddCategory(c model.Category) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		c.ID = s.st.nextID("categories")
	} else if c.ID > s.st.seq["categories"] {
		s.st.seq["categories"] = c.ID
	}
	s.st.categories[c.ID] = c
	return c
}

func (s *Store) AddProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.st.nextID("products")
	} else if p.ID > s.st.seq["products"] {
		s.st.seq["products"] = p.ID
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.st.products[p.ID] = p
	return p
}

// カタログ側の操作を模したもの（テスト用）
func (s *Store) SetProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

func (s *Store) SoftDeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.st.products[id]
	if !ok {
		return
	}
	p.DeletedAt = gorm.DeletedAt{Time: s.now(), Valid: true}
	s.st.products[id] = p
}

// 論理削除済みも含めて返す
func (s *Store) Product(id int64) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	return p, ok
}
