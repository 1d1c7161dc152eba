package usecase_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type OrderCacheMock struct{ mock.Mock }

func (m *OrderCacheMock) GetOrder(ctx context.Context, orderID int64) (model.Order, bool, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderCacheMock) SetOrder(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderCacheMock) GetIdempotentOrderID(ctx context.Context, userID int64, key string) (int64, bool, error) {
	args := m.Called(ctx, userID, key)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *OrderCacheMock) SetIdempotentOrderID(ctx context.Context, userID int64, key string, orderID int64) error {
	args := m.Called(ctx, userID, key, orderID)
	return args.Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishOrderPlaced(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// =====================
// PlaceOrder
// =====================

func TestOrderUsecase_PlaceOrder_DecrementsStockAndSnapshotsPrice(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, "Coffee", "10.00", 5)
	p2 := f.product(t, "Tea", "5.00", 3)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	out, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("25.00"),
		Items: []usecase.PlaceOrderItemInput{
			{ProductID: p1.ID, Quantity: 2, Price: money("10.00")},
			{ProductID: p2.ID, Quantity: 1, Price: money("5.00")},
		},
	})
	require.NoError(t, err)
	assert.False(t, out.Replayed)
	// 25.00 + 送料5.99
	assert.Equal(t, "30.99", out.TotalAmount.Decimal().StringFixed(2))

	assert.Equal(t, int64(3), f.stock(t, p1.ID))
	assert.Equal(t, int64(2), f.stock(t, p2.ID))

	// 価格を変えても注文は当時の価格
	changed, _ := f.st.Product(p1.ID)
	changed.Price = decimal.RequireFromString("99.00")
	f.st.SetProduct(changed)

	o, err := uc.GetOrder(bg, out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, f.userID, o.UserID)
	assert.Equal(t, string(model.OrderStatusPending), o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, p1.ID, o.Items[0].ProductID)
	assert.Equal(t, "Coffee", o.Items[0].ProductName)
	assert.Equal(t, int64(2), o.Items[0].Quantity)
	assert.Equal(t, "10.00", o.Items[0].Price.Decimal().StringFixed(2))
}

func TestOrderUsecase_PlaceOrder_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, "Coffee", "10.00", 5)
	p2 := f.product(t, "Tea", "5.00", 1)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	_, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("30.00"),
		Items: []usecase.PlaceOrderItemInput{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 2},
		},
	})
	assertKind(t, err, usecase.KindInsufficientStock)
	assert.Contains(t, err.Error(), "Only 1 available")

	assert.Equal(t, int64(5), f.stock(t, p1.ID))
	assert.Equal(t, int64(1), f.stock(t, p2.ID))

	orders, err := uc.ListOrdersForUser(bg, f.userID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderUsecase_PlaceOrder_DuplicateLinesCountTogether(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 3)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	_, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("40.00"),
		Items: []usecase.PlaceOrderItemInput{
			{ProductID: p.ID, Quantity: 2},
			{ProductID: p.ID, Quantity: 2},
		},
	})
	assertKind(t, err, usecase.KindInsufficientStock)
	assert.Equal(t, int64(3), f.stock(t, p.ID))
}

func TestOrderUsecase_PlaceOrder_QuantitySumOverflowRejected(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 5)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	_, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("10.00"),
		Items: []usecase.PlaceOrderItemInput{
			{ProductID: p.ID, Quantity: math.MaxInt64},
			{ProductID: p.ID, Quantity: 2},
		},
	})
	assertKind(t, err, usecase.KindValidation)
	assert.Equal(t, int64(5), f.stock(t, p.ID))

	// 1行だけなら在庫不足
	_, err = uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("10.00"),
		Items:       []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: math.MaxInt64}},
	})
	assertKind(t, err, usecase.KindInsufficientStock)
	assert.Equal(t, int64(5), f.stock(t, p.ID))

	orders, err := uc.ListOrdersForUser(bg, f.userID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderUsecase_PlaceOrder_ConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Last Loaf", "6.50", 1)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.PlaceOrder(bg, usecase.PlaceOrderInput{
				UserID:      f.userID,
				TotalAmount: money("12.49"),
				Items:       []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, usecase.IsKind(err, usecase.KindInsufficientStock), err.Error())
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(0), f.stock(t, p.ID))
}

func TestOrderUsecase_PlaceOrder_Validation(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 5)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	cases := map[string]usecase.PlaceOrderInput{
		"no items":     {UserID: f.userID, TotalAmount: money("1.00")},
		"no total":     {UserID: f.userID, Items: []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 1}}},
		"zero qty":     {UserID: f.userID, TotalAmount: money("1.00"), Items: []usecase.PlaceOrderItemInput{{ProductID: p.ID}}},
		"no product":   {UserID: f.userID, TotalAmount: money("1.00"), Items: []usecase.PlaceOrderItemInput{{Quantity: 1}}},
		"missing user": {TotalAmount: money("1.00"), Items: []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 1}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.PlaceOrder(bg, in)
			assertKind(t, err, usecase.KindValidation)
		})
	}
	assert.Equal(t, int64(5), f.stock(t, p.ID))
}

func TestOrderUsecase_PlaceOrder_MissingOrRemovedProduct(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 5)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	_, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("10.00"),
		Items:       []usecase.PlaceOrderItemInput{{ProductID: 999, Quantity: 1}},
	})
	assertKind(t, err, usecase.KindNotFound)

	_, err = uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      999,
		TotalAmount: money("10.00"),
		Items:       []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	assertKind(t, err, usecase.KindNotFound)

	f.st.SoftDeleteProduct(p.ID)
	_, err = uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("10.00"),
		Items:       []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	assertKind(t, err, usecase.KindNotFound)
}

func TestOrderUsecase_PlaceOrder_IgnoresClientTotal(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cheese", "30.00", 5)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	out, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("0.01"),
		Items:       []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 2, Price: money("0.01")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "60.00", out.TotalAmount.Decimal().StringFixed(2))
}

func TestOrderUsecase_PlaceOrder_RecordsInventoryAdjustments(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 5)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	out, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("25.99"),
		Items:       []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	var adjs []model.InventoryAdjustment
	require.NoError(t, f.st.WithinTx(bg, func(r repo.TxRepos) error {
		var err error
		adjs, err = r.Inventory().ListAdjustments(bg, p.ID)
		return err
	}))
	require.Len(t, adjs, 1)
	assert.Equal(t, int64(-2), adjs[0].Delta)
	assert.Equal(t, model.AdjustmentReasonOrderPlaced, adjs[0].Reason)
	require.NotNil(t, adjs[0].OrderID)
	assert.Equal(t, out.OrderID, *adjs[0].OrderID)
}

// =====================
// Idempotency / cache / events
// =====================

func TestOrderUsecase_PlaceOrder_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 5)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	in := usecase.PlaceOrderInput{
		UserID:         f.userID,
		TotalAmount:    money("25.99"),
		Items:          []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 2}},
		IdempotencyKey: "checkout-1",
	}
	first, err := uc.PlaceOrder(bg, in)
	require.NoError(t, err)
	second, err := uc.PlaceOrder(bg, in)
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.True(t, second.Replayed)
	assert.Equal(t, int64(3), f.stock(t, p.ID))

	// 別ユーザーの同じキーは別注文
	in.UserID = f.other
	third, err := uc.PlaceOrder(bg, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderID, third.OrderID)
	assert.Equal(t, int64(1), f.stock(t, p.ID))
}

func TestOrderUsecase_PlaceOrder_WritesCacheAndPublishes(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 5)

	c := new(OrderCacheMock)
	pub := new(PublisherMock)
	uc := usecase.NewOrderUsecase(f.st, c, pub)

	c.On("GetIdempotentOrderID", mock.Anything, f.userID, "k1").Return(int64(0), false, nil).Once()
	c.On("SetOrder", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == f.userID && len(o.Items) == 1
	})).Return(nil).Once()
	c.On("SetIdempotentOrderID", mock.Anything, f.userID, "k1", mock.AnythingOfType("int64")).Return(nil).Once()
	pub.On("PublishOrderPlaced", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalAmount.Equal(decimal.RequireFromString("25.99"))
	})).Return(nil).Once()

	_, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:         f.userID,
		TotalAmount:    money("25.99"),
		Items:          []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 2}},
		IdempotencyKey: "k1",
	})
	require.NoError(t, err)

	c.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_CacheShortcutChecksStore(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 5)
	base := usecase.NewOrderUsecase(f.st, nil, nil)

	first, err := base.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:         f.userID,
		TotalAmount:    money("15.99"),
		Items:          []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 1}},
		IdempotencyKey: "k2",
	})
	require.NoError(t, err)

	c := new(OrderCacheMock)
	c.On("GetIdempotentOrderID", mock.Anything, f.userID, "k2").Return(first.OrderID, true, nil).Once()
	uc := usecase.NewOrderUsecase(f.st, c, nil)

	out, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:         f.userID,
		TotalAmount:    money("15.99"),
		Items:          []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 1}},
		IdempotencyKey: "k2",
	})
	require.NoError(t, err)
	assert.True(t, out.Replayed)
	assert.Equal(t, first.OrderID, out.OrderID)
	assert.Equal(t, int64(4), f.stock(t, p.ID))
	c.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Coffee", "10.00", 5)

	pub := new(PublisherMock)
	pub.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(context.DeadlineExceeded).Once()
	uc := usecase.NewOrderUsecase(f.st, nil, pub)

	_, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("15.99"),
		Items:       []usecase.PlaceOrderItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.stock(t, p.ID))
	pub.AssertExpectations(t)
}

// =====================
// GetOrder / ListOrdersForUser
// =====================

func TestOrderUsecase_GetOrder_CacheHit(t *testing.T) {
	f := newFixture(t)
	c := new(OrderCacheMock)
	c.On("GetOrder", mock.Anything, int64(77)).Return(model.Order{
		ID:          77,
		UserID:      f.userID,
		TotalAmount: decimal.RequireFromString("12.50"),
		Status:      model.OrderStatusPending,
	}, true, nil).Once()
	uc := usecase.NewOrderUsecase(f.st, c, nil)

	o, err := uc.GetOrder(bg, 77)
	require.NoError(t, err)
	assert.Equal(t, int64(77), o.ID)
	assert.Equal(t, "12.50", o.TotalAmount.Decimal().StringFixed(2))
	c.AssertExpectations(t)
}

func TestOrderUsecase_GetOrder_NotFound(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	_, err := uc.GetOrder(bg, 12345)
	assertKind(t, err, usecase.KindNotFound)
}

func TestOrderUsecase_ListOrdersForUser_NewestFirst(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, "A", "10.00", 10)
	p2 := f.product(t, "B", "20.00", 10)
	uc := usecase.NewOrderUsecase(f.st, nil, nil)

	first, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("15.99"),
		Items:       []usecase.PlaceOrderItemInput{{ProductID: p1.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := uc.PlaceOrder(bg, usecase.PlaceOrderInput{
		UserID:      f.userID,
		TotalAmount: money("50.00"),
		Items: []usecase.PlaceOrderItemInput{
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	list, err := uc.ListOrdersForUser(bg, f.userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.OrderID, list[0].ID)
	assert.Equal(t, 2, list[0].ItemsCount)
	assert.Equal(t, "50.00", list[0].TotalAmount.Decimal().StringFixed(2))
	assert.Equal(t, first.OrderID, list[1].ID)

	others, err := uc.ListOrdersForUser(bg, f.other)
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = uc.ListOrdersForUser(bg, 999)
	assertKind(t, err, usecase.KindNotFound)
}
