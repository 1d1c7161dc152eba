package cart

import (
	"testing"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func line(id, qty int64, p *model.Product) model.CartItem {
	it := model.CartItem{ID: id, Quantity: qty, Product: p}
	if p != nil {
		it.ProductID = p.ID
	}
	return it
}

func product(id int64, name, price string, stock int64) *model.Product {
	return &model.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
}

func TestDeliveryFee(t *testing.T) {
	cases := []struct {
		subtotal string
		fee      string
		until    string
	}{
		{"0.00", "5.99", "50.00"},
		{"49.99", "5.99", "0.01"},
		{"50.00", "0.00", "0.00"},
		{"120.35", "0.00", "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.subtotal, func(t *testing.T) {
			s := decimal.RequireFromString(tc.subtotal)
			assert.Equal(t, tc.fee, DeliveryFee(s).StringFixed(2))
			assert.Equal(t, tc.until, AmountUntilFreeDelivery(s).StringFixed(2))
		})
	}
}

func TestSummarize(t *testing.T) {
	items := []model.CartItem{
		line(1, 3, product(10, "Avocado", "1.99", 40)),
		line(2, 1, product(11, "Olive Oil", "12.99", 8)),
		{ID: 3, ProductID: 12, Quantity: 4},
	}

	s := Summarize(items)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, int64(4), s.TotalQuantity)
	assert.Equal(t, "18.96", s.Subtotal.StringFixed(2))
	assert.Equal(t, "5.99", s.DeliveryFee.StringFixed(2))
	assert.Equal(t, "24.95", s.Total.StringFixed(2))
	assert.Equal(t, "0.00", LineSubtotal(items[2]).StringFixed(2))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.ItemCount)
	assert.True(t, s.Subtotal.IsZero())
	assert.Equal(t, "5.99", s.Total.StringFixed(2))
}

func TestValidate(t *testing.T) {
	removed := product(12, "Old Jam", "4.00", 9)
	removed.DeletedAt = gorm.DeletedAt{Valid: true}
	hidden := product(13, "Hidden Bun", "1.00", 9)
	hidden.IsActive = false

	items := []model.CartItem{
		line(1, 2, product(10, "Avocado", "1.99", 40)),
		line(2, 10, product(11, "Sourdough", "6.50", 4)),
		line(3, 1, removed),
		line(4, 1, hidden),
		{ID: 5, ProductID: 99, Quantity: 1},
	}

	rep := Validate(items)
	assert.False(t, rep.Valid)
	require.Len(t, rep.ValidItems, 1)
	assert.Equal(t, int64(1), rep.ValidItems[0].ID)
	require.Len(t, rep.Issues, 4)

	assert.Equal(t, IssueInsufficientStock, rep.Issues[0].Kind)
	assert.Equal(t, "Insufficient stock for Sourdough. Only 4 available, but 10 in cart", rep.Issues[0].Message)
	assert.Equal(t, int64(4), rep.Issues[0].Available)

	assert.Equal(t, IssueUnavailable, rep.Issues[1].Kind)
	assert.Equal(t, "Old Jam is no longer available", rep.Issues[1].Message)
	assert.Equal(t, IssueUnavailable, rep.Issues[2].Kind)
	assert.Equal(t, "Product 99 is no longer available", rep.Issues[3].Message)
}

func TestValidate_AllGood(t *testing.T) {
	rep := Validate([]model.CartItem{line(1, 4, product(10, "Avocado", "1.99", 4))})
	assert.True(t, rep.Valid)
	assert.Empty(t, rep.Issues)
	assert.Len(t, rep.ValidItems, 1)
}
