// カートの集計と在庫検査（商品が消えた明細は合計に入れない）
package cart

import (
	"fmt"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	FreeDeliveryThreshold = decimal.RequireFromString("50.00")
	FlatDeliveryFee       = decimal.RequireFromString("5.99")
)

type Summary struct {
	ItemCount               int
	TotalQuantity           int64
	Subtotal                decimal.Decimal
	DeliveryFee             decimal.Decimal
	AmountUntilFreeDelivery decimal.Decimal
	Total                   decimal.Decimal
}

// 明細1行の小計（商品が消えていれば0）
func LineSubtotal(it model.CartItem) decimal.Decimal {
	if it.Product == nil {
		return decimal.Zero
	}
	return it.Product.Price.Mul(decimal.NewFromInt(it.Quantity)).Round(2)
}

func Summarize(items []model.CartItem) Summary {
	var s Summary
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		s.ItemCount++
		s.TotalQuantity += it.Quantity
		subtotal = subtotal.Add(it.Product.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}

	s.Subtotal = subtotal.Round(2)
	s.DeliveryFee = DeliveryFee(s.Subtotal)
	s.AmountUntilFreeDelivery = AmountUntilFreeDelivery(s.Subtotal)
	s.Total = s.Subtotal.Add(s.DeliveryFee).Round(2)
	return s
}

// 50.00以上で送料無料、それ未満は一律5.99
func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return FlatDeliveryFee
}

func AmountUntilFreeDelivery(subtotal decimal.Decimal) decimal.Decimal {
	rest := FreeDeliveryThreshold.Sub(subtotal)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest.Round(2)
}

type IssueKind string

const (
	IssueUnavailable       IssueKind = "unavailable"
	IssueInsufficientStock IssueKind = "insufficient_stock"
)

type Issue struct {
	CartItemID int64
	ProductID  int64
	Kind       IssueKind
	Message    string
	Requested  int64
	Available  int64
}

type Report struct {
	Valid      bool
	Issues     []Issue
	ValidItems []model.CartItem
}

// 現在の在庫と公開状態でカートを検査する
func Validate(items []model.CartItem) Report {
	rep := Report{
		Issues:     []Issue{},
		ValidItems: []model.CartItem{},
	}

	for _, it := range items {
		p := it.Product
		switch {
		case p == nil || !p.Available():
			rep.Issues = append(rep.Issues, Issue{
				CartItemID: it.ID,
				ProductID:  it.ProductID,
				Kind:       IssueUnavailable,
				Message:    fmt.Sprintf("%s is no longer available", productLabel(it)),
				Requested:  it.Quantity,
			})
		case it.Quantity > p.Stock:
			rep.Issues = append(rep.Issues, Issue{
				CartItemID: it.ID,
				ProductID:  it.ProductID,
				Kind:       IssueInsufficientStock,
				Message: fmt.Sprintf("Insufficient stock for %s. Only %d available, but %d in cart",
					p.Name, p.Stock, it.Quantity),
				Requested: it.Quantity,
				Available: p.Stock,
			})
		default:
			rep.ValidItems = append(rep.ValidItems, it)
		}
	}

	rep.Valid = len(rep.Issues) == 0
	return rep
}

func productLabel(it model.CartItem) string {
	if it.Product != nil && it.Product.Name != "" {
		return it.Product.Name
	}
	return fmt.Sprintf("Product %d", it.ProductID)
}
