package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/memory"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	st     *memory.Store
	userID int64
	other  int64
	catID  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	u := st.AddUser(model.User{Email: "a@example.com", FirstName: "A", LastName: "User"})
	o := st.AddUser(model.User{Email: "b@example.com", FirstName: "B", LastName: "User"})
	c := st.AddCategory(model.Category{Name: "Pantry", Slug: "pantry"})
	return &fixture{st: st, userID: u.ID, other: o.ID, catID: c.ID}
}

func (f *fixture) product(t *testing.T, name, price string, stock int64) model.Product {
	t.Helper()
	return f.st.AddProduct(model.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: f.catID,
		IsActive:   true,
	})
}

func (f *fixture) stock(t *testing.T, productID int64) int64 {
	t.Helper()
	p, ok := f.st.Product(productID)
	require.True(t, ok)
	return p.Stock
}

func (f *fixture) setStock(t *testing.T, productID int64, stock int64) {
	t.Helper()
	p, ok := f.st.Product(productID)
	require.True(t, ok)
	p.Stock = stock
	f.st.SetProduct(p)
}

func assertKind(t *testing.T, err error, kind usecase.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected *HTTPError, got %T: %v", err, err)
	assert.Equal(t, kind, he.Kind, he.Message)
}

func money(s string) *model.Money {
	m := model.NewMoney(decimal.RequireFromString(s))
	return &m
}

var bg = context.Background()
