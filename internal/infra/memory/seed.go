package memory

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// ローカル起動用のサンプルデータ
func SeedDemo(s *Store) {
	cats := []model.Category{
		{Name: "Fruit & Veg", Slug: "fruit-veg", Description: "Fresh fruits and vegetables"},
		{Name: "Meat & Seafood", Slug: "meat-seafood", Description: "Quality meats and seafood"},
		{Name: "Bakery", Slug: "bakery", Description: "Fresh baked goods"},
		{Name: "Dairy & Eggs", Slug: "dairy", Description: "Dairy products and eggs"},
		{Name: "Pantry", Slug: "pantry", Description: "Pantry staples"},
	}
	ids := make(map[string]int64, len(cats))
	for _, c := range cats {
		ids[c.Slug] = s.AddCategory(c).ID
	}

	products := []struct {
		name, unit, price, slug string
		stock                   int64
	}{
		{"Bananas", "kg", "3.50", "fruit-veg", 120},
		{"Avocado", "each", "1.99", "fruit-veg", 40},
		{"Beef Mince", "500g", "8.00", "meat-seafood", 25},
		{"Sourdough Loaf", "each", "6.50", "bakery", 12},
		{"Free Range Eggs", "dozen", "7.20", "dairy", 30},
		{"Olive Oil", "1L", "12.99", "pantry", 8},
	}
	for _, p := range products {
		s.AddProduct(model.Product{
			Name:       p.name,
			Unit:       p.unit,
			Price:      decimal.RequireFromString(p.price),
			Stock:      p.stock,
			CategoryID: ids[p.slug],
			IsActive:   true,
		})
	}

	s.AddUser(model.User{Email: "demo@example.com", FirstName: "Demo", LastName: "Shopper"})
}
