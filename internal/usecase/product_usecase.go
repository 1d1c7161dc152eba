package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// カタログの読み取り（更新はカタログサービス側）
type ProductUsecase struct {
	tx repo.TransactionManager
}

func NewProductUsecase(tx repo.TransactionManager) *ProductUsecase {
	return &ProductUsecase{tx: tx}
}

// GET /products の入力
type ListProductsInput struct {
	Category string
	Search   string
}

type ProductOutput struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       model.Money `json:"price"`
	Unit        string      `json:"unit"`
	Stock       int64       `json:"stock"`
	ImageURL    string      `json:"image_url"`
	Rating      model.Money `json:"rating"`
	Category    string      `json:"category"`
	CategoryID  int64       `json:"category_id"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) ([]ProductOutput, error) {
	if len(in.Search) > 100 {
		return nil, Validation("search too long")
	}

	var out []ProductOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := r.Products().ListPublic(ctx, repo.ProductListQuery{
			CategorySlug: strings.TrimSpace(in.Category),
			Search:       strings.TrimSpace(in.Search),
		})
		if err != nil {
			return Internal(err)
		}
		out = make([]ProductOutput, 0, len(items))
		for _, p := range items {
			out = append(out, toProductOutput(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, Validation("invalid product id")
	}

	var out ProductOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Product not found")
		}
		if err != nil {
			return Internal(err)
		}
		if !p.Available() {
			return NotFound("Product not found")
		}
		out = toProductOutput(p)
		return nil
	})
	return out, err
}

func toProductOutput(p model.Product) ProductOutput {
	out := ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       model.NewMoney(p.Price),
		Unit:        p.Unit,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Rating:      model.NewMoney(p.Rating),
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
	if p.Category != nil {
		out.Category = p.Category.Name
	}
	return out
}

type CategoryOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]CategoryOutput, error) {
	var out []CategoryOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cats, err := r.Categories().List(ctx)
		if err != nil {
			return Internal(err)
		}
		out = make([]CategoryOutput, 0, len(cats))
		for _, c := range cats {
			out = append(out, CategoryOutput{
				ID:          c.ID,
				Name:        c.Name,
				Slug:        c.Slug,
				Description: c.Description,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
