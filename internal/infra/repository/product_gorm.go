package repository

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開商品のみ。カテゴリslugと名前の部分一致で絞る。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	var products []model.Product

	tx := r.db.WithContext(ctx).Model(&model.Product{}).
		Preload("Category").
		Where("products.is_active = ?", true)

	// 知らないslugは絞り込みなし
	if slug := strings.TrimSpace(q.CategorySlug); slug != "" {
		var ids []int64
		if err := r.db.WithContext(ctx).Model(&model.Category{}).
			Where("slug = ?", slug).
			Limit(1).
			Pluck("id", &ids).Error; err != nil {
			return []model.Product{}, err
		}
		if len(ids) > 0 {
			tx = tx.Where("products.category_id = ?", ids[0])
		}
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		tx = tx.Where("products.name ILIKE ?", "%"+s+"%")
	}

	if err := tx.Order("products.id asc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得（論理削除済みはErrNotFound）
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}
