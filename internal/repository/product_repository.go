package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	// FindByID returns the product regardless of its active flag.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindActiveBySlug(ctx context.Context, slug string) (*model.Product, error)
	// List returns active products matching filter, newest first, and the
	// number of matches before paging.
	List(ctx context.Context, filter model.ProductFilter, offset, limit int) ([]model.Product, int64, error)
	Patch(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error)
	// AdjustStock adds delta to the stock of an active product in a single
	// write. The write is refused when the result would be negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]model.Category, error)
	CountActive(ctx context.Context) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository builds a GORM-backed repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", translate(err))
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepository) FindActiveBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	if err := r.active(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func applyFilter(q *gorm.DB, f model.ProductFilter) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	return q
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter, offset, limit int) ([]model.Product, int64, error) {
	var total int64
	if err := applyFilter(r.active(ctx), filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	products := []model.Product{}
	err := applyFilter(r.active(ctx), filter).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func (r *productRepository) Patch(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Stock != nil {
		updates["stock"] = *patch.Stock
	}
	if patch.Image != nil {
		updates["image"] = *patch.Image
	}

	if len(updates) > 0 {
		if err := r.active(ctx).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("patch product: %w", translate(err))
		}
	}
	return r.findActive(ctx, id)
}

func (r *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	res := r.active(ctx).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return nil, fmt.Errorf("adjust stock: %w", res.Error)
	}

	product, err := r.findActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientStock
	}
	return product, nil
}

func (r *productRepository) findActive(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.active(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.active(ctx).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) Categories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := r.active(ctx).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return categories, nil
}

func (r *productRepository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	if err := r.active(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}
