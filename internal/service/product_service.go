package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/validation"
)

// ProductService exposes catalog operations.
type ProductService interface {
	Create(ctx context.Context, in model.NewProduct) (*model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, cmd model.AdjustStock) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter model.ProductFilter, page model.Page) (*model.PagedProducts, error)
	Search(ctx context.Context, query string, page model.Page) (*model.PagedProducts, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Featured(ctx context.Context, n int) ([]model.Product, error)
}

type productService struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductService builds a ProductService with repository.
func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo, now: time.Now}
}

func normalizeCategory(c model.Category) model.Category {
	return model.Category(strings.ToLower(strings.TrimSpace(string(c))))
}

// Create stores a new active product. The slug is derived once here and
// never changes afterwards.
func (s *productService) Create(ctx context.Context, in model.NewProduct) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = normalizeCategory(in.Category)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := &model.Product{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		Image:       in.Image,
		Slug:        model.NewSlug(in.Name, now),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, storeError(err, MsgProductNotFound)
	}
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, MsgProductNotFound)
	}
	if !product.IsActive {
		return nil, apperrors.NotFound(MsgProductNotFound)
	}
	return product, nil
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err, MsgProductNotFound)
	}
	return product, nil
}

// Update checks the product is active, then applies patch. A product
// deactivated between the two steps yields NotFound.
func (s *productService) Update(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if patch.Category != nil {
		category := normalizeCategory(*patch.Category)
		patch.Category = &category
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	product, err := s.repo.Patch(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, MsgProductNotFound)
	}
	return product, nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, cmd model.AdjustStock) (*model.Product, error) {
	product, err := s.repo.AdjustStock(ctx, id, cmd.Delta)
	if errors.Is(err, repository.ErrInsufficientStock) {
		return nil, apperrors.Validation("", apperrors.FieldError{Field: "delta", Message: MsgInsufficientStock})
	}
	if err != nil {
		return nil, storeError(err, MsgProductNotFound)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return storeError(err, MsgProductNotFound)
	}
	return nil
}

// List returns one page of active products matching filter, newest first.
func (s *productService) List(ctx context.Context, filter model.ProductFilter, page model.Page) (*model.PagedProducts, error) {
	filter.Category = normalizeCategory(filter.Category)
	products, total, err := s.repo.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.PagedProducts{Items: products, Pagination: model.NewPagination(page, total)}, nil
}

func (s *productService) Search(ctx context.Context, query string, page model.Page) (*model.PagedProducts, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation(MsgSearchRequired, apperrors.FieldError{Field: "q", Message: "q is required"})
	}
	return s.List(ctx, model.ProductFilter{Search: query}, page)
}

func (s *productService) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return categories, nil
}

// Featured returns the n newest active products.
func (s *productService) Featured(ctx context.Context, n int) ([]model.Product, error) {
	page := model.NewPage(1, n)
	if n < 1 {
		page = model.NewPage(1, model.DefaultFeaturedN)
	}
	products, _, err := s.repo.List(ctx, model.ProductFilter{}, 0, page.Limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return products, nil
}
