package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/model"
	"storefront/internal/repository"
)

type productStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ repository.ProductRepository = (*productStore)(nil)

// NewProductRepository builds a MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &productStore{coll: db.Collection(productsCollection), now: time.Now}
}

func (s *productStore) Create(ctx context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := s.now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	doc, err := newProductDoc(product)
	if err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", translate(err))
	}
	return nil
}

func (s *productStore) findOne(ctx context.Context, filter bson.M) (*model.Product, error) {
	var doc productDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model()
}

func (s *productStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *productStore) FindActiveBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return s.findOne(ctx, activeFilter(bson.M{"slug": slug}))
}

func (s *productStore) List(ctx context.Context, filter model.ProductFilter, offset, limit int) ([]model.Product, int64, error) {
	q := productFilter(filter)

	total, err := s.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	products := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.model()
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, nil
}

func (s *productStore) Patch(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	set, err := productPatchSet(patch, s.now().UTC())
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	err = s.coll.FindOneAndUpdate(ctx, activeFilter(bson.M{"_id": id.String()}), bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	return doc.model()
}

func (s *productStore) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	update := bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updatedAt": s.now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDoc
	err := s.coll.FindOneAndUpdate(ctx, stockFilter(id.String(), delta), update, opts).Decode(&doc)
	if err == nil {
		return doc.model()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	// Nothing matched: either the product is gone or the guard refused.
	if _, err := s.findOne(ctx, activeFilter(bson.M{"_id": id.String()})); err != nil {
		return nil, err
	}
	return nil, repository.ErrInsufficientStock
}

func (s *productStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.UpdateOne(ctx,
		activeFilter(bson.M{"_id": id.String()}),
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": s.now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *productStore) Categories(ctx context.Context) ([]model.Category, error) {
	values, err := s.coll.Distinct(ctx, "category", activeFilter(nil))
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	categories := make([]model.Category, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			categories = append(categories, model.Category(str))
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories, nil
}

func (s *productStore) CountActive(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, activeFilter(nil))
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
