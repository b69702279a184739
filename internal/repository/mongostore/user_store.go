package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/model"
	"storefront/internal/repository"
)

type userStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ repository.UserRepository = (*userStore)(nil)

// NewUserRepository builds a MongoDB-backed user repository.
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userStore{coll: db.Collection(usersCollection), now: time.Now}
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := s.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, newUserDoc(user)); err != nil {
		return fmt.Errorf("insert user: %w", translate(err))
	}
	return nil
}

func (s *userStore) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model()
}

func (s *userStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *userStore) FindActiveByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, activeFilter(bson.M{"email": email}))
}

func (s *userStore) EmailTaken(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	q := activeFilter(bson.M{"email": email})
	if excludeID != nil {
		q["_id"] = bson.M{"$ne": excludeID.String()}
	}
	n, err := s.coll.CountDocuments(ctx, q, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

func (s *userStore) Patch(ctx context.Context, id uuid.UUID, patch model.UserPatch) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err := s.coll.FindOneAndUpdate(ctx,
		activeFilter(bson.M{"_id": id.String()}),
		bson.M{"$set": userPatchSet(patch, s.now().UTC())},
		opts,
	).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	return doc.model()
}

func (s *userStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.UpdateOne(ctx,
		activeFilter(bson.M{"_id": id.String()}),
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": s.now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *userStore) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	q := activeFilter(nil)
	total, err := s.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().SetSort(newestFirst).SetSkip(int64(offset)).SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.model()
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, nil
}

func (s *userStore) CountActive(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, activeFilter(nil))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
