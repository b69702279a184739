package mongostore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

var storeNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func fixedNow() time.Time { return storeNow }

// asD round-trips a document type through BSON so it can be served by the mock deployment.
func asD(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func productD(t *testing.T, name string, stock int, active bool) bson.D {
	t.Helper()
	doc, err := newProductDoc(&model.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString("19.99"),
		Category:  model.CategoryHome,
		Stock:     stock,
		Slug:      model.NewSlug(name, storeNow),
		IsActive:  active,
		CreatedAt: storeNow,
		UpdatedAt: storeNow,
	})
	require.NoError(t, err)
	return asD(t, doc)
}

func userD(t *testing.T, email string) bson.D {
	t.Helper()
	return asD(t, newUserDoc(&model.User{
		ID:           uuid.New(),
		Name:         "Jane",
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    storeNow,
		UpdatedAt:    storeNow,
	}))
}

func countResponse(ns string, n int64) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func nullValue() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
}

func updateResponse(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func duplicateKey() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"})
}

// nextCommand pops started events until it finds the named command.
func nextCommand(mt *mtest.T, name string) *event.CommandStartedEvent {
	mt.Helper()
	for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
		if evt.CommandName == name {
			return evt
		}
	}
	mt.Fatalf("no %s command was sent", name)
	return nil
}

func TestProductStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "storefront.products"

	mt.Run("list pages active products newest first", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(
			countResponse(ns, 7),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				productD(mt.T, "Desk Lamp", 3, true),
				productD(mt.T, "Floor Lamp", 0, true),
			),
		)

		items, total, err := store.List(ctx, model.ProductFilter{Category: model.CategoryHome}, 5, 5)
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), total)
		require.Len(mt, items, 2)
		assert.Equal(mt, "Desk Lamp", items[0].Name)
		assert.Equal(mt, "19.99", items[0].Price.String())

		count := nextCommand(mt, "aggregate")
		assert.True(mt, count.Command.Lookup("pipeline", "0", "$match", "isActive").Boolean())

		find := nextCommand(mt, "find")
		assert.True(mt, find.Command.Lookup("filter", "isActive").Boolean())
		assert.Equal(mt, "home", find.Command.Lookup("filter", "category").StringValue())
		assert.Equal(mt, int64(5), find.Command.Lookup("skip").Int64())
		assert.Equal(mt, int64(5), find.Command.Lookup("limit").Int64())
		assert.Equal(mt, int32(-1), find.Command.Lookup("sort", "createdAt").Int32())
	})

	mt.Run("list past the end is empty", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(
			countResponse(ns, 2),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		items, total, err := store.List(ctx, model.ProductFilter{}, 40, 20)
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), total)
		assert.NotNil(mt, items)
		assert.Empty(mt, items)
	})

	mt.Run("patch on an inactive product is not found", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(nullValue())

		name := "Renamed"
		_, err := store.Patch(ctx, uuid.New(), model.ProductPatch{Name: &name})
		assert.ErrorIs(mt, err, repository.ErrNotFound)

		cmd := nextCommand(mt, "findAndModify")
		assert.True(mt, cmd.Command.Lookup("query", "isActive").Boolean())
		assert.Equal(mt, "Renamed", cmd.Command.Lookup("update", "$set", "name").StringValue())
	})

	mt.Run("adjust stock returns the updated product", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: productD(mt.T, "Desk Lamp", 1, true)},
		))

		p, err := store.AdjustStock(ctx, uuid.New(), -2)
		require.NoError(mt, err)
		assert.Equal(mt, 1, p.Stock)

		cmd := nextCommand(mt, "findAndModify")
		assert.Equal(mt, int32(2), cmd.Command.Lookup("query", "stock", "$gte").Int32())
		assert.Equal(mt, int32(-2), cmd.Command.Lookup("update", "$inc", "stock").Int32())
	})

	mt.Run("adjust stock refused by the guard is insufficient stock", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(
			nullValue(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productD(mt.T, "Desk Lamp", 1, true)),
		)

		_, err := store.AdjustStock(ctx, uuid.New(), -5)
		assert.ErrorIs(mt, err, repository.ErrInsufficientStock)
		assert.NotErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("adjust stock on a missing product is not found", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(
			nullValue(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, err := store.AdjustStock(ctx, uuid.New(), -1)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.NotErrorIs(mt, err, repository.ErrInsufficientStock)

		nextCommand(mt, "findAndModify")
		lookup := nextCommand(mt, "find")
		assert.True(mt, lookup.Command.Lookup("filter", "isActive").Boolean())
	})

	mt.Run("adjust stock passes server errors through", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad update",
		}))

		_, err := store.AdjustStock(ctx, uuid.New(), 1)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, repository.ErrNotFound)
		assert.NotErrorIs(mt, err, repository.ErrInsufficientStock)
	})

	mt.Run("soft delete without a match is not found", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(updateResponse(0))

		err := store.SoftDelete(ctx, uuid.New())
		assert.ErrorIs(mt, err, repository.ErrNotFound)

		cmd := nextCommand(mt, "update")
		assert.True(mt, cmd.Command.Lookup("updates", "0", "q", "isActive").Boolean())
		assert.False(mt, cmd.Command.Lookup("updates", "0", "u", "$set", "isActive").Boolean())
	})

	mt.Run("soft delete of an active product", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(updateResponse(1))

		assert.NoError(mt, store.SoftDelete(ctx, uuid.New()))
	})

	mt.Run("duplicate slug is a duplicate key", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(duplicateKey())

		p := &model.Product{Name: "Desk Lamp", Slug: "desk-lamp", Price: decimal.NewFromInt(10), IsActive: true}
		err := store.Create(ctx, p)
		assert.ErrorIs(mt, err, apperrors.ErrDuplicateKey)
		assert.NotEqual(mt, uuid.Nil, p.ID)
		assert.Equal(mt, storeNow, p.CreatedAt)
	})

	mt.Run("categories are sorted", func(mt *mtest.T) {
		store := &productStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "values", Value: bson.A{"sports", "books", "home"}},
		))

		categories, err := store.Categories(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, []model.Category{model.CategoryBooks, model.CategoryHome, model.CategorySports}, categories)
	})
}

func TestUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "storefront.users"

	mt.Run("list skips soft deleted users", func(mt *mtest.T) {
		store := &userStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(
			countResponse(ns, 3),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userD(mt.T, "jane@example.com")),
		)

		users, total, err := store.List(ctx, 2, 2)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), total)
		require.Len(mt, users, 1)
		assert.Equal(mt, "jane@example.com", users[0].Email)

		find := nextCommand(mt, "find")
		assert.True(mt, find.Command.Lookup("filter", "isActive").Boolean())
		assert.Equal(mt, int64(2), find.Command.Lookup("skip").Int64())
		assert.Equal(mt, int64(2), find.Command.Lookup("limit").Int64())
	})

	mt.Run("email taken excludes the caller", func(mt *mtest.T) {
		store := &userStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(countResponse(ns, 0))

		self := uuid.New()
		taken, err := store.EmailTaken(ctx, "jane@example.com", &self)
		require.NoError(mt, err)
		assert.False(mt, taken)

		cmd := nextCommand(mt, "aggregate")
		match := cmd.Command.Lookup("pipeline", "0", "$match")
		assert.Equal(mt, "jane@example.com", match.Document().Lookup("email").StringValue())
		assert.Equal(mt, self.String(), match.Document().Lookup("_id", "$ne").StringValue())
	})

	mt.Run("email taken by another user", func(mt *mtest.T) {
		store := &userStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(countResponse(ns, 1))

		taken, err := store.EmailTaken(ctx, "jane@example.com", nil)
		require.NoError(mt, err)
		assert.True(mt, taken)
	})

	mt.Run("find by email of a missing user is not found", func(mt *mtest.T) {
		store := &userStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.FindActiveByEmail(ctx, "gone@example.com")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("patch on a deleted user is not found", func(mt *mtest.T) {
		store := &userStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(nullValue())

		role := model.RoleAdmin
		_, err := store.Patch(ctx, uuid.New(), model.UserPatch{Role: &role})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("soft delete without a match is not found", func(mt *mtest.T) {
		store := &userStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(updateResponse(0))

		assert.ErrorIs(mt, store.SoftDelete(ctx, uuid.New()), repository.ErrNotFound)
	})

	mt.Run("duplicate email is a duplicate key", func(mt *mtest.T) {
		store := &userStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(duplicateKey())

		err := store.Create(ctx, &model.User{Name: "Jane", Email: "jane@example.com", Role: model.RoleUser, IsActive: true})
		assert.ErrorIs(mt, err, apperrors.ErrDuplicateKey)
	})

	mt.Run("other write errors are not duplicates", func(mt *mtest.T) {
		store := &userStore{coll: mt.Coll, now: fixedNow}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "validation failed"}))

		err := store.Create(ctx, &model.User{Name: "Jane", Email: "jane@example.com"})
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, apperrors.ErrDuplicateKey))
	})
}
