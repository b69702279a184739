package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/db"
	"storefront/internal/model"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, repo ProductRepository, name string, category model.Category, price string, age time.Duration) *model.Product {
	t.Helper()

	created := baseTime.Add(-age)
	p := &model.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Stock:       5,
		Slug:        model.NewSlug(name, created),
		IsActive:    true,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func seedUser(t *testing.T, repo UserRepository, name, email string, age time.Duration) *model.User {
	t.Helper()

	created := baseTime.Add(-age)
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}
