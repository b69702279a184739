package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

func TestAdminService_Dashboard(t *testing.T) {
	users := new(MockUserRepository)
	products := new(MockProductRepository)

	users.On("CountActive", mock.Anything).Return(int64(12), nil)
	users.On("List", mock.Anything, 0, model.DashboardRecentN).Return([]model.User{{Name: "U"}}, int64(12), nil)
	products.On("CountActive", mock.Anything).Return(int64(40), nil)
	products.On("Categories", mock.Anything).Return([]model.Category{model.CategoryBooks, model.CategoryHome}, nil)
	products.On("List", mock.Anything, model.ProductFilter{}, 0, model.DashboardRecentN).Return([]model.Product{{Name: "P"}}, int64(40), nil)

	got, err := NewAdminService(users, products).Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{TotalUsers: 12, TotalProducts: 40, TotalCategories: 2}, got.Stats)
	assert.Len(t, got.RecentProducts, 1)
	assert.Len(t, got.RecentUsers, 1)
}

func TestAdminService_DashboardFailure(t *testing.T) {
	users := new(MockUserRepository)
	products := new(MockProductRepository)

	users.On("CountActive", mock.Anything).Return(int64(0), errors.New("db down"))
	users.On("List", mock.Anything, mock.Anything, mock.Anything).Return([]model.User{}, int64(0), nil).Maybe()
	products.On("CountActive", mock.Anything).Return(int64(0), nil).Maybe()
	products.On("Categories", mock.Anything).Return([]model.Category{}, nil).Maybe()
	products.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]model.Product{}, int64(0), nil).Maybe()

	_, err := NewAdminService(users, products).Dashboard(context.Background())
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}
