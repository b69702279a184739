package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// AdminService builds the back-office overview.
type AdminService interface {
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

type adminService struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

// NewAdminService builds an AdminService over both repositories.
func NewAdminService(users repository.UserRepository, products repository.ProductRepository) AdminService {
	return &adminService{users: users, products: products}
}

// Dashboard gathers counts and recent activity. The queries are independent
// and run concurrently.
func (s *adminService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var d model.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.users.CountActive(gctx)
		d.Stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.products.CountActive(gctx)
		d.Stats.TotalProducts = n
		return err
	})
	g.Go(func() error {
		categories, err := s.products.Categories(gctx)
		d.Stats.TotalCategories = len(categories)
		return err
	})
	g.Go(func() error {
		products, _, err := s.products.List(gctx, model.ProductFilter{}, 0, model.DashboardRecentN)
		d.RecentProducts = products
		return err
	})
	g.Go(func() error {
		users, _, err := s.users.List(gctx, 0, model.DashboardRecentN)
		d.RecentUsers = users
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.Internal(err)
	}
	return &d, nil
}
