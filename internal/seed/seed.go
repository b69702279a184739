// Package seed loads the first administrator and an initial product catalog.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/validation"
)

// AdminAccount is the administrator created by Admin.
type AdminAccount struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6"`
}

// Admin creates the administrator unless an active user already holds the
// e-mail. It reports whether a user was created.
func Admin(ctx context.Context, users repository.UserRepository, account AdminAccount, bcryptCost int) (bool, error) {
	account.Name = strings.TrimSpace(account.Name)
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	if err := validation.Struct(account); err != nil {
		return false, err
	}

	taken, err := users.EmailTaken(ctx, account.Email, nil)
	if err != nil {
		return false, fmt.Errorf("check admin e-mail: %w", err)
	}
	if taken {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	err = users.Create(ctx, &model.User{
		ID:           uuid.New(),
		Name:         account.Name,
		Email:        account.Email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

// Result counts what Products did.
type Result struct {
	Created int
	Skipped int
}

// Products creates every product through the catalog service. Invalid
// entries are logged and skipped. An already populated catalog is left
// alone unless force is set.
func Products(ctx context.Context, catalog service.ProductService, products repository.ProductRepository, items []model.NewProduct, force bool, logger zerolog.Logger) (Result, error) {
	var res Result

	if !force {
		n, err := products.CountActive(ctx)
		if err != nil {
			return res, fmt.Errorf("count products: %w", err)
		}
		if n > 0 {
			logger.Info().Int64("active_products", n).Msg("catalog already populated, skipping products")
			res.Skipped = len(items)
			return res, nil
		}
	}

	for _, item := range items {
		if _, err := catalog.Create(ctx, item); err != nil {
			if apperrors.KindOf(err) != apperrors.KindValidation {
				return res, fmt.Errorf("create product %q: %w", item.Name, err)
			}
			logger.Warn().Err(err).Str("name", item.Name).Msg("skipping invalid product")
			res.Skipped++
			continue
		}
		res.Created++
	}
	return res, nil
}

// LoadProducts reads a JSON array of products from a file path or an
// http(s) URL.
func LoadProducts(ctx context.Context, source string) ([]model.NewProduct, error) {
	var (
		r   io.ReadCloser
		err error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		r, err = fetch(ctx, source)
	} else {
		r, err = os.Open(source)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var items []model.NewProduct
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return items, nil
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("products source returned status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
