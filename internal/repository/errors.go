package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
)

var (
	// ErrNotFound is returned when no active record matches.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned when a stock adjustment would go below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicateKey, err)
	default:
		return err
	}
}
