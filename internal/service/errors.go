package service

import (
	"errors"

	apperrors "storefront/internal/errors"
	"storefront/internal/repository"
)

// Messages returned to clients.
const (
	MsgUserNotFound      = "User not found"
	MsgProductNotFound   = "Product not found"
	MsgUserExists        = "User already exists"
	MsgEmailExists       = "Email already exists"
	MsgPasswordMismatch  = "Passwords do not match"
	MsgInsufficientStock = "Insufficient stock"
	MsgSearchRequired    = "Search query is required"
)

// storeError converts a repository failure into an application error.
// Absent records become NotFound with msg.
func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(msg)
	case errors.Is(err, apperrors.ErrDuplicateKey):
		return apperrors.Conflict("", err)
	default:
		return apperrors.Internal(err)
	}
}
