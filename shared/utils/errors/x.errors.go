package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type RepoError struct {
	Entity string
	Code   string
	Msg    string
	Ref    string
}

func (e *RepoError) Error() string {
	return e.Entity + ": " + e.Msg + " (" + e.Code + ")"
}

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Auth
var (
	ErrUserIDRequired = errors.New("user ID required")
	ErrInvalidToken   = errors.New("invalid or expired token")
)

// Credits / marketplace
var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidSellerAddress = errors.New("invalid seller address")
	ErrSelfPurchase         = errors.New("cannot buy from your own listing")
	ErrListingUnavailable   = errors.New("listing not available")
	ErrEmptyDocument        = errors.New("bill document is empty")
)
