package session

import (
	"context"
	"errors"
)

// ErrInvalid covers every way a presented session token can fail: missing,
// malformed, tampered, expired, or revoked by logout.
var ErrInvalid = errors.New("invalid session")

// Store holds the server-side session state. The token handed to the client
// is only a key into it; destroying the entry logs the user out regardless
// of what the client still holds.
type Store interface {
	Create(ctx context.Context, userID uint) (string, error)
	UserID(ctx context.Context, token string) (uint, error)
	Destroy(ctx context.Context, token string) error
}
