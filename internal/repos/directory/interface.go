package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/accounts"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrUsernameTaken = errors.New("username already taken")

type Directory interface {
	Add(ctx context.Context, acc *accounts.Account) error
	Get(ctx context.Context, id uuid.UUID) (*accounts.Account, error)
	GetByUsername(ctx context.Context, username string) (*accounts.Account, error)
	List(ctx context.Context) ([]*accounts.Account, error)
}
