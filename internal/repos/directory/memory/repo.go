package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/accounts"
	"github.com/fastprodman/minivenmo/internal/repos/directory"
)

var _ directory.Directory = (*directoryRepo)(nil)

// directoryRepo keeps accounts in memory, in registration order.
// Usernames are unique case-insensitively.
type directoryRepo struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*accounts.Account
	byUsername map[string]*accounts.Account
	order      []*accounts.Account
}

func New() *directoryRepo {
	return &directoryRepo{
		byID:       make(map[uuid.UUID]*accounts.Account),
		byUsername: make(map[string]*accounts.Account),
	}
}

func (r *directoryRepo) Add(_ context.Context, acc *accounts.Account) error {
	key := usernameKey(acc.Username())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[key]; ok {
		return fmt.Errorf("%w: %q", directory.ErrUsernameTaken, acc.Username())
	}

	if _, ok := r.byID[acc.ID()]; ok {
		return fmt.Errorf("add account %s: already registered", acc.ID())
	}

	r.byID[acc.ID()] = acc
	r.byUsername[key] = acc
	r.order = append(r.order, acc)

	return nil
}

func (r *directoryRepo) Get(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byID[id]
	if !ok {
		return nil, directory.ErrAccountNotFound
	}

	return acc, nil
}

func (r *directoryRepo) GetByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byUsername[usernameKey(username)]
	if !ok {
		return nil, directory.ErrAccountNotFound
	}

	return acc, nil
}

func (r *directoryRepo) List(ctx context.Context) ([]*accounts.Account, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*accounts.Account, len(r.order))
	copy(out, r.order)

	return out, nil
}

func usernameKey(username string) string {
	return strings.ToLower(username)
}
