// Package venmo is the application root: it owns the ledger and wires
// accounts, the directory, the payment router and the feed together.
package venmo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/accounts"
	"github.com/fastprodman/minivenmo/internal/ledger"
	"github.com/fastprodman/minivenmo/internal/money"
	"github.com/fastprodman/minivenmo/internal/processor"
	"github.com/fastprodman/minivenmo/internal/repos/directory"
	memdirectory "github.com/fastprodman/minivenmo/internal/repos/directory/memory"
	"github.com/fastprodman/minivenmo/internal/services/feed"
	"github.com/fastprodman/minivenmo/internal/services/payments"
	"github.com/fastprodman/minivenmo/internal/validate"
)

type Config struct {
	Payments payments.Config
	// Cards validates card tokens; nil means the reference allow-list.
	Cards validate.Func
}

type Service struct {
	ledger *ledger.Ledger
	book   *accounts.Book
	dir    directory.Directory
	router *payments.Router
	feed   *feed.View
}

func New(cfg Config, proc processor.Processor) *Service {
	l := ledger.New()

	return &Service{
		ledger: l,
		book:   accounts.NewBook(l, validate.Username, cfg.Cards),
		dir:    memdirectory.New(),
		router: payments.New(l, proc, cfg.Payments),
		feed:   feed.New(l),
	}
}

func (s *Service) Ledger() *ledger.Ledger { return s.ledger }

// CreateUser opens an account, credits the opening balance and links the
// card when one is given. Nothing is registered if any step fails.
func (s *Service) CreateUser(ctx context.Context, username string, balance money.Amount, card string) (*accounts.Account, error) {
	acc, err := s.book.Open(username)
	if err != nil {
		return nil, fmt.Errorf("open account: %w", err)
	}

	err = acc.Credit(balance)
	if err != nil {
		return nil, fmt.Errorf("opening balance: %w", err)
	}

	if card != "" {
		err = acc.LinkCard(card)
		if err != nil {
			return nil, fmt.Errorf("link card: %w", err)
		}
	}

	err = s.dir.Add(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}

	slog.InfoContext(ctx, "user created", "user_id", acc.ID(), "username", acc.Username(), "has_card", acc.HasCard())

	return acc, nil
}

func (s *Service) Account(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	acc, err := s.dir.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return acc, nil
}

func (s *Service) AccountByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	acc, err := s.dir.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}

	return acc, nil
}

func (s *Service) Accounts(ctx context.Context) ([]*accounts.Account, error) {
	list, err := s.dir.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return list, nil
}

func (s *Service) Deposit(ctx context.Context, id uuid.UUID, amount money.Amount) (*accounts.Account, error) {
	acc, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}

	err = acc.Credit(amount)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	return acc, nil
}

func (s *Service) LinkCard(ctx context.Context, id uuid.UUID, token string) (*accounts.Account, error) {
	acc, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}

	err = acc.LinkCard(token)
	if err != nil {
		return nil, fmt.Errorf("link card: %w", err)
	}

	return acc, nil
}

func (s *Service) AddFriend(ctx context.Context, id, friendID uuid.UUID) error {
	acc, err := s.Account(ctx, id)
	if err != nil {
		return err
	}

	friend, err := s.Account(ctx, friendID)
	if err != nil {
		return fmt.Errorf("friend: %w", err)
	}

	added, err := acc.AddFriend(friend)
	if err != nil {
		return fmt.Errorf("add friend: %w", err)
	}

	if added {
		slog.InfoContext(ctx, "friendship added", "user_id", id, "friend_id", friendID)
	}

	return nil
}

// Friends returns the account's friends ordered by id.
func (s *Service) Friends(ctx context.Context, id uuid.UUID) ([]*accounts.Account, error) {
	acc, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := acc.Friends()
	out := make([]*accounts.Account, 0, len(ids))

	for _, fid := range ids {
		friend, err := s.Account(ctx, fid)
		if err != nil {
			return nil, fmt.Errorf("friend %s: %w", fid, err)
		}

		out = append(out, friend)
	}

	return out, nil
}

// Pay looks both accounts up and routes the payment.
func (s *Service) Pay(ctx context.Context, src payments.Source, payerID, payeeID uuid.UUID, amount money.Amount, note string) (ledger.Payment, error) {
	payer, err := s.Account(ctx, payerID)
	if err != nil {
		return ledger.Payment{}, fmt.Errorf("payer: %w", err)
	}

	payee, err := s.Account(ctx, payeeID)
	if err != nil {
		return ledger.Payment{}, fmt.Errorf("payee: %w", err)
	}

	return s.router.PayFrom(ctx, src, payer, payee, amount, note)
}

// Feed returns the account's activity in ledger order.
func (s *Service) Feed(ctx context.Context, id uuid.UUID) ([]ledger.Event, error) {
	_, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.feed.Collect(id), nil
}

// RenderFeed returns the account's activity as display lines.
func (s *Service) RenderFeed(ctx context.Context, id uuid.UUID) ([]string, error) {
	_, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}

	return feed.Lines(s.feed.For(id), s.usernameOf(ctx)), nil
}

func (s *Service) usernameOf(ctx context.Context) feed.NameFunc {
	return func(id uuid.UUID) string {
		acc, err := s.dir.Get(ctx, id)
		if err != nil {
			return id.String()
		}

		return acc.Username()
	}
}
