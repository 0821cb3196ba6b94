package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/accounts"
	"github.com/fastprodman/minivenmo/internal/ledger"
	"github.com/fastprodman/minivenmo/internal/money"
	"github.com/fastprodman/minivenmo/internal/repos/directory"
	"github.com/fastprodman/minivenmo/internal/services/payments"
	"github.com/fastprodman/minivenmo/internal/services/venmo"
)

// HandlerProvider wraps the venmo Service and exposes HTTP handlers.
type HandlerProvider struct {
	svc *venmo.Service
}

// NewHandler returns a new Handler provider.
func NewHandler(svc *venmo.Service) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps core errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, accounts.ErrInvalidUsername),
		errors.Is(err, accounts.ErrInvalidAmount),
		errors.Is(err, accounts.ErrInvalidCard),
		errors.Is(err, accounts.ErrSelfFriendship),
		errors.Is(err, payments.ErrSelfPayment),
		errors.Is(err, payments.ErrNonPositiveAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, directory.ErrUsernameTaken),
		errors.Is(err, accounts.ErrCardAlreadyLinked),
		errors.Is(err, accounts.ErrBalanceOverflow),
		errors.Is(err, payments.ErrInsufficientBalance),
		errors.Is(err, payments.ErrNoCardLinked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, payments.ErrCardDeclined):
		writeError(w, http.StatusPaymentRequired, "card declined")
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseUserIDFromPath reads `{userId}` from chi routes like:
//
//	GET  /users/{userId}
//	POST /users/{userId}/payments
func parseUserIDFromPath(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "userId")
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("missing userId")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid userId: %w", err)
	}

	return id, nil
}

// decodeBody limits the body size and disallows unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		if errors.Is(err, money.ErrInvalidAmount) {
			return err
		}

		return fmt.Errorf("invalid JSON")
	}

	return nil
}

type userResponse struct {
	ID       uuid.UUID    `json:"id"`
	Username string       `json:"username"`
	Balance  money.Amount `json:"balance"`
	HasCard  bool         `json:"hasCard"`
	Friends  int          `json:"friends"`
}

func toUserResponse(acc *accounts.Account) userResponse {
	return userResponse{
		ID:       acc.ID(),
		Username: acc.Username(),
		Balance:  acc.Balance(),
		HasCard:  acc.HasCard(),
		Friends:  len(acc.Friends()),
	}
}

type eventResponse struct {
	Type      ledger.Kind          `json:"type"`
	ID        *uuid.UUID           `json:"id,omitempty"`
	PayerID   *uuid.UUID           `json:"payerId,omitempty"`
	PayeeID   *uuid.UUID           `json:"payeeId,omitempty"`
	Amount    *money.Amount        `json:"amount,omitempty"`
	Note      string               `json:"note,omitempty"`
	Funding   ledger.FundingSource `json:"fundingSource,omitempty"`
	A         *uuid.UUID           `json:"a,omitempty"`
	B         *uuid.UUID           `json:"b,omitempty"`
	CreatedAt string               `json:"createdAt"`
}

func toEventResponse(e ledger.Event) eventResponse {
	out := eventResponse{
		Type:      e.Kind(),
		CreatedAt: e.OccurredAt().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	switch ev := e.(type) {
	case ledger.Payment:
		out.ID = &ev.ID
		out.PayerID = &ev.PayerID
		out.PayeeID = &ev.PayeeID
		out.Amount = &ev.Amount
		out.Note = ev.Note
		out.Funding = ev.Funding
	case ledger.Friendship:
		out.A = &ev.A
		out.B = &ev.B
	}

	return out
}

// --- Handlers ---

type createUserRequest struct {
	Username string       `json:"username"`
	Balance  money.Amount `json:"balance"`
	Card     string       `json:"card"`
}

// CreateUserHandler handles POST /users
func (h *HandlerProvider) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.svc.CreateUser(r.Context(), strings.TrimSpace(req.Username), req.Balance, strings.TrimSpace(req.Card))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(acc))
}

// ListUsersHandler handles GET /users
func (h *HandlerProvider) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Accounts(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(list))
	for _, acc := range list {
		out = append(out, toUserResponse(acc))
	}

	writeJSON(w, http.StatusOK, out)
}

// GetUserHandler handles GET /users/{userId}
func (h *HandlerProvider) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	acc, err := h.svc.Account(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(acc))
}

type depositRequest struct {
	Amount money.Amount `json:"amount"`
}

// DepositHandler handles POST /users/{userId}/deposits
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req depositRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.svc.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(acc))
}

type linkCardRequest struct {
	Card string `json:"card"`
}

// LinkCardHandler handles PUT /users/{userId}/card
func (h *HandlerProvider) LinkCardHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req linkCardRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.svc.LinkCard(r.Context(), userID, strings.TrimSpace(req.Card))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(acc))
}

type addFriendRequest struct {
	FriendID uuid.UUID `json:"friendId"`
}

// AddFriendHandler handles POST /users/{userId}/friends
func (h *HandlerProvider) AddFriendHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req addFriendRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.svc.AddFriend(r.Context(), userID, req.FriendID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListFriendsHandler handles GET /users/{userId}/friends
func (h *HandlerProvider) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	friends, err := h.svc.Friends(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(friends))
	for _, acc := range friends {
		out = append(out, toUserResponse(acc))
	}

	writeJSON(w, http.StatusOK, out)
}

type payRequest struct {
	PayeeID uuid.UUID    `json:"payeeId"`
	Amount  money.Amount `json:"amount"`
	Note    string       `json:"note"`
	Source  string       `json:"source"`
}

// PayHandler handles POST /users/{userId}/payments
func (h *HandlerProvider) PayHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req payRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := payments.ParseSource(strings.ToLower(strings.TrimSpace(req.Source)))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source")
		return
	}

	payment, err := h.svc.Pay(r.Context(), src, userID, req.PayeeID, req.Amount, req.Note)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(payment))
}

// FeedHandler handles GET /users/{userId}/feed
//
// With ?format=text the feed is rendered one line per event.
func (h *HandlerProvider) FeedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		lines, err := h.svc.RenderFeed(r.Context(), userID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		for _, line := range lines {
			_, err = fmt.Fprintln(w, line)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to write feed", "error", err)
				return
			}
		}

		return
	}

	events, err := h.svc.Feed(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}

	writeJSON(w, http.StatusOK, out)
}
