package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fastprodman/minivenmo/internal/infra/logging"
	"github.com/fastprodman/minivenmo/internal/services/venmo"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(svc *venmo.Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUserHandler)
		r.Get("/", h.ListUsersHandler)

		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", h.GetUserHandler)
			r.Post("/deposits", h.DepositHandler)
			r.Put("/card", h.LinkCardHandler)
			r.Post("/friends", h.AddFriendHandler)
			r.Get("/friends", h.ListFriendsHandler)
			r.Post("/payments", h.PayHandler)
			r.Get("/feed", h.FeedHandler)
		})
	})

	return r
}
