package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fastprodman/minivenmo/internal/services/venmo"
)

// NewServer creates and returns a configured *http.Server for the payments API.
func NewServer(port uint16, svc *venmo.Service) *http.Server {
	mux := NewRouter(svc)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
