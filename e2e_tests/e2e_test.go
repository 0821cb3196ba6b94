package e2etests

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fastprodman/minivenmo/internal/api"
	"github.com/fastprodman/minivenmo/internal/money"
	"github.com/fastprodman/minivenmo/internal/processor"
	"github.com/fastprodman/minivenmo/internal/services/venmo"
)

const (
	timeout  = 5 * time.Second
	goodCard = "4111111111111111"
)

var httpClient = &http.Client{Timeout: timeout}

type user struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Balance  string `json:"balance"`
	HasCard  bool   `json:"hasCard"`
	Friends  int    `json:"friends"`
}

// newServer starts the API over an in-memory service. Charges above
// maxCharge are declined (zero means no limit).
func newServer(t *testing.T, maxCharge money.Amount) string {
	t.Helper()

	svc := venmo.New(venmo.Config{}, processor.Simulated{MaxCharge: maxCharge})
	srv := httptest.NewServer(api.NewRouter(svc))
	t.Cleanup(srv.Close)

	return srv.URL
}

func TestE2E_PaymentsAndFeedFlow(t *testing.T) {
	baseURL := newServer(t, 0)

	bobby := createUser(t, baseURL, "Bobby", "5.00", goodCard)
	carol := createUser(t, baseURL, "Carol", "10.00", "")

	t.Run("bobby_pays_carol_from_balance", func(t *testing.T) {
		code, body := postJSON(t, baseURL+"/users/"+bobby.ID+"/payments", map[string]any{
			"payeeId": carol.ID,
			"amount":  "5.00",
			"note":    "Coffee",
		})
		if code != http.StatusCreated {
			t.Fatalf("pay: want 201, got %d (%s)", code, body)
		}

		if !strings.Contains(body, `"fundingSource":"balance"`) {
			t.Fatalf("pay: want balance funding, got %s", body)
		}

		if got := getUser(t, baseURL, bobby.ID).Balance; got != "0.00" {
			t.Fatalf("bobby after coffee: want 0.00, got %s", got)
		}

		if got := getUser(t, baseURL, carol.ID).Balance; got != "15.00" {
			t.Fatalf("carol after coffee: want 15.00, got %s", got)
		}
	})

	t.Run("carol_pays_bobby_without_card_conflict", func(t *testing.T) {
		code, body := postJSON(t, baseURL+"/users/"+carol.ID+"/payments", map[string]any{
			"payeeId": bobby.ID,
			"amount":  "15.01",
			"note":    "Too much",
		})
		if code != http.StatusConflict {
			t.Fatalf("no card: want 409, got %d (%s)", code, body)
		}

		if got := getUser(t, baseURL, carol.ID).Balance; got != "15.00" {
			t.Fatalf("carol unchanged: want 15.00, got %s", got)
		}
	})

	t.Run("bobby_pays_carol_with_card", func(t *testing.T) {
		code, body := postJSON(t, baseURL+"/users/"+bobby.ID+"/payments", map[string]any{
			"payeeId": carol.ID,
			"amount":  "15.00",
			"note":    "Lunch",
		})
		if code != http.StatusCreated {
			t.Fatalf("pay: want 201, got %d (%s)", code, body)
		}

		if !strings.Contains(body, `"fundingSource":"card"`) {
			t.Fatalf("pay: want card funding, got %s", body)
		}

		if got := getUser(t, baseURL, bobby.ID).Balance; got != "0.00" {
			t.Fatalf("bobby after lunch: want 0.00, got %s", got)
		}

		if got := getUser(t, baseURL, carol.ID).Balance; got != "30.00" {
			t.Fatalf("carol after lunch: want 30.00, got %s", got)
		}
	})

	t.Run("friendship_and_feed", func(t *testing.T) {
		code, body := postJSON(t, baseURL+"/users/"+carol.ID+"/friends", map[string]any{
			"friendId": bobby.ID,
		})
		if code != http.StatusOK {
			t.Fatalf("add friend: want 200, got %d (%s)", code, body)
		}

		if got := getUser(t, baseURL, bobby.ID).Friends; got != 1 {
			t.Fatalf("bobby friends: want 1, got %d", got)
		}

		code, feed := get(t, baseURL+"/users/"+bobby.ID+"/feed?format=text")
		if code != http.StatusOK {
			t.Fatalf("feed: want 200, got %d (%s)", code, feed)
		}

		want := "Bobby paid Carol $5.00 for Coffee\n" +
			"Bobby paid Carol $15.00 for Lunch\n" +
			"Carol and Bobby are now friends\n"
		if feed != want {
			t.Fatalf("feed mismatch:\nwant %q\ngot  %q", want, feed)
		}
	})
}

func TestE2E_ValidationAndErrors(t *testing.T) {
	baseURL := newServer(t, money.FromCents(1000))

	alice := createUser(t, baseURL, "alice", "1.00", goodCard)
	dave := createUser(t, baseURL, "dave", "0.00", "")

	t.Run("duplicate_username_conflict", func(t *testing.T) {
		code, _ := postJSON(t, baseURL+"/users", map[string]any{"username": "ALICE"})
		if code != http.StatusConflict {
			t.Fatalf("duplicate username: want 409, got %d", code)
		}
	})

	t.Run("invalid_username", func(t *testing.T) {
		code, _ := postJSON(t, baseURL+"/users", map[string]any{"username": "ab"})
		if code != http.StatusBadRequest {
			t.Fatalf("short username: want 400, got %d", code)
		}
	})

	t.Run("invalid_amount_precision", func(t *testing.T) {
		code, _ := postJSON(t, baseURL+"/users/"+alice.ID+"/payments", map[string]any{
			"payeeId": dave.ID,
			"amount":  "1.234",
		})
		if code != http.StatusBadRequest {
			t.Fatalf("bad amount precision: want 400, got %d", code)
		}
	})

	t.Run("self_payment", func(t *testing.T) {
		code, _ := postJSON(t, baseURL+"/users/"+alice.ID+"/payments", map[string]any{
			"payeeId": alice.ID,
			"amount":  "1.00",
		})
		if code != http.StatusBadRequest {
			t.Fatalf("self payment: want 400, got %d", code)
		}
	})

	t.Run("card_declined", func(t *testing.T) {
		code, _ := postJSON(t, baseURL+"/users/"+alice.ID+"/payments", map[string]any{
			"payeeId": dave.ID,
			"amount":  "50.00",
		})
		if code != http.StatusPaymentRequired {
			t.Fatalf("declined: want 402, got %d", code)
		}

		if got := getUser(t, baseURL, dave.ID).Balance; got != "0.00" {
			t.Fatalf("dave after decline: want 0.00, got %s", got)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		code, _ := get(t, baseURL+"/users/00000000-0000-0000-0000-000000000001")
		if code != http.StatusNotFound {
			t.Fatalf("unknown user: want 404, got %d", code)
		}
	})

	t.Run("invalid_source", func(t *testing.T) {
		code, _ := postJSON(t, baseURL+"/users/"+alice.ID+"/payments", map[string]any{
			"payeeId": dave.ID,
			"amount":  "1.00",
			"source":  "bitcoin",
		})
		if code != http.StatusBadRequest {
			t.Fatalf("bad source: want 400, got %d", code)
		}
	})
}

/* -------------------- helpers -------------------- */

func createUser(t *testing.T, baseURL, username, balance, card string) user {
	t.Helper()

	code, body := postJSON(t, baseURL+"/users", map[string]any{
		"username": username,
		"balance":  balance,
		"card":     card,
	})
	if code != http.StatusCreated {
		t.Fatalf("create %s: want 201, got %d (%s)", username, code, body)
	}

	var u user

	err := json.Unmarshal([]byte(body), &u)
	if err != nil {
		t.Fatalf("decode user: %v", err)
	}

	return u
}

func getUser(t *testing.T, baseURL, id string) user {
	t.Helper()

	code, body := get(t, baseURL+"/users/"+id)
	if code != http.StatusOK {
		t.Fatalf("GET user %s: want 200, got %d (%s)", id, code, body)
	}

	var u user

	err := json.Unmarshal([]byte(body), &u)
	if err != nil {
		t.Fatalf("decode user: %v", err)
	}

	return u
}

func get(t *testing.T, u string) (int, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, u, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	return do(t, req)
}

func postJSON(t *testing.T, u string, body any) (int, string) {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return do(t, req)
}

func do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request %s: %v", req.URL, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return resp.StatusCode, string(b)
}
