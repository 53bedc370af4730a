package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/event-reservation-web/internal/config"
	"github.com/iliyamo/event-reservation-web/internal/storage"
)

type fakeAPI struct {
	reservations int
	lastBody     map[string]any
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid email or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": 7, "firstName": "Ana", "lastName": "Lima", "email": body["email"], "roles": []string{"USER"}},
		})
	})
	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "name": "Jazz Night", "category": "Concert", "price": 30, "availableSeats": 10, "eventDate": "2025-07-01T20:00:00"},
			{"id": 2, "name": "Go Conference", "category": "Conference", "price": 200, "availableSeats": 5, "eventDate": "2025-06-01T09:00:00"},
		})
	})
	mux.HandleFunc("GET /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "name": "Comedy Night Special", "price": 49.99, "totalSeats": 100, "availableSeats": 75})
	})
	mux.HandleFunc("POST /api/reservations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.reservations++
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "reservationCode": "ABC123", "status": "confirmed", "numberOfSeats": 2})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	store *storage.MemoryStore
	cfg   config.Config
}

func newHarness(t *testing.T, apiURL string) *harness {
	return &harness{
		store: storage.NewMemoryStore(),
		cfg:   config.Config{Env: "test", APIBaseURL: apiURL, APITimeout: 5 * time.Second, CatalogFallback: "off"},
	}
}

func (h *harness) run(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, env{
		stdout: &out,
		stderr: &errOut,
		stdin:  strings.NewReader(""),
		config: &h.cfg,
		openStore: func(context.Context) (storage.Store, func(), error) {
			return h.store, func() {}, nil
		},
	})
	return out.String(), errOut.String(), err
}

func TestLoginPersistsAcrossRuns(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api.server(t).URL+"/api")

	out, _, err := h.run("login", "--email", "ana@example.com", "--password", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Logged in as Ana Lima") || !strings.Contains(out, "next: /\n") {
		t.Fatalf("login output = %q", out)
	}

	out, _, err = h.run("whoami")
	if err != nil || !strings.Contains(out, "ana@example.com") || !strings.Contains(out, "admin: false") {
		t.Fatalf("whoami = %q, %v", out, err)
	}

	out, _, err = h.run("logout")
	if err != nil || !strings.Contains(out, "next: /login") {
		t.Fatalf("logout = %q, %v", out, err)
	}
	if _, _, err := h.run("whoami"); !errors.As(err, new(exitError)) {
		t.Fatalf("whoami after logout err = %v", err)
	}
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api.server(t).URL+"/api")
	_, errOut, err := h.run("login", "--email", "ana@example.com", "--password", "wrong")
	if !errors.As(err, new(exitError)) || !strings.Contains(errOut, "Invalid email or password") {
		t.Fatalf("err=%v stderr=%q", err, errOut)
	}
}

func TestEventsListing(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api.server(t).URL+"/api")
	out, _, err := h.run("events", "--sort", "date-asc")
	if err != nil {
		t.Fatal(err)
	}
	conf, jazz := strings.Index(out, "Go Conference"), strings.Index(out, "Jazz Night")
	if conf < 0 || jazz < 0 || conf > jazz {
		t.Fatalf("events = %q", out)
	}
	out, _, _ = h.run("events", "--category", "concert")
	if strings.Contains(out, "Go Conference") {
		t.Fatalf("category filter ignored: %q", out)
	}
}

func TestEventsFallbackWhenBackendDown(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/api")
	h.cfg.CatalogFallback = "mock"
	out, errOut, err := h.run("events")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Summer Music Festival") || !strings.Contains(errOut, "demo events") {
		t.Fatalf("out=%q stderr=%q", out, errOut)
	}
}

func TestReserveRequiresLogin(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api.server(t).URL+"/api")
	out, errOut, err := h.run("reserve", "--count", "2", "42")
	if !errors.As(err, new(exitError)) {
		t.Fatalf("err = %v", err)
	}
	if api.reservations != 0 {
		t.Fatal("reservation request sent without a session")
	}
	if !strings.Contains(out, "next: /login?redirect=%2Fevents%2F42") || !strings.Contains(errOut, "Authentication required") {
		t.Fatalf("out=%q stderr=%q", out, errOut)
	}
}

func TestReserveSuccess(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api.server(t).URL+"/api")
	if _, _, err := h.run("login", "--email", "ana@example.com", "--password", "secret"); err != nil {
		t.Fatal(err)
	}

	out, _, err := h.run("reserve", "--seats", "seat-1,seat-2", "42")
	if err != nil {
		t.Fatal(err)
	}
	if api.reservations != 1 || api.lastBody["eventId"] != float64(42) || api.lastBody["numberOfSeats"] != float64(2) {
		t.Fatalf("backend saw %d calls, body %v", api.reservations, api.lastBody)
	}
	for _, want := range []string{"Total: $119.96", "ABC123", "next: /my-reservations"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/api")
	if _, _, err := h.run("dance"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("err = %v", err)
	}
}
