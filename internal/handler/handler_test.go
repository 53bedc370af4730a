package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/apiclient"
	"github.com/iliyamo/event-reservation-web/internal/catalog"
	"github.com/iliyamo/event-reservation-web/internal/middleware"
	"github.com/iliyamo/event-reservation-web/internal/model"
	"github.com/iliyamo/event-reservation-web/internal/queue"
	"github.com/iliyamo/event-reservation-web/internal/utils"
)

type fakeBackend struct {
	token  string
	events []model.Event
	err    error
	res    *model.Reservation
	seats  int
	code   string
}

func (f *fakeBackend) ListEvents(ctx context.Context) ([]model.Event, error) { return f.events, f.err }
func (f *fakeBackend) ListUpcomingEvents(ctx context.Context) ([]model.Event, error) {
	return f.events, f.err
}
func (f *fakeBackend) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, &apiclient.APIError{StatusCode: http.StatusNotFound, Message: "Event not found"}
}
func (f *fakeBackend) CreateEvent(ctx context.Context, req model.EventRequest) (*model.Event, error) {
	return &model.Event{ID: 99, Name: req.Name}, f.err
}
func (f *fakeBackend) CreateReservation(ctx context.Context, eventID int64, n int) (*model.Reservation, error) {
	f.seats = n
	return f.res, f.err
}
func (f *fakeBackend) ListMyReservations(ctx context.Context) ([]model.Reservation, error) {
	if f.res == nil {
		return nil, f.err
	}
	return []model.Reservation{*f.res}, f.err
}
func (f *fakeBackend) GetReservation(ctx context.Context, code string) (*model.Reservation, error) {
	f.code = code
	return f.res, f.err
}
func (f *fakeBackend) CancelReservation(ctx context.Context, code string) error {
	f.code = code
	return f.err
}

// backendFor records the bearer each call was made with.
func backendFor(f *fakeBackend) BackendFor {
	return func(token string) Backend {
		f.token = token
		return f
	}
}

type recordingPublisher struct {
	events []queue.ReservationConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func do(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sampleEvents() []model.Event {
	return []model.Event{
		{ID: 1, Name: "Jazz Night", Category: "Concert", Price: 30},
		{ID: 2, Name: "Go Conference", Category: "Conference", Price: 200},
		{ID: 3, Name: "Rock Fest", Category: "Concert", Price: 90},
	}
}

func eventsEcho(f *fakeBackend, mode catalog.FallbackMode) *echo.Echo {
	h := &EventHandler{
		Catalog: catalog.NewSource(f, mode, nil),
		Backend: backendFor(f),
		Log:     zap.NewNop(),
	}
	e := echo.New()
	e.GET("/api/events", h.List)
	e.GET("/api/events/upcoming", h.Upcoming)
	e.GET("/api/events/:id", h.Get)
	e.POST("/api/events", h.Create, middleware.RequireBearer(nil), middleware.RequireRole(model.RoleAdmin))
	return e
}

func TestListEventsFiltersAndSorts(t *testing.T) {
	e := eventsEcho(&fakeBackend{events: sampleEvents()}, catalog.FallbackOff)

	rec := do(e, http.MethodGet, "/api/events?category=Concert&sort=price-desc", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(CatalogSourceHeader) != "backend" {
		t.Fatalf("source = %q", rec.Header().Get(CatalogSourceHeader))
	}
	body := rec.Body.String()
	rock, jazz := strings.Index(body, "Rock Fest"), strings.Index(body, "Jazz Night")
	if rock < 0 || jazz < 0 || rock > jazz || strings.Contains(body, "Go Conference") {
		t.Fatalf("body = %s", body)
	}

	if rec := do(e, http.MethodGet, "/api/events?sort=random", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad sort status = %d", rec.Code)
	}
}

func TestListEventsFallback(t *testing.T) {
	down := &apiclient.NetworkError{Op: "listEvents", Err: errors.New("connection refused")}

	e := eventsEcho(&fakeBackend{err: down}, catalog.FallbackMock)
	rec := do(e, http.MethodGet, "/api/events", "", "")
	if rec.Code != http.StatusOK || rec.Header().Get(CatalogSourceHeader) != "fallback" {
		t.Fatalf("got %d source=%q", rec.Code, rec.Header().Get(CatalogSourceHeader))
	}
	if !strings.Contains(rec.Body.String(), "Summer Music Festival") || rec.Header().Get(echo.HeaderCacheControl) != "no-store" {
		t.Fatalf("fallback body = %s", rec.Body.String())
	}

	e = eventsEcho(&fakeBackend{err: down}, catalog.FallbackOff)
	rec = do(e, http.MethodGet, "/api/events", "", "")
	if rec.Code != http.StatusBadGateway || !strings.Contains(rec.Body.String(), `"message"`) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestGetEvent(t *testing.T) {
	e := eventsEcho(&fakeBackend{events: sampleEvents()}, catalog.FallbackOff)
	if rec := do(e, http.MethodGet, "/api/events/2", "", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Go Conference") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	rec := do(e, http.MethodGet, "/api/events/7", "", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Event not found") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodGet, "/api/events/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestCreateEventRequiresAdmin(t *testing.T) {
	f := &fakeBackend{}
	e := eventsEcho(f, catalog.FallbackOff)
	admin, _ := utils.NewAccessToken("k", "root", []string{"ADMIN"}, time.Hour)
	user, _ := utils.NewAccessToken("k", "ana", []string{"USER"}, time.Hour)
	body := `{"name":"Expo","eventDate":"2025-09-01T18:00:00","totalSeats":50,"price":10}`

	if rec := do(e, http.MethodPost, "/api/events", body, user); rec.Code != http.StatusForbidden {
		t.Fatalf("user got %d", rec.Code)
	}
	rec := do(e, http.MethodPost, "/api/events", body, admin)
	if rec.Code != http.StatusCreated || f.token != admin {
		t.Fatalf("admin got %d, token forwarded %v", rec.Code, f.token == admin)
	}
	if rec := do(e, http.MethodPost, "/api/events", `{"name":""}`, admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid body got %d", rec.Code)
	}
}

func reservationsEcho(f *fakeBackend, pub queue.Publisher) *echo.Echo {
	h := &ReservationHandler{
		Backend:   backendFor(f),
		Publisher: pub,
		Log:       zap.NewNop(),
		Now:       func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) },
	}
	e := echo.New()
	g := e.Group("/api/reservations", middleware.RequireBearer(nil))
	g.POST("", h.Create)
	g.GET("/user", h.Mine)
	g.GET("/:code", h.Get)
	g.DELETE("/:code", h.Cancel)
	return e
}

func TestCreateReservationForwardsAndPublishes(t *testing.T) {
	f := &fakeBackend{res: &model.Reservation{ID: 1, ReservationCode: "ABC123", Status: "confirmed", NumberOfSeats: 2}}
	pub := &recordingPublisher{}
	e := reservationsEcho(f, pub)
	token, _ := utils.NewAccessToken("k", "ana@example.com", []string{"USER"}, time.Hour)

	rec := do(e, http.MethodPost, "/api/reservations", `{"eventId":42,"numberOfSeats":2}`, token)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "ABC123") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if f.token != token || f.seats != 2 {
		t.Fatalf("forwarded token=%v seats=%d", f.token == token, f.seats)
	}
	if len(pub.events) != 1 || pub.events[0].EventID != 42 || pub.events[0].UserID != "ana@example.com" {
		t.Fatalf("published = %+v", pub.events)
	}
}

func TestCreateReservationSurvivesPublishFailure(t *testing.T) {
	f := &fakeBackend{res: &model.Reservation{ID: 1, ReservationCode: "ABC123", Status: model.StatusConfirmed}}
	e := reservationsEcho(f, &recordingPublisher{err: errors.New("broker down")})
	rec := do(e, http.MethodPost, "/api/reservations", `{"eventId":42,"numberOfSeats":1}`, "opaque")
	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestCreateReservationPublishesOnlyConfirmed(t *testing.T) {
	for _, status := range []model.ReservationStatus{model.StatusPending, model.StatusCanceled, ""} {
		t.Run(string(status), func(t *testing.T) {
			f := &fakeBackend{res: &model.Reservation{ID: 1, ReservationCode: "ABC123", Status: status}}
			pub := &recordingPublisher{}
			rec := do(reservationsEcho(f, pub), http.MethodPost, "/api/reservations", `{"eventId":42,"numberOfSeats":1}`, "t")
			if rec.Code != http.StatusCreated {
				t.Fatalf("got %d", rec.Code)
			}
			if len(pub.events) != 0 {
				t.Fatalf("published %+v for status %q", pub.events, status)
			}
		})
	}
}

func TestCreateReservationValidation(t *testing.T) {
	e := reservationsEcho(&fakeBackend{}, queue.NopPublisher{})
	tests := []struct {
		name, body, token string
		status            int
	}{
		{"no token", `{"eventId":42,"numberOfSeats":2}`, "", http.StatusUnauthorized},
		{"no event", `{"numberOfSeats":2}`, "t", http.StatusBadRequest},
		{"too many seats", `{"eventId":42,"numberOfSeats":5}`, "t", http.StatusBadRequest},
		{"zero seats", `{"eventId":42,"numberOfSeats":0}`, "t", http.StatusBadRequest},
		{"malformed", `{`, "t", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(e, http.MethodPost, "/api/reservations", tt.body, tt.token); rec.Code != tt.status {
				t.Fatalf("got %d %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestReservationErrorsKeepBackendMessage(t *testing.T) {
	f := &fakeBackend{err: &apiclient.APIError{StatusCode: http.StatusConflict, Message: "Not enough seats available"}}
	e := reservationsEcho(f, queue.NopPublisher{})
	rec := do(e, http.MethodPost, "/api/reservations", `{"eventId":42,"numberOfSeats":2}`, "t")
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "Not enough seats available") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestReservationsByCode(t *testing.T) {
	f := &fakeBackend{res: &model.Reservation{ID: 1, ReservationCode: "ABC123"}}
	e := reservationsEcho(f, queue.NopPublisher{})

	if rec := do(e, http.MethodGet, "/api/reservations/user", "", "t"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ABC123") {
		t.Fatalf("mine: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodGet, "/api/reservations/ABC123", "", "t"); rec.Code != http.StatusOK || f.code != "ABC123" {
		t.Fatalf("get: %d code=%q", rec.Code, f.code)
	}
	if rec := do(e, http.MethodDelete, "/api/reservations/XYZ", "", "t"); rec.Code != http.StatusNoContent || f.code != "XYZ" {
		t.Fatalf("cancel: %d code=%q", rec.Code, f.code)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health)
	if rec := do(e, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}
