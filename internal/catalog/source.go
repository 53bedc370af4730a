package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/apiclient"
	"github.com/iliyamo/event-reservation-web/internal/model"
)

// FallbackMode controls what the catalog shows when the backend cannot
// be reached.
type FallbackMode string

const (
	// FallbackOff surfaces every failure.
	FallbackOff FallbackMode = "off"
	// FallbackMock replaces an unreachable backend with DemoEvents.
	FallbackMock FallbackMode = "mock"
)

// ParseFallbackMode validates s.
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch m := FallbackMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FallbackOff, FallbackMock:
		return m, nil
	}
	return "", fmt.Errorf("unknown catalog fallback %q (want off or mock)", s)
}

// Lister fetches the full event collection.
type Lister interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
}

// Result is a fetched collection and where it came from.
type Result struct {
	Events   []model.Event
	Fallback bool // true when Events are the demo set
}

// Source fetches events and applies the fallback policy.
type Source struct {
	api  Lister
	mode FallbackMode
	log  *zap.Logger
}

func NewSource(api Lister, mode FallbackMode, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{api: api, mode: mode, log: logger}
}

// Mode returns the configured fallback mode.
func (s *Source) Mode() FallbackMode { return s.mode }

// List fetches the events.  In FallbackMock mode an unreachable backend
// or an undecodable body yields DemoEvents; rejections with a status code
// and caller cancellations are always returned as errors.
func (s *Source) List(ctx context.Context) (Result, error) {
	events, err := s.api.ListEvents(ctx)
	if err == nil {
		return Result{Events: events}, nil
	}
	if s.mode == FallbackMock && apiclient.IsNetworkFailure(err) && ctx.Err() == nil {
		s.log.Warn("backend unavailable, serving demo events", zap.Error(err))
		return Result{Events: DemoEvents(), Fallback: true}, nil
	}
	return Result{}, err
}

// DemoEvents returns the built-in catalog shown while the backend is
// down.  A fresh slice is returned on every call.
func DemoEvents() []model.Event {
	at := func(y int, m time.Month, d, h int) model.Timestamp {
		return model.NewTimestamp(time.Date(y, m, d, h, 0, 0, 0, time.UTC))
	}
	return []model.Event{
		{
			ID:             1,
			Name:           "Summer Music Festival",
			Description:    "Three days of live music in Central Park, NY.",
			EventDate:      at(2025, time.July, 15, 16),
			TotalSeats:     300,
			AvailableSeats: 250,
			Price:          89.99,
			Category:       "Concert",
		},
		{
			ID:             2,
			Name:           "Tech Innovation Summit",
			Description:    "Keynotes and workshops at the Convention Center, SF.",
			EventDate:      at(2025, time.August, 5, 9),
			TotalSeats:     150,
			AvailableSeats: 120,
			Price:          199.99,
			Category:       "Conference",
		},
		{
			ID:             3,
			Name:           "Comedy Night Special",
			Description:    "Stand-up showcase at the Laugh Factory, LA.",
			EventDate:      at(2025, time.June, 22, 20),
			TotalSeats:     100,
			AvailableSeats: 75,
			Price:          49.99,
			Category:       "Theater",
		},
	}
}
