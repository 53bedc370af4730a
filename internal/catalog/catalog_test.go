package catalog

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/iliyamo/event-reservation-web/internal/apiclient"
	"github.com/iliyamo/event-reservation-web/internal/model"
)

func ev(id int64, name, desc, category string, price float64, day int) model.Event {
	return model.Event{
		ID:          id,
		Name:        name,
		Description: desc,
		Category:    category,
		Price:       price,
		EventDate:   model.NewTimestamp(time.Date(2025, time.March, day, 20, 0, 0, 0, time.UTC)),
	}
}

func ids(events []model.Event) []int64 {
	out := make([]int64, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

var sample = []model.Event{
	ev(1, "Jazz Night", "Smooth quartet", "Concert", 40, 10),
	ev(2, "Go Conference", "Talks about JAZZ-fast code", "Conference", 199.99, 3),
	ev(3, "Hamlet", "Classic theater", "Theater", 40, 20),
	ev(4, "Rock Fest", "", "concert", 89.99, 1),
	ev(5, "Mystery", "", "", 10, 15),
}

func TestApply(t *testing.T) {
	cases := []struct {
		name string
		q    Query
		want []int64
	}{
		{"everything by date", Query{Category: AllCategories, Sort: SortDateAsc}, []int64{4, 2, 1, 5, 3}},
		{"date desc", Query{Sort: SortDateDesc}, []int64{3, 5, 1, 2, 4}},
		{"price asc keeps ties stable", Query{Sort: SortPriceAsc}, []int64{5, 1, 3, 4, 2}},
		{"price desc keeps ties stable", Query{Sort: SortPriceDesc}, []int64{2, 4, 1, 3, 5}},
		{"search matches name or description", Query{Search: "jazz", Sort: SortDateAsc}, []int64{2, 1}},
		{"category is case-insensitive", Query{Category: "CONCERT", Sort: SortDateAsc}, []int64{4, 1}},
		{"category excludes uncategorized", Query{Category: "Theater"}, []int64{3}},
		{"search and category combine", Query{Search: "night", Category: "concert"}, []int64{1}},
		{"unknown sort keeps input order", Query{Sort: "popularity"}, []int64{1, 2, 3, 4, 5}},
		{"no match", Query{Search: "opera"}, []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Apply(sample, tc.q))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyIsPure(t *testing.T) {
	before := ids(sample)
	q := Query{Search: "a", Sort: SortPriceDesc}
	first := Apply(sample, q)
	second := Apply(sample, q)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same query produced different output")
	}
	if !reflect.DeepEqual(ids(sample), before) {
		t.Fatal("Apply reordered its input")
	}
}

func TestParseSort(t *testing.T) {
	if k, err := ParseSort(""); err != nil || k != SortDateAsc {
		t.Errorf("empty = %q, %v", k, err)
	}
	if k, err := ParseSort("Price-Desc"); err != nil || k != SortPriceDesc {
		t.Errorf("Price-Desc = %q, %v", k, err)
	}
	if _, err := ParseSort("random"); err == nil {
		t.Error("want error for unknown sort")
	}
}

func TestCategories(t *testing.T) {
	got := Categories(sample)
	want := []string{"Concert", "Conference", "Theater"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories = %v, want %v", got, want)
	}
}

type listerFunc func(ctx context.Context) ([]model.Event, error)

func (f listerFunc) ListEvents(ctx context.Context) ([]model.Event, error) { return f(ctx) }

func TestSourceFallback(t *testing.T) {
	down := listerFunc(func(context.Context) ([]model.Event, error) {
		return nil, &apiclient.NetworkError{Op: "list events", Err: errors.New("connection refused")}
	})

	res, err := NewSource(down, FallbackMock, nil).List(context.Background())
	if err != nil {
		t.Fatalf("mock mode: %v", err)
	}
	if !res.Fallback || len(res.Events) == 0 {
		t.Fatalf("want non-empty fallback set, got %+v", res)
	}

	if _, err := NewSource(down, FallbackOff, nil).List(context.Background()); !apiclient.IsNetworkFailure(err) {
		t.Fatalf("off mode must surface the failure, got %v", err)
	}
}

func TestSourceDoesNotMaskRejections(t *testing.T) {
	rejected := listerFunc(func(context.Context) ([]model.Event, error) {
		return nil, &apiclient.APIError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch events"}
	})
	if _, err := NewSource(rejected, FallbackMock, nil).List(context.Background()); err == nil {
		t.Fatal("backend rejection must not be replaced by demo data")
	}
}

func TestSourceDoesNotMaskCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cancelled := listerFunc(func(ctx context.Context) ([]model.Event, error) {
		return nil, &apiclient.NetworkError{Op: "list events", Err: ctx.Err()}
	})
	if _, err := NewSource(cancelled, FallbackMock, nil).List(ctx); err == nil {
		t.Fatal("cancelled fetch must not fall back")
	}
}

func TestSourcePassesThroughBackendData(t *testing.T) {
	up := listerFunc(func(context.Context) ([]model.Event, error) { return sample, nil })
	res, err := NewSource(up, FallbackMock, nil).List(context.Background())
	if err != nil || res.Fallback || len(res.Events) != len(sample) {
		t.Fatalf("got %+v, %v", res, err)
	}
}

func TestParseFallbackMode(t *testing.T) {
	if m, err := ParseFallbackMode("MOCK"); err != nil || m != FallbackMock {
		t.Errorf("MOCK = %q, %v", m, err)
	}
	if _, err := ParseFallbackMode("sometimes"); err == nil {
		t.Error("want error")
	}
}
