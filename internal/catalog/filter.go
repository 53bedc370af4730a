// Package catalog derives the filtered and sorted event listing shown in
// the catalog view.  Everything here is pure: the input slice is never
// modified and the same query always yields the same output.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/event-reservation-web/internal/model"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// SortKey selects the listing order.
type SortKey string

const (
	SortDateAsc   SortKey = "date-asc"
	SortDateDesc  SortKey = "date-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

// ParseSort validates s.  The empty string selects SortDateAsc.
func ParseSort(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortDateAsc, nil
	case SortDateAsc, SortDateDesc, SortPriceAsc, SortPriceDesc:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort %q (want date-asc, date-desc, price-asc or price-desc)", s)
}

// Query is the catalog view's filter state.
type Query struct {
	Search   string  // substring matched against name or description
	Category string  // exact category, case-insensitive; "" or "all" disables
	Sort     SortKey // ordering; unknown keys keep the input order
}

// Apply returns the events matching q in q.Sort order.  Ties keep their
// input order.
func Apply(events []model.Event, q Query) []model.Event {
	term := strings.ToLower(q.Search)
	category := strings.TrimSpace(q.Category)
	anyCategory := category == "" || strings.EqualFold(category, AllCategories)

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if term != "" &&
			!strings.Contains(strings.ToLower(e.Name), term) &&
			!strings.Contains(strings.ToLower(e.Description), term) {
			continue
		}
		if !anyCategory && (e.Category == "" || !strings.EqualFold(e.Category, category)) {
			continue
		}
		out = append(out, e)
	}

	var less func(a, b model.Event) bool
	switch q.Sort {
	case SortDateAsc:
		less = func(a, b model.Event) bool { return a.EventDate.Before(b.EventDate.Time) }
	case SortDateDesc:
		less = func(a, b model.Event) bool { return b.EventDate.Before(a.EventDate.Time) }
	case SortPriceAsc:
		less = func(a, b model.Event) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b model.Event) bool { return b.Price < a.Price }
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// Categories lists the distinct categories in first-seen order, for
// building a category picker.
func Categories(events []model.Event) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range events {
		key := strings.ToLower(e.Category)
		if e.Category == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e.Category)
	}
	return out
}
