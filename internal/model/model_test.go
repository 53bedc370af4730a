package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusKind(t *testing.T) {
	tests := map[ReservationStatus]ReservationStatus{
		"confirmed": StatusConfirmed,
		"PENDING":   StatusPending,
		"Cancelled": StatusCanceled,
		"CANCELED":  StatusCanceled,
		"refunded":  StatusUnknown,
		"":          StatusUnknown,
	}
	for in, want := range tests {
		if got := in.Kind(); got != want {
			t.Errorf("%q.Kind() = %q, want %q", in, got, want)
		}
	}
}

func TestTimestampLayouts(t *testing.T) {
	want := time.Date(2025, 7, 15, 19, 30, 0, 0, time.UTC)
	for _, s := range []string{"2025-07-15T19:30:00Z", "2025-07-15T19:30:00", "2025-07-15T19:30:00.000", "2025-07-15T19:30"} {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"`+s+`"`), &ts); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if !ts.Equal(want) {
			t.Errorf("%s parsed as %v", s, ts.Time)
		}
	}
	if _, err := ParseTimestamp("July 15"); err == nil {
		t.Error("expected error for free-form date")
	}
}

func TestEventDecodesBackendShape(t *testing.T) {
	body := `{"id":42,"name":"Comedy Night Special","eventDate":"2025-06-22T20:00:00","totalSeats":100,"availableSeats":75,"price":49.99,"category":"Theater","imageUrl":null,"createdAt":null}`
	var e Event
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatal(err)
	}
	if e.ID != 42 || e.AvailableSeats != 75 || e.EventDate.Day() != 22 || !e.CreatedAt.IsZero() {
		t.Fatalf("event = %+v", e)
	}
	out, _ := json.Marshal(e)
	var back map[string]any
	_ = json.Unmarshal(out, &back)
	if _, ok := back["createdAt"]; ok {
		t.Errorf("zero createdAt should be omitted: %s", out)
	}
}

func TestUserRoles(t *testing.T) {
	u := UserProfile{FirstName: "Ana", LastName: "Lima", Roles: []string{"USER", RoleAdmin}}
	if !u.HasRole(RoleAdmin) || u.HasRole("OWNER") || u.FullName() != "Ana Lima" {
		t.Fatalf("profile helpers wrong for %+v", u)
	}
}

func TestReservationDisplayName(t *testing.T) {
	if got := (Reservation{}).DisplayName(); got != "Event" {
		t.Errorf("empty = %q", got)
	}
	if got := (Reservation{EventName: "Expo"}).DisplayName(); got != "Expo" {
		t.Errorf("eventName = %q", got)
	}
	r := Reservation{EventName: "Expo", Event: &Event{ID: 3, Name: "Jazz"}}
	if r.DisplayName() != "Jazz" || r.EventID() != 3 {
		t.Errorf("embedded event ignored: %+v", r)
	}
}
