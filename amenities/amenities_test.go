package amenities

import "testing"

func TestFirstBookingIndex(t *testing.T) {
	list := []Booking{
		{UserID: "u1", Status: BookingCompleted},
		{UserID: "u2", Status: BookingInProgress},
		{UserID: "u1", Status: BookingInProgress},
	}

	// Duplicate bookings by the same user resolve to the earliest entry.
	if got := firstBookingIndex(list, "u1"); got != 0 {
		t.Errorf("expected first match at 0, got %d", got)
	}
	if got := firstBookingIndex(list, "u2"); got != 1 {
		t.Errorf("expected match at 1, got %d", got)
	}
	if got := firstBookingIndex(list, "u9"); got != -1 {
		t.Errorf("expected -1 for unknown user, got %d", got)
	}
	if got := firstBookingIndex(nil, "u1"); got != -1 {
		t.Errorf("expected -1 for empty list, got %d", got)
	}
}
