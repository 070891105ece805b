package model

import (
	"testing"
	"time"
)

func TestCanCancel(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cutoff := 4 * time.Hour

	tests := []struct {
		name      string
		status    BookingStatus
		startsIn  time.Duration
		want      bool
	}{
		{"confirmed, five hours out", BookingConfirmed, 5 * time.Hour, true},
		{"confirmed, three hours out", BookingConfirmed, 3 * time.Hour, false},
		{"confirmed, exactly at the cutoff", BookingConfirmed, 4 * time.Hour, false},
		{"confirmed, just past the cutoff", BookingConfirmed, 4*time.Hour + time.Second, true},
		{"already cancelled", BookingCancelled, 5 * time.Hour, false},
		{"completed", BookingCompleted, 5 * time.Hour, false},
		{"waitlisted", BookingWaitlisted, 5 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{
				Status:  tt.status,
				Session: SessionSnapshot{StartTime: now.Add(tt.startsIn)},
			}
			if got := b.CanCancel(now, cutoff); got != tt.want {
				t.Errorf("CanCancel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingStatusHelpers(t *testing.T) {
	if !BookingConfirmed.CountsTowardCapacity() || !BookingWaitlisted.CountsTowardCapacity() {
		t.Error("confirmed and waitlisted bookings hold slots")
	}
	for _, s := range []BookingStatus{BookingCancelled, BookingCompleted, BookingNoShow} {
		if s.CountsTowardCapacity() {
			t.Errorf("%q should not hold a slot", s)
		}
		if !s.Terminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	if BookingConfirmed.Terminal() {
		t.Error("confirmed is not terminal")
	}
	if BookingStatus("pending").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestEmailKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane.Doe@Example.COM", "jane.doe@example.com"},
		{"  user@host.io  ", "user@host.io"},
		{"already@lower.case", "already@lower.case"},
	}
	for _, tt := range tests {
		if got := EmailKey(tt.in); got != tt.want {
			t.Errorf("EmailKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
