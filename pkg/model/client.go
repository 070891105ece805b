package model

import (
	"strings"
	"time"
)

const DefaultMembershipTier = "basic"

// Client is a studio client keyed by email. Email comparisons are
// case-insensitive via EmailKey; Email preserves the casing of the first
// registration. TotalBookings is a cached lifetime counter: it grows on
// every successful booking and is deliberately not decremented on
// cancellation.
type Client struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email" bson:"email"`
	EmailKey       string    `json:"-" bson:"email_key"`
	Phone          string    `json:"phone,omitempty" bson:"phone,omitempty"`
	TotalBookings  int       `json:"total_bookings" bson:"total_bookings"`
	MembershipTier string    `json:"membership_tier" bson:"membership_tier"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// EmailKey normalizes an email address into its case-insensitive lookup key.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ClientStats is the per-client booking summary returned alongside a
// client's booking list.
type ClientStats struct {
	TotalBookings      int64    `json:"total_bookings"`
	ConfirmedBookings  int64    `json:"confirmed_bookings"`
	CompletedBookings  int64    `json:"completed_bookings"`
	CancelledBookings  int64    `json:"cancelled_bookings"`
	UpcomingBookings   int64    `json:"upcoming_bookings"`
	FavoriteClassTypes []string `json:"favorite_class_types"`
	MemberSince        string   `json:"member_since"`
	MembershipTier     string   `json:"membership_tier"`
}
