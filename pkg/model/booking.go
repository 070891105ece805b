package model

import (
	"time"
)

type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "confirmed"
	BookingWaitlisted BookingStatus = "waitlisted"
	BookingCancelled  BookingStatus = "cancelled"
	BookingCompleted  BookingStatus = "completed"
	BookingNoShow     BookingStatus = "no_show"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingWaitlisted, BookingCancelled, BookingCompleted, BookingNoShow:
		return true
	}
	return false
}

// CountsTowardCapacity reports whether a booking in this status holds a slot
// on its session. The session's current_bookings counter must always equal
// the number of bookings in these statuses.
func (s BookingStatus) CountsTowardCapacity() bool {
	return s == BookingConfirmed || s == BookingWaitlisted
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted || s == BookingNoShow
}

// SessionSnapshot carries the display fields of the booked session, captured
// at booking time. It keeps booking reads self-contained and backs the
// cancellation-deadline check without a second lookup.
type SessionSnapshot struct {
	ClassName  string    `json:"class_name" bson:"class_name"`
	Instructor string    `json:"instructor" bson:"instructor"`
	StartTime  time.Time `json:"start_time" bson:"start_time"`
	Location   string    `json:"location" bson:"location"`
	PriceCents int64     `json:"price_cents" bson:"price_cents"`
}

// Booking is a client's claim on one slot of one session. Bookings are never
// deleted, only status-transitioned. Active mirrors
// Status.CountsTowardCapacity and backs the partial unique index preventing
// a second live booking for the same (session, client) pair.
type Booking struct {
	ID              string          `json:"id" bson:"_id"`
	SessionID       string          `json:"session_id" bson:"session_id"`
	ClientID        string          `json:"client_id" bson:"client_id"`
	ClientName      string          `json:"client_name" bson:"client_name"`
	ClientEmailKey  string          `json:"-" bson:"client_email_key"`
	Session         SessionSnapshot `json:"session" bson:"session"`
	Status          BookingStatus   `json:"status" bson:"status"`
	Active          bool            `json:"-" bson:"active"`
	BookedAt        time.Time       `json:"booking_datetime" bson:"booked_at"`
	Reference       string          `json:"booking_reference" bson:"reference"`
	SpecialRequests string          `json:"special_requests,omitempty" bson:"special_requests,omitempty"`
	FeedbackRating  *int            `json:"feedback_rating,omitempty" bson:"feedback_rating,omitempty"`
	FeedbackComment string          `json:"feedback_comment,omitempty" bson:"feedback_comment,omitempty"`
}

// CanCancel reports whether the booking may still be cancelled: it must be
// confirmed and now must be earlier than session start minus the cutoff.
func (b *Booking) CanCancel(now time.Time, cutoff time.Duration) bool {
	return b.Status == BookingConfirmed && now.Before(b.Session.StartTime.Add(-cutoff))
}

// BookingRequest is the payload accepted by POST /api/v1/book.
type BookingRequest struct {
	ClassID         string `json:"class_id" validate:"required,uuid4"`
	ClientName      string `json:"client_name" validate:"required,min=2,max=100"`
	ClientEmail     string `json:"client_email" validate:"required,email"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,phone"`
	SpecialRequests string `json:"special_requests,omitempty" validate:"omitempty,max=500"`
}

// BookingConfirmation is returned on a successful booking and published to
// the notifier.
type BookingConfirmation struct {
	BookingID   string        `json:"booking_id"`
	Reference   string        `json:"reference"`
	ClassName   string        `json:"class_name"`
	Instructor  string        `json:"instructor"`
	StartTime   time.Time     `json:"start_time"`
	Location    string        `json:"location"`
	PriceCents  int64         `json:"price_cents"`
	Status      BookingStatus `json:"status"`
	ClientName  string        `json:"client_name"`
	ClientEmail string        `json:"client_email"`
}
