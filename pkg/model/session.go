package model

import (
	"time"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionOngoing, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ClassTypeRef is the class-template information embedded in a session.
type ClassTypeRef struct {
	ID                   string     `json:"id" bson:"id"`
	Name                 string     `json:"name" bson:"name"`
	Description          string     `json:"description,omitempty" bson:"description,omitempty"`
	DurationMinutes      int        `json:"duration_minutes" bson:"duration_minutes"`
	Difficulty           Difficulty `json:"difficulty_level" bson:"difficulty_level"`
	CaloriesBurnEstimate int        `json:"calories_burn_estimate,omitempty" bson:"calories_burn_estimate,omitempty"`
}

// InstructorRef is the instructor information embedded in a session.
type InstructorRef struct {
	ID              string  `json:"id" bson:"id"`
	Name            string  `json:"name" bson:"name"`
	Rating          float64 `json:"rating,omitempty" bson:"rating,omitempty"`
	ExperienceYears int     `json:"experience_years,omitempty" bson:"experience_years,omitempty"`
}

// Session is a single scheduled occurrence of a class type.
// CurrentBookings is a cached counter kept in lockstep with the count of
// active bookings on the session; it is mutated only by the booking ledger
// through conditional updates.
type Session struct {
	ID              string        `json:"id" bson:"_id"`
	ClassType       ClassTypeRef  `json:"class_type" bson:"class_type"`
	Instructor      InstructorRef `json:"instructor" bson:"instructor"`
	StartTime       time.Time     `json:"start_time" bson:"start_time"`
	MaxCapacity     int           `json:"max_capacity" bson:"max_capacity"`
	CurrentBookings int           `json:"current_bookings" bson:"current_bookings"`
	Status          SessionStatus `json:"status" bson:"status"`
	PriceCents      int64         `json:"price_cents" bson:"price_cents"`
	Location        string        `json:"location" bson:"location"`
	SpecialNotes    string        `json:"special_notes,omitempty" bson:"special_notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

func (s *Session) AvailableSlots() int {
	return max(0, s.MaxCapacity-s.CurrentBookings)
}

// IsBookable reports whether the session accepts new bookings at the given
// instant. lockout is the pre-start window during which booking closes.
func (s *Session) IsBookable(now time.Time, lockout time.Duration) bool {
	return s.Status == SessionScheduled &&
		now.Before(s.StartTime.Add(-lockout)) &&
		s.AvailableSlots() > 0
}

func (s *Session) IsPast(now time.Time) bool {
	return !now.Before(s.StartTime)
}

// SessionFilter narrows session listings. ClassType and Instructor are
// case-insensitive substring matches, Date selects a single calendar day.
type SessionFilter struct {
	ClassType     string
	Instructor    string
	Date          *time.Time
	Difficulty    Difficulty
	AvailableOnly bool
}

// SessionDetails is the class-details view: the session itself plus live
// booking aggregates derived from the ledger.
type SessionDetails struct {
	Session           *Session        `json:"class"`
	ConfirmedBookings int64           `json:"confirmed_bookings"`
	WaitlistCount     int64           `json:"waitlist_count"`
	RecentBookings    []RecentBooking `json:"recent_bookings"`
}

type RecentBooking struct {
	ClientName string    `json:"client_name"`
	BookedAt   time.Time `json:"booking_time"`
}
