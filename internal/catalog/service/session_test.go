package service

import (
	"context"
	"io"
	"testing"
	"time"

	catalogerrors "fitstudio/internal/catalog/errors"
	"fitstudio/pkg/clock"
	"fitstudio/pkg/config"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"
)

type mockSessionRepo struct {
	FindByIDFunc func(ctx context.Context, id string) (*model.Session, error)
	FindFunc     func(ctx context.Context, filter model.SessionFilter, now time.Time, limit int, offset int64) ([]*model.Session, error)
	CountFunc    func(ctx context.Context, filter model.SessionFilter, now time.Time) (int64, error)
}

func (m *mockSessionRepo) Insert(ctx context.Context, session *model.Session) error { return nil }
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockSessionRepo) Find(ctx context.Context, filter model.SessionFilter, now time.Time, limit int, offset int64) ([]*model.Session, error) {
	return m.FindFunc(ctx, filter, now, limit, offset)
}
func (m *mockSessionRepo) Count(ctx context.Context, filter model.SessionFilter, now time.Time) (int64, error) {
	return m.CountFunc(ctx, filter, now)
}
func (m *mockSessionRepo) IncrementIfAvailable(ctx context.Context, id string) (bool, error) {
	return false, nil
}
func (m *mockSessionRepo) Decrement(ctx context.Context, id string) error { return nil }

type mockBookingReader struct {
	confirmed  int64
	waitlisted int64
	recent     []*model.Booking
}

func (m *mockBookingReader) CountBySessionAndStatus(ctx context.Context, sessionID string, status model.BookingStatus) (int64, error) {
	if status == model.BookingConfirmed {
		return m.confirmed, nil
	}
	return m.waitlisted, nil
}
func (m *mockBookingReader) FindRecentBySession(ctx context.Context, sessionID string, status model.BookingStatus, limit int) ([]*model.Booking, error) {
	return m.recent, nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const testSessionID = "3f2c8a54-1b7d-4e9a-8c3b-2f1d0e9a8b7c"

func newService(repo *mockSessionRepo, bookings *mockBookingReader) SessionService {
	cfg := &config.Config{Log: logger.New(logger.Config{Output: io.Discard})}
	if bookings == nil {
		bookings = &mockBookingReader{}
	}
	return NewSessionService(repo, bookings, clock.Fixed(testNow), cfg)
}

func TestGetByIDInvalidFormat(t *testing.T) {
	svc := newService(&mockSessionRepo{}, nil)

	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input error, got: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := &mockSessionRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, catalogerrors.ErrNotFound
		},
	}
	svc := newService(repo, nil)

	_, err := svc.GetByID(context.Background(), testSessionID)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found error, got: %v", err)
	}
}

func TestListRunsFindAndCount(t *testing.T) {
	sessions := []*model.Session{
		{ID: testSessionID, Status: model.SessionScheduled, StartTime: testNow.Add(24 * time.Hour)},
	}
	repo := &mockSessionRepo{
		FindFunc: func(ctx context.Context, filter model.SessionFilter, now time.Time, limit int, offset int64) ([]*model.Session, error) {
			if now != testNow {
				t.Errorf("listing must use the injected clock, got %v", now)
			}
			return sessions, nil
		},
		CountFunc: func(ctx context.Context, filter model.SessionFilter, now time.Time) (int64, error) {
			return 42, nil
		},
	}
	svc := newService(repo, nil)

	got, count, err := svc.List(context.Background(), model.SessionFilter{}, 20, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if count != 42 {
		t.Errorf("count = %d, want 42", count)
	}
	if len(got) != 1 {
		t.Errorf("got %d sessions, want 1", len(got))
	}
}

func TestListRejectsUnknownDifficulty(t *testing.T) {
	svc := newService(&mockSessionRepo{}, nil)

	_, _, err := svc.List(context.Background(), model.SessionFilter{Difficulty: "expert"}, 20, 0)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input error, got: %v", err)
	}
}

func TestDetails(t *testing.T) {
	repo := &mockSessionRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: testSessionID, MaxCapacity: 20, CurrentBookings: 7}, nil
		},
	}
	bookings := &mockBookingReader{
		confirmed:  7,
		waitlisted: 2,
		recent: []*model.Booking{
			{ClientName: "Jane Doe", BookedAt: testNow.Add(-time.Hour)},
			{ClientName: "Rohit Singh", BookedAt: testNow.Add(-2 * time.Hour)},
		},
	}
	svc := newService(repo, bookings)

	details, err := svc.Details(context.Background(), testSessionID)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if details.ConfirmedBookings != 7 || details.WaitlistCount != 2 {
		t.Errorf("unexpected aggregates: %+v", details)
	}
	if len(details.RecentBookings) != 2 {
		t.Fatalf("got %d recent bookings, want 2", len(details.RecentBookings))
	}
	if details.RecentBookings[0].ClientName != "Jane Doe" {
		t.Errorf("recent bookings out of order: %+v", details.RecentBookings)
	}
}
