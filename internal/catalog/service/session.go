package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	catalogerrors "fitstudio/internal/catalog/errors"
	"fitstudio/internal/catalog/repository"
	"fitstudio/pkg/clock"
	"fitstudio/pkg/config"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/model"
)

// BookingReader is the slice of the booking ledger the catalog needs for the
// class-details view.
type BookingReader interface {
	CountBySessionAndStatus(ctx context.Context, sessionID string, status model.BookingStatus) (int64, error)
	FindRecentBySession(ctx context.Context, sessionID string, status model.BookingStatus, limit int) ([]*model.Booking, error)
}

type SessionService interface {
	GetByID(ctx context.Context, id string) (*model.Session, error)
	List(ctx context.Context, filter model.SessionFilter, limit int, offset int64) ([]*model.Session, int64, error)
	Details(ctx context.Context, id string) (*model.SessionDetails, error)
}

type sessionService struct {
	repo     repository.SessionRepository
	bookings BookingReader
	clk      clock.Clock
	cfg      *config.Config
}

func NewSessionService(repo repository.SessionRepository, bookings BookingReader, clk clock.Clock, cfg *config.Config) SessionService {
	return &sessionService{
		repo:     repo,
		bookings: bookings,
		clk:      clk,
		cfg:      cfg,
	}
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*model.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.InvalidInput("Invalid class ID format")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Class", id)
		}
		return nil, apperrors.Internal("Failed to retrieve class", err)
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, filter model.SessionFilter, limit int, offset int64) ([]*model.Session, int64, error) {
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, 0, apperrors.InvalidInput("Invalid difficulty level: " + string(filter.Difficulty))
	}

	now := s.clk.Now()

	var count int64
	var sessions []*model.Session
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter, now)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count sessions", "error", errCount)
			errCount = apperrors.Internal("Failed to count classes", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		sessions, errFind = s.repo.Find(ctx, filter, now, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list sessions", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve classes", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return sessions, count, nil
}

const recentBookingsLimit = 5

func (s *sessionService) Details(ctx context.Context, id string) (*model.SessionDetails, error) {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.bookings.CountBySessionAndStatus(ctx, id, model.BookingConfirmed)
	if err != nil {
		return nil, apperrors.Internal("Failed to count confirmed bookings", err)
	}
	waitlisted, err := s.bookings.CountBySessionAndStatus(ctx, id, model.BookingWaitlisted)
	if err != nil {
		return nil, apperrors.Internal("Failed to count waitlisted bookings", err)
	}
	recent, err := s.bookings.FindRecentBySession(ctx, id, model.BookingConfirmed, recentBookingsLimit)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve recent bookings", err)
	}

	details := &model.SessionDetails{
		Session:           session,
		ConfirmedBookings: confirmed,
		WaitlistCount:     waitlisted,
		RecentBookings:    make([]model.RecentBooking, 0, len(recent)),
	}
	for _, b := range recent {
		details.RecentBookings = append(details.RecentBookings, model.RecentBooking{
			ClientName: b.ClientName,
			BookedAt:   b.BookedAt,
		})
	}
	return details, nil
}
