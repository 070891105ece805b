package service

import (
	"context"
	"sync"

	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/model"
)

const favoriteClassesLimit = 3

// clientStats assembles the per-client booking summary. The status counts
// are independent queries and run concurrently.
func (s *bookingService) clientStats(ctx context.Context, client *model.Client) (*model.ClientStats, error) {
	now := s.clk.Now()

	var (
		confirmed, completed, cancelled, upcoming int64
		favorites                                 []string
		errConfirmed, errCompleted, errCancelled  error
		errUpcoming, errFavorites                 error
	)

	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		confirmed, errConfirmed = s.bookings.CountByClientAndStatus(ctx, client.ID, model.BookingConfirmed)
	}()
	go func() {
		defer wg.Done()
		completed, errCompleted = s.bookings.CountByClientAndStatus(ctx, client.ID, model.BookingCompleted)
	}()
	go func() {
		defer wg.Done()
		cancelled, errCancelled = s.bookings.CountByClientAndStatus(ctx, client.ID, model.BookingCancelled)
	}()
	go func() {
		defer wg.Done()
		upcoming, errUpcoming = s.bookings.CountUpcomingByClient(ctx, client.ID, now)
	}()
	go func() {
		defer wg.Done()
		favorites, errFavorites = s.bookings.FavoriteClassNames(ctx, client.ID, favoriteClassesLimit)
	}()

	wg.Wait()
	for _, err := range []error{errConfirmed, errCompleted, errCancelled, errUpcoming, errFavorites} {
		if err != nil {
			return nil, apperrors.Internal("Failed to compute booking statistics", err)
		}
	}

	if favorites == nil {
		favorites = []string{}
	}

	return &model.ClientStats{
		TotalBookings:      int64(client.TotalBookings),
		ConfirmedBookings:  confirmed,
		CompletedBookings:  completed,
		CancelledBookings:  cancelled,
		UpcomingBookings:   upcoming,
		FavoriteClassTypes: favorites,
		MemberSince:        client.CreatedAt.Format("2006-01-02"),
		MembershipTier:     client.MembershipTier,
	}, nil
}
