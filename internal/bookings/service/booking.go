package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "fitstudio/internal/bookings/errors"
	"fitstudio/internal/bookings/repository"
	"fitstudio/internal/bookings/validator"
	catalogerrors "fitstudio/internal/catalog/errors"
	catalogrepo "fitstudio/internal/catalog/repository"
	"fitstudio/internal/notify"
	registryerrors "fitstudio/internal/registry/errors"
	registryrepo "fitstudio/internal/registry/repository"
	"fitstudio/pkg/clock"
	"fitstudio/pkg/config"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/model"
	"fitstudio/pkg/reference"
)

// ClientBookings is the booking-history view for one client.
type ClientBookings struct {
	Bookings   []*model.Booking   `json:"bookings"`
	ClientInfo *model.Client      `json:"client_info,omitempty"`
	Statistics *model.ClientStats `json:"statistics,omitempty"`
}

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error)
	Cancel(ctx context.Context, bookingID string) (*model.Booking, error)
	ListByClient(ctx context.Context, email string, status model.BookingStatus, limit int, offset int64) (*ClientBookings, error)
}

type bookingService struct {
	bookings  repository.BookingRepository
	sessions  catalogrepo.SessionRepository
	clients   registryrepo.ClientRepository
	validator *validator.BookingValidator
	notifier  notify.Notifier
	clk       clock.Clock
	cfg       *config.Config
}

func NewBookingService(
	bookings repository.BookingRepository,
	sessions catalogrepo.SessionRepository,
	clients registryrepo.ClientRepository,
	v *validator.BookingValidator,
	notifier notify.Notifier,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		bookings:  bookings,
		sessions:  sessions,
		clients:   clients,
		validator: v,
		notifier:  notifier,
		clk:       clk,
		cfg:       cfg,
	}
}

// Create books one slot on a session. Preconditions are checked up front for
// fast, precise rejections; the transaction re-asserts every one of them
// through conditional writes, so racing requests cannot oversell the session
// or double-book the client.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, apperrors.Validation("Booking request validation failed", validationErrs.Fields())
		}
		return nil, apperrors.Internal("Failed to validate booking request", err)
	}

	session, err := s.sessions.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Class", req.ClassID)
		}
		return nil, apperrors.Internal("Failed to retrieve class", err)
	}

	now := s.clk.Now()
	if err := s.checkBookable(session, now); err != nil {
		return nil, err
	}

	// Advisory duplicate pre-check for a clean error message; the partial
	// unique index inside the transaction is the authority.
	if existing, err := s.clients.FindByEmail(ctx, req.ClientEmail); err == nil {
		dup, err := s.bookings.ExistsActive(ctx, session.ID, existing.ID)
		if err != nil {
			return nil, apperrors.Internal("Failed to check existing bookings", err)
		}
		if dup {
			return nil, apperrors.DuplicateBooking("You already have an active booking for this class")
		}
	}

	// The unique reference index is only checked by the insert itself, and a
	// collision aborts the whole server-side transaction. Each attempt
	// therefore re-runs the full atomic unit with a fresh reference; the
	// client upsert and slot claim of a losing attempt roll back with it.
	var booking *model.Booking
	var client *model.Client
	for attempt := 0; attempt < s.cfg.ReferenceMaxAttempts; attempt++ {
		ref, err := reference.New(now)
		if err != nil {
			return nil, apperrors.Internal("Failed to generate booking reference", err)
		}

		booking, client, err = s.bookOnce(ctx, session, req, ref, now)
		if err == nil {
			break
		}
		if errors.Is(err, bookingerrors.ErrDuplicateReference) {
			s.cfg.Log.Warn("Booking reference collision, regenerating",
				"reference", ref,
				"attempt", attempt+1,
			)
			continue
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}
	if booking == nil {
		return nil, apperrors.Internal("Failed to create booking", bookingerrors.ErrReferenceExhausted)
	}

	confirmation := &model.BookingConfirmation{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		ClassName:   booking.Session.ClassName,
		Instructor:  booking.Session.Instructor,
		StartTime:   booking.Session.StartTime,
		Location:    booking.Session.Location,
		PriceCents:  booking.Session.PriceCents,
		Status:      booking.Status,
		ClientName:  client.Name,
		ClientEmail: client.Email,
	}

	// Post-commit only. The booking stands whether or not the notification
	// goes out.
	if err := s.notifier.NotifyBookingConfirmed(ctx, confirmation); err != nil {
		s.cfg.Log.Error("Failed to dispatch booking confirmation",
			"booking_id", booking.ID,
			"reference", booking.Reference,
			"error", err,
		)
	}

	return confirmation, nil
}

func (s *bookingService) checkBookable(session *model.Session, now time.Time) error {
	switch {
	case session.Status != model.SessionScheduled:
		return apperrors.Conflict("Class is not open for booking")
	case session.IsPast(now):
		return apperrors.Conflict("Class has already started")
	case !now.Before(session.StartTime.Add(-s.cfg.BookingLockout)):
		return apperrors.Conflict(fmt.Sprintf("Booking closes %s before class start", s.cfg.BookingLockout))
	case session.AvailableSlots() == 0:
		return apperrors.Conflict("Class is fully booked")
	}
	return nil
}

// bookOnce runs one booking attempt as a single transaction: register the
// client, claim a slot, insert the booking under the given reference and bump
// the lifetime counter. A reference collision surfaces as
// ErrDuplicateReference with every write rolled back, so the caller can
// retry with a new reference against a clean slate.
func (s *bookingService) bookOnce(ctx context.Context, session *model.Session, req *model.BookingRequest, ref string, now time.Time) (*model.Booking, *model.Client, error) {
	var booking *model.Booking
	var client *model.Client

	txnErr := s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		client, err = s.clients.UpsertByEmail(sessCtx, req.ClientName, req.ClientEmail, req.Phone, now)
		if err != nil {
			return apperrors.Internal("Failed to register client", err)
		}

		claimed, err := s.sessions.IncrementIfAvailable(sessCtx, session.ID)
		if err != nil {
			return apperrors.Internal("Failed to reserve class slot", err)
		}
		if !claimed {
			return apperrors.Conflict("Class is fully booked")
		}

		booking = &model.Booking{
			ID:             uuid.NewString(),
			SessionID:      session.ID,
			ClientID:       client.ID,
			ClientName:     client.Name,
			ClientEmailKey: client.EmailKey,
			Session: model.SessionSnapshot{
				ClassName:  session.ClassType.Name,
				Instructor: session.Instructor.Name,
				StartTime:  session.StartTime,
				Location:   session.Location,
				PriceCents: session.PriceCents,
			},
			Status:          model.BookingConfirmed,
			Active:          true,
			BookedAt:        now,
			Reference:       ref,
			SpecialRequests: req.SpecialRequests,
		}

		if err := s.bookings.Insert(sessCtx, booking); err != nil {
			if errors.Is(err, bookingerrors.ErrDuplicateBooking) {
				return apperrors.DuplicateBooking("You already have an active booking for this class")
			}
			// ErrDuplicateReference passes through raw for the retry loop.
			return err
		}

		if err := s.clients.IncrementTotalBookings(sessCtx, client.ID); err != nil {
			return apperrors.Internal("Failed to update client booking count", err)
		}
		return nil
	})
	if txnErr != nil {
		return nil, nil, txnErr
	}
	return booking, client, nil
}

// Cancel releases a confirmed booking before the cancellation cutoff. The
// client's lifetime booking counter is left untouched: it counts bookings
// made, not bookings kept.
func (s *bookingService) Cancel(ctx context.Context, bookingID string) (*model.Booking, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, apperrors.InvalidInput("Invalid booking ID format")
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	now := s.clk.Now()
	if !booking.CanCancel(now, s.cfg.CancellationCutoff) {
		if booking.Status != model.BookingConfirmed {
			return nil, apperrors.Conflict("Only confirmed bookings can be cancelled")
		}
		return nil, apperrors.Conflict(fmt.Sprintf("Cancellations close %s before class start", s.cfg.CancellationCutoff))
	}

	txnErr := s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		cancelled, err := s.bookings.CancelConfirmed(sessCtx, bookingID, now, s.cfg.CancellationCutoff)
		if err != nil {
			return apperrors.Internal("Failed to cancel booking", err)
		}
		if !cancelled {
			// Lost a race: a concurrent cancellation, or the deadline passed
			// between the pre-check and the write.
			return apperrors.Conflict("Booking can no longer be cancelled")
		}

		if err := s.sessions.Decrement(sessCtx, booking.SessionID); err != nil {
			return apperrors.Internal("Failed to release class slot", err)
		}
		return nil
	})
	if txnErr != nil {
		if apperrors.IsAppError(txnErr) {
			return nil, txnErr
		}
		return nil, apperrors.Internal("Failed to cancel booking", txnErr)
	}

	booking.Status = model.BookingCancelled
	booking.Active = false
	return booking, nil
}

// ListByClient returns the client's bookings, newest first. An unknown email
// is not an error: the history of a client we have never seen is empty.
func (s *bookingService) ListByClient(ctx context.Context, email string, status model.BookingStatus, limit int, offset int64) (*ClientBookings, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.InvalidInput("Invalid booking status: " + string(status))
	}

	client, err := s.clients.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, registryerrors.ErrNotFound) {
			return &ClientBookings{Bookings: []*model.Booking{}}, nil
		}
		return nil, apperrors.Internal("Failed to retrieve client", err)
	}

	bookings, err := s.bookings.FindByClient(ctx, client.ID, status, limit, offset)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	stats, err := s.clientStats(ctx, client)
	if err != nil {
		return nil, err
	}

	return &ClientBookings{
		Bookings:   bookings,
		ClientInfo: client,
		Statistics: stats,
	}, nil
}
