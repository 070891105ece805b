package service

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "fitstudio/internal/bookings/errors"
	"fitstudio/internal/bookings/validator"
	catalogerrors "fitstudio/internal/catalog/errors"
	registryerrors "fitstudio/internal/registry/errors"
	"fitstudio/pkg/clock"
	"fitstudio/pkg/config"
	mongodb "fitstudio/pkg/db/mongo"
	apperrors "fitstudio/pkg/errors"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"
)

// --- Mocks ---

type mockSessionRepo struct {
	FindByIDFunc             func(ctx context.Context, id string) (*model.Session, error)
	IncrementIfAvailableFunc func(ctx context.Context, id string) (bool, error)
	DecrementFunc            func(ctx context.Context, id string) error
	decrements               int
}

func (m *mockSessionRepo) Insert(ctx context.Context, session *model.Session) error { return nil }
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockSessionRepo) Find(ctx context.Context, filter model.SessionFilter, now time.Time, limit int, offset int64) ([]*model.Session, error) {
	return nil, nil
}
func (m *mockSessionRepo) Count(ctx context.Context, filter model.SessionFilter, now time.Time) (int64, error) {
	return 0, nil
}
func (m *mockSessionRepo) IncrementIfAvailable(ctx context.Context, id string) (bool, error) {
	if m.IncrementIfAvailableFunc != nil {
		return m.IncrementIfAvailableFunc(ctx, id)
	}
	return true, nil
}
func (m *mockSessionRepo) Decrement(ctx context.Context, id string) error {
	m.decrements++
	if m.DecrementFunc != nil {
		return m.DecrementFunc(ctx, id)
	}
	return nil
}

type mockClientRepo struct {
	UpsertByEmailFunc func(ctx context.Context, name, email, phone string, now time.Time) (*model.Client, error)
	FindByEmailFunc   func(ctx context.Context, email string) (*model.Client, error)
	totalIncrements   int
}

func (m *mockClientRepo) UpsertByEmail(ctx context.Context, name, email, phone string, now time.Time) (*model.Client, error) {
	if m.UpsertByEmailFunc != nil {
		return m.UpsertByEmailFunc(ctx, name, email, phone, now)
	}
	return &model.Client{
		ID:             "client-1",
		Name:           name,
		Email:          email,
		EmailKey:       model.EmailKey(email),
		Phone:          phone,
		MembershipTier: model.DefaultMembershipTier,
		CreatedAt:      now,
	}, nil
}
func (m *mockClientRepo) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, registryerrors.ErrNotFound
}
func (m *mockClientRepo) FindByID(ctx context.Context, id string) (*model.Client, error) {
	return nil, registryerrors.ErrNotFound
}
func (m *mockClientRepo) IncrementTotalBookings(ctx context.Context, id string) error {
	m.totalIncrements++
	return nil
}

type mockBookingRepo struct {
	InsertFunc          func(ctx context.Context, booking *model.Booking) error
	FindByIDFunc        func(ctx context.Context, id string) (*model.Booking, error)
	ExistsActiveFunc    func(ctx context.Context, sessionID, clientID string) (bool, error)
	FindByClientFunc    func(ctx context.Context, clientID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	CancelConfirmedFunc func(ctx context.Context, id string, now time.Time, cutoff time.Duration) (bool, error)
	inserted            []*model.Booking
	transactions        int
	cancelNow           time.Time
	cancelCutoff        time.Duration
}

func (m *mockBookingRepo) Insert(ctx context.Context, booking *model.Booking) error {
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, booking); err != nil {
			return err
		}
	}
	m.inserted = append(m.inserted, booking)
	return nil
}
func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockBookingRepo) ExistsActive(ctx context.Context, sessionID, clientID string) (bool, error) {
	if m.ExistsActiveFunc != nil {
		return m.ExistsActiveFunc(ctx, sessionID, clientID)
	}
	return false, nil
}
func (m *mockBookingRepo) FindByClient(ctx context.Context, clientID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	if m.FindByClientFunc != nil {
		return m.FindByClientFunc(ctx, clientID, status, limit, offset)
	}
	return nil, nil
}
func (m *mockBookingRepo) CancelConfirmed(ctx context.Context, id string, now time.Time, cutoff time.Duration) (bool, error) {
	m.cancelNow = now
	m.cancelCutoff = cutoff
	if m.CancelConfirmedFunc != nil {
		return m.CancelConfirmedFunc(ctx, id, now, cutoff)
	}
	return true, nil
}
func (m *mockBookingRepo) CountBySessionAndStatus(ctx context.Context, sessionID string, status model.BookingStatus) (int64, error) {
	return 0, nil
}
func (m *mockBookingRepo) FindRecentBySession(ctx context.Context, sessionID string, status model.BookingStatus, limit int) ([]*model.Booking, error) {
	return nil, nil
}
func (m *mockBookingRepo) CountByClientAndStatus(ctx context.Context, clientID string, status model.BookingStatus) (int64, error) {
	switch status {
	case model.BookingConfirmed:
		return 2, nil
	case model.BookingCompleted:
		return 3, nil
	case model.BookingCancelled:
		return 1, nil
	}
	return 0, nil
}
func (m *mockBookingRepo) CountUpcomingByClient(ctx context.Context, clientID string, now time.Time) (int64, error) {
	return 2, nil
}
func (m *mockBookingRepo) FavoriteClassNames(ctx context.Context, clientID string, limit int) ([]string, error) {
	return []string{"Hatha Yoga", "HIIT Cardio"}, nil
}
func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	m.transactions++
	return fn(mongo.SessionContext(nil))
}

type mockNotifier struct {
	notified []*model.BookingConfirmation
	err      error
}

func (m *mockNotifier) NotifyBookingConfirmed(ctx context.Context, c *model.BookingConfirmation) error {
	m.notified = append(m.notified, c)
	return m.err
}

// --- Fixtures ---

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const testSessionID = "3f2c8a54-1b7d-4e9a-8c3b-2f1d0e9a8b7c"

func testConfig() *config.Config {
	return &config.Config{
		BookingLockout:       2 * time.Hour,
		CancellationCutoff:   4 * time.Hour,
		ReferenceMaxAttempts: 5,
		Log:                  logger.New(logger.Config{Output: io.Discard}),
	}
}

func bookableSession() *model.Session {
	return &model.Session{
		ID: testSessionID,
		ClassType: model.ClassTypeRef{
			ID:         "ct-1",
			Name:       "Hatha Yoga",
			Difficulty: model.DifficultyBeginner,
		},
		Instructor:      model.InstructorRef{ID: "in-1", Name: "Priya Sharma"},
		StartTime:       testNow.Add(24 * time.Hour),
		MaxCapacity:     20,
		CurrentBookings: 5,
		Status:          model.SessionScheduled,
		PriceCents:      80000,
		Location:        "Studio 1",
	}
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		ClassID:     testSessionID,
		ClientName:  "Jane Doe",
		ClientEmail: "jane@example.com",
	}
}

type fixture struct {
	sessions *mockSessionRepo
	clients  *mockClientRepo
	bookings *mockBookingRepo
	notifier *mockNotifier
	svc      BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	f := &fixture{
		sessions: &mockSessionRepo{
			FindByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
				if id == testSessionID {
					return bookableSession(), nil
				}
				return nil, catalogerrors.ErrNotFound
			},
		},
		clients:  &mockClientRepo{},
		bookings: &mockBookingRepo{},
		notifier: &mockNotifier{},
	}
	f.svc = NewBookingService(
		f.bookings,
		f.sessions,
		f.clients,
		validator.NewBookingValidator(cfg.Log),
		f.notifier,
		clock.Fixed(testNow),
		cfg,
	)
	return f
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !apperrors.IsCode(err, code) {
		t.Fatalf("expected %s error, got: %v", code, err)
	}
}

// --- Create ---

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	confirmation, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if confirmation.Status != model.BookingConfirmed {
		t.Errorf("status = %q, want confirmed", confirmation.Status)
	}
	if confirmation.ClassName != "Hatha Yoga" || confirmation.Instructor != "Priya Sharma" {
		t.Errorf("confirmation missing class snapshot: %+v", confirmation)
	}
	if matched := regexp.MustCompile(`^FB20250601[A-Z0-9]{6}$`).MatchString(confirmation.Reference); !matched {
		t.Errorf("reference %q not in expected format", confirmation.Reference)
	}

	if len(f.bookings.inserted) != 1 {
		t.Fatalf("expected 1 inserted booking, got %d", len(f.bookings.inserted))
	}
	booking := f.bookings.inserted[0]
	if !booking.Active {
		t.Error("new booking should be active")
	}
	if booking.Session.StartTime != bookableSession().StartTime {
		t.Error("booking should snapshot the session start time")
	}

	if f.clients.totalIncrements != 1 {
		t.Errorf("client counter incremented %d times, want 1", f.clients.totalIncrements)
	}
	if len(f.notifier.notified) != 1 {
		t.Errorf("notifier called %d times, want 1", len(f.notifier.notified))
	}
}

func TestCreateBookingValidationFailure(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.ClientEmail = "not-an-email"
	_, err := f.svc.Create(context.Background(), req)
	wantCode(t, err, apperrors.CodeValidation)
}

func TestCreateBookingClassNotFound(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.ClassID = "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"
	_, err := f.svc.Create(context.Background(), req)
	wantCode(t, err, apperrors.CodeNotFound)
}

func TestCreateBookingPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Session)
	}{
		{"session cancelled", func(s *model.Session) { s.Status = model.SessionCancelled }},
		{"session already started", func(s *model.Session) { s.StartTime = testNow.Add(-time.Hour) }},
		{"inside booking lockout", func(s *model.Session) { s.StartTime = testNow.Add(90 * time.Minute) }},
		{"fully booked", func(s *model.Session) { s.CurrentBookings = s.MaxCapacity }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.sessions.FindByIDFunc = func(ctx context.Context, id string) (*model.Session, error) {
				s := bookableSession()
				tt.mutate(s)
				return s, nil
			}

			_, err := f.svc.Create(context.Background(), validRequest())
			wantCode(t, err, apperrors.CodeConflict)

			if len(f.bookings.inserted) != 0 {
				t.Error("no booking should be written on a precondition failure")
			}
			if f.clients.totalIncrements != 0 {
				t.Error("client counter must not move on a precondition failure")
			}
		})
	}
}

func TestCreateBookingDuplicatePreCheck(t *testing.T) {
	f := newFixture(t)
	f.clients.FindByEmailFunc = func(ctx context.Context, email string) (*model.Client, error) {
		return &model.Client{ID: "client-1", Email: email}, nil
	}
	f.bookings.ExistsActiveFunc = func(ctx context.Context, sessionID, clientID string) (bool, error) {
		return true, nil
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	wantCode(t, err, apperrors.CodeDuplicateBooking)
}

func TestCreateBookingDuplicateIndexRace(t *testing.T) {
	// Pre-check passes but the partial unique index rejects the insert:
	// a concurrent request won the race.
	f := newFixture(t)
	f.bookings.InsertFunc = func(ctx context.Context, booking *model.Booking) error {
		return bookingerrors.ErrDuplicateBooking
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	wantCode(t, err, apperrors.CodeDuplicateBooking)
}

func TestCreateBookingCapacityRace(t *testing.T) {
	// The pre-check saw slots, but the conditional update found none left.
	f := newFixture(t)
	f.sessions.IncrementIfAvailableFunc = func(ctx context.Context, id string) (bool, error) {
		return false, nil
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	wantCode(t, err, apperrors.CodeConflict)

	if len(f.bookings.inserted) != 0 {
		t.Error("losing racer must not write a booking")
	}
}

func TestCreateBookingReferenceCollisionRetries(t *testing.T) {
	f := newFixture(t)
	attempts := 0
	f.bookings.InsertFunc = func(ctx context.Context, booking *model.Booking) error {
		attempts++
		if attempts <= 2 {
			return bookingerrors.ErrDuplicateReference
		}
		return nil
	}

	confirmation, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("insert attempted %d times, want 3", attempts)
	}
	if confirmation.Reference == "" {
		t.Error("confirmation missing reference")
	}
	// A collision aborts the whole transaction, so each attempt must be its
	// own atomic unit rather than a bare re-insert inside the first one.
	if f.bookings.transactions != 3 {
		t.Errorf("ran %d transactions, want one per attempt (3)", f.bookings.transactions)
	}
	if f.clients.totalIncrements != 1 {
		t.Errorf("client counter incremented %d times, want 1 (losing attempts roll back)", f.clients.totalIncrements)
	}
}

func TestCreateBookingReferenceExhausted(t *testing.T) {
	f := newFixture(t)
	f.bookings.InsertFunc = func(ctx context.Context, booking *model.Booking) error {
		return bookingerrors.ErrDuplicateReference
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	wantCode(t, err, apperrors.CodeInternal)

	if f.bookings.transactions != 5 {
		t.Errorf("ran %d transactions, want the full attempt budget (5)", f.bookings.transactions)
	}
}

func TestCreateBookingNotifierFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = context.DeadlineExceeded

	confirmation, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("booking must stand when notification fails: %v", err)
	}
	if confirmation == nil {
		t.Fatal("expected confirmation despite notifier failure")
	}
}

// --- Cancel ---

const testBookingID = "7e1d4c3b-2a9f-4b8e-9c7d-6f5e4d3c2b1a"

func confirmedBooking(startsIn time.Duration) *model.Booking {
	return &model.Booking{
		ID:        testBookingID,
		SessionID: testSessionID,
		ClientID:  "client-1",
		Status:    model.BookingConfirmed,
		Active:    true,
		Session: model.SessionSnapshot{
			ClassName: "Hatha Yoga",
			StartTime: testNow.Add(startsIn),
		},
	}
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	f.bookings.FindByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return confirmedBooking(5 * time.Hour), nil
	}

	booking, err := f.svc.Cancel(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if booking.Status != model.BookingCancelled {
		t.Errorf("status = %q, want cancelled", booking.Status)
	}
	if booking.Active {
		t.Error("cancelled booking must not be active")
	}
	if f.sessions.decrements != 1 {
		t.Errorf("session counter decremented %d times, want 1", f.sessions.decrements)
	}
	// The lifetime counter records bookings made, not bookings kept.
	if f.clients.totalIncrements != 0 {
		t.Error("cancellation must not touch the client's total_bookings counter")
	}
	// The conditional update re-asserts the deadline, so a cancel racing the
	// cutoff cannot commit on a stale pre-check.
	if f.bookings.cancelNow != testNow || f.bookings.cancelCutoff != 4*time.Hour {
		t.Errorf("cancel write carried now=%v cutoff=%v, want the deadline guard", f.bookings.cancelNow, f.bookings.cancelCutoff)
	}
}

func TestCancelBookingPastDeadline(t *testing.T) {
	f := newFixture(t)
	f.bookings.FindByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return confirmedBooking(3 * time.Hour), nil
	}

	_, err := f.svc.Cancel(context.Background(), testBookingID)
	wantCode(t, err, apperrors.CodeConflict)

	if f.sessions.decrements != 0 {
		t.Error("no slot may be released past the deadline")
	}
}

func TestCancelBookingAlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	f.bookings.FindByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		b := confirmedBooking(5 * time.Hour)
		b.Status = model.BookingCancelled
		b.Active = false
		return b, nil
	}

	_, err := f.svc.Cancel(context.Background(), testBookingID)
	wantCode(t, err, apperrors.CodeConflict)
}

func TestCancelBookingLostRace(t *testing.T) {
	// Read saw a confirmed booking, but the conditional update matched
	// nothing: another cancellation committed first, or the deadline passed
	// between the pre-check and the write.
	f := newFixture(t)
	f.bookings.FindByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return confirmedBooking(5 * time.Hour), nil
	}
	f.bookings.CancelConfirmedFunc = func(ctx context.Context, id string, now time.Time, cutoff time.Duration) (bool, error) {
		return false, nil
	}

	_, err := f.svc.Cancel(context.Background(), testBookingID)
	wantCode(t, err, apperrors.CodeConflict)

	if f.sessions.decrements != 0 {
		t.Error("slot must not be released when the status flip matched nothing")
	}
}

func TestCancelBookingNotFound(t *testing.T) {
	f := newFixture(t)
	f.bookings.FindByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return nil, bookingerrors.ErrNotFound
	}

	_, err := f.svc.Cancel(context.Background(), testBookingID)
	wantCode(t, err, apperrors.CodeNotFound)
}

func TestCancelBookingInvalidID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cancel(context.Background(), "not-a-uuid")
	wantCode(t, err, apperrors.CodeInvalidInput)
}

// --- ListByClient ---

func TestListByClientUnknownEmail(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.ListByClient(context.Background(), "stranger@example.com", "", 20, 0)
	if err != nil {
		t.Fatalf("unknown email must not be an error: %v", err)
	}
	if len(result.Bookings) != 0 {
		t.Errorf("expected empty history, got %d bookings", len(result.Bookings))
	}
	if result.ClientInfo != nil {
		t.Error("no client info for an unknown email")
	}
}

func TestListByClient(t *testing.T) {
	f := newFixture(t)
	f.clients.FindByEmailFunc = func(ctx context.Context, email string) (*model.Client, error) {
		return &model.Client{
			ID:             "client-1",
			Name:           "Jane Doe",
			Email:          email,
			TotalBookings:  6,
			MembershipTier: "premium",
			CreatedAt:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		}, nil
	}
	f.bookings.FindByClientFunc = func(ctx context.Context, clientID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
		return []*model.Booking{confirmedBooking(5 * time.Hour)}, nil
	}

	result, err := f.svc.ListByClient(context.Background(), "jane@example.com", "", 20, 0)
	if err != nil {
		t.Fatalf("ListByClient failed: %v", err)
	}
	if len(result.Bookings) != 1 {
		t.Fatalf("got %d bookings, want 1", len(result.Bookings))
	}

	stats := result.Statistics
	if stats == nil {
		t.Fatal("expected statistics")
	}
	if stats.TotalBookings != 6 {
		t.Errorf("total = %d, want 6 (lifetime counter, not current)", stats.TotalBookings)
	}
	if stats.ConfirmedBookings != 2 || stats.CompletedBookings != 3 || stats.CancelledBookings != 1 {
		t.Errorf("unexpected status counts: %+v", stats)
	}
	if stats.UpcomingBookings != 2 {
		t.Errorf("upcoming = %d, want 2", stats.UpcomingBookings)
	}
	if stats.MemberSince != "2024-01-15" {
		t.Errorf("member since = %q", stats.MemberSince)
	}
	if len(stats.FavoriteClassTypes) != 2 {
		t.Errorf("favorites = %v", stats.FavoriteClassTypes)
	}
}

func TestListByClientInvalidStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListByClient(context.Background(), "jane@example.com", "bogus", 20, 0)
	wantCode(t, err, apperrors.CodeInvalidInput)
}
