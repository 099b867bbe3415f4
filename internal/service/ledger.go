package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/tv-ad-booking/internal/model"
	q "github.com/iliyamo/tv-ad-booking/internal/queue"
)

var tracer = otel.Tracer("github.com/iliyamo/tv-ad-booking/internal/service")

// SlotLifecycle is the part of the inventory the ledger drives.
type SlotLifecycle interface {
	Get(ctx context.Context, id string) (*model.Slot, error)
	MarkBooked(ctx context.Context, id string) (*model.Slot, error)
	MarkAvailable(ctx context.Context, id string) (*model.Slot, error)
	MarkExpired(ctx context.Context, id string) (*model.Slot, error)
	Counts(ctx context.Context) (map[model.SlotStatus]int64, error)
}

// Ledger owns booking and slot state transitions.  It is the only writer
// of Slot.status and Booking.status.
type Ledger struct {
	slots         SlotLifecycle
	bookings      BookingStore
	notifier      Notifier
	events        EventPublisher
	adminFallback uint64
	now           func() time.Time
	newID         func() string
	logger        *slog.Logger
}

// LedgerDeps groups the collaborators of the ledger.  Notifier and Events
// may be nil.
type LedgerDeps struct {
	Slots    SlotLifecycle
	Bookings BookingStore
	Notifier Notifier
	Events   EventPublisher
	// AdminFallback receives booking requests for slots without a creator.
	AdminFallback uint64
	Now           func() time.Time
	NewID         func() string
	Logger        *slog.Logger
}

func NewLedger(d LedgerDeps) *Ledger {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Events == nil {
		d.Events = NopPublisher{}
	}
	return &Ledger{
		slots:         d.Slots,
		bookings:      d.Bookings,
		notifier:      d.Notifier,
		events:        d.Events,
		adminFallback: d.AdminFallback,
		now:           d.Now,
		newID:         d.NewID,
		logger:        defaultLogger(d.Logger),
	}
}

// SubmitBookingInput is an advertiser's booking request.  The advertiser
// identity comes from the authenticated session.
type SubmitBookingInput struct {
	SlotID         string
	AdvertiserID   uint64
	AdvertiserName string
	AdID           *string
	AdTitle        string
	AdDescription  string
}

func (in *SubmitBookingInput) normalize() fieldErrors {
	in.SlotID = strings.TrimSpace(in.SlotID)
	in.AdvertiserName = strings.TrimSpace(in.AdvertiserName)
	in.AdTitle = strings.TrimSpace(in.AdTitle)
	in.AdDescription = strings.TrimSpace(in.AdDescription)
	if in.AdID != nil {
		id := strings.TrimSpace(*in.AdID)
		if id == "" {
			in.AdID = nil
		} else {
			in.AdID = &id
		}
	}
	fe := fieldErrors{}
	if in.SlotID == "" {
		fe.add("slot_id", "is required")
	}
	if in.AdvertiserID == 0 {
		fe.add("advertiser_id", "is required")
	}
	if in.AdvertiserName == "" {
		fe.add("advertiser_name", "is required")
	}
	if in.AdTitle == "" {
		fe.add("ad_title", "is required")
	}
	return fe
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrorKind(err))
	}
	span.End()
}

// SubmitBooking reserves the slot and records a pending booking.
//
// The slot flip is a single conditional write; of N concurrent callers on
// the same available slot exactly one gets past MarkBooked, the rest get
// ErrSlotUnavailable.  If the booking insert fails after the flip, the slot
// is put back to available before the error is returned.
func (l *Ledger) SubmitBooking(ctx context.Context, in SubmitBookingInput) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "ledger.SubmitBooking",
		trace.WithAttributes(attribute.String("slot.id", in.SlotID), attribute.Int64("advertiser.id", int64(in.AdvertiserID))))
	defer func() { endSpan(span, err) }()
	logger := serviceLogger(ctx, l.logger, "ledger", "submit_booking", "slot_id", in.SlotID, "advertiser_id", in.AdvertiserID)

	if err := in.normalize().err(); err != nil {
		return nil, err
	}

	slot, err := l.slots.Get(ctx, in.SlotID)
	if err != nil {
		return nil, err
	}
	// Fast path only; the conditional write below is what decides the race.
	if slot.Status != model.SlotAvailable {
		logger.Info("slot not available", "status", string(slot.Status))
		return nil, ErrSlotUnavailable
	}

	booked, err := l.slots.MarkBooked(ctx, slot.ID)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			logger.Info("lost booking race")
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	now := l.now().UTC()
	b := &model.Booking{
		ID:             l.newID(),
		SlotID:         booked.ID,
		AdvertiserID:   in.AdvertiserID,
		AdvertiserName: in.AdvertiserName,
		AdID:           in.AdID,
		AdTitle:        in.AdTitle,
		AdDescription:  in.AdDescription,
		Status:         model.BookingPending,
		Slot:           model.SnapshotOf(*booked),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := l.bookings.Create(ctx, b); err != nil {
		err = storeErr(err)
		logger.Error("booking insert failed, releasing slot", "error", err, "error_kind", ErrorKind(err))
		if _, rerr := l.slots.MarkAvailable(context.WithoutCancel(ctx), booked.ID); rerr != nil {
			logger.Error("slot release failed", "error", rerr, "error_kind", ErrorKind(rerr))
			return nil, fmt.Errorf("create booking: %w (slot release failed: %v)", err, rerr)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	logger.Info("booking submitted", "booking_id", b.ID)

	recipient := booked.CreatedBy
	if recipient == 0 {
		recipient = l.adminFallback
	}
	target := booked.ID
	l.notify(ctx, logger, recipient, "New Booking Request",
		fmt.Sprintf("%s has requested to book the %q slot", b.AdvertiserName, booked.Title),
		model.NotifyBookingRequest, &target)
	l.publish(ctx, logger, q.EventBookingSubmitted, b)
	return b, nil
}

// Decide approves or rejects a pending booking.  Rejection returns the slot
// to the market; if that fails the booking is put back to pending so the
// decision can be retried.  Anything other than a pending booking yields
// ErrInvalidState and changes nothing.
func (l *Ledger) Decide(ctx context.Context, bookingID string, decision model.BookingStatus) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "ledger.Decide",
		trace.WithAttributes(attribute.String("booking.id", bookingID), attribute.String("decision", string(decision))))
	defer func() { endSpan(span, err) }()
	logger := serviceLogger(ctx, l.logger, "ledger", "decide", "booking_id", bookingID, "decision", string(decision))

	if decision != model.BookingApproved && decision != model.BookingRejected {
		return nil, &ValidationError{FieldErrors: map[string]string{"decision": "must be approved or rejected"}}
	}
	cur, err := l.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if cur.Status != model.BookingPending {
		return nil, ErrInvalidState
	}

	updated, err := l.bookings.CompareAndSetStatus(ctx, cur.ID, decision, l.now().UTC(), model.BookingPending)
	if err != nil {
		err = storeErr(err)
		if errors.Is(err, ErrConflict) {
			logger.Info("booking decided concurrently")
			return nil, ErrInvalidState
		}
		return nil, err
	}

	if decision == model.BookingRejected {
		if _, err := l.slots.MarkAvailable(ctx, updated.SlotID); err != nil {
			logger.Error("slot release after rejection failed, reopening booking", "slot_id", updated.SlotID, "error", err, "error_kind", ErrorKind(err))
			return nil, l.revert(ctx, logger, updated, model.BookingPending, fmt.Errorf("release slot %s: %w", updated.SlotID, err))
		}
	}
	logger.Info("booking decided", "slot_id", updated.SlotID)

	title, category, event := "Booking Approved", model.NotifySuccess, q.EventBookingApproved
	msg := fmt.Sprintf("Your booking for %q has been approved", updated.Slot.Title)
	if decision == model.BookingRejected {
		title, category, event = "Booking Rejected", model.NotifyWarning, q.EventBookingRejected
		msg = fmt.Sprintf("Your booking for %q has been rejected", updated.Slot.Title)
	}
	target := updated.ID
	l.notify(ctx, logger, updated.AdvertiserID, title, msg, category, &target)
	l.publish(ctx, logger, event, updated)
	return updated, nil
}

// Complete marks an approved booking as aired and retires its slot.  There
// is no scheduler; an administrator calls this explicitly.
func (l *Ledger) Complete(ctx context.Context, bookingID string) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "ledger.Complete", trace.WithAttributes(attribute.String("booking.id", bookingID)))
	defer func() { endSpan(span, err) }()
	logger := serviceLogger(ctx, l.logger, "ledger", "complete", "booking_id", bookingID)

	cur, err := l.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if cur.Status != model.BookingApproved {
		return nil, ErrInvalidState
	}
	updated, err := l.bookings.CompareAndSetStatus(ctx, cur.ID, model.BookingCompleted, l.now().UTC(), model.BookingApproved)
	if err != nil {
		err = storeErr(err)
		if errors.Is(err, ErrConflict) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	if _, err := l.slots.MarkExpired(ctx, updated.SlotID); err != nil {
		logger.Error("slot expiry failed, reopening booking", "slot_id", updated.SlotID, "error", err, "error_kind", ErrorKind(err))
		return nil, l.revert(ctx, logger, updated, model.BookingApproved, fmt.Errorf("expire slot %s: %w", updated.SlotID, err))
	}
	logger.Info("booking completed", "slot_id", updated.SlotID)

	target := updated.ID
	l.notify(ctx, logger, updated.AdvertiserID, "Booking Completed",
		fmt.Sprintf("Your ad in %q has aired", updated.Slot.Title), model.NotifyInfo, &target)
	l.publish(ctx, logger, q.EventBookingCompleted, updated)
	return updated, nil
}

// revert puts a booking back into the state it held before a transition
// whose slot half failed, so the pair stays consistent and the caller can
// retry.  It returns cause, annotated when the revert itself fails.
func (l *Ledger) revert(ctx context.Context, logger *slog.Logger, b *model.Booking, to model.BookingStatus, cause error) error {
	if _, err := l.bookings.CompareAndSetStatus(context.WithoutCancel(ctx), b.ID, to, l.now().UTC(), b.Status); err != nil {
		logger.Error("booking revert failed", "to", string(to), "error", err, "error_kind", ErrorKind(storeErr(err)))
		return fmt.Errorf("%w (booking revert to %s failed: %v)", cause, to, err)
	}
	return cause
}

// notify hands a message to the fan-out.  Errors are logged and dropped;
// the booking transition has already been stored.
func (l *Ledger) notify(ctx context.Context, logger *slog.Logger, userID uint64, title, msg string, category model.NotificationCategory, target *string) {
	if l.notifier == nil || userID == 0 {
		return
	}
	if _, err := l.notifier.Notify(ctx, userID, title, msg, category, target); err != nil {
		logger.Warn("notification dropped", "recipient", userID, "error", err, "error_kind", ErrorKind(err))
	}
}

func (l *Ledger) publish(ctx context.Context, logger *slog.Logger, eventType string, b *model.Booking) {
	ev := q.BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		SlotID:         b.SlotID,
		SlotTitle:      b.Slot.Title,
		ChannelName:    b.Slot.ChannelName,
		AdvertiserID:   b.AdvertiserID,
		AdvertiserName: b.AdvertiserName,
		Status:         string(b.Status),
		PriceCents:     b.Slot.PriceCents,
		OccurredAt:     b.UpdatedAt,
	}
	if err := l.events.Publish(ctx, ev); err != nil {
		logger.Warn("event publish failed", "event", eventType, "error", err)
	}
}

// Get returns one booking or ErrNotFound.
func (l *Ledger) Get(ctx context.Context, id string) (*model.Booking, error) {
	b, err := l.bookings.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, storeErr(err)
	}
	return b, nil
}

// ListByAdvertiser returns one advertiser's bookings, newest first.
func (l *Ledger) ListByAdvertiser(ctx context.Context, advertiserID uint64) ([]model.Booking, error) {
	list, err := l.bookings.ListByAdvertiser(ctx, advertiserID)
	return list, storeErr(err)
}

// ListAll returns every booking, newest first.
func (l *Ledger) ListAll(ctx context.Context) ([]model.Booking, error) {
	list, err := l.bookings.ListAll(ctx)
	return list, storeErr(err)
}

// ListByStatus returns bookings in one state, newest first.
func (l *Ledger) ListByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error) {
	if !status.Valid() {
		return nil, &ValidationError{FieldErrors: map[string]string{"status": "unknown booking status"}}
	}
	list, err := l.bookings.ListByStatus(ctx, status)
	return list, storeErr(err)
}

// Summary is the admin dashboard view of the ledger.
type Summary struct {
	Slots        map[model.SlotStatus]int64    `json:"slots"`
	Bookings     map[model.BookingStatus]int64 `json:"bookings"`
	RevenueCents int64                         `json:"revenue_cents"`
}

// Summary counts slots and bookings per state.  Revenue is the snapshot
// price of approved and completed bookings.
func (l *Ledger) Summary(ctx context.Context) (*Summary, error) {
	slots, err := l.slots.Counts(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := l.bookings.TotalsByStatus(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	out := &Summary{
		Slots:    map[model.SlotStatus]int64{model.SlotAvailable: 0, model.SlotBooked: 0, model.SlotExpired: 0},
		Bookings: map[model.BookingStatus]int64{model.BookingPending: 0, model.BookingApproved: 0, model.BookingRejected: 0, model.BookingCompleted: 0},
	}
	for st, n := range slots {
		out.Slots[st] = n
	}
	for st, t := range totals {
		out.Bookings[st] = t.Count
		if st == model.BookingApproved || st == model.BookingCompleted {
			out.RevenueCents += t.PriceCents
		}
	}
	return out, nil
}
