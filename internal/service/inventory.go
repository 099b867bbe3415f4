package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tv-ad-booking/internal/model"
)

// Inventory owns the catalogue of advertising slots.  Status changes
// (MarkBooked, MarkAvailable, MarkExpired) are meant for the Ledger; HTTP
// handlers only create, edit, delete and read.
type Inventory struct {
	slots    SlotStore
	channels ChannelStore
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
}

// NewInventory wires the inventory.  channels may be nil, in which case slot
// channel names are taken verbatim from the input.
func NewInventory(slots SlotStore, channels ChannelStore, now func() time.Time, newID func() string, logger *slog.Logger) *Inventory {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Inventory{slots: slots, channels: channels, now: now, newID: newID, logger: defaultLogger(logger)}
}

// SlotInput is the editable part of a slot.
type SlotInput struct {
	Title            string
	Description      string
	ChannelID        string
	ChannelName      string
	StartTime        time.Time
	EndTime          time.Time
	DurationSeconds  int
	PriceCents       int64
	EstimatedViewers int64
}

func (in *SlotInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ChannelID = strings.TrimSpace(in.ChannelID)
	in.ChannelName = strings.TrimSpace(in.ChannelName)
	in.StartTime = in.StartTime.UTC()
	in.EndTime = in.EndTime.UTC()
}

func (in SlotInput) validate() fieldErrors {
	fe := fieldErrors{}
	if in.Title == "" {
		fe.add("title", "is required")
	}
	if in.ChannelID == "" && in.ChannelName == "" {
		fe.add("channel_name", "is required")
	}
	if in.StartTime.IsZero() {
		fe.add("start_time", "is required")
	}
	if in.EndTime.IsZero() {
		fe.add("end_time", "is required")
	}
	if !in.StartTime.IsZero() && !in.EndTime.IsZero() && !in.EndTime.After(in.StartTime) {
		fe.add("end_time", "must be after start_time")
	}
	if in.PriceCents <= 0 {
		fe.add("price_cents", "must be positive")
	}
	if in.DurationSeconds <= 0 {
		fe.add("duration_seconds", "must be positive")
	} else if in.EndTime.After(in.StartTime) && time.Duration(in.DurationSeconds)*time.Second > in.EndTime.Sub(in.StartTime) {
		fe.add("duration_seconds", "must fit within the broadcast window")
	}
	if in.EstimatedViewers < 0 {
		fe.add("estimated_viewers", "must not be negative")
	}
	return fe
}

// resolveChannel fills ChannelName from the channel record when a
// ChannelID is given.
func (s *Inventory) resolveChannel(ctx context.Context, in *SlotInput, fe fieldErrors) error {
	if in.ChannelID == "" || s.channels == nil {
		return nil
	}
	ch, err := s.channels.GetByID(ctx, in.ChannelID)
	if err != nil {
		if errors.Is(storeErr(err), ErrNotFound) {
			fe.add("channel_id", "unknown channel")
			return nil
		}
		return storeErr(err)
	}
	in.ChannelName = ch.Name
	delete(fe, "channel_name")
	return nil
}

// ListAvailable returns the slots advertisers can book, soonest first.
func (s *Inventory) ListAvailable(ctx context.Context) ([]model.Slot, error) {
	list, err := s.slots.ListByStatus(ctx, model.SlotAvailable)
	return list, storeErr(err)
}

// ListAll returns every slot regardless of status.
func (s *Inventory) ListAll(ctx context.Context) ([]model.Slot, error) {
	list, err := s.slots.ListAll(ctx)
	return list, storeErr(err)
}

// Get returns one slot or ErrNotFound.
func (s *Inventory) Get(ctx context.Context, id string) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, storeErr(err)
	}
	return slot, nil
}

// Create validates the input and stores a new available slot.
func (s *Inventory) Create(ctx context.Context, in SlotInput, createdBy uint64) (*model.Slot, error) {
	logger := serviceLogger(ctx, s.logger, "inventory", "create", "created_by", createdBy)
	in.normalize()
	fe := in.validate()
	if err := s.resolveChannel(ctx, &in, fe); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		logger.Info("slot rejected", "error_kind", ErrorKind(err))
		return nil, err
	}
	now := s.now().UTC()
	slot := &model.Slot{
		ID:               s.newID(),
		Title:            in.Title,
		Description:      in.Description,
		ChannelID:        in.ChannelID,
		ChannelName:      in.ChannelName,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		DurationSeconds:  in.DurationSeconds,
		PriceCents:       in.PriceCents,
		EstimatedViewers: in.EstimatedViewers,
		Status:           model.SlotAvailable,
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		err = storeErr(err)
		logger.Error("slot insert failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	logger.Info("slot created", "slot_id", slot.ID)
	return slot, nil
}

// Update edits the descriptive fields of an available slot.  Booked and
// expired slots are frozen (ErrConflict).
func (s *Inventory) Update(ctx context.Context, id string, in SlotInput) (*model.Slot, error) {
	logger := serviceLogger(ctx, s.logger, "inventory", "update", "slot_id", id)
	in.normalize()
	fe := in.validate()
	if err := s.resolveChannel(ctx, &in, fe); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *cur
	next.Title = in.Title
	next.Description = in.Description
	next.ChannelID = in.ChannelID
	next.ChannelName = in.ChannelName
	next.StartTime = in.StartTime
	next.EndTime = in.EndTime
	next.DurationSeconds = in.DurationSeconds
	next.PriceCents = in.PriceCents
	next.EstimatedViewers = in.EstimatedViewers
	next.UpdatedAt = s.now().UTC()
	if err := s.slots.UpdateDetails(ctx, &next); err != nil {
		err = storeErr(err)
		logger.Info("slot update refused", "error_kind", ErrorKind(err))
		return nil, err
	}
	return &next, nil
}

// Delete removes an available slot that no booking references.
func (s *Inventory) Delete(ctx context.Context, id string) error {
	err := storeErr(s.slots.Delete(ctx, strings.TrimSpace(id)))
	if err != nil {
		serviceLogger(ctx, s.logger, "inventory", "delete", "slot_id", id).
			Info("slot delete refused", "error_kind", ErrorKind(err))
	}
	return err
}

// MarkBooked flips available -> booked atomically.  ErrConflict means some
// other caller got there first.
func (s *Inventory) MarkBooked(ctx context.Context, id string) (*model.Slot, error) {
	slot, err := s.slots.CompareAndSetStatus(ctx, id, model.SlotBooked, s.now().UTC(), model.SlotAvailable)
	if err != nil {
		return nil, storeErr(err)
	}
	return slot, nil
}

// MarkAvailable returns a booked slot to the market.  Calling it on a slot
// that is already available succeeds without change.
func (s *Inventory) MarkAvailable(ctx context.Context, id string) (*model.Slot, error) {
	slot, err := s.slots.CompareAndSetStatus(ctx, id, model.SlotAvailable, s.now().UTC(), model.SlotBooked, model.SlotAvailable)
	if err != nil {
		return nil, storeErr(err)
	}
	return slot, nil
}

// MarkExpired retires a booked slot once its booking has aired.
func (s *Inventory) MarkExpired(ctx context.Context, id string) (*model.Slot, error) {
	slot, err := s.slots.CompareAndSetStatus(ctx, id, model.SlotExpired, s.now().UTC(), model.SlotBooked, model.SlotExpired)
	if err != nil {
		return nil, storeErr(err)
	}
	return slot, nil
}

// Counts returns how many slots are in each state.
func (s *Inventory) Counts(ctx context.Context) (map[model.SlotStatus]int64, error) {
	m, err := s.slots.CountByStatus(ctx)
	return m, storeErr(err)
}
