package service

import (
	"context"
	"time"

	"github.com/iliyamo/tv-ad-booking/internal/model"
	"github.com/iliyamo/tv-ad-booking/internal/repository"
)

// SlotStore is the persistence surface the inventory needs.
// *repository.SlotRepo is the production implementation.
type SlotStore interface {
	Create(ctx context.Context, s *model.Slot) error
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	ListByStatus(ctx context.Context, status model.SlotStatus) ([]model.Slot, error)
	ListAll(ctx context.Context) ([]model.Slot, error)
	CompareAndSetStatus(ctx context.Context, id string, to model.SlotStatus, at time.Time, from ...model.SlotStatus) (*model.Slot, error)
	UpdateDetails(ctx context.Context, s *model.Slot) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[model.SlotStatus]int64, error)
}

// BookingStore is the persistence surface the ledger needs.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByAdvertiser(ctx context.Context, advertiserID uint64) ([]model.Booking, error)
	ListByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	CompareAndSetStatus(ctx context.Context, id string, to model.BookingStatus, at time.Time, from model.BookingStatus) (*model.Booking, error)
	TotalsByStatus(ctx context.Context) (map[model.BookingStatus]repository.StatusTotals, error)
}

// NotificationStore is the persistence surface of the fan-out.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string, userID uint64) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uint64) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)
}

// ChannelStore backs channel management and slot channel lookups.
type ChannelStore interface {
	Create(ctx context.Context, ch *model.Channel) error
	GetByID(ctx context.Context, id string) (*model.Channel, error)
	List(ctx context.Context) ([]model.Channel, error)
}

// AdStore backs advertiser creatives.
type AdStore interface {
	Create(ctx context.Context, a *model.Ad) error
	GetByID(ctx context.Context, id string) (*model.Ad, error)
	ListByAdvertiser(ctx context.Context, advertiserID uint64) ([]model.Ad, error)
}

var (
	_ SlotStore         = (*repository.SlotRepo)(nil)
	_ BookingStore      = (*repository.BookingRepo)(nil)
	_ NotificationStore = (*repository.NotificationRepo)(nil)
	_ ChannelStore      = (*repository.ChannelRepo)(nil)
	_ AdStore           = (*repository.AdRepo)(nil)
)
