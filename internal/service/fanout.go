package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tv-ad-booking/internal/model"
)

// Notifier is what the ledger needs from the fan-out.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, title, message string, category model.NotificationCategory, targetID *string) (*model.Notification, error)
}

// Fanout appends notifications and manages their read flag.  It carries no
// business rules of its own.
type Fanout struct {
	store  NotificationStore
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

func NewFanout(store NotificationStore, now func() time.Time, newID func() string, logger *slog.Logger) *Fanout {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Fanout{store: store, now: now, newID: newID, logger: defaultLogger(logger)}
}

// Notify appends an unread notification for userID.
func (f *Fanout) Notify(ctx context.Context, userID uint64, title, message string, category model.NotificationCategory, targetID *string) (*model.Notification, error) {
	fe := fieldErrors{}
	if userID == 0 {
		fe.add("user_id", "is required")
	}
	if strings.TrimSpace(title) == "" {
		fe.add("title", "is required")
	}
	if category == "" {
		category = model.NotifyInfo
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	n := &model.Notification{
		ID:        f.newID(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Message:   message,
		Category:  category,
		TargetID:  targetID,
		CreatedAt: f.now().UTC(),
	}
	if err := f.store.Create(ctx, n); err != nil {
		return nil, storeErr(err)
	}
	serviceLogger(ctx, f.logger, "fanout", "notify").
		Debug("notification stored", "notification_id", n.ID, "user_id", userID, "category", string(category))
	return n, nil
}

// ListFor returns userID's notifications, newest first.
func (f *Fanout) ListFor(ctx context.Context, userID uint64) ([]model.Notification, error) {
	list, err := f.store.ListByUser(ctx, userID)
	return list, storeErr(err)
}

// MarkRead flags one notification as read.  Repeating the call is harmless;
// the flag is never cleared.
func (f *Fanout) MarkRead(ctx context.Context, userID uint64, notificationID string) (*model.Notification, error) {
	n, err := f.store.MarkRead(ctx, strings.TrimSpace(notificationID), userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return n, nil
}

// MarkAllRead flags every notification of userID and returns the inbox.
func (f *Fanout) MarkAllRead(ctx context.Context, userID uint64) ([]model.Notification, error) {
	list, err := f.store.MarkAllRead(ctx, userID)
	return list, storeErr(err)
}

// UnreadCount returns the number of unread notifications of userID.
func (f *Fanout) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	n, err := f.store.CountUnread(ctx, userID)
	return n, storeErr(err)
}
