package model

import "time"

// NotificationCategory tags a notification for display.
type NotificationCategory string

const (
	NotifyBookingRequest NotificationCategory = "booking_request"
	NotifyBookingStatus  NotificationCategory = "booking_status"
	NotifySystem         NotificationCategory = "system"
	NotifyInfo           NotificationCategory = "info"
	NotifySuccess        NotificationCategory = "success"
	NotifyWarning        NotificationCategory = "warning"
	NotifyError          NotificationCategory = "error"
)

// Notification is a per-user inbox entry.  Once Read is true it never
// becomes false again.  TargetID optionally names the slot or booking the
// message is about.
type Notification struct {
	ID        string               `json:"id"`
	UserID    uint64               `json:"user_id"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Category  NotificationCategory `json:"category"`
	Read      bool                 `json:"read"`
	TargetID  *string              `json:"target_id,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}
