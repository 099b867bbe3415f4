package model

import "time"

// BookingStatus is the approval state of a booking request.
//
//	pending -> approved -> completed
//	pending -> rejected
//
// rejected and completed are terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
)

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingRejected || s == BookingCompleted
}

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected, BookingCompleted:
		return true
	}
	return false
}

// SlotSnapshot is a copy of the slot's display fields taken when the
// booking was submitted.  It is never refreshed, so it may drift from the
// live slot after an edit.
type SlotSnapshot struct {
	Title           string    `json:"title"`
	ChannelName     string    `json:"channel_name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int       `json:"duration_seconds"`
	PriceCents      int64     `json:"price_cents"`
}

// SnapshotOf copies the display fields of s.
func SnapshotOf(s Slot) SlotSnapshot {
	return SlotSnapshot{
		Title:           s.Title,
		ChannelName:     s.ChannelName,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationSeconds: s.DurationSeconds,
		PriceCents:      s.PriceCents,
	}
}

// Booking mirrors a row in the `bookings` table.  The ad description is
// the advertiser's free text; AdID optionally points at an uploaded
// creative in the ads table.
type Booking struct {
	ID             string        `json:"id"`
	SlotID         string        `json:"slot_id"`
	AdvertiserID   uint64        `json:"advertiser_id"`
	AdvertiserName string        `json:"advertiser_name"`
	AdID           *string       `json:"ad_id,omitempty"`
	AdTitle        string        `json:"ad_title"`
	AdDescription  string        `json:"ad_description"`
	Status         BookingStatus `json:"status"`
	Slot           SlotSnapshot  `json:"slot"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
