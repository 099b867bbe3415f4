package model

import "time"

// SlotStatus is the lifecycle state of an advertising slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotExpired   SlotStatus = "expired"
)

// Valid reports whether s is one of the known slot states.
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotAvailable, SlotBooked, SlotExpired:
		return true
	}
	return false
}

// Slot mirrors a row in the `ad_slots` table.  A slot is a window of
// broadcast time on a channel offered for sale as a single unit.
//
// Fields:
//  ID               – uuid primary key.
//  ChannelID        – optional reference into channels; ChannelName is
//                     kept on the row so slots survive channel edits.
//  StartTime/EndTime – broadcast window, UTC.  EndTime is after StartTime.
//  DurationSeconds  – length of the ad the slot accepts; fits in the window.
//  PriceCents       – price in minor currency units, always positive.
//  EstimatedViewers – non-negative audience estimate.
//  CreatedBy        – administrator who created the slot (0 when unknown).
type Slot struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	ChannelID        string     `json:"channel_id,omitempty"`
	ChannelName      string     `json:"channel_name"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	DurationSeconds  int        `json:"duration_seconds"`
	PriceCents       int64      `json:"price_cents"`
	EstimatedViewers int64      `json:"estimated_viewers"`
	Status           SlotStatus `json:"status"`
	CreatedBy        uint64     `json:"created_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
