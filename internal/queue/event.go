// Package queue defines message payloads exchanged over the message broker
// and the consumer that writes them to the booking audit log.
package queue

import "time"

// Booking event types; also used as AMQP message types.
const (
	EventBookingSubmitted = "booking.submitted"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventBookingCompleted = "booking.completed"
)

// BookingEvent is published after every booking transition.  It contains
// enough information for downstream consumers to log or notify without
// querying the primary database.
type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	SlotID         string    `json:"slot_id"`
	SlotTitle      string    `json:"slot_title"`
	ChannelName    string    `json:"channel_name"`
	AdvertiserID   uint64    `json:"advertiser_id"`
	AdvertiserName string    `json:"advertiser_name"`
	Status         string    `json:"status"`
	PriceCents     int64     `json:"price_cents"`
	OccurredAt     time.Time `json:"occurred_at"`
}
