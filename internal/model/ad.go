package model

import "time"

// Ad is an advertiser's creative.  Only the reference to the uploaded
// media is stored; the file lives elsewhere.
type Ad struct {
	ID             string    `json:"id"`
	AdvertiserID   uint64    `json:"advertiser_id"`
	AdvertiserName string    `json:"advertiser_name"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	MediaType      string    `json:"media_type"` // image | video
	MediaURL       string    `json:"media_url"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	Status         string    `json:"status"` // active | inactive | pending
	CreatedAt      time.Time `json:"created_at"`
}

const (
	AdMediaImage = "image"
	AdMediaVideo = "video"

	AdStatusActive   = "active"
	AdStatusInactive = "inactive"
	AdStatusPending  = "pending"
)
