package model

import "time"

// Channel is a broadcaster slots are sold on.
type Channel struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	AverageViewership int64     `json:"average_viewership"`
	CreatedAt         time.Time `json:"created_at"`
}
