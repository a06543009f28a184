package models

import "time"

// Channel is a TV/streaming channel record. Name and ChannelNumber are
// unique across the catalog; Logo holds an object-storage key.
type Channel struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	ChannelNumber int64     `json:"channel_number"`
	Category      []string  `json:"category"`
	Logo          string    `json:"logo,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ChannelPatch is a partial channel update. Nil fields are left untouched.
type ChannelPatch struct {
	Name          *string
	ChannelNumber *int64
	Category      []string
	Logo          *string
}
