package domain

import "time"

// Status is a point in time view of the supervisor
type Status struct {
	State          string    `json:"state"`
	ConnID         string    `json:"conn_id,omitempty"`
	ConnectedSince time.Time `json:"connected_since,omitempty"`
	ShortRetries   int       `json:"short_retries"`
	Decoded        int64     `json:"decoded"`
	Dropped        int64     `json:"dropped"`
}

// StatusPort reports the supervisor state
type StatusPort interface {
	Status() Status
}
