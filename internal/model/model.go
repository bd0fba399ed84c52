// Package model defines the core domain types for the personal calendar.
package model

import "time"

// Event represents a single calendar entry.
//
// Attendees is an ordered list of free-text names; there is no user entity
// to link them to. Timestamps travel as RFC 3339 strings on the wire.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Attendees   []string  `json:"attendees"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateEventRequest is the payload for creating a new event.
// Title, StartTime and EndTime are required; everything else is optional.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Attendees   []string  `json:"attendees"`
}

// UpdateEventRequest is the payload for a partial update.
// A nil field leaves the stored value untouched.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Attendees   *[]string  `json:"attendees"`
}

// LoginRequest is the payload for POST /api/auth.
type LoginRequest struct {
	Password string `json:"password"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
