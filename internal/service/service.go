// Package service implements validation and orchestration between the HTTP
// handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"personalcal/internal/model"
)

// ErrInvalid marks request validation failures so handlers can map them to
// a 400 response.
var ErrInvalid = errors.New("invalid request")

// Repository is the persistence contract the service needs. Both the
// Postgres and the in-memory repository satisfy it.
type Repository interface {
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService orchestrates event operations.
type EventService struct {
	repo Repository
}

// NewEventService constructs an EventService.
func NewEventService(repo Repository) *EventService {
	return &EventService{repo: repo}
}

// CreateEvent validates the request and delegates to the repository.
// Start/end ordering is deliberately not checked; any ordering is accepted.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: startTime is required", ErrInvalid)
	}
	if req.EndTime.IsZero() {
		return nil, fmt.Errorf("%w: endTime is required", ErrInvalid)
	}
	return s.repo.Create(ctx, req)
}

// ListEvents returns every event, ordered by start time ascending.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.repo.List(ctx)
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalid)
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateEvent applies a partial update. Nil fields are left untouched; a
// provided title may not be blank.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalid)
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: title may not be blank", ErrInvalid)
		}
		req.Title = &trimmed
	}
	return s.repo.Update(ctx, id, req)
}

// DeleteEvent removes an event permanently. There is no soft delete.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalid)
	}
	return s.repo.Delete(ctx, id)
}
