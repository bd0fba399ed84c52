package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"personalcal/internal/model"
)

// Memory is an in-memory event repository guarded by a RWMutex. It backs
// `serve --in-memory` for local use and substitutes for Postgres in tests.
// Contents are lost on restart.
type Memory struct {
	mu     sync.RWMutex
	events map[string]model.Event
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{events: make(map[string]model.Event)}
}

// Create stores a new event under a generated UUID.
func (m *Memory) Create(_ context.Context, req model.CreateEventRequest) (*model.Event, error) {
	now := time.Now().UTC()
	event := model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Attendees:   append([]string{}, req.Attendees...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.mu.Lock()
	m.events[event.ID] = event
	m.mu.Unlock()

	out := cloneEvent(event)
	return &out, nil
}

// List returns all events ordered by start time ascending.
func (m *Memory) List(_ context.Context) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []model.Event
	for _, e := range m.events {
		events = append(events, cloneEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

// GetByID returns a single event or ErrNotFound.
func (m *Memory) GetByID(_ context.Context, id string) (*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneEvent(e)
	return &out, nil
}

// Update applies the provided fields to an existing event.
func (m *Memory) Update(_ context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	applyUpdate(&e, req)
	e.UpdatedAt = time.Now().UTC()
	m.events[id] = e

	out := cloneEvent(e)
	return &out, nil
}

// Delete removes an event or reports ErrNotFound.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// cloneEvent copies an event so callers cannot mutate stored state through
// the shared attendees slice.
func cloneEvent(e model.Event) model.Event {
	e.Attendees = append([]string{}, e.Attendees...)
	return e
}
