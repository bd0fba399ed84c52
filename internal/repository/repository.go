// Package repository implements persistence for calendar events.
// The Postgres implementation uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"personalcal/internal/model"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("not found")

const eventColumns = `id, title, description, location, start_time, end_time, attendees, created_at, updated_at`

// Postgres stores events in a single PostgreSQL table.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres repository.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Create inserts a new event and returns it with a generated UUID.
// Omitted attendees become an empty list, never null.
func (r *Postgres) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	now := time.Now().UTC()
	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Attendees:   req.Attendees,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if event.Attendees == nil {
		event.Attendees = []string{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.Title, event.Description, event.Location,
		event.StartTime, event.EndTime, event.Attendees,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// List returns all events ordered by start time ascending. The whole table
// is returned on every call; the scope is one person's calendar.
func (r *Postgres) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *Postgres) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	)
	if err := scanEvent(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// Update applies the provided fields inside a transaction. The row is read
// with SELECT ... FOR UPDATE so two concurrent partial updates cannot
// interleave their read-then-write cycles.
func (r *Postgres) Update(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var e model.Event
	row := tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id,
	)
	if err = scanEvent(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	applyUpdate(&e, req)
	e.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, location = $4,
		     start_time = $5, end_time = $6, attendees = $7, updated_at = $8
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Location,
		e.StartTime, e.EndTime, e.Attendees, e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &e, nil
}

// Delete removes an event. Deleting an unknown id reports ErrNotFound
// rather than succeeding silently.
func (r *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row, e *model.Event) error {
	return row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location,
		&e.StartTime, &e.EndTime, &e.Attendees,
		&e.CreatedAt, &e.UpdatedAt,
	)
}

// applyUpdate copies the non-nil fields of req onto e.
func applyUpdate(e *model.Event, req model.UpdateEventRequest) {
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.StartTime != nil {
		e.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		e.EndTime = req.EndTime.UTC()
	}
	if req.Attendees != nil {
		e.Attendees = append([]string{}, (*req.Attendees)...)
	}
}
