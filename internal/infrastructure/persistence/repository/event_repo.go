package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/domain/entity"
)

// EventRepository implements port.EventRepository
type EventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB, logger *zap.Logger) port.EventRepository {
	return &EventRepository{db: db, logger: logger}
}

const eventColumns = `id, name, description, budget, status, start_date, end_date, created_by, created_at, updated_at`

// Create inserts a new event and sets its ID
func (r *EventRepository) Create(ctx context.Context, evt *entity.Event) error {
	query := `
		INSERT INTO events (
			name, description, budget, status, start_date, end_date,
			created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		evt.Name,
		evt.Description,
		evt.Budget.String(),
		string(evt.Status),
		nullTimeArg(evt.StartDate),
		nullTimeArg(evt.EndDate),
		evt.CreatedBy,
		evt.CreatedAt.UTC(),
		evt.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create event", zap.String("name", evt.Name), zap.Error(err))
		return fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	evt.ID = id
	return nil
}

// GetByID returns nil, nil when the event does not exist
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

	evt, err := scanEvent(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get event", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return evt, nil
}

// List returns events newest first
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list events", zap.Error(err))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*entity.Event{}
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// UpdateStatus changes the lifecycle status of an event
func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status entity.EventStatus, at time.Time) error {
	query := `UPDATE events SET status = ?, updated_at = ? WHERE id = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, string(status), at.UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update event status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update event status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("event %d: %w", id, port.ErrNotFound)
	}
	return nil
}

func scanEvent(s scanner) (*entity.Event, error) {
	var evt entity.Event
	var status string
	var start, end sql.NullTime

	err := s.Scan(
		&evt.ID,
		&evt.Name,
		&evt.Description,
		&evt.Budget,
		&status,
		&start,
		&end,
		&evt.CreatedBy,
		&evt.CreatedAt,
		&evt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	evt.Status = entity.EventStatus(status)
	evt.StartDate = timePtr(start)
	evt.EndDate = timePtr(end)
	return &evt, nil
}

var _ port.EventRepository = (*EventRepository)(nil)
