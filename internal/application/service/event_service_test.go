package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/event-finance/internal/domain/entity"
	"github.com/garyjia/event-finance/internal/domain/event"
	"github.com/garyjia/event-finance/internal/domain/money"
)

func TestEventService_Create(t *testing.T) {
	d := &mockDispatcher{}
	svc := NewEventService(&mockEventRepo{}, newTestAuthorizer(), d, &mockLogger{})

	evt, err := svc.Create(context.Background(), Actor{UserID: "root", Role: "Admin"}, CreateEventInput{
		Name:   "Summit",
		Budget: money.Text("50000"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), evt.ID)
	assert.Equal(t, entity.EventStatusPlanning, evt.Status)
	assert.True(t, evt.Budget.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, []event.Type{event.TypeEventCreated}, d.types())
}

func TestEventService_CreateRequiresFullEdit(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, newTestAuthorizer(), nil, &mockLogger{})

	_, err := svc.Create(context.Background(), Actor{Role: "EventManager"}, CreateEventInput{Name: "Summit"})

	assert.True(t, IsAuthorization(err))
}

func TestEventService_CreateValidation(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, newTestAuthorizer(), nil, &mockLogger{})
	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)

	_, err := svc.Create(context.Background(), Actor{Role: "Admin"}, CreateEventInput{
		Budget:    money.Number(-5),
		StartDate: &start,
		EndDate:   &end,
	})

	require.True(t, IsValidation(err))
	verr := err.(*ValidationError)
	assert.True(t, verr.Has("name"))
	assert.True(t, verr.Has("budget"))
	assert.True(t, verr.Has("end_date"))
}

func TestEventService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		current entity.EventStatus
		next    string
		wantErr func(error) bool
	}{
		{name: "planning to active", current: entity.EventStatusPlanning, next: "Active"},
		{name: "active to completed", current: entity.EventStatusActive, next: "Completed"},
		{name: "same status is a no-op", current: entity.EventStatusActive, next: "Active"},
		{name: "completed is final", current: entity.EventStatusCompleted, next: "Active", wantErr: IsConflict},
		{name: "unknown status", current: entity.EventStatusPlanning, next: "Archived", wantErr: IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockEventRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.Event, error) {
					return &entity.Event{ID: id, Status: tt.current}, nil
				},
			}
			svc := NewEventService(repo, newTestAuthorizer(), &mockDispatcher{}, &mockLogger{})

			evt, err := svc.UpdateStatus(context.Background(), Actor{Role: "Admin"}, 3, tt.next)

			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entity.EventStatus(tt.next), evt.Status)
		})
	}
}

func TestEventService_ListClampsPaging(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &mockEventRepo{
		listFunc: func(ctx context.Context, limit, offset int) ([]*entity.Event, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	svc := NewEventService(repo, newTestAuthorizer(), nil, &mockLogger{})

	_, err := svc.List(context.Background(), 1000, -3)

	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 0, gotOffset)
}

func TestEventService_GetMissing(t *testing.T) {
	repo := &mockEventRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Event, error) {
			return nil, nil
		},
	}
	svc := NewEventService(repo, newTestAuthorizer(), nil, &mockLogger{})

	_, err := svc.Get(context.Background(), 8)

	assert.True(t, IsNotFound(err))
}
