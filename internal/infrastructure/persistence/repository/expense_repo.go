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

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{db: db, logger: logger}
}

const expenseColumns = `id, event_id, category, title, amount, description, vendor, status, created_by, created_at, updated_at`

// Create inserts an expense and sets its ID
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	query := `
		INSERT INTO expenses (
			event_id, category, title, amount, description, vendor,
			status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		expense.EventID,
		string(expense.Category),
		expense.Title,
		expense.Amount.String(),
		expense.Description,
		expense.Vendor,
		string(expense.Status),
		expense.CreatedBy,
		expense.CreatedAt.UTC(),
		expense.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Int64("event_id", expense.EventID), zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	expense.ID = id
	return nil
}

// GetByID returns the expense with its workflow trail, or nil, nil
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	exec := getExecutor(ctx, r.db)
	expense, err := scanExpense(exec.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	workflow, err := listWorkflow(ctx, exec, id)
	if err != nil {
		r.logger.Error("Failed to load expense workflow", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to load expense workflow: %w", err)
	}
	expense.Workflow = workflow
	return expense, nil
}

// ListByEvent returns the event's expenses in insertion order, without workflow
func (r *ExpenseRepository) ListByEvent(ctx context.Context, eventID int64) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE event_id = ? ORDER BY id ASC`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Int64("event_id", eventID), zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*entity.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Update overwrites the descriptive columns. Status is only changed through
// TransitionStatus.
func (r *ExpenseRepository) Update(ctx context.Context, expense *entity.Expense) error {
	query := `
		UPDATE expenses SET
			category = ?, title = ?, amount = ?, description = ?, vendor = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		string(expense.Category),
		expense.Title,
		expense.Amount.String(),
		expense.Description,
		expense.Vendor,
		expense.UpdatedAt.UTC(),
		expense.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.Int64("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %d: %w", expense.ID, port.ErrNotFound)
	}
	return nil
}

// TransitionStatus is a compare-and-set on the status column
func (r *ExpenseRepository) TransitionStatus(ctx context.Context, id int64, from, to entity.Status, at time.Time) (bool, error) {
	query := `UPDATE expenses SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, string(to), at.UTC(), id, string(from))
	if err != nil {
		r.logger.Error("Failed to transition expense status",
			zap.Int64("id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
		return false, fmt.Errorf("failed to transition expense status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

func scanExpense(s scanner) (*entity.Expense, error) {
	var expense entity.Expense
	var category, status string

	err := s.Scan(
		&expense.ID,
		&expense.EventID,
		&category,
		&expense.Title,
		&expense.Amount,
		&expense.Description,
		&expense.Vendor,
		&status,
		&expense.CreatedBy,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	expense.Category = entity.Category(category)
	expense.Status = entity.Status(status)
	return &expense, nil
}

var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
