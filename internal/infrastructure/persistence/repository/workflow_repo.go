package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/domain/entity"
)

// WorkflowRepository implements port.WorkflowRepository. Entries are only
// ever appended.
type WorkflowRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sql.DB, logger *zap.Logger) port.WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// Append records one approval decision
func (r *WorkflowRepository) Append(ctx context.Context, entry *entity.WorkflowEntry) error {
	query := `
		INSERT INTO expense_workflow_entries (
			expense_id, approver, action, previous_status, new_status, comments, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entry.ExpenseID,
		entry.Approver,
		entry.Action,
		string(entry.PreviousStatus),
		string(entry.NewStatus),
		entry.Comments,
		entry.Timestamp.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to append workflow entry", zap.Int64("expense_id", entry.ExpenseID), zap.Error(err))
		return fmt.Errorf("failed to append workflow entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListByExpense returns entries oldest first
func (r *WorkflowRepository) ListByExpense(ctx context.Context, expenseID int64) ([]*entity.WorkflowEntry, error) {
	entries, err := listWorkflow(ctx, getExecutor(ctx, r.db), expenseID)
	if err != nil {
		r.logger.Error("Failed to list workflow entries", zap.Int64("expense_id", expenseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list workflow entries: %w", err)
	}
	return entries, nil
}

func listWorkflow(ctx context.Context, exec executor, expenseID int64) ([]*entity.WorkflowEntry, error) {
	query := `
		SELECT id, expense_id, approver, action, previous_status, new_status, comments, timestamp
		FROM expense_workflow_entries
		WHERE expense_id = ?
		ORDER BY id ASC
	`

	rows, err := exec.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*entity.WorkflowEntry{}
	for rows.Next() {
		var e entity.WorkflowEntry
		var prev, next string
		if err := rows.Scan(&e.ID, &e.ExpenseID, &e.Approver, &e.Action, &prev, &next, &e.Comments, &e.Timestamp); err != nil {
			return nil, err
		}
		e.PreviousStatus = entity.Status(prev)
		e.NewStatus = entity.Status(next)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

var _ port.WorkflowRepository = (*WorkflowRepository)(nil)
