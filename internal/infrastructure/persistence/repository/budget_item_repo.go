package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/domain/entity"
)

// BudgetItemRepository implements port.BudgetItemRepository
type BudgetItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBudgetItemRepository creates a new budget item repository
func NewBudgetItemRepository(db *sql.DB, logger *zap.Logger) port.BudgetItemRepository {
	return &BudgetItemRepository{db: db, logger: logger}
}

const budgetItemColumns = `
	id, event_id, category, subcategory, description, estimated_cost, actual_cost,
	status, notes, assigned_user, vendor, strategic_goal, attachment,
	last_edited_by, last_edited_at, created_at`

// Create inserts a line item and sets its ID
func (r *BudgetItemRepository) Create(ctx context.Context, item *entity.BudgetLineItem) error {
	query := `
		INSERT INTO budget_items (
			event_id, category, subcategory, description, estimated_cost, actual_cost,
			status, notes, assigned_user, vendor, strategic_goal, attachment,
			last_edited_by, last_edited_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		item.EventID,
		string(item.Category),
		item.Subcategory,
		item.Description,
		nullDecimalArg(item.EstimatedCost),
		nullDecimalArg(item.ActualCost),
		string(item.Status),
		item.Notes,
		item.AssignedUser,
		item.Vendor,
		item.StrategicGoal,
		item.Attachment,
		item.LastEditedBy,
		item.LastEditedAt.UTC(),
		item.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create budget item", zap.Int64("event_id", item.EventID), zap.Error(err))
		return fmt.Errorf("failed to create budget item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

// GetByID returns nil, nil when the item does not exist
func (r *BudgetItemRepository) GetByID(ctx context.Context, id int64) (*entity.BudgetLineItem, error) {
	query := `SELECT ` + budgetItemColumns + ` FROM budget_items WHERE id = ?`

	item, err := scanBudgetItem(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get budget item", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get budget item: %w", err)
	}
	return item, nil
}

// ListByEvent returns the event's items in insertion order
func (r *BudgetItemRepository) ListByEvent(ctx context.Context, eventID int64) ([]*entity.BudgetLineItem, error) {
	query := `SELECT ` + budgetItemColumns + ` FROM budget_items WHERE event_id = ? ORDER BY id ASC`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		r.logger.Error("Failed to list budget items", zap.Int64("event_id", eventID), zap.Error(err))
		return nil, fmt.Errorf("failed to list budget items: %w", err)
	}
	defer rows.Close()

	items := []*entity.BudgetLineItem{}
	for rows.Next() {
		item, err := scanBudgetItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update overwrites every editable column
func (r *BudgetItemRepository) Update(ctx context.Context, item *entity.BudgetLineItem) error {
	query := `
		UPDATE budget_items SET
			category = ?, subcategory = ?, description = ?,
			estimated_cost = ?, actual_cost = ?, status = ?,
			notes = ?, assigned_user = ?, vendor = ?, strategic_goal = ?, attachment = ?,
			last_edited_by = ?, last_edited_at = ?
		WHERE id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		string(item.Category),
		item.Subcategory,
		item.Description,
		nullDecimalArg(item.EstimatedCost),
		nullDecimalArg(item.ActualCost),
		string(item.Status),
		item.Notes,
		item.AssignedUser,
		item.Vendor,
		item.StrategicGoal,
		item.Attachment,
		item.LastEditedBy,
		item.LastEditedAt.UTC(),
		item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update budget item", zap.Int64("id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to update budget item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("budget item %d: %w", item.ID, port.ErrNotFound)
	}
	return nil
}

// Delete hard-deletes the row. It returns false when nothing was removed.
func (r *BudgetItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM budget_items WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete budget item", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete budget item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanBudgetItem(s scanner) (*entity.BudgetLineItem, error) {
	var item entity.BudgetLineItem
	var category, status string

	err := s.Scan(
		&item.ID,
		&item.EventID,
		&category,
		&item.Subcategory,
		&item.Description,
		&item.EstimatedCost,
		&item.ActualCost,
		&status,
		&item.Notes,
		&item.AssignedUser,
		&item.Vendor,
		&item.StrategicGoal,
		&item.Attachment,
		&item.LastEditedBy,
		&item.LastEditedAt,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Category = entity.Category(category)
	item.Status = entity.Status(status)
	return &item, nil
}

var _ port.BudgetItemRepository = (*BudgetItemRepository)(nil)
