package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetLineItem is one planned expenditure within an event.
// Variance is never stored; it is derived from the two costs.
type BudgetLineItem struct {
	ID            int64               `json:"id"`
	EventID       int64               `json:"event_id"`
	Category      Category            `json:"category"`
	Subcategory   string              `json:"subcategory,omitempty"`
	Description   string              `json:"description"`
	EstimatedCost decimal.NullDecimal `json:"estimated_cost"`
	ActualCost    decimal.NullDecimal `json:"actual_cost"`
	Status        Status              `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	AssignedUser  string              `json:"assigned_user,omitempty"`
	Vendor        string              `json:"vendor,omitempty"`
	StrategicGoal string              `json:"strategic_goal,omitempty"`
	Attachment    string              `json:"attachment,omitempty"`
	LastEditedBy  string              `json:"last_edited_by"`
	LastEditedAt  time.Time           `json:"last_edited_at"`
	CreatedAt     time.Time           `json:"created_at"`
}
