package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an incurred cost that goes through approval
type Expense struct {
	ID          int64           `json:"id"`
	EventID     int64           `json:"event_id"`
	Category    Category        `json:"category"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Vendor      string          `json:"vendor,omitempty"`
	Status      Status          `json:"status"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Workflow is loaded for single-expense reads and left empty in lists
	Workflow []*WorkflowEntry `json:"workflow,omitempty"`
}
