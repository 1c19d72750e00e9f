package entity

import "time"

// WorkflowEntry is an append-only record of an approve or reject decision
type WorkflowEntry struct {
	ID             int64     `json:"id"`
	ExpenseID      int64     `json:"expense_id"`
	Approver       string    `json:"approver"`
	Action         string    `json:"action"`
	PreviousStatus Status    `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	Comments       string    `json:"comments,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
