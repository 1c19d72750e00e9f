package event

// Type identifies the type of domain event
type Type string

const (
	TypeEventCreated       Type = "event.created"
	TypeEventStatusChanged Type = "event.status_changed"
	TypeBudgetItemCreated  Type = "budget_item.created"
	TypeBudgetItemUpdated  Type = "budget_item.updated"
	TypeBudgetItemDeleted  Type = "budget_item.deleted"
	TypeExpenseCreated     Type = "expense.created"
	TypeExpenseUpdated     Type = "expense.updated"
	TypeExpenseApproved    Type = "expense.approved"
	TypeExpenseRejected    Type = "expense.rejected"
)

// AllTypes lists every event type, used to register catch-all subscribers
var AllTypes = []Type{
	TypeEventCreated,
	TypeEventStatusChanged,
	TypeBudgetItemCreated,
	TypeBudgetItemUpdated,
	TypeBudgetItemDeleted,
	TypeExpenseCreated,
	TypeExpenseUpdated,
	TypeExpenseApproved,
	TypeExpenseRejected,
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}
