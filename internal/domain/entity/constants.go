package entity

// Category classifies a budget line item or expense.
// The literal values are stored as-is and used as grouping keys.
type Category string

const (
	CategoryVenue         Category = "Venue"
	CategoryCatering      Category = "Catering"
	CategoryMarketing     Category = "Marketing"
	CategoryLogistics     Category = "Logistics"
	CategoryEntertainment Category = "Entertainment"
	CategoryStaffTravel   Category = "StaffTravel"
	CategoryMiscellaneous Category = "Miscellaneous"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryVenue,
	CategoryCatering,
	CategoryMarketing,
	CategoryLogistics,
	CategoryEntertainment,
	CategoryStaffTravel,
	CategoryMiscellaneous,
}

// IsValid reports whether c is one of the fixed categories
func (c Category) IsValid() bool {
	switch c {
	case CategoryVenue,
		CategoryCatering,
		CategoryMarketing,
		CategoryLogistics,
		CategoryEntertainment,
		CategoryStaffTravel,
		CategoryMiscellaneous:
		return true
	default:
		return false
	}
}

// String returns the stored representation
func (c Category) String() string {
	return string(c)
}

// Status is the approval status shared by budget items and expenses
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// IsTerminal reports whether no further approval transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) String() string {
	return string(s)
}

// EventStatus tracks where an event is in its own lifecycle
type EventStatus string

const (
	EventStatusPlanning  EventStatus = "Planning"
	EventStatusActive    EventStatus = "Active"
	EventStatusCompleted EventStatus = "Completed"
	EventStatusCancelled EventStatus = "Cancelled"
)

// IsValid reports whether s is a known event status
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusPlanning, EventStatusActive, EventStatusCompleted, EventStatusCancelled:
		return true
	default:
		return false
	}
}

// Workflow actions recorded on expense approval entries
const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)
