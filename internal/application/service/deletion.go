package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DeleteTicket is the first half of a two-phase delete. The item is only
// removed when the same token is presented to ConfirmDelete before it expires.
type DeleteTicket struct {
	Token       string    `json:"token"`
	EventID     int64     `json:"event_id"`
	ItemID      int64     `json:"item_id"`
	RequestedBy string    `json:"requested_by"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DeletionRegistry keeps outstanding delete tickets in memory, one per item
type DeletionRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	tickets map[int64]DeleteTicket
	now     func() time.Time
}

// NewDeletionRegistry creates a registry whose tickets live for ttl
func NewDeletionRegistry(ttl time.Duration) *DeletionRegistry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DeletionRegistry{
		ttl:     ttl,
		tickets: make(map[int64]DeleteTicket),
		now:     time.Now,
	}
}

// Request returns the live ticket for the item, issuing a new one if needed
func (r *DeletionRegistry) Request(eventID, itemID int64, requestedBy string) DeleteTicket {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if t, ok := r.tickets[itemID]; ok && now.Before(t.ExpiresAt) && t.EventID == eventID {
		return t
	}

	t := DeleteTicket{
		Token:       uuid.NewString(),
		EventID:     eventID,
		ItemID:      itemID,
		RequestedBy: requestedBy,
		ExpiresAt:   now.Add(r.ttl),
	}
	r.tickets[itemID] = t
	return t
}

// Validate checks a token without consuming it
func (r *DeletionRegistry) Validate(eventID, itemID int64, token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[itemID]
	if !ok || token == "" || t.Token != token || t.EventID != eventID {
		return false
	}
	return r.now().Before(t.ExpiresAt)
}

// Discard drops any ticket for the item
func (r *DeletionRegistry) Discard(itemID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tickets, itemID)
}

// Sweep removes expired tickets and returns how many were dropped
func (r *DeletionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, t := range r.tickets {
		if !now.Before(t.ExpiresAt) {
			delete(r.tickets, id)
			removed++
		}
	}
	return removed
}

// Pending returns the number of outstanding tickets
func (r *DeletionRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}
