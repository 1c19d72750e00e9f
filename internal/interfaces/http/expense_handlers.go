package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/event-finance/internal/application/service"
	"github.com/garyjia/event-finance/internal/domain/entity"
)

type createExpenseRequest struct {
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor"`
}

type updateExpenseRequest struct {
	Category    *string         `json:"category"`
	Title       *string         `json:"title"`
	Amount      json.RawMessage `json:"amount"`
	Description *string         `json:"description"`
	Vendor      *string         `json:"vendor"`
}

type decisionRequest struct {
	Comments string `json:"comments"`
}

// listExpenses handles GET /api/events/:id/expenses
func (s *Server) listExpenses(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}
	expenses, err := s.services.Expenses.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, expenses)
}

// createExpense handles POST /api/events/:id/expenses
func (s *Server) createExpense(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req createExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := s.services.Expenses.Create(c.Request.Context(), actorFrom(c), service.CreateExpenseInput{
		EventID:     eventID,
		Category:    req.Category,
		Title:       req.Title,
		Amount:      numeric(req.Amount),
		Description: req.Description,
		Vendor:      req.Vendor,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, expense)
}

func expenseIDs(c *gin.Context) (int64, int64, bool) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return 0, 0, false
	}
	id, ok := parseID(c, "expenseId")
	if !ok {
		return 0, 0, false
	}
	return eventID, id, true
}

// getExpense handles GET /api/events/:id/expenses/:expenseId
func (s *Server) getExpense(c *gin.Context) {
	eventID, id, ok := expenseIDs(c)
	if !ok {
		return
	}
	expense, err := s.services.Expenses.Get(c.Request.Context(), eventID, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, expense)
}

// updateExpense handles PATCH /api/events/:id/expenses/:expenseId
func (s *Server) updateExpense(c *gin.Context) {
	eventID, id, ok := expenseIDs(c)
	if !ok {
		return
	}
	var req updateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := s.services.Expenses.Update(c.Request.Context(), actorFrom(c), eventID, id, service.UpdateExpenseInput{
		Category:    req.Category,
		Title:       req.Title,
		Amount:      numeric(req.Amount),
		Description: req.Description,
		Vendor:      req.Vendor,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, expense)
}

// approveExpense handles POST /api/events/:id/expenses/:expenseId/approve
func (s *Server) approveExpense(c *gin.Context) {
	s.decideExpense(c, s.services.Expenses.Approve)
}

// rejectExpense handles POST /api/events/:id/expenses/:expenseId/reject
func (s *Server) rejectExpense(c *gin.Context) {
	s.decideExpense(c, s.services.Expenses.Reject)
}

type decideFunc func(ctx context.Context, actor service.Actor, eventID, id int64, comments string) (*entity.Expense, error)

func (s *Server) decideExpense(c *gin.Context, decide decideFunc) {
	eventID, id, ok := expenseIDs(c)
	if !ok {
		return
	}
	var req decisionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	expense, err := decide(c.Request.Context(), actorFrom(c), eventID, id, req.Comments)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, expense)
}

// expenseHistory handles GET /api/events/:id/expenses/:expenseId/history
func (s *Server) expenseHistory(c *gin.Context) {
	eventID, id, ok := expenseIDs(c)
	if !ok {
		return
	}
	history, err := s.services.Expenses.History(c.Request.Context(), eventID, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, history)
}
