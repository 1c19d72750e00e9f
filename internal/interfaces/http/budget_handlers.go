package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/event-finance/internal/application/service"
)

type createBudgetItemRequest struct {
	Category      string          `json:"category"`
	Subcategory   string          `json:"subcategory"`
	Description   string          `json:"description"`
	EstimatedCost json.RawMessage `json:"estimated_cost"`
	ActualCost    json.RawMessage `json:"actual_cost"`
	Notes         string          `json:"notes"`
	AssignedUser  string          `json:"assigned_user"`
	Vendor        string          `json:"vendor"`
	StrategicGoal string          `json:"strategic_goal"`
	Attachment    string          `json:"attachment"`
}

type updateBudgetItemRequest struct {
	Category      *string         `json:"category"`
	Subcategory   *string         `json:"subcategory"`
	Description   *string         `json:"description"`
	EstimatedCost json.RawMessage `json:"estimated_cost"`
	ActualCost    json.RawMessage `json:"actual_cost"`
	Notes         *string         `json:"notes"`
	AssignedUser  *string         `json:"assigned_user"`
	Vendor        *string         `json:"vendor"`
	StrategicGoal *string         `json:"strategic_goal"`
	Attachment    *string         `json:"attachment"`
}

type confirmDeleteRequest struct {
	Token string `json:"token"`
}

func budgetItemIDs(c *gin.Context) (int64, int64, bool) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return 0, 0, false
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return 0, 0, false
	}
	return eventID, itemID, true
}

// listBudgetItems handles GET /api/events/:id/budget-items
func (s *Server) listBudgetItems(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}
	items, err := s.services.BudgetItems.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

// createBudgetItem handles POST /api/events/:id/budget-items
func (s *Server) createBudgetItem(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req createBudgetItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := s.services.BudgetItems.Create(c.Request.Context(), actorFrom(c), eventID, service.CreateBudgetItemInput{
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Description:   req.Description,
		EstimatedCost: numeric(req.EstimatedCost),
		ActualCost:    numeric(req.ActualCost),
		Notes:         req.Notes,
		AssignedUser:  req.AssignedUser,
		Vendor:        req.Vendor,
		StrategicGoal: req.StrategicGoal,
		Attachment:    req.Attachment,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, item)
}

// getBudgetItem handles GET /api/events/:id/budget-items/:itemId
func (s *Server) getBudgetItem(c *gin.Context) {
	eventID, itemID, ok := budgetItemIDs(c)
	if !ok {
		return
	}
	item, err := s.services.BudgetItems.Get(c.Request.Context(), eventID, itemID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

// updateBudgetItem handles PATCH /api/events/:id/budget-items/:itemId
func (s *Server) updateBudgetItem(c *gin.Context) {
	eventID, itemID, ok := budgetItemIDs(c)
	if !ok {
		return
	}
	var req updateBudgetItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := s.services.BudgetItems.Update(c.Request.Context(), actorFrom(c), eventID, itemID, service.UpdateBudgetItemInput{
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Description:   req.Description,
		EstimatedCost: numeric(req.EstimatedCost),
		ActualCost:    numeric(req.ActualCost),
		Notes:         req.Notes,
		AssignedUser:  req.AssignedUser,
		Vendor:        req.Vendor,
		StrategicGoal: req.StrategicGoal,
		Attachment:    req.Attachment,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

// requestBudgetItemDelete handles POST /api/events/:id/budget-items/:itemId/delete-request
func (s *Server) requestBudgetItemDelete(c *gin.Context) {
	eventID, itemID, ok := budgetItemIDs(c)
	if !ok {
		return
	}
	ticket, err := s.services.BudgetItems.RequestDelete(c.Request.Context(), actorFrom(c), eventID, itemID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusAccepted, ticket)
}

// confirmBudgetItemDelete handles DELETE /api/events/:id/budget-items/:itemId.
// The ticket token comes from the ?token= query or a JSON body.
func (s *Server) confirmBudgetItemDelete(c *gin.Context) {
	eventID, itemID, ok := budgetItemIDs(c)
	if !ok {
		return
	}

	token := c.Query("token")
	if token == "" && c.Request.ContentLength != 0 {
		var req confirmDeleteRequest
		if !bindJSON(c, &req) {
			return
		}
		token = req.Token
	}

	if err := s.services.BudgetItems.ConfirmDelete(c.Request.Context(), actorFrom(c), eventID, itemID, token); err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true, "id": itemID})
}
