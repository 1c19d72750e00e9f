package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/event-finance/internal/application/service"
)

type createEventRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Budget      json.RawMessage `json:"budget"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// listEvents handles GET /api/events
func (s *Server) listEvents(c *gin.Context) {
	events, err := s.services.Events.List(c.Request.Context(), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, events)
}

// createEvent handles POST /api/events
func (s *Server) createEvent(c *gin.Context) {
	var req createEventRequest
	if !bindJSON(c, &req) {
		return
	}

	evt, err := s.services.Events.Create(c.Request.Context(), actorFrom(c), service.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Budget:      numeric(req.Budget),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, evt)
}

// getEvent handles GET /api/events/:id
func (s *Server) getEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	evt, err := s.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, evt)
}

// updateEventStatus handles PATCH /api/events/:id/status
func (s *Server) updateEventStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	evt, err := s.services.Events.UpdateStatus(c.Request.Context(), actorFrom(c), id, req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, evt)
}

// eventSummary handles GET /api/events/:id/summary
func (s *Server) eventSummary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	summary, err := s.services.Summaries.EventSummary(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, summary)
}

// exportBudget handles GET /api/events/:id/budget/export
func (s *Server) exportBudget(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	file, err := s.services.Exports.Export(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
