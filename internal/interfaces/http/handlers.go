package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/event-finance/internal/domain/money"
)

// healthCheck handles GET /health
func (s *Server) healthCheck(c *gin.Context) {
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			s.logger.Error("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: "unhealthy"})
			return
		}
	}
	respondOK(c, http.StatusOK, gin.H{"status": "healthy"})
}

type permissionsResponse struct {
	UserID   string      `json:"user_id"`
	Role     string      `json:"role"`
	DemoMode bool        `json:"demo_mode"`
	Can      interface{} `json:"permissions"`
}

// myPermissions handles GET /api/me/permissions
func (s *Server) myPermissions(c *gin.Context) {
	actor := actorFrom(c)
	respondOK(c, http.StatusOK, permissionsResponse{
		UserID:   actor.UserID,
		Role:     actor.Role,
		DemoMode: s.authorizer.DemoMode(),
		Can:      s.authorizer.Permissions(actor),
	})
}

// bindJSON decodes the request body, answering 400 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "invalid request body")
		return false
	}
	return true
}

// numeric converts a raw JSON field into a cost input. A missing field is
// nil, an explicit null is money.Absent, and numbers keep their literal text
// so no precision is lost through float64.
func numeric(raw json.RawMessage) money.NumericInput {
	if raw == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return money.Absent{}
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return money.Text(string(trimmed))
		}
		return money.Text(s)
	}
	return money.Text(string(trimmed))
}

// queryInt reads an integer query parameter, falling back to def
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
