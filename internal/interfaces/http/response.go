package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/event-finance/internal/application/service"
)

// Response is the envelope of every JSON response
type Response struct {
	Success bool                 `json:"success"`
	Data    interface{}          `json:"data,omitempty"`
	Error   string               `json:"error,omitempty"`
	Fields  []service.FieldError `json:"fields,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// respondError maps service errors onto status codes
func (s *Server) respondError(c *gin.Context, err error) {
	var (
		verr     *service.ValidationError
		authErr  *service.AuthorizationError
		notFound *service.NotFoundError
		conflict *service.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "validation failed", Fields: verr.Fields})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: authErr.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: conflict.Error()})
	default:
		s.logger.Error("Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString(ctxRequestID),
			"error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
	}
}

// parseID reads a positive int64 path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
