package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyjia/event-finance/internal/application/service"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxActor        = "actor"
	demoUserID      = "demo"
)

// requestIDMiddleware propagates or assigns a request ID
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// loggingMiddleware logs one line per request
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(ctxRequestID),
		)
	}
}

// authMiddleware resolves the actor from the bearer token. In demo mode a
// request without a token proceeds as an anonymous demo actor.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if s.authorizer.DemoMode() {
				c.Set(ctxActor, service.Actor{UserID: demoUserID})
				c.Next()
				return
			}
			abortUnauthorized(c, "missing bearer token")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "malformed authorization header")
			return
		}
		if s.tokens == nil {
			abortUnauthorized(c, "token authentication is not configured")
			return
		}

		claims, err := s.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			s.logger.Error("Rejected bearer token", "error", err, "request_id", c.GetString(ctxRequestID))
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxActor, service.Actor{UserID: claims.Subject, Role: claims.Role})
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: msg})
}

func actorFrom(c *gin.Context) service.Actor {
	if v, ok := c.Get(ctxActor); ok {
		if actor, ok := v.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}
