package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the datastore is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RootHandler serves the index, liveness and readiness endpoints
type RootHandler struct {
	db Pinger
}

// NewRootHandler creates a new RootHandler
func NewRootHandler(db Pinger) *RootHandler {
	return &RootHandler{db: db}
}

// Index handles GET /
func (h *RootHandler) Index(c *gin.Context) {
	c.String(http.StatusOK, "Hello, world!")
}

// Ping handles GET /ping
func (h *RootHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Server running successfully!"})
}

// Health handles GET /health
func (h *RootHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
