// sessions.go handles takeoff session lifecycle HTTP endpoints.
//
// POST /api/v1/sessions        — create a session, returns its bearer token
// GET  /api/v1/session         — snapshot of the authenticated session
// GET  /api/v1/admin/sessions  — list live sessions (admin)
// DELETE /api/v1/admin/sessions/:id — evict a session (admin)
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Babaeti777/takeoff-api/internal/middleware"
	"github.com/Babaeti777/takeoff-api/internal/models"
	"github.com/Babaeti777/takeoff-api/internal/takeoff"
)

// CreateSessionResponse includes the session token — shown only once at
// creation time; it is the client's only handle on the working set.
type CreateSessionResponse struct {
	Session takeoff.Snapshot `json:"session"`
	Token   string           `json:"token"`
}

// CreateSession starts a new takeoff session.
// POST /api/v1/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	// The body is optional — an empty POST gets default name and unit.
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Body must be JSON with optional 'name' and 'unit' fields",
			Code:    http.StatusBadRequest,
		})
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = h.DefaultUnit
	}
	session := h.Store.Create(req.Name, unit)

	token, err := middleware.GenerateSessionToken(session.ID(), h.JWTSecret)
	if err != nil {
		log.Printf("❌ Failed to generate session token: %v", err)
		h.Store.Delete(session.ID())
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token_error",
			Message: "Failed to create session token",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusCreated, CreateSessionResponse{
		Session: session.Snapshot(),
		Token:   token,
	})
}

// GetSession returns the full state of the authenticated session: drawings,
// measurements, active drawing, and interaction state.
// GET /api/v1/session
func (h *Handler) GetSession(c *gin.Context) {
	session := middleware.GetSession(c)
	c.JSON(http.StatusOK, session.Snapshot())
}

// ListSessions returns a snapshot of every live session.
// GET /api/v1/admin/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Snapshots())
}

// DeleteSession evicts a session and everything in it.
// DELETE /api/v1/admin/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if !h.Store.Delete(id) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Session not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}
