// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides request
// data, response methods, and middleware values. Related handlers are grouped
// on a struct (Handler) that holds shared dependencies — dependency injection
// via struct fields, no globals.
//
// Handlers stay thin: every domain rule lives in internal/takeoff, and the
// handler's job is translating HTTP to session method calls and sentinel
// errors to status codes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Babaeti777/takeoff-api/internal/models"
	"github.com/Babaeti777/takeoff-api/internal/takeoff"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	Store          *takeoff.Store
	JWTSecret      string
	DefaultUnit    string
	MaxUploadBytes int64
	Version        string
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(store *takeoff.Store, jwtSecret, defaultUnit string, maxUploadBytes int64, version string) *Handler {
	return &Handler{
		Store:          store,
		JWTSecret:      jwtSecret,
		DefaultUnit:    defaultUnit,
		MaxUploadBytes: maxUploadBytes,
		Version:        version,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "ok",
		Version:  h.Version,
		Sessions: h.Store.Len(),
	})
}
