// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Babaeti777/takeoff-api/internal/handlers"
	"github.com/Babaeti777/takeoff-api/internal/middleware"
	"github.com/Babaeti777/takeoff-api/internal/takeoff"
)

// Setup creates and configures the Gin router with all routes.
func Setup(store *takeoff.Store, jwtSecret string, adminKeyHash []byte, defaultUnit string, maxUploadBytes int64, rateLimit int, allowedOrigins []string, version string) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(allowedOrigins))

	h := handlers.NewHandler(store, jwtSecret, defaultUnit, maxUploadBytes, version)
	rateLimiter := middleware.NewRateLimiter(rateLimit)

	// --- Public Routes (no auth required) ---
	r.GET("/api/v1/health", h.HealthCheck)
	r.POST("/api/v1/sessions", h.CreateSession)

	// --- Session-scoped Routes (bearer token required) ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.SessionAuth(store, jwtSecret))
	protected.Use(rateLimiter.RateLimit())
	{
		protected.GET("/session", h.GetSession)

		// Drawing registry
		protected.POST("/drawings", h.UploadDrawings)
		protected.GET("/drawings", h.ListDrawings)
		protected.GET("/drawings/:id", h.GetDrawing)
		protected.GET("/drawings/:id/file", h.GetDrawingFile)
		protected.DELETE("/drawings/:id", h.DeleteDrawing)
		protected.POST("/drawings/:id/activate", h.ActivateDrawing)
		protected.PATCH("/drawings/:id/scale", h.SetDrawingScale)

		// Measurement interaction
		protected.PUT("/mode", h.SetMode)
		protected.POST("/clicks", h.RecordClick)
		protected.POST("/preview", h.RecordPreview)
		protected.POST("/area/finish", h.FinishArea)

		// Measurement management
		protected.GET("/measurements", h.ListMeasurements)
		protected.PATCH("/measurements/:id", h.RenameMeasurement)
		protected.DELETE("/measurements/:id", h.DeleteMeasurement)
		protected.DELETE("/measurements", h.ClearMeasurements)

		// Export
		protected.GET("/export", h.ExportMeasurements)
	}

	// --- Admin Routes (X-Admin-Key required) ---
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AdminAuth(adminKeyHash))
	{
		admin.GET("/sessions", h.ListSessions)
		admin.DELETE("/sessions/:id", h.DeleteSession)
	}

	return r
}
