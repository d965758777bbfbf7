// measure.go handles the measurement interaction HTTP endpoints.
//
// PUT    /api/v1/mode              — set the measurement mode
// POST   /api/v1/clicks            — record a canvas click
// POST   /api/v1/preview           — record the cursor preview point
// POST   /api/v1/area/finish       — finish signal for area mode
// GET    /api/v1/measurements      — active drawing's measurements + values
// PATCH  /api/v1/measurements/:id  — rename
// DELETE /api/v1/measurements/:id  — remove one
// DELETE /api/v1/measurements      — clear all + reset counters
//
// The click/preview/finish trio is the whole interaction state machine seen
// from outside: clients replay pointer events here and render the returned
// state. Expected conditions (no active drawing, too few polygon points)
// come back as warnings or notices, never as 5xx.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Babaeti777/takeoff-api/internal/middleware"
	"github.com/Babaeti777/takeoff-api/internal/models"
	"github.com/Babaeti777/takeoff-api/internal/takeoff"
)

// SetMode switches the measurement mode. Switching discards any in-progress
// point collection without committing it.
// PUT /api/v1/mode
func (h *Handler) SetMode(c *gin.Context) {
	session := middleware.GetSession(c)

	var req models.SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Body must be JSON with a 'mode' field",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := session.SetMode(req.Mode); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_mode",
			Message: "Mode must be one of: length, diameter, area, count",
			Code:    http.StatusBadRequest,
		})
		return
	}
	c.JSON(http.StatusOK, session.State())
}

// RecordClick feeds a canvas click into the interaction state machine.
// POST /api/v1/clicks
//
// Count mode commits on every click; length/diameter commit on the second;
// area keeps collecting until the finish signal. The response carries the
// committed measurement when the click completed one.
func (h *Handler) RecordClick(c *gin.Context) {
	session := middleware.GetSession(c)

	var req models.ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Body must be JSON with numeric 'x' and 'y' fields",
			Code:    http.StatusBadRequest,
		})
		return
	}

	view, err := session.RecordClick(models.Point{X: req.X, Y: req.Y})
	if err != nil {
		h.renderMeasureError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ClickResponse{
		Committed: view,
		State:     session.State(),
	})
}

// RecordPreview tracks the cursor for rubber-band feedback while collecting.
// POST /api/v1/preview
func (h *Handler) RecordPreview(c *gin.Context) {
	session := middleware.GetSession(c)

	var req models.ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Body must be JSON with numeric 'x' and 'y' fields",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := session.RecordPreview(models.Point{X: req.X, Y: req.Y}); err != nil {
		h.renderMeasureError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.State())
}

// FinishArea is the explicit completion signal for an area polygon
// (double-click in a canvas client).
// POST /api/v1/area/finish
//
// With fewer than three accumulated points the signal is a no-op: the
// response carries a notice and the unchanged collection state, matching
// the forgiving behavior of the rest of the interaction model.
func (h *Handler) FinishArea(c *gin.Context) {
	session := middleware.GetSession(c)

	view, err := session.FinishArea()
	if err != nil {
		h.renderMeasureError(c, err)
		return
	}

	resp := models.ClickResponse{
		Committed: view,
		State:     session.State(),
	}
	if view == nil {
		resp.Notice = "Finish ignored: an area needs at least 3 points in area mode"
	}
	c.JSON(http.StatusOK, resp)
}

// ListMeasurements returns the active drawing's measurements with computed
// real-world quantities, units, details, and label anchors.
// GET /api/v1/measurements
func (h *Handler) ListMeasurements(c *gin.Context) {
	session := middleware.GetSession(c)
	c.JSON(http.StatusOK, session.MeasurementViews())
}

// RenameMeasurement overwrites a measurement's label with free text.
// PATCH /api/v1/measurements/:id
func (h *Handler) RenameMeasurement(c *gin.Context) {
	session := middleware.GetSession(c)

	var req models.RenameMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Body must be JSON with a non-empty 'label' field",
			Code:    http.StatusBadRequest,
		})
		return
	}

	view, err := session.RenameMeasurement(c.Param("id"), req.Label)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Measurement not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteMeasurement removes one measurement by identity. Label counters do
// not decrement, so remaining and future labels keep their numbers.
// DELETE /api/v1/measurements/:id
func (h *Handler) DeleteMeasurement(c *gin.Context) {
	session := middleware.GetSession(c)

	if err := session.RemoveMeasurement(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Measurement not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Measurement removed"})
}

// ClearMeasurements empties the active drawing's measurement list and resets
// its label counters to 1. Other drawings are untouched.
// DELETE /api/v1/measurements
func (h *Handler) ClearMeasurements(c *gin.Context) {
	session := middleware.GetSession(c)

	if err := session.ClearMeasurements(); err != nil {
		h.renderMeasureError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Measurements cleared"})
}

// renderMeasureError maps domain sentinel errors onto HTTP responses.
// ErrNoActiveDrawing is a non-fatal warning: nothing mutated, the user
// just needs to select a drawing first.
func (h *Handler) renderMeasureError(c *gin.Context, err error) {
	if errors.Is(err, takeoff.ErrNoActiveDrawing) {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "no_active_drawing",
			Message: "Select a drawing before measuring",
			Code:    http.StatusConflict,
		})
		return
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}
