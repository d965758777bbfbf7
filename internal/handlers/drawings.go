// drawings.go handles plan drawing HTTP endpoints.
//
// POST   /api/v1/drawings               — multipart batch upload
// GET    /api/v1/drawings               — list registered drawings
// GET    /api/v1/drawings/:id           — one drawing with its measurements
// GET    /api/v1/drawings/:id/file      — the stored plan bytes for rendering
// DELETE /api/v1/drawings/:id           — remove a drawing
// POST   /api/v1/drawings/:id/activate  — make a drawing the measurement target
// PATCH  /api/v1/drawings/:id/scale     — recalibrate pixels-per-unit
package handlers

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Babaeti777/takeoff-api/internal/middleware"
	"github.com/Babaeti777/takeoff-api/internal/models"
	planservice "github.com/Babaeti777/takeoff-api/internal/services/plan"
	"github.com/Babaeti777/takeoff-api/internal/takeoff"
)

// UploadDrawings ingests a batch of plan files into the session registry.
// POST /api/v1/drawings
//
// Multipart form with one or more files under the field name "files" plus
// optional shared metadata fields: trade, floor, page (PDF page number),
// scale (pixels per unit). A file that fails inspection becomes a warning
// row and the batch continues — the registry is never left half-updated for
// a bad file.
func (h *Handler) UploadDrawings(c *gin.Context) {
	session := middleware.GetSession(c)

	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "No plan files provided. Upload with the field name 'files'.",
			Code:    http.StatusBadRequest,
		})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "No plan files provided. Upload with the field name 'files'.",
			Code:    http.StatusBadRequest,
		})
		return
	}

	trade := c.PostForm("trade")
	floor := c.PostForm("floor")
	page := postFormInt(c, "page", 1)
	scale, _ := strconv.ParseFloat(c.PostForm("scale"), 64) // invalid input coerces to 1 downstream

	resp := models.UploadResponse{Added: []*models.Drawing{}}
	for _, fh := range files {
		d, reason := h.ingestOne(session, fh, trade, floor, page, scale)
		if reason != "" {
			log.Printf("⚠️  Plan upload rejected (%s): %s", fh.Filename, reason)
			resp.Warnings = append(resp.Warnings, models.UploadWarning{File: fh.Filename, Reason: reason})
			continue
		}
		resp.Added = append(resp.Added, d)
	}

	status := http.StatusCreated
	if len(resp.Added) == 0 {
		// Every file was rejected; nothing changed.
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}

// ingestOne inspects and registers a single uploaded file. A non-empty
// reason means the file was rejected and the registry is unchanged.
func (h *Handler) ingestOne(session *takeoff.Session, fh *multipart.FileHeader, trade, floor string, page int, scale float64) (*models.Drawing, string) {
	f, err := fh.Open()
	if err != nil {
		return nil, "failed to open uploaded file"
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "failed to read uploaded file"
	}

	info, err := planservice.Inspect(fh.Filename, data)
	if err != nil {
		return nil, err.Error()
	}

	if info.Type == models.DrawingPDF && (page < 1 || page > info.PageCount) {
		return nil, "page " + strconv.Itoa(page) + " is out of range; PDF has " + strconv.Itoa(info.PageCount) + " page(s)"
	}

	d := &models.Drawing{
		ID:          uuid.New().String(),
		Name:        fh.Filename,
		Page:        page,
		Trade:       trade,
		Floor:       floor,
		Type:        info.Type,
		Scale:       scale,
		Width:       info.Width,
		Height:      info.Height,
		PageCount:   info.PageCount,
		FileData:    data,
		ContentType: info.ContentType,
	}
	d.ImageURL = "/api/v1/drawings/" + d.ID + "/file"

	return session.AddDrawing(d), ""
}

// ListDrawings returns all registered drawings in upload order.
// GET /api/v1/drawings
func (h *Handler) ListDrawings(c *gin.Context) {
	session := middleware.GetSession(c)
	c.JSON(http.StatusOK, session.Drawings())
}

// GetDrawing returns a single drawing with its measurements.
// GET /api/v1/drawings/:id
func (h *Handler) GetDrawing(c *gin.Context) {
	session := middleware.GetSession(c)

	d, err := session.Drawing(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Drawing not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetDrawingFile serves the stored plan bytes for client-side rendering.
// GET /api/v1/drawings/:id/file
func (h *Handler) GetDrawingFile(c *gin.Context) {
	session := middleware.GetSession(c)

	data, contentType, err := session.DrawingFile(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Drawing not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// DeleteDrawing removes a drawing and its measurements.
// DELETE /api/v1/drawings/:id
func (h *Handler) DeleteDrawing(c *gin.Context) {
	session := middleware.GetSession(c)

	if err := session.RemoveDrawing(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Drawing not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Drawing removed"})
}

// ActivateDrawing makes a drawing the target of subsequent clicks. Any
// in-progress point collection on the previous drawing is discarded.
// POST /api/v1/drawings/:id/activate
func (h *Handler) ActivateDrawing(c *gin.Context) {
	session := middleware.GetSession(c)

	if err := session.SetActive(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Drawing not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// SetDrawingScale recalibrates a drawing's pixels-per-unit factor.
// PATCH /api/v1/drawings/:id/scale
//
// A non-positive or non-finite scale is not an error: it silently coerces
// to 1 (forgiving-default policy). Recorded geometry is untouched; reported
// quantities rescale from the next read on.
func (h *Handler) SetDrawingScale(c *gin.Context) {
	session := middleware.GetSession(c)

	var req models.SetScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Body must be JSON with a numeric 'scale' field",
			Code:    http.StatusBadRequest,
		})
		return
	}

	d, err := session.SetScale(c.Param("id"), req.Scale)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Drawing not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, d)
}

// postFormInt reads an integer form field with a fallback.
func postFormInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.PostForm(key))
	if err != nil {
		return fallback
	}
	return v
}
