// export.go handles takeoff export downloads.
//
// GET /api/v1/export?format=csv|json
//
// Response headers are set for file download:
//   - Content-Type: appropriate MIME type
//   - Content-Disposition: attachment with filename
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Babaeti777/takeoff-api/internal/middleware"
	"github.com/Babaeti777/takeoff-api/internal/models"
	"github.com/Babaeti777/takeoff-api/internal/takeoff"
)

// ExportMeasurements exports every measurement across all drawings in the
// requested format. Quantities are computed against each drawing's scale at
// export time, so a recalibration between measuring and exporting is
// reflected in the download.
// GET /api/v1/export?format=csv|json
func (h *Handler) ExportMeasurements(c *gin.Context) {
	session := middleware.GetSession(c)
	format := c.DefaultQuery("format", "csv")

	// Validate format before flattening any rows
	validFormats := map[string]bool{"csv": true, "json": true}
	if !validFormats[format] {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_format",
			Message: "Supported formats: csv, json",
			Code:    http.StatusBadRequest,
		})
		return
	}

	rows := session.ExportRows()

	// Generate a clean filename from the session name
	// Go Pattern: We sanitize the name for use in filenames. This prevents
	// issues with special characters in Content-Disposition headers.
	filename := sanitizeFilename(session.Name())
	if filename == "" {
		filename = "takeoff"
	}

	switch format {
	case "csv":
		exportCSV(c, rows, filename)
	case "json":
		exportJSON(c, rows, filename)
	}
}

// exportCSV returns the rows as a CSV download with a header line.
func exportCSV(c *gin.Context, rows []models.ExportRow, filename string) {
	var buf bytes.Buffer
	if err := takeoff.WriteCSV(&buf, rows); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "export_error",
			Message: "Failed to generate CSV export",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// exportJSON returns the rows as JSON for programmatic consumption.
func exportJSON(c *gin.Context, rows []models.ExportRow, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, filename))
	c.JSON(http.StatusOK, rows)
}

// sanitizeFilename removes characters that aren't safe for filenames.
// Go Pattern: Keep it simple — replace unsafe characters with hyphens
// and trim the result. We don't need a full filesystem-safe sanitizer
// since this is just for the Content-Disposition header.
func sanitizeFilename(name string) string {
	// Replace common unsafe characters
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", "\n", " ", "\r", "",
	)
	name = replacer.Replace(name)

	// Collapse multiple hyphens/spaces
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	name = strings.TrimSpace(name)

	// Limit length
	if len(name) > 100 {
		name = name[:100]
	}

	return name
}
