// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// There is no ORM layer here — the takeoff package owns all mutation logic,
// and these structs are the shape of what crosses the HTTP boundary.
//
// JSON tags (e.g., `json:"id"`) control how struct fields are serialized
// to/from JSON. Fields tagged `json:"-"` never leave the process.
package models

import (
	"time"
)

// MeasurementMode identifies what kind of quantity a measurement captures.
// Go Pattern: We use string constants instead of enums (Go doesn't have enums).
// The four modes form a closed set — every switch over them is exhaustive
// with a default branch for defensive completeness.
type MeasurementMode string

const (
	ModeLength   MeasurementMode = "length"
	ModeDiameter MeasurementMode = "diameter"
	ModeArea     MeasurementMode = "area"
	ModeCount    MeasurementMode = "count"
)

// Valid reports whether the mode is one of the four supported kinds.
func (m MeasurementMode) Valid() bool {
	switch m {
	case ModeLength, ModeDiameter, ModeArea, ModeCount:
		return true
	}
	return false
}

// DisplayName returns the human-readable kind name used in sequential labels
// ("Length 3", "Area 1", ...).
func (m MeasurementMode) DisplayName() string {
	switch m {
	case ModeLength:
		return "Length"
	case ModeDiameter:
		return "Diameter"
	case ModeArea:
		return "Area"
	case ModeCount:
		return "Count"
	}
	return string(m)
}

// DrawingType distinguishes raster image plans from PDF plans.
type DrawingType string

const (
	DrawingImage DrawingType = "image"
	DrawingPDF   DrawingType = "pdf"
)

// Point is a position in canvas pixel space, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Measurement is one recorded takeoff quantity. It is polymorphic over
// MeasurementMode — only the fields for its kind are populated:
//   - length/diameter: Points (2 entries) and Pixels
//   - area: Points (>=3 entries), PixelArea, PixelPerimeter
//   - count: Points (1 entry) and Count
//
// Points are stored in raw canvas pixel space. Unit conversion happens at
// read/export time against the owning drawing's current scale, so changing
// the scale later rescales every reported quantity without touching geometry.
type Measurement struct {
	ID     string          `json:"id"`
	Type   MeasurementMode `json:"type"`
	Label  string          `json:"label"`
	Points []Point         `json:"points"`

	Pixels         float64 `json:"pixels,omitempty"`
	PixelArea      float64 `json:"pixel_area,omitempty"`
	PixelPerimeter float64 `json:"pixel_perimeter,omitempty"`
	Count          int     `json:"count,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Counters holds the next sequential label number per measurement kind,
// scoped to one drawing. Counters start at 1, post-increment when a label is
// assigned, and never decrement — deleting "Length 2" does not renumber or
// reuse the label. Clearing a drawing's measurements resets them to 1.
type Counters struct {
	Length   int `json:"length"`
	Diameter int `json:"diameter"`
	Area     int `json:"area"`
	Count    int `json:"count"`
}

// NewCounters returns counters with every kind at 1.
func NewCounters() Counters {
	return Counters{Length: 1, Diameter: 1, Area: 1, Count: 1}
}

// Drawing is one uploaded plan page with its calibration and measurements.
// Invariant: Scale is always a positive finite number — invalid input is
// coerced to 1 at the mutation site, never stored.
type Drawing struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Page     int         `json:"page"`
	Trade    string      `json:"trade,omitempty"`
	Floor    string      `json:"floor,omitempty"`
	ImageURL string      `json:"image_url"`
	Type     DrawingType `json:"type"`

	// Scale is pixels per real-world unit; Unit names that unit ("ft", "m", ...).
	Scale float64 `json:"scale"`
	Unit  string  `json:"unit"`

	// Intrinsic file metadata recorded at ingestion. Width/Height are the
	// decoded pixel dimensions for images; PageCount is set for PDFs.
	Width     int `json:"width,omitempty"`
	Height    int `json:"height,omitempty"`
	PageCount int `json:"page_count,omitempty"`

	Measurements []*Measurement `json:"measurements"`
	Counters     Counters       `json:"counters"`

	CreatedAt time.Time `json:"created_at"`

	// Raw uploaded bytes, served back via GET /drawings/:id/file so the
	// client can render the plan. Never serialized to JSON.
	FileData    []byte `json:"-"`
	ContentType string `json:"-"`
}

// InteractionState is the transient point-collection state for the active
// measurement mode. It resets on mode change, drawing switch, clear, and
// measurement completion. The preview point is cursor feedback only and is
// never part of committed geometry.
type InteractionState struct {
	Mode          MeasurementMode `json:"mode"`
	PendingPoints []Point         `json:"pending_points"`
	PreviewPoint  *Point          `json:"preview_point,omitempty"`
}

// MeasurementView is a measurement joined with its drawing-scale-derived
// display values. Quantity is a 2-decimal string; Details is populated only
// for area measurements (the real-unit perimeter). LabelAnchor is where the
// client should place the label: the polygon centroid for areas, the segment
// midpoint for lengths/diameters, the point itself for counts.
type MeasurementView struct {
	Measurement
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	Details     string `json:"details,omitempty"`
	LabelAnchor Point  `json:"label_anchor"`
}

// ExportRow is one line of the takeoff export. Rows are emitted in
// drawing-then-measurement insertion order across all drawings.
type ExportRow struct {
	Drawing  string `json:"drawing"`
	Label    string `json:"label"`
	Mode     string `json:"mode"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Details  string `json:"details"`
}

// --- Request/Response DTOs (Data Transfer Objects) ---
// Go Pattern: Separate structs for API input/output vs domain state.
// This keeps the API contract independent of internal representation.

// CreateSessionRequest is the JSON body for POST /api/v1/sessions.
// Both fields are optional.
type CreateSessionRequest struct {
	Name string `json:"name,omitempty"`
	Unit string `json:"unit,omitempty"` // default real-world unit for new drawings
}

// SetScaleRequest is the JSON body for PATCH /api/v1/drawings/:id/scale.
// Scale is deliberately NOT validated with binding tags: a non-positive or
// non-finite value is a forgiving-default case (coerced to 1), not an error.
type SetScaleRequest struct {
	Scale float64 `json:"scale"`
}

// SetModeRequest is the JSON body for PUT /api/v1/mode.
type SetModeRequest struct {
	Mode MeasurementMode `json:"mode" binding:"required"`
}

// ClickRequest is the JSON body for POST /api/v1/clicks and /api/v1/preview.
type ClickRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClickResponse reports the outcome of a canvas click: the committed
// measurement when the click completed one, otherwise just the updated
// collection state.
type ClickResponse struct {
	Committed *MeasurementView `json:"committed,omitempty"`
	State     InteractionState `json:"state"`
	Notice    string           `json:"notice,omitempty"`
}

// RenameMeasurementRequest is the JSON body for PATCH /api/v1/measurements/:id.
// Free-text overwrite; uniqueness is not enforced.
type RenameMeasurementRequest struct {
	Label string `json:"label" binding:"required"`
}

// UploadWarning describes one file in an upload batch that was rejected.
// The batch continues with the remaining files.
type UploadWarning struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// UploadResponse is returned by POST /api/v1/drawings.
type UploadResponse struct {
	Added    []*Drawing      `json:"added"`
	Warnings []UploadWarning `json:"warnings,omitempty"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
}
