// Package takeoff implements the measurement core: the drawing registry, the
// per-drawing measurement store, the interaction state machine that turns
// canvas clicks into committed measurements, and unit conversion from pixel
// space to real-world quantities.
//
// A Session is the explicit state that the browser original kept in ambient
// globals — one active drawing, one measurement mode, one in-progress point
// collection. All mutations go through Session methods, which form the only
// contract surface; HTTP handlers stay thin over this package.
package takeoff

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/Babaeti777/takeoff-api/internal/geometry"
	"github.com/Babaeti777/takeoff-api/internal/models"
)

// Sentinel errors for expected, non-fatal conditions. Handlers translate
// these into user-visible warnings, never into 5xx responses.
var (
	ErrNoActiveDrawing     = errors.New("no active drawing selected")
	ErrDrawingNotFound     = errors.New("drawing not found")
	ErrMeasurementNotFound = errors.New("measurement not found")
	ErrInvalidMode         = errors.New("invalid measurement mode")
)

// minAreaVertices is the smallest polygon the area mode will commit.
// A finish signal with fewer accumulated points is a silent no-op.
const minAreaVertices = 3

// Session is one takeoff working set: uploaded drawings, their measurements,
// and the transient interaction state for the active measurement mode.
//
// The domain itself is synchronous and event-driven (one mutation per input
// event), but HTTP requests arrive concurrently, so every method takes the
// session mutex.
type Session struct {
	mu sync.RWMutex

	id        string
	name      string
	unit      string // default real-world unit for new drawings
	createdAt time.Time
	lastSeen  time.Time

	drawings []*models.Drawing // insertion order
	activeID string            // empty = none active

	mode    models.MeasurementMode
	pending []models.Point
	preview *models.Point
}

// Snapshot is a copy of session state safe to serialize while other requests
// keep mutating the live session.
type Snapshot struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name,omitempty"`
	Unit            string                  `json:"unit"`
	CreatedAt       time.Time               `json:"created_at"`
	LastSeenAt      time.Time               `json:"last_seen_at"`
	ActiveDrawingID string                  `json:"active_drawing_id,omitempty"`
	State           models.InteractionState `json:"state"`
	Drawings        []*models.Drawing       `json:"drawings"`
}

// NewSession creates an empty session. The unit is the default real-world
// unit stamped onto new drawings ("ft" unless the caller says otherwise).
func NewSession(name, unit string) *Session {
	if unit == "" {
		unit = "ft"
	}
	now := time.Now()
	return &Session{
		id:        uuid.New().String(),
		name:      name,
		unit:      unit,
		createdAt: now,
		lastSeen:  now,
		mode:      models.ModeLength,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Name returns the session's display name.
func (s *Session) Name() string {
	return s.name
}

// Touch records activity for TTL-based expiry.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the most recent activity.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// --- Drawing registry ---

// AddDrawing registers an ingested plan page. The drawing gets an ID, a
// sanitized scale, the session's default unit (unless already set), and fresh
// per-kind label counters. The first drawing in a session becomes active
// automatically; later ones do not steal focus.
func (s *Session) AddDrawing(d *models.Drawing) *models.Drawing {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.Scale = sanitizeScale(d.Scale)
	if d.Unit == "" {
		d.Unit = s.unit
	}
	if d.Measurements == nil {
		d.Measurements = []*models.Measurement{}
	}
	d.Counters = models.NewCounters()
	d.CreatedAt = time.Now()

	s.drawings = append(s.drawings, d)
	if s.activeID == "" {
		s.activeID = d.ID
	}
	return d
}

// RemoveDrawing deletes a drawing and its measurements. Removing the active
// drawing leaves the session with no active drawing and discards any
// in-progress point collection.
func (s *Session) RemoveDrawing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.drawings {
		if d.ID == id {
			s.drawings = append(s.drawings[:i], s.drawings[i+1:]...)
			if s.activeID == id {
				s.activeID = ""
				s.resetCollection()
			}
			return nil
		}
	}
	return ErrDrawingNotFound
}

// SetActive switches the active drawing. Switching discards any in-progress
// point collection without committing it.
func (s *Session) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findDrawing(id)
	if d == nil {
		return ErrDrawingNotFound
	}
	if s.activeID != id {
		s.resetCollection()
	}
	s.activeID = id
	return nil
}

// SetScale updates a drawing's pixels-per-unit calibration. Non-positive and
// non-finite input silently coerces to 1 — a forgiving default rather than a
// hard failure. Stored measurement geometry is untouched; reported quantities
// rescale on the next read.
func (s *Session) SetScale(id string, scale float64) (*models.Drawing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findDrawing(id)
	if d == nil {
		return nil, ErrDrawingNotFound
	}
	d.Scale = sanitizeScale(scale)
	return cloneDrawing(d), nil
}

// Drawing returns a copy of the drawing with the given ID.
func (s *Session) Drawing(id string) (*models.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := s.findDrawing(id)
	if d == nil {
		return nil, ErrDrawingNotFound
	}
	return cloneDrawing(d), nil
}

// DrawingFile returns the stored plan bytes and content type for serving.
func (s *Session) DrawingFile(id string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := s.findDrawing(id)
	if d == nil {
		return nil, "", ErrDrawingNotFound
	}
	return d.FileData, d.ContentType, nil
}

// Drawings returns copies of all drawings in insertion order.
func (s *Session) Drawings() []*models.Drawing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Drawing, 0, len(s.drawings))
	for _, d := range s.drawings {
		out = append(out, cloneDrawing(d))
	}
	return out
}

// --- Interaction state machine ---

// SetMode switches the measurement mode and discards any in-progress point
// collection without committing it.
func (s *Session) SetMode(mode models.MeasurementMode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.resetCollection()
	return nil
}

// RecordClick feeds one canvas click into the state machine.
//
// Mode count commits a one-point measurement immediately. Length and diameter
// collect two points and commit on the second. Area appends a vertex and
// waits for an explicit finish signal. The returned view is non-nil exactly
// when the click completed a measurement.
func (s *Session) RecordClick(p models.Point) (*models.MeasurementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findDrawing(s.activeID)
	if d == nil {
		return nil, ErrNoActiveDrawing
	}

	switch s.mode {
	case models.ModeCount:
		return s.commit(d, []models.Point{p}), nil

	case models.ModeLength, models.ModeDiameter:
		s.pending = append(s.pending, p)
		if len(s.pending) < 2 {
			return nil, nil
		}
		return s.commit(d, s.pending), nil

	case models.ModeArea:
		s.pending = append(s.pending, p)
		return nil, nil
	}

	return nil, ErrInvalidMode
}

// RecordPreview tracks the cursor for rubber-band feedback. The preview point
// is only meaningful while points are pending and never becomes part of
// committed geometry. With nothing pending the call is a no-op.
func (s *Session) RecordPreview(p models.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findDrawing(s.activeID) == nil {
		return ErrNoActiveDrawing
	}
	if len(s.pending) == 0 {
		s.preview = nil
		return nil
	}
	s.preview = &p
	return nil
}

// FinishArea is the explicit completion signal for area mode (double-click in
// the browser original). With at least three accumulated vertices it commits
// a polygon measurement; with fewer — or outside area mode — it is a silent
// no-op that leaves the collection state unchanged.
func (s *Session) FinishArea() (*models.MeasurementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findDrawing(s.activeID)
	if d == nil {
		return nil, ErrNoActiveDrawing
	}
	if s.mode != models.ModeArea || len(s.pending) < minAreaVertices {
		return nil, nil
	}
	return s.commit(d, s.pending), nil
}

// State returns the current interaction state.
func (s *Session) State() models.InteractionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// --- Measurement lifecycle ---

// RenameMeasurement overwrites a measurement's label with free text.
// Uniqueness is not enforced and the label counters are unaffected.
func (s *Session) RenameMeasurement(id, label string) (*models.MeasurementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, m := s.findMeasurement(id)
	if m == nil {
		return nil, ErrMeasurementNotFound
	}
	m.Label = label
	v := buildView(m, d)
	return &v, nil
}

// RemoveMeasurement deletes a measurement by identity. Counters do not
// decrement — later measurements keep their sequence numbers and the deleted
// label is never reused.
func (s *Session) RemoveMeasurement(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.drawings {
		for i, m := range d.Measurements {
			if m.ID == id {
				d.Measurements = append(d.Measurements[:i], d.Measurements[i+1:]...)
				return nil
			}
		}
	}
	return ErrMeasurementNotFound
}

// ClearMeasurements empties the active drawing's measurement list, resets its
// per-kind counters to 1, and discards any in-progress collection. Other
// drawings are untouched.
func (s *Session) ClearMeasurements() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findDrawing(s.activeID)
	if d == nil {
		return ErrNoActiveDrawing
	}
	d.Measurements = []*models.Measurement{}
	d.Counters = models.NewCounters()
	s.resetCollection()
	return nil
}

// MeasurementViews returns the active drawing's measurements with computed
// real-world quantities, in insertion order. With no active drawing the list
// is empty.
func (s *Session) MeasurementViews() []models.MeasurementView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := s.findDrawing(s.activeID)
	if d == nil {
		return []models.MeasurementView{}
	}
	views := make([]models.MeasurementView, 0, len(d.Measurements))
	for _, m := range d.Measurements {
		views = append(views, buildView(m, d))
	}
	return views
}

// Snapshot returns a copy of the whole session for serialization.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drawings := make([]*models.Drawing, 0, len(s.drawings))
	for _, d := range s.drawings {
		drawings = append(drawings, cloneDrawing(d))
	}
	return Snapshot{
		ID:              s.id,
		Name:            s.name,
		Unit:            s.unit,
		CreatedAt:       s.createdAt,
		LastSeenAt:      s.lastSeen,
		ActiveDrawingID: s.activeID,
		State:           s.stateLocked(),
		Drawings:        drawings,
	}
}

// --- internals (callers hold s.mu) ---

func (s *Session) findDrawing(id string) *models.Drawing {
	if id == "" {
		return nil
	}
	for _, d := range s.drawings {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *Session) findMeasurement(id string) (*models.Drawing, *models.Measurement) {
	for _, d := range s.drawings {
		for _, m := range d.Measurements {
			if m.ID == id {
				return d, m
			}
		}
	}
	return nil, nil
}

func (s *Session) resetCollection() {
	s.pending = nil
	s.preview = nil
}

func (s *Session) stateLocked() models.InteractionState {
	st := models.InteractionState{
		Mode:          s.mode,
		PendingPoints: append([]models.Point{}, s.pending...),
	}
	if s.preview != nil {
		p := *s.preview
		st.PreviewPoint = &p
	}
	return st
}

// commit records a completed measurement on the drawing, assigns its
// sequential label, and resets the collection state.
func (s *Session) commit(d *models.Drawing, points []models.Point) *models.MeasurementView {
	m := &models.Measurement{
		ID:        uuid.New().String(),
		Type:      s.mode,
		Points:    append([]models.Point{}, points...),
		CreatedAt: time.Now(),
	}

	vs := vecs(m.Points)
	switch s.mode {
	case models.ModeLength, models.ModeDiameter:
		m.Pixels = geometry.Distance(vs[0], vs[1])
	case models.ModeArea:
		m.PixelArea = geometry.PolygonArea(vs)
		m.PixelPerimeter = geometry.PolygonPerimeter(vs)
	case models.ModeCount:
		m.Count = 1
	}

	m.Label = fmt.Sprintf("%s %d", s.mode.DisplayName(), nextLabelNumber(&d.Counters, s.mode))
	d.Measurements = append(d.Measurements, m)
	s.resetCollection()

	v := buildView(m, d)
	return &v
}

// nextLabelNumber returns the current counter for the kind and
// post-increments it.
func nextLabelNumber(c *models.Counters, mode models.MeasurementMode) int {
	var n *int
	switch mode {
	case models.ModeLength:
		n = &c.Length
	case models.ModeDiameter:
		n = &c.Diameter
	case models.ModeArea:
		n = &c.Area
	default:
		n = &c.Count
	}
	v := *n
	*n++
	return v
}

// --- Unit conversion (pixel space → real world) ---

// RealValue converts a measurement's raw pixel metric into the owning
// drawing's real-world units: pixels/scale for lengths and diameters,
// pixelArea/scale² for areas, and the stored count for counts.
func RealValue(m *models.Measurement, d *models.Drawing) float64 {
	scale := sanitizeScale(d.Scale)
	switch m.Type {
	case models.ModeLength, models.ModeDiameter:
		return m.Pixels / scale
	case models.ModeArea:
		return m.PixelArea / (scale * scale)
	case models.ModeCount:
		return float64(m.Count)
	}
	return 0
}

// UnitFor returns the display unit for a measurement kind on a drawing:
// the drawing's linear unit, its square form for areas, or "ea" for counts.
func UnitFor(mode models.MeasurementMode, d *models.Drawing) string {
	switch mode {
	case models.ModeArea:
		return "sq " + d.Unit
	case models.ModeCount:
		return "ea"
	}
	return d.Unit
}

// sanitizeScale clamps invalid calibration input to 1, preventing
// divide-by-zero and unit blow-up downstream.
func sanitizeScale(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return 1
	}
	return s
}

// buildView joins a measurement with its drawing-derived display values.
func buildView(m *models.Measurement, d *models.Drawing) models.MeasurementView {
	v := models.MeasurementView{
		Measurement: *m,
		Quantity:    FormatQuantity(RealValue(m, d)),
		Unit:        UnitFor(m.Type, d),
	}
	v.Points = append([]models.Point{}, m.Points...)

	vs := vecs(m.Points)
	switch m.Type {
	case models.ModeArea:
		v.Details = fmt.Sprintf("perimeter %s %s", FormatQuantity(m.PixelPerimeter/sanitizeScale(d.Scale)), d.Unit)
		v.LabelAnchor = fromVec(geometry.Centroid(vs))
	case models.ModeLength, models.ModeDiameter:
		v.LabelAnchor = fromVec(geometry.Midpoint(vs[0], vs[1]))
	default:
		v.LabelAnchor = m.Points[0]
	}
	return v
}

// cloneDrawing copies a drawing and its measurements so callers can read the
// result without holding the session lock. File bytes are shared — they are
// immutable after ingestion.
func cloneDrawing(d *models.Drawing) *models.Drawing {
	cp := *d
	cp.Measurements = make([]*models.Measurement, 0, len(d.Measurements))
	for _, m := range d.Measurements {
		mc := *m
		mc.Points = append([]models.Point{}, m.Points...)
		cp.Measurements = append(cp.Measurements, &mc)
	}
	return &cp
}

// vecs converts API points to r2 vectors for the geometry engine.
func vecs(pts []models.Point) []r2.Point {
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[i] = r2.Point{X: p.X, Y: p.Y}
	}
	return out
}

func fromVec(p r2.Point) models.Point {
	return models.Point{X: p.X, Y: p.Y}
}
