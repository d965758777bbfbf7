// session_test.go — Unit tests for the measurement core: the interaction
// state machine, label counters, scale handling, and unit conversion.
package takeoff

import (
	"math"
	"testing"

	"github.com/Babaeti777/takeoff-api/internal/models"
)

// newTestSession returns a session with one active drawing at scale 1.
func newTestSession(t *testing.T) (*Session, *models.Drawing) {
	t.Helper()
	s := NewSession("test", "ft")
	d := s.AddDrawing(&models.Drawing{Name: "A-101", Type: models.DrawingImage, Scale: 1})
	return s, d
}

// measureLength records a complete two-click length measurement.
func measureLength(t *testing.T, s *Session, a, b models.Point) *models.MeasurementView {
	t.Helper()
	if err := s.SetMode(models.ModeLength); err != nil {
		t.Fatalf("SetMode(length) failed: %v", err)
	}
	if v, err := s.RecordClick(a); err != nil || v != nil {
		t.Fatalf("first click: view=%v err=%v, want collecting state", v, err)
	}
	v, err := s.RecordClick(b)
	if err != nil {
		t.Fatalf("second click failed: %v", err)
	}
	if v == nil {
		t.Fatal("second click did not commit a length measurement")
	}
	return v
}

// measureArea records a polygon measurement from the given vertices.
func measureArea(t *testing.T, s *Session, pts ...models.Point) *models.MeasurementView {
	t.Helper()
	if err := s.SetMode(models.ModeArea); err != nil {
		t.Fatalf("SetMode(area) failed: %v", err)
	}
	for _, p := range pts {
		if _, err := s.RecordClick(p); err != nil {
			t.Fatalf("area click failed: %v", err)
		}
	}
	v, err := s.FinishArea()
	if err != nil {
		t.Fatalf("FinishArea failed: %v", err)
	}
	if v == nil {
		t.Fatalf("FinishArea with %d points did not commit", len(pts))
	}
	return v
}

func TestCountClickCommitsImmediately(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.SetMode(models.ModeCount); err != nil {
		t.Fatalf("SetMode(count) failed: %v", err)
	}

	v, err := s.RecordClick(models.Point{X: 10, Y: 20})
	if err != nil {
		t.Fatalf("count click failed: %v", err)
	}
	if v == nil {
		t.Fatal("count click did not commit")
	}
	if v.Label != "Count 1" {
		t.Errorf("label = %q, want %q", v.Label, "Count 1")
	}
	if v.Count != 1 {
		t.Errorf("count = %d, want 1", v.Count)
	}
	if got := s.State(); len(got.PendingPoints) != 0 {
		t.Errorf("pending points after count commit = %d, want 0", len(got.PendingPoints))
	}
}

func TestLengthMeasurement(t *testing.T) {
	s, _ := newTestSession(t)

	v := measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 3, Y: 4})
	if v.Pixels != 5 {
		t.Errorf("pixels = %v, want 5", v.Pixels)
	}
	if v.Quantity != "5.00" {
		t.Errorf("quantity = %q, want %q", v.Quantity, "5.00")
	}
	if v.Unit != "ft" {
		t.Errorf("unit = %q, want %q", v.Unit, "ft")
	}
	// Label anchor sits at the segment midpoint.
	if v.LabelAnchor.X != 1.5 || v.LabelAnchor.Y != 2 {
		t.Errorf("label anchor = %v, want {1.5 2}", v.LabelAnchor)
	}
}

func TestAreaMeasurement(t *testing.T) {
	s, _ := newTestSession(t)

	v := measureArea(t, s,
		models.Point{X: 0, Y: 0},
		models.Point{X: 10, Y: 0},
		models.Point{X: 10, Y: 10},
		models.Point{X: 0, Y: 10},
	)
	if v.PixelArea != 100 {
		t.Errorf("pixel area = %v, want 100", v.PixelArea)
	}
	if v.PixelPerimeter != 40 {
		t.Errorf("pixel perimeter = %v, want 40", v.PixelPerimeter)
	}
	if v.Unit != "sq ft" {
		t.Errorf("unit = %q, want %q", v.Unit, "sq ft")
	}
	if v.Details != "perimeter 40.00 ft" {
		t.Errorf("details = %q, want %q", v.Details, "perimeter 40.00 ft")
	}
	// Label anchor sits at the polygon centroid.
	if v.LabelAnchor.X != 5 || v.LabelAnchor.Y != 5 {
		t.Errorf("label anchor = %v, want {5 5}", v.LabelAnchor)
	}
}

func TestAreaFinishRequiresThreePoints(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.SetMode(models.ModeArea); err != nil {
		t.Fatalf("SetMode(area) failed: %v", err)
	}

	s.RecordClick(models.Point{X: 0, Y: 0})
	s.RecordClick(models.Point{X: 5, Y: 0})

	v, err := s.FinishArea()
	if err != nil {
		t.Fatalf("FinishArea returned error: %v", err)
	}
	if v != nil {
		t.Fatal("FinishArea with 2 points committed a measurement")
	}

	// Still collecting: the two points survive the ignored finish signal.
	st := s.State()
	if len(st.PendingPoints) != 2 {
		t.Errorf("pending points = %d, want 2", len(st.PendingPoints))
	}
	if len(s.MeasurementViews()) != 0 {
		t.Error("a measurement was recorded despite the no-op finish")
	}
}

func TestClickWithoutActiveDrawing(t *testing.T) {
	s := NewSession("empty", "ft")

	if _, err := s.RecordClick(models.Point{X: 1, Y: 1}); err != ErrNoActiveDrawing {
		t.Errorf("RecordClick error = %v, want ErrNoActiveDrawing", err)
	}
	if err := s.RecordPreview(models.Point{X: 1, Y: 1}); err != ErrNoActiveDrawing {
		t.Errorf("RecordPreview error = %v, want ErrNoActiveDrawing", err)
	}
	if _, err := s.FinishArea(); err != ErrNoActiveDrawing {
		t.Errorf("FinishArea error = %v, want ErrNoActiveDrawing", err)
	}
	// No state mutation happened.
	if st := s.State(); len(st.PendingPoints) != 0 {
		t.Errorf("pending points = %d, want 0", len(st.PendingPoints))
	}
}

func TestSequentialLabelsPerKind(t *testing.T) {
	s, _ := newTestSession(t)

	first := measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 1, Y: 0})

	// Interleave another kind and a rename — neither may disturb the
	// length counter.
	measureArea(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 1, Y: 0}, models.Point{X: 0, Y: 1})
	if _, err := s.RenameMeasurement(first.ID, "North wall run"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	second := measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 2, Y: 0})
	third := measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 3, Y: 0})

	if second.Label != "Length 2" {
		t.Errorf("second length label = %q, want %q", second.Label, "Length 2")
	}
	if third.Label != "Length 3" {
		t.Errorf("third length label = %q, want %q", third.Label, "Length 3")
	}

	views := s.MeasurementViews()
	if len(views) != 4 {
		t.Fatalf("measurement count = %d, want 4", len(views))
	}
	if views[0].Label != "North wall run" {
		t.Errorf("renamed label = %q, want %q", views[0].Label, "North wall run")
	}
	if views[1].Label != "Area 1" {
		t.Errorf("area label = %q, want %q", views[1].Label, "Area 1")
	}
}

func TestRemoveMeasurementKeepsCounters(t *testing.T) {
	s, _ := newTestSession(t)

	measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 1, Y: 0})
	second := measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 2, Y: 0})

	if err := s.RemoveMeasurement(second.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	// The deleted label's number is not reused.
	third := measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 3, Y: 0})
	if third.Label != "Length 3" {
		t.Errorf("label after delete = %q, want %q", third.Label, "Length 3")
	}
}

func TestClearMeasurementsScopedToActiveDrawing(t *testing.T) {
	s, _ := newTestSession(t)
	other := s.AddDrawing(&models.Drawing{Name: "A-102", Type: models.DrawingImage, Scale: 1})

	// Five measurements across kinds on the active drawing.
	measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 1, Y: 0})
	measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 2, Y: 0})
	measureArea(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 1, Y: 0}, models.Point{X: 0, Y: 1})
	s.SetMode(models.ModeCount)
	s.RecordClick(models.Point{X: 1, Y: 1})
	s.SetMode(models.ModeDiameter)
	s.RecordClick(models.Point{X: 0, Y: 0})
	s.RecordClick(models.Point{X: 4, Y: 0})

	// One measurement on the other drawing.
	if err := s.SetActive(other.ID); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 9, Y: 0})

	// Back to the first drawing; clear it.
	first := s.Drawings()[0]
	if err := s.SetActive(first.ID); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if got := len(s.MeasurementViews()); got != 5 {
		t.Fatalf("measurements before clear = %d, want 5", got)
	}
	if err := s.ClearMeasurements(); err != nil {
		t.Fatalf("ClearMeasurements failed: %v", err)
	}

	if got := len(s.MeasurementViews()); got != 0 {
		t.Errorf("measurements after clear = %d, want 0", got)
	}
	cleared, _ := s.Drawing(first.ID)
	if cleared.Counters != models.NewCounters() {
		t.Errorf("counters after clear = %+v, want all 1", cleared.Counters)
	}

	// The other drawing keeps its measurement and counters.
	kept, _ := s.Drawing(other.ID)
	if len(kept.Measurements) != 1 {
		t.Errorf("other drawing measurements = %d, want 1", len(kept.Measurements))
	}
	if kept.Counters.Length != 2 {
		t.Errorf("other drawing length counter = %d, want 2", kept.Counters.Length)
	}

	// Fresh labels restart at 1.
	v := measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 1, Y: 0})
	if v.Label != "Length 1" {
		t.Errorf("label after clear = %q, want %q", v.Label, "Length 1")
	}
}

func TestScaleSanitizing(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		want  float64
	}{
		{"zero coerces to 1", 0, 1},
		{"negative coerces to 1", -5, 1},
		{"NaN coerces to 1", math.NaN(), 1},
		{"positive infinity coerces to 1", math.Inf(1), 1},
		{"negative infinity coerces to 1", math.Inf(-1), 1},
		{"valid scale kept", 2.5, 2.5},
		{"tiny positive scale kept", 0.001, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newTestSession(t)
			updated, err := s.SetScale(d.ID, tt.scale)
			if err != nil {
				t.Fatalf("SetScale failed: %v", err)
			}
			if updated.Scale != tt.want {
				t.Errorf("scale = %v, want %v", updated.Scale, tt.want)
			}
		})
	}
}

func TestRealValueRoundTripAtScaleOne(t *testing.T) {
	s, _ := newTestSession(t)

	length := measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 6, Y: 8})
	area := measureArea(t, s,
		models.Point{X: 0, Y: 0}, models.Point{X: 4, Y: 0},
		models.Point{X: 4, Y: 4}, models.Point{X: 0, Y: 4})

	d := s.Drawings()[0]
	if got := RealValue(&length.Measurement, d); got != length.Pixels {
		t.Errorf("length real value at scale 1 = %v, want raw pixels %v", got, length.Pixels)
	}
	if got := RealValue(&area.Measurement, d); got != area.PixelArea {
		t.Errorf("area real value at scale 1 = %v, want raw pixel area %v", got, area.PixelArea)
	}
}

func TestRescaleChangesValuesNotGeometry(t *testing.T) {
	s, d := newTestSession(t)

	measureLength(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 0})
	measureArea(t, s,
		models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 0},
		models.Point{X: 10, Y: 10}, models.Point{X: 0, Y: 10})

	if _, err := s.SetScale(d.ID, 2); err != nil {
		t.Fatalf("SetScale failed: %v", err)
	}

	views := s.MeasurementViews()
	if views[0].Quantity != "5.00" {
		t.Errorf("length at scale 2 = %q, want %q", views[0].Quantity, "5.00")
	}
	if views[1].Quantity != "25.00" {
		t.Errorf("area at scale 2 = %q, want %q (pixelArea/scale²)", views[1].Quantity, "25.00")
	}

	// Stored geometry is untouched by the rescale.
	if views[0].Pixels != 10 {
		t.Errorf("stored pixels mutated: %v, want 10", views[0].Pixels)
	}
	if views[1].PixelArea != 100 {
		t.Errorf("stored pixel area mutated: %v, want 100", views[1].PixelArea)
	}
	if p := views[0].Points[1]; p.X != 10 || p.Y != 0 {
		t.Errorf("stored points mutated: %v", p)
	}
}

func TestModeSwitchDiscardsPending(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetMode(models.ModeArea)
	s.RecordClick(models.Point{X: 0, Y: 0})
	s.RecordClick(models.Point{X: 5, Y: 0})
	s.RecordPreview(models.Point{X: 5, Y: 5})

	if err := s.SetMode(models.ModeLength); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}

	st := s.State()
	if len(st.PendingPoints) != 0 {
		t.Errorf("pending points after mode switch = %d, want 0", len(st.PendingPoints))
	}
	if st.PreviewPoint != nil {
		t.Error("preview point survived mode switch")
	}
	if len(s.MeasurementViews()) != 0 {
		t.Error("mode switch committed the discarded points")
	}
}

func TestDrawingSwitchDiscardsPending(t *testing.T) {
	s, _ := newTestSession(t)
	other := s.AddDrawing(&models.Drawing{Name: "A-102", Type: models.DrawingImage, Scale: 1})

	s.SetMode(models.ModeLength)
	s.RecordClick(models.Point{X: 0, Y: 0})

	if err := s.SetActive(other.ID); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if st := s.State(); len(st.PendingPoints) != 0 {
		t.Errorf("pending points after drawing switch = %d, want 0", len(st.PendingPoints))
	}
}

func TestPreviewLifecycle(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetMode(models.ModeLength)

	// Idle: preview is a no-op, nothing pending to rubber-band against.
	s.RecordPreview(models.Point{X: 9, Y: 9})
	if st := s.State(); st.PreviewPoint != nil {
		t.Error("preview recorded while idle")
	}

	// Collecting: preview tracks the cursor.
	s.RecordClick(models.Point{X: 0, Y: 0})
	s.RecordPreview(models.Point{X: 7, Y: 3})
	st := s.State()
	if st.PreviewPoint == nil || st.PreviewPoint.X != 7 || st.PreviewPoint.Y != 3 {
		t.Errorf("preview point = %v, want {7 3}", st.PreviewPoint)
	}

	// Commit clears the preview; it never enters the stored geometry.
	v, err := s.RecordClick(models.Point{X: 10, Y: 0})
	if err != nil || v == nil {
		t.Fatalf("commit click: view=%v err=%v", v, err)
	}
	if len(v.Points) != 2 {
		t.Errorf("committed points = %d, want 2 (preview leaked in)", len(v.Points))
	}
	if st := s.State(); st.PreviewPoint != nil {
		t.Error("preview point survived commit")
	}
}

func TestRemoveDrawing(t *testing.T) {
	s, d := newTestSession(t)
	s.SetMode(models.ModeLength)
	s.RecordClick(models.Point{X: 0, Y: 0})

	if err := s.RemoveDrawing(d.ID); err != nil {
		t.Fatalf("RemoveDrawing failed: %v", err)
	}
	if len(s.Drawings()) != 0 {
		t.Error("drawing still registered after removal")
	}
	// Removing the active drawing deactivates and discards pending points.
	if st := s.State(); len(st.PendingPoints) != 0 {
		t.Error("pending points survived active drawing removal")
	}
	if _, err := s.RecordClick(models.Point{X: 1, Y: 1}); err != ErrNoActiveDrawing {
		t.Errorf("click after removal error = %v, want ErrNoActiveDrawing", err)
	}
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.SetMode("volume"); err != ErrInvalidMode {
		t.Errorf("SetMode(volume) error = %v, want ErrInvalidMode", err)
	}
}

func TestDiameterBehavesLikeLength(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetMode(models.ModeDiameter)

	if v, _ := s.RecordClick(models.Point{X: 0, Y: 0}); v != nil {
		t.Fatal("first diameter click committed early")
	}
	v, err := s.RecordClick(models.Point{X: 0, Y: 8})
	if err != nil || v == nil {
		t.Fatalf("second diameter click: view=%v err=%v", v, err)
	}
	if v.Label != "Diameter 1" {
		t.Errorf("label = %q, want %q", v.Label, "Diameter 1")
	}
	if v.Pixels != 8 {
		t.Errorf("pixels = %v, want 8", v.Pixels)
	}
}
