// export.go flattens a session's measurements into rows for the export sink.
//
// The row shape {drawing, label, mode, quantity, unit, details} is the
// contract with whatever consumes the export — a CSV download or a handoff
// to an external estimate system. Quantities are fixed 2-decimal strings so
// the numbers survive spreadsheet round-trips unchanged.
package takeoff

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Babaeti777/takeoff-api/internal/models"
)

// csvHeader is the first row of every CSV export.
var csvHeader = []string{"Drawing", "Label", "Mode", "Quantity", "Unit", "Details"}

// ExportRows flattens all drawings' measurements into export rows, in
// drawing-then-measurement insertion order. Quantities are computed against
// each drawing's current scale at call time.
func (s *Session) ExportRows() []models.ExportRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := []models.ExportRow{}
	for _, d := range s.drawings {
		for _, m := range d.Measurements {
			row := models.ExportRow{
				Drawing:  d.Name,
				Label:    m.Label,
				Mode:     string(m.Type),
				Quantity: FormatQuantity(RealValue(m, d)),
				Unit:     UnitFor(m.Type, d),
			}
			if m.Type == models.ModeArea {
				row.Details = fmt.Sprintf("perimeter %s %s", FormatQuantity(m.PixelPerimeter/sanitizeScale(d.Scale)), d.Unit)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV writes export rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{r.Drawing, r.Label, r.Mode, r.Quantity, r.Unit, r.Details}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatQuantity renders a real-world quantity as a fixed 2-decimal string.
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
