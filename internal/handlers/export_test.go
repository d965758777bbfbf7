// export_test.go contains tests for the export download helpers.
//
// Go Pattern: Table-driven tests are the standard Go testing pattern.
// You define a slice of test cases (each with a name, inputs, and expected
// outputs), then loop through them. This makes it easy to add new cases
// and keeps the test logic DRY.
package handlers

import (
	"strings"
	"testing"
)

// TestSanitizeFilename verifies filename sanitization for the
// Content-Disposition header.
func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean session name",
			input:    "Riverside Clinic Takeoff",
			expected: "Riverside Clinic Takeoff",
		},
		{
			name:     "slashes and colons",
			input:    "Phase 1/2: Foundations",
			expected: "Phase 1-2- Foundations",
		},
		{
			name:     "special characters",
			input:    "Bid? <Electrical>",
			expected: "Bid- -Electrical-",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "long name gets truncated",
			input:    strings.Repeat("a", 200),
			expected: strings.Repeat("a", 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
