package validation

import (
	"fmt"
	"strings"
)

// Violation is one failed field constraint.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error lists every constraint a candidate record violates.
type Error struct {
	Slug       string      `json:"slug,omitempty"`
	Violations []Violation `json:"violations"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	if e.Slug != "" {
		return fmt.Sprintf("invalid record %q: %s", e.Slug, strings.Join(parts, "; "))
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

// Fields returns the distinct field paths that failed, in report order.
func (e *Error) Fields() []string {
	seen := make(map[string]bool, len(e.Violations))
	var fields []string
	for _, v := range e.Violations {
		if !seen[v.Field] {
			seen[v.Field] = true
			fields = append(fields, v.Field)
		}
	}
	return fields
}

// MissingFieldsError is returned when a mutation request lacks required fields.
type MissingFieldsError struct {
	Fields []string `json:"missing"`
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
