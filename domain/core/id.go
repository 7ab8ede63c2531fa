package core

import (
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	QueryID  ID
	ReportID ID
)

// String conversions for domain IDs
func (id QueryID) String() string  { return ID(id).String() }
func (id ReportID) String() string { return ID(id).String() }

// NewQueryID creates a new query identifier
func NewQueryID() QueryID {
	return QueryID(NewID())
}

// NewReportID creates a new report identifier
func NewReportID() ReportID {
	return ReportID(NewID())
}

// DrugKey identifies a medicinal product by its canonical name
type DrugKey string

// EventKey identifies an adverse event by its canonical term
type EventKey string

func (k DrugKey) String() string  { return string(k) }
func (k EventKey) String() string { return string(k) }

// ParseDrugKey parses a string into a DrugKey
func ParseDrugKey(s string) (DrugKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", NewValidationError("drug", "cannot be empty")
	}
	return DrugKey(strings.ToLower(strings.TrimSpace(s))), nil
}

// ParseEventKey parses a string into an EventKey
func ParseEventKey(s string) (EventKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", NewValidationError("event", "cannot be empty")
	}
	return EventKey(strings.ToLower(strings.TrimSpace(s))), nil
}

// ParseQueryID parses a string into QueryID
func ParseQueryID(s string) (QueryID, error) {
	if strings.TrimSpace(s) == "" {
		return "", NewValidationError("query_id", "cannot be empty")
	}
	return QueryID(s), nil
}
