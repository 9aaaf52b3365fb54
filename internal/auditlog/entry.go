package auditlog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"certificate-terminal/internal/domain"
)

// Entry is one append-only audit row. Rows are never updated or
// deleted by the terminal; retention is an external maintenance task.
type Entry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:50;not null" json:"name"`
	ParentName   string    `gorm:"size:50;not null" json:"parentName"`
	BirthYear    int       `gorm:"not null" json:"birthYear"`
	BirthMonth   int       `gorm:"not null" json:"birthMonth"`
	BirthDay     int       `gorm:"not null" json:"birthDay"`
	Place        string    `gorm:"size:50;not null" json:"place"`
	Municipality string    `gorm:"size:50;not null" json:"municipality"`
	Class        string    `gorm:"size:10;not null" json:"class"`
	Program      string    `gorm:"size:50;not null" json:"program"`
	Reason       string    `gorm:"size:50;not null" json:"reason"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

// TableName keeps the table name used by the deployed terminal.
func (Entry) TableName() string {
	return "print_logs"
}

// ValidationError reports user-correctable input problems. It is the
// only audit failure the pipeline treats as a data fault rather than a
// storage fault.
type ValidationError struct {
	Field  string
	Reason string
}

// Error formats the failing field and constraint.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewEntry validates form data and converts it into an audit row.
func NewEntry(form domain.FormData) (Entry, error) {
	year, err := parseField("birth year", form.BirthYear)
	if err != nil {
		return Entry{}, err
	}
	month, err := parseField("birth month", form.BirthMonth)
	if err != nil {
		return Entry{}, err
	}
	day, err := parseField("birth day", form.BirthDay)
	if err != nil {
		return Entry{}, err
	}

	if year < 1900 || year > 2100 {
		return Entry{}, &ValidationError{Field: "birth year", Reason: "outside 1900-2100"}
	}
	if month < 1 || month > 12 {
		return Entry{}, &ValidationError{Field: "birth month", Reason: "outside 1-12"}
	}
	if day < 1 || day > 31 {
		return Entry{}, &ValidationError{Field: "birth day", Reason: "outside 1-31"}
	}

	required := map[string]string{
		"name":         form.Name,
		"parent name":  form.ParentName,
		"place":        form.Place,
		"municipality": form.Municipality,
		"class":        form.Class,
		"program":      form.Program,
		"reason":       form.Reason,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return Entry{}, &ValidationError{Field: field, Reason: "required"}
		}
	}

	return Entry{
		Name:         strings.TrimSpace(form.Name),
		ParentName:   strings.TrimSpace(form.ParentName),
		BirthYear:    year,
		BirthMonth:   month,
		BirthDay:     day,
		Place:        strings.TrimSpace(form.Place),
		Municipality: strings.TrimSpace(form.Municipality),
		Class:        strings.TrimSpace(form.Class),
		Program:      strings.TrimSpace(form.Program),
		Reason:       strings.TrimSpace(form.Reason),
	}, nil
}

// parseField converts a date component to int, mapping parse failures
// to validation errors.
func parseField(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "not a number"}
	}
	return n, nil
}
