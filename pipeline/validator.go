package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawSubmission carries the fields of an incident submission exactly as
// received from the HTTP layer, before any validation.
type RawSubmission struct {
	Title        string
	Description  string
	Category     string
	Location     string
	Satisfaction string   // raw form value, empty when not supplied
	ReporterId   string   // empty when anonymous
	ImageURLs    []string // stored photo references, in upload order
}

// Submission is a validated and normalized submission.
type Submission struct {
	Title        string
	Description  string
	Category     string
	Location     string
	Satisfaction *int // nil when not supplied
	ReporterId   *string
	ImageURLs    []string
}

// ValidationError rejects a submission before any network or database
// work happens.
type ValidationError struct {
	MissingFields       []string
	InvalidSatisfaction bool
}

func (e *ValidationError) Error() string {
	if e.InvalidSatisfaction {
		return "satisfaction must be a number between 1 and 5"
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
}

// Validate checks a raw submission and returns its normalized form.
// Title, description, category and location are required; satisfaction
// is optional but must parse to a finite number in [1,5] when present,
// and is rounded to the nearest integer. Nothing else is sanitized here.
func Validate(raw RawSubmission) (Submission, error) {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", raw.Title},
		{"description", raw.Description},
		{"category", raw.Category},
		{"location", raw.Location},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Submission{}, &ValidationError{MissingFields: missing}
	}

	var satisfaction *int
	if raw.Satisfaction != "" {
		parsed, err := strconv.ParseFloat(raw.Satisfaction, 64)
		if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) || parsed < 1 || parsed > 5 {
			return Submission{}, &ValidationError{InvalidSatisfaction: true}
		}
		rounded := int(math.Round(parsed))
		satisfaction = &rounded
	}

	var reporter *string
	if raw.ReporterId != "" {
		id := raw.ReporterId
		reporter = &id
	}

	return Submission{
		Title:        raw.Title,
		Description:  raw.Description,
		Category:     raw.Category,
		Location:     raw.Location,
		Satisfaction: satisfaction,
		ReporterId:   reporter,
		ImageURLs:    raw.ImageURLs,
	}, nil
}
