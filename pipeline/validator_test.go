package pipeline

import (
	"errors"
	"testing"
)

func TestValidateRequiredFields(t *testing.T) {
	complete := RawSubmission{
		Title:       "Broken window",
		Description: "Smashed window on the second floor",
		Category:    "maintenance",
		Location:    "Library, room 204",
	}

	testCases := []struct {
		name    string
		mutate  func(*RawSubmission)
		missing []string
	}{
		{
			name:   "all fields present",
			mutate: func(r *RawSubmission) {},
		},
		{
			name:    "missing title",
			mutate:  func(r *RawSubmission) { r.Title = "" },
			missing: []string{"title"},
		},
		{
			name:    "missing description",
			mutate:  func(r *RawSubmission) { r.Description = "" },
			missing: []string{"description"},
		},
		{
			name:    "missing category",
			mutate:  func(r *RawSubmission) { r.Category = "" },
			missing: []string{"category"},
		},
		{
			name:    "missing location",
			mutate:  func(r *RawSubmission) { r.Location = "" },
			missing: []string{"location"},
		},
		{
			name: "everything missing",
			mutate: func(r *RawSubmission) {
				*r = RawSubmission{}
			},
			missing: []string{"title", "description", "category", "location"},
		},
	}

	for _, testCase := range testCases {
		raw := complete
		testCase.mutate(&raw)

		_, err := Validate(raw)
		if len(testCase.missing) == 0 {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", testCase.name, err)
			}
			continue
		}

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", testCase.name, err)
			continue
		}
		if len(verr.MissingFields) != len(testCase.missing) {
			t.Errorf("%s: expected missing fields %v, got %v", testCase.name, testCase.missing, verr.MissingFields)
			continue
		}
		for i, f := range testCase.missing {
			if verr.MissingFields[i] != f {
				t.Errorf("%s: expected missing fields %v, got %v", testCase.name, testCase.missing, verr.MissingFields)
			}
		}
	}
}

func TestValidateSatisfaction(t *testing.T) {
	testCases := []struct {
		name  string
		raw   string
		want  int // ignored when rejected or absent
		none  bool
		valid bool
	}{
		{name: "absent", raw: "", none: true, valid: true},
		{name: "integer string", raw: "3", want: 3, valid: true},
		{name: "rounded up", raw: "3.6", want: 4, valid: true},
		{name: "rounded down", raw: "2.4", want: 2, valid: true},
		{name: "lower bound", raw: "1", want: 1, valid: true},
		{name: "upper bound", raw: "5", want: 5, valid: true},
		{name: "below range", raw: "0", valid: false},
		{name: "above range", raw: "6", valid: false},
		{name: "negative", raw: "-2", valid: false},
		{name: "not a number", raw: "great", valid: false},
		{name: "infinity", raw: "+Inf", valid: false},
		{name: "NaN", raw: "NaN", valid: false},
	}

	for _, testCase := range testCases {
		sub, err := Validate(RawSubmission{
			Title:        "t",
			Description:  "d",
			Category:     "c",
			Location:     "l",
			Satisfaction: testCase.raw,
		})
		if !testCase.valid {
			var verr *ValidationError
			if !errors.As(err, &verr) || !verr.InvalidSatisfaction {
				t.Errorf("%s: expected satisfaction rejection, got %v", testCase.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", testCase.name, err)
			continue
		}
		if testCase.none {
			if sub.Satisfaction != nil {
				t.Errorf("%s: expected no satisfaction, got %d", testCase.name, *sub.Satisfaction)
			}
			continue
		}
		if sub.Satisfaction == nil || *sub.Satisfaction != testCase.want {
			t.Errorf("%s: expected satisfaction %d, got %v", testCase.name, testCase.want, sub.Satisfaction)
		}
	}
}

func TestValidateReporter(t *testing.T) {
	sub, err := Validate(RawSubmission{
		Title: "t", Description: "d", Category: "c", Location: "l",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.ReporterId != nil {
		t.Errorf("expected anonymous submission, got reporter %q", *sub.ReporterId)
	}

	sub, err = Validate(RawSubmission{
		Title: "t", Description: "d", Category: "c", Location: "l",
		ReporterId: "student-42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.ReporterId == nil || *sub.ReporterId != "student-42" {
		t.Errorf("expected reporter student-42, got %v", sub.ReporterId)
	}
}
