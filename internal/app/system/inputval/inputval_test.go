package inputval

import (
	"errors"
	"testing"

	"github.com/dalemusser/readinglog/internal/app/system/apperr"
)

func TestValidate(t *testing.T) {
	type testInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Class string `validate:"required,nefold=Admin" label:"Assigned class"`
		Date  string `validate:"omitempty,datetime=2006-01-02" label:"Report date"`
	}

	tests := []struct {
		name       string
		input      testInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:       "valid input",
			input:      testInput{Name: "Jane", Class: "Grade 3", Date: "2024-03-05"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      testInput{Class: "Grade 3"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			input:      testInput{Name: "VeryLongNameThatExceedsLimit", Class: "Grade 3"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "reserved class",
			input:      testInput{Name: "Jane", Class: " admin "},
			wantErrors: true,
			wantFirst:  "Assigned class is reserved.",
		},
		{
			name:       "bad date",
			input:      testInput{Name: "Jane", Class: "Grade 3", Date: "03/05/2024"},
			wantErrors: true,
			wantFirst:  "Report date must be a date in YYYY-MM-DD format.",
		},
		{
			name:       "missing both",
			input:      testInput{},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v (%s)", result.HasErrors(), tt.wantErrors, result.All())
			}
			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
		if r.Err() != nil {
			t.Errorf("Err() = %v, want nil", r.Err())
		}
	})

	t.Run("two errors", func(t *testing.T) {
		r := &Result{Errors: []FieldError{{Message: "A is required."}, {Message: "B is required."}}}
		if got, want := r.All(), "A is required.; B is required."; got != want {
			t.Errorf("All() = %q, want %q", got, want)
		}
		var ve *apperr.ValidationError
		if !errors.As(r.Err(), &ve) {
			t.Fatalf("Err() = %T, want *apperr.ValidationError", r.Err())
		}
		if len(ve.Messages) != 2 {
			t.Errorf("Messages: got %d, want 2", len(ve.Messages))
		}
	})
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"6f1c2b3a-4d5e-4f60-8a9b-0c1d2e3f4a5b", true},
		{"  6f1c2b3a-4d5e-4f60-8a9b-0c1d2e3f4a5b  ", true},
		{"", false},
		{"507f1f77bcf86cd799439011", false},
		{"not-an-id", false},
	}
	for _, tt := range tests {
		if got := IsValidID(tt.id); got != tt.want {
			t.Errorf("IsValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
