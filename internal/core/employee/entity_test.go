package employee

import (
	"errors"
	"testing"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	got, err := ParseSource(" Onboarding ")
	if err != nil || got != SourceOnboarding {
		t.Fatalf("ParseSource = %q, %v; want onboarding", got, err)
	}

	if _, err := ParseSource("payroll"); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}
}

func TestEmployee_Validate(t *testing.T) {
	t.Parallel()

	if err := (&Employee{FirstName: "Ana", Status: StatusActive}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&Employee{FirstName: " ", Status: StatusActive}).Validate(); !errors.Is(err, ErrInvalidFirstName) {
		t.Fatalf("expected ErrInvalidFirstName, got %v", err)
	}
	if err := (&Employee{FirstName: "Ana", Status: "Retired"}).Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
