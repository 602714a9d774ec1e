package employee

import (
	"testing"
)

func TestFindDuplicateCandidates(t *testing.T) {
	t.Parallel()

	manual := &Employee{ID: "a", FirstName: "Colin", LastName: "Christian", Origin: OriginManual}
	onboarded := &Employee{ID: "b", FirstName: "Colin", LastName: "Prafullchandra Christian", Origin: "onboarding"}
	initial := &Employee{ID: "c", FirstName: "Brian", LastName: "N"}
	full := &Employee{ID: "d", FirstName: "Brian", LastName: "Nguyen", Origin: "Google Form"}
	unrelated := &Employee{ID: "e", FirstName: "Anna", LastName: "Christian"}
	retired := &Employee{ID: "f", FirstName: "Colin", LastName: "Christian", Status: StatusTerminated}

	pairs := FindDuplicateCandidates([]*Employee{manual, onboarded, initial, full, unrelated, retired})

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d: %+v", len(pairs), pairs)
	}

	got := map[string]string{}
	for _, p := range pairs {
		got[p.Keep.ID] = p.Duplicate.ID
		if p.Keep.IsRetired() || p.Duplicate.IsRetired() {
			t.Fatalf("retired employees must not be paired")
		}
	}
	if got["b"] != "a" {
		t.Errorf("expected onboarding record b to be kept over a, got %v", got)
	}
	if got["d"] != "c" {
		t.Errorf("expected d to be kept over c, got %v", got)
	}
}

func TestFindDuplicateCandidates_EachEmployeeOnce(t *testing.T) {
	t.Parallel()

	pairs := FindDuplicateCandidates([]*Employee{
		{ID: "1", FirstName: "Jo", LastName: "Park"},
		{ID: "2", FirstName: "Jo", LastName: "Park"},
		{ID: "3", FirstName: "Jo", LastName: "Park"},
	})

	if len(pairs) != 1 {
		t.Fatalf("expected a single pair, got %+v", pairs)
	}
	if pairs[0].Keep.ID != "1" || pairs[0].Duplicate.ID != "2" {
		t.Fatalf("unexpected pair ordering: keep=%s dup=%s", pairs[0].Keep.ID, pairs[0].Duplicate.ID)
	}
}
