package roles

import (
	"testing"
)

func validMapping() map[string]string {
	return map[string]string{
		"Group1": "1431317597147627550",
		"Group2": "1431317878266662912",
	}
}

// --- New ---

func TestNew(t *testing.T) {
	t.Run("accepts valid mapping", func(t *testing.T) {
		r, err := New(validMapping())
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		if r == nil {
			t.Fatal("registry should not be nil")
		}
	})

	t.Run("rejects empty mapping", func(t *testing.T) {
		if _, err := New(map[string]string{}); err == nil {
			t.Error("expected error for empty mapping")
		}
	})

	t.Run("rejects non-snowflake id", func(t *testing.T) {
		if _, err := New(map[string]string{"Group1": "not-a-snowflake"}); err == nil {
			t.Error("expected error for non-numeric id")
		}
	})

	t.Run("rejects too-short id", func(t *testing.T) {
		if _, err := New(map[string]string{"Group1": "123"}); err == nil {
			t.Error("expected error for short id")
		}
	})

	t.Run("rejects empty role name", func(t *testing.T) {
		if _, err := New(map[string]string{"": "1431317597147627550"}); err == nil {
			t.Error("expected error for empty role name")
		}
	})
}

// --- Lookup ---

func TestLookup(t *testing.T) {
	r, err := New(validMapping())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	t.Run("known role", func(t *testing.T) {
		id, ok := r.Lookup("Group1")
		if !ok {
			t.Fatal("expected ok=true")
		}
		if id != "1431317597147627550" {
			t.Errorf("id: expected 1431317597147627550, got %q", id)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		if _, ok := r.Lookup("Group9"); ok {
			t.Error("expected ok=false for unknown role")
		}
	})

	t.Run("lookup is case-sensitive", func(t *testing.T) {
		if _, ok := r.Lookup("group1"); ok {
			t.Error("expected ok=false for wrong case")
		}
	})
}

func TestNames(t *testing.T) {
	r, err := New(validMapping())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "Group1" || names[1] != "Group2" {
		t.Errorf("Names: expected [Group1 Group2], got %v", names)
	}
}
