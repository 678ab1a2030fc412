package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseRequestID(t *testing.T) {
	generated := NewRequestID()

	parsed, err := ParseRequestID("  " + generated.String() + " ")
	if err != nil {
		t.Fatalf("Expected generated request ID to parse, got %v", err)
	}
	if parsed != generated {
		t.Errorf("Expected %s, got %s", generated, parsed)
	}

	for _, bad := range []string{"", "   ", "not-a-uuid"} {
		if _, err := ParseRequestID(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	err := NewModelNotFoundError("FUSCA")
	if !IsModelNotFound(err) || !IsNotFoundError(err) {
		t.Errorf("Expected model-not-found to also be a not-found error: %v", err)
	}

	cause := errors.New("open casco.csv: no such file")
	err = NewSourceUnavailableError("policy_h1", "casco.csv", cause)
	if !IsSourceUnavailable(err) {
		t.Errorf("Expected source-unavailable error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Expected underlying cause to be preserved: %v", err)
	}

	if !IsNotRegistered(NewNotRegisteredError("nope")) {
		t.Error("Expected not-registered error")
	}
}
