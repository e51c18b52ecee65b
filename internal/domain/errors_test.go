package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("create user: %w", Conflict("email already registered"))

	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict kind, got %v", KindOf(err))
	}
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected IsKind to match through wrapping")
	}
	if IsKind(err, KindNotFound) {
		t.Fatalf("IsKind matched the wrong kind")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("plain errors must map to internal")
	}
	if IsKind(nil, KindInternal) {
		t.Fatalf("nil is not an error of any kind")
	}
}
