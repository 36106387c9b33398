package testfixtures

import "testing"

func TestIDGenerator_SequentialIdentifiers(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("court")
	if got := gen.Next(); got != "court-1" {
		t.Fatalf("expected court-1, got %s", got)
	}
	if got := gen.Next(); got != "court-2" {
		t.Fatalf("expected court-2, got %s", got)
	}
}

func TestIDGenerator_EmptyPrefixDefault(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("")
	if got := gen.Next(); got != "booking-1" {
		t.Fatalf("expected booking-1, got %s", got)
	}
}

func TestIDGenerator_NextFuncOnNilGenerator(t *testing.T) {
	t.Parallel()

	var gen *IDGenerator
	next := gen.NextFunc()
	if next == nil || next() != "" {
		t.Fatal("expected an empty-string fallback")
	}
}
