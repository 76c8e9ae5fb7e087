package duckdb

import "testing"

func TestRequestKeyNormalizes(t *testing.T) {
	a := RequestKey("Quantum  Computing", "for biologists")
	b := RequestKey("  quantum computing ", "For Biologists")
	if a != b {
		t.Fatalf("expected equal keys, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", a)
	}
	if RequestKey("Go", "") == RequestKey("Go", "beginners") {
		t.Fatalf("description must change the key")
	}
}
