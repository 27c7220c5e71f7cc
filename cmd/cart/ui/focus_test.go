package ui

import "testing"

func TestFocusRingCyclesForward(t *testing.T) {
	ring := NewFocusRing([]string{"a", "b", "c"})
	if ring.Current() != "a" {
		t.Fatalf("expected initial focus a, got %q", ring.Current())
	}

	// N tabs from the first element return to the first (cyclic).
	for i := 0; i < ring.Len(); i++ {
		ring.Next()
	}
	if ring.Current() != "a" {
		t.Fatalf("expected wrap back to a after %d tabs, got %q", ring.Len(), ring.Current())
	}
}

func TestFocusRingWrapsBackward(t *testing.T) {
	ring := NewFocusRing([]string{"a", "b", "c"})
	if got := ring.Prev(); got != "c" {
		t.Fatalf("shift+tab from first should wrap to last, got %q", got)
	}
}

func TestFocusRingEmptySuppressed(t *testing.T) {
	ring := NewFocusRing(nil)
	if got := ring.Next(); got != "" {
		t.Fatalf("expected suppressed tab on empty ring, got %q", got)
	}
	if got := ring.Prev(); got != "" {
		t.Fatalf("expected suppressed shift+tab on empty ring, got %q", got)
	}
	if ring.Current() != "" || ring.First() != "" {
		t.Fatal("empty ring has no current or first element")
	}
}

func TestFocusRingSetItemsKeepsFocus(t *testing.T) {
	ring := NewFocusRing([]string{"a", "b", "c"})
	ring.Next() // b

	ring.SetItems([]string{"b", "c", "d"})
	if ring.Current() != "b" {
		t.Fatalf("expected focus kept on b, got %q", ring.Current())
	}

	ring.SetItems([]string{"x", "y"})
	if ring.Current() != "x" {
		t.Fatalf("expected focus reset to first when element vanished, got %q", ring.Current())
	}
}

func TestFocusRingFocus(t *testing.T) {
	ring := NewFocusRing([]string{"a", "b"})
	if !ring.Focus("b") {
		t.Fatal("expected focus to find b")
	}
	if ring.Focus("missing") {
		t.Fatal("expected focus to reject unknown id")
	}
	if ring.Current() != "b" {
		t.Fatalf("focus should be unchanged after rejected move, got %q", ring.Current())
	}
}
