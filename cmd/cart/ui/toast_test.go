package ui

import (
	"strings"
	"testing"
	"time"
)

func TestToastLifecycle(t *testing.T) {
	toast := NewToast("Sold out")
	born := toast.Born

	if got := toast.Phase(born); got != ToastPhaseEntering {
		t.Fatalf("expected entering at birth, got %v", got)
	}
	if got := toast.Phase(born.Add(ToastEnter + time.Second)); got != ToastPhaseVisible {
		t.Fatalf("expected visible mid-life, got %v", got)
	}
	if got := toast.Phase(born.Add(ToastEnter + ToastVisible + 100*time.Millisecond)); got != ToastPhaseExiting {
		t.Fatalf("expected exiting after visible window, got %v", got)
	}
	if got := toast.Phase(born.Add(ToastEnter + ToastVisible + ToastExit + time.Millisecond)); got != ToastPhaseGone {
		t.Fatalf("expected gone after exit transition, got %v", got)
	}
}

func TestToastRender(t *testing.T) {
	styles := NewStyles(LightTheme())
	toast := NewToast("Sold out")

	visible := toast.Render(styles, toast.Born.Add(ToastEnter+time.Second))
	if !strings.Contains(visible, "Sold out") {
		t.Fatalf("expected message in render, got %q", visible)
	}

	gone := toast.Render(styles, toast.Born.Add(ToastEnter+ToastVisible+ToastExit+time.Second))
	if gone != "" {
		t.Fatalf("expected gone toast to render empty, got %q", gone)
	}
}

func TestPruneToasts(t *testing.T) {
	now := time.Now()
	fresh := Toast{ID: "1", Message: "fresh", Born: now}
	stale := Toast{ID: "2", Message: "stale", Born: now.Add(-ToastEnter - ToastVisible - ToastExit - time.Second)}

	kept := PruneToasts([]Toast{fresh, stale}, now)
	if len(kept) != 1 || kept[0].ID != "1" {
		t.Fatalf("expected only fresh toast kept, got %v", kept)
	}
}
