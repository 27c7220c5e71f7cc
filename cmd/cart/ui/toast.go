package ui

import (
	"time"

	"github.com/google/uuid"
)

// Toast timing: an entrance transition, a fixed visible window, then an exit
// transition after which the toast is removed entirely.
const (
	ToastEnter   = 50 * time.Millisecond
	ToastVisible = 3 * time.Second
	ToastExit    = 300 * time.Millisecond
)

// ToastPhase is a toast's position in its lifecycle.
type ToastPhase int

const (
	ToastPhaseEntering ToastPhase = iota
	ToastPhaseVisible
	ToastPhaseExiting
	ToastPhaseGone
)

// Toast is a transient, announced notification. It is appended on creation
// and removed once its exit transition completes.
type Toast struct {
	ID      string
	Message string
	Born    time.Time
}

// NewToast creates a toast born now.
func NewToast(message string) Toast {
	return Toast{
		ID:      uuid.NewString(),
		Message: message,
		Born:    time.Now(),
	}
}

// Phase returns the toast's lifecycle phase at the given instant.
func (t Toast) Phase(now time.Time) ToastPhase {
	age := now.Sub(t.Born)
	switch {
	case age < ToastEnter:
		return ToastPhaseEntering
	case age < ToastEnter+ToastVisible:
		return ToastPhaseVisible
	case age < ToastEnter+ToastVisible+ToastExit:
		return ToastPhaseExiting
	default:
		return ToastPhaseGone
	}
}

// Render draws the toast for the given instant. Gone toasts render as "".
// The message carries an alert prefix so screen-reader-style consumers can
// announce it.
func (t Toast) Render(s Styles, now time.Time) string {
	switch t.Phase(now) {
	case ToastPhaseGone:
		return ""
	case ToastPhaseEntering, ToastPhaseExiting:
		return s.Toast.Faint(true).Render("⚠ " + t.Message)
	default:
		return s.Toast.Render("⚠ " + t.Message)
	}
}

// PruneToasts drops toasts whose exit transition has completed.
func PruneToasts(toasts []Toast, now time.Time) []Toast {
	kept := toasts[:0]
	for _, t := range toasts {
		if t.Phase(now) != ToastPhaseGone {
			kept = append(kept, t)
		}
	}
	return kept
}
