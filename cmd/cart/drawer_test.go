package main

import (
	"strings"
	"testing"
	"time"

	"cartdrawer/cmd/cart/config"
	"cartdrawer/internal/cart"
	appconfig "cartdrawer/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

func testModel() drawerModel {
	m := newDrawerModel(appconfig.Profile{
		StoreURL:       "https://shop.example.com",
		Currency:       "$",
		TimeoutSeconds: 1,
	}, config.DefaultConfig())
	m.width = 120
	m.height = 40
	m.ready = true
	return m
}

func testCart() *cart.Cart {
	return &cart.Cart{
		ItemCount:  1,
		TotalPrice: 1050,
		Items: []cart.LineItem{
			{Key: "abc123", VariantID: 7, Quantity: 1, ProductTitle: "Mug", FinalLinePrice: 1050},
		},
	}
}

func TestSurfaceRenderRebuildsFocusRing(t *testing.T) {
	surface := newDrawerSurface()
	surface.SetOpen(true)
	surface.Render(testCart())

	if got := surface.FirstFocusable(); got != "dec:abc123" {
		t.Fatalf("expected first focusable dec:abc123, got %q", got)
	}
	if !surface.Contains("remove:abc123") {
		t.Fatal("expected line controls present")
	}

	// Re-render without the line: focus on a removed control falls back.
	surface.SetFocus("qty:abc123")
	surface.Render(&cart.Cart{ItemCount: 0})
	if surface.FirstFocusable() != "" {
		t.Fatal("empty cart has no focusables")
	}
}

func TestSurfaceContainsBackgroundElements(t *testing.T) {
	surface := newDrawerSurface()
	for _, id := range []string{cart.DefaultTriggerID, variantInputID, cart.DrawerRootID} {
		if !surface.Contains(id) {
			t.Fatalf("expected background element %q present", id)
		}
	}
	if surface.Contains("inc:nope") {
		t.Fatal("unknown control must not be present")
	}
}

func TestTabCyclesFocusInsideOpenDrawer(t *testing.T) {
	m := testModel()
	m.surface.Render(testCart())
	m.ctrl.Open()

	focusables := m.surface.ring.Len()
	first := m.surface.FocusedElement()

	for i := 0; i < focusables; i++ {
		next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(drawerModel)
	}
	if got := m.surface.FocusedElement(); got != first {
		t.Fatalf("expected %d tabs to cycle back to %q, got %q", focusables, first, got)
	}

	prev, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = prev.(drawerModel)
	if got := m.surface.FocusedElement(); got == first {
		t.Fatal("shift+tab from first should wrap to last")
	}
}

func TestEscapeClosesOpenDrawer(t *testing.T) {
	m := testModel()
	m.surface.Render(testCart())
	m.surface.SetScrollOffset(7)
	m.ctrl.Open()

	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(drawerModel)
	if m.ctrl.State() != cart.StateClosed {
		t.Fatal("expected escape to close the drawer")
	}
	if got := m.surface.ScrollOffset(); got != 7 {
		t.Fatalf("expected scroll restored to 7, got %d", got)
	}
}

func TestOverlayClickClosesDrawer(t *testing.T) {
	m := testModel()
	m.ctrl.Open()

	next, _ := m.Update(tea.MouseMsg{
		Action: tea.MouseActionPress,
		X:      3, // well left of the drawer edge
	})
	m = next.(drawerModel)
	if m.ctrl.State() != cart.StateClosed {
		t.Fatal("expected overlay click to close the drawer")
	}
}

func TestClickInsideDrawerKeepsItOpen(t *testing.T) {
	m := testModel()
	m.ctrl.Open()

	next, _ := m.Update(tea.MouseMsg{
		Action: tea.MouseActionPress,
		X:      m.width - 5,
	})
	m = next.(drawerModel)
	if m.ctrl.State() != cart.StateOpen {
		t.Fatal("click inside the drawer must not close it")
	}
}

func TestActivateQuantityFieldStartsEditing(t *testing.T) {
	m := testModel()
	m.surface.Render(testCart())
	m.ctrl.Open()
	m.surface.SetFocus("qty:abc123")

	next, _ := m.activateFocused()
	m = next.(drawerModel)
	if m.editingKey != "abc123" {
		t.Fatalf("expected quantity edit for abc123, got %q", m.editingKey)
	}
	if got := m.qtyInput.Value(); got != "1" {
		t.Fatalf("expected current quantity prefilled, got %q", got)
	}
}

func TestViewShowsDrawerOnlyWhenOpen(t *testing.T) {
	m := testModel()
	m.surface.Render(testCart())

	closed := m.View()
	if strings.Contains(closed, "Your Cart") {
		t.Fatal("drawer panel must be hidden while closed")
	}

	m.ctrl.Open()
	open := m.View()
	if !strings.Contains(open, "Your Cart") {
		t.Fatal("drawer panel must be visible while open")
	}
}

func TestSnapshotPrunesExpiredToasts(t *testing.T) {
	surface := newDrawerSurface()
	surface.ShowError("Sold out")

	snap := surface.snapshot(time.Now())
	if len(snap.toasts) != 1 {
		t.Fatalf("expected live toast, got %d", len(snap.toasts))
	}

	late := time.Now().Add(10 * time.Second)
	snap = surface.snapshot(late)
	if len(snap.toasts) != 0 {
		t.Fatalf("expected expired toast pruned, got %d", len(snap.toasts))
	}
}
