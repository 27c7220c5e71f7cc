package ui

import (
	"strings"
	"testing"

	"cartdrawer/internal/cart"
)

func sampleCart() *cart.Cart {
	return &cart.Cart{
		ItemCount:  2,
		TotalPrice: 4000,
		Items: []cart.LineItem{
			{
				Key:            "abc123",
				VariantID:      40912345,
				Quantity:       2,
				ProductTitle:   "Shirt",
				VariantTitle:   "Large",
				FinalLinePrice: 4000,
				Image:          "https://cdn.example.com/shirt.jpg",
				URL:            "/products/shirt",
			},
		},
	}
}

func TestRenderPanelEmptyState(t *testing.T) {
	styles := NewStyles(LightTheme())

	// Regardless of prior renders, a zero-count cart shows the empty-state
	// region and no content region.
	out := RenderPanel(styles, &cart.Cart{ItemCount: 0}, 46, "", "$")
	if !strings.Contains(out, "Your cart is empty.") {
		t.Fatalf("expected empty state, got:\n%s", out)
	}
	if strings.Contains(out, "Subtotal") {
		t.Fatalf("content region must be hidden for empty cart, got:\n%s", out)
	}

	nilOut := RenderPanel(styles, nil, 46, "", "$")
	if !strings.Contains(nilOut, "Your cart is empty.") {
		t.Fatalf("nil cart renders empty state, got:\n%s", nilOut)
	}
}

func TestRenderPanelContent(t *testing.T) {
	styles := NewStyles(LightTheme())
	out := RenderPanel(styles, sampleCart(), 46, "", "$")

	for _, want := range []string{"Shirt", "Large", "$40.00", "[-]", "[+]", "[remove]", "Checkout"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in panel, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Your cart is empty.") {
		t.Fatal("empty-state region must be hidden when cart has items")
	}
	// Badge carries the item count.
	if !strings.Contains(out, "2") {
		t.Fatalf("expected badge count in panel, got:\n%s", out)
	}
}

func TestRenderPanelSuppressesDefaultVariantTitle(t *testing.T) {
	styles := NewStyles(LightTheme())
	c := sampleCart()
	c.Items[0].VariantTitle = cart.DefaultVariantTitle

	out := RenderPanel(styles, c, 46, "", "$")
	if strings.Contains(out, cart.DefaultVariantTitle) {
		t.Fatalf("sentinel variant title must be suppressed, got:\n%s", out)
	}
}

func TestRenderPanelImagePlaceholder(t *testing.T) {
	styles := NewStyles(LightTheme())
	c := sampleCart()

	out := RenderPanel(styles, c, 46, "", "$")
	if !strings.Contains(out, "shirt_small.jpg") {
		t.Fatalf("expected resized image slug, got:\n%s", out)
	}

	c.Items[0].Image = ""
	out = RenderPanel(styles, c, 46, "", "$")
	if !strings.Contains(out, "[no image]") {
		t.Fatalf("expected placeholder for missing image, got:\n%s", out)
	}
}

func TestRenderPanelCurrencyPrefix(t *testing.T) {
	styles := NewStyles(LightTheme())
	out := RenderPanel(styles, sampleCart(), 46, "", "€")
	if !strings.Contains(out, "€40.00") {
		t.Fatalf("expected subtotal in profile currency, got:\n%s", out)
	}
}

func TestBadgeHiddenAtZero(t *testing.T) {
	styles := NewStyles(LightTheme())
	if got := Badge(styles, 0); got != "" {
		t.Fatalf("badge must be hidden at 0, got %q", got)
	}
	if got := Badge(styles, 3); !strings.Contains(got, "3") {
		t.Fatalf("expected count in badge, got %q", got)
	}
}

func TestFocusableIDsOrder(t *testing.T) {
	c := sampleCart()
	ids := FocusableIDs(c)
	want := []string{"dec:abc123", "qty:abc123", "inc:abc123", "remove:abc123", "checkout"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d focusables, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("focusable %d = %q, want %q", i, ids[i], want[i])
		}
	}

	if got := FocusableIDs(&cart.Cart{}); got != nil {
		t.Fatalf("empty cart has no focusables, got %v", got)
	}
}

func TestSplitControlID(t *testing.T) {
	kind, key := SplitControlID("inc:abc123")
	if kind != ControlIncrement || key != "abc123" {
		t.Fatalf("unexpected split: %q %q", kind, key)
	}
	kind, key = SplitControlID("checkout")
	if kind != ControlCheckout || key != "" {
		t.Fatalf("unexpected split: %q %q", kind, key)
	}
}
