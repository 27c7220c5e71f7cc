package ui

import (
	"fmt"
	"strings"

	"cartdrawer/internal/cart"
)

// Control id conventions inside the drawer. Each per-line control is tagged
// with the owning line's key, mirroring the attribute-driven triggers of the
// markup contract.
const (
	ControlDecrement = "dec"
	ControlQuantity  = "qty"
	ControlIncrement = "inc"
	ControlRemove    = "remove"
	ControlCheckout  = "checkout"
)

// ControlID builds a control id bound to a line key.
func ControlID(kind, key string) string {
	return kind + ":" + key
}

// SplitControlID splits a control id into kind and line key. The key is ""
// for controls that are not bound to a line.
func SplitControlID(id string) (kind, key string) {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return id, ""
}

// FocusableIDs returns the ordered focusable elements of the drawer for the
// given cart: per line the quantity stepper (decrement, field, increment) and
// remove control, then the checkout control. An empty cart has no focusables.
func FocusableIDs(c *cart.Cart) []string {
	if c.IsEmpty() {
		return nil
	}
	ids := make([]string, 0, len(c.Items)*4+1)
	for _, item := range c.Items {
		ids = append(ids,
			ControlID(ControlDecrement, item.Key),
			ControlID(ControlQuantity, item.Key),
			ControlID(ControlIncrement, item.Key),
			ControlID(ControlRemove, item.Key),
		)
	}
	return append(ids, ControlCheckout)
}

// Badge renders a count badge, hidden (empty string) when the count is 0.
func Badge(s Styles, count int) string {
	if count == 0 {
		return ""
	}
	return s.Badge.Render(fmt.Sprintf("%d", count))
}

// RenderPanel projects a cart onto the drawer panel. It is a pure function of
// its inputs: the whole items region is replaced on every call, with no
// incremental diffing. A nil cart renders the empty state.
func RenderPanel(s Styles, c *cart.Cart, width int, focused string, currency string) string {
	if width < 20 {
		width = 20
	}
	inner := width - 6 // drawer border + padding

	var sb strings.Builder

	title := "Your Cart"
	if badge := Badge(s, cartCount(c)); badge != "" {
		title += " " + badge
	}
	sb.WriteString(s.Title.Render(title))
	sb.WriteString("\n")
	sb.WriteString(s.RenderDivider(inner))
	sb.WriteString("\n")

	if c.IsEmpty() {
		// Empty-state region; the content region below is not rendered.
		sb.WriteString(s.Muted.Render("Your cart is empty."))
		sb.WriteString("\n")
		sb.WriteString(s.Subtitle.Render("Add something from the storefront to get started."))
		sb.WriteString("\n")
	} else {
		for _, item := range c.Items {
			sb.WriteString(renderLine(s, item, focused, currency))
			sb.WriteString(s.RenderDivider(inner))
			sb.WriteString("\n")
		}
		sb.WriteString(s.Body.Render("Subtotal: "))
		sb.WriteString(s.Price.Render(cart.FormatMoneyWith(currency, c.TotalPrice)))
		sb.WriteString("\n")
		sb.WriteString(renderControl(s, ControlCheckout, "[ Checkout ]", focused))
		sb.WriteString("\n")
	}

	return s.Drawer.Width(width - 2).Render(strings.TrimRight(sb.String(), "\n"))
}

func cartCount(c *cart.Cart) int {
	if c == nil {
		return 0
	}
	return c.ItemCount
}

// renderLine draws one line item block: image slug, titles, price, and the
// stepper/remove controls bound to the line's key.
func renderLine(s Styles, item cart.LineItem, focused string, currency string) string {
	var sb strings.Builder

	sb.WriteString(s.Muted.Render(imageSlug(item)))
	sb.WriteString(" ")
	sb.WriteString(s.Body.Render(item.DisplayTitle()))
	sb.WriteString("\n")
	if variant := item.DisplayVariantTitle(); variant != "" {
		sb.WriteString(s.Subtitle.Render("  " + variant))
		sb.WriteString("\n")
	}

	sb.WriteString("  ")
	sb.WriteString(renderControl(s, ControlID(ControlDecrement, item.Key), "[-]", focused))
	sb.WriteString(" ")
	sb.WriteString(renderControl(s, ControlID(ControlQuantity, item.Key), fmt.Sprintf("%d", item.Quantity), focused))
	sb.WriteString(" ")
	sb.WriteString(renderControl(s, ControlID(ControlIncrement, item.Key), "[+]", focused))
	sb.WriteString("   ")
	sb.WriteString(renderControl(s, ControlID(ControlRemove, item.Key), "[remove]", focused))
	sb.WriteString("   ")
	sb.WriteString(s.Price.Render(cart.FormatMoneyWith(currency, item.FinalLinePrice)))
	sb.WriteString("\n")

	return sb.String()
}

// imageSlug stands in for the line's thumbnail: the sized image URL basename,
// or a placeholder when the line has no image.
func imageSlug(item cart.LineItem) string {
	if item.Image == "" {
		return "[no image]"
	}
	resized := cart.ResizedImage(item.Image, "small")
	if i := strings.LastIndexByte(resized, '/'); i >= 0 {
		resized = resized[i+1:]
	}
	if i := strings.IndexByte(resized, '?'); i >= 0 {
		resized = resized[:i]
	}
	return "[" + resized + "]"
}

func renderControl(s Styles, id, label string, focused string) string {
	if id == focused {
		return s.Focused.Render(label)
	}
	return s.Control.Render(label)
}
