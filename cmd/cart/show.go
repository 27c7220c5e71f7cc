package main

import (
	"fmt"
	"strings"

	"cartdrawer/internal/cart"

	"github.com/charmbracelet/glamour"
)

// renderCartMarkdown formats a cart as a markdown summary and renders it for
// the terminal.
func renderCartMarkdown(c *cart.Cart, currency string) (string, error) {
	var sb strings.Builder
	sb.WriteString("# Your Cart\n\n")

	if c.IsEmpty() {
		sb.WriteString("_Your cart is empty._\n")
	} else {
		sb.WriteString("| Item | Qty | Price |\n")
		sb.WriteString("|------|-----|-------|\n")
		for _, item := range c.Items {
			title := item.DisplayTitle()
			if variant := item.DisplayVariantTitle(); variant != "" {
				title += " (" + variant + ")"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n",
				title, item.Quantity, cart.FormatMoneyWith(currency, item.FinalLinePrice)))
		}
		sb.WriteString(fmt.Sprintf("\n**%d item(s)** — subtotal **%s**\n",
			c.ItemCount, cart.FormatMoneyWith(currency, c.TotalPrice)))
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Plain markdown still reads fine without a renderer.
		return sb.String(), nil
	}
	out, err := renderer.Render(sb.String())
	if err != nil {
		return sb.String(), nil
	}
	return out, nil
}
