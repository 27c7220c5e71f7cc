// Package cart holds the cart domain model and the drawer controller.
// Cart and LineItem are ephemeral view models: they are rebuilt from the
// storefront's JSON response on every fetch and never cached across calls.
package cart

import (
	"fmt"
	"strings"
)

// DefaultVariantTitle is the platform sentinel for single-variant products.
// A variant title equal to it is suppressed in rendering.
const DefaultVariantTitle = "Default Title"

// Cart is the authoritative cart state as returned by the storefront.
type Cart struct {
	ItemCount  int        `json:"item_count"`
	TotalPrice int64      `json:"total_price"` // minor currency units
	Items      []LineItem `json:"items"`       // server order, never reordered locally
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return c == nil || c.ItemCount == 0
}

// LineItem is one entry in the cart. Key is stable across quantity updates of
// the same line and changes when the variant or properties change.
type LineItem struct {
	Key            string            `json:"key"`
	VariantID      int64             `json:"variant_id"`
	Quantity       int               `json:"quantity"`
	Title          string            `json:"title"`
	ProductTitle   string            `json:"product_title"`
	VariantTitle   string            `json:"variant_title"`
	FinalLinePrice int64             `json:"final_line_price"` // minor units, quantity-multiplied
	Image          string            `json:"image"`
	URL            string            `json:"url"`
	Properties     map[string]string `json:"properties"`
}

// DisplayTitle returns the product title, falling back to the line title.
func (li LineItem) DisplayTitle() string {
	if li.ProductTitle != "" {
		return li.ProductTitle
	}
	return li.Title
}

// DisplayVariantTitle returns the variant title, or "" when it is the
// platform sentinel and should not be shown.
func (li LineItem) DisplayVariantTitle() string {
	if li.VariantTitle == DefaultVariantTitle {
		return ""
	}
	return li.VariantTitle
}

// FormatMoneyWith renders an amount in minor units with the given currency
// prefix. FormatMoneyWith("$", 1050) == "$10.50".
func FormatMoneyWith(prefix string, cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, prefix, cents/100, cents%100)
}

// FormatMoney renders an amount in minor units with a dollar prefix.
func FormatMoney(cents int64) string {
	return FormatMoneyWith("$", cents)
}

// ResizedImage rewrites an image URL to a sized rendition by inserting a size
// token before the file extension, preserving any query string.
// ResizedImage("https://cdn/p.jpg?v=1", "small") == "https://cdn/p_small.jpg?v=1".
// An empty URL returns "".
func ResizedImage(url, size string) string {
	if url == "" || size == "" {
		return url
	}
	base, query := url, ""
	if i := strings.IndexByte(url, '?'); i >= 0 {
		base, query = url[:i], url[i:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= strings.LastIndexByte(base, '/') {
		// No extension to anchor the token on.
		return url
	}
	return base[:dot] + "_" + size + base[dot:] + query
}

// BoundaryError is a failure reported by the cart HTTP boundary with a
// human-readable description suitable for a toast.
type BoundaryError struct {
	StatusCode  int
	Description string
}

func (e *BoundaryError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("cart boundary: %s (status %d)", e.Description, e.StatusCode)
	}
	return fmt.Sprintf("cart boundary: status %d", e.StatusCode)
}
