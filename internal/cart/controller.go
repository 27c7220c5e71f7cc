package cart

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"cartdrawer/internal/logging"
)

// State is the drawer's explicit open/closed state.
type State int

const (
	// StateClosed is the initial drawer state.
	StateClosed State = iota
	// StateOpen means the drawer panel is visible and holds focus.
	StateOpen
)

// Well-known surface element ids. The surface supplies the concrete elements;
// the controller only addresses them by id, and degrades to a no-op when the
// surface is missing (a page without the full markup contract).
const (
	// DrawerRootID is the focus fallback when the drawer has no focusable
	// elements.
	DrawerRootID = "cart-drawer"
	// DefaultTriggerID receives focus on close when the previously focused
	// element no longer exists.
	DefaultTriggerID = "cart-toggle"
)

// Submit control labels used while an add-form submission is in flight.
const (
	SubmitLabelIdle = "Add to cart"
	SubmitLabelBusy = "Adding..."
)

// genericErrorMessage is shown when the boundary gives no usable description.
const genericErrorMessage = "Unable to update your cart. Please try again."

// API is the cart HTTP boundary consumed by the controller. It is a fixed
// third-party contract; implementations live in internal/storefront.
type API interface {
	// GetCart fetches the authoritative cart.
	GetCart(ctx context.Context) (*Cart, error)
	// AddItem adds quantity of a variant. The response body is ignored; the
	// controller always follows up with GetCart.
	AddItem(ctx context.Context, variantID int64, quantity int, properties map[string]string) error
	// ChangeItem sets the quantity of the line identified by key. Quantity 0
	// removes the line. Returns the resulting cart.
	ChangeItem(ctx context.Context, key string, quantity int) (*Cart, error)
}

// Surface is the rendered region the controller mutates: the drawer panel,
// its focusable elements, the page scroll position, and the transient error
// channel. A nil Surface makes every visual operation a silent no-op.
type Surface interface {
	// FocusedElement returns the id of the currently focused element, or "".
	FocusedElement() string
	// SetFocus moves focus to the element with the given id.
	SetFocus(id string)
	// FirstFocusable returns the first focusable element inside the drawer,
	// or "" when there is none.
	FirstFocusable() string
	// Contains reports whether an element with the given id still exists.
	Contains(id string) bool
	// ScrollOffset returns the current page scroll offset.
	ScrollOffset() int
	// SetScrollOffset restores the page scroll offset.
	SetScrollOffset(offset int)
	// SetOpen applies or removes the drawer's visual-open markers.
	SetOpen(open bool)
	// SetLoading toggles the loading indicator in lockstep with the request
	// guard.
	SetLoading(loading bool)
	// Render replaces the whole panel projection with the given cart.
	Render(c *Cart)
	// ShowError surfaces a transient, non-blocking error notification.
	ShowError(message string)
	// SetSubmit disables/relabels the add-form submit control.
	SetSubmit(label string, disabled bool)
}

// Controller mediates between user interaction, the cart HTTP boundary, and
// the drawer surface. Construct exactly one per page at load time; it holds
// all drawer UI state and no long-lived cart contents.
type Controller struct {
	api API
	bus *Bus

	mu          sync.Mutex
	surface     Surface
	state       State
	updating    bool
	lastFocused string
	scrollPin   int
}

// NewController creates a controller over the given boundary. The surface is
// attached separately so a page lacking the markup contract still gets a
// functional (no-op rendering) controller.
func NewController(api API) *Controller {
	return &Controller{api: api, bus: NewBus()}
}

// AttachSurface binds the rendered drawer region. Passing nil detaches it.
func (c *Controller) AttachSurface(s Surface) {
	c.mu.Lock()
	c.surface = s
	c.mu.Unlock()
}

// Events returns the controller's notification bus.
func (c *Controller) Events() *Bus {
	return c.bus
}

// State returns the current drawer state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Updating reports whether a mutating request is in flight.
func (c *Controller) Updating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updating
}

// Toggle opens a closed drawer and closes an open one.
func (c *Controller) Toggle() {
	if c.State() == StateOpen {
		c.Close()
		return
	}
	c.Open()
}

// Open transitions the drawer to StateOpen. It records the focused element
// and scroll offset for restoration on Close, applies the visual-open
// markers, pins the page scroll, and moves focus into the drawer. Calling
// Open on an open drawer is a no-op.
func (c *Controller) Open() {
	c.mu.Lock()
	if c.state == StateOpen {
		c.mu.Unlock()
		return
	}
	c.state = StateOpen
	s := c.surface
	if s != nil {
		c.lastFocused = s.FocusedElement()
		c.scrollPin = s.ScrollOffset()
	}
	c.mu.Unlock()

	if s == nil {
		return
	}
	s.SetOpen(true)
	s.SetScrollOffset(0)
	if first := s.FirstFocusable(); first != "" {
		s.SetFocus(first)
	} else {
		s.SetFocus(DrawerRootID)
	}
	logging.Drawer("drawer opened")
}

// Close transitions the drawer to StateClosed, unlocks scroll back to the
// offset captured at Open time, and restores focus to the previously focused
// element if it still exists, else the default trigger. Calling Close on a
// closed drawer is a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	s := c.surface
	restoreFocus := c.lastFocused
	restoreScroll := c.scrollPin
	c.mu.Unlock()

	if s == nil {
		return
	}
	s.SetOpen(false)
	s.SetScrollOffset(restoreScroll)
	if restoreFocus != "" && s.Contains(restoreFocus) {
		s.SetFocus(restoreFocus)
	} else {
		s.SetFocus(DefaultTriggerID)
	}
	logging.Drawer("drawer closed")
}

// beginMutation acquires the single in-flight-request guard. It returns false
// when another mutating call is outstanding; the caller must then drop the
// operation without side effects.
func (c *Controller) beginMutation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updating {
		return false
	}
	c.updating = true
	if c.surface != nil {
		c.surface.SetLoading(true)
	}
	return true
}

// endMutation releases the guard unconditionally.
func (c *Controller) endMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updating = false
	if c.surface != nil {
		c.surface.SetLoading(false)
	}
}

func (c *Controller) currentSurface() Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

func (c *Controller) render(crt *Cart) {
	if s := c.currentSurface(); s != nil {
		s.Render(crt)
	}
}

func (c *Controller) showError(message string) {
	if s := c.currentSurface(); s != nil {
		s.ShowError(message)
	}
}

// errorMessage extracts the boundary's human-readable description, falling
// back to the generic message.
func errorMessage(err error) string {
	var be *BoundaryError
	if errors.As(err, &be) && be.Description != "" {
		return be.Description
	}
	return genericErrorMessage
}

// FetchCart fetches the authoritative cart and re-renders the panel from it.
// It returns nil on failure without touching the panel. Fetches are not
// mutations and bypass the request guard.
func (c *Controller) FetchCart(ctx context.Context) (*Cart, error) {
	crt, err := c.api.GetCart(ctx)
	if err != nil {
		logging.APIError("fetch cart failed: %v", err)
		return nil, err
	}
	c.render(crt)
	return crt, nil
}

// AddItem posts an add for the variant, then forces a follow-up fetch so the
// rendered state comes from the authoritative cart, opens the drawer, and
// publishes EventItemAdded. Quantity is clamped to at least 1. A call made
// while another mutation is in flight is silently dropped and returns
// (nil, nil). On failure a transient error is shown and the drawer state is
// left unchanged.
func (c *Controller) AddItem(ctx context.Context, variantID int64, quantity int, properties map[string]string) (*Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	if !c.beginMutation() {
		logging.Drawer("add dropped: request already in flight")
		return nil, nil
	}
	defer c.endMutation()

	if err := c.api.AddItem(ctx, variantID, quantity, properties); err != nil {
		logging.APIError("add item %d failed: %v", variantID, err)
		c.showError(errorMessage(err))
		return nil, err
	}

	crt, err := c.api.GetCart(ctx)
	if err != nil {
		logging.APIError("post-add fetch failed: %v", err)
		c.showError(genericErrorMessage)
		return nil, err
	}

	c.render(crt)
	c.Open()
	c.bus.Publish(Event{Kind: EventItemAdded, VariantID: variantID, Quantity: quantity, Cart: crt})
	return crt, nil
}

// UpdateItem sets the quantity of a line. Quantity 0 removes the line.
// Negative quantities are clamped to 0. The panel is re-rendered from the
// response and EventCartUpdated is published. A call made while another
// mutation is in flight is silently dropped and returns (nil, nil).
func (c *Controller) UpdateItem(ctx context.Context, key string, quantity int) (*Cart, error) {
	if quantity < 0 {
		quantity = 0
	}
	if !c.beginMutation() {
		logging.Drawer("update dropped: request already in flight")
		return nil, nil
	}
	defer c.endMutation()

	crt, err := c.api.ChangeItem(ctx, key, quantity)
	if err != nil {
		logging.APIError("change %s -> %d failed: %v", key, quantity, err)
		c.showError(errorMessage(err))
		return nil, err
	}

	c.render(crt)
	c.bus.Publish(Event{Kind: EventCartUpdated, Cart: crt})
	return crt, nil
}

// RemoveItem removes the line identified by key.
func (c *Controller) RemoveItem(ctx context.Context, key string) (*Cart, error) {
	return c.UpdateItem(ctx, key, 0)
}

// RequestRefresh re-fetches the cart on behalf of an external collaborator
// (for example a store profile reload).
func (c *Controller) RequestRefresh(ctx context.Context) {
	if _, err := c.FetchCart(ctx); err != nil {
		logging.Drawer("external refresh failed: %v", err)
	}
}

// SubmitAddForm handles submission of an add-to-cart form. It extracts the
// variant id from "id", the quantity from "quantity" (default 1 when absent
// or unparsable), and any "properties[<name>]" fields, and disables and
// relabels the submit control for the duration of the call.
func (c *Controller) SubmitAddForm(ctx context.Context, values url.Values) (*Cart, error) {
	variantID, err := strconv.ParseInt(strings.TrimSpace(values.Get("id")), 10, 64)
	if err != nil {
		logging.Drawer("add form ignored: bad variant id %q", values.Get("id"))
		return nil, nil
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(values.Get("quantity")))
	if err != nil || quantity < 1 {
		quantity = 1
	}

	properties := make(map[string]string)
	for field := range values {
		name, ok := propertyName(field)
		if !ok {
			continue
		}
		properties[name] = values.Get(field)
	}

	if s := c.currentSurface(); s != nil {
		s.SetSubmit(SubmitLabelBusy, true)
		defer s.SetSubmit(SubmitLabelIdle, false)
	}
	return c.AddItem(ctx, variantID, quantity, properties)
}

// propertyName extracts <name> from a "properties[<name>]" form field.
func propertyName(field string) (string, bool) {
	const prefix = "properties["
	if !strings.HasPrefix(field, prefix) || !strings.HasSuffix(field, "]") {
		return "", false
	}
	name := field[len(prefix) : len(field)-1]
	return name, name != ""
}

// StepQuantity handles an increment/decrement control: it reads the current
// value of the adjacent quantity field (default 1 when unparsable), applies
// the delta, clamps at zero, and calls UpdateItem.
func (c *Controller) StepQuantity(ctx context.Context, key, raw string, delta int) (*Cart, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		quantity = 1
	}
	quantity += delta
	if quantity < 0 {
		quantity = 0
	}
	return c.UpdateItem(ctx, key, quantity)
}

// CommitQuantity handles direct numeric entry in a quantity field. Unparsable
// or negative input does not invoke the update at all.
func (c *Controller) CommitQuantity(ctx context.Context, key, raw string) (*Cart, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || quantity < 0 {
		return nil, nil
	}
	return c.UpdateItem(ctx, key, quantity)
}
