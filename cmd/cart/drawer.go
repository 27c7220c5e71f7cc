// Package main provides the cart CLI entry point.
// This file implements the interactive drawer interface using bubbletea.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"cartdrawer/cmd/cart/config"
	"cartdrawer/cmd/cart/ui"
	"cartdrawer/internal/cart"
	appconfig "cartdrawer/internal/config"
	"cartdrawer/internal/logging"
	"cartdrawer/internal/storefront"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const drawerWidth = 46

// Background element ids outside the drawer.
const (
	variantInputID = "variant-input"
)

// drawerSurface is the rendered region the controller mutates. It implements
// cart.Surface behind a mutex so controller calls issued from command
// goroutines stay safe; the tea model reads snapshots of it on each update.
type drawerSurface struct {
	mu             sync.Mutex
	ring           *ui.FocusRing
	focused        string
	scroll         int
	open           bool
	loading        bool
	cart           *cart.Cart
	toasts         []ui.Toast
	submitLabel    string
	submitDisabled bool
}

func newDrawerSurface() *drawerSurface {
	return &drawerSurface{
		ring:        ui.NewFocusRing(nil),
		focused:     cart.DefaultTriggerID,
		submitLabel: cart.SubmitLabelIdle,
	}
}

func (d *drawerSurface) FocusedElement() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

func (d *drawerSurface) SetFocus(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focused = id
	d.ring.Focus(id)
}

func (d *drawerSurface) FirstFocusable() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ring.First()
}

func (d *drawerSurface) Contains(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == cart.DefaultTriggerID || id == variantInputID || id == cart.DrawerRootID {
		return true
	}
	return d.ring.Contains(id)
}

func (d *drawerSurface) ScrollOffset() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scroll
}

func (d *drawerSurface) SetScrollOffset(offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scroll = offset
}

func (d *drawerSurface) SetOpen(open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = open
}

func (d *drawerSurface) SetLoading(loading bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = loading
}

func (d *drawerSurface) Render(c *cart.Cart) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cart = c
	d.ring.SetItems(ui.FocusableIDs(c))
	// If focus pointed at a control of a removed line, fall back to the ring.
	if d.open && !d.ring.Contains(d.focused) {
		d.focused = d.ring.First()
	}
}

func (d *drawerSurface) ShowError(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toasts = append(d.toasts, ui.NewToast(message))
}

func (d *drawerSurface) SetSubmit(label string, disabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitLabel = label
	d.submitDisabled = disabled
}

// snapshot is a consistent copy of the surface for one render pass.
type surfaceSnapshot struct {
	focused        string
	scroll         int
	open           bool
	loading        bool
	cart           *cart.Cart
	toasts         []ui.Toast
	submitLabel    string
	submitDisabled bool
}

func (d *drawerSurface) snapshot(now time.Time) surfaceSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toasts = ui.PruneToasts(d.toasts, now)
	return surfaceSnapshot{
		focused:        d.focused,
		scroll:         d.scroll,
		open:           d.open,
		loading:        d.loading,
		cart:           d.cart,
		toasts:         append([]ui.Toast(nil), d.toasts...),
		submitLabel:    d.submitLabel,
		submitDisabled: d.submitDisabled,
	}
}

func (d *drawerSurface) focusMove(next bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var id string
	if next {
		id = d.ring.Next()
	} else {
		id = d.ring.Prev()
	}
	if id != "" {
		d.focused = id
	}
}

// Messages for tea updates
type (
	tickMsg   time.Time
	opDoneMsg struct{}
)

// drawerModel is the main model for the interactive drawer interface.
type drawerModel struct {
	ctrl    *cart.Controller
	surface *drawerSurface
	styles  ui.Styles
	profile appconfig.Profile

	page         viewport.Model
	variantInput textinput.Model
	qtyInput     textinput.Model
	spin         spinner.Model

	editingKey string
	width      int
	height     int
	ready      bool
}

// newDrawerModel wires the controller, boundary client, and widgets.
func newDrawerModel(profile appconfig.Profile, cfg config.Config) drawerModel {
	styles := ui.DefaultStyles()
	if cfg.Theme == "dark" {
		styles = ui.NewStyles(ui.DarkTheme())
	}

	storeURL := profile.StoreURL
	if cfg.StoreURL != "" {
		storeURL = cfg.StoreURL
	}
	client := storefront.NewWithConfig(storefront.Config{
		BaseURL:   storeURL,
		Timeout:   profile.Timeout(),
		UserAgent: "cartdrawer/1.0",
	})

	surface := newDrawerSurface()
	ctrl := cart.NewController(client)
	ctrl.AttachSurface(surface)

	vi := textinput.New()
	vi.Placeholder = "variant id (Enter adds 1 to cart)"
	vi.Prompt = "│ "
	vi.CharLimit = 32
	vi.Width = 40
	vi.PromptStyle = styles.Focused
	vi.Focus()

	qi := textinput.New()
	qi.Prompt = ""
	qi.CharLimit = 4
	qi.Width = 4

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent(storefrontPage(styles, storeURL))

	return drawerModel{
		ctrl:         ctrl,
		surface:      surface,
		styles:       styles,
		profile:      profile,
		page:         vp,
		variantInput: vi,
		qtyInput:     qi,
		spin:         sp,
	}
}

func (m drawerModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		tick(),
		m.fetchCmd(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m drawerModel) fetchCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, _ = ctrl.FetchCart(context.Background())
		return opDoneMsg{}
	}
}

func (m drawerModel) addCmd(values url.Values) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, _ = ctrl.SubmitAddForm(context.Background(), values)
		return opDoneMsg{}
	}
}

func (m drawerModel) stepCmd(key, raw string, delta int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, _ = ctrl.StepQuantity(context.Background(), key, raw, delta)
		return opDoneMsg{}
	}
}

func (m drawerModel) commitCmd(key, raw string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, _ = ctrl.CommitQuantity(context.Background(), key, raw)
		return opDoneMsg{}
	}
}

func (m drawerModel) removeCmd(key string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, _ = ctrl.RemoveItem(context.Background(), key)
		return opDoneMsg{}
	}
}

func (m drawerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.page.Width = msg.Width
		m.page.Height = msg.Height - 6
		m.ready = true
		return m, nil

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case opDoneMsg:
		// Controller already rendered into the surface; sync scroll pin.
		snap := m.surface.snapshot(time.Now())
		m.page.SetYOffset(snap.scroll)
		return m, nil

	case tea.MouseMsg:
		// A click on the page region left of the drawer is the overlay
		// click: it forces the drawer closed.
		if msg.Action == tea.MouseActionPress &&
			m.ctrl.State() == cart.StateOpen &&
			msg.X < m.width-drawerWidth {
			m.ctrl.Close()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m drawerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	open := m.ctrl.State() == cart.StateOpen

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.editingKey != "" {
			m.editingKey = ""
			m.qtyInput.Blur()
			return m, nil
		}
		if open {
			m.ctrl.Close()
			snap := m.surface.snapshot(time.Now())
			m.page.SetYOffset(snap.scroll)
			return m, nil
		}
		return m, tea.Quit
	}

	if !open {
		return m.handlePageKey(msg)
	}
	return m.handleDrawerKey(msg)
}

// handlePageKey drives the background storefront page: variant entry and the
// open trigger.
func (m drawerModel) handlePageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+o":
		m.ctrl.Open()
		return m, nil
	case "ctrl+r":
		return m, m.fetchCmd()
	case "enter":
		raw := strings.TrimSpace(m.variantInput.Value())
		if raw == "" {
			return m, nil
		}
		snap := m.surface.snapshot(time.Now())
		if snap.submitDisabled {
			return m, nil
		}
		m.variantInput.SetValue("")
		values := url.Values{}
		values.Set("id", raw)
		values.Set("quantity", "1")
		return m, m.addCmd(values)
	}

	var cmd tea.Cmd
	m.variantInput, cmd = m.variantInput.Update(msg)
	return m, cmd
}

// handleDrawerKey constrains input to the open drawer: Tab cycling across the
// focus ring and activation of the focused control.
func (m drawerModel) handleDrawerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingKey != "" {
		switch msg.String() {
		case "enter":
			raw := m.qtyInput.Value()
			key := m.editingKey
			m.editingKey = ""
			m.qtyInput.Blur()
			return m, m.commitCmd(key, raw)
		default:
			var cmd tea.Cmd
			m.qtyInput, cmd = m.qtyInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "tab":
		m.surface.focusMove(true)
		return m, nil
	case "shift+tab":
		m.surface.focusMove(false)
		return m, nil
	case "ctrl+r":
		return m, m.fetchCmd()
	case "enter", " ":
		return m.activateFocused()
	}
	return m, nil
}

// activateFocused dispatches the focused control.
func (m drawerModel) activateFocused() (tea.Model, tea.Cmd) {
	snap := m.surface.snapshot(time.Now())
	kind, key := ui.SplitControlID(snap.focused)
	raw := m.lineQuantity(snap.cart, key)

	switch kind {
	case ui.ControlDecrement:
		return m, m.stepCmd(key, raw, -1)
	case ui.ControlIncrement:
		return m, m.stepCmd(key, raw, +1)
	case ui.ControlRemove:
		return m, m.removeCmd(key)
	case ui.ControlQuantity:
		m.editingKey = key
		m.qtyInput.SetValue(raw)
		m.qtyInput.Focus()
		return m, textinput.Blink
	case ui.ControlCheckout:
		m.surface.ShowError("Checkout happens on the storefront site")
		return m, nil
	}
	return m, nil
}

// lineQuantity reads the current value of the quantity field adjacent to the
// activated stepper control.
func (m drawerModel) lineQuantity(c *cart.Cart, key string) string {
	if c == nil {
		return ""
	}
	for _, item := range c.Items {
		if item.Key == key {
			return strconv.Itoa(item.Quantity)
		}
	}
	return ""
}

func (m drawerModel) View() string {
	if !m.ready {
		return "Loading storefront..."
	}

	now := time.Now()
	snap := m.surface.snapshot(now)

	header := m.renderHeader(snap)
	body := m.page.View()
	footer := m.renderFooter(snap)

	if snap.open {
		panel := ui.RenderPanel(m.styles, snap.cart, drawerWidth, snap.focused, m.profile.Currency)
		pageWidth := m.width - drawerWidth
		if pageWidth < 0 {
			pageWidth = 0
		}
		left := lipgloss.NewStyle().Width(pageWidth).MaxWidth(pageWidth).Render(body)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, panel)
	}

	sections := []string{header, body}
	for _, t := range snap.toasts {
		if view := t.Render(m.styles, now); view != "" {
			sections = append(sections, view)
		}
	}
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (m drawerModel) renderHeader(snap surfaceSnapshot) string {
	title := m.styles.Header.Render("cartdrawer")
	badge := ui.Badge(m.styles, cartItemCount(snap.cart))
	if badge == "" {
		return title
	}
	return title + " " + badge
}

func (m drawerModel) renderFooter(snap surfaceSnapshot) string {
	if snap.loading {
		return m.styles.Footer.Render(m.spin.View() + " updating cart...")
	}
	if m.editingKey != "" {
		return m.styles.Footer.Render("quantity: " + m.qtyInput.View() + "  (Enter to apply, Esc to cancel)")
	}
	if snap.open {
		return m.styles.Footer.Render("Tab/Shift+Tab cycle · Enter activate · Esc close")
	}
	submit := snap.submitLabel
	if snap.submitDisabled {
		submit = m.styles.Muted.Render(submit)
	} else {
		submit = m.styles.Success.Render(submit)
	}
	return m.styles.Footer.Render(m.variantInput.View()+"  "+submit) + "\n" +
		m.styles.Footer.Render("Ctrl+O open cart · Ctrl+R refresh · Esc quit")
}

func cartItemCount(c *cart.Cart) int {
	if c == nil {
		return 0
	}
	return c.ItemCount
}

// storefrontPage renders the static page behind the drawer.
func storefrontPage(s ui.Styles, storeURL string) string {
	var sb strings.Builder
	sb.WriteString(s.Title.Render("Storefront"))
	sb.WriteString("\n\n")
	if storeURL == "" {
		sb.WriteString(s.Error.Render("No store configured."))
		sb.WriteString("\n")
		sb.WriteString(s.Muted.Render("Set store_url in .cart/storefront.yaml or CARTDRAWER_STORE_URL."))
	} else {
		sb.WriteString(s.Body.Render(fmt.Sprintf("Connected to %s", storeURL)))
		sb.WriteString("\n")
		sb.WriteString(s.Muted.Render("Type a variant id below and press Enter to add it to your cart."))
	}
	return sb.String()
}

// runDrawer starts the interactive drawer program.
func runDrawer() error {
	workspace, err := workspaceDir()
	if err != nil {
		return err
	}
	if err := logging.Initialize(workspace); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer logging.CloseAll()

	cfg, _ := config.Load()
	profilePath := appconfig.ProfilePath(workspace)
	profile, err := appconfig.LoadProfile(profilePath)
	if err != nil {
		return err
	}

	model := newDrawerModel(profile, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Profile edits trigger an external refresh request.
	watcher, err := appconfig.WatchProfile(profilePath, func(appconfig.Profile) {
		model.ctrl.RequestRefresh(context.Background())
		program.Send(opDoneMsg{})
	})
	if err == nil {
		defer watcher.Close()
	} else {
		logging.ConfigError("profile watch unavailable: %v", err)
	}

	logging.Session("interactive drawer started")
	_, err = program.Run()
	return err
}
