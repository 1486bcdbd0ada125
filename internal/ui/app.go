package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/lazycamel/lazycamel/internal/config"
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/gateway"
	"github.com/lazycamel/lazycamel/internal/models"
	"github.com/lazycamel/lazycamel/internal/state"
	"github.com/lazycamel/lazycamel/internal/ui/keys"
	"github.com/lazycamel/lazycamel/internal/ui/styles"
	"github.com/lazycamel/lazycamel/internal/ui/views"
)

const (
	dialTimeout   = 10 * time.Second
	remoteTimeout = 5 * time.Second
	updateBuffer  = 64
	sideWidth     = 28
)

// AppMode represents the current mode of the application
type AppMode int

const (
	ModeNormal AppMode = iota
	ModeHelp
	ModeFilter
)

// App is the main application model
type App struct {
	// Configuration
	config   *config.Config
	endpoint models.EndpointProfile
	initial  *state.State
	logger   *slog.Logger
	mockMode bool

	// UI state
	mode   AppMode
	width  int
	height int
	active int

	// Keys
	keys keys.KeyMap

	// Sub-models
	filterInput  textinput.Model
	filterBefore string

	// Connection
	ctx        context.Context
	cancel     context.CancelFunc
	conn       *gateway.ConnectedMsg
	connecting bool
	lastErr    string

	// One subscription per console, panels read from them
	subs   map[models.ConsoleID]*console.Subscription
	panels []views.Panel
	health *console.Subscription

	// Remote calls per console, in key order. Activations still queued or
	// running for a console are cancelled when its panel unmounts.
	queues   map[models.ConsoleID]*opQueue
	inflight map[models.ConsoleID][]context.CancelFunc

	// Subscription hooks post the console id here; waitForSnapshot drains it
	updates chan models.ConsoleID
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, uiState *state.State, endpoint models.EndpointProfile, mockMode bool, logger *slog.Logger) *App {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 100

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		config:      cfg,
		endpoint:    endpoint,
		initial:     uiState,
		logger:      logger,
		mockMode:    mockMode,
		mode:        ModeNormal,
		keys:        keys.DefaultKeyMap(),
		filterInput: ti,
		ctx:         ctx,
		cancel:      cancel,
		subs:        make(map[models.ConsoleID]*console.Subscription),
		queues:      make(map[models.ConsoleID]*opQueue),
		inflight:    make(map[models.ConsoleID][]context.CancelFunc),
		updates:     make(chan models.ConsoleID, updateBuffer),
	}
	for i, id := range views.PanelConsoles {
		if id == uiState.ActivePanel {
			app.active = i
		}
	}
	return app
}

// GetState returns the current UI state for persistence
func (a *App) GetState() *state.State {
	st := state.DefaultState()
	if !a.mockMode {
		st.Endpoint = a.endpoint.Name
	}
	st.ActivePanel = views.PanelConsoles[a.active]
	if len(a.panels) == 0 {
		st.Filters = a.initial.Filters
		st.Options = a.initial.Options
		return st
	}
	for _, p := range a.panels {
		if f := p.Filter(); f != "" {
			st.Filters[p.ID()] = f
		}
		if opts := p.Subscription().Options(); len(opts) > 0 {
			st.Options[p.ID()] = opts
		}
	}
	return st
}

// Close deactivates every subscription and releases the connection
func (a *App) Close() {
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	for _, sub := range a.subs {
		sub.Deactivate(ctx)
	}
	if a.conn != nil && a.conn.Close != nil {
		a.conn.Close()
	}
}

// SnapshotMsg is sent when a console subscription has new data
type SnapshotMsg struct {
	ID models.ConsoleID
}

// ActivatedMsg is sent when a subscription activation completes
type ActivatedMsg struct {
	ID  models.ConsoleID
	Err error
}

// RefreshTickMsg triggers a periodic redraw so ages and states stay current
type RefreshTickMsg struct{}

// optionSetMsg is sent after an option update went out
type optionSetMsg struct {
	ID models.ConsoleID
}

// connectionLostMsg reports that a specific connection dropped
type connectionLostMsg struct {
	conn *gateway.ConnectedMsg
	err  string
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.connect(), a.waitForSnapshot(), a.scheduleRefresh())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateViewportSizes()

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case gateway.ConnectedMsg:
		a.connecting = false
		a.lastErr = ""
		a.attach(msg)
		cmds = append(cmds, a.activate(a.health))
		if p := a.activePanel(); p != nil {
			cmds = append(cmds, a.activate(p.Subscription()))
		}
		if msg.Done != nil {
			cmds = append(cmds, a.watchConnection(a.conn))
		}

	case gateway.DisconnectedMsg:
		a.connecting = false
		a.lastErr = msg.Error
		a.logger.Warn("connection failed", "endpoint", a.endpoint.URL, "err", msg.Error)

	case connectionLostMsg:
		if msg.conn == a.conn {
			a.conn = nil
			a.lastErr = msg.err
			a.logger.Warn("connection lost", "err", msg.err)
		}

	case ActivatedMsg:
		// errors of panels already switched away from are not shown
		if a.mounted(msg.ID) {
			switch {
			case msg.Err == nil:
				a.lastErr = ""
			case console.IsSuperseded(msg.Err):
			default:
				a.lastErr = msg.Err.Error()
			}
		}
		if p := a.panelFor(msg.ID); p != nil {
			p.Refresh()
		}

	case SnapshotMsg:
		if p := a.panelFor(msg.ID); p != nil {
			p.Refresh()
		}
		cmds = append(cmds, a.waitForSnapshot())

	case optionSetMsg:
		if p := a.panelFor(msg.ID); p != nil {
			p.Refresh()
		}

	case RefreshTickMsg:
		cmds = append(cmds, a.scheduleRefresh())
	}

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Handle help mode
	if a.mode == ModeHelp {
		if key.Matches(msg, a.keys.Escape) || key.Matches(msg, a.keys.Help) || msg.String() == "q" {
			a.mode = ModeNormal
		}
		return nil
	}

	p := a.activePanel()

	// Handle filter mode, the panel follows every keystroke
	if a.mode == ModeFilter {
		switch {
		case key.Matches(msg, a.keys.Escape):
			a.mode = ModeNormal
			a.filterInput.Blur()
			if p != nil {
				p.SetFilter(a.filterBefore)
			}
			return nil
		case key.Matches(msg, a.keys.Enter):
			a.mode = ModeNormal
			a.filterInput.Blur()
			return nil
		}
		var cmd tea.Cmd
		a.filterInput, cmd = a.filterInput.Update(msg)
		if p != nil {
			p.SetFilter(a.filterInput.Value())
		}
		return cmd
	}

	// Normal mode keybindings
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
		return nil

	case key.Matches(msg, a.keys.Reload):
		return a.reload()

	case key.Matches(msg, a.keys.Tab):
		return a.switchTo((a.active + 1) % len(views.PanelConsoles))

	case key.Matches(msg, a.keys.ShiftTab):
		return a.switchTo((a.active + len(views.PanelConsoles) - 1) % len(views.PanelConsoles))
	}

	for i, b := range a.keys.Tabs() {
		if key.Matches(msg, b) {
			return a.switchTo(i)
		}
	}

	if p == nil {
		return nil
	}

	switch {
	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		a.filterBefore = p.Filter()
		a.filterInput.SetValue(p.Filter())
		a.filterInput.CursorEnd()
		a.filterInput.Focus()
		return textinput.Blink

	case key.Matches(msg, a.keys.Sort):
		p.CycleSort()
	case key.Matches(msg, a.keys.SortDir):
		p.ToggleSortDir()
	case key.Matches(msg, a.keys.Mode):
		p.CycleMode()
	case key.Matches(msg, a.keys.Tags):
		p.ToggleTags()

	case key.Matches(msg, a.keys.LimitUp):
		if v, ok := p.NextLimit(1); ok {
			return a.setOption(p, "limit", v)
		}
	case key.Matches(msg, a.keys.LimitDown):
		if v, ok := p.NextLimit(-1); ok {
			return a.setOption(p, "limit", v)
		}

	case key.Matches(msg, a.keys.Up):
		p.Scroll(-1)
	case key.Matches(msg, a.keys.Down):
		p.Scroll(1)
	case key.Matches(msg, a.keys.PageUp):
		p.Scroll(-p.PageSize())
	case key.Matches(msg, a.keys.PageDown):
		p.Scroll(p.PageSize())
	case key.Matches(msg, a.keys.Home):
		p.ScrollTop()
	case key.Matches(msg, a.keys.End):
		p.ScrollBottom()
	}
	return nil
}

// attach builds the subscriptions and panels for a fresh connection. Options
// and filters carry over from the previous connection, or from the saved
// state on first connect.
func (a *App) attach(msg gateway.ConnectedMsg) {
	if a.conn != nil && a.conn.Close != nil {
		a.conn.Close()
	}
	a.conn = &msg

	filters := a.initial.Filters
	if len(a.panels) > 0 {
		filters = make(map[models.ConsoleID]string)
		for _, p := range a.panels {
			filters[p.ID()] = p.Filter()
		}
	}

	for _, cancels := range a.inflight {
		for _, cancel := range cancels {
			cancel()
		}
	}
	a.inflight = make(map[models.ConsoleID][]context.CancelFunc)
	a.queues = make(map[models.ConsoleID]*opQueue)

	old := a.subs
	a.subs = make(map[models.ConsoleID]*console.Subscription)
	ids := append([]models.ConsoleID{models.ConsoleHealth}, views.PanelConsoles...)
	for _, id := range ids {
		opts := a.initial.OptionsFor(id)
		if prev, ok := old[id]; ok {
			opts = prev.Options()
		}
		a.subs[id] = console.New(msg.Transport, id, opts,
			console.WithOnChange(a.notify(id)),
			console.WithLogger(a.logger),
		)
		a.queues[id] = &opQueue{}
	}
	a.health = a.subs[models.ConsoleHealth]
	a.panels = views.All(a.subs)
	for _, p := range a.panels {
		if f := filters[p.ID()]; f != "" {
			p.SetFilter(f)
		}
	}
	a.updateViewportSizes()
	a.logger.Info("connected", "endpoint", msg.Endpoint, "url", msg.URL, "namespace", msg.Namespace)
}

// notify returns the subscription hook for a console. It never blocks; a
// full buffer only means a redraw is already pending.
func (a *App) notify(id models.ConsoleID) func(console.Snapshot) {
	return func(console.Snapshot) {
		select {
		case a.updates <- id:
		default:
		}
	}
}

func (a *App) activePanel() views.Panel {
	if a.active < 0 || a.active >= len(a.panels) {
		return nil
	}
	return a.panels[a.active]
}

// mounted reports whether a console is currently shown: the active panel's
// or the health console behind the badge
func (a *App) mounted(id models.ConsoleID) bool {
	if id == models.ConsoleHealth {
		return true
	}
	p := a.activePanel()
	return p != nil && p.ID() == id
}

func (a *App) panelFor(id models.ConsoleID) views.Panel {
	for _, p := range a.panels {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// switchTo unmounts the current panel and mounts panel i
func (a *App) switchTo(i int) tea.Cmd {
	if i == a.active {
		return nil
	}
	prev := a.activePanel()
	a.active = i
	next := a.activePanel()
	if prev == nil || next == nil {
		return nil
	}
	next.Refresh()
	return tea.Batch(a.unmount(prev.Subscription()), a.activate(next.Subscription()))
}

func (a *App) reload() tea.Cmd {
	if a.conn == nil {
		if a.connecting {
			return nil
		}
		return a.connect()
	}
	cmds := []tea.Cmd{a.activate(a.health)}
	if p := a.activePanel(); p != nil {
		cmds = append(cmds, a.activate(p.Subscription()))
	}
	return tea.Batch(cmds...)
}

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	// Help overlay
	if a.mode == ModeHelp {
		return a.renderHelp()
	}

	// Main layout
	return a.renderMainLayout()
}

func (a *App) layout() (rightWidth, contentHeight, tableHeight int) {
	rightWidth = a.width - sideWidth - 4 // Account for borders
	contentHeight = a.height - 4         // Account for bottom bar and borders
	if a.mode == ModeFilter {
		contentHeight--
	}
	tableHeight = contentHeight - 3 // tabs and status line
	return max(rightWidth, 20), max(contentHeight, 5), max(tableHeight, 2)
}

func (a *App) renderMainLayout() string {
	rightWidth, contentHeight, _ := a.layout()

	sidePane := a.renderSidePane(sideWidth, contentHeight)
	panelPane := a.renderPanelPane(rightWidth, contentHeight)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidePane, panelPane)

	bottomBar := a.renderBottomBar()

	if a.mode == ModeFilter {
		return lipgloss.JoinVertical(lipgloss.Left, mainContent, a.renderFilterBar(), bottomBar)
	}
	return lipgloss.JoinVertical(lipgloss.Left, mainContent, bottomBar)
}

func (a *App) renderSidePane(width, height int) string {
	style := styles.PaneBorder.Width(width).Height(height)

	var lines []string
	lines = append(lines, styles.TitleStyle.Render("Endpoint"))

	name, url, ns := a.endpoint.Name, a.endpoint.URL, a.endpoint.Namespace
	if a.conn != nil {
		name, url, ns = a.conn.Endpoint, a.conn.URL, a.conn.Namespace
	} else if a.mockMode {
		name, url, ns = "Mock Engine", "in-process", gateway.DefaultNamespace
	}
	lines = append(lines, a.getStatusBadge()+" "+truncate(name, width-8))
	lines = append(lines, styles.Muted.Render(truncate(url, width-2)))
	lines = append(lines, styles.LabelKey.Render("ns ")+styles.LabelValue.Render(truncate(ns, width-5)))
	if a.lastErr != "" {
		lines = append(lines, "")
		for _, l := range wrapText(a.lastErr, width-2) {
			lines = append(lines, styles.ToneError.Render(l))
		}
	}

	lines = append(lines, styles.HelpSection.Render("Health"))
	health := a.healthStatus()
	if !health.Known {
		lines = append(lines, styles.Muted.Render("waiting for report"))
	}
	for _, c := range health.Checks {
		dot := styles.StatusOK.Render("●")
		if c.State != "UP" {
			dot = styles.StatusDown.Render("●")
		}
		lines = append(lines, dot+" "+truncate(c.ID, width-4))
	}

	if p := a.activePanel(); p != nil {
		sub := p.Subscription()
		lines = append(lines, styles.HelpSection.Render("Subscription"))
		lines = append(lines, styles.LabelKey.Render("state   ")+styles.LabelValue.Render(sub.State().String()))
		if snap := sub.CurrentSnapshot(); !snap.Empty() {
			lines = append(lines, styles.LabelKey.Render("updated ")+styles.LabelValue.Render(humanize.Time(snap.ReceivedAt)))
		}
		if err := sub.Err(); err != nil {
			for _, l := range wrapText(err.Error(), width-2) {
				lines = append(lines, styles.ToneWarn.Render(l))
			}
		}
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (a *App) renderPanelPane(width, height int) string {
	style := styles.FocusedPaneBorder.Width(width).Height(height)

	tabs := a.renderTabs()
	p := a.activePanel()
	if p == nil {
		msg := "Connecting..."
		if !a.connecting {
			msg = "Not connected, press r to retry"
		}
		return style.Render(lipgloss.JoinVertical(lipgloss.Left, tabs, "", styles.Muted.Render(msg)))
	}

	status := styles.Muted.Render(truncate(p.Status(), width-2))
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, tabs, p.View(), status))
}

func (a *App) renderTabs() string {
	var tabs []string
	for i, b := range a.keys.Tabs() {
		h := b.Help()
		label := h.Key + " " + h.Desc
		if i == a.active {
			tabs = append(tabs, styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderBottomBar() string {
	hints := []string{
		styles.HintKey.Render("q") + styles.HintDesc.Render(":quit"),
		styles.HintKey.Render("?") + styles.HintDesc.Render(":help"),
		styles.HintKey.Render("1-6") + styles.HintDesc.Render(":panels"),
		styles.HintKey.Render("/") + styles.HintDesc.Render(":filter"),
		styles.HintKey.Render("s/S") + styles.HintDesc.Render(":sort"),
		styles.HintKey.Render("m") + styles.HintDesc.Render(":mode"),
		styles.HintKey.Render("+/-") + styles.HintDesc.Render(":limit"),
		styles.HintKey.Render("r") + styles.HintDesc.Render(":reload"),
	}

	return styles.BottomBar.Width(a.width).Render(lipgloss.JoinHorizontal(lipgloss.Left, joinWithSeparator(hints, "  ")...))
}

func (a *App) renderFilterBar() string {
	prompt := styles.InputPrompt.Render("Filter: ")
	return prompt + a.filterInput.View()
}

func (a *App) renderHelp() string {
	help := styles.HelpTitle.Render("lazycamel Help") + "\n"

	sections := []string{"Navigation", "Panels", "Filtering", "Table"}
	for i, group := range a.keys.FullHelp() {
		help += "\n" + styles.HelpSection.Render(sections[i]) + "\n"
		for _, b := range group {
			h := b.Help()
			help += fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc)
		}
	}
	help += "\n" + styles.Muted.Render("Press esc or ? to close")

	// Center the help overlay
	overlay := styles.HelpOverlay.Render(help)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlay)
}

func (a *App) healthStatus() views.HealthStatus {
	if a.health == nil {
		return views.HealthStatus{}
	}
	return views.ReadHealth(a.health.CurrentSnapshot())
}

func (a *App) getStatusBadge() string {
	if a.conn == nil {
		if a.lastErr != "" {
			return styles.StatusDown.Render("[DOWN]")
		}
		return styles.StatusDegraded.Render("[...]")
	}
	if h := a.healthStatus(); h.Known && (!h.Up || len(h.Failing()) > 0) {
		return styles.StatusDegraded.Render("[WARN]")
	}
	return styles.StatusOK.Render("[OK]")
}

func (a *App) updateViewportSizes() {
	rightWidth, _, tableHeight := a.layout()
	for _, p := range a.panels {
		p.SetSize(rightWidth-2, tableHeight)
	}
}

func (a *App) connect() tea.Cmd {
	a.connecting = true
	a.lastErr = ""
	if a.mockMode {
		interval, logger := a.config.Mock.UpdateInterval, a.logger
		return func() tea.Msg {
			return gateway.ConnectMock(interval, logger)
		}
	}
	ctx, ep, logger := a.ctx, a.endpoint, a.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		return gateway.Connect(ctx, ep, logger)
	}
}

func (a *App) watchConnection(conn *gateway.ConnectedMsg) tea.Cmd {
	return func() tea.Msg {
		<-conn.Done
		reason := "connection closed"
		if err := conn.Err(); err != nil {
			reason = err.Error()
		}
		return connectionLostMsg{conn: conn, err: reason}
	}
}

func (a *App) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		id, ok := <-a.updates
		if !ok {
			return nil
		}
		return SnapshotMsg{ID: id}
	}
}

// activate queues an Activate behind the console's earlier calls
func (a *App) activate(sub *console.Subscription) tea.Cmd {
	id := sub.ID()
	ctx, cancel := context.WithCancel(a.ctx)
	a.inflight[id] = append(a.inflight[id], cancel)
	return a.queue(id).enqueue(func() tea.Msg {
		defer cancel()
		if ctx.Err() != nil {
			// unmounted before it got its turn
			return nil
		}
		err := sub.Activate(ctx)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return ActivatedMsg{ID: id, Err: err}
	})
}

// unmount stops a panel's subscription. Pending activations are cancelled at
// once; the teardown itself runs after them so it can never overtake a
// later mount's Activate.
func (a *App) unmount(sub *console.Subscription) tea.Cmd {
	id := sub.ID()
	for _, cancel := range a.inflight[id] {
		cancel()
	}
	delete(a.inflight, id)

	ctx := a.ctx
	return a.queue(id).enqueue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
		defer cancel()
		sub.Deactivate(ctx)
		sub.Reset()
		return nil
	})
}

// setOption applies the change locally right away, so the next key press
// sees it, and queues the push to the remote side
func (a *App) setOption(p views.Panel, name string, value any) tea.Cmd {
	sub := p.Subscription()
	sub.SetLocalOption(name, value)
	p.Refresh()

	ctx := a.ctx
	return a.queue(sub.ID()).enqueue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
		defer cancel()
		sub.PushOptions(ctx)
		return optionSetMsg{ID: sub.ID()}
	})
}

func (a *App) queue(id models.ConsoleID) *opQueue {
	q, ok := a.queues[id]
	if !ok {
		q = &opQueue{}
		a.queues[id] = q
	}
	return q
}

func (a *App) scheduleRefresh() tea.Cmd {
	interval := time.Duration(a.config.UI.RefreshMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return RefreshTickMsg{}
	})
}

// Helper functions

// truncate truncates a string to max length with ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to fit within maxWidth
func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}

	var lines []string
	currentLine := ""
	for _, word := range strings.Fields(text) {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

func joinWithSeparator(items []string, sep string) []string {
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}
