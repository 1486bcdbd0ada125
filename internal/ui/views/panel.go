// Package views renders one console per panel. Panels only read the latest
// snapshot of their subscription; filtering, sorting and layout happen here.
package views

import (
	"fmt"
	"strings"

	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

// limitStep is how much + and - move the limit option
const limitStep = 10

// Panel is a console-backed table
type Panel interface {
	ID() models.ConsoleID
	Title() string
	Subscription() *console.Subscription

	Filter() string
	SetFilter(text string)
	// CycleMode steps the panel's secondary filter. It reports false when
	// the panel has none.
	CycleMode() bool
	// ToggleTags flips tag display. It reports false when the panel has no tags.
	ToggleTags() bool
	// NextLimit returns the limit option value after moving it by steps. It
	// reports false when the panel has no limit or the value would not change.
	NextLimit(steps int) (int, bool)

	CycleSort()
	ToggleSortDir()
	Scroll(delta int)
	PageSize() int
	ScrollTop()
	ScrollBottom()

	SetSize(width, height int)
	// Refresh rebuilds the rows from the subscription's current snapshot
	Refresh()
	View() string
	Status() string
}

// base carries what every panel shares. Panels embed it and supply rows.
type base struct {
	id     models.ConsoleID
	title  string
	sub    *console.Subscription
	table  *Table
	filter string

	// limit option support; defaultLimit is what the engine uses when unset
	hasLimit     bool
	defaultLimit int

	rows func(console.Snapshot) ([]Row, bool)
}

func (b *base) ID() models.ConsoleID                { return b.id }
func (b *base) Title() string                       { return b.title }
func (b *base) Subscription() *console.Subscription { return b.sub }
func (b *base) Filter() string                      { return b.filter }
func (b *base) CycleMode() bool                     { return false }
func (b *base) ToggleTags() bool                    { return false }
func (b *base) CycleSort()                          { b.table.CycleSort() }
func (b *base) ToggleSortDir()                      { b.table.ToggleSortDir() }
func (b *base) Scroll(delta int)                    { b.table.Scroll(delta) }
func (b *base) PageSize() int                       { return b.table.PageSize() }
func (b *base) ScrollTop()                          { b.table.ScrollTop() }
func (b *base) ScrollBottom()                       { b.table.ScrollBottom() }
func (b *base) View() string                        { return b.table.View() }

func (b *base) SetFilter(text string) {
	b.filter = strings.TrimSpace(text)
	b.Refresh()
}

func (b *base) SetSize(width, height int) {
	b.table.SetSize(width, height)
}

func (b *base) Refresh() {
	rows, ok := b.rows(b.sub.CurrentSnapshot())
	b.table.SetRows(rows, ok)
}

// limit returns the effective limit, 0 meaning unlimited
func (b *base) limit() int {
	if n := intOption(b.sub.Options()["limit"]); n > 0 {
		return n
	}
	return b.defaultLimit
}

func (b *base) NextLimit(steps int) (int, bool) {
	if !b.hasLimit {
		return 0, false
	}
	cur := b.limit()
	next := max(cur+steps*limitStep, 0)
	if b.defaultLimit > 0 {
		// unset would fall back to the default, so never go below one step
		next = max(next, limitStep)
	}
	if next == cur {
		return 0, false
	}
	return next, true
}

// status joins the common status fields with panel specific ones
func (b *base) status(extra ...string) string {
	parts := []string{fmt.Sprintf("%d rows", len(b.table.Rows()))}
	if b.filter != "" {
		parts = append(parts, "filter: "+b.filter)
	}
	parts = append(parts, extra...)
	if b.hasLimit {
		if n := b.limit(); n > 0 {
			parts = append(parts, fmt.Sprintf("limit: %d", n))
		} else {
			parts = append(parts, "limit: all")
		}
	}
	if label := b.table.SortLabel(); label != "" {
		parts = append(parts, "sort: "+label)
	}
	return strings.Join(parts, "  ")
}

func (b *base) Status() string {
	return b.status()
}

// intOption reads a numeric option that may have been restored from YAML or
// JSON as any numeric type
func intOption(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case uint64:
		return int(n)
	}
	return 0
}

// All builds the six console panels over their subscriptions, in tab order
func All(subs map[models.ConsoleID]*console.Subscription) []Panel {
	return []Panel{
		NewRoutesPanel(subs[models.ConsoleRoute]),
		NewRestPanel(subs[models.ConsoleRest]),
		NewMetricsPanel(subs[models.ConsoleMicrometer]),
		NewInflightPanel(subs[models.ConsoleInflight]),
		NewEventsPanel(subs[models.ConsoleEvent]),
		NewVariablesPanel(subs[models.ConsoleVariables]),
	}
}

// PanelConsoles lists the consoles backing panels, in tab order
var PanelConsoles = []models.ConsoleID{
	models.ConsoleRoute,
	models.ConsoleRest,
	models.ConsoleMicrometer,
	models.ConsoleInflight,
	models.ConsoleEvent,
	models.ConsoleVariables,
}
