package views

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/dustin/go-humanize"
	"github.com/lazycamel/lazycamel/internal/ui/styles"
)

const noData = "No data available"

// Column describes a table column. A zero Width makes the column take the
// space the fixed columns leave over.
type Column struct {
	Title string
	Width int
	Right bool
}

// Tone picks the style of a whole row
type Tone int

const (
	ToneNormal Tone = iota
	ToneMuted
	ToneWarn
	ToneError
)

// Row is one table row. Values holds the sort key of each cell; a nil value
// sorts by the cell text.
type Row struct {
	Cells  []string
	Values []any
	Tone   Tone
}

// Table renders sorted rows into a scrollable viewport
type Table struct {
	viewport viewport.Model
	columns  []Column
	rows     []Row
	hasData  bool
	sortCol  int
	desc     bool
	width    int
	height   int
}

// NewTable creates a table sorted on sortCol
func NewTable(columns []Column, sortCol int, desc bool) *Table {
	return &Table{
		viewport: viewport.New(0, 0),
		columns:  columns,
		sortCol:  sortCol,
		desc:     desc,
	}
}

// SetSize updates the table dimensions
func (t *Table) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.viewport.Width = width
	// one line for the header
	t.viewport.Height = max(height-1, 1)
	t.updateContent()
}

// SetColumns replaces the column set, keeping the sort column when it still exists
func (t *Table) SetColumns(columns []Column) {
	t.columns = columns
	if t.sortCol >= len(columns) {
		t.sortCol = 0
	}
	t.updateContent()
}

// SetRows replaces the rows. hasData=false renders the "no data" placeholder.
func (t *Table) SetRows(rows []Row, hasData bool) {
	t.rows = rows
	t.hasData = hasData
	t.sortRows()
	t.updateContent()
}

// Rows returns the rows in display order
func (t *Table) Rows() []Row {
	return t.rows
}

// CycleSort moves sorting to the next column
func (t *Table) CycleSort() {
	if len(t.columns) == 0 {
		return
	}
	t.sortCol = (t.sortCol + 1) % len(t.columns)
	t.sortRows()
	t.updateContent()
}

// ToggleSortDir flips the sort direction
func (t *Table) ToggleSortDir() {
	t.desc = !t.desc
	t.sortRows()
	t.updateContent()
}

// SortLabel describes the current sort, e.g. "Route ID ▲"
func (t *Table) SortLabel() string {
	if t.sortCol >= len(t.columns) {
		return ""
	}
	return t.columns[t.sortCol].Title + " " + t.arrow()
}

func (t *Table) arrow() string {
	if t.desc {
		return "▼"
	}
	return "▲"
}

// Scroll moves the view by delta lines
func (t *Table) Scroll(delta int) {
	t.viewport.SetYOffset(t.viewport.YOffset + delta)
}

// PageSize returns the number of visible rows
func (t *Table) PageSize() int {
	return t.viewport.Height
}

// ScrollTop jumps to the first row
func (t *Table) ScrollTop() {
	t.viewport.GotoTop()
}

// ScrollBottom jumps to the last row
func (t *Table) ScrollBottom() {
	t.viewport.GotoBottom()
}

// View renders the table
func (t *Table) View() string {
	if !t.hasData || len(t.rows) == 0 {
		return t.header() + "\n" + styles.Muted.Render("  "+noData)
	}
	return t.header() + "\n" + t.viewport.View()
}

func (t *Table) sortRows() {
	col, desc := t.sortCol, t.desc
	slices.SortStableFunc(t.rows, func(a, b Row) int {
		c := compareValues(a.sortValue(col), b.sortValue(col))
		if desc {
			return -c
		}
		return c
	})
}

func (r Row) sortValue(col int) any {
	if col < len(r.Values) && r.Values[col] != nil {
		return r.Values[col]
	}
	if col < len(r.Cells) {
		return r.Cells[col]
	}
	return ""
}

// compareValues orders numbers numerically and everything else as
// case-insensitive text
func compareValues(a, b any) int {
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

// widths resolves flexible columns against the table width
func (t *Table) widths() []int {
	out := make([]int, len(t.columns))
	fixed, flex := 0, 0
	for i, c := range t.columns {
		out[i] = c.Width
		fixed += c.Width + 1
		if c.Width == 0 {
			flex++
		}
	}
	if flex > 0 {
		each := max((t.width-2-fixed)/flex, 8)
		for i, c := range t.columns {
			if c.Width == 0 {
				out[i] = each
			}
		}
	}
	return out
}

func (t *Table) header() string {
	widths := t.widths()
	cells := make([]string, len(t.columns))
	for i, c := range t.columns {
		title := c.Title
		if i == t.sortCol {
			title += " " + t.arrow()
		}
		cells[i] = pad(title, widths[i], c.Right)
	}
	return styles.TableHeader.Render(" " + strings.Join(cells, " "))
}

func (t *Table) updateContent() {
	widths := t.widths()
	lines := make([]string, 0, len(t.rows))
	for i, r := range t.rows {
		cells := make([]string, len(t.columns))
		for j, c := range t.columns {
			text := ""
			if j < len(r.Cells) {
				text = r.Cells[j]
			}
			cells[j] = pad(text, widths[j], c.Right)
		}
		line := " " + strings.Join(cells, " ")
		switch {
		case r.Tone == ToneError:
			line = styles.ToneError.Render(line)
		case r.Tone == ToneWarn:
			line = styles.ToneWarn.Render(line)
		case r.Tone == ToneMuted:
			line = styles.Muted.Render(line)
		case i%2 == 1:
			line = styles.TableRowAlt.Render(line)
		default:
			line = styles.TableRow.Render(line)
		}
		lines = append(lines, line)
	}
	t.viewport.SetContent(strings.Join(lines, "\n"))
}

// pad truncates or pads s to exactly width runes
func pad(s string, width int, right bool) string {
	s = truncate(s, width)
	gap := width - len([]rune(s))
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

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

// formatAge converts milliseconds to human readable age
func formatAge(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// formatMillis renders a millisecond duration like "1.25s"
func formatMillis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

// formatFloat prints whole numbers with thousands separators and keeps two
// decimals otherwise
func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
