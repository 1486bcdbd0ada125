package views

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

var metricColumns = []Column{
	{Title: "Type", Width: 20},
	{Title: "Name", Width: 0},
	{Title: "Value", Width: 12, Right: true},
	{Title: "Count", Width: 10, Right: true},
	{Title: "Mean", Width: 10, Right: true},
	{Title: "Max", Width: 10, Right: true},
	{Title: "Total", Width: 12, Right: true},
}

var metricColumnsWithTags = []Column{
	metricColumns[0],
	metricColumns[1],
	{Title: "Tags", Width: 0},
	metricColumns[2],
	metricColumns[3],
	metricColumns[4],
	metricColumns[5],
	metricColumns[6],
}

type meterRegistry struct {
	Counters              []models.Metric `json:"counters"`
	Gauges                []models.Metric `json:"gauges"`
	Timers                []models.Metric `json:"timers"`
	LongTaskTimers        []models.Metric `json:"longTaskTimer"`
	DistributionSummaries []models.Metric `json:"distributionSummary"`
}

// MetricsPanel flattens the micrometer registry into one table
type MetricsPanel struct {
	base
	kind     string
	showTags bool
}

// NewMetricsPanel creates the metrics panel. Tags are shown until toggled off.
func NewMetricsPanel(sub *console.Subscription) *MetricsPanel {
	p := &MetricsPanel{base: base{
		id:    models.ConsoleMicrometer,
		title: "Metrics",
		sub:   sub,
		table: NewTable(metricColumnsWithTags, 1, false),
	}, showTags: true}
	p.rows = p.buildRows
	return p
}

// CycleMode steps the meter type filter
func (p *MetricsPanel) CycleMode() bool {
	p.kind = nextInCycle(models.MetricKinds, p.kind)
	p.Refresh()
	return true
}

// ToggleTags shows or hides the tags column
func (p *MetricsPanel) ToggleTags() bool {
	p.showTags = !p.showTags
	if p.showTags {
		p.table.SetColumns(metricColumnsWithTags)
	} else {
		p.table.SetColumns(metricColumns)
	}
	p.Refresh()
	return true
}

func (p *MetricsPanel) Status() string {
	kind := "all"
	if p.kind != "" {
		kind = models.MetricLabels[p.kind]
	}
	tags := "off"
	if p.showTags {
		tags = "on"
	}
	return p.status("type: "+kind, "tags: "+tags)
}

func (p *MetricsPanel) buildRows(snap console.Snapshot) ([]Row, bool) {
	found := false
	for _, k := range models.MetricKinds {
		if snap.Has(k) {
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}
	var reg meterRegistry
	if err := snap.Decode(&reg); err != nil {
		return nil, false
	}
	registry := map[string][]models.Metric{
		"counters":            reg.Counters,
		"gauges":              reg.Gauges,
		"timers":              reg.Timers,
		"longTaskTimer":       reg.LongTaskTimers,
		"distributionSummary": reg.DistributionSummaries,
	}

	var rows []Row
	for _, kind := range models.MetricKinds {
		if p.kind != "" && kind != p.kind {
			continue
		}
		for _, m := range registry[kind] {
			if p.filter != "" && !containsFold(m.Name, p.filter) {
				continue
			}
			m.Kind = kind
			rows = append(rows, p.metricRow(m))
		}
	}
	return rows, true
}

func (p *MetricsPanel) metricRow(m models.Metric) Row {
	var value, count, total float64
	switch m.Kind {
	case "counters":
		value = m.Count
	case "gauges":
		value = m.Value
	case "timers":
		count, total = m.Count, m.Total
	case "longTaskTimer":
		value, total = float64(m.ActiveTasks), m.Duration
	case "distributionSummary":
		count, total = m.Count, m.TotalAmount
	}

	cells := []string{models.MetricLabels[m.Kind], m.Name}
	values := []any{nil, nil}
	if p.showTags {
		cells = append(cells, formatTags(m.Tags))
		values = append(values, nil)
	}
	cells = append(cells, blankZero(value), blankZero(count), blankZero(m.Mean), blankZero(m.Max), blankZero(total))
	values = append(values, value, count, m.Mean, m.Max, total)
	return Row{Cells: cells, Values: values}
}

func formatTags(tags []models.MetricTag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, t.Key+"="+t.Value)
	}
	return strings.Join(parts, ",")
}

func blankZero(v float64) string {
	if v == 0 {
		return ""
	}
	if v >= 1e9 {
		return humanize.SIWithDigits(v, 2, "")
	}
	return formatFloat(v)
}
