package views

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

var routeColumns = []Column{
	{Title: "Route ID", Width: 22},
	{Title: "From", Width: 0},
	{Title: "Source", Width: 20},
	{Title: "State", Width: 9},
	{Title: "Uptime", Width: 10},
	{Title: "Thrpt", Width: 9, Right: true},
	{Title: "Total", Width: 9, Right: true},
	{Title: "Failed", Width: 7, Right: true},
	{Title: "Inflight", Width: 8, Right: true},
	{Title: "Idle", Width: 6, Right: true},
}

// RoutesPanel lists routes with their exchange statistics
type RoutesPanel struct {
	base
}

// NewRoutesPanel creates the routes panel
func NewRoutesPanel(sub *console.Subscription) *RoutesPanel {
	p := &RoutesPanel{base: base{
		id:       models.ConsoleRoute,
		title:    "Routes",
		sub:      sub,
		table:    NewTable(routeColumns, 0, false),
		hasLimit: true,
	}}
	p.rows = p.buildRows
	return p
}

func (p *RoutesPanel) buildRows(snap console.Snapshot) ([]Row, bool) {
	if !snap.Has("routes") {
		return nil, false
	}
	var list models.RouteList
	if err := snap.Decode(&list); err != nil {
		return nil, false
	}

	rows := make([]Row, 0, len(list.Routes))
	for _, r := range list.Routes {
		if p.filter != "" && !containsFold(r.RouteID, p.filter) {
			continue
		}
		s := r.Statistics
		tone := ToneNormal
		switch {
		case r.State != "Started":
			tone = ToneMuted
		case s.ExchangesFailed > 0:
			tone = ToneWarn
		}
		rows = append(rows, Row{
			Cells: []string{
				r.RouteID,
				r.From,
				r.Source,
				r.State,
				r.Uptime,
				s.ExchangesThroughput,
				humanize.Comma(s.ExchangesTotal),
				humanize.Comma(s.ExchangesFailed),
				humanize.Comma(s.ExchangesInflight),
				formatAge(s.IdleSince),
			},
			Values: []any{
				nil, nil, nil, nil, nil,
				throughput(s.ExchangesThroughput),
				s.ExchangesTotal,
				s.ExchangesFailed,
				s.ExchangesInflight,
				s.IdleSince,
			},
			Tone: tone,
		})
	}
	return rows, true
}

// throughput parses "12.50/s"
func throughput(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "/s"), 64)
	if err != nil {
		return 0
	}
	return v
}
