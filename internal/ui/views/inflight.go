package views

import (
	"fmt"

	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

var inflightColumns = []Column{
	{Title: "Exchange ID", Width: 20},
	{Title: "From Route", Width: 0},
	{Title: "At Route", Width: 0},
	{Title: "Node", Width: 8},
	{Title: "Elapsed", Width: 10, Right: true},
	{Title: "Duration", Width: 10, Right: true},
}

// InflightPanel lists the exchanges currently being processed
type InflightPanel struct {
	base
	total int
}

// NewInflightPanel creates the inflight panel, longest running first
func NewInflightPanel(sub *console.Subscription) *InflightPanel {
	p := &InflightPanel{base: base{
		id:       models.ConsoleInflight,
		title:    "Inflight",
		sub:      sub,
		table:    NewTable(inflightColumns, 5, true),
		hasLimit: true,
	}}
	p.rows = p.buildRows
	return p
}

func (p *InflightPanel) Status() string {
	return p.status(fmt.Sprintf("inflight: %d", p.total))
}

func (p *InflightPanel) buildRows(snap console.Snapshot) ([]Row, bool) {
	if !snap.Has("exchanges") {
		p.total = 0
		return nil, false
	}
	var list models.InflightList
	if err := snap.Decode(&list); err != nil {
		return nil, false
	}
	p.total = list.Inflight

	rows := make([]Row, 0, len(list.Exchanges))
	for _, e := range list.Exchanges {
		if p.filter != "" && !containsFold(e.FromRouteID, p.filter) && !containsFold(e.AtRouteID, p.filter) {
			continue
		}
		tone := ToneNormal
		if e.Duration > 3000 {
			tone = ToneWarn
		}
		rows = append(rows, Row{
			Cells:  []string{e.ExchangeID, e.FromRouteID, e.AtRouteID, e.NodeID, formatMillis(e.Elapsed), formatMillis(e.Duration)},
			Values: []any{nil, nil, nil, nil, e.Elapsed, e.Duration},
			Tone:   tone,
		})
	}
	return rows, true
}
