package views

import (
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

var restColumns = []Column{
	{Title: "Method", Width: 7},
	{Title: "URL", Width: 0},
	{Title: "State", Width: 8},
	{Title: "Consumes", Width: 18},
	{Title: "Produces", Width: 18},
	{Title: "In", Width: 12},
	{Title: "Out", Width: 12},
	{Title: "Contract", Width: 8},
	{Title: "Description", Width: 0},
}

// RestPanel lists REST endpoints, filtered on URL and HTTP method
type RestPanel struct {
	base
	method string
}

// NewRestPanel creates the REST panel
func NewRestPanel(sub *console.Subscription) *RestPanel {
	p := &RestPanel{base: base{
		id:    models.ConsoleRest,
		title: "REST",
		sub:   sub,
		table: NewTable(restColumns, 1, false),
	}}
	p.rows = p.buildRows
	return p
}

// CycleMode steps through all, GET, POST, ... and back to all
func (p *RestPanel) CycleMode() bool {
	p.method = nextInCycle(models.HTTPMethods, p.method)
	p.Refresh()
	return true
}

// Method returns the HTTP method filter, empty for all
func (p *RestPanel) Method() string {
	return p.method
}

func (p *RestPanel) Status() string {
	m := p.method
	if m == "" {
		m = "all"
	}
	return p.status("method: " + m)
}

func (p *RestPanel) buildRows(snap console.Snapshot) ([]Row, bool) {
	if !snap.Has("rests") {
		return nil, false
	}
	var list models.RestList
	if err := snap.Decode(&list); err != nil {
		return nil, false
	}

	rows := make([]Row, 0, len(list.Rests))
	for _, r := range list.Rests {
		if p.filter != "" && !containsFold(r.URL, p.filter) {
			continue
		}
		if p.method != "" && r.Method != p.method {
			continue
		}
		contract := ""
		if r.ContractFirst {
			contract = "yes"
		}
		tone := ToneNormal
		if r.State != "Started" {
			tone = ToneMuted
		}
		rows = append(rows, Row{
			Cells: []string{r.Method, r.URL, r.State, r.Consumes, r.Produces, r.InType, r.OutType, contract, r.Description},
			Tone:  tone,
		})
	}
	return rows, true
}

// nextInCycle returns the value after cur in "", values[0], values[1], ...
func nextInCycle(values []string, cur string) string {
	if cur == "" {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	for i, v := range values {
		if v == cur {
			if i+1 < len(values) {
				return values[i+1]
			}
			return ""
		}
	}
	return ""
}
