package views

import (
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

var variableColumns = []Column{
	{Title: "Repository", Width: 12},
	{Title: "Key", Width: 30},
	{Title: "Type", Width: 24},
	{Title: "Value", Width: 0},
}

// VariablesPanel lists global and route scoped variables
type VariablesPanel struct {
	base
}

// NewVariablesPanel creates the variables panel
func NewVariablesPanel(sub *console.Subscription) *VariablesPanel {
	p := &VariablesPanel{base: base{
		id:    models.ConsoleVariables,
		title: "Variables",
		sub:   sub,
		table: NewTable(variableColumns, 1, false),
	}}
	p.rows = p.buildRows
	return p
}

func (p *VariablesPanel) buildRows(snap console.Snapshot) ([]Row, bool) {
	if !snap.Has("variables") {
		return nil, false
	}
	var list models.VariableList
	if err := snap.Decode(&list); err != nil {
		return nil, false
	}

	rows := make([]Row, 0, len(list.Variables))
	for _, v := range list.Variables {
		if p.filter != "" && !containsFold(v.Key, p.filter) {
			continue
		}
		rows = append(rows, Row{Cells: []string{v.Repository, v.Key, v.ClassName, v.Value}})
	}
	return rows, true
}
