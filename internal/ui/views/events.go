package views

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

// defaultEventLimit is how many events per kind the engine returns when no
// limit option is set
const defaultEventLimit = 50

var eventKinds = []string{"context", "route", "exchange"}

var eventColumns = []Column{
	{Title: "Time", Width: 8},
	{Title: "Age", Width: 16},
	{Title: "Kind", Width: 8},
	{Title: "Type", Width: 26},
	{Title: "Message", Width: 0},
}

// EventsPanel merges context, route and exchange events, newest first
type EventsPanel struct {
	base
	kind string
	now  func() time.Time
}

// NewEventsPanel creates the events panel
func NewEventsPanel(sub *console.Subscription) *EventsPanel {
	p := &EventsPanel{
		base: base{
			id:           models.ConsoleEvent,
			title:        "Events",
			sub:          sub,
			table:        NewTable(eventColumns, 0, true),
			hasLimit:     true,
			defaultLimit: defaultEventLimit,
		},
		now: time.Now,
	}
	p.rows = p.buildRows
	return p
}

// CycleMode steps the event kind filter
func (p *EventsPanel) CycleMode() bool {
	p.kind = nextInCycle(eventKinds, p.kind)
	p.Refresh()
	return true
}

func (p *EventsPanel) Status() string {
	kind := p.kind
	if kind == "" {
		kind = "all"
	}
	return p.status("kind: " + kind)
}

func (p *EventsPanel) buildRows(snap console.Snapshot) ([]Row, bool) {
	if !snap.Has("events") && !snap.Has("routeEvents") && !snap.Has("exchangeEvents") {
		return nil, false
	}
	var list models.EventList
	if err := snap.Decode(&list); err != nil {
		return nil, false
	}

	var rows []Row
	add := func(kind string, events []models.Event) {
		if p.kind != "" && p.kind != kind {
			return
		}
		for _, e := range events {
			if p.filter != "" && !containsFold(e.Message, p.filter) {
				continue
			}
			at := time.UnixMilli(e.Timestamp)
			tone := ToneNormal
			if containsFold(e.Type, "fail") || containsFold(e.Type, "down") {
				tone = ToneError
			}
			rows = append(rows, Row{
				Cells:  []string{at.Format("15:04:05"), humanize.RelTime(at, p.now(), "ago", "from now"), kind, e.Type, e.Message},
				Values: []any{e.Timestamp, e.Timestamp},
				Tone:   tone,
			})
		}
	}
	add("context", list.Events)
	add("route", list.RouteEvents)
	add("exchange", list.ExchangeEvents)
	return rows, true
}
