package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/gateway"
	"github.com/lazycamel/lazycamel/internal/logging"
	"github.com/lazycamel/lazycamel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// activeSub returns a subscription whose snapshot is payload
func activeSub(t *testing.T, id models.ConsoleID, opts models.Options, payload any) *console.Subscription {
	t.Helper()
	svc := gateway.NewService(time.Hour, logging.Discard(), gateway.ConsoleFunc{
		Name: id,
		Fn:   func(models.Options) (any, error) { return payload, nil },
	})
	t.Cleanup(svc.Close)

	sub := console.New(gateway.NewLocalTransport(svc), id, opts)
	require.NoError(t, sub.Activate(context.Background()))
	t.Cleanup(func() { sub.Deactivate(context.Background()) })
	return sub
}

func idleSub(id models.ConsoleID, opts models.Options) *console.Subscription {
	svc := gateway.NewService(time.Hour, logging.Discard())
	return console.New(gateway.NewLocalTransport(svc), id, opts)
}

func column(rows []Row, col int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cells[col]
	}
	return out
}

func sortOn(t *testing.T, p Panel, table *Table, title string) {
	t.Helper()
	for i := 0; i < 20; i++ {
		if strings.HasPrefix(table.SortLabel(), title+" ") {
			return
		}
		p.CycleSort()
	}
	t.Fatalf("no column %q", title)
}

var testRoutes = models.RouteList{Routes: []models.Route{
	{RouteID: "orders", From: "platform-http:///orders", State: "Started", Statistics: models.RouteStatistics{ExchangesTotal: 1200, ExchangesThroughput: "3.00/s"}},
	{RouteID: "billing", From: "kafka:billing", State: "Started", Statistics: models.RouteStatistics{ExchangesTotal: 5, ExchangesFailed: 2, ExchangesThroughput: "12.50/s"}},
	{RouteID: "archive", From: "file:old", State: "Stopped"},
}}

func TestPanelWithoutSnapshotShowsNoData(t *testing.T) {
	p := NewRoutesPanel(idleSub(models.ConsoleRoute, nil))
	p.SetSize(120, 20)
	p.Refresh()

	assert.Contains(t, p.View(), "No data available")
	assert.Empty(t, p.table.Rows())
}

func TestPanelMissingKeyShowsNoData(t *testing.T) {
	p := NewRoutesPanel(activeSub(t, models.ConsoleRoute, nil, map[string]any{"other": 1}))
	p.SetSize(120, 20)
	p.Refresh()

	assert.Contains(t, p.View(), "No data available")
}

func TestRoutesPanelFilterAndSort(t *testing.T) {
	p := NewRoutesPanel(activeSub(t, models.ConsoleRoute, nil, testRoutes))
	p.SetSize(160, 20)
	p.Refresh()

	assert.Equal(t, []string{"archive", "billing", "orders"}, column(p.table.Rows(), 0))
	assert.Contains(t, p.View(), "1,200")

	p.ToggleSortDir()
	assert.Equal(t, []string{"orders", "billing", "archive"}, column(p.table.Rows(), 0))

	sortOn(t, p, p.table, "Total")
	assert.Equal(t, []string{"orders", "billing", "archive"}, column(p.table.Rows(), 0))
	p.ToggleSortDir()
	assert.Equal(t, []string{"archive", "billing", "orders"}, column(p.table.Rows(), 0))

	sortOn(t, p, p.table, "Thrpt")
	assert.Equal(t, []string{"archive", "orders", "billing"}, column(p.table.Rows(), 0))

	p.SetFilter("ING")
	assert.Equal(t, []string{"billing"}, column(p.table.Rows(), 0))
	assert.Contains(t, p.Status(), "filter: ING")
	assert.Equal(t, ToneWarn, p.table.Rows()[0].Tone)

	p.SetFilter("")
	assert.Len(t, p.table.Rows(), 3)
}

func TestRoutesPanelLimit(t *testing.T) {
	p := NewRoutesPanel(idleSub(models.ConsoleRoute, nil))
	_, ok := p.NextLimit(-1)
	assert.False(t, ok)
	next, ok := p.NextLimit(1)
	require.True(t, ok)
	assert.Equal(t, 10, next)
	assert.Contains(t, p.Status(), "limit: all")

	p = NewRoutesPanel(idleSub(models.ConsoleRoute, models.Options{"limit": 20}))
	next, ok = p.NextLimit(-1)
	require.True(t, ok)
	assert.Equal(t, 10, next)
	assert.Contains(t, p.Status(), "limit: 20")

	p = NewRoutesPanel(idleSub(models.ConsoleRoute, models.Options{"limit": 10.0}))
	next, ok = p.NextLimit(-1)
	require.True(t, ok)
	assert.Equal(t, 0, next)
}

func TestRestPanelMethodCycle(t *testing.T) {
	payload := models.RestList{Rests: []models.RestEndpoint{
		{URL: "/orders", Method: "GET", State: "Started"},
		{URL: "/orders", Method: "POST", State: "Started"},
		{URL: "/pets", Method: "GET", State: "Started"},
	}}
	p := NewRestPanel(activeSub(t, models.ConsoleRest, nil, payload))
	p.Refresh()
	assert.Len(t, p.table.Rows(), 3)

	require.True(t, p.CycleMode())
	assert.Equal(t, "GET", p.Method())
	assert.Len(t, p.table.Rows(), 2)
	assert.Contains(t, p.Status(), "method: GET")

	p.SetFilter("pets")
	assert.Equal(t, []string{"/pets"}, column(p.table.Rows(), 1))

	p.SetFilter("")
	p.CycleMode()
	assert.Equal(t, "POST", p.Method())
	assert.Len(t, p.table.Rows(), 1)

	for p.Method() != "" {
		p.CycleMode()
	}
	assert.Len(t, p.table.Rows(), 3)
	_, ok := p.NextLimit(1)
	assert.False(t, ok)
}

func TestMetricsPanelKindsAndTags(t *testing.T) {
	payload := map[string]any{
		"counters": []models.Metric{{Name: "exchanges.total", Count: 42, Tags: []models.MetricTag{{Key: "routeId", Value: "orders"}}}},
		"gauges":   []models.Metric{{Name: "jvm.memory.used", Value: 1024.5}},
		"timers":   []models.Metric{{Name: "route.policy", Count: 3, Mean: 1.5, Max: 4, Total: 4.5}},
	}
	p := NewMetricsPanel(activeSub(t, models.ConsoleMicrometer, nil, payload))
	p.SetSize(160, 20)
	p.Refresh()

	rows := p.table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"exchanges.total", "jvm.memory.used", "route.policy"}, column(rows, 1))
	assert.Equal(t, "Counter", rows[0].Cells[0])
	assert.Equal(t, "routeId=orders", rows[0].Cells[2], "tags are on by default")
	assert.Equal(t, "42", rows[0].Cells[3])
	assert.Contains(t, p.View(), "Tags")
	assert.Contains(t, p.Status(), "tags: on")

	require.True(t, p.CycleMode())
	assert.Equal(t, []string{"exchanges.total"}, column(p.table.Rows(), 1))
	assert.Contains(t, p.Status(), "type: Counter")

	require.True(t, p.ToggleTags())
	assert.Equal(t, "42", p.table.Rows()[0].Cells[2])
	assert.NotContains(t, p.View(), "Tags")
	assert.Contains(t, p.Status(), "tags: off")

	p.ToggleTags()
	assert.Equal(t, "routeId=orders", p.table.Rows()[0].Cells[2])

	p.CycleMode()
	assert.Equal(t, "1,024.5", p.table.Rows()[0].Cells[3], "gauges, tags shown")

	p.SetFilter("heap")
	assert.Empty(t, p.table.Rows())
}

func TestInflightPanel(t *testing.T) {
	payload := models.InflightList{Inflight: 3, Max: 2, Exchanges: []models.InflightExchange{
		{ExchangeID: "A", FromRouteID: "orders", AtRouteID: "orders", Duration: 100},
		{ExchangeID: "B", FromRouteID: "billing", AtRouteID: "archive", Duration: 5000},
	}}
	p := NewInflightPanel(activeSub(t, models.ConsoleInflight, nil, payload))
	p.Refresh()

	assert.Equal(t, []string{"B", "A"}, column(p.table.Rows(), 0))
	assert.Equal(t, ToneWarn, p.table.Rows()[0].Tone)
	assert.Equal(t, "5s", p.table.Rows()[0].Cells[5])
	assert.Contains(t, p.Status(), "inflight: 3")

	p.SetFilter("archive")
	assert.Equal(t, []string{"B"}, column(p.table.Rows(), 0))
}

func TestEventsPanelMergesNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC).UnixMilli()
	payload := models.EventList{
		Events:         []models.Event{{Type: "CamelContextStarted", Timestamp: base, Message: "started"}},
		RouteEvents:    []models.Event{{Type: "RouteStarted", Timestamp: base + 1000, Message: "route orders"}},
		ExchangeEvents: []models.Event{{Type: "ExchangeFailed", Timestamp: base + 2000, Message: "failed on orders"}},
	}
	p := NewEventsPanel(activeSub(t, models.ConsoleEvent, nil, payload))
	p.now = func() time.Time { return time.UnixMilli(base + 62000) }
	p.Refresh()

	rows := p.table.Rows()
	assert.Equal(t, []string{"exchange", "route", "context"}, column(rows, 2))
	assert.Equal(t, ToneError, rows[0].Tone)
	assert.Equal(t, "1 minute ago", rows[0].Cells[1])

	p.CycleMode()
	assert.Equal(t, []string{"context"}, column(p.table.Rows(), 2))
	p.CycleMode()
	assert.Equal(t, []string{"route"}, column(p.table.Rows(), 2))

	p.CycleMode()
	p.CycleMode()
	p.SetFilter("orders")
	assert.Len(t, p.table.Rows(), 2)

	assert.Contains(t, p.Status(), "limit: 50")
	next, ok := p.NextLimit(1)
	require.True(t, ok)
	assert.Equal(t, 60, next)
}

func TestEventsLimitNeverDropsBelowStep(t *testing.T) {
	p := NewEventsPanel(idleSub(models.ConsoleEvent, models.Options{"limit": 10}))
	_, ok := p.NextLimit(-1)
	assert.False(t, ok)
}

func TestVariablesPanel(t *testing.T) {
	payload := models.VariableList{Variables: []models.Variable{
		{Repository: "global", Key: "region", ClassName: "java.lang.String", Value: "eu"},
		{Repository: "route", Key: "orders:last", ClassName: "java.lang.Long", Value: "7"},
	}}
	p := NewVariablesPanel(activeSub(t, models.ConsoleVariables, nil, payload))
	p.Refresh()
	assert.Equal(t, []string{"orders:last", "region"}, column(p.table.Rows(), 1))

	p.SetFilter("reg")
	assert.Equal(t, []string{"region"}, column(p.table.Rows(), 1))
	assert.False(t, p.CycleMode())
	assert.False(t, p.ToggleTags())
}

func TestAllPanelsInTabOrder(t *testing.T) {
	subs := make(map[models.ConsoleID]*console.Subscription)
	for _, id := range PanelConsoles {
		subs[id] = idleSub(id, nil)
	}
	panels := All(subs)
	require.Len(t, panels, len(PanelConsoles))
	for i, p := range panels {
		assert.Equal(t, PanelConsoles[i], p.ID())
		assert.Same(t, subs[p.ID()], p.Subscription())
	}
}

func TestReadHealth(t *testing.T) {
	assert.False(t, ReadHealth(idleSub(models.ConsoleHealth, nil).CurrentSnapshot()).Known)

	report := models.HealthReport{Up: false, Checks: []models.HealthCheck{
		{ID: "context", State: "UP"},
		{ID: "kafka", State: "DOWN"},
	}}
	h := ReadHealth(activeSub(t, models.ConsoleHealth, nil, report).CurrentSnapshot())
	assert.True(t, h.Known)
	assert.False(t, h.Up)
	assert.Equal(t, []string{"kafka"}, h.Failing())
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, -1, compareValues(int64(2), int64(10)))
	assert.Equal(t, 1, compareValues(2.5, 1.0))
	assert.Equal(t, 0, compareValues("Abc", "abc"))
	assert.Equal(t, -1, compareValues(false, true))
	assert.Equal(t, -1, compareValues("10", "9"))
}

func TestPadAndTruncate(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4, false))
	assert.Equal(t, "  ab", pad("ab", 4, true))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "héllo", pad("héllo", 5, false))
}

func TestNextInCycle(t *testing.T) {
	values := []string{"a", "b"}
	assert.Equal(t, "a", nextInCycle(values, ""))
	assert.Equal(t, "b", nextInCycle(values, "a"))
	assert.Equal(t, "", nextInCycle(values, "b"))
	assert.Equal(t, "", nextInCycle(values, "zzz"))
}
