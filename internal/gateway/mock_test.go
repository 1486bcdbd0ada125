package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callConsole[T any](t *testing.T, svc *Service, id models.ConsoleID, opts models.Options) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(svc.GetConsoleJSON(id, opts)), &out))
	return out
}

func TestMockRouteConsole(t *testing.T) {
	engine := NewMockEngine()
	svc := NewService(time.Hour, discardLogger(), engine.Consoles()...)
	defer svc.Close()

	all := callConsole[models.RouteList](t, svc, models.ConsoleRoute, nil)
	assert.Len(t, all.Routes, 5)

	limited := callConsole[models.RouteList](t, svc, models.ConsoleRoute, models.Options{"limit": 2})
	assert.Len(t, limited.Routes, 2)

	filtered := callConsole[models.RouteList](t, svc, models.ConsoleRoute, models.Options{"filter": "kafka"})
	require.Len(t, filtered.Routes, 1)
	assert.Equal(t, "kafka-ingest", filtered.Routes[0].RouteID)
}

func TestMockTickAdvancesStatistics(t *testing.T) {
	engine := NewMockEngine()
	for i := 0; i < 50; i++ {
		engine.Tick()
	}
	svc := NewService(time.Hour, discardLogger(), engine.Consoles()...)
	defer svc.Close()

	list := callConsole[models.RouteList](t, svc, models.ConsoleRoute, nil)
	var total int64
	for _, r := range list.Routes {
		if r.State == "Stopped" {
			assert.Zero(t, r.Statistics.ExchangesTotal, r.RouteID)
		}
		total += r.Statistics.ExchangesTotal
	}
	assert.Positive(t, total)
}

func TestMockEventConsoleLimit(t *testing.T) {
	engine := NewMockEngine()
	svc := NewService(time.Hour, discardLogger(), engine.Consoles()...)
	defer svc.Close()

	events := callConsole[models.EventList](t, svc, models.ConsoleEvent, nil)
	assert.Len(t, events.RouteEvents, 4)
	assert.Len(t, events.Events, 1)

	limited := callConsole[models.EventList](t, svc, models.ConsoleEvent, models.Options{"limit": 2})
	assert.Len(t, limited.RouteEvents, 2)
}

func TestMockInflightConsoleLimit(t *testing.T) {
	engine := NewMockEngine()
	for i := 0; i < 10; i++ {
		engine.Tick()
	}
	svc := NewService(time.Hour, discardLogger(), engine.Consoles()...)
	defer svc.Close()

	list := callConsole[models.InflightList](t, svc, models.ConsoleInflight, models.Options{"limit": 1})
	assert.LessOrEqual(t, len(list.Exchanges), 1)
	assert.GreaterOrEqual(t, list.Inflight, len(list.Exchanges))
}

func TestOptInt(t *testing.T) {
	opts := models.Options{
		"int":    3,
		"float":  4.0,
		"number": json.Number("5"),
		"string": "6",
		"bad":    "x",
	}
	assert.Equal(t, 3, optInt(opts, "int", -1))
	assert.Equal(t, 4, optInt(opts, "float", -1))
	assert.Equal(t, 5, optInt(opts, "number", -1))
	assert.Equal(t, 6, optInt(opts, "string", -1))
	assert.Equal(t, -1, optInt(opts, "bad", -1))
	assert.Equal(t, -1, optInt(opts, "missing", -1))
}

func TestSubscriptionOverLocalTransport(t *testing.T) {
	engine := NewMockEngine()
	svc := NewService(10*time.Millisecond, discardLogger(), engine.Consoles()...)
	defer svc.Close()

	sub := console.New(NewLocalTransport(svc), models.ConsoleRoute, models.Options{"limit": 3})
	require.NoError(t, sub.Activate(context.Background()))

	var list models.RouteList
	require.NoError(t, sub.CurrentSnapshot().Decode(&list))
	assert.Len(t, list.Routes, 3)

	sub.SetOption(context.Background(), "limit", 1)
	require.Eventually(t, func() bool {
		var l models.RouteList
		_ = sub.CurrentSnapshot().Decode(&l)
		return len(l.Routes) == 1
	}, 2*time.Second, 5*time.Millisecond)

	sub.Deactivate(context.Background())
	assert.Empty(t, svc.Active())
}

func TestLocalTransportHonoursContext(t *testing.T) {
	svc := NewService(time.Hour, discardLogger())
	defer svc.Close()
	tr := NewLocalTransport(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.Fetch(ctx, models.ConsoleRoute, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = tr.Stream(ctx, models.ConsoleRoute, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
