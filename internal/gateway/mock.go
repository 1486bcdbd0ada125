package gateway

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lazycamel/lazycamel/internal/models"
)

const maxMockEvents = 200

// MockEngine simulates a running integration engine for UI testing. It
// advances route statistics, in-flight exchanges and events on a ticker and
// exposes the usual dev consoles over that state.
type MockEngine struct {
	mu        sync.Mutex
	started   time.Time
	routes    []models.Route
	inflight  []models.InflightExchange
	events    []models.Event
	counters  map[string]float64
	healthy   bool
	processed int64

	rnd  *rand.Rand
	done chan struct{}
	once sync.Once
}

// NewMockEngine creates a simulated engine with a handful of routes
func NewMockEngine() *MockEngine {
	now := time.Now()
	m := &MockEngine{
		started:  now,
		counters: make(map[string]float64),
		healthy:  true,
		rnd:      rand.New(rand.NewSource(now.UnixNano())),
		done:     make(chan struct{}),
	}
	m.routes = []models.Route{
		{RouteID: "timer-heartbeat", From: "timer://heartbeat?period=1000", Source: "routes.yaml:3", State: "Started"},
		{RouteID: "rest-orders", From: "platform-http:///orders", Source: "OrderRoutes.java:22", State: "Started"},
		{RouteID: "kafka-ingest", From: "kafka:orders?brokers=localhost:9092", Source: "routes.yaml:18", State: "Started"},
		{RouteID: "file-poller", From: "file:inbox?delete=true", Source: "routes.yaml:31", State: "Started"},
		{RouteID: "jms-bridge", From: "jms:queue:legacy", Source: "LegacyRoutes.java:40", State: "Stopped"},
	}
	m.addEvent("context", "CamelContextStarted", "Apache Camel started")
	for _, r := range m.routes {
		if r.State == "Started" {
			m.addEvent("route", "RouteStarted", "Route started: "+r.RouteID)
		}
	}
	return m
}

// Start begins simulating activity every period
func (m *MockEngine) Start(period time.Duration) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
				m.Tick()
			}
		}
	}()
}

// Close stops the simulation
func (m *MockEngine) Close() {
	m.once.Do(func() { close(m.done) })
}

// Tick advances the simulation by one step
func (m *MockEngine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for i := range m.routes {
		r := &m.routes[i]
		if r.State != "Started" {
			continue
		}
		n := int64(m.rnd.Intn(20))
		r.Statistics.ExchangesTotal += n
		m.processed += n
		if m.rnd.Intn(10) == 0 {
			r.Statistics.ExchangesFailed++
			m.addEvent("exchange", "ExchangeFailed", fmt.Sprintf("Exchange failed on route %s", r.RouteID))
		}
		r.Statistics.ExchangesInflight = int64(m.rnd.Intn(4))
		if n == 0 {
			r.Statistics.IdleSince += 1000
		} else {
			r.Statistics.IdleSince = 0
		}
		r.Statistics.ExchangesThroughput = fmt.Sprintf("%.2f/s", float64(n))
		r.Uptime = now.Sub(m.started).Truncate(time.Second).String()
		m.counters["camel.exchanges.total|routeId="+r.RouteID] = float64(r.Statistics.ExchangesTotal)
		m.counters["camel.exchanges.failed|routeId="+r.RouteID] = float64(r.Statistics.ExchangesFailed)
	}

	// Rebuild the in-flight set from the per-route counts
	m.inflight = m.inflight[:0]
	for _, r := range m.routes {
		for j := int64(0); j < r.Statistics.ExchangesInflight; j++ {
			duration := int64(m.rnd.Intn(5000))
			m.inflight = append(m.inflight, models.InflightExchange{
				ExchangeID:  strings.ToUpper(uuid.NewString()[:18]),
				FromRouteID: r.RouteID,
				AtRouteID:   r.RouteID,
				NodeID:      fmt.Sprintf("to%d", m.rnd.Intn(5)+1),
				Elapsed:     duration / 2,
				Duration:    duration,
			})
		}
	}

	if m.rnd.Intn(30) == 0 {
		m.healthy = !m.healthy
		if m.healthy {
			m.addEvent("context", "HealthCheckUp", "kafka-consumer health check is UP")
		} else {
			m.addEvent("context", "HealthCheckDown", "kafka-consumer health check is DOWN")
		}
	}
}

// must hold m.mu
func (m *MockEngine) addEvent(kind, typ, msg string) {
	m.events = append(m.events, models.Event{
		Kind:      kind,
		Type:      typ,
		Timestamp: time.Now().UnixMilli(),
		Message:   msg,
	})
	if len(m.events) > maxMockEvents {
		m.events = m.events[len(m.events)-maxMockEvents:]
	}
}

// Consoles returns the dev consoles backed by this engine
func (m *MockEngine) Consoles() []Console {
	return []Console{
		ConsoleFunc{Name: models.ConsoleRoute, Fn: m.routeConsole},
		ConsoleFunc{Name: models.ConsoleRest, Fn: m.restConsole},
		ConsoleFunc{Name: models.ConsoleMicrometer, Fn: m.micrometerConsole},
		ConsoleFunc{Name: models.ConsoleInflight, Fn: m.inflightConsole},
		ConsoleFunc{Name: models.ConsoleEvent, Fn: m.eventConsole},
		ConsoleFunc{Name: models.ConsoleVariables, Fn: m.variablesConsole},
		ConsoleFunc{Name: models.ConsoleHealth, Fn: m.healthConsole},
	}
}

func (m *MockEngine) routeConsole(opts models.Options) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filter := optString(opts, "filter")
	limit := optInt(opts, "limit", -1)
	routes := make([]models.Route, 0, len(m.routes))
	for _, r := range m.routes {
		if filter != "" && !strings.Contains(r.RouteID, filter) {
			continue
		}
		if limit >= 0 && len(routes) >= limit {
			break
		}
		routes = append(routes, r)
	}
	return models.RouteList{Routes: routes}, nil
}

func (m *MockEngine) restConsole(models.Options) (any, error) {
	return models.RestList{Rests: []models.RestEndpoint{
		{URL: "http://0.0.0.0:8080/orders", Method: "GET", State: "Started", Produces: "application/json", OutType: "Order[]", Description: "List orders"},
		{URL: "http://0.0.0.0:8080/orders", Method: "POST", State: "Started", Consumes: "application/json", InType: "Order", Description: "Create an order"},
		{URL: "http://0.0.0.0:8080/orders/{id}", Method: "GET", State: "Started", Produces: "application/json", OutType: "Order"},
		{URL: "http://0.0.0.0:8080/orders/{id}", Method: "DELETE", State: "Started"},
		{URL: "http://0.0.0.0:8080/pets", Method: "PUT", ContractFirst: true, State: "Started", Consumes: "application/json", Description: "Update a pet"},
		{URL: "http://0.0.0.0:8080/health", Method: "HEAD", State: "Stopped"},
	}}, nil
}

func (m *MockEngine) micrometerConsole(models.Options) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var counters []models.Metric
	for key, v := range m.counters {
		name, tag, _ := strings.Cut(key, "|")
		tk, tv, _ := strings.Cut(tag, "=")
		counters = append(counters, models.Metric{Name: name, Count: v, Tags: []models.MetricTag{{Key: tk, Value: tv}}})
	}
	uptime := time.Since(m.started).Seconds()
	return map[string]any{
		"counters": counters,
		"gauges": []models.Metric{
			{Name: "jvm.memory.used", Value: float64(180_000_000 + m.rnd.Intn(40_000_000)), Tags: []models.MetricTag{{Key: "area", Value: "heap"}}},
			{Name: "camel.routes.running", Value: float64(m.runningRoutes())},
			{Name: "process.uptime", Value: uptime},
		},
		"timers": []models.Metric{
			{Name: "camel.route.policy", Count: float64(m.processed), Mean: 3.2 + m.rnd.Float64(), Max: 48.5, Total: float64(m.processed) * 3.4, Tags: []models.MetricTag{{Key: "routeId", Value: "rest-orders"}}},
		},
		"longTaskTimer": []models.Metric{
			{Name: "camel.exchanges.long", ActiveTasks: int64(len(m.inflight)), Mean: 120.4, Max: 950, Duration: 3400},
		},
		"distributionSummary": []models.Metric{
			{Name: "http.payload.size", Count: 120, Mean: 2048, Max: 65536, TotalAmount: 245760},
		},
	}, nil
}

// must hold m.mu
func (m *MockEngine) runningRoutes() int {
	n := 0
	for _, r := range m.routes {
		if r.State == "Started" {
			n++
		}
	}
	return n
}

func (m *MockEngine) inflightConsole(opts models.Options) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exchanges := m.inflight
	if limit := optInt(opts, "limit", -1); limit >= 0 && limit < len(exchanges) {
		exchanges = exchanges[:limit]
	}
	return models.InflightList{
		Inflight:  len(m.inflight),
		Max:       len(exchanges),
		Exchanges: append([]models.InflightExchange{}, exchanges...),
	}, nil
}

func (m *MockEngine) eventConsole(opts models.Options) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := optInt(opts, "limit", 50)
	var out models.EventList
	out.Events, out.RouteEvents, out.ExchangeEvents = []models.Event{}, []models.Event{}, []models.Event{}
	// newest first
	for i := len(m.events) - 1; i >= 0; i-- {
		e := m.events[i]
		switch e.Kind {
		case "route":
			if len(out.RouteEvents) < limit {
				out.RouteEvents = append(out.RouteEvents, e)
			}
		case "exchange":
			if len(out.ExchangeEvents) < limit {
				out.ExchangeEvents = append(out.ExchangeEvents, e)
			}
		default:
			if len(out.Events) < limit {
				out.Events = append(out.Events, e)
			}
		}
	}
	return out, nil
}

func (m *MockEngine) variablesConsole(models.Options) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.VariableList{Variables: []models.Variable{
		{Repository: "global", Key: "orders.processed", ClassName: "java.lang.Long", Value: strconv.FormatInt(m.processed, 10)},
		{Repository: "global", Key: "region", ClassName: "java.lang.String", Value: "eu-west-1"},
		{Repository: "route", Key: "kafka-ingest:lastOffset", ClassName: "java.lang.Long", Value: strconv.Itoa(m.rnd.Intn(100000))},
		{Repository: "route", Key: "rest-orders:lastCustomer", ClassName: "java.lang.String", Value: "ACME Corp"},
	}}, nil
}

func (m *MockEngine) healthConsole(models.Options) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kafka := "UP"
	if !m.healthy {
		kafka = "DOWN"
	}
	return models.HealthReport{
		Up: m.healthy,
		Checks: []models.HealthCheck{
			{ID: "context", Group: "camel", State: "UP", Readiness: true, Liveness: true},
			{ID: "routes", Group: "camel", State: "UP", Readiness: true},
			{ID: "kafka-consumer", Group: "camel", State: kafka, Readiness: true, Message: "consumer kafka-ingest"},
		},
	}, nil
}

// optInt reads a numeric option that may have crossed the wire as a float,
// a json.Number or a string
func optInt(opts models.Options, key string, def int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func optString(opts models.Options, key string) string {
	if s, ok := opts[key].(string); ok {
		return s
	}
	return ""
}
