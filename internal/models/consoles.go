package models

// ============================================================================
// Route console (`route`)
// ============================================================================

// RouteList is the payload of the route console
type RouteList struct {
	Routes []Route `json:"routes"`
}

// Route describes a single route and its exchange statistics
type Route struct {
	RouteID    string          `json:"routeId"`
	From       string          `json:"from"`
	Source     string          `json:"source,omitempty"`
	State      string          `json:"state"` // "Started", "Stopped", "Suspended"
	Uptime     string          `json:"uptime,omitempty"`
	Statistics RouteStatistics `json:"statistics"`
}

// RouteStatistics holds the exchange counters of a route
type RouteStatistics struct {
	IdleSince           int64  `json:"idleSince"`
	ExchangesThroughput string `json:"exchangesThroughput,omitempty"`
	ExchangesTotal      int64  `json:"exchangesTotal"`
	ExchangesFailed     int64  `json:"exchangesFailed"`
	ExchangesInflight   int64  `json:"exchangesInflight"`
}

// ============================================================================
// REST console (`rest`)
// ============================================================================

// RestList is the payload of the rest console
type RestList struct {
	Rests []RestEndpoint `json:"rests"`
}

// RestEndpoint describes a REST DSL endpoint
type RestEndpoint struct {
	URL           string `json:"url"`
	Method        string `json:"method"`
	ContractFirst bool   `json:"contractFirst"`
	State         string `json:"state"`
	Consumes      string `json:"consumes,omitempty"`
	Produces      string `json:"produces,omitempty"`
	InType        string `json:"inType,omitempty"`
	OutType       string `json:"outType,omitempty"`
	Description   string `json:"description,omitempty"`
}

// HTTPMethods lists the methods the REST panel can filter on
var HTTPMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "CONNECT", "TRACE"}

// ============================================================================
// Micrometer console (`micrometer`)
// ============================================================================

// MetricKinds are the top-level keys of the micrometer payload, in display order
var MetricKinds = []string{"counters", "gauges", "timers", "longTaskTimer", "distributionSummary"}

// MetricLabels maps a micrometer payload key to its display label
var MetricLabels = map[string]string{
	"counters":            "Counter",
	"gauges":              "Gauge",
	"timers":              "Timer",
	"longTaskTimer":       "Long Task Timer",
	"distributionSummary": "Distribution Summary",
}

// Metric is a flattened micrometer meter. Kind is filled in by the panel from
// the payload key the meter was listed under.
type Metric struct {
	Kind        string      `json:"-"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Tags        []MetricTag `json:"tags,omitempty"`
	Count       float64     `json:"count,omitempty"`
	Value       float64     `json:"value,omitempty"`
	Mean        float64     `json:"mean,omitempty"`
	Max         float64     `json:"max,omitempty"`
	Total       float64     `json:"total,omitempty"`
	TotalAmount float64     `json:"totalAmount,omitempty"`
	ActiveTasks int64       `json:"activeTasks,omitempty"`
	Duration    float64     `json:"duration,omitempty"`
}

// MetricTag is a single key=value meter tag
type MetricTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ============================================================================
// Inflight console (`inflight`)
// ============================================================================

// InflightList is the payload of the inflight console
type InflightList struct {
	Inflight  int                `json:"inflight"`
	Max       int                `json:"max"`
	Exchanges []InflightExchange `json:"exchanges"`
}

// InflightExchange is an exchange currently being processed
type InflightExchange struct {
	ExchangeID  string `json:"exchangeId"`
	FromRouteID string `json:"fromRouteId"`
	AtRouteID   string `json:"atRouteId"`
	NodeID      string `json:"nodeId"`
	Elapsed     int64  `json:"elapsed"`  // ms spent at the current node
	Duration    int64  `json:"duration"` // ms since the exchange was created
}

// ============================================================================
// Event console (`event`)
// ============================================================================

// EventList is the payload of the event console
type EventList struct {
	Events         []Event `json:"events"`
	RouteEvents    []Event `json:"routeEvents"`
	ExchangeEvents []Event `json:"exchangeEvents"`
}

// Event is a single engine event
type Event struct {
	Kind      string `json:"-"` // "context", "route", "exchange"
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // unix millis
	Message   string `json:"message"`
}

// ============================================================================
// Variables console (`variables`)
// ============================================================================

// VariableList is the payload of the variables console
type VariableList struct {
	Variables []Variable `json:"variables"`
}

// Variable is an entry of a variable repository
type Variable struct {
	Repository string `json:"repository"`
	Key        string `json:"key"`
	ClassName  string `json:"className"`
	Value      string `json:"value"`
}

// ============================================================================
// Health console (`health`)
// ============================================================================

// HealthReport is the payload of the health console
type HealthReport struct {
	Up     bool          `json:"up"`
	Checks []HealthCheck `json:"checks"`
}

// HealthCheck is a single health check result
type HealthCheck struct {
	ID        string `json:"id"`
	Group     string `json:"group,omitempty"`
	State     string `json:"state"` // "UP", "DOWN", "UNKNOWN"
	Readiness bool   `json:"readiness"`
	Liveness  bool   `json:"liveness"`
	Message   string `json:"message,omitempty"`
}
