package models

import (
	"encoding/json"
	"math"
)

// ConsoleID names a dev console exposed by the engine (route, rest, inflight...)
type ConsoleID string

const (
	ConsoleRoute      ConsoleID = "route"
	ConsoleRest       ConsoleID = "rest"
	ConsoleMicrometer ConsoleID = "micrometer"
	ConsoleInflight   ConsoleID = "inflight"
	ConsoleEvent      ConsoleID = "event"
	ConsoleVariables  ConsoleID = "variables"
	ConsoleHealth     ConsoleID = "health"
)

// ConsoleResult is the payload of a fetch response and of every stream event.
// Result holds the console state as JSON text.
type ConsoleResult struct {
	Result string `json:"result"`
}

// Options configures what a console returns. Falsy values are never stored.
type Options map[string]any

// Set stores value under key, or deletes key when value is falsy
func (o Options) Set(key string, value any) {
	if IsFalsy(value) {
		delete(o, key)
		return
	}
	o[key] = value
}

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (o Options) Clone() Options {
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// IsFalsy reports whether value counts as "unset" for an option: nil, false,
// the empty string, or any numeric zero (NaN included).
func IsFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case json.Number:
		if v == "" {
			return true
		}
		f, err := v.Float64()
		return err == nil && (f == 0 || math.IsNaN(f))
	case int:
		return v == 0
	case int8:
		return v == 0
	case int16:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	case uint:
		return v == 0
	case uint8:
		return v == 0
	case uint16:
		return v == 0
	case uint32:
		return v == 0
	case uint64:
		return v == 0
	case float32:
		return v == 0 || math.IsNaN(float64(v))
	case float64:
		return v == 0 || math.IsNaN(v)
	}
	return false
}

// DefaultNamespace is the JSON-RPC method prefix of the engine's dev UI
// extension
const DefaultNamespace = "camel-quarkus-core"

// EndpointProfile represents a configured introspection endpoint
type EndpointProfile struct {
	Name      string `yaml:"name" json:"name"`
	URL       string `yaml:"url" json:"url"`                                 // ws://host:port/q/dev-ui/json-rpc-ws
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"` // JSON-RPC method prefix
}
