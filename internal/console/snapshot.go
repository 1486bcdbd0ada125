package console

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lazycamel/lazycamel/internal/models"
)

// Snapshot is the latest known state of a console. It is replaced as a whole
// and never modified after creation, so callers must not mutate Data either.
type Snapshot struct {
	Data       map[string]any
	ReceivedAt time.Time

	raw json.RawMessage
}

// emptySnapshot is returned before any data has arrived
func emptySnapshot() Snapshot {
	return Snapshot{Data: map[string]any{}}
}

// DecodeSnapshot parses the JSON text carried by a ConsoleResult. The payload
// must be a JSON object.
func DecodeSnapshot(res models.ConsoleResult, at time.Time) (Snapshot, error) {
	raw := json.RawMessage(res.Result)
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse console JSON: %w", err)
	}
	if data == nil {
		return Snapshot{}, fmt.Errorf("console JSON is not an object")
	}
	return Snapshot{Data: data, ReceivedAt: at, raw: raw}, nil
}

// Empty reports whether this is the "no data" sentinel
func (s Snapshot) Empty() bool {
	return len(s.raw) == 0
}

// Has reports whether the snapshot carries the top-level key
func (s Snapshot) Has(key string) bool {
	_, ok := s.Data[key]
	return ok
}

// Decode unmarshals the raw snapshot into v. On the sentinel it leaves v untouched.
func (s Snapshot) Decode(v any) error {
	if s.Empty() {
		return nil
	}
	return json.Unmarshal(s.raw, v)
}
