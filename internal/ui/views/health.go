package views

import (
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

// HealthStatus summarizes the health console for the status badge
type HealthStatus struct {
	Known  bool
	Up     bool
	Checks []models.HealthCheck
}

// Failing returns the ids of checks that are not UP
func (h HealthStatus) Failing() []string {
	var ids []string
	for _, c := range h.Checks {
		if c.State != "UP" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ReadHealth decodes a health console snapshot. Known is false until the
// first report arrives.
func ReadHealth(snap console.Snapshot) HealthStatus {
	if !snap.Has("up") {
		return HealthStatus{}
	}
	var report models.HealthReport
	if err := snap.Decode(&report); err != nil {
		return HealthStatus{}
	}
	return HealthStatus{Known: true, Up: report.Up, Checks: report.Checks}
}
