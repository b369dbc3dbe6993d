package pocketnavi

import "context"

// Aggregated health states.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthError    = "error"
)

// HealthStatus reports the store and, when configured, the lookup cache.
// A failing cache only degrades the client; a failing store makes it unusable.
type HealthStatus struct {
	Status string
	Checks map[string]string // component → "ok"/"error"
}

// Serving reports whether searches can still be answered.
func (h HealthStatus) Serving() bool {
	return h.Status != HealthError
}

// Failing lists the components whose check failed.
func (h HealthStatus) Failing() []string {
	var out []string
	for name, res := range h.Checks {
		if res != HealthOK {
			out = append(out, name)
		}
	}
	return out
}

// Health runs the component checks.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	h := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}
	return h
}
