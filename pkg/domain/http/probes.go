package http

import "context"

// Probe statuses. Anything other than StatusOK is reported as 503.
const (
	StatusOK       = "ok"
	StatusStarting = "starting"
	StatusFailed   = "failed"
)

// ProbeResponse is the JSON body of a probe endpoint.
type ProbeResponse struct {
	Status  string                 `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Healthy reports whether the probe passed.
func (r ProbeResponse) Healthy() bool {
	return r.Status == StatusOK
}

// ProbeCheck performs one health check. ctx is the request context.
type ProbeCheck func(ctx context.Context) ProbeResponse

// ProbeHandlers holds the Kubernetes probe checks served under /internal:
// liveness at /health, readiness at /ready and startup at /startup.
// A nil check always passes.
type ProbeHandlers struct {
	LivenessCheck  ProbeCheck
	ReadinessCheck ProbeCheck
	StartupCheck   ProbeCheck
}

// DefaultProbeHandlers returns checks that always pass.
func DefaultProbeHandlers() *ProbeHandlers {
	ok := func(context.Context) ProbeResponse { return ProbeResponse{Status: StatusOK} }
	return &ProbeHandlers{
		LivenessCheck:  ok,
		ReadinessCheck: ok,
		StartupCheck:   ok,
	}
}

// NewProbeResponse creates a ProbeResponse, for example
//
//	NewProbeResponse(StatusOK, map[string]interface{}{"routes": 12})
func NewProbeResponse(status string, details map[string]interface{}) ProbeResponse {
	return ProbeResponse{Status: status, Details: details}
}
