package http_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-routable/pkg/domain/http"
)

func TestNewProbeResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		details  map[string]interface{}
		wantJSON string
		healthy  bool
	}{
		{
			name:     "status only",
			status:   http.StatusOK,
			wantJSON: `{"status":"ok"}`,
			healthy:  true,
		},
		{
			name:     "with details",
			status:   http.StatusStarting,
			details:  map[string]interface{}{"routes": 3},
			wantJSON: `{"status":"starting","details":{"routes":3}}`,
		},
		{
			name:     "failed",
			status:   http.StatusFailed,
			details:  map[string]interface{}{"error": "invalid template a/:w:/:x"},
			wantJSON: `{"status":"failed","details":{"error":"invalid template a/:w:/:x"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := http.NewProbeResponse(tt.status, tt.details)
			assert.Equal(t, tt.healthy, got.Healthy())

			b, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(b))
		})
	}
}

func TestDefaultProbeHandlers(t *testing.T) {
	h := http.DefaultProbeHandlers()

	for name, check := range map[string]http.ProbeCheck{
		"liveness":  h.LivenessCheck,
		"readiness": h.ReadinessCheck,
		"startup":   h.StartupCheck,
	} {
		t.Run(name, func(t *testing.T) {
			require.NotNil(t, check)
			got := check(context.Background())
			assert.True(t, got.Healthy())
			assert.Nil(t, got.Details)
		})
	}
}
