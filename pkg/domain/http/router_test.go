package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mocklog "github.com/damianoneill/go-routable/pkg/domain/logging/mocks"
	"github.com/damianoneill/go-routable/pkg/domain/options"
	mocktracing "github.com/damianoneill/go-routable/pkg/domain/tracing/mocks"
)

func TestRouterOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	testLogger := mocklog.NewMockLogger(ctrl)
	testTracer := mocktracing.NewMockProvider(ctrl)

	tests := []struct {
		name     string
		options  []Option
		validate func(*testing.T, RouterOptions)
	}{
		{
			name: "defaults",
			validate: func(t *testing.T, got RouterOptions) {
				assert.Empty(t, got.ServiceName)
				assert.NotNil(t, got.ProbeHandlers)
				assert.Equal(t, DefaultRequestTimeout, got.RequestTimeout)
				assert.False(t, got.EnableMetrics)
			},
		},
		{
			name: "everything",
			options: []Option{
				WithService("routable", "1.0.0"),
				WithLogger(testLogger),
				WithTracingProvider(testTracer),
				WithMetrics(true),
				WithRequestTimeout(5 * time.Second),
				WithObservabilityExclusions([]string{"/internal/*"}, []string{"/metrics"}),
			},
			validate: func(t *testing.T, got RouterOptions) {
				assert.Equal(t, "routable", got.ServiceName)
				assert.Equal(t, "1.0.0", got.ServiceVersion)
				assert.NotNil(t, got.Logger)
				assert.NotNil(t, got.TracingProvider)
				assert.True(t, got.EnableMetrics)
				assert.Equal(t, 5*time.Second, got.RequestTimeout)
				assert.Equal(t, []string{"/internal/*"}, got.ExcludeFromLogging)
				assert.Equal(t, []string{"/metrics"}, got.ExcludeFromTracing)
			},
		},
		{
			name:    "separate exclusions",
			options: []Option{WithLoggingExclusions([]string{"/a"}), WithTracingExclusions([]string{"/b"})},
			validate: func(t *testing.T, got RouterOptions) {
				assert.Equal(t, []string{"/a"}, got.ExcludeFromLogging)
				assert.Equal(t, []string{"/b"}, got.ExcludeFromTracing)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := options.New(DefaultOptions(), tt.options...)
			require.NoError(t, err)
			tt.validate(t, got)
		})
	}
}

func TestRouterOptions_Validation(t *testing.T) {
	tests := []struct {
		name    string
		option  Option
		wantErr string
	}{
		{name: "empty service name", option: WithService("", "1.0.0"), wantErr: "service name cannot be empty"},
		{name: "nil probes", option: WithProbeHandlers(nil), wantErr: "probe handlers cannot be nil"},
		{name: "zero timeout", option: WithRequestTimeout(0), wantErr: "request timeout must be positive"},
		{
			name:    "duplicate logging path",
			option:  WithObservabilityExclusions([]string{"/health", "/health"}, nil),
			wantErr: "duplicate logging path: /health",
		},
		{
			name:    "duplicate tracing path",
			option:  WithTracingExclusions([]string{"/metrics", "/metrics"}),
			wantErr: "duplicate tracing path: /metrics",
		},
		{
			name:    "relative path",
			option:  WithLoggingExclusions([]string{"health"}),
			wantErr: "path must start with /: health",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o RouterOptions
			err := options.Apply(&o, tt.option)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
