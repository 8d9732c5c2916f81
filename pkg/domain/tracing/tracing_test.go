package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-routable/pkg/domain/options"
)

func TestWithSamplingRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		wantErr bool
	}{
		{name: "zero", rate: 0.0},
		{name: "half", rate: 0.5},
		{name: "one", rate: 1.0},
		{name: "negative", rate: -0.1, wantErr: true},
		{name: "above one", rate: 1.1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts Options
			err := WithSamplingRate(tt.rate).ApplyOption(&opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rate, opts.SamplingRate)
		})
	}
}

func TestWithExporterType(t *testing.T) {
	tests := []struct {
		exporter ExporterType
		wantErr  bool
	}{
		{exporter: HTTPExporter},
		{exporter: GRPCExporter},
		{exporter: NoopExporter},
		{exporter: "zipkin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.exporter), func(t *testing.T) {
			var opts Options
			err := WithExporterType(tt.exporter).ApplyOption(&opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exporter, opts.ExporterType)
		})
	}
}

func TestWithPropagatorTypes(t *testing.T) {
	var opts Options
	require.NoError(t, WithDefaultPropagators().ApplyOption(&opts))
	assert.Equal(t, []string{PropagatorTraceContext, PropagatorBaggage}, opts.PropagatorTypes)

	assert.Error(t, WithPropagatorTypes([]string{"b3"}).ApplyOption(&opts))
}

func TestOptionsCombined(t *testing.T) {
	var opts Options
	err := options.Apply(&opts,
		WithServiceName("routable"),
		WithServiceVersion("1.2.3"),
		WithCollectorEndpoint("localhost:4317"),
		WithExporterType(GRPCExporter),
		WithInsecure(true),
		WithHeaders(map[string]string{"api-key": "secret"}),
	)
	require.NoError(t, err)
	assert.Equal(t, Options{
		ServiceName:       "routable",
		ServiceVersion:    "1.2.3",
		CollectorEndpoint: "localhost:4317",
		ExporterType:      GRPCExporter,
		Insecure:          true,
		Headers:           map[string]string{"api-key": "secret"},
	}, opts)
}
