package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainhttp "github.com/damianoneill/go-routable/pkg/domain/http"
	"github.com/damianoneill/go-routable/pkg/domain/logging"
	mocklog "github.com/damianoneill/go-routable/pkg/domain/logging/mocks"
	mocktracing "github.com/damianoneill/go-routable/pkg/domain/tracing/mocks"
)

func newTestRouter(t *testing.T, reg *prometheus.Registry, opts ...domainhttp.Option) *Router {
	t.Helper()
	opts = append([]domainhttp.Option{domainhttp.WithService("routable", "1.0.0")}, opts...)
	r, err := NewFactoryWithRegistry(reg).New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

func TestFactory_NewRouter(t *testing.T) {
	t.Run("requires service name", func(t *testing.T) {
		r, err := NewFactoryWithRegistry(prometheus.NewRegistry()).NewRouter()
		assert.Error(t, err)
		assert.Nil(t, r)
	})

	t.Run("rejects invalid option", func(t *testing.T) {
		_, err := NewFactoryWithRegistry(prometheus.NewRegistry()).NewRouter(
			domainhttp.WithService("routable", "1.0.0"),
			domainhttp.WithLoggingExclusions([]string{"relative"}),
		)
		assert.Error(t, err)
	})

	t.Run("two routers share a registry", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		newTestRouter(t, reg, domainhttp.WithMetrics(true))
		newTestRouter(t, reg, domainhttp.WithMetrics(true))
	})
}

func TestRouter_Probes(t *testing.T) {
	handlers := &domainhttp.ProbeHandlers{
		LivenessCheck: func(context.Context) domainhttp.ProbeResponse {
			return domainhttp.NewProbeResponse(domainhttp.StatusOK, map[string]interface{}{"routes": 2})
		},
		ReadinessCheck: func(context.Context) domainhttp.ProbeResponse {
			return domainhttp.NewProbeResponse(domainhttp.StatusFailed, map[string]interface{}{"error": "invalid template"})
		},
	}
	r := newTestRouter(t, prometheus.NewRegistry(), domainhttp.WithProbeHandlers(handlers))

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/internal/health", wantStatus: http.StatusOK, wantBody: `{"status":"ok","details":{"routes":2}}`},
		{path: "/internal/ready", wantStatus: http.StatusServiceUnavailable, wantBody: `{"status":"failed","details":{"error":"invalid template"}}`},
		{path: "/internal/startup", wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRouter(t, reg,
		domainhttp.WithMetrics(true),
		domainhttp.WithLoggingExclusions([]string{"/internal/*"}),
	)
	r.Get("/resolve/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/resolve/1", "/resolve/2", "/internal/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.requests.WithLabelValues(http.MethodGet, "/resolve/{id}", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.errors.WithLabelValues(http.MethodGet, "/resolve/{id}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.metrics.requests), "excluded paths are not counted")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/resolve/{id}",service="routable",status="404",version="1.0.0"} 2`)
}

func TestRouter_NoMetricsEndpointWhenDisabled(t *testing.T) {
	r := newTestRouter(t, prometheus.NewRegistry())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Logging(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocklog.NewMockLogger(ctrl)
	logger.EXPECT().WithContext(gomock.Any()).Return(logger).Times(1)
	logger.EXPECT().InfoWith("HTTP Request", gomock.Any()).Do(func(_ string, f logging.Fields) {
		assert.Equal(t, "/routes", f["path"])
		assert.Equal(t, http.StatusOK, f["status"])
		assert.NotEmpty(t, f["request_id"])
	}).Times(1)

	r := newTestRouter(t, prometheus.NewRegistry(),
		domainhttp.WithLogger(logger),
		domainhttp.WithObservabilityExclusions([]string{"/internal/*"}, nil),
	)
	r.Get("/routes", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/routes", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/internal/ready", nil))
}

func TestRouter_TracingOnlyWhenEnabled(t *testing.T) {
	ctrl := gomock.NewController(t)

	disabled := mocktracing.NewMockProvider(ctrl)
	disabled.EXPECT().IsEnabled().Return(false)
	newTestRouter(t, prometheus.NewRegistry(), domainhttp.WithTracingProvider(disabled))

	enabled := mocktracing.NewMockProvider(ctrl)
	enabled.EXPECT().IsEnabled().Return(true)
	r := newTestRouter(t, prometheus.NewRegistry(),
		domainhttp.WithTracingProvider(enabled),
		domainhttp.WithTracingExclusions([]string{"/internal/*"}),
	)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Close(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewFactoryWithRegistry(reg).New(
		domainhttp.WithService("routable", "1.0.0"),
		domainhttp.WithMetrics(true),
	)
	require.NoError(t, err)
	r.Get("/x", func(http.ResponseWriter, *http.Request) {})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	require.NoError(t, r.Close(context.Background()))
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
