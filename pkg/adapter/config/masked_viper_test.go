package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainconfig "github.com/damianoneill/go-routable/pkg/domain/config"
)

func TestViperStore_GetMaskedConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   map[string]interface{}
		strategy domainconfig.MaskStrategy
		want     map[string]interface{}
	}{
		{
			name: "masks nested sensitive values",
			config: map[string]interface{}{
				"tracing": map[string]interface{}{
					"endpoint": "collector:4317",
					"headers":  map[string]interface{}{"api-key": "abcd1234"},
				},
			},
			strategy: &domainconfig.DefaultMaskStrategy{SensitiveKeys: []string{"key"}, MaskPattern: "***"},
			want: map[string]interface{}{
				"tracing": map[string]interface{}{
					"endpoint": "collector:4317",
					"headers":  map[string]interface{}{"api-key": "***"},
				},
			},
		},
		{
			name: "default strategy when nil provided",
			config: map[string]interface{}{
				"auth": map[string]interface{}{"token": "t0ps3cret", "user": "admin"},
			},
			want: map[string]interface{}{
				"auth": map[string]interface{}{"token": "******", "user": "admin"},
			},
		},
		{
			name: "masks inside lists of maps",
			config: map[string]interface{}{
				"routes": []interface{}{
					map[string]interface{}{"template": "users/:id", "secret": "s"},
				},
			},
			strategy: domainconfig.NewDefaultMaskStrategy(),
			want: map[string]interface{}{
				"routes": []interface{}{
					map[string]interface{}{"template": "users/:id", "secret": "******"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewFactory().NewMaskedStore()
			require.NoError(t, err)
			for k, v := range tt.config {
				require.NoError(t, store.Set(k, v))
			}

			got, err := store.GetMaskedConfig(tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestViperStore_ConfigHandler(t *testing.T) {
	store, err := NewFactory().NewMaskedStore()
	require.NoError(t, err)
	require.NoError(t, store.Set("tracing", map[string]interface{}{
		"endpoint": "collector:4317",
		"password": "hunter2",
	}))

	handler := store.GetConfigHandler(nil)

	t.Run("GET returns masked config", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/config", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var got map[string]interface{}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, map[string]interface{}{
			"tracing": map[string]interface{}{"endpoint": "collector:4317", "password": "******"},
		}, got)
	})

	t.Run("POST returns method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/internal/config", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
