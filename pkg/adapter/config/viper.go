// Package config implements the domain configuration store on viper.
package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	domainconfig "github.com/damianoneill/go-routable/pkg/domain/config"
	"github.com/damianoneill/go-routable/pkg/domain/options"
)

var _ domainconfig.MaskedStore = (*ViperStore)(nil)

// ViperStore implements domainconfig.MaskedStore using a private viper
// instance.
type ViperStore struct {
	v  *viper.Viper
	mu sync.RWMutex
}

// Factory creates Viper-backed stores
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// NewStore implements domainconfig.Factory.
func (f *Factory) NewStore(opts ...domainconfig.Option) (domainconfig.Store, error) {
	s, err := f.NewMaskedStore(opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMaskedStore creates a store that can also serve its masked settings.
func (f *Factory) NewMaskedStore(opts ...domainconfig.Option) (*ViperStore, error) {
	var o domainconfig.StoreOptions
	if err := options.Apply(&o, opts...); err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if o.EnvPrefix != "" {
		v.SetEnvPrefix(o.EnvPrefix)
		v.AutomaticEnv()
	}
	for key, value := range o.Defaults {
		v.SetDefault(key, value)
	}

	s := &ViperStore{v: v}
	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		if err := s.ReadConfig(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ReadConfig loads the configuration file
func (s *ViperStore) ReadConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Watch calls onChange after the configuration file has been modified and
// re-read. It must be called after a config file was configured.
func (s *ViperStore) Watch(onChange func(name string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		onChange(e.Name)
	})
	s.v.WatchConfig()
}

func (s *ViperStore) GetString(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

func (s *ViperStore) GetInt(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetInt(key), true
}

func (s *ViperStore) GetBool(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return false, false
	}
	return s.v.GetBool(key), true
}

func (s *ViperStore) GetDuration(key string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetDuration(key), true
}

func (s *ViperStore) GetStringSlice(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return nil, false
	}
	return s.v.GetStringSlice(key), true
}

// GetStringMap returns a nested section such as "global_params".
func (s *ViperStore) GetStringMap(key string) (map[string]interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return nil, false
	}
	return s.v.GetStringMap(key), true
}

func (s *ViperStore) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(key, value)
	return nil
}

func (s *ViperStore) IsSet(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.IsSet(key)
}

func (s *ViperStore) UnmarshalKey(key string, target interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.v.UnmarshalKey(key, target); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *ViperStore) Unmarshal(target interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.v.Unmarshal(target); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// GetConfigHandler serves the masked settings as JSON on GET.
func (s *ViperStore) GetConfigHandler(maskStrategy domainconfig.MaskStrategy) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		settings, err := s.GetMaskedConfig(maskStrategy)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(settings); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// GetMaskedConfig returns every setting with sensitive leaves replaced.
// A nil strategy falls back to domainconfig.NewDefaultMaskStrategy.
func (s *ViperStore) GetMaskedConfig(maskStrategy domainconfig.MaskStrategy) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maskStrategy == nil {
		maskStrategy = domainconfig.NewDefaultMaskStrategy()
	}
	return mask("", s.v.AllSettings(), maskStrategy), nil
}

func mask(prefix string, settings map[string]interface{}, strategy domainconfig.MaskStrategy) map[string]interface{} {
	out := make(map[string]interface{}, len(settings))
	for k, v := range settings {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case map[string]interface{}:
			out[k] = mask(key, val, strategy)
		case []interface{}:
			items := make([]interface{}, len(val))
			for i, item := range val {
				if m, ok := item.(map[string]interface{}); ok {
					items[i] = mask(key, m, strategy)
				} else {
					items[i] = strategy.MaskValue(key, item)
				}
			}
			out[k] = items
		default:
			out[k] = strategy.MaskValue(key, v)
		}
	}
	return out
}
