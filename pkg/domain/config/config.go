// Package config defines configuration storage used to load the route table
// and service settings.
package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/damianoneill/go-routable/pkg/domain/options"
)

//go:generate mockgen -destination=mocks/mock_config.go -package=mocks github.com/damianoneill/go-routable/pkg/domain/config Store,Factory

// Store defines the core configuration operations.
// Getters return the zero value and false when the key is not set.
type Store interface {
	GetString(key string) (string, bool)
	GetInt(key string) (int, bool)
	GetBool(key string) (bool, bool)
	GetDuration(key string) (time.Duration, bool)
	GetStringSlice(key string) ([]string, bool)
	GetStringMap(key string) (map[string]interface{}, bool)

	Set(key string, value interface{}) error
	IsSet(key string) bool

	// ReadConfig (re)loads the configuration file
	ReadConfig() error

	UnmarshalKey(key string, target interface{}) error
	Unmarshal(target interface{}) error
}

// MaskedStore is a Store that can expose its settings with secrets masked.
type MaskedStore interface {
	Store
	GetConfigHandler(maskStrategy MaskStrategy) http.Handler
	GetMaskedConfig(maskStrategy MaskStrategy) (map[string]interface{}, error)
}

// MaskStrategy decides how a single config value is rendered.
type MaskStrategy interface {
	// MaskValue receives the full dotted key (e.g. "tracing.headers.api-key")
	// and returns either the value or its masked replacement.
	MaskValue(key string, value interface{}) interface{}
}

// DefaultMaskStrategy masks values whose key contains any of SensitiveKeys,
// compared case-insensitively.
type DefaultMaskStrategy struct {
	SensitiveKeys []string
	MaskPattern   string
}

// NewDefaultMaskStrategy returns the strategy used when none is supplied.
func NewDefaultMaskStrategy() *DefaultMaskStrategy {
	return &DefaultMaskStrategy{
		SensitiveKeys: []string{"password", "secret", "key", "token", "credential"},
		MaskPattern:   "******",
	}
}

// MaskValue implements MaskStrategy
func (s *DefaultMaskStrategy) MaskValue(key string, value interface{}) interface{} {
	pattern := s.MaskPattern
	if pattern == "" {
		pattern = "******"
	}
	lower := strings.ToLower(key)
	for _, sensitive := range s.SensitiveKeys {
		if strings.Contains(lower, strings.ToLower(sensitive)) {
			return pattern
		}
	}
	return value
}

// StoreOptions holds configuration for stores
type StoreOptions struct {
	ConfigFile string
	EnvPrefix  string
	Defaults   map[string]interface{}
}

// Option is a store option
type Option = options.Option[StoreOptions]

// WithConfigFile sets the config file path
func WithConfigFile(path string) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.ConfigFile = path
		return nil
	})
}

// WithEnvPrefix sets the environment variable prefix
func WithEnvPrefix(prefix string) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.EnvPrefix = prefix
		return nil
	})
}

// WithDefaults merges default configuration values; later calls win per key.
func WithDefaults(defaults map[string]interface{}) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		if o.Defaults == nil {
			o.Defaults = make(map[string]interface{}, len(defaults))
		}
		for k, v := range defaults {
			o.Defaults[k] = v
		}
		return nil
	})
}

// Factory creates new store instances
type Factory interface {
	NewStore(opts ...Option) (Store, error)
}
