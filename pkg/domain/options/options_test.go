package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string
	Size    int
	Enabled bool
}

func createOption(name string, size int, enabled bool, shouldError bool) Option[testConfig] {
	return OptionFunc[testConfig](func(c *testConfig) error {
		if shouldError {
			return errors.New("option error")
		}
		c.Name = name
		c.Size = size
		c.Enabled = enabled
		return nil
	})
}

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option[testConfig]
		expected  testConfig
		wantError bool
	}{
		{
			name:     "no options",
			opts:     nil,
			expected: testConfig{},
		},
		{
			name: "single option",
			opts: []Option[testConfig]{
				createOption("routes", 8, true, false),
			},
			expected: testConfig{Name: "routes", Size: 8, Enabled: true},
		},
		{
			name: "last option wins",
			opts: []Option[testConfig]{
				createOption("first", 1, true, false),
				createOption("second", 2, false, false),
			},
			expected: testConfig{Name: "second", Size: 2},
		},
		{
			name: "error stops further options",
			opts: []Option[testConfig]{
				createOption("first", 1, true, false),
				createOption("second", 2, false, true),
				createOption("third", 3, true, false),
			},
			expected:  testConfig{Name: "first", Size: 1, Enabled: true},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &testConfig{}
			err := Apply(cfg, tt.opts...)

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, *cfg)
		})
	}
}

func TestApply_NilOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option[testConfig]
	}{
		{
			name: "nil interface entries",
			opts: []Option[testConfig]{nil, createOption("x", 1, true, false), nil},
		},
		{
			name: "nil function entries",
			opts: []Option[testConfig]{
				OptionFunc[testConfig](nil),
				createOption("x", 1, true, false),
				OptionFunc[testConfig](nil),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &testConfig{}
			require.NoError(t, Apply(cfg, tt.opts...))
			assert.Equal(t, testConfig{Name: "x", Size: 1, Enabled: true}, *cfg)
		})
	}
}

func TestNew(t *testing.T) {
	defaults := testConfig{Name: "default", Size: 16}

	t.Run("defaults kept when no options", func(t *testing.T) {
		cfg, err := New(defaults)
		require.NoError(t, err)
		assert.Equal(t, defaults, cfg)
	})

	t.Run("options override defaults", func(t *testing.T) {
		cfg, err := New(defaults, OptionFunc[testConfig](func(c *testConfig) error {
			c.Enabled = true
			return nil
		}))
		require.NoError(t, err)
		assert.Equal(t, testConfig{Name: "default", Size: 16, Enabled: true}, cfg)
	})

	t.Run("error returns defaults", func(t *testing.T) {
		cfg, err := New(defaults, createOption("broken", 0, false, true))
		assert.Error(t, err)
		assert.Equal(t, defaults, cfg)
	})
}
