package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://dummyjson.com", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, float64(10), cfg.RateLimit)
	assert.Equal(t, 5, cfg.Burst)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom values", func(t *testing.T) {
		cfg := NewConfig(
			WithBaseURL("http://localhost:8080"),
			WithTimeout(time.Second),
			WithRateLimit(2, 1),
			WithUserAgent("test"),
		)

		assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
		assert.Equal(t, time.Second, cfg.Timeout)
		assert.Equal(t, float64(2), cfg.RateLimit)
		assert.Equal(t, 1, cfg.Burst)
		assert.Equal(t, "test", cfg.UserAgent)
	})
}

func TestConfig_Normalize(t *testing.T) {
	cfg := NewConfig(WithBaseURL("  http://localhost:8080//  "))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr string
	}{
		{"valid defaults", nil, ""},
		{"missing base url", []ConfigOption{WithBaseURL("")}, "BaseURL is required"},
		{"relative base url", []ConfigOption{WithBaseURL("dummyjson.com")}, "absolute URL"},
		{"zero timeout", []ConfigOption{WithTimeout(0)}, "Timeout must be positive"},
		{"negative rate", []ConfigOption{WithRateLimit(-1, 1)}, "RateLimit cannot be negative"},
		{"rate without burst", []ConfigOption{WithRateLimit(5, 0)}, "Burst must be at least 1"},
		{"unlimited rate", []ConfigOption{WithRateLimit(0, 0)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Limiter(t *testing.T) {
	unlimited := NewConfig(WithRateLimit(0, 0)).Limiter()
	assert.Equal(t, rate.Inf, unlimited.Limit())

	limited := NewConfig(WithRateLimit(3, 2)).Limiter()
	assert.Equal(t, rate.Limit(3), limited.Limit())
	assert.Equal(t, 2, limited.Burst())
}
