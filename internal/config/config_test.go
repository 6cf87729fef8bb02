package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults are valid",
			config: &Config{SourceFile: "main.c"},
		},
		{
			name:        "missing source file",
			config:      &Config{},
			wantErr:     true,
			errContains: "no source file",
		},
		{
			name:        "timeout too large",
			config:      &Config{SourceFile: "main.c", Timeout: 3601},
			wantErr:     true,
			errContains: "timeout",
		},
		{
			name:        "negative timeout",
			config:      &Config{SourceFile: "main.c", Timeout: -1},
			wantErr:     true,
			errContains: "timeout",
		},
		{
			name:   "timeout at boundary",
			config: &Config{SourceFile: "main.c", Timeout: 3600},
		},
		{
			name:        "memory too large",
			config:      &Config{SourceFile: "main.c", Memory: 4097},
			wantErr:     true,
			errContains: "memory",
		},
		{
			name:   "memory at boundary",
			config: &Config{SourceFile: "main.c", Memory: 4096},
		},
		{
			name:        "negative max age",
			config:      &Config{SourceFile: "main.c", MaxAgeDays: -1},
			wantErr:     true,
			errContains: "max age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(tt.config.SourceFile), "source path should be resolved")
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := &Config{Timeout: 5, Memory: 128}

	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, int64(128*1024*1024), cfg.MemoryBytes())
	assert.Equal(t, 7*24*time.Hour, cfg.MaxAge(), "unset max age defaults to a week")

	cfg.MaxAgeDays = 2
	assert.Equal(t, 48*time.Hour, cfg.MaxAge())
}
