package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/assetgrid/internal/render"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, render.FormatJSON, cfg.Output)
}

func TestNewConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{name: "log format", cfg: Config{LogFormat: "xml"}, errMsg: "invalid log format"},
		{name: "log level", cfg: Config{LogLevel: "trace"}, errMsg: "invalid log level"},
		{name: "output", cfg: Config{Output: "csv"}, errMsg: "unknown output format"},
		{name: "query with table", cfg: Config{Output: render.FormatTable, Query: ".[]"}, errMsg: "cannot be combined"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
