package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapasp/pkg/solver"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapasp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Models)
	assert.Equal(t, solver.OptModeAuto, cfg.OptMode)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, DefaultColor, cfg.Color)
	assert.Equal(t, DefaultParallel, cfg.Parallel)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `models: 3
opt_mode: optN
timeout: 1m30s
output: json
log_level: debug
color: never
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Models)
	assert.Equal(t, solver.OptModeOptN, cfg.OptMode)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, path, GetConfigFileUsed())

	wantRoot, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, cfg.ProjectRoot)
}

func TestLoadConfig_SearchesUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "models: 7\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Models)
	assert.NotEmpty(t, GetConfigFileUsed())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{name: "unknown opt mode", content: "opt_mode: best\n", errSubstr: "unable to decode config"},
		{name: "bad duration", content: "timeout: soon\n", errSubstr: "unable to decode config"},
		{name: "negative models", content: "models: -1\n", errSubstr: "models must not be negative"},
		{name: "unknown output", content: "output: xml\n", errSubstr: "unknown output format"},
		{name: "unknown color", content: "color: rainbow\n", errSubstr: "unknown color mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "opt_mode: enum\nmodels: 1\n")
	t.Setenv("LEAPASP_OPT_MODE", "opt")
	t.Setenv("LEAPASP_MODELS", "2")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("opt-mode", "", "optimization mode")
	flags.Int("models", 0, "models")
	flags.Duration("timeout", 0, "timeout")
	require.NoError(t, flags.Set("opt-mode", "optN"))
	require.NoError(t, flags.Set("timeout", "5s"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, solver.OptModeOptN, cfg.OptMode, "flag value should override config file and env var")
	assert.Equal(t, 2, cfg.Models, "env var should be used when flag is not set")
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "output: yaml\n")
	t.Setenv("LEAPASP_OUTPUT", "table")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output, "env var should override config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{Output: "auto", Color: "auto", Parallel: 1}
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("output formats", func(t *testing.T) {
		for _, format := range []string{"text", "facts", "json", "yaml", "table", "markdown"} {
			cfg := valid()
			cfg.Output = format
			assert.NoError(t, cfg.Validate(), format)
		}
		cfg := valid()
		cfg.Output = "csv"
		require.ErrorContains(t, cfg.Validate(), `unknown output format "csv"`)
	})

	t.Run("zero parallel", func(t *testing.T) {
		cfg := valid()
		cfg.Parallel = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parallel must be at least 1")
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := valid()
		cfg.Timeout = -time.Second
		require.Error(t, cfg.Validate())
	})
}

func TestConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: slog.LevelWarn}
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	cfg.Verbose = true
	cfg.NewLogger(&buf).Debug("debug")
	assert.Contains(t, buf.String(), "debug")
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestDefaults_CoverConfigKeys(t *testing.T) {
	defaults := Defaults()
	for _, key := range []string{"models", "opt_mode", "timeout", "output", "log_level", "verbose", "color", "parallel"} {
		assert.Contains(t, defaults, key)
	}
	assert.Equal(t, "LEAPASP_OPT_MODE", EnvVar("opt_mode"))
}
