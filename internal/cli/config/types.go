// Package config loads the leapasp CLI configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the
// leapasp.yaml project file, LEAPASP_* environment variables and flags
// set explicitly on the command line.
package config

import (
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapasp/pkg/solver"
)

// Config holds all CLI configuration options.
type Config struct {
	// Models is the maximum number of models to compute, 0 for all.
	Models   int            `koanf:"models"`
	OptMode  solver.OptMode `koanf:"opt_mode"`
	Timeout  time.Duration  `koanf:"timeout"`
	Output   string         `koanf:"output"`
	LogLevel slog.Level     `koanf:"log_level"`
	Verbose  bool           `koanf:"verbose"`
	Color    string         `koanf:"color"`
	// Parallel bounds the files checked and models filtered at once.
	Parallel int `koanf:"parallel"`

	// ProjectRoot is the directory of the config file, or the working
	// directory when there is none.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput   = "auto" // TTY=text, non-TTY=facts
	DefaultColor    = "auto"
	DefaultLogLevel = "warn"
	DefaultParallel = 4
)

// Output formats.
var outputFormats = []string{"auto", "text", "facts", "json", "yaml", "table", "markdown"}

// Colour modes.
var colorModes = []string{"auto", "always", "never"}

// OutputFormats returns the accepted values of the output key.
func OutputFormats() []string { return append([]string(nil), outputFormats...) }

// ColorModes returns the accepted values of the color key.
func ColorModes() []string { return append([]string(nil), colorModes...) }
