package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapasp/internal/cli/config"
	"github.com/leapstack-labs/leapasp/pkg/solver"
)

// ConfigField is one configuration key.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// configDescriptions documents the keys of config.Config.
var configDescriptions = map[string]string{
	"models":    "Maximum number of models to compute, 0 for all",
	"opt_mode":  "Optimization mode: " + strings.Join(optModes(), ", "),
	"timeout":   "Search time limit such as 30s, 0 for none",
	"output":    "Output format: " + strings.Join(config.OutputFormats(), ", "),
	"log_level": "Log level: debug, info, warn, error",
	"verbose":   "Shorthand for log_level debug",
	"color":     "Colorize output: " + strings.Join(config.ColorModes(), ", "),
	"parallel":  "Files checked and models filtered concurrently",
}

// configSchema derives the configuration keys from the koanf tags of
// config.Config.
func configSchema() ([]ConfigField, error) {
	defaults := config.Defaults()
	t := reflect.TypeOf(config.Config{})
	var fields []ConfigField
	for i := range t.NumField() {
		f := t.Field(i)
		key := f.Tag.Get("koanf")
		if key == "" || key == "-" {
			continue
		}
		desc, ok := configDescriptions[key]
		if !ok {
			return nil, fmt.Errorf("configuration key %q has no description", key)
		}
		fields = append(fields, ConfigField{
			Name:        key,
			Type:        configType(f.Type),
			Default:     fmt.Sprint(defaults[key]),
			Description: desc,
		})
	}
	return fields, nil
}

// configKeys returns the configuration keys in sorted order.
func configKeys() []string {
	keys := make([]string, 0, len(config.Defaults()))
	for k := range config.Defaults() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func configType(t reflect.Type) string {
	switch t.String() {
	case "time.Duration":
		return "duration"
	case "slog.Level", "solver.OptMode":
		return "string"
	}
	return t.Kind().String()
}

func optModes() []string {
	modes := []solver.OptMode{solver.OptModeAuto, solver.OptModeOpt, solver.OptModeOptN, solver.OptModeEnum}
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = m.String()
	}
	return out
}

// generateConfigDocs writes configuration.md.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fields, err := configSchema()
	if err != nil {
		return err
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "leapasp configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("leapasp reads " + InlineCode("leapasp.yaml") + " from the working directory or the nearest parent directory. " +
		"A different file can be given with " + InlineCode("--config") + ".")

	w.Header(2, "Keys")
	headers := []string{"Key", "Type", "Default", "Environment", "Description"}
	var rows [][]string
	for _, f := range fields {
		rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(f.Default), InlineCode(config.EnvVar(f.Name)), f.Description})
	}
	w.Table(headers, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `# leapasp.yaml
models: 0
opt_mode: optN
timeout: 30s
output: text
color: auto
log_level: warn`)

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
