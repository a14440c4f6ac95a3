package cli

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// Config is the parsed --config file. Top-level keys set persistent flags
// and each table sets the flags of the command with the same name:
//
//	redis = "redis://localhost:6379/0"
//
//	[layout]
//	columns = 4
//	format = ["svg", "json"]
//
//	[serve]
//	addr = ":8080"
type Config struct {
	Path     string
	Global   map[string]any
	Commands map[string]map[string]any
}

// ReadConfig parses a TOML config file.
func ReadConfig(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := &Config{
		Path:     path,
		Global:   make(map[string]any),
		Commands: make(map[string]map[string]any),
	}
	for k, v := range raw {
		if table, ok := v.(map[string]any); ok {
			cfg.Commands[k] = table
			continue
		}
		cfg.Global[k] = v
	}
	return cfg, nil
}

// Apply sets every flag of cmd that was not given on the command line
// from the config.
func (cfg *Config) Apply(cmd *cobra.Command) error {
	if err := cfg.setFlags(cmd.Flags(), cfg.Global); err != nil {
		return err
	}
	return cfg.setFlags(cmd.Flags(), cfg.Commands[cmd.Name()])
}

func (cfg *Config) setFlags(fs *pflag.FlagSet, values map[string]any) error {
	for name, v := range values {
		f := fs.Lookup(name)
		if f == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown setting %q", cfg.Path, name)
		}
		if f.Changed {
			continue
		}
		if err := fs.Set(name, flagValue(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s: setting %q", cfg.Path, name)
		}
	}
	return nil
}

// flagValue formats a decoded TOML value the way it would be typed on the
// command line. Arrays become comma-separated lists.
func flagValue(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// loadConfig reads --config once and applies it to the running command.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	if c.configPath == "" {
		return nil
	}
	if c.Config == nil || c.Config.Path != c.configPath {
		cfg, err := ReadConfig(c.configPath)
		if err != nil {
			return err
		}
		c.Config = cfg
	}
	return c.Config.Apply(cmd)
}
