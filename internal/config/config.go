// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves spire-tally settings from defaults, a config file
// and SPIRE_TALLY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/spire-tally/internal/report"
	"github.com/pdiddy/spire-tally/internal/tally"
	"github.com/pdiddy/spire-tally/pkg/types"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. SPIRE_TALLY_PARSE_WHITELIST.
	EnvPrefix = "SPIRE_TALLY"

	configName = "spire-tally"
)

// SetDefaults registers every key with its default so that environment
// overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("parse.max_lines", tally.DefaultMaxLines)
	v.SetDefault("parse.max_invalid", tally.DefaultMaxInvalid)
	v.SetDefault("parse.min_cost", tally.DefaultMinCost)
	v.SetDefault("parse.max_cost", tally.DefaultMaxCost)
	v.SetDefault("parse.unparsable_cost", string(types.CostDrop))
	v.SetDefault("parse.whitelist", false)
	v.SetDefault("parse.whitelist_file", "")
	v.SetDefault("parse.fold_case", false)

	v.SetDefault("id_store.backend", string(types.IDStoreFile))
	v.SetDefault("id_store.path", "")

	v.SetDefault("report.bar_scale", report.DefaultBarScale)
	v.SetDefault("report.bar_height", report.DefaultBarHeight)
	v.SetDefault("report.qr_code", true)
	v.SetDefault("report.qr_size", report.DefaultQRSize)
	v.SetDefault("report.compress", true)
}

// Init prepares v: defaults, environment binding and the config file. An
// explicit cfgFile must exist; otherwise ./spire-tally.yaml and
// ~/.config/spire-tally/spire-tally.yaml are tried and their absence is not
// an error. It returns the config file used, if any.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", configName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a Config. A relative whitelist file is resolved
// against the config file's directory.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if wl := cfg.Parse.WhitelistFile; wl != "" && !filepath.IsAbs(wl) {
		if used := v.ConfigFileUsed(); used != "" {
			cfg.Parse.WhitelistFile = filepath.Join(filepath.Dir(used), wl)
		}
	}
	return cfg, nil
}
