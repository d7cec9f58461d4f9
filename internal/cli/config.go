package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML config file. Flags given explicitly on the
// command line win over config values.
type Config struct {
	// DB is the snapshot database path.
	DB string `yaml:"db"`
	// ReportTopN is the default row limit for top-N reports.
	ReportTopN int `yaml:"report_top_n"`
}

// DefaultReportTopN is used when neither flag nor config limits a report.
const DefaultReportTopN = 10

var loadedConfig Config

// applyConfig loads opts.Config (when set) and folds it into the options.
func applyConfig(opts *RootOptions) error {
	loadedConfig = Config{}
	if opts.Config == "" {
		return nil
	}

	raw, err := os.ReadFile(opts.Config)
	if err != nil {
		return fmt.Errorf("read config %s: %w", opts.Config, err)
	}
	if err := yaml.Unmarshal(raw, &loadedConfig); err != nil {
		return fmt.Errorf("parse config %s: %w", opts.Config, err)
	}

	if loadedConfig.DB != "" && opts.DB == "biblio.db" {
		opts.DB = loadedConfig.DB
	}
	return nil
}

// configuredTopN resolves the report row limit: explicit flag value, then
// config, then the default.
func configuredTopN(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if loadedConfig.ReportTopN > 0 {
		return loadedConfig.ReportTopN
	}
	return DefaultReportTopN
}
