// Package config holds the importer's run configuration.
//
// Values are layered by viper: built-in defaults, then an optional YAML or
// JSON file, then ITEMIMPORT_* environment variables (dots become
// underscores, e.g. ITEMIMPORT_API_CONCURRENCY), then command-line flags
// bound by the caller.
//
// Example file (trimmed):
//
//	run:
//	  env: qa
//	  mapping: itemImport/mcq_mapping_v2.json
//	parser:
//	  options: { comma: ";", normalize: true }
//	api:
//	  concurrency: 20
//	results:
//	  kind: sqlite
//	  dsn: file:results.db
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ITEMIMPORT"

// Built-in API endpoints. "prod" has its own host; every other environment
// goes to the shared learning API.
const (
	EndpointProd    = "http://lp-sandbox.ekstep.org:8080/taxonomy-service/"
	EndpointDefault = "https://api.ekstep.org/learning-api/"
)

// Config is the full run configuration.
type Config struct {
	Run     Run     `mapstructure:"run"`
	Parser  Parser  `mapstructure:"parser"`
	API     API     `mapstructure:"api"`
	Results Results `mapstructure:"results"`
	Metrics Metrics `mapstructure:"metrics"`
	Log     Log     `mapstructure:"log"`
}

// Run describes one import.
type Run struct {
	// File is the item sheet: a local path or an http(s) URL.
	File string `mapstructure:"file"`
	// Mapping is the mapping file path.
	Mapping string `mapstructure:"mapping"`
	// User is written to every item as portalOwner.
	User string `mapstructure:"user"`
	// Env selects the API endpoint.
	Env string `mapstructure:"env"`
	// DryRun prints documents instead of submitting them.
	DryRun bool `mapstructure:"dry_run"`
	// OutputDir receives success.json and output.json.
	OutputDir string `mapstructure:"output_dir"`
	// Strict turns record-level failures into a non-zero exit.
	Strict bool `mapstructure:"strict"`
}

// Parser selects how the item file is read.
type Parser struct {
	// Kind is "csv", "xlsx" or empty to pick by file extension.
	Kind string `mapstructure:"kind"`
	// Options are reader specific:
	//   csv:  comma (string), lazy_quotes (bool), trim_leading_space (bool),
	//         normalize (bool, Unicode NFC, off by default)
	//   xlsx: sheet (string, default first sheet), raw_values (bool)
	Options Options `mapstructure:"options"`
}

// API configures item submission.
type API struct {
	// Endpoints maps environment names to base URLs. The "default" entry is
	// used for environments without their own.
	Endpoints map[string]string `mapstructure:"endpoints"`
	// Timeout bounds each call.
	Timeout time.Duration `mapstructure:"timeout"`
	// Concurrency caps in-flight calls.
	Concurrency int `mapstructure:"concurrency"`
	// MaxRetries re-sends on transport errors and 429/5xx. 0 sends once.
	MaxRetries         int  `mapstructure:"max_retries"`
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
	// UserID is sent as the user-id header.
	UserID string `mapstructure:"user_id"`
}

// Results configures the optional outcome store. An empty Kind disables it.
type Results struct {
	Kind            string `mapstructure:"kind"`
	DSN             string `mapstructure:"dsn"`
	Table           string `mapstructure:"table"`
	AutoCreateTable bool   `mapstructure:"auto_create_table"`
}

// Metrics selects a metrics backend: "", "none", "prometheus" or "datadog".
type Metrics struct {
	Backend        string `mapstructure:"backend"`
	Job            string `mapstructure:"job"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr"`
	Namespace      string `mapstructure:"namespace"`
}

// Log configures the logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Endpoint returns the API base URL for Run.Env.
func (c *Config) Endpoint() string {
	env := strings.ToLower(strings.TrimSpace(c.Run.Env))
	if u, ok := c.API.Endpoints[env]; ok && u != "" {
		return u
	}
	if u := c.API.Endpoints["default"]; u != "" {
		return u
	}
	if env == "prod" {
		return EndpointProd
	}
	return EndpointDefault
}

// New returns a viper instance carrying the defaults and env binding.
// Callers bind their flags to it and then call Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("run.file", "")
	v.SetDefault("run.mapping", "itemImport/mcq_mapping_v2.json")
	v.SetDefault("run.user", "")
	v.SetDefault("run.env", "prod")
	v.SetDefault("run.dry_run", false)
	v.SetDefault("run.output_dir", "itemImport")
	v.SetDefault("run.strict", false)

	v.SetDefault("parser.kind", "")
	v.SetDefault("parser.options", map[string]any{})

	v.SetDefault("api.endpoints", map[string]string{
		"prod":    EndpointProd,
		"default": EndpointDefault,
	})
	v.SetDefault("api.timeout", "240s")
	v.SetDefault("api.concurrency", 10)
	v.SetDefault("api.max_retries", 0)
	v.SetDefault("api.insecure_skip_verify", false)
	v.SetDefault("api.user_id", "csv-import")

	v.SetDefault("results.kind", "")
	v.SetDefault("results.dsn", "")
	v.SetDefault("results.table", "item_import_results")
	v.SetDefault("results.auto_create_table", true)

	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.job", "itemimport")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.datadog_addr", "")
	v.SetDefault("metrics.namespace", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	return v
}

// Load reads the optional config file at path into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Parser.Options == nil {
		cfg.Parser.Options = Options{}
	}
	return &cfg, nil
}
