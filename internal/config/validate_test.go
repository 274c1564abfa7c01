package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// hasIssue reports whether issues contains one with the given severity, path
// and a message containing msg.
func hasIssue(issues []Issue, sev IssueSeverity, path, msg string) bool {
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msg) {
			return true
		}
	}
	return false
}

func validConfig() *Config {
	return &Config{
		Run: Run{
			File:      "items.csv",
			Mapping:   "mapping.json",
			User:      "128",
			Env:       "prod",
			OutputDir: "itemImport",
		},
		API: API{
			Concurrency: 10,
			Timeout:     240 * time.Second,
			Endpoints:   map[string]string{"prod": EndpointProd, "default": EndpointDefault},
		},
		Results: Results{Table: "item_import_results"},
		Metrics: Metrics{Backend: "none"},
	}
}

/*
TestValidate_Clean verifies a complete config has no issues.
*/
func TestValidate_Clean(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Validate(validConfig()))
}

/*
TestValidate_InsufficientInputs verifies each missing required input is an
error at its own path.
*/
func TestValidate_InsufficientInputs(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Run.File = ""
	cfg.Run.User = " "
	cfg.Run.Env = ""
	issues := Validate(cfg)

	assert.True(t, HasErrors(issues))
	for _, p := range []string{"run.file", "run.user", "run.env"} {
		assert.True(t, hasIssue(issues, SeverityError, p, "insufficient inputs"), p)
	}
}

func TestValidate_OutputDirOnlyWhenSubmitting(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Run.OutputDir = ""
	assert.True(t, hasIssue(Validate(cfg), SeverityError, "run.output_dir", "required"))

	cfg.Run.DryRun = true
	assert.Empty(t, Validate(cfg))
}

func TestValidate_API(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.API.Concurrency = 0
	cfg.API.Timeout = 0
	cfg.API.MaxRetries = -1
	cfg.API.InsecureSkipVerify = true
	cfg.API.Endpoints["prod"] = "not a url"
	issues := Validate(cfg)

	assert.True(t, hasIssue(issues, SeverityError, "api.concurrency", "> 0"))
	assert.True(t, hasIssue(issues, SeverityError, "api.timeout", "> 0"))
	assert.True(t, hasIssue(issues, SeverityError, "api.max_retries", ">= 0"))
	assert.True(t, hasIssue(issues, SeverityWarning, "api.insecure_skip_verify", "disabled"))
	assert.True(t, hasIssue(issues, SeverityError, "api.endpoints", "absolute URL"))
}

func TestValidate_ParserAndMetrics(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Parser = Parser{Kind: "json", Options: Options{"comma": ";;"}}
	cfg.Metrics = Metrics{Backend: "statsd"}
	issues := Validate(cfg)

	assert.True(t, hasIssue(issues, SeverityError, "parser.kind", "unknown parser kind"))
	assert.True(t, hasIssue(issues, SeverityWarning, "parser.options.comma", "first"))
	assert.True(t, hasIssue(issues, SeverityWarning, "metrics.backend", "unknown"))

	cfg.Parser = Parser{Kind: "xlsx", Options: Options{"comma": `\t`}}
	cfg.Metrics = Metrics{Backend: "prometheus"}
	issues = Validate(cfg)
	assert.False(t, HasErrors(issues))
	assert.True(t, hasIssue(issues, SeverityWarning, "metrics.pushgateway_url", "disabled"))

	cfg.Metrics = Metrics{Backend: "datadog"}
	assert.True(t, hasIssue(Validate(cfg), SeverityWarning, "metrics.datadog_addr", "disabled"))
}

func TestValidate_Results(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Results = Results{Kind: "postgres"}
	issues := Validate(cfg)
	assert.True(t, hasIssue(issues, SeverityError, "results.dsn", "requires a dsn"))
	assert.True(t, hasIssue(issues, SeverityError, "results.table", "must not be empty"))
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()
	iss := Issue{Severity: SeverityError, Path: "api.timeout", Message: "bad"}
	assert.Equal(t, "error at api.timeout: bad", iss.Error())
}
