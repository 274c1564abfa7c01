package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity grades a configuration finding.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one finding. Path is the dotted config key, e.g. "api.concurrency".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Known kinds. Storage kinds are checked against the registered factories by
// the caller, since config must not import storage.
var (
	knownParsers = map[string]struct{}{"": {}, "csv": {}, "xlsx": {}}
	knownMetrics = map[string]struct{}{"": {}, "none": {}, "prometheus": {}, "prom": {}, "datadog": {}, "dd": {}}
)

// Validate lints cfg and returns every issue found. It does not touch the
// filesystem or network.
func Validate(cfg *Config) []Issue {
	var issues []Issue
	issues = append(issues, validateRun(cfg.Run)...)
	issues = append(issues, validateParser(cfg.Parser)...)
	issues = append(issues, validateAPI(cfg)...)
	issues = append(issues, validateResults(cfg.Results)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateRun(r Run) []Issue {
	var issues []Issue
	required := []struct{ path, val string }{
		{"run.file", r.File},
		{"run.user", r.User},
		{"run.env", r.Env},
		{"run.mapping", r.Mapping},
	}
	for _, f := range required {
		if strings.TrimSpace(f.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     f.path,
				Message:  "insufficient inputs: value is required",
			})
		}
	}
	if !r.DryRun && strings.TrimSpace(r.OutputDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "run.output_dir",
			Message:  "output directory is required unless dry_run is set",
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	kind := strings.ToLower(strings.TrimSpace(p.Kind))
	if _, ok := knownParsers[kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; use csv or xlsx", p.Kind),
		})
	}
	if s, ok := p.Options["comma"].(string); ok && len([]rune(s)) > 1 && s != `\t` && !strings.EqualFold(s, "tab") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma %q has more than one character; only the first is used", s),
		})
	}
	return issues
}

func validateAPI(cfg *Config) []Issue {
	var issues []Issue
	a := cfg.API
	if a.Concurrency <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "api.concurrency",
			Message:  fmt.Sprintf("concurrency must be > 0, got %d", a.Concurrency),
		})
	}
	if a.Timeout <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "api.timeout",
			Message:  "timeout must be > 0",
		})
	}
	if a.MaxRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "api.max_retries",
			Message:  "max_retries must be >= 0",
		})
	}
	if a.InsecureSkipVerify {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "api.insecure_skip_verify",
			Message:  "TLS verification is disabled",
		})
	}
	if u, err := url.Parse(cfg.Endpoint()); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "api.endpoints",
			Message:  fmt.Sprintf("endpoint for env %q is not an absolute URL: %q", cfg.Run.Env, cfg.Endpoint()),
		})
	}
	return issues
}

func validateResults(r Results) []Issue {
	if strings.TrimSpace(r.Kind) == "" {
		return nil
	}
	var issues []Issue
	if strings.TrimSpace(r.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "results.dsn",
			Message:  fmt.Sprintf("results store %q requires a dsn", r.Kind),
		})
	}
	if strings.TrimSpace(r.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "results.table",
			Message:  "results table must not be empty",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	backend := strings.ToLower(strings.TrimSpace(m.Backend))
	if _, ok := knownMetrics[backend]; !ok {
		return append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		})
	}
	switch backend {
	case "prometheus", "prom":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend without pushgateway_url; metrics disabled",
			})
		}
	case "datadog", "dd":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend without datadog_addr; metrics disabled",
			})
		}
	}
	return issues
}
