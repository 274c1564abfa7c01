package main

import (
	"strings"

	"github.com/rs/zerolog"

	"itemimport/internal/config"
	"itemimport/internal/metrics"
	"itemimport/internal/metrics/datadog"
	"itemimport/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns the func that
// flushes it at the end of the run. Backend failures only disable metrics.
func setupMetrics(m config.Metrics, log zerolog.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch strings.ToLower(strings.TrimSpace(m.Backend)) {
	case "prometheus", "prom":
		if m.PushgatewayURL == "" {
			return func() {}
		}
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)
	case "datadog", "dd":
		if m.DatadogAddr == "" {
			return func() {}
		}
		var tags []string
		if m.Job != "" {
			tags = append(tags, "job:"+m.Job)
		}
		b, err = datadog.NewBackend(datadog.Config{Addr: m.DatadogAddr, Namespace: m.Namespace, GlobalTags: tags})
	default:
		return func() {}
	}
	if err != nil {
		log.Warn().Err(err).Str("backend", m.Backend).Msg("metrics disabled")
		return func() {}
	}

	metrics.SetBackend(b)
	log.Debug().Str("backend", m.Backend).Str("job", m.Job).Msg("metrics enabled")
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics flush failed")
		}
		metrics.Reset()
	}
}
