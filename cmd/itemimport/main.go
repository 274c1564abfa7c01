// Command itemimport loads assessment items from a CSV or Excel sheet into
// the item service. Each row is mapped to an item document by a mapping
// file, completed with defaults, validated, de-duplicated and then either
// printed (dry run) or submitted.
package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"itemimport/internal/config"
	"itemimport/internal/logging"
	"itemimport/internal/storage"

	// results store backends selectable through results.kind
	_ "itemimport/internal/storage/all"
)

// exitError carries a specific process exit code out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// flagBindings maps config keys to the flags that override them.
var flagBindings = map[string]string{
	"run.dry_run":     "dryrun",
	"run.user":        "user",
	"run.env":         "env",
	"run.file":        "file",
	"run.mapping":     "mapping",
	"run.output_dir":  "output-dir",
	"run.strict":      "strict",
	"api.concurrency": "concurrency",
	"api.timeout":     "timeout",
	"log.level":       "log-level",
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var (
		cfgFile      string
		validateOnly bool
	)

	cmd := &cobra.Command{
		Use:   "itemimport",
		Short: "Import assessment items from a CSV or Excel sheet",
		Long: `itemimport maps every data row of an item sheet to an assessment item
using a mapping file and loads the items into the item service.

Examples:
  itemimport -f items.csv -u user-42 -e qa
  itemimport -f items.xlsx -u user-42 -m mapping.yaml --dryrun
  itemimport --config import.yaml --validate`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			log := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

			issues := append(config.Validate(cfg), checkResultsKind(cfg.Results.Kind)...)
			for _, iss := range issues {
				ev := log.Warn()
				if iss.Severity == config.SeverityError {
					ev = log.Error()
				}
				ev.Str("path", iss.Path).Msg(iss.Message)
			}
			if config.HasErrors(issues) {
				return errors.New("configuration is invalid")
			}
			if validateOnly {
				log.Info().Msg("configuration is valid")
				return nil
			}

			res, err := runImport(cmd.Context(), cfg, log, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if cfg.Run.Strict && !res.ok {
				return &exitError{code: 2, msg: "completed with errors"}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	f.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	f.BoolP("dryrun", "d", false, "print item documents instead of submitting them")
	f.StringP("user", "u", "", "user id written to every item as portalOwner")
	f.StringP("env", "e", "prod", "target environment")
	f.StringP("file", "f", "", "item sheet: CSV or XLSX path, or an http(s) URL")
	f.StringP("mapping", "m", "itemImport/mcq_mapping_v2.json", "mapping file (JSON or YAML)")
	f.String("output-dir", "itemImport", "directory for success.json and output.json")
	f.Bool("strict", false, "exit with status 2 when any item fails")
	f.Int("concurrency", 10, "maximum in-flight item requests")
	f.Duration("timeout", 0, "per-request timeout (default 240s)")
	f.String("log-level", "info", "log level: debug, info, warn, error")

	if err := bindFlags(v, cmd); err != nil {
		panic(err)
	}
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagBindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// checkResultsKind reports a results.kind with no registered backend.
func checkResultsKind(kind string) []config.Issue {
	if kind == "" || slices.Contains(storage.ListKinds(), kind) {
		return nil
	}
	return []config.Issue{{
		Severity: config.SeverityError,
		Path:     "results.kind",
		Message:  fmt.Sprintf("unknown results store %q; use one of %s", kind, strings.Join(storage.ListKinds(), ", ")),
	}}
}
