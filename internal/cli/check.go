package cli

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tnqn/code-review-comments/internal/app"
	"github.com/tnqn/code-review-comments/internal/config"
	"github.com/tnqn/code-review-comments/internal/report"
	"github.com/tnqn/code-review-comments/internal/scanner"
)

// checkFlagSet tracks check flags before they are converted into config overrides.
type checkFlagSet struct {
	rules      string
	format     string
	failOn     string
	configPath string
	workers    int
}

func (f checkFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	if cmd.Flags().Changed("rules") {
		ov.Rules = app.SplitAndTrim(f.rules)
	}
	if cmd.Flags().Changed("format") {
		ov.Format = f.format
	}
	if cmd.Flags().Changed("fail-on") {
		ov.FailOn = f.failOn
	}
	if cmd.Flags().Changed("workers") {
		ov.Workers = f.workers
	}
	return ov
}

// colorEnabled honours NO_COLOR and non-terminal stdout.
func colorEnabled() bool { return !color.NoColor }

func newCheckCmd(st *state, root *rootOptions) *cobra.Command {
	flags := &checkFlagSet{}

	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Check a source tree and report findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := zerolog.Ctx(ctx)
			target := args[0]

			loader := config.Loader{ConfigPath: flags.configPath, Required: cmd.Flags().Changed("config")}
			if loader.ConfigPath == "" {
				loader.ConfigPath = filepath.Join(target, config.DefaultConfigPath)
			}
			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return &app.UsageError{Err: err}
			}

			rep, err := app.Check(ctx, target, cfg)
			if err != nil {
				return err
			}
			if rep.Interrupted {
				log.Warn().Msg("🛑 Interrupted; the report covers the files checked so far")
			}

			opts := report.Options{Color: !root.noColor && colorEnabled()}
			if err := report.Write(cmd.OutOrStdout(), cfg.Format, rep, opts); err != nil {
				return err
			}

			// validated by app.Check
			failOn, _ := scanner.ParseSeverity(cfg.FailOn)
			st.exit = rep.ExitCode(failOn)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.rules, "rules", "", "Comma-separated rule IDs to run (default all)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "Output format: text, json or ndjson")
	cmd.Flags().StringVar(&flags.failOn, "fail-on", string(scanner.SeverityWarning), "Minimum severity that makes the exit status non-zero: info, warning or error")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to the config file (default <path>/"+config.DefaultConfigPath+")")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent workers for parsing and rules (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&root.noColor, "no-color", false, "Disable coloured output")
	return cmd
}
