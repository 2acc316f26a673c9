package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tnqn/code-review-comments/internal/app"
	"github.com/tnqn/code-review-comments/internal/report"
)

var version = "dev"

// state carries the exit status out of the command tree.
type state struct {
	exit int
}

type rootOptions struct {
	logLevel string
	noColor  bool
}

// Execute runs the command tree with args and returns the process exit status.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	st := &state{}
	root := newRootCmd(st)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "lintguide: %v\n", err)
		if app.IsUsage(err) {
			fmt.Fprintln(stderr, "Run 'lintguide --help' for usage.")
		}
		return report.ExitFailure
	}
	return st.exit
}

func newRootCmd(st *state) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "lintguide",
		Short:         "Check Go sources against the mechanical parts of a code review style guide",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
			}
			out := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: opts.noColor || !colorEnabled()}
			logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	rootCmd.SetVersionTemplate("lintguide version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for diagnostics on stderr (debug, info, warn, error)")

	rootCmd.AddCommand(
		newCheckCmd(st, opts),
		newRulesCmd(),
		newConfigCmd(),
	)
	return rootCmd
}
