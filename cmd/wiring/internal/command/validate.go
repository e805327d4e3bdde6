package command

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/wiring/di"
	apperrors "github.com/kbukum/wiring/errors"
	"github.com/kbukum/wiring/logger"
)

// ValidateOptions holds the flags of the validate command.
type ValidateOptions struct {
	Warm bool
}

// ValidationReport is the machine-readable result of validate.
type ValidationReport struct {
	Graph     string `json:"graph" yaml:"graph"`
	Valid     bool   `json:"valid" yaml:"valid"`
	Providers int    `json:"providers" yaml:"providers"`
	Levels    int    `json:"levels,omitempty" yaml:"levels,omitempty"`
	Warmed    bool   `json:"warmed,omitempty" yaml:"warmed,omitempty"`

	Error *apperrors.ErrorBody `json:"error,omitempty" yaml:"error,omitempty"`

	cause error
}

func newValidateCommand(global *GlobalOptions) *cobra.Command {
	var opts ValidateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a graph for self-dependencies, missing dependencies and cycles",
		Long: Highlight("wiring validate -f <manifest>") + "\n\n" +
			"Validate the graph declared by a manifest merged with the configured\n" +
			"instances. With --warm every process-scoped provider is also built.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), global, opts, newLogger(global, cmd.ErrOrStderr()))
		},
	}
	cmd.Flags().BoolVar(&opts.Warm, "warm", false, "Build process-scoped providers after validation")
	return cmd
}

func runValidate(ctx context.Context, w io.Writer, global *GlobalOptions, opts ValidateOptions, log *logger.Logger) error {
	app, _, err := openApp(global, log)
	if err != nil {
		return err
	}
	g := app.Graph
	defer func() { _ = g.Close() }()

	report := checkGraph(ctx, g, opts.Warm)
	if global.Output != OutputHuman {
		if err := render(w, global.Output, report); err != nil {
			return err
		}
	} else {
		writeValidation(w, report)
	}
	if !report.Valid {
		return errSilent
	}
	return nil
}

func checkGraph(ctx context.Context, g *di.Graph, warm bool) ValidationReport {
	report := ValidationReport{Graph: g.ID(), Providers: g.Len()}
	fail := func(err error) ValidationReport {
		body := di.ToAppError(err).ToResponse().Error
		report.Error = &body
		report.cause = err
		return report
	}

	if err := g.Validate(); err != nil {
		return fail(err)
	}
	levels, err := g.Levels()
	if err != nil {
		return fail(err)
	}
	report.Levels = len(levels)

	if warm {
		if ctx == nil {
			ctx = context.Background()
		}
		if err := g.Warm(ctx); err != nil {
			return fail(err)
		}
		report.Warmed = true
	}
	report.Valid = true
	return report
}

func writeValidation(w io.Writer, r ValidationReport) {
	if !r.Valid {
		fmt.Fprintf(w, "%s graph %s is invalid [%s]\n  %v\n", failMark, r.Graph, r.Error.Code, r.cause)
		return
	}
	fmt.Fprintf(w, "%s graph %s is valid: %d providers in %d levels\n", okMark, r.Graph, r.Providers, r.Levels)
	if r.Warmed {
		fmt.Fprintf(w, "%s process-scoped providers built\n", okMark)
	}
}
