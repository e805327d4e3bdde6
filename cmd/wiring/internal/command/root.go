package command

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/wiring/version"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   "wiring",
		Short: "Validate, inspect and resolve dependency graphs",
		Long: Highlight("Usage: wiring [global options] <command> [args]") + "\n\n" +
			"wiring loads a graph manifest together with the application settings,\n" +
			"then validates it, prints its structure or resolves a provider.\n",
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validateOutput()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Manifest, "file", "f", "", "Path to the graph manifest")
	flags.StringVar(&opts.ConfigName, "name", "", "Application name used to locate configuration files")
	flags.StringVar(&opts.ConfigFile, "config", "", "Path to the settings file")
	flags.StringVar(&opts.EnvFile, "env-file", "", "Path to a .env file")
	flags.StringVarP(&opts.Output, "output", "o", "", "Output format. One of: (json | yaml)")
	flags.BoolVar(&opts.Debug, "debug", false, "Log graph activity to stderr")

	cmd.AddCommand(
		newValidateCommand(opts),
		newGraphCommand(opts),
		newGetCommand(opts),
		newVersionCommand(opts),
	)
	setUsageTemplate(cmd)
	return cmd
}

func setUsageTemplate(cmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	tmpl := strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(cmd.UsageTemplate())
	cmd.SetUsageTemplate(tmpl)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color.NoColor = true
	}

	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			root.PrintErrln(failMark, msg)
		}
		return 1
	}
	return 0
}
