package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/wiring/di"
)

// GetOptions holds the flags of the get command.
type GetOptions struct {
	Args []string
}

func newGetCommand(global *GlobalOptions) *cobra.Command {
	var opts GetOptions

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Resolve a provider and print its value",
		Long: Highlight("wiring get -f <manifest> <name> [--arg key=value]...") + "\n\n" +
			"Resolve the named provider with its dependencies and print the result.\n" +
			"Keys of --arg are parameter names or positions; values are YAML scalars.\n\n" +
			"Examples:\n" +
			"  wiring get -f app.yaml handler --arg verbose=true\n" +
			"  wiring get -f app.yaml handler --arg 1=true -o json\n",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments, err := parseArguments(opts.Args)
			if err != nil {
				return err
			}
			app, _, err := openApp(global, newLogger(global, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer func() { _ = app.Graph.Close() }()

			value, err := app.Graph.AcquireContext(cmd.Context(), args[0], arguments)
			if err != nil {
				appErr := di.ToAppError(err)
				if global.Output == OutputHuman {
					return fmt.Errorf("[%s] %w", appErr.Code, err)
				}
				if rerr := render(cmd.OutOrStdout(), global.Output, appErr.ToResponse()); rerr != nil {
					return rerr
				}
				return errSilent
			}

			format := global.Output
			if format == OutputHuman {
				format = OutputYAML
			}
			return render(cmd.OutOrStdout(), format, value)
		},
	}
	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "Argument as key=value; repeatable")
	return cmd
}

// parseArguments turns key=value pairs into di.Arguments. Integer keys are
// positions; values are decoded as YAML.
func parseArguments(pairs []string) (di.Arguments, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	args := make(di.Arguments, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", pair, err)
		}
		if pos, err := strconv.Atoi(key); err == nil {
			args[pos] = value
			continue
		}
		args[key] = value
	}
	return args, nil
}
