package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imgajeed76/relstamp/internal/config"
	"github.com/imgajeed76/relstamp/internal/util"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get and set options",
		Long: `Get and set relstamp configuration options.

Options:
` + config.GenerateHelpText() + `
Examples:
  relstamp config annotate.class              # Get value
  relstamp config annotate.on_error fail      # Set value
  relstamp config --list                      # List all config
  relstamp config --path                      # Show config file location`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ListKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runConfig,
	}

	cmd.Flags().BoolP("list", "l", false, "List all configuration")
	cmd.Flags().Bool("path", false, "Print the config file path")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	listAll, _ := cmd.Flags().GetBool("list")
	showPath, _ := cmd.Flags().GetBool("path")
	out := cmd.OutOrStdout()
	path := configPath(cmd)

	if showPath {
		fmt.Fprintln(out, path)
		return nil
	}

	// Load config
	cfg, err := config.Load(path)
	if err != nil {
		return util.ConfigLoadError(path, err)
	}

	if listAll {
		for _, key := range config.ListKeys() {
			value, _ := cfg.GetValue(key)
			fmt.Fprintf(out, "%s=%s\n", key, value)
		}
		if len(cfg.Parse.Layouts) > 0 {
			fmt.Fprintf(out, "parse.layouts=%s\n", strings.Join(cfg.Parse.Layouts, ","))
		}
		return nil
	}

	switch len(args) {
	case 0:
		return util.MissingArgumentError("key", "relstamp config annotate.class")
	case 1, 2:
	default:
		return util.TooManyArgumentsError(2, len(args))
	}

	key := strings.ToLower(args[0])

	// Get or set?
	if len(args) == 1 {
		value, ok := cfg.GetValue(key)
		if !ok {
			return unknownKeyError(key)
		}
		fmt.Fprintln(out, value)
		return nil
	}

	if err := cfg.SetValue(key, args[1]); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return unknownKeyError(key)
		}
		return util.NewError("Invalid config value").
			WithMessage(err.Error()).
			Wrap(err)
	}

	// Save config
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func unknownKeyError(key string) error {
	return util.NewError(fmt.Sprintf("Unknown config key '%s'", key)).
		WithMessage("Valid keys: " + strings.Join(config.ListKeys(), ", ")).
		WithSuggestion("relstamp config --list").
		Wrap(config.ErrUnknownKey)
}
