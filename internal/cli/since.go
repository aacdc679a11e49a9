package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/relstamp/internal/reltime"
	"github.com/imgajeed76/relstamp/internal/ui/styles"
	"github.com/imgajeed76/relstamp/internal/util"
)

func newSinceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "since <timestamp>",
		Short: "Print how long ago a timestamp was",
		Long: `Print the relative label for one timestamp.

The timestamp is read with the configured layouts and zone
(see [parse] in the config file).

Examples:
  relstamp since 2024-08-17T16:02:23Z          # 3 days
  relstamp since --ago "2024-08-20 13:32:23"   # 2 hours ago`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return util.MissingArgumentError("timestamp", "relstamp since 2024-08-17T16:02:23Z")
			}
			if len(args) > 1 {
				return util.TooManyArgumentsError(1, len(args))
			}
			return nil
		},
		RunE: runSince,
	}

	cmd.Flags().Bool("ago", false, "Append \" ago\" to the label")
	cmd.Flags().String("now", "", "Reference time in RFC 3339 (default: the current time)")

	return cmd
}

func runSince(cmd *cobra.Command, args []string) error {
	ago, _ := cmd.Flags().GetBool("ago")
	text := args[0]

	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	parser, err := buildParser(cfg)
	if err != nil {
		return err
	}
	clk, err := referenceClock(cmd)
	if err != nil {
		return err
	}

	then, err := parser.Parse(text)
	if err != nil {
		return util.InvalidTimestampError(text, err)
	}
	now := clk.Now()
	logger.Debug("computing label", "then", then, "now", now, "elapsed", reltime.ElapsedSeconds(then, now))

	label, err := reltime.Since(then, now)
	switch {
	case errors.Is(err, reltime.ErrFutureTimestamp):
		return util.FutureTimestampError(text, err)
	case err != nil:
		return util.InvalidTimestampError(text, err)
	}

	s := label.String()
	if ago {
		s = label.Ago()
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.Label(s))
	return nil
}
