package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/imgajeed76/relstamp/internal/annotate"
	"github.com/imgajeed76/relstamp/internal/clock"
	"github.com/imgajeed76/relstamp/internal/config"
	"github.com/imgajeed76/relstamp/internal/logging"
	"github.com/imgajeed76/relstamp/internal/timeparse"
	"github.com/imgajeed76/relstamp/internal/ui/styles"
	"github.com/imgajeed76/relstamp/internal/util"
)

// configPath returns --config if given, otherwise the default location.
func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.Path()
}

// loadSettings reads the config file and builds the logger every command
// shares. Logs go to stderr; --verbose forces debug level.
func loadSettings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, util.ConfigLoadError(path, err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, util.ConfigLoadError(path, err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return cfg, logging.New(cmd.ErrOrStderr(), level), nil
}

// referenceClock returns a fixed clock when --now is set, the system clock
// otherwise.
func referenceClock(cmd *cobra.Command) (clock.Clock, error) {
	s, _ := cmd.Flags().GetString("now")
	if s == "" {
		return clock.Real{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, util.NewError("Invalid --now value").
			WithContext(fmt.Sprintf("%q", s)).
			WithMessage("--now takes an RFC 3339 instant").
			WithSuggestion("relstamp since --now 2024-08-20T16:02:23Z 2024-08-17T16:02:23Z").
			Wrap(err)
	}
	return clock.Fixed(t), nil
}

// buildParser builds the timestamp parser from the [parse] section.
func buildParser(cfg *config.Config) (*timeparse.Parser, error) {
	p, err := timeparse.NewInZone(cfg.Parse.Layouts, cfg.Parse.Timezone)
	if err != nil {
		return nil, util.NewError("Invalid parse.timezone").
			WithContext(cfg.Parse.Timezone).
			WithMessage(err.Error()).
			WithSuggestions(
				"relstamp config parse.timezone UTC",
				"relstamp config parse.timezone Europe/London",
			).
			Wrap(err)
	}
	return p, nil
}

// buildAnnotator builds an annotator from config, letting --class,
// --on-error and --now override it where the command defines them.
func buildAnnotator(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*annotate.Annotator, error) {
	class := cfg.Annotate.Class
	if cmd.Flags().Changed("class") {
		class, _ = cmd.Flags().GetString("class")
	}
	onError := cfg.Annotate.OnError
	if cmd.Flags().Changed("on-error") {
		onError, _ = cmd.Flags().GetString("on-error")
	}

	policy, err := annotate.ParsePolicy(onError)
	if err != nil {
		return nil, util.NewError(fmt.Sprintf("Unknown error policy '%s'", onError)).
			WithMessage("Use one of: skip, fail, legacy").
			Wrap(err)
	}
	parser, err := buildParser(cfg)
	if err != nil {
		return nil, err
	}

	opts := []annotate.Option{
		annotate.WithClass(class),
		annotate.WithParser(parser),
		annotate.WithPolicy(policy),
		annotate.WithLogger(logger),
	}
	if cmd.Flags().Lookup("now") != nil {
		clk, err := referenceClock(cmd)
		if err != nil {
			return nil, err
		}
		opts = append(opts, annotate.WithClock(clk))
	}

	a, err := annotate.New(opts...)
	if errors.Is(err, annotate.ErrInvalidClass) {
		return nil, util.InvalidClassError(class, err)
	}
	return a, err
}

// colorFor reports whether output written to w should be colored.
func colorFor(w io.Writer) bool {
	if styles.NoColor() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
