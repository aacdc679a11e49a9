package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/relstamp/internal/server"
	"github.com/imgajeed76/relstamp/internal/ui/styles"
	"github.com/imgajeed76/relstamp/internal/util"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve pages with timestamps annotated on load",
		Long: `Serve a directory over HTTP. Every HTML page is annotated each time
it is requested; other files are served unchanged.

Examples:
  relstamp serve                 # Serve serve.root on serve.host:serve.port
  relstamp serve ./public -p 8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}

	cmd.Flags().String("host", "", "Address to listen on (overrides serve.host)")
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides serve.port)")
	cmd.Flags().String("class", "", "Marker class (overrides annotate.class)")
	cmd.Flags().String("on-error", "", "Error policy: skip, fail, legacy (overrides annotate.on_error)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	sc := server.Config{
		Host: cfg.Serve.Host,
		Port: cfg.Serve.Port,
		Root: cfg.Serve.Root,
	}
	if len(args) == 1 {
		sc.Root = args[0]
	}
	if cmd.Flags().Changed("host") {
		sc.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		sc.Port, _ = cmd.Flags().GetInt("port")
	}

	if info, err := os.Stat(sc.Root); err != nil || !info.IsDir() {
		return util.NewError("Cannot serve directory").
			WithContext(sc.Root).
			WithMessage("The page root must be an existing directory").
			WithSuggestion("relstamp serve ./public")
	}

	a, err := buildAnnotator(cmd, cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(sc, a, logger)
	return srv.ListenAndServe(ctx, func(addr string) {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.SuccessMsg(fmt.Sprintf("Serving %s on %s", sc.Root, styles.Cyan("http://"+addr))))
	})
}
