package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/apyexit/internal/api"
	"github.com/pdiddy/apyexit/internal/convert"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversions over HTTP",
	Long: `Serve starts an HTTP server with two routes:

  GET  /health        liveness and version
  POST /api/convert   multipart field "file"; returns the XML document

Unreadable files answer 400 and files without the required columns answer
422, both with a JSON error body.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, map[string]string{
			"addr":       "server.addr",
			"body-limit": "server.body_limit",
			"escape":     "render.escape",
		}); err != nil {
			return err
		}

		cfg := serverConfig()
		conv := conversionConfig()
		log, err := newLogger(os.Stderr)
		if err != nil {
			return err
		}

		e := api.NewServer(cfg, convert.New(conv.Render), log, version)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("listening", "addr", cfg.Addr)
		return api.Serve(ctx, e, cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("body-limit", "10M", "maximum request size")
	serveCmd.Flags().Bool("escape", false, "XML-escape cell text (default: insert verbatim)")

	rootCmd.AddCommand(serveCmd)
}
