package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/apyexit/internal/convert"
	"github.com/pdiddy/apyexit/internal/secrets"
	"github.com/pdiddy/apyexit/internal/staging"
	"github.com/pdiddy/apyexit/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram conversion bot",
	Long: `Bot long-polls the Telegram Bot API. /start replies with a greeting; every
uploaded document is staged, converted, and sent back as an XML file.
Staged files are removed after each reply.

The token is read from TELEGRAM_TOKEN (a .env file is honoured) or from
.secrets/telegram-token.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, map[string]string{
			"uploads-dir": "bot.uploads_dir",
			"output-dir":  "bot.output_dir",
			"escape":      "render.escape",
		}); err != nil {
			return err
		}

		token := loadedSecrets.Get(secrets.TelegramToken)
		if token == "" {
			return fmt.Errorf("no bot token: set %s or write .secrets/%s",
				secrets.EnvName(secrets.TelegramToken), secrets.TelegramToken)
		}

		cfg := botConfig()
		conv := conversionConfig()
		log, err := newLogger(os.Stderr)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// getUpdates holds the connection for up to PollTimeout.
		client, err := telegram.NewClient(ctx, token, newHTTPClient(cfg.HTTPConfig, cfg.PollTimeout), cfg.UserAgent)
		if err != nil {
			return fmt.Errorf("connecting to Telegram: %w", err)
		}
		log.Info("bot authorized", "username", client.Username())

		bot := telegram.NewBot(client,
			convert.New(conv.Render),
			staging.New(cfg.UploadsDir, cfg.OutputDir),
			log, cfg.PollTimeout)
		return bot.Run(ctx)
	},
}

func init() {
	botCmd.Flags().String("uploads-dir", "uploads", "staging directory for received files")
	botCmd.Flags().String("output-dir", "output", "staging directory for generated files")
	botCmd.Flags().Bool("escape", false, "XML-escape cell text (default: insert verbatim)")

	rootCmd.AddCommand(botCmd)
}
