package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/apyexit/pkg/types"
)

// setDefaults registers the default value of every config key so that
// AutomaticEnv can resolve them.
func setDefaults(v *viper.Viper) {
	r := types.DefaultRenderConfig()
	v.SetDefault("secrets_dir", ".secrets/")
	v.SetDefault("output_dir", ".")

	v.SetDefault("render.escape", false)
	v.SetDefault("render.header.reg_no", r.Header.RegNo)
	v.SetDefault("render.header.entity_type", r.Header.EntityType)
	v.SetDefault("render.header.back_office_ref", r.Header.BackOfficeRef)
	v.SetDefault("render.header.transaction_type", r.Header.TransactionType)
	v.SetDefault("render.bank.ifs_code", r.Bank.IFSCode)
	v.SetDefault("render.bank.name", r.Bank.Name)

	v.SetDefault("bot.timeout", 30*time.Second)
	v.SetDefault("bot.user_agent", "apyexit/"+version)
	v.SetDefault("bot.uploads_dir", "uploads")
	v.SetDefault("bot.output_dir", "output")
	v.SetDefault("bot.poll_timeout", 30*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.body_limit", "10M")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// bindFlags binds cmd's flags to config keys. Binding happens when the
// command runs so commands sharing a key do not shadow each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// The readers below use explicit getters: UnmarshalKey on a sub-tree does
// not see bound flags or AutomaticEnv values of nested keys.

func conversionConfig() types.ConversionConfig {
	return types.ConversionConfig{
		Render: types.RenderConfig{
			Header: types.HeaderConfig{
				RegNo:           viper.GetString("render.header.reg_no"),
				EntityType:      viper.GetString("render.header.entity_type"),
				BackOfficeRef:   viper.GetString("render.header.back_office_ref"),
				TransactionType: viper.GetString("render.header.transaction_type"),
			},
			Bank: types.BankConfig{
				IFSCode: viper.GetString("render.bank.ifs_code"),
				Name:    viper.GetString("render.bank.name"),
			},
			Escape: viper.GetBool("render.escape"),
		},
		OutputDir: viper.GetString("output_dir"),
	}
}

func botConfig() types.BotConfig {
	return types.BotConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("bot.timeout"),
			UserAgent: viper.GetString("bot.user_agent"),
		},
		UploadsDir:  viper.GetString("bot.uploads_dir"),
		OutputDir:   viper.GetString("bot.output_dir"),
		PollTimeout: viper.GetDuration("bot.poll_timeout"),
	}
}

func serverConfig() types.ServerConfig {
	return types.ServerConfig{
		Addr:      viper.GetString("server.addr"),
		BodyLimit: viper.GetString("server.body_limit"),
	}
}

// newLogger builds the structured logger of the long-running commands.
func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", viper.GetString("log.level"))
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(viper.GetString("log.format")) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q (want text or json)", viper.GetString("log.format"))
}

func newHTTPClient(cfg types.HTTPConfig, extra time.Duration) *http.Client {
	return &http.Client{Timeout: cfg.Timeout + extra}
}
