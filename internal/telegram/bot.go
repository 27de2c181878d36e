// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/apyexit/internal/convert"
	"github.com/pdiddy/apyexit/internal/staging"
)

// Reply texts.
const (
	WelcomeText     = "Welcome! Please upload your Excel file to convert it to XML."
	DocumentCaption = "Here is your XML file!"
)

// errorBackoff is how long Run waits after a failed getUpdates call.
var errorBackoff = 3 * time.Second

// Bot answers /start and converts every uploaded document.
type Bot struct {
	api         API
	conv        *convert.Converter
	stager      *staging.Stager
	log         *slog.Logger
	pollTimeout time.Duration
}

// NewBot wires a Bot. A nil logger discards log output.
func NewBot(api API, conv *convert.Converter, stager *staging.Stager, log *slog.Logger, pollTimeout time.Duration) *Bot {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	return &Bot{api: api, conv: conv, stager: stager, log: log, pollTimeout: pollTimeout}
}

// Run polls for updates and handles them one at a time until ctx is
// cancelled. It returns nil on cancellation.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot started", "poll_timeout", b.pollTimeout)
	var offset int64
	for {
		updates, err := b.api.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				b.log.Info("bot stopped")
				return nil
			}
			b.log.Warn("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				b.log.Info("bot stopped")
				return nil
			case <-time.After(errorBackoff):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if err := b.Handle(ctx, u); err != nil {
				b.log.Error("handling update", "update_id", u.UpdateID, "error", err)
			}
		}
	}
}

// Handle processes a single update. The returned error concerns the reply
// itself; conversion failures are reported to the chat and logged.
func (b *Bot) Handle(ctx context.Context, u Update) error {
	msg := u.Message
	if msg == nil {
		return nil
	}
	switch {
	case msg.Document != nil:
		return b.handleDocument(ctx, msg)
	case isCommand(msg.Text, "start"):
		return b.api.SendMessage(ctx, msg.Chat.ID, WelcomeText)
	}
	return nil
}

func (b *Bot) handleDocument(ctx context.Context, msg *Message) error {
	log := b.log.With("chat_id", msg.Chat.ID, "file_name", msg.Document.FileName)

	req, err := b.stager.Begin()
	if err != nil {
		log.Error("staging request", "error", err)
		return b.api.SendMessage(ctx, msg.Chat.ID, convert.UserMessage(err))
	}
	log = log.With("request_id", req.ID)
	defer func() {
		if err := req.Cleanup(); err != nil {
			log.Warn("removing staged files", "error", err)
		}
	}()

	out, err := b.convertDocument(ctx, req, msg.Document)
	if err != nil {
		log.Warn("conversion failed", "kind", convert.Classify(err), "error", err)
		return b.api.SendMessage(ctx, msg.Chat.ID, convert.UserMessage(err))
	}

	f, err := os.Open(out.Output)
	if err != nil {
		return fmt.Errorf("opening %s: %w", out.Output, err)
	}
	defer f.Close()

	if err := b.api.SendDocument(ctx, msg.Chat.ID, filepath.Base(out.Output), f, DocumentCaption); err != nil {
		return err
	}
	log.Info("converted", "variant", out.Variant, "records", out.Records, "output", filepath.Base(out.Output))
	return nil
}

func (b *Bot) convertDocument(ctx context.Context, req *staging.Request, doc *Document) (convert.Result, error) {
	file, err := b.api.GetFile(ctx, doc.FileID)
	if err != nil {
		return convert.Result{}, err
	}

	name := doc.FileName
	if name == "" {
		name = filepath.Base(file.FilePath)
	}
	in := req.InputPath(name)

	f, err := os.Create(in)
	if err != nil {
		return convert.Result{}, fmt.Errorf("creating %s: %w", in, err)
	}
	dlErr := b.api.Download(ctx, file.FilePath, f)
	if err := errors.Join(dlErr, f.Close()); err != nil {
		return convert.Result{}, err
	}

	return b.conv.ConvertFile(ctx, in, req.OutputDir)
}

// isCommand reports whether text is the bot command cmd, with or without
// a trailing @botname and arguments.
func isCommand(text, cmd string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return name == "/"+cmd
}
