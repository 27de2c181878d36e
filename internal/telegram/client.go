// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telegram delivers conversions through a Telegram bot. It wraps
// the Bot API library behind the small API interface the Bot needs and
// holds the Bot that drives one conversion per uploaded document.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pdiddy/apyexit/internal/httputil"
)

// apiBase is the Bot API root. Declared as a var so tests can substitute
// an httptest server.
var apiBase = "https://api.telegram.org"

// Update is one incoming event from getUpdates.
type Update struct {
	UpdateID int64
	Message  *Message
}

// Message is a chat message reduced to the fields the bot reads.
type Message struct {
	MessageID int64
	From      *User
	Chat      Chat
	Date      int64
	Text      string
	Document  *Document
}

// User is a message sender.
type User struct {
	ID       int64
	Username string
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID   int64
	Type string
}

// Document is a file attached to a message.
type Document struct {
	FileID   string
	FileName string
	MimeType string
	FileSize int64
}

// File is the result of getFile: FilePath is valid for download for at
// least one hour.
type File struct {
	FileID   string
	FileSize int64
	FilePath string
}

// APIError is a request the Bot API answered with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// API is the subset of the Bot API the Bot uses.
type API interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	GetFile(ctx context.Context, fileID string) (File, error)
	Download(ctx context.Context, filePath string, w io.Writer) error
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error
}

// Client calls the Bot API through tgbotapi. Every request goes through
// httputil.DoWithRetry, bound to the context of the call.
type Client struct {
	bot       *tgbotapi.BotAPI
	http      *http.Client
	base      string
	userAgent string
}

// NewClient returns a Client for token. It calls getMe once to check the
// token.
func NewClient(ctx context.Context, token string, httpClient *http.Client, userAgent string) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{http: httpClient, base: strings.TrimRight(apiBase, "/"), userAgent: userAgent}

	bot, err := tgbotapi.NewBotAPIWithClient(token, c.base+"/bot%s/%s", c.doer(ctx))
	if err != nil {
		return nil, c.wrap("getMe", err, 0)
	}
	c.bot = bot
	return c, nil
}

// Username is the bot's handle as reported by getMe.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// GetUpdates long-polls for updates with IDs of at least offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = int(timeout / time.Second)
	cfg.AllowedUpdates = []string{"message"}

	api, d := c.with(ctx)
	raw, err := api.GetUpdates(cfg)
	if err != nil {
		return nil, c.wrap("getUpdates", err, d.status)
	}
	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, fromUpdate(u))
	}
	return updates, nil
}

// GetFile resolves fileID to a downloadable path.
func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	api, d := c.with(ctx)
	f, err := api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return File{}, c.wrap("getFile", err, d.status)
	}
	if f.FilePath == "" {
		return File{}, fmt.Errorf("telegram getFile: no file path for %s", fileID)
	}
	return File{FileID: f.FileID, FileSize: int64(f.FileSize), FilePath: f.FilePath}, nil
}

// Download streams the file at filePath into w. The library only builds
// download URLs against the public endpoint, so the request is made here.
func (c *Client) Download(ctx context.Context, filePath string, w io.Writer) error {
	reqURL := c.base + "/file/bot" + c.bot.Token + "/" + strings.TrimLeft(filePath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.doer(ctx).Do(req)
	if err != nil {
		return fmt.Errorf("telegram file download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram file download returned HTTP %d", resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading telegram file: %w", err)
	}
	return nil
}

// SendMessage posts a plain text message to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	api, d := c.with(ctx)
	if _, err := api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return c.wrap("sendMessage", err, d.status)
	}
	return nil
}

// SendDocument uploads the content of r as a file called name.
func (c *Client) SendDocument(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error {
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: name, Reader: r})
	msg.Caption = caption

	api, d := c.with(ctx)
	if _, err := api.Send(msg); err != nil {
		return c.wrap("sendDocument", err, d.status)
	}
	return nil
}

// with returns a copy of the library client whose requests carry ctx. The
// returned doer records the last HTTP status it saw.
func (c *Client) with(ctx context.Context) (*tgbotapi.BotAPI, *retryDoer) {
	d := c.doer(ctx)
	api := *c.bot
	api.Client = d
	return &api, d
}

func (c *Client) doer(ctx context.Context) *retryDoer {
	return &retryDoer{ctx: ctx, http: c.http, userAgent: c.userAgent}
}

// wrap turns library errors into APIError. Upload failures carry no
// error code, so the HTTP status stands in.
func (c *Client) wrap(method string, err error, status int) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		code := tgErr.Code
		if code == 0 {
			code = status
		}
		return &APIError{Method: method, Code: code, Description: tgErr.Message}
	}
	return fmt.Errorf("telegram %s request: %w", method, err)
}

// retryDoer is the tgbotapi.HTTPClient of one call.
type retryDoer struct {
	ctx       context.Context
	http      *http.Client
	userAgent string
	status    int
}

func (d *retryDoer) Do(req *http.Request) (*http.Response, error) {
	req = req.WithContext(d.ctx)
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	resp, err := httputil.DoWithRetry(d.ctx, d.http, req, 0)
	if err != nil {
		return nil, err
	}
	d.status = resp.StatusCode
	return resp, nil
}

func fromUpdate(u tgbotapi.Update) Update {
	out := Update{UpdateID: int64(u.UpdateID)}
	m := u.Message
	if m == nil {
		return out
	}
	msg := &Message{
		MessageID: int64(m.MessageID),
		Date:      int64(m.Date),
		Text:      m.Text,
	}
	if m.From != nil {
		msg.From = &User{ID: m.From.ID, Username: m.From.UserName}
	}
	if m.Chat != nil {
		msg.Chat = Chat{ID: m.Chat.ID, Type: m.Chat.Type}
	}
	if doc := m.Document; doc != nil {
		msg.Document = &Document{
			FileID:   doc.FileID,
			FileName: doc.FileName,
			MimeType: doc.MimeType,
			FileSize: int64(doc.FileSize),
		}
	}
	out.Message = msg
	return out
}
