// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/apyexit/internal/httputil"
)

const getMeResponse = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"apy","username":"apy_exit_bot"}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bot123:abc/getMe" {
			io.WriteString(w, getMeResponse)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })

	c, err := NewClient(context.Background(), "123:abc", ts.Client(), "apyexit-test/0.1")
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	assert.Equal(t, "apy_exit_bot", c.Username())
}

func TestNewClient_BadToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	}))
	defer ts.Close()

	old := apiBase
	apiBase = ts.URL
	defer func() { apiBase = old }()

	_, err := NewClient(context.Background(), "bad", ts.Client(), "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "getMe", apiErr.Method)
	assert.Equal(t, 401, apiErr.Code)
}

func TestGetUpdates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/getUpdates", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "apyexit-test/0.1", r.Header.Get("User-Agent"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "42", r.PostForm.Get("offset"))
		assert.Equal(t, "30", r.PostForm.Get("timeout"))

		io.WriteString(w, `{"ok":true,"result":[
			{"update_id":42,"message":{"message_id":1,"chat":{"id":7},"date":1,"text":"/start"}},
			{"update_id":43,"message":{"message_id":2,"chat":{"id":7},"date":2,
				"document":{"file_id":"F1","file_name":"exits.xlsx","file_size":10}}}
		]}`)
	})

	updates, err := c.GetUpdates(context.Background(), 42, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(42), updates[0].UpdateID)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.Equal(t, int64(7), updates[0].Message.Chat.ID)
	require.NotNil(t, updates[1].Message.Document)
	assert.Equal(t, "F1", updates[1].Message.Document.FileID)
	assert.Equal(t, "exits.xlsx", updates[1].Message.Document.FileName)
}

func TestGetFileAndDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bot123:abc/getFile":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "F1", r.PostForm.Get("file_id"))
			io.WriteString(w, `{"ok":true,"result":{"file_id":"F1","file_path":"documents/file_3.xlsx"}}`)
		case "/file/bot123:abc/documents/file_3.xlsx":
			io.WriteString(w, "spreadsheet-bytes")
		default:
			http.NotFound(w, r)
		}
	})

	f, err := c.GetFile(context.Background(), "F1")
	require.NoError(t, err)
	assert.Equal(t, "documents/file_3.xlsx", f.FilePath)

	var buf bytes.Buffer
	require.NoError(t, c.Download(context.Background(), f.FilePath, &buf))
	assert.Equal(t, "spreadsheet-bytes", buf.String())
}

func TestDownload_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	err := c.Download(context.Background(), "documents/missing", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestSendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "7", r.PostForm.Get("chat_id"))
		assert.Equal(t, WelcomeText, r.PostForm.Get("text"))
		io.WriteString(w, `{"ok":true,"result":{"message_id":9,"chat":{"id":7},"date":3}}`)
	})
	require.NoError(t, c.SendMessage(context.Background(), 7, WelcomeText))
}

func TestSendDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendDocument", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "7", r.FormValue("chat_id"))
		assert.Equal(t, DocumentCaption, r.FormValue("caption"))

		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "exits.xml", header.Filename)
		assert.Equal(t, "<file/>", string(data))

		io.WriteString(w, `{"ok":true,"result":{"message_id":10,"chat":{"id":7},"date":4}}`)
	})
	err := c.SendDocument(context.Background(), 7, "exits.xml", strings.NewReader("<file/>"), DocumentCaption)
	require.NoError(t, err)
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	})

	err := c.SendMessage(context.Background(), 7, "hi")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "sendMessage", apiErr.Method)
	assert.Equal(t, 401, apiErr.Code)
	assert.Equal(t, "telegram sendMessage: 401 Unauthorized", apiErr.Error())
}

func TestSendDocument_RetriesRateLimit(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { httputil.RetryBaseDelay = old })

	var (
		mu    sync.Mutex
		files []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		mu.Lock()
		files = append(files, string(data))
		n := len(files)
		mu.Unlock()

		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"ok":false,"error_code":429,"description":"Too Many Requests"}`)
			return
		}
		io.WriteString(w, `{"ok":true,"result":{"message_id":11,"chat":{"id":7},"date":5}}`)
	})

	err := c.SendDocument(context.Background(), 7, "exits.xml", strings.NewReader("<file/>"), DocumentCaption)
	require.NoError(t, err)
	assert.Equal(t, []string{"<file/>", "<file/>"}, files)
}

func TestSendDocument_UploadErrorUsesHTTPStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: file is empty"}`)
	})

	err := c.SendDocument(context.Background(), 7, "exits.xml", strings.NewReader(""), "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "sendDocument", apiErr.Method)
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)
	assert.Equal(t, "Bad Request: file is empty", apiErr.Description)
}

func TestGetUpdates_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":true,"result":[]}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetUpdates(ctx, 1, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
