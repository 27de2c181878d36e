// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/apyexit/internal/convert"
)

// Response headers describing the generated document.
const (
	HeaderVariant = "X-Apyexit-Variant"
	HeaderRecords = "X-Apyexit-Records"
)

const xmlContentType = "application/xml; charset=utf-8"

// Handlers serves the conversion endpoints.
type Handlers struct {
	conv    *convert.Converter
	log     *slog.Logger
	version string
}

// NewHandlers creates the handlers. A nil logger discards log output.
func NewHandlers(conv *convert.Converter, log *slog.Logger, version string) *Handlers {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handlers{conv: conv, log: log, version: version}
}

// HandleHealth returns server health status.
func (h *Handlers) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
	})
}

// HandleConvert converts the multipart field "file" and returns the XML
// document as an attachment.
func (h *Handlers) HandleConvert(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("multipart field \"file\" is required", err)
	}

	src, err := fh.Open()
	if err != nil {
		return NewBadRequestError("could not read uploaded file", err)
	}
	defer src.Close()

	doc, err := h.conv.Document(c.Request().Context(), fh.Filename, src)
	if err != nil {
		kind := convert.Classify(err)
		if kind == convert.KindInternal {
			h.log.Error("conversion failed", "file_name", fh.Filename, "error", err)
		} else {
			h.log.Info("conversion rejected", "file_name", fh.Filename, "kind", kind, "error", err)
		}
		return ConversionError(err)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, contentDisposition(doc.Name))
	header.Set(HeaderVariant, doc.Variant.Name)
	header.Set(HeaderRecords, strconv.Itoa(len(doc.Rows)))

	h.log.Info("converted", "file_name", fh.Filename, "output", doc.Name,
		"variant", doc.Variant.Name, "records", len(doc.Rows))
	return c.Blob(http.StatusOK, xmlContentType, doc.Content)
}

func contentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
