// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render assembles the APY exit-withdrawal submission file from
// normalized rows. The document is literal text driven by a template: a
// fixed declaration and root element, one header block, one <req-dtl> block
// per row in input order, and the closing root tag.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/apyexit/internal/normalize"
	"github.com/pdiddy/apyexit/pkg/types"
)

const (
	// reqDateLayout formats <req-date> as YY-MM-DD.
	reqDateLayout = "06-01-02"
	// stampLayout formats the timestamp in generated file names.
	stampLayout = "20060102_150405"
)

const documentTemplate = `<?xml version="1.0" encoding="utf-8"?>
<file xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="exitWDR_APY.xsd">
<header>
<req-type>exitwdr</req-type>
<req-date>{{.Date}}</req-date>
<no-of-records>{{len .Rows}}</no-of-records>
<reg-no>{{.Header.RegNo}}</reg-no>
<entity-type>{{.Header.EntityType}}</entity-type>
<back-offc-ref-num>{{.Header.BackOfficeRef}}</back-offc-ref-num>
<transaction-type>{{.Header.TransactionType}}</transaction-type>
</header>
{{range .Rows}}<req-dtl>
<pran>{{cell .PRAN}}</pran>
<wdr-due-to>EN</wdr-due-to>
<wdr-type>P</wdr-type>
<share-to-wdr>100</share-to-wdr>
<share-to-annuity>0</share-to-annuity>
<exit-date>{{cell .ExitDate}}</exit-date>
<reason-of-closure>{{$.Variant.ReasonOfClosure}}</reason-of-closure>
{{with $.Variant.Specify}}<specify>{{.}}</specify>
{{end}}<subs-bank-dtls>
<bank-ifs-flag>Y</bank-ifs-flag>
<account-no>{{cell .Account}}</account-no>
<bank-ifs-code>{{$.Bank.IFSCode}}</bank-ifs-code>
<bank-micr-code></bank-micr-code>
<bank-name>{{$.Bank.Name}}</bank-name>
<bank-branch>{{cell .BranchCode}}</bank-branch>
<bank-address>{{cell .Address}}</bank-address>
<bank-pin>{{cell .Pin}}</bank-pin>
<active-bank-account>Y</active-bank-account>
</subs-bank-dtls>
<doc-check-list>
<wdr-doc-list></wdr-doc-list>
<sub-poi-list></sub-poi-list>
<sub-poa-list></sub-poa-list>
</doc-check-list>
</req-dtl>
{{end}}</file>`

// Renderer renders submission documents. It holds no per-document state
// and is safe for concurrent use.
type Renderer struct {
	cfg  types.RenderConfig
	tmpl *template.Template
}

// New builds a renderer for cfg.
func New(cfg types.RenderConfig) *Renderer {
	cell := func(s string) string { return s }
	if cfg.Escape {
		cell = escapeText
	}
	tmpl := template.Must(template.New("exitwdr").
		Funcs(template.FuncMap{"cell": cell}).
		Parse(documentTemplate))
	return &Renderer{cfg: cfg, tmpl: tmpl}
}

type document struct {
	Date    string
	Header  types.HeaderConfig
	Bank    types.BankConfig
	Variant normalize.Variant
	Rows    []types.NormalizedRow
}

// Render writes the document for rows to w. now supplies <req-date>.
func (r *Renderer) Render(w io.Writer, v normalize.Variant, rows []types.NormalizedRow, now time.Time) error {
	doc := document{
		Date:    now.Format(reqDateLayout),
		Header:  r.cfg.Header,
		Bank:    r.cfg.Bank,
		Variant: v,
		Rows:    rows,
	}
	if err := r.tmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	return nil
}

// Bytes renders the whole document into memory.
func (r *Renderer) Bytes(v normalize.Variant, rows []types.NormalizedRow, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, v, rows, now); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the output file name for a conversion of source.
func FileName(v normalize.Variant, source string, now time.Time) string {
	if v.Naming == normalize.NameFromSource {
		base := filepath.Base(source)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if stem != "" && stem != "." && stem != string(filepath.Separator) {
			return stem + ".xml"
		}
	}
	return "APY_EXIT_" + now.Format(stampLayout) + ".xml"
}

func escapeText(s string) string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
