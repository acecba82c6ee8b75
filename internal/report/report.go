// Package report renders stored analyses as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown builds the report body for a.
func Markdown(a *store.Analysis) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Analysis %s\n\n", escape(a.ID))
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Source | %s |\n", escape(a.Source))
	fmt.Fprintf(&b, "| Score | %.2f |\n", a.Score)
	fmt.Fprintf(&b, "| Corrected score | %.2f |\n", a.CorrectedScore)
	fmt.Fprintf(&b, "| Encoding | %s |\n", escape(a.Encoding))
	fmt.Fprintf(&b, "| Created | %s |\n\n", a.CreatedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Remaining issues\n\n")
	if len(a.Diagnostics) == 0 {
		b.WriteString("No issues remain after correction.\n")
		return b.Bytes()
	}
	for i, d := range a.Diagnostics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escape(d))
	}
	return b.Bytes()
}

// HTML renders the Markdown report into a standalone page.
func HTML(a *store.Analysis) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert(Markdown(a), &body); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to render report").
			WithContext("analysis", a.ID).
			Build()
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Analysis %s</title>\n", html.EscapeString(a.ID))
	page.WriteString("</head>\n<body>\n<main>\n")
	page.Write(body.Bytes())
	page.WriteString("</main>\n</body>\n</html>\n")
	return page.Bytes(), nil
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"|", `\|`,
	"#", `\#`,
	"<", "&lt;",
	">", "&gt;",
)

// escape keeps diagnostic text literal. Messages quote tags such as <table>,
// which goldmark would otherwise drop as raw HTML.
func escape(s string) string {
	return mdEscaper.Replace(s)
}
