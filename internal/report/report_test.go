package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/semcheck/internal/store"
)

func sample() *store.Analysis {
	return &store.Analysis{
		ID:             "a1",
		Source:         "index.html",
		Score:          0.2,
		CorrectedScore: 1.0 / 3.0,
		Encoding:       "utf-8",
		Diagnostics: []string{
			"Неправильное использование тега <table> (таблица 1)",
			"Отсутствует тег <time>",
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown(sample()))

	assert.Contains(t, out, "# Analysis a1")
	assert.Contains(t, out, "| Score | 0.20 |")
	assert.Contains(t, out, "| Corrected score | 0.33 |")
	assert.Contains(t, out, "| Created | 2024-05-01T12:00:00Z |")
	assert.Contains(t, out, "1. Неправильное использование тега &lt;table&gt; (таблица 1)")
	assert.Contains(t, out, "2. Отсутствует тег &lt;time&gt;")
}

func TestMarkdown_NoIssues(t *testing.T) {
	a := sample()
	a.Diagnostics = nil

	assert.Contains(t, string(Markdown(a)), "No issues remain after correction.")
}

func TestHTML(t *testing.T) {
	out, err := HTML(sample())
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Analysis a1</title>")
	assert.Contains(t, page, "<h1>Analysis a1</h1>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>0.20</td>")
	assert.Contains(t, page, "<li>Неправильное использование тега &lt;table&gt; (таблица 1)</li>")
	assert.NotContains(t, page, "raw HTML omitted")
}

func TestHTML_EscapesMarkdownSyntax(t *testing.T) {
	a := sample()
	a.Source = "my_page*.html"
	out, err := HTML(a)
	require.NoError(t, err)

	assert.Contains(t, string(out), "<td>my_page*.html</td>")
}
