package lint

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
)

// Rule names, in catalogue order.
const (
	RuleTableStructure     = "table-structure"
	RuleLogicalBlocks      = "logical-blocks"
	RuleSemanticBlocks     = "semantic-blocks"
	RuleHeadings           = "headings"
	RuleNavUsage           = "nav-usage"
	RuleFigureCaption      = "figure-caption"
	RuleSummaryPresence    = "summary-presence"
	RuleBlockquotePresence = "blockquote-presence"
	RuleCitePresence       = "cite-presence"
	RuleTimePresence       = "time-presence"
	RuleAddressPresence    = "address-presence"
	RuleAbbrTitle          = "abbr-title"
	RuleQPresence          = "q-presence"
	RuleMarkPresence       = "mark-presence"
	RuleDelInsPresence     = "del-ins-presence"
)

const (
	msgMalformedTable = "Неправильное использование тега <table>"
	msgMissingHeader  = "Необходимо использовать тег <header> для обозначения шапки страницы"
	msgMissingMain    = "Необходимо использовать тег <main> для обозначения основного контента страницы"
	msgMissingFooter  = "Необходимо использовать тег <footer> для обозначения подвала страницы"
	msgSemanticTag    = "Постарайтесь использовать тег <%s> для разделения смысловых блоков на странице"
	msgNoHeadings     = "Постарайтесь использовать тэг <h> для обозначения заголовков"
	msgDivAsNav       = "Нужно использовать nav вместо div с id/class=nav"
	msgMissingFigcap  = "Отсутствует тег <figcaption> внутри тега <figure>"
	msgMissingTitle   = "Отсутствует атрибут title в теге <abbr>"
)

// navKeyword marks a div as navigation when found in its id or class.
const navKeyword = "nav"

var (
	tableOpenPattern = regexp.MustCompile(`(?i)<table(?:\s|>)`)
	navDivPattern    = regexp.MustCompile(`<(?i:div)\b[^>]*\s(?i:id|class)\s*=\s*["']?[^"'>]*nav`)

	semanticTags = []string{"nav", "aside", "article", "section"}
	headingTags  = []string{"h1", "h2", "h3", "h4", "h5", "h6"}
)

// instanceMessage suffixes a per-element message with its source line when
// known, otherwise with its ordinal.
func instanceMessage(base, noun string, index, line int) string {
	if line > 0 {
		return fmt.Sprintf("%s (строка %d)", base, line)
	}
	return fmt.Sprintf("%s (%s %d)", base, noun, index)
}

// TableStructureRule requires every table to have a row and a cell.
type TableStructureRule struct{}

// Name returns the rule identifier.
func (r *TableStructureRule) Name() string { return RuleTableStructure }

// Check validates table structure. A document without tables passes.
func (r *TableStructureRule) Check(doc *htmldoc.Document) Outcome {
	return r.CheckSource(doc, nil)
}

// CheckSource validates table structure and locates offending tables in src.
func (r *TableStructureRule) CheckSource(doc *htmldoc.Document, src *Source) Outcome {
	var diags []Diagnostic
	for i, table := range doc.FindAll("table") {
		if htmldoc.FindWithin(table, "tr") != nil && htmldoc.FindWithin(table, "th", "td") != nil {
			continue
		}
		index := i + 1
		line := src.LineOf(tableOpenPattern, index)
		diags = append(diags, Diagnostic{
			Rule:    r.Name(),
			Kind:    KindMalformedTable,
			Message: instanceMessage(msgMalformedTable, "таблица", index, line),
			Index:   index,
			Line:    line,
			Tag:     "table",
		})
	}
	if len(diags) > 0 {
		return fail(diags...)
	}
	return pass()
}

// LogicalBlocksRule requires the header, main and footer landmarks.
type LogicalBlocksRule struct{}

// Name returns the rule identifier.
func (r *LogicalBlocksRule) Name() string { return RuleLogicalBlocks }

// Check validates landmark presence.
func (r *LogicalBlocksRule) Check(doc *htmldoc.Document) Outcome {
	landmarks := []struct {
		tag  string
		kind Kind
		msg  string
	}{
		{"header", KindMissingHeader, msgMissingHeader},
		{"main", KindMissingMain, msgMissingMain},
		{"footer", KindMissingFooter, msgMissingFooter},
	}

	var diags []Diagnostic
	for _, lm := range landmarks {
		if !doc.Has(lm.tag) {
			diags = append(diags, Diagnostic{Rule: r.Name(), Kind: lm.kind, Message: lm.msg, Tag: lm.tag})
		}
	}
	if len(diags) > 0 {
		return fail(diags...)
	}
	return pass()
}

// SemanticBlocksRule requires nav, aside, article and section.
type SemanticBlocksRule struct{}

// Name returns the rule identifier.
func (r *SemanticBlocksRule) Name() string { return RuleSemanticBlocks }

// Check validates semantic block presence, reporting in fixed tag order.
func (r *SemanticBlocksRule) Check(doc *htmldoc.Document) Outcome {
	var diags []Diagnostic
	for _, tag := range semanticTags {
		if !doc.Has(tag) {
			diags = append(diags, Diagnostic{
				Rule:    r.Name(),
				Kind:    KindMissingSemanticTag,
				Message: fmt.Sprintf(msgSemanticTag, tag),
				Tag:     tag,
			})
		}
	}
	if len(diags) > 0 {
		return fail(diags...)
	}
	return pass()
}

// HeadingsRule requires at least one h1-h6 element.
type HeadingsRule struct{}

// Name returns the rule identifier.
func (r *HeadingsRule) Name() string { return RuleHeadings }

// Check validates heading presence.
func (r *HeadingsRule) Check(doc *htmldoc.Document) Outcome {
	if doc.Has(headingTags...) {
		return pass()
	}
	return fail(Diagnostic{Rule: r.Name(), Kind: KindNoHeadings, Message: msgNoHeadings})
}

// NavUsageRule requires navigation to be marked up with <nav> rather than a
// div whose id or class mentions nav.
type NavUsageRule struct{}

// Name returns the rule identifier.
func (r *NavUsageRule) Name() string { return RuleNavUsage }

// Check validates nav usage.
func (r *NavUsageRule) Check(doc *htmldoc.Document) Outcome {
	return r.CheckSource(doc, nil)
}

// CheckSource validates nav usage and locates offending divs in src. A
// document with neither a nav nor an offending div fails without diagnostics.
func (r *NavUsageRule) CheckSource(doc *htmldoc.Document, src *Source) Outcome {
	divs := doc.FindAllFunc(func(n *html.Node) bool {
		return n.Data == "div" && divMentions(n, navKeyword)
	})
	if len(divs) == 0 {
		if doc.Has("nav") {
			return pass()
		}
		return fail()
	}

	diags := make([]Diagnostic, 0, len(divs))
	for i := range divs {
		index := i + 1
		line := src.LineOf(navDivPattern, index)
		diags = append(diags, Diagnostic{
			Rule:    r.Name(),
			Kind:    KindDivAsNav,
			Message: instanceMessage(msgDivAsNav, "блок", index, line),
			Index:   index,
			Line:    line,
			Tag:     "div",
		})
	}
	return fail(diags...)
}

// FigureCaptionRule requires every figure to contain a figcaption.
type FigureCaptionRule struct{}

// Name returns the rule identifier.
func (r *FigureCaptionRule) Name() string { return RuleFigureCaption }

// Check validates figure captions.
func (r *FigureCaptionRule) Check(doc *htmldoc.Document) Outcome {
	var diags []Diagnostic
	for i, figure := range doc.FindAll("figure") {
		if htmldoc.FindWithin(figure, "figcaption") != nil {
			continue
		}
		diags = append(diags, Diagnostic{
			Rule:    r.Name(),
			Kind:    KindMissingFigcaption,
			Message: instanceMessage(msgMissingFigcap, "фигура", i+1, 0),
			Index:   i + 1,
			Tag:     "figure",
		})
	}
	if len(diags) > 0 {
		return fail(diags...)
	}
	return pass()
}

// AbbrTitleRule requires every abbr to carry a title attribute.
type AbbrTitleRule struct{}

// Name returns the rule identifier.
func (r *AbbrTitleRule) Name() string { return RuleAbbrTitle }

// Check validates abbreviation titles. An empty title counts as present.
func (r *AbbrTitleRule) Check(doc *htmldoc.Document) Outcome {
	var diags []Diagnostic
	for i, abbr := range doc.FindAll("abbr") {
		if htmldoc.HasAttr(abbr, "title") {
			continue
		}
		diags = append(diags, Diagnostic{
			Rule:    r.Name(),
			Kind:    KindMissingAbbrTitle,
			Message: instanceMessage(msgMissingTitle, "сокращение", i+1, 0),
			Index:   i + 1,
			Tag:     "abbr",
		})
	}
	if len(diags) > 0 {
		return fail(diags...)
	}
	return pass()
}

// divMentions reports whether the element's id or class contains any keyword.
func divMentions(n *html.Node, keywords ...string) bool {
	for _, key := range []string{"id", "class"} {
		val, ok := htmldoc.Attr(n, key)
		if !ok {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(val, kw) {
				return true
			}
		}
	}
	return false
}
