package lint

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
)

// FigcaptionRemediation wraps the content of every uncaptioned figure in a
// new figcaption.
type FigcaptionRemediation struct{}

// Kind returns the diagnostic kind this remediation resolves.
func (FigcaptionRemediation) Kind() Kind { return KindMissingFigcaption }

// Apply moves all children of each uncaptioned figure into a figcaption that
// becomes the figure's only child.
func (FigcaptionRemediation) Apply(doc *htmldoc.Document) (RemediationResult, error) {
	var res RemediationResult
	for _, figure := range doc.FindAll("figure") {
		if htmldoc.FindWithin(figure, "figcaption") != nil {
			continue
		}
		figcaption := htmldoc.NewElement("figcaption")
		htmldoc.MoveChildren(figcaption, figure)
		figure.AppendChild(figcaption)
		res.Changes++
	}
	return res, nil
}

// RenameRemediation replaces divs whose id or class contains one of Keywords
// (case-sensitive substring) with an element of tag Tag.
type RenameRemediation struct {
	For      Kind
	Tag      string
	Keywords []string
}

// Kind returns the diagnostic kind this remediation resolves.
func (r *RenameRemediation) Kind() Kind { return r.For }

// Apply renames every matching div. Attributes are copied verbatim and
// children keep their order.
func (r *RenameRemediation) Apply(doc *htmldoc.Document) (RemediationResult, error) {
	divs := doc.FindAllFunc(func(n *html.Node) bool {
		return n.Data == "div" && divMentions(n, r.Keywords...)
	})

	var res RemediationResult
	for _, div := range divs {
		if div.Parent == nil {
			res.Skipped++
			continue
		}
		htmldoc.Rename(div, r.Tag)
		res.Changes++
	}
	return res, nil
}

// NavRemediation turns navigation divs into <nav>.
func NavRemediation() *RenameRemediation {
	return &RenameRemediation{For: KindDivAsNav, Tag: "nav", Keywords: []string{"nav", "navigation"}}
}

// HeaderRemediation turns header divs into <header>.
func HeaderRemediation() *RenameRemediation {
	return &RenameRemediation{For: KindMissingHeader, Tag: "header", Keywords: []string{"header", "head"}}
}

// MainRemediation turns content divs into <main>.
func MainRemediation() *RenameRemediation {
	return &RenameRemediation{For: KindMissingMain, Tag: "main", Keywords: []string{"main", "content"}}
}

// FooterRemediation turns footer divs into <footer>.
func FooterRemediation() *RenameRemediation {
	return &RenameRemediation{For: KindMissingFooter, Tag: "footer", Keywords: []string{"footer"}}
}
