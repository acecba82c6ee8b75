package lint

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
)

var (
	phonePattern   = regexp.MustCompile(`(?:(?:\+\d{1,3}|8)[\s-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{2}[\s.-]?\d{2}`)
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	addressPattern = regexp.MustCompile(`\d{1,4}[\s.,-]?[\p{L}\p{N}\s.,-]{2,}?` +
		`(?:street|st|avenue|ave|road|rd|highway|hwy|square|sq|trail|trl|drive|dr|court|ct|park|pk|` +
		`lane|ln|boulevard|blvd|circle|cir|plaza|plz|alley|aly|way|wy|point|pt|parkway|pkwy|` +
		`district|dist|province|prov|region|reg|city|cty|town|tn|village|vlg|county|cnty|state|` +
		`ул|просп|пр|пер|шоссе|ш|бульвар|бульв|набережн|наб|площадь|площ|пл)` +
		`\.?\s?[\p{L}\p{N}\s.-]{2,}?(?:квартира|кв|комната|комн|офис|к)\.?\s?\d{1,4}`)
)

// Contacts holds contact details found in document text.
type Contacts struct {
	Phones    []string
	Emails    []string
	Addresses []string
}

// Len returns the total number of matches.
func (c Contacts) Len() int {
	return len(c.Phones) + len(c.Emails) + len(c.Addresses)
}

// ExtractContacts finds phone numbers, email addresses and postal addresses
// in text, each list in order of appearance.
func ExtractContacts(text string) Contacts {
	var c Contacts
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		if isDigitAt(text, loc[0]-1) || isDigitAt(text, loc[1]) {
			continue
		}
		c.Phones = append(c.Phones, text[loc[0]:loc[1]])
	}
	c.Emails = emailPattern.FindAllString(text, -1)
	c.Addresses = addressPattern.FindAllString(text, -1)
	return c
}

func isDigitAt(s string, i int) bool {
	return i >= 0 && i < len(s) && s[i] >= '0' && s[i] <= '9'
}

// ContactRemediation gathers contact details into a new <address> block at
// the end of <body> and removes them from their original place. Existing
// tel: and mailto: anchors are moved into the block whole, so contacts that
// appear only in an href are gathered too.
type ContactRemediation struct{}

// Kind returns the diagnostic kind this remediation resolves.
func (*ContactRemediation) Kind() Kind { return KindMissingAddress }

// contactAnchor is an existing tel: or mailto: link.
type contactAnchor struct {
	node     *html.Node
	scheme   string
	target   string
	text     string
	consumed bool
}

// Apply builds the address block. Changes counts the block itself, each
// moved anchor and each removed original; a match that cannot be found again
// is counted as skipped.
func (*ContactRemediation) Apply(doc *htmldoc.Document) (RemediationResult, error) {
	contacts := ExtractContacts(doc.Text())
	anchors := contactAnchors(doc)

	address := htmldoc.NewElement("address")
	res := RemediationResult{Changes: 1}
	var remove []string

	add := func(scheme string, matches []string) {
		for _, a := range anchors {
			if a.scheme == scheme {
				htmldoc.Detach(a.node)
				address.AppendChild(a.node)
				res.Changes++
			}
		}
		for _, match := range matches {
			switch {
			case consumeAnchorText(anchors, match):
				// moved along with its anchor
			case hasAnchorTarget(anchors, scheme, match):
				remove = append(remove, match)
			default:
				address.AppendChild(contactLink(scheme+match, match))
				remove = append(remove, match)
			}
		}
	}
	add("tel:", contacts.Phones)
	add("mailto:", contacts.Emails)
	for _, addr := range contacts.Addresses {
		p := htmldoc.NewElement("p")
		p.AppendChild(htmldoc.NewText(addr))
		address.AppendChild(p)
		remove = append(remove, addr)
	}
	doc.EnsureBody().AppendChild(address)

	for _, match := range remove {
		if removeText(doc, match, address) {
			res.Changes++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

// contactAnchors returns the tel: and mailto: anchors in document order.
func contactAnchors(doc *htmldoc.Document) []*contactAnchor {
	var out []*contactAnchor
	for _, n := range doc.FindAllFunc(isContactAnchor) {
		href, _ := htmldoc.Attr(n, "href")
		scheme := "tel:"
		if strings.HasPrefix(href, "mailto:") {
			scheme = "mailto:"
		}
		target := strings.TrimPrefix(href, scheme)
		if i := strings.IndexByte(target, '?'); i >= 0 {
			target = target[:i]
		}
		out = append(out, &contactAnchor{node: n, scheme: scheme, target: target, text: innerText(n)})
	}
	return out
}

// consumeAnchorText marks the first unconsumed anchor whose text holds match.
func consumeAnchorText(anchors []*contactAnchor, match string) bool {
	for _, a := range anchors {
		if !a.consumed && strings.Contains(a.text, match) {
			a.consumed = true
			return true
		}
	}
	return false
}

// hasAnchorTarget reports whether an anchor already links to match. Phone
// numbers compare by digits only.
func hasAnchorTarget(anchors []*contactAnchor, scheme, match string) bool {
	for _, a := range anchors {
		if a.scheme != scheme {
			continue
		}
		if strings.EqualFold(a.target, match) {
			return true
		}
		if scheme == "tel:" && digits(a.target) != "" && digits(a.target) == digits(match) {
			return true
		}
	}
	return false
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func contactLink(href, text string) *html.Node {
	a := htmldoc.NewElement("a", html.Attribute{Key: "href", Val: href})
	a.AppendChild(htmldoc.NewText(text))
	return a
}

// removeText deletes the first occurrence of s from the first text node
// outside exclude that contains it.
func removeText(doc *htmldoc.Document, s string, exclude *html.Node) bool {
	for _, n := range doc.TextNodes() {
		if htmldoc.IsWithin(n, exclude) {
			continue
		}
		idx := strings.Index(n.Data, s)
		if idx < 0 {
			continue
		}
		n.Data = n.Data[:idx] + n.Data[idx+len(s):]
		if n.Data == "" {
			htmldoc.Detach(n)
		}
		return true
	}
	return false
}

func isContactAnchor(n *html.Node) bool {
	if !htmldoc.IsElement(n, "a") {
		return false
	}
	href, _ := htmldoc.Attr(n, "href")
	return strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "mailto:")
}

func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
