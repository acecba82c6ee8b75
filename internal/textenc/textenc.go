// Package textenc sniffs and decodes the byte content of uploaded HTML documents.
//
// Decoding always succeeds: when the sniffed encoding cannot decode the input,
// the bytes are reinterpreted as Latin-1, which maps every byte to a rune. The
// price is possible mojibake on that path; callers can see it via Decoded.FellBack.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

const (
	// LabelUTF8 is the label used when nothing better is known.
	LabelUTF8 = "utf-8"
	// LabelLatin1 is the label reported for the fallback decode.
	LabelLatin1 = "iso-8859-1"

	// MinConfidence is the statistical detector score (0-100) below which its
	// guess is ignored.
	MinConfidence = 30

	// bytes examined for a <meta> declaration, as in the HTML prescan.
	prescanLimit = 1024
)

var (
	errInvalidUTF8     = errors.New("input is not valid utf-8")
	replacementUTF8    = []byte("\uFFFD")
	errUnknownEncoding = errors.New("unknown encoding")
)

// Source tells how a Detection was reached.
type Source string

const (
	SourceBOM         Source = "bom"
	SourceMeta        Source = "meta"
	SourceUTF8        Source = "utf-8"
	SourceStatistical Source = "statistical"
	SourceDefault     Source = "default"
)

// Detection is the best guess for a byte buffer.
type Detection struct {
	Label   string
	Certain bool
	Source  Source
	// Confidence is the statistical detector score; zero for other sources.
	Confidence int
}

// Decoded holds the decoded document text.
type Decoded struct {
	Text     string
	Label    string
	FellBack bool
}

// Detect returns the best-guess encoding label for raw. A byte-order mark is
// certain and a declared <meta> charset is used as-is. Valid UTF-8 is UTF-8.
// Anything else goes to the statistical detector, and a guess below
// MinConfidence yields utf-8.
func Detect(raw []byte) Detection {
	if _, name, certain := charset.DetermineEncoding(raw, ""); certain {
		return Detection{Label: name, Certain: true, Source: SourceBOM}
	}
	if label, ok := declaredCharset(raw); ok {
		return Detection{Label: label, Source: SourceMeta}
	}
	if utf8.Valid(raw) {
		return Detection{Label: LabelUTF8, Source: SourceUTF8}
	}
	if label, confidence, ok := sniff(raw); ok {
		return Detection{Label: label, Source: SourceStatistical, Confidence: confidence}
	}
	return Detection{Label: LabelUTF8, Source: SourceDefault}
}

// Decode converts raw to text using the detected encoding, falling back to Latin-1.
func Decode(raw []byte) Decoded {
	det := Detect(raw)
	text, err := decodeWith(det.Label, raw)
	if err != nil {
		return Decoded{Text: latin1(raw), Label: LabelLatin1, FellBack: true}
	}
	return Decoded{Text: strings.TrimPrefix(text, "\uFEFF"), Label: det.Label}
}

// declaredCharset finds a <meta charset> or <meta http-equiv="Content-Type">
// declaration in the first prescanLimit bytes.
func declaredCharset(raw []byte) (string, bool) {
	if len(raw) > prescanLimit {
		raw = raw[:prescanLimit]
	}
	z := html.NewTokenizer(bytes.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			var cs, httpEquiv, content string
			for more := true; more; {
				var key, val []byte
				key, val, more = z.TagAttr()
				switch string(key) {
				case "charset":
					cs = string(val)
				case "http-equiv":
					httpEquiv = strings.ToLower(string(val))
				case "content":
					content = string(val)
				}
			}
			if cs == "" && httpEquiv == "content-type" {
				if _, params, err := mime.ParseMediaType(content); err == nil {
					cs = params["charset"]
				}
			}
			if cs == "" {
				continue
			}
			if _, label := charset.Lookup(cs); label != "" {
				return label, true
			}
		}
	}
}

// sniff runs the statistical detector over the text content of raw.
func sniff(raw []byte) (string, int, bool) {
	res, err := chardet.NewHtmlDetector().DetectBest(raw)
	if err != nil || res.Confidence < MinConfidence {
		return "", 0, false
	}
	_, label := charset.Lookup(res.Charset)
	if label == "" {
		return "", 0, false
	}
	return label, res.Confidence, true
}

func decodeWith(label string, raw []byte) (string, error) {
	if label == LabelUTF8 {
		if !utf8.Valid(raw) {
			return "", errInvalidUTF8
		}
		return string(raw), nil
	}

	enc, _ := charset.Lookup(label)
	if enc == nil {
		return "", fmt.Errorf("%w: %s", errUnknownEncoding, label)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", label, err)
	}
	// x/text decoders substitute U+FFFD instead of failing on malformed input.
	if bytes.Contains(out, replacementUTF8) && !bytes.Contains(raw, replacementUTF8) {
		return "", fmt.Errorf("decode %s: malformed input", label)
	}
	return string(out), nil
}

func latin1(raw []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// ISO-8859-1 maps all 256 byte values; unreachable in practice.
		var b strings.Builder
		for _, c := range raw {
			b.WriteRune(rune(c))
		}
		return b.String()
	}
	return string(out)
}
