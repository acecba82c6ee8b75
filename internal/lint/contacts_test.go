package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContacts(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		phones    []string
		emails    []string
		addresses []string
	}{
		{
			name:   "phone and email",
			text:   "Call +7 (495) 123-45-67 or mail info@example.com",
			phones: []string{"+7 (495) 123-45-67"},
			emails: []string{"info@example.com"},
		},
		{
			name:      "postal address",
			text:      "Office: 12 Baker street 221 кв. 5",
			addresses: []string{"12 Baker street 221 кв. 5"},
		},
		{
			name:   "trunk prefix",
			text:   "Звоните 8 800 555 35 35. Год основания 1999",
			phones: []string{"8 800 555 35 35"},
		},
		{
			name: "long digit runs are not phones",
			text: "order id 1234567890123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ExtractContacts(tt.text)
			assert.Equal(t, tt.phones, c.Phones)
			assert.Equal(t, tt.emails, c.Emails)
			assert.Equal(t, tt.addresses, c.Addresses)
		})
	}
}

func TestContactRemediation_MovesContactsIntoAddress(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>Call +7 (495) 123-45-67 or mail info@example.com</p></body></html>`)

	res, err := (&ContactRemediation{}).Apply(doc)

	require.NoError(t, err)
	assert.Equal(t, RemediationResult{Changes: 3}, res)
	assert.Equal(t,
		`<html><head></head><body><p>Call  or mail </p><address>`+
			`<a href="tel:+7 (495) 123-45-67">+7 (495) 123-45-67</a>`+
			`<a href="mailto:info@example.com">info@example.com</a>`+
			`</address></body></html>`,
		doc.String())
}

func TestContactRemediation_MovesExistingAnchor(t *testing.T) {
	doc := parseDoc(t, `<body><p><a href="mailto:info@example.com">info@example.com</a></p></body>`)

	_, err := (&ContactRemediation{}).Apply(doc)
	require.NoError(t, err)

	anchors := doc.FindAll("a")
	require.Len(t, anchors, 1)
	assert.Equal(t, "address", anchors[0].Parent.Data)
	assert.Contains(t, doc.String(), `<p></p>`)
}

func TestContactRemediation_GathersHrefOnlyContacts(t *testing.T) {
	doc := parseDoc(t, `<body><p>Write to <a href="mailto:a@b.ru?subject=hi">us</a> or call `+
		`<a href="tel:+74951234567">the office</a></p></body>`)

	res, err := (&ContactRemediation{}).Apply(doc)

	require.NoError(t, err)
	assert.Equal(t, RemediationResult{Changes: 3}, res)
	assert.Equal(t,
		`<html><head></head><body><p>Write to  or call </p><address>`+
			`<a href="tel:+74951234567">the office</a>`+
			`<a href="mailto:a@b.ru?subject=hi">us</a>`+
			`</address></body></html>`,
		doc.String())
}

func TestContactRemediation_TextMatchingAnchorTargetIsNotDuplicated(t *testing.T) {
	doc := parseDoc(t, `<body><p>Mail a@b.ru</p><p><a href="mailto:a@b.ru">us</a></p>`+
		`<p>Phone +7 (495) 123-45-67</p><p><a href="tel:+74951234567">office</a></p></body>`)

	res, err := (&ContactRemediation{}).Apply(doc)
	require.NoError(t, err)

	address := doc.Find("address")
	require.NotNil(t, address)
	anchors := doc.FindAll("a")
	require.Len(t, anchors, 2)
	for _, a := range anchors {
		assert.Equal(t, address, a.Parent)
	}
	assert.NotContains(t, doc.String(), "<p>Mail a@b.ru</p>")
	assert.NotContains(t, doc.String(), "123-45-67")
	// block, two moved anchors, two removed texts
	assert.Equal(t, RemediationResult{Changes: 5}, res)
}

func TestContactRemediation_MatchAcrossNodesIsSkipped(t *testing.T) {
	doc := parseDoc(t, `<body><p>+7 (495) 123</p><p>45-67</p></body>`)

	res, err := (&ContactRemediation{}).Apply(doc)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Changes)
	assert.NotNil(t, doc.Find("address"))
}

func TestContactRemediation_CreatesBodyWhenMissing(t *testing.T) {
	doc := parseDoc(t, `<p>x</p>`)
	body := doc.Body()
	require.NotNil(t, body)
	body.Parent.RemoveChild(body)

	_, err := (&ContactRemediation{}).Apply(doc)
	require.NoError(t, err)

	require.NotNil(t, doc.Body())
	assert.NotNil(t, doc.Find("address"))
}
