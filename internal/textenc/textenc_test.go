package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		label   string
		certain bool
		source  Source
	}{
		{"plain ascii is utf-8", []byte("<html><body>hi</body></html>"), "utf-8", false, SourceUTF8},
		{"utf-8 bom is certain", append([]byte{0xEF, 0xBB, 0xBF}, []byte("<p>x</p>")...), "utf-8", true, SourceBOM},
		{"meta charset is trusted", []byte(`<meta charset="windows-1251"><p>x</p>`), "windows-1251", false, SourceMeta},
		{"declared windows-1252 is kept", []byte("<meta charset=\"windows-1252\"><p>\x93q\x94</p>"), "windows-1252", false, SourceMeta},
		{"http-equiv content type", []byte(`<meta http-equiv="Content-Type" content="text/html; charset=koi8-r"><p>x</p>`), "koi8-r", false, SourceMeta},
		{"declared utf-8 wins over invalid bytes", []byte("<meta charset=\"utf-8\"><p>\xff</p>"), "utf-8", false, SourceMeta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := Detect(tt.raw)
			assert.Equal(t, tt.label, det.Label)
			assert.Equal(t, tt.certain, det.Certain)
			assert.Equal(t, tt.source, det.Source)
		})
	}
}

const russianText = "<html><body><p>Привет, мир! Это тестовая страница на русском языке. " +
	"Мы пишем этот текст для того, чтобы проверить определение кодировки документа. " +
	"Компания находится в Москве, на улице Ленина, и работает каждый день с утра до вечера. " +
	"Свяжитесь с нами по телефону или напишите письмо, и мы обязательно ответим.</p></body></html>"

func TestDetect_UndeclaredCyrillicUsesStatisticalDetector(t *testing.T) {
	raw, err := charmap.Windows1251.NewEncoder().Bytes([]byte(russianText))
	require.NoError(t, err)

	det := Detect(raw)

	assert.Equal(t, "windows-1251", det.Label)
	assert.Equal(t, SourceStatistical, det.Source)
	assert.GreaterOrEqual(t, det.Confidence, MinConfidence)
}

func TestDecode_UndeclaredCyrillic(t *testing.T) {
	raw, err := charmap.Windows1251.NewEncoder().Bytes([]byte(russianText))
	require.NoError(t, err)

	got := Decode(raw)

	require.False(t, got.FellBack)
	assert.Equal(t, "windows-1251", got.Label)
	assert.Equal(t, russianText, got.Text)
}

func TestDecode_DeclaredWindows1252(t *testing.T) {
	got := Decode([]byte("<meta charset=\"windows-1252\"><p>\x93quoted\x94</p>"))

	require.False(t, got.FellBack)
	assert.Equal(t, "windows-1252", got.Label)
	assert.Contains(t, got.Text, "<p>\u201Cquoted\u201D</p>")
}

func TestDecode_UTF8(t *testing.T) {
	got := Decode([]byte("<p>Привет</p>"))

	assert.Equal(t, "<p>Привет</p>", got.Text)
	assert.Equal(t, LabelUTF8, got.Label)
	assert.False(t, got.FellBack)
}

func TestDecode_StripsByteOrderMark(t *testing.T) {
	got := Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte("<p>x</p>")...))

	assert.Equal(t, "<p>x</p>", got.Text)
}

func TestDecode_DeclaredCharset(t *testing.T) {
	raw := append([]byte(`<meta charset="windows-1251"><p>`), 0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2)
	raw = append(raw, []byte("</p>")...)

	got := Decode(raw)

	require.False(t, got.FellBack)
	assert.Equal(t, "windows-1251", got.Label)
	assert.Contains(t, got.Text, "<p>Привет</p>")
}

func TestDecode_InvalidDeclaredUTF8FallsBackToLatin1(t *testing.T) {
	got := Decode([]byte("<meta charset=\"utf-8\"><p>\xff\xfe caf\xe9</p>"))

	assert.True(t, got.FellBack)
	assert.Equal(t, LabelLatin1, got.Label)
	assert.Equal(t, "<meta charset=\"utf-8\"><p>ÿþ café</p>", got.Text)
}
