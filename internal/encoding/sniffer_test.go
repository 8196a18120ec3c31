package encoding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestSnifferDetect(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content []byte
		want    Encoding
	}{
		{"utf-8 text", "a.txt", []byte("Grüße aus Köln, ça va très bien"), "UTF-8"},
		{"utf-8 bom", "a.txt", append([]byte{0xEF, 0xBB, 0xBF}, "hello"...), "UTF-8"},
		{"utf-16le bom", "a.txt", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "UTF-16LE"},
		{"utf-16be bom", "a.txt", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "UTF-16BE"},
		{"html meta charset", "a.html", []byte(`<!DOCTYPE html><html><head><meta charset="iso-8859-1"><title>t</title></head><body>x</body></html>`), "ISO-8859-1"},
		{"html declared utf-16 wins", "a.html", []byte(`<!DOCTYPE html><html><head><meta charset="UTF-16"></head><body>plain ascii</body></html>`), "UTF-16"},
		{"html http-equiv", "a.htm", []byte(`<html><head><meta http-equiv="Content-Type" content="text/html; charset=windows-1252"></head><body>x</body></html>`), "windows-1252"},
		{"binary zip", "a.docx", []byte("PK\x03\x04\x14\x00\x06\x00\x08\x00\x00\x00!\x00\x00\x01\x02"), Default},
		{"empty", "a.txt", []byte{}, Default},
	}

	s := NewSniffer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Detect(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSnifferLatin1(t *testing.T) {
	text := strings.Repeat("Le café était très animé, déjà plein à midi. Où est la gare? Ça dépend. ", 20)
	got, err := NewSniffer(nil).Detect(writeFile(t, "latin.txt", latin1(t, text)))
	require.NoError(t, err)
	assert.False(t, got.IsUTF8())
	assert.Contains(t, []Encoding{"ISO-8859-1", "windows-1252", "ISO-8859-15"}, got)
}

func TestSnifferTruncatedSample(t *testing.T) {
	s := NewSniffer(nil)
	s.sampleSize = 8
	// "aaaaaaa" 后跟一个被截断的 "é"
	got, err := s.Detect(writeFile(t, "a.txt", []byte("aaaaaaaé")))
	require.NoError(t, err)
	assert.Equal(t, Default, got)
}

func TestSnifferMissingFile(t *testing.T) {
	_, err := NewSniffer(nil).Detect(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Encoding("UTF-8"), Normalize("utf8"))
	assert.Equal(t, Encoding("ISO-8859-1"), Normalize(" latin1 "))
	assert.Equal(t, Encoding("windows-1252"), Normalize("CP1252"))
	// 注册名和别名都给出首选的 MIME 名称
	assert.Equal(t, Encoding("ISO-8859-1"), Normalize("ISO_8859-1:1987"))
	assert.Equal(t, Encoding("ISO-8859-1"), Normalize("csISOLatin1"))
	assert.Equal(t, Encoding("X-UNKNOWN"), Normalize("x-unknown"))
	assert.Equal(t, Encoding(""), Normalize(""))
}
