package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		filename string
		kind     Kind
		config   string
	}{
		{"doc.docx", KindOther, "okf_openxml"},
		{"Page.HTML", KindOther, "okf_html"},
		{"strings.po", KindBilingual, "okf_po"},
		{"job.sdlxliff", KindBilingual, "okf_xliff"},
		{"scan.pdf", KindOCR, "okf_openxml"},
		{"table.csv", KindOther, "okf_table_csv"},
		{"noext", KindOther, DefaultFilterConfig},
		{"archive.weird", KindOther, DefaultFilterConfig},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			f := Classify(tt.filename)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.config, f.FilterConfig)
		})
	}
}

func TestRegistryIsolation(t *testing.T) {
	r := NewRegistry()
	r.Register(".ABC", KindBilingual, "okf_abc")

	f, ok := r.Lookup("abc")
	assert.True(t, ok)
	assert.True(t, f.IsBilingual())
	assert.False(t, f.IsOCR())

	_, ok = Lookup("abc")
	assert.False(t, ok, "global registry must not see local registrations")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "bilingual", KindBilingual.String())
	assert.Equal(t, "ocr", KindOCR.String())
	assert.Equal(t, "other", KindOther.String())
}
