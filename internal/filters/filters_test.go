package filters

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nerdneilsfield/go-xliff-filters/internal/encoding"
	"github.com/nerdneilsfield/go-xliff-filters/internal/engine"
	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pipeline"
	"github.com/nerdneilsfield/go-xliff-filters/internal/test"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

type fixedDetector encoding.Encoding

func (d fixedDetector) Detect(string) (encoding.Encoding, error) { return encoding.Encoding(d), nil }

func newRouter(t *testing.T, order ...string) (*Router, *test.MockEngine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	eng := test.NewSimulatingEngine()
	deps := Deps{
		Orchestrator: pipeline.New(eng, nil, logger),
		Detector:     fixedDetector("windows-1252"),
		ToolID:       "matecat-converter 1.0",
		Logger:       logger,
	}
	r, err := NewRouter(deps, RouterOptions{Order: order})
	require.NoError(t, err)
	return r, eng, logs
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRouterOrder(t *testing.T) {
	r, _, _ := newRouter(t, TableID, "default", HTMLID, TableID)

	var ids []string
	for _, f := range r.Filters() {
		ids = append(ids, f.ID())
	}
	assert.Equal(t, []string{TableID, HTMLID, DefaultID}, ids)
}

func TestRouterUnknownOrderEntry(t *testing.T) {
	_, err := NewRouter(Deps{}, RouterOptions{Order: []string{"htm"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
	assert.Contains(t, err.Error(), "did you mean 'html'")
}

func TestFilterSupport(t *testing.T) {
	deps := Deps{}
	tests := []struct {
		filter Filter
		path   string
		want   bool
	}{
		{NewHTMLFilter(deps), "index.HTML", true},
		{NewHTMLFilter(deps), "index.htm", true},
		{NewHTMLFilter(deps), "index.docx", false},
		{NewTableFilter(deps), "data.csv", true},
		{NewTableFilter(deps), "data.tsv", true},
		{NewTableFilter(deps), "data.xlsx", false},
		{NewDefaultFilter(deps), "anything.bin", true},
	}
	for _, tt := range tests {
		t.Run(tt.filter.ID()+"/"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.IsSupported(tt.path))
		})
	}
}

func TestExtractChoosesFilter(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		wantFilter string
		wantConfig string
	}{
		{"html", "page.html", HTMLID, HTMLConfig},
		{"csv", "table.csv", TableID, "okf_table_csv"},
		{"docx falls back", "doc.docx", DefaultID, "okf_openxml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, eng, logs := newRouter(t)
			input := writeInput(t, tt.file, "content")

			out, err := r.Extract(ExtractRequest{File: input, Source: "en-US", Target: "it-IT"})
			require.NoError(t, err)
			assert.Equal(t, input+".xlf", out)

			job := eng.LastJob()
			assert.Equal(t, tt.wantConfig, job.FilterConfig)
			assert.Equal(t, "windows-1252", job.InputEncoding)

			id, ok, err := xliff.ExtractFilterIdentityFile(out)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantFilter, id)

			custom := logs.FilterMessage("using custom filter").Len()
			if tt.wantFilter == DefaultID {
				assert.Zero(t, custom)
			} else {
				assert.Equal(t, 1, custom)
			}
		})
	}
}

func TestExtractUnsupported(t *testing.T) {
	picky := &pickyFilter{}
	reg := NewRegistry()
	require.NoError(t, reg.Register(DefaultID, func(Deps) Filter { return picky }))

	r, err := NewRouter(Deps{}, RouterOptions{Registry: reg, Order: []string{DefaultID}})
	require.NoError(t, err)

	_, err = r.Extract(ExtractRequest{File: "x.bin", Source: "en", Target: "fr"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnsupportedFormat))
	assert.Zero(t, picky.calls)
}

type pickyFilter struct{ calls int }

func (p *pickyFilter) ID() string                             { return DefaultID }
func (p *pickyFilter) IsSupported(string) bool                { return false }
func (p *pickyFilter) Extract(ExtractRequest) (string, error) { p.calls++; return "", nil }
func (p *pickyFilter) Merge(*xliff.Processor) (string, error) { p.calls++; return "", nil }

func TestExtractThenMerge(t *testing.T) {
	r, eng, _ := newRouter(t)
	input := writeInput(t, "page.html", "<p>hello</p>")

	container, err := r.Extract(ExtractRequest{File: input, Source: "en-US", Target: "de-DE"})
	require.NoError(t, err)

	// 合并应在容器旁边重建打包目录
	moved := filepath.Join(t.TempDir(), "page.html.xlf")
	require.NoError(t, os.Rename(container, moved))

	derived, err := r.Merge(moved)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(moved), filepath.Dir(filepath.Dir(filepath.Dir(derived))))
	data, err := os.ReadFile(derived)
	require.NoError(t, err)
	assert.Equal(t, "[de-DE] <p>hello</p>", string(data))

	job := eng.LastJob()
	assert.True(t, job.Has(engine.StepMerge))
	assert.Equal(t, pipeline.MergeFilterConfig, job.FilterConfig)
}

func TestMergeMissingIdentityUsesDefault(t *testing.T) {
	r, _, logs := newRouter(t)
	input := writeInput(t, "notes.txt", "plain")

	container, err := r.Extract(ExtractRequest{File: input, Source: "en-US", Target: "fr-FR"})
	require.NoError(t, err)
	stripFilterAttr(t, container)

	derived, err := r.Merge(container)
	require.NoError(t, err)
	assert.FileExists(t, derived)
	assert.Equal(t, 1, logs.FilterMessage("missing filter identity in container, using default filter").Len())
}

func TestMergeUnknownIdentity(t *testing.T) {
	r, _, _ := newRouter(t)
	input := writeInput(t, "notes.txt", "plain")

	container, err := r.Extract(ExtractRequest{File: input, Source: "en-US", Target: "fr-FR"})
	require.NoError(t, err)
	replaceInFile(t, container, `filter="default"`, `filter="tables"`)

	_, err = r.Merge(container)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnknownFilter))
	assert.Contains(t, err.Error(), "did you mean 'table'")
}

func TestSuggestion(t *testing.T) {
	known := []string{DefaultID, HTMLID, TableID}
	assert.Equal(t, ", did you mean 'html'?", suggestion("htm", known))
	assert.Equal(t, ", did you mean 'default'?", suggestion("defaults", known))
	assert.Empty(t, suggestion("zzz", known))
}

func stripFilterAttr(t *testing.T, path string) {
	t.Helper()
	replaceInFile(t, path, ` filter="default"`, "")
}

func replaceInFile(t *testing.T, path, old, repl string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), old)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(data), old, repl, 1)), 0o644))
}
