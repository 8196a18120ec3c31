package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-xliff-filters/internal/engine"
	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/segmentation"
	"github.com/nerdneilsfield/go-xliff-filters/internal/test"
	"github.com/nerdneilsfield/go-xliff-filters/internal/testutils"
)

func inputFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func request(file string) GenerateRequest {
	return GenerateRequest{Source: "en-US", Target: "fr-FR", Encoding: "ISO-8859-1", File: file}
}

func TestGeneratePackDefaultSegmentation(t *testing.T) {
	eng := test.NewSimulatingEngine()
	o := New(eng, nil, nil)

	p, err := o.GeneratePack(request(inputFile(t, "doc.docx", "docx")))
	require.NoError(t, err)
	assert.Equal(t, "doc.docx", p.Filename())

	job := eng.LastJob()
	assert.Equal(t, []engine.StepKind{
		engine.StepFilter, engine.StepAddHints, engine.StepSegment, engine.StepRemoveHints, engine.StepExtract,
	}, job.Kinds())
	assert.Equal(t, engine.UTF8, job.OutputEncoding)
	assert.Equal(t, "ISO-8859-1", job.InputEncoding)
	assert.Equal(t, "okf_openxml", job.FilterConfig)

	hints, _ := job.Step(engine.StepAddHints)
	assert.Equal(t, "en-US", hints.Params["locale"])
	assert.Equal(t, "false", hints.Params["unspaced"])

	seg, _ := job.Step(engine.StepSegment)
	rules, err := segmentation.DefaultRulesFile()
	require.NoError(t, err)
	assert.Equal(t, rules, seg.Params["rules"])
}

func TestGeneratePackHintsForUnspacedScripts(t *testing.T) {
	eng := test.NewSimulatingEngine()
	req := request(inputFile(t, "page.html", "<p>x</p>"))
	req.Source = "ja-JP"

	_, err := New(eng, nil, nil).GeneratePack(req)
	require.NoError(t, err)

	hints, ok := eng.LastJob().Step(engine.StepAddHints)
	require.True(t, ok)
	assert.Equal(t, "true", hints.Params["unspaced"])
}

func TestGeneratePackBilingualSkipsSegmentation(t *testing.T) {
	eng := test.NewSimulatingEngine()
	o := New(eng, nil, nil)

	_, err := o.GeneratePack(request(inputFile(t, "messages.po", `msgid "a"`)))
	require.NoError(t, err)

	job := eng.LastJob()
	assert.Equal(t, []engine.StepKind{engine.StepFilter, engine.StepExtract}, job.Kinds())
	assert.False(t, job.Has(engine.StepSegment))
	assert.False(t, job.Has(engine.StepAddHints))
}

func TestGeneratePackCustomRules(t *testing.T) {
	rulesDir := t.TempDir()
	testutils.WriteRules(t, rulesDir, "legal", string(segmentation.DefaultRules()))

	eng := test.NewSimulatingEngine()
	o := New(eng, segmentation.NewPolicy(rulesDir, nil), nil)

	req := request(inputFile(t, "contract.txt", "text"))
	req.Segmentation = "legal"
	_, err := o.GeneratePack(req)
	require.NoError(t, err)

	job := eng.LastJob()
	assert.Equal(t, []engine.StepKind{engine.StepFilter, engine.StepSegment, engine.StepExtract}, job.Kinds())
	seg, _ := job.Step(engine.StepSegment)
	assert.Equal(t, filepath.Join(rulesDir, "legal.rules"), seg.Params["rules"])
}

func TestGeneratePackMissingCustomRulesNeverCallsEngine(t *testing.T) {
	eng := &test.MockEngine{}
	o := New(eng, segmentation.NewPolicy(t.TempDir(), nil), nil)

	req := request(inputFile(t, "contract.txt", "text"))
	req.Segmentation = "medical"
	_, err := o.GeneratePack(req)

	assert.True(t, errors.Is(err, errs.ErrNotFound), "got %v", err)
	eng.AssertNotCalled(t, "Run", mock.Anything)
	assert.Empty(t, eng.Jobs)
}

func TestGeneratePackInvalidInput(t *testing.T) {
	file := inputFile(t, "a.txt", "x")

	tests := []struct {
		name   string
		modify func(*GenerateRequest)
	}{
		{"empty source", func(r *GenerateRequest) { r.Source = "" }},
		{"empty target", func(r *GenerateRequest) { r.Target = "" }},
		{"bad locale", func(r *GenerateRequest) { r.Target = "not a locale!" }},
		{"empty encoding", func(r *GenerateRequest) { r.Encoding = "" }},
		{"missing file", func(r *GenerateRequest) { r.File = filepath.Join(t.TempDir(), "missing.txt") }},
		{"directory", func(r *GenerateRequest) { r.File = t.TempDir() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &test.MockEngine{}
			req := request(file)
			tt.modify(&req)

			_, err := New(eng, nil, nil).GeneratePack(req)
			assert.True(t, errors.Is(err, errs.ErrInvalidInput), "got %v", err)
			eng.AssertNotCalled(t, "Run", mock.Anything)
		})
	}
}

func TestGeneratePackEngineFailures(t *testing.T) {
	t.Run("engine error", func(t *testing.T) {
		eng := &test.MockEngine{}
		eng.On("Run", mock.Anything).Return(errors.New("filter crashed"))

		_, err := New(eng, nil, nil).GeneratePack(request(inputFile(t, "doc.docx", "x")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrPipelineFailure))
		assert.Contains(t, err.Error(), "doc.docx")
		assert.Contains(t, err.Error(), "filter crashed")
	})

	t.Run("no pack produced", func(t *testing.T) {
		eng := &test.MockEngine{}
		eng.On("Run", mock.Anything).Return(nil)

		_, err := New(eng, nil, nil).GeneratePack(request(inputFile(t, "doc.docx", "x")))
		assert.True(t, errors.Is(err, errs.ErrPipelineFailure))
	})
}

func TestGenerateDerivedFile(t *testing.T) {
	eng := test.NewSimulatingEngine()
	o := New(eng, nil, nil)

	p, err := o.GeneratePack(request(inputFile(t, "notes.txt", "hello")))
	require.NoError(t, err)

	derived, err := o.GenerateDerivedFile(p)
	require.NoError(t, err)
	assert.Equal(t, p.DerivedFile(), derived)

	content, err := os.ReadFile(derived)
	require.NoError(t, err)
	assert.Equal(t, "[fr-FR] hello", string(content))

	job := eng.LastJob()
	assert.Equal(t, []engine.StepKind{engine.StepFilter, engine.StepWhitespace, engine.StepMerge}, job.Kinds())
	assert.Equal(t, p.Manifest(), job.Input)
	assert.Equal(t, "en-US", job.Source)
	assert.Equal(t, "fr-FR", job.Target)
	assert.Equal(t, MergeFilterConfig, job.FilterConfig)
}

func TestGenerateDerivedFileFailure(t *testing.T) {
	sim := test.NewSimulatingEngine()
	p, err := New(sim, nil, nil).GeneratePack(request(inputFile(t, "notes.txt", "hello")))
	require.NoError(t, err)

	eng := &test.MockEngine{}
	eng.On("Run", mock.Anything).Return(errors.New("merge exploded"))

	_, err = New(eng, nil, nil).GenerateDerivedFile(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrPipelineFailure))
	assert.Contains(t, err.Error(), "notes.txt")
}
