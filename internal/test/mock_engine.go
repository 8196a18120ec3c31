package test

import (
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/mock"

	"github.com/nerdneilsfield/go-xliff-filters/internal/engine"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pack"
)

// MockEngine 是一个模拟的外部引擎，记录每一次作业
type MockEngine struct {
	mock.Mock
	Jobs []*engine.Job
}

// Run 实现 engine.Engine
func (m *MockEngine) Run(job *engine.Job) error {
	m.Jobs = append(m.Jobs, job)
	args := m.Called(job)
	return args.Error(0)
}

// LastJob 返回最后一次作业
func (m *MockEngine) LastJob() *engine.Job {
	if len(m.Jobs) == 0 {
		return nil
	}
	return m.Jobs[len(m.Jobs)-1]
}

// NewSimulatingEngine 创建一个按步骤模拟抽取与合并的引擎
func NewSimulatingEngine() *MockEngine {
	m := &MockEngine{}
	m.On("Run", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		if err := Simulate(args.Get(0).(*engine.Job)); err != nil {
			panic(err)
		}
	})
	return m
}

// Simulate 根据作业的最后一步模拟引擎输出
func Simulate(job *engine.Job) error {
	switch {
	case job.Has(engine.StepExtract):
		return SimulateExtract(job)
	case job.Has(engine.StepMerge):
		return SimulateMerge(job)
	}
	return nil
}

// ManifestTemplate 模拟引擎写出的 manifest
const ManifestTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<manifest version="2" libVersion="" projectId="sim" source="%s" target="%s" sourceEncoding="UTF-8" targetEncoding="UTF-8" packageName="pack">
<doc xml:space="preserve" docId="1" extractionType="xliff" relativeInputPath="%s" filterId="%s" inputEncoding="%s" relativeTargetPath="%s" targetEncoding="UTF-8"/>
</manifest>
`

// WorkTemplate 模拟引擎写出的工作 XLIFF
const WorkTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<xliff version="1.2" xmlns="urn:oasis:names:tc:xliff:document:1.2" xmlns:okp="okapi-framework:xliff-extensions">
<file original="%s" source-language="%s" target-language="%s" datatype="x-undefined" okp:inputEncoding="%s">
<body>
<trans-unit id="tu1" xml:space="preserve"><source xml:lang="%s">Hello <bx id="1"/>world<ex id="1"/>.</source><target xml:lang="%s"></target></trans-unit>
</body>
</file>
</xliff>
`

// SimulateExtract 在作业根目录下生成完整的打包目录
func SimulateExtract(job *engine.Job) error {
	name := filepath.Base(job.Input)
	data, err := os.ReadFile(job.Input)
	if err != nil {
		return err
	}

	p, err := pack.Create(job.Root, name)
	if err != nil {
		return err
	}
	escaped := html.EscapeString(name)
	if err := os.WriteFile(p.OriginalFile(), data, 0o644); err != nil {
		return err
	}
	manifest := fmt.Sprintf(ManifestTemplate, job.Source, job.Target, escaped, job.FilterConfig, job.InputEncoding, escaped)
	if err := os.WriteFile(p.Manifest(), []byte(manifest), 0o644); err != nil {
		return err
	}
	work := fmt.Sprintf(WorkTemplate, escaped, job.Source, job.Target, job.InputEncoding, job.Source, job.Target)
	return os.WriteFile(p.Xlf(), []byte(work), 0o644)
}

// SimulateMerge 把原始文件加上目标语言标记写入 done 目录
func SimulateMerge(job *engine.Job) error {
	p, err := pack.Open(filepath.Join(job.Root, pack.FolderName))
	if err != nil {
		return err
	}
	data, err := os.ReadFile(p.OriginalFile())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.DerivedFile()), 0o755); err != nil {
		return err
	}
	out := append([]byte("["+job.Target+"] "), data...)
	return os.WriteFile(p.DerivedFile(), out, 0o644)
}
