package xliff

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/manifest"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pack"
	"github.com/nerdneilsfield/go-xliff-filters/internal/version"
)

var datatypePattern = regexp.MustCompile(`^x-([^./\\\s]+)$`)

// Result 还原结果
type Result struct {
	Pack              *pack.Pack
	Languages         LocalePair
	OriginalAttr      string          // OriginalCarrier 的 original 属性
	VersionOutcome    version.Outcome // tool-id 比对结果
	SentinelsStripped int             // 去掉前缀的标记 id 数量
	Digest            string          // 原始文件 BLAKE3 摘要
}

// Reconstructor 从容器还原打包目录
type Reconstructor struct {
	checker *version.Checker
	logger  *zap.Logger
}

// NewReconstructor 创建还原器
func NewReconstructor(checker *version.Checker, logger *zap.Logger) *Reconstructor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checker == nil {
		checker = version.NewChecker(version.Version, logger)
	}
	return &Reconstructor{checker: checker, logger: logger}
}

// Reconstruct 把 containerPath 还原为 parent/pack。
// 任一步失败都会删除已写出的打包目录，不返回部分结果。
func (r *Reconstructor) Reconstruct(containerPath, parent string) (*Result, error) {
	c, err := ParseFile(containerPath)
	if err != nil {
		return nil, err
	}

	original, err := c.originalCarrier()
	if err != nil {
		return nil, err
	}
	manifestCarrier, err := c.manifestCarrier()
	if err != nil {
		return nil, err
	}
	root := rootElement(c.doc)
	if original.Parent != root || manifestCarrier.Parent != root {
		return nil, errs.Corrupt("reserved <file> elements must be children of the root element")
	}

	languages, err := c.Languages()
	if err != nil {
		return nil, err
	}
	if !languages.Complete() {
		r.logger.Warn("container misses source-language or target-language, using empty locale",
			zap.String("source", languages.Source),
			zap.String("target", languages.Target))
	}

	// manifest
	manifestBytes, err := decodePayload(manifestCarrier)
	if err != nil {
		return nil, err
	}
	manifestText := string(manifestBytes)
	if target := manifestCarrier.SelectAttr(AttrTargetLanguage); target != "" {
		var patched bool
		manifestText, patched = manifest.PatchTarget(manifestText, target)
		if !patched {
			r.logger.Warn("manifest target language not patched", zap.String("target", target))
		}
	} else {
		r.logger.Warn("manifest carrier has no target-language")
	}
	authoritative, _ := manifest.RelativeInputPath(manifestText)

	// 原始文件
	originalBytes, err := decodePayload(original)
	if err != nil {
		return nil, err
	}
	originalAttr := original.SelectAttr(AttrOriginal)
	filename := ResolveFilename(authoritative, originalAttr, original.SelectAttr(AttrDatatype))
	if err := pack.ValidateFilename(filename); err != nil {
		return nil, err
	}

	outcome := r.checker.Check(original.SelectAttr(AttrToolID))

	// 写出打包目录
	if err := os.RemoveAll(filepath.Join(parent, pack.FolderName)); err != nil {
		return nil, err
	}
	p, err := pack.Create(parent, filename)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Result, error) {
		os.RemoveAll(p.Folder())
		return nil, err
	}

	if err := os.WriteFile(p.OriginalFile(), originalBytes, 0o644); err != nil {
		return fail(err)
	}
	if err := os.WriteFile(p.Manifest(), []byte(manifestText), 0o644); err != nil {
		return fail(err)
	}

	xmlquery.RemoveFromTree(original)
	xmlquery.RemoveFromTree(manifestCarrier)
	stripped := StripSentinels(c.doc)

	if err := writeFile(p.Xlf(), c.doc); err != nil {
		return fail(err)
	}

	digest := pack.DigestBytes(originalBytes)
	r.logger.Debug("pack reconstructed",
		zap.String("file", filename),
		zap.String("blake3", digest),
		zap.Int("sentinels", stripped))

	return &Result{
		Pack:              p,
		Languages:         languages,
		OriginalAttr:      originalAttr,
		VersionOutcome:    outcome,
		SentinelsStripped: stripped,
		Digest:            digest,
	}, nil
}

// ResolveFilename 计算还原后的原始文件名：manifest 中的路径优先于 original 属性，
// datatype 为 x-<ext> 时把扩展名换成 <ext>。
// 改写对两种来源都生效：嵌入的内容是转换后的格式，original/ 下的文件名按实际内容命名。
func ResolveFilename(authoritative, originalAttr, datatype string) string {
	name := authoritative
	if name == "" {
		name = originalAttr
	}
	name = baseName(name)
	if m := datatypePattern.FindStringSubmatch(datatype); m != nil && name != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + m[1]
	}
	return name
}

// baseName 去掉 / 或 \ 分隔的目录部分
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

// StripSentinels 去掉所有 <ex> id 的一个前导哨兵字符，返回修改的数量
func StripSentinels(doc *xmlquery.Node) int {
	count := 0
	for _, ex := range xmlquery.Find(doc, "//"+ElementMarker) {
		id := ex.SelectAttr(AttrID)
		if strings.HasPrefix(id, Sentinel) {
			ex.SetAttr(AttrID, id[len(Sentinel):])
			count++
		}
	}
	return count
}

// AddSentinels 给所有 <ex> id 加上哨兵前缀，返回修改的数量
func AddSentinels(doc *xmlquery.Node) int {
	count := 0
	for _, ex := range xmlquery.Find(doc, "//"+ElementMarker) {
		if ex.HasAttr(AttrID) {
			ex.SetAttr(AttrID, Sentinel+ex.SelectAttr(AttrID))
			count++
		}
	}
	return count
}

func writeFile(path string, doc *xmlquery.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := writeDocument(w, doc); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
