package xliff

import (
	"bufio"
	"encoding/base64"
	"encoding/xml"
	"io"
	"os"

	"github.com/antchfx/xmlquery"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/format"
	"github.com/nerdneilsfield/go-xliff-filters/internal/manifest"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pack"
	"github.com/nerdneilsfield/go-xliff-filters/internal/version"
)

// BuildOptions 组装容器的参数
type BuildOptions struct {
	Languages    LocalePair
	OriginalName string // 用户上传时的文件名，为空时使用打包中的文件名
	Filter       string // 写入 filter 属性的过滤器标识
	ToolID       string // 为空时使用当前版本
}

// Build 把打包目录组装成容器写入 w：原始文件和 manifest 作为前两个 <file>，
// 工作 XLIFF 中所有 <ex> id 加上哨兵前缀
func Build(p *pack.Pack, opts BuildOptions, w io.Writer) error {
	if opts.Languages.Source == "" || opts.Languages.Target == "" {
		return errs.InvalidInput("source and target languages are required")
	}

	work, err := ParseFile(p.Xlf())
	if err != nil {
		return err
	}
	root := rootElement(work.doc)
	if root == nil {
		return errs.Corrupt("work XLIFF has no root element").WithFile(p.Xlf())
	}

	originalBytes, err := os.ReadFile(p.OriginalFile())
	if err != nil {
		return err
	}
	manifestBytes, err := os.ReadFile(p.Manifest())
	if err != nil {
		return err
	}

	originalName := opts.OriginalName
	if originalName == "" {
		originalName = p.Filename()
	}
	toolID := opts.ToolID
	if toolID == "" {
		toolID = version.ToolID(version.Version)
	}

	AddSentinels(work.doc)

	originalAttrs := []xmlquery.Attr{
		attr(AttrOriginal, originalName),
		attr(AttrSourceLanguage, opts.Languages.Source),
		attr(AttrTargetLanguage, opts.Languages.Target),
		attr(AttrDatatype, "x-"+format.Extension(p.Filename())),
		attr(AttrToolID, toolID),
	}
	if opts.Filter != "" {
		originalAttrs = append(originalAttrs, attr(AttrFilter, opts.Filter))
	}
	originalCarrier := newCarrier(originalAttrs, originalBytes)
	manifestCarrier := newCarrier([]xmlquery.Attr{
		attr(AttrOriginal, manifest.FileName),
		attr(AttrSourceLanguage, opts.Languages.Source),
		attr(AttrTargetLanguage, opts.Languages.Target),
		attr(AttrDatatype, "xml"),
	}, manifestBytes)

	prependChildren(root, originalCarrier, manifestCarrier)

	bw := bufio.NewWriter(w)
	if err := writeDocument(bw, work.doc); err != nil {
		return err
	}
	return bw.Flush()
}

// BuildFile 组装容器并写入 path
func BuildFile(p *pack.Pack, opts BuildOptions, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Build(p, opts, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func attr(name, value string) xmlquery.Attr {
	return xmlquery.Attr{Name: xml.Name{Local: name}, Value: value}
}

// newCarrier 创建 <file><header><reference><internal-file form="base64">…</internal-file></reference></header><body/></file>
func newCarrier(attrs []xmlquery.Attr, payload []byte) *xmlquery.Node {
	file := element(ElementFile, attrs...)
	header := element("header")
	reference := element("reference")
	internal := element(ElementInternalFile, attr("form", "base64"))
	xmlquery.AddChild(internal, &xmlquery.Node{
		Type: xmlquery.TextNode,
		Data: base64.StdEncoding.EncodeToString(payload),
	})
	xmlquery.AddChild(reference, internal)
	xmlquery.AddChild(header, reference)
	xmlquery.AddChild(file, header)
	xmlquery.AddChild(file, element("body"))
	return file
}

func element(name string, attrs ...xmlquery.Attr) *xmlquery.Node {
	return &xmlquery.Node{Type: xmlquery.ElementNode, Data: name, Attr: attrs}
}

// prependChildren 把 nodes 依次插入 parent 的最前面
func prependChildren(parent *xmlquery.Node, nodes ...*xmlquery.Node) {
	var existing []*xmlquery.Node
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		existing = append(existing, n)
	}
	for _, n := range existing {
		xmlquery.RemoveFromTree(n)
	}
	for _, n := range nodes {
		xmlquery.AddChild(parent, n)
	}
	for _, n := range existing {
		xmlquery.AddChild(parent, n)
	}
}
