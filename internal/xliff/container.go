// Package xliff 实现容器编解码：把原始文档和 manifest 以 base64 形式嵌入
// XLIFF 的前两个 <file> 元素，并能逐字节地还原出来。
package xliff

import (
	"encoding/base64"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/antchfx/xmlquery"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/manifest"
)

// 容器中的元素与属性名
const (
	ElementFile         = "file"
	ElementInternalFile = "internal-file"
	ElementMarker       = "ex"

	AttrOriginal       = "original"
	AttrSourceLanguage = "source-language"
	AttrTargetLanguage = "target-language"
	AttrDatatype       = "datatype"
	AttrToolID         = "tool-id"
	AttrFilter         = "filter"
	AttrID             = "id"

	// Sentinel 本系统生成的内联标记 id 前缀
	Sentinel = "_"

	// Prolog 工作容器固定使用的 XML 声明
	Prolog = `<?xml version="1.0" encoding="UTF-8"?>`
)

// LocalePair 源语言与目标语言
type LocalePair struct {
	Source string
	Target string
}

// Complete 两种语言都已声明
func (l LocalePair) Complete() bool {
	return l.Source != "" && l.Target != ""
}

// Container 解析后的 XLIFF 文档
type Container struct {
	doc   *xmlquery.Node
	files []*xmlquery.Node
}

// Parse 解析容器
func Parse(r io.Reader) (*Container, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeCorruptContainer, "container is not well-formed XML")
	}
	return &Container{
		doc:   doc,
		files: xmlquery.Find(doc, "//"+ElementFile),
	}, nil
}

// ParseFile 从文件解析容器
func ParseFile(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidInput, "cannot open container").WithFile(path)
	}
	defer f.Close()
	return Parse(f)
}

// originalCarrier 返回位置 0 的 <file>
func (c *Container) originalCarrier() (*xmlquery.Node, error) {
	if len(c.files) == 0 {
		return nil, errs.Corrupt("container has no <file> elements")
	}
	return c.files[0], nil
}

// manifestCarrier 返回位置 1 的 <file>，并校验它声明的是 manifest
func (c *Container) manifestCarrier() (*xmlquery.Node, error) {
	if len(c.files) < 2 {
		return nil, errs.Corrupt("container does not contain a manifest")
	}
	carrier := c.files[1]
	if got := carrier.SelectAttr(AttrOriginal); got != manifest.FileName {
		return nil, errs.Corrupt("container does not contain a manifest: second <file> declares %q", got)
	}
	return carrier, nil
}

// Languages 返回 OriginalCarrier 上声明的语言，缺少的属性取空值
func (c *Container) Languages() (LocalePair, error) {
	carrier, err := c.originalCarrier()
	if err != nil {
		return LocalePair{}, err
	}
	pair := LocalePair{
		Source: carrier.SelectAttr(AttrSourceLanguage),
		Target: carrier.SelectAttr(AttrTargetLanguage),
	}
	return pair, nil
}

// ExtractLanguages 读取容器文件的语言对
func ExtractLanguages(path string) (LocalePair, error) {
	c, err := ParseFile(path)
	if err != nil {
		return LocalePair{}, err
	}
	return c.Languages()
}

// decodePayload 解码 carrier 下第一个 internal-file 的 base64 内容
func decodePayload(carrier *xmlquery.Node) ([]byte, error) {
	internal := xmlquery.FindOne(carrier, ".//"+ElementInternalFile)
	if internal == nil {
		return nil, errs.Corrupt("<file original=%q> has no <internal-file>", carrier.SelectAttr(AttrOriginal))
	}
	encoded := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, internal.InnerText())

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeCorruptContainer, "undecodable base64 payload").
			WithFile(carrier.SelectAttr(AttrOriginal))
	}
	return data, nil
}

// writeDocument 写出文档：固定的 UTF-8 声明加上原有内容（丢弃原声明）
func writeDocument(w io.Writer, doc *xmlquery.Node) error {
	if _, err := io.WriteString(w, Prolog); err != nil {
		return err
	}
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.DeclarationNode {
			continue
		}
		if err := n.WriteWithOptions(w, xmlquery.WithOutputSelf(), xmlquery.WithEmptyTagSupport()); err != nil {
			return err
		}
	}
	return nil
}

// rootElement 返回文档根元素
func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}
