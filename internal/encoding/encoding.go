// Package encoding 识别输入文件的字符编码，结果以 IANA 名称表示。
package encoding

import (
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Encoding IANA 字符集名称
type Encoding string

// Default 无法识别时使用的编码
const Default Encoding = "UTF-8"

// Code 返回编码名称
func (e Encoding) Code() string { return string(e) }

// String 实现 fmt.Stringer
func (e Encoding) String() string { return string(e) }

// IsUTF8 是否 UTF-8
func (e Encoding) IsUTF8() bool { return strings.EqualFold(string(e), string(Default)) }

// Detector 编码识别器
type Detector interface {
	Detect(path string) (Encoding, error)
}

// Normalize 把别名规范为首选的 MIME 名称（没有时用 IANA 注册名），
// 未知名称转为大写返回（去掉首尾空白和引号）
func Normalize(name string) Encoding {
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" {
		return ""
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		// WHATWG 标签覆盖 utf8、cp1252 这类常见写法
		enc, err = htmlindex.Get(name)
		if err != nil {
			return Encoding(strings.ToUpper(name))
		}
	}
	if mime, err := ianaindex.MIME.Name(enc); err == nil && mime != "" {
		return Encoding(mime)
	}
	if canonical, err := ianaindex.IANA.Name(enc); err == nil && canonical != "" {
		return Encoding(canonical)
	}
	return Encoding(strings.ToUpper(name))
}
