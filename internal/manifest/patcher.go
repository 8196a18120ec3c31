// Package manifest 处理引擎生成的 manifest.rkm 文本。
//
// manifest 被当作原始文本处理而不是 XML 文档：除了 target 属性值之外的
// 每一个字节都必须原样保留，重新序列化会改变引号、空白和属性顺序。
package manifest

import (
	"html"
	"regexp"
)

// FileName 打包目录中的 manifest 文件名
const FileName = "manifest.rkm"

var (
	targetPattern       = regexp.MustCompile(`(<manifest [^>]* ?target=")[^"]+"`)
	relativePathPattern = regexp.MustCompile(` relativeInputPath *= *"(.+?)"`)
)

// PatchTarget 把 manifest 开始标签中第一个 target 属性值替换为 lang。
// 没有找到可替换位置或 lang 为空时原样返回，第二个返回值为 false。
func PatchTarget(text, lang string) (string, bool) {
	if lang == "" {
		return text, false
	}
	loc := targetPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}
	prefixEnd := loc[3]
	return text[:prefixEnd] + lang + `"` + text[loc[1]:], true
}

// RelativeInputPath 返回 manifest 中记录的原始文件名（已做 XML 反转义）
func RelativeInputPath(text string) (string, bool) {
	m := relativePathPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return html.UnescapeString(m[1]), true
}
