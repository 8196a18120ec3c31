package xliff

import (
	"encoding/xml"
	"io"
	"os"

	"golang.org/x/net/html/charset"
)

// IdentityScanLimit 查找过滤器标识的扫描范围（字节）。
// 在范围内开始的元素会完整读取，属性可以越过这个位置。
const IdentityScanLimit = 1000

// ExtractFilterIdentity 流式扫描文档开头，返回第一个带 filter 属性的元素的属性值。
// 超出扫描范围或文档提前出错都视为没有标识。
func ExtractFilterIdentity(r io.Reader) (string, bool) {
	d := xml.NewDecoder(r)
	d.Strict = false
	d.CharsetReader = charset.NewReaderLabel

	for {
		if d.InputOffset() >= IdentityScanLimit {
			return "", false
		}
		tok, err := d.Token()
		if err != nil {
			return "", false
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == AttrFilter && attr.Name.Space == "" {
				return attr.Value, true
			}
		}
	}
}

// ExtractFilterIdentityFile 从容器文件读取过滤器标识
func ExtractFilterIdentityFile(path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	id, ok := ExtractFilterIdentity(f)
	return id, ok, nil
}
