package encoding

import (
	"bytes"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
)

// DefaultSampleSize 识别时读取的最大字节数
const DefaultSampleSize = 64 * 1024

var boms = []struct {
	prefix []byte
	enc    Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "UTF-8"},
	{[]byte{0xFF, 0xFE}, "UTF-16LE"},
	{[]byte{0xFE, 0xFF}, "UTF-16BE"},
}

// Sniffer 默认编码识别器：BOM、二进制判断、HTML 声明、UTF-8 校验，最后统计推断
type Sniffer struct {
	sampleSize int
	logger     *zap.Logger
}

// NewSniffer 创建编码识别器
func NewSniffer(logger *zap.Logger) *Sniffer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sniffer{sampleSize: DefaultSampleSize, logger: logger}
}

// Detect 识别文件编码
func (s *Sniffer) Detect(path string) (Encoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sample := make([]byte, s.sampleSize)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	truncated := n == s.sampleSize
	sample = sample[:n]

	enc := s.DetectBytes(sample, truncated)
	s.logger.Debug("encoding detected", zap.String("file", path), zap.String("encoding", enc.Code()))
	return enc, nil
}

// DetectBytes 识别一段内容的编码，truncated 表示内容是文件的前缀
func (s *Sniffer) DetectBytes(sample []byte, truncated bool) Encoding {
	for _, bom := range boms {
		if bytes.HasPrefix(sample, bom.prefix) {
			return bom.enc
		}
	}
	if len(sample) == 0 {
		return Default
	}

	mt := mimetype.Detect(sample)
	if !isText(mt) {
		return Default
	}

	if mt.Is("text/html") {
		if declared := htmlCharset(sample); declared != "" {
			return declared
		}
	}

	if truncated {
		sample = trimIncompleteRune(sample)
	}
	if utf8.Valid(sample) {
		return Default
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil || result.Charset == "" {
		return Default
	}
	return Normalize(result.Charset)
}

// isText 所有文本类型都继承自 text/plain
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// htmlCharset 读取 <meta charset> 或 <meta http-equiv="Content-Type"> 声明的编码
func htmlCharset(sample []byte) Encoding {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(sample))
	if err != nil {
		return ""
	}

	if cs, ok := doc.Find("meta[charset]").First().Attr("charset"); ok {
		return Normalize(cs)
	}

	var declared Encoding
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.EqualFold(sel.AttrOr("http-equiv", ""), "content-type") {
			return true
		}
		content := strings.ToLower(sel.AttrOr("content", ""))
		if i := strings.Index(content, "charset="); i >= 0 {
			value := content[i+len("charset="):]
			if j := strings.IndexAny(value, "; "); j >= 0 {
				value = value[:j]
			}
			declared = Normalize(value)
			return false
		}
		return true
	})
	return declared
}

// trimIncompleteRune 去掉被截断的最后一个多字节字符
func trimIncompleteRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			break
		}
	}
	return b
}
