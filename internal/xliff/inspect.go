package xliff

import (
	"github.com/antchfx/xmlquery"

	"github.com/nerdneilsfield/go-xliff-filters/internal/manifest"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pack"
	"github.com/nerdneilsfield/go-xliff-filters/internal/version"
)

// Summary 容器的只读描述
type Summary struct {
	Languages         LocalePair
	Filter            string
	OriginalAttr      string
	Datatype          string
	ToolID            string
	Producer          string
	VersionOutcome    version.Outcome
	RelativeInputPath string
	Filename          string // 还原时会使用的文件名
	OriginalSize      int
	Digest            string
	ManifestSize      int
	Markers           int // 带哨兵前缀的 <ex> 数量
}

// Inspect 解码容器但不写出任何文件
func Inspect(path, localVersion string) (*Summary, error) {
	c, err := ParseFile(path)
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
	languages, err := c.Languages()
	if err != nil {
		return nil, err
	}

	originalBytes, err := decodePayload(original)
	if err != nil {
		return nil, err
	}
	manifestBytes, err := decodePayload(manifestCarrier)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Languages:    languages,
		Filter:       original.SelectAttr(AttrFilter),
		OriginalAttr: original.SelectAttr(AttrOriginal),
		Datatype:     original.SelectAttr(AttrDatatype),
		ToolID:       original.SelectAttr(AttrToolID),
		OriginalSize: len(originalBytes),
		Digest:       pack.DigestBytes(originalBytes),
		ManifestSize: len(manifestBytes),
	}
	s.VersionOutcome, s.Producer = version.Compare(s.ToolID, localVersion)
	s.RelativeInputPath, _ = manifest.RelativeInputPath(string(manifestBytes))
	s.Filename = ResolveFilename(s.RelativeInputPath, s.OriginalAttr, s.Datatype)

	for _, ex := range xmlquery.Find(c.doc, "//"+ElementMarker) {
		if id := ex.SelectAttr(AttrID); len(id) > 0 && id[:1] == Sentinel {
			s.Markers++
		}
	}
	return s, nil
}
