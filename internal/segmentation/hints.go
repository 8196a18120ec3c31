package segmentation

import "golang.org/x/text/language"

// 词之间不用空格分隔的书写系统
var unspacedScripts = map[string]bool{
	"Hans": true,
	"Hant": true,
	"Hani": true,
	"Jpan": true,
	"Thai": true,
	"Laoo": true,
	"Khmr": true,
	"Mymr": true,
	"Tibt": true,
}

// NeedsBoundaryHints 源语言的书写系统不以空格分词时返回 true
func NeedsBoundaryHints(tag language.Tag) bool {
	script, conf := tag.Script()
	if conf == language.No {
		return false
	}
	return unspacedScripts[script.String()]
}
