package segmentation

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/dlclark/regexp2"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
)

// RuleSet SRX 规则文件的概要
type RuleSet struct {
	LanguageRules []string // languagerulename，按文件顺序
	Rules         int
	// Uncompiled 本地无法编译的模式，由引擎自行解释
	Uncompiled []string
}

// javaBlock 匹配 Java 的 \p{IsThai}、\p{InThai} 写法
var javaBlock = regexp.MustCompile(`\\([pP])\{(?:Is|In)([A-Za-z_]+)\}`)

// toRegexp2 把 SRX 中 Java 特有的属性写法换成 regexp2 可识别的脚本名
func toRegexp2(pattern string) string {
	return javaBlock.ReplaceAllString(pattern, `\$1{$2}`)
}

func compile(pattern string) error {
	_, err := regexp2.Compile(pattern, regexp2.None)
	if err == nil {
		return nil
	}
	if mapped := toRegexp2(pattern); mapped != pattern {
		if _, merr := regexp2.Compile(mapped, regexp2.None); merr == nil {
			return nil
		}
	}
	return err
}

// ParseRules 解析 SRX 规则并尝试编译每条 beforebreak/afterbreak。
// 只有文件不是 SRX 或没有任何规则时返回错误；无法编译的模式记录在 Uncompiled 中。
func ParseRules(r io.Reader) (*RuleSet, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidInput, "segmentation rules are not well-formed XML")
	}
	if xmlquery.FindOne(doc, "/srx") == nil {
		return nil, errs.InvalidInput("segmentation rules have no <srx> root")
	}

	set := &RuleSet{}
	for _, lr := range xmlquery.Find(doc, "//languagerule") {
		name := lr.SelectAttr("languagerulename")
		set.LanguageRules = append(set.LanguageRules, name)

		for i, rule := range xmlquery.Find(lr, "./rule") {
			for _, part := range []string{"beforebreak", "afterbreak"} {
				n := xmlquery.FindOne(rule, "./"+part)
				if n == nil {
					continue
				}
				pattern := n.InnerText()
				if strings.TrimSpace(pattern) == "" {
					continue
				}
				if err := compile(pattern); err != nil {
					set.Uncompiled = append(set.Uncompiled,
						fmt.Sprintf("%s of rule %d in '%s': %v", part, i+1, name, err))
				}
			}
			set.Rules++
		}
	}
	if set.Rules == 0 {
		return nil, errs.InvalidInput("segmentation rules define no <rule>")
	}
	return set, nil
}
