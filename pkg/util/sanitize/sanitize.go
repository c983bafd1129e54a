// Package sanitize 清洗用户填写的自由文本
package sanitize

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxPasses 实体解码后可能露出新的标记，最多重复剥离这么多轮
const maxPasses = 4

// Note 去掉 HTML 标记（script/style 内容整体丢弃）、控制字符与首尾空白，并按字符数截断
// maxLen <= 0 表示不截断；结果为空串表示没有备注
func Note(input string, maxLen int) string {
	text := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, stripAll(input))
	text = strings.TrimSpace(text)
	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:maxLen]))
	}
	return text
}

// stripAll 反复剥离直到文本不再变化；仍不稳定时把剩余内容转义成纯文本
func stripAll(input string) string {
	text := input
	for i := 0; i < maxPasses; i++ {
		next := stripMarkup(text)
		if next == text {
			return text
		}
		text = next
	}
	if stripMarkup(text) != text {
		return html.EscapeString(text)
	}
	return text
}

func stripMarkup(input string) string {
	z := xhtml.NewTokenizer(strings.NewReader(input))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			// io.EOF 或残缺输入，已收集的文本即结果
			return b.String()
		case xhtml.StartTagToken:
			if isDropped(z) {
				skip++
			}
		case xhtml.EndTagToken:
			if isDropped(z) && skip > 0 {
				skip--
			}
		case xhtml.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isDropped(z *xhtml.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}
