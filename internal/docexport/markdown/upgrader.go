package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Каскад регулярных выражений для импорта Markdown. Это не парсер: вложенные списки,
// смешанные последовательности списков и многоабзацные элементы списков не поддерживаются,
// потребители полагаются на текущую форму результата.
var (
	escapeReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrReplacer   = strings.NewReplacer(`"`, "&quot;")

	fenceOpenReg = regexp.MustCompile("^(`{3,})([\\w+#.-]*)[ \\t]*$")

	headingRegs = func() []*regexp.Regexp {
		regs := make([]*regexp.Regexp, 0, 6)
		for level := 6; level >= 1; level-- {
			regs = append(regs, regexp.MustCompile(fmt.Sprintf(`(?m)^#{%d} (.*?)[ \t]*$`, level)))
		}
		return regs
	}()

	boldItalicReg = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	boldReg       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicReg     = regexp.MustCompile(`\*([^\s*][^*\n]*?)\*`)
	underItalic   = regexp.MustCompile(`\b_([^_\n]+?)_\b`)
	strikeReg     = regexp.MustCompile(`~~(.+?)~~`)
	codeReg       = regexp.MustCompile("`([^`\n]+)`")
	linkReg       = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)(?:\s+"([^"]*)")?\)`)
	imageReg      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"([^"]*)")?\)`)
	hrReg         = regexp.MustCompile(`(?m)^(?:-{3,}|\*{3,}|_{3,})[ \t]*$`)
	hardBreakReg  = regexp.MustCompile(`(?m)(\S)(?:\\| {2,})$`)
	quoteReg      = regexp.MustCompile(`(?m)^&gt; ?(.*)$`)
	alertReg      = regexp.MustCompile(`<blockquote>\[!(NOTE|TIP|IMPORTANT|WARNING|CAUTION)\](?:<br>)?`)
	taskReg       = regexp.MustCompile(`(?m)^[-*+] \[([ xX])\] (.*)$`)
	bulletReg     = regexp.MustCompile(`(?m)^[-*+] (.*)$`)
	orderedReg    = regexp.MustCompile(`(?m)^\d+\. (.*)$`)
	paragraphSep  = regexp.MustCompile(`\n{2,}`)
	blockStartReg = regexp.MustCompile(`^(?:<(?:h[1-6]|ul|ol|li|blockquote|pre|hr|table|div|details)[\s>]|\x00)`)

	emptyParagraphReg = regexp.MustCompile(`<p>\s*</p>`)
	openBlockInPReg   = regexp.MustCompile(`<p>\s*(<(?:h[1-6]|ul|ol|blockquote|pre|hr|div)[\s>])`)
	closeBlockInPReg  = regexp.MustCompile(`(</(?:h[1-6]|ul|ol|blockquote|pre|div)>|<hr>)\s*</p>`)
	placeholderReg    = regexp.MustCompile(`\x00(\d+)\x00`)

	// Соседние однострочные списки и цитаты склеиваются, каждый блок остается одной строкой
	listMerges = strings.NewReplacer(
		"</ul>\n<ul data-type=\"taskList\">", "",
		"</ul>\n<ul>", "",
		"</ol>\n<ol>", "",
		"</blockquote>\n<blockquote>", "<br>",
	)
)

var alertCallouts = map[string]string{
	"NOTE":      "info",
	"IMPORTANT": "info",
	"TIP":       "success",
	"WARNING":   "warning",
	"CAUTION":   "error",
}

// ParseMarkdownToHTML переводит Markdown в HTML каскадом регулярных выражений.
// Ошибок нет: любой вход преобразуется, даже если результат неточен.
func ParseMarkdownToHTML(src string) string {
	text := strings.ReplaceAll(src, "\r\n", "\n")
	text = escapeReplacer.Replace(text)

	// Содержимое блоков кода не должно попасть под строчные правила
	var codeBlocks []string
	text = replaceFences(text, func(lang, code string) string {
		codeBlocks = append(codeBlocks, codeBlockHTML(lang, code))
		return fmt.Sprintf("\x00%d\x00", len(codeBlocks)-1)
	})

	for i, reg := range headingRegs {
		level := 6 - i
		text = reg.ReplaceAllString(text, fmt.Sprintf("<h%d>$1</h%d>", level, level))
	}

	text = boldItalicReg.ReplaceAllString(text, "<strong><em>$1</em></strong>")
	text = boldReg.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicReg.ReplaceAllString(text, "<em>$1</em>")
	text = underItalic.ReplaceAllString(text, "<em>$1</em>")
	text = strikeReg.ReplaceAllString(text, "<s>$1</s>")
	text = codeReg.ReplaceAllString(text, "<code>$1</code>")
	text = replaceLinks(text)
	text = imageReg.ReplaceAllStringFunc(text, func(m string) string {
		sub := imageReg.FindStringSubmatch(m)
		img := `<img src="` + attrReplacer.Replace(sub[2]) + `" alt="` + attrReplacer.Replace(sub[1]) + `"`
		if sub[3] != "" {
			img += ` title="` + attrReplacer.Replace(sub[3]) + `"`
		}
		return img + ">"
	})
	text = hrReg.ReplaceAllString(text, "<hr>")
	text = hardBreakReg.ReplaceAllString(text, "$1<br>")

	text = quoteReg.ReplaceAllString(text, "<blockquote>$1</blockquote>")
	text = taskReg.ReplaceAllStringFunc(text, func(m string) string {
		sub := taskReg.FindStringSubmatch(m)
		checked := strconv.FormatBool(sub[1] != " ")
		return `<ul data-type="taskList"><li data-type="taskItem" data-checked="` + checked + `">` + sub[2] + "</li></ul>"
	})
	text = bulletReg.ReplaceAllString(text, "<ul><li>$1</li></ul>")
	text = orderedReg.ReplaceAllString(text, "<ol><li>$1</li></ol>")
	text = listMerges.Replace(text)
	text = alertReg.ReplaceAllStringFunc(text, func(m string) string {
		sub := alertReg.FindStringSubmatch(m)
		return `<blockquote data-callout="` + alertCallouts[sub[1]] + `">`
	})

	chunks := paragraphSep.Split(text, -1)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out = append(out, wrapParagraphs(chunk)...)
	}
	text = strings.Join(out, "\n")

	text = emptyParagraphReg.ReplaceAllString(text, "")
	text = openBlockInPReg.ReplaceAllString(text, "$1")
	text = closeBlockInPReg.ReplaceAllString(text, "$1")

	text = placeholderReg.ReplaceAllStringFunc(text, func(m string) string {
		idx, _ := strconv.Atoi(strings.Trim(m, "\x00"))
		if idx < len(codeBlocks) {
			return codeBlocks[idx]
		}
		return m
	})

	return strings.TrimSpace(text)
}

// wrapParagraphs оборачивает в <p> подряд идущие строки, которые не являются блоками.
func wrapParagraphs(chunk string) []string {
	var out, para []string
	flush := func() {
		if len(para) > 0 {
			out = append(out, "<p>"+strings.Join(para, "\n")+"</p>")
			para = nil
		}
	}
	for _, line := range strings.Split(strings.TrimSpace(chunk), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case blockStartReg.MatchString(line):
			flush()
			out = append(out, line)
		default:
			para = append(para, line)
		}
	}
	flush()
	return out
}

// replaceFences заменяет огражденные блоки кода результатом fn. Блок закрывает строка
// из обратных кавычек не короче открывающей, незакрытый блок остается текстом.
func replaceFences(text string, fn func(lang, code string) string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		sub := fenceOpenReg.FindStringSubmatch(lines[i])
		if sub == nil {
			out = append(out, lines[i])
			continue
		}
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if isFenceClose(lines[j], len(sub[1])) {
				end = j
				break
			}
		}
		if end < 0 {
			out = append(out, lines[i])
			continue
		}
		out = append(out, fn(sub[2], strings.Join(lines[i+1:end], "\n")))
		i = end
	}
	return strings.Join(out, "\n")
}

func isFenceClose(line string, n int) bool {
	line = strings.TrimRight(line, " \t")
	return len(line) >= n && strings.Trim(line, "`") == ""
}

func codeBlockHTML(lang, code string) string {
	if lang == "" {
		return "<pre><code>" + code + "</code></pre>"
	}
	return `<pre><code class="language-` + lang + `">` + code + "</code></pre>"
}

// replaceLinks заменяет ссылки, пропуская изображения вида ![alt](src).
func replaceLinks(text string) string {
	matches := linkReg.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		if m[0] > 0 && text[m[0]-1] == '!' {
			continue
		}
		sb.WriteString(text[last:m[0]])
		label, href := text[m[2]:m[3]], text[m[4]:m[5]]
		sb.WriteString(`<a href="` + attrReplacer.Replace(href) + `"`)
		if m[6] >= 0 {
			sb.WriteString(` title="` + attrReplacer.Replace(text[m[6]:m[7]]) + `"`)
		}
		sb.WriteString(">" + label + "</a>")
		last = m[1]
	}
	sb.WriteString(text[last:])
	return sb.String()
}
