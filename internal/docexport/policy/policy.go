// Определяет политики bluemonday для HTML, который отдает экспорт документов. Политика разрешает
// только разметку, которую генерирует сам экспортер, и отсекает все остальное.
//
// Основные возможности:
//   - Политика экспорта на базе UGCPolicy с классами по префиксу экспортера.
//   - Ограничение стилей цветами, размерами и выравниванием.
//   - Разрешение data-атрибутов задач, callout, упоминаний и сворачиваемых блоков.
//   - Удаление всех тегов для получения простого текста.
package policy

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	colorRegexp  = regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\(\s*\d+\s*,\s*\d+\s*,\s*\d+\s*(,\s*[\d.]+\s*)?\)|[a-z]+)$`)
	sizeRegexp   = regexp.MustCompile(`^(\d+(\.\d+)?(px|em|rem|pt|%)?|auto|inherit)$`)
	fontRegexp   = regexp.MustCompile(`^(bold|normal|italic|underline|line-through|none|\d{3})$`)
	langRegexp   = regexp.MustCompile(`^language-[\w+#.-]+$`)
	numRegexp    = regexp.MustCompile(`^\d+$`)
	boolRegexp   = regexp.MustCompile(`^(true|false)$`)
	idRegexp     = regexp.MustCompile(`^[a-zA-Z0-9:._-]+$`)
	anchorRegexp = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)
	youtubeSrc   = regexp.MustCompile(`^https://www\.youtube(-nocookie)?\.com/embed/[\w-]+(\?[\w=&;-]*)?$`)
)

// NewExportPolicy создает политику для HTML экспорта. Классы разрешены только с префиксом prefix
// и language-* для блоков кода.
func NewExportPolicy(prefix string) *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	classRegexp := regexp.MustCompile(`^(` + regexp.QuoteMeta(prefix) + `[\w-]+|language-[\w+#.-]+)(\s+(` + regexp.QuoteMeta(prefix) + `[\w-]+|language-[\w+#.-]+))*$`)
	p.AllowAttrs("class").Matching(classRegexp).Globally()
	// Правило id из UGCPolicy не заякорено, а отклоненный на элементе атрибут проверяется глобальным правилом.
	p.AllowAttrs("id").Matching(idRegexp).Globally()
	p.AllowAttrs("id").Matching(anchorRegexp).OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	p.AllowStyles("color", "background-color").Matching(colorRegexp).Globally()
	p.AllowStyles("width", "height").Matching(sizeRegexp).Globally()
	p.AllowStyles("text-align").Matching(bluemonday.CellAlign).Globally()
	p.AllowStyles("font-weight", "font-style", "text-decoration").Matching(fontRegexp).OnElements("span")
	p.AllowStyles("--columns").Matching(numRegexp).OnElements("div")

	p.AllowAttrs("data-type").Matching(regexp.MustCompile(`^(taskList|taskItem|mention)$`)).OnElements("ul", "li", "span")
	p.AllowAttrs("data-checked").Matching(boolRegexp).OnElements("li")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowElements("input", "label", "details", "summary", "figure", "figcaption", "nav", "section", "mark")
	p.AllowAttrs("open").OnElements("details")
	p.AllowAttrs("start").Matching(numRegexp).OnElements("ol")
	p.AllowAttrs("data-callout").Matching(regexp.MustCompile(`^[\w-]+$`)).OnElements("div", "blockquote")
	p.AllowAttrs("data-id", "data-label").OnElements("span")
	p.AllowAttrs("data-color").Matching(colorRegexp).OnElements("mark")
	p.AllowAttrs("colspan", "rowspan").Matching(numRegexp).OnElements("td", "th")

	p.AllowDataURIImages()
	p.AllowAttrs("download").OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("src").Matching(youtubeSrc).OnElements("iframe")
	p.AllowAttrs("allowfullscreen", "frameborder").OnElements("iframe")

	return p
}

// IsLanguageClass сообщает, что класс задает язык блока кода.
func IsLanguageClass(class string) bool {
	return langRegexp.MatchString(class)
}

// StripTags удаляет всю разметку и возвращает простой текст.
func StripTags(s string) string {
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(s))
}
