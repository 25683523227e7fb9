package markdown_test

import (
	"fmt"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/markdown"
)

// ExampleSerialize демонстрирует экспорт документа редактора в Markdown с frontmatter.
func ExampleSerialize() {
	doc, err := tiptap.ParseJSON(strings.NewReader(`{
		"type": "doc",
		"content": [
			{"type": "heading", "attrs": {"level": 1}, "content": [{"type": "text", "text": "План"}]},
			{"type": "callout", "attrs": {"type": "warning"}, "content": [
				{"type": "paragraph", "content": [{"type": "text", "marks": [{"type": "bold"}], "text": "Срочно"}]}
			]},
			{"type": "taskList", "content": [
				{"type": "taskItem", "attrs": {"checked": true}, "content": [
					{"type": "paragraph", "content": [{"type": "text", "text": "Написать тесты"}]}
				]}
			]}
		]
	}`))
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Print(markdown.Serialize(doc, markdown.Options{
		IncludeFrontmatter: true,
		Frontmatter:        map[string]any{"title": "План: неделя"},
	}))

	// Output:
	// ---
	// title: "План: неделя"
	// ---
	//
	// # План
	//
	// > [!WARNING]
	// > **Срочно**
	//
	// - [x] Написать тесты
}

// ExampleParseMarkdownToHTML демонстрирует совместимый импорт Markdown.
func ExampleParseMarkdownToHTML() {
	fmt.Println(markdown.ParseMarkdownToHTML("## Итоги\n\n- **готово**\n- _в работе_"))

	// Output:
	// <h2>Итоги</h2>
	// <ul><li><strong>готово</strong></li><li><em>в работе</em></li></ul>
}
