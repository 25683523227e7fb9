package tiptap_test

import (
	"fmt"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
)

// ExampleParseJSON демонстрирует разбор снимка документа редактора.
func ExampleParseJSON() {
	jsonContent := `{
		"type": "doc",
		"content": [
			{"type": "heading", "attrs": {"level": 1}, "content": [{"type": "text", "text": "Отчет"}]},
			{
				"type": "paragraph",
				"content": [
					{"type": "text", "marks": [{"type": "bold"}], "text": "Привет"},
					{"type": "text", "text": " "},
					{"type": "text", "marks": [{"type": "italic"}], "text": "мир"}
				]
			}
		]
	}`

	doc, err := tiptap.ParseJSON(strings.NewReader(jsonContent))
	if err != nil {
		fmt.Printf("Ошибка парсинга: %v\n", err)
		return
	}

	fmt.Printf("Блоков: %d\n", len(doc.Content))
	fmt.Println(doc.Content[1].TextContent())
	for _, h := range doc.Headings() {
		fmt.Printf("h%d #%s\n", h.Level, h.Anchor)
	}

	// Output:
	// Блоков: 2
	// Привет мир
	// h1 #отчет
}
