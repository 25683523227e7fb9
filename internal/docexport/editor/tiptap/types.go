// Пакет tiptap описывает дерево документа TipTap (ProseMirror) в том виде, в котором его отдает
// редактор через getJSON(): типизированные блочные и строчные ноды с атрибутами и marks.
//
// Основные возможности:
//   - Парсинг JSON снимка документа из io.Reader.
//   - Перечисление всех известных типов нод и marks для исчерпывающей диспетчеризации.
//   - Безопасное чтение атрибутов (строки, числа, булевы значения).
//   - Обход дерева, сбор текста и заголовков, проверка инвариантов.
package tiptap

// NodeType тип ноды документа.
type NodeType string

const (
	NodeDoc             NodeType = "doc"
	NodeParagraph       NodeType = "paragraph"
	NodeHeading         NodeType = "heading"
	NodeBulletList      NodeType = "bulletList"
	NodeOrderedList     NodeType = "orderedList"
	NodeTaskList        NodeType = "taskList"
	NodeListItem        NodeType = "listItem"
	NodeTaskItem        NodeType = "taskItem"
	NodeBlockquote      NodeType = "blockquote"
	NodeCodeBlock       NodeType = "codeBlock"
	NodePreformatted    NodeType = "preformatted"
	NodeHorizontalRule  NodeType = "horizontalRule"
	NodeHardBreak       NodeType = "hardBreak"
	NodeImage           NodeType = "image"
	NodeTable           NodeType = "table"
	NodeTableRow        NodeType = "tableRow"
	NodeTableCell       NodeType = "tableCell"
	NodeTableHeader     NodeType = "tableHeader"
	NodeCallout         NodeType = "callout"
	NodeToggleBlock     NodeType = "toggleBlock"
	NodeColumns         NodeType = "columns"
	NodeColumn          NodeType = "column"
	NodeText            NodeType = "text"
	NodeSection         NodeType = "section"
	NodeYoutube         NodeType = "youtube"
	NodeEmbed           NodeType = "embed"
	NodeFileAttachment  NodeType = "fileAttachment"
	NodeTableOfContents NodeType = "tableOfContents"
	NodeDatabase        NodeType = "database"
	NodeMention         NodeType = "mention"
	NodeEmoji           NodeType = "emoji"
)

// MarkType тип строчного форматирования.
type MarkType string

const (
	MarkBold        MarkType = "bold"
	MarkItalic      MarkType = "italic"
	MarkStrike      MarkType = "strike"
	MarkCode        MarkType = "code"
	MarkLink        MarkType = "link"
	MarkUnderline   MarkType = "underline"
	MarkHighlight   MarkType = "highlight"
	MarkSubscript   MarkType = "subscript"
	MarkSuperscript MarkType = "superscript"
	MarkTextStyle   MarkType = "textStyle"
)

var inlineTypes = map[NodeType]bool{
	NodeText:      true,
	NodeHardBreak: true,
	NodeMention:   true,
	NodeEmoji:     true,
}

var leafTypes = map[NodeType]bool{
	NodeText:            true,
	NodeHardBreak:       true,
	NodeHorizontalRule:  true,
	NodeImage:           true,
	NodeYoutube:         true,
	NodeEmbed:           true,
	NodeFileAttachment:  true,
	NodeTableOfContents: true,
	NodeMention:         true,
	NodeEmoji:           true,
}

// KnownNodeTypes возвращает все типы нод, которые понимают экспортеры.
// Сериализаторы проверяются тестами на полноту по этому списку.
func KnownNodeTypes() []NodeType {
	return []NodeType{
		NodeDoc, NodeParagraph, NodeHeading, NodeBulletList, NodeOrderedList, NodeTaskList,
		NodeListItem, NodeTaskItem, NodeBlockquote, NodeCodeBlock, NodePreformatted,
		NodeHorizontalRule, NodeHardBreak, NodeImage, NodeTable, NodeTableRow, NodeTableCell,
		NodeTableHeader, NodeCallout, NodeToggleBlock, NodeColumns, NodeColumn, NodeText,
		NodeSection, NodeYoutube, NodeEmbed, NodeFileAttachment, NodeTableOfContents,
		NodeDatabase, NodeMention, NodeEmoji,
	}
}

// KnownMarkTypes возвращает все типы marks.
func KnownMarkTypes() []MarkType {
	return []MarkType{
		MarkBold, MarkItalic, MarkStrike, MarkCode, MarkLink, MarkUnderline,
		MarkHighlight, MarkSubscript, MarkSuperscript, MarkTextStyle,
	}
}

// Node представляет узел в дереве документа TipTap.
// Атрибуты хранятся в map, их смысл зависит от типа ноды.
type Node struct {
	Type    NodeType       `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Mark представляет форматирование текста (bold, italic, link и т.д.).
type Mark struct {
	Type  MarkType       `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// IsInline сообщает, что нода строчная (текст, перенос, упоминание).
func (n *Node) IsInline() bool {
	return inlineTypes[n.Type]
}

// IsBlock сообщает, что нода блочная.
func (n *Node) IsBlock() bool {
	return !n.IsInline()
}

// IsLeaf сообщает, что у ноды не бывает дочерних элементов.
func (n *Node) IsLeaf() bool {
	return leafTypes[n.Type]
}

// HasInlineContent сообщает, что первый дочерний элемент строчный.
func (n *Node) HasInlineContent() bool {
	return len(n.Content) > 0 && n.Content[0].IsInline()
}

// AttrString безопасно извлекает строковый атрибут.
func (n *Node) AttrString(key string) string {
	return attrString(n.Attrs, key)
}

// AttrInt безопасно извлекает целочисленный атрибут.
func (n *Node) AttrInt(key string) int {
	return attrInt(n.Attrs, key)
}

// AttrBool безопасно извлекает булевый атрибут.
func (n *Node) AttrBool(key string) bool {
	return attrBool(n.Attrs, key)
}

// AttrFloat безопасно извлекает дробный атрибут (ширина колонки, масштаб изображения).
func (n *Node) AttrFloat(key string) float64 {
	return attrFloat(n.Attrs, key)
}

// AttrString безопасно извлекает строковый атрибут mark.
func (m Mark) AttrString(key string) string {
	return attrString(m.Attrs, key)
}

// Доп. конструкторы, используются в тестах и при импорте HTML.

// NewText создает текстовую ноду с marks.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: NodeText, Text: text, Marks: marks}
}

// NewNode создает ноду с атрибутами и содержимым.
func NewNode(t NodeType, attrs map[string]any, content ...*Node) *Node {
	return &Node{Type: t, Attrs: attrs, Content: content}
}
