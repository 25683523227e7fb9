package tiptap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrEmptyDocument = errors.New("empty document")

	anchorStripReg = regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)
	lowerCaser     = cases.Lower(language.Und)
)

// ParseJSON парсит JSON контент TipTap редактора в дерево нод.
// Корень без типа считается документом.
func ParseJSON(r io.Reader) (*Node, error) {
	var root Node
	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}
	if root.Type == "" {
		root.Type = NodeDoc
	}
	return &root, nil
}

// ParseJSONBytes то же что ParseJSON, для уже прочитанных данных.
func ParseJSONBytes(data []byte) (*Node, error) {
	return ParseJSON(bytes.NewReader(data))
}

// Walk обходит дерево в глубину. Если fn возвращает false, потомки ноды пропускаются.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.Content {
		child.walk(fn, depth+1)
	}
}

// TextContent возвращает весь текст ноды без форматирования.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.Walk(func(node *Node, _ int) bool {
		switch node.Type {
		case NodeText:
			sb.WriteString(node.Text)
		case NodeHardBreak:
			sb.WriteString("\n")
		case NodeMention:
			sb.WriteString("@" + node.AttrString("label"))
		}
		return true
	})
	return sb.String()
}

// Validate проверяет инварианты дерева: текст есть только у текстовых нод,
// у текстовых нод нет потомков, в content нет null.
func (n *Node) Validate() error {
	var err error
	n.Walk(func(node *Node, depth int) bool {
		if err != nil {
			return false
		}
		if node.Type == "" {
			err = fmt.Errorf("node without type at depth %d", depth)
			return false
		}
		if node.Type != NodeText && node.Text != "" {
			err = fmt.Errorf("%s node carries text at depth %d", node.Type, depth)
			return false
		}
		if node.Type == NodeText && len(node.Content) > 0 {
			err = fmt.Errorf("text node has children at depth %d", depth)
			return false
		}
		for i, child := range node.Content {
			if child == nil {
				err = fmt.Errorf("content[%d] is null at depth %d", i, depth+1)
				return false
			}
		}
		return true
	})
	return err
}

// Heading элемент оглавления документа.
type Heading struct {
	Level  int
	Text   string
	Anchor string
}

// Headings собирает заголовки документа в порядке следования.
// Якоря строятся по правилам GitHub, повторы получают суффикс -1, -2...
func (n *Node) Headings() []Heading {
	var res []Heading
	seen := make(map[string]int)
	n.Walk(func(node *Node, _ int) bool {
		if node.Type != NodeHeading {
			return true
		}
		text := strings.TrimSpace(node.TextContent())
		anchor := Anchor(text)
		if c, ok := seen[anchor]; ok {
			seen[anchor] = c + 1
			anchor = fmt.Sprintf("%s-%d", anchor, c+1)
		} else {
			seen[anchor] = 0
		}
		res = append(res, Heading{Level: HeadingLevel(node), Text: text, Anchor: anchor})
		return false
	})
	return res
}

// HeadingLevel возвращает уровень заголовка в пределах 1..6.
func HeadingLevel(n *Node) int {
	return min(max(n.AttrInt("level"), 1), 6)
}

// Anchor строит якорь заголовка: нижний регистр, без пунктуации, пробелы заменены дефисами.
func Anchor(text string) string {
	s := lowerCaser.String(strings.TrimSpace(text))
	s = anchorStripReg.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), "-")
}

// Compact возвращает дерево без null в content. Если null нет, возвращается сам n,
// иначе копируются только ноды на пути к удаленным элементам.
func (n *Node) Compact() *Node {
	if n == nil {
		return nil
	}
	var content []*Node
	changed := false
	for i, child := range n.Content {
		compacted := child.Compact()
		if child == nil || compacted != child {
			if !changed {
				content = append(make([]*Node, 0, len(n.Content)), n.Content[:i]...)
				changed = true
			}
			if compacted != nil {
				content = append(content, compacted)
			}
			continue
		}
		if changed {
			content = append(content, child)
		}
	}
	if !changed {
		return n
	}
	cp := *n
	cp.Content = content
	return &cp
}
