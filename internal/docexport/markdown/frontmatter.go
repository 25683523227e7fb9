package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

const yamlSpecialChars = ":#[]{},&*!|>'\"%@`"

var yamlKeywords = []string{"true", "false", "yes", "no", "on", "off", "null", "~"}

// Frontmatter выводит метаданные в виде блока `---`. Ключи сортируются,
// это не полноценный YAML эмиттер: вложенные объекты выводятся как JSON.
func Frontmatter(fm map[string]any) string {
	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := []string{"---"}
	for _, k := range keys {
		lines = append(lines, frontmatterEntry(k, fm[k])...)
	}
	lines = append(lines, "---")
	return strings.Join(lines, "\n")
}

func frontmatterEntry(key string, value any) []string {
	if value == nil {
		return []string{key + ": null"}
	}

	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		if rv.Len() == 0 {
			return []string{key + ": []"}
		}
		lines := []string{key + ":"}
		for i := 0; i < rv.Len(); i++ {
			lines = append(lines, "  - "+frontmatterScalar(rv.Index(i).Interface()))
		}
		return lines
	}

	return []string{key + ": " + frontmatterScalar(value)}
}

func frontmatterScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return yamlString(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return yamlString(v.String())
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return jsonString(value)
	}
	return fmt.Sprint(value)
}

func yamlString(s string) string {
	if needsQuote(s) {
		return jsonString(s)
	}
	return s
}

func needsQuote(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return true
	}
	if strings.ContainsAny(s, yamlSpecialChars) || strings.ContainsAny(s, "\n\r\t") {
		return true
	}
	if slices.Contains(yamlKeywords, strings.ToLower(s)) {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return strings.HasPrefix(s, "-") || strings.HasPrefix(s, "?")
}

func jsonString(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return strconv.Quote(fmt.Sprint(v))
	}
	return strings.TrimRight(buf.String(), "\n")
}
