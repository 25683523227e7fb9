package tiptap

import (
	"encoding/json"
	"strconv"
	"strings"
)

// attrString безопасно извлекает строковый атрибут из map.
func attrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	switch v := attrs[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// attrInt безопасно извлекает целочисленный атрибут из map.
func attrInt(attrs map[string]any, key string) int {
	if attrs == nil {
		return 0
	}

	switch v := attrs[key].(type) {
	// Из JSON числа приходят как float64
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
		return i
	}
	return 0
}

func attrFloat(attrs map[string]any, key string) float64 {
	if attrs == nil {
		return 0
	}
	switch v := attrs[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
		return f
	}
	return 0
}

// attrBool безопасно извлекает булевый атрибут из map.
func attrBool(attrs map[string]any, key string) bool {
	if attrs == nil {
		return false
	}
	switch v := attrs[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// ParseStyleAttr парсит CSS style строку в map key-value пар.
// Например: "background-color: red; color: blue;" -> {"background-color": "red", "color": "blue"}
func ParseStyleAttr(style string) map[string]string {
	result := make(map[string]string)
	if style == "" {
		return result
	}

	for part := range strings.SplitSeq(style, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		if key != "" && value != "" {
			result[key] = value
		}
	}

	return result
}
