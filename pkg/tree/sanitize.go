package tree

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// textKeys are the display strings stripped of markup on import.
var textKeys = []string{PropLabel, "placeholder", "text", "buttonText", "helpText"}

// SanitizeText removes every HTML element from s. Entities produced by the
// sanitiser are decoded again so plain text such as "R&D" survives.
func SanitizeText(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(textPolicy.Sanitize(s))
}

// SanitizeIcon keeps a safe SVG subset for grid icon mappings. Emoji and
// plain icon names pass through unchanged.
func SanitizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "<") {
		return trimmed
	}
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "ellipse", "title")
		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "aria-hidden", "role", "focusable", "class",
		).OnElements("svg")
		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width", "class",
			).OnElements(el)
		}
		iconPolicy = policy
	})
	return strings.TrimSpace(iconPolicy.Sanitize(trimmed))
}

// SanitizeTree returns a copy of t whose display strings carry no markup and
// whose grid icon mappings hold only safe SVG. Ids and shape are preserved.
func SanitizeTree(t Tree) Tree {
	out := CopyTree(t)
	Walk(out, func(n *Node, _ Location) bool {
		for _, key := range textKeys {
			if s, ok := n.Props[key].(string); ok {
				n.Props[key] = SanitizeText(s)
			}
		}
		for _, tab := range n.Tabs {
			if tab != nil {
				tab.Label = SanitizeText(tab.Label)
			}
		}
		if cols, ok := n.Props["gridColumns"].([]any); ok {
			for _, col := range cols {
				sanitizeColumn(col)
			}
		}
		return true
	})
	return out
}

func sanitizeColumn(raw any) {
	col, ok := raw.(map[string]any)
	if !ok {
		return
	}
	if label, ok := col["label"].(string); ok {
		col["label"] = SanitizeText(label)
	}
	mappings, ok := col["iconMapping"].([]any)
	if !ok {
		return
	}
	for _, entry := range mappings {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if icon, ok := m["icon"].(string); ok {
			m["icon"] = SanitizeIcon(icon)
		}
	}
}
