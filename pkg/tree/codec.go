package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoComponents is returned when a document payload lacks a components list.
var ErrNoComponents = errors.New("tree: document has no components list")

// Document is the root-level serialisation of a form.
type Document struct {
	ID          string         `json:"id,omitempty"`
	Code        string         `json:"code,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Components  Tree           `json:"components"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// NewDocument returns the empty document the editor starts from.
func NewDocument() Document {
	return Document{
		Name:       "New Form",
		Components: Tree{},
		Settings:   map[string]any{"theme": "light"},
	}
}

// MarshalJSON always emits an array, never null.
func (t Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]*Node(t))
}

type nodeJSON struct {
	ID         string                     `json:"id"`
	Type       Kind                       `json:"type"`
	Props      map[string]json.RawMessage `json:"props"`
	Validation []ValidationRule           `json:"validation,omitempty"`
	Children   *[]*Node                   `json:"children,omitempty"`
}

// MarshalJSON encodes the node in the document format: tabs live under
// props.tabs and container kinds always carry a children array.
func (n *Node) MarshalJSON() ([]byte, error) {
	props := make(map[string]any, len(n.Props)+1)
	for k, v := range n.Props {
		props[k] = v
	}
	if n.Kind == KindTabs {
		tabs := n.Tabs
		if tabs == nil {
			tabs = []*Tab{}
		}
		props[PropTabs] = tabs
	}

	out := struct {
		ID         string           `json:"id"`
		Type       Kind             `json:"type"`
		Props      map[string]any   `json:"props"`
		Validation []ValidationRule `json:"validation,omitempty"`
		Children   *[]*Node         `json:"children,omitempty"`
	}{
		ID:         n.ID,
		Type:       n.Kind,
		Props:      props,
		Validation: n.Validation,
	}
	if n.Kind.HasChildList() {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out.Children = &children
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the document format, lifting props.tabs of tabs nodes
// into Tabs and normalising container child lists.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	node := Node{
		ID:         raw.ID,
		Kind:       raw.Type,
		Props:      make(Props, len(raw.Props)),
		Validation: raw.Validation,
	}
	for key, value := range raw.Props {
		if node.Kind == KindTabs && key == PropTabs {
			var tabs []*Tab
			if err := json.Unmarshal(value, &tabs); err != nil {
				return fmt.Errorf("tree: node %s: decode tabs: %w", raw.ID, err)
			}
			for _, tab := range tabs {
				if tab != nil && tab.Children == nil {
					tab.Children = []*Node{}
				}
			}
			node.Tabs = tabs
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return fmt.Errorf("tree: node %s: decode prop %q: %w", raw.ID, key, err)
		}
		node.Props[key] = decoded
	}

	switch {
	case node.Kind.HasChildList():
		node.Children = []*Node{}
		if raw.Children != nil {
			node.Children = *raw.Children
		}
	case node.Kind == KindTabs:
		if node.Tabs == nil {
			node.Tabs = []*Tab{}
		}
	default:
		if raw.Children != nil && len(*raw.Children) > 0 {
			node.Children = *raw.Children
		}
	}

	*n = node
	return nil
}

// EncodeDocument renders doc as indented JSON.
func EncodeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("tree: encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDocument parses a JSON document, falling back to YAML. Payloads
// without a components list are rejected with ErrNoComponents.
func DecodeDocument(data []byte) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, errors.New("tree: document is empty")
	}

	payload := data
	if !json.Valid(data) {
		var generic map[string]any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return Document{}, fmt.Errorf("tree: parse document: invalid JSON or YAML: %w", err)
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return Document{}, fmt.Errorf("tree: convert YAML document: %w", err)
		}
		payload = converted
	}

	var probe struct {
		Components json.RawMessage `json:"components"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return Document{}, fmt.Errorf("tree: parse document: %w", err)
	}
	trimmed := bytes.TrimSpace(probe.Components)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Document{}, ErrNoComponents
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Document{}, fmt.Errorf("tree: decode document: %w", err)
	}
	if doc.Components == nil {
		doc.Components = Tree{}
	}
	return doc, nil
}
