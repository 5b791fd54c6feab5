package tree

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind is the closed set of component kinds a node may take.
type Kind string

const (
	KindInput     Kind = "input"
	KindTextarea  Kind = "textarea"
	KindSelect    Kind = "select"
	KindCheckbox  Kind = "checkbox"
	KindRadio     Kind = "radio"
	KindDate      Kind = "date"
	KindTime      Kind = "time"
	KindNumber    Kind = "number"
	KindEmail     Kind = "email"
	KindPassword  Kind = "password"
	KindFile      Kind = "file"
	KindPicture   Kind = "picture"
	KindButton    Kind = "button"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindDivider   Kind = "divider"
	KindGrid      Kind = "grid"
	KindComputed  Kind = "computed"

	KindRow       Kind = "row"
	KindContainer Kind = "container"
	KindTabs      Kind = "tabs"
)

var knownKinds = map[Kind]struct{}{
	KindInput: {}, KindTextarea: {}, KindSelect: {}, KindCheckbox: {},
	KindRadio: {}, KindDate: {}, KindTime: {}, KindNumber: {}, KindEmail: {},
	KindPassword: {}, KindFile: {}, KindPicture: {}, KindButton: {},
	KindHeading: {}, KindParagraph: {}, KindDivider: {}, KindGrid: {},
	KindComputed: {}, KindRow: {}, KindContainer: {}, KindTabs: {},
}

// Kinds lists every known kind in palette order.
func Kinds() []Kind {
	return []Kind{
		KindInput, KindTextarea, KindSelect, KindCheckbox, KindRadio,
		KindDate, KindTime, KindNumber, KindEmail, KindPassword, KindFile,
		KindPicture, KindButton, KindHeading, KindParagraph, KindDivider,
		KindContainer, KindRow, KindGrid, KindTabs, KindComputed,
	}
}

// Valid reports whether k belongs to the closed kind set.
func (k Kind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// IsContainer reports whether nodes of this kind own child nodes, either
// directly (row, container) or through tabs.
func (k Kind) IsContainer() bool {
	return k == KindRow || k == KindContainer || k == KindTabs
}

// HasChildList reports whether nodes of this kind carry a flat children list.
func (k Kind) HasChildList() bool {
	return k == KindRow || k == KindContainer
}

// Well-known property keys interpreted by the engine.
const (
	PropLabel         = "label"
	PropOptions       = "options"
	PropColumns       = "columns"
	PropGap           = "gap"
	PropTabs          = "tabs"
	PropComputeScript = "computeScript"
	PropFieldID       = "fieldId"
	PropRequired      = "required"
)

// Tree is the ordered list of root-level nodes of a form.
type Tree []*Node

// Node is one element of the form tree: a field or a layout container.
type Node struct {
	ID         string
	Kind       Kind
	Props      Props
	Validation []ValidationRule
	// Children is populated only for row and container kinds.
	Children []*Node
	// Tabs is populated only for the tabs kind.
	Tabs []*Tab
}

// Tab is a named child slot owned by a tabs node.
type Tab struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Children []*Node `json:"children"`
}

// ValidationRule is carried opaquely by the engine; enforcement belongs to the
// renderer.
type ValidationRule struct {
	Type    string `json:"type"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

// Option is a select/radio choice.
type Option struct {
	Label string
	Value string
}

// Label returns the node's label property.
func (n *Node) Label() string {
	if n == nil {
		return ""
	}
	return n.Props.String(PropLabel)
}

// Options decodes the options property of select and radio nodes.
func (n *Node) Options() []Option {
	if n == nil {
		return nil
	}
	return DecodeOptions(n.Props[PropOptions])
}

// Columns returns the declared column count of a row node.
func (n *Node) Columns() int {
	if n == nil {
		return 0
	}
	cols, _ := n.Props.Int(PropColumns)
	return cols
}

// ComputeScript returns the script source of a computed node.
func (n *Node) ComputeScript() string {
	if n == nil {
		return ""
	}
	return n.Props.String(PropComputeScript)
}

// DecodeOptions converts a JSON-native options payload into typed options.
// Entries without a value are skipped.
func DecodeOptions(raw any) []Option {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Option, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		value, ok := m["value"]
		if !ok || value == nil {
			continue
		}
		out = append(out, Option{
			Label: Stringify(m["label"]),
			Value: Stringify(value),
		})
	}
	return out
}

// EncodeOptions converts typed options back into their JSON-native form.
func EncodeOptions(options []Option) []any {
	out := make([]any, 0, len(options))
	for _, opt := range options {
		out = append(out, map[string]any{"label": opt.Label, "value": opt.Value})
	}
	return out
}

// OptionLabel returns the label of the option whose value matches value.
func OptionLabel(options []Option, value any) (string, bool) {
	want := Stringify(value)
	for _, opt := range options {
		if opt.Value == want {
			return opt.Label, true
		}
	}
	return "", false
}

// Props is the open key/value configuration bag of a node.
type Props map[string]any

// String returns the string form of key, or "" when absent.
func (p Props) String(key string) string {
	if p == nil {
		return ""
	}
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return Stringify(v)
}

// Int returns key as an integer when it holds a whole number.
func (p Props) Int(key string) (int, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	default:
		return 0, false
	}
}

// Bool returns key as a boolean.
func (p Props) Bool(key string) bool {
	if p == nil {
		return false
	}
	b, _ := p[key].(bool)
	return b
}

// Clone returns a deep copy of the bag.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = DeepCopyValue(v)
	}
	return out
}

// Merge returns a new bag holding p shallow-merged with patch.
func (p Props) Merge(patch Props) Props {
	out := make(Props, len(p)+len(patch))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// DeepCopyValue copies JSON-native containers so the copy shares no mutable
// state with the source.
func DeepCopyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = DeepCopyValue(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = DeepCopyValue(v)
		}
		return clone
	default:
		return typed
	}
}

// NormalizeValue converts arbitrary Go values into their JSON-native form
// (numbers become float64, structs become maps) so structural comparisons
// after a round trip stay stable.
func NormalizeValue(value any) (any, error) {
	switch value.(type) {
	case nil, string, float64, bool:
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stringify renders a JSON-native value the way the form surfaces display it.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// FieldKeyPrefix namespaces sub-form field values stored on grid rows apart
// from the row's mapped columns.
const FieldKeyPrefix = "_field_"

// FieldKey returns the row key holding the hidden value of sub-form field id.
func FieldKey(fieldID string) string {
	return FieldKeyPrefix + fieldID
}
