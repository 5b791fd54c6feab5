// Package grid bridges repeating grid nodes and the sub-forms that edit one
// of their rows.
//
// A grid keeps its rows in the value snapshot under the grid node's id. Each
// row is a flat map holding an "id", one entry per visible column, and one
// "_field_<subFieldID>" entry per sub-form field the row editor has touched.
// Columns may be linked to sub-form fields through columnFieldMapping; the
// bridge keeps both views of a row consistent.
package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formtree/pkg/tree"
)

// Grid property keys.
const (
	PropColumns            = "gridColumns"
	PropMinRows            = "minRows"
	PropMaxRows            = "maxRows"
	PropRowEditorFormID    = "rowEditorFormId"
	PropColumnFieldMapping = "columnFieldMapping"
)

// DefaultMaxRows applies when a grid declares no maxRows.
const DefaultMaxRows = 100

// ColumnType selects how a column's cells are edited and displayed.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnNumber   ColumnType = "number"
	ColumnDate     ColumnType = "date"
	ColumnSelect   ColumnType = "select"
	ColumnCheckbox ColumnType = "checkbox"
	ColumnComputed ColumnType = "computed"
	ColumnIcon     ColumnType = "icon"
)

// IconMapping renders Icon for cells whose source value equals Value.
type IconMapping struct {
	Value string
	Icon  string
	Color string
}

// Column is the typed view of one gridColumns entry.
type Column struct {
	ID               string
	Label            string
	Type             ColumnType
	Options          []tree.Option
	ComputeScript    string
	Width            float64
	Wrap             bool
	IconSourceColumn string
	IconMapping      []IconMapping
}

// Editable reports whether users may type into the column's cells.
func (c Column) Editable() bool {
	return c.Type != ColumnComputed && c.Type != ColumnIcon
}

// Config is the typed view of a grid node's props.
type Config struct {
	Columns         []Column
	MinRows         int
	MaxRows         int
	RowEditorFormID string
	Mapping         Mapping
}

// ConfigOf decodes the grid configuration carried by n. Non-grid nodes yield
// an empty configuration with the default row bounds.
func ConfigOf(n *tree.Node) Config {
	cfg := Config{MaxRows: DefaultMaxRows, Mapping: Mapping{}}
	if n == nil || n.Kind != tree.KindGrid {
		return cfg
	}
	cfg.Columns = DecodeColumns(n.Props[PropColumns])
	if v, ok := n.Props.Int(PropMinRows); ok && v > 0 {
		cfg.MinRows = v
	}
	if v, ok := n.Props.Int(PropMaxRows); ok && v > 0 {
		cfg.MaxRows = v
	}
	if cfg.MaxRows < cfg.MinRows {
		cfg.MaxRows = cfg.MinRows
	}
	cfg.RowEditorFormID = strings.TrimSpace(n.Props.String(PropRowEditorFormID))
	cfg.Mapping = DecodeMapping(n.Props[PropColumnFieldMapping])
	return cfg
}

// Column returns the column with id.
func (c Config) Column(id string) (Column, bool) {
	for _, col := range c.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}

// DecodeColumns reads a JSON-native gridColumns payload. Legacy columns that
// carry their id under "value" are normalised; columns with neither get a
// positional id.
func DecodeColumns(raw any) []Column {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Column, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		props := tree.Props(m)
		col := Column{
			ID:               firstNonEmpty(props.String("id"), props.String("value"), fmt.Sprintf("col-%d", i+1)),
			Label:            props.String("label"),
			Type:             ColumnType(firstNonEmpty(props.String("type"), string(ColumnText))),
			Options:          tree.DecodeOptions(m["options"]),
			ComputeScript:    props.String(tree.PropComputeScript),
			Wrap:             props.Bool("wrap"),
			IconSourceColumn: props.String("iconSourceColumn"),
		}
		if w, ok := m["width"].(float64); ok {
			col.Width = w
		}
		if mappings, ok := m["iconMapping"].([]any); ok {
			for _, entry := range mappings {
				em, ok := entry.(map[string]any)
				if !ok {
					continue
				}
				ep := tree.Props(em)
				col.IconMapping = append(col.IconMapping, IconMapping{
					Value: ep.String("value"),
					Icon:  ep.String("icon"),
					Color: ep.String("color"),
				})
			}
		}
		out = append(out, col)
	}
	return out
}

// EncodeColumns converts columns back to their JSON-native form. Legacy
// "value" ids are written as "id".
func EncodeColumns(cols []Column) []any {
	out := make([]any, 0, len(cols))
	for _, col := range cols {
		m := map[string]any{
			"id":    col.ID,
			"label": col.Label,
			"type":  string(col.Type),
		}
		if len(col.Options) > 0 {
			m["options"] = tree.EncodeOptions(col.Options)
		}
		if col.ComputeScript != "" {
			m[tree.PropComputeScript] = col.ComputeScript
		}
		if col.Width > 0 {
			m["width"] = col.Width
		}
		if col.Wrap {
			m["wrap"] = true
		}
		if col.IconSourceColumn != "" {
			m["iconSourceColumn"] = col.IconSourceColumn
		}
		if len(col.IconMapping) > 0 {
			mappings := make([]any, 0, len(col.IconMapping))
			for _, im := range col.IconMapping {
				entry := map[string]any{"value": im.Value, "icon": im.Icon}
				if im.Color != "" {
					entry["color"] = im.Color
				}
				mappings = append(mappings, entry)
			}
			m["iconMapping"] = mappings
		}
		out = append(out, m)
	}
	return out
}

// Mapping links grid column ids to sub-form field ids.
type Mapping map[string]string

// DecodeMapping reads a JSON-native columnFieldMapping payload, dropping
// entries without a field id.
func DecodeMapping(raw any) Mapping {
	out := Mapping{}
	m, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	for col, field := range m {
		if id := strings.TrimSpace(tree.Stringify(field)); id != "" {
			out[col] = id
		}
	}
	return out
}

// Encode returns the JSON-native form of the mapping.
func (m Mapping) Encode() map[string]any {
	out := make(map[string]any, len(m))
	for col, field := range m {
		out[col] = field
	}
	return out
}

// Reverse maps sub-form field ids back to column ids. When several columns
// share a field the lexically first column wins.
func (m Mapping) Reverse() map[string]string {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	out := make(map[string]string, len(m))
	for _, col := range cols {
		field := m[col]
		if field == "" {
			continue
		}
		if _, taken := out[field]; !taken {
			out[field] = col
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
