package grid

import (
	"strings"

	"github.com/goliatone/go-formtree/pkg/compute"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// EditorValues builds the sub-form snapshot for row. Mapped column values come
// first; hidden _field_ values fill the fields not already set.
func EditorValues(row Row, mapping Mapping) map[string]any {
	data := make(map[string]any)
	if row == nil {
		return data
	}
	for col, field := range mapping {
		if field == "" {
			continue
		}
		if v, ok := row[col]; ok && v != nil {
			data[field] = v
		}
	}
	for key, v := range row {
		field, ok := strings.CutPrefix(key, tree.FieldKeyPrefix)
		if !ok || field == "" {
			continue
		}
		if _, set := data[field]; !set {
			data[field] = v
		}
	}
	return data
}

// ApplyFieldChange records a sub-form field edit on a copy of row. The mapped
// column, when there is one, is updated and the hidden _field_ value is always
// written.
func ApplyFieldChange(row Row, mapping Mapping, fieldID string, value any) Row {
	out := row.Clone()
	if out == nil {
		out = Row{}
	}
	if col, ok := mapping.Reverse()[fieldID]; ok {
		out[col] = value
	}
	out[tree.FieldKey(fieldID)] = value
	return out
}

// Bridge renders grid cells for one grid node and its row-editor sub-form.
type Bridge struct {
	config    Config
	subForm   tree.Tree
	evaluator *compute.Evaluator
}

// BridgeOption customises a Bridge.
type BridgeOption func(*Bridge)

// WithEvaluator overrides the evaluator used for computed columns.
func WithEvaluator(e *compute.Evaluator) BridgeOption {
	return func(b *Bridge) {
		if e != nil {
			b.evaluator = e
		}
	}
}

// NewBridge binds cfg to the sub-form that edits its rows. subForm may be nil
// when the grid has no row editor.
func NewBridge(cfg Config, subForm tree.Tree, opts ...BridgeOption) *Bridge {
	b := &Bridge{config: cfg, subForm: subForm, evaluator: compute.New()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Config returns the grid configuration.
func (b *Bridge) Config() Config {
	return b.config
}

// EditorValues builds the sub-form snapshot of row.
func (b *Bridge) EditorValues(row Row) map[string]any {
	return EditorValues(row, b.config.Mapping)
}

// ApplyFieldChange records a sub-form field edit on a copy of row.
func (b *Bridge) ApplyFieldChange(row Row, fieldID string, value any) Row {
	return ApplyFieldChange(row, b.config.Mapping, fieldID, value)
}

// ColumnOptions returns the choices of col: its own options, or those of the
// select or radio sub-form field the column is linked to.
func (b *Bridge) ColumnOptions(col Column) []tree.Option {
	return ColumnOptions(col, b.config.Mapping, b.subForm)
}

// ColumnOptions resolves the choices of col against mapping and subForm.
func ColumnOptions(col Column, mapping Mapping, subForm tree.Tree) []tree.Option {
	if len(col.Options) > 0 {
		return col.Options
	}
	fieldID, ok := mapping[col.ID]
	if !ok || subForm == nil {
		return nil
	}
	field, ok := tree.FindByID(subForm, fieldID)
	if !ok || (field.Kind != tree.KindSelect && field.Kind != tree.KindRadio) {
		return nil
	}
	return field.Options()
}

// DisplayValue renders the cell of col in row:
//   - computed columns run their script against the row;
//   - icon columns yield the sanitised icon matching the source value;
//   - columns with options show the option label;
//   - everything else is the stringified value.
func (b *Bridge) DisplayValue(col Column, row Row) string {
	switch col.Type {
	case ColumnComputed:
		return b.Compute(col, row).Display
	case ColumnIcon:
		source := row[col.ID]
		if col.IconSourceColumn != "" {
			source = row[col.IconSourceColumn]
		}
		want := tree.Stringify(source)
		for _, m := range col.IconMapping {
			if m.Value == want {
				return tree.SanitizeIcon(m.Icon)
			}
		}
		return ""
	}

	value := row[col.ID]
	if options := b.ColumnOptions(col); len(options) > 0 {
		if label, ok := tree.OptionLabel(options, value); ok {
			return label
		}
	}
	return tree.Stringify(value)
}

// Compute evaluates a computed column for row. Labels resolve against the
// sub-form; the row itself is exposed to the script as "row".
func (b *Bridge) Compute(col Column, row Row) compute.Result {
	resolver := compute.NewRowResolver(b.subForm, row, b.config.Mapping)
	return b.evaluator.Evaluate(col.ComputeScript, resolver)
}
