package compute

import (
	"sort"

	"github.com/goliatone/go-formtree/pkg/tree"
)

// Scope names under which a resolver's snapshot is exposed to scripts.
const (
	ScopeForm = "formData"
	ScopeRow  = "row"
)

// Resolver backs the field lookups a script can make.
type Resolver interface {
	// Field returns the value of the field labelled label, or "" when the
	// field is unknown or has no value.
	Field(label string) any
	// Snapshot returns the raw values exposed to the script.
	Snapshot() map[string]any
	// Scope names the global that exposes Snapshot.
	Scope() string
}

// MapResolver resolves labels directly as snapshot keys. It is used when no
// schema is available.
type MapResolver map[string]any

func (m MapResolver) Field(label string) any {
	return emptyIfBlank(m[label])
}

func (m MapResolver) Snapshot() map[string]any { return m }

func (m MapResolver) Scope() string { return ScopeForm }

// TreeResolver resolves labels against a form tree and reads values from a
// snapshot keyed by node id.
type TreeResolver struct {
	tree   tree.Tree
	values map[string]any
}

// NewTreeResolver returns a resolver over t and values.
func NewTreeResolver(t tree.Tree, values map[string]any) *TreeResolver {
	return &TreeResolver{tree: t, values: values}
}

// Field finds the first node labelled label (depth-first, document order)
// and returns its value. Select and radio values are replaced with the label
// of the matching option.
func (r *TreeResolver) Field(label string) any {
	n, ok := tree.FindByLabel(r.tree, label)
	if !ok {
		return ""
	}
	return displayValue(n, r.values[n.ID])
}

func (r *TreeResolver) Snapshot() map[string]any { return r.values }

func (r *TreeResolver) Scope() string { return ScopeForm }

// RowResolver resolves labels against a row-editor sub-form while reading
// values from one grid row. A field's hidden value wins; otherwise the value
// of the grid column mapped to the field is used.
type RowResolver struct {
	subForm tree.Tree
	row     map[string]any
	columns map[string]string // field id -> column id
}

// NewRowResolver returns a resolver for row. mapping goes from grid column id
// to sub-form field id.
func NewRowResolver(subForm tree.Tree, row map[string]any, mapping map[string]string) *RowResolver {
	columns := make(map[string]string, len(mapping))
	colIDs := make([]string, 0, len(mapping))
	for col := range mapping {
		colIDs = append(colIDs, col)
	}
	sort.Strings(colIDs)
	for _, col := range colIDs {
		field := mapping[col]
		if _, taken := columns[field]; !taken {
			columns[field] = col
		}
	}
	return &RowResolver{subForm: subForm, row: row, columns: columns}
}

func (r *RowResolver) Field(label string) any {
	n, ok := tree.FindByLabel(r.subForm, label)
	if !ok {
		return ""
	}
	value, present := r.row[tree.FieldKey(n.ID)]
	if !present {
		if col, mapped := r.columns[n.ID]; mapped {
			value = r.row[col]
		}
	}
	return displayValue(n, value)
}

func (r *RowResolver) Snapshot() map[string]any { return r.row }

func (r *RowResolver) Scope() string { return ScopeRow }

func displayValue(n *tree.Node, value any) any {
	value = emptyIfBlank(value)
	if value == "" {
		return ""
	}
	if n.Kind == tree.KindSelect || n.Kind == tree.KindRadio {
		if label, ok := tree.OptionLabel(n.Options(), value); ok {
			return label
		}
	}
	return value
}

func emptyIfBlank(value any) any {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok && s == "" {
		return ""
	}
	return value
}
