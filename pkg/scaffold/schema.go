package scaffold

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formtree/pkg/grid"
	"github.com/goliatone/go-formtree/pkg/tree"
)

type builder struct {
	opts options
	// inPath holds the object schemas on the current expansion path so
	// recursive schemas stop instead of looping.
	inPath map[*openapi3.Schema]struct{}
}

// property is one named entry of a flattened object schema.
type property struct {
	name     string
	schema   *openapi3.Schema
	required bool
}

// flatten merges allOf members into one ordered property list. Read-only
// properties are skipped since they never appear in a request.
func flatten(s *openapi3.Schema) []property {
	props := map[string]*openapi3.Schema{}
	required := map[string]bool{}

	var visit func(*openapi3.Schema, int)
	visit = func(s *openapi3.Schema, depth int) {
		if s == nil || depth > 16 {
			return
		}
		for _, member := range s.AllOf {
			if member != nil {
				visit(member.Value, depth+1)
			}
		}
		for name, ref := range s.Properties {
			if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
				continue
			}
			props[name] = ref.Value
		}
		for _, name := range s.Required {
			required[name] = true
		}
	}
	visit(s, 0)

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]property, 0, len(names))
	for _, name := range names {
		out = append(out, property{name: name, schema: props[name], required: required[name]})
	}
	return out
}

func (b *builder) properties(s *openapi3.Schema, depth int) tree.Tree {
	if _, seen := b.inPath[s]; seen {
		return tree.Tree{}
	}
	b.inPath[s] = struct{}{}
	defer delete(b.inPath, s)

	out := tree.Tree{}
	for _, p := range flatten(s) {
		out = append(out, b.node(p, depth))
	}
	return out
}

func (b *builder) node(p property, depth int) *tree.Node {
	s := p.schema
	kind := kindOf(s)

	if kind == tree.KindContainer {
		_, recursive := b.inPath[s]
		if depth+1 >= b.opts.maxDepth || recursive {
			b.opts.logger.Debug("Object flattened to textarea", "property", p.name, "depth", depth, "recursive", recursive)
			kind = tree.KindTextarea
		}
	}

	n := tree.NewNode(kind, b.opts.newID)
	label := s.Title
	if label == "" {
		label = b.opts.labeler(p.name)
	}

	switch kind {
	case tree.KindContainer:
		n.Props[tree.PropLabel] = label
		n.Props[tree.PropFieldID] = p.name
		n.Children = b.properties(s, depth+1)
		return n
	case tree.KindGrid:
		n.Props[tree.PropLabel] = label
		n.Props[tree.PropFieldID] = p.name
		b.gridProps(n, s)
		return n
	}

	n.Props[tree.PropLabel] = label
	n.Props[tree.PropFieldID] = p.name
	n.Props[tree.PropRequired] = p.required
	if s.Description != "" {
		n.Props["description"] = s.Description
	}
	if s.Default != nil {
		n.Props["defaultValue"] = s.Default
	}
	if kind == tree.KindSelect {
		n.Props[tree.PropOptions] = tree.EncodeOptions(enumOptions(s.Enum))
		n.Props["placeholder"] = "Select..."
	}
	if kind == tree.KindCheckbox {
		n.Props["text"] = label
	}
	n.Validation = rules(s, p.required)
	return n
}

func kindOf(s *openapi3.Schema) tree.Kind {
	switch {
	case s.Type.Is(openapi3.TypeString):
		if len(s.Enum) > 0 {
			return tree.KindSelect
		}
		switch s.Format {
		case "email":
			return tree.KindEmail
		case "password":
			return tree.KindPassword
		case "date":
			return tree.KindDate
		case "time":
			return tree.KindTime
		}
		return tree.KindInput
	case s.Type.Is(openapi3.TypeNumber), s.Type.Is(openapi3.TypeInteger):
		return tree.KindNumber
	case s.Type.Is(openapi3.TypeBoolean):
		return tree.KindCheckbox
	case s.Type.Is(openapi3.TypeArray):
		if s.Items != nil && s.Items.Value != nil && isObject(s.Items.Value) {
			return tree.KindGrid
		}
		return tree.KindTextarea
	case isObject(s):
		return tree.KindContainer
	}
	return tree.KindInput
}

func isObject(s *openapi3.Schema) bool {
	return s.Type.Is(openapi3.TypeObject) || (s.Type == nil && (len(s.Properties) > 0 || len(s.AllOf) > 0))
}

func (b *builder) gridProps(n *tree.Node, s *openapi3.Schema) {
	item := s.Items.Value
	var cols []grid.Column
	for _, p := range flatten(item) {
		label := p.schema.Title
		if label == "" {
			label = b.opts.labeler(p.name)
		}
		col := grid.Column{ID: p.name, Label: label, Type: columnType(p.schema)}
		if col.Type == grid.ColumnSelect {
			col.Options = enumOptions(p.schema.Enum)
		}
		cols = append(cols, col)
	}
	n.Props[grid.PropColumns] = grid.EncodeColumns(cols)
	n.Props[grid.PropMinRows] = float64(s.MinItems)
	maxRows := grid.DefaultMaxRows
	if s.MaxItems != nil {
		maxRows = int(*s.MaxItems)
	}
	n.Props[grid.PropMaxRows] = float64(maxRows)
}

func columnType(s *openapi3.Schema) grid.ColumnType {
	switch kindOf(s) {
	case tree.KindNumber:
		return grid.ColumnNumber
	case tree.KindCheckbox:
		return grid.ColumnCheckbox
	case tree.KindSelect:
		return grid.ColumnSelect
	case tree.KindDate:
		return grid.ColumnDate
	}
	return grid.ColumnText
}

func enumOptions(values []any) []tree.Option {
	out := make([]tree.Option, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		value := fmt.Sprint(v)
		out = append(out, tree.Option{Label: Label(value), Value: value})
	}
	return out
}

func rules(s *openapi3.Schema, required bool) []tree.ValidationRule {
	out := []tree.ValidationRule{}
	if required {
		out = append(out, tree.ValidationRule{Type: "required", Message: "This field is required"})
	}
	if s.Format == "email" {
		out = append(out, tree.ValidationRule{Type: "email", Message: "Enter a valid email address"})
	}
	if s.MinLength > 0 {
		out = append(out, tree.ValidationRule{Type: "minLength", Value: float64(s.MinLength)})
	}
	if s.MaxLength != nil {
		out = append(out, tree.ValidationRule{Type: "maxLength", Value: float64(*s.MaxLength)})
	}
	if s.Min != nil {
		out = append(out, tree.ValidationRule{Type: "min", Value: *s.Min})
	}
	if s.Max != nil {
		out = append(out, tree.ValidationRule{Type: "max", Value: *s.Max})
	}
	if s.Pattern != "" {
		out = append(out, tree.ValidationRule{Type: "pattern", Value: s.Pattern})
	}
	return out
}
