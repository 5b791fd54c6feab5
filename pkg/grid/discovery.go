package grid

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formtree/internal/ctxlog"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// DefaultMaxExpandDepth bounds how many sub-form levels Expand follows.
const DefaultMaxExpandDepth = 32

// Ref names the sub-form a grid node uses as its row editor.
type Ref struct {
	GridID string
	FormID string
}

// RowEditorRefs lists the row-editor references of every grid in t, in
// document order. Grids without a row editor are skipped.
func RowEditorRefs(t tree.Tree) []Ref {
	grids := tree.Collect(t, func(n *tree.Node) bool {
		return n.Kind == tree.KindGrid && ConfigOf(n).RowEditorFormID != ""
	})
	refs := make([]Ref, 0, len(grids))
	for _, n := range grids {
		refs = append(refs, Ref{GridID: n.ID, FormID: ConfigOf(n).RowEditorFormID})
	}
	return refs
}

// FormSource loads stored form documents by id.
type FormSource interface {
	Form(ctx context.Context, id string) (tree.Document, error)
}

// FormNode is one form in an expansion. Children hang off the grids that
// reference them.
type FormNode struct {
	FormID string
	Name   string
	// GridID is the grid in the parent form that references this form. It is
	// empty for the root.
	GridID   string
	Children []*FormNode
	// Cycle is set when the form is already on the path from the root; its
	// children are not expanded.
	Cycle bool
	// Missing is set when the source could not load the form.
	Missing bool
}

// ExpandOption customises Expand.
type ExpandOption func(*expandOptions)

type expandOptions struct {
	maxDepth int
}

// WithMaxDepth bounds the number of nested forms Expand follows.
func WithMaxDepth(depth int) ExpandOption {
	return func(o *expandOptions) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

type expandState struct {
	stack   []string
	inStack map[string]struct{}
}

func (s *expandState) contains(id string) bool {
	_, ok := s.inStack[id]
	return ok
}

func (s *expandState) push(id string) {
	s.stack = append(s.stack, id)
	s.inStack[id] = struct{}{}
}

func (s *expandState) pop(id string) {
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.inStack, id)
}

// Expand loads formID from source and follows the row-editor references of
// its grids recursively. A form that is already on the current resolution
// path is reported with Cycle set instead of being expanded again. Nested
// forms that cannot be loaded are reported with Missing set; a failure to
// load the root form is returned as an error.
func Expand(ctx context.Context, source FormSource, formID string, opts ...ExpandOption) (*FormNode, error) {
	if source == nil {
		return nil, errors.New("grid: form source is nil")
	}
	options := expandOptions{maxDepth: DefaultMaxExpandDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	doc, err := source.Form(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("grid: load form %s: %w", formID, err)
	}

	state := &expandState{stack: make([]string, 0, 4), inStack: make(map[string]struct{})}
	root := &FormNode{FormID: formID, Name: doc.Name}
	if err := expandInto(ctx, source, root, doc, state, options); err != nil {
		return nil, err
	}
	return root, nil
}

func expandInto(ctx context.Context, source FormSource, node *FormNode, doc tree.Document, state *expandState, opts expandOptions) error {
	logger := ctxlog.FromContext(ctx)

	if len(state.stack) >= opts.maxDepth {
		return fmt.Errorf("grid: row-editor nesting exceeds %d", opts.maxDepth)
	}
	state.push(node.FormID)
	defer state.pop(node.FormID)

	for _, ref := range RowEditorRefs(doc.Components) {
		if err := ctx.Err(); err != nil {
			return err
		}
		child := &FormNode{FormID: ref.FormID, GridID: ref.GridID}
		node.Children = append(node.Children, child)

		if state.contains(ref.FormID) {
			logger.Debug("Row-editor cycle detected", "formId", ref.FormID, "gridId", ref.GridID, "path", state.stack)
			child.Cycle = true
			continue
		}

		sub, err := source.Form(ctx, ref.FormID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn("Row-editor form unavailable", "formId", ref.FormID, "gridId", ref.GridID, "error", err)
			child.Missing = true
			continue
		}
		child.Name = sub.Name
		if err := expandInto(ctx, source, child, sub, state, opts); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func (n *FormNode) Walk(fn func(node *FormNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *FormNode) walk(fn func(*FormNode, int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}
