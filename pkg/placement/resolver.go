package placement

import (
	"fmt"

	"github.com/goliatone/go-formtree/pkg/mutate"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// Source is what is being dropped: a new component of Kind, or the existing
// node NodeID (tree-view drags). Exactly one field is set.
type Source struct {
	Kind   tree.Kind
	NodeID string
}

// NewComponent returns a source that creates a node of kind.
func NewComponent(kind tree.Kind) Source {
	return Source{Kind: kind}
}

// Existing returns a source that relocates node id.
func Existing(id string) Source {
	return Source{NodeID: id}
}

// IsExisting reports whether the source relocates a node already in the tree.
func (s Source) IsExisting() bool {
	return s.NodeID != ""
}

func (s Source) String() string {
	if s.IsExisting() {
		return "node " + s.NodeID
	}
	return "new " + string(s.Kind)
}

// Drop is a completed drag gesture. An empty Target means the canvas.
type Drop struct {
	Target string
	Edge   Edge
	Source Source
}

// Action is the structural operation a drop resolves to.
type Action int

const (
	InsertRoot Action = iota
	InsertInto
	InsertSibling
	InsertIntoRow
	WrapInRow
)

func (a Action) String() string {
	switch a {
	case InsertRoot:
		return "insert-root"
	case InsertInto:
		return "insert-into"
	case InsertSibling:
		return "insert-sibling"
	case InsertIntoRow:
		return "insert-into-row"
	case WrapInRow:
		return "wrap-in-row"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Plan is a resolved drop, ready for Apply.
type Plan struct {
	Action Action
	// Target is the node (or tab) the action is anchored on; empty for
	// InsertRoot.
	Target string
	Side   mutate.Side
	Source Source
}

// Result is the outcome of applying a plan.
type Result struct {
	Tree tree.Tree
	// Node is the placed node: the new component or the relocated one.
	Node *tree.Node
	// Row is the row created by WrapInRow, nil otherwise.
	Row *tree.Node
}

// Resolve picks the structural action for drop. It only asks whether the
// target is a container and whether its parent is a row.
func Resolve(t tree.Tree, drop Drop) (Plan, error) {
	if err := checkSource(t, drop.Source); err != nil {
		return Plan{}, err
	}
	plan := Plan{Source: drop.Source, Target: drop.Target, Side: mutate.After}
	if drop.Target == "" {
		plan.Action = InsertRoot
		return plan, nil
	}

	target, ok := tree.FindByID(t, drop.Target)
	if !ok {
		if _, _, isTab := tree.FindTab(t, drop.Target); isTab {
			plan.Action = InsertInto
			return plan, nil
		}
		return Plan{}, fmt.Errorf("%w: resolve drop: target %q", mutate.ErrNotFound, drop.Target)
	}
	loc, _ := tree.Locate(t, drop.Target)

	switch drop.Edge {
	case Inside:
		if target.Kind.IsContainer() {
			plan.Action = InsertInto
		} else {
			plan.Action = InsertSibling
		}
	case Left, Right:
		if drop.Edge == Left {
			plan.Side = mutate.Before
		}
		if loc.ParentKind == tree.KindRow {
			plan.Action = InsertIntoRow
		} else {
			plan.Action = WrapInRow
		}
	case Top, Bottom:
		if drop.Edge == Top {
			plan.Side = mutate.Before
		}
		plan.Action = InsertSibling
	default:
		return Plan{}, fmt.Errorf("placement: resolve drop: unknown edge %v", drop.Edge)
	}
	return plan, nil
}

func checkSource(t tree.Tree, src Source) error {
	switch {
	case src.IsExisting():
		if _, ok := tree.FindByID(t, src.NodeID); !ok {
			return fmt.Errorf("%w: resolve drop: source %q", mutate.ErrNotFound, src.NodeID)
		}
	case !src.Kind.Valid():
		return fmt.Errorf("%w: resolve drop: kind %q", mutate.ErrUnknownKind, src.Kind)
	}
	return nil
}

// Apply runs plan against t. Existing sources are detached first; dropping a
// node onto itself or into its own subtree fails with
// mutate.ErrInvalidParent and leaves t untouched.
func Apply(e *mutate.Engine, t tree.Tree, plan Plan) (Result, error) {
	if e == nil {
		return Result{}, fmt.Errorf("placement: apply: engine is required")
	}

	var (
		node     *tree.Node
		working  = t
		oldRowID string
		err      error
	)
	if plan.Source.IsExisting() {
		id := plan.Source.NodeID
		if plan.Target != "" && (plan.Target == id || tree.IsDescendant(t, plan.Target, id)) {
			return Result{}, fmt.Errorf("%w: apply drop: %q onto itself", mutate.ErrInvalidParent, id)
		}
		found, ok := tree.FindByID(t, id)
		if !ok {
			return Result{}, fmt.Errorf("%w: apply drop: source %q", mutate.ErrNotFound, id)
		}
		if loc, _ := tree.Locate(t, id); loc.ParentKind == tree.KindRow {
			oldRowID = loc.ParentID
		}
		node = found
		if working, err = e.Remove(t, id); err != nil {
			return Result{}, err
		}
	} else {
		if node, err = e.NewNode(plan.Source.Kind); err != nil {
			return Result{}, err
		}
	}

	res := Result{Node: node}
	switch plan.Action {
	case InsertRoot:
		res.Tree, err = e.InsertNode(working, "", -1, node)
	case InsertInto:
		res.Tree, err = e.InsertNode(working, plan.Target, -1, node)
	case InsertSibling:
		res.Tree, err = e.InsertBeside(working, plan.Target, node, plan.Side)
	case InsertIntoRow:
		res.Tree, err = e.InsertIntoRow(working, plan.Target, node, plan.Side)
	case WrapInRow:
		res.Tree, res.Row, err = e.WrapInRow(working, plan.Target, node, plan.Side)
	default:
		err = fmt.Errorf("placement: apply: unknown action %v", plan.Action)
	}
	if err != nil {
		return Result{}, err
	}

	if oldRowID != "" && oldRowID != plan.Target {
		if row, ok := tree.FindByID(res.Tree, oldRowID); ok && row.Kind == tree.KindRow {
			if res.Tree, err = e.SetRowColumns(res.Tree, oldRowID); err != nil {
				return Result{}, err
			}
		}
	}
	return res, nil
}

// Place resolves and applies drop in one step.
func Place(e *mutate.Engine, t tree.Tree, drop Drop) (Result, error) {
	plan, err := Resolve(t, drop)
	if err != nil {
		return Result{}, err
	}
	return Apply(e, t, plan)
}
