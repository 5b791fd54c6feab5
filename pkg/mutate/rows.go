package mutate

import (
	"github.com/goliatone/go-formtree/pkg/tree"
)

// Side selects whether a node lands before or after its target.
type Side int

const (
	Before Side = iota
	After
)

func (s Side) String() string {
	if s == Before {
		return "before"
	}
	return "after"
}

func (s Side) offset() int {
	if s == Before {
		return 0
	}
	return 1
}

// SetRowColumns syncs the columns prop of rowID to its child count.
func (e *Engine) SetRowColumns(t tree.Tree, rowID string) (tree.Tree, error) {
	n, ok := tree.FindByID(t, rowID)
	if !ok {
		return nil, wrap("set row columns", ErrNotFound, "id %q", rowID)
	}
	if n.Kind != tree.KindRow {
		return nil, wrap("set row columns", ErrInvalidParent, "%s %q is not a row", n.Kind, rowID)
	}
	out, err := replaceNode(t, rowID, func(n *tree.Node) (*tree.Node, error) {
		c := shallow(n)
		c.Props = n.Props.Merge(tree.Props{tree.PropColumns: float64(len(n.Children))})
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return e.commit("set row columns", out)
}

// WrapInRow replaces targetID in its slot with a new two-column row holding
// node and the target, node first when side is Before. Any node may be
// wrapped, rows and containers included. The new row is returned.
func (e *Engine) WrapInRow(t tree.Tree, targetID string, node *tree.Node, side Side) (tree.Tree, *tree.Node, error) {
	if err := checkFresh(t, node); err != nil {
		return nil, nil, err
	}
	loc, ok := tree.Locate(t, targetID)
	if !ok {
		return nil, nil, wrap("wrap in row", ErrNotFound, "id %q", targetID)
	}
	row := tree.NewRow(e.newID)
	out, err := editSlot(t, loc.SlotID(), func(nodes []*tree.Node) ([]*tree.Node, error) {
		target := nodes[loc.Index]
		if side == Before {
			row.Children = []*tree.Node{node, target}
		} else {
			row.Children = []*tree.Node{target, node}
		}
		replaced := make([]*tree.Node, len(nodes))
		copy(replaced, nodes)
		replaced[loc.Index] = row
		return replaced, nil
	})
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("Wrapped node in row", "target", targetID, "row", row.ID, "node", node.ID, "side", side)
	out, err = e.commit("wrap in row", out)
	if err != nil {
		return nil, nil, err
	}
	return out, row, nil
}

// InsertBeside places node directly before or after targetID in the target's
// own slot.
func (e *Engine) InsertBeside(t tree.Tree, targetID string, node *tree.Node, side Side) (tree.Tree, error) {
	if err := checkFresh(t, node); err != nil {
		return nil, err
	}
	loc, ok := tree.Locate(t, targetID)
	if !ok {
		return nil, wrap("insert beside", ErrNotFound, "id %q", targetID)
	}
	out, err := editSlot(t, loc.SlotID(), func(nodes []*tree.Node) ([]*tree.Node, error) {
		return insertAt(nodes, loc.Index+side.offset(), node), nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Inserted sibling", "target", targetID, "node", node.ID, "side", side)
	return e.commit("insert beside", out)
}

// InsertIntoRow places node beside targetID inside the row that owns the
// target and sets the row's columns to its new child count. The target's
// parent must be a row.
func (e *Engine) InsertIntoRow(t tree.Tree, targetID string, node *tree.Node, side Side) (tree.Tree, error) {
	if err := checkFresh(t, node); err != nil {
		return nil, err
	}
	loc, ok := tree.Locate(t, targetID)
	if !ok {
		return nil, wrap("insert into row", ErrNotFound, "id %q", targetID)
	}
	if loc.ParentKind != tree.KindRow {
		return nil, wrap("insert into row", ErrInvalidParent, "parent of %q is not a row", targetID)
	}
	out, err := replaceNode(t, loc.ParentID, func(row *tree.Node) (*tree.Node, error) {
		c := shallow(row)
		c.Children = insertAt(row.Children, loc.Index+side.offset(), node)
		c.Props = row.Props.Merge(tree.Props{tree.PropColumns: float64(len(c.Children))})
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Inserted into row", "row", loc.ParentID, "target", targetID, "node", node.ID, "side", side)
	return e.commit("insert into row", out)
}
