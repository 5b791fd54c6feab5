package mutate

import (
	"fmt"

	"github.com/goliatone/go-formtree/pkg/tree"
)

func wrap(op string, sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", sentinel, op, fmt.Sprintf(format, args...))
}

// slotEdit rewrites one ordered child list. Implementations must return a
// fresh slice and leave the input untouched.
type slotEdit func(nodes []*tree.Node) ([]*tree.Node, error)

// editSlot applies edit to the slot identified by slotID ("" for root, a row
// or container id, or a tab id), copying only the nodes on the path to it.
func editSlot(t tree.Tree, slotID string, edit slotEdit) (tree.Tree, error) {
	if slotID == "" {
		out, err := edit(t)
		if err != nil {
			return nil, err
		}
		return tree.Tree(out), nil
	}
	out, ok, err := editNested(t, slotID, edit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, wrap("edit", ErrNotFound, "slot %q", slotID)
	}
	return tree.Tree(out), nil
}

func editNested(nodes []*tree.Node, slotID string, edit slotEdit) ([]*tree.Node, bool, error) {
	for i, n := range nodes {
		if n == nil {
			continue
		}
		updated, ok, err := editWithin(n, slotID, edit)
		if err != nil {
			return nil, false, err
		}
		if ok {
			out := make([]*tree.Node, len(nodes))
			copy(out, nodes)
			out[i] = updated
			return out, true, nil
		}
	}
	return nodes, false, nil
}

func editWithin(n *tree.Node, slotID string, edit slotEdit) (*tree.Node, bool, error) {
	switch {
	case n.Kind.HasChildList():
		var (
			children []*tree.Node
			ok       bool
			err      error
		)
		if n.ID == slotID {
			children, err = edit(n.Children)
			ok = true
		} else {
			children, ok, err = editNested(n.Children, slotID, edit)
		}
		if err != nil || !ok {
			return n, ok, err
		}
		c := shallow(n)
		c.Children = children
		return c, true, nil

	case n.Kind == tree.KindTabs:
		for i, tab := range n.Tabs {
			if tab == nil {
				continue
			}
			var (
				children []*tree.Node
				ok       bool
				err      error
			)
			if tab.ID == slotID {
				children, err = edit(tab.Children)
				ok = true
			} else {
				children, ok, err = editNested(tab.Children, slotID, edit)
			}
			if err != nil {
				return n, false, err
			}
			if !ok {
				continue
			}
			c := shallow(n)
			c.Tabs = make([]*tree.Tab, len(n.Tabs))
			copy(c.Tabs, n.Tabs)
			c.Tabs[i] = &tree.Tab{ID: tab.ID, Label: tab.Label, Children: children}
			return c, true, nil
		}
	}
	return n, false, nil
}

// replaceNode swaps the node with the given id for the result of fn.
func replaceNode(t tree.Tree, id string, fn func(*tree.Node) (*tree.Node, error)) (tree.Tree, error) {
	loc, ok := tree.Locate(t, id)
	if !ok {
		return nil, wrap("replace", ErrNotFound, "id %q", id)
	}
	return editSlot(t, loc.SlotID(), func(nodes []*tree.Node) ([]*tree.Node, error) {
		replacement, err := fn(nodes[loc.Index])
		if err != nil {
			return nil, err
		}
		out := make([]*tree.Node, len(nodes))
		copy(out, nodes)
		out[loc.Index] = replacement
		return out, nil
	})
}

// detach removes the node with the given id and returns it with its former
// location.
func detach(t tree.Tree, id string) (tree.Tree, *tree.Node, tree.Location, error) {
	loc, ok := tree.Locate(t, id)
	if !ok {
		return nil, nil, tree.Location{}, wrap("detach", ErrNotFound, "id %q", id)
	}
	var removed *tree.Node
	out, err := editSlot(t, loc.SlotID(), func(nodes []*tree.Node) ([]*tree.Node, error) {
		removed = nodes[loc.Index]
		return removeAt(nodes, loc.Index), nil
	})
	if err != nil {
		return nil, nil, tree.Location{}, err
	}
	return out, removed, loc, nil
}

// resolveSlot maps a parent reference to the slot that receives children.
// A tabs node resolves to its first tab.
func resolveSlot(t tree.Tree, parentID string) (string, error) {
	if parentID == "" {
		return "", nil
	}
	if n, ok := tree.FindByID(t, parentID); ok {
		switch {
		case n.Kind.HasChildList():
			return n.ID, nil
		case n.Kind == tree.KindTabs:
			for _, tab := range n.Tabs {
				if tab != nil {
					return tab.ID, nil
				}
			}
			return "", wrap("resolve parent", ErrInvalidParent, "tabs %q has no tabs", parentID)
		default:
			return "", wrap("resolve parent", ErrInvalidParent, "%s %q cannot hold children", n.Kind, parentID)
		}
	}
	if _, tab, ok := tree.FindTab(t, parentID); ok {
		return tab.ID, nil
	}
	return "", wrap("resolve parent", ErrNotFound, "parent %q", parentID)
}

func shallow(n *tree.Node) *tree.Node {
	c := *n
	return &c
}

// insertAt returns a copy of nodes with node placed at index. Out-of-range
// indexes append.
func insertAt(nodes []*tree.Node, index int, node ...*tree.Node) []*tree.Node {
	if index < 0 || index > len(nodes) {
		index = len(nodes)
	}
	out := make([]*tree.Node, 0, len(nodes)+len(node))
	out = append(out, nodes[:index]...)
	out = append(out, node...)
	out = append(out, nodes[index:]...)
	return out
}

func removeAt(nodes []*tree.Node, index int) []*tree.Node {
	out := make([]*tree.Node, 0, len(nodes))
	out = append(out, nodes[:index]...)
	return append(out, nodes[index+1:]...)
}

func indexOf(nodes []*tree.Node, id string) int {
	for i, n := range nodes {
		if n != nil && n.ID == id {
			return i
		}
	}
	return -1
}
