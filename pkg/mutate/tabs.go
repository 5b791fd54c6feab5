package mutate

import (
	"fmt"

	"github.com/goliatone/go-formtree/pkg/tree"
)

func tabsNode(t tree.Tree, op, tabsID string) (*tree.Node, error) {
	n, ok := tree.FindByID(t, tabsID)
	if !ok {
		return nil, wrap(op, ErrNotFound, "tabs %q", tabsID)
	}
	if n.Kind != tree.KindTabs {
		return nil, wrap(op, ErrInvalidParent, "%s %q is not a tabs node", n.Kind, tabsID)
	}
	return n, nil
}

// AddTab appends an empty tab to tabsID. An empty label defaults to
// "Tab <n>".
func (e *Engine) AddTab(t tree.Tree, tabsID, label string) (tree.Tree, *tree.Tab, error) {
	n, err := tabsNode(t, "add tab", tabsID)
	if err != nil {
		return nil, nil, err
	}
	if label == "" {
		label = fmt.Sprintf("Tab %d", len(n.Tabs)+1)
	}
	tab := &tree.Tab{ID: e.newID(), Label: label, Children: []*tree.Node{}}
	out, err := replaceNode(t, tabsID, func(n *tree.Node) (*tree.Node, error) {
		c := shallow(n)
		c.Tabs = make([]*tree.Tab, 0, len(n.Tabs)+1)
		c.Tabs = append(c.Tabs, n.Tabs...)
		c.Tabs = append(c.Tabs, tab)
		return c, nil
	})
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("Added tab", "tabs", tabsID, "tab", tab.ID)
	out, err = e.commit("add tab", out)
	if err != nil {
		return nil, nil, err
	}
	return out, tab, nil
}

// RemoveTab deletes tabID and every node inside it.
func (e *Engine) RemoveTab(t tree.Tree, tabsID, tabID string) (tree.Tree, error) {
	n, err := tabsNode(t, "remove tab", tabsID)
	if err != nil {
		return nil, err
	}
	idx := tabIndex(n, tabID)
	if idx < 0 {
		return nil, wrap("remove tab", ErrNotFound, "tab %q in %q", tabID, tabsID)
	}
	out, err := replaceNode(t, tabsID, func(n *tree.Node) (*tree.Node, error) {
		c := shallow(n)
		c.Tabs = make([]*tree.Tab, 0, len(n.Tabs))
		c.Tabs = append(c.Tabs, n.Tabs[:idx]...)
		c.Tabs = append(c.Tabs, n.Tabs[idx+1:]...)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Removed tab", "tabs", tabsID, "tab", tabID)
	return e.commit("remove tab", out)
}

// RenameTab sets the label of tabID.
func (e *Engine) RenameTab(t tree.Tree, tabsID, tabID, label string) (tree.Tree, error) {
	n, err := tabsNode(t, "rename tab", tabsID)
	if err != nil {
		return nil, err
	}
	idx := tabIndex(n, tabID)
	if idx < 0 {
		return nil, wrap("rename tab", ErrNotFound, "tab %q in %q", tabID, tabsID)
	}
	out, err := replaceNode(t, tabsID, func(n *tree.Node) (*tree.Node, error) {
		c := shallow(n)
		c.Tabs = make([]*tree.Tab, len(n.Tabs))
		copy(c.Tabs, n.Tabs)
		renamed := *n.Tabs[idx]
		renamed.Label = label
		c.Tabs[idx] = &renamed
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return e.commit("rename tab", out)
}

func tabIndex(n *tree.Node, tabID string) int {
	for i, tab := range n.Tabs {
		if tab != nil && tab.ID == tabID {
			return i
		}
	}
	return -1
}
