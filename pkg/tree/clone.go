package tree

// Clone deep-copies the subtree rooted at n, assigning a fresh id to every
// node and every tab in the copy. Props are deep-copied so the copy shares no
// mutable state with the original.
func Clone(n *Node, newID IDFunc) *Node {
	if n == nil {
		return nil
	}
	if newID == nil {
		newID = NewID
	}
	return copyNode(n, newID)
}

// Copy deep-copies the subtree rooted at n keeping every id.
func Copy(n *Node) *Node {
	if n == nil {
		return nil
	}
	return copyNode(n, nil)
}

func copyNode(n *Node, newID IDFunc) *Node {
	out := &Node{
		ID:    n.ID,
		Kind:  n.Kind,
		Props: n.Props.Clone(),
	}
	if newID != nil {
		out.ID = newID()
	}
	if n.Validation != nil {
		out.Validation = make([]ValidationRule, len(n.Validation))
		for i, rule := range n.Validation {
			rule.Value = DeepCopyValue(rule.Value)
			out.Validation[i] = rule
		}
	}
	if n.Children != nil {
		out.Children = copyList(n.Children, newID)
	}
	if n.Tabs != nil {
		out.Tabs = make([]*Tab, 0, len(n.Tabs))
		for _, tab := range n.Tabs {
			if tab == nil {
				continue
			}
			clone := &Tab{ID: tab.ID, Label: tab.Label, Children: copyList(tab.Children, newID)}
			if newID != nil {
				clone.ID = newID()
			}
			out.Tabs = append(out.Tabs, clone)
		}
	}
	return out
}

func copyList(nodes []*Node, newID IDFunc) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, child := range nodes {
		if child == nil {
			continue
		}
		out = append(out, copyNode(child, newID))
	}
	return out
}

// CopyTree deep-copies every root of t keeping ids.
func CopyTree(t Tree) Tree {
	if t == nil {
		return nil
	}
	return Tree(copyList(t, nil))
}
