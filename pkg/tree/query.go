package tree

// Slot is one ordered child list owned by a container node. Rows and
// containers expose a single slot with an empty TabID; tabs nodes expose one
// slot per tab.
type Slot struct {
	TabID string
	Nodes []*Node
}

// Slots returns the child slots of n in document order.
func Slots(n *Node) []Slot {
	if n == nil {
		return nil
	}
	switch {
	case n.Kind.HasChildList():
		return []Slot{{Nodes: n.Children}}
	case n.Kind == KindTabs:
		out := make([]Slot, 0, len(n.Tabs))
		for _, tab := range n.Tabs {
			if tab == nil {
				continue
			}
			out = append(out, Slot{TabID: tab.ID, Nodes: tab.Children})
		}
		return out
	default:
		return nil
	}
}

// Location describes where a node sits: the owning parent (empty at root),
// the tab within that parent when the parent is a tabs node, and the index
// inside the owning slot.
type Location struct {
	ParentID   string
	ParentKind Kind
	TabID      string
	Index      int
	Depth      int
}

// Root reports whether the location is the top level of the tree.
func (l Location) Root() bool {
	return l.ParentID == ""
}

// SlotID identifies the owning slot: the tab id for tab children, the parent
// id otherwise, and "" at root.
func (l Location) SlotID() string {
	if l.TabID != "" {
		return l.TabID
	}
	return l.ParentID
}

// WalkFunc is called for every node in document order. Returning false stops
// the walk.
type WalkFunc func(n *Node, loc Location) bool

// Walk visits every node depth-first in document order, descending into
// children and into every tab.
func Walk(t Tree, fn WalkFunc) {
	walkSlot(t, nil, "", 0, fn)
}

func walkSlot(nodes []*Node, parent *Node, tabID string, depth int, fn WalkFunc) bool {
	for i, n := range nodes {
		if n == nil {
			continue
		}
		loc := Location{TabID: tabID, Index: i, Depth: depth}
		if parent != nil {
			loc.ParentID = parent.ID
			loc.ParentKind = parent.Kind
		}
		if !fn(n, loc) {
			return false
		}
		for _, slot := range Slots(n) {
			if !walkSlot(slot.Nodes, n, slot.TabID, depth+1, fn) {
				return false
			}
		}
	}
	return true
}

// FindByID returns the node with the given id.
func FindByID(t Tree, id string) (*Node, bool) {
	if id == "" {
		return nil, false
	}
	var found *Node
	Walk(t, func(n *Node, _ Location) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindByLabel returns the first node, depth-first in document order, whose
// label property equals label.
func FindByLabel(t Tree, label string) (*Node, bool) {
	var found *Node
	Walk(t, func(n *Node, _ Location) bool {
		if _, ok := n.Props[PropLabel]; ok && n.Label() == label {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Collect returns every node satisfying pred, in document order.
func Collect(t Tree, pred func(*Node) bool) []*Node {
	var out []*Node
	Walk(t, func(n *Node, _ Location) bool {
		if pred == nil || pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Locate returns the location of the node with the given id.
func Locate(t Tree, id string) (Location, bool) {
	var (
		loc   Location
		found bool
	)
	Walk(t, func(n *Node, l Location) bool {
		if n.ID == id {
			loc, found = l, true
			return false
		}
		return true
	})
	return loc, found
}

// FindTab returns the tabs node owning tabID together with the tab.
func FindTab(t Tree, tabID string) (*Node, *Tab, bool) {
	if tabID == "" {
		return nil, nil, false
	}
	var (
		owner *Node
		tab   *Tab
	)
	Walk(t, func(n *Node, _ Location) bool {
		if n.Kind != KindTabs {
			return true
		}
		for _, candidate := range n.Tabs {
			if candidate != nil && candidate.ID == tabID {
				owner, tab = n, candidate
				return false
			}
		}
		return true
	})
	return owner, tab, tab != nil
}

// IsDescendant reports whether candidateID lies strictly inside the subtree
// rooted at ancestorID. ancestorID may name a node or a tab. A node is never
// its own descendant.
func IsDescendant(t Tree, candidateID, ancestorID string) bool {
	if candidateID == "" || ancestorID == "" || candidateID == ancestorID {
		return false
	}

	var scope []*Node
	if n, ok := FindByID(t, ancestorID); ok {
		scope = []*Node{n}
	} else if _, tab, ok := FindTab(t, ancestorID); ok {
		scope = tab.Children
	} else {
		return false
	}

	found := false
	Walk(scope, func(n *Node, _ Location) bool {
		if n.ID == ancestorID {
			for _, tab := range n.Tabs {
				if tab != nil && tab.ID == candidateID {
					found = true
					return false
				}
			}
			return true
		}
		if n.ID == candidateID {
			found = true
			return false
		}
		for _, tab := range n.Tabs {
			if tab != nil && tab.ID == candidateID {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// IDs returns every node and tab id in document order.
func IDs(t Tree) []string {
	var out []string
	Walk(t, func(n *Node, _ Location) bool {
		out = append(out, n.ID)
		for _, tab := range n.Tabs {
			if tab != nil {
				out = append(out, tab.ID)
			}
		}
		return true
	})
	return out
}

// Count returns the number of nodes in the tree.
func Count(t Tree) int {
	total := 0
	Walk(t, func(*Node, Location) bool {
		total++
		return true
	})
	return total
}
