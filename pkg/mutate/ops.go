package mutate

import (
	"github.com/goliatone/go-formtree/pkg/tree"
)

// Insert creates a node of kind with default props and places it at index
// inside parentID. An empty parentID targets the root; a tabs node targets
// its first tab. index -1 (or any index past the end) appends.
func (e *Engine) Insert(t tree.Tree, parentID string, index int, kind tree.Kind) (tree.Tree, *tree.Node, error) {
	node, err := e.NewNode(kind)
	if err != nil {
		return nil, nil, err
	}
	out, err := e.InsertNode(t, parentID, index, node)
	if err != nil {
		return nil, nil, err
	}
	return out, node, nil
}

// InsertNode places a pre-built node. None of the node's ids may already be
// present in t.
func (e *Engine) InsertNode(t tree.Tree, parentID string, index int, node *tree.Node) (tree.Tree, error) {
	if err := checkFresh(t, node); err != nil {
		return nil, err
	}
	slotID, err := resolveSlot(t, parentID)
	if err != nil {
		return nil, err
	}
	out, err := editSlot(t, slotID, func(nodes []*tree.Node) ([]*tree.Node, error) {
		return insertAt(nodes, index, node), nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Inserted node", "id", node.ID, "kind", node.Kind, "parent", parentID, "index", index)
	return e.commit("insert", out)
}

func checkFresh(t tree.Tree, node *tree.Node) error {
	if node == nil {
		return wrap("insert", ErrInvalidPatch, "nil node")
	}
	if !node.Kind.Valid() {
		return wrap("insert", ErrUnknownKind, "kind %q", node.Kind)
	}
	existing := make(map[string]struct{})
	for _, id := range tree.IDs(t) {
		existing[id] = struct{}{}
	}
	for _, id := range tree.IDs(tree.Tree{node}) {
		if _, clash := existing[id]; clash {
			return wrap("insert", ErrDuplicateID, "id %q", id)
		}
	}
	return nil
}

// Update shallow-merges patch into the props of node id. Values are stored in
// their JSON-native form. The structural "tabs" key cannot be patched.
func (e *Engine) Update(t tree.Tree, id string, patch tree.Props) (tree.Tree, error) {
	normalized := make(tree.Props, len(patch))
	for key, value := range patch {
		if key == tree.PropTabs {
			return nil, wrap("update", ErrInvalidPatch, "key %q is structural", key)
		}
		v, err := tree.NormalizeValue(value)
		if err != nil {
			return nil, wrap("update", ErrInvalidPatch, "key %q: %v", key, err)
		}
		normalized[key] = v
	}

	if _, ok := tree.FindByID(t, id); !ok {
		return nil, wrap("update", ErrNotFound, "id %q", id)
	}
	out, err := replaceNode(t, id, func(n *tree.Node) (*tree.Node, error) {
		c := shallow(n)
		c.Props = n.Props.Merge(normalized)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Updated node", "id", id, "keys", len(normalized))
	return e.commit("update", out)
}

// Remove deletes node id and its whole subtree.
func (e *Engine) Remove(t tree.Tree, id string) (tree.Tree, error) {
	out, removed, _, err := detach(t, id)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Removed node", "id", id, "nodes", tree.Count(tree.Tree{removed}))
	return e.commit("remove", out)
}

// Duplicate deep-copies node id with fresh ids for every node and tab in the
// copy and inserts it right after the original. The copy is returned.
func (e *Engine) Duplicate(t tree.Tree, id string) (tree.Tree, *tree.Node, error) {
	loc, ok := tree.Locate(t, id)
	if !ok {
		return nil, nil, wrap("duplicate", ErrNotFound, "id %q", id)
	}
	var clone *tree.Node
	out, err := editSlot(t, loc.SlotID(), func(nodes []*tree.Node) ([]*tree.Node, error) {
		clone = tree.Clone(nodes[loc.Index], e.newID)
		return insertAt(nodes, loc.Index+1, clone), nil
	})
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("Duplicated node", "id", id, "copy", clone.ID)
	out, err = e.commit("duplicate", out)
	if err != nil {
		return nil, nil, err
	}
	return out, clone, nil
}

// Move detaches node id and reinserts it at index inside targetParentID. The
// index is interpreted against the target slot after removal. Moving a node
// into itself or into one of its descendants fails with ErrInvalidParent.
func (e *Engine) Move(t tree.Tree, id, targetParentID string, index int) (tree.Tree, error) {
	if _, ok := tree.FindByID(t, id); !ok {
		return nil, wrap("move", ErrNotFound, "id %q", id)
	}
	if targetParentID == id || tree.IsDescendant(t, targetParentID, id) {
		return nil, wrap("move", ErrInvalidParent, "%q would contain itself", id)
	}
	slotID, err := resolveSlot(t, targetParentID)
	if err != nil {
		return nil, err
	}

	detached, node, _, err := detach(t, id)
	if err != nil {
		return nil, err
	}
	out, err := editSlot(detached, slotID, func(nodes []*tree.Node) ([]*tree.Node, error) {
		return insertAt(nodes, index, node), nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Moved node", "id", id, "parent", targetParentID, "index", index)
	return e.commit("move", out)
}

// Reorder moves activeID to the position currently held by overID within the
// same slot. Nodes in different slots are rejected with ErrInvalidParent.
func (e *Engine) Reorder(t tree.Tree, activeID, overID string) (tree.Tree, error) {
	active, ok := tree.Locate(t, activeID)
	if !ok {
		return nil, wrap("reorder", ErrNotFound, "id %q", activeID)
	}
	over, ok := tree.Locate(t, overID)
	if !ok {
		return nil, wrap("reorder", ErrNotFound, "id %q", overID)
	}
	if active.SlotID() != over.SlotID() {
		return nil, wrap("reorder", ErrInvalidParent, "%q and %q are not siblings", activeID, overID)
	}
	if activeID == overID {
		return t, nil
	}
	out, err := editSlot(t, active.SlotID(), func(nodes []*tree.Node) ([]*tree.Node, error) {
		moved := nodes[active.Index]
		return insertAt(removeAt(nodes, active.Index), over.Index, moved), nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Reordered node", "id", activeID, "over", overID)
	return e.commit("reorder", out)
}
