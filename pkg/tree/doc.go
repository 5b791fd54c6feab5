// Package tree defines the form-schema node model and the read-only query
// library every other package builds on. A Tree is an ordered list of root
// nodes; `row` and `container` nodes own a flat child list while `tabs` nodes
// own one child list per Tab. Both shapes are exposed to traversal code as
// uniform child slots so a single walker covers every container kind.
//
// Trees are values. Nothing in this module mutates a Node after it has been
// placed in a tree; the mutation engine (pkg/mutate) path-copies from the root
// and lets untouched subtrees alias between the old and the new tree. Props
// hold JSON-native values only (string, float64, bool, nil, []any,
// map[string]any) so a document survives an encode/decode cycle unchanged.
package tree
