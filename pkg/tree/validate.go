package tree

import (
	"fmt"
	"strings"
)

// Issue is a single structural invariant violation.
type Issue struct {
	NodeID string
	Rule   string
	Detail string
}

func (i Issue) String() string {
	if i.NodeID == "" {
		return fmt.Sprintf("%s: %s", i.Rule, i.Detail)
	}
	return fmt.Sprintf("%s (%s): %s", i.Rule, i.NodeID, i.Detail)
}

// Invariant rule identifiers reported in Issue.Rule.
const (
	RuleDuplicateID   = "duplicate-id"
	RuleEmptyID       = "empty-id"
	RuleUnknownKind   = "unknown-kind"
	RuleMissingList   = "missing-children"
	RuleLeafChildren  = "leaf-children"
	RuleSharedNode    = "shared-node"
	RuleMisplacedTabs = "misplaced-tabs"
)

// InvariantError reports a tree that breaks the structural invariants. Trees
// produced by the mutation engine never trigger it; seeing one means an engine
// bug or a hand-built tree.
type InvariantError struct {
	Issues []Issue
}

func (e *InvariantError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "tree: invariant violation"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "tree: invariant violation: " + strings.Join(parts, "; ")
}

// Validate checks id uniqueness (nodes and tabs), kind membership, child-list
// shape, and that no node instance is reachable twice (which also rules out
// cycles). It returns nil or an *InvariantError.
func Validate(t Tree) error {
	v := validator{
		ids:     make(map[string]struct{}),
		visited: make(map[*Node]struct{}),
		tabs:    make(map[*Tab]struct{}),
	}
	v.slot(t)
	if len(v.issues) == 0 {
		return nil
	}
	return &InvariantError{Issues: v.issues}
}

type validator struct {
	ids     map[string]struct{}
	visited map[*Node]struct{}
	tabs    map[*Tab]struct{}
	issues  []Issue
}

func (v *validator) report(id, rule, format string, args ...any) {
	v.issues = append(v.issues, Issue{NodeID: id, Rule: rule, Detail: fmt.Sprintf(format, args...)})
}

func (v *validator) claimID(id string) {
	if id == "" {
		v.report("", RuleEmptyID, "node or tab without id")
		return
	}
	if _, dup := v.ids[id]; dup {
		v.report(id, RuleDuplicateID, "id appears more than once")
		return
	}
	v.ids[id] = struct{}{}
}

func (v *validator) slot(nodes []*Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, seen := v.visited[n]; seen {
			v.report(n.ID, RuleSharedNode, "node instance reachable more than once")
			continue
		}
		v.visited[n] = struct{}{}
		v.node(n)
	}
}

func (v *validator) node(n *Node) {
	v.claimID(n.ID)
	if !n.Kind.Valid() {
		v.report(n.ID, RuleUnknownKind, "kind %q is not recognised", n.Kind)
	}

	switch {
	case n.Kind.HasChildList():
		if n.Children == nil {
			v.report(n.ID, RuleMissingList, "%s node has no children list", n.Kind)
		}
		if len(n.Tabs) > 0 {
			v.report(n.ID, RuleMisplacedTabs, "%s node carries tabs", n.Kind)
		}
		v.slot(n.Children)
	case n.Kind == KindTabs:
		if len(n.Children) > 0 {
			v.report(n.ID, RuleLeafChildren, "tabs node holds children outside its tabs")
		}
		for _, tab := range n.Tabs {
			if tab == nil {
				continue
			}
			if _, seen := v.tabs[tab]; seen {
				v.report(tab.ID, RuleSharedNode, "tab instance reachable more than once")
				continue
			}
			v.tabs[tab] = struct{}{}
			v.claimID(tab.ID)
			v.slot(tab.Children)
		}
	default:
		if len(n.Children) > 0 {
			v.report(n.ID, RuleLeafChildren, "%s node is not a container", n.Kind)
		}
		if len(n.Tabs) > 0 {
			v.report(n.ID, RuleMisplacedTabs, "%s node carries tabs", n.Kind)
		}
	}
}
