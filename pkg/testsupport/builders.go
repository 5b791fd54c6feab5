package testsupport

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-formtree/pkg/tree"
)

// SequentialIDs returns a deterministic id generator yielding prefix-1,
// prefix-2, ... Safe for concurrent use.
func SequentialIDs(prefix string) tree.IDFunc {
	var (
		mu   sync.Mutex
		next int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s-%d", prefix, next)
	}
}

// Leaf builds a leaf node with a label.
func Leaf(id string, kind tree.Kind, label string) *tree.Node {
	return &tree.Node{
		ID:    id,
		Kind:  kind,
		Props: tree.Props{tree.PropLabel: label},
	}
}

// Input builds a text input leaf.
func Input(id, label string) *tree.Node {
	return Leaf(id, tree.KindInput, label)
}

// Select builds a select leaf with value/label option pairs.
func Select(id, label string, options ...tree.Option) *tree.Node {
	n := Leaf(id, tree.KindSelect, label)
	n.Props[tree.PropOptions] = tree.EncodeOptions(options)
	return n
}

// Computed builds a computed leaf holding script.
func Computed(id, label, script string) *tree.Node {
	n := Leaf(id, tree.KindComputed, label)
	n.Props[tree.PropComputeScript] = script
	return n
}

// Row builds a row whose column count matches its children.
func Row(id string, children ...*tree.Node) *tree.Node {
	return &tree.Node{
		ID:       id,
		Kind:     tree.KindRow,
		Props:    tree.Props{tree.PropColumns: float64(len(children)), tree.PropGap: float64(12)},
		Children: append([]*tree.Node{}, children...),
	}
}

// Container builds a column container.
func Container(id string, children ...*tree.Node) *tree.Node {
	return &tree.Node{
		ID:       id,
		Kind:     tree.KindContainer,
		Props:    tree.Props{"direction": "column", tree.PropGap: float64(16)},
		Children: append([]*tree.Node{}, children...),
	}
}

// Tabs builds a tabs node.
func Tabs(id string, tabs ...*tree.Tab) *tree.Node {
	return &tree.Node{
		ID:    id,
		Kind:  tree.KindTabs,
		Props: tree.Props{},
		Tabs:  append([]*tree.Tab{}, tabs...),
	}
}

// Tab builds a tab entry.
func Tab(id, label string, children ...*tree.Node) *tree.Tab {
	return &tree.Tab{ID: id, Label: label, Children: append([]*tree.Node{}, children...)}
}

// Grid builds a grid node with the given JSON-native props merged over an
// empty column list.
func Grid(id, label string, props tree.Props) *tree.Node {
	n := Leaf(id, tree.KindGrid, label)
	for k, v := range props {
		n.Props[k] = v
	}
	return n
}
