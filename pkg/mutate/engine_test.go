package mutate_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/mutate"
	"github.com/goliatone/go-formtree/pkg/testsupport"
	"github.com/goliatone/go-formtree/pkg/tree"
)

func newEngine() *mutate.Engine {
	return mutate.New(mutate.WithIDGenerator(testsupport.SequentialIDs("gen")))
}

func fixture() tree.Tree {
	return tree.Tree{
		testsupport.Row("R",
			testsupport.Input("1", "First"),
			testsupport.Input("2", "Second"),
		),
		testsupport.Tabs("T",
			testsupport.Tab("t1", "One", testsupport.Input("a", "Alpha")),
			testsupport.Tab("t2", "Two", testsupport.Input("b", "Beta")),
		),
		testsupport.Container("C"),
		testsupport.Input("x", "Loose"),
	}
}

func childIDs(nodes []*tree.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func mustFind(t *testing.T, tr tree.Tree, id string) *tree.Node {
	t.Helper()
	n, ok := tree.FindByID(tr, id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	return n
}

func TestInsertTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		parentID string
		index    int
		slot     func(tree.Tree) []*tree.Node
		want     int
	}{
		{name: "root append", parentID: "", index: -1, slot: func(tr tree.Tree) []*tree.Node { return tr }, want: 4},
		{name: "row front", parentID: "R", index: 0, slot: func(tr tree.Tree) []*tree.Node { return mustFind(t, tr, "R").Children }, want: 0},
		{name: "tabs resolves to first tab", parentID: "T", index: 99, slot: func(tr tree.Tree) []*tree.Node { return mustFind(t, tr, "T").Tabs[0].Children }, want: 1},
		{name: "tab id", parentID: "t2", index: 0, slot: func(tr tree.Tree) []*tree.Node { return mustFind(t, tr, "T").Tabs[1].Children }, want: 0},
		{name: "empty container", parentID: "C", index: -1, slot: func(tr tree.Tree) []*tree.Node { return mustFind(t, tr, "C").Children }, want: 0},
	}

	for _, tt := range tests {
		got, node, err := newEngine().Insert(fixture(), tt.parentID, tt.index, tree.KindInput)
		if err != nil {
			t.Fatalf("%s: insert: %v", tt.name, err)
		}
		slot := tt.slot(got)
		if tt.want >= len(slot) || slot[tt.want].ID != node.ID {
			t.Fatalf("%s: expected new node at %d, got %v", tt.name, tt.want, childIDs(slot))
		}
		if node.Label() != "Text Input" {
			t.Fatalf("%s: expected default props, got %v", tt.name, node.Props)
		}
	}
}

func TestInsertErrors(t *testing.T) {
	t.Parallel()

	e := newEngine()
	if _, _, err := e.Insert(fixture(), "x", 0, tree.KindInput); !errors.Is(err, mutate.ErrInvalidParent) {
		t.Fatalf("leaf parent: expected ErrInvalidParent, got %v", err)
	}
	if _, _, err := e.Insert(fixture(), "nope", 0, tree.KindInput); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("unknown parent: expected ErrNotFound, got %v", err)
	}
	if _, _, err := e.Insert(fixture(), "", 0, tree.Kind("slider")); !errors.Is(err, mutate.ErrUnknownKind) {
		t.Fatalf("unknown kind: expected ErrUnknownKind, got %v", err)
	}
	if _, err := e.InsertNode(fixture(), "", 0, testsupport.Input("1", "Clash")); !errors.Is(err, mutate.ErrDuplicateID) {
		t.Fatalf("duplicate id: expected ErrDuplicateID, got %v", err)
	}
}

func TestInsertTabsCreatesFreshTabIDs(t *testing.T) {
	t.Parallel()

	got, node, err := newEngine().Insert(fixture(), "C", -1, tree.KindTabs)
	if err != nil {
		t.Fatalf("insert tabs: %v", err)
	}
	if len(node.Tabs) != 2 {
		t.Fatalf("expected two default tabs, got %d", len(node.Tabs))
	}
	testsupport.MustValidate(t, got)
}

func TestMutationsLeaveInputUntouched(t *testing.T) {
	t.Parallel()

	e := newEngine()
	original := fixture()
	snapshot := tree.CopyTree(original)

	if _, _, err := e.Insert(original, "t1", 0, tree.KindSelect); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := e.Update(original, "a", tree.Props{"label": "Changed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := e.Remove(original, "R"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := e.Move(original, "x", "t2", 0); err != nil {
		t.Fatalf("move: %v", err)
	}

	if diff := testsupport.TreeDiff(snapshot, original); diff != "" {
		t.Fatalf("input tree changed (-want +got):\n%s", diff)
	}
}

func TestPathCopyingSharesUntouchedSubtrees(t *testing.T) {
	t.Parallel()

	original := fixture()
	got, err := newEngine().Update(original, "a", tree.Props{"label": "Changed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got[0] != original[0] {
		t.Fatalf("row outside the edit path should be shared")
	}
	if got[1] == original[1] {
		t.Fatalf("tabs node on the edit path should be copied")
	}
	if got[1].Tabs[1] != original[1].Tabs[1] {
		t.Fatalf("untouched tab should be shared")
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	e := newEngine()
	patch := tree.Props{"label": "Given Name", "maxLength": 40, "required": true}

	once, err := e.Update(fixture(), "1", patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	twice, err := e.Update(once, "1", patch)
	if err != nil {
		t.Fatalf("update again: %v", err)
	}
	if !tree.Equal(once, twice) {
		t.Fatalf("update is not idempotent:\n%s", tree.Diff(once, twice))
	}

	n := mustFind(t, once, "1")
	want := tree.Props{"label": "Given Name", "maxLength": float64(40), "required": true}
	if diff := cmp.Diff(want, n.Props); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.Update(fixture(), "missing", patch); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := e.Update(fixture(), "T", tree.Props{"tabs": []any{}}); !errors.Is(err, mutate.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch, got %v", err)
	}
	if _, err := e.Update(fixture(), "1", tree.Props{"bad": func() {}}); !errors.Is(err, mutate.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch for unencodable value, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	e := newEngine()
	got, err := e.Remove(fixture(), "a")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := tree.FindByID(got, "a"); ok {
		t.Fatalf("node a still present")
	}
	if n := mustFind(t, got, "T"); n.Tabs[0].Children == nil {
		t.Fatalf("emptied tab should keep a non-nil child list")
	}

	got, err = e.Remove(fixture(), "T")
	if err != nil {
		t.Fatalf("remove subtree: %v", err)
	}
	if _, ok := tree.FindByID(got, "b"); ok {
		t.Fatalf("subtree not removed")
	}

	if _, err := e.Remove(fixture(), "nope"); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateTabsRegeneratesEveryID(t *testing.T) {
	t.Parallel()

	original := fixture()
	before := tree.IDs(original)

	got, clone, err := newEngine().Duplicate(original, "T")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	testsupport.MustValidate(t, got)

	if got[2] != clone {
		t.Fatalf("copy should sit right after the original")
	}
	existing := map[string]bool{}
	for _, id := range before {
		existing[id] = true
	}
	cloneIDs := tree.IDs(tree.Tree{clone})
	if len(cloneIDs) != 5 {
		t.Fatalf("expected 5 ids in copy (node, 2 tabs, 2 children), got %v", cloneIDs)
	}
	for _, id := range cloneIDs {
		if existing[id] {
			t.Fatalf("copy reused id %s", id)
		}
	}

	orig := mustFind(t, got, "T")
	if diff := cmp.Diff([]string{"t1", "t2"}, []string{orig.Tabs[0].ID, orig.Tabs[1].ID}); diff != "" {
		t.Fatalf("original tab ids changed (-want +got):\n%s", diff)
	}
	if clone.Tabs[0].Children[0].Label() != "Alpha" || clone.Tabs[1].Children[0].Label() != "Beta" {
		t.Fatalf("copy lost child props")
	}
}

func TestDuplicateInsideRow(t *testing.T) {
	t.Parallel()

	got, clone, err := newEngine().Duplicate(fixture(), "1")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	row := mustFind(t, got, "R")
	if diff := cmp.Diff([]string{"1", clone.ID, "2"}, childIDs(row.Children)); diff != "" {
		t.Fatalf("row children mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveRejectsSelfAndDescendants(t *testing.T) {
	t.Parallel()

	// 5 -> container 3 -> row 2
	original := tree.Tree{
		testsupport.Container("5",
			testsupport.Container("3",
				testsupport.Row("2", testsupport.Input("9", "Deep")),
			),
		),
		testsupport.Container("other"),
	}
	snapshot := tree.CopyTree(original)
	e := newEngine()

	for _, target := range []string{"2", "3", "5"} {
		got, err := e.Move(original, "5", target, 0)
		if !errors.Is(err, mutate.ErrInvalidParent) {
			t.Fatalf("move into %s: expected ErrInvalidParent, got %v", target, err)
		}
		if got != nil {
			t.Fatalf("move into %s: expected no tree on failure", target)
		}
	}
	if diff := testsupport.TreeDiff(snapshot, original); diff != "" {
		t.Fatalf("tree changed after rejected move (-want +got):\n%s", diff)
	}

	got, err := e.Move(original, "3", "other", 0)
	if err != nil {
		t.Fatalf("legal move: %v", err)
	}
	if mustFind(t, got, "other").Children[0].ID != "3" {
		t.Fatalf("node 3 not moved")
	}
	if len(mustFind(t, got, "5").Children) != 0 {
		t.Fatalf("node 3 not detached from 5")
	}
}

func TestMoveIntoTabsAndErrors(t *testing.T) {
	t.Parallel()

	e := newEngine()
	got, err := e.Move(fixture(), "x", "t2", 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff([]string{"x", "b"}, childIDs(mustFind(t, got, "T").Tabs[1].Children)); diff != "" {
		t.Fatalf("tab children mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.Move(fixture(), "T", "t1", 0); !errors.Is(err, mutate.ErrInvalidParent) {
		t.Fatalf("move tabs into own tab: expected ErrInvalidParent, got %v", err)
	}
	if _, err := e.Move(fixture(), "R", "x", 0); !errors.Is(err, mutate.ErrInvalidParent) {
		t.Fatalf("move into leaf: expected ErrInvalidParent, got %v", err)
	}
	if _, err := e.Move(fixture(), "nope", "C", 0); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("unknown node: expected ErrNotFound, got %v", err)
	}
	if _, err := e.Move(fixture(), "x", "nope", 0); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("unknown target: expected ErrNotFound, got %v", err)
	}
}

func TestMoveIndexAfterRemoval(t *testing.T) {
	t.Parallel()

	got, err := newEngine().Move(fixture(), "R", "", 2)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff([]string{"T", "C", "R", "x"}, childIDs(got)); diff != "" {
		t.Fatalf("root order mismatch (-want +got):\n%s", diff)
	}
}

func TestReorder(t *testing.T) {
	t.Parallel()

	e := newEngine()
	got, err := e.Reorder(fixture(), "x", "R")
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if diff := cmp.Diff([]string{"x", "R", "T", "C"}, childIDs(got)); diff != "" {
		t.Fatalf("root order mismatch (-want +got):\n%s", diff)
	}

	got, err = e.Reorder(fixture(), "1", "2")
	if err != nil {
		t.Fatalf("reorder in row: %v", err)
	}
	if diff := cmp.Diff([]string{"2", "1"}, childIDs(mustFind(t, got, "R").Children)); diff != "" {
		t.Fatalf("row order mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.Reorder(fixture(), "1", "x"); !errors.Is(err, mutate.ErrInvalidParent) {
		t.Fatalf("cross-slot reorder: expected ErrInvalidParent, got %v", err)
	}
}

func TestTabEditing(t *testing.T) {
	t.Parallel()

	e := newEngine()
	got, tab, err := e.AddTab(fixture(), "T", "")
	if err != nil {
		t.Fatalf("add tab: %v", err)
	}
	if tab.Label != "Tab 3" || len(mustFind(t, got, "T").Tabs) != 3 {
		t.Fatalf("unexpected tab %+v", tab)
	}

	got, err = e.RenameTab(got, "T", tab.ID, "Extra")
	if err != nil {
		t.Fatalf("rename tab: %v", err)
	}
	if mustFind(t, got, "T").Tabs[2].Label != "Extra" {
		t.Fatalf("rename not applied")
	}

	got, err = e.RemoveTab(got, "T", "t1")
	if err != nil {
		t.Fatalf("remove tab: %v", err)
	}
	if _, ok := tree.FindByID(got, "a"); ok {
		t.Fatalf("children of removed tab still present")
	}

	if _, _, err := e.AddTab(fixture(), "R", "x"); !errors.Is(err, mutate.ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
	if _, err := e.RemoveTab(fixture(), "T", "nope"); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWrapInRowConservesNodes(t *testing.T) {
	t.Parallel()

	e := newEngine()
	original := fixture()
	target := mustFind(t, original, "x")
	node := tree.NewNode(tree.KindSelect, testsupport.SequentialIDs("new"))

	for _, tc := range []struct {
		side mutate.Side
		want []string
	}{
		{side: mutate.Before, want: []string{node.ID, "x"}},
		{side: mutate.After, want: []string{"x", node.ID}},
	} {
		got, row, err := e.WrapInRow(original, "x", node, tc.side)
		if err != nil {
			t.Fatalf("wrap %s: %v", tc.side, err)
		}
		if got[3] != row || row.Kind != tree.KindRow || row.Columns() != 2 {
			t.Fatalf("wrap %s: row did not replace target slot: %+v", tc.side, row)
		}
		if diff := cmp.Diff(tc.want, childIDs(row.Children)); diff != "" {
			t.Fatalf("wrap %s: children mismatch (-want +got):\n%s", tc.side, diff)
		}
		wrapped := mustFind(t, got, "x")
		if diff := cmp.Diff(target.Props, wrapped.Props); diff != "" {
			t.Fatalf("wrap %s: target props changed (-want +got):\n%s", tc.side, diff)
		}
	}

	if _, _, err := e.WrapInRow(original, "C", tree.NewNode(tree.KindInput, testsupport.SequentialIDs("w")), mutate.After); err != nil {
		t.Fatalf("wrapping a container should be allowed: %v", err)
	}
	if _, _, err := e.WrapInRow(original, "R", tree.NewNode(tree.KindInput, testsupport.SequentialIDs("w")), mutate.After); err != nil {
		t.Fatalf("wrapping a row should be allowed: %v", err)
	}
}

func TestInsertIntoRowSyncsColumns(t *testing.T) {
	t.Parallel()

	e := newEngine()
	node := tree.NewNode(tree.KindInput, testsupport.SequentialIDs("new"))
	got, err := e.InsertIntoRow(fixture(), "1", node, mutate.After)
	if err != nil {
		t.Fatalf("insert into row: %v", err)
	}
	row := mustFind(t, got, "R")
	if diff := cmp.Diff([]string{"1", node.ID, "2"}, childIDs(row.Children)); diff != "" {
		t.Fatalf("row children mismatch (-want +got):\n%s", diff)
	}
	if row.Columns() != 3 {
		t.Fatalf("expected 3 columns, got %d", row.Columns())
	}

	if _, err := e.InsertIntoRow(fixture(), "x", node, mutate.After); !errors.Is(err, mutate.ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
}

func TestInsertBeside(t *testing.T) {
	t.Parallel()

	node := tree.NewNode(tree.KindInput, testsupport.SequentialIDs("new"))
	got, err := newEngine().InsertBeside(fixture(), "b", node, mutate.Before)
	if err != nil {
		t.Fatalf("insert beside: %v", err)
	}
	if diff := cmp.Diff([]string{node.ID, "b"}, childIDs(mustFind(t, got, "T").Tabs[1].Children)); diff != "" {
		t.Fatalf("tab children mismatch (-want +got):\n%s", diff)
	}
}

func TestSetRowColumns(t *testing.T) {
	t.Parallel()

	e := newEngine()
	tr, err := e.Remove(fixture(), "2")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	tr, err = e.SetRowColumns(tr, "R")
	if err != nil {
		t.Fatalf("set columns: %v", err)
	}
	if cols := mustFind(t, tr, "R").Columns(); cols != 1 {
		t.Fatalf("expected 1 column, got %d", cols)
	}
	if _, err := e.SetRowColumns(tr, "C"); !errors.Is(err, mutate.ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
}

func TestRoundTripAfterMutations(t *testing.T) {
	t.Parallel()

	e := newEngine()
	tr := fixture()
	var err error
	tr, _, err = e.Insert(tr, "T", -1, tree.KindGrid)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	tr, _, err = e.Duplicate(tr, "T")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	tr, err = e.Update(tr, "x", tree.Props{"options": []map[string]string{{"label": "A", "value": "a"}}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	encoded, err := tree.EncodeDocument(tree.Document{Name: "Round", Components: tr})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := tree.DecodeDocument(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !tree.Equal(tr, decoded.Components) {
		t.Fatalf("round trip mismatch:\n%s", tree.Diff(tr, decoded.Components))
	}
}
