package placement_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/mutate"
	"github.com/goliatone/go-formtree/pkg/placement"
	"github.com/goliatone/go-formtree/pkg/testsupport"
	"github.com/goliatone/go-formtree/pkg/tree"
)

func fixture() tree.Tree {
	return tree.Tree{
		testsupport.Input("in", "Name"),
		testsupport.Row("R",
			testsupport.Input("r1", "Left"),
			testsupport.Input("r2", "Right"),
		),
		testsupport.Container("C", testsupport.Input("c1", "Inner")),
		testsupport.Tabs("T", testsupport.Tab("t1", "One")),
	}
}

func ids(nodes []*tree.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestResolve(t *testing.T) {
	t.Parallel()

	src := placement.NewComponent(tree.KindSelect)
	tests := []struct {
		name string
		drop placement.Drop
		want placement.Plan
	}{
		{
			name: "canvas",
			drop: placement.Drop{Source: src},
			want: placement.Plan{Action: placement.InsertRoot, Side: mutate.After, Source: src},
		},
		{
			name: "inside container",
			drop: placement.Drop{Target: "C", Edge: placement.Inside, Source: src},
			want: placement.Plan{Action: placement.InsertInto, Target: "C", Side: mutate.After, Source: src},
		},
		{
			name: "inside leaf becomes sibling",
			drop: placement.Drop{Target: "in", Edge: placement.Inside, Source: src},
			want: placement.Plan{Action: placement.InsertSibling, Target: "in", Side: mutate.After, Source: src},
		},
		{
			name: "inside tab",
			drop: placement.Drop{Target: "t1", Edge: placement.Inside, Source: src},
			want: placement.Plan{Action: placement.InsertInto, Target: "t1", Side: mutate.After, Source: src},
		},
		{
			name: "left of row child",
			drop: placement.Drop{Target: "r2", Edge: placement.Left, Source: src},
			want: placement.Plan{Action: placement.InsertIntoRow, Target: "r2", Side: mutate.Before, Source: src},
		},
		{
			name: "right of loose leaf",
			drop: placement.Drop{Target: "in", Edge: placement.Right, Source: src},
			want: placement.Plan{Action: placement.WrapInRow, Target: "in", Side: mutate.After, Source: src},
		},
		{
			name: "left of container",
			drop: placement.Drop{Target: "C", Edge: placement.Left, Source: src},
			want: placement.Plan{Action: placement.WrapInRow, Target: "C", Side: mutate.Before, Source: src},
		},
		{
			name: "top",
			drop: placement.Drop{Target: "c1", Edge: placement.Top, Source: src},
			want: placement.Plan{Action: placement.InsertSibling, Target: "c1", Side: mutate.Before, Source: src},
		},
		{
			name: "bottom",
			drop: placement.Drop{Target: "R", Edge: placement.Bottom, Source: src},
			want: placement.Plan{Action: placement.InsertSibling, Target: "R", Side: mutate.After, Source: src},
		},
	}

	for _, tt := range tests {
		got, err := placement.Resolve(fixture(), tt.drop)
		if err != nil {
			t.Fatalf("%s: resolve: %v", tt.name, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%s: plan mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	if _, err := placement.Resolve(fixture(), placement.Drop{Target: "nope", Source: placement.NewComponent(tree.KindInput)}); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := placement.Resolve(fixture(), placement.Drop{Source: placement.NewComponent("slider")}); !errors.Is(err, mutate.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := placement.Resolve(fixture(), placement.Drop{Source: placement.Existing("ghost")}); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing source, got %v", err)
	}
}

func TestDropSelectRightOfInputWrapsInRow(t *testing.T) {
	t.Parallel()

	e := mutate.New(mutate.WithIDGenerator(testsupport.SequentialIDs("gen")))
	original := tree.Tree{testsupport.Input("in", "Name")}
	input := original[0]

	res, err := placement.Place(e, original, placement.Drop{
		Target: "in",
		Edge:   placement.Right,
		Source: placement.NewComponent(tree.KindSelect),
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(res.Tree) != 1 || res.Tree[0] != res.Row {
		t.Fatalf("row should replace the input's slot, got %v", ids(res.Tree))
	}
	if res.Row.Kind != tree.KindRow || res.Row.Columns() != 2 {
		t.Fatalf("unexpected row: %+v", res.Row)
	}
	if diff := cmp.Diff([]string{"in", res.Node.ID}, ids(res.Row.Children)); diff != "" {
		t.Fatalf("row children mismatch (-want +got):\n%s", diff)
	}
	if res.Row.Children[0] != input || res.Row.Children[1].Kind != tree.KindSelect {
		t.Fatalf("expected [input, select] in the row")
	}
}

func TestApplyNewComponents(t *testing.T) {
	t.Parallel()

	e := mutate.New(mutate.WithIDGenerator(testsupport.SequentialIDs("gen")))

	res, err := placement.Place(e, fixture(), placement.Drop{Target: "r1", Edge: placement.Right, Source: placement.NewComponent(tree.KindDate)})
	if err != nil {
		t.Fatalf("place into row: %v", err)
	}
	row, _ := tree.FindByID(res.Tree, "R")
	if diff := cmp.Diff([]string{"r1", res.Node.ID, "r2"}, ids(row.Children)); diff != "" {
		t.Fatalf("row children mismatch (-want +got):\n%s", diff)
	}
	if row.Columns() != 3 {
		t.Fatalf("expected 3 columns, got %d", row.Columns())
	}

	res, err = placement.Place(e, fixture(), placement.Drop{Target: "T", Edge: placement.Inside, Source: placement.NewComponent(tree.KindInput)})
	if err != nil {
		t.Fatalf("place into tabs: %v", err)
	}
	tabs, _ := tree.FindByID(res.Tree, "T")
	if len(tabs.Tabs[0].Children) != 1 || tabs.Tabs[0].Children[0] != res.Node {
		t.Fatalf("expected node in first tab")
	}

	res, err = placement.Place(e, fixture(), placement.Drop{Source: placement.NewComponent(tree.KindDivider)})
	if err != nil {
		t.Fatalf("place on canvas: %v", err)
	}
	if last := res.Tree[len(res.Tree)-1]; last != res.Node {
		t.Fatalf("canvas drop should append at root")
	}
}

func TestApplyExistingSource(t *testing.T) {
	t.Parallel()

	e := mutate.New(mutate.WithIDGenerator(testsupport.SequentialIDs("gen")))

	res, err := placement.Place(e, fixture(), placement.Drop{Target: "C", Edge: placement.Inside, Source: placement.Existing("r2")})
	if err != nil {
		t.Fatalf("move into container: %v", err)
	}
	c, _ := tree.FindByID(res.Tree, "C")
	if diff := cmp.Diff([]string{"c1", "r2"}, ids(c.Children)); diff != "" {
		t.Fatalf("container children mismatch (-want +got):\n%s", diff)
	}
	row, _ := tree.FindByID(res.Tree, "R")
	if row.Columns() != 1 {
		t.Fatalf("source row should resync its columns, got %d", row.Columns())
	}
	if tree.Count(res.Tree) != tree.Count(fixture()) {
		t.Fatalf("relocation changed the node count")
	}

	original := fixture()
	snapshot := tree.CopyTree(original)
	for _, target := range []string{"C", "c1"} {
		_, err := placement.Place(e, original, placement.Drop{Target: target, Edge: placement.Left, Source: placement.Existing("C")})
		if !errors.Is(err, mutate.ErrInvalidParent) {
			t.Fatalf("drop C onto %s: expected ErrInvalidParent, got %v", target, err)
		}
	}
	if diff := testsupport.TreeDiff(snapshot, original); diff != "" {
		t.Fatalf("rejected drop changed the tree (-want +got):\n%s", diff)
	}
}

func TestDetectEdge(t *testing.T) {
	t.Parallel()

	rect := placement.Rect{X: 100, Y: 100, Width: 200, Height: 100}
	tests := []struct {
		point placement.Point
		want  placement.Edge
	}{
		{placement.Point{X: 110, Y: 150}, placement.Left},
		{placement.Point{X: 290, Y: 150}, placement.Right},
		{placement.Point{X: 200, Y: 105}, placement.Top},
		{placement.Point{X: 200, Y: 195}, placement.Bottom},
		{placement.Point{X: 200, Y: 150}, placement.Inside},
		{placement.Point{X: 105, Y: 105}, placement.Left},
		{placement.Point{X: 50, Y: 150}, placement.Left},
	}
	for _, tt := range tests {
		if got := placement.DetectEdge(rect, tt.point, 0.2); got != tt.want {
			t.Fatalf("DetectEdge(%+v) = %v, want %v", tt.point, got, tt.want)
		}
	}
	if got := placement.DetectEdge(placement.Rect{}, placement.Point{}, 0.2); got != placement.Inside {
		t.Fatalf("empty rect should resolve inside, got %v", got)
	}
}

func TestParseEdge(t *testing.T) {
	t.Parallel()

	edge, err := placement.ParseEdge("Right")
	if err != nil || edge != placement.Right {
		t.Fatalf("ParseEdge(Right) = %v, %v", edge, err)
	}
	if _, err := placement.ParseEdge("diagonal"); err == nil {
		t.Fatalf("expected error for unknown edge")
	}
}

func TestParseZone(t *testing.T) {
	t.Parallel()

	tr := tree.Tree{
		testsupport.Tabs("tabs-a-b", testsupport.Tab("tab-1", "One")),
		testsupport.Row("row-x"),
		testsupport.Input("in-1", "Name"),
	}
	tests := []struct {
		zone   string
		target string
		edge   placement.Edge
		ok     bool
	}{
		{"canvas", "", placement.Inside, true},
		{"drop-left-in-1", "in-1", placement.Left, true},
		{"drop-bottom-in-1", "in-1", placement.Bottom, true},
		{"row-row-x", "row-x", placement.Inside, true},
		{"tabs-tabs-a-b-tab-1", "tab-1", placement.Inside, true},
		{"tabs-tabs-a-b-missing", "", placement.Inside, false},
		{"drop-inside-in-1", "", placement.Inside, false},
		{"container-ghost", "", placement.Inside, false},
		{"elsewhere", "", placement.Inside, false},
	}
	for _, tt := range tests {
		target, edge, ok := placement.ParseZone(tr, tt.zone)
		if target != tt.target || edge != tt.edge || ok != tt.ok {
			t.Fatalf("ParseZone(%q) = (%q, %v, %v), want (%q, %v, %v)", tt.zone, target, edge, ok, tt.target, tt.edge, tt.ok)
		}
	}
}
