package tree_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/testsupport"
	"github.com/goliatone/go-formtree/pkg/tree"
)

func sampleTree() tree.Tree {
	return tree.Tree{
		testsupport.Row("R",
			testsupport.Input("1", "First"),
			testsupport.Input("2", "Second"),
		),
		testsupport.Tabs("T",
			testsupport.Tab("t1", "One",
				testsupport.Container("C", testsupport.Input("3", "Dup")),
			),
			testsupport.Tab("t2", "Two", testsupport.Input("4", "Fourth")),
		),
		testsupport.Input("5", "Dup"),
	}
}

func TestFindByIDDescendsIntoTabs(t *testing.T) {
	t.Parallel()

	tr := sampleTree()
	n, ok := tree.FindByID(tr, "4")
	if !ok {
		t.Fatalf("expected node 4 inside tab t2")
	}
	if n.Label() != "Fourth" {
		t.Fatalf("label mismatch: got %q", n.Label())
	}
	if _, ok := tree.FindByID(tr, "missing"); ok {
		t.Fatalf("unexpected match for unknown id")
	}
	if _, ok := tree.FindByID(nil, "1"); ok {
		t.Fatalf("unexpected match in empty tree")
	}
}

func TestFindByLabelDocumentOrder(t *testing.T) {
	t.Parallel()

	n, ok := tree.FindByLabel(sampleTree(), "Dup")
	if !ok {
		t.Fatalf("expected a node labelled Dup")
	}
	if n.ID != "3" {
		t.Fatalf("expected first match in document order, got %s", n.ID)
	}
}

func TestLocate(t *testing.T) {
	t.Parallel()

	tr := sampleTree()
	tests := []struct {
		id   string
		want tree.Location
	}{
		{id: "R", want: tree.Location{Index: 0}},
		{id: "2", want: tree.Location{ParentID: "R", ParentKind: tree.KindRow, Index: 1, Depth: 1}},
		{id: "C", want: tree.Location{ParentID: "T", ParentKind: tree.KindTabs, TabID: "t1", Index: 0, Depth: 1}},
		{id: "3", want: tree.Location{ParentID: "C", ParentKind: tree.KindContainer, Index: 0, Depth: 2}},
	}
	for _, tt := range tests {
		got, ok := tree.Locate(tr, tt.id)
		if !ok {
			t.Fatalf("locate %s: not found", tt.id)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("locate %s mismatch (-want +got):\n%s", tt.id, diff)
		}
	}

	loc, _ := tree.Locate(tr, "C")
	if loc.SlotID() != "t1" || loc.Root() {
		t.Fatalf("unexpected slot for C: %+v", loc)
	}
}

func TestIsDescendant(t *testing.T) {
	t.Parallel()

	tr := sampleTree()
	tests := []struct {
		candidate, ancestor string
		want                bool
	}{
		{"3", "T", true},
		{"3", "t1", true},
		{"t1", "T", true},
		{"C", "T", true},
		{"4", "t1", false},
		{"T", "3", false},
		{"T", "T", false},
		{"1", "R", true},
		{"5", "R", false},
		{"1", "missing", false},
	}
	for _, tt := range tests {
		if got := tree.IsDescendant(tr, tt.candidate, tt.ancestor); got != tt.want {
			t.Fatalf("IsDescendant(%s, %s) = %v, want %v", tt.candidate, tt.ancestor, got, tt.want)
		}
	}
}

func TestCollectAndIDs(t *testing.T) {
	t.Parallel()

	tr := sampleTree()
	inputs := tree.Collect(tr, func(n *tree.Node) bool { return n.Kind == tree.KindInput })
	var got []string
	for _, n := range inputs {
		got = append(got, n.ID)
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "4", "5"}, got); diff != "" {
		t.Fatalf("collect mismatch (-want +got):\n%s", diff)
	}

	wantIDs := []string{"R", "1", "2", "T", "t1", "t2", "C", "3", "4", "5"}
	if diff := cmp.Diff(wantIDs, tree.IDs(tr)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if tree.Count(tr) != 8 {
		t.Fatalf("expected 8 nodes, got %d", tree.Count(tr))
	}
}

func TestValidateReportsIssues(t *testing.T) {
	t.Parallel()

	shared := testsupport.Input("x", "Shared")
	bad := tree.Tree{
		testsupport.Input("dup", "A"),
		testsupport.Input("dup", "B"),
		{ID: "row", Kind: tree.KindRow, Props: tree.Props{}},
		{ID: "leaf", Kind: tree.KindInput, Children: []*tree.Node{testsupport.Input("inner", "I")}},
		{ID: "odd", Kind: tree.Kind("slider")},
		testsupport.Container("c1", shared),
		testsupport.Container("c2", shared),
	}

	err := tree.Validate(bad)
	var invErr *tree.InvariantError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	rules := map[string]bool{}
	for _, issue := range invErr.Issues {
		rules[issue.Rule] = true
	}
	for _, rule := range []string{
		tree.RuleDuplicateID,
		tree.RuleMissingList,
		tree.RuleLeafChildren,
		tree.RuleUnknownKind,
		tree.RuleSharedNode,
	} {
		if !rules[rule] {
			t.Fatalf("expected rule %s in %v", rule, err)
		}
	}

	if err := tree.Validate(sampleTree()); err != nil {
		t.Fatalf("sample tree should be valid: %v", err)
	}
}

func TestValidateDuplicateTabID(t *testing.T) {
	t.Parallel()

	tr := tree.Tree{
		testsupport.Tabs("T", testsupport.Tab("1", "One")),
		testsupport.Input("1", "Clash"),
	}
	if err := tree.Validate(tr); err == nil {
		t.Fatalf("expected duplicate id between tab and node")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	doc := testsupport.MustLoadDocument(t, "testdata/contact.json")
	testsupport.MustValidate(t, doc.Components)

	encoded, err := tree.EncodeDocument(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := tree.DecodeDocument(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !tree.DocumentEqual(doc, decoded) {
		t.Fatalf("round trip mismatch:\n%s", tree.Diff(doc.Components, decoded.Components))
	}

	tabs, ok := tree.FindByID(decoded.Components, "tabs-extra")
	if !ok || len(tabs.Tabs) != 2 {
		t.Fatalf("expected tabs node with two tabs, got %+v", tabs)
	}
	if _, present := tabs.Props[tree.PropTabs]; present {
		t.Fatalf("tabs should be lifted out of props")
	}
	if !strings.Contains(string(encoded), `"tabs": [`) {
		t.Fatalf("encoded document should keep props.tabs:\n%s", encoded)
	}
}

func TestBuiltTreeRoundTrip(t *testing.T) {
	t.Parallel()

	tr := sampleTree()
	tr = append(tr, testsupport.Select("S", "Status",
		tree.Option{Label: "Active", Value: "active"},
	))
	doc := tree.Document{Name: "Built", Components: tr}

	encoded, err := tree.EncodeDocument(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := tree.DecodeDocument(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := testsupport.TreeDiff(tr, decoded.Components); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeYAMLDocument(t *testing.T) {
	t.Parallel()

	fromYAML := testsupport.MustLoadDocument(t, "testdata/contact.yaml")
	if fromYAML.Name != "Contact" {
		t.Fatalf("unexpected name %q", fromYAML.Name)
	}
	row, ok := tree.FindByID(fromYAML.Components, "row-name")
	if !ok {
		t.Fatalf("row missing")
	}
	if row.Columns() != 2 {
		t.Fatalf("expected 2 columns, got %d", row.Columns())
	}
	_, tab, ok := tree.FindTab(fromYAML.Components, "tab-b")
	if !ok || tab.Children == nil {
		t.Fatalf("expected tab-b with an empty child list, got %+v", tab)
	}
}

func TestDecodeDocumentRejectsMissingComponents(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`{"name":"x"}`, `{"components":{}}`, "name: x\n"} {
		if _, err := tree.DecodeDocument([]byte(payload)); !errors.Is(err, tree.ErrNoComponents) {
			t.Fatalf("payload %q: expected ErrNoComponents, got %v", payload, err)
		}
	}
	if _, err := tree.DecodeDocument(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestContainerAlwaysEncodesChildren(t *testing.T) {
	t.Parallel()

	row := &tree.Node{ID: "r", Kind: tree.KindRow, Props: tree.Props{}}
	raw, err := row.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"children":[]`) {
		t.Fatalf("expected empty children array, got %s", raw)
	}

	leaf := &tree.Node{ID: "l", Kind: tree.KindInput, Props: tree.Props{}}
	raw, err = leaf.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "children") {
		t.Fatalf("leaf should not carry children, got %s", raw)
	}
}

func TestCloneRegeneratesIDs(t *testing.T) {
	t.Parallel()

	tr := sampleTree()
	original, _ := tree.FindByID(tr, "T")
	clone := tree.Clone(original, testsupport.SequentialIDs("copy"))

	originalIDs := map[string]bool{}
	for _, id := range tree.IDs(tr) {
		originalIDs[id] = true
	}
	cloneIDs := tree.IDs(tree.Tree{clone})
	if len(cloneIDs) != 6 {
		t.Fatalf("expected 6 ids in clone, got %v", cloneIDs)
	}
	for _, id := range cloneIDs {
		if originalIDs[id] {
			t.Fatalf("clone reused id %s", id)
		}
	}

	clone.Tabs[0].Children[0].Props[tree.PropLabel] = "changed"
	if original.Tabs[0].Children[0].Props.String(tree.PropLabel) == "changed" {
		t.Fatalf("clone shares props with the original")
	}
}

func TestNewNodeDefaults(t *testing.T) {
	t.Parallel()

	ids := testsupport.SequentialIDs("n")

	tabs := tree.NewNode(tree.KindTabs, ids)
	if len(tabs.Tabs) != 2 || tabs.Tabs[0].Label != "Tab 1" || tabs.Tabs[1].ID == tabs.Tabs[0].ID {
		t.Fatalf("unexpected tabs defaults: %+v", tabs.Tabs)
	}

	row := tree.NewNode(tree.KindRow, ids)
	if row.Children == nil || row.Columns() != 2 {
		t.Fatalf("unexpected row defaults: %+v", row)
	}

	input := tree.NewNode(tree.KindInput, ids)
	if input.Label() != "Text Input" || input.Props.String("placeholder") != "Enter text..." {
		t.Fatalf("unexpected input defaults: %+v", input.Props)
	}

	computed := tree.NewNode(tree.KindComputed, ids)
	if computed.ComputeScript() != tree.DefaultComputeScript {
		t.Fatalf("computed node missing starter script")
	}

	sel := tree.NewNode(tree.KindSelect, ids)
	if label, ok := tree.OptionLabel(sel.Options(), "option2"); !ok || label != "Option 2" {
		t.Fatalf("unexpected select options: %+v", sel.Options())
	}

	if err := tree.Validate(tree.Tree{tabs, row, input, computed, sel}); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestPropsAccessors(t *testing.T) {
	t.Parallel()

	p := tree.Props{"n": float64(3), "s": " 4 ", "f": 1.5, "b": true}
	if v, ok := p.Int("n"); !ok || v != 3 {
		t.Fatalf("Int(n) = %d, %v", v, ok)
	}
	if v, ok := p.Int("s"); !ok || v != 4 {
		t.Fatalf("Int(s) = %d, %v", v, ok)
	}
	if _, ok := p.Int("f"); ok {
		t.Fatalf("fractional value should not read as int")
	}
	if !p.Bool("b") || p.Bool("missing") {
		t.Fatalf("unexpected Bool results")
	}
	if p.String("f") != "1.5" {
		t.Fatalf("String(f) = %q", p.String("f"))
	}

	merged := p.Merge(tree.Props{"n": float64(9)})
	if v, _ := p.Int("n"); v != 3 {
		t.Fatalf("merge mutated the receiver")
	}
	if v, _ := merged.Int("n"); v != 9 {
		t.Fatalf("merge did not apply patch")
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	if got := tree.SanitizeText("<b>Name</b><script>alert(1)</script>"); got != "Name" {
		t.Fatalf("SanitizeText = %q", got)
	}
	if got := tree.SanitizeText("R&D"); got != "R&D" {
		t.Fatalf("plain ampersand should survive, got %q", got)
	}

	icon := tree.SanitizeIcon(`<svg viewBox="0 0 10 10" onload="x()"><script>bad()</script><path d="M0 0L10 10"/></svg>`)
	if strings.Contains(icon, "script") || strings.Contains(icon, "onload") {
		t.Fatalf("unsafe icon content kept: %q", icon)
	}
	if !strings.Contains(icon, "<path") {
		t.Fatalf("path element dropped: %q", icon)
	}
	if got := tree.SanitizeIcon(" ✅ "); got != "✅" {
		t.Fatalf("emoji icon changed: %q", got)
	}

	grid := testsupport.Grid("g", "<i>Grid</i>", tree.Props{
		"gridColumns": []any{
			map[string]any{
				"id":    "c1",
				"label": "<u>Done</u>",
				"iconMapping": []any{
					map[string]any{"value": "yes", "icon": `<svg><script>x</script></svg>`},
				},
			},
		},
	})
	in := tree.Tree{grid, testsupport.Tabs("T", testsupport.Tab("t", "<em>Tab</em>"))}
	out := tree.SanitizeTree(in)

	g, _ := tree.FindByID(out, "g")
	if g.Label() != "Grid" {
		t.Fatalf("grid label not sanitised: %q", g.Label())
	}
	col := g.Props["gridColumns"].([]any)[0].(map[string]any)
	if col["label"] != "Done" {
		t.Fatalf("column label not sanitised: %v", col["label"])
	}
	if icon := col["iconMapping"].([]any)[0].(map[string]any)["icon"].(string); strings.Contains(icon, "script") {
		t.Fatalf("icon not sanitised: %q", icon)
	}
	_, tab, _ := tree.FindTab(out, "t")
	if tab.Label != "Tab" {
		t.Fatalf("tab label not sanitised: %q", tab.Label)
	}

	original, _ := tree.FindByID(in, "g")
	if original.Label() != "<i>Grid</i>" {
		t.Fatalf("SanitizeTree mutated its input")
	}
}
