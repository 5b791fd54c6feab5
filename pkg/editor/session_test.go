package editor_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/editor"
	"github.com/goliatone/go-formtree/pkg/mutate"
	"github.com/goliatone/go-formtree/pkg/placement"
	ts "github.com/goliatone/go-formtree/pkg/testsupport"
	"github.com/goliatone/go-formtree/pkg/tree"
)

func newSession(t *testing.T) *editor.Session {
	t.Helper()
	engine := mutate.New(mutate.WithIDGenerator(ts.SequentialIDs("n")))
	return editor.New(editor.WithEngine(engine))
}

func TestSessionDirtyTracking(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	var changes []editor.Change
	s.Subscribe(func(c editor.Change) { changes = append(changes, c) })

	s.Load(tree.Document{Name: "Contact", Components: tree.Tree{ts.Input("a", "A")}}, "form-1")
	if s.Dirty() {
		t.Fatalf("freshly loaded document must be clean")
	}

	if err := s.Update("a", tree.Props{"label": "Renamed"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !s.Dirty() {
		t.Fatalf("expected dirty after update")
	}

	// Reverting the change makes the document clean again.
	if err := s.Update("a", tree.Props{"label": "A"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Dirty() {
		t.Fatalf("expected clean after reverting the change")
	}

	s.SetName("Contact v2")
	s.MarkSaved()

	want := []bool{false, true, false, true, false}
	got := make([]bool, 0, len(changes))
	for _, c := range changes {
		got = append(got, c.Dirty)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dirty flags mismatch (-want +got):\n%s", diff)
	}
	if changes[len(changes)-1].Document.Name != "Contact v2" {
		t.Fatalf("expected last change to carry the new name")
	}
	if s.FormID() != "form-1" {
		t.Fatalf("expected form id form-1, got %q", s.FormID())
	}
}

func TestSessionSelection(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	row, err := s.AddComponent(tree.KindRow)
	if err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	if s.Selected() != row.ID {
		t.Fatalf("expected new component to be selected")
	}

	input, err := s.AddToParent(tree.KindInput, row.ID, 0)
	if err != nil {
		t.Fatalf("AddToParent: %v", err)
	}
	if s.Selected() != input.ID {
		t.Fatalf("expected child to be selected")
	}

	clone, err := s.Duplicate(input.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if s.Selected() != clone.ID || clone.ID == input.ID {
		t.Fatalf("expected clone %q to be selected, got %q", clone.ID, s.Selected())
	}

	if err := s.Remove(row.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Selected() != "" {
		t.Fatalf("expected selection inside removed subtree to clear, got %q", s.Selected())
	}
	if len(s.Tree()) != 0 {
		t.Fatalf("expected empty tree after removing the row")
	}

	if err := s.Select("missing"); !errors.Is(err, mutate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRejectedEditsDoNotNotify(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.Load(tree.Document{Name: "F", Components: tree.Tree{
		ts.Container("c", ts.Container("inner")),
	}}, "")

	calls := 0
	unsubscribe := s.Subscribe(func(editor.Change) { calls++ })

	before := s.Tree()
	if err := s.Move("c", "inner", 0); !errors.Is(err, mutate.ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("rejected edit must not notify")
	}
	if !tree.Equal(before, s.Tree()) {
		t.Fatalf("rejected edit changed the tree:\n%s", tree.Diff(before, s.Tree()))
	}

	unsubscribe()
	s.SetDescription("after unsubscribe")
	if calls != 0 {
		t.Fatalf("unsubscribed listener was called")
	}
}

func TestSessionDropAndTabs(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.Load(tree.Document{Name: "F", Components: tree.Tree{ts.Input("in", "Name")}}, "")

	res, err := s.Drop(placement.Drop{Target: "in", Edge: placement.Right, Source: placement.NewComponent(tree.KindSelect)})
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if res.Row == nil || s.Selected() != res.Node.ID {
		t.Fatalf("expected wrap into row with the select selected, got %+v", res)
	}

	tabs, err := s.AddComponent(tree.KindTabs)
	if err != nil {
		t.Fatalf("AddComponent tabs: %v", err)
	}
	tab, err := s.AddTab(tabs.ID, "")
	if err != nil {
		t.Fatalf("AddTab: %v", err)
	}
	if tab.Label != "Tab 3" {
		t.Fatalf("expected default label Tab 3, got %q", tab.Label)
	}
	if err := s.RenameTab(tabs.ID, tab.ID, "Extra"); err != nil {
		t.Fatalf("RenameTab: %v", err)
	}
	child, err := s.AddToParent(tree.KindInput, tab.ID, -1)
	if err != nil {
		t.Fatalf("AddToParent tab: %v", err)
	}
	if s.Selected() != child.ID {
		t.Fatalf("expected tab child selected")
	}
	if err := s.RemoveTab(tabs.ID, tab.ID); err != nil {
		t.Fatalf("RemoveTab: %v", err)
	}
	if s.Selected() != "" {
		t.Fatalf("expected selection inside removed tab to clear")
	}
	if _, ok := tree.FindByID(s.Tree(), child.ID); ok {
		t.Fatalf("expected tab contents to be removed")
	}
}

func TestSessionExportImport(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.Load(tree.Document{Name: "Saved", Components: tree.Tree{ts.Input("a", "A")}}, "f")

	if err := s.Import([]byte(`name: Imported
components:
  - id: x
    type: input
    props:
      label: "<b>Bold</b> label"
`)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	n, ok := tree.FindByID(s.Tree(), "x")
	if !ok || n.Label() != "Bold label" {
		t.Fatalf("expected sanitised import, got %+v", n)
	}
	if !s.Dirty() {
		t.Fatalf("import must leave unsaved changes")
	}

	out, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(string(out), "\n  \"components\"") {
		t.Fatalf("expected indented JSON, got %s", out)
	}

	fresh := newSession(t)
	if err := fresh.Import(out); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if !tree.DocumentEqual(s.Document(), fresh.Document()) {
		t.Fatalf("export/import changed the document")
	}

	if err := s.Import([]byte(`{"name":"no components"}`)); !errors.Is(err, tree.ErrNoComponents) {
		t.Fatalf("expected ErrNoComponents, got %v", err)
	}
	dup := `{"name":"d","components":[{"id":"a","type":"input","props":{}},{"id":"a","type":"input","props":{}}]}`
	var invariant *tree.InvariantError
	if err := s.Import([]byte(dup)); !errors.As(err, &invariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}

	s.Clear()
	if s.Document().Name != "New Form" || len(s.Tree()) != 0 || s.FormID() != "" {
		t.Fatalf("unexpected document after Clear: %+v", s.Document())
	}
}

func TestSessionComputedValues(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.Load(tree.Document{Name: "F", Components: tree.Tree{
		ts.Input("first", "First"),
		ts.Input("last", "Second"),
		ts.Computed("full", "Full", `return get_field_by_name("First") + " " + get_field_by_name("Second");`),
	}}, "")

	if err := s.SetValue("first", "Jane"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := s.SetValue("last", "Doe"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	results := s.Computed()
	if len(results) != 1 || results[0].Display != "Jane Doe" {
		t.Fatalf("expected Jane Doe, got %+v", results)
	}
}

func TestSessionConcurrentEdits(t *testing.T) {
	t.Parallel()

	s := editor.New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AddComponent(tree.KindInput); err != nil {
				t.Errorf("AddComponent: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := len(s.Tree()); got != 20 {
		t.Fatalf("expected 20 components, got %d", got)
	}
	if err := tree.Validate(s.Tree()); err != nil {
		t.Fatalf("tree invalid after concurrent edits: %v", err)
	}
}
