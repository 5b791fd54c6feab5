// Package editor holds the caller-side state of a form being edited: the
// current and last saved documents, the selection, and the value snapshot
// computed fields are evaluated against.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formtree/internal/ctxlog"
	"github.com/goliatone/go-formtree/pkg/compute"
	"github.com/goliatone/go-formtree/pkg/mutate"
	"github.com/goliatone/go-formtree/pkg/placement"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// Change is delivered to listeners after every successful edit.
type Change struct {
	Document tree.Document
	// Dirty reports whether Document differs from the last saved document.
	Dirty bool
	// Selected is the selected node id, empty when nothing is selected.
	Selected string
}

// Listener receives change notifications. It runs outside the session lock
// and may call back into the session.
type Listener func(Change)

// Option customises a Session.
type Option func(*Session)

// WithEngine sets the mutation engine.
func WithEngine(e *mutate.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithEvaluator sets the evaluator used for computed fields.
func WithEvaluator(e *compute.Evaluator) Option {
	return func(s *Session) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithLogger routes session diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session serialises edits to one form. All methods are safe for concurrent
// use.
type Session struct {
	mu        sync.Mutex
	engine    *mutate.Engine
	evaluator *compute.Evaluator
	logger    *slog.Logger

	current  tree.Document
	saved    tree.Document
	formID   string
	selected string
	values   map[string]any

	listeners []Listener
}

// New returns a session holding the default empty document.
func New(opts ...Option) *Session {
	s := &Session{
		engine:    mutate.New(),
		evaluator: compute.New(),
		logger:    ctxlog.Discard(),
		current:   tree.NewDocument(),
		saved:     tree.NewDocument(),
		values:    map[string]any{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *Session) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

// Document returns the current document.
func (s *Session) Document() tree.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Tree returns the current component tree.
func (s *Session) Tree() tree.Tree {
	return s.Document().Components
}

// FormID returns the id of the stored form being edited, if any.
func (s *Session) FormID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formID
}

// Selected returns the selected node id.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Dirty reports whether the current document differs from the saved one.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !tree.DocumentEqual(s.current, s.saved)
}

// Load replaces the document wholesale and marks it saved.
func (s *Session) Load(doc tree.Document, formID string) {
	if doc.Components == nil {
		doc.Components = tree.Tree{}
	}
	s.update(func() error {
		s.current = doc
		s.saved = doc
		s.formID = formID
		s.selected = ""
		s.values = map[string]any{}
		return nil
	})
}

// MarkSaved records the current document as the saved baseline.
func (s *Session) MarkSaved() {
	s.update(func() error {
		s.saved = s.current
		return nil
	})
}

// Clear resets the session to the default document.
func (s *Session) Clear() {
	s.update(func() error {
		s.current = tree.NewDocument()
		s.saved = tree.NewDocument()
		s.formID = ""
		s.selected = ""
		s.values = map[string]any{}
		return nil
	})
}

// Select changes the selection. Unknown ids are rejected.
func (s *Session) Select(id string) error {
	return s.update(func() error {
		if id != "" {
			if _, ok := tree.FindByID(s.current.Components, id); !ok {
				return fmt.Errorf("%w: select %q", mutate.ErrNotFound, id)
			}
		}
		s.selected = id
		return nil
	})
}

// AddComponent appends a new component of kind at the root and selects it.
func (s *Session) AddComponent(kind tree.Kind) (*tree.Node, error) {
	return s.AddToParent(kind, "", -1)
}

// AddToParent inserts a new component of kind into parentID at index and
// selects it. An empty parentID means the root.
func (s *Session) AddToParent(kind tree.Kind, parentID string, index int) (*tree.Node, error) {
	var added *tree.Node
	err := s.update(func() error {
		next, node, err := s.engine.Insert(s.current.Components, parentID, index, kind)
		if err != nil {
			return err
		}
		s.current.Components = next
		s.selected = node.ID
		added = node
		return nil
	})
	return added, err
}

// Update merges patch into the props of id.
func (s *Session) Update(id string, patch tree.Props) error {
	return s.update(func() error {
		next, err := s.engine.Update(s.current.Components, id, patch)
		if err != nil {
			return err
		}
		s.current.Components = next
		return nil
	})
}

// Remove deletes id and its subtree. The selection is cleared when it pointed
// into the removed subtree.
func (s *Session) Remove(id string) error {
	return s.update(func() error {
		before := s.current.Components
		next, err := s.engine.Remove(before, id)
		if err != nil {
			return err
		}
		if s.selected != "" && (s.selected == id || tree.IsDescendant(before, s.selected, id)) {
			s.selected = ""
		}
		s.current.Components = next
		return nil
	})
}

// Duplicate clones id next to the original and selects the clone.
func (s *Session) Duplicate(id string) (*tree.Node, error) {
	var clone *tree.Node
	err := s.update(func() error {
		next, node, err := s.engine.Duplicate(s.current.Components, id)
		if err != nil {
			return err
		}
		s.current.Components = next
		s.selected = node.ID
		clone = node
		return nil
	})
	return clone, err
}

// Move relocates id into targetParentID at index.
func (s *Session) Move(id, targetParentID string, index int) error {
	return s.update(func() error {
		next, err := s.engine.Move(s.current.Components, id, targetParentID, index)
		if err != nil {
			return err
		}
		s.current.Components = next
		return nil
	})
}

// Reorder moves activeID to the position of overID within their shared slot.
func (s *Session) Reorder(activeID, overID string) error {
	return s.update(func() error {
		next, err := s.engine.Reorder(s.current.Components, activeID, overID)
		if err != nil {
			return err
		}
		s.current.Components = next
		return nil
	})
}

// Drop applies a drag-and-drop gesture through the placement resolver and
// selects the placed node.
func (s *Session) Drop(drop placement.Drop) (placement.Result, error) {
	var res placement.Result
	err := s.update(func() error {
		out, err := placement.Place(s.engine, s.current.Components, drop)
		if err != nil {
			return err
		}
		s.current.Components = out.Tree
		if out.Node != nil {
			s.selected = out.Node.ID
		}
		res = out
		return nil
	})
	return res, err
}

// AddTab appends a tab to tabsID.
func (s *Session) AddTab(tabsID, label string) (*tree.Tab, error) {
	var tab *tree.Tab
	err := s.update(func() error {
		next, added, err := s.engine.AddTab(s.current.Components, tabsID, label)
		if err != nil {
			return err
		}
		s.current.Components = next
		tab = added
		return nil
	})
	return tab, err
}

// RemoveTab deletes tabID and its contents from tabsID.
func (s *Session) RemoveTab(tabsID, tabID string) error {
	return s.update(func() error {
		before := s.current.Components
		next, err := s.engine.RemoveTab(before, tabsID, tabID)
		if err != nil {
			return err
		}
		if s.selected != "" && tree.IsDescendant(before, s.selected, tabID) {
			s.selected = ""
		}
		s.current.Components = next
		return nil
	})
}

// RenameTab relabels tabID.
func (s *Session) RenameTab(tabsID, tabID, label string) error {
	return s.update(func() error {
		next, err := s.engine.RenameTab(s.current.Components, tabsID, tabID, label)
		if err != nil {
			return err
		}
		s.current.Components = next
		return nil
	})
}

// SetName sets the document name.
func (s *Session) SetName(name string) {
	s.update(func() error {
		s.current.Name = name
		return nil
	})
}

// SetCode sets the document code.
func (s *Session) SetCode(code string) {
	s.update(func() error {
		s.current.Code = code
		return nil
	})
}

// SetDescription sets the document description.
func (s *Session) SetDescription(description string) {
	s.update(func() error {
		s.current.Description = description
		return nil
	})
}

// SetValue records the value of a field in the snapshot.
func (s *Session) SetValue(id string, value any) error {
	normalized, err := tree.NormalizeValue(value)
	if err != nil {
		return fmt.Errorf("editor: set value %q: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]any, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[id] = normalized
	s.values = next
	return nil
}

// Values returns the value snapshot. Callers must not modify it.
func (s *Session) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// Computed evaluates every computed field against the current values.
func (s *Session) Computed() []compute.NodeResult {
	s.mu.Lock()
	t, values := s.current.Components, s.values
	s.mu.Unlock()
	return s.evaluator.EvaluateAll(t, values)
}

// Export renders the current document as indented JSON.
func (s *Session) Export() ([]byte, error) {
	return tree.EncodeDocument(s.Document())
}

// Import replaces the current document with data (JSON or YAML). The tree
// must be valid; display strings are sanitised. The saved baseline is kept,
// so an import shows up as unsaved changes.
func (s *Session) Import(data []byte) error {
	doc, err := tree.DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("editor: import: %w", err)
	}
	if err := tree.Validate(doc.Components); err != nil {
		return fmt.Errorf("editor: import: %w", err)
	}
	doc.Components = tree.SanitizeTree(doc.Components)
	return s.update(func() error {
		s.current = doc
		s.selected = ""
		return nil
	})
}

// update runs fn under the lock and notifies listeners when it succeeds.
func (s *Session) update(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		if !errors.Is(err, mutate.ErrNotFound) && !errors.Is(err, mutate.ErrInvalidParent) {
			s.logger.Warn("Edit rejected", "error", err)
		} else {
			s.logger.Debug("Edit rejected", "error", err)
		}
		return err
	}
	change := Change{
		Document: s.current,
		Dirty:    !tree.DocumentEqual(s.current, s.saved),
		Selected: s.selected,
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		if fn != nil {
			fn(change)
		}
	}
	return nil
}
