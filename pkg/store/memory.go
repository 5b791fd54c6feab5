package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-formtree/pkg/tree"
)

type memoryEntry struct {
	doc       tree.Document
	updatedAt time.Time
}

// Memory is an in-process Store. Documents are copied on the way in and out.
type Memory struct {
	mu    sync.RWMutex
	forms map[string]memoryEntry
	now   func() time.Time
}

// NewMemory returns an empty store seeded with docs.
func NewMemory(docs ...tree.Document) *Memory {
	m := &Memory{forms: make(map[string]memoryEntry), now: time.Now}
	for _, doc := range docs {
		if _, err := m.Save(context.Background(), doc); err != nil {
			panic(fmt.Sprintf("store: seed memory store: %v", err))
		}
	}
	return m
}

func (m *Memory) Form(ctx context.Context, id string) (tree.Document, error) {
	if err := ctx.Err(); err != nil {
		return tree.Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.forms[id]
	if !ok {
		return tree.Document{}, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	return copyDocument(entry.doc), nil
}

func (m *Memory) Save(ctx context.Context, doc tree.Document) (tree.Document, error) {
	if err := ctx.Err(); err != nil {
		return tree.Document{}, err
	}
	doc, err := prepare(doc)
	if err != nil {
		return tree.Document{}, fmt.Errorf("store: save: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms[doc.ID] = memoryEntry{doc: copyDocument(doc), updatedAt: m.now().UTC()}
	return copyDocument(doc), nil
}

func (m *Memory) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.forms))
	for id, entry := range m.forms {
		out = append(out, Summary{ID: id, Code: entry.doc.Code, Name: entry.doc.Name, UpdatedAt: entry.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forms[id]; !ok {
		return fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	delete(m.forms, id)
	return nil
}

func copyDocument(doc tree.Document) tree.Document {
	doc.Components = tree.CopyTree(doc.Components)
	if doc.Settings != nil {
		doc.Settings = tree.Props(doc.Settings).Clone()
	}
	return doc
}
