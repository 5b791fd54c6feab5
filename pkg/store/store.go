// Package store persists form documents so row-editor sub-forms can be
// looked up by id.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-formtree/pkg/tree"
)

// ErrFormNotFound is returned for unknown form ids.
var ErrFormNotFound = errors.New("store: form not found")

// FormSource loads form documents by id.
type FormSource interface {
	Form(ctx context.Context, id string) (tree.Document, error)
}

// Summary describes a stored form without its components.
type Summary struct {
	ID        string
	Code      string
	Name      string
	UpdatedAt time.Time
}

// Store is a FormSource that can also write.
type Store interface {
	FormSource
	// Save inserts or replaces doc. Documents without an id get a fresh one;
	// the stored document is returned.
	Save(ctx context.Context, doc tree.Document) (tree.Document, error)
	// List returns every stored form ordered by name, then id.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes id. Unknown ids yield ErrFormNotFound.
	Delete(ctx context.Context, id string) error
}

func prepare(doc tree.Document) (tree.Document, error) {
	doc.ID = strings.TrimSpace(doc.ID)
	if doc.ID == "" {
		doc.ID = tree.NewID()
	}
	if doc.Components == nil {
		doc.Components = tree.Tree{}
	}
	if err := tree.Validate(doc.Components); err != nil {
		return tree.Document{}, err
	}
	return doc, nil
}
