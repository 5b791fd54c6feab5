package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formtree/pkg/tree"
)

// MustLoadDocument reads a JSON or YAML fixture into a tree.Document. Testing
// helpers fail the test immediately to keep assertions concise.
func MustLoadDocument(t *testing.T, path string) tree.Document {
	t.Helper()

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocument returns a Document without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadDocument(path string) (tree.Document, error) {
	if path == "" {
		return tree.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tree.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := tree.DecodeDocument(data)
	if err != nil {
		return tree.Document{}, fmt.Errorf("testsupport: decode document: %w", err)
	}
	return doc, nil
}

// MustValidate fails the test when t breaks a structural invariant.
func MustValidate(tb testing.TB, t tree.Tree) {
	tb.Helper()
	if err := tree.Validate(t); err != nil {
		tb.Fatalf("tree invariants: %v", err)
	}
}

// TreeDiff returns a cmp diff between two trees, treating nil and empty
// containers alike.
func TreeDiff(want, got tree.Tree) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
