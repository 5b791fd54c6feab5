// Package formtree is the entry point for building and editing form schema
// trees. It wires the public packages together for the common cases; the
// packages under pkg/ remain usable on their own.
package formtree

import (
	"context"

	internalLoader "github.com/goliatone/go-formtree/internal/openapi/loader"
	"github.com/goliatone/go-formtree/pkg/compute"
	"github.com/goliatone/go-formtree/pkg/editor"
	"github.com/goliatone/go-formtree/pkg/mutate"
	pkgopenapi "github.com/goliatone/go-formtree/pkg/openapi"
	"github.com/goliatone/go-formtree/pkg/scaffold"
	"github.com/goliatone/go-formtree/pkg/store"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// Document aliases tree.Document for callers that only import the root.
type Document = tree.Document

// NewLoader constructs an OpenAPI loader backed by the internal file, fs.FS
// and HTTP strategies.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	return internalLoader.New(pkgopenapi.NewLoaderOptions(options...))
}

// NewEngine returns a mutation engine.
func NewEngine(options ...mutate.Option) *mutate.Engine {
	return mutate.New(options...)
}

// NewEvaluator returns a computed-value evaluator.
func NewEvaluator(options ...compute.Option) *compute.Evaluator {
	return compute.New(options...)
}

// NewSession returns an editor session over the default empty document.
func NewSession(options ...editor.Option) *editor.Session {
	return editor.New(options...)
}

// OpenStore opens the SQLite form store at path.
func OpenStore(ctx context.Context, path string) (*store.SQLite, error) {
	return store.Open(ctx, path)
}

// Scaffold loads an OpenAPI document from src and builds a form from the
// request body of operationID.
func Scaffold(ctx context.Context, src pkgopenapi.Source, operationID string, loaderOptions []pkgopenapi.LoaderOption, options ...scaffold.Option) (tree.Document, error) {
	doc, err := NewLoader(loaderOptions...).Load(ctx, src)
	if err != nil {
		return tree.Document{}, err
	}
	return scaffold.FromOperation(ctx, doc, operationID, options...)
}
