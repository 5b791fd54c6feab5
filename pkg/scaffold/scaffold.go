// Package scaffold builds a starting form document from the request body of
// an OpenAPI operation.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formtree/internal/ctxlog"
	pkgopenapi "github.com/goliatone/go-formtree/pkg/openapi"
	"github.com/goliatone/go-formtree/pkg/tree"
)

var (
	// ErrOperationNotFound is returned when no operation matches the id.
	ErrOperationNotFound = errors.New("scaffold: operation not found")
	// ErrNoRequestBody is returned for operations without a usable request
	// body schema.
	ErrNoRequestBody = errors.New("scaffold: operation has no request body schema")
)

// DefaultMaxDepth bounds how deeply nested objects are expanded.
const DefaultMaxDepth = 8

// Option customises scaffolding.
type Option func(*options)

type options struct {
	newID    tree.IDFunc
	labeler  func(string) string
	logger   *slog.Logger
	maxDepth int
	validate bool
}

// WithIDGenerator sets the id generator for new nodes.
func WithIDGenerator(fn tree.IDFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithLabeler replaces Label for properties without a title.
func WithLabeler(fn func(string) string) Option {
	return func(o *options) {
		if fn != nil {
			o.labeler = fn
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxDepth bounds object nesting. Deeper objects become textareas.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithValidation toggles OpenAPI document validation before scaffolding.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// Operation summarises one operation of a document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	// HasBody reports whether the operation declares a request body.
	HasBody bool
}

// Operations lists the operations of doc ordered by path, then method.
func Operations(ctx context.Context, doc pkgopenapi.Document, opts ...Option) ([]Operation, error) {
	cfg := newOptions(ctx, opts)
	spec, err := parse(ctx, doc, cfg)
	if err != nil {
		return nil, err
	}
	var out []Operation
	for _, op := range collect(spec) {
		out = append(out, Operation{
			ID:      op.id,
			Method:  op.method,
			Path:    op.path,
			Summary: op.op.Summary,
			HasBody: op.op.RequestBody != nil,
		})
	}
	return out, nil
}

// FromOperation converts the request body of operationID into a document.
// Operations without an operationId are addressed as "method:path", for
// example "post:/orders".
func FromOperation(ctx context.Context, doc pkgopenapi.Document, operationID string, opts ...Option) (tree.Document, error) {
	cfg := newOptions(ctx, opts)
	spec, err := parse(ctx, doc, cfg)
	if err != nil {
		return tree.Document{}, err
	}

	var found *operationRef
	for _, op := range collect(spec) {
		if op.id == operationID {
			op := op
			found = &op
			break
		}
	}
	if found == nil {
		return tree.Document{}, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
	}

	body := requestSchema(found.op.RequestBody)
	if body == nil {
		return tree.Document{}, fmt.Errorf("%w: %s", ErrNoRequestBody, operationID)
	}

	b := &builder{opts: cfg, inPath: make(map[*openapi3.Schema]struct{})}
	components := b.properties(body, 0)

	name := strings.TrimSpace(found.op.Summary)
	if name == "" {
		name = cfg.labeler(operationID)
	}
	out := tree.Document{
		Code:        operationID,
		Name:        name,
		Description: found.op.Description,
		Components:  components,
		Settings: map[string]any{
			"source":      doc.Location(),
			"operationId": operationID,
			"method":      found.method,
			"path":        found.path,
		},
	}
	if err := tree.Validate(out.Components); err != nil {
		return tree.Document{}, fmt.Errorf("scaffold: %w", err)
	}
	cfg.logger.Debug("Scaffolded form", "operationId", operationID, "nodes", tree.Count(out.Components))
	return out, nil
}

func newOptions(ctx context.Context, opts []Option) options {
	cfg := options{
		newID:    tree.NewID,
		labeler:  Label,
		logger:   ctxlog.FromContext(ctx),
		maxDepth: DefaultMaxDepth,
		validate: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func parse(ctx context.Context, doc pkgopenapi.Document, cfg options) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("scaffold: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("scaffold: load document: %w", err)
	}
	if cfg.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("scaffold: validate document: %w", err)
		}
	}
	return spec, nil
}

type operationRef struct {
	id     string
	method string
	path   string
	op     *openapi3.Operation
}

var methodOrder = []string{
	http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete,
	http.MethodPatch, http.MethodHead, http.MethodOptions, http.MethodTrace,
}

func collect(spec *openapi3.T) []operationRef {
	if spec.Paths == nil {
		return nil
	}
	paths := make([]string, 0, spec.Paths.Len())
	for path := range spec.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var out []operationRef
	for _, path := range paths {
		item := spec.Paths.Value(path)
		if item == nil {
			continue
		}
		ops := item.Operations()
		for _, method := range methodOrder {
			op := ops[method]
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, operationRef{id: id, method: method, path: path, op: op})
		}
	}
	return out
}

var preferredMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mt := range preferredMediaTypes {
		if media, ok := content[mt]; ok && media != nil && media.Schema != nil {
			return media.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if media := content[k]; media != nil && media.Schema != nil {
			return media.Schema.Value
		}
	}
	return nil
}
