package mutate

import (
	"log/slog"

	"github.com/goliatone/go-formtree/internal/ctxlog"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// Option customises an Engine.
type Option func(*Engine)

// WithIDGenerator overrides the id source used for new nodes, tabs, and
// duplicated subtrees.
func WithIDGenerator(fn tree.IDFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithLogger routes engine diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine applies structural edits to form trees. Every operation is pure: the
// input tree is never modified and the returned tree shares untouched
// subtrees with it.
type Engine struct {
	newID  tree.IDFunc
	logger *slog.Logger
}

// New constructs an Engine with UUID ids and a discarding logger.
func New(options ...Option) *Engine {
	e := &Engine{
		newID:  tree.NewID,
		logger: ctxlog.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// NewID exposes the engine's id generator so callers building nodes outside
// the engine stay on the same id source.
func (e *Engine) NewID() string {
	return e.newID()
}

// NewNode builds a node of kind with default props using the engine's ids.
func (e *Engine) NewNode(kind tree.Kind) (*tree.Node, error) {
	if !kind.Valid() {
		return nil, wrap("new node", ErrUnknownKind, "kind %q", kind)
	}
	return tree.NewNode(kind, e.newID), nil
}

// commit validates the tree produced by an operation. A failure here means
// the engine produced an inconsistent tree.
func (e *Engine) commit(op string, t tree.Tree) (tree.Tree, error) {
	if err := tree.Validate(t); err != nil {
		e.logger.Error("Mutation produced an invalid tree", "op", op, "error", err)
		return nil, err
	}
	return t, nil
}
