package mutate

import "errors"

var (
	// ErrNotFound indicates the operation referenced an id absent from the tree.
	ErrNotFound = errors.New("mutate: node not found")
	// ErrInvalidParent indicates the target cannot own children or the move
	// would place a node inside itself.
	ErrInvalidParent = errors.New("mutate: invalid parent")
	// ErrInvalidPatch indicates a props patch that touches structural keys or
	// holds values that cannot be stored.
	ErrInvalidPatch = errors.New("mutate: invalid patch")
	// ErrUnknownKind indicates a component kind outside the closed kind set.
	ErrUnknownKind = errors.New("mutate: unknown component kind")
	// ErrDuplicateID indicates an inserted node reuses an id already present.
	ErrDuplicateID = errors.New("mutate: id already in tree")
)
