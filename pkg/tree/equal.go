package tree

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// compareOptions treats nil and empty containers alike, which matches how the
// JSON form drops empty validation lists and settings.
var compareOptions = cmp.Options{
	cmpopts.EquateEmpty(),
}

// Equal reports whether two trees are structurally identical: same ids, same
// shape, same props.
func Equal(a, b Tree) bool {
	return cmp.Equal(a, b, compareOptions)
}

// DocumentEqual compares two documents including their metadata. It drives
// the "has unsaved changes" signal.
func DocumentEqual(a, b Document) bool {
	return cmp.Equal(a, b, compareOptions)
}

// Diff returns a human-readable difference between two trees, empty when
// they are equal.
func Diff(a, b Tree) string {
	return cmp.Diff(a, b, compareOptions)
}
