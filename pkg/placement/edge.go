package placement

import (
	"fmt"
	"strings"
)

// Edge names the part of a drop target the pointer was released over.
type Edge int

const (
	Inside Edge = iota
	Left
	Right
	Top
	Bottom
)

var edgeNames = map[Edge]string{
	Inside: "inside",
	Left:   "left",
	Right:  "right",
	Top:    "top",
	Bottom: "bottom",
}

func (e Edge) String() string {
	if name, ok := edgeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("edge(%d)", int(e))
}

// ParseEdge converts a textual edge name (case-insensitive) into an Edge. An
// empty string yields Inside.
func ParseEdge(s string) (Edge, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Inside, nil
	}
	for edge, name := range edgeNames {
		if name == s {
			return edge, nil
		}
	}
	return Inside, fmt.Errorf("placement: unknown edge %q", s)
}

// Rect is a node's bounding box in screen coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Point is a pointer position in screen coordinates.
type Point struct {
	X, Y float64
}

// DefaultThreshold is the fraction of a box's width or height treated as an
// edge band.
const DefaultThreshold = 0.25

// DetectEdge maps point over rect to an edge. Positions within threshold (a
// fraction of the width) of the left or right side win first, then bands of
// the same fraction of the height at the top and bottom; everything else is
// Inside. Points outside rect are clamped to its border.
func DetectEdge(rect Rect, point Point, threshold float64) Edge {
	if threshold <= 0 || threshold >= 0.5 {
		threshold = DefaultThreshold
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return Inside
	}

	fx := clamp((point.X - rect.X) / rect.Width)
	fy := clamp((point.Y - rect.Y) / rect.Height)

	switch {
	case fx < threshold:
		return Left
	case fx > 1-threshold:
		return Right
	case fy < threshold:
		return Top
	case fy > 1-threshold:
		return Bottom
	default:
		return Inside
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
