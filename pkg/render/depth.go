package render

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/taigrr/meshsvg/pkg/math3d"
)

// ErrInvalidOption is returned when parsing an unknown option name.
var ErrInvalidOption = errors.New("invalid render option")

// SortOrder selects the emission order of the depth-sorted polygons.
type SortOrder int

const (
	// BackToFront sorts by descending depth key so nearer polygons are
	// painted over farther ones.
	BackToFront SortOrder = iota
	// FrontToBack sorts by ascending depth key.
	FrontToBack
)

func (o SortOrder) String() string {
	switch o {
	case BackToFront:
		return "back-to-front"
	case FrontToBack:
		return "front-to-back"
	default:
		return fmt.Sprintf("SortOrder(%d)", int(o))
	}
}

// ParseSortOrder accepts "back-to-front"/"desc" and "front-to-back"/"asc".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "back-to-front", "desc", "painter":
		return BackToFront, nil
	case "front-to-back", "asc":
		return FrontToBack, nil
	default:
		return 0, fmt.Errorf("%w: sort order %q", ErrInvalidOption, s)
	}
}

// DepthFilter decides which finite depth keys survive.
type DepthFilter int

const (
	// FilterPositive keeps only cells whose depth key is strictly
	// positive, dropping anything whose farthest point sits on or behind
	// z = 0.
	FilterPositive DepthFilter = iota
	// FilterFinite keeps every cell with a finite depth key.
	FilterFinite
)

func (f DepthFilter) String() string {
	switch f {
	case FilterPositive:
		return "positive"
	case FilterFinite:
		return "finite"
	default:
		return fmt.Sprintf("DepthFilter(%d)", int(f))
	}
}

// ParseDepthFilter accepts "positive" and "finite".
func ParseDepthFilter(s string) (DepthFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "positive":
		return FilterPositive, nil
	case "finite":
		return FilterFinite, nil
	default:
		return 0, fmt.Errorf("%w: depth filter %q", ErrInvalidOption, s)
	}
}

// keep reports whether a finite depth key passes the filter.
func (f DepthFilter) keep(depth float64) bool {
	if f == FilterFinite {
		return true
	}
	return depth > 0
}

// TaggedPolygon is a clipped cell in normalized device coordinates,
// tagged with its depth key and the index of the cell it came from.
type TaggedPolygon struct {
	Depth  float64
	Points []math3d.Vec3
	Cell   int
}

// cellFate records why a cell did or did not survive classification.
type cellFate uint8

const (
	fateKept cellFate = iota
	fateCulled
	fateDegenerate
	fateFiltered
)

// DepthKey returns the largest z among points, or -Inf for none.
func DepthKey(points []math3d.Vec3) float64 {
	z := math.Inf(-1)
	for _, p := range points {
		z = max(z, p.Z)
	}
	return z
}

// Classify performs the perspective divide on a clipped polygon and
// computes its depth key. ok is false when the polygon has fewer than
// three points, any non-finite coordinate, or a depth key rejected by
// filter.
func Classify(clipped []math3d.Vec4, cell int, filter DepthFilter) (tp TaggedPolygon, ok bool) {
	tp, fate := classify(clipped, cell, filter)
	return tp, fate == fateKept
}

func classify(clipped []math3d.Vec4, cell int, filter DepthFilter) (TaggedPolygon, cellFate) {
	if len(clipped) == 0 {
		return TaggedPolygon{}, fateCulled
	}
	if len(clipped) < 3 {
		return TaggedPolygon{}, fateDegenerate
	}

	points := make([]math3d.Vec3, len(clipped))
	for i, v := range clipped {
		p := v.PerspectiveDivide()
		if !p.IsFinite() {
			return TaggedPolygon{}, fateDegenerate
		}
		points[i] = p
	}

	depth := DepthKey(points)
	if math.IsNaN(depth) || math.IsInf(depth, 0) {
		return TaggedPolygon{}, fateDegenerate
	}
	if !filter.keep(depth) {
		return TaggedPolygon{}, fateFiltered
	}
	return TaggedPolygon{Depth: depth, Points: points, Cell: cell}, fateKept
}

// SortTagged stable-sorts polygons by depth key in the given order. Equal
// keys keep their incoming order.
func SortTagged(polys []TaggedPolygon, order SortOrder) {
	slices.SortStableFunc(polys, func(a, b TaggedPolygon) int {
		if order == FrontToBack {
			return cmp.Compare(a.Depth, b.Depth)
		}
		return cmp.Compare(b.Depth, a.Depth)
	})
}
