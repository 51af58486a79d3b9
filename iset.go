// Copyright 2024 The University of Queensland
// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package depsolve

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
)

// Interval is a single half-open span [Low, High): Low is included, High is
// not.
type Interval[P any] struct {
	Low  P
	High P
}

// IntervalSet is a set of disjoint half-open intervals over a totally
// ordered point type, the reference requirement domain for the solver.
//
// The set is represented as a sorted flat list holding an even number of
// points: [p0, p1, p2, p3, ...] means [p0,p1) ∪ [p2,p3) ∪ ... . The
// representation is kept canonical - no empty spans, no touching spans - so
// equal sets always compare Equal.
//
// IntervalSet is immutable: every operation returns a new set sharing the
// comparator.
//
// Example:
//
//	set, _ := NewOrderedIntervalSet(Interval[int]{1, 4}, Interval[int]{6, 9})
//	set.Contains(3) // true
//	set.Contains(4) // false
type IntervalSet[P any] struct {
	points []P
	cmp    func(a, b P) int
}

// NewIntervalSet builds the union of the given intervals, comparing points
// with compare (in the manner of slices.SortFunc). An interval whose upper
// bound sorts below its lower bound yields *InvalidIntervalError.
func NewIntervalSet[P any](compare func(a, b P) int, intervals ...Interval[P]) (*IntervalSet[P], error) {
	s := &IntervalSet[P]{cmp: compare}
	for _, iv := range intervals {
		if compare(iv.High, iv.Low) < 0 {
			return nil, &InvalidIntervalError{
				Low:  fmt.Sprintf("%v", iv.Low),
				High: fmt.Sprintf("%v", iv.High),
			}
		}
		s.unionAdd(iv)
	}
	s.normalize()
	return s, nil
}

// NewOrderedIntervalSet builds an interval set over a naturally ordered
// point type.
func NewOrderedIntervalSet[P cmp.Ordered](intervals ...Interval[P]) (*IntervalSet[P], error) {
	return NewIntervalSet(cmp.Compare[P], intervals...)
}

// emptyLike returns a fresh empty set sharing the receiver's comparator.
func (s *IntervalSet[P]) emptyLike() *IntervalSet[P] {
	return &IntervalSet[P]{cmp: s.cmp}
}

// IsEmpty reports whether the set contains no points.
func (s *IntervalSet[P]) IsEmpty() bool {
	return len(s.points) == 0
}

// Contains reports whether p falls inside any span: the point is contained
// exactly when an odd number of stored points sort at or below it.
func (s *IntervalSet[P]) Contains(p P) bool {
	return s.nPointsBeforeOrAt(p)%2 == 1
}

// Intervals returns an iterator over the disjoint spans in ascending order.
func (s *IntervalSet[P]) Intervals() iter.Seq[Interval[P]] {
	return func(yield func(Interval[P]) bool) {
		for i := 0; i+1 < len(s.points); i += 2 {
			if !yield(Interval[P]{Low: s.points[i], High: s.points[i+1]}) {
				return
			}
		}
	}
}

// Union returns the set of points in either set.
func (s *IntervalSet[P]) Union(other *IntervalSet[P]) *IntervalSet[P] {
	out := &IntervalSet[P]{cmp: s.cmp, points: slices.Clone(s.points)}
	for iv := range other.Intervals() {
		out.unionAdd(iv)
	}
	out.normalize()
	return out
}

// Intersect returns the set of points in both sets, merging the two sorted
// span lists pairwise and emitting each overlap.
func (s *IntervalSet[P]) Intersect(other *IntervalSet[P]) *IntervalSet[P] {
	out := s.emptyLike()
	a := slices.Collect(s.Intervals())
	b := slices.Collect(other.Intervals())

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lower, upper := a[i], b[j]
		swapped := false
		if s.cmp(upper.Low, lower.Low) < 0 {
			lower, upper = upper, lower
			swapped = true
		}

		switch {
		case s.cmp(upper.Low, lower.High) >= 0:
			// No overlap; the span starting lower is exhausted.
			if swapped {
				j++
			} else {
				i++
			}
		case s.cmp(lower.High, upper.High) >= 0:
			// The lower-starting span encloses the other entirely.
			out.unionAdd(upper)
			if swapped {
				i++
			} else {
				j++
			}
		default:
			// Partial overlap; emit it and move past the span that
			// ends first.
			out.unionAdd(Interval[P]{Low: upper.Low, High: lower.High})
			if swapped {
				j++
			} else {
				i++
			}
		}
	}

	out.normalize()
	return out
}

// Difference returns the points of this set not contained in other.
func (s *IntervalSet[P]) Difference(other *IntervalSet[P]) *IntervalSet[P] {
	out := &IntervalSet[P]{cmp: s.cmp, points: slices.Clone(s.points)}
	for iv := range other.Intervals() {
		out.remove(iv)
	}
	out.normalize()
	return out
}

// Equal reports whether both sets contain exactly the same points. The
// receiver's comparator is used; comparing sets built over different
// orderings is a caller bug.
func (s *IntervalSet[P]) Equal(other *IntervalSet[P]) bool {
	if len(s.points) != len(other.points) {
		return false
	}
	for i, p := range s.points {
		if s.cmp(p, other.points[i]) != 0 {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the set.
func (s *IntervalSet[P]) String() string {
	if s.IsEmpty() {
		return "(none)"
	}
	parts := make([]string, 0, len(s.points)/2)
	for iv := range s.Intervals() {
		parts = append(parts, fmt.Sprintf("[%v, %v)", iv.Low, iv.High))
	}
	return strings.Join(parts, " || ")
}

// unionAdd splices [iv.Low, iv.High) into the point list so that every point
// of the current set and of the interval is covered. Whether each boundary
// lands inside or outside the current set (parity of its partition point)
// decides which boundary points survive.
func (s *IntervalSet[P]) unionAdd(iv Interval[P]) {
	if s.cmp(iv.High, iv.Low) == 0 {
		return
	}
	left := s.nPointsBeforeOrAt(iv.Low)
	right := s.nPointsBefore(iv.High)
	startsWithin := left%2 == 1
	endsWithin := right%2 == 1

	var insert []P
	switch {
	case startsWithin && endsWithin:
		// Both boundaries already covered; the spans in between fuse.
	case startsWithin:
		insert = []P{iv.High}
	case endsWithin:
		insert = []P{iv.Low}
	default:
		insert = []P{iv.Low, iv.High}
	}
	s.points = slices.Concat(s.points[:left], insert, s.points[right:])
}

// remove deletes every point of [iv.Low, iv.High) from the set; the dual of
// unionAdd, mirrored by parity.
func (s *IntervalSet[P]) remove(iv Interval[P]) {
	if s.cmp(iv.High, iv.Low) == 0 {
		return
	}
	left := s.nPointsBeforeOrAt(iv.Low)
	right := s.nPointsBefore(iv.High)
	startsWithin := left%2 == 1
	endsWithin := right%2 == 1

	var insert []P
	switch {
	case startsWithin && endsWithin:
		insert = []P{iv.Low, iv.High}
	case startsWithin:
		insert = []P{iv.Low}
	case endsWithin:
		insert = []P{iv.High}
	default:
		// Entirely outside the set already.
	}
	s.points = slices.Concat(s.points[:left], insert, s.points[right:])
}

// normalize restores the canonical representation: zero-width spans are
// dropped and touching spans merged.
func (s *IntervalSet[P]) normalize() {
	cleaned := make([]P, 0, len(s.points))
	for i := 0; i+1 < len(s.points); i += 2 {
		low, high := s.points[i], s.points[i+1]
		if s.cmp(low, high) == 0 {
			continue
		}
		if n := len(cleaned); n > 0 && s.cmp(cleaned[n-1], low) == 0 {
			cleaned[n-1] = high
			continue
		}
		cleaned = append(cleaned, low, high)
	}
	s.points = cleaned
}

// nPointsBefore counts the stored points sorting strictly below p.
func (s *IntervalSet[P]) nPointsBefore(p P) int {
	return sort.Search(len(s.points), func(i int) bool {
		return s.cmp(s.points[i], p) >= 0
	})
}

// nPointsBeforeOrAt counts the stored points sorting at or below p.
func (s *IntervalSet[P]) nPointsBeforeOrAt(p P) int {
	return sort.Search(len(s.points), func(i int) bool {
		return s.cmp(s.points[i], p) > 0
	})
}
