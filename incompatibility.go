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
	"slices"
	"strings"
)

// CauseKind tags the provenance of an incompatibility.
type CauseKind int

const (
	// CauseRoot states that a root requirement must be satisfied. The
	// incompatibility holds a single negative term over that requirement.
	CauseRoot CauseKind = iota
	// CauseUnavailable states that the provider has no candidate for the
	// requirement. Single positive term.
	CauseUnavailable
	// CauseDependency states that a selected version implies a dependency
	// requirement. Two terms: positive on the parent, negative on the child.
	CauseDependency
	// CauseConflict marks an incompatibility derived from two prior ones
	// during conflict resolution; Cause1 and Cause2 point at them.
	CauseConflict
)

// Incompatibility is an immutable conjunction of terms over distinct keys,
// asserted to be jointly unsatisfiable given the rules seen so far. Terms
// sharing a key are folded by intersection at construction.
//
// Incompatibilities form a DAG: conflict-derived nodes reference the two
// incompatibilities they were resolved from, rooted at the explanation handed
// to the report generator when solving fails.
type Incompatibility[R Requirement[R]] struct {
	Terms []Term[R]
	Kind  CauseKind

	// Cause1 and Cause2 are set for derived incompatibilities (CauseConflict).
	Cause1 *Incompatibility[R]
	Cause2 *Incompatibility[R]

	// Parent and Child are set for CauseDependency.
	Parent R
	Child  R
}

// NewRootIncompatibility records that the root requirement req must hold.
func NewRootIncompatibility[R Requirement[R]](req R) *Incompatibility[R] {
	return &Incompatibility[R]{
		Terms: simplifyTerms([]Term[R]{NewNegativeTerm(req)}),
		Kind:  CauseRoot,
	}
}

// NewUnavailableIncompatibility records that no candidate exists for req.
func NewUnavailableIncompatibility[R Requirement[R]](req R) *Incompatibility[R] {
	return &Incompatibility[R]{
		Terms: simplifyTerms([]Term[R]{NewTerm(req)}),
		Kind:  CauseUnavailable,
	}
}

// NewDependencyIncompatibility records that selecting parent requires child:
// {+parent, not child}.
func NewDependencyIncompatibility[R Requirement[R]](parent, child R) *Incompatibility[R] {
	return &Incompatibility[R]{
		Terms:  simplifyTerms([]Term[R]{NewTerm(parent), NewNegativeTerm(child)}),
		Kind:   CauseDependency,
		Parent: parent,
		Child:  child,
	}
}

// NewConflictIncompatibility derives an incompatibility from two prior ones.
func NewConflictIncompatibility[R Requirement[R]](terms []Term[R], cause1, cause2 *Incompatibility[R]) *Incompatibility[R] {
	return &Incompatibility[R]{
		Terms:  simplifyTerms(terms),
		Kind:   CauseConflict,
		Cause1: cause1,
		Cause2: cause2,
	}
}

// IsDerived reports whether the incompatibility was produced by conflict
// resolution rather than stated externally.
func (ic *Incompatibility[R]) IsDerived() bool {
	return ic.Kind == CauseConflict
}

// String returns a human-readable representation of the incompatibility.
func (ic *Incompatibility[R]) String() string {
	if len(ic.Terms) == 0 {
		return "version solving failed"
	}
	if len(ic.Terms) == 1 {
		return ic.Terms[0].String() + " is forbidden"
	}
	if ic.Kind == CauseDependency {
		return ic.Parent.String() + " depends on " + ic.Child.String()
	}

	parts := make([]string, 0, len(ic.Terms))
	for _, term := range ic.Terms {
		parts = append(parts, term.String())
	}
	return strings.Join(parts, " and ") + " are incompatible"
}

// simplifyTerms folds terms sharing a key into a single term by intersection,
// keeping keys in sorted order for deterministic output. A fold that collapses
// to an unsatisfiable term means the incompatibility would have been trivially
// true, which the algorithm never constructs.
func simplifyTerms[R Requirement[R]](terms []Term[R]) []Term[R] {
	sorted := slices.Clone(terms)
	slices.SortStableFunc(sorted, func(a, b Term[R]) int {
		return compareNames(a.Key(), b.Key())
	})

	folded := make([]Term[R], 0, len(sorted))
	for _, term := range sorted {
		if n := len(folded); n > 0 && folded[n-1].Key() == term.Key() {
			isect := folded[n-1].Intersect(term)
			invariant(!isect.Unsatisfiable(),
				"empty intersection folding terms %s and %s", folded[n-1], term)
			folded[n-1] = isect
			continue
		}
		folded = append(folded, term)
	}
	return folded
}
