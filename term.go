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

import "fmt"

// SetRelation describes how one term relates to another over the same key.
type SetRelation int

const (
	// RelationDisjoint means the terms are mutually unsatisfiable.
	RelationDisjoint SetRelation = iota
	// RelationOverlap means the terms share some versions but the first
	// does not imply the second.
	RelationOverlap
	// RelationSubset means the first term implies the second.
	RelationSubset
)

// String returns a human-readable representation of the relation.
func (r SetRelation) String() string {
	switch r {
	case RelationDisjoint:
		return "disjoint"
	case RelationOverlap:
		return "overlap"
	case RelationSubset:
		return "subset"
	default:
		return fmt.Sprintf("SetRelation(%d)", int(r))
	}
}

// Term is a signed predicate over a requirement. A positive term is satisfied
// by any version inside the requirement; a negative term is satisfied by any
// version outside it.
//
// Terms are the building blocks of dependency resolution, and like the
// requirements they wrap they are immutable value objects.
type Term[R Requirement[R]] struct {
	Requirement R
	Positive    bool
}

// NewTerm creates a positive term over the requirement.
func NewTerm[R Requirement[R]](req R) Term[R] {
	return Term[R]{Requirement: req, Positive: true}
}

// NewNegativeTerm creates a negative term over the requirement.
func NewNegativeTerm[R Requirement[R]](req R) Term[R] {
	return Term[R]{Requirement: req, Positive: false}
}

// Key returns the underlying requirement's key.
func (t Term[R]) Key() Name {
	return t.Requirement.Key()
}

// Inverse returns the logical negation of the term.
func (t Term[R]) Inverse() Term[R] {
	return Term[R]{Requirement: t.Requirement, Positive: !t.Positive}
}

// Intersect combines two terms over the same key into the term satisfied by
// exactly the versions satisfying both:
//
//	 +A ∩ +B = +(A ∩ B)
//	 -A ∩ -B = -(A ∪ B)
//	 +A ∩ -B = +(A \ B)
//	 -A ∩ +B = +(B \ A)
//
// The negative/negative case is representable only while the union stays
// short of the full universe. A union covering the full universe is not
// detected here: the only check is that the union is non-empty, and an empty
// union panics with *InvariantError.
func (t Term[R]) Intersect(other Term[R]) Term[R] {
	switch {
	case t.Positive && other.Positive:
		return NewTerm(t.Requirement.Intersect(other.Requirement))
	case !t.Positive && !other.Positive:
		un := t.Requirement.Union(other.Requirement)
		invariant(!un.IsEmpty(),
			"unrepresentable union of negative terms %s and %s", t, other)
		return NewNegativeTerm(un)
	case !t.Positive:
		return other.Intersect(t)
	default:
		return NewTerm(t.Requirement.Difference(other.Requirement))
	}
}

// Difference returns the term satisfied by versions satisfying this term but
// not the other.
func (t Term[R]) Difference(other Term[R]) Term[R] {
	return t.Intersect(other.Inverse())
}

// Unsatisfiable reports whether no version can ever satisfy the term. Only a
// positive term over the empty requirement qualifies; a negative term over
// the empty requirement is the tautology.
func (t Term[R]) Unsatisfiable() bool {
	return t.Positive && t.Requirement.IsEmpty()
}

// ImpliedBy reports whether any version satisfying other also satisfies this
// term. Terms over different keys never imply each other.
func (t Term[R]) ImpliedBy(other Term[R]) bool {
	if t.Key() != other.Key() {
		return false
	}
	switch {
	case t.Positive && other.Positive:
		return t.Requirement.ImpliedBy(other.Requirement)
	case t.Positive:
		// A set of excluded versions can never pin down a positive
		// requirement.
		return false
	case other.Positive:
		return Excludes(t.Requirement, other.Requirement)
	default:
		// Contrapositive: -A implied by -B iff A ⊆ B.
		return other.Requirement.ImpliedBy(t.Requirement)
	}
}

// Implies reports whether any version satisfying this term also satisfies
// other.
func (t Term[R]) Implies(other Term[R]) bool {
	return other.ImpliedBy(t)
}

// ExcludesTerm reports whether the two terms are mutually unsatisfiable.
func (t Term[R]) ExcludesTerm(other Term[R]) bool {
	if t.Key() != other.Key() {
		// Unrelated terms cannot exclude each other.
		return false
	}
	switch {
	case t.Positive && other.Positive:
		return Excludes(t.Requirement, other.Requirement)
	case t.Positive:
		return other.ExcludesTerm(t)
	case other.Positive:
		return t.Requirement.ImpliedBy(other.Requirement)
	default:
		// Two negative terms always share the versions outside both.
		return false
	}
}

// RelationTo classifies this term against another over the same key.
func (t Term[R]) RelationTo(other Term[R]) SetRelation {
	switch {
	case t.Implies(other):
		return RelationSubset
	case t.ExcludesTerm(other):
		return RelationDisjoint
	default:
		return RelationOverlap
	}
}

// String returns a human-readable representation of the term.
func (t Term[R]) String() string {
	if t.Positive {
		return t.Requirement.String()
	}
	return fmt.Sprintf("not %s", t.Requirement.String())
}
