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
	"strings"
)

// partialSolution is the ordered, append-only ledger of decisions and
// derivations made during solving, together with the current decision level.
//
// The ledger grows as the solver:
//  1. Makes decisions (selects candidate versions)
//  2. Propagates constraints (derives new terms via unit propagation)
//  3. Backtracks (truncates to an earlier decision level after conflicts)
//
// Assignments are indexed both globally (for satisfier ordering) and per key;
// the per-key accumulated term answers relation queries in O(1) per term.
type partialSolution[R Requirement[R]] struct {
	assignments []*assignment[R]
	perKey      map[Name][]*assignment[R]
	derived     map[Name]Term[R] // accumulated intersection per key
	keyOrder    []Name           // keys in first-assignment order
	decisionLvl int
	nextIndex   int
}

func newPartialSolution[R Requirement[R]]() *partialSolution[R] {
	return &partialSolution[R]{
		perKey:  make(map[Name][]*assignment[R]),
		derived: make(map[Name]Term[R]),
	}
}

// append records an assignment, updating the per-key index and the
// accumulated term for its key.
func (ps *partialSolution[R]) append(a *assignment[R]) {
	ps.assignments = append(ps.assignments, a)

	key := a.term.Key()
	if _, seen := ps.perKey[key]; !seen {
		ps.keyOrder = append(ps.keyOrder, key)
	}
	ps.perKey[key] = append(ps.perKey[key], a)

	if acc, ok := ps.derived[key]; ok {
		ps.derived[key] = acc.Intersect(a.term)
	} else {
		ps.derived[key] = a.term
	}
	ps.nextIndex++
}

// recordDecision appends an explicitly selected term, opening a new decision
// level.
func (ps *partialSolution[R]) recordDecision(term Term[R]) *assignment[R] {
	ps.decisionLvl++
	a := &assignment[R]{
		term:          term,
		kind:          assignmentDecision,
		decisionLevel: ps.decisionLvl,
		index:         ps.nextIndex,
	}
	ps.append(a)
	return a
}

// recordDerivation appends a term entailed by unit propagation at the current
// decision level, with the incompatibility that caused it.
func (ps *partialSolution[R]) recordDerivation(term Term[R], cause *Incompatibility[R]) *assignment[R] {
	a := &assignment[R]{
		term:          term,
		kind:          assignmentDerivation,
		cause:         cause,
		decisionLevel: ps.decisionLvl,
		index:         ps.nextIndex,
	}
	ps.append(a)
	return a
}

// relationTo classifies term against the accumulated term for its key.
// A key with no assignments yet is unconstrained: Overlap.
func (ps *partialSolution[R]) relationTo(term Term[R]) SetRelation {
	acc, ok := ps.derived[term.Key()]
	if !ok {
		return RelationOverlap
	}
	return acc.RelationTo(term)
}

// satisfies reports whether the accumulated state implies term.
func (ps *partialSolution[R]) satisfies(term Term[R]) bool {
	return ps.relationTo(term) == RelationSubset
}

// hasDecision reports whether a decision assignment exists for the key.
func (ps *partialSolution[R]) hasDecision(key Name) bool {
	for _, a := range ps.perKey[key] {
		if a.isDecision() {
			return true
		}
	}
	return false
}

// nextUnsatisfied returns a requirement to query the provider for: the first
// key in assignment-insertion order that is positively required but has no
// decision yet. Returns false when every positively required key is decided.
func (ps *partialSolution[R]) nextUnsatisfied() (R, bool) {
	for _, key := range ps.keyOrder {
		acc, ok := ps.derived[key]
		if !ok || !acc.Positive {
			continue
		}
		if ps.hasDecision(key) {
			continue
		}
		return acc.Requirement, true
	}
	var zero R
	return zero, false
}

// backtrackInfo captures the satisfier bookkeeping for one round of conflict
// resolution.
type backtrackInfo[R Requirement[R]] struct {
	// satisfier is the last assignment of the earliest ledger prefix that
	// satisfies every term of the incompatibility.
	satisfier *assignment[R]
	// term is the incompatibility's term whose key matches the satisfier.
	term Term[R]
	// difference is the satisfier's term minus the incompatibility term,
	// or nil when the satisfier's term is already subsumed by it.
	difference *Term[R]
	// prevSatLevel is the decision level at which the incompatibility minus
	// the satisfier's term is already satisfied, floored at 0.
	prevSatLevel int
}

// createBacktrackInfo walks the ledger in order, intersecting assignments
// with the matching incompatibility terms, to locate the satisfier and the
// backtracking target. Returns nil when no prefix satisfies every term -
// in particular for the empty incompatibility - which signals a root-level
// contradiction.
func (ps *partialSolution[R]) createBacktrackInfo(ic *Incompatibility[R]) *backtrackInfo[R] {
	if len(ic.Terms) == 0 {
		return nil
	}

	icTerms := make(map[Name]Term[R], len(ic.Terms))
	for _, t := range ic.Terms {
		icTerms[t.Key()] = t
	}

	acc := make(map[Name]Term[R], len(ic.Terms))
	satisfied := make(map[Name]bool, len(ic.Terms))

	var satisfier *assignment[R]
	satisfierIdx := -1
	for i, a := range ps.assignments {
		key := a.term.Key()
		icTerm, ok := icTerms[key]
		if !ok {
			continue
		}
		if cur, ok := acc[key]; ok {
			acc[key] = cur.Intersect(a.term)
		} else {
			acc[key] = a.term
		}
		if !satisfied[key] && acc[key].Implies(icTerm) {
			satisfied[key] = true
			if len(satisfied) == len(icTerms) {
				satisfier = a
				satisfierIdx = i
				break
			}
		}
	}
	if satisfier == nil {
		return nil
	}

	satisfierKey := satisfier.term.Key()
	icTerm := icTerms[satisfierKey]

	var difference *Term[R]
	if !satisfier.term.Implies(icTerm) {
		diff := satisfier.term.Difference(icTerm)
		difference = &diff
	}

	return &backtrackInfo[R]{
		satisfier:    satisfier,
		term:         icTerm,
		difference:   difference,
		prevSatLevel: ps.previousSatisfierLevel(icTerms, satisfierKey, satisfierIdx),
	}
}

// previousSatisfierLevel finds the decision level of the assignment that
// completes satisfaction of the incompatibility minus the satisfier's term,
// considering only the ledger prefix before the satisfier. Floor 0.
func (ps *partialSolution[R]) previousSatisfierLevel(icTerms map[Name]Term[R], satisfierKey Name, satisfierIdx int) int {
	if len(icTerms) <= 1 {
		return 0
	}

	acc := make(map[Name]Term[R], len(icTerms))
	satisfied := make(map[Name]bool, len(icTerms))
	for i := 0; i < satisfierIdx; i++ {
		a := ps.assignments[i]
		key := a.term.Key()
		icTerm, ok := icTerms[key]
		if !ok || key == satisfierKey {
			continue
		}
		if cur, ok := acc[key]; ok {
			acc[key] = cur.Intersect(a.term)
		} else {
			acc[key] = a.term
		}
		if !satisfied[key] && acc[key].Implies(icTerm) {
			satisfied[key] = true
			if len(satisfied) == len(icTerms)-1 {
				return a.decisionLevel
			}
		}
	}
	return 0
}

// backtrackTo drops every assignment strictly above level and rebuilds the
// per-key state from the survivors.
func (ps *partialSolution[R]) backtrackTo(level int) {
	if level < 0 {
		level = 0
	}

	kept := ps.assignments[:0]
	for _, a := range ps.assignments {
		if a.decisionLevel <= level {
			kept = append(kept, a)
		}
	}
	ps.assignments = kept
	ps.decisionLvl = level

	ps.perKey = make(map[Name][]*assignment[R])
	ps.derived = make(map[Name]Term[R])
	ps.keyOrder = ps.keyOrder[:0]
	for _, a := range ps.assignments {
		key := a.term.Key()
		if _, seen := ps.perKey[key]; !seen {
			ps.keyOrder = append(ps.keyOrder, key)
		}
		ps.perKey[key] = append(ps.perKey[key], a)
		if acc, ok := ps.derived[key]; ok {
			ps.derived[key] = acc.Intersect(a.term)
		} else {
			ps.derived[key] = a.term
		}
	}
}

// solution returns the positive decision terms' requirements in the order the
// decisions were made.
func (ps *partialSolution[R]) solution() []R {
	result := make([]R, 0, len(ps.assignments))
	for _, a := range ps.assignments {
		if a.isDecision() && a.term.Positive {
			result = append(result, a.term.Requirement)
		}
	}
	return result
}

// snapshot returns a human-readable dump of the ledger for debug logging.
func (ps *partialSolution[R]) snapshot() string {
	var b strings.Builder
	for i, a := range ps.assignments {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(a.describe())
	}
	if b.Len() == 0 {
		return "<empty>"
	}
	return b.String()
}
