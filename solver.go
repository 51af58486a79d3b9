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

	"github.com/samber/lo"
)

// Solve performs dependency resolution over the given root requirements.
//
// The provider is queried synchronously, one requirement at a time, in a
// deterministic order. On success the returned solution lists the selected
// requirements (one positive singleton per key) in decision order. On
// failure the error is an *UnsolvableError carrying the root incompatibility
// of the derivation graph, ready for GenerateReport.
//
// Example:
//
//	provider := NewMemoryProvider()
//	provider.AddPackage("lodash", "1.2.0", "core-js >=2.0.0")
//	provider.AddPackage("core-js", "2.4.0")
//
//	root, _ := ParseSemverRange("lodash", ">=1.0.0, <2.0.0")
//	solution, err := Solve([]SemverRequirement{root}, provider)
func Solve[R Requirement[R]](requirements []R, provider Provider[R], opts ...SolverOption[R]) (Solution[R], error) {
	options := defaultSolverOptions[R]()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	s := &solver[R]{
		provider: provider,
		options:  options,
		store:    newIncompatibilityStore[R](),
		partial:  newPartialSolution[R](),
	}
	for _, req := range requirements {
		s.preloadRoot(req)
	}
	return s.solve()
}

// conflictResult classifies an incompatibility against the partial solution.
type conflictResult int

const (
	// noConflict: some term is disjoint from the partial solution (the
	// incompatibility is already falsified), or more than one term is
	// still undetermined.
	noConflict conflictResult = iota
	// almostConflict: exactly one term is undetermined while all others
	// are satisfied - the inverse of that term is entailed.
	almostConflict
	// conflictFound: every term is satisfied, so the incompatibility is
	// presently violated.
	conflictFound
)

// solver drives unit propagation, speculation, and conflict resolution over
// the incompatibility store and the partial-solution ledger.
type solver[R Requirement[R]] struct {
	provider Provider[R]
	options  SolverOptions[R]
	store    *incompatibilityStore[R]
	partial  *partialSolution[R]
	changed  []Name // LIFO stack of keys needing propagation
	steps    int
}

// preloadRoot asserts a root requirement and queues its key.
func (s *solver[R]) preloadRoot(req R) {
	s.store.add(NewRootIncompatibility(req))
	s.pushChanged(req.Key())
}

func (s *solver[R]) pushChanged(key Name) {
	s.changed = append(s.changed, key)
}

func (s *solver[R]) popChanged() Name {
	key := s.changed[len(s.changed)-1]
	s.changed = s.changed[:len(s.changed)-1]
	return key
}

// solve alternates propagation and speculation until no key is left to
// process and no requirement remains undecided.
func (s *solver[R]) solve() (Solution[R], error) {
	for len(s.changed) > 0 {
		if err := s.unitPropagation(); err != nil {
			return nil, err
		}
		if err := s.speculate(); err != nil {
			return nil, err
		}
	}
	return Solution[R](s.partial.solution()), nil
}

// countStep enforces the MaxSteps runaway guard.
func (s *solver[R]) countStep() error {
	s.steps++
	if s.options.MaxSteps > 0 && s.steps > s.options.MaxSteps {
		return ErrIterationLimit{Steps: s.options.MaxSteps}
	}
	return nil
}

// unitPropagation drains the changed stack. The most recently changed key is
// processed first so local implications are fully explored before moving on.
func (s *solver[R]) unitPropagation() error {
	for len(s.changed) > 0 {
		if err := s.countStep(); err != nil {
			return err
		}
		key := s.popChanged()

		// Conflict resolution appends to the store mid-iteration, so
		// walk a snapshot of the per-key list.
		for _, ic := range slices.Clone(s.store.forKey(key)) {
			proceed, err := s.propagateIncompatibility(ic)
			if err != nil {
				return err
			}
			if !proceed {
				break
			}
		}
	}
	return nil
}

// propagateIncompatibility applies one incompatibility to the partial
// solution. Returns false when a conflict was resolved and propagation must
// restart from the freshly derived key.
func (s *solver[R]) propagateIncompatibility(ic *Incompatibility[R]) (bool, error) {
	switch result, unit := s.checkConflict(ic); result {
	case almostConflict:
		inverse := unit.Inverse()
		s.options.Logger.OnDerive(inverse)
		s.partial.recordDerivation(inverse, ic)
		s.pushChanged(inverse.Key())
		return true, nil

	case conflictFound:
		cause, err := s.resolveConflict(ic)
		if err != nil {
			return false, err
		}
		result, unit := s.checkConflict(cause)
		invariant(result == almostConflict,
			"conflict resolution must leave a unit incompatibility to derive from (ic=%s, cause=%s)", ic, cause)
		inverse := unit.Inverse()
		s.options.Logger.OnDerive(inverse)
		s.partial.recordDerivation(inverse, cause)
		s.changed = s.changed[:0]
		s.pushChanged(inverse.Key())
		return false, nil

	default:
		return true, nil
	}
}

// checkConflict classifies ic against the partial solution and, for an
// almost-conflict, returns the single undetermined term.
func (s *solver[R]) checkConflict(ic *Incompatibility[R]) (conflictResult, Term[R]) {
	var unit *Term[R]
	for _, term := range ic.Terms {
		switch s.partial.relationTo(term) {
		case RelationDisjoint:
			// Already falsified; nothing to learn here.
			var zero Term[R]
			return noConflict, zero
		case RelationOverlap:
			if unit != nil {
				// Two undetermined terms: too ambiguous to conclude.
				var zero Term[R]
				return noConflict, zero
			}
			t := term
			unit = &t
		case RelationSubset:
			// Satisfied, keep scanning.
		}
	}

	if unit == nil {
		var zero Term[R]
		return conflictFound, zero
	}
	return almostConflict, *unit
}

// speculate makes at most one decision: it picks the next unsatisfied
// requirement, asks the provider for a candidate, records the candidate's
// dependency incompatibilities, and selects the candidate unless one of them
// conflicts with the partial solution right away (in which case the next
// propagation pass discovers the conflict).
func (s *solver[R]) speculate() error {
	if err := s.countStep(); err != nil {
		return err
	}

	req, ok := s.partial.nextUnsatisfied()
	if !ok {
		return nil
	}

	candidate, err := s.provider.BestCandidate(req)
	if err != nil {
		return err
	}
	if candidate == nil {
		// No version matches: the requirement is incompatible with any
		// full solution.
		s.store.add(NewUnavailableIncompatibility(req))
		s.pushChanged(req.Key())
		return nil
	}

	chosen := candidate.Chosen
	s.options.Logger.OnConsider(chosen, req)

	foundConflict := false
	for _, dep := range candidate.Deps {
		s.options.Logger.OnDependency(chosen, dep)
		if dep.Key() == chosen.Key() {
			return &SelfDependencyError{Package: chosen.Key()}
		}
		ic := s.store.add(NewDependencyIncompatibility(chosen, dep))

		conflicts := lo.EveryBy(ic.Terms, func(term Term[R]) bool {
			return term.Key() == chosen.Key() || s.partial.satisfies(term)
		})
		if conflicts {
			s.options.Logger.OnConflict(ic)
		}
		foundConflict = foundConflict || conflicts
	}

	if !foundConflict {
		s.options.Logger.OnSelect(chosen, req)
		s.partial.recordDecision(NewTerm(chosen))
		s.options.Logger.OnPartialSolution(s.partial.snapshot())
	}
	s.pushChanged(chosen.Key())
	return nil
}

// resolveConflict synthesizes incompatibilities from a presently violated one
// until backtracking can make it unit, or proves the problem unsolvable.
//
// Each round locates the satisfier of the current incompatibility. If the
// satisfier is a decision, or is the unique assignment at its level that
// flips the incompatibility, the ledger is truncated and the incompatibility
// is learnt. Otherwise the satisfier's cause is resolved against it and the
// loop continues with the combined incompatibility.
func (s *solver[R]) resolveConflict(ic *Incompatibility[R]) (*Incompatibility[R], error) {
	s.options.Logger.OnConflict(ic)
	for {
		bt := s.partial.createBacktrackInfo(ic)
		if bt == nil {
			return nil, NewUnsolvableError(ic)
		}

		if bt.satisfier.isDecision() || bt.prevSatLevel < bt.satisfier.decisionLevel {
			s.options.Logger.OnBacktrack(bt.satisfier.term)
			s.partial.backtrackTo(bt.prevSatLevel)
			return ic, nil
		}

		invariant(bt.satisfier.cause != nil, "derived assignment %s missing cause", bt.satisfier.describe())

		satisfierKey := bt.term.Key()
		newTerms := make([]Term[R], 0, len(ic.Terms))
		for _, term := range ic.Terms {
			if term.Key() != satisfierKey {
				newTerms = append(newTerms, term)
			}
		}
		if bt.difference != nil {
			newTerms = append(newTerms, bt.difference.Inverse())
		}
		for _, term := range newTerms {
			invariant(s.partial.satisfies(term),
				"resolved incompatibility term %s is not satisfied by the partial solution", term)
		}

		ic = s.store.add(NewConflictIncompatibility(newTerms, ic, bt.satisfier.cause))
	}
}
