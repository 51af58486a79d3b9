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
	"fmt"
	"iter"
	"strings"

	"github.com/samber/lo"
)

// Clause is the human-renderable statement extracted from one
// incompatibility's term shape.
type Clause[R Requirement[R]] interface {
	fmt.Stringer
	clause()
}

// DependencyClause states that selecting Dependent requires DependsOn.
type DependencyClause[R Requirement[R]] struct {
	Dependent R
	DependsOn R
}

func (c DependencyClause[R]) clause() {}
func (c DependencyClause[R]) String() string {
	return fmt.Sprintf("%s requires %s", c.Dependent, c.DependsOn)
}

// ConflictClause states that two selections cannot coexist.
type ConflictClause[R Requirement[R]] struct {
	A R
	B R
}

func (c ConflictClause[R]) clause() {}
func (c ConflictClause[R]) String() string {
	return fmt.Sprintf("%s conflicts with %s", c.A, c.B)
}

// DisallowedClause states that a requirement can never be selected.
type DisallowedClause[R Requirement[R]] struct {
	Requirement R
}

func (c DisallowedClause[R]) clause() {}
func (c DisallowedClause[R]) String() string {
	return fmt.Sprintf("%s is disallowed", c.Requirement)
}

// UnavailableClause states that the provider has no candidate for the
// requirement.
type UnavailableClause[R Requirement[R]] struct {
	Requirement R
}

func (c UnavailableClause[R]) clause() {}
func (c UnavailableClause[R]) String() string {
	return fmt.Sprintf("no versions of %s are available", c.Requirement)
}

// NeededClause states that a requirement must be satisfied.
type NeededClause[R Requirement[R]] struct {
	Requirement R
}

func (c NeededClause[R]) clause() {}
func (c NeededClause[R]) String() string {
	return fmt.Sprintf("%s is needed", c.Requirement)
}

// CompromiseClause states that two selections jointly force a third
// requirement.
type CompromiseClause[R Requirement[R]] struct {
	Left   R
	Right  R
	Result R
}

func (c CompromiseClause[R]) clause() {}
func (c CompromiseClause[R]) String() string {
	return fmt.Sprintf("%s and %s require %s", c.Left, c.Right, c.Result)
}

// NoSolutionClause is the terminal conclusion of an unsolvable problem.
type NoSolutionClause[R Requirement[R]] struct{}

func (c NoSolutionClause[R]) clause() {}
func (c NoSolutionClause[R]) String() string {
	return "no solution exists"
}

// ReportItem is one element of the linearized derivation stream.
type ReportItem[R Requirement[R]] interface {
	reportItem()
}

// Premise introduces a fact used by the next conclusion.
type Premise[R Requirement[R]] struct {
	Clause Clause[R]
}

func (Premise[R]) reportItem() {}

// Conclusion closes a derivation step.
type Conclusion[R Requirement[R]] struct {
	Clause Clause[R]
}

func (Conclusion[R]) reportItem() {}

// Separator marks a pause between two independent derivation threads.
type Separator[R Requirement[R]] struct{}

func (Separator[R]) reportItem() {}

// GenerateReport linearizes the incompatibility DAG rooted at ic into a
// stream of premises and conclusions suitable for rendering a proof of
// unsolvability.
//
// The returned sequence is restartable: each range over it begins a fresh
// traversal, so renderers may take multiple passes.
func GenerateReport[R Requirement[R]](ic *Incompatibility[R]) iter.Seq[ReportItem[R]] {
	return func(yield func(ReportItem[R]) bool) {
		emitDerived(ic, yield)
	}
}

// emitDerived walks a conflict-derived incompatibility, dispatching on
// whether each cause is itself derived or an external statement. Returns
// false when the consumer stopped the iteration.
func emitDerived[R Requirement[R]](ic *Incompatibility[R], yield func(ReportItem[R]) bool) bool {
	invariant(ic.IsDerived(), "report traversal reached a non-derived root %s", ic)

	a, b := ic.Cause1, ic.Cause2
	switch {
	case a.IsDerived() && b.IsDerived():
		return emitComplex(ic, a, b, yield)
	case a.IsDerived():
		return emitPartial(ic, a, b, yield)
	case b.IsDerived():
		return emitPartial(ic, b, a, yield)
	default:
		return yieldPremise(a, yield) &&
			yieldPremise(b, yield) &&
			yield(Conclusion[R]{Clause: clauseFrom(ic)})
	}
}

// emitPartial handles one derived and one external cause. When the derived
// child's own children are mixed, the derived grandchild is pulled up first
// and the external grandchild threaded as a local premise, flattening the
// rendered tree.
func emitPartial[R Requirement[R]](ic, derived, external *Incompatibility[R], yield func(ReportItem[R]) bool) bool {
	dLeft, dRight := derived.Cause1, derived.Cause2
	switch {
	case dLeft.IsDerived() && !dRight.IsDerived():
		return emitDerived(dLeft, yield) &&
			yieldPremise(dRight, yield) &&
			yieldPremise(external, yield) &&
			yield(Conclusion[R]{Clause: clauseFrom(ic)})
	case !dLeft.IsDerived() && dRight.IsDerived():
		return emitDerived(dRight, yield) &&
			yieldPremise(dLeft, yield) &&
			yieldPremise(external, yield) &&
			yield(Conclusion[R]{Clause: clauseFrom(ic)})
	default:
		return emitDerived(derived, yield) &&
			yieldPremise(external, yield) &&
			yield(Conclusion[R]{Clause: clauseFrom(ic)})
	}
}

// emitComplex handles two derived causes. A side whose children are both
// external is hoisted for a tidier tree; otherwise both recursions are
// emitted with separators between the threads.
func emitComplex[R Requirement[R]](ic, left, right *Incompatibility[R], yield func(ReportItem[R]) bool) bool {
	switch {
	case !left.Cause1.IsDerived() && !left.Cause2.IsDerived():
		return emitDerived(right, yield) &&
			emitDerived(left, yield) &&
			yield(Conclusion[R]{Clause: clauseFrom(ic)})
	case !right.Cause1.IsDerived() && !right.Cause2.IsDerived():
		return emitDerived(left, yield) &&
			emitDerived(right, yield) &&
			yield(Conclusion[R]{Clause: clauseFrom(ic)})
	default:
		return emitDerived(left, yield) &&
			yield(Separator[R]{}) &&
			emitDerived(right, yield) &&
			yield(Separator[R]{}) &&
			yieldPremise(left, yield) &&
			yield(Conclusion[R]{Clause: clauseFrom(ic)})
	}
}

func yieldPremise[R Requirement[R]](ic *Incompatibility[R], yield func(ReportItem[R]) bool) bool {
	clause := clauseFrom(ic)
	_, noSolution := clause.(NoSolutionClause[R])
	invariant(!noSolution, "a premise cannot be the no-solution clause (%s)", ic)
	return yield(Premise[R]{Clause: clause})
}

// clauseFrom extracts the renderable clause for an incompatibility from its
// term shape. Any shape outside the table is an internal error.
func clauseFrom[R Requirement[R]](ic *Incompatibility[R]) Clause[R] {
	positive, negative := lo.FilterReject(ic.Terms, func(t Term[R], _ int) bool {
		return t.Positive
	})

	switch len(ic.Terms) {
	case 0:
		return NoSolutionClause[R]{}

	case 1:
		term := ic.Terms[0]
		if !term.Positive {
			return NeededClause[R]{Requirement: term.Requirement}
		}
		if ic.Kind == CauseUnavailable {
			return UnavailableClause[R]{Requirement: term.Requirement}
		}
		return DisallowedClause[R]{Requirement: term.Requirement}

	case 2:
		switch len(positive) {
		case 1:
			return DependencyClause[R]{
				Dependent: positive[0].Requirement,
				DependsOn: negative[0].Requirement,
			}
		case 2:
			return ConflictClause[R]{
				A: positive[0].Requirement,
				B: positive[1].Requirement,
			}
		default:
			invariant(false, "both terms of %s are negative", ic)
		}

	case 3:
		invariant(len(positive) == 2 && len(negative) == 1,
			"unhandled three-term incompatibility %s in error reporting", ic)
		return CompromiseClause[R]{
			Left:   positive[0].Requirement,
			Right:  positive[1].Requirement,
			Result: negative[0].Requirement,
		}
	}

	invariant(false, "unhandled incompatibility shape %s in error reporting", ic)
	return nil
}

// Reporter formats the derivation graph of an unsolvable problem into a
// human-readable message.
type Reporter[R Requirement[R]] interface {
	// Report renders the incompatibility DAG rooted at ic.
	Report(ic *Incompatibility[R]) string
}

// DefaultReporter renders the report stream one step per line.
type DefaultReporter[R Requirement[R]] struct{}

// Report implements Reporter.
func (r *DefaultReporter[R]) Report(ic *Incompatibility[R]) string {
	if ic == nil {
		return "no solution found"
	}
	if !ic.IsDerived() {
		// An external statement alone is the whole explanation.
		return clauseFrom(ic).String()
	}

	var lines []string
	for item := range GenerateReport(ic) {
		switch it := item.(type) {
		case Premise[R]:
			lines = append(lines, "Because "+it.Clause.String()+",")
		case Conclusion[R]:
			if _, ok := it.Clause.(NoSolutionClause[R]); ok {
				lines = append(lines, "version solving failed.")
			} else {
				lines = append(lines, "it follows that "+it.Clause.String()+".")
			}
		case Separator[R]:
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

var _ Reporter[SemverRequirement] = (*DefaultReporter[SemverRequirement])(nil)
