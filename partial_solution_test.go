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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartialSolutionRelations(t *testing.T) {
	t.Parallel()

	ps := newPartialSolution[intReq]()
	require.Equal(t, RelationOverlap, ps.relationTo(NewTerm(vreq("foo", 1))),
		"an unconstrained key overlaps everything")

	root := NewRootIncompatibility(vreq("foo", 1, 2, 3))
	ps.recordDerivation(NewTerm(vreq("foo", 1, 2, 3)), root)

	require.True(t, ps.satisfies(NewTerm(rreq("foo", 1, 10))))
	require.Equal(t, RelationOverlap, ps.relationTo(NewTerm(vreq("foo", 1))))
	require.Equal(t, RelationDisjoint, ps.relationTo(NewTerm(vreq("foo", 9))))

	// Terms accumulate by intersection.
	ps.recordDerivation(NewNegativeTerm(vreq("foo", 2)), root)
	require.True(t, ps.satisfies(NewTerm(vreq("foo", 1, 3))))
	require.Equal(t, RelationDisjoint, ps.relationTo(NewTerm(vreq("foo", 2))))
}

func TestPartialSolutionDecisionLevels(t *testing.T) {
	t.Parallel()

	ps := newPartialSolution[intReq]()
	root := NewRootIncompatibility(vreq("foo", 1, 2))

	ps.recordDerivation(NewTerm(vreq("foo", 1, 2)), root)
	require.Equal(t, 0, ps.decisionLvl, "derivations inherit the current level")

	ps.recordDecision(NewTerm(vreq("foo", 1)))
	require.Equal(t, 1, ps.decisionLvl, "decisions open a new level")

	ps.recordDerivation(NewTerm(vreq("bar", 3)), root)
	require.Equal(t, 1, ps.assignments[len(ps.assignments)-1].decisionLevel)

	ps.recordDecision(NewTerm(vreq("bar", 3)))
	require.Equal(t, 2, ps.decisionLvl)
}

func TestPartialSolutionNextUnsatisfied(t *testing.T) {
	t.Parallel()

	ps := newPartialSolution[intReq]()
	root := NewRootIncompatibility(vreq("foo", 1, 2))

	_, ok := ps.nextUnsatisfied()
	require.False(t, ok, "empty ledger has nothing to satisfy")

	ps.recordDerivation(NewTerm(vreq("foo", 1, 2)), root)
	ps.recordDerivation(NewTerm(vreq("bar", 3, 4)), root)

	req, ok := ps.nextUnsatisfied()
	require.True(t, ok)
	require.Equal(t, "foo", req.Key().Value(), "keys are visited in insertion order")

	ps.recordDecision(NewTerm(vreq("foo", 1)))
	req, ok = ps.nextUnsatisfied()
	require.True(t, ok)
	require.Equal(t, "bar", req.Key().Value())

	ps.recordDecision(NewTerm(vreq("bar", 3)))
	_, ok = ps.nextUnsatisfied()
	require.False(t, ok, "every positive requirement is decided")

	// A purely negative constraint does not demand a decision.
	ps.recordDerivation(NewNegativeTerm(vreq("baz", 9)), root)
	_, ok = ps.nextUnsatisfied()
	require.False(t, ok)
}

func TestPartialSolutionBacktrack(t *testing.T) {
	t.Parallel()

	ps := newPartialSolution[intReq]()
	root := NewRootIncompatibility(vreq("foo", 1, 2))

	ps.recordDerivation(NewTerm(vreq("foo", 1, 2)), root)
	ps.recordDecision(NewTerm(vreq("foo", 1)))
	ps.recordDerivation(NewTerm(vreq("bar", 3, 4)), root)
	ps.recordDecision(NewTerm(vreq("bar", 3)))
	ps.recordDerivation(NewNegativeTerm(vreq("baz", 5)), root)
	require.Len(t, ps.assignments, 5)

	ps.backtrackTo(1)

	require.Equal(t, 1, ps.decisionLvl)
	require.Len(t, ps.assignments, 3, "level-2 entries are dropped")
	require.True(t, ps.hasDecision(MakeName("foo")))
	require.False(t, ps.hasDecision(MakeName("bar")))
	require.Equal(t, RelationOverlap, ps.relationTo(NewNegativeTerm(vreq("baz", 5))),
		"baz state is rebuilt from the survivors")

	// Level-0 derivations survive a backtrack to the root.
	ps.backtrackTo(0)
	require.Len(t, ps.assignments, 1)
	require.True(t, ps.satisfies(NewTerm(vreq("foo", 1, 2))))
}

func TestPartialSolutionBacktrackInfoDerivationSatisfier(t *testing.T) {
	t.Parallel()

	ps := newPartialSolution[intReq]()
	rootFoo := NewRootIncompatibility(vreq("foo", 1, 2))
	depBar := NewDependencyIncompatibility(vreq("foo", 1), vreq("bar", 5, 6))

	ps.recordDerivation(NewTerm(vreq("foo", 1, 2)), rootFoo)
	ps.recordDecision(NewTerm(vreq("foo", 1)))
	ps.recordDerivation(NewTerm(vreq("bar", 5, 6)), depBar)

	// {+foo 1, not bar {3,4}} is fully violated: foo is pinned to 1 and
	// bar is known to live outside {3,4}.
	violated := NewDependencyIncompatibility(vreq("foo", 1), vreq("bar", 3, 4))
	bt := ps.createBacktrackInfo(violated)
	require.NotNil(t, bt)
	require.False(t, bt.satisfier.isDecision())
	require.Equal(t, "bar", bt.satisfier.term.Key().Value())
	require.Equal(t, 1, bt.satisfier.decisionLevel)
	require.Equal(t, 1, bt.prevSatLevel, "foo's side is satisfied at level 1")
	require.Nil(t, bt.difference, "the satisfier already implies the matching term")

	// An incompatibility nothing in the ledger satisfies yields nil.
	missing := NewUnavailableIncompatibility(vreq("quux", 1))
	require.Nil(t, ps.createBacktrackInfo(missing))

	// The empty incompatibility is the root-level contradiction.
	empty := NewConflictIncompatibility(nil, violated, depBar)
	require.Nil(t, ps.createBacktrackInfo(empty))
}

func TestPartialSolutionBacktrackInfoDecisionSatisfier(t *testing.T) {
	t.Parallel()

	ps := newPartialSolution[intReq]()
	root := NewRootIncompatibility(vreq("bar", 5, 6))

	ps.recordDerivation(NewTerm(vreq("bar", 5, 6)), root)
	ps.recordDecision(NewTerm(vreq("bar", 5)))

	violated := NewUnavailableIncompatibility(vreq("bar", 5))
	bt := ps.createBacktrackInfo(violated)
	require.NotNil(t, bt)
	require.True(t, bt.satisfier.isDecision())
	require.Equal(t, 1, bt.satisfier.decisionLevel)
	require.Equal(t, 0, bt.prevSatLevel, "a single-term incompatibility floors at level 0")
}

func TestPartialSolutionBacktrackInfoDifference(t *testing.T) {
	t.Parallel()

	ps := newPartialSolution[intReq]()
	root := NewRootIncompatibility(vreq("bar", 1, 2, 3))

	// The accumulated range {1,2,3} lies inside the violated term's range
	// {1,2,3,4,5}: nothing of the satisfier's term is left over.
	ps.recordDerivation(NewTerm(vreq("bar", 1, 2, 3)), root)

	violated := NewUnavailableIncompatibility(vreq("bar", 1, 2, 3, 4, 5))
	bt := ps.createBacktrackInfo(violated)
	require.NotNil(t, bt)
	require.False(t, bt.satisfier.isDecision())
	require.Nil(t, bt.difference)

	// Now a satisfier whose own term is wider than the matching ic term.
	ps2 := newPartialSolution[intReq]()
	ps2.recordDerivation(NewTerm(vreq("bar", 1, 2)), root)
	ps2.recordDerivation(NewNegativeTerm(vreq("bar", 2)), root)

	narrow := NewUnavailableIncompatibility(vreq("bar", 1))
	bt2 := ps2.createBacktrackInfo(narrow)
	require.NotNil(t, bt2)
	require.NotNil(t, bt2.difference, "the satisfier's term exceeds the matching ic term")
}
