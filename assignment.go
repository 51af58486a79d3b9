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

// assignmentKind distinguishes between decision and derivation assignments.
// Decision assignments are explicit version selections made during
// speculation. Derivation assignments are terms entailed by unit propagation
// and carry the incompatibility that caused them.
type assignmentKind int

const (
	assignmentDecision   assignmentKind = iota // Explicit candidate selection
	assignmentDerivation                       // Term derived from propagation
)

// assignment is a single entry in the partial-solution ledger.
type assignment[R Requirement[R]] struct {
	term          Term[R]
	kind          assignmentKind
	cause         *Incompatibility[R] // nil for decisions
	decisionLevel int
	index         int
}

// isDecision reports whether this assignment is an explicit candidate
// selection rather than a derived constraint.
func (a *assignment[R]) isDecision() bool {
	return a.kind == assignmentDecision
}

// describe returns a short human-readable summary for trace logging.
func (a *assignment[R]) describe() string {
	kind := "derivation"
	if a.isDecision() {
		kind = "decision"
	}
	return fmt.Sprintf("%s %s (level %d, index %d)", kind, a.term, a.decisionLevel, a.index)
}
