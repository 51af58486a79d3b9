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

// Requirement is a predicate over an opaque version space, identified by a
// Name. The solver is version-type agnostic - any type can be used as long
// as it implements this interface over itself.
//
// Requirements are value objects: immutable, cheaply copyable, and
// equality-comparable through ImpliedBy in both directions. The set-algebra
// laws must hold, and the operators must only ever be called on two
// requirements with the same Name (the solver guarantees this).
//
// Built-in implementations:
//   - SemverRequirement: semantic-version ranges backed by IntervalSet
//
// Example custom requirement:
//
//	type DateWindow struct {
//	    Pkg  Name
//	    Days IntervalSet[time.Time]
//	}
//
//	func (w DateWindow) Key() Name { return w.Pkg }
//	func (w DateWindow) ImpliedBy(o DateWindow) bool { ... }
//	...
type Requirement[R any] interface {
	// Key returns the name shared by all requirements over the same package.
	Key() Name

	// ImpliedBy reports whether every version satisfying other also
	// satisfies this requirement (other is a subset of this).
	ImpliedBy(other R) bool

	// Intersect returns a requirement satisfied by exactly the versions
	// that satisfy both this requirement and other.
	Intersect(other R) R

	// Union returns a requirement satisfied by the versions that satisfy
	// this requirement, other, or both.
	Union(other R) R

	// Difference returns a requirement satisfied by the versions that
	// satisfy this requirement but not other.
	Difference(other R) R

	// IsEmpty reports whether the requirement is intrinsically
	// unsatisfiable - the empty version set.
	IsEmpty() bool

	// String returns a human-readable representation of the requirement.
	String() string
}

// Excludes reports whether two same-key requirements are mutually
// exclusive - no version satisfies both.
func Excludes[R Requirement[R]](a, b R) bool {
	return a.Intersect(b).IsEmpty()
}

// Candidate is a provider's answer for a requirement: a narrowed requirement
// describing the selected version (ideally matching exactly one version) and
// that version's immediate dependencies.
type Candidate[R Requirement[R]] struct {
	Chosen R
	Deps   []R
}

// Provider supplies candidate selections during solving. Implementations can
// answer from in-memory registries, package indexes, file systems, or any
// other package source; the solver calls it synchronously, one requirement
// at a time, in a deterministic order.
//
// Built-in implementations:
//   - MemoryProvider: in-memory registry over SemverRequirement
//   - CombinedProvider: tries multiple providers in order
//
// Example custom provider:
//
//	type RegistryProvider struct {
//	    BaseURL string
//	    Client  *http.Client
//	}
//
//	func (rp *RegistryProvider) BestCandidate(req PkgReq) (*Candidate[PkgReq], error) {
//	    resp, err := rp.Client.Get(rp.BaseURL + "/packages/" + req.Key().Value())
//	    // ... pick the best matching version and its dependencies ...
//	}
type Provider[R Requirement[R]] interface {
	// BestCandidate finds the selection that best matches req. The chosen
	// requirement must satisfy req (req.ImpliedBy(chosen) == true) and
	// share its Name. Dependency order is preserved by the solver.
	//
	// A nil candidate with a nil error means no version matches req.
	BestCandidate(req R) (*Candidate[R], error)
}
