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

// UnsolvableError is the domain result of a failed solve. It carries the root
// incompatibility of the derivation DAG so callers can produce a full
// explanation, either through Error() or by walking GenerateReport.
type UnsolvableError[R Requirement[R]] struct {
	// Incompatibility is the root cause of the failure.
	Incompatibility *Incompatibility[R]
	// Reporter formats the error message (defaults to DefaultReporter).
	Reporter Reporter[R]
}

// NewUnsolvableError creates an UnsolvableError from an incompatibility.
func NewUnsolvableError[R Requirement[R]](ic *Incompatibility[R]) *UnsolvableError[R] {
	return &UnsolvableError[R]{
		Incompatibility: ic,
		Reporter:        &DefaultReporter[R]{},
	}
}

// Error implements the error interface.
func (e *UnsolvableError[R]) Error() string {
	if e.Incompatibility == nil {
		return "no solution found"
	}

	reporter := e.Reporter
	if reporter == nil {
		reporter = &DefaultReporter[R]{}
	}
	return reporter.Report(e.Incompatibility)
}

// WithReporter returns a copy of the error that formats through a custom
// reporter.
func (e *UnsolvableError[R]) WithReporter(reporter Reporter[R]) *UnsolvableError[R] {
	return &UnsolvableError[R]{
		Incompatibility: e.Incompatibility,
		Reporter:        reporter,
	}
}

// SelfDependencyError reports a provider returning a dependency with the same
// key as the candidate that requires it. This is a usage error in the
// provider, not a solvable condition.
type SelfDependencyError struct {
	Package Name
}

// Error implements the error interface.
func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("package %s depends on itself", e.Package.Value())
}

// InvalidIntervalError reports a malformed interval whose upper bound sorts
// below its lower bound. It is raised at construction time and indicates a
// caller bug.
type InvalidIntervalError struct {
	Low, High string
}

// Error implements the error interface.
func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("interval is not valid (low=%s, high=%s)", e.Low, e.High)
}

// InvariantError is the payload of panics raised by internal assertions:
// term-algebra preconditions, ledger consistency after conflict resolution,
// and impossible incompatibility shapes. Reaching one indicates a bug in the
// core or in a requirement implementation, never bad input.
type InvariantError struct {
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return "algorithm invariant failed: " + e.Message
}

// invariant panics with an *InvariantError unless cond holds.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
	}
}

// ErrIterationLimit is returned when the solver exceeds its maximum step
// count. This guards against runaway providers; configure with
// WithMaxSteps(0) to disable the limit.
type ErrIterationLimit struct {
	Steps int
}

// Error implements the error interface.
func (e ErrIterationLimit) Error() string {
	if e.Steps <= 0 {
		return "solver exceeded iteration limit"
	}
	return fmt.Sprintf("solver exceeded iteration limit after %d steps", e.Steps)
}

var (
	_ error = (*SelfDependencyError)(nil)
	_ error = (*InvalidIntervalError)(nil)
	_ error = (*InvariantError)(nil)
	_ error = ErrIterationLimit{}
)
