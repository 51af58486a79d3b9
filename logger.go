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

import "log/slog"

// Logger receives progress callbacks from the solver. Implementations are
// not required to produce any effect; NopLogger is the default.
type Logger[R Requirement[R]] interface {
	// OnConsider fires when the provider proposes selected for requirement.
	OnConsider(selected, requirement R)

	// OnSelect fires when selected is recorded as a decision.
	OnSelect(selected, requirement R)

	// OnDependency fires for each dependency of a considered candidate.
	OnDependency(depender, dependency R)

	// OnConflict fires when an incompatibility is found violated.
	OnConflict(ic *Incompatibility[R])

	// OnDerive fires when unit propagation entails a term.
	OnDerive(term Term[R])

	// OnBacktrack fires when the satisfier's term is abandoned.
	OnBacktrack(satisfier Term[R])

	// OnPartialSolution fires after a decision with a ledger snapshot.
	OnPartialSolution(snapshot string)
}

// NopLogger discards every callback.
type NopLogger[R Requirement[R]] struct{}

func (NopLogger[R]) OnConsider(selected, requirement R) {}
func (NopLogger[R]) OnSelect(selected, requirement R) {}
func (NopLogger[R]) OnDependency(depender, dependency R) {}
func (NopLogger[R]) OnConflict(ic *Incompatibility[R]) {}
func (NopLogger[R]) OnDerive(term Term[R]) {}
func (NopLogger[R]) OnBacktrack(satisfier Term[R]) {}
func (NopLogger[R]) OnPartialSolution(snapshot string) {}

// SlogLogger forwards solver callbacks to a *slog.Logger at debug level.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	Solve(reqs, provider, WithLogger(NewSlogLogger[SemverRequirement](logger)))
type SlogLogger[R Requirement[R]] struct {
	logger *slog.Logger
}

// NewSlogLogger wraps a *slog.Logger as a solver Logger.
func NewSlogLogger[R Requirement[R]](logger *slog.Logger) *SlogLogger[R] {
	return &SlogLogger[R]{logger: logger}
}

func (l *SlogLogger[R]) OnConsider(selected, requirement R) {
	l.logger.Debug("considering candidate",
		"selected", selected.String(),
		"requirement", requirement.String(),
	)
}

func (l *SlogLogger[R]) OnSelect(selected, requirement R) {
	l.logger.Debug("making decision",
		"selected", selected.String(),
		"requirement", requirement.String(),
	)
}

func (l *SlogLogger[R]) OnDependency(depender, dependency R) {
	l.logger.Debug("dependency",
		"depender", depender.String(),
		"dependency", dependency.String(),
	)
}

func (l *SlogLogger[R]) OnConflict(ic *Incompatibility[R]) {
	l.logger.Debug("conflict detected", "incompatibility", ic.String())
}

func (l *SlogLogger[R]) OnDerive(term Term[R]) {
	l.logger.Debug("unit propagation", "derived_term", term.String())
}

func (l *SlogLogger[R]) OnBacktrack(satisfier Term[R]) {
	l.logger.Debug("backtracking", "satisfier", satisfier.String())
}

func (l *SlogLogger[R]) OnPartialSolution(snapshot string) {
	l.logger.Debug("partial solution updated", "state", snapshot)
}

var (
	_ Logger[SemverRequirement] = NopLogger[SemverRequirement]{}
	_ Logger[SemverRequirement] = (*SlogLogger[SemverRequirement])(nil)
)
