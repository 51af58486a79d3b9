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

// SolverOptions configures Solve.
type SolverOptions[R Requirement[R]] struct {
	// Logger receives solver progress callbacks. Defaults to NopLogger.
	Logger Logger[R]

	// MaxSteps limits the number of propagation and speculation steps.
	// Set to 0 to disable the limit (not recommended for untrusted
	// providers). Default: 100000.
	MaxSteps int
}

// SolverOption is a functional option for configuring Solve.
type SolverOption[R Requirement[R]] func(*SolverOptions[R])

const defaultMaxSteps = 100000

// defaultSolverOptions returns the default solver configuration.
func defaultSolverOptions[R Requirement[R]]() SolverOptions[R] {
	return SolverOptions[R]{
		Logger:   NopLogger[R]{},
		MaxSteps: defaultMaxSteps,
	}
}

// WithLogger directs solver progress callbacks to the given logger.
// A nil logger is replaced by NopLogger.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	solution, err := Solve(reqs, provider, WithLogger(NewSlogLogger[SemverRequirement](logger)))
func WithLogger[R Requirement[R]](logger Logger[R]) SolverOption[R] {
	return func(opts *SolverOptions[R]) {
		if logger == nil {
			opts.Logger = NopLogger[R]{}
			return
		}
		opts.Logger = logger
	}
}

// WithMaxSteps sets the maximum number of solver steps. Use 0 to disable the
// limit. The guard prevents unbounded execution against pathological or
// misbehaving providers; realistic dependency graphs resolve in thousands of
// steps.
func WithMaxSteps[R Requirement[R]](steps int) SolverOption[R] {
	return func(opts *SolverOptions[R]) {
		if steps <= 0 {
			opts.MaxSteps = 0
		} else {
			opts.MaxSteps = steps
		}
	}
}
