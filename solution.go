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

import "iter"

// Solution is the complete set of selected requirements, one positive
// singleton per key, in the order the decisions were made. Every selection
// satisfies every input requirement with its key and every transitive
// dependency.
//
// Example:
//
//	solution, err := Solve(reqs, provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for req := range solution.All() {
//	    fmt.Println(req)
//	}
type Solution[R Requirement[R]] []R

// Get retrieves the selection for a given package name.
func (s Solution[R]) Get(name Name) (R, bool) {
	for _, req := range s {
		if req.Key() == name {
			return req, true
		}
	}

	var zero R
	return zero, false
}

// All returns an iterator over the selections in decision order. This enables
// range-over-function syntax:
//
//	for req := range solution.All() {
//	    fmt.Println(req)
//	}
func (s Solution[R]) All() iter.Seq[R] {
	return func(yield func(R) bool) {
		for _, req := range s {
			if !yield(req) {
				return
			}
		}
	}
}
