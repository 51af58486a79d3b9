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

// incompatibilityStore holds every incompatibility ever added, in insertion
// order, with a per-key index over the terms. Nothing is ever removed;
// propagation depends on forKey iteration preserving insertion order.
type incompatibilityStore[R Requirement[R]] struct {
	all   []*Incompatibility[R]
	byKey map[Name][]*Incompatibility[R]
}

func newIncompatibilityStore[R Requirement[R]]() *incompatibilityStore[R] {
	return &incompatibilityStore[R]{
		byKey: make(map[Name][]*Incompatibility[R]),
	}
}

// add appends ic and indexes it under every term key. Returns ic for caller
// convenience.
func (s *incompatibilityStore[R]) add(ic *Incompatibility[R]) *Incompatibility[R] {
	s.all = append(s.all, ic)
	for _, term := range ic.Terms {
		key := term.Key()
		s.byKey[key] = append(s.byKey[key], ic)
	}
	return ic
}

// forKey returns the incompatibilities containing a term with the given key,
// in insertion order. The returned slice is shared; callers must not mutate.
func (s *incompatibilityStore[R]) forKey(key Name) []*Incompatibility[R] {
	return s.byKey[key]
}
