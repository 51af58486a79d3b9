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
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MemoryProvider is an in-memory Provider over SemverRequirement, useful for
// testing dependency-resolution scenarios, building example graphs, and
// prototyping before implementing a real package source.
//
// Candidate selection picks the highest registered version matching the
// requirement.
//
// Example:
//
//	provider := NewMemoryProvider()
//	provider.AddPackage("lodash", "1.2.0", "core-js >=2.0.0")
//	provider.AddPackage("core-js", "2.4.0")
type MemoryProvider struct {
	packages map[Name][]memoryPackage
}

type memoryPackage struct {
	version *semver.Version
	deps    []SemverRequirement
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{packages: make(map[Name][]memoryPackage)}
}

// AddPackage registers one version of a package together with its
// dependencies. Each dependency is given as "name range-expression" (range
// syntax per ParseSemverRange; a bare name matches any version).
func (p *MemoryProvider) AddPackage(name, version string, deps ...string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("parsing version %q of %s: %w", version, name, err)
	}

	parsed := make([]SemverRequirement, 0, len(deps))
	for _, dep := range deps {
		depName, expr := splitDepSpec(dep)
		req, err := ParseSemverRange(depName, expr)
		if err != nil {
			return fmt.Errorf("parsing dependency %q of %s %s: %w", dep, name, version, err)
		}
		parsed = append(parsed, req)
	}

	key := MakeName(name)
	entries := append(p.packages[key], memoryPackage{version: v, deps: parsed})
	slices.SortFunc(entries, func(a, b memoryPackage) int {
		return a.version.Compare(b.version)
	})
	p.packages[key] = entries
	return nil
}

// BestCandidate returns the highest registered version matching req, with
// its dependencies, or nil when nothing matches.
func (p *MemoryProvider) BestCandidate(req SemverRequirement) (*Candidate[SemverRequirement], error) {
	entries := p.packages[req.Key()]
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if !req.Contains(entry.version) {
			continue
		}
		return &Candidate[SemverRequirement]{
			Chosen: semverSingleton(req.Key(), entry.version),
			Deps:   slices.Clone(entry.deps),
		}, nil
	}
	return nil, nil
}

// splitDepSpec splits a dependency spec into name and range expression.
func splitDepSpec(spec string) (name, expr string) {
	trimmed := strings.TrimSpace(spec)
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		return trimmed[:i], strings.TrimSpace(trimmed[i:])
	}
	return trimmed, "*"
}

// CombinedProvider aggregates multiple providers, asking each in order and
// returning the first candidate found.
//
// Example:
//
//	provider := CombinedProvider[SemverRequirement]{local, registry}
type CombinedProvider[R Requirement[R]] []Provider[R]

// BestCandidate implements Provider.
func (p CombinedProvider[R]) BestCandidate(req R) (*Candidate[R], error) {
	for _, provider := range p {
		candidate, err := provider.BestCandidate(req)
		if err != nil {
			return nil, err
		}
		if candidate != nil {
			return candidate, nil
		}
	}
	return nil, nil
}

var (
	_ Provider[SemverRequirement] = (*MemoryProvider)(nil)
	_ Provider[SemverRequirement] = CombinedProvider[SemverRequirement]{}
)
