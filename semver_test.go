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

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, name, expr string) SemverRequirement {
	t.Helper()
	req, err := ParseSemverRange(name, expr)
	require.NoError(t, err, "ParseSemverRange(%q, %q)", name, expr)
	return req
}

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	require.NoError(t, err, "parsing version %q", s)
	return v
}

func TestParseSemverRangeContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rangeExpr string
		version   string
		expect    bool
	}{
		{">=1.0.0", "1.0.0", true},
		{">=1.0.0", "0.9.9", false},
		{">1.0.0", "1.0.0", false},
		{">1.0.0", "1.0.1", true},
		{"<=1.0.0", "1.0.0", true},
		{"<=1.0.0", "1.0.1", false},
		{">=1.0.0, <2.0.0", "1.5.0", true},
		{">=1.0.0, <2.0.0", "2.0.0", false},
		{"==1.5.0", "1.5.0", true},
		{"==1.5.0", "1.5.1", false},
		{"!=1.5.0", "1.5.0", false},
		{"!=1.5.0", "1.6.0", true},
		{">=1.0.0, <2.0.0 || >=3.0.0", "3.2.0", true},
		{">=1.0.0, <2.0.0 || >=3.0.0", "2.5.0", false},
		{"*", "0.0.1", true},
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
	}

	for _, tt := range tests {
		t.Run(tt.rangeExpr+" contains "+tt.version, func(t *testing.T) {
			t.Parallel()
			req := mustRange(t, "pkg", tt.rangeExpr)
			require.Equal(t, tt.expect, req.Contains(mustVersion(t, tt.version)))
		})
	}
}

func TestParseSemverRangeErrors(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{">=", "||", "one.two.three", ">=1.0.0, "} {
		_, err := ParseSemverRange("pkg", expr)
		require.Error(t, err, "expression %q must not parse", expr)
	}
}

func TestSemverRequirementAlgebra(t *testing.T) {
	t.Parallel()

	oneX := mustRange(t, "pkg", ">=1.0.0, <2.0.0")
	wide := mustRange(t, "pkg", ">=1.5.0, <3.0.0")

	isect := oneX.Intersect(wide)
	require.False(t, isect.IsEmpty())
	require.True(t, isect.Contains(mustVersion(t, "1.7.0")))
	require.False(t, isect.Contains(mustVersion(t, "2.1.0")))

	union := oneX.Union(wide)
	require.True(t, union.Contains(mustVersion(t, "1.0.0")))
	require.True(t, union.Contains(mustVersion(t, "2.5.0")))
	require.False(t, union.Contains(mustVersion(t, "3.0.0")))

	diff := oneX.Difference(wide)
	require.True(t, diff.Contains(mustVersion(t, "1.2.0")))
	require.False(t, diff.Contains(mustVersion(t, "1.5.0")))

	require.True(t, oneX.ImpliedBy(isect))
	require.False(t, isect.ImpliedBy(oneX))
	require.True(t, Excludes(diff, wide))
}

func TestSemverRequirementSingleton(t *testing.T) {
	t.Parallel()

	exact, err := SemverExact("pkg", "1.2.3")
	require.NoError(t, err)

	v, ok := exact.Version()
	require.True(t, ok)
	require.Equal(t, "1.2.3", v.String())
	require.Equal(t, "pkg 1.2.3", exact.String())

	ranged := mustRange(t, "pkg", ">=1.0.0, <2.0.0")
	_, ok = ranged.Version()
	require.False(t, ok)

	require.Equal(t, "pkg", SemverAny("pkg").String())
}

func TestSemverPrereleaseOrdering(t *testing.T) {
	t.Parallel()

	req := mustRange(t, "pkg", ">1.2.3")
	require.True(t, req.Contains(mustVersion(t, "1.2.4-alpha")),
		"prereleases of the next patch sort above the bumped version")
	require.False(t, req.Contains(mustVersion(t, "1.2.3")))
}

func TestMemoryProviderSelection(t *testing.T) {
	t.Parallel()

	provider := NewMemoryProvider()
	require.NoError(t, provider.AddPackage("lodash", "1.0.0"))
	require.NoError(t, provider.AddPackage("lodash", "1.9.0"))
	require.NoError(t, provider.AddPackage("lodash", "2.2.0"))

	candidate, err := provider.BestCandidate(mustRange(t, "lodash", ">=1.0.0, <2.0.0"))
	require.NoError(t, err)
	require.NotNil(t, candidate)

	v, ok := candidate.Chosen.Version()
	require.True(t, ok, "the chosen requirement must be a singleton")
	require.Equal(t, "1.9.0", v.String(), "the highest matching version wins")

	candidate, err = provider.BestCandidate(mustRange(t, "lodash", ">=3.0.0"))
	require.NoError(t, err)
	require.Nil(t, candidate, "nothing matches >=3.0.0")

	candidate, err = provider.BestCandidate(mustRange(t, "nonesuch", "*"))
	require.NoError(t, err)
	require.Nil(t, candidate)

	require.Error(t, provider.AddPackage("lodash", "not-a-version"))
	require.Error(t, provider.AddPackage("lodash", "3.0.0", "dep >=x"))
}

func TestCombinedProviderOrder(t *testing.T) {
	t.Parallel()

	first := NewMemoryProvider()
	require.NoError(t, first.AddPackage("pkg", "1.0.0"))
	second := NewMemoryProvider()
	require.NoError(t, second.AddPackage("pkg", "2.0.0"))
	require.NoError(t, second.AddPackage("other", "1.0.0"))

	combined := CombinedProvider[SemverRequirement]{first, second}

	candidate, err := combined.BestCandidate(mustRange(t, "pkg", "*"))
	require.NoError(t, err)
	require.NotNil(t, candidate)
	v, _ := candidate.Chosen.Version()
	require.Equal(t, "1.0.0", v.String(), "the first provider answers first")

	candidate, err = combined.BestCandidate(mustRange(t, "other", "*"))
	require.NoError(t, err)
	require.NotNil(t, candidate, "later providers fill the gaps")
}

func TestSolveSemverEndToEnd(t *testing.T) {
	t.Parallel()

	provider := NewMemoryProvider()
	require.NoError(t, provider.AddPackage("app", "1.0.0", "web >=1.0.0, <2.0.0", "json >=2.0.0"))
	require.NoError(t, provider.AddPackage("web", "1.4.0", "json >=2.0.0, <3.0.0"))
	require.NoError(t, provider.AddPackage("web", "1.9.0", "json >=2.5.0, <3.0.0"))
	require.NoError(t, provider.AddPackage("json", "2.0.0"))
	require.NoError(t, provider.AddPackage("json", "2.7.0"))
	require.NoError(t, provider.AddPackage("json", "3.1.0"))

	root := mustRange(t, "app", "==1.0.0")
	solution, err := Solve([]SemverRequirement{root}, provider)
	require.NoError(t, err)

	expect := map[string]string{
		"app":  "1.0.0",
		"web":  "1.9.0",
		"json": "2.7.0",
	}
	require.Len(t, solution, len(expect))
	for sel := range solution.All() {
		v, ok := sel.Version()
		require.True(t, ok, "selection %s is not pinned", sel)
		require.Equal(t, expect[sel.Key().Value()], v.String(), "wrong pin for %s", sel.Key().Value())
	}
}

func TestSolveSemverConflict(t *testing.T) {
	t.Parallel()

	provider := NewMemoryProvider()
	require.NoError(t, provider.AddPackage("menu", "1.1.0", "dropdown >=2.0.0"))
	require.NoError(t, provider.AddPackage("dropdown", "2.0.0", "icons >=2.0.0"))
	require.NoError(t, provider.AddPackage("icons", "1.0.0"))

	_, err := Solve([]SemverRequirement{mustRange(t, "menu", "==1.1.0")}, provider)

	var unsolvable *UnsolvableError[SemverRequirement]
	require.ErrorAs(t, err, &unsolvable)
	require.Contains(t, unsolvable.Error(), "icons")
}
