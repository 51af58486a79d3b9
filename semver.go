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
	"strings"

	"github.com/Masterminds/semver/v3"
)

// semverPoint is one point on the semantic-version line. A nil version marks
// the open upper edge, above every concrete version.
type semverPoint struct {
	v *semver.Version
}

func compareSemverPoints(a, b semverPoint) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return 1
	case b.v == nil:
		return -1
	default:
		return a.v.Compare(b.v)
	}
}

func (p semverPoint) String() string {
	if p.v == nil {
		return "inf"
	}
	return p.v.String()
}

// minSemverPoint sorts at or below every version: 0.0.0-0.
func minSemverPoint() semverPoint {
	return semverPoint{v: semver.New(0, 0, 0, "0", "")}
}

func maxSemverPoint() semverPoint {
	return semverPoint{}
}

// nextSemverPoint is the smallest version sorting strictly above v, so the
// half-open span [v, next) matches exactly v.
func nextSemverPoint(v *semver.Version) semverPoint {
	if pre := v.Prerelease(); pre != "" {
		bumped, err := semver.NewVersion(fmt.Sprintf("%d.%d.%d-%s.0", v.Major(), v.Minor(), v.Patch(), pre))
		invariant(err == nil, "bumping prerelease of %s: %v", v, err)
		return semverPoint{v: bumped}
	}
	return semverPoint{v: semver.New(v.Major(), v.Minor(), v.Patch()+1, "0", "")}
}

// SemverRequirement is the bundled concrete requirement type: a named set of
// semantic-version ranges backed by IntervalSet, with Masterminds semver
// providing version parsing and ordering.
//
// Example:
//
//	req, _ := ParseSemverRange("lodash", ">=1.0.0, <2.0.0 || >=3.0.0")
//	req.Contains(semver.MustParse("1.5.0")) // true
type SemverRequirement struct {
	name Name
	set  *IntervalSet[semverPoint]
}

// SemverAny matches every version of the named package.
func SemverAny(name string) SemverRequirement {
	set, err := NewIntervalSet(compareSemverPoints, Interval[semverPoint]{
		Low:  minSemverPoint(),
		High: maxSemverPoint(),
	})
	invariant(err == nil, "building the full version set: %v", err)
	return SemverRequirement{name: MakeName(name), set: set}
}

// SemverExact matches exactly one version of the named package.
func SemverExact(name, version string) (SemverRequirement, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return SemverRequirement{}, fmt.Errorf("parsing version %q: %w", version, err)
	}
	return semverSingleton(MakeName(name), v), nil
}

func semverSingleton(name Name, v *semver.Version) SemverRequirement {
	set, err := NewIntervalSet(compareSemverPoints, Interval[semverPoint]{
		Low:  semverPoint{v: v},
		High: nextSemverPoint(v),
	})
	invariant(err == nil, "building singleton set for %s: %v", v, err)
	return SemverRequirement{name: name, set: set}
}

// ParseSemverRange parses a version-range expression into a requirement for
// the named package.
//
// Supported syntax:
//   - Comparison operators: >=, >, <=, <, ==, !=, =
//   - Comma-separated conjunctions (AND): ">=1.0.0, <2.0.0"
//   - Double-pipe disjunctions (OR): "<1.0.0 || >=2.0.0"
//   - Wildcard "*" (or an empty expression) for any version
//
// Examples:
//
//	ParseSemverRange("lodash", ">=1.0.0, <2.0.0")    // [1.0.0, 2.0.0)
//	ParseSemverRange("lodash", "==1.5.0")            // exactly 1.5.0
//	ParseSemverRange("lodash", "!=1.5.0")            // anything but 1.5.0
func ParseSemverRange(name, expr string) (SemverRequirement, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "*" {
		return SemverAny(name), nil
	}

	key := MakeName(name)
	result := SemverRequirement{name: key, set: emptySemverSet()}

	for _, orPart := range strings.Split(expr, "||") {
		orPart = strings.TrimSpace(orPart)
		if orPart == "" {
			return SemverRequirement{}, fmt.Errorf("invalid empty range in %q", expr)
		}

		current := SemverAny(name)
		for _, andPart := range strings.Split(orPart, ",") {
			token := strings.TrimSpace(andPart)
			if token == "" {
				return SemverRequirement{}, fmt.Errorf("invalid empty constraint in %q", orPart)
			}
			set, err := parseSemverConstraint(key, token)
			if err != nil {
				return SemverRequirement{}, err
			}
			current = current.Intersect(set)
			if current.IsEmpty() {
				break
			}
		}

		result = result.Union(current)
	}

	return result, nil
}

// parseSemverConstraint parses a single constraint like ">=1.0.0" or "!=2.0.0".
func parseSemverConstraint(name Name, token string) (SemverRequirement, error) {
	operators := []string{">=", "<=", "==", "!=", ">", "<", "="}

	op := ""
	raw := token
	for _, candidate := range operators {
		if strings.HasPrefix(token, candidate) {
			op = candidate
			raw = strings.TrimSpace(token[len(candidate):])
			break
		}
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return SemverRequirement{}, fmt.Errorf("parsing version in constraint %q: %w", token, err)
	}

	span := func(low, high semverPoint) (SemverRequirement, error) {
		set, err := NewIntervalSet(compareSemverPoints, Interval[semverPoint]{Low: low, High: high})
		if err != nil {
			return SemverRequirement{}, err
		}
		return SemverRequirement{name: name, set: set}, nil
	}

	switch op {
	case ">=":
		return span(semverPoint{v: v}, maxSemverPoint())
	case ">":
		return span(nextSemverPoint(v), maxSemverPoint())
	case "<":
		return span(minSemverPoint(), semverPoint{v: v})
	case "<=":
		return span(minSemverPoint(), nextSemverPoint(v))
	case "!=":
		return SemverAny(name.Value()).Difference(semverSingleton(name, v)), nil
	default: // "==", "=", bare version
		return semverSingleton(name, v), nil
	}
}

func emptySemverSet() *IntervalSet[semverPoint] {
	return &IntervalSet[semverPoint]{cmp: compareSemverPoints}
}

// Key returns the package name the requirement constrains.
func (r SemverRequirement) Key() Name {
	return r.name
}

// ImpliedBy reports whether every version matching other also matches this
// requirement.
func (r SemverRequirement) ImpliedBy(other SemverRequirement) bool {
	return other.set.Difference(r.set).IsEmpty()
}

// Intersect returns the requirement matched by versions in both ranges.
func (r SemverRequirement) Intersect(other SemverRequirement) SemverRequirement {
	return SemverRequirement{name: r.name, set: r.set.Intersect(other.set)}
}

// Union returns the requirement matched by versions in either range.
func (r SemverRequirement) Union(other SemverRequirement) SemverRequirement {
	return SemverRequirement{name: r.name, set: r.set.Union(other.set)}
}

// Difference returns the requirement matched by versions in this range but
// not the other.
func (r SemverRequirement) Difference(other SemverRequirement) SemverRequirement {
	return SemverRequirement{name: r.name, set: r.set.Difference(other.set)}
}

// IsEmpty reports whether no version can match.
func (r SemverRequirement) IsEmpty() bool {
	return r.set.IsEmpty()
}

// Contains reports whether a concrete version matches the requirement.
func (r SemverRequirement) Contains(v *semver.Version) bool {
	return r.set.Contains(semverPoint{v: v})
}

// Version returns the single version the requirement matches, if the range
// has been narrowed that far.
func (r SemverRequirement) Version() (*semver.Version, bool) {
	intervals := make([]Interval[semverPoint], 0, 1)
	for iv := range r.set.Intervals() {
		intervals = append(intervals, iv)
		if len(intervals) > 1 {
			return nil, false
		}
	}
	if len(intervals) != 1 || intervals[0].Low.v == nil {
		return nil, false
	}
	low := intervals[0].Low
	if compareSemverPoints(nextSemverPoint(low.v), intervals[0].High) != 0 {
		return nil, false
	}
	return low.v, true
}

// String returns a human-readable representation of the requirement.
func (r SemverRequirement) String() string {
	if v, ok := r.Version(); ok {
		return fmt.Sprintf("%s %s", r.name.Value(), v)
	}
	if r.IsEmpty() {
		return fmt.Sprintf("%s (none)", r.name.Value())
	}

	full := SemverAny(r.name.Value())
	if r.set.Equal(full.set) {
		return r.name.Value()
	}
	return fmt.Sprintf("%s %s", r.name.Value(), r.set)
}

var _ Requirement[SemverRequirement] = SemverRequirement{}
