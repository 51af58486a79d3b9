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
)

// intReq is the finite-version requirement used throughout the solver tests:
// a package name plus an integer version set backed by IntervalSet.
type intReq struct {
	name Name
	set  *IntervalSet[int]
}

func intervals(versions ...int) []Interval[int] {
	ivs := make([]Interval[int], 0, len(versions))
	for _, v := range versions {
		ivs = append(ivs, Interval[int]{Low: v, High: v + 1})
	}
	return ivs
}

// vreq builds a requirement matching exactly the listed versions.
func vreq(name string, versions ...int) intReq {
	set, err := NewOrderedIntervalSet(intervals(versions...)...)
	if err != nil {
		panic(err)
	}
	return intReq{name: MakeName(name), set: set}
}

// rreq builds a requirement matching the half-open version range [lo, hi).
func rreq(name string, lo, hi int) intReq {
	set, err := NewOrderedIntervalSet(Interval[int]{Low: lo, High: hi})
	if err != nil {
		panic(err)
	}
	return intReq{name: MakeName(name), set: set}
}

func (r intReq) Key() Name { return r.name }

func (r intReq) ImpliedBy(other intReq) bool {
	return other.set.Difference(r.set).IsEmpty()
}

func (r intReq) Intersect(other intReq) intReq {
	return intReq{name: r.name, set: r.set.Intersect(other.set)}
}

func (r intReq) Union(other intReq) intReq {
	return intReq{name: r.name, set: r.set.Union(other.set)}
}

func (r intReq) Difference(other intReq) intReq {
	return intReq{name: r.name, set: r.set.Difference(other.set)}
}

func (r intReq) IsEmpty() bool { return r.set.IsEmpty() }

func (r intReq) String() string {
	if v, ok := r.single(); ok {
		return fmt.Sprintf("%s %d", r.name.Value(), v)
	}
	return fmt.Sprintf("%s %s", r.name.Value(), r.set)
}

// single returns the sole version the requirement matches, if narrowed that
// far.
func (r intReq) single() (int, bool) {
	spans := slices.Collect(r.set.Intervals())
	if len(spans) != 1 || spans[0].High != spans[0].Low+1 {
		return 0, false
	}
	return spans[0].Low, true
}

var _ Requirement[intReq] = intReq{}

// testPkg is one package version in a test repository.
type testPkg struct {
	name    string
	version int
	deps    []intReq
}

// testRepo is a Provider over intReq that selects the lowest matching
// version, mirroring how candidates are ordered in the solver scenarios.
type testRepo []testPkg

func (r testRepo) BestCandidate(req intReq) (*Candidate[intReq], error) {
	best := -1
	var deps []intReq
	for _, pkg := range r {
		if pkg.name != req.Key().Value() || !req.set.Contains(pkg.version) {
			continue
		}
		if best < 0 || pkg.version < best {
			best = pkg.version
			deps = pkg.deps
		}
	}
	if best < 0 {
		return nil, nil
	}
	return &Candidate[intReq]{
		Chosen: vreq(req.Key().Value(), best),
		Deps:   slices.Clone(deps),
	}, nil
}

var _ Provider[intReq] = testRepo{}
