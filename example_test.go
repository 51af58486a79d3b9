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

package depsolve_test

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/contriboss/depsolve"
)

func ExampleSolve() {
	provider := depsolve.NewMemoryProvider()
	_ = provider.AddPackage("lodash", "1.2.0")
	_ = provider.AddPackage("lodash", "2.0.0")

	root, _ := depsolve.ParseSemverRange("lodash", ">=1.0.0, <2.0.0")
	solution, err := depsolve.Solve([]depsolve.SemverRequirement{root}, provider)
	if err != nil {
		fmt.Println(err)
		return
	}

	for req := range solution.All() {
		fmt.Println(req)
	}
	// Output: lodash 1.2.0
}

func ExampleSolve_dependencies() {
	provider := depsolve.NewMemoryProvider()
	_ = provider.AddPackage("app", "1.0.0", "web >=1.0.0, <2.0.0")
	_ = provider.AddPackage("web", "1.4.0", "json >=2.0.0, <3.0.0")
	_ = provider.AddPackage("json", "2.7.0")
	_ = provider.AddPackage("json", "3.1.0")

	root, _ := depsolve.ParseSemverRange("app", "==1.0.0")
	solution, err := depsolve.Solve([]depsolve.SemverRequirement{root}, provider)
	if err != nil {
		fmt.Println(err)
		return
	}

	for req := range solution.All() {
		fmt.Println(req)
	}
	// Output:
	// app 1.0.0
	// web 1.4.0
	// json 2.7.0
}

func ExampleSolve_unsolvable() {
	provider := depsolve.NewMemoryProvider()
	_ = provider.AddPackage("menu", "1.1.0", "dropdown >=2.0.0")
	_ = provider.AddPackage("dropdown", "2.0.0", "icons >=2.0.0")
	_ = provider.AddPackage("icons", "1.0.0")

	root, _ := depsolve.ParseSemverRange("menu", "==1.1.0")
	_, err := depsolve.Solve([]depsolve.SemverRequirement{root}, provider)

	var unsolvable *depsolve.UnsolvableError[depsolve.SemverRequirement]
	if errors.As(err, &unsolvable) {
		fmt.Println("no valid set of package versions exists")
	}
	// Output: no valid set of package versions exists
}

func ExampleParseSemverRange() {
	req, _ := depsolve.ParseSemverRange("lodash", ">=1.0.0, <2.0.0 || >=3.0.0")

	fmt.Println(req.Contains(mustV("1.5.0")))
	fmt.Println(req.Contains(mustV("2.5.0")))
	fmt.Println(req.Contains(mustV("3.2.0")))
	// Output:
	// true
	// false
	// true
}

func ExampleIntervalSet() {
	a, _ := depsolve.NewOrderedIntervalSet(depsolve.Interval[int]{Low: 1, High: 5})
	b, _ := depsolve.NewOrderedIntervalSet(depsolve.Interval[int]{Low: 3, High: 9})

	fmt.Println(a.Union(b))
	fmt.Println(a.Intersect(b))
	fmt.Println(a.Difference(b))
	// Output:
	// [1, 9)
	// [3, 5)
	// [1, 3)
}

func mustV(s string) *semver.Version {
	v, err := semver.NewVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}
