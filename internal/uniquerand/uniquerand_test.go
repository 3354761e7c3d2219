// Copyright 2024 The promisekit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package uniquerand

import "testing"

func TestZeroValue(t *testing.T) {
	uri := Int{}

	if r := uri.Range(); r != 1 {
		t.Fatalf("unexpected range: %d", r)
	}

	n, ok := uri.Get()
	if !ok || n != 0 {
		t.Fatalf("unexpected number: (%d, %v)", n, ok)
	}

	if _, ok = uri.Get(); ok {
		t.Fatal("expected the range to be exhausted")
	}
}

func TestGetReturnsEachNumberOnce(t *testing.T) {
	// cover both, a sub-word range and a multi-word one
	for _, r := range []int{10, 100} {
		uri := Int{}
		uri.Reset(r)

		got := make(map[int]bool, r)
		for i := 0; i < r; i++ {
			n, ok := uri.Get()
			if !ok {
				t.Fatalf("range %d: exhausted after %d numbers", r, i)
			}
			if n < 0 || n >= r {
				t.Fatalf("range %d: out of range number: %d", r, n)
			}
			if got[n] {
				t.Fatalf("range %d: repeated number: %d", r, n)
			}
			got[n] = true
		}

		if _, ok := uri.Get(); ok {
			t.Fatalf("range %d: expected the range to be exhausted", r)
		}
	}
}

func TestReset(t *testing.T) {
	uri := Int{}
	uri.Reset(3)

	for i := 0; i < 3; i++ {
		if _, ok := uri.Get(); !ok {
			t.Fatal("exhausted too early")
		}
	}

	uri.Reset(3)
	if _, ok := uri.Get(); !ok {
		t.Fatal("Reset didn't forget the produced numbers")
	}
}

func TestPut(t *testing.T) {
	uri := Int{}
	uri.Reset(2)

	n, ok := uri.Get()
	if !ok {
		t.Fatal("unexpected exhausted range")
	}

	if ok = uri.Put(n); !ok {
		t.Fatal("Put didn't accept a produced number")
	}
	if ok = uri.Put(n); ok {
		t.Fatal("Put accepted a number twice")
	}
	if ok = uri.Put(5); ok {
		t.Fatal("Put accepted an out-of-range number")
	}

	// the number is available again
	seen := map[int]int{}
	for i := 0; i < 2; i++ {
		gn, gok := uri.Get()
		if !gok {
			t.Fatal("exhausted too early after Put")
		}
		seen[gn]++
	}
	if len(seen) != 2 {
		t.Fatalf("unexpected numbers after Put: %v", seen)
	}
}
