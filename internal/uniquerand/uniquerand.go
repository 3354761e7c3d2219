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

// Package uniquerand produces unique random integers within a predefined range.
package uniquerand

import "math/rand"

const wordSize = 64

// Int produces unique random numbers within the range [0, Range()).
// It keeps track of all produced numbers, and never returns the same number
// twice, until Reset is called or the number is returned through Put.
// The zero value is ready to use, with a range of 1.
type Int struct {
	r    int      // range
	used []uint64 // one bit per produced number
}

// Reset sets the range of the generator to [0, r) and forgets all previously
// produced numbers.
// A range less than 1 is treated as 1.
func (uri *Int) Reset(r int) {
	if r < 1 {
		r = 1
	}
	uri.r = r
	uri.used = make([]uint64, (r+wordSize-1)/wordSize)
}

// Range returns the exclusive upper limit of the produced numbers.
func (uri *Int) Range() int {
	if uri.r < 1 {
		return 1
	}
	return uri.r
}

// Get returns a not-yet-produced random number in range and ok as true.
// If ok is false, all numbers in range have been produced.
func (uri *Int) Get() (urn int, ok bool) {
	if uri.used == nil {
		uri.Reset(uri.r)
	}

	// try a random pick first, then fall back to a linear scan from it,
	// so the cost stays bounded when the range is nearly exhausted.
	start := rand.Intn(uri.Range())
	for i := 0; i < uri.Range(); i++ {
		n := start + i
		if n >= uri.Range() {
			n -= uri.Range()
		}
		w, b := n/wordSize, uint64(1)<<(n%wordSize)
		if uri.used[w]&b == 0 {
			uri.used[w] |= b
			return n, true
		}
	}
	return 0, false
}

// Put returns a previously produced number back to the generator, making it
// available for Get again.
// It reports whether the number was actually marked as produced.
func (uri *Int) Put(num int) (ok bool) {
	if num < 0 || num >= uri.Range() || uri.used == nil {
		return false
	}
	w, b := num/wordSize, uint64(1)<<(num%wordSize)
	if uri.used[w]&b == 0 {
		return false
	}
	uri.used[w] &^= b
	return true
}
