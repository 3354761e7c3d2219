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

package promise

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPromiseConsumed is returned when reading the result of a one-time
	// promise that has already been handled.
	ErrPromiseConsumed = errors.New("promise already handled")

	// ErrPromisePanicked is the identity error of all Panicked results.
	// It matches, through errors.Is, any error returned from a Panicked
	// promise or from a combinator that propagated a Panicked promise.
	ErrPromisePanicked = errors.New("promise panicked")
)

// PanicError wraps a panic value that was recovered from a callback, so it
// can travel through error-returning APIs.
// It can be extracted from any Panicked result's error using errors.As.
type PanicError struct {
	// V is the value the panic was called with.
	V any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("panicked: %v", e.V)
}

func (e PanicError) Is(target error) bool {
	return target == ErrPromisePanicked
}

func (e PanicError) Unwrap() error {
	if err, ok := e.V.(error); ok {
		return err
	}
	return nil
}

// IdxError wraps the error of the promise at index Idx in the original list
// provided to a combinator.
// It can be extracted from a combinator result's error using errors.As, to
// recover which of the promises failed.
type IdxError struct {
	Idx int
	Err error
}

func (e IdxError) Error() string {
	return fmt.Sprintf("promise at index %d: %s", e.Idx, e.Err.Error())
}

func (e IdxError) Unwrap() error { return e.Err }

// AggregateError is the error the Any combinator rejects with, when all the
// promises passed to it failed.
// Errs holds one IdxError per failed promise, in the original list's order.
type AggregateError struct {
	Errs []error
}

func (e *AggregateError) Error() string {
	if len(e.Errs) == 0 {
		return "all promises were rejected"
	}
	b := strings.Builder{}
	b.WriteString("all promises were rejected: ")
	for i, err := range e.Errs {
		if i != 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error { return e.Errs }
