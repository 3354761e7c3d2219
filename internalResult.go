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

import "fmt"

// internal result types.
// the purpose of these types is to reduce allocations when setting the Result
// of the resolved promise, and implement the required logic to investigate the
// error structure, using the error, errors.Unwrap, errors.Is and errors.As
// interfaces. also to ensure consistent string conversion of the results.

type panicResult interface {
	getPanicV() any
}

// promisePanickedResult is a Result and error implementation for Panicked
// results produced from callbacks that caused a panic.
type promisePanickedResult[T any] struct{ v any }

func (r promisePanickedResult[T]) Val() (v T)   { return v }
func (r promisePanickedResult[T]) Err() error   { return r }
func (r promisePanickedResult[T]) State() State { return Panicked }
func (r promisePanickedResult[T]) String() string {
	// same error message & format as the PanicError
	return fmt.Sprintf("panicked: %v", r.v)
}
func (r promisePanickedResult[T]) Error() string { return r.String() }
func (r promisePanickedResult[T]) Is(target error) bool {
	// make this error result implement the identity panic error value.
	return target == ErrPromisePanicked
}
func (r promisePanickedResult[T]) Unwrap() error {
	// try to return the panic value as an error value if it's really one.
	if err, ok := r.v.(error); ok {
		return err
	}
	return nil
}
func (r promisePanickedResult[T]) As(target any) bool {
	// populate the expected target with the panic value.
	if perr, ok := target.(*PanicError); ok {
		perr.V = r.v
		return true
	}
	return false
}
func (r promisePanickedResult[T]) getPanicV() any { return r.v }

// errPromiseConsumedResult is a static error result that returns
// ErrPromiseConsumed.
// it's used instead of saving the ErrPromiseConsumed error in a generic
// errResult value.
type errPromiseConsumedResult[T any] struct{}

func (r errPromiseConsumedResult[T]) Val() (v T)   { return v }
func (r errPromiseConsumedResult[T]) Err() error   { return ErrPromiseConsumed }
func (r errPromiseConsumedResult[T]) State() State { return Rejected }
func (r errPromiseConsumedResult[T]) String() string {
	return fmt.Sprintf("rejected: %s", ErrPromiseConsumed.Error())
}

// fulfilledResultMultiIdxRes is the Fulfilled result of the All and
// AllSettled combinators.
type fulfilledResultMultiIdxRes[T any] struct {
	vals []IdxRes[T]
}

func (r fulfilledResultMultiIdxRes[T]) Val() []IdxRes[T] { return r.vals }
func (r fulfilledResultMultiIdxRes[T]) Err() error       { return nil }
func (r fulfilledResultMultiIdxRes[T]) State() State     { return Fulfilled }
func (r fulfilledResultMultiIdxRes[T]) String() string {
	return fmt.Sprintf("fulfilled: %v", r.vals)
}

// failedResultMultiIdxRes is the Rejected or Panicked result of the All
// combinator, wrapping the first promise that failed.
type failedResultMultiIdxRes[T any] struct {
	fail IdxRes[T]
}

func (r failedResultMultiIdxRes[T]) Val() (v []IdxRes[T]) { return nil }
func (r failedResultMultiIdxRes[T]) Err() error           { return r }
func (r failedResultMultiIdxRes[T]) State() State         { return r.fail.State() }
func (r failedResultMultiIdxRes[T]) String() string {
	return fmt.Sprintf("%s: %s", r.fail.State().String(), r.fail.String())
}
func (r failedResultMultiIdxRes[T]) Error() string { return r.String() }
func (r failedResultMultiIdxRes[T]) Is(target error) bool {
	return target == ErrPromisePanicked && r.fail.State() == Panicked
}
func (r failedResultMultiIdxRes[T]) Unwrap() error {
	return IdxError{Idx: r.fail.Idx, Err: r.fail.Err()}
}
func (r failedResultMultiIdxRes[T]) As(target any) bool {
	switch perr := target.(type) {
	default:
		// return on non-supported target types.
		return false
	case *PanicError:
		pr, ok := r.fail.Result.(panicResult)
		if !ok {
			return false
		}
		perr.V = pr.getPanicV()
	case *IdxError:
		perr.Idx = r.fail.Idx
		perr.Err = r.fail.Err()
	}
	return true
}
func (r failedResultMultiIdxRes[T]) getPanicV() any {
	if pr, ok := r.fail.Result.(panicResult); ok {
		return pr.getPanicV()
	}
	return nil
}

// rejectedResultSingleIdxRes is the Rejected result of the Race combinator.
type rejectedResultSingleIdxRes[T any] struct {
	val IdxRes[T]
}

func (r rejectedResultSingleIdxRes[T]) Val() IdxRes[T] { return r.val }
func (r rejectedResultSingleIdxRes[T]) Err() error     { return r }
func (r rejectedResultSingleIdxRes[T]) State() State   { return Rejected }
func (r rejectedResultSingleIdxRes[T]) String() string {
	return fmt.Sprintf("rejected: %s", r.val.String())
}
func (r rejectedResultSingleIdxRes[T]) Error() string { return r.String() }
func (r rejectedResultSingleIdxRes[T]) Unwrap() error {
	return IdxError{Idx: r.val.Idx, Err: r.val.Err()}
}
func (r rejectedResultSingleIdxRes[T]) As(target any) bool {
	if perr, ok := target.(*IdxError); ok {
		perr.Idx = r.val.Idx
		perr.Err = r.val.Err()
		return true
	}
	return false
}

// panickedResultSingleIdxRes is the Panicked result of the Race combinator.
type panickedResultSingleIdxRes[T any] struct {
	val IdxRes[T]
}

func (r panickedResultSingleIdxRes[T]) Val() (v IdxRes[T]) { return v }
func (r panickedResultSingleIdxRes[T]) Err() error         { return r }
func (r panickedResultSingleIdxRes[T]) State() State       { return Panicked }
func (r panickedResultSingleIdxRes[T]) String() string {
	return fmt.Sprintf("panicked: %s", r.val.String())
}
func (r panickedResultSingleIdxRes[T]) Error() string { return r.String() }
func (r panickedResultSingleIdxRes[T]) Is(target error) bool {
	// make this error result implement the identity panic error value.
	return target == ErrPromisePanicked
}
func (r panickedResultSingleIdxRes[T]) Unwrap() error {
	return IdxError{Idx: r.val.Idx, Err: r.val.Err()}
}
func (r panickedResultSingleIdxRes[T]) As(target any) bool {
	switch perr := target.(type) {
	default:
		// return on non-supported target types.
		return false
	case *PanicError:
		pr, ok := r.val.Result.(panicResult)
		if !ok {
			return false
		}
		perr.V = pr.getPanicV()
	case *IdxError:
		perr.Idx = r.val.Idx
		perr.Err = r.val.Err()
	}
	return true
}
func (r panickedResultSingleIdxRes[T]) getPanicV() any {
	if pr, ok := r.val.Result.(panicResult); ok {
		return pr.getPanicV()
	}
	return nil
}
