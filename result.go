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
	"context"
	"fmt"
)

// Result is a container for a settled outcome: a value, an error, and the
// state they correspond to.
// Once created, a Result value is immutable.
type Result[T any] interface {
	Val() T
	Err() error
	State() State
}

// Empty returns a Fulfilled Result with the zero value of T.
func Empty[T any]() Result[T] {
	return emptyResult[T]{}
}

// Val returns a Fulfilled Result with the provided value.
func Val[T any](val T) Result[T] {
	return valResult[T]{val: val}
}

// Err returns a Rejected Result with the provided error.
// If err is nil, the Result is Fulfilled.
func Err[T any](err error) Result[T] {
	if err == nil {
		return emptyResult[T]{}
	}
	return errResult[T]{err: err}
}

// ValErr returns a Result with the provided value and error.
// If err is nil, the Result is Fulfilled, otherwise it's Rejected.
func ValErr[T any](val T, err error) Result[T] {
	if err == nil {
		return valResult[T]{val: val}
	}
	return valErrResult[T]{val: val, err: err}
}

// IdxRes is a positional result view, that represents the result of the
// promise at index Idx in the original list provided to a combinator.
type IdxRes[T any] struct {
	Idx int
	Result[T]
}

func (ir IdxRes[T]) String() string {
	if ir.Result == nil {
		return "<nil>"
	}
	return fmt.Sprintf("[%d]%v", ir.Idx, ir.Result)
}

type emptyResult[T any] struct{}
type valResult[T any] struct{ val T }
type errResult[T any] struct{ err error }
type valErrResult[T any] struct {
	val T
	err error
}
type ctxResult[T any] struct{ ctx context.Context }

func (r emptyResult[T]) Val() (v T)  { return v }
func (r valResult[T]) Val() (v T)    { return r.val }
func (r errResult[T]) Val() (v T)    { return v }
func (r valErrResult[T]) Val() (v T) { return r.val }
func (r ctxResult[T]) Val() (v T)    { return v }

func (r emptyResult[T]) Err() error  { return nil }
func (r valResult[T]) Err() error    { return nil }
func (r errResult[T]) Err() error    { return r.err }
func (r valErrResult[T]) Err() error { return r.err }
func (r ctxResult[T]) Err() error    { return r.ctx.Err() }

func (r emptyResult[T]) State() State  { return Fulfilled }
func (r valResult[T]) State() State    { return Fulfilled }
func (r errResult[T]) State() State    { return Rejected }
func (r valErrResult[T]) State() State { return Rejected }
func (r ctxResult[T]) State() State {
	if r.ctx.Err() != nil {
		return Rejected
	}
	return Fulfilled
}

func (r emptyResult[T]) String() string {
	return "fulfilled: <nil>"
}
func (r valResult[T]) String() string {
	return fmt.Sprintf("fulfilled: %v", r.val)
}
func (r errResult[T]) String() string {
	return fmt.Sprintf("rejected: %s", r.err.Error())
}
func (r valErrResult[T]) String() string {
	return fmt.Sprintf("rejected: (%v, %s)", r.val, r.err.Error())
}
func (r ctxResult[T]) String() string {
	if err := r.ctx.Err(); err != nil {
		return fmt.Sprintf("rejected: %s", err.Error())
	}
	return "fulfilled: <nil>"
}
