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
	"time"
)

// Promise represents some asynchronous work. It offers ways to get the
// eventual result of that work, and/or build a computation pipeline assuming
// that result is known.
//
// It's a private interface, which can only be implemented by the types of
// this module.
type Promise[T any] interface {
	// Result is the result of this Promise, once it's resolved.
	// Accessing any of its methods will block until the Promise is resolved.
	// Having the Promise implement Result means that it can be returned
	// from a callback as-is.
	Result[T]

	// Wait waits for the promise to be resolved.
	Wait()

	// WaitChan returns a newly created channel that's closed after the
	// promise is resolved.
	WaitChan() chan struct{}

	// Res waits for the promise to be resolved, and returns its result.
	//
	// On a one-time promise, the result is returned to the first handling
	// call only, and any later call gets a Rejected result whose error is
	// ErrPromiseConsumed.
	Res() Result[T]

	// Callback waits for the promise to be resolved, on a new goroutine,
	// then calls cb with the promise's result.
	// Unlike the follow calls, it doesn't create a new promise, so the
	// result it handles terminates the chain.
	//
	// It will panic if a nil callback is passed.
	Callback(cb func(ctx context.Context, res Result[T]))

	// Delay returns a Promise value which will be resolved to this Promise
	// (by adopting its Result value and state), after a delay of at least
	// duration d. The delay starts after this Promise is resolved.
	//
	// The delay is applied on the conditions described by the passed
	// DelayCond values, which default to OnAll.
	Delay(d time.Duration, cond ...DelayCond) Promise[T]

	// Then waits for the promise to be resolved, and calls the thenCb
	// function, only if the promise is resolved to Fulfilled.
	// For any other state, the returned Promise adopts this promise's
	// result without calling the callback.
	//
	// It returns a Promise value, which will be resolved to the Result
	// value returned from the thenCb.
	//
	// It will panic if a nil callback is passed.
	//
	// For more details, see 'Callback Notes' in the package comment.
	Then(thenCb func(ctx context.Context, val T) Result[T]) Promise[T]

	// Catch waits for the promise to be resolved, and calls the catchCb
	// function, only if the promise is resolved to Rejected.
	// For any other state, the returned Promise adopts this promise's
	// result without calling the callback.
	//
	// The result is passed here with the error, because, in Go, errors are
	// just values, so returning them is not always considered an unwanted
	// behaviour (example: io.EOF), and some logic may depend on both.
	//
	// Note that if the catchCb returns the res as-is, the returned promise
	// will be Rejected too, as the result still holds a non-nil error.
	//
	// It will panic if a nil callback is passed.
	//
	// For more details, see 'Callback Notes' in the package comment.
	Catch(catchCb func(ctx context.Context, val T, err error) Result[T]) Promise[T]

	// Recover waits for the promise to be resolved, and calls the recoverCb
	// function, only if the promise is resolved to Panicked.
	// For any other state, the returned Promise adopts this promise's
	// result without calling the callback.
	//
	// The v parameter holds the value that was passed to the panic call
	// which caused this promise to be Panicked.
	//
	// It will panic if a nil callback is passed.
	//
	// For more details, see 'Callback Notes' in the package comment.
	Recover(recoverCb func(ctx context.Context, v any) Result[T]) Promise[T]

	// Finally waits for the promise to be resolved, and calls the finallyCb
	// function, regardless of the promise's state.
	//
	// It returns a Promise value, which will be resolved to this promise's
	// result, so a Rejected or Panicked result still has to be handled on
	// the returned promise's chain.
	//
	// It will panic if a nil callback is passed.
	Finally(finallyCb func(ctx context.Context)) Promise[T]

	// this is a private interface that's specific to the different types and
	// functions in this module, and knows about them.
	privateImplementation()

	impl() *genericPromise[T]
}

// State is the state of a Promise or a Result value.
type State int

const (
	// the order here matters
	Pending State = iota
	Fulfilled
	Rejected
	Panicked
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	case Panicked:
		return "panicked"
	default:
		return "<unknown>"
	}
}
