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

// Package promise provides a generic promise implementation, with the four
// standard combinators, All, AllSettled, Race, and Any.
//
// A Promise provides an easy way for returning results from a goroutine,
// waiting for it to finish, and composing the outcomes of multiple
// independently-settling computations under a completion policy.
// The model follows Promises/A+ where it maps onto Go, with Go's idioms kept
// intact: errors are values returned as the last parameter, and panics are
// distinct from errors.
//
// A Promise has four states, and it can be in only one of them, at any time:
// Pending: the computation that corresponds to this Promise has not finished.
// Fulfilled: the computation that corresponds to this Promise has finished and
// returned a Result value with a nil error.
// Rejected: the computation that corresponds to this Promise has finished and
// returned a Result value with a non-nil error.
// Panicked: the computation that corresponds to this Promise has caused a panic.
//
// A Promise has three fates, and it can be in only one of them, at any time:
// Unresolved: the computation that corresponds to this Promise is still working,
// and the final state of the Promise is still unknown.
// Resolved: the state of the Promise is now known, and final.
// Handled: the result of the Promise has been passed to some call of its methods.
//
// General Notes:-
//
// * Once the Promise's fate is Resolved, its result value will not change.
//
// * A Promise whose fate is Unresolved, its state must be Pending.
//
// * For a Promise's fate to be Handled, its fate must first be Resolved.
//
// Combinators:-
//
// The combinators aggregate the outcomes of multiple Promise values into one
// Promise, under the standard completion policies:
//
// * All waits for all promises to fulfill, and settles with the first Rejected
// or Panicked promise otherwise.
//
// * AllSettled waits for all promises to settle, and always fulfills, with
// every promise's result, whatever its state.
//
// * Race settles with the first promise to settle, whatever its state.
//
// * Any fulfills with the first promise to fulfill, and rejects with an
// AggregateError only if all promises failed.
//
// Combinator results are positional: each aggregated result is an IdxRes value
// that carries the index of its promise in the original list passed.
//
// Callback Notes:-
//
// * The Result value returned from a callback must not be modified after return.
//
// * If a callback returns a Result value with a non-nil error, the returned
// Promise will be a Rejected promise, and all subsequent promises in any chain
// derived from it, until the error is caught on each of these chains (by a
// Catch call).
//
// * If a callback causes a panic, the returned Promise will be a Panicked
// promise, and all subsequent promises in any chain derived from it, until
// recovering from the panic on each of these chains (by a Recover call).
//
// * A Rejected or Panicked promise whose chain ends without its result being
// handled routes the result to the uncaught-error or uncaught-panic handler,
// which can be set per Group, and defaults to logging the outcome.
package promise
