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

// the package-level constructors create promises that don't belong to any
// group, so they run with an unlimited goroutine budget and the default
// uncaught-result handlers.

// Chan returns a Promise that's resolved to the first Result value received
// on the provided resChan.
//
// The resChan must be a bi-directional chan (buffered or unbuffered), which
// is used from the caller (creator) side to do only one of the following,
// either send a Result value on it, for one time, or just close it.
//
// When a Result value is sent on it, the returned promise is resolved to
// that value, and when it's closed, the returned promise is fulfilled to the
// empty result.
//
// It will panic if a nil channel is passed.
func Chan[T any](resChan chan Result[T]) Promise[T] {
	return chanCall[T](nil, resChan)
}

// Ctx returns a Promise that's rejected to the ctx's error, once ctx is done.
//
// If ctx can never be done, the returned promise is never resolved.
func Ctx[T any](ctx context.Context) Promise[T] {
	return ctxCall[T](nil, ctx)
}

// Go runs the provided function, fun, on a new goroutine, and returns a
// Promise that's fulfilled to the empty result once fun returns, or resolved
// to Panicked if fun causes a panic.
//
// If the returned promise is a Panicked promise, and its panic is not
// recovered (by a Recover call) before the end of its chain, the uncaught
// panic handler is called with the panic value.
//
// It will panic if a nil function is passed.
func Go(fun func()) Promise[any] {
	return goCall[any](nil, fun)
}

// GoErr runs the provided function, fun, on a new goroutine, and returns a
// Promise that's resolved to Rejected or Fulfilled, depending on whether fun
// returned a non-nil error or not, or to Panicked if fun causes a panic.
//
// It will panic if a nil function is passed.
func GoErr(fun func() error) Promise[any] {
	return goErrCall[any](nil, fun)
}

// GoRes runs the provided function, fun, on a new goroutine, and returns a
// Promise that's resolved to the Result value returned from fun, or to
// Panicked if fun causes a panic.
//
// If the returned promise is a Rejected promise, and the error is not caught
// (by a Catch call) before the end of its chain, nor the promise's result is
// read (by a Res call), the uncaught error handler is called with the error.
//
// It will panic if a nil function is passed.
func GoRes[T any](fun func(ctx context.Context) Result[T]) Promise[T] {
	return goResCall[T](nil, fun)
}

// Resolver runs the provided function, fun, on a new goroutine, passing it a
// fulfill and a reject function, in the style of the JS Promise executor.
// The first call to either of them resolves the returned promise, and any
// later call to either is a no-op.
//
// It will panic if a nil function is passed.
func Resolver[T any](
	fun func(ctx context.Context, fulfill func(val ...T), reject func(err error, val ...T)),
) Promise[T] {
	return resolverCall[T](nil, fun)
}

// Delay returns a Promise that's resolved to the provided Result value, res,
// after waiting for at least duration d, on the conditions described by the
// passed DelayCond values, which default to OnAll.
func Delay[T any](res Result[T], d time.Duration, cond ...DelayCond) Promise[T] {
	return delayCall[T](nil, res, d, cond...)
}

// Wrap returns a Promise that's resolved, synchronously, to the provided
// Result value, res.
//
// If res holds a non-nil error, the returned promise is Rejected, but its
// creation alone doesn't run the uncaught error handling logic; only the
// promises of its follow calls do.
func Wrap[T any](res Result[T]) Promise[T] {
	return wrapCall[T](nil, res)
}

// Panic returns a Promise that's resolved to Panicked, synchronously, with
// the provided value, v.
//
// All subsequent promises in any chain derived from the returned promise
// need to recover the panic (by a Recover call), before the end of each
// chain, otherwise the uncaught panic handler is called with v.
func Panic[T any](v any) Promise[T] {
	return panicCall[T](nil, v)
}
