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

	"github.com/promisekit/promise/internal/status"
)

// genericPromise is the default implementation of the Promise interface.
//
// The zero value will block forever on any calls.
type genericPromise[T any] struct {
	// the group core this promise was created through, or nil.
	group *groupCore

	// closed when this promise is resolved.
	// this channel has one writer (one goroutine), which will close it,
	// but can have multiple readers (follow calls and combinators).
	syncChan chan struct{}

	// holds the result of the promise.
	// written once, before the syncChan channel is closed.
	//
	// don't read it unless the syncChan is known to be closed.
	res Result[T]

	// holds the state, fate, chain mode, and flags of the promise.
	// refer to the docs of the status package for more info.
	status status.PromStatus
}

func (p *genericPromise[T]) Val() T {
	return p.Res().Val()
}

func (p *genericPromise[T]) Err() error {
	return p.Res().Err()
}

func (p *genericPromise[T]) State() State {
	return p.Res().State()
}

func (p *genericPromise[T]) Wait() {
	p.status.RegWait()
	p.waitCall()
}

func (p *genericPromise[T]) WaitChan() chan struct{} {
	c := make(chan struct{})

	go func(c chan struct{}) {
		p.Wait()
		close(c)
	}(c)

	return c
}

func (p *genericPromise[T]) waitCall() (s uint32) {
	// wait for the promise to be resolved
	s = p.wait()

	if !status.IsChainAtLeastRead(s) && !status.IsFateHandled(s) {
		if status.IsStatePanicked(s) {
			// the promise is panicked, not handled, and there are no chained
			// calls to handle it, run the uncaught panic handler, and continue.
			p.uncaughtPanicHandler()
		}

		if status.IsStateRejected(s) {
			// the promise is rejected, not handled, and there are no chained
			// calls to handle it, run the uncaught error handler, and continue.
			p.uncaughtErrorHandler()
		}
	}

	return
}

func (p *genericPromise[T]) Res() Result[T] {
	p.status.RegRead()

	// wait for the promise to be resolved, then mark it as handled.
	p.wait()
	return handleRead(p)
}

func (p *genericPromise[T]) Callback(
	cb func(ctx context.Context, res Result[T]),
) {
	if cb == nil {
		panic(nilCallbackPanicMsg)
	}
	if p.syncChan == nil {
		// the promise can never be resolved, so the callback can never run.
		return
	}

	p.status.RegRead()
	p.group.reserveGoroutine()
	ctx, cancel := p.group.callbackCtx()
	go callbackCall(p, readCallback[T, T](cb), ctx, cancel)
}

func callbackCall[T any](
	p *genericPromise[T],
	cb readCallback[T, T],
	ctx context.Context,
	cancel context.CancelFunc,
) {
	// make sure we free this goroutine reservation
	defer p.group.freeGoroutine()

	// wait for the promise to be resolved, then mark it as handled.
	p.wait()
	res := handleRead(p)

	defer cancel()

	// there's no next promise to carry a panic from the callback, so route
	// it to the uncaught panic handler directly.
	defer func() {
		if v := recover(); v != nil {
			p.group.uncaughtPanic(v)
		}
	}()

	cb.call(ctx, res)
}

func (p *genericPromise[T]) Delay(
	d time.Duration,
	cond ...DelayCond,
) Promise[T] {
	if p.syncChan == nil {
		return newPromBlocking[T]()
	}

	_, s := p.status.RegFollow()
	flags := getDelayFlags(cond)
	p.group.reserveGoroutine()
	nextProm := newPromFollow[T](p.group, s)
	go delayFollowCall(p, nextProm, d, flags)
	return nextProm
}

func delayFollowCall[T any](
	prevProm *genericPromise[T],
	nextProm *genericPromise[T],
	dd time.Duration,
	flags delayFlags,
) {
	// make sure we free this goroutine reservation
	defer prevProm.group.freeGoroutine()

	// wait for the previous promise to be resolved
	s := prevProm.wait()

	// mark prevProm as 'Handled', and check whether we should continue or not.
	// the res value returned will hold the correct value that should be used.
	res, ok := handleFollow(prevProm, nextProm, false)
	if !ok {
		// it's not a valid handle. it's considered a failure.
		if flags.onError {
			time.Sleep(dd)
		}
		resolveToRejectedRes(nextProm, res)
		return
	}

	switch {
	case status.IsStateFulfilled(s):
		if flags.onSuccess {
			time.Sleep(dd)
		}
		resolveToFulfilledRes(nextProm, res)
	case status.IsStateRejected(s):
		if flags.onError {
			time.Sleep(dd)
		}
		resolveToRejectedRes(nextProm, res)
	case status.IsStatePanicked(s):
		if flags.onPanic {
			time.Sleep(dd)
		}
		resolveToPanickedRes(nextProm, res)
	}
}

func (p *genericPromise[T]) Then(
	thenCb func(ctx context.Context, val T) Result[T],
) Promise[T] {
	if thenCb == nil {
		panic(nilCallbackPanicMsg)
	}
	if p.syncChan == nil {
		return newPromBlocking[T]()
	}

	_, s := p.status.RegFollow()
	p.group.reserveGoroutine()
	nextProm := newPromFollow[T](p.group, s)
	ctx, cancel := p.group.callbackCtx()
	go thenFollowCall(p, nextProm, thenCallback[T, T](thenCb), ctx, cancel)
	return nextProm
}

func thenFollowCall[T any](
	prevProm *genericPromise[T],
	nextProm *genericPromise[T],
	cb thenCallback[T, T],
	ctx context.Context,
	cancel context.CancelFunc,
) {
	// make sure we free this goroutine reservation
	defer prevProm.group.freeGoroutine()

	// wait for the previous promise to be resolved
	s := prevProm.wait()

	// 'Then' can handle only the 'Fulfilled' state, so adopt the previous
	// result otherwise
	if !status.IsStateFulfilled(s) {
		cancel()
		handleInvalidFollow(prevProm, nextProm, s)
		return
	}

	// mark prev as 'Handled', and check whether we should continue or not.
	res, ok := handleFollow(prevProm, nextProm, true)
	if !ok {
		// return, since the next promise is now resolved
		cancel()
		return
	}

	// run the callback with the actual promise result
	runCallback[T, T](nextProm, cb, res, true, false, ctx, cancel)
}

func (p *genericPromise[T]) Catch(
	catchCb func(ctx context.Context, val T, err error) Result[T],
) Promise[T] {
	if catchCb == nil {
		panic(nilCallbackPanicMsg)
	}
	if p.syncChan == nil {
		return newPromBlocking[T]()
	}

	_, s := p.status.RegFollow()
	p.group.reserveGoroutine()
	nextProm := newPromFollow[T](p.group, s)
	ctx, cancel := p.group.callbackCtx()
	go catchFollowCall(p, nextProm, catchCallback[T, T](catchCb), ctx, cancel)
	return nextProm
}

func catchFollowCall[T any](
	prevProm *genericPromise[T],
	nextProm *genericPromise[T],
	cb catchCallback[T, T],
	ctx context.Context,
	cancel context.CancelFunc,
) {
	// make sure we free this goroutine reservation
	defer prevProm.group.freeGoroutine()

	// wait for the previous promise to be resolved
	s := prevProm.wait()

	// 'Catch' can handle only the 'Rejected' state, so adopt the previous
	// result otherwise
	if !status.IsStateRejected(s) {
		cancel()
		handleInvalidFollow(prevProm, nextProm, s)
		return
	}

	// mark prev as 'Handled'.
	// the res value returned will hold the correct value that should be
	// handled by the callback, including the consumed result on an invalid
	// handle, as a Catch callback cares about the error either way.
	res, _ := handleFollow(prevProm, nextProm, false)

	// run the callback with the actual promise result
	runCallback[T, T](nextProm, cb, res, true, false, ctx, cancel)
}

func (p *genericPromise[T]) Recover(
	recoverCb func(ctx context.Context, v any) Result[T],
) Promise[T] {
	if recoverCb == nil {
		panic(nilCallbackPanicMsg)
	}
	if p.syncChan == nil {
		return newPromBlocking[T]()
	}

	_, s := p.status.RegFollow()
	p.group.reserveGoroutine()
	nextProm := newPromFollow[T](p.group, s)
	ctx, cancel := p.group.callbackCtx()
	go recoverFollowCall(p, nextProm, recoverCallback[T, T](recoverCb), ctx, cancel)
	return nextProm
}

func recoverFollowCall[T any](
	prevProm *genericPromise[T],
	nextProm *genericPromise[T],
	cb recoverCallback[T, T],
	ctx context.Context,
	cancel context.CancelFunc,
) {
	// make sure we free this goroutine reservation
	defer prevProm.group.freeGoroutine()

	// wait for the previous promise to be resolved
	s := prevProm.wait()

	// 'Recover' can handle only the 'Panicked' state, so adopt the previous
	// result otherwise
	if !status.IsStatePanicked(s) {
		cancel()
		handleInvalidFollow(prevProm, nextProm, s)
		return
	}

	// mark prev as 'Handled', and check whether we should continue or not.
	res, ok := handleFollow(prevProm, nextProm, true)
	if !ok {
		// return, since the next promise is now resolved
		cancel()
		return
	}

	// run the callback with the actual promise result
	runCallback[T, T](nextProm, cb, res, true, false, ctx, cancel)
}

func (p *genericPromise[T]) Finally(
	finallyCb func(ctx context.Context),
) Promise[T] {
	if finallyCb == nil {
		panic(nilCallbackPanicMsg)
	}
	if p.syncChan == nil {
		return newPromBlocking[T]()
	}

	// Finally doesn't handle the previous promise's result, it only reads it,
	// so a Rejected or Panicked result stays un-handled on the next promise.
	_, s := p.status.RegRead()
	p.group.reserveGoroutine()
	nextProm := newPromFollow[T](p.group, s)
	ctx, cancel := p.group.callbackCtx()
	go finallyFollowCall(p, nextProm, finallyCallback[T, T](finallyCb), ctx, cancel)
	return nextProm
}

// finallyFollowCall is like a follow call, except that it can't set the
// 'Handled' flag (handle the promise's result), and the next promise always
// adopts the previous promise's result.
// if we made Finally a normal follow method (like Then), it would be possible
// to call it on a panicked promise and return a fulfilled promise, and the
// panic would be dismissed implicitly, which is something we don't want.
func finallyFollowCall[T any](
	prevProm *genericPromise[T],
	nextProm *genericPromise[T],
	cb finallyCallback[T, T],
	ctx context.Context,
	cancel context.CancelFunc,
) {
	// make sure we free this goroutine reservation
	defer prevProm.group.freeGoroutine()

	// wait for the previous promise to be resolved
	prevProm.wait()

	// the next promise adopts the previous result, unless the callback
	// panics, in which case the panic takes over.
	res := getFinalRes(prevProm.res)
	defer handleReturns(nextProm, &res)
	defer cancel()

	cb.call(ctx, res)
}
