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
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// GroupConfig carries the configuration of a Group.
type GroupConfig struct {
	// UncaughtPanicHandler, if set, overrides the default handler that's
	// called with the panic value of any Panicked promise of this group
	// whose chain ends without the panic being recovered.
	UncaughtPanicHandler func(v any)

	// UncaughtErrorHandler, if set, overrides the default handler that's
	// called with the error of any Rejected promise of this group whose
	// chain ends without the error being caught.
	UncaughtErrorHandler func(err error)

	// Size is the allowed number of goroutines which this group can run.
	// This includes goroutines created for both, constructor calls (Go,
	// GoRes, etc.) and follow calls (Then, Catch, etc.).
	// If it's 0 or less, then the group size is unlimited.
	Size int

	// CancelAllCtxOnFailure, if true, will result in canceling all Context
	// values passed to all callbacks, once any promise of this group is
	// resolved to Rejected or Panicked without its result being handled.
	// The default behavior is never canceling the callbacks' Context value
	// on any failures.
	CancelAllCtxOnFailure bool

	// NeverCancelCallbackCtx, if true, will result in passing a never
	// canceled Context value to all callbacks.
	// If CancelAllCtxOnFailure is true, this will be ignored.
	// The default behavior is canceling the callback's Context value once
	// the callback returns.
	NeverCancelCallbackCtx bool

	// OnetimeResultHandling is used to enforce that the Result value of any
	// promise of this group is handled only one time.
	// Any further attempt to use the Result value will return an erroneous
	// Result value with its Err method returning ErrPromiseConsumed.
	OnetimeResultHandling bool
}

// Group scopes the creation of promises, and carries their shared behavior:
// the goroutine budget, the uncaught-result handlers, and the callbacks'
// Context values.
//
// A nil *Group is valid, and behaves like the package-level constructors.
type Group[T any] struct {
	core groupCore
}

func NewGroup[T any](c ...*GroupConfig) *Group[T] {
	g := &Group[T]{}

	if len(c) != 0 && c[0] != nil {
		if cb := c[0].UncaughtPanicHandler; cb != nil {
			g.core.uncaughtPanicHandler = cb
		}
		if cb := c[0].UncaughtErrorHandler; cb != nil {
			g.core.uncaughtErrorHandler = cb
		}

		if size := c[0].Size; size > 0 {
			g.core.sem = semaphore.NewWeighted(int64(size))
		}

		if c[0].CancelAllCtxOnFailure {
			g.core.ctx, g.core.cancel = context.WithCancel(context.Background())
		}

		if c[0].NeverCancelCallbackCtx && !c[0].CancelAllCtxOnFailure {
			g.core.neverCancelCallbackCtx = true
		}

		if c[0].OnetimeResultHandling {
			g.core.onetimeResultHandling = true
		}
	}

	return g
}

// Wait waits for all the promises of this group, including the promises of
// their follow calls, to be resolved, and all their callbacks to return.
func (g *Group[T]) Wait() {
	g.core.wg.Wait()
}

func (g *Group[T]) gc() *groupCore {
	if g == nil {
		return nil
	}
	return &g.core
}

// Chan returns a Promise that's resolved to the first Result value received
// on the provided resChan.
//
// If the resChan is closed without sending a Result value, the returned
// promise is fulfilled to the empty result.
func (g *Group[T]) Chan(resChan chan Result[T]) Promise[T] {
	return chanCall[T](g.gc(), resChan)
}

func chanCall[T any](g *groupCore, resChan <-chan Result[T]) Promise[T] {
	if resChan == nil {
		panic(nilResChanPanicMsg)
	}

	g.reserveGoroutine()
	p := newPromInter[T](g)
	go chanHandler(p, resChan)
	return p
}

func chanHandler[T any](p *genericPromise[T], resChan <-chan Result[T]) {
	defer p.group.freeGoroutine()
	res := <-resChan
	resolveToRes(p, res)
}

// Ctx returns a Promise that's rejected to the ctx's error, once ctx is done.
//
// If ctx can never be done, the returned promise is never resolved.
func (g *Group[T]) Ctx(ctx context.Context) Promise[T] {
	return ctxCall[T](g.gc(), ctx)
}

func ctxCall[T any](g *groupCore, ctx context.Context) Promise[T] {
	if ctx == nil || ctx.Done() == nil {
		// since this ctx value can never be closed, the equivalent outcome
		// would be a Promise that's never resolved.
		// so, return that equivalent value without creating any unneeded
		// resources.
		return newPromBlocking[T]()
	}

	g.reserveGoroutine()
	p := newPromInter[T](g)
	go ctxHandler(p, ctx)
	return p
}

func ctxHandler[T any](p *genericPromise[T], ctx context.Context) {
	defer p.group.freeGoroutine()
	<-ctx.Done()
	resolveToRejectedRes(p, ctxResult[T]{ctx: ctx})
}

// Go runs the provided function, fun, on a new goroutine, and returns a
// Promise that's fulfilled to the empty result once fun returns, or resolved
// to Panicked if fun causes a panic.
//
// It will panic if a nil function is passed.
func (g *Group[T]) Go(fun func()) Promise[T] {
	return goCall[T](g.gc(), fun)
}

func goCall[T any](g *groupCore, fun func()) Promise[T] {
	if fun == nil {
		panic(nilCallbackPanicMsg)
	}

	g.reserveGoroutine()
	p := newPromInter[T](g)
	ctx, cancel := g.callbackCtx()
	go runCallback[T, T](p, goCallback[T, T](fun), nil, false, true, ctx, cancel)
	return p
}

// GoErr runs the provided function, fun, on a new goroutine, and returns a
// Promise that's resolved to Rejected or Fulfilled, depending on whether fun
// returned a non-nil error or not, or to Panicked if fun causes a panic.
//
// It will panic if a nil function is passed.
func (g *Group[T]) GoErr(fun func() error) Promise[T] {
	return goErrCall[T](g.gc(), fun)
}

func goErrCall[T any](g *groupCore, fun func() error) Promise[T] {
	if fun == nil {
		panic(nilCallbackPanicMsg)
	}

	g.reserveGoroutine()
	p := newPromInter[T](g)
	ctx, cancel := g.callbackCtx()
	go runCallback[T, T](p, goErrCallback[T, T](fun), nil, true, true, ctx, cancel)
	return p
}

// GoRes runs the provided function, fun, on a new goroutine, and returns a
// Promise that's resolved to the Result value returned from fun, or to
// Panicked if fun causes a panic.
//
// It will panic if a nil function is passed.
func (g *Group[T]) GoRes(fun func(ctx context.Context) Result[T]) Promise[T] {
	return goResCall[T](g.gc(), fun)
}

func goResCall[T any](g *groupCore, fun func(ctx context.Context) Result[T]) Promise[T] {
	if fun == nil {
		panic(nilCallbackPanicMsg)
	}

	g.reserveGoroutine()
	p := newPromInter[T](g)
	ctx, cancel := g.callbackCtx()
	go runCallback[T, T](p, goResCallback[T, T](fun), nil, true, true, ctx, cancel)
	return p
}

// Resolver runs the provided function, fun, on a new goroutine, passing it a
// fulfill and a reject function, in the style of the JS Promise executor.
// The first call to either of them resolves the returned promise, and any
// later call to either is a no-op.
//
// If fun returns without calling either, the returned promise is fulfilled
// to the empty result, and if it causes a panic before calling either, the
// returned promise is resolved to Panicked.
//
// It will panic if a nil function is passed.
func (g *Group[T]) Resolver(
	fun func(ctx context.Context, fulfill func(val ...T), reject func(err error, val ...T)),
) Promise[T] {
	return resolverCall[T](g.gc(), fun)
}

func resolverCall[T any](
	g *groupCore,
	fun func(ctx context.Context, fulfill func(val ...T), reject func(err error, val ...T)),
) Promise[T] {
	if fun == nil {
		panic(nilCallbackPanicMsg)
	}

	g.reserveGoroutine()
	p := newPromInter[T](g)
	ctx, cancel := g.callbackCtx()
	go resolverHandler(p, fun, ctx, cancel)
	return p
}

func resolverHandler[T any](
	p *genericPromise[T],
	cb func(ctx context.Context, fulfill func(val ...T), reject func(err error, val ...T)),
	ctx context.Context,
	cancel context.CancelFunc,
) {
	// make sure we free this goroutine reservation
	defer p.group.freeGoroutine()

	// defer the return handler to handle panics, and resolve the promise
	// to the empty result if the callback never called fulfill nor reject.
	defer handleReturns[T](p, nil)
	defer cancel()

	// create the resolver functions and pass them to the callback
	fulfill := func(val ...T) {
		set, _ := p.status.SetResolving()
		if !set {
			return
		}

		// only one call (from fulfill or reject) will reach this point

		if len(val) == 0 {
			resolveToFulfilledRes[T](p, nil)
		} else {
			resolveToFulfilledRes[T](p, Val(val[0]))
		}
	}

	reject := func(err error, val ...T) {
		if err == nil {
			fulfill(val...)
			return
		}

		set, _ := p.status.SetResolving()
		if !set {
			return
		}

		// only one call (from fulfill or reject) will reach this point

		if len(val) == 0 {
			resolveToRejectedRes[T](p, Err[T](err))
		} else {
			resolveToRejectedRes[T](p, ValErr(val[0], err))
		}
	}

	cb(ctx, fulfill, reject)
}

// Delay returns a Promise that's resolved to the provided Result value, res,
// after waiting for at least duration d, on the conditions described by the
// passed DelayCond values, which default to OnAll.
func (g *Group[T]) Delay(res Result[T], d time.Duration, cond ...DelayCond) Promise[T] {
	return delayCall[T](g.gc(), res, d, cond...)
}

func delayCall[T any](
	g *groupCore,
	res Result[T],
	d time.Duration,
	cond ...DelayCond,
) Promise[T] {
	flags := getDelayFlags(cond)
	g.reserveGoroutine()
	p := newPromInter[T](g)
	go delayHandler(p, res, d, flags)
	return p
}

// handles rejection and fulfillment only
func delayHandler[T any](
	p *genericPromise[T],
	res Result[T],
	dd time.Duration,
	flags delayFlags,
) {
	defer p.group.freeGoroutine()

	if res != nil && res.Err() != nil {
		if flags.onError {
			time.Sleep(dd)
		}
		resolveToRejectedRes(p, res)
	} else {
		if flags.onSuccess {
			time.Sleep(dd)
		}
		resolveToFulfilledRes(p, res)
	}
}

// Wrap returns a Promise that's resolved, synchronously, to the provided
// Result value, res.
//
// If res holds a non-nil error, the returned promise is Rejected, but its
// creation alone doesn't run the uncaught error handling logic; only the
// promises of its follow calls do.
func (g *Group[T]) Wrap(res Result[T]) Promise[T] {
	return wrapCall[T](g.gc(), res)
}

func wrapCall[T any](g *groupCore, res Result[T]) Promise[T] {
	p := newPromSync[T](g)
	p.resolveToResSync(res)
	return p
}

// Panic returns a Promise that's resolved to Panicked, synchronously, with
// the provided value, v.
//
// The value v is only accessible through a Recover callback, or through a
// PanicError using errors.As.
func (g *Group[T]) Panic(v any) Promise[T] {
	return panicCall[T](g.gc(), v)
}

func panicCall[T any](g *groupCore, v any) Promise[T] {
	p := newPromSync[T](g)
	p.resolveToResSync(promisePanickedResult[T]{v: v})
	return p
}

// groupCore carries the type-independent part of a Group, so promises of
// different type parameters, like the ones combinators create, can share it.
type groupCore struct {
	uncaughtPanicHandler func(v any)
	uncaughtErrorHandler func(err error)

	wg  sync.WaitGroup
	sem *semaphore.Weighted

	neverCancelCallbackCtx bool
	onetimeResultHandling  bool

	// ctx will be non-nil if the group is meant to cancel all callbacks'
	// Context values once any of its promises fail without being handled.
	ctx    context.Context
	cancel context.CancelFunc
}

func (g *groupCore) reserveGoroutine() {
	if g == nil {
		return
	}
	// add to the wait group before acquiring, to make sure that this
	// goroutine reservation is accounted for.
	g.wg.Add(1)
	if g.sem != nil {
		// the context can't expire, so the error is impossible.
		_ = g.sem.Acquire(context.Background(), 1)
	}
}

func (g *groupCore) freeGoroutine() {
	if g == nil {
		return
	}
	g.wg.Done()
	if g.sem != nil {
		g.sem.Release(1)
	}
}

func noop() {}

// callbackCtx returns the effective Context for a callback, and its
// CancelFunc, if one is needed.
func (g *groupCore) callbackCtx() (context.Context, context.CancelFunc) {
	if g != nil {
		if g.ctx != nil {
			return context.WithCancel(g.ctx)
		}
		if g.neverCancelCallbackCtx {
			return context.Background(), noop
		}
	}
	sc := newSyncCtx()
	return sc, func() { cancelSyncCtx(sc) }
}

func (g *groupCore) uncaughtPanic(v any) {
	// if there's a group cancel function, call it before the handler
	if g != nil && g.cancel != nil {
		g.cancel()
	}

	if g != nil && g.uncaughtPanicHandler != nil {
		g.uncaughtPanicHandler(v)
		return
	}
	defUncaughtPanicHandler(v)
}

func (g *groupCore) uncaughtError(err error) {
	// if there's a group cancel function, call it before the handler
	if g != nil && g.cancel != nil {
		g.cancel()
	}

	if g != nil && g.uncaughtErrorHandler != nil {
		g.uncaughtErrorHandler(err)
		return
	}
	defUncaughtErrorHandler(err)
}
