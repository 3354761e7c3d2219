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
	"fmt"

	"github.com/promisekit/promise/internal/status"
)

// panic messages
const (
	nilCallbackPanicMsg = "promise: the provided callback is nil"
	nilResChanPanicMsg  = "promise: the provided resChan is nil"
)

// wait waits for the promise p to be resolved, by either blocking on
// receiving from the syncChan, or utilizing the fate value of the promise
// status.
//
// the syncChan is closed by the resolving logic, after the res field is
// written, so once it's known to be closed, reading res is safe.
func (p *genericPromise[T]) wait() (s uint32) {
	s = p.status.Load()

	// if the fate is 'Resolved' or 'Handled', don't wait, as they are
	// guaranteed to happen after the result is saved and after the syncChan
	// is closed.
	if status.IsFateResolved(s) || status.IsFateHandled(s) {
		return s
	}

	// a nil syncChan belongs to a promise that can never be resolved,
	// and receiving from it blocks forever, which is the expected behavior.
	<-p.syncChan

	// return the up-to-date status value
	return p.status.Load()
}

// getFinalRes returns the final result to be used when returned outside
// the scope of the internal functions here.
func getFinalRes[T any](res Result[T]) Result[T] {
	// if no result was set, then it's implicitly the empty result
	if res == nil {
		return emptyResult[T]{}
	}
	return res
}

// handleRead marks the promise as handled and returns its final result.
// on a one-time promise, only the first handling call gets the result, and
// any later one gets the consumed result.
func handleRead[T any](p *genericPromise[T]) Result[T] {
	validHandle, s := p.status.SetHandled()

	// if the promise isn't a one-time promise, all handle calls will be valid
	if !validHandle && !status.IsFlagsOnce(s) {
		validHandle = true
	}

	if !validHandle {
		return errPromiseConsumedResult[T]{}
	}

	return getFinalRes(p.res)
}

// handleFollow marks the previous promise as handled, and returns the result
// that should be handled by the follow callback.
// if the handle isn't valid, and resolveOnErr is true, the next promise is
// resolved to the consumed result.
func handleFollow[T any](
	prevProm *genericPromise[T],
	nextProm *genericPromise[T],
	resolveOnErr bool,
) (resToBeHandled Result[T], valid bool) {
	validHandle, s := prevProm.status.SetHandled()

	// if the promise isn't a one-time promise, all handle calls will be valid
	if !validHandle && !status.IsFlagsOnce(s) {
		validHandle = true
	}

	if !validHandle {
		if resolveOnErr {
			resolveToRejectedRes[T](nextProm, errPromiseConsumedResult[T]{})
			return nil, false
		}
		return errPromiseConsumedResult[T]{}, false
	}

	return getFinalRes(prevProm.res), true
}

// handleInvalidFollow resolves the next promise by adopting the previous
// promise's result, without handling it.
// it's used by then, catch, and recover calls, when the previous promise's
// state is not the one the call handles.
func handleInvalidFollow[T any](
	prevProm *genericPromise[T],
	nextProm *genericPromise[T],
	prevStatus uint32,
) {
	// return if the promise is resolved or being resolved by another call
	if set, _ := nextProm.status.SetResolving(); !set {
		return
	}

	switch {
	case status.IsStateFulfilled(prevStatus):
		resolveToFulfilledRes(nextProm, prevProm.res)
	case status.IsStateRejected(prevStatus):
		resolveToRejectedRes(nextProm, prevProm.res)
	case status.IsStatePanicked(prevStatus):
		resolveToPanickedRes(nextProm, prevProm.res)
	default:
		panic(fmt.Sprintf("promise: internal: unexpected state: '%b'", prevStatus))
	}
}

// handleReturns must be deferred.
// the callback function is called after a deferred call to this method.
// no internal call that may cause a panic should be called after this method.
func handleReturns[T any](prom *genericPromise[T], resP *Result[T]) {
	// make sure that only one call will resolve the promise, or return if
	// the promise is already resolved, so that we don't recover panics when
	// we don't need to.
	if set, _ := prom.status.SetResolving(); !set {
		return
	}

	if v := recover(); v == nil {
		// the callback returned normally, or with a nil panic value.
		if resP != nil {
			resolveToRes[T](prom, *resP)
		} else {
			// return from a callback that doesn't support Result returning.
			// this is equivalent to returning Empty[T] explicitly.
			resolveToFulfilledRes[T](prom, nil)
		}
	} else {
		// a panic happened, resolve to panicked with the panic value.
		resolveToPanickedRes[T](prom, promisePanickedResult[T]{v: v})
	}
}

// resolveToRes resolves the promise based on the state of the provided
// result, so adopted results keep their state, including Panicked ones.
//
// if called from handleReturns, it will be called once on the same promise,
// as it's protected by the Resolving fate setter.
func resolveToRes[T any](prom *genericPromise[T], res Result[T]) (s uint32) {
	if res == nil {
		return resolveToFulfilledRes(prom, nil)
	}
	switch res.State() {
	case Panicked:
		return resolveToPanickedRes(prom, res)
	case Rejected:
		return resolveToRejectedRes(prom, res)
	default:
		return resolveToFulfilledRes(prom, res)
	}
}

func resolveToPanickedRes[T any](
	prom *genericPromise[T],
	res Result[T],
) (s uint32) {
	// save the result, update the status, and close the syncChan to unblock
	// all waiting calls.
	prom.res = res
	s = prom.status.SetPanickedResolved()
	close(prom.syncChan)

	// if the promise is panicked, and the chain is empty (no follow, read
	// or wait calls), execute the uncaught panic handling logic.
	// otherwise, delay the handling of the uncaught panic to the last call
	// in the chain.
	if status.IsChainEmpty(s) {
		prom.uncaughtPanicHandler()
	}

	return
}

func resolveToRejectedRes[T any](
	prom *genericPromise[T],
	res Result[T],
) (s uint32) {
	prom.res = res
	s = prom.status.SetRejectedResolved()
	close(prom.syncChan)

	if status.IsChainEmpty(s) {
		prom.uncaughtErrorHandler()
	}

	return
}

func resolveToFulfilledRes[T any](
	prom *genericPromise[T],
	res Result[T],
) (s uint32) {
	prom.res = res
	s = prom.status.SetFulfilledResolved()
	close(prom.syncChan)
	return
}

func getPanicV[T any](res Result[T]) any {
	if pr, ok := res.(panicResult); ok {
		return pr.getPanicV()
	}
	return nil
}

func (p *genericPromise[T]) uncaughtPanicHandler() {
	p.group.uncaughtPanic(getPanicV(p.res))
}

func (p *genericPromise[T]) uncaughtErrorHandler() {
	p.group.uncaughtError(p.res.Err())
}

// sync resolving, for promises created through Wrap, Panic, or the
// combinators' immediate cases.
// the syncChan of such promises is already closed, so only the result and
// the status are written, and no uncaught handling runs at creation.

func (p *genericPromise[T]) resolveToResSync(res Result[T]) {
	if res == nil {
		p.res = nil
		p.status.SetFulfilledResolved()
		return
	}
	p.res = res
	switch res.State() {
	case Panicked:
		p.status.SetPanickedResolved()
	case Rejected:
		p.status.SetRejectedResolved()
	default:
		p.status.SetFulfilledResolved()
	}
}

func (p *genericPromise[T]) privateImplementation() {}

func (p *genericPromise[T]) impl() *genericPromise[T] { return p }

// newPromInter creates a new genericPromise which is resolved internally,
// using an internally allocated channel.
func newPromInter[T any](g *groupCore) *genericPromise[T] {
	p := &genericPromise[T]{
		group:    g,
		syncChan: make(chan struct{}),
	}
	if g != nil && g.onetimeResultHandling {
		p.status = status.PromStatus(status.FlagsTypeOnce)
	}
	return p
}

// newPromFollow creates a new genericPromise, for one of the follow methods,
// inheriting the chain's flags from the previous promise's status.
func newPromFollow[T any](g *groupCore, prevStatus uint32) *genericPromise[T] {
	p := newPromInter[T](g)
	p.status = status.NewFrom(prevStatus)
	return p
}

var closedChan = make(chan struct{})

func init() {
	close(closedChan)
}

// newPromSync creates a new genericPromise which is resolved synchronously,
// just after it's created, through resolveToResSync.
func newPromSync[T any](g *groupCore) *genericPromise[T] {
	p := &genericPromise[T]{
		group:    g,
		syncChan: closedChan,
	}
	if g != nil && g.onetimeResultHandling {
		p.status = status.PromStatus(status.FlagsTypeOnce)
	}
	return p
}

// newPromBlocking creates a new genericPromise which will never be resolved.
// the zero value of the promise blocks forever on any waiting call, as its
// nil syncChan can never be closed.
func newPromBlocking[T any]() *genericPromise[T] {
	return &genericPromise[T]{}
}
