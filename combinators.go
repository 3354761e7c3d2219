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
	"github.com/promisekit/promise/internal/status"
	"github.com/promisekit/promise/internal/uniquerand"
)

// All returns a Promise that's fulfilled once all the Promise values passed
// are fulfilled, with all their results, in the original list's order.
//
// If any of the Promise values passed is resolved to Rejected or Panicked,
// the returned Promise is resolved to the same state, with the failed
// promise's result, without waiting for the rest.
// The failed promise's index can be recovered from the returned promise's
// error, as an IdxError, using errors.As, and a propagated panic value as a
// PanicError.
//
// If no Promise values are passed, the returned Promise is fulfilled to an
// empty IdxRes list.
//
// It doesn't consume the results of the Promise values passed, so they can
// still be handled through their own chains.
func All[T any](p ...Promise[T]) Promise[[]IdxRes[T]] {
	return allCall(nil, p)
}

// All is the Group version of the package-level All.
// The aggregating work is accounted for in the group's goroutine budget and
// Wait call.
func (g *Group[T]) All(p ...Promise[T]) Promise[[]IdxRes[T]] {
	return allCall(g.gc(), p)
}

func allCall[T any](g *groupCore, p []Promise[T]) Promise[[]IdxRes[T]] {
	if len(p) == 0 {
		prom := newPromSync[[]IdxRes[T]](g)
		prom.resolveToResSync(fulfilledResultMultiIdxRes[T]{vals: []IdxRes[T]{}})
		return prom
	}

	regReads(p)
	g.reserveGoroutine()
	nextProm := newPromInter[[]IdxRes[T]](g)
	go allHandler(nextProm, p)
	return nextProm
}

func allHandler[T any](nextProm *genericPromise[[]IdxRes[T]], p []Promise[T]) {
	defer nextProm.group.freeGoroutine()

	resChan := fanIn(p)
	vals := make([]IdxRes[T], len(p))
	for n := 0; n < len(p); n++ {
		ir := <-resChan
		if ir.State() != Fulfilled {
			// fail fast, with the first Rejected or Panicked promise.
			resolveToRes[[]IdxRes[T]](nextProm, failedResultMultiIdxRes[T]{fail: ir})
			return
		}
		vals[ir.Idx] = ir
	}
	resolveToFulfilledRes[[]IdxRes[T]](nextProm, fulfilledResultMultiIdxRes[T]{vals: vals})
}

// AllSettled returns a Promise that's fulfilled once all the Promise values
// passed are resolved, whatever their states are, with all their results, in
// the original list's order.
//
// Unlike All, the returned Promise is never Rejected nor Panicked; failed
// promises show up as IdxRes values with a Rejected or Panicked state.
//
// If no Promise values are passed, the returned Promise is fulfilled to an
// empty IdxRes list.
//
// It doesn't consume the results of the Promise values passed, so they can
// still be handled through their own chains.
func AllSettled[T any](p ...Promise[T]) Promise[[]IdxRes[T]] {
	return allSettledCall(nil, p)
}

// AllSettled is the Group version of the package-level AllSettled.
// The aggregating work is accounted for in the group's goroutine budget and
// Wait call.
func (g *Group[T]) AllSettled(p ...Promise[T]) Promise[[]IdxRes[T]] {
	return allSettledCall(g.gc(), p)
}

func allSettledCall[T any](g *groupCore, p []Promise[T]) Promise[[]IdxRes[T]] {
	if len(p) == 0 {
		prom := newPromSync[[]IdxRes[T]](g)
		prom.resolveToResSync(fulfilledResultMultiIdxRes[T]{vals: []IdxRes[T]{}})
		return prom
	}

	regReads(p)
	g.reserveGoroutine()
	nextProm := newPromInter[[]IdxRes[T]](g)
	go allSettledHandler(nextProm, p)
	return nextProm
}

func allSettledHandler[T any](nextProm *genericPromise[[]IdxRes[T]], p []Promise[T]) {
	defer nextProm.group.freeGoroutine()

	resChan := fanIn(p)
	vals := make([]IdxRes[T], len(p))
	for n := 0; n < len(p); n++ {
		ir := <-resChan
		vals[ir.Idx] = ir
	}
	resolveToFulfilledRes[[]IdxRes[T]](nextProm, fulfilledResultMultiIdxRes[T]{vals: vals})
}

// Race returns a Promise that's resolved to the result and the state of the
// first Promise that's resolved from the Promise values passed.
// It doesn't wait for the rest of the Promise values to resolve.
//
// The original index of the winning promise can be retrieved from the
// resulting IdxRes's Idx field, or, on failure, from the returned promise's
// error, as an IdxError, using errors.As.
//
// If no Promise values are passed, the returned Promise is never resolved.
//
// It doesn't consume the results of the Promise values passed, so they can
// still be handled through their own chains.
func Race[T any](p ...Promise[T]) Promise[IdxRes[T]] {
	return raceCall(nil, p)
}

// Race is the Group version of the package-level Race.
// The aggregating work is accounted for in the group's goroutine budget and
// Wait call.
func (g *Group[T]) Race(p ...Promise[T]) Promise[IdxRes[T]] {
	return raceCall(g.gc(), p)
}

func raceCall[T any](g *groupCore, p []Promise[T]) Promise[IdxRes[T]] {
	if len(p) == 0 {
		return newPromBlocking[IdxRes[T]]()
	}

	regReads(p)
	g.reserveGoroutine()
	nextProm := newPromInter[IdxRes[T]](g)
	go raceHandler(nextProm, p)
	return nextProm
}

func raceHandler[T any](nextProm *genericPromise[IdxRes[T]], p []Promise[T]) {
	defer nextProm.group.freeGoroutine()

	// fast path: look for an already resolved promise, checking in unique
	// random order, so ties between already settled promises don't always
	// favor the one passed first.
	var randIdx uniquerand.Int
	randIdx.Reset(len(p))
	for idx, ok := randIdx.Get(); ok; idx, ok = randIdx.Get() {
		prevProm := p[idx].impl()
		s := prevProm.status.Load()
		if status.IsFateResolved(s) || status.IsFateHandled(s) {
			settleFirst(nextProm, IdxRes[T]{Idx: idx, Result: getFinalRes(prevProm.res)})
			return
		}
	}

	// no promise is resolved yet, wait for the first one.
	settleFirst(nextProm, <-fanIn(p))
}

func settleFirst[T any](nextProm *genericPromise[IdxRes[T]], ir IdxRes[T]) {
	switch ir.State() {
	case Panicked:
		resolveToPanickedRes[IdxRes[T]](nextProm, panickedResultSingleIdxRes[T]{val: ir})
	case Rejected:
		resolveToRejectedRes[IdxRes[T]](nextProm, rejectedResultSingleIdxRes[T]{val: ir})
	default:
		resolveToFulfilledRes[IdxRes[T]](nextProm, Val(ir))
	}
}

// Any returns a Promise that's fulfilled to the result of the first Promise
// that's fulfilled from the Promise values passed, without waiting for the
// rest of them to resolve.
//
// If all the Promise values passed failed, by resolving to Rejected or
// Panicked, the returned Promise is rejected with an AggregateError that
// holds one IdxError per failed promise, in the original list's order, with
// propagated panic values wrapped in PanicError values.
//
// If no Promise values are passed, the returned Promise is rejected with an
// empty AggregateError.
//
// It doesn't consume the results of the Promise values passed, so they can
// still be handled through their own chains.
func Any[T any](p ...Promise[T]) Promise[IdxRes[T]] {
	return anyCall(nil, p)
}

// Any is the Group version of the package-level Any.
// The aggregating work is accounted for in the group's goroutine budget and
// Wait call.
func (g *Group[T]) Any(p ...Promise[T]) Promise[IdxRes[T]] {
	return anyCall(g.gc(), p)
}

func anyCall[T any](g *groupCore, p []Promise[T]) Promise[IdxRes[T]] {
	if len(p) == 0 {
		prom := newPromSync[IdxRes[T]](g)
		prom.resolveToResSync(Err[IdxRes[T]](&AggregateError{}))
		return prom
	}

	regReads(p)
	g.reserveGoroutine()
	nextProm := newPromInter[IdxRes[T]](g)
	go anyHandler(nextProm, p)
	return nextProm
}

func anyHandler[T any](nextProm *genericPromise[IdxRes[T]], p []Promise[T]) {
	defer nextProm.group.freeGoroutine()

	resChan := fanIn(p)
	fails := make([]IdxRes[T], len(p))
	for n := 0; n < len(p); n++ {
		ir := <-resChan
		if ir.State() == Fulfilled {
			resolveToFulfilledRes[IdxRes[T]](nextProm, Val(ir))
			return
		}
		fails[ir.Idx] = ir
	}

	// all the promises failed, aggregate their errors, in the original order.
	errs := make([]error, 0, len(p))
	for _, ir := range fails {
		err := ir.Err()
		if ir.State() == Panicked {
			err = PanicError{V: getPanicV(ir.Result)}
		}
		errs = append(errs, IdxError{Idx: ir.Idx, Err: err})
	}
	resolveToRejectedRes[IdxRes[T]](nextProm, Err[IdxRes[T]](&AggregateError{Errs: errs}))
}

// regReads registers a read call on each of the promises passed, so that
// passing a promise to a combinator counts as reading its result, and the
// uncaught-result handling runs on the combinator's promise instead.
// it's called synchronously, before the aggregating goroutine is created,
// so the registration can't race with resolving the promises.
func regReads[T any](p []Promise[T]) {
	for _, prom := range p {
		prom.impl().status.RegRead()
	}
}

// fanIn streams the result of each of the promises passed, as it resolves,
// on the returned channel.
// the channel's buffer fits all the results, so the sending goroutines never
// leak, even if the receiver stops early.
func fanIn[T any](p []Promise[T]) <-chan IdxRes[T] {
	resChan := make(chan IdxRes[T], len(p))
	for i, prom := range p {
		go func(idx int, prevProm *genericPromise[T]) {
			prevProm.wait()
			resChan <- IdxRes[T]{Idx: idx, Result: getFinalRes(prevProm.res)}
		}(i, prom.impl())
	}
	return resChan
}
