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

package status

import "sync/atomic"

// PromStatus is the packed status word of a promise.
// It holds the promise's state, fate, chain mode, and flags, and is read
// and updated atomically, through CAS loops.
type PromStatus uint32

// the state's related values and constants, using 2 bits(the [1st : 2nd] bits)
const (
	statePending   uint32 = iota // the zero value
	stateFulfilled uint32 = iota
	stateRejected  uint32 = iota
	statePanicked  uint32 = iota

	// stateBitsSetMask is &-ed with the status to get the state section.
	stateBitsSetMask = statePanicked
	stateBitsClrMask = ^stateBitsSetMask
)

// the fate's related values and constants, using 2 bits(the [3rd : 4th] bits)
const (
	fateUnresolved uint32 = iota << 2 // the zero value
	fateResolving  uint32 = iota << 2
	fateResolved   uint32 = iota << 2
	fateHandled    uint32 = iota << 2

	fateBitsSetMask = fateHandled
	fateBitsClrMask = ^fateBitsSetMask
)

// the chain's related values and constants, using 2 bits(the [5th : 6th] bits)
const (
	chainModeNone   uint32 = iota << 4 // the zero value
	chainModeWait   uint32 = iota << 4
	chainModeRead   uint32 = iota << 4
	chainModeFollow uint32 = iota << 4

	chainModeBitsSetMask = chainModeFollow
	chainModeBitsClrMask = ^chainModeBitsSetMask
)

// the flags' related values and constants, using the [7th : 10th] bits
const (
	// FlagsTypeOnce marks the promise's result as a one-time result, which
	// can be handled only once.
	FlagsTypeOnce uint32 = 1 << (iota + 6)
	_                    = 1 << (iota + 6) // reserved
	_                    = 1 << (iota + 6) // reserved
	_                    = 1 << (iota + 6) // reserved

	flagsBitsSetMask = 15 << 6
)

// NewFrom returns a new PromStatus which carries over only the flags section
// of the provided status value.
// It's used when creating follow promises, so that the new promise inherits
// the chain's behavior flags, starting otherwise from the zero status.
func NewFrom(s uint32) PromStatus {
	return PromStatus(s & flagsBitsSetMask)
}

// Load returns the current status value.
func (s *PromStatus) Load() (currentStatus uint32) {
	return atomic.LoadUint32((*uint32)(s))
}

// update runs the provided transform on the current status value, through a
// CAS loop, until the transformed value is saved, then returns the saved value.
// The transform must be pure, as it may run multiple times.
func (s *PromStatus) update(transform func(cs uint32) (ns uint32)) (ns uint32) {
	for {
		cs := atomic.LoadUint32((*uint32)(s))
		ns = transform(cs)
		if cs == ns || atomic.CompareAndSwapUint32((*uint32)(s), cs, ns) {
			return ns
		}
	}
}

// RegWait declares that there's a wait call registered on this promise,
// like a 'Wait' or 'WaitChan' call.
func (s *PromStatus) RegWait() (firstWait bool, status uint32) {
	status = s.update(func(cs uint32) uint32 {
		if cs&chainModeBitsSetMask < chainModeWait {
			firstWait = true
			return cs&chainModeBitsClrMask | chainModeWait
		}
		firstWait = false
		return cs
	})
	return firstWait, status
}

// RegRead declares that there's a read call registered on this promise,
// like a 'Res', 'Callback' or 'Finally' call, or an extension(combinator) call.
func (s *PromStatus) RegRead() (firstRead bool, status uint32) {
	status = s.update(func(cs uint32) uint32 {
		if cs&chainModeBitsSetMask < chainModeRead {
			firstRead = true
			return cs&chainModeBitsClrMask | chainModeRead
		}
		firstRead = false
		return cs
	})
	return firstRead, status
}

// RegFollow declares that there's a follow call registered on this promise,
// like a 'Then', 'Catch' or 'Recover' call.
func (s *PromStatus) RegFollow() (firstFollow bool, status uint32) {
	status = s.update(func(cs uint32) uint32 {
		if cs&chainModeBitsSetMask < chainModeFollow {
			firstFollow = true
			return cs&chainModeBitsClrMask | chainModeFollow
		}
		firstFollow = false
		return cs
	})
	return firstFollow, status
}

// SetResolving sets the fate to Resolving, only if it's Unresolved.
// It's the gate that guarantees a promise is resolved at most once, when
// multiple resolving sources race, like a resolver's fulfill and reject pair.
func (s *PromStatus) SetResolving() (set bool, status uint32) {
	status = s.update(func(cs uint32) uint32 {
		if cs&fateBitsSetMask == fateUnresolved {
			set = true
			return cs&fateBitsClrMask | fateResolving
		}
		set = false
		return cs
	})
	return set, status
}

// SetFulfilledResolved sets the state to Fulfilled and the fate to Resolved.
func (s *PromStatus) SetFulfilledResolved() (status uint32) {
	return s.setResolved(stateFulfilled)
}

// SetRejectedResolved sets the state to Rejected and the fate to Resolved.
func (s *PromStatus) SetRejectedResolved() (status uint32) {
	return s.setResolved(stateRejected)
}

// SetPanickedResolved sets the state to Panicked and the fate to Resolved.
func (s *PromStatus) SetPanickedResolved() (status uint32) {
	return s.setResolved(statePanicked)
}

func (s *PromStatus) setResolved(state uint32) (status uint32) {
	return s.update(func(cs uint32) uint32 {
		cs = cs&stateBitsClrMask | state
		return cs&fateBitsClrMask | fateResolved
	})
}

// SetHandled sets the fate to Handled, and returns whether this is the
// first handle call on this promise or not.
// The caller must make sure that the promise is already resolved.
func (s *PromStatus) SetHandled() (firstHandle bool, status uint32) {
	status = s.update(func(cs uint32) uint32 {
		if cs&fateBitsSetMask == fateHandled {
			firstHandle = false
			return cs
		}
		firstHandle = true
		return cs&fateBitsClrMask | fateHandled
	})
	return firstHandle, status
}

// state predicates

func IsStatePending(s uint32) bool   { return s&stateBitsSetMask == statePending }
func IsStateFulfilled(s uint32) bool { return s&stateBitsSetMask == stateFulfilled }
func IsStateRejected(s uint32) bool  { return s&stateBitsSetMask == stateRejected }
func IsStatePanicked(s uint32) bool  { return s&stateBitsSetMask == statePanicked }

// fate predicates

func IsFateUnresolved(s uint32) bool { return s&fateBitsSetMask == fateUnresolved }
func IsFateResolving(s uint32) bool  { return s&fateBitsSetMask == fateResolving }
func IsFateResolved(s uint32) bool   { return s&fateBitsSetMask == fateResolved }
func IsFateHandled(s uint32) bool    { return s&fateBitsSetMask == fateHandled }

// chain predicates

func IsChainEmpty(s uint32) bool       { return s&chainModeBitsSetMask == chainModeNone }
func IsChainAtLeastRead(s uint32) bool { return s&chainModeBitsSetMask >= chainModeRead }

// flags predicates

func IsFlagsOnce(s uint32) bool { return s&FlagsTypeOnce != 0 }
