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

import (
	"sync"
	"testing"
)

func TestZeroValue(t *testing.T) {
	s := PromStatus(0)
	cs := s.Load()

	if !IsStatePending(cs) {
		t.Error("expected the Pending state")
	}
	if !IsFateUnresolved(cs) {
		t.Error("expected the Unresolved fate")
	}
	if !IsChainEmpty(cs) {
		t.Error("expected an empty chain")
	}
	if IsFlagsOnce(cs) {
		t.Error("expected the Once flag to be unset")
	}
}

func TestSetResolved(t *testing.T) {
	tests := []struct {
		name     string
		set      func(s *PromStatus) uint32
		statePred func(s uint32) bool
	}{
		{name: "fulfilled", set: (*PromStatus).SetFulfilledResolved, statePred: IsStateFulfilled},
		{name: "rejected", set: (*PromStatus).SetRejectedResolved, statePred: IsStateRejected},
		{name: "panicked", set: (*PromStatus).SetPanickedResolved, statePred: IsStatePanicked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := PromStatus(0)
			cs := tt.set(&s)
			if !tt.statePred(cs) {
				t.Error("unexpected state")
			}
			if !IsFateResolved(cs) {
				t.Error("expected the Resolved fate")
			}
		})
	}
}

func TestSetResolving(t *testing.T) {
	s := PromStatus(0)

	set, cs := s.SetResolving()
	if !set {
		t.Fatal("expected the first SetResolving to succeed")
	}
	if !IsFateResolving(cs) {
		t.Fatal("expected the Resolving fate")
	}

	if set, _ = s.SetResolving(); set {
		t.Fatal("expected the second SetResolving to fail")
	}

	// resolving doesn't touch the chain section
	if !IsChainEmpty(cs) {
		t.Fatal("expected an empty chain")
	}
}

func TestSetResolvingConcurrent(t *testing.T) {
	s := PromStatus(0)

	n := 0
	mu := sync.Mutex{}
	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set, _ := s.SetResolving(); set {
				mu.Lock()
				n++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if n != 1 {
		t.Fatalf("expected exactly one SetResolving winner, got: %d", n)
	}
}

func TestSetHandled(t *testing.T) {
	s := PromStatus(0)
	s.SetFulfilledResolved()

	firstHandle, cs := s.SetHandled()
	if !firstHandle {
		t.Fatal("expected the first SetHandled to report the first handle")
	}
	if !IsFateHandled(cs) {
		t.Fatal("expected the Handled fate")
	}

	if firstHandle, _ = s.SetHandled(); firstHandle {
		t.Fatal("expected the second SetHandled to report a repeated handle")
	}
}

func TestChainModeUpgrades(t *testing.T) {
	s := PromStatus(0)

	firstWait, cs := s.RegWait()
	if !firstWait {
		t.Fatal("expected the first RegWait to succeed")
	}
	if IsChainEmpty(cs) || IsChainAtLeastRead(cs) {
		t.Fatal("expected the Wait chain mode")
	}

	firstRead, cs := s.RegRead()
	if !firstRead {
		t.Fatal("expected RegRead to upgrade from Wait")
	}
	if !IsChainAtLeastRead(cs) {
		t.Fatal("expected at least the Read chain mode")
	}

	firstFollow, cs := s.RegFollow()
	if !firstFollow {
		t.Fatal("expected RegFollow to upgrade from Read")
	}
	if !IsChainAtLeastRead(cs) {
		t.Fatal("expected at least the Read chain mode")
	}

	// the chain mode is monotonic, lower modes don't downgrade it
	if firstRead, _ = s.RegRead(); firstRead {
		t.Fatal("expected RegRead to not downgrade from Follow")
	}
	if firstWait, _ = s.RegWait(); firstWait {
		t.Fatal("expected RegWait to not downgrade from Follow")
	}
}

func TestFlagsSurviveTransitions(t *testing.T) {
	s := PromStatus(FlagsTypeOnce)

	s.RegFollow()
	s.SetResolving()
	s.SetRejectedResolved()
	cs := s.Load()
	if !IsFlagsOnce(cs) {
		t.Fatal("the Once flag was lost")
	}

	_, cs = s.SetHandled()
	if !IsFlagsOnce(cs) {
		t.Fatal("the Once flag was lost after SetHandled")
	}
}

func TestNewFrom(t *testing.T) {
	s := PromStatus(FlagsTypeOnce)
	s.RegFollow()
	s.SetFulfilledResolved()

	ns := NewFrom(s.Load())
	cs := ns.Load()

	// only the flags section survives
	if !IsFlagsOnce(cs) {
		t.Error("the Once flag wasn't carried over")
	}
	if !IsStatePending(cs) {
		t.Error("expected the Pending state")
	}
	if !IsFateUnresolved(cs) {
		t.Error("expected the Unresolved fate")
	}
	if !IsChainEmpty(cs) {
		t.Error("expected an empty chain")
	}
}
