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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	t.Run("all fulfilled, results in input order", func(t *testing.T) {
		// the first promise resolves last, to prove that the results are
		// ordered by input position, not by resolution order.
		p := All(
			Delay(Val(1), 40*time.Millisecond),
			Wrap[int](Val(2)),
			Wrap[int](Val(3)),
		)

		res := p.Res()
		require.Equal(t, Fulfilled, res.State())

		vals := res.Val()
		require.Len(t, vals, 3)
		for i, want := range []int{1, 2, 3} {
			assert.Equal(t, i, vals[i].Idx)
			assert.Equal(t, want, vals[i].Val())
		}
	})

	t.Run("rejects with the first failure", func(t *testing.T) {
		wantErr := newStrError()
		p := All(
			Wrap[int](Val(1)),
			Wrap[int](Err[int](wantErr)),
		)

		res := p.Res()
		require.Equal(t, Rejected, res.State())
		require.ErrorIs(t, res.Err(), wantErr)

		ierr := IdxError{}
		require.ErrorAs(t, res.Err(), &ierr)
		assert.Equal(t, 1, ierr.Idx)
	})

	t.Run("fails fast, without waiting for the rest", func(t *testing.T) {
		p := All(
			Wrap[int](Err[int](newStrError())),
			Delay(Val(1), time.Second),
		)

		select {
		case <-p.WaitChan():
		case <-time.After(500 * time.Millisecond):
			t.Fatal("All waited for the slow promise")
		}
		assert.Equal(t, Rejected, p.Res().State())
	})

	t.Run("propagates a panic", func(t *testing.T) {
		p := All(
			Wrap[int](Val(1)),
			Panic[int]("all_panic"),
		)

		res := p.Res()
		require.Equal(t, Panicked, res.State())
		require.ErrorIs(t, res.Err(), ErrPromisePanicked)

		perr := PanicError{}
		require.ErrorAs(t, res.Err(), &perr)
		assert.Equal(t, "all_panic", perr.V)
	})

	t.Run("empty input", func(t *testing.T) {
		res := All[int]().Res()
		require.Equal(t, Fulfilled, res.State())
		assert.Empty(t, res.Val())
	})

	t.Run("doesn't consume the input promises", func(t *testing.T) {
		in := Wrap[int](Val(5))
		All(in).Wait()
		assert.Equal(t, 5, in.Res().Val())
	})
}

func TestAllSettled(t *testing.T) {
	t.Run("mixed states, results in input order", func(t *testing.T) {
		wantErr := newStrError()
		p := AllSettled(
			Wrap[int](Err[int](wantErr)),
			Wrap[int](Val(2)),
			Panic[int]("settled_panic"),
		)

		res := p.Res()
		require.Equal(t, Fulfilled, res.State())

		vals := res.Val()
		require.Len(t, vals, 3)

		assert.Equal(t, Rejected, vals[0].State())
		assert.ErrorIs(t, vals[0].Err(), wantErr)

		assert.Equal(t, Fulfilled, vals[1].State())
		assert.Equal(t, 2, vals[1].Val())

		assert.Equal(t, Panicked, vals[2].State())
	})

	t.Run("empty input", func(t *testing.T) {
		res := AllSettled[int]().Res()
		require.Equal(t, Fulfilled, res.State())
		assert.Empty(t, res.Val())
	})
}

func TestRace(t *testing.T) {
	neverProm := func() Promise[int] { return Ctx[int](context.Background()) }

	t.Run("first fulfilled wins", func(t *testing.T) {
		p := Race(
			neverProm(),
			Wrap[int](Val(7)),
		)

		res := p.Res()
		require.Equal(t, Fulfilled, res.State())
		assert.Equal(t, 1, res.Val().Idx)
		assert.Equal(t, 7, res.Val().Val())
	})

	t.Run("first rejected wins", func(t *testing.T) {
		wantErr := newStrError()
		p := Race(
			neverProm(),
			Wrap[int](Err[int](wantErr)),
		)

		res := p.Res()
		require.Equal(t, Rejected, res.State())
		require.ErrorIs(t, res.Err(), wantErr)

		ierr := IdxError{}
		require.ErrorAs(t, res.Err(), &ierr)
		assert.Equal(t, 1, ierr.Idx)
	})

	t.Run("first panicked wins", func(t *testing.T) {
		p := Race(
			neverProm(),
			Panic[int]("race_panic"),
		)

		res := p.Res()
		require.Equal(t, Panicked, res.State())
		require.ErrorIs(t, res.Err(), ErrPromisePanicked)
	})

	t.Run("waits only for the winner", func(t *testing.T) {
		p := Race(
			Delay(Val(1), 10*time.Millisecond),
			Delay(Val(2), time.Second),
		)

		res := p.Res()
		require.Equal(t, Fulfilled, res.State())
		assert.Equal(t, 0, res.Val().Idx)
		assert.Equal(t, 1, res.Val().Val())
	})

	t.Run("empty input never settles", func(t *testing.T) {
		p := Race[int]()
		select {
		case <-p.WaitChan():
			t.Fatal("Race settled with no input")
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestAny(t *testing.T) {
	t.Run("first fulfilled wins over failures", func(t *testing.T) {
		p := Any(
			Wrap[int](Err[int](newStrError())),
			Wrap[int](Val(9)),
		)

		res := p.Res()
		require.Equal(t, Fulfilled, res.State())
		assert.Equal(t, 1, res.Val().Idx)
		assert.Equal(t, 9, res.Val().Val())
	})

	t.Run("all failed rejects with an AggregateError", func(t *testing.T) {
		err0 := testStrError("err_0")
		err1 := testStrError("err_1")
		p := Any(
			Wrap[int](Err[int](err0)),
			Wrap[int](Err[int](err1)),
		)

		res := p.Res()
		require.Equal(t, Rejected, res.State())

		aerr := &AggregateError{}
		require.ErrorAs(t, res.Err(), &aerr)
		require.Len(t, aerr.Errs, 2)

		// the aggregated errors follow the input order, not the resolution
		// order, and each one is an IdxError.
		for i, want := range []error{err0, err1} {
			ierr := IdxError{}
			require.ErrorAs(t, aerr.Errs[i], &ierr)
			assert.Equal(t, i, ierr.Idx)
			assert.ErrorIs(t, ierr.Err, want)
		}

		// the failures are reachable from the top-level error too.
		assert.ErrorIs(t, res.Err(), err0)
		assert.ErrorIs(t, res.Err(), err1)
	})

	t.Run("panicked promises are wrapped in PanicError", func(t *testing.T) {
		p := Any(
			Panic[int]("any_panic"),
		)

		res := p.Res()
		require.Equal(t, Rejected, res.State())

		aerr := &AggregateError{}
		require.ErrorAs(t, res.Err(), &aerr)
		require.Len(t, aerr.Errs, 1)

		perr := PanicError{}
		require.ErrorAs(t, aerr.Errs[0], &perr)
		assert.Equal(t, "any_panic", perr.V)
	})

	t.Run("empty input rejects with an empty AggregateError", func(t *testing.T) {
		res := Any[int]().Res()
		require.Equal(t, Rejected, res.State())

		aerr := &AggregateError{}
		require.ErrorAs(t, res.Err(), &aerr)
		assert.Empty(t, aerr.Errs)
	})
}

func TestGroupCombinators(t *testing.T) {
	t.Run("All", func(t *testing.T) {
		g := NewGroup[int]()
		res := g.All(g.Wrap(Val(1)), g.Wrap(Val(2))).Res()
		require.Equal(t, Fulfilled, res.State())
		require.Len(t, res.Val(), 2)
		g.Wait()
	})

	t.Run("AllSettled", func(t *testing.T) {
		g := NewGroup[int]()
		res := g.AllSettled(g.Wrap(Err[int](newStrError()))).Res()
		require.Equal(t, Fulfilled, res.State())
		require.Len(t, res.Val(), 1)
		g.Wait()
	})

	t.Run("Race", func(t *testing.T) {
		g := NewGroup[int]()
		res := g.Race(g.Wrap(Val(3))).Res()
		require.Equal(t, Fulfilled, res.State())
		assert.Equal(t, 3, res.Val().Val())
		g.Wait()
	})

	t.Run("Any", func(t *testing.T) {
		g := NewGroup[int]()
		res := g.Any(g.Wrap(Val(4))).Res()
		require.Equal(t, Fulfilled, res.State())
		assert.Equal(t, 4, res.Val().Val())
		g.Wait()
	})

	t.Run("Wait covers the aggregating goroutine", func(t *testing.T) {
		g := NewGroup[int]()
		p := g.All(g.Delay(Val(1), 20*time.Millisecond))
		g.Wait()

		// after Wait, the combinator's promise must be resolved already.
		select {
		case <-p.WaitChan():
		case <-time.After(time.Second):
			t.Fatal("the combinator promise wasn't resolved after Wait")
		}
	})
}

func TestCombinatorChaining(t *testing.T) {
	// a combinator's promise is a regular promise, so follow calls work on it.
	wantErr := newStrError()
	p := Any(
		Wrap[int](Err[int](wantErr)),
	).Catch(func(ctx context.Context, val IdxRes[int], err error) Result[IdxRes[int]] {
		var aerr *AggregateError
		if !errors.As(err, &aerr) {
			t.Errorf("unexpected error type: %v", err)
		}
		return Val(IdxRes[int]{Idx: -1, Result: Val(0)})
	})

	res := p.Res()
	require.Equal(t, Fulfilled, res.State())
	assert.Equal(t, -1, res.Val().Idx)
}
