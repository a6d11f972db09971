// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package enumerator walks the cartesian product of per-slot bucket lists.
// Every combination has a linear index in [0, total) so the space can be split
// into disjoint shards that together cover it exactly once.
package enumerator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

var ErrInvalidSpace = errors.New("invalid combination space")

// Space is the combination space of slots with dims[i] choices each.
type Space struct {
	dims  []int
	total int64
}

// NewSpace returns the space of dims. Every slot needs at least one choice.
func NewSpace(dims []int) (Space, error) {
	if len(dims) == 0 {
		return Space{}, fmt.Errorf("%w: no slots", ErrInvalidSpace)
	}
	total := int64(1)
	for i, d := range dims {
		if d <= 0 {
			return Space{}, fmt.Errorf("%w: slot %d has no choices", ErrInvalidSpace, i)
		}
		if total > math.MaxInt64/int64(d) {
			return Space{}, fmt.Errorf("%w: too many combinations", ErrInvalidSpace)
		}
		total *= int64(d)
	}
	dims = append([]int(nil), dims...)
	if int64(combin.Card(dims)) != total {
		return Space{}, fmt.Errorf("%w: cardinality mismatch", ErrInvalidSpace)
	}
	return Space{dims: dims, total: total}, nil
}

func (s Space) Total() int64 {
	return s.total
}

func (s Space) Dims() []int {
	return s.dims
}

// Combination returns the choice per slot of the combination at index idx.
func (s Space) Combination(idx int64) []int {
	return combin.SubFor(nil, int(idx), s.dims)
}

// Index returns the linear index of a choice per slot.
func (s Space) Index(choices []int) int64 {
	return int64(combin.IdxFor(choices, s.dims))
}

// Shard is the half open index range [Start, End).
type Shard struct {
	Start int64
	End   int64
}

func (s Shard) Len() int64 {
	return s.End - s.Start
}

// Shards splits the space into at most n contiguous disjoint shards of near equal size.
// Fewer shards are returned when the space has fewer than n combinations.
func (s Space) Shards(n int) []Shard {
	return Split(s.total, n)
}

// Split splits [0, total) into at most n contiguous ranges, the first total%n ranges get one extra index.
func Split(total int64, n int) []Shard {
	if total <= 0 || n <= 0 {
		return nil
	}
	if int64(n) > total {
		n = int(total)
	}
	size := total / int64(n)
	extra := total % int64(n)

	shards := make([]Shard, n)
	start := int64(0)
	for i := range shards {
		end := start + size
		if int64(i) < extra {
			end++
		}
		shards[i] = Shard{Start: start, End: end}
		start = end
	}
	return shards
}

// Iterator walks one shard in index order with an odometer, the last slot changes fastest.
// It is lazy: no combination is materialized ahead of Next.
type Iterator struct {
	dims    []int
	shard   Shard
	pos     int64
	choices []int
	started bool
}

func (s Space) Iterator(shard Shard) *Iterator {
	it := &Iterator{dims: s.dims, shard: shard}
	it.Reset()
	return it
}

// Reset restarts the iterator at the beginning of its shard.
func (it *Iterator) Reset() {
	it.pos = it.shard.Start
	it.started = false
	it.choices = it.choices[:0]
}

// Next advances to the next combination. It returns the lowest slot whose choice changed,
// every slot on the first call, and false once the shard is exhausted.
func (it *Iterator) Next() (int, bool) {
	if !it.started {
		if it.shard.Start >= it.shard.End {
			return 0, false
		}
		it.started = true
		it.choices = combin.SubFor(nil, int(it.pos), it.dims)
		return 0, true
	}
	if it.pos+1 >= it.shard.End {
		it.pos = it.shard.End
		return 0, false
	}
	it.pos++

	slot := len(it.dims) - 1
	for ; slot >= 0; slot-- {
		it.choices[slot]++
		if it.choices[slot] < it.dims[slot] {
			break
		}
		it.choices[slot] = 0
	}
	return slot, true
}

// Choices returns the current choice per slot. The slice is reused by Next.
func (it *Iterator) Choices() []int {
	return it.choices
}

// Index returns the linear index of the current combination.
func (it *Iterator) Index() int64 {
	return it.pos
}

func (it *Iterator) Shard() Shard {
	return it.shard
}
