// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package enumerator

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

func collect(space Space, shard Shard) [][]int {
	var result [][]int
	it := space.Iterator(shard)
	for {
		if _, ok := it.Next(); !ok {
			return result
		}
		result = append(result, append([]int(nil), it.Choices()...))
	}
}

func TestNewSpace(t *testing.T) {
	space, err := NewSpace([]int{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, int64(24), space.Total())

	_, err = NewSpace(nil)
	assert.ErrorIs(t, err, ErrInvalidSpace)
	_, err = NewSpace([]int{2, 0})
	assert.ErrorIs(t, err, ErrInvalidSpace)
}

func TestIterator_WalksWholeSpaceInOrder(t *testing.T) {
	space, err := NewSpace([]int{2, 3})
	require.NoError(t, err)

	got := collect(space, Shard{Start: 0, End: space.Total()})
	want := [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	if !assert.Equal(t, want, got) {
		spew.Dump(got)
	}
}

func TestIterator_ReportsChangedSlot(t *testing.T) {
	space, err := NewSpace([]int{2, 2, 2})
	require.NoError(t, err)

	it := space.Iterator(Shard{Start: 1, End: 6})
	var changed []int
	for {
		slot, ok := it.Next()
		if !ok {
			break
		}
		changed = append(changed, slot)
	}
	// 001 (start), 010, 011, 100, 101
	assert.Equal(t, []int{0, 1, 2, 0, 2}, changed)
}

func TestIterator_Reset(t *testing.T) {
	space, err := NewSpace([]int{3, 3})
	require.NoError(t, err)

	it := space.Iterator(Shard{Start: 4, End: 7})
	first := [][]int{}
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		first = append(first, append([]int(nil), it.Choices()...))
	}
	it.Reset()
	second := [][]int{}
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		second = append(second, append([]int(nil), it.Choices()...))
	}
	assert.Equal(t, [][]int{{1, 1}, {1, 2}, {2, 0}}, first)
	assert.Equal(t, first, second)
}

func TestShards_CoverSpaceExactlyOnce(t *testing.T) {
	for _, dims := range [][]int{{1}, {3, 1, 2}, {4, 5, 3}, {7, 7}} {
		for _, n := range []int{1, 2, 3, 5, 8, 64} {
			t.Run(fmt.Sprintf("%v/%d", dims, n), func(t *testing.T) {
				space, err := NewSpace(dims)
				require.NoError(t, err)

				shards := space.Shards(n)
				assert.LessOrEqual(t, len(shards), n)

				seen := make(map[int64]int)
				for _, shard := range shards {
					assert.Positive(t, shard.Len())
					for _, choices := range collect(space, shard) {
						seen[space.Index(choices)]++
					}
				}
				assert.Len(t, seen, int(space.Total()))
				for idx, count := range seen {
					assert.Equal(t, 1, count, "index %d", idx)
				}
			})
		}
	}
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []Shard{{0, 4}, {4, 7}, {7, 10}}, Split(10, 3))
	assert.Equal(t, []Shard{{0, 1}, {1, 2}}, Split(2, 8))
	assert.Nil(t, Split(0, 4))
}

func TestExclusionValidator(t *testing.T) {
	sets := map[string]int{"Gladiator": 0, "Noblesse": 1}
	v := NewExclusionValidator([]models.Exclusion{
		{Set: "Gladiator", Pieces: 4},
		{Set: "Noblesse", Pieces: 2},
	}, func(set string) int { return sets[set] })

	assert.True(t, v.Validate([]int{3, 1}))
	assert.False(t, v.Validate([]int{4, 0}))
	assert.False(t, v.Validate([]int{0, 2}))
	assert.True(t, v.Validate([]int{1, 4}))
	assert.False(t, v.Empty())
}
