// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package topk

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"

	"github.com/AccelByte/extend-build-optimizer/pkg/models"
	"github.com/AccelByte/extend-build-optimizer/pkg/testsetup"
)

func scored(value float64, ids ...string) models.ScoredBuild {
	return models.ScoredBuild{Build: models.Build{ItemIDs: ids}, Value: value}
}

func randomBuilds(r *rand.Rand, n int) []models.ScoredBuild {
	builds := make([]models.ScoredBuild, n)
	for i := range builds {
		// few distinct values so ties are frequent
		builds[i] = scored(float64(r.Intn(8)), fmt.Sprintf("A%03d", i), fmt.Sprintf("B%d", r.Intn(4)))
	}
	return builds
}

func TestSelector_TieBreak(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	s := NewSelector(2)
	s.Push(scored(25, "A2", "B1"))
	s.Push(scored(35, "A2", "B2"))
	s.Push(scored(15, "A1", "B1"))
	s.Push(scored(25, "A1", "B2"))

	g.Expect(s.Sorted()).To(Equal([]models.ScoredBuild{
		scored(35, "A2", "B2"),
		scored(25, "A1", "B2"),
	}))
}

func TestSelector_KeepsBestN(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, n := range []int{1, 3, 10, 100} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			builds := randomBuilds(r, 60)
			s := NewSelector(n)
			for _, b := range builds {
				if s.Wants(b.Value) {
					s.Push(b)
				}
			}
			want := Merge([][]models.ScoredBuild{builds}, n)
			got := s.Sorted()
			if !assert.Equal(t, want, got) {
				spew.Dump(got)
			}
			assert.LessOrEqual(t, len(got), n)
		})
	}
}

func TestSelector_ZeroCapacity(t *testing.T) {
	s := NewSelector(0)
	assert.False(t, s.Wants(1))
	assert.False(t, s.Push(scored(1, "A")))
	assert.Empty(t, s.Sorted())
}

func TestMerge_EqualsSelectionOverAll(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	builds := randomBuilds(r, 200)
	n := 17

	single := NewSelector(n)
	for _, b := range builds {
		single.Push(b)
	}

	for _, parts := range []int{1, 2, 3, 7} {
		t.Run(fmt.Sprint(parts), func(t *testing.T) {
			lists := make([][]models.ScoredBuild, parts)
			for p := 0; p < parts; p++ {
				s := NewSelector(n)
				for i := p; i < len(builds); i += parts {
					s.Push(builds[i])
				}
				lists[p] = s.Sorted()
			}
			assert.Equal(t, single.Sorted(), Merge(lists, n))
		})
	}
}

func TestPlot_BoundedByResolution(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	p := NewPlot(0.01, 8)
	for i := 0; i < 100; i++ {
		p.Add(float64(i)*0.01, float64(i%13), models.Build{ItemIDs: []string{fmt.Sprintf("A%03d", i)}})
	}

	points := p.Points()
	g.Expect(len(points)).To(BeNumerically("<=", 8))
	g.Expect(p.Level()).To(BeNumerically(">", 0))
	for i := 1; i < len(points); i++ {
		g.Expect(points[i].Key).To(BeNumerically(">", points[i-1].Key))
	}
}

func TestPlot_KeepsBestPerBucket(t *testing.T) {
	p := NewPlot(1, 10)
	p.Add(0.2, 5, models.Build{ItemIDs: []string{"B"}})
	p.Add(0.7, 9, models.Build{ItemIDs: []string{"C"}})
	p.Add(0.5, 9, models.Build{ItemIDs: []string{"A"}})
	p.Add(1.5, 1, models.Build{ItemIDs: []string{"D"}})

	assert.False(t, p.Wants(0.9, 8))
	assert.True(t, p.Wants(0.9, 9))

	points := p.Points()
	assert.Len(t, points, 2)
	assert.Equal(t, []string{"A"}, points[0].Build.ItemIDs)
	assert.Equal(t, 0.5, points[0].Axis)
	assert.Equal(t, int64(1), points[1].Key)
}

func TestPlot_NegativeAxis(t *testing.T) {
	p := NewPlot(1, 1)
	p.Add(-0.5, 1, models.Build{ItemIDs: []string{"A"}})
	p.Add(-1.5, 2, models.Build{ItemIDs: []string{"B"}})

	points := p.Points()
	assert.Len(t, points, 1)
	assert.Equal(t, int64(-1), points[0].Key)
	assert.Equal(t, []string{"B"}, points[0].Build.ItemIDs)
}

func TestPlot_MixedSignAxisSingleBucket(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	p := NewPlot(1, 1)
	p.Add(-0.5, 1, models.Build{ItemIDs: []string{"A"}})
	p.Add(0.5, 2, models.Build{ItemIDs: []string{"B"}})
	p.Add(-3e30, 0, models.Build{ItemIDs: []string{"C"}})

	points := p.Points()
	g.Expect(points).To(HaveLen(1))
	g.Expect(points[0].Key).To(BeZero())
	g.Expect(points[0].Build.ItemIDs).To(Equal([]string{"B"}))
	g.Expect(p.Level()).To(Equal(maxLevel))
	g.Expect(p.Wants(-100, 1.5)).To(BeFalse())
	g.Expect(p.Wants(100, 3)).To(BeTrue())
}

func TestMergePlots_MixedSignSingleBucket(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	negative := NewPlot(1, 1)
	negative.Add(-0.5, 3, models.Build{ItemIDs: []string{"A"}})
	positive := NewPlot(1, 1)
	positive.Add(0.5, 2, models.Build{ItemIDs: []string{"B"}})
	both := NewPlot(1, 1)
	both.Add(-7, 1, models.Build{ItemIDs: []string{"C"}})
	both.Add(7, 1, models.Build{ItemIDs: []string{"D"}})

	merged := MergePlots(negative, positive, both)
	g.Expect(merged.Level()).To(Equal(maxLevel))
	g.Expect(merged.Points()).To(HaveLen(1))
	g.Expect(merged.Points()[0].Build.ItemIDs).To(Equal([]string{"A"}))
	g.Expect(merged.Points()[0].Value).To(Equal(3.0))
}

func TestMergePlots_UnionKeepsMaxPerKey(t *testing.T) {
	first := NewPlot(1, 10)
	first.Add(0.5, 1, models.Build{ItemIDs: []string{"A"}})
	first.Add(1.5, 5, models.Build{ItemIDs: []string{"B"}})
	second := NewPlot(1, 10)
	second.Add(1.2, 7, models.Build{ItemIDs: []string{"C"}})
	second.Add(3.1, 2, models.Build{ItemIDs: []string{"D"}})

	merged := MergePlots(first, second)
	assert.Equal(t, uint(0), merged.Level())

	points := merged.Points()
	keys := make([]int64, len(points))
	for i, point := range points {
		keys[i] = point.Key
	}
	assert.Equal(t, []int64{0, 1, 3}, keys)
	assert.Equal(t, []string{"A"}, points[0].Build.ItemIDs)
	assert.Equal(t, []string{"C"}, points[1].Build.ItemIDs)
	assert.Equal(t, 7.0, points[1].Value)
	assert.Equal(t, []string{"D"}, points[2].Build.ItemIDs)
}

func TestMergePlots_EqualsSinglePlot(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	type offer struct {
		axis, value float64
		build       models.Build
	}
	offers := make([]offer, 500)
	for i := range offers {
		offers[i] = offer{
			axis:  r.Float64() * 3,
			value: float64(r.Intn(20)),
			build: models.Build{ItemIDs: []string{fmt.Sprintf("A%03d", i)}},
		}
	}

	single := NewPlot(0.001, 25)
	for _, o := range offers {
		if single.Wants(o.axis, o.value) {
			single.Add(o.axis, o.value, o.build)
		}
	}

	for _, parts := range []int{1, 2, 4, 9} {
		t.Run(fmt.Sprint(parts), func(t *testing.T) {
			plots := make([]*Plot, parts)
			for p := range plots {
				plots[p] = NewPlot(0.001, 25)
			}
			// contiguous split, the way the solver shards the space
			size := (len(offers) + parts - 1) / parts
			for i, o := range offers {
				plot := plots[i/size]
				if plot.Wants(o.axis, o.value) {
					plot.Add(o.axis, o.value, o.build)
				}
			}
			merged := MergePlots(plots...)
			assert.Equal(t, single.Level(), merged.Level())
			assert.Equal(t, single.Points(), merged.Points())
		})
	}
}

func TestMergePlots_Empty(t *testing.T) {
	assert.Nil(t, MergePlots())
	assert.Nil(t, MergePlots(nil, nil))
}
