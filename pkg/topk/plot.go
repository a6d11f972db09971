// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package topk

import (
	"math"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

const maxAxisKey = int64(1) << 62

// maxLevel is the level at which every key collapses into a single bucket.
const maxLevel = uint(63)

// Plot keeps the best build per axis bucket. A bucket at level l spans step*2^l axis units,
// the level grows whenever more than resolution buckets are occupied.
// Keys at level l are the level 0 keys shifted right by l, so coarsening never depends on floating point.
type Plot struct {
	step       float64
	resolution int
	level      uint
	points     map[int64]models.PlotPoint
}

func NewPlot(step float64, resolution int) *Plot {
	return &Plot{
		step:       step,
		resolution: resolution,
		points:     make(map[int64]models.PlotPoint),
	}
}

func (p *Plot) Level() uint {
	return p.level
}

func (p *Plot) Len() int {
	return len(p.points)
}

func (p *Plot) baseKey(axis float64) int64 {
	k := math.Floor(axis / p.step)
	switch {
	case k >= float64(maxAxisKey):
		return maxAxisKey
	case k <= -float64(maxAxisKey):
		return -maxAxisKey
	}
	return int64(k)
}

func (p *Plot) key(axis float64) int64 {
	return shiftKey(p.baseKey(axis), p.level, p.level)
}

// shiftKey moves a key shift levels up to level. Keys of both signs never meet under an
// arithmetic shift, so the top level maps everything to 0.
func shiftKey(key int64, shift, level uint) int64 {
	if level >= maxLevel {
		return 0
	}
	return key >> shift
}

// Wants returns false when the bucket of axis already holds a better value.
func (p *Plot) Wants(axis, value float64) bool {
	current, ok := p.points[p.key(axis)]
	return !ok || value >= current.Value
}

// Add offers a build at an axis position.
func (p *Plot) Add(axis, value float64, build models.Build) {
	p.put(models.PlotPoint{Key: p.key(axis), Axis: axis, Value: value, Build: build})
	p.coarsen()
}

func (p *Plot) put(point models.PlotPoint) {
	current, ok := p.points[point.Key]
	if ok && !betterPoint(point, current) {
		return
	}
	p.points[point.Key] = point
}

func (p *Plot) coarsen() {
	for len(p.points) > p.resolution && p.level < maxLevel {
		p.raise(p.level + 1)
	}
}

func (p *Plot) raise(level uint) {
	level = min(level, maxLevel)
	if level <= p.level {
		return
	}
	shift := level - p.level
	old := p.points
	p.points = make(map[int64]models.PlotPoint, len(old))
	p.level = level
	for _, point := range old {
		point.Key = shiftKey(point.Key, shift, level)
		p.put(point)
	}
}

// Points returns the plot ordered by key.
func (p *Plot) Points() []models.PlotPoint {
	keys := pie.Sort(pie.Keys(p.points))
	return pie.Map(keys, func(key int64) models.PlotPoint { return p.points[key] })
}

func betterPoint(a, b models.PlotPoint) bool {
	return Better(models.ScoredBuild{Build: a.Build, Value: a.Value}, models.ScoredBuild{Build: b.Build, Value: b.Value})
}

// MergePlots merges worker plots built with the same step and resolution. The result is the plot a single
// worker would have produced from all the builds offered to the inputs.
func MergePlots(plots ...*Plot) *Plot {
	plots = pie.Filter(plots, func(p *Plot) bool { return p != nil })
	if len(plots) == 0 {
		return nil
	}
	merged := NewPlot(plots[0].step, plots[0].resolution)
	for _, p := range plots {
		merged.raise(p.level)
	}
	for _, p := range plots {
		shift := merged.level - p.level
		for _, point := range p.points {
			point.Key = shiftKey(point.Key, shift, merged.level)
			merged.put(point)
		}
	}
	merged.coarsen()
	return merged
}
