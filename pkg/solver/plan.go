// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package solver

import (
	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-build-optimizer/pkg/enumerator"
	"github.com/AccelByte/extend-build-optimizer/pkg/formula"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

const noSet = -1

type statDelta struct {
	index int
	value float64
}

// choice is a bucket resolved against the layout.
type choice struct {
	id    string
	set   int
	stats []statDelta
}

// plan is the read only form of a problem shared by every worker of a solve.
type plan struct {
	slots       []string
	choices     [][]choice
	base        []float64
	layout      *formula.Layout
	program     *formula.Program
	space       enumerator.Space
	validator   *enumerator.ExclusionValidator
	constraints []float64 // minimum of root i
	target      int
	axis        int
	plot        *models.PlotConfig
	topN        int
	weaponID    string
	conditions  map[string]string
}

func newPlan(problem *models.OptimizationProblem) (*plan, error) {
	layout := formula.NewLayout()
	for _, key := range pie.Sort(pie.Keys(problem.BaseStats)) {
		layout.Stat(key)
	}

	p := &plan{
		slots:      problem.Slots,
		choices:    make([][]choice, len(problem.Slots)),
		layout:     layout,
		axis:       -1,
		plot:       problem.Plot,
		topN:       problem.TopN,
		weaponID:   problem.WeaponID,
		conditions: problem.Conditions,
	}
	dims := make([]int, len(problem.Slots))
	for slot, buckets := range problem.Buckets {
		dims[slot] = len(buckets)
		p.choices[slot] = make([]choice, len(buckets))
		for i, bucket := range buckets {
			c := choice{id: bucket.Representative, set: noSet, stats: make([]statDelta, len(bucket.Stats))}
			if bucket.Set != "" && !bucket.IsEmpty() {
				c.set = layout.Set(bucket.Set)
			}
			for j, stat := range bucket.Stats {
				c.stats[j] = statDelta{index: layout.Stat(stat.Key), value: stat.Value}
			}
			p.choices[slot][i] = c
		}
	}
	p.validator = enumerator.NewExclusionValidator(problem.Exclusions, layout.Set)

	roots := make([]formula.Node, 0, len(problem.Constraints)+2)
	p.constraints = make([]float64, len(problem.Constraints))
	for i, constraint := range problem.Constraints {
		roots = append(roots, constraint.Node)
		p.constraints[i] = constraint.Min
	}
	p.target = len(roots)
	roots = append(roots, problem.Target)
	if problem.Plot != nil {
		p.axis = len(roots)
		roots = append(roots, problem.Plot.Axis)
	}

	program, err := formula.Compile(layout, roots...)
	if err != nil {
		return nil, err
	}
	p.program = program

	p.base = make([]float64, layout.NumStats())
	for key, value := range problem.BaseStats {
		i, _ := layout.LookupStat(key)
		p.base[i] = value
	}

	space, err := enumerator.NewSpace(dims)
	if err != nil {
		return nil, err
	}
	p.space = space
	return p, nil
}

func (p *plan) build(choices []int) models.Build {
	ids := make([]string, len(choices))
	for slot, c := range choices {
		ids[slot] = p.choices[slot][c].id
	}
	return models.Build{WeaponID: p.weaponID, ItemIDs: ids}
}

// scratch is the per worker stat accumulation state, pooled across solves.
// levels[k] holds the base stats plus the contributions of slots [0, k).
type scratch struct {
	levels [][]float64
	counts []int
	sets   []int
}

func newScratch() *scratch {
	return &scratch{}
}

func (s *scratch) reset(p *plan) {
	slots := len(p.slots)
	stats := p.layout.NumStats()
	if cap(s.levels) < slots+1 {
		s.levels = make([][]float64, slots+1)
	}
	s.levels = s.levels[:slots+1]
	for i := range s.levels {
		if cap(s.levels[i]) < stats {
			s.levels[i] = make([]float64, stats)
		}
		s.levels[i] = s.levels[i][:stats]
	}
	copy(s.levels[0], p.base)

	s.counts = resize(s.counts, p.layout.NumSets())
	clear(s.counts)
	s.sets = resize(s.sets, slots)
	for i := range s.sets {
		s.sets[i] = noSet
	}
}

func resize(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

// apply recomputes the stats of every slot from changed on. Stats are always summed base first
// then slot by slot, so a combination gets bit identical stats whatever shard it is reached from.
func (s *scratch) apply(p *plan, choices []int, changed int) {
	for slot := changed; slot < len(choices); slot++ {
		c := &p.choices[slot][choices[slot]]
		next := s.levels[slot+1]
		copy(next, s.levels[slot])
		for _, d := range c.stats {
			next[d.index] += d.value
		}
		if s.sets[slot] != c.set {
			if s.sets[slot] != noSet {
				s.counts[s.sets[slot]]--
			}
			if c.set != noSet {
				s.counts[c.set]++
			}
			s.sets[slot] = c.set
		}
	}
}

func (s *scratch) stats() []float64 {
	return s.levels[len(s.levels)-1]
}
