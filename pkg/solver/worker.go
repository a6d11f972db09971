// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/AccelByte/extend-build-optimizer/pkg/enumerator"
	"github.com/AccelByte/extend-build-optimizer/pkg/formula"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
	"github.com/AccelByte/extend-build-optimizer/pkg/topk"
)

type verdict int

const (
	verdictTested verdict = iota
	verdictFailed
	verdictSkipped
)

// counters are the worker local, not yet flushed, combination counts.
type counters struct {
	tested  int64
	failed  int64
	skipped int64
}

func (c *counters) add(v verdict) {
	switch v {
	case verdictTested:
		c.tested++
	case verdictFailed:
		c.failed++
	case verdictSkipped:
		c.skipped++
	}
}

// partial is what a worker hands back to the controller once its shards are exhausted.
type partial struct {
	builds []models.ScoredBuild
	plot   *topk.Plot
}

type worker struct {
	id       int
	plan     *plan
	frame    *formula.Frame
	scratch  *scratch
	selector *topk.Selector
	plot     *topk.Plot
}

// work enumerates every shard received on tasks and sends exactly one partial on results when it succeeds.
func (s *Solver) work(ctx context.Context, r *run, p *plan, id int, tasks <-chan enumerator.Shard, results chan<- partial) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: worker %d panicked: %v", ErrWorkerFault, id, rec)
		}
	}()

	sc := s.scratches.Get()
	defer s.scratches.Put(sc)
	sc.reset(p)

	w := &worker{
		id:       id,
		plan:     p,
		frame:    p.program.NewFrame(p.layout, p.conditions),
		scratch:  sc,
		selector: topk.NewSelector(p.topN),
	}
	w.frame.Stats = sc.stats()
	w.frame.SetCounts = sc.counts
	if p.axis >= 0 {
		w.plot = topk.NewPlot(p.plot.Step, p.plot.Resolution)
	}

	batch := int64(max(s.cfg.ProgressReportBatch, 1))
	cancelEvery := int64(max(s.cfg.CancelCheckInterval, 1))

	var local counters
	var seen int64
	for shard := range tasks {
		it := p.space.Iterator(shard)
		for changed, ok := it.Next(); ok; changed, ok = it.Next() {
			if s.combinationHook != nil {
				if hookErr := s.combinationHook(id, it.Index()); hookErr != nil {
					return fmt.Errorf("%w: worker %d at combination %d: %w", ErrWorkerFault, id, it.Index(), hookErr)
				}
			}

			sc.apply(p, it.Choices(), changed)
			v, evalErr := w.evaluate(it.Choices())
			if evalErr != nil {
				return evalErr
			}
			local.add(v)

			seen++
			if seen%batch == 0 {
				r.flush(&local)
			}
			if seen%cancelEvery == 0 {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
			}
		}
	}
	r.flush(&local)

	results <- partial{builds: w.selector.Sorted(), plot: w.plot}
	return nil
}

// evaluate runs the exclusion filter, the constraints in order and then the target of the current combination.
func (w *worker) evaluate(choices []int) (verdict, error) {
	p := w.plan
	if !p.validator.Validate(w.scratch.counts) {
		return verdictSkipped, nil
	}

	w.frame.Reset()
	for i, minimum := range p.constraints {
		value, err := w.frame.Eval(i)
		if err != nil {
			return classify(err)
		}
		if value < minimum {
			return verdictSkipped, nil
		}
	}

	value, err := w.frame.Eval(p.target)
	if err != nil {
		return classify(err)
	}
	var axis float64
	if w.plot != nil {
		if axis, err = w.frame.Eval(p.axis); err != nil {
			return classify(err)
		}
	}

	wantBuild := w.selector.Wants(value)
	wantPoint := w.plot != nil && w.plot.Wants(axis, value)
	if wantBuild || wantPoint {
		build := p.build(choices)
		if wantBuild {
			w.selector.Push(models.ScoredBuild{Build: build, Value: value})
		}
		if wantPoint {
			w.plot.Add(axis, value, build)
		}
	}
	return verdictTested, nil
}

func classify(err error) (verdict, error) {
	if errors.Is(err, formula.ErrCombination) {
		return verdictFailed, nil
	}
	if errors.Is(err, formula.ErrEvaluationFault) {
		return verdictFailed, err
	}
	return verdictFailed, fmt.Errorf("%w: %w", ErrWorkerFault, err)
}
