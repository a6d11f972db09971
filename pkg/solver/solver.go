// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package solver runs an optimization problem on a pool of workers.
//
// A Solver accepts one problem at a time. The combination space is split into one contiguous
// shard per worker, each worker keeps its own top builds and plot, and the controller merges
// them once every worker stopped. Progress counters are flushed by the workers in batches and
// sampled by the controller at a fixed interval.
package solver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/typ.v4/sync2"

	"github.com/AccelByte/extend-build-optimizer/pkg/config"
	"github.com/AccelByte/extend-build-optimizer/pkg/constants"
	"github.com/AccelByte/extend-build-optimizer/pkg/enumerator"
	"github.com/AccelByte/extend-build-optimizer/pkg/envelope"
	"github.com/AccelByte/extend-build-optimizer/pkg/metrics"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
	"github.com/AccelByte/extend-build-optimizer/pkg/topk"
	"github.com/AccelByte/extend-build-optimizer/pkg/utils"
)

// run is the handle of the active solve.
type run struct {
	id        string
	total     int64
	start     time.Time
	cancel    context.CancelFunc
	cancelled atomic.Bool

	tested  atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
}

func (r *run) flush(c *counters) {
	if c.tested != 0 {
		r.tested.Add(c.tested)
	}
	if c.failed != 0 {
		r.failed.Add(c.failed)
	}
	if c.skipped != 0 {
		r.skipped.Add(c.skipped)
	}
	*c = counters{}
}

func (r *run) snapshot() models.ProgressStatus {
	return models.ProgressStatus{
		Active:    true,
		Tested:    r.tested.Load(),
		Failed:    r.failed.Load(),
		Skipped:   r.skipped.Load(),
		Total:     r.total,
		StartTime: r.start,
	}
}

type Solver struct {
	cfg       *config.Config
	metrics   metrics.OptimizerMetrics
	scratches *sync2.Pool[*scratch]

	mu          sync.Mutex
	current     *run
	status      models.ProgressStatus
	subscribers map[int]chan models.ProgressStatus
	nextSub     int

	// combinationHook runs before every combination when set, a returned error is a worker fault.
	combinationHook func(worker int, index int64) error
}

func New(cfg *config.Config, optimizerMetrics metrics.OptimizerMetrics) *Solver {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Solver{
		cfg:     cfg,
		metrics: optimizerMetrics,
		scratches: &sync2.Pool[*scratch]{
			New: newScratch,
		},
		subscribers: make(map[int]chan models.ProgressStatus),
	}
}

func (s *Solver) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return StateActive
	}
	return StateInactive
}

// Status returns the last sampled progress. It is safe to call at any time.
func (s *Solver) Status() models.ProgressStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe returns a channel receiving progress snapshots and a function to stop receiving them.
// Slow subscribers only see the latest snapshot, the solver never blocks on them.
func (s *Solver) Subscribe() (<-chan models.ProgressStatus, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan models.ProgressStatus, 1)
	s.subscribers[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Cancel requests cooperative cancellation of the active solve. It is idempotent and does nothing when inactive.
func (s *Solver) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.cancelled.Store(true)
	s.current.cancel()
}

// Solve starts solving problem and returns immediately. The channel yields exactly one Outcome,
// after the solver is inactive again. Configuration errors and ErrSolveActive are returned synchronously
// and leave no state behind.
func (s *Solver) Solve(rootScope *envelope.Scope, problem *models.OptimizationProblem) (<-chan Outcome, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil {
		s.mu.Unlock()
		return nil, ErrSolveActive
	}
	scope := rootScope.NewChildScope("solver.Solve")
	ctx, cancel := context.WithCancel(scope.Ctx)
	r := &run{
		id:     utils.GenerateSolveID(),
		total:  problem.TotalCombinations(),
		start:  time.Now(),
		cancel: cancel,
	}
	s.current = r
	s.status = r.snapshot()
	s.mu.Unlock()
	s.publish(r.snapshot())

	scope.SetAttributes(envelope.SolveIDTag, r.id)
	scope.SetAttributes(envelope.CombinationsTag, r.total)

	outcomes := make(chan Outcome, 1)
	go func() {
		defer close(outcomes)
		defer scope.Finish()
		outcomes <- s.execute(scope.WithContext(ctx), r, problem)
	}()
	return outcomes, nil
}

func (s *Solver) execute(scope *envelope.Scope, r *run, problem *models.OptimizationProblem) Outcome {
	defer r.cancel()
	log := scope.Log.WithField("solveID", r.id)

	p, err := newPlan(problem)
	if err != nil {
		return s.finish(scope, r, nil, err)
	}

	shards := p.space.Shards(s.cfg.Workers(problem.MaxWorkers))
	scope.SetAttributes(envelope.WorkersTag, len(shards))
	s.metrics.SetActiveWorkers(len(shards))
	log.WithFields(logrus.Fields{
		"workers":      len(shards),
		"combinations": r.total,
		"instructions": p.program.Size(),
	}).Info("solve started")

	stopSampling := s.sample(r)
	results, err := s.runWorkers(scope.Ctx, r, p, shards)
	stopSampling()
	if err != nil {
		return s.finish(scope, r, nil, err)
	}

	lists := make([][]models.ScoredBuild, len(results))
	plots := make([]*topk.Plot, len(results))
	for i, result := range results {
		lists[i] = result.builds
		plots[i] = result.plot
	}
	solveResult := &models.SolveResult{
		SolveID: r.id,
		Builds:  topk.Merge(lists, p.topN),
	}
	if plot := topk.MergePlots(plots...); plot != nil {
		solveResult.Plot = plot.Points()
	}
	return s.finish(scope, r, solveResult, nil)
}

// runWorkers hands every worker its shard on its own task channel and collects one partial per worker.
// The first failing worker cancels its siblings.
func (s *Solver) runWorkers(ctx context.Context, r *run, p *plan, shards []enumerator.Shard) ([]partial, error) {
	g, groupCtx := errgroup.WithContext(ctx)
	results := make([]chan partial, len(shards))
	for i, shard := range shards {
		tasks := make(chan enumerator.Shard, 1)
		tasks <- shard
		close(tasks)
		results[i] = make(chan partial, 1)

		id, out := i, results[i]
		g.Go(func() error {
			return s.work(groupCtx, r, p, id, tasks, out)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	partials := make([]partial, len(results))
	for i, ch := range results {
		partials[i] = <-ch
	}
	return partials, nil
}

// sample publishes the run counters every progress interval until the returned function is called.
func (s *Solver) sample(r *run) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.cfg.ProgressInterval())
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				status := r.snapshot()
				s.mu.Lock()
				if s.current == r {
					s.status = status
				}
				s.mu.Unlock()
				s.publish(status)
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func (s *Solver) finish(scope *envelope.Scope, r *run, result *models.SolveResult, err error) Outcome {
	outcome := Outcome{SolveID: r.id, Result: result}
	switch {
	case err == nil:
	case r.cancelled.Load() || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		outcome.Result = nil
		outcome.Cancelled = true
	default:
		outcome.Result = nil
		outcome.Err = err
	}

	processed := r.snapshot()
	status := processed
	if outcome.Result == nil {
		// cancelled and failed solves report no progress
		status = models.ProgressStatus{StartTime: r.start}
	}
	status.Active = false
	status.FinishTime = time.Now()
	outcome.Status = status

	s.mu.Lock()
	s.current = nil
	s.status = status
	s.mu.Unlock()
	s.publish(status)

	elapsed := status.FinishTime.Sub(r.start)
	s.metrics.SetActiveWorkers(0)
	s.metrics.AddCombinations(constants.CombinationTested, processed.Tested)
	s.metrics.AddCombinations(constants.CombinationFailed, processed.Failed)
	s.metrics.AddCombinations(constants.CombinationSkipped, processed.Skipped)
	s.metrics.AddSolveOutcome(outcome.Name())
	s.metrics.AddSolveElapsedTimeMs(constants.SolveFunction, outcome.Name(), elapsed)

	log := scope.Log.WithFields(logrus.Fields{
		"solveID":   r.id,
		"tested":    processed.Tested,
		"failed":    processed.Failed,
		"skipped":   processed.Skipped,
		"total":     processed.Total,
		"elapsedMs": elapsed.Milliseconds(),
	})
	switch {
	case outcome.Err != nil:
		scope.RecordError(outcome.Err)
		log.WithError(outcome.Err).Error("solve failed")
	case outcome.Cancelled:
		log.Warn("solve cancelled")
	default:
		log.WithField("builds", len(result.Builds)).Info("solve completed")
	}
	return outcome
}

func (s *Solver) publish(status models.ProgressStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- status:
		default:
			// replace the stale snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- status:
			default:
			}
		}
	}
}
