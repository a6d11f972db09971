// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package server exposes the solver as a gRPC service.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AccelByte/extend-build-optimizer/pkg/config"
	"github.com/AccelByte/extend-build-optimizer/pkg/envelope"
	"github.com/AccelByte/extend-build-optimizer/pkg/formula"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
	"github.com/AccelByte/extend-build-optimizer/pkg/solver"
)

// OptimizerService serves one solver, so at most one solve runs at a time.
type OptimizerService struct {
	cfg    *config.Config
	solver *solver.Solver

	mu   sync.Mutex
	last *models.SolveResult
}

func NewOptimizerService(cfg *config.Config, s *solver.Solver) *OptimizerService {
	return &OptimizerService{cfg: cfg, solver: s}
}

func (o *OptimizerService) Solve(ctx context.Context, req *SolveRequest) (*SolveResponse, error) {
	scope := envelope.ChildScopeFromRemoteScope(ctx, "server.Solve")
	defer scope.Finish()

	problem, err := req.Problem.Problem(o.cfg, scope.Log)
	if err != nil {
		scope.Log.WithError(err).Debug("rejected problem")
		return nil, toStatusError(err)
	}

	outcomes, err := o.solver.Solve(scope, problem)
	if err != nil {
		return nil, toStatusError(err)
	}
	outcome := <-outcomes
	switch {
	case outcome.Err != nil:
		return nil, toStatusError(outcome.Err)
	case outcome.Cancelled:
		return nil, status.Error(codes.Canceled, "solve cancelled")
	}

	result := outcome.Result.Copy()
	o.mu.Lock()
	o.last = &result
	o.mu.Unlock()

	return &SolveResponse{Result: *outcome.Result, Status: outcome.Status}, nil
}

func (o *OptimizerService) Cancel(ctx context.Context, req *CancelRequest) (*CancelResponse, error) {
	wasActive := o.solver.State() == solver.StateActive
	o.solver.Cancel()
	return &CancelResponse{WasActive: wasActive}, nil
}

func (o *OptimizerService) Status(ctx context.Context, req *StatusRequest) (*StatusResponse, error) {
	resp := &StatusResponse{
		State:  o.solver.State().String(),
		Status: o.solver.Status(),
	}
	o.mu.Lock()
	if o.last != nil {
		last := o.last.Copy()
		resp.LastResult = &last
	}
	o.mu.Unlock()
	return resp, nil
}

func toStatusError(err error) error {
	switch {
	case errors.Is(err, models.ErrConfig):
		return status.Errorf(codes.InvalidArgument, "code %d: %v", models.ValidationErrorCode(err), err)
	case errors.Is(err, solver.ErrSolveActive):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, formula.ErrEvaluationFault), errors.Is(err, solver.ErrWorkerFault):
		return status.Error(codes.Internal, err.Error())
	}
	return status.Error(codes.Unknown, err.Error())
}

// NewGRPCServer builds a gRPC server with tracing, metrics and panic recovery, serving the optimizer service.
// Server metrics are registered on registry.
func NewGRPCServer(registry prometheus.Registerer, srv OptimizerServer, opts ...grpc.ServerOption) (*grpc.Server, error) {
	serverMetrics := grpcprom.NewServerMetrics(grpcprom.WithServerHandlingTimeHistogram())
	if err := registry.Register(serverMetrics); err != nil {
		return nil, fmt.Errorf("register grpc server metrics: %w", err)
	}

	recoveryHandler := func(p interface{}) error {
		logrus.WithField("panic", p).Error("recovered from panic in grpc handler")
		return status.Errorf(codes.Internal, "internal error: %v", p)
	}

	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(Codec{}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			serverMetrics.UnaryServerInterceptor(),
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandler(recoveryHandler)),
		),
	}, opts...)

	s := grpc.NewServer(opts...)
	RegisterOptimizerServer(s, srv)
	serverMetrics.InitializeMetrics(s)
	return s, nil
}
