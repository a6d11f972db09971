// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"

	"google.golang.org/grpc"

	"github.com/AccelByte/extend-build-optimizer/pkg/models"
	"github.com/AccelByte/extend-build-optimizer/pkg/problemfile"
)

const (
	serviceName  = "optimizer.v1.Optimizer"
	solveMethod  = "/" + serviceName + "/Solve"
	cancelMethod = "/" + serviceName + "/Cancel"
	statusMethod = "/" + serviceName + "/Status"
)

type SolveRequest struct {
	Problem problemfile.Document `json:"problem"`
}

type SolveResponse struct {
	Result models.SolveResult    `json:"result"`
	Status models.ProgressStatus `json:"status"`
}

type CancelRequest struct{}

type CancelResponse struct {
	WasActive bool `json:"wasActive"`
}

type StatusRequest struct{}

type StatusResponse struct {
	State      string                `json:"state"`
	Status     models.ProgressStatus `json:"status"`
	LastResult *models.SolveResult   `json:"lastResult,omitempty"`
}

// OptimizerServer is the server API of the optimizer service.
type OptimizerServer interface {
	// Solve compacts the request gear pool, solves the problem and blocks until the solve is over.
	Solve(ctx context.Context, req *SolveRequest) (*SolveResponse, error)
	// Cancel cancels the active solve, if any.
	Cancel(ctx context.Context, req *CancelRequest) (*CancelResponse, error)
	// Status returns the progress of the active or last solve and the last successful result.
	Status(ctx context.Context, req *StatusRequest) (*StatusResponse, error)
}

// RegisterOptimizerServer registers srv on s.
func RegisterOptimizerServer(s grpc.ServiceRegistrar, srv OptimizerServer) {
	s.RegisterService(&optimizerServiceDesc, srv)
}

//nolint:gochecknoglobals
var optimizerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OptimizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Solve", Handler: solveHandler},
		{MethodName: "Cancel", Handler: cancelHandler},
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "optimizer.v1",
}

func solveHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SolveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).Solve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: solveMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OptimizerServer).Solve(ctx, req.(*SolveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func cancelHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CancelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).Cancel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: cancelMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OptimizerServer).Cancel(ctx, req.(*CancelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func statusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OptimizerServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: statusMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OptimizerServer).Status(ctx, req.(*StatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the optimizer service.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) Solve(ctx context.Context, req *SolveRequest) (*SolveResponse, error) {
	out := new(SolveResponse)
	if err := c.conn.Invoke(ctx, solveMethod, req, out, grpc.ForceCodec(Codec{})); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Cancel(ctx context.Context) (*CancelResponse, error) {
	out := new(CancelResponse)
	if err := c.conn.Invoke(ctx, cancelMethod, &CancelRequest{}, out, grpc.ForceCodec(Codec{})); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.conn.Invoke(ctx, statusMethod, &StatusRequest{}, out, grpc.ForceCodec(Codec{})); err != nil {
		return nil, err
	}
	return out, nil
}
