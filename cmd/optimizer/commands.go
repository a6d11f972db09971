// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AccelByte/extend-build-optimizer/pkg/config"
	"github.com/AccelByte/extend-build-optimizer/pkg/envelope"
	"github.com/AccelByte/extend-build-optimizer/pkg/metrics"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
	"github.com/AccelByte/extend-build-optimizer/pkg/problemfile"
	"github.com/AccelByte/extend-build-optimizer/pkg/server"
	"github.com/AccelByte/extend-build-optimizer/pkg/solver"
)

type solveFlags struct {
	file    string
	workers int
	topN    int
	json    bool
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "optimizer",
		Short:         "Search gear combinations that maximise a computed stat",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			level, err := logrus.ParseLevel(loaded.LogLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logrus.SetLevel(level)
			*cfg = *loaded
			return nil
		},
	}
	cfg = config.Default()

	root.AddCommand(newSolveCmd(cfg), newServeCmd(cfg), newStatusCmd(), newCancelCmd())
	return root
}

func newSolveCmd(cfg *config.Config) *cobra.Command {
	flags := solveFlags{}
	cmd := &cobra.Command{
		Use:   "solve -f problem.yaml",
		Short: "Solve a problem document and print the best builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), cfg, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "problem document (YAML or JSON)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "worker bound, overrides the document")
	cmd.Flags().IntVar(&flags.topN, "top", 0, "number of builds, overrides the document")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSolve(ctx context.Context, cfg *config.Config, flags solveFlags, out, progress io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scope := envelope.NewRootScope(ctx, "optimizer.solve", "")
	defer scope.Finish()

	doc, err := problemfile.Load(flags.file)
	if err != nil {
		return err
	}
	problem, err := doc.Problem(cfg, scope.Log)
	if err != nil {
		return err
	}
	if flags.workers > 0 {
		problem.MaxWorkers = flags.workers
	}
	if flags.topN > 0 {
		problem.TopN = flags.topN
	}

	s := solver.New(cfg, metrics.NewMetrics(prometheus.NewRegistry()))
	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	// the solve context is detached so an interrupt goes through Cancel
	outcomes, err := s.Solve(scope.WithContext(context.Background()), problem)
	if err != nil {
		return err
	}

	var outcome solver.Outcome
	for done := false; !done; {
		select {
		case outcome = <-outcomes:
			done = true
		case <-ctx.Done():
			s.Cancel()
			outcome = <-outcomes
			done = true
		case status := <-updates:
			printProgress(progress, status)
		}
	}

	switch {
	case outcome.Err != nil:
		return outcome.Err
	case outcome.Cancelled:
		fmt.Fprintln(progress, "solve cancelled")
		return nil
	}
	if flags.json {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(outcome.Result)
	}
	printResult(out, problem.Slots, *outcome.Result, outcome.Status)
	return nil
}

func printProgress(w io.Writer, status models.ProgressStatus) {
	if !status.Active || status.Total == 0 {
		return
	}
	fmt.Fprintf(w, "\r%d/%d combinations (%.1f%%) tested %d failed %d skipped %d",
		status.Processed(), status.Total, 100*float64(status.Processed())/float64(status.Total),
		status.Tested, status.Failed, status.Skipped)
}

func printResult(w io.Writer, slots []string, result models.SolveResult, status models.ProgressStatus) {
	fmt.Fprintf(w, "\nsolve %s: %d combinations in %s (tested %d, failed %d, skipped %d)\n",
		result.SolveID, status.Total, status.Elapsed().Round(time.Millisecond), status.Tested, status.Failed, status.Skipped)
	if len(result.Builds) == 0 {
		fmt.Fprintln(w, "no build satisfies the constraints")
	}
	for i, b := range result.Builds {
		parts := make([]string, len(slots))
		for j, slot := range slots {
			id := b.Build.ItemIDs[j]
			if id == "" {
				id = "-"
			}
			parts[j] = slot + "=" + id
		}
		fmt.Fprintf(w, "%2d. %-14.6g %s\n", i+1, b.Value, strings.Join(parts, " "))
	}
	if len(result.Plot) > 0 {
		fmt.Fprintln(w, "plot:")
		for _, p := range result.Plot {
			fmt.Fprintf(w, "  axis %-12.6g value %-12.6g %s\n", p.Axis, p.Value, strings.Join(p.Build.ItemIDs, ","))
		}
	}
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the optimizer gRPC service and the metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := envelope.InitTracerProvider(cfg.ServiceName, cfg.ZipkinEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logrus.WithError(err).Warn("failed to stop tracer provider")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	service := server.NewOptimizerService(cfg, solver.New(cfg, metrics.NewMetrics(registry)))
	grpcServer, err := server.NewGRPCServer(registry, service)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("port", cfg.GRPCPort).Info("grpc server started")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logrus.WithField("port", cfg.MetricsPort).Info("metrics server started")
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down")
		grpcServer.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func dial(addr string) (*server.Client, func(), error) {
	conn, err := grpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return server.NewClient(conn), func() { _ = conn.Close() }, nil
}

func newStatusCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the progress of a running optimizer service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeConn, err := dial(addr)
			if err != nil {
				return err
			}
			defer closeConn()
			resp, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(resp)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:6565", "optimizer service address")
	return cmd
}

func newCancelCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the active solve of a running optimizer service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeConn, err := dial(addr)
			if err != nil {
				return err
			}
			defer closeConn()
			resp, err := client.Cancel(cmd.Context())
			if err != nil {
				return err
			}
			if resp.WasActive {
				fmt.Fprintln(cmd.OutOrStdout(), "cancel requested")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no active solve")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:6565", "optimizer service address")
	return cmd
}
