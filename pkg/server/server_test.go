// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-openapi/swag"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/AccelByte/extend-build-optimizer/pkg/config"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
	"github.com/AccelByte/extend-build-optimizer/pkg/problemfile"
	"github.com/AccelByte/extend-build-optimizer/pkg/solver"
	"github.com/AccelByte/extend-build-optimizer/pkg/testsetup"
)

func init() {
	logrus.SetLevel(logrus.ErrorLevel)
}

func startServer(t *testing.T) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.DefaultWorkers = 2

	service := NewOptimizerService(cfg, solver.New(cfg, testsetup.NewMetrics()))
	s, err := NewGRPCServer(prometheus.NewRegistry(), service)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func document(slots int, perSlot int) problemfile.Document {
	names := []string{"flower", "plume", "sands", "goblet", "circlet"}[:slots]
	doc := problemfile.Document{
		Slots: names,
		Formula: problemfile.Formula{
			Nodes:  []problemfile.NodeSpec{{ID: "dmg", Kind: "input", Key: "dmg"}},
			Target: "dmg",
		},
		TopN: swag.Int(2),
	}
	for _, slot := range names {
		for i := 0; i < perSlot; i++ {
			doc.Gear = append(doc.Gear, models.GearItem{
				ID:       fmt.Sprintf("%s-%02d", slot, i),
				Slot:     slot,
				Substats: []models.Substat{{Key: "dmg", Value: float64(i)}},
			})
		}
	}
	return doc
}

func TestOptimizerService_Solve(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	client := startServer(t)

	resp, err := client.Solve(context.Background(), &SolveRequest{Problem: document(2, 3)})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(resp.Result.Builds).To(HaveLen(2))
	g.Expect(resp.Result.Builds[0].Build.ItemIDs).To(Equal([]string{"flower-02", "plume-02"}))
	g.Expect(resp.Result.Builds[0].Value).To(Equal(4.0))
	g.Expect(resp.Result.Builds[1].Build.ItemIDs).To(Equal([]string{"flower-01", "plume-02"}))
	g.Expect(resp.Status.Tested).To(Equal(int64(9)))

	st, err := client.Status(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(st.State).To(Equal(solver.StateInactive.String()))
	g.Expect(st.LastResult).ToNot(BeNil())
	g.Expect(st.LastResult.SolveID).To(Equal(resp.Result.SolveID))
}

func TestOptimizerService_InvalidProblem(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	client := startServer(t)

	doc := document(2, 3)
	doc.TopN = swag.Int(0)
	_, err := client.Solve(context.Background(), &SolveRequest{Problem: doc})
	g.Expect(status.Code(err)).To(Equal(codes.InvalidArgument))

	doc = document(2, 3)
	doc.Formula.Target = "missing"
	_, err = client.Solve(context.Background(), &SolveRequest{Problem: doc})
	g.Expect(status.Code(err)).To(Equal(codes.InvalidArgument))
}

func TestOptimizerService_Cancel(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	client := startServer(t)

	resp, err := client.Cancel(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(resp.WasActive).To(BeFalse())

	solveErr := make(chan error, 1)
	go func() {
		_, err := client.Solve(context.Background(), &SolveRequest{Problem: document(5, 40)})
		solveErr <- err
	}()

	g.Eventually(func() string {
		st, err := client.Status(context.Background())
		if err != nil {
			return ""
		}
		return st.State
	}, 10*time.Second).Should(Equal(solver.StateActive.String()))

	_, err = client.Solve(context.Background(), &SolveRequest{Problem: document(2, 3)})
	g.Expect(status.Code(err)).To(Equal(codes.FailedPrecondition))

	resp, err = client.Cancel(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(resp.WasActive).To(BeTrue())

	var solveResult error
	g.Eventually(solveErr, 10*time.Second).Should(Receive(&solveResult))
	g.Expect(status.Code(solveResult)).To(Equal(codes.Canceled))

	st, err := client.Status(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(st.State).To(Equal(solver.StateInactive.String()))
	g.Expect(st.Status.Processed()).To(BeZero())
}
