package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codespire/rca-console/internal/config"
	"github.com/codespire/rca-console/internal/services"
)

func startGRPC(t *testing.T, backend *fakeBackend) *grpc.ClientConn {
	t.Helper()
	console := services.NewConsole(nil, backend, nil, services.HybridOptions{})
	srv, err := NewServer(config.ServerConfig{GRPCAddress: "127.0.0.1:0", GracefulTimeout: time.Second}, NewConsoleService(nil, console))
	require.NoError(t, err)
	go func() { _ = srv.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(srv.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGRPCHealth(t *testing.T) {
	conn := startGRPC(t, newFakeBackend())
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ConsoleServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestGRPCSearchAndGuidance(t *testing.T) {
	conn := startGRPC(t, newFakeBackend())
	ctx := context.Background()

	req, err := structpb.NewStruct(map[string]any{"id": "INC-5", "shortDescription": "vpn tunnel drops"})
	require.NoError(t, err)
	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, searchMethod, req, out))
	assert.Equal(t, "ready", out.GetFields()["status"].GetStringValue())
	assert.Len(t, out.GetFields()["candidates"].GetListValue().GetValues(), 1)

	req, err = structpb.NewStruct(map[string]any{"ticketId": "INC-5", "question": "impact"})
	require.NoError(t, err)
	out = new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, guidanceMethod, req, out))
	best := out.GetFields()["best"].GetStructValue()
	assert.Equal(t, "PB-1", best.GetFields()["playbookId"].GetStringValue())
	assert.Equal(t, "56%", out.GetFields()["patch"].GetStructValue().GetFields()["confidence"].GetStringValue())
}

func TestGRPCErrorCodes(t *testing.T) {
	backend := newFakeBackend()
	backend.searchErr = errors.New("refused")
	conn := startGRPC(t, backend)
	ctx := context.Background()

	req, _ := structpb.NewStruct(map[string]any{"shortDescription": "vpn"})
	err := conn.Invoke(ctx, searchMethod, req, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	req, _ = structpb.NewStruct(map[string]any{"id": "INC-1", "shortDescription": "vpn"})
	err = conn.Invoke(ctx, searchMethod, req, new(structpb.Struct))
	assert.Equal(t, codes.Unavailable, status.Code(err))

	req, _ = structpb.NewStruct(map[string]any{"ticketId": "INC-404", "question": "impact"})
	err = conn.Invoke(ctx, guidanceMethod, req, new(structpb.Struct))
	assert.Equal(t, codes.NotFound, status.Code(err))
}
