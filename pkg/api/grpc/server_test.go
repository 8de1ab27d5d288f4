package grpcapi

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/lemonberrylabs/ego/pkg/api"
	"github.com/lemonberrylabs/ego/pkg/store"
)

func startTestServer(t *testing.T) (*Server, string, func()) {
	t.Helper()
	s := store.New()
	srv := New(api.NewExecutor(s, 1000, 16))

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go srv.grpc.Serve(lis)

	return srv, lis.Addr().String(), func() {
		srv.grpc.Stop()
	}
}

func dial(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	return conn
}

func TestHealthServing(t *testing.T) {
	_, addr, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	for _, service := range []string{"", ServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			t.Fatalf("Check(%q): %v", service, err)
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Errorf("Check(%q) = %v, want SERVING", service, resp.GetStatus())
		}
	}

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "other"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound for unknown service, got %v", err)
	}
}

func TestHealthShutdown(t *testing.T) {
	srv, addr, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()

	srv.health.Shutdown()
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("status = %v, want NOT_SERVING", resp.GetStatus())
	}
}

func TestExecuteAndGet(t *testing.T) {
	_, addr, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()
	ctx := context.Background()

	var run store.Run
	err := conn.Invoke(ctx, "/ego.Runs/Execute", &ExecuteRequest{Source: "print(1 + 1);"}, &run, grpc.CallContentSubtype("json"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.State != store.RunSucceeded || len(run.Output) != 1 || run.Output[0] != "2" {
		t.Errorf("unexpected run: %+v", run)
	}

	var got store.Run
	err = conn.Invoke(ctx, "/ego.Runs/Get", &GetRequest{ID: run.ID}, &got, grpc.CallContentSubtype("json"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != run.ID || got.Source != "print(1 + 1);" {
		t.Errorf("unexpected run: %+v", got)
	}
}

func TestExecuteFailedRun(t *testing.T) {
	_, addr, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()

	var run store.Run
	err := conn.Invoke(context.Background(), "/ego.Runs/Execute", &ExecuteRequest{Source: "let a = 1; let a = 2;"}, &run, grpc.CallContentSubtype("json"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.State != store.RunFailed || run.Error == nil || run.Error.Kind != "Redeclaration" {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestRunsErrors(t *testing.T) {
	_, addr, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()
	ctx := context.Background()

	var run store.Run
	err := conn.Invoke(ctx, "/ego.Runs/Execute", &ExecuteRequest{}, &run, grpc.CallContentSubtype("json"))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}

	err = conn.Invoke(ctx, "/ego.Runs/Get", &GetRequest{ID: "missing"}, &run, grpc.CallContentSubtype("json"))
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}
