// Package grpcapi serves the standard gRPC health service and an ego.Runs
// service that executes programs. Runs messages are JSON encoded; clients
// select the codec with grpc.CallContentSubtype("json").
package grpcapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/lemonberrylabs/ego/pkg/api"
	"github.com/lemonberrylabs/ego/pkg/store"
)

// ServiceName is the health-checked name of the runs service.
const ServiceName = "ego.Runs"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec encodes messages as JSON under the "json" content subtype.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

// ExecuteRequest asks for a program to be run.
type ExecuteRequest struct {
	Source string `json:"source"`
}

// GetRequest looks up a stored run.
type GetRequest struct {
	ID string `json:"id"`
}

// RunsServer is the server API for the ego.Runs service.
type RunsServer interface {
	Execute(context.Context, *ExecuteRequest) (*store.Run, error)
	Get(context.Context, *GetRequest) (*store.Run, error)
}

// Server hosts the health and runs services.
type Server struct {
	exec   *api.Executor
	health *health.Server
	grpc   *grpc.Server
}

// New creates a new gRPC server running programs through exec.
func New(exec *api.Executor) *Server {
	srv := &Server{
		exec:   exec,
		health: health.NewServer(),
	}

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, srv.health)
	gs.RegisterService(&runsServiceDesc, srv)
	srv.grpc = gs

	srv.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	srv.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop marks every service NOT_SERVING and then stops the server.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// --- Runs Service ---

func (s *Server) Execute(ctx context.Context, req *ExecuteRequest) (*store.Run, error) {
	if req.Source == "" {
		return nil, status.Error(codes.InvalidArgument, "source is required")
	}
	run, err := s.exec.Execute(ctx, req.Source)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return run, nil
}

func (s *Server) Get(ctx context.Context, req *GetRequest) (*store.Run, error) {
	run, err := s.exec.Store().GetRun(req.ID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return run, nil
}

var runsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RunsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
		{MethodName: "Get", Handler: getHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ego/runs",
}

func executeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExecuteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunsServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Execute"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RunsServer).Execute(ctx, req.(*ExecuteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunsServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Get"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RunsServer).Get(ctx, req.(*GetRequest))
	}
	return interceptor(ctx, in, info, handler)
}
