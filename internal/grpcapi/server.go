package grpcapi

import (
	"context"
	"log/slog"
	"net"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/service"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/wire"
)

const (
	ServiceName       = "scanlog.v1.ScanLog"
	ExportRangeMethod = "/" + ServiceName + "/ExportRange"
)

// ScanLogServer is the gRPC export surface. Messages are protobuf
// well-known types: the request is a Struct {from, to} and the response a
// ListValue of {content, date, time} structs.
type ScanLogServer interface {
	ExportRange(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScanLogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ExportRange",
			Handler:    exportRangeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scanlog/v1/scanlog.proto",
}

func exportRangeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScanLogServer).ExportRange(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ExportRangeMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScanLogServer).ExportRange(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type Dependencies struct {
	Logger   *slog.Logger
	Addr     string
	Exporter *service.RangeExporter
}

type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
	addr       string
	exporter   *service.RangeExporter
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		health:   health.NewServer(),
		logger:   d.Logger,
		addr:     d.Addr,
		exporter: d.Exporter,
	}

	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(s.logUnary))
	s.grpcServer.RegisterService(&serviceDesc, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}

func (s *Server) ExportRange(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	from, to, err := wire.RangeFromProto(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	rows, err := s.exporter.Export(ctx, from, to)
	if err != nil {
		if store.IsStorageError(err) {
			return nil, status.Error(codes.Unavailable, "scan log unavailable")
		}
		return nil, status.Error(codes.Internal, "unexpected server error")
	}
	return wire.RowsToProto(rows), nil
}

// Serve blocks until the listener fails or Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	err := s.grpcServer.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.addr)
	}
	return s.Serve(lis)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, "rpc",
		slog.String("method", info.FullMethod),
		slog.String("code", status.Code(err).String()),
	)
	return resp, err
}
