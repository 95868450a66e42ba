// Package grpcapi exposes dice evaluation as the gRPC service
// dice.v1.DiceService. Messages are google.protobuf.Struct values, so no
// generated code is needed on either side.
package grpcapi

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lemonberrylabs/dice-notation/pkg/dice"
	"github.com/lemonberrylabs/dice-notation/pkg/stats"
)

// EvaluateMethod is the full method name of the Evaluate RPC.
const EvaluateMethod = "/dice.v1.DiceService/Evaluate"

// DiceServiceServer is the server API for dice.v1.DiceService.
type DiceServiceServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes dice.v1.DiceService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dice.v1.DiceService",
	HandlerType: (*DiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dice/v1/dice.proto",
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiceServiceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiceServiceServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server implements dice.v1.DiceService.
type Server struct {
	eval   *dice.Evaluator
	stats  *stats.Store
	logger zerolog.Logger
	grpc   *grpc.Server
}

// New creates a new gRPC server backed by ev.
func New(ev *dice.Evaluator, st *stats.Store, logger zerolog.Logger) *Server {
	srv := &Server{
		eval:   ev,
		stats:  st,
		logger: logger,
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(srv.logCalls))
	gs.RegisterService(&ServiceDesc, srv)
	srv.grpc = gs

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

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// Stop stops the gRPC server immediately.
func (s *Server) Stop() {
	s.grpc.Stop()
}

// Evaluate rolls the expression in the request's "expression" field.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	expr := req.GetFields()["expression"].GetStringValue()
	if strings.TrimSpace(expr) == "" {
		return nil, status.Error(codes.InvalidArgument, "expression is required")
	}

	res, err := s.eval.Roll(expr)
	s.stats.Record(res, err)
	if err != nil {
		return nil, status.Error(errorCode(err), err.Error())
	}

	out, err := structpb.NewStruct(map[string]any{
		"expression": expr,
		"total":      float64(res.Value),
		"totalText":  dice.FormatTotal(res.Value),
		"display":    res.Display,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}

func errorCode(err error) codes.Code {
	switch dice.KindOf(err) {
	case 0:
		return codes.Internal
	case dice.KindTooManyDice:
		return codes.ResourceExhausted
	default:
		return codes.InvalidArgument
	}
}

func (s *Server) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("dur", time.Since(start)).
		Msg("rpc")
	return resp, err
}

// Client calls dice.v1.DiceService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Evaluate sends one expression and returns the response fields.
func (c *Client) Evaluate(ctx context.Context, expression string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]any{"expression": expression})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
