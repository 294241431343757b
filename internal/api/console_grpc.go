package api

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/services"
)

// ConsoleServiceName is the fully qualified gRPC service name.
const ConsoleServiceName = "rcaconsole.v1.Console"

const (
	searchMethod   = "/" + ConsoleServiceName + "/Search"
	guidanceMethod = "/" + ConsoleServiceName + "/RetrieveGuidance"
)

// ConsoleServer is the gRPC surface of the console. Messages are google.protobuf.Struct
// carrying the same JSON shapes as the REST API.
type ConsoleServer interface {
	Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RetrieveGuidance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterConsoleServer attaches srv to a gRPC service registrar.
func RegisterConsoleServer(s grpc.ServiceRegistrar, srv ConsoleServer) {
	s.RegisterService(&consoleServiceDesc, srv)
}

var consoleServiceDesc = grpc.ServiceDesc{
	ServiceName: ConsoleServiceName,
	HandlerType: (*ConsoleServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Search", Handler: consoleSearchHandler},
		{MethodName: "RetrieveGuidance", Handler: consoleGuidanceHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rcaconsole/v1/console.proto",
}

func consoleSearchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsoleServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: searchMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ConsoleServer).Search(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func consoleGuidanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsoleServer).RetrieveGuidance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: guidanceMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ConsoleServer).RetrieveGuidance(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ConsoleService adapts services.Console to ConsoleServer.
type ConsoleService struct {
	logger  *slog.Logger
	console *services.Console
}

// NewConsoleService constructs the gRPC facade.
func NewConsoleService(logger *slog.Logger, console *services.Console) *ConsoleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleService{logger: logger, console: console}
}

type guidanceRequest struct {
	TicketID    string   `json:"ticketId"`
	PlaybookIDs []string `json:"playbookIds"`
	Question    string   `json:"question"`
}

// Search expects a ticket object and returns the resulting view.
func (s *ConsoleService) Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.console == nil {
		return nil, status.Error(codes.FailedPrecondition, "console not configured")
	}
	var ticket models.Ticket
	if err := fromStruct(req, &ticket); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	view, err := s.console.Search(ctx, ticket)
	if err != nil && !errors.Is(err, services.ErrStaleSearch) {
		s.logger.Debug("grpc search failed", slog.String("ticket_id", ticket.ID), slog.Any("error", err))
		return nil, status.Error(grpcCodeFor(err), err.Error())
	}
	return toStruct(view)
}

// RetrieveGuidance expects {ticketId, question} or {playbookIds, question}.
func (s *ConsoleService) RetrieveGuidance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.console == nil {
		return nil, status.Error(codes.FailedPrecondition, "console not configured")
	}
	var in guidanceRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var (
		reply services.GuidanceReply
		err   error
	)
	if in.TicketID != "" {
		reply, err = s.console.Guidance(ctx, in.TicketID, in.Question)
	} else {
		reply, err = s.console.GuidanceFor(ctx, in.PlaybookIDs, in.Question)
	}
	if err != nil {
		return nil, status.Error(grpcCodeFor(err), err.Error())
	}
	return toStruct(reply)
}
