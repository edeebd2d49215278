package grpc

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/doglivery/internal/catalog/domain"
)

const (
	serviceName      = "doglivery.catalog.v1.StockService"
	checkStockMethod = "/" + serviceName + "/CheckStock"
)

type CheckStockRequest struct {
	Lines []domain.StockLine `json:"lines"`
}

type CheckStockResponse struct {
	Available bool                   `json:"available"`
	Shortages []domain.StockShortage `json:"shortages,omitempty"`
}

type StockServer interface {
	CheckStock(ctx context.Context, req *CheckStockRequest) (*CheckStockResponse, error)
}

var stockServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StockServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckStock", Handler: checkStockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/stock.proto",
}

func checkStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StockServer).CheckStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: checkStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StockServer).CheckStock(ctx, req.(*CheckStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func RegisterStockServer(s grpc.ServiceRegistrar, srv StockServer) {
	s.RegisterService(&stockServiceDesc, srv)
}

type StockChecker interface {
	CheckStock(ctx context.Context, lines []domain.StockLine) ([]domain.StockShortage, error)
}

type Server struct {
	log     *slog.Logger
	checker StockChecker
}

func NewServer(log *slog.Logger, checker StockChecker) *Server {
	return &Server{log: log, checker: checker}
}

func (s *Server) CheckStock(ctx context.Context, req *CheckStockRequest) (*CheckStockResponse, error) {
	if len(req.Lines) == 0 {
		return nil, status.Error(codes.InvalidArgument, "no lines to check")
	}
	shortages, err := s.checker.CheckStock(ctx, req.Lines)
	if err != nil {
		s.log.Error("stock check failed", "err", err)
		return nil, status.Error(codes.Internal, "stock check failed")
	}
	return &CheckStockResponse{Available: len(shortages) == 0, Shortages: shortages}, nil
}

func Run(addr string, srv *Server) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	RegisterStockServer(gs, srv)
	go func() {
		if err := gs.Serve(lis); err != nil {
			srv.log.Error("grpc serve stopped", "err", err)
		}
	}()
	return gs, nil
}
