package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dmehra2102/doglivery/internal/catalog/domain"
)

type StockClient struct {
	log  *slog.Logger
	conn *grpc.ClientConn
}

func NewStockClient(log *slog.Logger, addr string, opts ...grpc.DialOption) (*StockClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &StockClient{log: log, conn: conn}, nil
}

func (c *StockClient) CheckStock(ctx context.Context, lines []domain.StockLine) ([]domain.StockShortage, error) {
	resp := new(CheckStockResponse)
	if err := c.conn.Invoke(ctx, checkStockMethod, &CheckStockRequest{Lines: lines}, resp); err != nil {
		return nil, err
	}
	if !resp.Available {
		c.log.Info("stock shortage reported", "lines", len(resp.Shortages))
	}
	return resp.Shortages, nil
}

func (c *StockClient) Close() error { return c.conn.Close() }
