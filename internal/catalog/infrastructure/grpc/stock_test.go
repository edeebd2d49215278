package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmehra2102/doglivery/internal/catalog/domain"
)

type checkerFunc func(ctx context.Context, lines []domain.StockLine) ([]domain.StockShortage, error)

func (f checkerFunc) CheckStock(ctx context.Context, lines []domain.StockLine) ([]domain.StockShortage, error) {
	return f(ctx, lines)
}

func startServer(t *testing.T, checker StockChecker) *StockClient {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterStockServer(gs, NewServer(log, checker))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	client, err := NewStockClient(log, "passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCheckStockOverGRPC(t *testing.T) {
	client := startServer(t, checkerFunc(func(_ context.Context, lines []domain.StockLine) ([]domain.StockShortage, error) {
		var out []domain.StockShortage
		for _, l := range lines {
			if l.BagSize == "15kg" {
				out = append(out, domain.StockShortage{ProductID: l.ProductID, BagSize: l.BagSize, Requested: l.Quantity, Available: decimal.NewFromInt(1)})
			}
		}
		return out, nil
	}))

	shortages, err := client.CheckStock(context.Background(), []domain.StockLine{
		{ProductID: "p1", Quantity: decimal.RequireFromString("2.5")},
		{ProductID: "p2", BagSize: "15kg", Quantity: decimal.NewFromInt(2)},
	})
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.Equal(t, "p2", shortages[0].ProductID)
	assert.Equal(t, "1", shortages[0].Available.String())

	shortages, err = client.CheckStock(context.Background(), []domain.StockLine{{ProductID: "p1", Quantity: decimal.NewFromInt(1)}})
	require.NoError(t, err)
	assert.Empty(t, shortages)
}

func TestCheckStockErrors(t *testing.T) {
	client := startServer(t, checkerFunc(func(context.Context, []domain.StockLine) ([]domain.StockShortage, error) {
		return nil, errors.New("db down")
	}))

	_, err := client.CheckStock(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.CheckStock(context.Background(), []domain.StockLine{{ProductID: "p1", Quantity: decimal.NewFromInt(1)}})
	assert.Equal(t, codes.Internal, status.Code(err))
}
