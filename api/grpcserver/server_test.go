package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"crossbook/domain/orderbook"
	"crossbook/service"
)

func startServer(t *testing.T, capacity int) *Client {
	t.Helper()

	log := zaptest.NewLogger(t)
	svc := service.NewOrderService(orderbook.NewOrderBook(capacity, nil), nil, nil, nil, log)
	gs := NewGRPCServer(NewServer(svc, log))

	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn)
}

func TestSubmitMatchRoundTrip(t *testing.T) {
	c := startServer(t, 8)
	ctx := context.Background()

	buy, err := c.Submit(ctx, &SubmitRequest{Side: "buy", Symbol: "AAPL", Quantity: 10, Price: "10"})
	require.NoError(t, err)
	require.Equal(t, uint64(1), buy.OrderID)

	sell, err := c.Submit(ctx, &SubmitRequest{Side: "SELL", Symbol: "AAPL", Quantity: 4, Price: "9.50"})
	require.NoError(t, err)
	require.Equal(t, uint64(2), sell.OrderID)

	m, err := c.Match(ctx, &MatchRequest{})
	require.NoError(t, err)
	require.Equal(t, []Match{{
		BuyOrderID: 1, SellOrderID: 2, Symbol: "AAPL", Quantity: 4, Price: "9.5",
	}}, m.Matches)
	require.Empty(t, m.OutboxError)

	again, err := c.Match(ctx, &MatchRequest{})
	require.NoError(t, err)
	require.Empty(t, again.Matches)

	book, err := c.GetBook(ctx, &GetBookRequest{Symbol: "AAPL"})
	require.NoError(t, err)
	require.Equal(t, "AAPL", book.Symbol)
	require.Len(t, book.Buys, 1)
	require.Equal(t, int64(6), book.Buys[0].Quantity)
	require.Empty(t, book.Sells)
}

func TestSubmitErrorCodes(t *testing.T) {
	c := startServer(t, 1)
	ctx := context.Background()

	_, err := c.Submit(ctx, &SubmitRequest{Side: "BUY", Symbol: "AAPL", Quantity: 1, Price: "1"})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  *SubmitRequest
		want codes.Code
	}{
		{"bad side", &SubmitRequest{Side: "hold", Symbol: "AAPL", Quantity: 1, Price: "1"}, codes.InvalidArgument},
		{"bad price text", &SubmitRequest{Side: "BUY", Symbol: "AAPL", Quantity: 1, Price: "ten"}, codes.InvalidArgument},
		{"zero quantity", &SubmitRequest{Side: "BUY", Symbol: "AAPL", Quantity: 0, Price: "1"}, codes.InvalidArgument},
		{"negative price", &SubmitRequest{Side: "SELL", Symbol: "AAPL", Quantity: 1, Price: "-1"}, codes.InvalidArgument},
		{"capacity", &SubmitRequest{Side: "BUY", Symbol: "MSFT", Quantity: 1, Price: "1"}, codes.ResourceExhausted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Submit(ctx, tc.req)
			require.Equal(t, tc.want, status.Code(err), "got %v", err)
		})
	}
}

func TestQueries(t *testing.T) {
	c := startServer(t, 8)
	ctx := context.Background()

	for _, req := range []*SubmitRequest{
		{Side: "BUY", Symbol: "IBM", Quantity: 1, Price: "5"},
		{Side: "BUY", Symbol: "AAPL", Quantity: 1, Price: "7"},
		{Side: "BUY", Symbol: "IBM", Quantity: 1, Price: "6"},
	} {
		_, err := c.Submit(ctx, req)
		require.NoError(t, err)
	}

	syms, err := c.ListSymbols(ctx, &ListSymbolsRequest{})
	require.NoError(t, err)
	require.Equal(t, []SymbolEntry{{Ticker: "IBM", Slot: 0}, {Ticker: "AAPL", Slot: 1}}, syms.Symbols)

	book, err := c.GetBook(ctx, &GetBookRequest{Symbol: "IBM", ByPriority: true})
	require.NoError(t, err)
	require.Len(t, book.Buys, 2)
	require.Equal(t, "6", book.Buys[0].Price)
	require.Equal(t, "5", book.Buys[1].Price)

	_, err = c.GetBook(ctx, &GetBookRequest{Symbol: "NOPE"})
	require.Equal(t, codes.NotFound, status.Code(err))
}
