package grpcserver

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"crossbook/domain/orderbook"
	"crossbook/service"
)

// Server adapts OrderService to gRPC.
type Server struct {
	svc *service.OrderService
	log *zap.Logger
}

var _ MatchingServer = (*Server)(nil)

func NewServer(svc *service.OrderService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log.Named("grpc")}
}

// NewGRPCServer returns a grpc.Server speaking the JSON codec with s registered.
func NewGRPCServer(s *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(Codec{})}, opts...)
	gs := grpc.NewServer(opts...)
	gs.RegisterService(&MatchingServiceDesc, s)
	return gs
}

// -------------------- Commands --------------------

func (s *Server) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	side, err := orderbook.ParseSide(req.Side)
	if err != nil {
		return nil, toStatus(err)
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "price %q: %v", req.Price, err)
	}

	id, err := s.svc.Submit(side, req.Symbol, req.Quantity, price)
	if err != nil {
		return nil, toStatus(err)
	}

	s.log.Debug("submit",
		zap.Stringer("side", side),
		zap.String("symbol", req.Symbol),
		zap.Int64("qty", req.Quantity),
		zap.Stringer("price", price),
		zap.Uint64("order_id", id),
	)
	return &SubmitResponse{OrderID: id}, nil
}

func (s *Server) Match(ctx context.Context, _ *MatchRequest) (*MatchResponse, error) {
	records, err := s.svc.Match()
	if err != nil && !errors.Is(err, service.ErrSink) {
		return nil, status.Error(codes.Internal, err.Error())
	}

	resp := &MatchResponse{Matches: make([]Match, 0, len(records))}
	for _, r := range records {
		resp.Matches = append(resp.Matches, Match{
			BuyOrderID:  r.BuyOrderID,
			SellOrderID: r.SellOrderID,
			Symbol:      r.Symbol,
			Quantity:    r.Quantity,
			Price:       r.Price.String(),
		})
	}
	if err != nil {
		resp.OutboxError = err.Error()
	}
	return resp, nil
}

// -------------------- Queries --------------------

func (s *Server) ListSymbols(ctx context.Context, _ *ListSymbolsRequest) (*ListSymbolsResponse, error) {
	syms := s.svc.Symbols()
	resp := &ListSymbolsResponse{Symbols: make([]SymbolEntry, 0, len(syms))}
	for _, sym := range syms {
		resp.Symbols = append(resp.Symbols, SymbolEntry{Ticker: sym.Ticker, Slot: sym.Slot})
	}
	return resp, nil
}

func (s *Server) GetBook(ctx context.Context, req *GetBookRequest) (*GetBookResponse, error) {
	snap, ok := s.svc.Snapshot(req.Symbol)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "symbol %q is not registered", req.Symbol)
	}
	if req.ByPriority {
		snap = snap.ByPriority()
	}
	return &GetBookResponse{
		Symbol: snap.Symbol.Ticker,
		Slot:   snap.Symbol.Slot,
		Buys:   toEntries(snap.Buys),
		Sells:  toEntries(snap.Sells),
	}, nil
}

// -------------------- Converters --------------------

func toEntries(orders []orderbook.Order) []OrderEntry {
	out := make([]OrderEntry, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderEntry{
			ID:       o.ID,
			Seq:      o.Seq,
			Side:     o.Side.String(),
			Quantity: o.Quantity,
			Price:    o.Price.String(),
		})
	}
	return out
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, orderbook.ErrTickerCapacityExceeded):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, orderbook.ErrInvalidQuantity),
		errors.Is(err, orderbook.ErrInvalidPrice),
		errors.Is(err, orderbook.ErrInvalidSide),
		errors.Is(err, orderbook.ErrEmptyTicker):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
