// Package httpapi serves read-only introspection of the book over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"crossbook/domain/orderbook"
	"crossbook/service"
)

const apiPrefix = "/api/v1"

// Server routes introspection requests to an OrderService.
type Server struct {
	svc       *service.OrderService
	router    *mux.Router
	startTime time.Time
	log       *zap.Logger
}

// NewServer builds the router. gatherer backs /metrics.
func NewServer(svc *service.OrderService, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		svc:       svc,
		router:    mux.NewRouter(),
		startTime: time.Now(),
		log:       log.Named("http"),
	}
	s.registerRoutes(gatherer)
	return s
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	// Full paths on the root router: a shared subrouter reports 404 instead
	// of 405 when a later route in it does not match the path.
	s.router.HandleFunc(apiPrefix+"/symbols", s.handleSymbols).Methods(http.MethodGet)
	s.router.HandleFunc(apiPrefix+"/book/{symbol}", s.handleBook).Methods(http.MethodGet)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

type symbolJSON struct {
	Ticker string `json:"ticker"`
	Slot   int    `json:"slot"`
}

type orderJSON struct {
	ID       uint64 `json:"id"`
	Seq      uint64 `json:"seq"`
	Side     string `json:"side"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

type bookJSON struct {
	Symbol string      `json:"symbol"`
	Slot   int         `json:"slot"`
	Buys   []orderJSON `json:"buys"`
	Sells  []orderJSON `json:"sells"`
}

// handleSymbols handles GET /api/v1/symbols
func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	syms := s.svc.Symbols()
	out := make([]symbolJSON, 0, len(syms))
	for _, sym := range syms {
		out = append(out, symbolJSON{Ticker: sym.Ticker, Slot: sym.Slot})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"symbols": out})
}

// handleBook handles GET /api/v1/book/{symbol}
// ?order=priority ranks each side for display instead of stored order.
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	snap, ok := s.svc.Snapshot(symbol)
	if !ok {
		s.respondError(w, http.StatusNotFound, "symbol not registered: "+symbol)
		return
	}

	switch r.URL.Query().Get("order") {
	case "", "stored":
	case "priority":
		snap = snap.ByPriority()
	default:
		s.respondError(w, http.StatusBadRequest, "order must be stored or priority")
		return
	}

	s.respondJSON(w, http.StatusOK, bookJSON{
		Symbol: snap.Symbol.Ticker,
		Slot:   snap.Symbol.Slot,
		Buys:   toOrders(snap.Buys),
		Sells:  toOrders(snap.Sells),
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"resting_orders": s.svc.Resting(),
		"symbols":        len(s.svc.Symbols()),
	})
}

func toOrders(orders []orderbook.Order) []orderJSON {
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON{
			ID:       o.ID,
			Seq:      o.Seq,
			Side:     o.Side.String(),
			Quantity: o.Quantity,
			Price:    o.Price.String(),
		})
	}
	return out
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, map[string]string{"error": message})
}
