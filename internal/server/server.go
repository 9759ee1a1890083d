// Package server is the thin HTTP boundary around the backtest runner. It
// parses requests, invokes runs, and translates engine errors into structured
// failure bodies; it knows nothing about replay internals.
package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"backtestd/internal/engine"
	"backtestd/internal/store"
	"backtestd/internal/strategy"
	"backtestd/types"
)

// Store is what the server needs from the candle store.
type Store interface {
	engine.CandleSource
	Keys() []store.Key
}

type Server struct {
	store    Store
	runner   *engine.Runner
	defaults engine.Config
	log      *zap.Logger
}

func New(st Store, defaults engine.Config, log *zap.Logger) *Server {
	return &Server{
		store:    st,
		runner:   engine.NewRunner(st),
		defaults: defaults,
		log:      log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /strategies", s.handleStrategies)
	mux.HandleFunc("GET /series", s.handleSeries)
	mux.HandleFunc("POST /backtest", s.handleBacktest)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: statusSuccess, Message: "engine is running"})
}

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: statusSuccess, Data: strategy.Registered()})
}

func (s *Server) handleSeries(w http.ResponseWriter, _ *http.Request) {
	keys := s.store.Keys()
	out := make([]seriesInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, seriesInfo{Instrument: k.Instrument, Segment: string(k.Segment)})
	}
	writeJSON(w, http.StatusOK, response{Status: statusSuccess, Data: out})
}

// backtestRequest is the wire form of one invocation. fill_policy, allow_flip
// and size override the configured engine defaults when present.
type backtestRequest struct {
	Instrument string            `json:"instrument"`
	Segment    string            `json:"segment"`
	Strategy   string            `json:"strategy"`
	Params     map[string]string `json:"params"`
	FillPolicy *string           `json:"fill_policy"`
	AllowFlip  *bool             `json:"allow_flip"`
	Size       *string           `json:"size"`
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, "InvalidRequestError", "unreadable body")
		return
	}
	var req backtestRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "InvalidRequestError", "malformed JSON body")
		return
	}
	if req.Instrument == "" || req.Segment == "" || req.Strategy == "" {
		s.writeFailure(w, http.StatusBadRequest, "InvalidRequestError", "instrument, segment and strategy are required")
		return
	}
	segment, ok := types.ParseSegment(req.Segment)
	if !ok {
		s.writeFailure(w, http.StatusBadRequest, "InvalidRequestError", "unknown segment "+req.Segment)
		return
	}
	cfg, err := s.runConfig(req)
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, "InvalidRequestError", err.Error())
		return
	}

	result, err := s.runner.Run(engine.Request{
		Instrument: req.Instrument,
		Segment:    segment,
		Strategy:   req.Strategy,
		Params:     strategy.Params(req.Params),
		Config:     cfg,
	})
	if err != nil {
		s.writeRunError(w, req, err)
		return
	}

	s.log.Info("backtest completed",
		zap.String("instrument", req.Instrument),
		zap.String("segment", req.Segment),
		zap.String("strategy", req.Strategy),
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Duration("elapsed", time.Since(started)),
	)
	writeJSON(w, http.StatusOK, response{
		Status:    statusSuccess,
		Message:   "backtest completed",
		Data:      newRunReport(result),
		TimeTaken: time.Since(started).Seconds(),
	})
}

func (s *Server) runConfig(req backtestRequest) (engine.Config, error) {
	cfg := s.defaults
	if req.FillPolicy != nil {
		cfg.Fill = engine.FillPolicy(*req.FillPolicy)
	}
	if req.AllowFlip != nil {
		cfg.AllowFlip = *req.AllowFlip
	}
	if req.Size != nil {
		size, err := decimal.NewFromString(*req.Size)
		if err != nil {
			return engine.Config{}, errors.New("size must be a number")
		}
		cfg.Size = size
	}
	return cfg, nil
}

// writeRunError maps run failures onto the error taxonomy. One run's failure
// is logged and answered; it never affects the store or other runs.
func (s *Server) writeRunError(w http.ResponseWriter, req backtestRequest, err error) {
	s.log.Warn("backtest failed",
		zap.String("instrument", req.Instrument),
		zap.String("strategy", req.Strategy),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, engine.ErrConfig):
		s.writeFailure(w, http.StatusBadRequest, "InvalidRequestError", err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, strategy.ErrUnknownStrategy):
		s.writeFailure(w, http.StatusNotFound, "NotFoundError", err.Error())
	case errors.Is(err, engine.ErrEmptyData):
		s.writeFailure(w, http.StatusUnprocessableEntity, "EmptyDataError", err.Error())
	case errors.Is(err, strategy.ErrInvalidParams):
		s.writeFailure(w, http.StatusBadRequest, "InvalidParameterError", err.Error())
	case errors.Is(err, engine.ErrInvalidSignal):
		s.writeFailure(w, http.StatusInternalServerError, "InvalidSignalError", err.Error())
	case errors.Is(err, store.ErrDataLoad):
		s.writeFailure(w, http.StatusInternalServerError, "DataLoadError", err.Error())
	default:
		s.writeFailure(w, http.StatusInternalServerError, "InternalError", "backtest failed")
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, code int, kind, message string) {
	writeJSON(w, code, response{Status: statusFailure, Error: kind, Message: message})
}
