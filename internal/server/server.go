// Package server exposes one engine and its book over HTTP and websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ChizhovVadim/CounterReversi/pkg/book"
	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	maxSearchTime  = time.Minute
	maxSearchLimit = 60
)

type Engine interface {
	Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo
}

type Book interface {
	Find(b Board) (book.Entry, bool)
	RandomMove(b Board, blackToMove bool) (Move, int, bool)
}

// Server serializes searches: the engine and its cache serve one request
// at a time.
type Server struct {
	engine Engine
	book   Book
	logger zerolog.Logger
	mu     sync.Mutex
}

// New creates a server. book may be nil.
func New(eng Engine, bk Book, logger zerolog.Logger) *Server {
	return &Server{engine: eng, book: bk, logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/api/search", s.handleSearch)
	r.Get("/api/book/{board}", s.handleBook)
	r.Get("/ws/search", s.handleSearchStream)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var start = time.Now()
		var ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type searchRequest struct {
	Board       string `json:"board"`
	BlackToMove bool   `json:"black_to_move"`
	Height      int    `json:"height"`
	TimeMs      int    `json:"time_ms"`
}

type searchInfoDTO struct {
	Move     string   `json:"move"`
	Value    int      `json:"value"`
	Height   string   `json:"height"`
	Nodes    int64    `json:"nodes"`
	TimeMs   int64    `json:"time_ms"`
	FromBook bool     `json:"from_book"`
	PV       []string `json:"pv"`
}

func toDTO(si engine.SearchInfo) searchInfoDTO {
	var pv = make([]string, 0, len(si.PV))
	for _, m := range si.PV {
		pv = append(pv, m.String())
	}
	return searchInfoDTO{
		Move:     si.Move.String(),
		Value:    si.Value,
		Height:   si.Height.String(),
		Nodes:    si.Nodes,
		TimeMs:   si.Time.Milliseconds(),
		FromBook: si.FromBook,
		PV:       pv,
	}
}

// params turns a request into search parameters. Without a height the search
// runs for the requested time, bounded by maxSearchTime.
func (req searchRequest) params() (engine.SearchParams, time.Duration, error) {
	var b, err = NewBoardFromText(req.Board, req.BlackToMove)
	if err != nil {
		return engine.SearchParams{}, 0, err
	}
	if req.Height < 0 || req.Height > maxSearchLimit {
		return engine.SearchParams{}, 0, fmt.Errorf("bad height %v", req.Height)
	}
	var timeout = maxSearchTime
	if req.TimeMs > 0 {
		timeout = Min(timeout, time.Duration(req.TimeMs)*time.Millisecond)
	}
	var params = engine.SearchParams{Board: b, Policy: engine.Infinite{}}
	if req.Height > 0 {
		params.Policy = engine.FixedHeight{Height: req.Height}
	}
	return params, timeout, nil
}

func (s *Server) search(ctx context.Context, params engine.SearchParams, timeout time.Duration) engine.SearchInfo {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Search(ctx, params)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid payload"))
		return
	}
	var params, timeout, err = req.params()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var si = s.search(r.Context(), params, timeout)
	writeJSON(w, http.StatusOK, toDTO(si))
}

type bookEntryDTO struct {
	Class     string `json:"class"`
	Height    string `json:"height"`
	Heuristic int    `json:"heuristic"`
	Value     int    `json:"value"`
	Solved    bool   `json:"solved"`
	Cutoff    int    `json:"cutoff"`
	Games     uint32 `json:"games"`
	Move      string `json:"move,omitempty"`
}

// handleBook reports the book entry of a board. The side to move is given by
// the "side" query parameter, black by default.
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if s.book == nil {
		writeError(w, http.StatusNotFound, errors.New("no book"))
		return
	}
	var blackToMove = r.URL.Query().Get("side") != "white"
	var b, err = NewBoardFromText(chi.URLParam(r, "board"), blackToMove)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var e, ok = s.book.Find(b)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("position not in book"))
		return
	}
	var dto = bookEntryDTO{
		Class:     e.Class().String(),
		Height:    e.Height.String(),
		Heuristic: e.HeuristicValue,
		Value:     e.Value(blackToMove),
		Solved:    e.WLDSolved,
		Cutoff:    e.Cutoff,
		Games:     e.Games(),
	}
	if m, _, ok := s.book.RandomMove(b, blackToMove); ok {
		dto.Move = m.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
