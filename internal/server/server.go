// Package server exposes the HTTP API and the browser-facing WebSocket
// endpoint. REST routes cover document upload, summarization, and question
// answering; the WebSocket carries voice transcripts in and assistant
// events out.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sarathi-app/sarathi/internal/assistant"
	"github.com/sarathi-app/sarathi/internal/events"
	"github.com/sarathi-app/sarathi/internal/extract"
	"github.com/sarathi-app/sarathi/internal/rag"
	"github.com/sarathi-app/sarathi/internal/summarize"
)

// Config carries the HTTP listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// DefaultConfig returns listener settings suitable for a local daemon.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8417",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 5 * time.Second,
		MaxUploadBytes:  32 << 20,
	}
}

// Server owns the listener, the REST handlers, and the WebSocket hub.
type Server struct {
	logger     *slog.Logger
	config     Config
	extractor  *extract.Extractor
	summaries  *summarize.Service
	processor  *rag.Processor
	answerer   *rag.Answerer
	controller *assistant.Controller
	bus        *events.Bus
	hub        *Hub

	http *http.Server
}

// New assembles the server over its collaborators. The bus feeds assistant
// events to connected WebSocket clients; the controller receives transcripts
// from them.
func New(
	logger *slog.Logger,
	config Config,
	extractor *extract.Extractor,
	summaries *summarize.Service,
	processor *rag.Processor,
	answerer *rag.Answerer,
	controller *assistant.Controller,
	bus *events.Bus,
) *Server {
	if config.Addr == "" {
		config = DefaultConfig()
	}

	s := &Server{
		logger:     logger,
		config:     config,
		extractor:  extractor,
		summaries:  summaries,
		processor:  processor,
		answerer:   answerer,
		controller: controller,
		bus:        bus,
		hub:        NewHub(logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("POST /api/summarize", s.handleSummarize)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/rag/process", s.handleRAGProcess)
	mux.HandleFunc("POST /api/rag/question", s.handleRAGQuestion)
	mux.HandleFunc("GET /ws/assistant", s.handleWebSocket)

	s.http = &http.Server{
		Addr:         config.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Hub exposes the WebSocket hub for navigation probing.
func (s *Server) Hub() *Hub { return s.hub }

// Run serves until ctx is cancelled, then drains connections. Assistant bus
// events are forwarded to every connected client for the lifetime of ctx.
func (s *Server) Run(ctx context.Context) error {
	forwardCtx, stopForward := context.WithCancel(ctx)
	defer stopForward()
	go s.forwardEvents(forwardCtx)

	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("http server listening", "addr", s.config.Addr)
		}
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		s.hub.CloseAll()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// forwardEvents relays assistant bus events to every WebSocket client.
func (s *Server) forwardEvents(ctx context.Context) {
	ch, cancel := s.bus.Subscribe(64)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.hub.Broadcast(event)
		}
	}
}

// withCORS permits browser extensions and local pages to call the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
