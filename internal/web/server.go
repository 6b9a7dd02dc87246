package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"focuslog/internal/config"
)

type Server struct {
	config  *config.Config
	handler *Handler
	server  *http.Server

	hubCtx    context.Context
	hubCancel context.CancelFunc
}

func NewServer(cfg *config.Config, source Source) *Server {
	handler := NewHandler(cfg, source)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, hubCancel := context.WithCancel(context.Background())

	return &Server{
		config:    cfg,
		handler:   handler,
		server:    httpServer,
		hubCtx:    hubCtx,
		hubCancel: hubCancel,
	}
}

// Start serves until Shutdown. It returns http.ErrServerClosed after a
// clean shutdown.
func (s *Server) Start() error {
	go s.handler.hub.run(s.hubCtx)

	log.Printf("Starting web server on http://%s", s.server.Addr)
	err := s.server.ListenAndServe()
	if err != http.ErrServerClosed {
		s.hubCancel()
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	s.hubCancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
