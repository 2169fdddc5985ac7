package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Start runs the HTTP server and blocks until an interrupt or terminate
// signal arrives, then shuts everything down in dependency order.
func (s *Server) Start(addr string) {
	go func() {
		if err := s.E.Start(addr); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	waitForShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop accepting connections first, then tear down the signal bus and
	// the database behind the drained server.
	if err := s.E.Shutdown(ctx); err != nil {
		s.E.Logger.Fatal(err)
	}
	s.stopBus()
	if err := s.bus.Close(); err != nil {
		slog.Warn("Failed to close signal bus", "error", err)
	}
	s.DB.Close(ctx)
}
