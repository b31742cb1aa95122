// Command notification-sink is a development stand-in for a webhook
// notification consumer. It accepts whatever the webhook channel posts,
// keeps the payloads in memory, and serves them back for inspection.
//
// Run it next to the API and point CITYLINE_NOTIFY_WEBHOOK_URL at it:
//
//	go run . -addr :9090
//	CITYLINE_NOTIFY_WEBHOOK_URL=http://localhost:9090/ go run ./cmd/server
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

type sink struct {
	logger *slog.Logger

	mu       sync.Mutex
	received []json.RawMessage
}

func (s *sink) handleReceive(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.logger.Warn("rejected non-JSON payload", "error", err)
		http.Error(w, "body must be JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.received = append(s.received, payload)
	count := len(s.received)
	s.mu.Unlock()

	s.logger.Info("notification received", "total", count)
	w.WriteHeader(http.StatusNoContent)
}

func (s *sink) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]json.RawMessage, len(s.received))
	copy(out, s.received)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"count":         len(out),
		"notifications": out,
	})
}

func (s *sink) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.received = nil
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	s := &sink{logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", s.handleReceive)
	mux.HandleFunc("GET /received", s.handleList)
	mux.HandleFunc("DELETE /received", s.handleReset)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	logger.Info("notification sink listening", "addr", *addr)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
