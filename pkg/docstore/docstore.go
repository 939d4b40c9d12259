// Package docstore serves documents backed by activestate stores over HTTP,
// with a server-sent event stream per document. It is the remote variant's
// server side.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/overlay"
)

// MaxDocumentBytes bounds a PUT body.
const MaxDocumentBytes = 1 << 20

// Heartbeat is how often an idle watch stream sends a comment line.
var Heartbeat = 15 * time.Second

type docKey struct {
	collection string
	id         string
}

// Server routes document requests to registered stores.
type Server struct {
	logger *slog.Logger

	mu   sync.RWMutex
	docs map[docKey]activestate.Store
}

func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger, docs: make(map[docKey]activestate.Store)}
}

// Handle serves the document collection/id from s.
func (srv *Server) Handle(collection, id string, s activestate.Store) {
	srv.mu.Lock()
	srv.docs[docKey{collection, id}] = s
	srv.mu.Unlock()
}

func (srv *Server) lookup(r *http.Request) (activestate.Store, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	s, ok := srv.docs[docKey{r.PathValue("collection"), r.PathValue("id")}]
	return s, ok
}

// Handler returns the HTTP routes.
func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/documents/{collection}/{id}", srv.get)
	mux.HandleFunc("PUT /v1/documents/{collection}/{id}", srv.put)
	mux.HandleFunc("DELETE /v1/documents/{collection}/{id}", srv.delete)
	mux.HandleFunc("GET /v1/documents/{collection}/{id}/watch", srv.watch)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux
}

func (srv *Server) get(w http.ResponseWriter, r *http.Request) {
	s, ok := srv.lookup(r)
	if !ok {
		http.Error(w, "unknown document", http.StatusNotFound)
		return
	}
	p, err := s.Get(r.Context())
	if err != nil {
		srv.logger.Error("document read failed", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if p == nil {
		http.Error(w, "no document", http.StatusNotFound)
		return
	}
	writeRecord(w, p)
}

func (srv *Server) put(w http.ResponseWriter, r *http.Request) {
	s, ok := srv.lookup(r)
	if !ok {
		http.Error(w, "unknown document", http.StatusNotFound)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxDocumentBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := overlay.Decode(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Set(r.Context(), p); err != nil {
		srv.logger.Error("document write failed", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	srv.logger.Info("document replaced", "path", r.URL.Path, "pair", p.String())
	w.WriteHeader(http.StatusNoContent)
}

func (srv *Server) delete(w http.ResponseWriter, r *http.Request) {
	s, ok := srv.lookup(r)
	if !ok {
		http.Error(w, "unknown document", http.StatusNotFound)
		return
	}
	if err := s.Set(r.Context(), nil); err != nil {
		srv.logger.Error("document delete failed", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	srv.logger.Info("document deleted", "path", r.URL.Path)
	w.WriteHeader(http.StatusNoContent)
}

// watch streams one `data:` event per observation; `null` means absent.
func (srv *Server) watch(w http.ResponseWriter, r *http.Request) {
	s, ok := srv.lookup(r)
	if !ok {
		http.Error(w, "unknown document", http.StatusNotFound)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	obs, err := s.Subscribe(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(Heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case o, ok := <-obs:
			if !ok {
				return
			}
			if err := WriteEvent(w, "", o.Pair); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// WriteEvent writes v as one server-sent event. A nil value is sent as
// `null`. Values encode to a single line.
func WriteEvent(w io.Writer, event string, v interface{}) error {
	data := []byte("null")
	if !isNil(v) {
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return err
		}
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	if p, ok := v.(*overlay.Pair); ok {
		return p == nil
	}
	return false
}

func writeRecord(w http.ResponseWriter, p *overlay.Pair) {
	data, err := overlay.Encode(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// ListenAndServe serves srv on addr until ctx is done.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()
	srv.logger.Info("docstore listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
