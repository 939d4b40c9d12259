// Package display is the chromeless display surface: an HTTP server meant to
// be added to a broadcast mixer as a browser source (/) or an image source
// (/frame.png). It drives the presentation state machine from the shared
// active state and never exits on store or image errors.
package display

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.uber.org/atomic"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/compositor"
	"tableflip.dev/lowerthird/pkg/docstore"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/presenter"
)

// ImageTimeout bounds loading a pair's layer images.
var ImageTimeout = 10 * time.Second

type Options struct {
	Addr   string
	Scale  float64
	Clock  presenter.Clock
	Logger *slog.Logger
	Fonts  *compositor.FontSet
	Loader *compositor.Loader
	// AssetDir holds uploaded layer images, served to the page under
	// /assets/.
	AssetDir string
}

type Server struct {
	state  activestate.Store
	opts   Options
	logger *slog.Logger
	clock  presenter.Clock
	fonts  *compositor.FontSet
	loader *compositor.Loader
	runner *presenter.Runner

	scene     *atomic.Pointer[scene]
	seq       *atomic.Uint64
	clients   *atomic.Int64
	lastWidth float64

	mu   sync.Mutex
	subs map[int]chan Frame
	next int

	// background image loads, tied to Run's lifetime
	loads  sync.WaitGroup
	runCtx context.Context
}

// New prepares a display surface reading from state.
func New(state activestate.Store, opts Options) (*Server, error) {
	if state == nil {
		return nil, errors.New("display: no active state store")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = presenter.RealClock{}
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Fonts == nil {
		fs, err := compositor.DefaultFonts()
		if err != nil {
			return nil, err
		}
		opts.Fonts = fs
	}
	if opts.Loader == nil {
		opts.Loader = compositor.NewLoader(opts.Logger)
	}

	s := &Server{
		state:   state,
		opts:    opts,
		logger:  opts.Logger,
		clock:   opts.Clock,
		fonts:   opts.Fonts,
		loader:  opts.Loader,
		runner:  presenter.NewRunner(opts.Clock, opts.Logger),
		scene:   atomic.NewPointer(&scene{frame: Frame{State: presenter.Hidden.String()}}),
		seq:     atomic.NewUint64(0),
		clients: atomic.NewInt64(0),
		subs:    make(map[int]chan Frame),
		runCtx:  context.Background(),
	}
	s.runner.OnTransition(s.onTransition)
	return s, nil
}

// Runner exposes the state machine, for observers such as tests.
func (s *Server) Runner() *presenter.Runner {
	return s.runner
}

// Drive subscribes to the active state and runs the state machine until ctx
// is done. A failing subscription is retried every second; the last frame
// stays on air meanwhile.
func (s *Server) Drive(ctx context.Context) error {
	s.runCtx = ctx
	defer s.loads.Wait()
	for {
		obs, err := s.state.Subscribe(ctx)
		if err == nil {
			err = s.runner.Run(ctx, obs)
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.logger.Warn("active state subscription failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

// Run serves HTTP on the configured address and drives the state machine
// until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	hs := &http.Server{Addr: s.opts.Addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 2)
	go func() { errCh <- s.Drive(ctx) }()
	go func() {
		s.logger.Info("display listening", "addr", s.opts.Addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("display: serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// onTransition runs on the state machine's goroutine, so it only composes
// (measuring text) and hands image loading to a background goroutine.
func (s *Server) onTransition(t presenter.Transition) {
	prev := s.scene.Load()
	next := &scene{
		state:  t.To,
		pair:   t.Pair,
		plan:   prev.plan,
		images: prev.images,
		tween:  prev.tween,
		since:  t.At,
	}

	switch t.To {
	case presenter.Entering:
		plan, err := compositor.Compose(t.Pair, s.fonts)
		if err != nil {
			s.logger.Error("compose failed; keeping last frame", "pair", t.Pair.String(), "error", err)
			return
		}
		next.plan = &plan
		next.images = nil
		next.tween = compositor.NewMaskTween(s.lastWidth, plan.Mask.W, t.At, presenter.AnimationDuration)
		s.lastWidth = plan.Mask.W
		s.loadImages(plan)
	case presenter.Hidden:
		next.plan = nil
		next.images = nil
		s.lastWidth = 0
	}

	next.frame = Frame{
		Seq:        s.seq.Inc(),
		Ready:      true,
		State:      t.To.String(),
		Plan:       s.forPage(next.plan),
		FromWidth:  next.tween.From,
		At:         t.At,
		DurationMS: presenter.AnimationDuration.Milliseconds(),
	}
	s.scene.Store(next)
	s.broadcast(next.frame)
}

func (s *Server) loadImages(plan compositor.Plan) {
	if len(plan.Layers) == 0 {
		return
	}
	ctx := s.runCtx
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		ctx, cancel := context.WithTimeout(ctx, ImageTimeout)
		defer cancel()
		imgs := s.loader.LoadLayers(ctx, plan.Layers)
		for {
			cur := s.scene.Load()
			if cur.plan == nil || cur.plan.Identity != plan.Identity {
				return
			}
			if s.scene.CompareAndSwap(cur, cur.withImages(imgs)) {
				return
			}
		}
	}()
}

// Render rasterises the scene at now.
func (s *Server) Render(now time.Time) ([]byte, error) {
	sc := s.scene.Load()
	img := compositor.Blank(s.opts.Scale)
	if sc.plan != nil && sc.state != presenter.Hidden {
		opacity, dx := envelope(sc.state, sc.since, now)
		plan := sc.plan.WithMaskWidth(sc.tween.Width(now))
		var err error
		img, err = compositor.Rasterize(plan, sc.images, s.fonts, compositor.FrameOptions{
			Scale:   s.opts.Scale,
			Opacity: opacity,
			OffsetX: dx,
		})
		if err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Current returns the latest frame.
func (s *Server) Current() Frame {
	return s.scene.Load().frame
}

func (s *Server) subscribe() (int, chan Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan Frame, 8)
	s.subs[id] = ch
	return id, ch
}

func (s *Server) unsubscribe(id int) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// broadcast never blocks the state machine; a slow page loses its oldest
// queued frame.
func (s *Server) broadcast(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		for {
			select {
			case ch <- f:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Handler returns the display routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /fonts/{name}", s.handleFont)
	if s.opts.AssetDir != "" {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.opts.AssetDir))))
	}
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /frame.png", s.handleFrame)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":      true,
			"clients": s.clients.Load(),
		})
	})
	return mux
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	id, ch := s.subscribe()
	defer s.unsubscribe(id)
	s.clients.Inc()
	defer s.clients.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if err := docstore.WriteEvent(w, "frame", s.Current()); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(docstore.Heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case f := <-ch:
			if err := docstore.WriteEvent(w, "frame", f); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	data, err := s.Render(s.clock.Now())
	if err != nil {
		s.logger.Error("render failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

type stateView struct {
	Ready bool          `json:"ready"`
	State string        `json:"state"`
	Pair  *overlay.Pair `json:"pair"`
	Since time.Time     `json:"since"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.runner.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stateView{
		Ready: snap.Ready,
		State: snap.State.String(),
		Pair:  snap.Pair,
		Since: snap.Since,
	})
}
