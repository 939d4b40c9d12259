package activestate

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/lowerthird/pkg/overlay"
)

const (
	// Collection and Document locate the record in the document store.
	Collection = "activeState"
	Document   = "lowerThird"
)

// ReconnectDelay is how long a broken watch stream waits before
// reconnecting.
var ReconnectDelay = time.Second

// Remote talks to a docstore server over HTTP.
type Remote struct {
	base   string
	client *http.Client
	logger *slog.Logger
}

func NewRemote(baseURL string, logger *slog.Logger) *Remote {
	return &Remote{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
		logger: orDefault(logger),
	}
}

func (r *Remote) documentURL() string {
	return fmt.Sprintf("%s/v1/documents/%s/%s", r.base, url.PathEscape(Collection), url.PathEscape(Document))
}

func (r *Remote) Get(ctx context.Context) (*overlay.Pair, error) {
	data, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return decode(r.logger, data), nil
}

func (r *Remote) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.documentURL(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("activestate: get: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("activestate: get: unexpected status %s", resp.Status)
	}
}

func (r *Remote) Set(ctx context.Context, p *overlay.Pair) error {
	data, err := overlay.Encode(p)
	if err != nil {
		return err
	}
	method := http.MethodPut
	var body io.Reader = bytes.NewReader(data)
	if data == nil {
		method = http.MethodDelete
		body = nil
	}
	req, err := http.NewRequestWithContext(ctx, method, r.documentURL(), body)
	if err != nil {
		return err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("activestate: set: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("activestate: set: unexpected status %s", resp.Status)
	}
	return nil
}

// Subscribe follows the document's event stream, reconnecting after
// ReconnectDelay whenever it breaks. Each reconnect delivers the current
// value again, which is dropped when it matches the last one emitted.
func (r *Remote) Subscribe(ctx context.Context) (<-chan Observation, error) {
	out := make(chan Observation, 16)
	go func() {
		defer close(out)
		var (
			last    []byte
			started bool
		)
		emit := func(data []byte) {
			if started && bytes.Equal(data, last) {
				return
			}
			started = true
			last = data
			offer(out, Observation{Pair: decode(r.logger, data)})
		}
		for {
			err := r.stream(ctx, emit)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				r.logger.Warn("active state stream broken", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(ReconnectDelay):
			}
		}
	}()
	return out, nil
}

func (r *Remote) stream(ctx context.Context, emit func([]byte)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.documentURL()+"/watch", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream is long lived; the client timeout would cut it.
	client := *r.client
	client.Timeout = 0
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "null" {
			emit(nil)
			continue
		}
		emit([]byte(payload))
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
