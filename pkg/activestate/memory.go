package activestate

import (
	"bytes"
	"context"
	"sync"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// Memory is the in-process variant: every Set is broadcast to subscribers
// of the same process.
type Memory struct {
	mu     sync.Mutex
	record []byte
	subs   map[int]chan Observation
	nextID int
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[int]chan Observation)}
}

func (m *Memory) Get(_ context.Context) (*overlay.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return overlay.Decode(m.record)
}

// Set replaces the record. Writing the value already held is not a change
// and notifies nobody.
func (m *Memory) Set(_ context.Context, p *overlay.Pair) error {
	data, err := overlay.Encode(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if bytes.Equal(data, m.record) {
		return nil
	}
	m.record = data
	for _, ch := range m.subs {
		offer(ch, Observation{Pair: p.Clone()})
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context) (<-chan Observation, error) {
	ch := make(chan Observation, 16)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	current, _ := overlay.Decode(m.record)
	offer(ch, Observation{Pair: current})
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}
