package hub

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kstepanov/dormhub/internal/model"
)

type memSub struct {
	mu     sync.Mutex
	got    []model.Notification
	sendFn func(model.Notification) error
	closed int
}

func (m *memSub) Send(n model.Notification) error {
	if m.sendFn != nil {
		if err := m.sendFn(n); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.got = append(m.got, n)
	m.mu.Unlock()
	return nil
}

func (m *memSub) Close() error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
	return nil
}

func (m *memSub) received() []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Notification(nil), m.got...)
}

func TestHub_BroadcastDeliversToAll(t *testing.T) {
	t.Parallel()
	h := New(zap.NewNop())
	a, b := &memSub{}, &memSub{}
	h.Subscribe(a)
	h.Subscribe(b)

	h.Broadcast(model.GroupsUpdated())

	for _, s := range []*memSub{a, b} {
		got := s.received()
		if len(got) != 1 || got[0].Kind != model.KindGroupsUpdated {
			t.Fatalf("received %v", got)
		}
	}
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()
	h := New(zap.NewNop())
	a := &memSub{}
	h.Subscribe(a)
	if h.Count() != 1 {
		t.Fatalf("count=%d, want 1", h.Count())
	}
	h.Unsubscribe(a)
	h.Unsubscribe(a)
	if h.Count() != 0 {
		t.Fatalf("count=%d, want 0", h.Count())
	}
}

func TestHub_FailedSendDropsOnlyThatViewer(t *testing.T) {
	t.Parallel()
	h := New(zap.NewNop())
	bad := &memSub{sendFn: func(model.Notification) error { return errors.New("broken pipe") }}
	good := &memSub{}
	h.Subscribe(bad)
	h.Subscribe(good)

	h.Broadcast(model.HostelsUpdated())

	if got := good.received(); len(got) != 1 {
		t.Fatalf("good viewer received %d messages, want 1", len(got))
	}
	if h.Count() != 1 {
		t.Fatalf("count=%d, want 1 after dropping the failed viewer", h.Count())
	}
	if bad.closed != 1 {
		t.Fatalf("bad viewer closed %d times, want 1", bad.closed)
	}

	// The dropped viewer stays dropped on the next broadcast.
	h.Broadcast(model.HostelsUpdated())
	if h.Count() != 1 {
		t.Fatalf("count=%d after second broadcast, want 1", h.Count())
	}
}

func TestHub_UnsubscribeMidBroadcast(t *testing.T) {
	t.Parallel()
	h := New(zap.NewNop())

	var leaver *memSub
	leaver = &memSub{sendFn: func(model.Notification) error {
		// Simulates the transport closing during fan-out.
		h.Unsubscribe(leaver)
		return errors.New("connection closed")
	}}
	stayer := &memSub{}
	h.Subscribe(leaver)
	h.Subscribe(stayer)

	h.Broadcast(model.GroupsUpdated())

	if got := stayer.received(); len(got) != 1 {
		t.Fatalf("staying viewer received %d messages, want 1", len(got))
	}
	if h.Count() != 1 {
		t.Fatalf("count=%d, want exactly one removal", h.Count())
	}
}

func TestHub_ConcurrentSubscribeAndBroadcast(t *testing.T) {
	t.Parallel()
	h := New(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := &memSub{}
			h.Subscribe(s)
			h.Unsubscribe(s)
		}()
		go func() {
			defer wg.Done()
			h.Broadcast(model.GroupsUpdated())
		}()
	}
	wg.Wait()

	if h.Count() != 0 {
		t.Fatalf("count=%d, want 0", h.Count())
	}
}

func TestHub_ShutdownClosesAll(t *testing.T) {
	t.Parallel()
	h := New(zap.NewNop())
	a, b := &memSub{}, &memSub{}
	h.Subscribe(a)
	h.Subscribe(b)

	h.Shutdown()

	if h.Count() != 0 {
		t.Fatalf("count=%d, want 0", h.Count())
	}
	if a.closed != 1 || b.closed != 1 {
		t.Fatalf("closed=%d/%d, want 1/1", a.closed, b.closed)
	}
}
