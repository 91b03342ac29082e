// internal/ws/hub_test.go
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHubClient(h *Hub, userID int64) *Client {
	return &Client{hub: h, send: make(chan []byte, 64), userID: userID}
}

func TestHub_SendToUser(t *testing.T) {
	h := NewHub(zap.NewNop())

	c1 := newHubClient(h, 10)
	c2 := newHubClient(h, 10)
	other := newHubClient(h, 11)
	h.addClient(c1)
	h.addClient(c2)
	h.addClient(other)

	h.SendToUser(10, map[string]string{"title": "New Lead Assigned"})

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got map[string]string
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, "New Lead Assigned", got["title"])
		default:
			t.Fatal("expected a queued message")
		}
	}

	// The other user's connection stays quiet.
	assert.Empty(t, other.send)
}

func TestHub_SendToUnknownUser(t *testing.T) {
	h := NewHub(zap.NewNop())
	assert.NotPanics(t, func() {
		h.SendToUser(99, map[string]string{"title": "x"})
	})
}

func TestHub_SendToClosedClient(t *testing.T) {
	h := NewHub(zap.NewNop())

	c := newHubClient(h, 10)
	h.addClient(c)
	c.close()

	assert.NotPanics(t, func() {
		h.SendToUser(10, map[string]string{"title": "x"})
	})
	assert.Zero(t, h.ConnectionCount())
}

func TestHub_SendDuringConcurrentClose(t *testing.T) {
	h := NewHub(zap.NewNop())

	// A disconnect closing the send channel mid-push must not panic the
	// pushing goroutine.
	for i := 0; i < 200; i++ {
		c := newHubClient(h, 10)
		h.addClient(c)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.close()
		}()
		go func() {
			defer wg.Done()
			assert.NotPanics(t, func() {
				h.SendToUser(10, map[string]string{"title": "ping"})
			})
		}()
		wg.Wait()

		h.removeClient(c)
	}
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := newHubClient(h, 10)

	assert.NotPanics(t, func() {
		c.close()
		c.close()
	})
	assert.False(t, c.trySend([]byte("x")))
}

func TestHub_ConnectionCount(t *testing.T) {
	h := NewHub(zap.NewNop())
	assert.Zero(t, h.ConnectionCount())

	c1 := newHubClient(h, 10)
	c2 := newHubClient(h, 11)
	h.addClient(c1)
	h.addClient(c2)
	assert.Equal(t, 2, h.ConnectionCount())

	h.removeClient(c1)
	assert.Equal(t, 1, h.ConnectionCount())

	// Removing twice is harmless.
	h.removeClient(c1)
	assert.Equal(t, 1, h.ConnectionCount())
}

func TestHub_RunRegistersAndShutsDown(t *testing.T) {
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := newHubClient(h, 10)
	h.register <- c

	require.Eventually(t, func() bool {
		return h.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	h.unregister <- c
	require.Eventually(t, func() bool {
		return h.ConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}
