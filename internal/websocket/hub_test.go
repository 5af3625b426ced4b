package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doacao-platform/internal/notify"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func TestShowNotificationWithoutSubscribers(t *testing.T) {
	h, _ := startHub(t)
	err := h.ShowNotification("oi", notify.Options{Body: "b"})
	assert.ErrorIs(t, err, ErrNoSubscribers)
}

func TestShowNotificationDelivers(t *testing.T) {
	h, _ := startHub(t)

	var counts []int
	h.OnCount = func(n int) { counts = append(counts, n) }

	a := &Client{Hub: h, Send: make(chan []byte, 4), UserID: "a"}
	b := &Client{Hub: h, Send: make(chan []byte, 4), UserID: "b"}
	h.Register <- a
	h.Register <- b

	require.NoError(t, h.ShowNotification("Nova doação", notify.Options{Body: "R$ 10", Icon: "/i.png"}))

	for _, c := range []*Client{a, b} {
		var frame Notification
		require.NoError(t, json.Unmarshal(<-c.Send, &frame))
		assert.Equal(t, "notification", frame.Type)
		assert.Equal(t, "Nova doação", frame.Title)
		assert.Equal(t, "R$ 10", frame.Body)
		assert.Equal(t, "/i.png", frame.Icon)
	}

	h.Unregister <- a
	h.Unregister <- b
	// A no-op unregister still synchronises with Run before we read counts.
	h.Unregister <- a

	_, open := <-a.Send
	assert.False(t, open)
	assert.Equal(t, []int{1, 2, 1, 0}, counts)
}

func TestSlowClientIsDropped(t *testing.T) {
	h, _ := startHub(t)

	slow := &Client{Hub: h, Send: make(chan []byte)}
	h.Register <- slow

	err := h.ShowNotification("t", notify.Options{})
	assert.ErrorIs(t, err, ErrNoSubscribers)

	_, open := <-slow.Send
	assert.False(t, open)
}

func TestShowNotificationAfterStop(t *testing.T) {
	h, cancel := startHub(t)
	c := &Client{Hub: h, Send: make(chan []byte, 1)}
	h.Register <- c

	cancel()
	<-h.stopped

	err := h.ShowNotification("t", notify.Options{})
	assert.ErrorIs(t, err, ErrHubStopped)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestJoinAndLeaveAfterStop(t *testing.T) {
	h, cancel := startHub(t)
	c := &Client{Hub: h, Send: make(chan []byte, 1)}
	require.True(t, h.Join(c))

	cancel()
	<-h.stopped

	h.Leave(c)
	assert.False(t, h.Join(&Client{Hub: h, Send: make(chan []byte, 1)}))
}
