package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"doacao-platform/internal/notify"
)

var (
	ErrNoSubscribers = errors.New("no notification subscribers connected")
	ErrHubStopped    = errors.New("notification hub stopped")
	ErrHubBusy       = errors.New("notification hub busy")
)

const enqueueTimeout = 2 * time.Second

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

// Notification is the JSON frame pushed to subscribers.
type Notification struct {
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Icon   string    `json:"icon,omitempty"`
	Tag    string    `json:"tag,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

type broadcast struct {
	payload   []byte
	delivered chan int
}

// Hub fans notifications out to every connected websocket client. It is the
// background delivery worker of the notification center.
type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan broadcast
	stopped    chan struct{}

	log *zap.Logger

	// OnCount, when set, receives the number of clients after each change.
	OnCount func(n int)
}

var _ notify.Worker = (*Hub)(nil)

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan broadcast),
		stopped:    make(chan struct{}),
		log:        log.Named("hub"),
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			close(client.Send)
			delete(h.clients, client)
		}
		close(h.stopped)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.clients[client] = true
			h.log.Info("websocket client registered", zap.String("user_id", client.UserID))
			h.counted()

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Info("websocket client unregistered", zap.String("user_id", client.UserID))
				h.counted()
			}

		case msg := <-h.broadcast:
			n := 0
			for client := range h.clients {
				select {
				case client.Send <- msg.payload:
					n++
				default:
					// Slow consumer: drop it rather than block everyone else.
					close(client.Send)
					delete(h.clients, client)
					h.counted()
				}
			}
			msg.delivered <- n
		}
	}
}

// Join registers c. It returns false once the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// Leave unregisters c; a no-op after the hub has stopped.
func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.stopped:
	}
}

// ShowNotification pushes a notification to every subscriber. It fails with
// ErrNoSubscribers when nobody received it, so callers can fall back.
func (h *Hub) ShowNotification(title string, opts notify.Options) error {
	data, err := json.Marshal(Notification{
		Type:   "notification",
		Title:  title,
		Body:   opts.Body,
		Icon:   opts.Icon,
		Tag:    opts.Tag,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg := broadcast{payload: data, delivered: make(chan int, 1)}
	select {
	case h.broadcast <- msg:
	case <-h.stopped:
		return ErrHubStopped
	case <-time.After(enqueueTimeout):
		return ErrHubBusy
	}

	if n := <-msg.delivered; n == 0 {
		return ErrNoSubscribers
	}
	return nil
}

func (h *Hub) counted() {
	if h.OnCount != nil {
		h.OnCount(len(h.clients))
	}
}
