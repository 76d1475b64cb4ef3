package service

import (
	"context"
	"encoding/json"
	"estudiapro_backend/pkg/logger"
	"estudiapro_backend/pkg/monitoring"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 16

	notificationChannel = "estudiapro:notifications"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	Hub     *NotificationHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Limiter *rate.Limiter
}

// readPump only keeps the connection alive; clients do not send commands.
// A client that floods the socket is disconnected.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("notification socket closed unexpectedly", zap.Error(err), zap.Uint("userID", c.UserID))
			}
			return
		}
		if !c.Limiter.Allow() {
			logger.Log.Warn("notification socket rate exceeded", zap.Uint("userID", c.UserID))
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	clients map[uint]map[*Client]struct{}
	mu      sync.RWMutex
}

// NotificationHub fans notifications out to connected websocket clients. With
// redis configured every instance publishes to a shared channel and delivers
// to its own local clients.
type NotificationHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	Redis      *redis.Client
}

func NewNotificationHub(rdb *redis.Client) *NotificationHub {
	h := &NotificationHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		Redis:      rdb,
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{clients: make(map[uint]map[*Client]struct{})}
	}
	return h
}

func (h *NotificationHub) getShard(userID uint) *shard {
	return h.shards[userID%shardCount]
}

type pubSubMessage struct {
	TargetUsers []uint          `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

// Run serves registrations until ctx ends. Afterwards Register and
// Unregister return without blocking.
func (h *NotificationHub) Run(ctx context.Context) {
	defer close(h.done)
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(ctx, notificationChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				var ps pubSubMessage
				if err := json.Unmarshal([]byte(msg.Payload), &ps); err != nil {
					logger.Log.Error("notification pubsub unmarshal failed", zap.Error(err))
					continue
				}
				h.deliverLocal(ps.TargetUsers, ps.Payload)
			}
		}()
	}

	for {
		select {
		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if s.clients[client.UserID] == nil {
				s.clients[client.UserID] = make(map[*Client]struct{})
			}
			s.clients[client.UserID][client] = struct{}{}
			s.mu.Unlock()
			monitoring.WSConnections.Inc()

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if conns, ok := s.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.Send)
					monitoring.WSConnections.Dec()
				}
				if len(conns) == 0 {
					delete(s.clients, client.UserID)
				}
			}
			s.mu.Unlock()

		case <-ctx.Done():
			h.Stop()
			return
		}
	}
}

// Register adds c to the hub. It reports false once the hub has stopped.
func (h *NotificationHub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c from the hub; Stop already closed it otherwise.
func (h *NotificationHub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Stop closes every local connection.
func (h *NotificationHub) Stop() {
	closed := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for userID, conns := range s.clients {
			for client := range conns {
				close(client.Send)
				closed++
			}
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}
	monitoring.WSConnections.Set(0)
	logger.Log.Info("notification hub stopped", zap.Int("closedConnections", closed))
}

// Push sends msg to every connection of the given users.
func (h *NotificationHub) Push(userIDs []uint, msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("notification marshal failed", zap.Error(err))
		return
	}

	if h.Redis == nil {
		h.deliverLocal(userIDs, payload)
		return
	}

	envelope, _ := json.Marshal(pubSubMessage{TargetUsers: userIDs, Payload: payload})
	if err := h.Redis.Publish(context.Background(), notificationChannel, envelope).Err(); err != nil {
		logger.Log.Warn("notification publish failed, delivering locally", zap.Error(err))
		h.deliverLocal(userIDs, payload)
	}
}

func (h *NotificationHub) deliverLocal(userIDs []uint, payload []byte) {
	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		for client := range s.clients[id] {
			select {
			case client.Send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

func (h *NotificationHub) IsUserOnline(userID uint) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID]) > 0
}

func ServeWs(hub *NotificationHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("websocket upgrade failed", zap.Error(err), zap.Uint("userID", userID))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	if !hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
