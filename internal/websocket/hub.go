package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"plant-journal-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Hub fans capture progress events out to an owner's connected clients.
// With a Redis client attached it also relays across instances; rdb may be
// nil for the single-process profile.
type Hub struct {
	// clients maps ownerId -> connections (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb        *redis.Client
	instanceId string
	logger     logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OwnerId] = append(h.clients[client.OwnerId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"owner_id": client.OwnerId})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.OwnerId]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.OwnerId] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.OwnerId]) == 0 {
					delete(h.clients, client.OwnerId)
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToOwner delivers a payload to every connection of one owner, locally
// and, when clustered, via Redis to other instances.
func (h *Hub) SendToOwner(ownerId string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[ownerId]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"owner_id": ownerId})
			h.unregister <- client
		}
	}

	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"origin":          h.instanceId,
			"target_owner_id": ownerId,
			"message":         json.RawMessage(payload),
		})
		h.rdb.Publish(context.Background(), clusterChannel, envelope)
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin        string          `json:"origin"`
			TargetOwnerId string          `json:"target_owner_id"`
			Message       json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Bad cluster event", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instanceId {
			continue // already delivered locally
		}

		h.mu.RLock()
		clients := h.clients[payload.TargetOwnerId]
		h.mu.RUnlock()

		for _, client := range clients {
			select {
			case client.Send <- payload.Message:
			default:
				h.unregister <- client
			}
		}
	}
}
