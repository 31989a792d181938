package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"plant-journal-be/internal/dto"
	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/journal"
	"plant-journal-be/internal/pkg/logger"
	"plant-journal-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

// JournalSession serves one /ws/journal connection: it keeps a live view of
// the owner's discoveries and re-sends the projected list whenever either
// the stored records or the client's list inputs change.
type JournalSession struct {
	discoveryService service.IDiscoveryService
	logger           logger.ILogger
}

func NewJournalSession(discoveryService service.IDiscoveryService, log logger.ILogger) *JournalSession {
	return &JournalSession{
		discoveryService: discoveryService,
		logger:           log,
	}
}

type journalPush struct {
	Type    string                  `json:"type"`
	Records []dto.DiscoveryResponse `json:"records"`
}

// Serve runs until the connection drops. Control messages from the client
// are dto.JournalQuery payloads; every projection change is pushed back as
// a full list.
func (s *JournalSession) Serve(conn *websocket.Conn, ownerId string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer conn.Close()

	records, err := s.discoveryService.StreamByOwner(ctx, ownerId)
	if err != nil {
		s.logger.Error("JournalSession", "Failed to open discovery stream", map[string]interface{}{
			"owner_id": ownerId,
			"error":    err.Error(),
		})
		return
	}

	view := journal.NewView()

	queries := make(chan dto.JournalQuery)
	go func() {
		defer cancel()
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var q dto.JournalQuery
			if err := json.Unmarshal(message, &q); err != nil {
				continue // malformed control message, keep the session alive
			}
			select {
			case queries <- q:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-records:
			if !ok {
				return
			}
			view.SetRecords(snapshot)

		case q := <-queries:
			view.SetInputs(q.Search, parseFilterCategory(q.Category), journal.ParseSortOption(q.Sort))

		case projected := <-view.Updates():
			payload, err := json.Marshal(journalPush{
				Type:    "journal",
				Records: dto.NewDiscoveryResponses(projected),
			})
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// parseFilterCategory treats empty and "All" as the no-filter sentinel;
// anything else goes through the stored-category parser.
func parseFilterCategory(s string) entity.Category {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, string(entity.CategoryAll)) {
		return entity.CategoryAll
	}
	return entity.ParseCategory(trimmed)
}
