package handler

import (
	"plant-journal-be/internal/pkg/logger"
	"plant-journal-be/internal/pkg/serverutils"
	internalWS "plant-journal-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler owns the two websocket surfaces: capture progress pushes
// (hub fan-out, one message per state change) and the live journal view
// (per-connection projection with client-settable list inputs).
type StreamHandler struct {
	hub            *internalWS.Hub
	journalSession *internalWS.JournalSession
	logger         logger.ILogger
}

func NewStreamHandler(hub *internalWS.Hub, journalSession *internalWS.JournalSession, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		hub:            hub,
		journalSession: journalSession,
		logger:         log,
	}
}

func (h *StreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/capture", h.ServeCaptureWs)
	router.Get("/ws/journal", h.ServeJournalWs)
}

// ServeCaptureWs upgrades the connection and attaches it to the hub so the
// client receives capture state changes without polling.
func (h *StreamHandler) ServeCaptureWs(c *fiber.Ctx) error {
	ownerId, err := h.authenticate(c)
	if err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StreamHandler", "Capture stream opened", map[string]interface{}{"owner_id": ownerId})
			internalWS.ServeWs(h.hub, conn, ownerId)
			h.logger.Info("StreamHandler", "Capture stream closed", map[string]interface{}{"owner_id": ownerId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// ServeJournalWs upgrades the connection and runs a journal view session
// for the owner.
func (h *StreamHandler) ServeJournalWs(c *fiber.Ctx) error {
	ownerId, err := h.authenticate(c)
	if err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StreamHandler", "Journal stream opened", map[string]interface{}{"owner_id": ownerId})
			h.journalSession.Serve(conn, ownerId)
			h.logger.Info("StreamHandler", "Journal stream closed", map[string]interface{}{"owner_id": ownerId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// authenticate accepts the token from the "token" query param (browser
// websocket clients cannot set headers) or the Authorization header.
func (h *StreamHandler) authenticate(c *fiber.Ctx) (string, error) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Missing token (query 'token' or Authorization header)")
	}

	ownerId, err := serverutils.ParseUserToken(tokenStr)
	if err != nil {
		h.logger.Warn("StreamHandler", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return ownerId, nil
}
