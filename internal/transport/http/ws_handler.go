package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"bordereau/internal/infrastructure"
	ws "bordereau/internal/websocket"
)

// WebSocketHandler upgrades HTTP requests to hub connections.
type WebSocketHandler struct {
	hub      *ws.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the WebSocket upgrade handler.
func NewWebSocketHandler(hub *ws.Hub, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:    hub,
		logger: logger.With(slog.String("handler", "websocket")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The service binds to localhost; cross-origin browsers are
			// the front end served by this same process.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.ErrorContext(ctx, "websocket upgrade failed", slog.Any("error", err))
		return
	}

	h.logger.InfoContext(ctx, "websocket client connected",
		slog.String("remote_addr", r.RemoteAddr))
	ws.ServeWS(h.hub, conn, traceID)
}
