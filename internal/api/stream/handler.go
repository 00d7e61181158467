package stream

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Akhileshait/tradenet/internal/auth"
	"github.com/Akhileshait/tradenet/internal/domain/connection"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

// Handler upgrades GET /ws requests and registers the resulting connection.
type Handler struct {
	tokens   *auth.Tokens
	registry connection.Registry
	config   Config
	logger   logger.Interface
	upgrader websocket.Upgrader
}

// NewHandler creates a new Handler. An allowed origin of "*" accepts every
// origin.
func NewHandler(tokens *auth.Tokens, registry connection.Registry, config Config, allowedOrigins []string, log logger.Interface) *Handler {
	return &Handler{
		tokens:   tokens,
		registry: registry,
		config:   config.normalize(),
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// ServeHTTP authenticates with the token query parameter or a bearer header.
// Authentication failures close the socket with 1008.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", logger.Field{Key: "error", Value: err.Error()})
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.BearerToken(r)
	}
	userID, err := h.tokens.Verify(token)
	if err != nil {
		deadline := time.Now().Add(h.config.WriteWait)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"), deadline)
		_ = conn.Close()
		return
	}

	client := newClient(conn, userID, h.config, h.logger)
	h.registry.Register(client)
	h.logger.Info("websocket connected",
		logger.Field{Key: "user_id", Value: userID},
		logger.Field{Key: "connection", Value: client.ID()},
	)

	go client.writePump()
	client.readPump()

	h.registry.Unregister(client)
	client.Close(websocket.CloseNormalClosure, "")
	h.logger.Info("websocket disconnected",
		logger.Field{Key: "user_id", Value: userID},
		logger.Field{Key: "connection", Value: client.ID()},
	)
}
