package handlers

import (
	"net/http"
	"strings"

	"whiteboard/internal/auth"
	ws "whiteboard/internal/websocket"
	"whiteboard/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// TokenVerifier resolves a bearer credential to an identity.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

type WebSocketHandlers struct {
	verifier  TokenVerifier
	registry  *ws.Registry
	router    *ws.Router
	clientCfg ws.ClientConfig
	upgrader  websocket.Upgrader
}

func NewWebSocketHandlers(verifier TokenVerifier, registry *ws.Registry, router *ws.Router, clientCfg ws.ClientConfig, allowedOrigins []string) *WebSocketHandlers {
	return &WebSocketHandlers{
		verifier:  verifier,
		registry:  registry,
		router:    router,
		clientCfg: clientCfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

// HandleWebSocket authenticates before upgrading; a request without a valid
// credential never becomes a WebSocket and never reaches the registry.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		logger.WithFields(logrus.Fields{"remote": r.RemoteAddr}).WithError(err).Info("Rejected connection")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn, h.registry, h.router, h.clientCfg)
	if err := h.registry.Register(client, identity.UserID); err != nil {
		logger.Error("Error registering client: %v", err)
		conn.Close()
		return
	}
	if identity.Name != "" {
		h.registry.SetDisplayName(client.ID(), identity.Name)
	}

	logger.WithFields(logrus.Fields{"conn_id": client.ID(), "user_id": identity.UserID}).Info("Connection established")

	go client.WritePump()
	go client.ReadPump()
}

// bearerToken reads the credential from the token query parameter, falling
// back to an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || lo.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}
