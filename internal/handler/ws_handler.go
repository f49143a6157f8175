/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains HandleWebSocket, the identity gate of the system: it rate
limits the handshake, verifies the credential token, upgrades the connection,
records presence, and starts the client pumps.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"pairchat/internal/app/chat"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/limiter"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
	"pairchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
//
// The bearer token travels in the "token" query parameter: browser WebSocket
// clients cannot set an Authorization header, so the handshake standardizes on
// the query parameter and honors no other location. A missing or invalid token
// rejects the connection before any presence or messaging operation is
// possible; the rejection carries the reason and the caller must reconnect
// with a valid token.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			logx.Warn("WebSocket connection rejected: Missing credential token.")
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket connection rejected: Token verification failed.", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidToken))
			return
		}

		// The token signature is trusted from here on; the payload carries the
		// verified identity.
		currentUser := user.User{
			ID:   payload.ID,
			Name: payload.Name,
		}

		logx.Info("Attempting to upgrade connection", "user_id", currentUser.ID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.ConnectionID()
		client := chat.NewClient(connID, conn, currentUser, deps.Delivery, deps.Presence)

		go client.WritePump()

		// A reconnect for the same identity silently supersedes the previous
		// entry; the superseded connection keeps draining until its own
		// disconnect, which the registry then ignores.
		deps.Presence.SetActive(currentUser.ID, client)

		logx.Info("WebSocket connection established", "user_id", currentUser.ID, "connection_id", connID)

		client.ReadPump()
	}
}
