/*
Package handler provides the HTTP handlers and routing setup for the treasury dashboard server.

This file contains the websocket upgrade handler that subscribes a browser
session to the broadcast channel and starts the client pumps.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"vaultboard/internal/app/lobby"
	"vaultboard/internal/pkg/errs"
	"vaultboard/internal/pkg/limiter"
	"vaultboard/internal/pkg/logx"
	"vaultboard/internal/pkg/resp"
)

// HandleWebSocket upgrades the connection, subscribes it to the hub and runs
// the client lifecycle. The hub immediately hands the new subscriber the
// current state snapshot.
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
			logx.Warn("WebSocket connection rejected: rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := uuid.New().String()
		client := lobby.NewClient(deps.Hub, conn, connID)

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", connID)

		deps.Hub.RegisterClient(client)

		client.ReadPump()
	}
}
