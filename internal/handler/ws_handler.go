/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for validating the author
name, upgrading the HTTP connection to WebSocket, and initiating the client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"groupchat/internal/app/chat"
	"groupchat/internal/pkg/errs"
	"groupchat/internal/pkg/logx"
	"groupchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// The author name is required up front; room membership is negotiated over the
// socket with JOIN_ROOM and LEAVE_ROOM events after the upgrade.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			logx.Warn("WebSocket request rejected: Missing author name")
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidJoinRequest))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, name)

		go client.WritePump()

		logx.Info("WebSocket connection established", "client_name", name)

		client.ReadPump()
	}
}
