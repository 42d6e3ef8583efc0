/*
Package handler provides HTTP handler functions for the room transcript fetch and message send endpoints.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"groupchat/internal/pkg/errs"
	"groupchat/internal/pkg/logx"
	"groupchat/internal/pkg/req"
	"groupchat/internal/pkg/resp"
)

// SendMessageInput is the request body for POST /messages. Field names match
// the client wire format.
type SendMessageInput struct {
	UserName   string `json:"userName"`
	Message    string `json:"message"`
	ChatRoomID string `json:"chatRoomId"`
}

// HandleGetTranscript serves GET /rooms/{roomID}/messages: the room's full
// history merged across all authors, ordered by timestamp. Addressing a room
// for the first time creates it, so the response always holds at least the
// system creation message.
func HandleGetTranscript(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		if roomID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomIDMissing))
			return
		}

		transcript, customErr := deps.Hub.Transcript(r.Context(), roomID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": transcript,
		})
	}
}

// HandleSendMessage serves POST /messages: guard, persist, and broadcast a
// new message. A body that matches the restricted-token set is dropped
// without persistence and without an error to the caller.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SendMessageInput

		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.UserName == "" || input.Message == "" || input.ChatRoomID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		msg, customErr := deps.Hub.Send(r.Context(), input.ChatRoomID, input.UserName, input.Message)
		if customErr != nil {
			if customErr.Code == errs.ErrRestrictedContent {
				logx.Info("Restricted message dropped.", "room_id", input.ChatRoomID, "author", input.UserName)
				resp.RespondSuccess(w, r, nil)
				return
			}

			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": msg,
		})
	}
}
