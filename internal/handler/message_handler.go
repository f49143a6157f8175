/*
Package handler provides the HTTP handler for message history retrieval.

This file contains the read-only thread endpoint: given two user identifiers,
it returns every message exchanged between them, ordered by creation time
ascending, independent of who sent which.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
	"pairchat/internal/pkg/resp"
)

// HandleGetThread serves GET /api/messages/{userID}?with={otherID}.
// Both identifiers must be well-formed UUIDs; malformed input yields a 400.
// The response data is the ordered message array, possibly empty.
func HandleGetThread(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		otherID := r.URL.Query().Get("with")

		if !randx.IsValidUserID(userID) || !randx.IsValidUserID(otherID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUserID))
			return
		}

		messages, err := deps.Messages.Thread(r.Context(), userID, otherID)
		if err != nil {
			logx.Error(err, "get_thread: message store query failed", "user_id", userID, "other_id", otherID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}
