/*
Package handler provides HTTP handler functions for user lookup.
*/
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/app/store"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/resp"
)

// HandleFindByPhone resolves a phone number to a user record so clients can
// start a conversation from a contact address.
func HandleFindByPhone(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")
		if phone == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPhone))
			return
		}

		foundUser, err := deps.Users.GetUserByPhone(r.Context(), phone)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}

			logx.Error(err, "find_by_phone: user lookup failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": foundUser,
		})
	}
}
