/*
Package handler provides the HTTP handlers and routing setup for the treasury dashboard server.

This file covers the dev key verification endpoint that unlocks a privileged
session for the protected delete operations.
*/
package handler

import (
	"net/http"
	"strings"

	"vaultboard/internal/pkg/errs"
	"vaultboard/internal/pkg/logx"
	"vaultboard/internal/pkg/req"
	"vaultboard/internal/pkg/resp"
	"vaultboard/internal/pkg/session"
)

// VerifyDevInput is the body of POST /verify-dev.
type VerifyDevInput struct {
	Key string `json:"key"`
}

// HandleVerifyDev checks the candidate dev key. On a match it issues the
// dev-session cookie marking this session privileged for its lifetime.
// The response shape {"valid": bool} is part of the client contract.
func HandleVerifyDev(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input VerifyDevInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if strings.TrimSpace(deps.Config.DevKey) == "" {
			logx.Warn("verify-dev called but no DEV_KEY is configured")
			resp.RespondJSON(w, r, http.StatusInternalServerError, map[string]any{
				"valid": false,
				"error": "Server DEV_KEY missing",
			})
			return
		}

		if !session.VerifyKey(input.Key, deps.Config.DevKey) {
			logx.Info("verify-dev rejected an invalid key")
			resp.RespondJSON(w, r, http.StatusForbidden, map[string]any{"valid": false})
			return
		}

		token, err := session.GenerateToken(deps.Config.SessionSecret)
		if err != nil {
			logx.Error(err, "Failed to generate dev-session token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		session.SetCookie(w, token)

		logx.Info("verify-dev succeeded, dev session unlocked")
		resp.RespondJSON(w, r, http.StatusOK, map[string]any{"valid": true})
	}
}
