/*
Package handler provides the HTTP handlers and routing setup for the treasury dashboard server.

This file covers the dashboard state document: the public read, the key-gated
deep-merge update, and the chart mirror that follows the contract address.
*/
package handler

import (
	"net/http"

	"vaultboard/internal/app/lobby"
	"vaultboard/internal/app/model"
	"vaultboard/internal/pkg/errs"
	"vaultboard/internal/pkg/logx"
	"vaultboard/internal/pkg/req"
	"vaultboard/internal/pkg/resp"
	"vaultboard/internal/pkg/session"
)

// UpdateStateInput is the body of POST /update-state.
type UpdateStateInput struct {
	Key     string      `json:"key"`
	Updates model.State `json:"updates"`
}

// HandleGetState serves the current dashboard state document.
func HandleGetState(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondData(w, r, deps.Store.State())
	}
}

// HandleGetChart serves the chart mirror document.
func HandleGetChart(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondData(w, r, deps.Store.Chart())
	}
}

// HandleUpdateState applies a deep merge to the state document and pushes the
// merged result to every subscriber. The shared dev key is checked per
// request, independently of the dev-session cookie.
func HandleUpdateState(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input UpdateStateInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !session.VerifyKey(input.Key, deps.Config.DevKey) {
			resp.RespondError(w, r, errs.NewError(errs.ErrAccessDenied))
			return
		}

		merged, err := deps.Store.MergeState(input.Updates)
		if err != nil {
			logx.Error(err, "State document write failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		// Keep the chart mirror in sync with the contract address.
		address, _ := input.Updates["contractAddress"].(string)
		if address != "" {
			if err := deps.Store.WriteChart(address); err != nil {
				logx.Error(err, "Chart mirror write failed", "address", address)
			}
		}

		deps.Events.PublishToAll(lobby.EventStateUpdated, merged)

		if address != "" {
			deps.Events.PublishToAll(lobby.EventChartUpdated, model.Chart{Address: address})
		}

		resp.RespondSuccess(w, r, map[string]any{"state": merged})
	}
}
