/*
Package handler provides the HTTP handlers and routing setup for the treasury dashboard server.

This file covers the cached SOL price pass-through. The upstream feed is an
external collaborator: its failure degrades to the last known or a zero
quote, never to an error response.
*/
package handler

import (
	"net/http"

	"vaultboard/internal/pkg/resp"
)

// HandleSolPrice serves the current SOL price quote.
func HandleSolPrice(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quote, err := deps.Price.Current(r.Context())

		if quote != nil {
			resp.RespondData(w, r, quote)
			return
		}

		payload := map[string]any{
			"solana": map[string]any{"usd": 0},
		}
		if err != nil {
			payload["error"] = err.Error()
		}
		resp.RespondData(w, r, payload)
	}
}
