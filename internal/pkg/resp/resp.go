/*
Package resp provides helper functions for constructing and sending HTTP JSON responses.

The dashboard's browser clients expect two shapes: raw documents for reads
(GET /state, GET /gallery, ...) and a {"success": bool, "error": string}
envelope for mutations. Both are produced here.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"vaultboard/internal/pkg/errs"
	"vaultboard/internal/pkg/logx"
)

// MutationResult is the envelope returned by every mutating endpoint.
type MutationResult struct {
	Success bool `json:"success"`

	// Error carries the client-facing failure description. Empty on success.
	Error string `json:"error,omitempty"`

	// Extra holds endpoint-specific fields merged into the envelope
	// (e.g. the merged state returned by /update-state).
	Extra map[string]any `json:"-"`
}

// MarshalJSON flattens Extra into the top-level object so that
// {"success":true,"state":{...}} serializes the way the clients expect.
func (m MutationResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2+len(m.Extra))
	out["success"] = m.Success
	if m.Error != "" {
		out["error"] = m.Error
	}
	for k, v := range m.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

// RespondJSON sets the Content-Type and writes the JSON payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondData sends a raw document payload with HTTP 200 OK.
func RespondData(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondSuccess sends {"success":true} plus any extra top-level fields.
func RespondSuccess(w http.ResponseWriter, r *http.Request, extra map[string]any) {
	RespondJSON(w, r, http.StatusOK, MutationResult{Success: true, Extra: extra})
}

// RespondError sends {"success":false,"error":...} with the error's HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, MutationResult{Success: false, Error: customErr.Message})
}
