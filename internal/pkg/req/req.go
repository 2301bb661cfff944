/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates JSON body binding and multipart form setup, enforcing size
limits so embedded image data cannot exhaust server memory.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"vaultboard/internal/pkg/errs"
)

const (
	// MaxFormMemory is the memory ceiling for non-file multipart fields;
	// larger file parts spill to temporary files.
	MaxFormMemory int64 = 32 << 20 // 32 MB

	// MaxUploadBytes caps the whole multipart request body. The dashboard
	// uploads full-resolution NFT images, so the limit is generous.
	MaxUploadBytes int64 = 50 << 20 // 50 MB
)

// BindJSON binds the JSON request body to dst.
// Unknown fields are tolerated; the dashboard state document is open-ended.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	return nil
}

// SetupMultipart applies the upload size cap and parses the multipart form.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	err := r.ParseMultipartForm(MaxFormMemory)

	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
