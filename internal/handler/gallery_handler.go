/*
Package handler provides the HTTP handlers and routing setup for the treasury dashboard server.

This file covers the gallery and sold collections: public reads, multipart
image uploads, and the dev-session-gated deletions. Gallery and sold changes
are announced as payload-less invalidation events; clients re-fetch over HTTP.
*/
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vaultboard/internal/app/lobby"
	"vaultboard/internal/app/model"
	"vaultboard/internal/app/store"
	"vaultboard/internal/pkg/errs"
	"vaultboard/internal/pkg/logx"
	"vaultboard/internal/pkg/req"
	"vaultboard/internal/pkg/resp"
	"vaultboard/internal/pkg/session"
)

// DeleteItemInput is the body of the delete endpoints. Gallery deletion
// accepts either identifier; sold deletion requires the name.
type DeleteItemInput struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// parseMetas decodes the per-file meta strings of an upload request.
// A malformed entry degrades to the placeholder meta instead of aborting
// the whole batch.
func parseMetas(values []string) []model.ItemMeta {
	metas := make([]model.ItemMeta, 0, len(values))

	for _, raw := range values {
		meta := model.DefaultItemMeta()
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			logx.Warn("Malformed upload meta, using placeholder", "raw", raw)
			meta = model.DefaultItemMeta()
		}
		metas = append(metas, meta)
	}

	return metas
}

// storeUploads saves every uploaded image and builds the collection entries.
// withMarketplaceLink controls whether the magicEdenUrl meta field is kept
// (gallery yes, sold no).
func storeUploads(w http.ResponseWriter, r *http.Request, deps *AppDeps, withMarketplaceLink bool) ([]model.GalleryItem, *errs.CustomError) {
	if customErr := req.SetupMultipart(w, r); customErr != nil {
		return nil, customErr
	}

	metas := parseMetas(r.MultipartForm.Value["meta"])

	files := r.MultipartForm.File["images"]
	items := make([]model.GalleryItem, 0, len(files))

	for i, header := range files {
		meta := model.DefaultItemMeta()
		if i < len(metas) {
			meta = metas[i]
		}

		f, err := header.Open()
		if err != nil {
			logx.Error(err, "Failed to open uploaded file", "file_name", header.Filename)
			return nil, errs.NewError(errs.ErrFormParseFailed)
		}

		key := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))

		url, err := deps.Files.Save(r.Context(), key, header.Header.Get("Content-Type"), f)
		f.Close()
		if err != nil {
			logx.Error(err, "Failed to store uploaded file", "key", key)
			return nil, errs.NewError(errs.ErrStorageFailed)
		}

		item := model.GalleryItem{
			Name:  meta.Name,
			Price: meta.Price,
			URL:   url,
			Date:  time.Now().UTC().Format(time.RFC3339),
		}
		if withMarketplaceLink {
			item.MagicEdenURL = meta.MagicEdenURL
		}

		items = append(items, item)
	}

	return items, nil
}

// HandleGetGallery serves the gallery collection.
func HandleGetGallery(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondData(w, r, deps.Store.Gallery())
	}
}

// HandleGetSold serves the sold collection.
func HandleGetSold(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondData(w, r, deps.Store.Sold())
	}
}

// HandleUploadGallery appends uploaded items to the gallery and broadcasts
// the invalidation signal.
func HandleUploadGallery(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, customErr := storeUploads(w, r, deps, true)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Store.AppendGallery(items...); err != nil {
			logx.Error(err, "Gallery document write failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		deps.Events.PublishToAll(lobby.EventGalleryUpdated, nil)

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleUploadSold appends uploaded items to the sold collection and
// broadcasts the invalidation signal.
func HandleUploadSold(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, customErr := storeUploads(w, r, deps, false)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Store.AppendSold(items...); err != nil {
			logx.Error(err, "Sold document write failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		deps.Events.PublishToAll(lobby.EventSoldUpdated, nil)

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleDeleteGallery removes one gallery item, identified by name or url,
// together with its stored image. Requires an unlocked dev session.
func HandleDeleteGallery(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !session.IsPrivileged(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input DeleteItemInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Name == "" && input.URL == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingIdentifier))
			return
		}

		target, err := deps.Store.DeleteGallery(input.Name, input.URL)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrGalleryItemNotFound))
				return
			}
			logx.Error(err, "Gallery document write failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		// The image cleanup is best effort; the collection entry is already gone.
		if target.URL != "" {
			if err := deps.Files.Delete(r.Context(), target.URL); err != nil {
				logx.Error(err, "Failed to delete stored image", "url", target.URL)
			}
		}

		logx.Info("Deleted gallery NFT", "name", target.Name)

		deps.Events.PublishToAll(lobby.EventGalleryUpdated, nil)

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleDeleteSold removes every sold entry matching the given name
// (case-insensitive). Requires an unlocked dev session.
func HandleDeleteSold(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !session.IsPrivileged(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input DeleteItemInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Name == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingName))
			return
		}

		if err := deps.Store.DeleteSold(input.Name); err != nil {
			logx.Error(err, "Sold document write failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		deps.Events.PublishToAll(lobby.EventSoldUpdated, nil)

		resp.RespondSuccess(w, r, nil)
	}
}
