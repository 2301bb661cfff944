package handler

import (
	"vaultboard/internal/app/lobby"
	"vaultboard/internal/app/price"
	"vaultboard/internal/app/storage"
	"vaultboard/internal/app/store"
	"vaultboard/internal/configs"
)

// Publisher is the seam between HTTP mutations and the realtime broadcast
// channel. Satisfied by *lobby.Hub; tests substitute a recorder.
type Publisher interface {
	// PublishToAll broadcasts a named event to all subscribed connections,
	// best effort, fire-and-forget.
	PublishToAll(event string, payload any)
}

// AppDeps bundles the collaborators the HTTP handlers need.
type AppDeps struct {
	Config *configs.AppConfig
	Store  *store.Store
	Files  storage.Service
	Price  *price.Service
	Hub    *lobby.Hub
	Events Publisher
}
