/*
Package handler provides the HTTP handlers and routing setup for the treasury dashboard server.

This file defines the main Router, applying middleware (logging, CORS,
compression, dev-session extraction, IP rate limiting) before delegating to
the document, upload, price and websocket handlers. The dashboard's static
assets are served from the public directory, uploads included.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"vaultboard/internal/pkg/limiter"
	"vaultboard/internal/pkg/logx"
	"vaultboard/internal/pkg/resp"
	"vaultboard/internal/pkg/session"
)

const (
	UploadRate  = 0.2
	UploadBurst = 5
	VerifyRate  = 0.2
	VerifyBurst = 5
	SocketRate  = 1.0
	SocketBurst = 10
)

// Router sets up the HTTP routing table (chi.Router) for the application.
func Router(deps *AppDeps) http.Handler {
	uploadLimiter := limiter.NewIPRateLimiter(rate.Limit(UploadRate), UploadBurst)
	verifyLimiter := limiter.NewIPRateLimiter(rate.Limit(VerifyRate), VerifyBurst)
	socketLimiter := limiter.NewIPRateLimiter(rate.Limit(SocketRate), SocketBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(session.ExtractorMiddleware(deps.Config.SessionSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Vaultboard Server",
		}
		resp.RespondData(w, r, data)
	})

	// Dashboard state and chart mirror
	r.Get("/state", HandleGetState(deps))
	r.Post("/update-state", HandleUpdateState(deps))
	r.Get("/chart", HandleGetChart(deps))

	// Gallery and sold collections
	r.Get("/gallery", HandleGetGallery(deps))
	r.With(uploadLimiter.Middleware).Post("/upload-gallery", HandleUploadGallery(deps))
	r.Post("/delete-gallery", HandleDeleteGallery(deps))

	r.Get("/sold", HandleGetSold(deps))
	r.With(uploadLimiter.Middleware).Post("/upload-sold", HandleUploadSold(deps))
	r.Post("/delete-sold", HandleDeleteSold(deps))

	// Dev session and price feed
	r.With(verifyLimiter.Middleware).Post("/verify-dev", HandleVerifyDev(deps))
	r.Get("/sol-price", HandleSolPrice(deps))

	// Realtime broadcast channel
	r.Get("/ws", HandleWebSocket(wsUpgrader, socketLimiter, deps))

	// Static dashboard assets, uploaded images included.
	r.Handle("/*", http.FileServer(http.Dir(deps.Config.PublicDir)))

	return r
}
