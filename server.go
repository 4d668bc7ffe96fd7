package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256 // px

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// SetupRoutes configures the HTTP surface: API, websocket upgrade and the
// static client.
func SetupRoutes(hub *Hub, clientDir string) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"status":  "ok",
				"matches": hub.matches.Count(),
				"clients": hub.ClientCount(),
			})
		})

		r.Get("/matches", func(w http.ResponseWriter, req *http.Request) {
			respondJSON(w, http.StatusOK, hub.matches.List())
		})

		// QR code of the join URL, for joining from a phone.
		r.Get("/matches/{id}/qr", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			if hub.matches.Get(id) == nil {
				http.Error(w, "match not found", http.StatusNotFound)
				return
			}
			scheme := "http"
			if req.TLS != nil {
				scheme = "https"
			}
			joinURL := scheme + "://" + req.Host + "/m/" + id
			png, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
			if err != nil {
				http.Error(w, "qr encode failed", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Cache-Control", "no-cache")
			w.Write(png)
		})

		if hub.db != nil {
			r.Get("/history", func(w http.ResponseWriter, req *http.Request) {
				rows, err := hub.db.RecentMatches(20)
				if err != nil {
					http.Error(w, "history unavailable", http.StatusInternalServerError)
					return
				}
				respondJSON(w, http.StatusOK, rows)
			})
		}
	})

	// WebSocket endpoint
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		ip := extractIP(req)
		if !hub.TryAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			hub.TrackDisconnect(ip)
			return
		}

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	// Static client with no-cache so browsers always revalidate.
	// /m/{id} is a client-side route, so it gets index.html too.
	fs := http.FileServer(http.Dir(clientDir))
	r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		if req.URL.Path == "/" || strings.HasPrefix(req.URL.Path, "/m/") {
			http.ServeFile(w, req, filepath.Join(clientDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, req)
	}))

	return r
}
