/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// qrHandler generates a PNG QR code for the player join URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		url := joinBaseURL(cfg, r) + cfg.prefix + "/play"

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		securityHeaders(cfg, w)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// registerQuizGame sets up the single live session and its routes:
//   - /host       → host console (HTML)
//   - /play       → player page (HTML)
//   - /host/ws    → host WebSocket
//   - /ws         → player WebSocket
//   - /qr         → PNG QR code of the join URL
func registerQuizGame(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	session := newSession()
	go session.run(cfg)

	mux.GET(cfg.prefix+"/host", serveAsset(cfg, "web/host.html", "text/html; charset=utf-8", errs))
	mux.GET(cfg.prefix+"/play", serveAsset(cfg, "web/play.html", "text/html; charset=utf-8", errs))

	mux.GET(cfg.prefix+"/host/ws", serveWS(cfg, session, roleHost))
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, session, rolePlayer))

	mux.GET(cfg.prefix+"/qr", qrHandler(cfg))

	mux.GET(cfg.prefix+"/assets/*asset", serveAssets(cfg, errs))
}
