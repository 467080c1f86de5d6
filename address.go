/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net"
	"net/http"
	"strings"
)

// joinBaseURL resolves the base URL players should be pointed at. An
// explicitly configured public URL (a relay or tunnel endpoint) wins;
// otherwise the URL is derived from the request, respecting
// X-Forwarded-Proto behind a proxy.
func joinBaseURL(cfg *Config, r *http.Request) string {
	if cfg.publicURL != "" {
		return strings.TrimSuffix(cfg.publicURL, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host
}

// lanAddress returns the first non-loopback IPv4 address of this machine,
// for logging a scannable join URL at startup. Failure here is harmless;
// the session works fine over whatever address the clients already have.
func lanAddress() (string, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip4 := ip.To4(); ip4 != nil {
				return ip4.String(), true
			}
		}
	}

	return "", false
}
