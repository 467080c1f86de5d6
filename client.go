/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

type clientRole int

const (
	rolePlayer clientRole = iota
	roleHost
)

// Client is one live websocket connection. The uuid is the swappable
// connection handle; durable identity lives in the Registry, keyed by name.
type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
	role clientRole
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (c *Client) readPump(s *Session) {
	defer func() {
		s.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		s.inbound <- inbound{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// serveWS upgrades a connection and attaches it to the session with the
// given role.
func serveWS(cfg *Config, s *Session, role clientRole) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		logf(cfg, "SERVE: WebSocket connection from %s", realIP(r))

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
			id:   uuid.NewString(),
			role: role,
		}

		s.register <- client

		go client.writePump()
		client.readPump(s)
	}
}
