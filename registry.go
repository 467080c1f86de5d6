/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
)

const (
	maxNameLength = 20
	optionCount   = 4

	// answerUnset marks a player who has not submitted for the current question.
	answerUnset = -1
)

// Player is the durable identity of one participant, keyed by display name.
// ConnID is the handle of the current websocket connection; an empty ConnID
// marks a ghost, a disconnected player retained for reconnection while the
// join-lock is active.
type Player struct {
	Name          string
	ConnID        string
	Score         int
	CurrentAnswer int
	Answered      bool
}

// Registry owns all Player records for the session. It is an ordered slice:
// join order is the only tie-break for equal scores, so order must be stable.
// The Registry itself is not goroutine-safe; the Session serializes access.
type Registry struct {
	players []*Player
}

func newRegistry() *Registry {
	return &Registry{}
}

type joinStatus int

const (
	joinAccepted joinStatus = iota
	joinRejoined
	joinNameInvalid
	joinNameTaken
	joinWindowClosed
)

func (s joinStatus) reason() string {
	switch s {
	case joinNameInvalid:
		return "name must be between 1 and 20 characters"
	case joinNameTaken:
		return "that name is already taken"
	case joinWindowClosed:
		return "the join window has closed"
	}
	return ""
}

// cleanName trims whitespace and truncates to maxNameLength runes.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	return name
}

// join resolves a join attempt. Before the lock, only never-seen names are
// admitted; after the lock, only known names may rebind (reconnection).
// Rebinding while a stale connection is still open is allowed, so a reloaded
// tab takes over its player before the old socket notices it is gone.
func (r *Registry) join(name, connID string, locked bool) (*Player, joinStatus) {
	name = cleanName(name)
	if name == "" {
		return nil, joinNameInvalid
	}

	existing := r.byName(name)

	if locked {
		if existing == nil {
			return nil, joinWindowClosed
		}
		existing.ConnID = connID
		return existing, joinRejoined
	}

	if existing != nil {
		return nil, joinNameTaken
	}

	player := &Player{
		Name:          name,
		ConnID:        connID,
		CurrentAnswer: answerUnset,
	}
	r.players = append(r.players, player)

	return player, joinAccepted
}

// submitAnswer records a single answer for the connection's player. The
// phase gate lives in the Session; this only enforces identity, one
// submission per question, and option range.
func (r *Registry) submitAnswer(connID string, option int) bool {
	player := r.byConn(connID)
	if player == nil || player.Answered {
		return false
	}
	if option < 0 || option >= optionCount {
		return false
	}

	player.CurrentAnswer = option
	player.Answered = true

	return true
}

// disconnect unbinds or removes the player owning connID. While the lock is
// active the player becomes a ghost; before the lock they are dropped
// entirely. Returns the affected player, or nil if the connection was never
// bound (or was already superseded by a reconnect).
func (r *Registry) disconnect(connID string, locked bool) *Player {
	player := r.byConn(connID)
	if player == nil {
		return nil
	}

	if locked {
		player.ConnID = ""
		return player
	}

	dst := r.players[:0]
	for _, p := range r.players {
		if p == player {
			continue
		}
		dst = append(dst, p)
	}
	r.players = dst

	return player
}

// resetAnswers clears per-question state for every player.
func (r *Registry) resetAnswers() {
	for _, p := range r.players {
		p.CurrentAnswer = answerUnset
		p.Answered = false
	}
}

// reset empties the registry. Ghosts are discarded here and nowhere else.
func (r *Registry) reset() {
	r.players = nil
}

func (r *Registry) byName(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Registry) byConn(connID string) *Player {
	if connID == "" {
		return nil
	}
	for _, p := range r.players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// activeNames returns connected player names in join order.
func (r *Registry) activeNames() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if p.ConnID != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

// counts returns connected and total (ghosts included) player counts.
func (r *Registry) counts() (connected, total int) {
	for _, p := range r.players {
		if p.ConnID != "" {
			connected++
		}
	}
	return connected, len(r.players)
}

// answeredCount returns how many connected players have submitted.
func (r *Registry) answeredCount() int {
	answered := 0
	for _, p := range r.players {
		if p.ConnID != "" && p.Answered {
			answered++
		}
	}
	return answered
}
