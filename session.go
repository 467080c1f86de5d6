/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Quizbox trivia session
//
// One host console drives a sequence of questions; players answer over
// WebSockets during a bounded window. The server owns all state: roster,
// question lifecycle, answers, and scores.
//
// Features:
// - Single live session per process, host at /host, players at /play
// - Question lifecycle: idle → loaded → open → closed → revealed
// - Host can lock joining; locked sessions allow reconnection by name
// - Disconnected players become ghosts once locked, keeping their score
// - Reveal is idempotent: a duplicate reveal never double-scores
// - Answer distribution and ranked scoreboard computed server-side
// - In-browser QR code for the join URL, backed by go-qrcode

package main

import (
	"encoding/json"
	"sync"
)

type phase int

const (
	phaseIdle phase = iota
	phaseLoaded
	phaseOpen
	phaseClosed
	phaseRevealed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseLoaded:
		return "loaded"
	case phaseOpen:
		return "open"
	case phaseClosed:
		return "closed"
	case phaseRevealed:
		return "revealed"
	}
	return "unknown"
}

type inbound struct {
	client *Client
	msg    ClientMessage
}

// Session is the authoritative state of the one live game. All mutation
// happens in run(), one message at a time; the mutex covers the handlers so
// tests can drive them directly.
type Session struct {
	mu sync.Mutex

	registry        *Registry
	phase           phase
	joinLocked      bool
	currentQuestion json.RawMessage

	clients map[*Client]bool
	host    *Client

	register chan *Client
	unreg    chan *Client
	inbound  chan inbound
}

func newSession() *Session {
	return &Session{
		registry: newRegistry(),
		phase:    phaseIdle,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		inbound:  make(chan inbound, 64),
	}
}

func (s *Session) run(cfg *Config) {
	for {
		select {
		case c := <-s.register:
			s.handleRegister(cfg, c)

		case c := <-s.unreg:
			s.handleUnregister(cfg, c)

		case in := <-s.inbound:
			s.dispatch(cfg, in.client, in.msg)
		}
	}
}

func (s *Session) handleRegister(cfg *Config, c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c] = true

	if c.role == roleHost {
		// A fresh host console supersedes the previous one.
		s.host = c
		logf(cfg, "GAMES: Host console connected (%s)", c.id)
	}

	// Catch the new connection up on presence and the join-lock state.
	s.sendLocked(c, s.rosterMessageLocked())
	s.sendLocked(c, s.playerCountMessageLocked())
	if s.joinLocked {
		s.sendLocked(c, SimpleMessage{Type: "joining-locked"})
	}
}

func (s *Session) handleUnregister(cfg *Config, c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	if s.host == c {
		s.host = nil
	}

	player := s.registry.disconnect(c.id, s.joinLocked)
	if player == nil {
		return
	}

	if s.joinLocked {
		logf(cfg, "GAMES: Player %q disconnected, retained for reconnect", player.Name)
	} else {
		logf(cfg, "GAMES: Player %q left", player.Name)
	}

	s.broadcastAllLocked(s.rosterMessageLocked())
	s.broadcastAllLocked(s.playerCountMessageLocked())
}

// dispatch routes one inbound message. Host commands from player
// connections are discarded, not errored; the phase guards below make every
// out-of-order or duplicated host command a defined no-op.
func (s *Session) dispatch(cfg *Config, c *Client, msg ClientMessage) {
	switch msg.Type {
	case msgPlayerJoin:
		s.handleJoin(cfg, c, msg)
	case msgSubmitAnswer:
		s.handleSubmitAnswer(cfg, c, msg)
	case msgLockJoining, msgLoadQuestion, msgOpenAnswers, msgCloseAnswers,
		msgRevealAnswer, msgRoundSplash, msgGameOver, msgResetGame:
		if c.role != roleHost {
			return
		}
		s.handleHostCommand(cfg, c, msg)
	default:
		// ignore unknown types
	}
}

func (s *Session) handleJoin(cfg *Config, c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, status := s.registry.join(msg.Name, c.id, s.joinLocked)
	if player == nil {
		s.sendLocked(c, JoinErrorMessage{
			Type:    "join-error",
			Message: status.reason(),
		})
		return
	}

	s.sendLocked(c, JoinSuccessMessage{
		Type:  "join-success",
		Name:  player.Name,
		Score: player.Score,
	})

	if status == joinRejoined {
		logf(cfg, "GAMES: Player %q reconnected", player.Name)
	} else {
		logf(cfg, "GAMES: Player %q joined", player.Name)
	}

	// A rejoining player catches up on the question in flight.
	if s.currentQuestion != nil {
		s.sendLocked(c, QuestionLoadedMessage{
			Type:     "question-loaded",
			Question: s.currentQuestion,
		})
		if s.phase == phaseOpen {
			s.sendLocked(c, SimpleMessage{Type: "answers-opened"})
		}
	}

	s.broadcastAllLocked(s.rosterMessageLocked())
	s.broadcastAllLocked(s.playerCountMessageLocked())
}

func (s *Session) handleSubmitAnswer(cfg *Config, c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseOpen {
		return
	}
	if msg.OptionIndex == nil {
		return
	}

	if !s.registry.submitAnswer(c.id, *msg.OptionIndex) {
		return
	}

	s.broadcastAllLocked(s.answerCountMessageLocked())
}

func (s *Session) handleHostCommand(cfg *Config, c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case msgLockJoining:
		// Monotonic for the session; only reset-game clears it.
		s.joinLocked = true
		s.broadcastAllLocked(SimpleMessage{Type: "joining-locked"})
		logf(cfg, "GAMES: Joining locked")

	case msgLoadQuestion:
		s.currentQuestion = msg.Question
		s.phase = phaseLoaded
		s.registry.resetAnswers()
		s.broadcastPlayersLocked(QuestionLoadedMessage{
			Type:     "question-loaded",
			Question: s.currentQuestion,
		})
		s.broadcastAllLocked(s.answerCountMessageLocked())
		logf(cfg, "GAMES: Question loaded (%s)", humanReadableSize(int64(len(msg.Question))))

	case msgOpenAnswers:
		// Reopening after a reveal would allow double-scoring.
		if s.phase == phaseRevealed {
			return
		}
		s.phase = phaseOpen
		s.registry.resetAnswers()
		s.broadcastPlayersLocked(SimpleMessage{Type: "answers-opened"})
		s.broadcastAllLocked(s.answerCountMessageLocked())
		logf(cfg, "GAMES: Phase is now %s", s.phase)

	case msgCloseAnswers:
		s.phase = phaseClosed
		s.broadcastPlayersLocked(SimpleMessage{Type: "answers-closed"})
		logf(cfg, "GAMES: Phase is now %s", s.phase)

	case msgRevealAnswer:
		// A duplicate reveal for the same question is a no-op.
		if s.phase == phaseRevealed {
			return
		}
		if msg.CorrectIndex == nil {
			return
		}
		correct := *msg.CorrectIndex
		if correct < 0 || correct >= optionCount {
			return
		}

		s.phase = phaseRevealed

		// Close may have been skipped; players must stop either way.
		s.broadcastPlayersLocked(SimpleMessage{Type: "answers-closed"})

		result := scoreReveal(s.registry, correct, msg.Points)

		for _, pr := range result.results {
			if client := s.clientByConnLocked(pr.player.ConnID); client != nil {
				s.sendLocked(client, pr.msg)
			}
		}

		s.sendToHostLocked(AnswerRevealedMessage{
			Type:         "answer-revealed",
			Distribution: result.distribution,
			NotAnswered:  result.notAnswered,
			Scoreboard:   result.scoreboard,
		})
		s.broadcastAllLocked(ScoreboardUpdateMessage{
			Type:       "scoreboard-update",
			Scoreboard: result.scoreboard,
		})
		logf(cfg, "GAMES: Revealed answer %d for %d points", correct, msg.Points)

	case msgRoundSplash:
		s.broadcastPlayersLocked(RoundSplashMessage{
			Type:   "round-splash",
			Splash: msg.Splash,
		})

	case msgGameOver:
		rankings := rankScoreboard(s.registry)
		s.broadcastPlayersLocked(GameOverMessage{
			Type:     "game-over",
			Rankings: rankings,
		})
		s.broadcastAllLocked(ScoreboardUpdateMessage{
			Type:       "scoreboard-update",
			Scoreboard: rankings,
		})
		logf(cfg, "GAMES: Game over")

	case msgResetGame:
		s.registry.reset()
		s.joinLocked = false
		s.phase = phaseIdle
		s.currentQuestion = nil
		s.broadcastAllLocked(SimpleMessage{Type: "game-reset"})
		s.broadcastAllLocked(s.rosterMessageLocked())
		s.broadcastAllLocked(s.playerCountMessageLocked())
		logf(cfg, "GAMES: Session reset")
	}
}

func (s *Session) rosterMessageLocked() RosterUpdateMessage {
	return RosterUpdateMessage{
		Type:    "roster-update",
		Players: s.registry.activeNames(),
	}
}

func (s *Session) playerCountMessageLocked() PlayerCountMessage {
	connected, total := s.registry.counts()
	return PlayerCountMessage{
		Type:      "player-count",
		Connected: connected,
		Total:     total,
	}
}

func (s *Session) answerCountMessageLocked() AnswerCountMessage {
	connected, _ := s.registry.counts()
	return AnswerCountMessage{
		Type:     "answer-count",
		Answered: s.registry.answeredCount(),
		Total:    connected,
	}
}

func (s *Session) clientByConnLocked(connID string) *Client {
	if connID == "" {
		return nil
	}
	for c := range s.clients {
		if c.id == connID {
			return c
		}
	}
	return nil
}

// sendLocked delivers fire-and-forget: a client whose buffer is full is
// dropped rather than stalling the session. Sends to a client that has
// already been dropped are no-ops; its channel is closed, and its readPump
// may still be feeding the session until the socket dies.
func (s *Session) sendLocked(c *Client, msg any) {
	if _, ok := s.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(s.clients, c)
		close(c.send)
		if s.host == c {
			s.host = nil
		}
	}
}

func (s *Session) broadcastPlayersLocked(msg any) {
	for c := range s.clients {
		if c.role != rolePlayer {
			continue
		}
		s.sendLocked(c, msg)
	}
}

func (s *Session) broadcastAllLocked(msg any) {
	for c := range s.clients {
		s.sendLocked(c, msg)
	}
}

func (s *Session) sendToHostLocked(msg any) {
	if s.host == nil {
		return
	}
	s.sendLocked(s.host, msg)
}
