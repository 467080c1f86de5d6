/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
)

// Messages coming from clients. One envelope covers both the host console
// and player connections; which fields matter depends on Type.
type ClientMessage struct {
	Type         string          `json:"type"`                   // see the consts below
	Name         string          `json:"name,omitempty"`         // player-join
	OptionIndex  *int            `json:"optionIndex,omitempty"`  // submit-answer
	CorrectIndex *int            `json:"correctIndex,omitempty"` // reveal-answer
	Points       int             `json:"points,omitempty"`       // reveal-answer
	Question     json.RawMessage `json:"question,omitempty"`     // load-question
	Splash       json.RawMessage `json:"splash,omitempty"`       // round-splash
}

// Inbound message types, host side.
const (
	msgLockJoining  = "lock-joining"
	msgLoadQuestion = "load-question"
	msgOpenAnswers  = "open-answers"
	msgCloseAnswers = "close-answers"
	msgRevealAnswer = "reveal-answer"
	msgRoundSplash  = "round-splash"
	msgGameOver     = "game-over"
	msgResetGame    = "reset-game"
)

// Inbound message types, player side.
const (
	msgPlayerJoin   = "player-join"
	msgSubmitAnswer = "submit-answer"
)

// JoinSuccessMessage confirms a join or reconnect to one player.
type JoinSuccessMessage struct {
	Type  string `json:"type"` // "join-success"
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// JoinErrorMessage is sent to a single client whose join was rejected.
type JoinErrorMessage struct {
	Type    string `json:"type"` // "join-error"
	Message string `json:"message"`
}

// AnswerResultMessage is each player's private outcome for one reveal.
type AnswerResultMessage struct {
	Type         string `json:"type"` // "answer-result"
	WasCorrect   bool   `json:"wasCorrect"`
	YourAnswer   int    `json:"yourAnswer"`
	CorrectIndex int    `json:"correctIndex"`
	Points       int    `json:"points"`
	TotalScore   int    `json:"totalScore"`
	Answered     bool   `json:"answered"`
}

// QuestionLoadedMessage carries the host-supplied question payload, which the
// server holds opaquely and replays to late joiners.
type QuestionLoadedMessage struct {
	Type     string          `json:"type"` // "question-loaded"
	Question json.RawMessage `json:"question"`
}

// SimpleMessage is for bare signals ("answers-opened", "answers-closed",
// "joining-locked", "game-reset").
type SimpleMessage struct {
	Type string `json:"type"`
}

// RoundSplashMessage relays an opaque interstitial payload to players.
type RoundSplashMessage struct {
	Type   string          `json:"type"` // "round-splash"
	Splash json.RawMessage `json:"splash"`
}

// GameOverMessage carries the final rankings.
type GameOverMessage struct {
	Type     string            `json:"type"` // "game-over"
	Rankings []ScoreboardEntry `json:"rankings"`
}

// RosterUpdateMessage lists currently connected player names, in join order.
type RosterUpdateMessage struct {
	Type    string   `json:"type"` // "roster-update"
	Players []string `json:"players"`
}

// PlayerCountMessage reports connected vs. known players.
type PlayerCountMessage struct {
	Type      string `json:"type"` // "player-count"
	Connected int    `json:"connected"`
	Total     int    `json:"total"`
}

// AnswerCountMessage reports submissions for the current question.
type AnswerCountMessage struct {
	Type     string `json:"type"` // "answer-count"
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
}

// ScoreboardUpdateMessage carries the ranked scoreboard to everyone.
type ScoreboardUpdateMessage struct {
	Type       string            `json:"type"` // "scoreboard-update"
	Scoreboard []ScoreboardEntry `json:"scoreboard"`
}

// AnswerRevealedMessage is the host-only reveal summary.
type AnswerRevealedMessage struct {
	Type         string            `json:"type"` // "answer-revealed"
	Distribution [4]int            `json:"distribution"`
	NotAnswered  int               `json:"notAnswered"`
	Scoreboard   []ScoreboardEntry `json:"scoreboard"`
}
