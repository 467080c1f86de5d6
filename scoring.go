/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sort"
)

// ScoreboardEntry is one ranked row of the scoreboard.
type ScoreboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// playerResult pairs a player with their private reveal outcome.
type playerResult struct {
	player *Player
	msg    AnswerResultMessage
}

// revealResult is everything one reveal produces: the answer distribution
// over connected players, the per-player private results, and the ranked
// scoreboard over every known player, ghosts included.
type revealResult struct {
	distribution [4]int
	notAnswered  int
	results      []playerResult
	scoreboard   []ScoreboardEntry
}

// scoreReveal tallies the current question and applies score deltas. This is
// the only place a score changes outside of a full reset. points is a
// host-trusted passthrough: zero and negative values are applied as given.
func scoreReveal(r *Registry, correctIndex, points int) revealResult {
	var out revealResult

	for _, p := range r.players {
		if p.ConnID == "" {
			continue
		}
		if p.Answered && p.CurrentAnswer >= 0 && p.CurrentAnswer < optionCount {
			out.distribution[p.CurrentAnswer]++
		} else {
			out.notAnswered++
		}
	}

	for _, p := range r.players {
		correct := p.Answered && p.CurrentAnswer == correctIndex

		earned := 0
		if correct {
			earned = points
			p.Score += points
		}

		out.results = append(out.results, playerResult{
			player: p,
			msg: AnswerResultMessage{
				Type:         "answer-result",
				WasCorrect:   correct,
				YourAnswer:   p.CurrentAnswer,
				CorrectIndex: correctIndex,
				Points:       earned,
				TotalScore:   p.Score,
				Answered:     p.Answered,
			},
		})
	}

	out.scoreboard = rankScoreboard(r)

	return out
}

// rankScoreboard sorts all players by descending score. The sort is stable,
// so ties keep join order; there is no secondary tie-break field.
func rankScoreboard(r *Registry) []ScoreboardEntry {
	board := make([]ScoreboardEntry, 0, len(r.players))
	for _, p := range r.players {
		board = append(board, ScoreboardEntry{
			Name:  p.Name,
			Score: p.Score,
		})
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})

	return board
}
