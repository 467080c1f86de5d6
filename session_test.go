package main

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type SessionSuite struct {
	suite.Suite
	cfg     *Config
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.cfg = &Config{}
	s.session = newSession()
}

func (s *SessionSuite) newClient(role clientRole) *Client {
	c := &Client{
		send: make(chan any, 64),
		id:   uuid.NewString(),
		role: role,
	}
	s.session.handleRegister(s.cfg, c)
	return c
}

func (s *SessionSuite) joinPlayer(name string) *Client {
	c := s.newClient(rolePlayer)
	s.session.dispatch(s.cfg, c, ClientMessage{Type: msgPlayerJoin, Name: name})
	return c
}

// drain empties a client's send buffer and returns everything received.
func (s *SessionSuite) drain(c *Client) []any {
	var msgs []any
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return msgs
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func msgsOfType[T any](msgs []any) []T {
	var out []T
	for _, m := range msgs {
		if typed, ok := m.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func intp(i int) *int {
	return &i
}

func (s *SessionSuite) hostCmd(host *Client, msg ClientMessage) {
	s.session.dispatch(s.cfg, host, msg)
}

func (s *SessionSuite) TestEndToEndRound() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")

	joins := msgsOfType[JoinSuccessMessage](s.drain(ann))
	s.Require().Len(joins, 1)
	s.Equal("Ann", joins[0].Name)
	s.Zero(joins[0].Score)

	question := json.RawMessage(`{"text":"Largest planet?","options":["Mars","Venus","Jupiter","Saturn"]}`)
	s.hostCmd(host, ClientMessage{Type: msgLoadQuestion, Question: question})
	s.hostCmd(host, ClientMessage{Type: msgOpenAnswers})

	loaded := msgsOfType[QuestionLoadedMessage](s.drain(ann))
	s.Require().Len(loaded, 1)
	s.JSONEq(string(question), string(loaded[0].Question))

	s.session.dispatch(s.cfg, ann, ClientMessage{Type: msgSubmitAnswer, OptionIndex: intp(2)})

	counts := msgsOfType[AnswerCountMessage](s.drain(host))
	s.Require().NotEmpty(counts)
	s.Equal(1, counts[len(counts)-1].Answered)
	s.Equal(1, counts[len(counts)-1].Total)

	s.hostCmd(host, ClientMessage{Type: msgCloseAnswers})
	s.hostCmd(host, ClientMessage{Type: msgRevealAnswer, CorrectIndex: intp(2), Points: 1000})

	results := msgsOfType[AnswerResultMessage](s.drain(ann))
	s.Require().Len(results, 1)
	s.Equal(AnswerResultMessage{
		Type:         "answer-result",
		WasCorrect:   true,
		YourAnswer:   2,
		CorrectIndex: 2,
		Points:       1000,
		TotalScore:   1000,
		Answered:     true,
	}, results[0])

	revealed := msgsOfType[AnswerRevealedMessage](s.drain(host))
	s.Require().Len(revealed, 1)
	s.Equal([4]int{0, 0, 1, 0}, revealed[0].Distribution)
	s.Zero(revealed[0].NotAnswered)
	s.Equal([]ScoreboardEntry{{Name: "Ann", Score: 1000}}, revealed[0].Scoreboard)
}

func (s *SessionSuite) TestRevealWithoutCloseStillCloses() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")

	s.hostCmd(host, ClientMessage{Type: msgLoadQuestion, Question: json.RawMessage(`{}`)})
	s.hostCmd(host, ClientMessage{Type: msgOpenAnswers})
	s.session.dispatch(s.cfg, ann, ClientMessage{Type: msgSubmitAnswer, OptionIndex: intp(0)})
	s.drain(ann)

	s.hostCmd(host, ClientMessage{Type: msgRevealAnswer, CorrectIndex: intp(0), Points: 10})

	s.Equal(phaseRevealed, s.session.phase)

	var closed bool
	for _, m := range msgsOfType[SimpleMessage](s.drain(ann)) {
		if m.Type == "answers-closed" {
			closed = true
		}
	}
	s.True(closed)
}

func (s *SessionSuite) TestDoubleRevealScoresOnce() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")

	s.hostCmd(host, ClientMessage{Type: msgLoadQuestion, Question: json.RawMessage(`{}`)})
	s.hostCmd(host, ClientMessage{Type: msgOpenAnswers})
	s.session.dispatch(s.cfg, ann, ClientMessage{Type: msgSubmitAnswer, OptionIndex: intp(1)})
	s.hostCmd(host, ClientMessage{Type: msgRevealAnswer, CorrectIndex: intp(1), Points: 500})
	s.drain(ann)
	s.drain(host)

	s.hostCmd(host, ClientMessage{Type: msgRevealAnswer, CorrectIndex: intp(1), Points: 500})

	s.Equal(500, s.session.registry.byName("Ann").Score)
	s.Empty(msgsOfType[AnswerResultMessage](s.drain(ann)))
	s.Empty(msgsOfType[AnswerRevealedMessage](s.drain(host)))
}

func (s *SessionSuite) TestOpenAfterRevealIsNoop() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")

	s.hostCmd(host, ClientMessage{Type: msgLoadQuestion, Question: json.RawMessage(`{}`)})
	s.hostCmd(host, ClientMessage{Type: msgOpenAnswers})
	s.hostCmd(host, ClientMessage{Type: msgRevealAnswer, CorrectIndex: intp(0), Points: 1})
	s.drain(ann)

	s.hostCmd(host, ClientMessage{Type: msgOpenAnswers})

	s.Equal(phaseRevealed, s.session.phase)
	for _, m := range msgsOfType[SimpleMessage](s.drain(ann)) {
		s.NotEqual("answers-opened", m.Type)
	}
}

func (s *SessionSuite) TestSubmitOutsidePhaseOpenIgnored() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")

	// idle
	s.session.dispatch(s.cfg, ann, ClientMessage{Type: msgSubmitAnswer, OptionIndex: intp(1)})
	player := s.session.registry.byName("Ann")
	s.False(player.Answered)

	// closed
	s.hostCmd(host, ClientMessage{Type: msgLoadQuestion, Question: json.RawMessage(`{}`)})
	s.hostCmd(host, ClientMessage{Type: msgOpenAnswers})
	s.hostCmd(host, ClientMessage{Type: msgCloseAnswers})
	s.session.dispatch(s.cfg, ann, ClientMessage{Type: msgSubmitAnswer, OptionIndex: intp(1)})

	s.False(player.Answered)
	s.Equal(answerUnset, player.CurrentAnswer)
}

func (s *SessionSuite) TestSubmitWithoutOptionIndexIgnored() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")

	s.hostCmd(host, ClientMessage{Type: msgLoadQuestion, Question: json.RawMessage(`{}`)})
	s.hostCmd(host, ClientMessage{Type: msgOpenAnswers})
	s.session.dispatch(s.cfg, ann, ClientMessage{Type: msgSubmitAnswer})

	s.False(s.session.registry.byName("Ann").Answered)
}

func (s *SessionSuite) TestDuplicateNameRejectedBeforeLock() {
	s.joinPlayer("Ann")
	imposter := s.joinPlayer("Ann")

	errors := msgsOfType[JoinErrorMessage](s.drain(imposter))
	s.Require().Len(errors, 1)
	s.Len(s.session.registry.players, 1)
}

func (s *SessionSuite) TestLockRejectsNewNamesButAllowsReconnect() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")
	s.hostCmd(host, ClientMessage{Type: msgLockJoining})

	s.True(s.session.joinLocked)

	// A never-seen name is turned away.
	stranger := s.joinPlayer("Bob")
	errors := msgsOfType[JoinErrorMessage](s.drain(stranger))
	s.Require().Len(errors, 1)
	s.Equal("the join window has closed", errors[0].Message)

	// A known name reconnects with its score intact.
	s.session.registry.byName("Ann").Score = 800
	s.session.handleUnregister(s.cfg, ann)
	s.NotNil(s.session.registry.byName("Ann"))

	rejoined := s.joinPlayer("Ann")
	joins := msgsOfType[JoinSuccessMessage](s.drain(rejoined))
	s.Require().Len(joins, 1)
	s.Equal(800, joins[0].Score)
}

func (s *SessionSuite) TestReconnectReceivesActiveQuestion() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")
	s.hostCmd(host, ClientMessage{Type: msgLockJoining})

	question := json.RawMessage(`{"text":"?"}`)
	s.hostCmd(host, ClientMessage{Type: msgLoadQuestion, Question: question})
	s.hostCmd(host, ClientMessage{Type: msgOpenAnswers})

	s.session.handleUnregister(s.cfg, ann)

	rejoined := s.joinPlayer("Ann")
	msgs := s.drain(rejoined)

	loaded := msgsOfType[QuestionLoadedMessage](msgs)
	s.Require().Len(loaded, 1)
	s.JSONEq(string(question), string(loaded[0].Question))

	var opened bool
	for _, m := range msgsOfType[SimpleMessage](msgs) {
		if m.Type == "answers-opened" {
			opened = true
		}
	}
	s.True(opened)
}

func (s *SessionSuite) TestDisconnectBeforeLockRemovesFromRoster() {
	ann := s.joinPlayer("Ann")

	s.session.handleUnregister(s.cfg, ann)

	s.Nil(s.session.registry.byName("Ann"))
}

func (s *SessionSuite) TestHostCommandsFromPlayerIgnored() {
	ann := s.joinPlayer("Ann")

	s.session.dispatch(s.cfg, ann, ClientMessage{Type: msgOpenAnswers})
	s.session.dispatch(s.cfg, ann, ClientMessage{Type: msgRevealAnswer, CorrectIndex: intp(0), Points: 100})

	s.Equal(phaseIdle, s.session.phase)
	s.Zero(s.session.registry.byName("Ann").Score)
}

func (s *SessionSuite) TestGameOverRanksWithoutScoring() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")
	bob := s.joinPlayer("Bob")
	s.session.registry.byName("Ann").Score = 10
	s.session.registry.byName("Bob").Score = 90
	s.drain(ann)
	s.drain(bob)

	s.hostCmd(host, ClientMessage{Type: msgGameOver})

	overs := msgsOfType[GameOverMessage](s.drain(ann))
	s.Require().Len(overs, 1)
	s.Equal([]ScoreboardEntry{
		{Name: "Bob", Score: 90},
		{Name: "Ann", Score: 10},
	}, overs[0].Rankings)

	// Ranking must not have touched any score.
	s.Equal(10, s.session.registry.byName("Ann").Score)
	s.Equal(90, s.session.registry.byName("Bob").Score)
}

func (s *SessionSuite) TestRoundSplashRelayedToPlayers() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")
	s.drain(ann)

	splash := json.RawMessage(`{"title":"Round 2"}`)
	s.hostCmd(host, ClientMessage{Type: msgRoundSplash, Splash: splash})

	relayed := msgsOfType[RoundSplashMessage](s.drain(ann))
	s.Require().Len(relayed, 1)
	s.JSONEq(string(splash), string(relayed[0].Splash))

	s.Empty(msgsOfType[RoundSplashMessage](s.drain(host)))
}

func (s *SessionSuite) TestResetClearsEverything() {
	host := s.newClient(roleHost)
	ann := s.joinPlayer("Ann")
	s.hostCmd(host, ClientMessage{Type: msgLockJoining})
	s.hostCmd(host, ClientMessage{Type: msgLoadQuestion, Question: json.RawMessage(`{}`)})
	s.drain(ann)

	s.hostCmd(host, ClientMessage{Type: msgResetGame})

	s.Empty(s.session.registry.players)
	s.False(s.session.joinLocked)
	s.Equal(phaseIdle, s.session.phase)
	s.Nil(s.session.currentQuestion)

	var reset bool
	for _, m := range msgsOfType[SimpleMessage](s.drain(ann)) {
		if m.Type == "game-reset" {
			reset = true
		}
	}
	s.True(reset)
}

func (s *SessionSuite) TestNewHostSupersedesOld() {
	first := s.newClient(roleHost)
	second := s.newClient(roleHost)

	s.Same(second, s.session.host)
	s.NotSame(first, s.session.host)
}

func (s *SessionSuite) TestSlowConsumerDroppedWithoutPanic() {
	slow := &Client{
		send: make(chan any, 2),
		id:   uuid.NewString(),
		role: rolePlayer,
	}
	// Registration fills both buffer slots (roster-update + player-count).
	s.session.handleRegister(s.cfg, slow)

	// The next broadcast overflows the buffer and drops the client.
	s.joinPlayer("Ann")

	_, stillRegistered := s.session.clients[slow]
	s.False(stillRegistered)

	// Draining returns the buffered messages, then reports the channel closed.
	s.Len(s.drain(slow), 2)
	_, open := <-slow.send
	s.False(open)

	// The dropped client's readPump is still alive until its socket dies:
	// its own messages and further broadcasts must be no-ops, not panics.
	s.NotPanics(func() {
		s.session.dispatch(s.cfg, slow, ClientMessage{Type: msgPlayerJoin, Name: "Bob"})
		s.joinPlayer("Cat")
	})

	// The session keeps serving everyone else.
	s.NotNil(s.session.registry.byName("Bob"))
	s.NotNil(s.session.registry.byName("Cat"))
}

func (s *SessionSuite) TestRegisterCatchesUpOnLockState() {
	host := s.newClient(roleHost)
	s.hostCmd(host, ClientMessage{Type: msgLockJoining})

	late := s.newClient(rolePlayer)

	var locked bool
	for _, m := range msgsOfType[SimpleMessage](s.drain(late)) {
		if m.Type == "joining-locked" {
			locked = true
		}
	}
	s.True(locked)
}
