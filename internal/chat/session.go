package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sentiboard/internal/analysis"
)

// Analyzer scores the user's own message.
type Analyzer interface {
	AnalyzeText(ctx context.Context, text, model string) (*analysis.Result, error)
}

// Responder produces the bot's reply.
type Responder interface {
	Chat(ctx context.Context, message, tone string) (*analysis.ChatReply, error)
}

// Options tune a Session. Zero values are usable.
type Options struct {
	Model string
	// ReducedMotion reveals replies without the typing delay.
	ReducedMotion bool
	// SelfScoreGrace bounds how long the user message waits for its own
	// score before being appended without one. Zero never waits.
	SelfScoreGrace time.Duration
	Scheduler      Scheduler
	Now            func() time.Time
	Logger         zerolog.Logger
}

// Session runs chat round trips. Every Send starts an independent round;
// replies are appended in the order their reveals fire.
type Session struct {
	analyzer  Analyzer
	responder Responder
	opts      Options

	mu          sync.Mutex
	messages    []Message
	rounds      []*Round
	typing      int
	suggestions []string
	onChange    func()

	wg sync.WaitGroup
}

// NewSession creates a chat session
func NewSession(analyzer Analyzer, responder Responder, opts Options) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		analyzer:    analyzer,
		responder:   responder,
		opts:        opts,
		suggestions: []string{"Do breathing", "Make a mini plan"},
	}
}

// OnChange registers a hook called (without the session lock held) after
// every observable change: messages, typing indicators, round states.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Send starts a round for text. Blank input is ignored and reports false.
// The round runs in the background; Send never blocks on the network.
func (s *Session) Send(ctx context.Context, text, tone string) (uuid.UUID, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return uuid.Nil, false
	}
	if tone == "" {
		tone = ToneListening
	}

	round := &Round{ID: uuid.New(), Text: text, State: AwaitingSelfAnalysis}
	s.mu.Lock()
	s.rounds = append(s.rounds, round)
	s.mu.Unlock()
	s.notify()

	s.wg.Add(1)
	go s.run(ctx, round, text, tone)
	return round.ID, true
}

func (s *Session) run(ctx context.Context, round *Round, text, tone string) {
	scores := s.selfScore(ctx, text)
	s.append(Message{Speaker: User, Text: text, Scores: scores})

	s.mu.Lock()
	round.State = AwaitingBotReply
	s.typing++
	s.mu.Unlock()
	s.notify()

	reply, err := s.responder.Chat(ctx, text, tone)
	if err != nil {
		s.opts.Logger.Debug().Err(err).Str("round", round.ID.String()).Msg("chat request failed")
		s.finish(round, Message{Speaker: Bot, Text: errorText(err), Err: true}, nil)
		return
	}

	respTone := tone
	if reply.Tone != "" {
		respTone = reply.Tone
	}
	delay := ComputeDelay(utf8.RuneCountInString(reply.Reply), respTone)
	if s.opts.ReducedMotion {
		delay = 0
	}

	s.mu.Lock()
	round.State = TypingSimulation
	s.mu.Unlock()
	s.notify()

	text = reply.Reply
	if reply.Sentiment.Emoji != "" {
		text += " " + reply.Sentiment.Emoji
	}
	msg := Message{Speaker: Bot, Text: text, Scores: reply.Sentiment.Scores, Tone: respTone}
	suggestions := reply.Suggestions
	s.opts.Scheduler.AfterFunc(delay, func() {
		s.finish(round, msg, suggestions)
	})
}

// selfScore waits up to the grace period for the user's own score. Failures
// and late results yield nil.
func (s *Session) selfScore(ctx context.Context, text string) *analysis.Scores {
	if s.analyzer == nil {
		return nil
	}
	result := make(chan *analysis.Scores, 1)
	go func() {
		res, err := s.analyzer.AnalyzeText(ctx, text, s.opts.Model)
		if err != nil {
			s.opts.Logger.Debug().Err(err).Msg("self-analysis failed")
			result <- nil
			return
		}
		scores := res.Scores
		result <- &scores
	}()

	if s.opts.SelfScoreGrace <= 0 {
		return nil
	}
	timer := time.NewTimer(s.opts.SelfScoreGrace)
	defer timer.Stop()
	select {
	case scores := <-result:
		return scores
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// finish drops the round's typing indicator and appends its closing message.
func (s *Session) finish(round *Round, msg Message, suggestions []string) {
	s.mu.Lock()
	s.typing--
	round.State = Idle
	if suggestions != nil {
		s.suggestions = suggestions
	}
	s.mu.Unlock()

	s.append(msg)
	s.wg.Done()
}

func (s *Session) append(msg Message) {
	msg.ID = uuid.New()
	msg.Timestamp = s.opts.Now()
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Messages returns a copy of the log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Typing is the number of typing indicators currently shown.
func (s *Session) Typing() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Rounds returns a snapshot of every round started so far.
func (s *Session) Rounds() []Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Round, len(s.rounds))
	for i, r := range s.rounds {
		out[i] = *r
	}
	return out
}

// Chips returns the quick replies for the latest bot suggestions.
func (s *Session) Chips() []Chip {
	s.mu.Lock()
	suggestions := s.suggestions
	s.mu.Unlock()
	return QuickReplies(suggestions)
}

// Wait blocks until every started round has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

func errorText(err error) string {
	if code := analysis.StatusCode(err); code != 0 {
		return fmt.Sprintf("Error %d", code)
	}
	return "Network error"
}
