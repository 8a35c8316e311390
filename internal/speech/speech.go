// Package speech drives a text-to-speech engine through an explicit session state machine.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/krishivani/internal/observability"
)

// Default playback parameters passed to the engine with every utterance.
const (
	DefaultRate  = 0.9
	DefaultPitch = 1.0
)

var (
	// ErrNotReady is returned by Speak before the engine initialized successfully.
	ErrNotReady = errors.New("speech engine not ready")
	// ErrEmptyText is returned by Speak for blank text.
	ErrEmptyText = errors.New("nothing to speak")
)

// Utterance is one piece of text handed to the engine.
type Utterance struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Locale string  `json:"locale"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
}

// Event is a playback notification emitted by the engine.
type Event int

const (
	EventStarted Event = iota
	EventFinished
	EventError
)

func (e Event) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventFinished:
		return "finished"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification reports an Event for one utterance.
type Notification struct {
	UtteranceID string
	Event       Event
	Err         error
}

// Engine is a speech-playback backend. Speak must flush anything queued or playing
// before starting u. Notifications are delivered to the listener registered with
// SetListener and must not be sent while Speak or Stop hold engine locks that the
// listener could need.
type Engine interface {
	Init(ctx context.Context) error
	ProbeLanguage(locale string) bool
	Speak(ctx context.Context, u Utterance) error
	Stop() error
	SetListener(fn func(Notification))
}

// State is the session state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateSpeaking
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateSpeaking:
		return "speaking"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of a Session.
type Status struct {
	State       string `json:"state"`
	UtteranceID string `json:"utteranceId,omitempty"`
	LastError   string `json:"lastError,omitempty"`
}

// Session serializes access to one Engine. Transitions:
//
//	Uninitialized -> Ready (Init ok) | Error (Init failed, terminal)
//	Ready|Speaking|Error -> Speaking (Speak; the previous utterance is flushed)
//	Speaking -> Ready (finished, Stop) | Error (engine error)
//
// Notifications for utterances that were already replaced are ignored.
type Session struct {
	speakMu     sync.Mutex
	mu          sync.Mutex
	engine      Engine
	logger      *zap.Logger
	state       State
	initialized bool
	current     string
	lastErr     error
	newID       func() string
}

// NewSession wraps engine. The session starts Uninitialized; call Init before Speak.
func NewSession(engine Engine, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		engine: engine,
		logger: logger,
		state:  StateUninitialized,
		newID:  func() string { return uuid.New().String() },
	}
	engine.SetListener(s.Notify)
	return s
}

// Init initializes the engine once. A failure leaves the session in Error for good.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	err := s.engine.Init(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.lastErr = err
		s.logger.Error("speech engine init failed", zap.Error(err))
		return fmt.Errorf("init speech engine: %w", err)
	}
	s.initialized = true
	s.state = StateReady
	s.logger.Info("speech engine ready")
	return nil
}

// ProbeLanguage reports whether the engine can speak locale.
func (s *Session) ProbeLanguage(locale string) bool {
	return s.engine.ProbeLanguage(locale)
}

// Speak replaces whatever is playing with text in locale and returns the new utterance ID.
func (s *Session) Speak(ctx context.Context, text, locale string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}
	s.speakMu.Lock()
	defer s.speakMu.Unlock()

	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		observability.SpeechUtterancesTotal.WithLabelValues("not_ready").Inc()
		return "", ErrNotReady
	}
	id := s.newID()
	s.current = id
	s.state = StateSpeaking
	s.lastErr = nil
	s.mu.Unlock()

	u := Utterance{ID: id, Text: text, Locale: locale, Rate: DefaultRate, Pitch: DefaultPitch}
	if err := s.engine.Speak(ctx, u); err != nil {
		s.fail(id, err)
		observability.SpeechUtterancesTotal.WithLabelValues("error").Inc()
		return id, fmt.Errorf("speak %s: %w", id, err)
	}
	observability.SpeechUtterancesTotal.WithLabelValues("accepted").Inc()
	observability.LoggerFromContext(ctx).Debug("utterance queued",
		zap.String("utterance_id", id),
		zap.String("locale", locale),
		zap.Int("chars", len(text)),
	)
	return id, nil
}

// Stop halts playback. A speaking session returns to Ready.
func (s *Session) Stop() error {
	s.speakMu.Lock()
	defer s.speakMu.Unlock()
	if err := s.engine.Stop(); err != nil {
		return fmt.Errorf("stop speech: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSpeaking {
		s.state = StateReady
	}
	s.current = ""
	return nil
}

// Notify applies an engine notification. It is registered as the engine listener.
func (s *Session) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.UtteranceID != s.current || s.state == StateUninitialized {
		return
	}
	switch n.Event {
	case EventStarted:
		s.state = StateSpeaking
	case EventFinished:
		s.state = StateReady
		s.current = ""
	case EventError:
		s.state = StateError
		s.lastErr = n.Err
		s.logger.Warn("utterance failed", zap.String("utterance_id", n.UtteranceID), zap.Error(n.Err))
	}
}

func (s *Session) fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == id {
		s.state = StateError
		s.lastErr = err
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the current state, utterance and last error.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{State: s.state.String(), UtteranceID: s.current}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
