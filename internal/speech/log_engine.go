package speech

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// LogEngine is a server-side Engine that writes utterances to the log instead of audio.
// Playback is simulated as perRune per character so Speaking is observable; a new Speak
// or Stop cuts the running utterance short without a finished notification.
type LogEngine struct {
	mu       sync.Mutex
	logger   *zap.Logger
	locales  map[string]bool
	perRune  time.Duration
	listener func(Notification)
	stop     chan struct{}
}

// NewLogEngine returns a LogEngine that accepts the given locales (all when none given).
func NewLogEngine(logger *zap.Logger, perRune time.Duration, locales ...string) *LogEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	var accepted map[string]bool
	if len(locales) > 0 {
		accepted = make(map[string]bool, len(locales))
		for _, l := range locales {
			accepted[l] = true
		}
	}
	return &LogEngine{logger: logger, locales: accepted, perRune: perRune}
}

func (e *LogEngine) Init(ctx context.Context) error {
	return ctx.Err()
}

func (e *LogEngine) ProbeLanguage(locale string) bool {
	return e.locales == nil || e.locales[locale]
}

func (e *LogEngine) SetListener(fn func(Notification)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = fn
}

// Speak flushes the running utterance and plays u.
func (e *LogEngine) Speak(ctx context.Context, u Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	if e.stop != nil {
		close(e.stop)
	}
	stop := make(chan struct{})
	e.stop = stop
	listener := e.listener
	e.mu.Unlock()

	e.logger.Info("speaking",
		zap.String("utterance_id", u.ID),
		zap.String("locale", u.Locale),
		zap.Float64("rate", u.Rate),
		zap.Float64("pitch", u.Pitch),
		zap.String("text", u.Text),
	)
	go e.play(u, stop, listener)
	return nil
}

func (e *LogEngine) play(u Utterance, stop <-chan struct{}, listener func(Notification)) {
	notify := func(ev Event) {
		if listener != nil {
			listener(Notification{UtteranceID: u.ID, Event: ev})
		}
	}
	notify(EventStarted)

	timer := time.NewTimer(e.perRune * time.Duration(utf8.RuneCountInString(u.Text)))
	defer timer.Stop()
	select {
	case <-stop:
		return
	case <-timer.C:
	}

	e.mu.Lock()
	if e.stop == stop {
		e.stop = nil
	}
	e.mu.Unlock()
	notify(EventFinished)
}

// Stop cuts the running utterance short.
func (e *LogEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	return nil
}
