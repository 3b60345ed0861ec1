package voice

import (
	"time"

	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/loop"
	"github.com/vytor/sayilar/internal/numberwords"
)

// Utterance carries the engine parameters and lifecycle hooks of one request.
type Utterance struct {
	Language  string
	Pitch     float64
	Rate      float64
	OnStart   func()
	OnDone    func()
	OnStopped func()
	OnError   func(error)
}

// Engine is a text-to-speech backend. Speak must not block; lifecycle hooks
// must be invoked on the screen's loop. Utterances issued without an
// intervening Stop are played in submission order.
type Engine interface {
	Speak(text string, u Utterance) error
	Stop()
}

// Settings are the fixed voice parameters.
type Settings struct {
	Language string
	Pitch    float64
	Rate     float64
	Debounce time.Duration
}

// DefaultSettings returns the Turkish child-friendly voice.
func DefaultSettings() Settings {
	return Settings{
		Language: "tr-TR",
		Pitch:    1.4,
		Rate:     1.25,
		Debounce: 100 * time.Millisecond,
	}
}

// SpeakOptions tune a single Speak call.
type SpeakOptions struct {
	// Queue issues the utterance without stopping the engine first.
	Queue     bool
	OnStart   func()
	OnDone    func()
	OnStopped func()
	OnError   func(error)
}

// Speaker is what screens and players narrate through.
type Speaker interface {
	Speak(text string, opts SpeakOptions)
	Stop()
	IsSpeaking() bool
}

// Announcer serializes narration against an Engine. A non-queued Speak
// supersedes everything before it, so back-to-back non-queued calls leave at
// most one utterance active. Not safe for concurrent use; call it from the loop.
type Announcer struct {
	engine   Engine
	sched    loop.Scheduler
	settings Settings
	log      *logger.Logger

	pending  map[uint64]loop.Timer
	nextID   uint64
	latest   uint64
	speaking bool
}

// NewAnnouncer wires an announcer to an engine and scheduler.
func NewAnnouncer(engine Engine, sched loop.Scheduler, settings Settings, log *logger.Logger) *Announcer {
	if log == nil {
		log = logger.Default()
	}
	return &Announcer{
		engine:   engine,
		sched:    sched,
		settings: settings,
		log:      log.WithPrefix("voice"),
		pending:  make(map[uint64]loop.Timer),
	}
}

// Speak narrates text after the debounce delay.
func (a *Announcer) Speak(text string, opts SpeakOptions) {
	if !opts.Queue {
		a.cancelPending()
		a.engine.Stop()
		a.speaking = false
	}

	a.nextID++
	id := a.nextID
	a.log.Debug("scheduling utterance %d (queue=%t): %q", id, opts.Queue, text)
	a.pending[id] = a.sched.AfterFunc(a.settings.Debounce, func() {
		delete(a.pending, id)
		a.dispatch(id, text, opts)
	})
}

func (a *Announcer) dispatch(id uint64, text string, opts SpeakOptions) {
	a.latest = id
	err := a.engine.Speak(text, Utterance{
		Language: a.settings.Language,
		Pitch:    a.settings.Pitch,
		Rate:     a.settings.Rate,
		OnStart: func() {
			a.speaking = true
			call(opts.OnStart)
		},
		OnDone: func() {
			if id == a.latest {
				a.speaking = false
			}
			call(opts.OnDone)
		},
		OnStopped: func() {
			if id == a.latest {
				a.speaking = false
			}
			call(opts.OnStopped)
		},
		OnError: func(err error) {
			a.fail(id, text, err, opts.OnError)
		},
	})
	if err != nil {
		a.fail(id, text, err, opts.OnError)
	}
}

func (a *Announcer) fail(id uint64, text string, err error, hook func(error)) {
	a.log.Warn("speech error for utterance %d %q: %v", id, text, err)
	if id == a.latest {
		a.speaking = false
	}
	if hook != nil {
		hook(err)
	}
}

// Stop cancels pending dispatches and the active utterance.
func (a *Announcer) Stop() {
	a.cancelPending()
	a.engine.Stop()
	a.speaking = false
}

// IsSpeaking mirrors the engine's lifecycle callbacks.
func (a *Announcer) IsSpeaking() bool {
	return a.speaking
}

// AnnounceTask asks the learner to find n.
func (a *Announcer) AnnounceTask(n int) {
	a.Speak(numberwords.TaskPrompt(n), SpeakOptions{})
}

func (a *Announcer) cancelPending() {
	for id, t := range a.pending {
		t.Stop()
		delete(a.pending, id)
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
