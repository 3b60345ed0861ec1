// Package counting walks a learner from 1 (or 10) up to a chosen number, one
// narrated step at a time.
package counting

import (
	"time"

	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/loop"
	"github.com/vytor/sayilar/internal/models"
	"github.com/vytor/sayilar/internal/numberwords"
	"github.com/vytor/sayilar/internal/voice"
)

// DefaultPause separates one step's narration from the next.
const DefaultPause = 300 * time.Millisecond

// Player is an explicit state machine: each step speaks queued, waits for the
// utterance to finish, pauses, then advances. Every continuation carries the
// generation it was scheduled in and is dropped once that generation is over.
type Player struct {
	speaker voice.Speaker
	sched   loop.Scheduler
	pause   time.Duration
	log     *logger.Logger

	// OnStep is called with the highlighted value on each step and with 0
	// when the sequence ends or is cancelled.
	OnStep func(n int)

	gen       uint64
	active    bool
	current   int
	target    int
	increment int
	timer     loop.Timer
}

// NewPlayer creates an idle player.
func NewPlayer(speaker voice.Speaker, sched loop.Scheduler, pause time.Duration, log *logger.Logger) *Player {
	if log == nil {
		log = logger.Default()
	}
	if pause < 0 {
		pause = DefaultPause
	}
	return &Player{
		speaker: speaker,
		sched:   sched,
		pause:   pause,
		log:     log.WithPrefix("counting"),
	}
}

// Start returns the first value and the step size for counting to number in stage.
func Start(number int, stage models.Stage) (first, increment int) {
	first, increment = 1, 1
	if stage.CountsByTens() || number > 10 {
		first = 10
	}
	if stage.CountsByTens() {
		increment = 10
	}
	return first, increment
}

// Play cancels any running sequence and counts up to number.
func (p *Player) Play(number int, stage models.Stage) {
	p.Cancel()

	p.gen++
	p.active = true
	p.target = number
	p.current, p.increment = Start(number, stage)
	p.log.Debug("counting to %d from %d by %d", number, p.current, p.increment)
	p.step(p.gen)
}

// Cancel stops narration and drops every scheduled continuation.
func (p *Player) Cancel() {
	if !p.active {
		return
	}
	p.log.Debug("counting cancelled at %d", p.current)
	p.gen++
	p.finish()
	p.speaker.Stop()
}

// Active reports whether a sequence is running.
func (p *Player) Active() bool {
	return p.active
}

// Current returns the value being narrated, or 0 when idle.
func (p *Player) Current() int {
	if !p.active {
		return 0
	}
	return p.current
}

func (p *Player) step(gen uint64) {
	if gen != p.gen || !p.active {
		return
	}
	if p.current > p.target {
		p.log.Debug("counting finished at %d", p.target)
		p.finish()
		return
	}

	n := p.current
	p.highlight(n)
	advance := func() {
		if gen != p.gen || !p.active {
			return
		}
		p.timer = p.sched.AfterFunc(p.pause, func() {
			p.timer = nil
			if gen != p.gen || !p.active {
				return
			}
			p.current += p.increment
			p.step(gen)
		})
	}
	p.speaker.Speak(numberwords.WordFor(n), voice.SpeakOptions{
		Queue:  true,
		OnDone: advance,
		// A failed step is skipped rather than stalling the sequence.
		OnError: func(error) { advance() },
	})
}

func (p *Player) finish() {
	p.active = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.highlight(0)
}

func (p *Player) highlight(n int) {
	if p.OnStep != nil {
		p.OnStep(n)
	}
}
