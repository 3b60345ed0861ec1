package voice

import (
	"time"
	"unicode/utf8"

	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/loop"
)

// LogEngine is a headless Engine: it logs each utterance and simulates its
// duration on the scheduler, playing queued utterances one after another.
type LogEngine struct {
	sched   loop.Scheduler
	log     *logger.Logger
	perRune time.Duration

	queue   []logUtterance
	current *logUtterance
	timer   loop.Timer
}

type logUtterance struct {
	text string
	u    Utterance
}

// NewLogEngine returns an engine that takes perRune per character at rate 1.
func NewLogEngine(sched loop.Scheduler, log *logger.Logger, perRune time.Duration) *LogEngine {
	if log == nil {
		log = logger.Default()
	}
	if perRune <= 0 {
		perRune = 60 * time.Millisecond
	}
	return &LogEngine{sched: sched, log: log.WithPrefix("speech"), perRune: perRune}
}

func (e *LogEngine) Speak(text string, u Utterance) error {
	e.queue = append(e.queue, logUtterance{text: text, u: u})
	if e.current == nil {
		e.next()
	}
	return nil
}

func (e *LogEngine) Stop() {
	e.queue = nil
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if cur := e.current; cur != nil {
		e.current = nil
		e.log.Debug("stopped: %q", cur.text)
		call(cur.u.OnStopped)
	}
}

func (e *LogEngine) next() {
	if len(e.queue) == 0 {
		e.current = nil
		return
	}
	cur := e.queue[0]
	e.queue = e.queue[1:]
	e.current = &cur

	e.log.Info("speaking [%s pitch=%.2f rate=%.2f]: %s", cur.u.Language, cur.u.Pitch, cur.u.Rate, cur.text)
	call(cur.u.OnStart)

	e.timer = e.sched.AfterFunc(e.duration(cur), func() {
		e.timer = nil
		e.current = nil
		call(cur.u.OnDone)
		if e.current == nil {
			e.next()
		}
	})
}

func (e *LogEngine) duration(lu logUtterance) time.Duration {
	rate := lu.u.Rate
	if rate <= 0 {
		rate = 1
	}
	d := time.Duration(utf8.RuneCountInString(lu.text)) * e.perRune
	return time.Duration(float64(d) / rate)
}
