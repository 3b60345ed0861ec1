package testutil

import (
	"github.com/vytor/sayilar/internal/voice"
)

// SpokenUtterance is one request received by FakeEngine.
type SpokenUtterance struct {
	Text      string
	Utterance voice.Utterance
	Started   bool
	Finished  bool
	Stopped   bool
}

// FakeEngine records utterances and lets tests drive lifecycle callbacks.
// Utterances are "active" from Speak until completed or stopped.
type FakeEngine struct {
	Spoken    []*SpokenUtterance
	StopCalls int
	// SpeakErr, when set, is returned by every Speak call.
	SpeakErr error

	active []*SpokenUtterance
}

func (e *FakeEngine) Speak(text string, u voice.Utterance) error {
	if e.SpeakErr != nil {
		return e.SpeakErr
	}
	s := &SpokenUtterance{Text: text, Utterance: u}
	e.Spoken = append(e.Spoken, s)
	e.active = append(e.active, s)
	return nil
}

func (e *FakeEngine) Stop() {
	e.StopCalls++
	active := e.active
	e.active = nil
	for _, s := range active {
		s.Stopped = true
		if s.Utterance.OnStopped != nil {
			s.Utterance.OnStopped()
		}
	}
}

// Texts returns everything spoken so far, in order.
func (e *FakeEngine) Texts() []string {
	out := make([]string, 0, len(e.Spoken))
	for _, s := range e.Spoken {
		out = append(out, s.Text)
	}
	return out
}

// Last returns the most recent utterance, or nil.
func (e *FakeEngine) Last() *SpokenUtterance {
	if len(e.Spoken) == 0 {
		return nil
	}
	return e.Spoken[len(e.Spoken)-1]
}

// Active counts utterances that have neither finished nor been stopped.
func (e *FakeEngine) Active() int {
	return len(e.active)
}

// Complete starts and finishes the oldest active utterance. It reports false
// when nothing is active.
func (e *FakeEngine) Complete() bool {
	if len(e.active) == 0 {
		return false
	}
	s := e.active[0]
	e.active = e.active[1:]
	if !s.Started {
		s.Started = true
		if s.Utterance.OnStart != nil {
			s.Utterance.OnStart()
		}
	}
	s.Finished = true
	if s.Utterance.OnDone != nil {
		s.Utterance.OnDone()
	}
	return true
}

// Start fires OnStart for the oldest active utterance without finishing it.
func (e *FakeEngine) Start() {
	if len(e.active) == 0 {
		return
	}
	s := e.active[0]
	if !s.Started {
		s.Started = true
		if s.Utterance.OnStart != nil {
			s.Utterance.OnStart()
		}
	}
}

// Fail reports err for the oldest active utterance through OnError.
func (e *FakeEngine) Fail(err error) {
	if len(e.active) == 0 {
		return
	}
	s := e.active[0]
	e.active = e.active[1:]
	if s.Utterance.OnError != nil {
		s.Utterance.OnError(err)
	}
}
