package voice_test

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/loop"
	"github.com/vytor/sayilar/internal/testutil"
	"github.com/vytor/sayilar/internal/voice"
)

func newAnnouncer() (*voice.Announcer, *testutil.FakeEngine, *loop.Manual) {
	engine := &testutil.FakeEngine{}
	clock := loop.NewManual()
	return voice.NewAnnouncer(engine, clock, voice.DefaultSettings(), logger.Discard()), engine, clock
}

func TestAnnouncer_DebouncesDispatch(t *testing.T) {
	a, engine, clock := newAnnouncer()

	a.Speak("merhaba", voice.SpeakOptions{})
	clock.Advance(99 * time.Millisecond)
	assert.Empty(t, engine.Spoken)

	clock.Advance(time.Millisecond)
	require.Len(t, engine.Spoken, 1)
	u := engine.Last().Utterance
	assert.Equal(t, "tr-TR", u.Language)
	assert.Equal(t, 1.4, u.Pitch)
	assert.Equal(t, 1.25, u.Rate)
}

func TestAnnouncer_NonQueuedSupersedesPending(t *testing.T) {
	a, engine, clock := newAnnouncer()

	a.Speak("bir", voice.SpeakOptions{})
	clock.Advance(50 * time.Millisecond)
	a.Speak("iki", voice.SpeakOptions{})
	clock.Advance(time.Second)

	assert.Equal(t, []string{"iki"}, engine.Texts())
	assert.Equal(t, 2, engine.StopCalls)
}

func TestAnnouncer_NonQueuedStopsActiveUtterance(t *testing.T) {
	a, engine, clock := newAnnouncer()

	a.Speak("bir", voice.SpeakOptions{})
	clock.Advance(100 * time.Millisecond)
	engine.Start()
	assert.True(t, a.IsSpeaking())

	a.Speak("iki", voice.SpeakOptions{})
	assert.False(t, a.IsSpeaking())
	assert.True(t, engine.Spoken[0].Stopped)

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, engine.Active(), "at most one active utterance")
}

func TestAnnouncer_QueuedDoesNotStopEngine(t *testing.T) {
	a, engine, clock := newAnnouncer()

	a.Speak("bir", voice.SpeakOptions{Queue: true})
	a.Speak("iki", voice.SpeakOptions{Queue: true})
	clock.Advance(100 * time.Millisecond)

	assert.Equal(t, []string{"bir", "iki"}, engine.Texts())
	assert.Zero(t, engine.StopCalls)
	assert.Equal(t, 2, engine.Active())
}

func TestAnnouncer_LifecycleHooks(t *testing.T) {
	a, engine, clock := newAnnouncer()

	var events []string
	a.Speak("üç", voice.SpeakOptions{
		OnStart: func() { events = append(events, "start") },
		OnDone:  func() { events = append(events, "done") },
	})
	clock.Advance(100 * time.Millisecond)

	engine.Start()
	assert.True(t, a.IsSpeaking())
	engine.Complete()
	assert.False(t, a.IsSpeaking())
	assert.Equal(t, []string{"start", "done"}, events)
}

func TestAnnouncer_StopCancelsPendingAndActive(t *testing.T) {
	a, engine, clock := newAnnouncer()

	var stopped bool
	a.Speak("dört", voice.SpeakOptions{OnStopped: func() { stopped = true }})
	clock.Advance(100 * time.Millisecond)
	a.Speak("beş", voice.SpeakOptions{Queue: true})

	a.Stop()
	clock.Advance(time.Second)

	assert.Equal(t, []string{"dört"}, engine.Texts())
	assert.True(t, stopped)
	assert.False(t, a.IsSpeaking())
	assert.Zero(t, clock.Pending())
}

func TestAnnouncer_EngineErrorIsNonFatal(t *testing.T) {
	a, engine, clock := newAnnouncer()
	engine.SpeakErr = stderrors.New("no voice data")

	var got error
	a.Speak("altı", voice.SpeakOptions{OnError: func(err error) { got = err }})
	clock.Advance(100 * time.Millisecond)

	assert.EqualError(t, got, "no voice data")
	assert.False(t, a.IsSpeaking())
}

func TestAnnouncer_AsyncErrorClearsSpeaking(t *testing.T) {
	a, engine, clock := newAnnouncer()

	a.Speak("yedi", voice.SpeakOptions{})
	clock.Advance(100 * time.Millisecond)
	engine.Start()
	require.True(t, a.IsSpeaking())

	engine.Fail(stderrors.New("audio focus lost"))
	assert.False(t, a.IsSpeaking())
}

func TestAnnouncer_AnnounceTask(t *testing.T) {
	a, engine, clock := newAnnouncer()

	a.AnnounceTask(15)
	clock.Advance(100 * time.Millisecond)

	assert.Equal(t, []string{"on beş sayısını bulabilir misin?"}, engine.Texts())
}
