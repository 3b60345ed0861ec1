// Package numbers implements the Numbers screen: stage exploration, counting
// walkthroughs and the timed matching quiz.
//
// A Screen is not safe for concurrent use. Every method, timer callback and
// speech callback must run on the same goroutine, normally the screen's
// loop.Loop.
package numbers

import (
	"context"
	"time"

	"github.com/vytor/sayilar/internal/counting"
	"github.com/vytor/sayilar/internal/errors"
	"github.com/vytor/sayilar/internal/haptics"
	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/loop"
	"github.com/vytor/sayilar/internal/models"
	"github.com/vytor/sayilar/internal/numberwords"
	"github.com/vytor/sayilar/internal/quiz"
	"github.com/vytor/sayilar/internal/repository"
	"github.com/vytor/sayilar/internal/voice"
)

// Timings are the fixed delays of the quiz and counting flows.
type Timings struct {
	Tick               time.Duration
	AdvanceDelay       time.Duration
	WrongRecoveryDelay time.Duration
	CountingPause      time.Duration
}

// DefaultTimings returns one-second ticks, an 800ms advance, a 2s wrong-answer
// recovery and a 300ms pause between counting steps.
func DefaultTimings() Timings {
	return Timings{
		Tick:               time.Second,
		AdvanceDelay:       800 * time.Millisecond,
		WrongRecoveryDelay: 2 * time.Second,
		CountingPause:      counting.DefaultPause,
	}
}

// Config holds the collaborators of a Screen.
type Config struct {
	Progress  repository.ProgressRepository
	Speaker   voice.Speaker
	Haptics   haptics.Feedback
	Scheduler loop.Scheduler
	Generator *quiz.Generator
	Timings   Timings
	// OnChange receives a snapshot after every state change.
	OnChange func(models.Snapshot)
}

// Screen is the Numbers state machine.
type Screen struct {
	ctx      context.Context
	progress repository.ProgressRepository
	speaker  voice.Speaker
	haptics  haptics.Feedback
	sched    loop.Scheduler
	gen      *quiz.Generator
	counter  *counting.Player
	timings  Timings
	onChange func(models.Snapshot)
	log      *logger.Logger

	state         models.SessionState
	visited       models.VisitedNumbers
	stage         models.Stage
	selected      *int
	promptVisible bool
	shaking       bool
	celebrating   bool
	newRecord     bool
	highlight     int
	// locked is set between a correct answer and the next question.
	locked  bool
	blurred bool

	tick     loop.Timer
	advance  loop.Timer
	recovery map[int]loop.Timer
}

// NewScreen returns a screen in menu mode. ctx scopes persistence calls and
// carries the logger.
func NewScreen(ctx context.Context, cfg Config) *Screen {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Generator == nil {
		cfg.Generator = quiz.NewGenerator(nil)
	}
	if cfg.Timings == (Timings{}) {
		cfg.Timings = DefaultTimings()
	}
	log := logger.FromContext(ctx).WithPrefix("numbers")

	s := &Screen{
		ctx:           ctx,
		progress:      cfg.Progress,
		speaker:       cfg.Speaker,
		haptics:       cfg.Haptics,
		sched:         cfg.Scheduler,
		gen:           cfg.Generator,
		timings:       cfg.Timings,
		onChange:      cfg.OnChange,
		log:           log,
		state:         models.SessionState{Mode: models.ModeMenu, Answers: models.AnswerStatus{}},
		visited:       models.NewVisitedNumbers(nil),
		promptVisible: true,
		recovery:      make(map[int]loop.Timer),
	}
	s.counter = counting.NewPlayer(cfg.Speaker, cfg.Scheduler, cfg.Timings.CountingPause, log)
	s.counter.OnStep = func(n int) {
		s.highlight = n
		s.emit()
	}
	return s
}

// Load reads the high score and visited set. Failures fall back to defaults.
func (s *Screen) Load(ctx context.Context) {
	score, err := s.progress.HighScore(ctx)
	if err != nil {
		s.log.Warn("failed to load high score, using 0: %v", err)
		score = 0
	}
	s.state.HighScore = score

	visited, err := s.progress.VisitedNumbers(ctx)
	if err != nil {
		s.log.Warn("failed to load visited numbers, starting empty: %v", err)
		visited = nil
	}
	s.visited = models.NewVisitedNumbers(visited)
	s.log.Debug("loaded high score %d and %d visited numbers", score, len(s.visited))
	s.emit()
}

// Mode returns the current mode.
func (s *Screen) Mode() models.Mode {
	return s.state.Mode
}

// ShowStages opens the stages overview from the menu.
func (s *Screen) ShowStages() error {
	if err := s.require("show_stages", models.ModeMenu); err != nil {
		return err
	}
	s.state.Mode = models.ModeStages
	s.emit()
	return nil
}

// OpenStage shows the number grid of a stage.
func (s *Screen) OpenStage(stage models.Stage) error {
	if err := s.require("open_stage", models.ModeStages); err != nil {
		return err
	}
	if !stage.Valid() {
		return errors.NewValidationError("stage", "must be 1, 2 or 3")
	}
	s.stage = stage
	s.state.Mode = models.ModeGrid
	s.emit()
	return nil
}

// OpenNumber shows a number in detail, narrates it and records the visit.
func (s *Screen) OpenNumber(n int) error {
	if err := s.require("open_number", models.ModeGrid); err != nil {
		return err
	}
	if !s.stage.Contains(n) {
		return errors.NewValidationError("number", "not on the current stage")
	}

	selected := n
	s.selected = &selected
	s.state.Mode = models.ModeDetail
	s.highlight = 0

	if s.visited.Add(n) {
		s.log.Debug("first visit of %d", n)
		if err := s.progress.SaveVisitedNumbers(s.ctx, s.visited.List()); err != nil {
			s.log.Warn("failed to save visited numbers: %v", err)
		}
	}

	s.speaker.Speak(numberwords.ThisIs(n), voice.SpeakOptions{})
	s.emit()
	return nil
}

// PlayCounting counts up to the selected number.
func (s *Screen) PlayCounting() error {
	if err := s.require("play_counting", models.ModeDetail); err != nil {
		return err
	}
	if s.selected == nil {
		return errors.NewBadRequestError("no number selected")
	}
	s.speaker.Stop()
	s.counter.Play(*s.selected, s.stage)
	s.emit()
	return nil
}

// ShowDifficultySelect opens the quiz setup from the menu.
func (s *Screen) ShowDifficultySelect() error {
	if err := s.require("show_difficulty_select", models.ModeMenu); err != nil {
		return err
	}
	s.state.Mode = models.ModeDifficultySelect
	s.emit()
	return nil
}

// ShowMath opens the math placeholder from the menu.
func (s *Screen) ShowMath() error {
	if err := s.require("show_math", models.ModeMenu); err != nil {
		return err
	}
	s.state.Mode = models.ModeMath
	s.emit()
	return nil
}

// PlayAgain returns from the results to the difficulty selection.
func (s *Screen) PlayAgain() error {
	if err := s.require("play_again", models.ModeGameOver); err != nil {
		return err
	}
	s.celebrating = false
	s.newRecord = false
	s.state.Mode = models.ModeDifficultySelect
	s.emit()
	return nil
}

// StartGame begins a timed session.
func (s *Screen) StartGame(d models.Difficulty) error {
	if err := s.require("start_game", models.ModeDifficultySelect); err != nil {
		return err
	}
	if !d.Valid() {
		return errors.NewValidationError("difficulty", "must be easy or hard")
	}

	s.state.Difficulty = d
	s.state.Score = 0
	s.state.TimeLeft = d.TimeBudget()
	s.state.Mode = models.ModePlaying
	s.celebrating = false
	s.newRecord = false
	s.blurred = false
	s.log.Info("game started (difficulty=%s, time=%ds)", d, s.state.TimeLeft)

	s.nextQuestion()
	s.scheduleTick()
	s.emit()
	return nil
}

// Reset zeroes the score and draws a new question without touching the clock.
func (s *Screen) Reset() error {
	if err := s.require("reset", models.ModePlaying); err != nil {
		return err
	}
	s.stopTimer(&s.advance)
	s.state.Score = 0
	s.nextQuestion()
	s.emit()
	return nil
}

// SubmitAnswer grades a tapped option. Outside an open round it does nothing.
func (s *Screen) SubmitAnswer(v int) {
	if s.state.Mode != models.ModePlaying || s.state.Question == nil || s.locked {
		return
	}
	q := s.state.Question
	if !q.HasOption(v) {
		s.log.Debug("ignoring answer %d, not an option", v)
		return
	}

	if v == q.Target {
		s.state.Answers[v] = models.StatusCorrect
		if !s.state.HintUsed {
			s.state.Score++
		}
		s.locked = true
		s.haptics.Pulse(haptics.Success)
		s.speaker.Speak(numberwords.PhraseSuccess, voice.SpeakOptions{})
		s.advance = s.sched.AfterFunc(s.timings.AdvanceDelay, func() {
			s.advance = nil
			if s.state.Mode != models.ModePlaying {
				return
			}
			s.nextQuestion()
			s.emit()
		})
		s.emit()
		return
	}

	s.state.Answers[v] = models.StatusWrong
	if s.state.Score > 0 {
		s.state.Score--
	}
	s.shaking = true
	s.promptVisible = false
	s.haptics.Pulse(haptics.Error)
	s.speaker.Speak(numberwords.PhraseTryAgain, voice.SpeakOptions{})

	if t, ok := s.recovery[v]; ok {
		t.Stop()
	}
	s.recovery[v] = s.sched.AfterFunc(s.timings.WrongRecoveryDelay, func() {
		delete(s.recovery, v)
		if s.state.Answers[v] == models.StatusWrong {
			delete(s.state.Answers, v)
		}
		s.promptVisible = true
		s.shaking = false
		s.emit()
	})
	s.emit()
}

// UseHint reveals the target for one point. It does nothing when the hint was
// already used this round or the score is 0.
func (s *Screen) UseHint() {
	if s.state.Mode != models.ModePlaying || s.state.Question == nil || s.locked {
		return
	}
	if s.state.HintUsed || s.state.Score == 0 {
		return
	}
	s.state.Score--
	s.state.HintUsed = true
	s.haptics.Pulse(haptics.Impact)
	s.speaker.Speak(numberwords.HintReveal(s.state.Question.Target), voice.SpeakOptions{})
	s.emit()
}

// EndGame finishes the session and records a new high score.
func (s *Screen) EndGame() {
	if s.state.Mode != models.ModePlaying {
		return
	}
	s.clearTimers()
	s.locked = false

	score := s.state.Score
	if score > s.state.HighScore {
		s.state.HighScore = score
		s.newRecord = true
		s.celebrating = true
		if err := s.progress.SaveHighScore(s.ctx, score); err != nil {
			s.log.Error("failed to save high score %d: %v", score, err)
		}
		s.log.Info("game over with new record %d", score)
		s.haptics.Pulse(haptics.Success)
		s.speaker.Speak(numberwords.PhraseNewRecord, voice.SpeakOptions{})
	} else {
		s.newRecord = false
		s.log.Info("game over with score %d (record %d)", score, s.state.HighScore)
		s.speaker.Speak(numberwords.PhraseGameOver, voice.SpeakOptions{})
		s.speaker.Speak(numberwords.Score(score), voice.SpeakOptions{Queue: true})
	}

	s.state.Mode = models.ModeGameOver
	s.state.TimeLeft = 0
	s.state.Question = nil
	s.state.Answers = models.AnswerStatus{}
	s.state.HintUsed = false
	s.promptVisible = true
	s.shaking = false
	s.emit()
}

// Back resolves a back-navigation event. It returns true when the navigation
// host should handle it.
func (s *Screen) Back() bool {
	switch s.state.Mode {
	case models.ModeMenu:
		return true
	case models.ModeDetail:
		s.counter.Cancel()
		s.speaker.Stop()
		s.highlight = 0
		s.state.Mode = models.ModeGrid
	case models.ModeGrid:
		s.state.Mode = models.ModeStages
	case models.ModeStages:
		s.state.Mode = models.ModeMenu
	case models.ModePlaying:
		s.speaker.Stop()
		s.clearTimers()
		s.locked = false
		s.state.Question = nil
		s.state.Answers = models.AnswerStatus{}
		s.state.HintUsed = false
		s.state.TimeLeft = 0
		s.promptVisible = true
		s.shaking = false
		s.state.Mode = models.ModeDifficultySelect
	default:
		s.celebrating = false
		s.newRecord = false
		s.state.Mode = models.ModeMenu
	}
	s.emit()
	return false
}

// Blur cancels everything in flight: narration, counting, and every pending
// timeout. Wrong-answer feedback is settled immediately.
func (s *Screen) Blur() {
	if s.blurred {
		return
	}
	s.blurred = true
	s.counter.Cancel()
	s.speaker.Stop()
	s.stopTimer(&s.tick)
	s.stopTimer(&s.advance)
	s.clearRecovery()
	s.highlight = 0
	s.emit()
}

// Focus resumes a paused game.
func (s *Screen) Focus() {
	if !s.blurred {
		return
	}
	s.blurred = false
	if s.state.Mode == models.ModePlaying {
		if s.locked || s.state.Question == nil {
			s.nextQuestion()
		} else {
			s.speaker.Speak(numberwords.TaskPrompt(s.state.Question.Target), voice.SpeakOptions{})
		}
		s.scheduleTick()
	}
	s.emit()
}

// Close releases every timer and stops narration.
func (s *Screen) Close() {
	s.counter.Cancel()
	s.speaker.Stop()
	s.clearTimers()
}

// IsStageComplete reports whether every number of the stage was visited.
func (s *Screen) IsStageComplete(stage models.Stage) bool {
	return s.visited.StageComplete(stage)
}

// Stages returns the overview rows of every stage.
func (s *Screen) Stages() []models.StageSummary {
	out := make([]models.StageSummary, 0, len(models.Stages))
	for _, st := range models.Stages {
		out = append(out, models.StageSummary{
			Stage:    st,
			Title:    st.Title(),
			Numbers:  st.Numbers(),
			Visited:  s.visited.VisitedIn(st),
			Complete: s.visited.StageComplete(st),
		})
	}
	return out
}

// Snapshot returns a copy of the render state.
func (s *Screen) Snapshot() models.Snapshot {
	state := s.state
	state.Answers = s.state.Answers.Clone()
	if s.state.Question != nil {
		q := *s.state.Question
		q.Options = append([]int(nil), q.Options...)
		state.Question = &q
	}

	snap := models.Snapshot{
		SessionState:  state,
		Title:         s.title(),
		PromptVisible: s.promptVisible,
		Shaking:       s.shaking,
		Celebrating:   s.celebrating,
		NewRecord:     s.newRecord,
		Stage:         s.stage,
		Highlight:     s.highlight,
		Counting:      s.counter.Active(),
		Speaking:      s.speaker.IsSpeaking(),
		Stages:        s.Stages(),
	}
	if s.selected != nil {
		n := *s.selected
		snap.SelectedNumber = &n
	}
	return snap
}

func (s *Screen) title() string {
	switch s.state.Mode {
	case models.ModeStages:
		return "Stages"
	case models.ModeGrid, models.ModeDetail:
		return "Learn"
	case models.ModeDifficultySelect:
		return "Play"
	case models.ModePlaying:
		return s.state.Difficulty.Title()
	case models.ModeGameOver:
		return "Game Over"
	case models.ModeMath:
		return "Math Fun"
	default:
		return "Numbers"
	}
}

func (s *Screen) nextQuestion() {
	s.clearRecovery()
	q := s.gen.Generate(s.state.Difficulty)
	s.state.Question = &q
	s.state.Answers = models.AnswerStatus{}
	s.state.HintUsed = false
	s.locked = false
	s.log.Debug("new question: target=%d options=%v", q.Target, q.Options)
	s.speaker.Speak(numberwords.TaskPrompt(q.Target), voice.SpeakOptions{})
}

func (s *Screen) scheduleTick() {
	s.stopTimer(&s.tick)
	s.tick = s.sched.AfterFunc(s.timings.Tick, s.onTick)
}

func (s *Screen) onTick() {
	s.tick = nil
	if s.state.Mode != models.ModePlaying || s.blurred || s.state.TimeLeft <= 0 {
		return
	}
	s.state.TimeLeft--
	if s.state.TimeLeft == 0 {
		s.EndGame()
		return
	}
	if s.state.TimeLeft <= 3 {
		s.haptics.Pulse(haptics.Impact)
	}
	s.scheduleTick()
	s.emit()
}

// clearRecovery settles every pending wrong-answer recovery now.
func (s *Screen) clearRecovery() {
	for v, t := range s.recovery {
		t.Stop()
		delete(s.recovery, v)
		if s.state.Answers[v] == models.StatusWrong {
			delete(s.state.Answers, v)
		}
	}
	s.promptVisible = true
	s.shaking = false
}

func (s *Screen) clearTimers() {
	s.stopTimer(&s.tick)
	s.stopTimer(&s.advance)
	s.clearRecovery()
}

func (s *Screen) stopTimer(t *loop.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (s *Screen) require(operation string, mode models.Mode) error {
	if s.state.Mode != mode {
		return errors.NewInvalidStateError(operation, string(s.state.Mode))
	}
	return nil
}

func (s *Screen) emit() {
	if s.onChange != nil {
		s.onChange(s.Snapshot())
	}
}
