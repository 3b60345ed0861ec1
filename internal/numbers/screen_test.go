package numbers_test

import (
	"context"
	stderrors "errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/sayilar/internal/errors"
	"github.com/vytor/sayilar/internal/haptics"
	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/loop"
	"github.com/vytor/sayilar/internal/models"
	"github.com/vytor/sayilar/internal/numbers"
	"github.com/vytor/sayilar/internal/numberwords"
	"github.com/vytor/sayilar/internal/quiz"
	"github.com/vytor/sayilar/internal/testutil"
	"github.com/vytor/sayilar/internal/testutil/mocks"
	"github.com/vytor/sayilar/internal/voice"
)

const debounce = 100 * time.Millisecond

type ScreenSuite struct {
	suite.Suite
	clock     *loop.Manual
	engine    *testutil.FakeEngine
	progress  *mocks.MockProgressRepository
	feedback  *mocks.MockFeedback
	screen    *numbers.Screen
	snapshots []models.Snapshot
}

func (s *ScreenSuite) SetupTest() {
	s.clock = loop.NewManual()
	s.engine = &testutil.FakeEngine{}
	s.progress = new(mocks.MockProgressRepository)
	s.feedback = new(mocks.MockFeedback)
	s.feedback.On("Pulse", mock.Anything).Return()
	s.snapshots = nil

	ctx := logger.NewContext(context.Background(), logger.Discard())
	announcer := voice.NewAnnouncer(s.engine, s.clock, voice.DefaultSettings(), logger.Discard())
	s.screen = numbers.NewScreen(ctx, numbers.Config{
		Progress:  s.progress,
		Speaker:   announcer,
		Haptics:   s.feedback,
		Scheduler: s.clock,
		Generator: quiz.NewGenerator(rand.New(rand.NewSource(42))),
		Timings:   numbers.DefaultTimings(),
		OnChange: func(snap models.Snapshot) {
			s.snapshots = append(s.snapshots, snap)
		},
	})
}

func (s *ScreenSuite) load(highScore int, visited []int) {
	s.progress.On("HighScore", mock.Anything).Return(highScore, nil).Once()
	s.progress.On("VisitedNumbers", mock.Anything).Return(visited, nil).Once()
	s.screen.Load(context.Background())
}

func (s *ScreenSuite) startGame(d models.Difficulty, highScore int) {
	s.load(highScore, nil)
	s.Require().NoError(s.screen.ShowDifficultySelect())
	s.Require().NoError(s.screen.StartGame(d))
}

func (s *ScreenSuite) question() models.Question {
	q := s.screen.Snapshot().Question
	s.Require().NotNil(q)
	return *q
}

func (s *ScreenSuite) wrongOption() int {
	q := s.question()
	for _, o := range q.Options {
		if o != q.Target {
			return o
		}
	}
	s.FailNow("no wrong option")
	return -1
}

// answerCorrectly answers the current round and waits for the next one.
func (s *ScreenSuite) answerCorrectly() {
	s.screen.SubmitAnswer(s.question().Target)
	s.clock.Advance(numbers.DefaultTimings().AdvanceDelay)
}

func (s *ScreenSuite) pulses(kind haptics.Kind) int {
	n := 0
	for _, c := range s.feedback.Calls {
		if c.Method == "Pulse" && c.Arguments.Get(0) == kind {
			n++
		}
	}
	return n
}

func (s *ScreenSuite) TestStartGame() {
	s.startGame(models.DifficultyEasy, 0)

	snap := s.screen.Snapshot()
	s.Assert().Equal(models.ModePlaying, snap.Mode)
	s.Assert().Equal(0, snap.Score)
	s.Assert().Equal(45, snap.TimeLeft)
	s.Assert().Equal("Easy Mode", snap.Title)
	s.Assert().False(snap.HintUsed)
	s.Assert().Len(snap.Question.Options, 4)
	s.Assert().True(snap.Question.HasOption(snap.Question.Target))

	s.clock.Advance(debounce)
	s.Assert().Equal(numberwords.TaskPrompt(snap.Question.Target), s.engine.Last().Text)
}

func (s *ScreenSuite) TestStartGame_HardBudget() {
	s.startGame(models.DifficultyHard, 0)

	snap := s.screen.Snapshot()
	s.Assert().Equal(30, snap.TimeLeft)
	s.Assert().GreaterOrEqual(snap.Question.Target, 10)
	s.Assert().LessOrEqual(snap.Question.Target, 20)
}

func (s *ScreenSuite) TestStartGame_WrongMode() {
	err := s.screen.StartGame(models.DifficultyEasy)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeInvalidState))
}

func (s *ScreenSuite) TestCorrectAnswer() {
	s.startGame(models.DifficultyEasy, 0)
	q := s.question()

	s.screen.SubmitAnswer(q.Target)

	snap := s.screen.Snapshot()
	s.Assert().Equal(1, snap.Score)
	s.Assert().Equal(models.StatusCorrect, snap.Answers[q.Target])
	s.Assert().Equal(1, s.pulses(haptics.Success))

	s.clock.Advance(debounce)
	s.Assert().Equal(numberwords.PhraseSuccess, s.engine.Last().Text)

	// Round is locked until the next question arrives.
	s.screen.SubmitAnswer(q.Target)
	s.Assert().Equal(1, s.screen.Snapshot().Score)

	s.clock.Advance(800*time.Millisecond - debounce)
	next := s.screen.Snapshot()
	s.Assert().Empty(next.Answers)
	s.Assert().False(next.HintUsed)
	s.Require().NotNil(next.Question)
}

func (s *ScreenSuite) TestWrongAnswerRecovery() {
	s.startGame(models.DifficultyEasy, 0)
	q := s.question()
	wrong := s.wrongOption()

	s.screen.SubmitAnswer(wrong)

	snap := s.screen.Snapshot()
	s.Assert().Equal(models.StatusWrong, snap.Answers[wrong])
	s.Assert().False(snap.PromptVisible)
	s.Assert().True(snap.Shaking)
	s.Assert().Equal(1, s.pulses(haptics.Error))

	s.clock.Advance(2*time.Second - time.Millisecond)
	s.Assert().Equal(models.StatusWrong, s.screen.Snapshot().Answers[wrong])

	s.clock.Advance(time.Millisecond)
	snap = s.screen.Snapshot()
	_, marked := snap.Answers[wrong]
	s.Assert().False(marked)
	s.Assert().True(snap.PromptVisible)
	s.Assert().False(snap.Shaking)
	s.Assert().Equal(q, *snap.Question, "same round stays active")
}

func (s *ScreenSuite) TestScoreNeverNegative() {
	s.startGame(models.DifficultyEasy, 0)

	s.screen.SubmitAnswer(s.wrongOption())
	s.Assert().Equal(0, s.screen.Snapshot().Score)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		switch rng.Intn(4) {
		case 0:
			s.screen.UseHint()
		case 1:
			q := s.question()
			s.screen.SubmitAnswer(q.Options[rng.Intn(len(q.Options))])
		case 2:
			s.screen.SubmitAnswer(s.question().Target)
		default:
			s.clock.Advance(50 * time.Millisecond)
		}
		s.Require().GreaterOrEqual(s.screen.Snapshot().Score, 0)
		s.Require().Equal(models.ModePlaying, s.screen.Mode())
	}
}

func (s *ScreenSuite) TestHint() {
	s.startGame(models.DifficultyEasy, 0)

	s.screen.UseHint()
	s.Assert().False(s.screen.Snapshot().HintUsed, "no hint at score 0")

	s.answerCorrectly()
	s.answerCorrectly()
	s.Require().Equal(2, s.screen.Snapshot().Score)
	target := s.question().Target

	s.screen.UseHint()
	snap := s.screen.Snapshot()
	s.Assert().Equal(1, snap.Score)
	s.Assert().True(snap.HintUsed)
	s.Assert().Equal(1, s.pulses(haptics.Impact))

	s.screen.UseHint()
	snap = s.screen.Snapshot()
	s.Assert().Equal(1, snap.Score, "second hint is a no-op")
	s.Assert().True(snap.HintUsed)
	s.Assert().Equal(1, s.pulses(haptics.Impact))

	s.clock.Advance(debounce)
	s.Assert().Equal(numberwords.HintReveal(target), s.engine.Last().Text)

	s.screen.SubmitAnswer(target)
	s.Assert().Equal(1, s.screen.Snapshot().Score, "hinted answer earns nothing")
}

func (s *ScreenSuite) TestReset() {
	s.startGame(models.DifficultyEasy, 0)
	s.answerCorrectly()

	s.Require().NoError(s.screen.Reset())
	snap := s.screen.Snapshot()
	s.Assert().Equal(0, snap.Score)
	s.Assert().Equal(models.ModePlaying, snap.Mode)
}

func (s *ScreenSuite) TestTimeoutWithNewRecord() {
	s.startGame(models.DifficultyEasy, 3)
	s.progress.On("SaveHighScore", mock.Anything, 5).Return(nil).Once()

	for i := 0; i < 5; i++ {
		s.answerCorrectly()
	}
	s.Require().Equal(5, s.screen.Snapshot().Score)

	s.clock.Advance(45 * time.Second)

	snap := s.screen.Snapshot()
	s.Assert().Equal(models.ModeGameOver, snap.Mode)
	s.Assert().Equal(5, snap.HighScore)
	s.Assert().True(snap.Celebrating)
	s.Assert().True(snap.NewRecord)
	s.Assert().Equal(0, snap.TimeLeft)
	s.Assert().Nil(snap.Question)
	s.progress.AssertExpectations(s.T())

	s.clock.Advance(debounce)
	s.Assert().Equal(numberwords.PhraseNewRecord, s.engine.Last().Text)
	s.Assert().Equal(0, s.clock.Pending())
}

func (s *ScreenSuite) TestTimeoutWithoutRecord() {
	s.startGame(models.DifficultyHard, 9)
	s.answerCorrectly()

	s.clock.Advance(30 * time.Second)

	snap := s.screen.Snapshot()
	s.Assert().Equal(models.ModeGameOver, snap.Mode)
	s.Assert().Equal(9, snap.HighScore)
	s.Assert().False(snap.Celebrating)
	s.progress.AssertNotCalled(s.T(), "SaveHighScore", mock.Anything, mock.Anything)

	s.clock.Advance(debounce)
	s.Assert().Equal([]string{numberwords.PhraseGameOver, numberwords.Score(1)}, s.engine.Texts()[len(s.engine.Texts())-2:])
}

func (s *ScreenSuite) TestHighScoreIsMax() {
	tests := []struct {
		name   string
		stored int
		wins   int
		want   int
	}{
		{"beats record", 1, 3, 3},
		{"below record", 4, 2, 4},
		{"ties record", 2, 2, 2},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.startGame(models.DifficultyEasy, tt.stored)
			s.progress.On("SaveHighScore", mock.Anything, mock.Anything).Return(nil)
			for i := 0; i < tt.wins; i++ {
				s.answerCorrectly()
			}

			s.screen.EndGame()

			s.Assert().Equal(tt.want, s.screen.Snapshot().HighScore)
			if tt.wins > tt.stored {
				s.progress.AssertCalled(s.T(), "SaveHighScore", mock.Anything, tt.wins)
			} else {
				s.progress.AssertNotCalled(s.T(), "SaveHighScore", mock.Anything, mock.Anything)
			}
		})
	}
}

func (s *ScreenSuite) TestLowTimeHaptics() {
	s.startGame(models.DifficultyHard, 0)

	s.clock.Advance(26 * time.Second)
	s.Assert().Equal(4, s.screen.Snapshot().TimeLeft)
	s.Assert().Equal(0, s.pulses(haptics.Impact))

	s.clock.Advance(time.Second)
	s.Assert().Equal(1, s.pulses(haptics.Impact))

	s.clock.Advance(2 * time.Second)
	s.Assert().Equal(3, s.pulses(haptics.Impact))
	s.Assert().Equal(1, s.screen.Snapshot().TimeLeft)

	s.clock.Advance(time.Second)
	s.Assert().Equal(models.ModeGameOver, s.screen.Mode())
	s.Assert().Equal(3, s.pulses(haptics.Impact))
}

func (s *ScreenSuite) TestBackFromPlayingClearsTimers() {
	s.startGame(models.DifficultyEasy, 0)
	s.screen.SubmitAnswer(s.wrongOption())
	s.Require().Greater(s.clock.Pending(), 0)

	delegate := s.screen.Back()

	s.Assert().False(delegate)
	s.Assert().Equal(models.ModeDifficultySelect, s.screen.Mode())
	s.Assert().Equal(0, s.clock.Pending())
	s.Assert().Greater(s.engine.StopCalls, 0)

	spoken := len(s.engine.Spoken)
	s.clock.Advance(time.Minute)
	s.Assert().Len(s.engine.Spoken, spoken)
	s.Assert().Equal(models.ModeDifficultySelect, s.screen.Mode())
}

func (s *ScreenSuite) TestBackMapping() {
	s.load(0, nil)
	s.Assert().True(s.screen.Back(), "menu delegates to host")

	s.Require().NoError(s.screen.ShowStages())
	s.Require().NoError(s.screen.OpenStage(models.StageOnes))
	s.progress.On("SaveVisitedNumbers", mock.Anything, mock.Anything).Return(nil)
	s.Require().NoError(s.screen.OpenNumber(4))

	s.Assert().False(s.screen.Back())
	s.Assert().Equal(models.ModeGrid, s.screen.Mode())
	s.Assert().False(s.screen.Back())
	s.Assert().Equal(models.ModeStages, s.screen.Mode())
	s.Assert().False(s.screen.Back())
	s.Assert().Equal(models.ModeMenu, s.screen.Mode())

	s.Require().NoError(s.screen.ShowMath())
	s.Assert().Equal("Math Fun", s.screen.Snapshot().Title)
	s.Assert().False(s.screen.Back())
	s.Assert().Equal(models.ModeMenu, s.screen.Mode())

	s.Require().NoError(s.screen.ShowDifficultySelect())
	s.Assert().False(s.screen.Back())
	s.Assert().Equal(models.ModeMenu, s.screen.Mode())
}

func (s *ScreenSuite) TestPlayAgain() {
	s.startGame(models.DifficultyEasy, 0)
	s.screen.EndGame()

	s.Require().NoError(s.screen.PlayAgain())
	s.Assert().Equal(models.ModeDifficultySelect, s.screen.Mode())

	s.Require().NoError(s.screen.StartGame(models.DifficultyHard))
	snap := s.screen.Snapshot()
	s.Assert().Equal(0, snap.Score)
	s.Assert().Equal(30, snap.TimeLeft)
}

func (s *ScreenSuite) TestSubmitOutsidePlayingIsIgnored() {
	s.load(0, nil)
	before := len(s.snapshots)

	s.screen.SubmitAnswer(3)
	s.screen.UseHint()

	s.Assert().Len(s.snapshots, before)
	s.Assert().Equal(models.ModeMenu, s.screen.Mode())
}

func (s *ScreenSuite) TestStageCompletion() {
	s.load(0, nil)
	s.progress.On("SaveVisitedNumbers", mock.Anything, mock.Anything).Return(nil)
	s.Require().NoError(s.screen.ShowStages())
	s.Require().NoError(s.screen.OpenStage(models.StageOnes))

	for n := 0; n <= 9; n++ {
		s.Assert().False(s.screen.IsStageComplete(models.StageOnes))
		s.Require().NoError(s.screen.OpenNumber(n))
		s.screen.Back()
	}
	s.Assert().True(s.screen.IsStageComplete(models.StageOnes))
	s.Assert().False(s.screen.IsStageComplete(models.StageTeens))

	// Revisiting does not write again.
	s.Require().NoError(s.screen.OpenNumber(3))
	s.progress.AssertNumberOfCalls(s.T(), "SaveVisitedNumbers", 10)

	stages := s.screen.Snapshot().Stages
	s.Require().Len(stages, 3)
	s.Assert().True(stages[0].Complete)
	s.Assert().Equal(10, stages[0].Visited)
}

func (s *ScreenSuite) TestStageCompletionFromStorage() {
	s.load(0, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	s.Assert().True(s.screen.IsStageComplete(models.StageOnes))
}

func (s *ScreenSuite) TestOpenNumberOffStage() {
	s.load(0, nil)
	s.Require().NoError(s.screen.ShowStages())
	s.Require().NoError(s.screen.OpenStage(models.StageTens))

	err := s.screen.OpenNumber(25)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeValidation))
	s.Assert().Equal(models.ModeGrid, s.screen.Mode())
}

func (s *ScreenSuite) TestOpenNumberNarrates() {
	s.load(0, nil)
	s.progress.On("SaveVisitedNumbers", mock.Anything, []int{40}).Return(nil)
	s.Require().NoError(s.screen.ShowStages())
	s.Require().NoError(s.screen.OpenStage(models.StageTens))
	s.Require().NoError(s.screen.OpenNumber(40))

	s.clock.Advance(debounce)
	s.Assert().Equal(numberwords.ThisIs(40), s.engine.Last().Text)
	snap := s.screen.Snapshot()
	s.Require().NotNil(snap.SelectedNumber)
	s.Assert().Equal(40, *snap.SelectedNumber)
}

func (s *ScreenSuite) TestPersistenceFailuresAreSwallowed() {
	boom := stderrors.New("disk full")
	s.progress.On("HighScore", mock.Anything).Return(0, boom)
	s.progress.On("VisitedNumbers", mock.Anything).Return(nil, boom)
	s.progress.On("SaveVisitedNumbers", mock.Anything, mock.Anything).Return(boom)
	s.progress.On("SaveHighScore", mock.Anything, mock.Anything).Return(boom)

	s.screen.Load(context.Background())
	s.Assert().Equal(0, s.screen.Snapshot().HighScore)

	s.Require().NoError(s.screen.ShowStages())
	s.Require().NoError(s.screen.OpenStage(models.StageOnes))
	s.Require().NoError(s.screen.OpenNumber(2))
	s.Assert().Equal(1, s.screen.Stages()[0].Visited)
	s.screen.Back()
	s.screen.Back()
	s.screen.Back()

	s.Require().NoError(s.screen.ShowDifficultySelect())
	s.Require().NoError(s.screen.StartGame(models.DifficultyEasy))
	s.answerCorrectly()
	s.screen.EndGame()

	snap := s.screen.Snapshot()
	s.Assert().Equal(models.ModeGameOver, snap.Mode)
	s.Assert().Equal(1, snap.HighScore)
	s.Assert().True(snap.Celebrating)
}

func (s *ScreenSuite) TestCountingFromDetail() {
	s.load(0, nil)
	s.progress.On("SaveVisitedNumbers", mock.Anything, mock.Anything).Return(nil)
	s.Require().NoError(s.screen.ShowStages())
	s.Require().NoError(s.screen.OpenStage(models.StageOnes))
	s.Require().NoError(s.screen.OpenNumber(7))
	s.Require().NoError(s.screen.PlayCounting())
	start := len(s.engine.Spoken)

	for step := 1; step <= 3; step++ {
		s.clock.Advance(debounce)
		s.Assert().Equal(step, s.screen.Snapshot().Highlight)
		s.Require().True(s.engine.Complete())
		s.clock.Advance(300 * time.Millisecond)
	}
	s.Assert().True(s.screen.Snapshot().Counting)

	s.screen.Blur()
	s.clock.Advance(time.Minute)

	snap := s.screen.Snapshot()
	s.Assert().False(snap.Counting)
	s.Assert().Equal(0, snap.Highlight)
	s.Assert().Equal([]string{"bir", "iki", "üç"}, s.engine.Texts()[start:])
}

func (s *ScreenSuite) TestPlayCountingWrongMode() {
	err := s.screen.PlayCounting()
	s.Assert().True(errors.HasCode(err, errors.ErrCodeInvalidState))
}

func (s *ScreenSuite) TestBlurPausesAndFocusResumes() {
	s.startGame(models.DifficultyEasy, 0)
	s.screen.SubmitAnswer(s.wrongOption())
	s.clock.Advance(5 * time.Second)
	s.Require().Equal(40, s.screen.Snapshot().TimeLeft)

	s.screen.SubmitAnswer(s.wrongOption())
	s.screen.Blur()

	snap := s.screen.Snapshot()
	s.Assert().Empty(snap.Answers)
	s.Assert().True(snap.PromptVisible)
	s.Assert().Equal(0, s.clock.Pending())

	s.clock.Advance(10 * time.Second)
	s.Assert().Equal(40, s.screen.Snapshot().TimeLeft)

	s.screen.Focus()
	s.clock.Advance(time.Second)
	s.Assert().Equal(39, s.screen.Snapshot().TimeLeft)
	s.Assert().Equal(numberwords.TaskPrompt(s.question().Target), s.engine.Last().Text)
}

func (s *ScreenSuite) TestFocusAfterLockedRoundDrawsNextQuestion() {
	s.startGame(models.DifficultyEasy, 0)
	s.screen.SubmitAnswer(s.question().Target)
	s.screen.Blur()

	s.screen.Focus()

	snap := s.screen.Snapshot()
	s.Assert().Empty(snap.Answers)
	s.Assert().Equal(1, snap.Score)
	s.screen.SubmitAnswer(snap.Question.Target)
	s.Assert().Equal(2, s.screen.Snapshot().Score)
}

func (s *ScreenSuite) TestSpeechErrorsDoNotBlockPlay() {
	s.engine.SpeakErr = stderrors.New("no voice")
	s.startGame(models.DifficultyEasy, 0)
	s.clock.Advance(debounce)

	s.answerCorrectly()
	snap := s.screen.Snapshot()
	s.Assert().Equal(1, snap.Score)
	s.Assert().False(snap.Speaking)
}

func TestScreenSuite(t *testing.T) {
	suite.Run(t, new(ScreenSuite))
}
