package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/sayilar/internal/errors"
	"github.com/vytor/sayilar/internal/haptics"
	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/loop"
	"github.com/vytor/sayilar/internal/models"
	"github.com/vytor/sayilar/internal/numbers"
	"github.com/vytor/sayilar/internal/quiz"
	"github.com/vytor/sayilar/internal/repository"
	"github.com/vytor/sayilar/internal/voice"
)

// ScreenAction is an operation run against a screen on its loop.
type ScreenAction func(screen *numbers.Screen) error

// ScreenService owns live Numbers screens, one loop each.
type ScreenService interface {
	Create(ctx context.Context, profileID int64) (string, models.Snapshot, error)
	Get(ctx context.Context, id string) (models.Snapshot, error)
	Do(ctx context.Context, id string, action ScreenAction) (models.Snapshot, error)
	Subscribe(ctx context.Context, id string) (<-chan models.Snapshot, func(), error)
	Delete(ctx context.Context, id string) error
	ReapIdle(ctx context.Context) int
	Count() int
	Shutdown(ctx context.Context)
}

// EngineFactory builds the speech engine of a new screen.
type EngineFactory func(sched loop.Scheduler, log *logger.Logger) voice.Engine

// ScreenServiceConfig holds the shared collaborators and settings of every screen.
type ScreenServiceConfig struct {
	Store            repository.KeyValueStore
	Profiles         repository.ProfileRepository
	Haptics          haptics.Feedback
	Engine           EngineFactory
	Voice            voice.Settings
	Timings          numbers.Timings
	DefaultProfileID int64
	IdleTimeout      time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

const subscriberBuffer = 16

type screenSession struct {
	id        string
	profileID int64
	ctx       context.Context
	loop      *loop.Loop
	screen    *numbers.Screen

	mu          sync.Mutex
	lastUsed    time.Time
	subscribers map[int]chan models.Snapshot
	nextSub     int
	closed      bool
}

type screenService struct {
	cfg     ScreenServiceConfig
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.RWMutex
	screens map[string]*screenSession
}

// NewScreenService creates a new ScreenService. ctx outlives every screen and
// carries the logger.
func NewScreenService(ctx context.Context, cfg ScreenServiceConfig) ScreenService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Engine == nil {
		cfg.Engine = func(sched loop.Scheduler, log *logger.Logger) voice.Engine {
			return voice.NewLogEngine(sched, log, 0)
		}
	}
	if cfg.Timings == (numbers.Timings{}) {
		cfg.Timings = numbers.DefaultTimings()
	}
	if cfg.Voice == (voice.Settings{}) {
		cfg.Voice = voice.DefaultSettings()
	}
	baseCtx, cancel := context.WithCancel(ctx)
	return &screenService{
		cfg:     cfg,
		baseCtx: baseCtx,
		cancel:  cancel,
		screens: make(map[string]*screenSession),
	}
}

func (s *screenService) Create(ctx context.Context, profileID int64) (string, models.Snapshot, error) {
	log := logger.FromContext(ctx)
	if profileID == 0 {
		profileID = s.cfg.DefaultProfileID
	}
	log.Debug("creating screen: profile_id=%d", profileID)

	profile, err := s.cfg.Profiles.Get(ctx, profileID)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return "", models.Snapshot{}, errors.NewInternalError(err)
	}
	if profile == nil {
		return "", models.Snapshot{}, errors.NewNotFoundError("profile", profileID)
	}

	id := uuid.NewString()
	screenLog := logger.FromContext(s.baseCtx).WithFields(map[string]any{
		"screen":  id,
		"profile": profileID,
	})
	sess := &screenSession{
		id:          id,
		profileID:   profileID,
		ctx:         logger.NewContext(s.baseCtx, screenLog),
		loop:        loop.New(64),
		lastUsed:    s.cfg.Now(),
		subscribers: make(map[int]chan models.Snapshot),
	}

	announcer := voice.NewAnnouncer(s.cfg.Engine(sess.loop, screenLog), sess.loop, s.cfg.Voice, screenLog)
	sess.screen = numbers.NewScreen(sess.ctx, numbers.Config{
		Progress:  repository.NewProgressRepository(s.cfg.Store, profileID),
		Speaker:   announcer,
		Haptics:   s.cfg.Haptics,
		Scheduler: sess.loop,
		Generator: quiz.NewGenerator(nil),
		Timings:   s.cfg.Timings,
		OnChange:  sess.broadcast,
	})
	sess.loop.Start(sess.ctx)

	var snap models.Snapshot
	if err := sess.loop.Do(ctx, func() {
		sess.screen.Load(sess.ctx)
		snap = sess.screen.Snapshot()
	}); err != nil {
		sess.loop.Stop()
		log.Error("failed to load screen: %v", err)
		return "", models.Snapshot{}, errors.NewInternalError(err)
	}

	s.mu.Lock()
	s.screens[id] = sess
	s.mu.Unlock()

	log.Info("screen created: id=%s profile_id=%d", id, profileID)
	return id, snap, nil
}

func (s *screenService) Get(ctx context.Context, id string) (models.Snapshot, error) {
	return s.Do(ctx, id, func(*numbers.Screen) error { return nil })
}

func (s *screenService) Do(ctx context.Context, id string, action ScreenAction) (models.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return models.Snapshot{}, err
	}
	sess.touch(s.cfg.Now())

	var (
		snap      models.Snapshot
		actionErr error
	)
	if err := sess.loop.Do(ctx, func() {
		actionErr = action(sess.screen)
		snap = sess.screen.Snapshot()
	}); err != nil {
		if err == loop.ErrStopped {
			return models.Snapshot{}, errors.NewNotFoundError("screen", id)
		}
		logger.FromContext(ctx).Error("screen action failed: id=%s err=%v", id, err)
		return models.Snapshot{}, errors.NewInternalError(err)
	}
	return snap, actionErr
}

func (s *screenService) Subscribe(ctx context.Context, id string) (<-chan models.Snapshot, func(), error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	sess.touch(s.cfg.Now())

	ch := make(chan models.Snapshot, subscriberBuffer)
	var key int
	if err := sess.loop.Do(ctx, func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		key = sess.nextSub
		sess.nextSub++
		sess.subscribers[key] = ch
		ch <- sess.screen.Snapshot()
	}); err != nil {
		return nil, nil, errors.NewNotFoundError("screen", id)
	}

	logger.FromContext(ctx).Debug("subscriber %d attached to screen %s", key, id)
	unsubscribe := func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if c, ok := sess.subscribers[key]; ok {
			delete(sess.subscribers, key)
			close(c)
		}
	}
	return ch, unsubscribe, nil
}

func (s *screenService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.screens[id]
	delete(s.screens, id)
	s.mu.Unlock()
	if !ok {
		return errors.NewNotFoundError("screen", id)
	}

	sess.close(ctx)
	logger.FromContext(ctx).Info("screen deleted: id=%s", id)
	return nil
}

// ReapIdle closes screens unused for longer than the idle timeout.
func (s *screenService) ReapIdle(ctx context.Context) int {
	if s.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.cfg.Now().Add(-s.cfg.IdleTimeout)

	var idle []*screenSession
	s.mu.Lock()
	for id, sess := range s.screens {
		if sess.idleSince(cutoff) {
			idle = append(idle, sess)
			delete(s.screens, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		sess.close(ctx)
	}
	if len(idle) > 0 {
		logger.FromContext(ctx).Info("reaped %d idle screens", len(idle))
	}
	return len(idle)
}

func (s *screenService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.screens)
}

// Shutdown closes every screen.
func (s *screenService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	all := make([]*screenSession, 0, len(s.screens))
	for id, sess := range s.screens {
		all = append(all, sess)
		delete(s.screens, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.close(ctx)
	}
	s.cancel()
	logger.FromContext(ctx).Info("closed %d screens", len(all))
}

func (s *screenService) lookup(id string) (*screenSession, error) {
	s.mu.RLock()
	sess, ok := s.screens[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("screen", id)
	}
	return sess, nil
}

// broadcast runs on the screen's loop. Slow subscribers miss snapshots.
func (sess *screenSession) broadcast(snap models.Snapshot) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for key, ch := range sess.subscribers {
		select {
		case ch <- snap:
		default:
			logger.FromContext(sess.ctx).Debug("subscriber %d is behind, dropping snapshot", key)
		}
	}
}

func (sess *screenSession) touch(now time.Time) {
	sess.mu.Lock()
	sess.lastUsed = now
	sess.mu.Unlock()
}

func (sess *screenSession) idleSince(cutoff time.Time) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.lastUsed.Before(cutoff)
}

func (sess *screenSession) close(ctx context.Context) {
	if err := sess.loop.Do(ctx, sess.screen.Close); err != nil {
		logger.FromContext(ctx).Warn("screen %s did not close cleanly: %v", sess.id, err)
	}
	sess.loop.Stop()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.closed = true
	for key, ch := range sess.subscribers {
		delete(sess.subscribers, key)
		close(ch)
	}
}
