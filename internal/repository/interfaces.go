package repository

import (
	"context"

	"github.com/vytor/sayilar/internal/models"
)

// Storage keys of the numbers screen.
const (
	KeyHighScore      = "HIGH_SCORE_NUMBERS"
	KeyVisitedNumbers = "VISITED_NUMBERS"
)

// KeyValueStore is durable string storage, partitioned by profile.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, profileID int64, key string) (string, bool, error)
	Set(ctx context.Context, profileID int64, key, value string) error
}

// ProfileRepository handles learner profiles
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, name string) (*models.Profile, error)
	Delete(ctx context.Context, id int64) error
}

// ProgressRepository is the typed view of one learner's stored progress.
type ProgressRepository interface {
	HighScore(ctx context.Context) (int, error)
	SaveHighScore(ctx context.Context, score int) error
	VisitedNumbers(ctx context.Context) ([]int, error)
	SaveVisitedNumbers(ctx context.Context, numbers []int) error
}
