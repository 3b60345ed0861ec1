package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vytor/sayilar/internal/logger"
)

type progressRepository struct {
	kv        KeyValueStore
	profileID int64
}

// NewProgressRepository stores progress for profileID in kv. High scores are
// decimal strings and visited numbers a JSON list.
func NewProgressRepository(kv KeyValueStore, profileID int64) ProgressRepository {
	return &progressRepository{kv: kv, profileID: profileID}
}

func (r *progressRepository) HighScore(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	raw, ok, err := r.kv.Get(ctx, r.profileID, KeyHighScore)
	if err != nil {
		return 0, err
	}
	if !ok {
		log.Debug("no stored high score: profile_id=%d", r.profileID)
		return 0, nil
	}
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", KeyHighScore, raw, err)
	}
	if score < 0 {
		return 0, fmt.Errorf("parse %s=%q: negative score", KeyHighScore, raw)
	}
	return score, nil
}

func (r *progressRepository) SaveHighScore(ctx context.Context, score int) error {
	return r.kv.Set(ctx, r.profileID, KeyHighScore, strconv.Itoa(score))
}

func (r *progressRepository) VisitedNumbers(ctx context.Context) ([]int, error) {
	raw, ok, err := r.kv.Get(ctx, r.profileID, KeyVisitedNumbers)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var numbers []int
	if err := json.Unmarshal([]byte(raw), &numbers); err != nil {
		return nil, fmt.Errorf("parse %s: %w", KeyVisitedNumbers, err)
	}
	return numbers, nil
}

func (r *progressRepository) SaveVisitedNumbers(ctx context.Context, numbers []int) error {
	if numbers == nil {
		numbers = []int{}
	}
	b, err := json.Marshal(numbers)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.profileID, KeyVisitedNumbers, string(b))
}
