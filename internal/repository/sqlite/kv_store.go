package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/repository"
)

type keyValueStore struct {
	db *sql.DB
}

// NewKeyValueStore creates a KeyValueStore backed by the kv_entries table
func NewKeyValueStore(db *sql.DB) repository.KeyValueStore {
	return &keyValueStore{db: db}
}

func (s *keyValueStore) Get(ctx context.Context, profileID int64, key string) (string, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("reading key: profile_id=%d, key=%s", profileID, key)

	query, args, err := sqlBuilder.
		Select("entry_value").
		From("kv_entries").
		Where(squirrel.Eq{"profile_id": profileID, "entry_key": key}).
		ToSql()
	if err != nil {
		log.Error("failed to build select: %v", err)
		return "", false, err
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("key not found: profile_id=%d, key=%s", profileID, key)
		return "", false, nil
	}
	if err != nil {
		log.Error("failed to read key %s: %v", key, err)
		return "", false, err
	}
	return value, true, nil
}

func (s *keyValueStore) Set(ctx context.Context, profileID int64, key, value string) error {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("writing key: profile_id=%d, key=%s", profileID, key)

	query, args, err := sqlBuilder.
		Insert("kv_entries").
		Columns("profile_id", "entry_key", "entry_value").
		Values(profileID, key, value).
		Suffix("ON CONFLICT(profile_id, entry_key) DO UPDATE SET entry_value = excluded.entry_value, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		log.Error("failed to build upsert: %v", err)
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to write key %s: %v", key, err)
		return err
	}
	return nil
}
