package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/models"
	"github.com/vytor/sayilar/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Upsert(ctx context.Context, name string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("upserting profile: name=%s", name)

	insert, args, err := sqlBuilder.
		Insert("profiles").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT(name) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, insert, args...); err != nil {
		log.Error("failed to upsert profile: %v", err)
		return nil, err
	}

	query, args, err := sqlBuilder.
		Select("id", "name", "created_at").
		From("profiles").
		Where("name = ?", name).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		log.Error("failed to load upserted profile: %v", err)
		return nil, err
	}
	log.Debug("profile upserted: id=%d", p.ID)
	return &p, nil
}

func (r *profileRepository) Get(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%d", id)

	query, args, err := sqlBuilder.
		Select("id", "name", "created_at").
		From("profiles").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Profile
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles")

	query, args, err := sqlBuilder.
		Select("id", "name", "created_at").
		From("profiles").
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			log.Error("failed to scan profile: %v", err)
			return nil, err
		}
		out = append(out, p)
	}
	log.Debug("found %d profiles", len(out))
	return out, rows.Err()
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("deleting profile: id=%d", id)

	query, args, err := sqlBuilder.
		Delete("profiles").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete profile: %v", err)
		return err
	}
	return nil
}
