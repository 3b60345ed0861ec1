package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/sayilar/internal/repository"
	"github.com/vytor/sayilar/internal/repository/sqlite"
	"github.com/vytor/sayilar/internal/testutil"
)

type KeyValueStoreSuite struct {
	suite.Suite
	db        *sql.DB
	store     repository.KeyValueStore
	profileID int64
}

func (s *KeyValueStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewKeyValueStore(s.db)
	s.profileID = testutil.NewProfile(s.T(), s.db, "ayse")
}

func (s *KeyValueStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *KeyValueStoreSuite) TestGetMissing() {
	value, ok, err := s.store.Get(context.Background(), s.profileID, repository.KeyHighScore)
	s.Require().NoError(err)
	s.Assert().False(ok)
	s.Assert().Empty(value)
}

func (s *KeyValueStoreSuite) TestSetAndOverwrite() {
	ctx := context.Background()

	s.Require().NoError(s.store.Set(ctx, s.profileID, repository.KeyHighScore, "3"))
	s.Require().NoError(s.store.Set(ctx, s.profileID, repository.KeyHighScore, "5"))

	value, ok, err := s.store.Get(ctx, s.profileID, repository.KeyHighScore)
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().Equal("5", value)

	var rows int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM kv_entries`).Scan(&rows))
	s.Assert().Equal(1, rows)
}

func (s *KeyValueStoreSuite) TestProfilesAreIsolated() {
	ctx := context.Background()
	other := testutil.NewProfile(s.T(), s.db, "mehmet")

	s.Require().NoError(s.store.Set(ctx, s.profileID, repository.KeyVisitedNumbers, "[1,2]"))

	_, ok, err := s.store.Get(ctx, other, repository.KeyVisitedNumbers)
	s.Require().NoError(err)
	s.Assert().False(ok)
}

func (s *KeyValueStoreSuite) TestUnknownProfileRejected() {
	err := s.store.Set(context.Background(), 9999, repository.KeyHighScore, "1")
	s.Assert().Error(err, "foreign key should reject unknown profile")
}

func (s *KeyValueStoreSuite) TestProgressRepositoryOverSQLite() {
	ctx := context.Background()
	progress := repository.NewProgressRepository(s.store, s.profileID)

	s.Require().NoError(progress.SaveHighScore(ctx, 8))
	s.Require().NoError(progress.SaveVisitedNumbers(ctx, []int{0, 4, 7}))

	score, err := progress.HighScore(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(8, score)

	visited, err := progress.VisitedNumbers(ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]int{0, 4, 7}, visited)
}

func TestKeyValueStoreSuite(t *testing.T) {
	suite.Run(t, new(KeyValueStoreSuite))
}
