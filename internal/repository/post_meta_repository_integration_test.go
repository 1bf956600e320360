package repository_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/rating-report/internal/repository"
	"github.com/godilite/rating-report/internal/repository/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, repository.EnsureSchema(context.Background(), db))
	// running twice must be harmless
	require.NoError(t, repository.EnsureSchema(context.Background(), db))

	t.Cleanup(func() { db.Close() })
	return db
}

func seedMeta(t *testing.T, db *sql.DB, postID int64, key, value string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO post_meta (post_id, meta_key, meta_value) VALUES (?, ?, ?)`, postID, key, value)
	require.NoError(t, err)
}

func TestPostMetaRepository_Ratings(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewPostMetaRepository(db)

	seedMeta(t, db, 1, models.MetaKeyRatings, `{"plot": 4, "cover": 3.5}`)
	seedMeta(t, db, 1, models.MetaKeyDescriptions, `{"plot": "Twisty"}`)
	seedMeta(t, db, 2, models.MetaKeyRatings, `not json`)

	t.Run("GetRatings decodes numbers as json.Number", func(t *testing.T) {
		ratings, err := repo.GetRatings(ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, json.Number("4"), ratings["plot"])
		assert.Equal(t, json.Number("3.5"), ratings["cover"])
	})

	t.Run("GetRatings for a post without meta", func(t *testing.T) {
		ratings, err := repo.GetRatings(ctx, 99)
		require.NoError(t, err)
		assert.Empty(t, ratings)
	})

	t.Run("GetRatings with corrupt blob", func(t *testing.T) {
		_, err := repo.GetRatings(ctx, 2)
		assert.Error(t, err)
	})

	t.Run("GetDescriptions", func(t *testing.T) {
		descs, err := repo.GetDescriptions(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"plot": "Twisty"}, descs)

		descs, err = repo.GetDescriptions(ctx, 99)
		require.NoError(t, err)
		assert.Empty(t, descs)
	})

	t.Run("SaveRatings overwrites", func(t *testing.T) {
		require.NoError(t, repo.SaveRatings(ctx, 3, map[string]any{"plot": 2}))
		require.NoError(t, repo.SaveRatings(ctx, 3, map[string]any{"plot": 5}))
		require.NoError(t, repo.SaveDescriptions(ctx, 3, map[string]string{"plot": "Better"}))

		ratings, err := repo.GetRatings(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, json.Number("5"), ratings["plot"])

		descs, err := repo.GetDescriptions(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Better", descs["plot"])
	})
}

func TestPostMetaRepository_Migration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewPostMetaRepository(db)

	seedMeta(t, db, 10, "_rating_report_plot", "4")
	seedMeta(t, db, 10, "_rating_report_cover", "3")
	seedMeta(t, db, 20, "_rating_report_plot", "5")
	seedMeta(t, db, 30, models.MetaKeyRatings, `{"plot": 1}`)
	seedMeta(t, db, 40, "_edit_lock", "123")

	t.Run("candidates include only legacy posts", func(t *testing.T) {
		count, err := repo.CountMigrationCandidates(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		ids, err := repo.ListMigrationCandidates(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 20}, ids)

		ids, err = repo.ListMigrationCandidates(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{20}, ids)
	})

	t.Run("GetLegacyRatings strips the prefix", func(t *testing.T) {
		legacy, err := repo.GetLegacyRatings(ctx, 10)
		require.NoError(t, err)

		assert.Equal(t, []models.LegacyRating{
			{CategoryKey: "cover", Value: "3"},
			{CategoryKey: "plot", Value: "4"},
		}, legacy)
	})

	t.Run("ApplyMigration keeps the post in the candidate set", func(t *testing.T) {
		err := repo.ApplyMigration(ctx, 10, map[string]any{"plot": 4.0, "cover": 3.0}, []string{"plot", "cover"})
		require.NoError(t, err)

		legacy, err := repo.GetLegacyRatings(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, legacy)

		ratings, err := repo.GetRatings(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, json.Number("4"), ratings["plot"])

		count, err := repo.CountMigrationCandidates(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("ApplyMigration without delete keeps legacy rows", func(t *testing.T) {
		err := repo.ApplyMigration(ctx, 20, map[string]any{"plot": 5.0}, nil)
		require.NoError(t, err)

		legacy, err := repo.GetLegacyRatings(ctx, 20)
		require.NoError(t, err)
		assert.Len(t, legacy, 1)
	})

	t.Run("ApplyMigration deletes only the given legacy keys", func(t *testing.T) {
		seedMeta(t, db, 50, "_rating_report_plot", "4")
		seedMeta(t, db, 50, "_rating_report_cover", "n/a")

		err := repo.ApplyMigration(ctx, 50, map[string]any{"plot": 4.0}, []string{"plot"})
		require.NoError(t, err)

		legacy, err := repo.GetLegacyRatings(ctx, 50)
		require.NoError(t, err)
		assert.Equal(t, []models.LegacyRating{{CategoryKey: "cover", Value: "n/a"}}, legacy)
	})
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewSettingsRepository(db)

	require.NoError(t, repo.SetOption(ctx, "max_rating", 10))
	require.NoError(t, repo.SetOption(ctx, "rating_type", "icons"))
	require.NoError(t, repo.SetOption(ctx, "rating_type", "images"))
	_, err := db.Exec(`INSERT INTO options (name, value) VALUES ('table_title', 'My Report')`)
	require.NoError(t, err)

	opts, err := repo.GetOptions(ctx)
	require.NoError(t, err)

	assert.JSONEq(t, `10`, string(opts["max_rating"]))
	assert.JSONEq(t, `"images"`, string(opts["rating_type"]))
	assert.JSONEq(t, `"My Report"`, string(opts["table_title"]))
}
