package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/godilite/rating-report/internal/repository/models"
)

const legacyKeyFilter = `meta_key LIKE '\_rating\_report\_%' ESCAPE '\'`

type PostMetaRepository struct {
	db *sql.DB
}

func NewPostMetaRepository(db *sql.DB) *PostMetaRepository {
	return &PostMetaRepository{db: db}
}

func (r *PostMetaRepository) getMeta(ctx context.Context, postID int64, key string) (string, bool, error) {
	const query = `SELECT meta_value FROM post_meta WHERE post_id = ? AND meta_key = ?`

	var value string
	err := r.db.QueryRowContext(ctx, query, postID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query meta %s: %w", key, err)
	}
	return value, true, nil
}

// GetRatings returns the stored category -> value map of a post. Numbers are
// decoded as json.Number so the aggregator sees them unconverted. A post
// without ratings yields an empty map.
func (r *PostMetaRepository) GetRatings(ctx context.Context, postID int64) (map[string]any, error) {
	raw, ok, err := r.getMeta(ctx, postID, models.MetaKeyRatings)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	ratings := make(map[string]any)
	if err := dec.Decode(&ratings); err != nil {
		return nil, fmt.Errorf("decode ratings for post %d: %w", postID, err)
	}
	return ratings, nil
}

// GetDescriptions returns the per-category descriptions of a post.
func (r *PostMetaRepository) GetDescriptions(ctx context.Context, postID int64) (map[string]string, error) {
	raw, ok, err := r.getMeta(ctx, postID, models.MetaKeyDescriptions)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return map[string]string{}, nil
	}

	descriptions := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &descriptions); err != nil {
		return nil, fmt.Errorf("decode descriptions for post %d: %w", postID, err)
	}
	return descriptions, nil
}

// SaveRatings replaces the ratings blob of a post.
func (r *PostMetaRepository) SaveRatings(ctx context.Context, postID int64, ratings map[string]any) error {
	return r.saveJSON(ctx, postID, models.MetaKeyRatings, ratings)
}

// SaveDescriptions replaces the descriptions blob of a post.
func (r *PostMetaRepository) SaveDescriptions(ctx context.Context, postID int64, descriptions map[string]string) error {
	return r.saveJSON(ctx, postID, models.MetaKeyDescriptions, descriptions)
}

func (r *PostMetaRepository) saveJSON(ctx context.Context, postID int64, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := upsertMeta(ctx, r.db, postID, key, string(data)); err != nil {
		return err
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertMeta(ctx context.Context, db execer, postID int64, key, value string) error {
	const query = `
		INSERT INTO post_meta (post_id, meta_key, meta_value)
		VALUES (?, ?, ?)
		ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value
	`
	if _, err := db.ExecContext(ctx, query, postID, key, value); err != nil {
		return fmt.Errorf("upsert meta %s for post %d: %w", key, postID, err)
	}
	return nil
}

// CountMigrationCandidates counts posts that have legacy rows or were already
// migrated. Migrated posts stay in the set so step offsets remain stable when
// legacy rows are deleted.
func (r *PostMetaRepository) CountMigrationCandidates(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(DISTINCT post_id)
		FROM post_meta
		WHERE ` + legacyKeyFilter + ` OR meta_key = ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, models.MetaKeyMigrated).Scan(&count); err != nil {
		return 0, fmt.Errorf("query CountMigrationCandidates: %w", err)
	}
	return count, nil
}

// ListMigrationCandidates pages through the candidate set ordered by post id.
func (r *PostMetaRepository) ListMigrationCandidates(ctx context.Context, limit, offset int) ([]int64, error) {
	query := `
		SELECT DISTINCT post_id
		FROM post_meta
		WHERE ` + legacyKeyFilter + ` OR meta_key = ?
		ORDER BY post_id
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, models.MetaKeyMigrated, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query ListMigrationCandidates: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ListMigrationCandidates row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListMigrationCandidates: %w", err)
	}
	return ids, nil
}

// GetLegacyRatings returns the old-schema rows of a post, ordered by key.
func (r *PostMetaRepository) GetLegacyRatings(ctx context.Context, postID int64) ([]models.LegacyRating, error) {
	query := `
		SELECT meta_key, meta_value
		FROM post_meta
		WHERE post_id = ? AND ` + legacyKeyFilter + `
		ORDER BY meta_key
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("query GetLegacyRatings: %w", err)
	}
	defer rows.Close()

	var out []models.LegacyRating
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan GetLegacyRatings row: %w", err)
		}
		out = append(out, models.LegacyRating{
			CategoryKey: strings.TrimPrefix(key, models.LegacyMetaPrefix),
			Value:       value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetLegacyRatings: %w", err)
	}
	return out, nil
}

// ApplyMigration writes the merged ratings and the migrated marker, and
// removes the legacy rows of deleteKeys, in one transaction. Legacy rows of
// other categories are kept.
func (r *PostMetaRepository) ApplyMigration(ctx context.Context, postID int64, ratings map[string]any, deleteKeys []string) (err error) {
	data, err := json.Marshal(ratings)
	if err != nil {
		return fmt.Errorf("encode ratings for post %d: %w", postID, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = upsertMeta(ctx, tx, postID, models.MetaKeyRatings, string(data)); err != nil {
		return err
	}
	if err = upsertMeta(ctx, tx, postID, models.MetaKeyMigrated, "1"); err != nil {
		return err
	}
	if len(deleteKeys) > 0 {
		query := `DELETE FROM post_meta WHERE post_id = ? AND meta_key IN (?` + strings.Repeat(", ?", len(deleteKeys)-1) + `)`
		args := make([]any, 0, len(deleteKeys)+1)
		args = append(args, postID)
		for _, k := range deleteKeys {
			args = append(args, models.LegacyMetaPrefix+k)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete legacy rows for post %d: %w", postID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}
	return nil
}
