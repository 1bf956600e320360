package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/godilite/rating-report/internal/repository/models"
)

// SettingsRepository reads and writes plugin options. Values are JSON.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetOptions loads every option. Rows whose value is not valid JSON are
// treated as plain strings.
func (r *SettingsRepository) GetOptions(ctx context.Context) (models.Options, error) {
	const query = `SELECT name, value FROM options`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query GetOptions: %w", err)
	}
	defer rows.Close()

	opts := make(models.Options)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan GetOptions row: %w", err)
		}
		if json.Valid([]byte(value)) {
			opts[name] = json.RawMessage(value)
			continue
		}
		quoted, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode option %s: %w", name, err)
		}
		opts[name] = quoted
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetOptions: %w", err)
	}
	return opts, nil
}

// SetOption stores value as JSON under name.
func (r *SettingsRepository) SetOption(ctx context.Context, name string, value any) error {
	const query = `
		INSERT INTO options (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode option %s: %w", name, err)
	}
	if _, err := r.db.ExecContext(ctx, query, name, string(data)); err != nil {
		return fmt.Errorf("upsert option %s: %w", name, err)
	}
	return nil
}
