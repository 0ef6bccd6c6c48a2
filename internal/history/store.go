// internal/history/store.go
package history

import (
	"context"
	"database/sql"
	"encoding/json"

	standarderrors "green-genie/internal/common/errors"
	"green-genie/internal/common/logger"
	"green-genie/internal/models"
)

// Store persists completed interactions in Postgres.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "history_store"}),
	}
}

// EnsureSchema creates the interactions table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS interactions (
			id          TEXT PRIMARY KEY,
			sector      TEXT NOT NULL,
			risk        TEXT NOT NULL,
			free_text   TEXT NOT NULL DEFAULT '',
			prompt      TEXT NOT NULL,
			companies   JSONB NOT NULL DEFAULT '[]',
			explanation TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return standarderrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

// Insert writes one interaction.
func (s *Store) Insert(ctx context.Context, it models.Interaction) error {
	companies, err := json.Marshal(it.Companies)
	if err != nil {
		return standarderrors.NewHistoryWriteFailedError(err)
	}

	const stmt = `
		INSERT INTO interactions (id, sector, risk, free_text, prompt, companies, explanation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := s.db.ExecContext(ctx, stmt,
		it.ID, it.Sector, it.Risk, it.FreeText, it.Prompt, companies, it.Explanation, it.CreatedAt,
	); err != nil {
		s.logger.Error("interaction insert failed", map[string]interface{}{
			"interaction_id": it.ID,
			"error":          err.Error(),
		})
		return standarderrors.NewHistoryWriteFailedError(err)
	}
	return nil
}

// Recent returns the most recent interactions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, sector, risk, free_text, prompt, companies, explanation, created_at
		FROM interactions
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, standarderrors.NewHistoryQueryFailedError(err)
	}
	defer rows.Close()

	var out []models.Interaction
	for rows.Next() {
		it, err := scanInteraction(rows)
		if err != nil {
			return nil, standarderrors.NewHistoryQueryFailedError(err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, standarderrors.NewHistoryQueryFailedError(err)
	}
	return out, nil
}

// Get returns one interaction by ID.
func (s *Store) Get(ctx context.Context, id string) (models.Interaction, error) {
	const query = `
		SELECT id, sector, risk, free_text, prompt, companies, explanation, created_at
		FROM interactions
		WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, id)

	it, err := scanInteraction(row)
	if err == sql.ErrNoRows {
		return models.Interaction{}, standarderrors.NewInteractionNotFoundError(id)
	}
	if err != nil {
		return models.Interaction{}, standarderrors.NewHistoryQueryFailedError(err)
	}
	return it, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInteraction(row rowScanner) (models.Interaction, error) {
	var it models.Interaction
	var companies []byte
	if err := row.Scan(&it.ID, &it.Sector, &it.Risk, &it.FreeText, &it.Prompt,
		&companies, &it.Explanation, &it.CreatedAt); err != nil {
		return models.Interaction{}, err
	}
	if len(companies) > 0 {
		if err := json.Unmarshal(companies, &it.Companies); err != nil {
			return models.Interaction{}, err
		}
	}
	return it, nil
}
