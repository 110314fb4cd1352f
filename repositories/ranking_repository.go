package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pinclub/pin-engine/models"
)

var ErrRankingEntryNotFound = errors.New("ranking entry not found")

type RankingRepository interface {
	// GetOrCreate returns the entry for (scope, player), creating it with the
	// given starting rating when the player has no standing in the scope yet.
	GetOrCreate(ctx context.Context, exec SQLExecutor, scope models.Scope, playerID int, initialRating float64) (*models.RankingEntry, error)
	Update(ctx context.Context, exec SQLExecutor, entry *models.RankingEntry) error
	ListByScope(ctx context.Context, scope models.Scope) ([]*models.RankingEntry, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) exec(e SQLExecutor) SQLExecutor {
	if e != nil {
		return e
	}
	return r.db
}

const rankingColumns = `id, kind, scope_id, player_id, points, rating, played, wins, losses, refereed, streak, position, created_at, updated_at`

func (r *postgresRankingRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, scope models.Scope, playerID int, initialRating float64) (*models.RankingEntry, error) {
	// The no-op conflict update makes RETURNING yield the existing row.
	query := `
		INSERT INTO ranking_entries (kind, scope_id, player_id, rating)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, scope_id, player_id) DO UPDATE SET updated_at = ranking_entries.updated_at
		RETURNING ` + rankingColumns

	entry := &models.RankingEntry{}
	err := scanRankingEntry(r.exec(exec).QueryRowContext(ctx, query, scope.Kind, scope.ID, playerID, initialRating), entry)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create ranking entry for player %d: %w", playerID, err)
	}
	return entry, nil
}

func (r *postgresRankingRepository) Update(ctx context.Context, exec SQLExecutor, entry *models.RankingEntry) error {
	query := `
		UPDATE ranking_entries
		SET points = $1, rating = $2, played = $3, wins = $4, losses = $5,
		    refereed = $6, streak = $7, position = $8, updated_at = now()
		WHERE id = $9`

	result, err := r.exec(exec).ExecContext(ctx, query,
		entry.Points,
		entry.Rating,
		entry.Played,
		entry.Wins,
		entry.Losses,
		entry.Refereed,
		entry.Streak,
		entry.Position,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ranking entry %d: %w", entry.ID, err)
	}
	return checkAffectedRows(result, ErrRankingEntryNotFound)
}

func (r *postgresRankingRepository) ListByScope(ctx context.Context, scope models.Scope) ([]*models.RankingEntry, error) {
	query := `SELECT ` + rankingColumns + `
		FROM ranking_entries
		WHERE kind = $1 AND scope_id = $2
		ORDER BY points DESC, losses ASC, created_at ASC, player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, scope.Kind, scope.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.RankingEntry, 0)
	for rows.Next() {
		entry := &models.RankingEntry{}
		if err := scanRankingEntryRows(rows, entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ranking rows iteration: %w", err)
	}
	return entries, nil
}

func scanRankingEntry(row *sql.Row, entry *models.RankingEntry) error {
	return row.Scan(
		&entry.ID, &entry.Kind, &entry.ScopeID, &entry.PlayerID,
		&entry.Points, &entry.Rating, &entry.Played, &entry.Wins, &entry.Losses,
		&entry.Refereed, &entry.Streak, &entry.Position,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
}

func scanRankingEntryRows(rows *sql.Rows, entry *models.RankingEntry) error {
	err := rows.Scan(
		&entry.ID, &entry.Kind, &entry.ScopeID, &entry.PlayerID,
		&entry.Points, &entry.Rating, &entry.Played, &entry.Wins, &entry.Losses,
		&entry.Refereed, &entry.Streak, &entry.Position,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to scan ranking entry row: %w", err)
	}
	return nil
}
