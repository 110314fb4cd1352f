package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pinclub/pin-engine/models"
)

var (
	ErrSeasonNotFound       = errors.New("season not found")
	ErrSeasonStateConflict  = errors.New("season is not in the expected state")
	ErrCloseResultNotFound  = errors.New("season close result not found")
	ErrCloseResultConflict  = errors.New("season close result already exists")
)

type SeasonRepository interface {
	Create(ctx context.Context, exec SQLExecutor, season *models.RapidSeason) error
	GetByID(ctx context.Context, id int) (*models.RapidSeason, error)
	List(ctx context.Context) ([]*models.RapidSeason, error)
	// CloseActive flips active -> closed, conditioned on the season still
	// being active; ErrSeasonStateConflict otherwise.
	CloseActive(ctx context.Context, exec SQLExecutor, id int) error
	SaveCloseResult(ctx context.Context, exec SQLExecutor, result *models.SeasonCloseResult) error
	GetCloseResult(ctx context.Context, seasonID int) (*models.SeasonCloseResult, error)
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) exec(e SQLExecutor) SQLExecutor {
	if e != nil {
		return e
	}
	return r.db
}

const seasonColumns = `id, league_id, name, state, starts_at, ends_at, created_at`

func (r *postgresSeasonRepository) Create(ctx context.Context, exec SQLExecutor, season *models.RapidSeason) error {
	query := `
		INSERT INTO rapid_seasons (league_id, name, state, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		season.LeagueID,
		season.Name,
		season.State,
		season.StartsAt,
		season.EndsAt,
	).Scan(&season.ID, &season.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert season: %w", err)
	}
	return nil
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.RapidSeason, error) {
	query := `SELECT ` + seasonColumns + ` FROM rapid_seasons WHERE id = $1`

	season := &models.RapidSeason{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&season.ID, &season.LeagueID, &season.Name, &season.State,
		&season.StartsAt, &season.EndsAt, &season.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan season %d: %w", id, err)
	}
	return season, nil
}

func (r *postgresSeasonRepository) List(ctx context.Context) ([]*models.RapidSeason, error) {
	query := `SELECT ` + seasonColumns + ` FROM rapid_seasons ORDER BY starts_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	defer rows.Close()

	seasons := make([]*models.RapidSeason, 0)
	for rows.Next() {
		season := &models.RapidSeason{}
		if err := rows.Scan(
			&season.ID, &season.LeagueID, &season.Name, &season.State,
			&season.StartsAt, &season.EndsAt, &season.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan season row: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during season rows iteration: %w", err)
	}
	return seasons, nil
}

func (r *postgresSeasonRepository) CloseActive(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE rapid_seasons SET state = $1 WHERE id = $2 AND state = $3`

	result, err := r.exec(exec).ExecContext(ctx, query, models.SeasonClosed, id, models.SeasonActive)
	if err != nil {
		return fmt.Errorf("failed to close season %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSeasonStateConflict)
}

func (r *postgresSeasonRepository) SaveCloseResult(ctx context.Context, exec SQLExecutor, result *models.SeasonCloseResult) error {
	playerJSON, err := json.Marshal(result.PlayerResults)
	if err != nil {
		return fmt.Errorf("failed to marshal player results: %w", err)
	}
	refereeJSON, err := json.Marshal(result.RefereeResults)
	if err != nil {
		return fmt.Errorf("failed to marshal referee results: %w", err)
	}

	query := `
		INSERT INTO season_close_results (season_id, closed_at, player_results, referee_results, total_matches)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.exec(exec).ExecContext(ctx, query,
		result.SeasonID, result.ClosedAt, playerJSON, refereeJSON, result.TotalMatches)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "season_close_results_season_id_key" {
			return ErrCloseResultConflict
		}
		return fmt.Errorf("failed to insert close result for season %d: %w", result.SeasonID, err)
	}
	return nil
}

func (r *postgresSeasonRepository) GetCloseResult(ctx context.Context, seasonID int) (*models.SeasonCloseResult, error) {
	query := `
		SELECT season_id, closed_at, player_results, referee_results, total_matches
		FROM season_close_results WHERE season_id = $1`

	result := &models.SeasonCloseResult{}
	var playerJSON, refereeJSON []byte
	err := r.db.QueryRowContext(ctx, query, seasonID).Scan(
		&result.SeasonID, &result.ClosedAt, &playerJSON, &refereeJSON, &result.TotalMatches,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCloseResultNotFound
		}
		return nil, fmt.Errorf("failed to scan close result for season %d: %w", seasonID, err)
	}

	if err := json.Unmarshal(playerJSON, &result.PlayerResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player results: %w", err)
	}
	if err := json.Unmarshal(refereeJSON, &result.RefereeResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal referee results: %w", err)
	}
	return result, nil
}
