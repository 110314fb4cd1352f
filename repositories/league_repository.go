package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pinclub/pin-engine/models"
)

var ErrLeagueNotFound = errors.New("league not found")

type LeagueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) exec(e SQLExecutor) SQLExecutor {
	if e != nil {
		return e
	}
	return r.db
}

func (r *postgresLeagueRepository) Create(ctx context.Context, exec SQLExecutor, league *models.League) error {
	query := `
		INSERT INTO leagues (name, mode, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query, league.Name, league.Mode, league.Active).
		Scan(&league.ID, &league.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `SELECT id, name, mode, active, created_at FROM leagues WHERE id = $1`

	league := &models.League{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&league.ID,
		&league.Name,
		&league.Mode,
		&league.Active,
		&league.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league %d: %w", id, err)
	}
	return league, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	query := `SELECT id, name, mode, active, created_at FROM leagues ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		league := &models.League{}
		if err := rows.Scan(&league.ID, &league.Name, &league.Mode, &league.Active, &league.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan league row: %w", err)
		}
		leagues = append(leagues, league)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during league rows iteration: %w", err)
	}
	return leagues, nil
}
