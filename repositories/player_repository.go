package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pinclub/pin-engine/models"
)

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerEmailConflict = errors.New("player email is already in use")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByEmail(ctx context.Context, email string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	// UpdateAggregates persists rating, win/loss/referee counters and streak.
	UpdateAggregates(ctx context.Context, exec SQLExecutor, player *models.Player) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) exec(e SQLExecutor) SQLExecutor {
	if e != nil {
		return e
	}
	return r.db
}

const playerColumns = `id, display_name, email, password_hash, role, rating, wins, losses, refereed, streak, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (display_name, email, password_hash, role, rating, wins, losses, refereed, streak)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		player.DisplayName,
		player.Email,
		player.PasswordHash,
		player.Role,
		player.Rating,
		player.Wins,
		player.Losses,
		player.Refereed,
		player.Streak,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "players_email_key" {
			return ErrPlayerEmailConflict
		}
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE email = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresPlayerRepository) scanPlayer(row *sql.Row) (*models.Player, error) {
	player := &models.Player{}
	err := row.Scan(
		&player.ID,
		&player.DisplayName,
		&player.Email,
		&player.PasswordHash,
		&player.Role,
		&player.Rating,
		&player.Wins,
		&player.Losses,
		&player.Refereed,
		&player.Streak,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY display_name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player := &models.Player{}
		if err := rows.Scan(
			&player.ID,
			&player.DisplayName,
			&player.Email,
			&player.PasswordHash,
			&player.Role,
			&player.Rating,
			&player.Wins,
			&player.Losses,
			&player.Refereed,
			&player.Streak,
			&player.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateAggregates(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		UPDATE players
		SET rating = $1, wins = $2, losses = $3, refereed = $4, streak = $5
		WHERE id = $6`

	result, err := r.exec(exec).ExecContext(ctx, query,
		player.Rating,
		player.Wins,
		player.Losses,
		player.Refereed,
		player.Streak,
		player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %d aggregates: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
