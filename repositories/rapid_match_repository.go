package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pinclub/pin-engine/models"
)

var (
	ErrRapidMatchNotFound   = errors.New("rapid match not found")
	ErrRapidMatchNotPending = errors.New("rapid match is not pending")
)

type RapidMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.RapidMatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RapidMatch, error)
	// ConfirmPending transitions pending -> validated and sets the points in
	// the same statement, conditioned on the match still being pending. It
	// returns ErrRapidMatchNotPending when another caller already confirmed.
	ConfirmPending(ctx context.Context, exec SQLExecutor, id uuid.UUID, confirmerID int, winnerPts, loserPts, refereePts int, validatedAt time.Time) error
	ListBySeason(ctx context.Context, seasonID int, state *models.RapidMatchState) ([]*models.RapidMatch, error)
	ListPendingForParticipant(ctx context.Context, playerID int) ([]*models.RapidMatch, error)
	// ListValidatedBetween returns validated matches where both players took
	// part, most recent first.
	ListValidatedBetween(ctx context.Context, playerA, playerB, limit int) ([]*models.RapidMatch, error)
	CountValidatedBySeason(ctx context.Context, seasonID int) (int, error)
}

type postgresRapidMatchRepository struct {
	db *sql.DB
}

func NewPostgresRapidMatchRepository(db *sql.DB) RapidMatchRepository {
	return &postgresRapidMatchRepository{db: db}
}

func (r *postgresRapidMatchRepository) exec(e SQLExecutor) SQLExecutor {
	if e != nil {
		return e
	}
	return r.db
}

const rapidMatchColumns = `id, season_id, player_a_id, player_b_id, referee_id, winner_id,
	score_winner, score_loser, registrant_id, confirmer_id, state,
	winner_points, loser_points, referee_points, created_at, validated_at`

func (r *postgresRapidMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.RapidMatch) error {
	query := `
		INSERT INTO rapid_matches
			(id, season_id, player_a_id, player_b_id, referee_id, winner_id,
			 score_winner, score_loser, registrant_id, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		match.ID,
		match.SeasonID,
		match.PlayerAID,
		match.PlayerBID,
		match.RefereeID,
		match.WinnerID,
		match.ScoreWinner,
		match.ScoreLoser,
		match.RegistrantID,
		match.State,
	).Scan(&match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rapid match: %w", err)
	}
	return nil
}

func (r *postgresRapidMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RapidMatch, error) {
	query := `SELECT ` + rapidMatchColumns + ` FROM rapid_matches WHERE id = $1`

	match := &models.RapidMatch{}
	err := scanRapidMatchRow(r.db.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRapidMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan rapid match %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresRapidMatchRepository) ConfirmPending(ctx context.Context, exec SQLExecutor, id uuid.UUID, confirmerID int, winnerPts, loserPts, refereePts int, validatedAt time.Time) error {
	query := `
		UPDATE rapid_matches
		SET state = $1, confirmer_id = $2, winner_points = $3, loser_points = $4,
		    referee_points = $5, validated_at = $6
		WHERE id = $7 AND state = $8`

	result, err := r.exec(exec).ExecContext(ctx, query,
		models.RapidMatchValidated,
		confirmerID,
		winnerPts,
		loserPts,
		refereePts,
		validatedAt,
		id,
		models.RapidMatchPending,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm rapid match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrRapidMatchNotPending)
}

func (r *postgresRapidMatchRepository) ListBySeason(ctx context.Context, seasonID int, state *models.RapidMatchState) ([]*models.RapidMatch, error) {
	query := `SELECT ` + rapidMatchColumns + ` FROM rapid_matches WHERE season_id = $1`
	args := []interface{}{seasonID}
	if state != nil {
		query += ` AND state = $2`
		args = append(args, *state)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryRapidMatches(ctx, query, args...)
}

func (r *postgresRapidMatchRepository) ListPendingForParticipant(ctx context.Context, playerID int) ([]*models.RapidMatch, error) {
	query := `SELECT ` + rapidMatchColumns + `
		FROM rapid_matches
		WHERE state = $1 AND (player_a_id = $2 OR player_b_id = $2 OR referee_id = $2)
		ORDER BY created_at DESC`

	return r.queryRapidMatches(ctx, query, models.RapidMatchPending, playerID)
}

func (r *postgresRapidMatchRepository) ListValidatedBetween(ctx context.Context, playerA, playerB, limit int) ([]*models.RapidMatch, error) {
	query := `SELECT ` + rapidMatchColumns + `
		FROM rapid_matches
		WHERE state = $1
		  AND ((player_a_id = $2 AND player_b_id = $3) OR (player_a_id = $3 AND player_b_id = $2))
		ORDER BY validated_at DESC
		LIMIT $4`

	return r.queryRapidMatches(ctx, query, models.RapidMatchValidated, playerA, playerB, limit)
}

func (r *postgresRapidMatchRepository) CountValidatedBySeason(ctx context.Context, seasonID int) (int, error) {
	query := `SELECT count(*) FROM rapid_matches WHERE season_id = $1 AND state = $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, seasonID, models.RapidMatchValidated).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count validated matches for season %d: %w", seasonID, err)
	}
	return count, nil
}

func (r *postgresRapidMatchRepository) queryRapidMatches(ctx context.Context, query string, args ...interface{}) ([]*models.RapidMatch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rapid matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.RapidMatch, 0)
	for rows.Next() {
		match := &models.RapidMatch{}
		if err := scanRapidMatchRows(rows, match); err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rapid match rows iteration: %w", err)
	}
	return matches, nil
}

func scanRapidMatchRow(row *sql.Row, match *models.RapidMatch) error {
	return row.Scan(
		&match.ID, &match.SeasonID, &match.PlayerAID, &match.PlayerBID, &match.RefereeID,
		&match.WinnerID, &match.ScoreWinner, &match.ScoreLoser, &match.RegistrantID,
		&match.ConfirmerID, &match.State,
		&match.WinnerPoints, &match.LoserPoints, &match.RefereePoints,
		&match.CreatedAt, &match.ValidatedAt,
	)
}

func scanRapidMatchRows(rows *sql.Rows, match *models.RapidMatch) error {
	err := rows.Scan(
		&match.ID, &match.SeasonID, &match.PlayerAID, &match.PlayerBID, &match.RefereeID,
		&match.WinnerID, &match.ScoreWinner, &match.ScoreLoser, &match.RegistrantID,
		&match.ConfirmerID, &match.State,
		&match.WinnerPoints, &match.LoserPoints, &match.RefereePoints,
		&match.CreatedAt, &match.ValidatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to scan rapid match row: %w", err)
	}
	return nil
}
