package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pinclub/pin-engine/models"
)

var (
	ErrBracketMatchNotFound   = errors.New("bracket match not found")
	ErrBracketMatchNotPending = errors.New("bracket match is not pending")
)

type BracketMatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.BracketMatch) error
	Get(ctx context.Context, tournamentID int, uid string) (*models.BracketMatch, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.BracketMatch, error)
	// FinishPending records the result and flips pending -> finished,
	// conditioned on the match still being pending, so two concurrent
	// submissions cannot both advance a winner.
	FinishPending(ctx context.Context, exec SQLExecutor, tournamentID int, uid string, winnerID, scoreA, scoreB int) error
	// SetSlot places a player into slot 1 or 2 of a match.
	SetSlot(ctx context.Context, exec SQLExecutor, tournamentID int, uid string, slot, playerID int) error
}

type postgresBracketMatchRepository struct {
	db *sql.DB
}

func NewPostgresBracketMatchRepository(db *sql.DB) BracketMatchRepository {
	return &postgresBracketMatchRepository{db: db}
}

func (r *postgresBracketMatchRepository) exec(e SQLExecutor) SQLExecutor {
	if e != nil {
		return e
	}
	return r.db
}

const bracketMatchColumns = `tournament_id, uid, round, order_in_round, slot_a, slot_b, winner_id, score_a, score_b, state`

func (r *postgresBracketMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.BracketMatch) error {
	query := `
		INSERT INTO bracket_matches
			(tournament_id, uid, round, order_in_round, slot_a, slot_b, winner_id, score_a, score_b, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	e := r.exec(exec)
	for _, m := range matches {
		if _, err := e.ExecContext(ctx, query,
			m.TournamentID, m.UID, m.Round, m.OrderInRound,
			m.SlotA, m.SlotB, m.WinnerID, m.ScoreA, m.ScoreB, m.State,
		); err != nil {
			return fmt.Errorf("failed to insert bracket match %s for tournament %d: %w", m.UID, m.TournamentID, err)
		}
	}
	return nil
}

func (r *postgresBracketMatchRepository) Get(ctx context.Context, tournamentID int, uid string) (*models.BracketMatch, error) {
	query := `SELECT ` + bracketMatchColumns + ` FROM bracket_matches WHERE tournament_id = $1 AND uid = $2`

	m := &models.BracketMatch{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, uid).Scan(
		&m.TournamentID, &m.UID, &m.Round, &m.OrderInRound,
		&m.SlotA, &m.SlotB, &m.WinnerID, &m.ScoreA, &m.ScoreB, &m.State,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket match %s: %w", uid, err)
	}
	return m, nil
}

func (r *postgresBracketMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.BracketMatch, error) {
	query := `SELECT ` + bracketMatchColumns + `
		FROM bracket_matches
		WHERE tournament_id = $1
		ORDER BY round ASC, order_in_round ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bracket matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.BracketMatch, 0)
	for rows.Next() {
		m := &models.BracketMatch{}
		if err := rows.Scan(
			&m.TournamentID, &m.UID, &m.Round, &m.OrderInRound,
			&m.SlotA, &m.SlotB, &m.WinnerID, &m.ScoreA, &m.ScoreB, &m.State,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bracket match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresBracketMatchRepository) FinishPending(ctx context.Context, exec SQLExecutor, tournamentID int, uid string, winnerID, scoreA, scoreB int) error {
	query := `
		UPDATE bracket_matches
		SET state = $1, winner_id = $2, score_a = $3, score_b = $4
		WHERE tournament_id = $5 AND uid = $6 AND state = $7`

	result, err := r.exec(exec).ExecContext(ctx, query,
		models.BracketFinished, winnerID, scoreA, scoreB,
		tournamentID, uid, models.BracketPending,
	)
	if err != nil {
		return fmt.Errorf("failed to finish bracket match %s: %w", uid, err)
	}
	return checkAffectedRows(result, ErrBracketMatchNotPending)
}

func (r *postgresBracketMatchRepository) SetSlot(ctx context.Context, exec SQLExecutor, tournamentID int, uid string, slot, playerID int) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE bracket_matches SET slot_a = $1 WHERE tournament_id = $2 AND uid = $3`
	case 2:
		query = `UPDATE bracket_matches SET slot_b = $1 WHERE tournament_id = $2 AND uid = $3`
	default:
		return fmt.Errorf("invalid slot %d for bracket match %s", slot, uid)
	}

	result, err := r.exec(exec).ExecContext(ctx, query, playerID, tournamentID, uid)
	if err != nil {
		return fmt.Errorf("failed to set slot %d of bracket match %s: %w", slot, uid, err)
	}
	return checkAffectedRows(result, ErrBracketMatchNotFound)
}
