package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pinclub/pin-engine/models"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentStatusConflict = errors.New("tournament is not in the expected status")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Tournament, error)
	// TransitionStatus moves from -> to, conditioned on the tournament still
	// holding the from status; ErrTournamentStatusConflict otherwise.
	TransitionStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TournamentStatus) error
	SetRounds(ctx context.Context, exec SQLExecutor, id, rounds int) error
	SetChampion(ctx context.Context, exec SQLExecutor, id, playerID int) error
	SaveParticipants(ctx context.Context, exec SQLExecutor, tournamentID int, participants []models.Participant) error
	ListParticipants(ctx context.Context, tournamentID int) ([]models.Participant, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) exec(e SQLExecutor) SQLExecutor {
	if e != nil {
		return e
	}
	return r.db
}

const tournamentColumns = `id, league_id, name, status, start_date, third_place, rounds, champion_id, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (league_id, name, status, start_date, third_place, rounds)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		tournament.LeagueID,
		tournament.Name,
		tournament.Status,
		tournament.StartDate,
		tournament.ThirdPlace,
		tournament.Rounds,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.LeagueID, &t.Name, &t.Status, &t.StartDate,
		&t.ThirdPlace, &t.Rounds, &t.ChampionID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE league_id = $1 ORDER BY start_date DESC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(
			&t.ID, &t.LeagueID, &t.Name, &t.Status, &t.StartDate,
			&t.ThirdPlace, &t.Rounds, &t.ChampionID, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) TransitionStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.exec(exec).ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to transition tournament %d to %s: %w", id, to, err)
	}
	return checkAffectedRows(result, ErrTournamentStatusConflict)
}

func (r *postgresTournamentRepository) SetRounds(ctx context.Context, exec SQLExecutor, id, rounds int) error {
	query := `UPDATE tournaments SET rounds = $1 WHERE id = $2`

	result, err := r.exec(exec).ExecContext(ctx, query, rounds, id)
	if err != nil {
		return fmt.Errorf("failed to set rounds for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetChampion(ctx context.Context, exec SQLExecutor, id, playerID int) error {
	query := `UPDATE tournaments SET champion_id = $1 WHERE id = $2`

	result, err := r.exec(exec).ExecContext(ctx, query, playerID, id)
	if err != nil {
		return fmt.Errorf("failed to set champion for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SaveParticipants(ctx context.Context, exec SQLExecutor, tournamentID int, participants []models.Participant) error {
	query := `
		INSERT INTO tournament_participants (tournament_id, player_id, seed, display_name)
		VALUES ($1, $2, $3, $4)`

	e := r.exec(exec)
	for _, p := range participants {
		if _, err := e.ExecContext(ctx, query, tournamentID, p.PlayerID, p.Seed, p.DisplayName); err != nil {
			return fmt.Errorf("failed to insert participant %d for tournament %d: %w", p.PlayerID, tournamentID, err)
		}
	}
	return nil
}

func (r *postgresTournamentRepository) ListParticipants(ctx context.Context, tournamentID int) ([]models.Participant, error) {
	query := `
		SELECT tournament_id, player_id, seed, display_name
		FROM tournament_participants
		WHERE tournament_id = $1
		ORDER BY seed ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.TournamentID, &p.PlayerID, &p.Seed, &p.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}
