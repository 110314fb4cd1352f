// Package memory provides in-memory implementations of the repository
// interfaces. They back the service tests and the local development mode;
// every conditional transition holds the store lock so the compare-and-swap
// guarantees match the Postgres implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

type rankingKey struct {
	kind     models.ScopeKind
	scopeID  int
	playerID int
}

type bracketKey struct {
	tournamentID int
	uid          string
}

// Store holds every aggregate behind one mutex. It implements all the
// repository interfaces plus repositories.Transactor.
type Store struct {
	mu sync.Mutex

	players      map[int]*models.Player
	leagues      map[int]*models.League
	rankings     map[rankingKey]*models.RankingEntry
	rapidMatches map[uuid.UUID]*models.RapidMatch
	seasons      map[int]*models.RapidSeason
	closeResults map[int]*models.SeasonCloseResult
	tournaments  map[int]*models.Tournament
	participants map[int][]models.Participant
	brackets     map[bracketKey]*models.BracketMatch

	nextID    int
	rankSeq   int
	clock     int64 // monotonic tiebreaker for created-at ordering
}

func NewStore() *Store {
	return &Store{
		players:      make(map[int]*models.Player),
		leagues:      make(map[int]*models.League),
		rankings:     make(map[rankingKey]*models.RankingEntry),
		rapidMatches: make(map[uuid.UUID]*models.RapidMatch),
		seasons:      make(map[int]*models.RapidSeason),
		closeResults: make(map[int]*models.SeasonCloseResult),
		tournaments:  make(map[int]*models.Tournament),
		participants: make(map[int][]models.Participant),
		brackets:     make(map[bracketKey]*models.BracketMatch),
	}
}

// WithinTx satisfies repositories.Transactor. The store has no multi-entity
// transactions; each operation is individually atomic, and the conditional
// writes carry the concurrency guarantees.
func (s *Store) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

func (s *Store) nextSeq() int {
	s.nextID++
	return s.nextID
}

func (s *Store) now() time.Time {
	s.clock++
	return time.Unix(0, s.clock*int64(time.Millisecond))
}

// --- PlayerRepository ---

func (s *Store) Create(ctx context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.Email == player.Email {
			return repositories.ErrPlayerEmailConflict
		}
	}
	player.ID = s.nextSeq()
	player.CreatedAt = s.now()
	cp := *player
	s.players[player.ID] = &cp
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (s *Store) List(ctx context.Context) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := make([]*models.Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		players = append(players, &cp)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].DisplayName != players[j].DisplayName {
			return players[i].DisplayName < players[j].DisplayName
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

func (s *Store) UpdateAggregates(ctx context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[player.ID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Rating = player.Rating
	p.Wins = player.Wins
	p.Losses = player.Losses
	p.Refereed = player.Refereed
	p.Streak = player.Streak
	return nil
}

// --- LeagueRepository ---

func (s *Store) CreateLeague(ctx context.Context, _ repositories.SQLExecutor, league *models.League) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	league.ID = s.nextSeq()
	league.CreatedAt = s.now()
	cp := *league
	s.leagues[league.ID] = &cp
	return nil
}

func (s *Store) GetLeagueByID(ctx context.Context, id int) (*models.League, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *Store) ListLeagues(ctx context.Context) ([]*models.League, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	leagues := make([]*models.League, 0, len(s.leagues))
	for _, l := range s.leagues {
		cp := *l
		leagues = append(leagues, &cp)
	}
	sort.Slice(leagues, func(i, j int) bool { return leagues[i].ID < leagues[j].ID })
	return leagues, nil
}

// --- RankingRepository ---

func (s *Store) GetOrCreate(ctx context.Context, _ repositories.SQLExecutor, scope models.Scope, playerID int, initialRating float64) (*models.RankingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rankingKey{kind: scope.Kind, scopeID: scope.ID, playerID: playerID}
	if e, ok := s.rankings[key]; ok {
		cp := *e
		return &cp, nil
	}
	s.rankSeq++
	now := s.now()
	entry := &models.RankingEntry{
		ID:        s.rankSeq,
		Kind:      scope.Kind,
		ScopeID:   scope.ID,
		PlayerID:  playerID,
		Rating:    initialRating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.rankings[key] = entry
	cp := *entry
	return &cp, nil
}

func (s *Store) Update(ctx context.Context, _ repositories.SQLExecutor, entry *models.RankingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rankingKey{kind: entry.Kind, scopeID: entry.ScopeID, playerID: entry.PlayerID}
	current, ok := s.rankings[key]
	if !ok {
		return repositories.ErrRankingEntryNotFound
	}
	updated := *entry
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now()
	s.rankings[key] = &updated
	return nil
}

func (s *Store) ListByScope(ctx context.Context, scope models.Scope) ([]*models.RankingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]*models.RankingEntry, 0)
	for _, e := range s.rankings {
		if e.Kind == scope.Kind && e.ScopeID == scope.ID {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.PlayerID < b.PlayerID
	})
	return entries, nil
}

// --- RapidMatchRepository ---

func (s *Store) CreateRapidMatch(ctx context.Context, _ repositories.SQLExecutor, match *models.RapidMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	match.CreatedAt = s.now()
	cp := *match
	s.rapidMatches[match.ID] = &cp
	return nil
}

func (s *Store) GetRapidMatchByID(ctx context.Context, id uuid.UUID) (*models.RapidMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rapidMatches[id]
	if !ok {
		return nil, repositories.ErrRapidMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) ConfirmPending(ctx context.Context, _ repositories.SQLExecutor, id uuid.UUID, confirmerID int, winnerPts, loserPts, refereePts int, validatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rapidMatches[id]
	if !ok {
		return repositories.ErrRapidMatchNotFound
	}
	if m.State != models.RapidMatchPending {
		return repositories.ErrRapidMatchNotPending
	}
	m.State = models.RapidMatchValidated
	m.ConfirmerID = &confirmerID
	m.WinnerPoints = winnerPts
	m.LoserPoints = loserPts
	m.RefereePoints = refereePts
	m.ValidatedAt = &validatedAt
	return nil
}

func (s *Store) ListBySeason(ctx context.Context, seasonID int, state *models.RapidMatchState) ([]*models.RapidMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]*models.RapidMatch, 0)
	for _, m := range s.rapidMatches {
		if m.SeasonID != seasonID {
			continue
		}
		if state != nil && m.State != *state {
			continue
		}
		cp := *m
		matches = append(matches, &cp)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return matches, nil
}

func (s *Store) ListPendingForParticipant(ctx context.Context, playerID int) ([]*models.RapidMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]*models.RapidMatch, 0)
	for _, m := range s.rapidMatches {
		if m.State == models.RapidMatchPending && m.HasParticipant(playerID) {
			cp := *m
			matches = append(matches, &cp)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return matches, nil
}

func (s *Store) ListValidatedBetween(ctx context.Context, playerA, playerB, limit int) ([]*models.RapidMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]*models.RapidMatch, 0)
	for _, m := range s.rapidMatches {
		if m.State != models.RapidMatchValidated {
			continue
		}
		if (m.PlayerAID == playerA && m.PlayerBID == playerB) ||
			(m.PlayerAID == playerB && m.PlayerBID == playerA) {
			cp := *m
			matches = append(matches, &cp)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ValidatedAt.After(*matches[j].ValidatedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) CountValidatedBySeason(ctx context.Context, seasonID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.rapidMatches {
		if m.SeasonID == seasonID && m.State == models.RapidMatchValidated {
			count++
		}
	}
	return count, nil
}

// --- SeasonRepository ---

func (s *Store) CreateSeason(ctx context.Context, _ repositories.SQLExecutor, season *models.RapidSeason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	season.ID = s.nextSeq()
	season.CreatedAt = s.now()
	cp := *season
	s.seasons[season.ID] = &cp
	return nil
}

func (s *Store) GetSeasonByID(ctx context.Context, id int) (*models.RapidSeason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[id]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	cp := *season
	return &cp, nil
}

func (s *Store) ListSeasons(ctx context.Context) ([]*models.RapidSeason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seasons := make([]*models.RapidSeason, 0, len(s.seasons))
	for _, season := range s.seasons {
		cp := *season
		seasons = append(seasons, &cp)
	}
	sort.Slice(seasons, func(i, j int) bool { return seasons[i].StartsAt.After(seasons[j].StartsAt) })
	return seasons, nil
}

func (s *Store) CloseActive(ctx context.Context, _ repositories.SQLExecutor, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[id]
	if !ok {
		return repositories.ErrSeasonNotFound
	}
	if season.State != models.SeasonActive {
		return repositories.ErrSeasonStateConflict
	}
	season.State = models.SeasonClosed
	return nil
}

func (s *Store) SaveCloseResult(ctx context.Context, _ repositories.SQLExecutor, result *models.SeasonCloseResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.closeResults[result.SeasonID]; ok {
		return repositories.ErrCloseResultConflict
	}
	cp := *result
	s.closeResults[result.SeasonID] = &cp
	return nil
}

func (s *Store) GetCloseResult(ctx context.Context, seasonID int) (*models.SeasonCloseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.closeResults[seasonID]
	if !ok {
		return nil, repositories.ErrCloseResultNotFound
	}
	cp := *result
	return &cp, nil
}

// --- TournamentRepository ---

func (s *Store) CreateTournament(ctx context.Context, _ repositories.SQLExecutor, tournament *models.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tournament.ID = s.nextSeq()
	tournament.CreatedAt = s.now()
	cp := *tournament
	cp.Participants = nil
	s.tournaments[tournament.ID] = &cp
	return nil
}

func (s *Store) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) ListByLeague(ctx context.Context, leagueID int) ([]*models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tournaments := make([]*models.Tournament, 0)
	for _, t := range s.tournaments {
		if t.LeagueID == leagueID {
			cp := *t
			tournaments = append(tournaments, &cp)
		}
	}
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].StartDate.After(tournaments[j].StartDate) })
	return tournaments, nil
}

func (s *Store) TransitionStatus(ctx context.Context, _ repositories.SQLExecutor, id int, from, to models.TournamentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.Status != from {
		return repositories.ErrTournamentStatusConflict
	}
	t.Status = to
	return nil
}

func (s *Store) SetRounds(ctx context.Context, _ repositories.SQLExecutor, id, rounds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Rounds = rounds
	return nil
}

func (s *Store) SetChampion(ctx context.Context, _ repositories.SQLExecutor, id, playerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	champion := playerID
	t.ChampionID = &champion
	return nil
}

func (s *Store) SaveParticipants(ctx context.Context, _ repositories.SQLExecutor, tournamentID int, participants []models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]models.Participant, len(participants))
	copy(cp, participants)
	s.participants[tournamentID] = append(s.participants[tournamentID], cp...)
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, tournamentID int) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	participants := make([]models.Participant, len(s.participants[tournamentID]))
	copy(participants, s.participants[tournamentID])
	sort.Slice(participants, func(i, j int) bool { return participants[i].Seed < participants[j].Seed })
	return participants, nil
}

// --- BracketMatchRepository ---

func (s *Store) CreateBatch(ctx context.Context, _ repositories.SQLExecutor, matches []*models.BracketMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range matches {
		cp := *m
		s.brackets[bracketKey{tournamentID: m.TournamentID, uid: m.UID}] = &cp
	}
	return nil
}

func (s *Store) GetBracketMatch(ctx context.Context, tournamentID int, uid string) (*models.BracketMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.brackets[bracketKey{tournamentID: tournamentID, uid: uid}]
	if !ok {
		return nil, repositories.ErrBracketMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) ListBracketMatches(ctx context.Context, tournamentID int) ([]*models.BracketMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]*models.BracketMatch, 0)
	for key, m := range s.brackets {
		if key.tournamentID == tournamentID {
			cp := *m
			matches = append(matches, &cp)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].OrderInRound < matches[j].OrderInRound
	})
	return matches, nil
}

func (s *Store) FinishPending(ctx context.Context, _ repositories.SQLExecutor, tournamentID int, uid string, winnerID, scoreA, scoreB int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.brackets[bracketKey{tournamentID: tournamentID, uid: uid}]
	if !ok {
		return repositories.ErrBracketMatchNotFound
	}
	if m.State != models.BracketPending {
		return repositories.ErrBracketMatchNotPending
	}
	winner := winnerID
	m.State = models.BracketFinished
	m.WinnerID = &winner
	m.ScoreA = scoreA
	m.ScoreB = scoreB
	return nil
}

func (s *Store) SetSlot(ctx context.Context, _ repositories.SQLExecutor, tournamentID int, uid string, slot, playerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.brackets[bracketKey{tournamentID: tournamentID, uid: uid}]
	if !ok {
		return repositories.ErrBracketMatchNotFound
	}
	player := playerID
	switch slot {
	case 1:
		m.SlotA = &player
	case 2:
		m.SlotB = &player
	default:
		return repositories.ErrBracketMatchNotFound
	}
	return nil
}
