// Package store persists rosters, fixtures, results and standings in sqlite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/derekprior/interclub/internal/league"
	"github.com/derekprior/interclub/internal/logging"
	"github.com/derekprior/interclub/internal/standings"
)

// ErrFixtureNotFound is returned when a result names a pairing with no fixture.
var ErrFixtureNotFound = errors.New("fixture not found")

const dateLayout = "2006-01-02"

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Store struct {
	db  *sqlx.DB
	log *logging.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping sqlite %s", path)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}

	log := logging.Default().With("db", path)
	log.Debug("store opened")
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTeams replaces the roster of a group.
func (s *Store) SaveTeams(ctx context.Context, group int, teams []league.Team) error {
	return s.withTx(ctx, "save teams", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE group_number = ?`, group); err != nil {
			return errors.Wrap(err, "clear teams")
		}
		for i, t := range teams {
			row := teamModel{TeamID: t.ID, Group: group, Seq: i, Name: t.Name}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO teams (team_id, group_number, seq, name)
				 VALUES (:team_id, :group_number, :seq, :name)
				 ON CONFLICT (team_id) DO UPDATE SET
				     group_number = excluded.group_number,
				     seq = excluded.seq,
				     name = excluded.name`, row); err != nil {
				return errors.Wrapf(err, "insert team %s", t.ID)
			}
		}
		return nil
	})
}

// ListTeams returns a group's roster in registration order.
func (s *Store) ListTeams(ctx context.Context, group int) ([]league.Team, error) {
	var rows []teamModel
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT team_id, group_number, seq, name FROM teams WHERE group_number = ? ORDER BY seq`, group); err != nil {
		return nil, errors.Wrap(err, "list teams")
	}
	out := make([]league.Team, 0, len(rows))
	for _, r := range rows {
		out = append(out, league.Team{ID: r.TeamID, Name: r.Name})
	}
	return out, nil
}

// SaveFixtures replaces every fixture (and any recorded outcome) of a group.
func (s *Store) SaveFixtures(ctx context.Context, group int, fixtures []league.Fixture) error {
	err := s.withTx(ctx, "save fixtures", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM match_outcomes WHERE group_number = ?`, group); err != nil {
			return errors.Wrap(err, "clear outcomes")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM fixtures WHERE group_number = ?`, group); err != nil {
			return errors.Wrap(err, "clear fixtures")
		}
		for _, f := range fixtures {
			if f.Group != group {
				return league.InputErrorf("fixture for matchday %d belongs to group %d, not %d", f.Matchday, f.Group, group)
			}
			row := fixtureModel{
				Group:     f.Group,
				Matchday:  f.Matchday,
				Week:      f.Week,
				Home:      f.Home,
				Away:      f.Away,
				MatchDate: formatDate(f.Date),
				Status:    string(f.Status),
			}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO fixtures (group_number, matchday, week, home_team_id, away_team_id, match_date, status)
				 VALUES (:group_number, :matchday, :week, :home_team_id, :away_team_id, :match_date, :status)`, row); err != nil {
				return errors.Wrapf(err, "insert fixture matchday=%d", f.Matchday)
			}
		}
		return nil
	})
	if err == nil {
		s.log.Debug("fixtures saved", "group", group, "count", len(fixtures))
	}
	return err
}

// ListFixtures returns a group's fixtures in matchday order.
func (s *Store) ListFixtures(ctx context.Context, group int) ([]league.Fixture, error) {
	var rows []fixtureModel
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM fixtures WHERE group_number = ? ORDER BY matchday`, group); err != nil {
		return nil, errors.Wrap(err, "list fixtures")
	}
	out := make([]league.Fixture, 0, len(rows))
	for _, r := range rows {
		date, err := parseDate(r.MatchDate)
		if err != nil {
			return nil, errors.Wrapf(err, "fixture matchday=%d", r.Matchday)
		}
		out = append(out, league.Fixture{
			Group:    r.Group,
			Matchday: r.Matchday,
			Week:     r.Week,
			Home:     r.Home,
			Away:     r.Away,
			Date:     date,
			Status:   league.Status(r.Status),
		})
	}
	return out, nil
}

// RecordResult stores an encounter's outcomes against its fixture and marks the
// fixture completed. Recording the same pairing again overwrites it.
func (s *Store) RecordResult(ctx context.Context, result league.EncounterResult) error {
	if err := standings.ValidateEncounter(result); err != nil {
		return errors.Wrapf(err, "record %s vs %s", result.Home, result.Away)
	}

	return s.withTx(ctx, "record result", func(tx *sqlx.Tx) error {
		var matchday int
		err := tx.GetContext(ctx, &matchday,
			`SELECT matchday FROM fixtures WHERE group_number = ? AND home_team_id = ? AND away_team_id = ?`,
			result.Group, result.Home, result.Away)
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(ErrFixtureNotFound, "group %d %s vs %s", result.Group, result.Home, result.Away)
		}
		if err != nil {
			return errors.Wrap(err, "find fixture")
		}

		var home, away sql.NullInt64
		if r := result.Reported; r != nil {
			home = sql.NullInt64{Int64: int64(r.Home), Valid: true}
			away = sql.NullInt64{Int64: int64(r.Away), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE fixtures SET status = ?, reported_home = ?, reported_away = ?
			 WHERE group_number = ? AND matchday = ?`,
			string(league.StatusCompleted), home, away, result.Group, matchday); err != nil {
			return errors.Wrap(err, "complete fixture")
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM match_outcomes WHERE group_number = ? AND matchday = ?`, result.Group, matchday); err != nil {
			return errors.Wrap(err, "clear outcomes")
		}
		for i, m := range result.Matches {
			row := outcomeModel{Group: result.Group, Matchday: matchday, Seq: i, Kind: string(m.Kind), Winner: string(m.Winner)}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO match_outcomes (group_number, matchday, seq, kind, winner)
				 VALUES (:group_number, :matchday, :seq, :kind, :winner)`, row); err != nil {
				return errors.Wrapf(err, "insert outcome %d", i+1)
			}
		}
		return nil
	})
}

// ListCompletedEncounters returns a group's recorded results in matchday order,
// the order standings expect for form.
func (s *Store) ListCompletedEncounters(ctx context.Context, group int) ([]league.EncounterResult, error) {
	var fixtures []fixtureModel
	if err := s.db.SelectContext(ctx, &fixtures,
		`SELECT * FROM fixtures WHERE group_number = ? AND status = ? ORDER BY matchday`,
		group, string(league.StatusCompleted)); err != nil {
		return nil, errors.Wrap(err, "list completed fixtures")
	}

	var outcomes []outcomeModel
	if err := s.db.SelectContext(ctx, &outcomes,
		`SELECT * FROM match_outcomes WHERE group_number = ? ORDER BY matchday, seq`, group); err != nil {
		return nil, errors.Wrap(err, "list outcomes")
	}
	byMatchday := make(map[int][]league.MatchOutcome)
	for _, o := range outcomes {
		byMatchday[o.Matchday] = append(byMatchday[o.Matchday], league.MatchOutcome{
			Kind:   league.MatchKind(o.Kind),
			Winner: league.Side(o.Winner),
		})
	}

	out := make([]league.EncounterResult, 0, len(fixtures))
	for _, f := range fixtures {
		r := league.EncounterResult{
			Group:   f.Group,
			Home:    f.Home,
			Away:    f.Away,
			Matches: byMatchday[f.Matchday],
		}
		if f.ReportedHome.Valid && f.ReportedAway.Valid {
			r.Reported = &league.Score{Home: int(f.ReportedHome.Int64), Away: int(f.ReportedAway.Int64)}
		}
		out = append(out, r)
	}
	return out, nil
}

// ReplaceStandings swaps a group's stored table for entries in one transaction.
func (s *Store) ReplaceStandings(ctx context.Context, group int, entries []league.StandingEntry) error {
	err := s.withTx(ctx, "replace standings", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM standings WHERE group_number = ?`, group); err != nil {
			return errors.Wrap(err, "clear standings")
		}
		for _, e := range entries {
			row := standingModel{
				Group:          group,
				TeamID:         e.TeamID,
				Position:       e.Position,
				TeamName:       e.TeamName,
				Points:         e.Points,
				Played:         e.Played,
				EncountersWon:  e.EncountersWon,
				EncountersLost: e.EncountersLost,
				MatchesWon:     e.MatchesWon,
				MatchesLost:    e.MatchesLost,
				Form:           e.FormString(),
			}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO standings (group_number, team_id, position, team_name, points, played,
				     encounters_won, encounters_lost, matches_won, matches_lost, form)
				 VALUES (:group_number, :team_id, :position, :team_name, :points, :played,
				     :encounters_won, :encounters_lost, :matches_won, :matches_lost, :form)`, row); err != nil {
				return errors.Wrapf(err, "insert standing team=%s", e.TeamID)
			}
		}
		return nil
	})
	if err == nil {
		s.log.Debug("standings replaced", "group", group, "teams", len(entries))
	}
	return err
}

// ListStandings returns a group's stored table by position.
func (s *Store) ListStandings(ctx context.Context, group int) ([]league.StandingEntry, error) {
	var rows []standingModel
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM standings WHERE group_number = ? ORDER BY position`, group); err != nil {
		return nil, errors.Wrap(err, "list standings")
	}
	out := make([]league.StandingEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, league.StandingEntry{
			TeamID:         r.TeamID,
			TeamName:       r.TeamName,
			Position:       r.Position,
			Points:         r.Points,
			Played:         r.Played,
			EncountersWon:  r.EncountersWon,
			EncountersLost: r.EncountersLost,
			MatchesWon:     r.MatchesWon,
			MatchesLost:    r.MatchesLost,
			Form:           parseForm(r.Form),
		})
	}
	return out, nil
}

func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "begin tx %s", op)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return errors.Wrap(err, op)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit %s", op)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func parseForm(s string) []league.FormResult {
	if s == "" {
		return nil
	}
	out := make([]league.FormResult, 0, len(s))
	for _, r := range s {
		out = append(out, league.FormResult(string(r)))
	}
	return out
}
