package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/interclub/internal/fixture"
	"github.com/derekprior/interclub/internal/league"
	"github.com/derekprior/interclub/internal/standings"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "league.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func outcomes(winners ...league.Side) []league.MatchOutcome {
	out := make([]league.MatchOutcome, len(winners))
	for i, w := range winners {
		out[i] = league.MatchOutcome{Kind: league.MatchKinds[i], Winner: w}
	}
	return out
}

var (
	home = league.SideHome
	away = league.SideAway
)

func seedGroup(t *testing.T, s *Store) []league.Fixture {
	t.Helper()
	ctx := context.Background()

	roster := []league.Team{{ID: "ghent", Name: "BC Ghent"}, {ID: "lokeren", Name: "Lokeren"}, {ID: "aalst", Name: "Aalst"}}
	require.NoError(t, s.SaveTeams(ctx, 1, roster))

	sched, err := fixture.Generate(1, []string{"ghent", "lokeren", "aalst"}, 3, func(md int) time.Time {
		return date(2026, time.September, 6+md)
	})
	require.NoError(t, err)
	require.NoError(t, s.SaveFixtures(ctx, 1, sched.Fixtures))
	return sched.Fixtures
}

func TestTeamsRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTeams(ctx, 1, []league.Team{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}}))
	require.NoError(t, s.SaveTeams(ctx, 2, []league.Team{{ID: "c", Name: "C"}}))

	got, err := s.ListTeams(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []league.Team{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}}, got)

	// Saving again replaces the roster.
	require.NoError(t, s.SaveTeams(ctx, 1, []league.Team{{ID: "a", Name: "A2"}}))
	got, err = s.ListTeams(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []league.Team{{ID: "a", Name: "A2"}}, got)

	got, err = s.ListTeams(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFixturesRoundTrip(t *testing.T) {
	s := openStore(t)
	want := seedGroup(t, s)

	got, err := s.ListFixtures(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	none, err := s.ListFixtures(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveFixturesRejectsForeignGroup(t *testing.T) {
	s := openStore(t)
	err := s.SaveFixtures(context.Background(), 1, []league.Fixture{{Group: 2, Matchday: 1, Home: "a", Away: "b", Status: league.StatusScheduled}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, league.ErrInput))
}

func TestRecordResult(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seedGroup(t, s)

	r := league.EncounterResult{
		Group: 1, Home: "ghent", Away: "lokeren",
		Matches:  outcomes(home, away, home, away, home),
		Reported: &league.Score{Home: 3, Away: 2},
	}
	require.NoError(t, s.RecordResult(ctx, r))

	fixtures, err := s.ListFixtures(ctx, 1)
	require.NoError(t, err)
	for _, f := range fixtures {
		if f.Home == "ghent" && f.Away == "lokeren" {
			assert.Equal(t, league.StatusCompleted, f.Status)
		} else {
			assert.Equal(t, league.StatusScheduled, f.Status)
		}
	}

	got, err := s.ListCompletedEncounters(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r, got[0])

	// Re-recording replaces the outcomes.
	r.Matches = outcomes(away, away, away, away, home)
	r.Reported = nil
	require.NoError(t, s.RecordResult(ctx, r))
	got, err = s.ListCompletedEncounters(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, league.Score{Home: 1, Away: 4}, got[0].Tally())
	assert.Nil(t, got[0].Reported)
}

func TestRecordResultErrors(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seedGroup(t, s)

	t.Run("no fixture", func(t *testing.T) {
		err := s.RecordResult(ctx, league.EncounterResult{
			Group: 1, Home: "ghent", Away: "brugge", Matches: outcomes(home, home, home, away, away),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFixtureNotFound))
	})

	t.Run("invalid encounter", func(t *testing.T) {
		err := s.RecordResult(ctx, league.EncounterResult{
			Group: 1, Home: "ghent", Away: "lokeren", Matches: outcomes(home, home, home, away),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, league.ErrInput))
	})

	t.Run("unknown match kind", func(t *testing.T) {
		matches := outcomes(home, home, home, away, away)
		matches[4].Kind = "MX"
		err := s.RecordResult(ctx, league.EncounterResult{
			Group: 1, Home: "ghent", Away: "lokeren", Matches: matches,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, league.ErrInput))
		assert.Contains(t, err.Error(), `unknown kind "MX"`)
	})

	t.Run("score disagrees", func(t *testing.T) {
		err := s.RecordResult(ctx, league.EncounterResult{
			Group: 1, Home: "ghent", Away: "lokeren",
			Matches:  outcomes(home, home, home, away, away),
			Reported: &league.Score{Home: 2, Away: 3},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, league.ErrDataConsistency))
	})

	completed, err := s.ListCompletedEncounters(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestCompletedEncountersFollowMatchdayOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	fixtures := seedGroup(t, s)

	// Record in reverse so storage order differs from matchday order.
	for i := len(fixtures) - 1; i >= 0; i-- {
		f := fixtures[i]
		require.NoError(t, s.RecordResult(ctx, league.EncounterResult{
			Group: 1, Home: f.Home, Away: f.Away, Matches: outcomes(home, home, home, away, away),
		}))
	}

	got, err := s.ListCompletedEncounters(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, len(fixtures))
	for i, f := range fixtures {
		assert.Equal(t, f.Home, got[i].Home, "matchday %d", f.Matchday)
		assert.Equal(t, f.Away, got[i].Away, "matchday %d", f.Matchday)
	}
}

func TestStandingsRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seedGroup(t, s)

	require.NoError(t, s.RecordResult(ctx, league.EncounterResult{
		Group: 1, Home: "ghent", Away: "lokeren", Matches: outcomes(home, away, home, away, home),
	}))
	encounters, err := s.ListCompletedEncounters(ctx, 1)
	require.NoError(t, err)
	roster, err := s.ListTeams(ctx, 1)
	require.NoError(t, err)

	table, err := standings.Compute(roster, encounters)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceStandings(ctx, 1, table))

	got, err := s.ListStandings(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, table, got)
	assert.Equal(t, "ghent", got[0].TeamID)
	assert.Equal(t, "W", got[0].FormString())

	// Replacing drops rows that are no longer present.
	require.NoError(t, s.ReplaceStandings(ctx, 1, table[:1]))
	got, err = s.ListStandings(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSaveFixturesClearsOutcomes(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	fixtures := seedGroup(t, s)

	require.NoError(t, s.RecordResult(ctx, league.EncounterResult{
		Group: 1, Home: "ghent", Away: "lokeren", Matches: outcomes(home, home, home, home, home),
	}))
	require.NoError(t, s.SaveFixtures(ctx, 1, fixtures))

	got, err := s.ListCompletedEncounters(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}
