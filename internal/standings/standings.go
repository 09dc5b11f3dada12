// Package standings ranks the teams of a group from completed encounters.
package standings

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/derekprior/interclub/internal/league"
)

// Compute builds the ranked table for one roster. Encounters must be supplied
// in the order they were played for the form sequence to be meaningful.
//
// Entries are ordered by points, then by individual match differential; teams
// still level keep their roster order. The first malformed encounter aborts
// the computation with an error; no partial table is returned.
func Compute(roster []league.Team, encounters []league.EncounterResult) ([]league.StandingEntry, error) {
	entries := make([]league.StandingEntry, len(roster))
	index := make(map[string]int, len(roster))
	for i, t := range roster {
		if _, dup := index[t.ID]; dup {
			return nil, league.InputErrorf("team %q listed twice in roster", t.ID)
		}
		index[t.ID] = i
		entries[i] = league.StandingEntry{TeamID: t.ID, TeamName: t.Name}
	}

	for n, e := range encounters {
		if err := ValidateEncounter(e); err != nil {
			return nil, errors.Wrapf(err, "encounter %d (%s vs %s)", n+1, e.Home, e.Away)
		}
		hi, ok := index[e.Home]
		if !ok {
			return nil, league.InputErrorf("encounter %d: home team %q is not in the roster", n+1, e.Home)
		}
		ai, ok := index[e.Away]
		if !ok {
			return nil, league.InputErrorf("encounter %d: away team %q is not in the roster", n+1, e.Away)
		}

		score := e.Tally()
		home, away := &entries[hi], &entries[ai]
		home.Played++
		away.Played++
		home.MatchesWon += score.Home
		home.MatchesLost += score.Away
		away.MatchesWon += score.Away
		away.MatchesLost += score.Home

		winner, loser := home, away
		if score.Away > score.Home {
			winner, loser = away, home
		}
		winner.Points += league.PointsForWin
		winner.EncountersWon++
		loser.EncountersLost++
		winner.Form = append(winner.Form, league.FormWin)
		loser.Form = append(loser.Form, league.FormLoss)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.MatchDifferential() > b.MatchDifferential()
	})

	for i := range entries {
		entries[i].Position = i + 1
		if n := len(entries[i].Form); n > league.FormLength {
			entries[i].Form = entries[i].Form[n-league.FormLength:]
		}
	}

	return entries, nil
}

// ComputeGroups splits encounters by group number and computes each group's
// table. Every encounter must belong to a group present in rosters.
func ComputeGroups(rosters map[int][]league.Team, encounters []league.EncounterResult) (map[int][]league.StandingEntry, error) {
	byGroup := make(map[int][]league.EncounterResult, len(rosters))
	for n, e := range encounters {
		if _, ok := rosters[e.Group]; !ok {
			return nil, league.InputErrorf("encounter %d (%s vs %s): unknown group %d", n+1, e.Home, e.Away, e.Group)
		}
		byGroup[e.Group] = append(byGroup[e.Group], e)
	}

	tables := make(map[int][]league.StandingEntry, len(rosters))
	for group, roster := range rosters {
		table, err := Compute(roster, byGroup[group])
		if err != nil {
			return nil, errors.Wrapf(err, "group %d", group)
		}
		tables[group] = table
	}
	return tables, nil
}

// ValidateEncounter checks a single encounter without needing a roster, so
// callers that prefer to skip bad records can filter them up front.
func ValidateEncounter(e league.EncounterResult) error {
	if e.Home == "" || e.Away == "" {
		return league.InputErrorf("both teams are required")
	}
	if e.Home == e.Away {
		return league.InputErrorf("team %q cannot play itself", e.Home)
	}
	if len(e.Matches) != league.MatchesPerEncounter {
		return league.InputErrorf("expected %d matches, got %d", league.MatchesPerEncounter, len(e.Matches))
	}

	kinds := make(map[league.MatchKind]bool, len(e.Matches))
	for i, m := range e.Matches {
		if !m.Winner.Valid() {
			return league.InputErrorf("match %d has no valid winner (%q)", i+1, m.Winner)
		}
		if m.Kind != "" {
			if !m.Kind.Valid() {
				return league.InputErrorf("match %d has unknown kind %q", i+1, m.Kind)
			}
			if kinds[m.Kind] {
				return league.InputErrorf("match kind %s appears twice", m.Kind)
			}
			kinds[m.Kind] = true
		}
	}

	score := e.Tally()
	if score.Home+score.Away != league.MatchesPerEncounter {
		return league.ConsistencyErrorf("tally %d-%d does not account for %d matches",
			score.Home, score.Away, league.MatchesPerEncounter)
	}
	if r := e.Reported; r != nil && (r.Home != score.Home || r.Away != score.Away) {
		return league.ConsistencyErrorf("reported score %d-%d disagrees with match winners %d-%d",
			r.Home, r.Away, score.Home, score.Away)
	}
	return nil
}
