package standings

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/derekprior/interclub/internal/league"
)

func roster(ids ...string) []league.Team {
	teams := make([]league.Team, len(ids))
	for i, id := range ids {
		teams[i] = league.Team{ID: id, Name: strings.ToUpper(id)}
	}
	return teams
}

// encounter builds a result where the home side wins homeWins of the 5 matches.
func encounter(home, away string, homeWins int) league.EncounterResult {
	e := league.EncounterResult{Group: 1, Home: home, Away: away}
	for i, kind := range league.MatchKinds {
		winner := league.SideAway
		if i < homeWins {
			winner = league.SideHome
		}
		e.Matches = append(e.Matches, league.MatchOutcome{Kind: kind, Winner: winner})
	}
	return e
}

func TestComputeNoEncounters(t *testing.T) {
	table, err := Compute(roster("a", "b", "c"), nil)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("entries = %d, want 3", len(table))
	}
	for i, e := range table {
		if e.Points != 0 || e.Played != 0 || e.MatchesWon != 0 || len(e.Form) != 0 {
			t.Errorf("entry %s not zeroed: %+v", e.TeamID, e)
		}
		if e.Position != i+1 {
			t.Errorf("entry %s position = %d, want %d", e.TeamID, e.Position, i+1)
		}
	}
}

func TestComputeSingleEncounter(t *testing.T) {
	table, err := Compute(roster("away", "home"), []league.EncounterResult{encounter("home", "away", 3)})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	home, away := table[0], table[1]
	if home.TeamID != "home" {
		t.Fatalf("first place = %s, want home", home.TeamID)
	}

	t.Run("winner", func(t *testing.T) {
		if home.Points != 3 || home.EncountersWon != 1 || home.EncountersLost != 0 {
			t.Errorf("home = %+v", home)
		}
		if home.MatchesWon != 3 || home.MatchesLost != 2 {
			t.Errorf("home matches = %d-%d, want 3-2", home.MatchesWon, home.MatchesLost)
		}
		if home.FormString() != "W" || home.Position != 1 {
			t.Errorf("home form/position = %q/%d", home.FormString(), home.Position)
		}
	})

	t.Run("loser", func(t *testing.T) {
		if away.Points != 0 || away.EncountersWon != 0 || away.EncountersLost != 1 {
			t.Errorf("away = %+v", away)
		}
		if away.MatchesWon != 2 || away.MatchesLost != 3 {
			t.Errorf("away matches = %d-%d, want 2-3", away.MatchesWon, away.MatchesLost)
		}
		if away.FormString() != "L" || away.Position != 2 {
			t.Errorf("away form/position = %q/%d", away.FormString(), away.Position)
		}
	})

	if home.TeamName != "HOME" {
		t.Errorf("team name = %q, want HOME", home.TeamName)
	}
}

func TestComputeTieBreaks(t *testing.T) {
	// a, b, c each win once: a beats b 5-0, b beats c 3-2, c beats a 4-1.
	encounters := []league.EncounterResult{
		encounter("a", "b", 5),
		encounter("b", "c", 3),
		encounter("c", "a", 4),
	}
	table, err := Compute(roster("a", "b", "c"), encounters)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	// a: 5+1 won, 0+4 lost => +2; b: 0+3 won, 5+2 lost => -4; c: 2+4 won, 3+1 lost => +2
	got := []string{table[0].TeamID, table[1].TeamID, table[2].TeamID}
	want := []string{"a", "c", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	for _, e := range table {
		if e.Points != 3 {
			t.Errorf("%s points = %d, want 3", e.TeamID, e.Points)
		}
	}
}

func TestComputeStableOnFullTie(t *testing.T) {
	encounters := []league.EncounterResult{
		encounter("a", "b", 3),
		encounter("b", "a", 3),
	}
	table, err := Compute(roster("b", "a"), encounters)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if table[0].TeamID != "b" || table[1].TeamID != "a" {
		t.Errorf("full tie should keep roster order, got %s, %s", table[0].TeamID, table[1].TeamID)
	}
}

func TestComputeFormCappedAtFive(t *testing.T) {
	var encounters []league.EncounterResult
	// a wins the first 5, then loses 3: last five chronological results are W W L L L
	for range 5 {
		encounters = append(encounters, encounter("a", "b", 4))
	}
	for range 3 {
		encounters = append(encounters, encounter("a", "b", 1))
	}

	table, err := Compute(roster("a", "b"), encounters)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	for _, e := range table {
		if len(e.Form) != league.FormLength {
			t.Errorf("%s form length = %d, want %d", e.TeamID, len(e.Form), league.FormLength)
		}
		if e.Played != 8 {
			t.Errorf("%s played = %d, want 8", e.TeamID, e.Played)
		}
	}
	a := table[0]
	if a.TeamID != "a" {
		a = table[1]
	}
	if a.FormString() != "WWLLL" {
		t.Errorf("a form = %q, want WWLLL", a.FormString())
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	teams := roster("a", "b", "c", "d")
	encounters := []league.EncounterResult{
		encounter("a", "b", 3),
		encounter("c", "d", 1),
		encounter("b", "c", 5),
		encounter("d", "a", 2),
	}

	first, err := Compute(teams, encounters)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	second, err := Compute(teams, encounters)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Compute differs:\n%+v\n%+v", first, second)
	}
}

func TestComputeRejectsBadEncounters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*league.EncounterResult)
		target error
	}{
		{
			name:   "four matches",
			mutate: func(e *league.EncounterResult) { e.Matches = e.Matches[:4] },
			target: league.ErrInput,
		},
		{
			name:   "missing winner",
			mutate: func(e *league.EncounterResult) { e.Matches[2].Winner = "" },
			target: league.ErrInput,
		},
		{
			name:   "duplicate kind",
			mutate: func(e *league.EncounterResult) { e.Matches[1].Kind = league.MenSingles },
			target: league.ErrInput,
		},
		{
			name:   "unknown kind",
			mutate: func(e *league.EncounterResult) { e.Matches[3].Kind = "XX" },
			target: league.ErrInput,
		},
		{
			name:   "lowercase kind",
			mutate: func(e *league.EncounterResult) { e.Matches[0].Kind = "ms" },
			target: league.ErrInput,
		},
		{
			name:   "self match",
			mutate: func(e *league.EncounterResult) { e.Away = e.Home },
			target: league.ErrInput,
		},
		{
			name:   "unknown team",
			mutate: func(e *league.EncounterResult) { e.Away = "ghost" },
			target: league.ErrInput,
		},
		{
			name:   "reported score disagrees",
			mutate: func(e *league.EncounterResult) { e.Reported = &league.Score{Home: 2, Away: 3} },
			target: league.ErrDataConsistency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := encounter("a", "b", 3)
			tt.mutate(&e)
			table, err := Compute(roster("a", "b"), []league.EncounterResult{encounter("b", "a", 4), e})
			if !errors.Is(err, tt.target) {
				t.Fatalf("error = %v, want %v", err, tt.target)
			}
			if table != nil {
				t.Error("partial table returned alongside error")
			}
			if !strings.Contains(err.Error(), "encounter 2") {
				t.Errorf("error %q should name the offending encounter", err)
			}
		})
	}
}

func TestComputeAcceptsMatchingReportedScore(t *testing.T) {
	e := encounter("a", "b", 4)
	e.Reported = &league.Score{Home: 4, Away: 1}
	if _, err := Compute(roster("a", "b"), []league.EncounterResult{e}); err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
}

func TestComputeRejectsDuplicateRoster(t *testing.T) {
	_, err := Compute(roster("a", "a"), nil)
	if !errors.Is(err, league.ErrInput) {
		t.Fatalf("error = %v, want ErrInput", err)
	}
}

func TestComputeGroups(t *testing.T) {
	rosters := map[int][]league.Team{
		1: roster("a", "b"),
		2: roster("c", "d"),
	}
	g2 := encounter("c", "d", 1)
	g2.Group = 2

	tables, err := ComputeGroups(rosters, []league.EncounterResult{encounter("a", "b", 3), g2})
	if err != nil {
		t.Fatalf("ComputeGroups() error: %v", err)
	}
	if tables[1][0].TeamID != "a" {
		t.Errorf("group 1 leader = %s, want a", tables[1][0].TeamID)
	}
	if tables[2][0].TeamID != "d" {
		t.Errorf("group 2 leader = %s, want d", tables[2][0].TeamID)
	}

	t.Run("unknown group", func(t *testing.T) {
		bad := encounter("a", "b", 3)
		bad.Group = 9
		_, err := ComputeGroups(rosters, []league.EncounterResult{bad})
		if !errors.Is(err, league.ErrInput) {
			t.Errorf("error = %v, want ErrInput", err)
		}
	})

	t.Run("team from another group", func(t *testing.T) {
		cross := encounter("a", "c", 3)
		_, err := ComputeGroups(rosters, []league.EncounterResult{cross})
		if !errors.Is(err, league.ErrInput) {
			t.Errorf("error = %v, want ErrInput", err)
		}
	})
}
