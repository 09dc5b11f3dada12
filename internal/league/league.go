package league

import (
	"strings"
	"time"
)

// MatchesPerEncounter is the number of individual matches that make up one encounter.
const MatchesPerEncounter = 5

// PointsForWin is awarded to the side that wins an encounter. Losers get nothing;
// the odd number of matches rules out a draw.
const PointsForWin = 3

// FormLength caps the recent-form sequence kept on a standing entry.
const FormLength = 5

// Team is a registered team within a group.
type Team struct {
	ID   string
	Name string
}

// Status tracks a fixture through its lifecycle.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
)

// Fixture is one scheduled encounter between two teams of a group.
type Fixture struct {
	Group    int
	Matchday int
	Week     int
	Home     string
	Away     string
	Date     time.Time
	Status   Status
}

// Side identifies the home or away team of an encounter.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Valid reports whether s names one of the two sides.
func (s Side) Valid() bool {
	return s == SideHome || s == SideAway
}

// MatchKind is the discipline of an individual match within an encounter.
type MatchKind string

const (
	MenSingles   MatchKind = "MS"
	WomenSingles MatchKind = "WS"
	MenDoubles   MatchKind = "MD"
	WomenDoubles MatchKind = "WD"
	MixedDoubles MatchKind = "XD"
)

// MatchKinds lists the five disciplines in playing order.
var MatchKinds = []MatchKind{MenSingles, WomenSingles, MenDoubles, WomenDoubles, MixedDoubles}

// Valid reports whether k is one of the five disciplines.
func (k MatchKind) Valid() bool {
	for _, known := range MatchKinds {
		if k == known {
			return true
		}
	}
	return false
}

// MatchOutcome records who won one individual match.
type MatchOutcome struct {
	Kind   MatchKind
	Winner Side
}

// Score is an encounter score as reported by the match-execution side.
type Score struct {
	Home int
	Away int
}

// EncounterResult is a completed encounter. Reported is optional; when set it
// must agree with the tally of Matches.
type EncounterResult struct {
	Group    int
	Home     string
	Away     string
	Matches  []MatchOutcome
	Reported *Score
}

// Tally counts individual match wins per side.
func (e EncounterResult) Tally() Score {
	var s Score
	for _, m := range e.Matches {
		switch m.Winner {
		case SideHome:
			s.Home++
		case SideAway:
			s.Away++
		}
	}
	return s
}

// FormResult is one entry of a team's recent form.
type FormResult string

const (
	FormWin  FormResult = "W"
	FormLoss FormResult = "L"
)

// StandingEntry is a team's row in a group table.
type StandingEntry struct {
	TeamID         string
	TeamName       string
	Position       int
	Points         int
	Played         int
	EncountersWon  int
	EncountersLost int
	MatchesWon     int
	MatchesLost    int
	Form           []FormResult
}

// MatchDifferential is individual matches won minus lost, the first tie-break.
func (s StandingEntry) MatchDifferential() int {
	return s.MatchesWon - s.MatchesLost
}

// FormString renders the form sequence as e.g. "WWLW".
func (s StandingEntry) FormString() string {
	var b strings.Builder
	for _, f := range s.Form {
		b.WriteString(string(f))
	}
	return b.String()
}
