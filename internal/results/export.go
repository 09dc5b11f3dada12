package results

import (
	"io"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/derekprior/interclub/internal/league"
)

// StandingsDocument is the JSON export of a season's tables.
type StandingsDocument struct {
	Season string           `json:"season"`
	Groups []GroupStandings `json:"groups"`
}

type GroupStandings struct {
	Group     int              `json:"group"`
	Standings []StandingRecord `json:"standings"`
}

type StandingRecord struct {
	Position       int    `json:"position"`
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	Points         int    `json:"points"`
	Played         int    `json:"played"`
	EncountersWon  int    `json:"encounters_won"`
	EncountersLost int    `json:"encounters_lost"`
	MatchesWon     int    `json:"matches_won"`
	MatchesLost    int    `json:"matches_lost"`
	Form           string `json:"form"`
}

// NewStandingsDocument orders groups by number and flattens each entry.
func NewStandingsDocument(season string, tables map[int][]league.StandingEntry) StandingsDocument {
	groups := make([]int, 0, len(tables))
	for g := range tables {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	doc := StandingsDocument{Season: season, Groups: make([]GroupStandings, 0, len(groups))}
	for _, g := range groups {
		gs := GroupStandings{Group: g, Standings: make([]StandingRecord, 0, len(tables[g]))}
		for _, e := range tables[g] {
			gs.Standings = append(gs.Standings, StandingRecord{
				Position:       e.Position,
				TeamID:         e.TeamID,
				TeamName:       e.TeamName,
				Points:         e.Points,
				Played:         e.Played,
				EncountersWon:  e.EncountersWon,
				EncountersLost: e.EncountersLost,
				MatchesWon:     e.MatchesWon,
				MatchesLost:    e.MatchesLost,
				Form:           e.FormString(),
			})
		}
		doc.Groups = append(doc.Groups, gs)
	}
	return doc
}

// WriteStandingsJSON writes the season's tables as indented JSON.
func WriteStandingsJSON(w io.Writer, season string, tables map[int][]league.StandingEntry) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewStandingsDocument(season, tables)); err != nil {
		return errors.Wrap(err, "encoding standings")
	}
	return nil
}
