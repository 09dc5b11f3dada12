package store

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS teams (
    team_id      TEXT PRIMARY KEY,
    group_number INTEGER NOT NULL,
    seq          INTEGER NOT NULL,
    name         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fixtures (
    group_number  INTEGER NOT NULL,
    matchday      INTEGER NOT NULL,
    week          INTEGER NOT NULL,
    home_team_id  TEXT NOT NULL,
    away_team_id  TEXT NOT NULL,
    match_date    TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL,
    reported_home INTEGER,
    reported_away INTEGER,
    PRIMARY KEY (group_number, matchday),
    UNIQUE (group_number, home_team_id, away_team_id)
);

CREATE TABLE IF NOT EXISTS match_outcomes (
    group_number INTEGER NOT NULL,
    matchday     INTEGER NOT NULL,
    seq          INTEGER NOT NULL,
    kind         TEXT NOT NULL DEFAULT '',
    winner       TEXT NOT NULL,
    PRIMARY KEY (group_number, matchday, seq)
);

CREATE TABLE IF NOT EXISTS standings (
    group_number    INTEGER NOT NULL,
    team_id         TEXT NOT NULL,
    position        INTEGER NOT NULL,
    team_name       TEXT NOT NULL,
    points          INTEGER NOT NULL,
    played          INTEGER NOT NULL,
    encounters_won  INTEGER NOT NULL,
    encounters_lost INTEGER NOT NULL,
    matches_won     INTEGER NOT NULL,
    matches_lost    INTEGER NOT NULL,
    form            TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (group_number, team_id)
);
`

type teamModel struct {
	TeamID string `db:"team_id"`
	Group  int    `db:"group_number"`
	Seq    int    `db:"seq"`
	Name   string `db:"name"`
}

type fixtureModel struct {
	Group        int           `db:"group_number"`
	Matchday     int           `db:"matchday"`
	Week         int           `db:"week"`
	Home         string        `db:"home_team_id"`
	Away         string        `db:"away_team_id"`
	MatchDate    string        `db:"match_date"`
	Status       string        `db:"status"`
	ReportedHome sql.NullInt64 `db:"reported_home"`
	ReportedAway sql.NullInt64 `db:"reported_away"`
}

type outcomeModel struct {
	Group    int    `db:"group_number"`
	Matchday int    `db:"matchday"`
	Seq      int    `db:"seq"`
	Kind     string `db:"kind"`
	Winner   string `db:"winner"`
}

type standingModel struct {
	Group          int    `db:"group_number"`
	TeamID         string `db:"team_id"`
	Position       int    `db:"position"`
	TeamName       string `db:"team_name"`
	Points         int    `db:"points"`
	Played         int    `db:"played"`
	EncountersWon  int    `db:"encounters_won"`
	EncountersLost int    `db:"encounters_lost"`
	MatchesWon     int    `db:"matches_won"`
	MatchesLost    int    `db:"matches_lost"`
	Form           string `db:"form"`
}
