// Package excel writes fixture and standings workbooks.
package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/interclub/internal/config"
	"github.com/derekprior/interclub/internal/fixture"
	"github.com/derekprior/interclub/internal/league"
)

// FixturesSheet is the name of the master sheet listing every fixture.
const FixturesSheet = "Fixtures"

// DateLayout is how fixture dates are written to and read from the workbook.
const DateLayout = "2006-01-02"

// FixtureHeaders are the columns of the master sheet, in order.
var FixtureHeaders = []string{"Matchday", "Week", "Date", "Day", "Group", "Home", "Away", "Status", "Note"}

var teamHeaders = []string{"Matchday", "Week", "Date", "Day", "Opponent", "Home/Away", "Status"}

var standingHeaders = []string{"Pos", "Team", "Pld", "W", "L", "MW", "ML", "Diff", "Pts", "Form"}

type styles struct {
	header   int
	cell     int
	centered int
	done     int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, errors.Wrap(err, "header style")
	}
	s.cell, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	if err != nil {
		return s, errors.Wrap(err, "cell style")
	}
	s.centered, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, errors.Wrap(err, "centered style")
	}
	s.done, err = f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C6EFCE"}},
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	if err != nil {
		return s, errors.Wrap(err, "completed style")
	}
	return s, nil
}

// Generate creates a workbook with the master fixture list and one sheet per team.
func Generate(cfg *config.Config, schedules []*fixture.Schedule) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetDefaultFont("Arial"); err != nil {
		return nil, errors.Wrap(err, "setting default font")
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	// The default sheet becomes the master list so no team sheet can land on it.
	if err := f.SetSheetName("Sheet1", FixturesSheet); err != nil {
		return nil, errors.Wrap(err, "renaming default sheet")
	}
	fixtures := sortedFixtures(schedules)
	if err := writeFixturesSheet(f, cfg, st, fixtures); err != nil {
		return nil, errors.Wrap(err, "writing fixtures sheet")
	}
	if err := writeTeamSheets(f, cfg, st, fixtures); err != nil {
		return nil, errors.Wrap(err, "writing team sheets")
	}
	return f, nil
}

// sortedFixtures flattens schedules into week, group, matchday order.
func sortedFixtures(schedules []*fixture.Schedule) []league.Fixture {
	var all []league.Fixture
	for _, s := range schedules {
		all = append(all, s.Fixtures...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Matchday < b.Matchday
	})
	return all
}

func writeFixturesSheet(f *excelize.File, cfg *config.Config, st styles, fixtures []league.Fixture) error {
	sheet := FixturesSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, FixtureHeaders, st); err != nil {
		return err
	}

	blackouts := make(map[string]string, len(cfg.Season.BlackoutDates))
	for _, b := range cfg.Season.BlackoutDates {
		blackouts[b.Date.Time.Format(DateLayout)] = b.Reason
	}

	for i, fx := range fixtures {
		row := i + 2
		date, day := formatDate(fx.Date)
		values := []any{fx.Matchday, fx.Week, date, day, fx.Group, fx.Home, fx.Away, string(fx.Status), blackouts[date]}
		if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellRef(1, row), cellRef(5, row), st.centered); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellRef(6, row), cellRef(len(FixtureHeaders), row), st.cell); err != nil {
			return err
		}
	}

	widths := []float64{14, 10, 18, 8, 10, 24, 24, 16, 28}
	for i, w := range widths {
		col := colLetter(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	if len(fixtures) == 0 {
		return nil
	}
	// Completed fixtures get a green row.
	lastRow := len(fixtures) + 1
	return f.SetConditionalFormat(sheet, fmt.Sprintf("A2:%s%d", colLetter(len(FixtureHeaders)), lastRow),
		[]excelize.ConditionalFormatOptions{{
			Type:     "formula",
			Criteria: fmt.Sprintf(`$H2="%s"`, league.StatusCompleted),
			Format:   &st.done,
		}})
}

func writeTeamSheets(f *excelize.File, cfg *config.Config, st styles, fixtures []league.Fixture) error {
	teams := cfg.AllTeams()
	names := TeamSheets(teams)
	for _, team := range teams {
		sheet := names[team.ID]
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "team %s", team.ID)
		}
		if err := writeHeader(f, sheet, teamHeaders, st); err != nil {
			return err
		}

		row := 2
		for _, fx := range fixtures {
			var opponent, side string
			switch team.ID {
			case fx.Home:
				opponent, side = fx.Away, "Home"
			case fx.Away:
				opponent, side = fx.Home, "Away"
			default:
				continue
			}
			date, day := formatDate(fx.Date)
			values := []any{fx.Matchday, fx.Week, date, day, cfg.TeamName(opponent), side, string(fx.Status)}
			if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(teamHeaders), row), st.cell); err != nil {
				return err
			}
			row++
		}

		widths := map[string]float64{"A": 14, "B": 10, "C": 18, "D": 8, "E": 28, "F": 14, "G": 16}
		for col, w := range widths {
			if err := f.SetColWidth(sheet, col, col, w); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateStandings creates a workbook with one "Group N" sheet per table.
func GenerateStandings(cfg *config.Config, tables map[int][]league.StandingEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetDefaultFont("Arial"); err != nil {
		return nil, errors.Wrap(err, "setting default font")
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	groups := make([]int, 0, len(tables))
	for g := range tables {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	for _, g := range groups {
		sheet := GroupSheet(g)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, errors.Wrapf(err, "group %d", g)
		}
		if err := writeHeader(f, sheet, standingHeaders, st); err != nil {
			return nil, err
		}
		for i, e := range tables[g] {
			row := i + 2
			name := e.TeamName
			if name == "" {
				name = cfg.TeamName(e.TeamID)
			}
			values := []any{e.Position, name, e.Played, e.EncountersWon, e.EncountersLost,
				e.MatchesWon, e.MatchesLost, e.MatchDifferential(), e.Points, e.FormString()}
			if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(standingHeaders), row), st.centered); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sheet, cellRef(2, row), cellRef(2, row), st.cell); err != nil {
				return nil, err
			}
		}
		if err := f.SetColWidth(sheet, "A", "A", 8); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "B", "B", 30); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "C", colLetter(len(standingHeaders)), 10); err != nil {
			return nil, err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "removing default sheet")
	}
	return f, nil
}

// GroupSheet names the standings sheet of a group.
func GroupSheet(group int) string {
	return fmt.Sprintf("Group %d", group)
}

// SheetName makes s usable as a worksheet name: at most 31 characters and
// none of the characters Excel reserves.
func SheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, s)
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

const maxSheetName = 31

// TeamSheets names the worksheet of every team. Names are unique ignoring
// case and never match the Fixtures sheet. A team whose name is already
// taken gets a "~N" suffix, so ids that only differ past the 31st character
// still get their own sheet.
func TeamSheets(teams []league.Team) map[string]string {
	taken := map[string]bool{strings.ToLower(FixturesSheet): true}
	names := make(map[string]string, len(teams))
	for _, team := range teams {
		base := SheetName(team.ID)
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf("~%d", n)
			r := []rune(base)
			if limit := maxSheetName - len(suffix); len(r) > limit {
				r = r[:limit]
			}
			name = string(r) + suffix
		}
		taken[strings.ToLower(name)] = true
		names[team.ID] = name
	}
	return names
}

func writeHeader(f *excelize.File, sheet string, headers []string, st styles) error {
	for i, h := range headers {
		if err := f.SetCellValue(sheet, cellRef(i+1, 1), h); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), st.header)
}

func formatDate(d time.Time) (date, day string) {
	if d.IsZero() {
		return "", ""
	}
	return d.Format(DateLayout), d.Format("Mon")
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
