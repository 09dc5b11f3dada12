package excel

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/interclub/internal/config"
	"github.com/derekprior/interclub/internal/league"
)

// SheetFixture is one fixture as read back from the Fixtures sheet.
type SheetFixture struct {
	Row int
	league.Fixture
}

// ReadFixtures parses the Fixtures sheet. Columns are located by header so a
// hand-edited sheet with reordered or extra columns still reads.
func ReadFixtures(f *excelize.File) ([]SheetFixture, error) {
	rows, err := f.GetRows(FixturesSheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", FixturesSheet)
	}
	if len(rows) == 0 {
		return nil, errors.Newf("%s is empty", FixturesSheet)
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.TrimSpace(h)] = i
	}
	for _, h := range []string{"Matchday", "Week", "Date", "Group", "Home", "Away"} {
		if _, ok := col[h]; !ok {
			return nil, errors.Newf("%s is missing the %s column", FixturesSheet, h)
		}
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []SheetFixture
	for i, row := range rows[1:] {
		rowNum := i + 2
		if get(row, "Home") == "" && get(row, "Away") == "" {
			continue
		}
		var r SheetFixture
		r.Row = rowNum
		r.Home = get(row, "Home")
		r.Away = get(row, "Away")
		r.Status = league.Status(get(row, "Status"))
		for name, dst := range map[string]*int{"Matchday": &r.Matchday, "Week": &r.Week, "Group": &r.Group} {
			n, err := strconv.Atoi(get(row, name))
			if err != nil {
				return nil, errors.Newf("row %d: %s %q is not a number", rowNum, name, get(row, name))
			}
			*dst = n
		}
		if s := get(row, "Date"); s != "" {
			d, err := time.Parse(DateLayout, s)
			if err != nil {
				return nil, errors.Newf("row %d: date %q is not %s", rowNum, s, DateLayout)
			}
			r.Date = d
		}
		out = append(out, r)
	}
	return out, nil
}

// UpdateTeamSheets rebuilds every team sheet from the (possibly hand-edited)
// Fixtures sheet and saves the workbook in place.
func UpdateTeamSheets(path string, cfg *config.Config) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer f.Close()

	rows, err := ReadFixtures(f)
	if err != nil {
		return err
	}
	fixtures := make([]league.Fixture, 0, len(rows))
	for _, r := range rows {
		fixtures = append(fixtures, r.Fixture)
	}

	for id, sheet := range TeamSheets(cfg.AllTeams()) {
		if err := f.DeleteSheet(sheet); err != nil {
			return errors.Wrapf(err, "removing sheet for %s", id)
		}
	}
	st, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeTeamSheets(f, cfg, st, fixtures); err != nil {
		return errors.Wrap(err, "writing team sheets")
	}
	return f.Save()
}
