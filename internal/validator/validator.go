// Package validator reads a fixtures workbook back and checks it against the
// season config.
package validator

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/interclub/internal/calendar"
	"github.com/derekprior/interclub/internal/config"
	"github.com/derekprior/interclub/internal/excel"
	"github.com/derekprior/interclub/internal/fixture"
)

const (
	TypeError   = "error"
	TypeWarning = "warning"
)

// Violation represents a problem found in the workbook. Row is the sheet row,
// or 0 when the problem is not tied to one row.
type Violation struct {
	Row     int
	Type    string // "error" or "warning"
	Message string
}

// Validate reads a fixtures workbook and checks it against the config.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	fixtures, err := excel.ReadFixtures(f)
	if err != nil {
		return nil, errors.Wrap(err, "reading fixtures")
	}
	return Check(cfg, fixtures)
}

// Check runs every rule over fixtures already read from a workbook.
func Check(cfg *config.Config, fixtures []excel.SheetFixture) ([]Violation, error) {
	cal, err := calendar.New(cfg.Season)
	if err != nil {
		return nil, err
	}

	var violations []Violation

	violations = append(violations, checkTeams(cfg, fixtures)...)
	violations = append(violations, checkPairings(cfg, fixtures)...)
	violations = append(violations, checkWeekLoads(cfg, fixtures)...)

	violations = append(violations, checkReturnLegs(fixtures)...)
	violations = append(violations, checkDates(cfg, cal, fixtures)...)

	return violations, nil
}

func checkTeams(cfg *config.Config, fixtures []excel.SheetFixture) []Violation {
	var violations []Violation
	for _, r := range fixtures {
		g, ok := cfg.Group(r.Group)
		if !ok {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    TypeError,
				Message: fmt.Sprintf("group %d is not configured", r.Group),
			})
			continue
		}
		members := make(map[string]bool, len(g.Teams))
		for _, t := range g.Teams {
			members[t.ID] = true
		}
		for _, team := range []string{r.Home, r.Away} {
			if !members[team] {
				violations = append(violations, Violation{
					Row:     r.Row,
					Type:    TypeError,
					Message: fmt.Sprintf("%s is not a team of group %d", team, r.Group),
				})
			}
		}
		if r.Home == r.Away {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    TypeError,
				Message: fmt.Sprintf("%s plays itself", r.Home),
			})
		}
	}
	return violations
}

// checkPairings verifies every group plays each ordered pair exactly once.
func checkPairings(cfg *config.Config, fixtures []excel.SheetFixture) []Violation {
	type pair struct{ home, away string }
	byGroup := make(map[int]map[pair][]int)
	for _, r := range fixtures {
		if byGroup[r.Group] == nil {
			byGroup[r.Group] = make(map[pair][]int)
		}
		p := pair{r.Home, r.Away}
		byGroup[r.Group][p] = append(byGroup[r.Group][p], r.Row)
	}

	var violations []Violation
	for _, g := range cfg.Groups {
		n := len(g.Teams)
		seen := byGroup[g.Number]
		count := 0
		for _, rows := range seen {
			count += len(rows)
		}
		if want := n * (n - 1); count != want {
			violations = append(violations, Violation{
				Type:    TypeError,
				Message: fmt.Sprintf("group %d has %d fixtures, want %d", g.Number, count, want),
			})
		}

		for _, home := range g.Teams {
			for _, away := range g.Teams {
				if home.ID == away.ID {
					continue
				}
				rows := seen[pair{home.ID, away.ID}]
				switch {
				case len(rows) == 0:
					violations = append(violations, Violation{
						Type:    TypeError,
						Message: fmt.Sprintf("group %d: %s never hosts %s", g.Number, home.ID, away.ID),
					})
				case len(rows) > 1:
					violations = append(violations, Violation{
						Row:     rows[1],
						Type:    TypeError,
						Message: fmt.Sprintf("group %d: %s hosts %s %d times", g.Number, home.ID, away.ID, len(rows)),
					})
				}
			}
		}
	}
	return violations
}

// checkWeekLoads flags weeks outside the season and uneven spreads: any two
// weeks of a group may differ by at most one matchday.
func checkWeekLoads(cfg *config.Config, fixtures []excel.SheetFixture) []Violation {
	weeks := cfg.Season.Weeks
	loads := make(map[int][]int)
	var violations []Violation
	for _, r := range fixtures {
		if r.Week < 1 || r.Week > weeks {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    TypeError,
				Message: fmt.Sprintf("week %d is outside the %d-week season", r.Week, weeks),
			})
			continue
		}
		if loads[r.Group] == nil {
			loads[r.Group] = make([]int, weeks)
		}
		loads[r.Group][r.Week-1]++
	}

	groups := make([]int, 0, len(loads))
	for g := range loads {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	for _, g := range groups {
		lo, hi := loads[g][0], loads[g][0]
		for _, n := range loads[g] {
			lo, hi = min(lo, n), max(hi, n)
		}
		if hi-lo > 1 {
			violations = append(violations, Violation{
				Type:    TypeError,
				Message: fmt.Sprintf("group %d week loads %v are uneven (want %v)", g, loads[g], evenLoads(loads[g])),
			})
		}
	}
	return violations
}

func evenLoads(loads []int) []int {
	total := 0
	for _, n := range loads {
		total += n
	}
	return fixture.Distribute(total, len(loads))
}

// checkReturnLegs warns when both legs of a pairing fall on consecutive
// matchdays of a group.
func checkReturnLegs(fixtures []excel.SheetFixture) []Violation {
	type key struct {
		group    int
		matchday int
	}
	byMatchday := make(map[key]excel.SheetFixture, len(fixtures))
	for _, r := range fixtures {
		byMatchday[key{r.Group, r.Matchday}] = r
	}

	var violations []Violation
	for _, r := range fixtures {
		next, ok := byMatchday[key{r.Group, r.Matchday + 1}]
		if !ok || next.Home != r.Away || next.Away != r.Home {
			continue
		}
		violations = append(violations, Violation{
			Row:  next.Row,
			Type: TypeWarning,
			Message: fmt.Sprintf("group %d: return leg %s vs %s on matchday %d directly follows matchday %d",
				r.Group, next.Home, next.Away, next.Matchday, r.Matchday),
		})
	}
	sort.SliceStable(violations, func(i, j int) bool { return violations[i].Row < violations[j].Row })
	return violations
}

// checkDates warns about fixtures on blackout dates or outside their week.
func checkDates(cfg *config.Config, cal *calendar.Calendar, fixtures []excel.SheetFixture) []Violation {
	var violations []Violation
	for _, r := range fixtures {
		if r.Date.IsZero() {
			continue
		}
		if reason, ok := cal.Blackout(r.Date); ok {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    TypeWarning,
				Message: fmt.Sprintf("%s vs %s is on blackout date %s (%s)", r.Home, r.Away, r.Date.Format(excel.DateLayout), reason),
			})
		}
		if r.Week < 1 || r.Week > cfg.Season.Weeks {
			continue
		}
		start := cal.WeekStart(r.Week)
		if r.Date.Before(start) || !r.Date.Before(start.AddDate(0, 0, 7)) {
			violations = append(violations, Violation{
				Row:     r.Row,
				Type:    TypeWarning,
				Message: fmt.Sprintf("%s vs %s is dated %s, outside week %d", r.Home, r.Away, r.Date.Format(excel.DateLayout), r.Week),
			})
		}
	}
	return violations
}
