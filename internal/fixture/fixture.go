// Package fixture builds double round-robin fixture lists for a group and
// spreads their matchdays over the weeks of a season.
package fixture

import (
	"strings"
	"time"

	"github.com/derekprior/interclub/internal/league"
)

// DateFunc returns the calendar date for a 1-based matchday number.
type DateFunc func(matchday int) time.Time

// Schedule is the output of Generate for one group.
type Schedule struct {
	Group    int
	Fixtures []league.Fixture
	Weeks    map[int][]int // week number -> matchday numbers
}

// WeekLoads returns the number of matchdays in each week, in week order.
func (s *Schedule) WeekLoads(weekCount int) []int {
	loads := make([]int, weekCount)
	for w, days := range s.Weeks {
		if w >= 1 && w <= weekCount {
			loads[w-1] = len(days)
		}
	}
	return loads
}

// Generate produces the double round-robin for a group: for every pair (i, j)
// with i before j, the fixture with i at home and then the return leg. Return
// legs are not spread apart, so both legs of a pairing sit on adjacent
// matchdays.
//
// Fewer than two teams yields an empty schedule. A non-positive weekCount or a
// blank or repeated team id is an input error.
func Generate(group int, teamIDs []string, weekCount int, dateFn DateFunc) (*Schedule, error) {
	if weekCount <= 0 {
		return nil, league.InputErrorf("group %d: week count must be positive, got %d", group, weekCount)
	}
	seen := make(map[string]bool, len(teamIDs))
	for i, id := range teamIDs {
		if strings.TrimSpace(id) == "" {
			return nil, league.InputErrorf("group %d: team %d has an empty id", group, i+1)
		}
		if seen[id] {
			return nil, league.InputErrorf("group %d: team %q listed twice", group, id)
		}
		seen[id] = true
	}

	s := &Schedule{Group: group, Weeks: make(map[int][]int)}
	if len(teamIDs) < 2 {
		return s, nil
	}

	pairs := pairings(teamIDs)
	weekOf := weekIndex(Distribute(len(pairs), weekCount))

	s.Fixtures = make([]league.Fixture, 0, len(pairs))
	for i, p := range pairs {
		matchday := i + 1
		week := weekOf[i]
		var date time.Time
		if dateFn != nil {
			date = dateFn(matchday)
		}
		s.Fixtures = append(s.Fixtures, league.Fixture{
			Group:    group,
			Matchday: matchday,
			Week:     week,
			Home:     p.home,
			Away:     p.away,
			Date:     date,
			Status:   league.StatusScheduled,
		})
		s.Weeks[week] = append(s.Weeks[week], matchday)
	}

	return s, nil
}

type pairing struct {
	home, away string
}

func pairings(teams []string) []pairing {
	out := make([]pairing, 0, len(teams)*(len(teams)-1))
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			out = append(out,
				pairing{home: teams[i], away: teams[j]},
				pairing{home: teams[j], away: teams[i]},
			)
		}
	}
	return out
}

// Distribute splits total matchdays across weeks as evenly as possible. The
// first total%weeks weeks carry one extra matchday.
func Distribute(total, weeks int) []int {
	if weeks <= 0 {
		return nil
	}
	sizes := make([]int, weeks)
	base, extra := total/weeks, total%weeks
	for w := range sizes {
		sizes[w] = base
		if w < extra {
			sizes[w]++
		}
	}
	return sizes
}

// weekIndex maps each 0-based matchday position to its 1-based week.
func weekIndex(sizes []int) []int {
	total := 0
	for _, n := range sizes {
		total += n
	}
	out := make([]int, 0, total)
	for w, n := range sizes {
		for range n {
			out = append(out, w+1)
		}
	}
	return out
}
