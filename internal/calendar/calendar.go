// Package calendar turns matchday numbers into playing dates.
package calendar

import (
	"sort"
	"time"

	"github.com/derekprior/interclub/internal/config"
	"github.com/derekprior/interclub/internal/fixture"
	"github.com/derekprior/interclub/internal/logging"
)

// Calendar places matchdays on the configured play days of each season week.
type Calendar struct {
	start     time.Time
	playDays  map[time.Weekday]bool
	blackouts map[time.Time]string
}

// New builds a Calendar from the season config.
func New(season config.Season) (*Calendar, error) {
	days, err := season.PlayWeekdays()
	if err != nil {
		return nil, err
	}
	c := &Calendar{
		start:     truncate(season.StartDate.Time),
		playDays:  make(map[time.Weekday]bool, len(days)),
		blackouts: make(map[time.Time]string, len(season.BlackoutDates)),
	}
	for _, d := range days {
		c.playDays[d] = true
	}
	for _, b := range season.BlackoutDates {
		c.blackouts[truncate(b.Date.Time)] = b.Reason
	}
	return c, nil
}

// WeekStart returns the first day of a 1-based season week.
func (c *Calendar) WeekStart(week int) time.Time {
	return c.start.AddDate(0, 0, 7*(week-1))
}

// PlayDates returns the usable play dates of a week, in date order. Blackout
// dates are skipped.
func (c *Calendar) PlayDates(week int) []time.Time {
	first := c.WeekStart(week)
	var dates []time.Time
	for i := range 7 {
		d := first.AddDate(0, 0, i)
		if !c.playDays[d.Weekday()] {
			continue
		}
		if _, blocked := c.blackouts[d]; blocked {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Blackout reports whether a date is blacked out and why.
func (c *Calendar) Blackout(d time.Time) (string, bool) {
	reason, ok := c.blackouts[truncate(d)]
	return reason, ok
}

// DateFunc spreads a group's matchdays over each week's play dates. The k-th
// matchday of a week goes to play date k mod len(dates); a week without any
// usable play date falls back to its first day, with a warning logged.
func (c *Calendar) DateFunc(totalMatchdays, weeks int) fixture.DateFunc {
	sizes := fixture.Distribute(totalMatchdays, weeks)
	dates := make([]time.Time, 0, totalMatchdays)
	for w, n := range sizes {
		week := w + 1
		candidates := c.PlayDates(week)
		if len(candidates) == 0 && n > 0 {
			fallback := c.WeekStart(week)
			logging.Default().Warn("week has no usable play date, using week start",
				"week", week, "date", fallback.Format("2006-01-02"), "matchdays", n)
			for range n {
				dates = append(dates, fallback)
			}
			continue
		}
		for k := range n {
			dates = append(dates, candidates[k%len(candidates)])
		}
	}

	return func(matchday int) time.Time {
		if matchday < 1 || matchday > len(dates) {
			return time.Time{}
		}
		return dates[matchday-1]
	}
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
