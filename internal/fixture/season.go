package fixture

import (
	"github.com/cockroachdb/errors"

	"github.com/derekprior/interclub/internal/config"
	"github.com/derekprior/interclub/internal/logging"
)

// DateSource hands out a DateFunc for a group playing totalMatchdays over weeks.
type DateSource interface {
	DateFunc(totalMatchdays, weeks int) DateFunc
}

// GenerateSeason builds a schedule for every configured group, in config order.
// A nil DateSource leaves fixture dates unset.
func GenerateSeason(cfg *config.Config, dates DateSource) ([]*Schedule, error) {
	log := logging.Default()
	schedules := make([]*Schedule, 0, len(cfg.Groups))
	for _, g := range cfg.Groups {
		n := len(g.Teams)
		var dateFn DateFunc
		if dates != nil {
			dateFn = dates.DateFunc(n*(n-1), cfg.Season.Weeks)
		}
		s, err := Generate(g.Number, g.TeamIDs(), cfg.Season.Weeks, dateFn)
		if err != nil {
			return nil, errors.Wrapf(err, "generating group %d", g.Number)
		}
		log.Debug("group schedule generated",
			"group", g.Number,
			"teams", n,
			"fixtures", len(s.Fixtures),
			"week_loads", s.WeekLoads(cfg.Season.Weeks))
		schedules = append(schedules, s)
	}
	return schedules, nil
}
