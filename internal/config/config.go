package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/interclub/internal/league"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return errors.Wrapf(err, "invalid date %q", value.Value)
	}
	d.Time = t
	return nil
}

type BlackoutDate struct {
	Date   Date   `yaml:"date"`
	Reason string `yaml:"reason"`
}

type Season struct {
	Name          string         `yaml:"name"`
	StartDate     Date           `yaml:"start_date"`
	Weeks         int            `yaml:"weeks" validate:"gte=1"`
	PlayDays      []string       `yaml:"play_days" validate:"required,min=1"`
	BlackoutDates []BlackoutDate `yaml:"blackout_dates"`
}

type Team struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

type Group struct {
	Number int    `yaml:"number" validate:"gte=1"`
	Teams  []Team `yaml:"teams" validate:"min=2,dive"`
}

// Roster returns the group's teams in registration order.
func (g Group) Roster() []league.Team {
	roster := make([]league.Team, 0, len(g.Teams))
	for _, t := range g.Teams {
		roster = append(roster, league.Team{ID: t.ID, Name: t.Name})
	}
	return roster
}

// TeamIDs returns the group's team identifiers in registration order.
func (g Group) TeamIDs() []string {
	ids := make([]string, 0, len(g.Teams))
	for _, t := range g.Teams {
		ids = append(ids, t.ID)
	}
	return ids
}

type Config struct {
	Season   Season  `yaml:"season"`
	Groups   []Group `yaml:"groups" validate:"required,min=1,dive"`
	LogLevel string  `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// AllTeams returns all teams across all groups.
func (c *Config) AllTeams() []league.Team {
	var teams []league.Team
	for _, g := range c.Groups {
		teams = append(teams, g.Roster()...)
	}
	return teams
}

// Group returns the group with the given number.
func (c *Config) Group(number int) (Group, bool) {
	for _, g := range c.Groups {
		if g.Number == number {
			return g, true
		}
	}
	return Group{}, false
}

// Rosters returns each group's roster keyed by group number.
func (c *Config) Rosters() map[int][]league.Team {
	rosters := make(map[int][]league.Team, len(c.Groups))
	for _, g := range c.Groups {
		rosters[g.Number] = g.Roster()
	}
	return rosters
}

// TeamName looks up a team's display name, falling back to its id.
func (c *Config) TeamName(id string) string {
	for _, g := range c.Groups {
		for _, t := range g.Teams {
			if t.ID == id {
				return t.Name
			}
		}
	}
	return id
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// PlayWeekdays converts the configured play day names.
func (s Season) PlayWeekdays() ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(s.PlayDays))
	for _, name := range s.PlayDays {
		d, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.Newf("unknown play day %q", name)
		}
		days = append(days, d)
	}
	return days, nil
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Mark(err, league.ErrInput)
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	return LoadFromBytes(data)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidation(err)
	}

	if c.Season.StartDate.Time.IsZero() {
		return errors.New("season start_date is required")
	}
	if _, err := c.Season.PlayWeekdays(); err != nil {
		return err
	}

	// Group numbers and team ids must be unique across the season
	groups := make(map[int]bool)
	seen := make(map[string]int)
	for _, g := range c.Groups {
		if groups[g.Number] {
			return errors.Newf("group %d is defined twice", g.Number)
		}
		groups[g.Number] = true
		for _, t := range g.Teams {
			if prev, ok := seen[t.ID]; ok {
				return errors.Newf("team %q appears in both group %d and group %d", t.ID, prev, g.Number)
			}
			seen[t.ID] = g.Number
		}
	}

	return nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "validating config")
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return errors.Newf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	}
	return errors.Newf("%s must satisfy %s", field, fe.Tag())
}
