// Package results reads encounter results files and writes standings exports.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/interclub/internal/league"
)

// File is the on-disk layout of a results file.
type File struct {
	Encounters []Encounter `yaml:"encounters" json:"encounters" validate:"dive"`
}

// Encounter is one completed encounter as recorded by the match-execution side.
type Encounter struct {
	Group   int     `yaml:"group" json:"group" validate:"gte=1"`
	Home    string  `yaml:"home" json:"home" validate:"required"`
	Away    string  `yaml:"away" json:"away" validate:"required,nefield=Home"`
	Score   string  `yaml:"score,omitempty" json:"score,omitempty"`
	Matches []Match `yaml:"matches" json:"matches" validate:"len=5,dive"`
}

// Match is the outcome of one individual match.
type Match struct {
	Kind   string `yaml:"kind" json:"kind" validate:"omitempty,oneof=MS WS MD WD XD"`
	Winner string `yaml:"winner" json:"winner" validate:"required,oneof=home away"`
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

// Load reads a results file, choosing YAML or JSON by extension.
func Load(path string) ([]league.EncounterResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading results file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return nil, league.InputErrorf("unsupported results file type %q", filepath.Ext(path))
	}
}

// DecodeYAML parses and validates YAML results.
func DecodeYAML(data []byte) ([]league.EncounterResult, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing results"), league.ErrInput)
	}
	return f.Results()
}

// DecodeJSON parses and validates JSON results.
func DecodeJSON(data []byte) ([]league.EncounterResult, error) {
	var f File
	if err := sonic.Unmarshal(data, &f); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing results"), league.ErrInput)
	}
	return f.Results()
}

// Results validates the records and converts them to domain values,
// keeping file order.
func (f File) Results() ([]league.EncounterResult, error) {
	out := make([]league.EncounterResult, 0, len(f.Encounters))
	for i, e := range f.Encounters {
		if err := validate.Struct(e); err != nil {
			return nil, errors.Wrapf(describeValidation(err), "encounter %d", i+1)
		}
		r, err := e.toResult()
		if err != nil {
			return nil, errors.Wrapf(err, "encounter %d", i+1)
		}
		out = append(out, r)
	}
	return out, nil
}

func (e Encounter) toResult() (league.EncounterResult, error) {
	r := league.EncounterResult{
		Group:   e.Group,
		Home:    e.Home,
		Away:    e.Away,
		Matches: make([]league.MatchOutcome, 0, len(e.Matches)),
	}
	for _, m := range e.Matches {
		r.Matches = append(r.Matches, league.MatchOutcome{
			Kind:   league.MatchKind(m.Kind),
			Winner: league.Side(m.Winner),
		})
	}
	if e.Score != "" {
		s, err := ParseScore(e.Score)
		if err != nil {
			return league.EncounterResult{}, err
		}
		r.Reported = &s
	}
	return r, nil
}

// FromResult converts a domain result back to its file record.
func FromResult(r league.EncounterResult) Encounter {
	e := Encounter{Group: r.Group, Home: r.Home, Away: r.Away}
	for _, m := range r.Matches {
		e.Matches = append(e.Matches, Match{Kind: string(m.Kind), Winner: string(m.Winner)})
	}
	if r.Reported != nil {
		e.Score = FormatScore(*r.Reported)
	}
	return e
}

// ParseScore reads a "home-away" score such as "3-2".
func ParseScore(s string) (league.Score, error) {
	home, away, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return league.Score{}, league.InputErrorf("malformed score %q", s)
	}
	var score league.Score
	if _, err := fmt.Sscanf(strings.TrimSpace(home)+" "+strings.TrimSpace(away), "%d %d", &score.Home, &score.Away); err != nil {
		return league.Score{}, league.InputErrorf("malformed score %q", s)
	}
	if score.Home < 0 || score.Away < 0 {
		return league.Score{}, league.InputErrorf("malformed score %q", s)
	}
	return score, nil
}

// FormatScore renders a score as "home-away".
func FormatScore(s league.Score) string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Mark(err, league.ErrInput)
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Encounter.")
	if fe.Param() != "" {
		return league.InputErrorf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	}
	return league.InputErrorf("%s must satisfy %s", field, fe.Tag())
}
