package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/derekprior/interclub/internal/calendar"
	"github.com/derekprior/interclub/internal/config"
	"github.com/derekprior/interclub/internal/excel"
	"github.com/derekprior/interclub/internal/fixture"
	"github.com/derekprior/interclub/internal/league"
	"github.com/derekprior/interclub/internal/logging"
	"github.com/derekprior/interclub/internal/results"
	"github.com/derekprior/interclub/internal/standings"
	"github.com/derekprior/interclub/internal/store"
)

func newStandingsCmd(configFile, logLevel *string) *cobra.Command {
	standingsCmd := &cobra.Command{
		Use:   "standings",
		Short: "Compute group standings from encounter results",
	}

	var resultsFile, outputFile, jsonFile, dbPath string
	computeCmd := &cobra.Command{
		Use:          "compute",
		Short:        "Rank every group from a results file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile, *logLevel)
			if err != nil {
				return err
			}
			return runCompute(cmd.Context(), cfg, resultsFile, outputFile, jsonFile, dbPath)
		},
	}
	computeCmd.Flags().StringVarP(&resultsFile, "results", "r", "", "Encounter results file (.yaml, .yml or .json)")
	computeCmd.Flags().StringVarP(&outputFile, "output", "o", "standings.xlsx", "Output Excel file path")
	computeCmd.Flags().StringVar(&jsonFile, "json", "", "Also write standings as JSON to this path")
	computeCmd.Flags().StringVar(&dbPath, "db", "", "Record results in this sqlite database and rank from everything recorded there")
	_ = computeCmd.MarkFlagRequired("results")

	standingsCmd.AddCommand(computeCmd)
	return standingsCmd
}

func runCompute(ctx context.Context, cfg *config.Config, resultsPath, outputPath, jsonPath, dbPath string) error {
	encounters, err := results.Load(resultsPath)
	if err != nil {
		return errors.Wrap(err, "loading results")
	}
	fmt.Printf("✓ Loaded %d encounter results from %s\n", len(encounters), resultsPath)

	var tables map[int][]league.StandingEntry
	if dbPath != "" {
		tables, err = computeFromStore(ctx, cfg, encounters, dbPath)
	} else {
		tables, err = standings.ComputeGroups(cfg.Rosters(), encounters)
	}
	if err != nil {
		return err
	}

	printStandings(cfg, tables)

	f, err := excel.GenerateStandings(cfg, tables)
	if err != nil {
		return errors.Wrap(err, "generating Excel")
	}
	if err := f.SaveAs(outputPath); err != nil {
		return errors.Wrap(err, "saving file")
	}
	fmt.Printf("\n✓ Standings saved to %s\n", outputPath)

	if jsonPath != "" {
		if err := writeJSON(cfg, tables, jsonPath); err != nil {
			return err
		}
		fmt.Printf("✓ Standings JSON saved to %s\n", jsonPath)
	}
	return nil
}

// computeFromStore records encounters against the stored fixtures and ranks
// each group from every result recorded so far. Groups without stored
// fixtures get a freshly generated schedule first.
func computeFromStore(ctx context.Context, cfg *config.Config, encounters []league.EncounterResult, dbPath string) (map[int][]league.StandingEntry, error) {
	log := logging.Default()
	db, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cal, err := calendar.New(cfg.Season)
	if err != nil {
		return nil, errors.Wrap(err, "building calendar")
	}
	for _, g := range cfg.Groups {
		existing, err := db.ListFixtures(ctx, g.Number)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			continue
		}
		n := len(g.Teams)
		s, err := fixture.Generate(g.Number, g.TeamIDs(), cfg.Season.Weeks, cal.DateFunc(n*(n-1), cfg.Season.Weeks))
		if err != nil {
			return nil, errors.Wrapf(err, "generating group %d", g.Number)
		}
		if err := db.SaveTeams(ctx, g.Number, g.Roster()); err != nil {
			return nil, errors.Wrapf(err, "group %d", g.Number)
		}
		if err := db.SaveFixtures(ctx, g.Number, s.Fixtures); err != nil {
			return nil, errors.Wrapf(err, "group %d", g.Number)
		}
		log.Info("fixtures generated for group without stored schedule", "group", g.Number)
	}

	for i, e := range encounters {
		if err := db.RecordResult(ctx, e); err != nil {
			return nil, errors.Wrapf(err, "encounter %d", i+1)
		}
	}
	log.Debug("results recorded", "count", len(encounters))

	tables := make(map[int][]league.StandingEntry, len(cfg.Groups))
	for _, g := range cfg.Groups {
		roster, err := db.ListTeams(ctx, g.Number)
		if err != nil {
			return nil, err
		}
		completed, err := db.ListCompletedEncounters(ctx, g.Number)
		if err != nil {
			return nil, err
		}
		table, err := standings.Compute(roster, completed)
		if err != nil {
			return nil, errors.Wrapf(err, "group %d", g.Number)
		}
		if err := db.ReplaceStandings(ctx, g.Number, table); err != nil {
			return nil, errors.Wrapf(err, "group %d", g.Number)
		}
		log.Debug("standings stored", "group", g.Number, "encounters", len(completed))
		tables[g.Number] = table
	}
	return tables, nil
}

func printStandings(cfg *config.Config, tables map[int][]league.StandingEntry) {
	groups := make([]int, 0, len(tables))
	for g := range tables {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	for _, g := range groups {
		fmt.Printf("\nGroup %d:\n", g)
		fmt.Printf("  %3s %-24s %3s %3s %3s %4s %4s %5s %4s  %s\n",
			"Pos", "Team", "Pld", "W", "L", "MW", "ML", "Diff", "Pts", "Form")
		for _, e := range tables[g] {
			name := e.TeamName
			if name == "" {
				name = cfg.TeamName(e.TeamID)
			}
			fmt.Printf("  %3d %-24s %3d %3d %3d %4d %4d %+5d %4d  %s\n",
				e.Position, name, e.Played, e.EncountersWon, e.EncountersLost,
				e.MatchesWon, e.MatchesLost, e.MatchDifferential(), e.Points, e.FormString())
		}
	}
}

func writeJSON(cfg *config.Config, tables map[int][]league.StandingEntry, path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating JSON file")
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing JSON file")
		}
	}()
	return results.WriteStandingsJSON(out, cfg.Season.Name, tables)
}
