package main

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/derekprior/interclub/internal/calendar"
	"github.com/derekprior/interclub/internal/config"
	"github.com/derekprior/interclub/internal/excel"
	"github.com/derekprior/interclub/internal/fixture"
	"github.com/derekprior/interclub/internal/logging"
	"github.com/derekprior/interclub/internal/store"
	"github.com/derekprior/interclub/internal/validator"
)

func newFixturesCmd(configFile, logLevel *string) *cobra.Command {
	fixturesCmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate and validate fixture lists",
	}

	var outputFile, dbPath string
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate every group's double round-robin from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile, *logLevel)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cfg, outputFile, dbPath)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "fixtures.xlsx", "Output Excel file path")
	generateCmd.Flags().StringVar(&dbPath, "db", "", "Also store teams and fixtures in this sqlite database")

	validateCmd := &cobra.Command{
		Use:          "validate <fixtures.xlsx>",
		Short:        "Check a fixtures workbook against the config",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile, *logLevel)
			if err != nil {
				return err
			}
			return runValidate(cfg, args[0])
		},
	}

	fixturesCmd.AddCommand(generateCmd, validateCmd)
	return fixturesCmd
}

func runGenerate(ctx context.Context, cfg *config.Config, outputPath, dbPath string) error {
	cal, err := calendar.New(cfg.Season)
	if err != nil {
		return errors.Wrap(err, "building calendar")
	}

	schedules, err := fixture.GenerateSeason(cfg, cal)
	if err != nil {
		return err
	}

	total := 0
	for _, s := range schedules {
		total += len(s.Fixtures)
	}
	fmt.Printf("✓ Generated %d fixtures for %d groups over %d weeks\n", total, len(schedules), cfg.Season.Weeks)

	fmt.Println("\nMatchdays per week:")
	fmt.Printf("  %-8s", "Group")
	for w := 1; w <= cfg.Season.Weeks; w++ {
		fmt.Printf(" %4s", fmt.Sprintf("W%d", w))
	}
	fmt.Println()
	for _, s := range schedules {
		fmt.Printf("  %-8d", s.Group)
		for _, n := range s.WeekLoads(cfg.Season.Weeks) {
			fmt.Printf(" %4d", n)
		}
		fmt.Println()
	}

	f, err := excel.Generate(cfg, schedules)
	if err != nil {
		return errors.Wrap(err, "generating Excel")
	}
	if err := f.SaveAs(outputPath); err != nil {
		return errors.Wrap(err, "saving file")
	}
	fmt.Printf("\n✓ Fixtures saved to %s\n", outputPath)

	if dbPath == "" {
		return nil
	}
	if err := storeFixtures(ctx, cfg, schedules, dbPath); err != nil {
		return err
	}
	fmt.Printf("✓ Teams and fixtures stored in %s\n", dbPath)
	return nil
}

// storeFixtures replaces every configured group's roster and fixtures in the
// database. Results already recorded for those groups are dropped.
func storeFixtures(ctx context.Context, cfg *config.Config, schedules []*fixture.Schedule, dbPath string) error {
	db, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, s := range schedules {
		g, _ := cfg.Group(s.Group)
		if err := db.SaveTeams(ctx, s.Group, g.Roster()); err != nil {
			return errors.Wrapf(err, "group %d", s.Group)
		}
		if err := db.SaveFixtures(ctx, s.Group, s.Fixtures); err != nil {
			return errors.Wrapf(err, "group %d", s.Group)
		}
		logging.Default().Info("group stored", "group", s.Group, "fixtures", len(s.Fixtures))
	}
	return nil
}

func runValidate(cfg *config.Config, fixturesPath string) error {
	violations, err := validator.Validate(cfg, fixturesPath)
	if err != nil {
		return errors.Wrap(err, "validating")
	}

	errs := 0
	warnings := 0
	for _, v := range violations {
		where := ""
		if v.Row > 0 {
			where = fmt.Sprintf(" (row %d)", v.Row)
		}
		switch v.Type {
		case validator.TypeError:
			errs++
			fmt.Printf("✗ %s%s\n", v.Message, where)
		case validator.TypeWarning:
			warnings++
			fmt.Printf("⚠ %s%s\n", v.Message, where)
		}
	}

	fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errs, warnings)

	// Regenerate team sheets from the Fixtures sheet
	if err := excel.UpdateTeamSheets(fixturesPath, cfg); err != nil {
		return errors.Wrap(err, "updating team sheets")
	}
	fmt.Printf("✓ Team sheets updated in %s\n", fixturesPath)

	if errs > 0 {
		return errors.Newf("%d errors found", errs)
	}
	return nil
}
