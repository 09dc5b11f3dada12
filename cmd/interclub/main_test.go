package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/interclub/internal/results"
	"github.com/derekprior/interclub/internal/store"
)

const seasonResults = `
encounters:
  - group: 1
    home: ghent-1
    away: lokeren-1
    score: "4-1"
    matches:
      - {kind: MS, winner: home}
      - {kind: WS, winner: home}
      - {kind: MD, winner: away}
      - {kind: WD, winner: home}
      - {kind: XD, winner: home}
  - group: 2
    home: brugge-1
    away: oostende-1
    matches:
      - {winner: away}
      - {winner: away}
      - {winner: away}
      - {winner: home}
      - {winner: home}
`

func TestInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, runInit(path))

	err := runInit(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestGenerateAndComputeWithStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, runInit(configPath))

	cfg, err := loadConfig(configPath, "error")
	require.NoError(t, err)

	fixturesPath := filepath.Join(dir, "fixtures.xlsx")
	dbPath := filepath.Join(dir, "league.db")
	require.NoError(t, runGenerate(ctx, cfg, fixturesPath, dbPath))
	require.FileExists(t, fixturesPath)

	// Generated workbooks only carry return-leg warnings.
	require.NoError(t, runValidate(cfg, fixturesPath))

	resultsPath := filepath.Join(dir, "results.yaml")
	require.NoError(t, os.WriteFile(resultsPath, []byte(seasonResults), 0o644))
	standingsPath := filepath.Join(dir, "standings.xlsx")
	jsonPath := filepath.Join(dir, "standings.json")
	require.NoError(t, runCompute(ctx, cfg, resultsPath, standingsPath, jsonPath, dbPath))
	require.FileExists(t, standingsPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc results.StandingsDocument
	require.NoError(t, sonic.Unmarshal(data, &doc))
	require.Len(t, doc.Groups, 2)
	assert.Equal(t, "2026 Interclub", doc.Season)
	assert.Equal(t, "ghent-1", doc.Groups[0].Standings[0].TeamID)
	assert.Equal(t, "oostende-1", doc.Groups[1].Standings[0].TeamID)

	db, err := store.Open(ctx, dbPath)
	require.NoError(t, err)
	defer db.Close()
	stored, err := db.ListStandings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, 3, stored[0].Points)
	assert.Equal(t, "W", stored[0].FormString())
}

func TestComputeWithoutStore(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, runInit(configPath))
	cfg, err := loadConfig(configPath, "error")
	require.NoError(t, err)

	bad := strings.Replace(seasonResults, "home: brugge-1", "home: ghent-1", 1)
	resultsPath := filepath.Join(dir, "results.yaml")
	require.NoError(t, os.WriteFile(resultsPath, []byte(bad), 0o644))

	err = runCompute(context.Background(), cfg, resultsPath, filepath.Join(dir, "standings.xlsx"), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group 2")
	assert.NoFileExists(t, filepath.Join(dir, "standings.xlsx"))
}

func TestResolveConfigPath(t *testing.T) {
	got, err := resolveConfigPath("custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", got)

	t.Chdir(t.TempDir())
	_, err = resolveConfigPath("")
	assert.ErrorContains(t, err, "no config file found")
}
