package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/highway-survey-etl/internal/config"
	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/couchcryptid/highway-survey-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "NH Number,Start Chainage,End Chainage,Lane L1,,Roughness BI\n" +
	",,,Start,Start,L1 Lane Roughness BI (in mm/km)\n" +
	"NH44,0,500,26.1,76.2,3000\n" +
	",500,1000,26.2,76.3,0\n"

func TestRunImport_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.InputFile = path

	var out bytes.Buffer
	err = runImport(context.Background(), cfg, importOptions{dryRun: true}, observability.NewMetricsForTesting(), slog.Default(), &out)
	require.NoError(t, err)

	var segments []domain.Segment
	require.NoError(t, json.Unmarshal(out.Bytes(), &segments))
	require.Len(t, segments, 2)
	assert.Equal(t, "NH44", segments[1].Highway)
	assert.Equal(t, domain.StatusCritical, segments[0].Lanes[0].Status.Roughness)
	assert.Equal(t, domain.StatusNormal, segments[1].Lanes[0].Status.Roughness)
	assert.NotEmpty(t, segments[0].ImportID)
	assert.False(t, segments[0].ImportedAt.IsZero())
}

func TestRunImport_DryRunNoSegments(t *testing.T) {
	// No lane columns, so the one data row yields no segment.
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("NH Number,Remark\n,\nNH44,ok\n"), 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.InputFile = path

	var out bytes.Buffer
	err = runImport(context.Background(), cfg, importOptions{dryRun: true}, observability.NewMetricsForTesting(), slog.Default(), &out)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out.String())
}

func TestRunImport_MissingFile(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.InputFile = filepath.Join(t.TempDir(), "absent.xlsx")

	err = runImport(context.Background(), cfg, importOptions{dryRun: true}, observability.NewMetricsForTesting(), slog.Default(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
}

func TestTransformOptions(t *testing.T) {
	cfg := &config.Config{
		DefaultIRILimit:       3000,
		DefaultRuttingLimit:   6,
		DefaultCrackingLimit:  7,
		DefaultRavellingLimit: 8,
		MergeSegmentRows:      true,
	}

	assert.Equal(t, domain.Options{
		Defaults:  domain.Limits{IRI: 3000, Rutting: 6, Cracking: 7, Ravelling: 8},
		MergeRows: true,
	}, transformOptions(cfg))
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"import", "serve"}, names)

	imp, _, err := root.Find([]string{"import"})
	require.NoError(t, err)
	assert.NotNil(t, imp.Flags().Lookup("dry-run"))
	assert.NotNil(t, imp.Flags().Lookup("sheet"))
}
