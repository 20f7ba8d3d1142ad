package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/pdrpinto/statesearch"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statesearch.yaml")
	body := `
log:
  level: error
network:
  path: ../../roads/testdata/envigado.yaml
geocoder:
  places:
    parque: {lat: 6.16999, lon: -75.59001}
    plaza: {lat: 6.17101, lon: -75.58799}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestJug_Classic(t *testing.T) {
	out, err := run(t, "jug")
	require.NoError(t, err)
	assert.Contains(t, out, "fill-jar-1")
	assert.Contains(t, out, "pour-1-into-2")
	assert.Contains(t, out, "empty-jar-2")
	assert.Contains(t, out, "(0,2)")
	assert.Contains(t, out, "total 6, 6 steps, 13 states expanded")
}

func TestJug_NoSolution(t *testing.T) {
	out, err := run(t, "jug", "--jar", "1", "--volume", "9", "--strategy", "ucs")
	require.NoError(t, err)
	assert.Contains(t, out, "no solution")
	assert.Contains(t, out, "14 states expanded")
}

func TestJug_Errors(t *testing.T) {
	_, err := run(t, "jug", "--max-expansions", "3")
	assert.ErrorIs(t, err, search.ErrBudgetExceeded)

	_, err = run(t, "jug", "--jar", "3")
	assert.Error(t, err)

	_, err = run(t, "jug", "--start-a", "9")
	assert.Error(t, err)

	_, err = run(t, "jug", "--strategy", "random")
	assert.ErrorIs(t, err, search.ErrUnknownStrategy)
}

func TestRoute_Offline(t *testing.T) {
	geojson := filepath.Join(t.TempDir(), "route.geojson")
	out, err := run(t, "route", "--config", writeConfig(t), "--offline",
		"--from", "parque", "--to", "plaza",
		"--weight", "travel_time", "--strategy", "astar",
		"--geojson", geojson,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "parque to plaza (node 1 to 6) by travel_time [astar]")
	assert.Contains(t, out, "node 5")
	assert.Contains(t, out, "3 steps")

	data, err := os.ReadFile(geojson)
	require.NoError(t, err)
	var collection struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &collection))
	assert.Equal(t, "FeatureCollection", collection.Type)
	assert.Len(t, collection.Features, 5)
}

func TestRoute_Pairs(t *testing.T) {
	out, err := run(t, "route", "--config", writeConfig(t), "--offline", "--workers", "2",
		"--pair", "parque:plaza", "--pair", "plaza:parque")
	require.NoError(t, err)
	assert.Contains(t, out, "parque to plaza")
	assert.Contains(t, out, "plaza to parque")
}

func TestRoute_Errors(t *testing.T) {
	config := writeConfig(t)

	_, err := run(t, "route", "--config", config, "--offline")
	assert.Error(t, err)

	_, err = run(t, "route", "--config", config, "--offline", "--pair", "parque")
	assert.Error(t, err)

	_, err = run(t, "route", "--config", config, "--offline", "--from", "nowhere", "--to", "plaza")
	assert.Error(t, err)

	_, err = run(t, "route", "--offline", "--from", "parque", "--to", "plaza")
	assert.Error(t, err, "no network configured")
}
