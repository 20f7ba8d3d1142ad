package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/jug"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "statesearch", cfg.ServiceName)
	assert.Equal(t, "prometheus", cfg.MetricsExporter)
}

func TestInit_Errors(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Init(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilContext)

	_, err = Init(context.Background(), Config{MetricsExporter: "otlp"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_None(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{MetricsExporter: "none"})
	require.NoError(t, err)
	assert.Nil(t, MetricsHandler())
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_PrometheusExportsSearchRuns(t *testing.T) {
	shutdown, err := Init(context.Background(), DefaultConfig())
	require.NoError(t, err)
	defer shutdown(context.Background())

	goal, err := jug.JarEquals(2, 2)
	require.NoError(t, err)
	problem, err := jug.Standard(goal)
	require.NoError(t, err)
	_, err = search.Search(context.Background(), problem, jug.State{})
	require.NoError(t, err)

	handler := MetricsHandler()
	require.NotNil(t, handler)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "search_runs_total")
	assert.Contains(t, recorder.Body.String(), `strategy="bfs"`)
}
