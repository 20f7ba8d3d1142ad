package search_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/jug"
)

func TestRunAll_IndependentRuns(t *testing.T) {
	var jobs []search.Job[jug.State]
	for volume := 0; volume <= 4; volume++ {
		goal, err := jug.JarEquals(2, volume)
		require.NoError(t, err)
		jobs = append(jobs, search.Job[jug.State]{
			Name:    fmt.Sprintf("b=%d", volume),
			Problem: mustJug(t, goal),
		})
	}
	jobs = append(jobs, search.Job[jug.State]{
		Name:    "unreachable",
		Problem: mustJug(t, jug.StateEquals(jug.State{A: 2, B: 2})),
	})

	results, err := search.RunAll(context.Background(), jobs, search.WithWorkers(3))
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, result := range results[:5] {
		assert.Equal(t, jobs[i].Name, result.Name)
		require.NoError(t, result.Err)
		require.True(t, result.Result.Found, result.Name)
		final, _ := result.Result.Final()
		assert.Equal(t, i, final.B)

		alone, err := search.Search(context.Background(), jobs[i].Problem, jobs[i].Start)
		require.NoError(t, err)
		assert.Equal(t, alone.Path, result.Result.Path)
	}
	assert.False(t, results[5].Result.Found)
	assert.NoError(t, results[5].Err)
}

func TestRunAll_PerJobBudget(t *testing.T) {
	jobs := []search.Job[jug.State]{
		{Name: "quick", Problem: mustJug(t, jug.StateEquals(jug.State{A: 3}))},
		{Name: "long", Problem: mustJug(t, jug.StateEquals(jug.State{A: 1, B: 1}))},
	}
	results, err := search.RunAll(context.Background(), jobs, search.WithMaxExpansions(5))
	require.NoError(t, err)
	assert.NoError(t, results[0].Err)
	assert.True(t, results[0].Result.Found)
	assert.ErrorIs(t, results[1].Err, search.ErrBudgetExceeded)
}

func TestRunAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []search.Job[jug.State]{{Name: "x", Problem: jarTwoEqualsTwo(t)}}
	_, err := search.RunAll(ctx, jobs)
	assert.ErrorIs(t, err, context.Canceled)
}
