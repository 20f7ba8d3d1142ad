package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/jug"
)

func TestStepper_MatchesSearch(t *testing.T) {
	problem := jarTwoEqualsTwo(t)
	stepper, err := search.NewStepper(problem, jug.State{})
	require.NoError(t, err)
	assert.Equal(t, search.StatusReady, stepper.Status())

	first := stepper.Step()
	assert.Equal(t, search.StatusRunning, first.Status)
	assert.True(t, first.HasNode)
	assert.Equal(t, jug.State{}, first.Current)
	assert.ElementsMatch(t, []jug.State{{A: 3}, {B: 4}}, first.Frontier)
	assert.Equal(t, []jug.State{{}}, first.Explored)
	assert.Equal(t, 1, first.StepIndex)

	var last search.Snapshot[jug.State]
	for i := 0; i < 100 && !last.Done; i++ {
		last = stepper.Step()
	}
	require.True(t, last.Done)
	require.True(t, last.Found)

	expected, err := search.Search(context.Background(), problem, jug.State{})
	require.NoError(t, err)
	assert.Equal(t, expected.Path, last.Path)
	assert.Equal(t, expected.ExpandedNodes, last.StepIndex)
	assert.Equal(t, expected.TotalCost, last.TotalCost)
	assert.Len(t, last.Explored, expected.ExploredStates)

	again := stepper.Step()
	assert.Equal(t, last.StepIndex, again.StepIndex)
	assert.Equal(t, last.Path, again.Path)
	assert.Equal(t, expected.Actions(), stepper.Result().Actions())
}

func TestStepper_Exhausts(t *testing.T) {
	problem := mustJug(t, jug.StateEquals(jug.State{A: 1, B: 1}))
	stepper, err := search.NewStepper(problem, jug.State{})
	require.NoError(t, err)

	var last search.Snapshot[jug.State]
	for !last.Done {
		last = stepper.Step()
	}
	assert.Equal(t, search.StatusFailed, last.Status)
	assert.False(t, last.Found)
	assert.Nil(t, last.Path)
	assert.Empty(t, last.Frontier)
	assert.Len(t, last.Explored, 14)
}

func TestStepper_Budget(t *testing.T) {
	problem := jarTwoEqualsTwo(t)
	stepper, err := search.NewStepper(problem, jug.State{}, search.WithMaxExpansions(2))
	require.NoError(t, err)

	stepper.Step()
	stepper.Step()
	snapshot := stepper.Step()
	assert.Equal(t, search.StatusAborted, snapshot.Status)
	assert.True(t, snapshot.Done)
	assert.Equal(t, 2, snapshot.StepIndex)
}

func TestNewStepper_Errors(t *testing.T) {
	_, err := search.NewStepper[jug.State](nil, jug.State{})
	assert.ErrorIs(t, err, search.ErrNilProblem)
}
