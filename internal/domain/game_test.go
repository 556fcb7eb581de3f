package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameState(t *testing.T) {
	t.Run("round trips a game in progress", func(t *testing.T) {
		raw := "Base+MLP;InProgress;Black[2];wS1;bG1 -wS1;wQ wS1/"

		gs, err := ParseGameState(raw)
		require.NoError(t, err)

		assert.Equal(t, []GameOption{OptionMosquito, OptionLadybug, OptionPillBug}, gs.Expansions)
		assert.Equal(t, StatusInProgress, gs.Status)
		assert.Equal(t, Black, gs.CurrentPlayer)
		assert.Equal(t, 2, gs.Turn)
		require.Len(t, gs.Moves, 3)
		assert.Equal(t, West, gs.Moves[1].Direction)
		assert.Equal(t, NorthEast, gs.Moves[2].Direction)
		assert.Equal(t, raw, gs.String())
	})

	t.Run("accepts a fresh base game", func(t *testing.T) {
		gs, err := ParseGameState("Base;NotStarted;White[1]")
		require.NoError(t, err)
		assert.Empty(t, gs.Expansions)
		assert.Empty(t, gs.Moves)
		assert.Equal(t, NewGameState().String(), gs.String())
	})

	t.Run("rejects malformed snapshots", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"Base;InProgress",
			"Chess;InProgress;White[1]",
			"Base+PM;InProgress;White[1]",
			"Base;Paused;White[1]",
			"Base;InProgress;Red[1]",
			"Base;InProgress;White[0]",
			"Base;InProgress;White[1];zz",
		} {
			_, err := ParseGameState(raw)
			assert.ErrorIs(t, err, ErrInvalidSnapshot, raw)
		}
	})
}

func TestGameStateApply(t *testing.T) {
	gs := NewGameState(OptionPillBug)

	first, err := ParseMovement("wP")
	require.NoError(t, err)
	require.NoError(t, gs.Apply(first))
	assert.Equal(t, Black, gs.CurrentPlayer)
	assert.Equal(t, 1, gs.Turn)
	assert.Equal(t, StatusInProgress, gs.Status)

	second, err := ParseMovement("bQ wP-")
	require.NoError(t, err)
	require.NoError(t, gs.Apply(second))
	assert.Equal(t, White, gs.CurrentPlayer)
	assert.Equal(t, 2, gs.Turn)

	wrongSide, err := ParseMovement("bA1 bQ-")
	require.NoError(t, err)
	assert.ErrorIs(t, gs.Apply(wrongSide), ErrInvalidNotation)

	noExpansion, err := ParseMovement("wM bQ\\")
	require.NoError(t, err)
	assert.ErrorIs(t, gs.Apply(noExpansion), ErrInvalidNotation)

	winner := White
	gs.Finish(&winner)
	assert.Equal(t, StatusWhiteWins, gs.Status)
	assert.ErrorIs(t, gs.Apply(PassMovement()), ErrGameFinished)
}
