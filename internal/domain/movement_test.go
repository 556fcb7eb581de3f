package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementNotation(t *testing.T) {
	tests := []struct {
		raw       string
		direction Direction
		hasRef    bool
	}{
		{"wQ", OnTop, false},
		{"pass", OnTop, false},
		{"bG1 -wQ", West, true},
		{"bG2 \\wQ", NorthWest, true},
		{"bA3 /wQ", SouthWest, true},
		{"wS1 bQ-", East, true},
		{"wS2 bQ/", NorthEast, true},
		{"wB1 bQ\\", SouthEast, true},
		{"wB1 bQ", OnTop, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			m, err := ParseMovement(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.direction, m.Direction)
			assert.Equal(t, tt.hasRef, m.Reference != nil)
			assert.Equal(t, tt.raw, m.Notation())
		})
	}
}

func TestParseMovementRejectsBadPieces(t *testing.T) {
	for _, raw := range []string{"", "xQ", "wQ1", "wG", "wG4", "wZ", "wQ bQ wA1", "wA1 -"} {
		_, err := ParseMovement(raw)
		assert.ErrorIs(t, err, ErrInvalidNotation, raw)
	}
}
