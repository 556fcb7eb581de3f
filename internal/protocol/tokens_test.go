package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := map[string]Command{
		"STATE Base;NotStarted;White[1]": CommandState,
		"SET Mosquito true":              CommandSet,
		"SPECJOIN Someone":               CommandSpectatorJoin,
		"SPECLEAVE Someone":              CommandSpectatorLeave,
		"  WINNER  ":                     CommandWinner,
		"ERR null 100 nope":              CommandError,
	}
	for line, want := range tests {
		got, ok := ParseCommand(line)
		assert.True(t, ok, line)
		assert.Equal(t, want, got, line)
	}

	for _, line := range []string{"", "   ", "GLHF", "MOV wQ", "SETTINGS x true", "state lower"} {
		_, ok := ParseCommand(line)
		assert.False(t, ok, line)
	}
}

func TestTokenHelpers(t *testing.T) {
	id, ok := UserIDAfter("READY 602c977d-168a-4771-8599-9f35ed1abd41 true")
	assert.True(t, ok)
	assert.Equal(t, aliceID, id)

	_, ok = UserIDAfter("READY")
	assert.False(t, ok)

	value, ok := TrailingBool("SET Mosquito false")
	assert.True(t, ok)
	assert.False(t, value)

	_, ok = TrailingBool("SET Mosquito False")
	assert.False(t, ok)

	assert.Equal(t, "Base;InProgress;White[1]", Remainder("STATE   Base;InProgress;White[1]  "))
	assert.Equal(t, "", Remainder("WINNER"))
}
