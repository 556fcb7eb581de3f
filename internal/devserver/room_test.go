package devserver

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	aliceID = uuid.MustParse("602c977d-168a-4771-8599-9f35ed1abd41")
	bobID   = uuid.MustParse("1b3e8c6a-2f0d-4e55-9d7a-5c0e6a7f8b12")
	carolID = uuid.MustParse("9d0c2a51-7e4b-4f1a-8c3d-2b6e5f4a3c21")
)

type lineRecorder struct {
	mu    sync.Mutex
	lines map[uuid.UUID][]string
}

func newLineRecorder() *lineRecorder {
	return &lineRecorder{lines: make(map[uuid.UUID][]string)}
}

func (r *lineRecorder) SendLine(peerID uuid.UUID, line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[peerID] = append(r.lines[peerID], line)
	return nil
}

// take returns what peerID received since the last call.
func (r *lineRecorder) take(peerID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.lines[peerID]
	delete(r.lines, peerID)
	return lines
}

func startedRoom(t *testing.T) (*Room, *lineRecorder) {
	t.Helper()
	rec := newLineRecorder()
	room := NewRoom("test", rec)
	require.NoError(t, room.Join(aliceID))
	require.NoError(t, room.Join(bobID))
	room.Handle(aliceID, "GLHF")
	room.Handle(bobID, "GLHF")
	rec.take(aliceID)
	rec.take(bobID)
	return room, rec
}

func TestRoomJoin(t *testing.T) {
	rec := newLineRecorder()
	room := NewRoom("test", rec)

	require.NoError(t, room.Join(aliceID))
	assert.Equal(t, []string{
		"JOIN " + aliceID.String(),
		"STATE Base;NotStarted;White[1]",
	}, rec.take(aliceID))

	require.NoError(t, room.Join(bobID))
	assert.Equal(t, []string{"JOIN " + bobID.String()}, rec.take(aliceID))
	assert.Equal(t, []string{
		"JOIN " + bobID.String(),
		"JOIN " + aliceID.String(),
		"STATE Base;NotStarted;White[1]",
	}, rec.take(bobID))

	assert.False(t, room.CanJoin(carolID))
	assert.ErrorIs(t, room.Join(carolID), ErrRoomFull)

	// a reconnecting player keeps the seat
	assert.True(t, room.CanJoin(aliceID))
	assert.NoError(t, room.Join(aliceID))
}

func TestRoomReadyStartsMatch(t *testing.T) {
	rec := newLineRecorder()
	room := NewRoom("test", rec)
	require.NoError(t, room.Join(aliceID))
	require.NoError(t, room.Join(bobID))
	rec.take(aliceID)
	rec.take(bobID)

	room.Handle(aliceID, "GLHF")
	assert.Equal(t, []string{"READY " + aliceID.String() + " true"}, rec.take(aliceID))
	assert.Equal(t, []string{"READY " + aliceID.String() + " true"}, rec.take(bobID))

	room.Handle(bobID, "GLHF")
	assert.Equal(t, []string{
		"READY " + bobID.String() + " true",
		"STATE Base;InProgress;White[1]",
	}, rec.take(aliceID))

	room.Handle(aliceID, "GLHF")
	lines := rec.take(aliceID)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ERR "+aliceID.String()+" 105 ")
}

func TestRoomOptions(t *testing.T) {
	rec := newLineRecorder()
	room := NewRoom("test", rec)
	require.NoError(t, room.Join(aliceID))
	require.NoError(t, room.Join(bobID))
	room.Handle(bobID, "GLHF")
	rec.take(aliceID)
	rec.take(bobID)

	room.Handle(bobID, "SET Mosquito true")
	lines := rec.take(bobID)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ERR "+bobID.String()+" 103 ")

	room.Handle(aliceID, "SET Mosquito true")
	assert.Equal(t, []string{
		"SET Mosquito true",
		"READY " + bobID.String() + " false",
	}, rec.take(bobID))
	assert.Equal(t, "Base+M;NotStarted;White[1]", room.Snapshot())

	room.Handle(aliceID, "SET Mosquito true")
	lines = rec.take(aliceID)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "ERR "+aliceID.String()+" 104 ")

	room.Handle(aliceID, "SET HostIsWhite false")
	assert.Equal(t, []string{"SET HostIsWhite false"}, rec.take(bobID))

	room.Handle(aliceID, "SET Ladybug maybe")
	lines = rec.take(aliceID)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "ERR "+aliceID.String()+" 100 ")
}

func TestRoomMoves(t *testing.T) {
	room, rec := startedRoom(t)

	room.Handle(bobID, "MOV bG1")
	assert.Contains(t, rec.take(bobID)[0], "ERR "+bobID.String()+" 102 ")

	room.Handle(aliceID, "MOV not-a-move")
	assert.Contains(t, rec.take(aliceID)[0], "ERR "+aliceID.String()+" 101 ")

	room.Handle(aliceID, "MOV wS1")
	assert.Equal(t, []string{"STATE Base;InProgress;Black[1];wS1"}, rec.take(bobID))
	rec.take(aliceID)

	room.Handle(bobID, "MOV wA1 bG1-")
	assert.Contains(t, rec.take(bobID)[0], "ERR "+bobID.String()+" 101 ")

	room.Handle(bobID, "MOV bG1 -wS1")
	assert.Equal(t, []string{"STATE Base;InProgress;White[2];wS1;bG1 -wS1"}, rec.take(aliceID))
}

func TestRoomMoveBeforeStart(t *testing.T) {
	rec := newLineRecorder()
	room := NewRoom("test", rec)
	require.NoError(t, room.Join(aliceID))
	rec.take(aliceID)

	room.Handle(aliceID, "MOV wS1")
	assert.Contains(t, rec.take(aliceID)[0], "ERR "+aliceID.String()+" 101 ")
}

func TestRoomChatAndUnknownCommands(t *testing.T) {
	room, rec := startedRoom(t)

	room.Handle(aliceID, "MSG good luck, have fun")
	assert.Equal(t, []string{"MSG " + aliceID.String() + " good luck, have fun"}, rec.take(bobID))
	rec.take(aliceID)

	room.Handle(aliceID, "DANCE")
	lines := rec.take(aliceID)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ERR "+aliceID.String()+" 100 ")
	assert.Empty(t, rec.take(bobID))

	// strangers are ignored
	room.Handle(carolID, "MSG hi")
	assert.Empty(t, rec.take(aliceID))
}

func TestRoomForfeit(t *testing.T) {
	room, rec := startedRoom(t)

	room.Handle(aliceID, "FF")
	assert.Equal(t, []string{
		"FF " + aliceID.String(),
		"WINNER " + bobID.String(),
		"STATE Base;BlackWins;White[1]",
	}, rec.take(bobID))

	room.Handle(bobID, "FF")
	assert.Contains(t, rec.take(bobID)[0], "ERR "+bobID.String()+" 106 ")
}

func TestRoomLeaveDuringMatchAwardsOpponent(t *testing.T) {
	room, rec := startedRoom(t)

	assert.False(t, room.Leave(bobID))
	assert.Equal(t, []string{
		"LEAVE " + bobID.String(),
		"WINNER " + aliceID.String(),
		"STATE Base;WhiteWins;White[1]",
	}, rec.take(aliceID))

	assert.True(t, room.Leave(aliceID))
	assert.True(t, room.Empty())
}

func TestRoomSpectators(t *testing.T) {
	rec := newLineRecorder()
	room := NewRoom("test", rec)
	require.NoError(t, room.Join(aliceID))
	rec.take(aliceID)

	room.JoinSpectator(carolID, "queen bee fan")
	assert.Equal(t, []string{"SPECJOIN queen bee fan"}, rec.take(aliceID))
	assert.Equal(t, []string{
		"SPECJOIN queen bee fan",
		"STATE Base;NotStarted;White[1]",
	}, rec.take(carolID))

	room.Handle(carolID, "GLHF")
	lines := rec.take(carolID)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ERR null 100 ")

	summary := room.Summary()
	assert.Equal(t, "test", summary.MatchID)
	assert.Equal(t, aliceID.String(), summary.Host)
	assert.Empty(t, summary.Guest)
	assert.Equal(t, 1, summary.SpectatorCount)

	assert.False(t, room.Leave(carolID))
	assert.Equal(t, []string{"SPECLEAVE queen bee fan"}, rec.take(aliceID))
}
