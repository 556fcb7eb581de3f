package devserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/config"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/protocol"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/service/game"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/transport/websocket"
	"github.com/autoreleasefool/hive-for-ios-sub001/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "dev-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newDevServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:    testSecret,
		PingInterval: 30 * time.Second,
		PongWait:     60 * time.Second,
	}
	router, _ := NewRouter(cfg)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func tokenFor(t *testing.T, userID uuid.UUID, name string) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(testSecret, userID, name, time.Hour)
	require.NoError(t, err)
	return token
}

func connect(t *testing.T, endpoint string, credential auth.Credential) (*game.Client, *game.Subscription) {
	t.Helper()
	client := game.NewClient(nil, websocket.DefaultSessionConfig())
	t.Cleanup(client.Close)
	require.NoError(t, client.Prepare(endpoint, credential))
	sub, err := client.OpenConnection()
	require.NoError(t, err)
	return client, sub
}

func next(t *testing.T, sub *game.Subscription) game.Event {
	t.Helper()
	select {
	case e, ok := <-sub.Events():
		require.True(t, ok, "stream ended: %v", sub.Err())
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return game.Event{}
	}
}

func nextMessage(t *testing.T, sub *game.Subscription) protocol.ServerMessage {
	t.Helper()
	e := next(t, sub)
	require.Equal(t, game.EventMessage, e.Type)
	return e.Message
}

func TestHealth(t *testing.T) {
	srv := newDevServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestMatchesRequireToken(t *testing.T) {
	srv := newDevServer(t)

	resp, err := http.Get(srv.URL + "/api/matches")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/matches", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, aliceID, "alice"))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRejectedHandshakeEndsStream(t *testing.T) {
	srv := newDevServer(t)

	_, sub := connect(t, srv.URL+"/ws", auth.NewTokenCredential("forged"))

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream never ended")
	}
	require.Error(t, sub.Err())
	assert.Contains(t, sub.Err().Error(), "401")
}

func TestMatchBetweenTwoClients(t *testing.T) {
	srv := newDevServer(t)
	endpoint := srv.URL + "/ws/e2e"

	alice, aliceSub := connect(t, endpoint, auth.NewTokenCredential(tokenFor(t, aliceID, "alice")))
	assert.Equal(t, game.EventConnected, next(t, aliceSub).Type)
	assert.Equal(t, protocol.PlayerJoined{UserID: aliceID}, nextMessage(t, aliceSub))
	state, ok := nextMessage(t, aliceSub).(protocol.GameStateMessage)
	require.True(t, ok)
	assert.Equal(t, "Base;NotStarted;White[1]", state.State.String())

	bob, bobSub := connect(t, endpoint, auth.NewTokenCredential(tokenFor(t, bobID, "bob")))
	assert.Equal(t, game.EventConnected, next(t, bobSub).Type)
	assert.Equal(t, protocol.PlayerJoined{UserID: bobID}, nextMessage(t, bobSub))
	assert.Equal(t, protocol.PlayerJoined{UserID: aliceID}, nextMessage(t, bobSub))
	nextMessage(t, bobSub)
	assert.Equal(t, protocol.PlayerJoined{UserID: bobID}, nextMessage(t, aliceSub))

	sent := make(chan error, 4)
	alice.Send(protocol.ReadyToPlay{}, func(err error) { sent <- err })
	require.NoError(t, <-sent)
	assert.Equal(t, protocol.PlayerReady{UserID: aliceID, Ready: true}, nextMessage(t, bobSub))
	assert.Equal(t, protocol.PlayerReady{UserID: aliceID, Ready: true}, nextMessage(t, aliceSub))

	bob.Send(protocol.ReadyToPlay{}, func(err error) { sent <- err })
	require.NoError(t, <-sent)
	assert.Equal(t, protocol.PlayerReady{UserID: bobID, Ready: true}, nextMessage(t, aliceSub))
	started, ok := nextMessage(t, aliceSub).(protocol.GameStateMessage)
	require.True(t, ok)
	assert.Equal(t, "InProgress", string(started.State.Status))

	bob.Send(protocol.SendChat{Text: "good luck"}, nil)
	assert.Equal(t, protocol.PlayerReady{UserID: bobID, Ready: true}, nextMessage(t, bobSub))
	nextMessage(t, bobSub)
	assert.Equal(t, protocol.ChatMessage{UserID: bobID, Text: "good luck"}, nextMessage(t, aliceSub))

	alice.Send(protocol.ForfeitMatch{}, nil)
	assert.Equal(t, protocol.ChatMessage{UserID: bobID, Text: "good luck"}, nextMessage(t, bobSub))
	assert.Equal(t, protocol.Forfeit{UserID: aliceID}, nextMessage(t, bobSub))
	assert.Equal(t, protocol.GameOver{Winner: &bobID}, nextMessage(t, bobSub))

	// a third player cannot take a seat
	_, carolSub := connect(t, endpoint, auth.NewTokenCredential(tokenFor(t, carolID, "carol")))
	for range carolSub.Events() {
	}
	require.Error(t, carolSub.Err())
	assert.True(t, strings.Contains(carolSub.Err().Error(), "409"))
}

func TestSpectatorSeesMatch(t *testing.T) {
	srv := newDevServer(t)
	endpoint := srv.URL + "/ws/watched"

	_, aliceSub := connect(t, endpoint, auth.NewTokenCredential(tokenFor(t, aliceID, "alice")))
	assert.Equal(t, game.EventConnected, next(t, aliceSub).Type)
	nextMessage(t, aliceSub)
	nextMessage(t, aliceSub)

	_, carolSub := connect(t, endpoint+"?spectate=drone", auth.NewTokenCredential(tokenFor(t, carolID, "carol")))
	assert.Equal(t, game.EventConnected, next(t, carolSub).Type)
	assert.Equal(t, protocol.SpectatorJoined{Name: "drone"}, nextMessage(t, carolSub))
	assert.Equal(t, protocol.SpectatorJoined{Name: "drone"}, nextMessage(t, aliceSub))
}
