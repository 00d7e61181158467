package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhileshait/tradenet/internal/auth"
	"github.com/Akhileshait/tradenet/internal/domain/connection"
	"github.com/Akhileshait/tradenet/internal/registry"
	mockLogger "github.com/Akhileshait/tradenet/pkg/logger/mock"
)

type testEnv struct {
	server   *httptest.Server
	registry *registry.Registry
	tokens   *auth.Tokens
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mockLogger.NewMockInterface(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().WarnContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	tokens := auth.NewTokens("dev-secret")
	reg := registry.New(log)
	h := NewHandler(tokens, reg, Config{PingInterval: time.Second, PongWait: 2 * time.Second, WriteWait: time.Second}, []string{"*"}, log)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, registry: reg, tokens: tokens}
}

func (e *testEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.tokens.Issue(userID, time.Hour)
	require.NoError(t, err)
	return token
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	for _, query := range []string{"", "?token=garbage"} {
		conn := env.dial(t, query)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "query %q: %v", query, err)
	}
	assert.Equal(t, 0, env.registry.Len())
}

func TestHandler_DeliversPayload(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "?token="+env.token(t, "u1"))

	var registered connection.Conn
	waitFor(t, func() bool {
		var ok bool
		registered, ok = env.registry.Lookup("u1")
		return ok
	})

	payload := []byte(`{"type":"ORDER_UPDATE","data":{"orderId":"o1","userId":"u1","status":"FILLED","price":50000}}`)
	require.NoError(t, registered.Send(payload))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, got, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	assert.Equal(t, payload, got)
}

func TestHandler_SupersededConnectionIsClosed(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1")

	first := env.dial(t, "?token="+token)
	waitFor(t, func() bool { return env.registry.Len() == 1 })
	c1, _ := env.registry.Lookup("u1")

	second := env.dial(t, "?token="+token)
	waitFor(t, func() bool {
		c, ok := env.registry.Lookup("u1")
		return ok && c.ID() != c1.ID()
	})

	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := first.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, connection.CloseSuperseded), "%v", err)
	assert.False(t, c1.IsOpen())

	// The closed connection unregistering must not evict the newer one.
	time.Sleep(50 * time.Millisecond)
	current, ok := env.registry.Lookup("u1")
	require.True(t, ok)
	assert.True(t, current.IsOpen())

	_ = second.Close()
	waitFor(t, func() bool { return env.registry.Len() == 0 })
}

func TestHandler_BearerHeader(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+env.token(t, "u2"))
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	waitFor(t, func() bool {
		_, ok := env.registry.Lookup("u2")
		return ok
	})
}

func TestClient_SendAfterClose(t *testing.T) {
	env := newTestEnv(t)
	env.dial(t, "?token="+env.token(t, "u3"))

	var c connection.Conn
	waitFor(t, func() bool {
		var ok bool
		c, ok = env.registry.Lookup("u3")
		return ok
	})
	c.Close(websocket.CloseNormalClosure, "")
	assert.Error(t, c.Send([]byte("x")))
}
