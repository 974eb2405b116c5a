package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/notify"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, broadcaster *notify.Broadcaster) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stream", NewHandler(broadcaster, nil).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readMessage(t *testing.T, c *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, sonic.Unmarshal(data, &msg))
	return msg
}

func TestStreamDeliversNotifications(t *testing.T) {
	broadcaster := notify.NewBroadcaster(8)
	c := dial(t, broadcaster)

	hello := readMessage(t, c)
	assert.Equal(t, "system", hello.Type)
	assert.NotEmpty(t, hello.Subscriber)
	require.Equal(t, 1, broadcaster.Count())

	require.NoError(t, broadcaster.Deliver(context.Background(), types.Notification{
		Signal: types.SignalChangedMode,
		Mode:   "radio",
		App:    2,
	}))

	msg := readMessage(t, c)
	assert.Equal(t, "notification", msg.Type)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, types.SignalChangedMode, msg.Notification.Signal)
	assert.Equal(t, "radio", msg.Notification.Mode)
}

func TestStreamAnswersPing(t *testing.T) {
	c := dial(t, notify.NewBroadcaster(8))
	readMessage(t, c)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("ping")))
	assert.Equal(t, "pong", readMessage(t, c).Type)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, "pong", readMessage(t, c).Type)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat"}`)))
	assert.Equal(t, "error", readMessage(t, c).Type)
}

func TestStreamUnsubscribesOnDisconnect(t *testing.T) {
	broadcaster := notify.NewBroadcaster(8)
	c := dial(t, broadcaster)
	readMessage(t, c)
	require.Equal(t, 1, broadcaster.Count())

	require.NoError(t, c.Close())
	assert.Eventually(t, func() bool { return broadcaster.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamClosedOnShutdown(t *testing.T) {
	broadcaster := notify.NewBroadcaster(8)
	c := dial(t, broadcaster)
	readMessage(t, c)

	broadcaster.Close()

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)
}
