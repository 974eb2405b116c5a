package ws

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/notify"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope of every frame the server writes
type Message struct {
	Type         string              `json:"type"`
	Message      string              `json:"message,omitempty"`
	Subscriber   string              `json:"subscriber,omitempty"`
	Notification *types.Notification `json:"notification,omitempty"`
}

type clientMessage struct {
	Type string `json:"type"`
}

// Handler manages WebSocket connections
type Handler struct {
	broadcaster *notify.Broadcaster
	logger      *logging.Logger
	metrics     *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(broadcaster *notify.Broadcaster, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		broadcaster: broadcaster,
		logger:      logger.Named("ws"),
	}
}

// WithMetrics adds subscriber tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// conn serializes writes; gorilla allows one concurrent writer
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(msg Message) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// HandleConnection handles WebSocket upgrade and streams notifications
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	sub := h.broadcaster.Subscribe()
	defer sub.Close()

	h.metrics.AddSubscribers("websocket", 1)
	defer h.metrics.AddSubscribers("websocket", -1)

	log := h.logger.With(zap.String("subscriber_id", sub.ID.String()))
	log.Info("Stream subscriber connected", zap.String("remote", c.ClientIP()))

	out := &conn{ws: ws}
	if err := out.send(Message{Type: "system", Message: "connected", Subscriber: sub.ID.String()}); err != nil {
		return
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		h.read(ws, out, log)
	}()

	for {
		select {
		case n, ok := <-sub.C:
			if !ok {
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeTimeout))
				return
			}
			if err := out.send(Message{Type: "notification", Notification: &n}); err != nil {
				log.Debug("Stream write failed", zap.Error(err))
				return
			}
		case <-readDone:
			log.Info("Stream subscriber disconnected", zap.Uint64("dropped", sub.Dropped()))
			return
		}
	}
}

// read answers pings until the client goes away
func (h *Handler) read(ws *websocket.Conn, out *conn, log *logging.Logger) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		if isPing(data) {
			err = out.send(Message{Type: "pong"})
		} else {
			err = out.send(Message{Type: "error", Message: "unknown message type"})
		}
		if err != nil {
			log.Debug("Stream write failed", zap.Error(err))
			return
		}
	}
}

func isPing(data []byte) bool {
	data = bytes.TrimSpace(data)
	if string(data) == "ping" {
		return true
	}
	var msg clientMessage
	return sonic.Unmarshal(data, &msg) == nil && msg.Type == "ping"
}
