package handler

import (
	"encoding/json"
	"fxconvert/internal/rate"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	EventClick = "click"
	EventRate  = "rate"

	socketReadLimit  = 4096
	socketPongWait   = 60 * time.Second
	socketPingPeriod = 54 * time.Second
	socketWriteWait  = 10 * time.Second
)

// SocketMessage is the frame exchanged on /ws in both directions.
type SocketMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type socketReply struct {
	Event string           `json:"event"`
	Data  rate.ConvertView `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the front end may be served from any origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Socket upgrades to a WebSocket and answers every "click" frame with exactly
// one "rate" frame, in order.
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Socket"}).Warn("websocket upgrade failed")
		return
	}
	sc := &socketConn{id: uuid.NewString(), conn: conn}
	defer sc.close()

	log := logrus.WithFields(logrus.Fields{"handler": "Socket", "conn_id": sc.id})
	log.Debug("websocket connected")

	conn.SetReadLimit(socketReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go sc.keepAlive(done)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))

		view := h.answer(r, payload)
		if err = sc.writeJSON(socketReply{Event: EventRate, Data: view}); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}

func (h *Handler) answer(r *http.Request, payload []byte) rate.ConvertView {
	var msg SocketMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return rate.ConvertView{Msg: "invalid message", Error: true}
	}
	if msg.Event != EventClick {
		return rate.ConvertView{Msg: "unknown event " + msg.Event, Error: true}
	}
	req, err := decodeConvertData(msg.Data)
	if err != nil {
		return rate.ConvertView{Msg: msgInvalidBody, Error: true}
	}
	return h.service.Convert(r.Context(), req)
}

// socketConn serializes writes; gorilla allows one concurrent writer.
type socketConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *socketConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	return c.conn.WriteJSON(v)
}

func (c *socketConn) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(socketPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteWait))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *socketConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(socketWriteWait))
	_ = c.conn.Close()
}
