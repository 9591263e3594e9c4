package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
)

const (
	stateWSWriteWait = 10 * time.Second
	stateWSPongWait  = 60 * time.Second
	stateWSPingEvery = (stateWSPongWait * 9) / 10
)

var stateWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type stateWSInbound struct {
	Type string `json:"type"`
}

type stateWSOutbound struct {
	Type    string        `json:"type"`
	State   *models.State `json:"state,omitempty"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
}

// StateStreamHandler pushes session state snapshots over a websocket.
type StateStreamHandler struct {
	session *jsonsheet.Session
}

// NewStateStreamHandler creates a new StateStreamHandler.
func NewStateStreamHandler(session *jsonsheet.Session) *StateStreamHandler {
	return &StateStreamHandler{session: session}
}

// Stream handles GET /api/v1/ws
// The current state is sent on connect and after every change. Clients may
// send {"type":"ping"} (answered with "pong") or {"type":"state"} to
// request a fresh snapshot.
func (h *StateStreamHandler) Stream(c *gin.Context) {
	conn, err := stateWSUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(stateWSPongWait)); err != nil {
		log.Printf("state ws: set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(stateWSPongWait))
	})

	writeCh := make(chan stateWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(stateWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(stateWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(stateWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	states, unsubscribe := h.session.Subscribe()
	defer unsubscribe()

	pushStateWS(writeCh, stateMessage(h.session.State()))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case st, ok := <-states:
				if !ok {
					return
				}
				pushStateWS(writeCh, stateMessage(st))
			}
		}
	}()

	for {
		var in stateWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("state ws: read failed: %v", err)
			}
			break
		}

		switch msgType := strings.TrimSpace(in.Type); msgType {
		case "ping":
			pushStateWS(writeCh, stateWSOutbound{Type: "pong"})
		case "state":
			pushStateWS(writeCh, stateMessage(h.session.State()))
		default:
			pushStateWS(writeCh, stateWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + msgType,
			})
		}
	}

	cancel()
	<-writerDone
}

func stateMessage(st models.State) stateWSOutbound {
	return stateWSOutbound{Type: "state", State: &st}
}

// pushStateWS queues out, dropping the oldest queued message when full.
func pushStateWS(writeCh chan stateWSOutbound, out stateWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
