package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"ideaeval/internal/gateway/session"
	"ideaeval/internal/orchestrator"
)

const (
	sessionWSWriteWait = 10 * time.Second
	sessionWSPongWait  = 60 * time.Second
	sessionWSPingEvery = (sessionWSPongWait * 9) / 10
)

var sessionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type sessionWSInbound struct {
	Type string `json:"type"`
	Idea string `json:"idea,omitempty"`
}

type sessionWSOutbound struct {
	Type     string                 `json:"type"`
	Snapshot *orchestrator.Snapshot `json:"snapshot,omitempty"`
	Accepted *bool                  `json:"accepted,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
	Code     string                 `json:"code,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

// SessionWS streams every snapshot of the session's pipeline and accepts
// submit, reset and ping intents. Runs started here outlive the socket.
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	conn, err := sessionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(sessionWSPongWait)); err != nil {
		h.log.Printf("session ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionWSPongWait))
	})

	writeCh := make(chan sessionWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(sessionWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	snaps := sess.Pipeline.Subscribe(ctx)
	go func() {
		for snap := range snaps {
			s := snap
			pushSessionWS(writeCh, sessionWSOutbound{Type: "snapshot", Snapshot: &s})
		}
	}()

	for {
		var in sessionWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		h.handleInbound(sess, writeCh, in)
	}
}

func (h *Handler) handleInbound(sess *session.Session, writeCh chan sessionWSOutbound, in sessionWSInbound) {
	switch msgType := strings.ToLower(strings.TrimSpace(in.Type)); msgType {
	case "":
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    "invalid_argument",
			Message: "type is required",
		})
	case "ping":
		pushSessionWS(writeCh, sessionWSOutbound{Type: "pong"})
	case "submit":
		_, err := sess.Pipeline.Start(sess.Context(), in.Idea)
		if err == nil {
			pushSessionWS(writeCh, sessionWSOutbound{Type: "submit_ack", Accepted: boolPtr(true)})
			return
		}
		reason, known := rejectReason(err)
		if !known {
			pushSessionWS(writeCh, sessionWSOutbound{Type: "error", Code: "internal", Message: reason})
			return
		}
		pushSessionWS(writeCh, sessionWSOutbound{Type: "submit_ack", Accepted: boolPtr(false), Reason: reason})
	case "reset":
		pushSessionWS(writeCh, sessionWSOutbound{Type: "reset_ack", Accepted: boolPtr(sess.Pipeline.Reset())})
	default:
		pushSessionWS(writeCh, sessionWSOutbound{
			Type:    "error",
			Code:    "invalid_argument",
			Message: "unsupported type: " + msgType,
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func pushSessionWS(writeCh chan sessionWSOutbound, out sessionWSOutbound) {
	if writeCh == nil {
		return
	}
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
