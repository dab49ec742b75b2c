// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/adaptlearn/focus-engine/pkg/attention"
	"github.com/adaptlearn/focus-engine/pkg/common"
	"github.com/adaptlearn/focus-engine/pkg/content"
	"github.com/adaptlearn/focus-engine/pkg/session"
	"github.com/adaptlearn/focus-engine/pkg/suggest"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inboundFrame is a message from the viewer's browser: an attention sample
// or a suggestion resolution.
type inboundFrame struct {
	Type       string   `json:"type"` // "sample", "confirm" or "dismiss"
	FocusScore *float64 `json:"focus_score,omitempty"`
	Timestamp  int64    `json:"timestamp,omitempty"` // unix milliseconds
}

// outboundFrame is a notification pushed to the viewer's browser.
type outboundFrame struct {
	Type string      `json:"type"` // "attention", "suggestion" or "content"
	Data interface{} `json:"data"`
}

type suggestionData struct {
	Status         string `json:"status"` // "open", "confirmed" or "dismissed"
	CandidateScore int    `json:"candidate_score,omitempty"`
}

// socketClient pumps one viewer connection. It implements session.Notifier:
// session events are marshalled into outbound frames and queued on the send
// channel so the session's event loop never blocks on a slow socket.
type socketClient struct {
	conn *websocket.Conn
	sess *session.Session
	send chan outboundFrame
	log  *logrus.Entry
}

// serveSessionSocket upgrades the request and runs the read/write pumps
// until the connection drops or the session is torn down.
func serveSessionSocket(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed for session %s: %v", sess.ID(), err)
		return
	}

	client := &socketClient{
		conn: conn,
		sess: sess,
		send: make(chan outboundFrame, sendBuffer),
		log:  logrus.WithField("session_id", sess.ID()),
	}

	sess.SetNotifier(client)
	client.log.Info("viewer socket connected")

	go client.writePump()
	client.readPump(r.Context())
}

// AttentionChanged implements session.Notifier.
func (c *socketClient) AttentionChanged(_ string, update session.Update) {
	c.enqueue(outboundFrame{Type: "attention", Data: update})
}

// SuggestionOpened implements session.Notifier.
func (c *socketClient) SuggestionOpened(_ string, candidate int) {
	c.enqueue(outboundFrame{Type: "suggestion", Data: suggestionData{Status: "open", CandidateScore: candidate}})
}

// SuggestionResolved implements session.Notifier.
func (c *socketClient) SuggestionResolved(_ string, confirmed bool) {
	status := "dismissed"
	if confirmed {
		status = "confirmed"
	}
	c.enqueue(outboundFrame{Type: "suggestion", Data: suggestionData{Status: status}})
}

// ContentChanged implements session.Notifier.
func (c *socketClient) ContentChanged(_ string, state content.State) {
	c.enqueue(outboundFrame{Type: "content", Data: state})
}

func (c *socketClient) enqueue(frame outboundFrame) {
	select {
	case c.send <- frame:
	default:
		c.log.Warn("dropping outbound frame: send buffer full")
	}
}

// readPump consumes inbound frames in arrival order. Samples are applied
// strictly in the order received; malformed frames are logged and dropped,
// never fatal to the socket.
func (c *socketClient) readPump(ctx context.Context) {
	defer func() {
		c.sess.SetNotifier(nil)
		close(c.send)
		c.conn.Close()
		c.log.Info("viewer socket disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warnf("websocket read error: %v", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Debugf("dropping unparseable frame: %v", err)
			continue
		}

		c.dispatch(ctx, frame)
	}
}

func (c *socketClient) dispatch(ctx context.Context, frame inboundFrame) {
	switch frame.Type {
	case "sample":
		c.handleSample(ctx, frame)

	case "confirm":
		scope := common.NewScope(ctx, "session.confirm")
		defer scope.Finish()
		scope.TraceTag("session_id", c.sess.ID())
		if _, err := c.sess.Confirm(scope.Ctx); err != nil {
			scope.TraceError(err)
			c.logResolutionError("confirm", err)
		}

	case "dismiss":
		scope := common.NewScope(ctx, "session.dismiss")
		defer scope.Finish()
		scope.TraceTag("session_id", c.sess.ID())
		if err := c.sess.Dismiss(); err != nil {
			scope.TraceError(err)
			c.logResolutionError("dismiss", err)
		}

	default:
		c.log.Debugf("dropping frame with unknown type %q", frame.Type)
	}
}

func (c *socketClient) handleSample(ctx context.Context, frame inboundFrame) {
	if frame.FocusScore == nil {
		c.log.Debug("dropping sample frame without focus_score")
		return
	}

	sample, err := attention.SampleFromScore(*frame.FocusScore, time.UnixMilli(frame.Timestamp))
	if err != nil {
		c.log.Debugf("dropping malformed sample: %v", err)
		return
	}

	if _, err := c.sess.HandleSample(ctx, sample); err != nil {
		var vErr *attention.ValidationError
		switch {
		case errors.As(err, &vErr):
			// Already logged and dropped by the session.
		case errors.Is(err, session.ErrClosed):
			c.log.Debug("sample arrived after session teardown, discarded")
		default:
			c.log.Errorf("sample handling failed: %v", err)
		}
	}
}

func (c *socketClient) logResolutionError(action string, err error) {
	switch {
	case errors.Is(err, suggest.ErrNotSuggesting):
		c.log.Debugf("%s received with no suggestion pending", action)
	case errors.Is(err, session.ErrClosed):
		c.log.Debugf("%s arrived after session teardown, discarded", action)
	default:
		c.log.Errorf("%s failed: %v", action, err)
	}
}

// writePump flushes queued frames and keeps the connection alive with pings.
func (c *socketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				c.log.Debugf("websocket write failed: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
