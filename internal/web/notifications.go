package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// slotPayload is the JSON form of the notification slot.
type slotPayload struct {
	Visible  bool        `json:"visible"`
	Sequence uint64      `json:"sequence,omitempty"`
	Message  string      `json:"message,omitempty"`
	Kind     notify.Kind `json:"kind,omitempty"`
}

func payload(ev notify.Event) slotPayload {
	if !ev.Visible {
		return slotPayload{}
	}
	return slotPayload{Visible: true, Sequence: ev.Sequence, Message: ev.Message, Kind: ev.Kind}
}

func currentPayload(c *notify.Center) slotPayload {
	n, ok := c.Current()
	return payload(notify.Event{Notification: n, Visible: ok})
}

// notification reports the slot as JSON. A request without a known browser gets the empty slot.
func (a *App) notification(w http.ResponseWriter, r *http.Request) {
	var p slotPayload
	if b, ok := a.browsers.find(r); ok {
		p = currentPayload(b.notes)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// offer delivers ev, replacing an undelivered older event.
func offer(ch chan notify.Event, ev notify.Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// notificationSocket streams slot changes for the requesting browser until either side closes.
func (a *App) notificationSocket(w http.ResponseWriter, r *http.Request) {
	b, ok := a.browsers.find(r)
	if !ok {
		http.Error(w, "Unknown browser", http.StatusForbidden)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := make(chan notify.Event, 1)
	unsubscribe := b.notes.Subscribe(func(ev notify.Event) { offer(events, ev) })
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	send := func(p slotPayload) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(p) == nil
	}

	if !send(currentPayload(b.notes)) {
		return
	}
	for {
		select {
		case ev := <-events:
			if !send(payload(ev)) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-a.ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}
