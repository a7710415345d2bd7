package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"boiler_controller/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000

	wsTypeState = "state"
	wsTypeEvent = "event"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The panel is served from other hosts on the LAN.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSession streams to one client. Journal entries are sent once each,
// starting with the second the client connected in.
type wsSession struct {
	h    *Handler
	conn *websocket.Conn

	since time.Time
	seen  map[string]struct{} // IDs already sent at since
}

// @Summary      Boiler state stream
// @Description  Upgrades to a websocket and pushes {"type":"state","data":BoilerState} every interval (interval=2s or interval_ms=2000, max 10s). New journal entries follow as {"type":"event","data":BoilerEvent}.
// @Tags         boiler
// @Param        interval     query  string  false  "Push interval as a Go duration"
// @Param        interval_ms  query  int     false  "Push interval in milliseconds"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	s := &wsSession{
		h:     h,
		conn:  conn,
		since: time.Now().UTC().Truncate(time.Second),
		seen:  map[string]struct{}{},
	}
	ctx := c.Request.Context()
	if err := s.push(ctx); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}
	if h.log != nil {
		h.log.Debugw("ws_client_connected", "remote", c.ClientIP(), "interval", interval.String())
	}

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := s.push(ctx); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 within bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

// startReader drains incoming frames so pongs are handled and closure is seen.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (s *wsSession) write(v wsEnvelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

// push sends the current state followed by journal entries not sent yet.
// A failing journal query is logged and retried on the next push.
func (s *wsSession) push(ctx context.Context) error {
	st, err := s.h.services.Monitoring.GetState(ctx)
	if err != nil {
		if s.h.log != nil {
			s.h.log.Errorw("ws_get_state_failed", "err", err)
		}
		return err
	}
	if err := s.write(wsEnvelope{Type: wsTypeState, Data: st}); err != nil {
		return err
	}

	if s.h.services.EventLog == nil {
		return nil
	}
	events, err := s.h.services.EventLog.List(ctx, service.LogFilter{From: s.since})
	if err != nil {
		if s.h.log != nil {
			s.h.log.Warnw("ws_list_events_failed", "err", err)
		}
		return nil
	}
	for _, ev := range events {
		at := ev.OccurredAt.UTC()
		if _, dup := s.seen[ev.EventID]; dup || at.Before(s.since) {
			continue
		}
		if err := s.write(wsEnvelope{Type: wsTypeEvent, Data: ev}); err != nil {
			return err
		}
		if at.After(s.since) {
			s.since = at
			s.seen = map[string]struct{}{}
		}
		s.seen[ev.EventID] = struct{}{}
	}
	return nil
}
