// Squad Health Check
//
// One person creates a room and shares its four-character code. Everyone else
// joins with that code and answers each question red, yellow or green while
// the owner steps through the list. Round tallies are shown once everyone but
// the owner has answered, and the full breakdown is shown at the end.
//
// Features:
// - One websocket per browser tab at /ws; room membership lives in the gateway
// - Owner-only start and next-round
// - Late joiners are dropped straight into the current question
// - Owner disconnect ends the room for everyone
// - Ended rooms reaped after a configurable timeout; idle live rooms only on request
// - QR code for a room's join link, backed by go-qrcode

package main

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/squadhealth/games/healthcheck"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/skip2/go-qrcode"
)

const maxMessageSize = 4096

var connectionsOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "squadhealth_connections_open",
		Help: "Websocket connections currently open",
	},
)

// Client is one websocket connection. It satisfies healthcheck.Conn.
type Client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan healthcheck.Event
	closed bool
}

func newClient(conn *websocket.Conn, buffer int) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan healthcheck.Event, buffer),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues ev without blocking. A client that cannot keep up is closed.
func (c *Client) Send(ev healthcheck.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- ev:
	default:
		c.closeLocked()
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, gw *healthcheck.Gateway) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		client := newClient(conn, cfg.sendBuffer)

		connectionsOpen.Inc()
		logf(cfg, "CONNS: %s connected from %s", client.ID(), realIP(r))

		go client.writePump()
		client.readPump(cfg, gw)
	}
}

func (c *Client) readPump(cfg *Config, gw *healthcheck.Gateway) {
	defer func() {
		gw.Disconnect(c)
		c.close()
		_ = c.conn.Close()

		connectionsOpen.Dec()
		logf(cfg, "CONNS: %s disconnected", c.ID())
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var cmd healthcheck.Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			return
		}

		// Rejections are already reported to the client by the gateway.
		_ = gw.Handle(c, cmd)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for ev := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// joinURL is the link a QR code points at for a room.
func joinURL(cfg *Config, r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     cfg.prefix + "/",
		RawQuery: url.Values{"room": {code}}.Encode(),
	}
	return u.String()
}

// qrHandler renders a PNG QR code for a room's join link.
func qrHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := strings.ToUpper(ps.ByName("code"))
		if !healthcheck.ValidCode(code) {
			http.Error(w, "invalid room code", http.StatusBadRequest)
			return
		}

		const qrSize = 320
		png, err := qrcode.Encode(joinURL(cfg, r, code), qrcode.Medium, qrSize)
		if err != nil {
			errs <- err

			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

// registerHealthCheck sets up routes so that:
//   - $prefix/ws             → websocket for every command and event
//   - $prefix/room/:code/qr  → PNG QR code for a room's join link
func registerHealthCheck(cfg *Config, gw *healthcheck.Gateway, errs chan<- error, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, gw))

	mux.GET(cfg.prefix+"/room/:code/qr", qrHandler(cfg, errs))
}
