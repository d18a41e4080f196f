package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/squadhealth/games/healthcheck"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &Config{port: 8080, sendBuffer: 16}
	reg := healthcheck.NewRegistry(healthcheck.DefaultQuestions(), healthcheck.WithCodeGenerator(func() string {
		return "AB12"
	}))
	gw := healthcheck.NewGateway(reg, t.Logf)

	errs := make(chan error, 64)
	srv := httptest.NewServer(newRouter(cfg, gw, errs))
	t.Cleanup(srv.Close)

	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestRouter_StaticEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ok\n", string(body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, body = get(t, srv.URL+"/version")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "squadhealth v"+releaseVersion+"\n", string(body))

	resp, body = get(t, srv.URL+"/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Disallow: /")

	resp, body = get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Squad Health Check")

	resp, body = get(t, srv.URL+"/favicon.svg")
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("<svg")))
}

func TestRouter_Assets(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/assets/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/javascript; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "create-room")

	resp, _ = get(t, srv.URL+"/assets/app.css")
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))

	resp, _ = get(t, srv.URL+"/assets/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "squadhealth_rooms_created_total")
	assert.Contains(t, string(body), "squadhealth_connections_open")
}

func TestRouter_QRCode(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/room/AB12/qr")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	resp, _ = get(t, srv.URL+"/room/ab12/qr")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "codes are case-insensitive")

	for _, code := range []string{"TOOLONG", "AB-2", "AB%212", "AB%20"} {
		resp, _ = get(t, srv.URL+"/room/"+code+"/qr")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, code)
	}
}

func TestJoinURL(t *testing.T) {
	cfg := &Config{prefix: "/health"}
	r := httptest.NewRequest(http.MethodGet, "http://example.com/health/room/AB12/qr", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	assert.Equal(t, "https://example.com/health/?room=AB12", joinURL(cfg, r, "AB12"))
}

type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// expect reads events until one of type typ arrives.
func expect(t *testing.T, conn *websocket.Conn, typ string) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var ev wireEvent
		require.NoError(t, conn.ReadJSON(&ev), "waiting for %s", typ)
		if ev.Type == typ {
			return ev.Payload
		}
	}
}

func TestWebsocket_GameFlow(t *testing.T) {
	srv := newTestServer(t)

	owner := dial(t, srv)
	alice := dial(t, srv)

	require.NoError(t, owner.WriteJSON(healthcheck.Command{Type: healthcheck.CommandCreateRoom, Name: "Olive"}))
	assert.JSONEq(t, `"AB12"`, string(expect(t, owner, healthcheck.EventRoomID)))

	require.NoError(t, alice.WriteJSON(healthcheck.Command{Type: healthcheck.CommandJoinRoom, Name: "Alice", Room: "ab12"}))
	assert.JSONEq(t, `["Olive (Owner)","Alice"]`, string(expect(t, alice, healthcheck.EventNewUser)))
	expect(t, alice, healthcheck.EventJoined)
	assert.JSONEq(t, `["Olive (Owner)","Alice"]`, string(expect(t, owner, healthcheck.EventNewUser)))

	require.NoError(t, owner.WriteJSON(healthcheck.Command{Type: healthcheck.CommandStartGame, Room: "AB12"}))
	for _, c := range []*websocket.Conn{owner, alice} {
		expect(t, c, healthcheck.EventGameStart)

		var q healthcheck.QuestionPayload
		require.NoError(t, json.Unmarshal(expect(t, c, healthcheck.EventQuestion), &q))
		assert.Equal(t, "Delivering Value", q.Title)
		assert.Equal(t, 0, q.Index)
		assert.Equal(t, 11, q.Total)
	}

	require.NoError(t, alice.WriteJSON(healthcheck.Command{Type: healthcheck.CommandResponse, Room: "AB12", Colour: "yellow"}))
	for _, c := range []*websocket.Conn{owner, alice} {
		assert.JSONEq(t, `{"red":0,"yellow":1,"green":0}`, string(expect(t, c, healthcheck.EventRoundResponse)))
	}

	require.NoError(t, alice.WriteJSON(healthcheck.Command{Type: healthcheck.CommandNextRound, Room: "AB12"}))
	var rejection healthcheck.ErrorPayload
	require.NoError(t, json.Unmarshal(expect(t, alice, healthcheck.EventError), &rejection))
	assert.Equal(t, "unauthorized", rejection.Code)

	require.NoError(t, owner.Close())
	expect(t, alice, healthcheck.EventGameEnded)
}

func TestWebsocket_JoinUnknownRoom(t *testing.T) {
	srv := newTestServer(t)

	lost := dial(t, srv)
	require.NoError(t, lost.WriteJSON(healthcheck.Command{Type: healthcheck.CommandJoinRoom, Name: "Lost", Room: "ZZZZ"}))
	expect(t, lost, healthcheck.EventNotFound)
}
