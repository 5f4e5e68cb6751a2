package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tortuga"
	adapter "github.com/aretw0/tortuga/pkg/adapters/http"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/draw"
	"github.com/aretw0/tortuga/pkg/observability"
	"github.com/aretw0/tortuga/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...adapter.Option) (*httptest.Server, *tortuga.Engine) {
	t.Helper()
	canvas := memory.NewCanvas()
	eng := tortuga.New(tortuga.WithRenderer(canvas), tortuga.WithFrameRate(time.Millisecond))
	errc := make(chan error, 1)
	go func() { errc <- eng.Run(context.Background()) }()
	t.Cleanup(func() {
		eng.Stop()
		<-errc
	})

	mgr := session.NewManager(eng, memory.NewStore())
	opts = append([]adapter.Option{adapter.WithDrawings(canvas)}, opts...)
	srv := httptest.NewServer(adapter.NewHandler(mgr, opts...))
	t.Cleanup(srv.Close)
	return srv, eng
}

func start(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body adapter.SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func post(t *testing.T, url, body string) (*http.Response, adapter.SessionResponse) {
	t.Helper()
	resp, err := http.Post(url, "application/yaml", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out adapter.SessionResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestServer_HealthAndInfo(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "tortuga-http", info["app"])
	assert.Equal(t, strings.TrimSpace(tortuga.Version), info["version"])
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv, _ := newServer(t)
	id := start(t, srv)
	base := srv.URL + "/sessions/" + id

	resp, body := post(t, base+"/commands", "speed: 0\nsteps: [{forward: 30}, {left: 90}, {forward: 40}]")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pos := body.Snapshot.State.Pos()
	assert.InDelta(t, 30, pos.X, 1e-9)
	assert.InDelta(t, 40, pos.Y, 1e-9)
	assert.Equal(t, 3, body.Snapshot.UndoCount)

	get, err := http.Get(base)
	require.NoError(t, err)
	defer get.Body.Close()
	var loaded adapter.SessionResponse
	require.NoError(t, json.NewDecoder(get.Body).Decode(&loaded))
	assert.Equal(t, body.Snapshot.UndoCount, loaded.Snapshot.UndoCount)

	drawing, err := http.Get(base + "/drawing")
	require.NoError(t, err)
	defer drawing.Body.Close()
	var d adapter.DrawingResponse
	require.NoError(t, json.NewDecoder(drawing.Body).Decode(&d))
	require.Len(t, d.Commands, 3)
	first, err := draw.Unwrap(d.Commands[0])
	require.NoError(t, err)
	assert.IsType(t, draw.Line{}, first)

	list, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer list.Body.Close()
	var ids []string
	require.NoError(t, json.NewDecoder(list.Body).Decode(&ids))
	assert.Equal(t, []string{id}, ids)

	req, err := http.NewRequest(http.MethodDelete, base, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	gone, err := http.Get(base)
	require.NoError(t, err)
	gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestServer_CommandErrors(t *testing.T) {
	srv, _ := newServer(t)
	id := start(t, srv)
	base := srv.URL + "/sessions/" + id

	tests := []struct {
		name   string
		url    string
		body   string
		status int
	}{
		{"unknown session", srv.URL + "/sessions/missing/commands", "steps: [{forward: 1}]", http.StatusNotFound},
		{"unknown step", base + "/commands", "steps: [{fly: 1}]", http.StatusBadRequest},
		{"not a script", base + "/commands", "{{{", http.StatusBadRequest},
		{"malformed colour", base + "/commands", `steps: [{pencolor: "#1"}]`, http.StatusUnprocessableEntity},
		{"window op", base + "/commands", "steps: [clear]", http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := post(t, tc.url, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestServer_UndoPastHistory(t *testing.T) {
	srv, _ := newServer(t)
	id := start(t, srv)

	resp, body := post(t, srv.URL+"/sessions/"+id+"/commands",
		"speed: 0\nsteps: [{forward: 7}, {undo: 5}, {forward: 1}]")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "undo beyond the history is a no-op")
	assert.InDelta(t, 1, body.Snapshot.State.Pos().X, 1e-9)
	assert.Empty(t, body.Error)
}

func TestServer_DrawingIsReadOnly(t *testing.T) {
	srv, _ := newServer(t)
	id := start(t, srv)
	base := srv.URL + "/sessions/" + id

	resp, _ := post(t, base+"/commands", "speed: 0\nsteps: [{forward: 10}]")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	before, err := http.Get(base)
	require.NoError(t, err)
	defer before.Body.Close()
	var was adapter.SessionResponse
	require.NoError(t, json.NewDecoder(before.Body).Decode(&was))

	drawing, err := http.Get(base + "/drawing")
	require.NoError(t, err)
	drawing.Body.Close()
	require.Equal(t, http.StatusOK, drawing.StatusCode)

	after, err := http.Get(base)
	require.NoError(t, err)
	defer after.Body.Close()
	var is adapter.SessionResponse
	require.NoError(t, json.NewDecoder(after.Body).Decode(&is))
	assert.Equal(t, was.Snapshot.SavedAt, is.Snapshot.SavedAt)

	missing, err := http.Get(srv.URL + "/sessions/nope/drawing")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestServer_OversizedBody(t *testing.T) {
	srv, _ := newServer(t, adapter.WithMaxBodySize(16))
	id := start(t, srv)

	resp, _ := post(t, srv.URL+"/sessions/"+id+"/commands", "steps: [{forward: 10}, {left: 90}, {forward: 10}]")
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp, _ = post(t, srv.URL+"/sessions/"+id+"/commands", "steps: [x]")
	assert.NotEqual(t, http.StatusRequestEntityTooLarge, resp.StatusCode, "small bodies are not size errors")
}

func TestServer_ByeDoesNotStopOtherSessions(t *testing.T) {
	srv, eng := newServer(t)
	a := start(t, srv)
	b := start(t, srv)

	resp, _ := post(t, srv.URL+"/sessions/"+a+"/commands", "steps: [{bye: null}]")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	select {
	case <-eng.Done():
		t.Fatal("a session stopped the shared engine")
	default:
	}
	resp, body := post(t, srv.URL+"/sessions/"+b+"/commands", "speed: 0\nsteps: [{forward: 10}]")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 10, body.Snapshot.State.Pos().X, 1e-9)
}

func TestServer_EngineGone(t *testing.T) {
	srv, eng := newServer(t)
	id := start(t, srv)

	eng.Stop()
	<-eng.Done()

	resp, _ := post(t, srv.URL+"/sessions/"+id+"/commands", "steps: [{forward: 1}]")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_SubscribeEvents(t *testing.T) {
	srv, _ := newServer(t)
	id := start(t, srv)
	base := srv.URL + "/sessions/" + id

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	post(t, base+"/commands", "speed: 0\nsteps: [{forward: 12}]")

	var data string
	for lines.Scan() {
		if after, ok := strings.CutPrefix(lines.Text(), "data: "); ok && after != "connected" {
			data = after
			break
		}
	}
	require.NotEmpty(t, data)
	assert.Contains(t, data, `"undo_count":1`)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	srv, _ := newServer(t, adapter.WithMetrics(reg))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	noMetrics, _ := newServer(t)
	resp, err = http.Get(noMetrics.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamManager_CloseEndsSubscribers(t *testing.T) {
	sm := adapter.NewStreamManager()
	ch, cancel := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))

	sm.Broadcast("s", "hello")
	assert.Equal(t, "hello", <-ch)

	sm.Close("s")
	_, open := <-ch
	assert.False(t, open)
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s"))
}
