package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tortuga/internal/logging"
	"github.com/aretw0/tortuga/pkg/adapters/file"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/adapters/redis"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_JSONL(t *testing.T) {
	path := writeScript(t, "line.yaml", "speed: 0\nsteps: [{forward: 10}, {left: 90}]")
	var out bytes.Buffer

	report, err := Run(context.Background(), RunOptions{
		Scripts: []string{path},
		Output:  OutputJSONL,
		FPS:     1000,
		Stdin:   strings.NewReader(""),
		Stdout:  &out,
		Stderr:  io.Discard,
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "line", report.Results[0].Name)

	var kinds []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var ev struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &ev), line)
		kinds = append(kinds, ev.Event)
	}
	assert.Contains(t, kinds, "turtle")
	assert.Contains(t, kinds, "append")
	assert.NotContains(t, out.String(), "Run summary", "jsonl output stays machine readable")
}

func TestRun_TerminalSummary(t *testing.T) {
	path := writeScript(t, "dot.yaml", "speed: 0\nsteps: [{dot: 5}]")
	var out bytes.Buffer

	_, err := Run(context.Background(), RunOptions{
		Scripts: []string{path},
		FPS:     1000,
		NoColor: true,
		Stdin:   strings.NewReader(""),
		Stdout:  &out,
		Stderr:  io.Discard,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "turtle graphics")
	assert.Contains(t, out.String(), "Run summary")
}

func TestRun_Errors(t *testing.T) {
	good := writeScript(t, "ok.yaml", "steps: [{forward: 1}]")
	base := RunOptions{Scripts: []string{good}, Stdin: strings.NewReader(""), Stdout: io.Discard, Stderr: io.Discard}

	tests := []struct {
		name   string
		mutate func(*RunOptions)
		want   string
	}{
		{"no scripts", func(o *RunOptions) { o.Scripts = nil }, "no script"},
		{"missing file", func(o *RunOptions) { o.Scripts = []string{filepath.Join(t.TempDir(), "nope.yaml")} }, "nope.yaml"},
		{"bad output", func(o *RunOptions) { o.Output = "svg" }, "unknown output"},
		{"bad level", func(o *RunOptions) { o.LogLevel = "chatty" }, "unknown log level"},
		{"bad fps", func(o *RunOptions) { o.ConfigPath = writeScript(t, "cfg.yaml", "fps: -2") }, "invalid config"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := base
			tc.mutate(&opts)
			_, err := Run(context.Background(), opts)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	store, locker, closeFn, err := openStore(ctx, StoreOptions{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	assert.Nil(t, locker)
	assert.NoError(t, closeFn())

	store, _, _, err = openStore(ctx, StoreOptions{StoreDir: t.TempDir()}, logger)
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, store)

	mr := miniredis.RunT(t)
	store, locker, closeFn, err = openStore(ctx, StoreOptions{RedisAddr: mr.Addr(), SessionTTL: time.Minute}, logger)
	require.NoError(t, err)
	assert.IsType(t, &redis.Store{}, store)
	assert.IsType(t, &redis.Locker{}, locker)
	assert.NoError(t, closeFn())

	mr.Close()
	_, _, _, err = openStore(ctx, StoreOptions{RedisAddr: mr.Addr()}, logger)
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestOpenStore_Sealed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := strings.Repeat("ab", 32)

	store, _, _, err := openStore(ctx, StoreOptions{StoreDir: dir, SessionKey: key}, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "s1", domain.Snapshot{State: domain.NewTurtleState(), UndoCount: 2}))

	raw, err := file.New(dir).Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)

	snap, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.UndoCount)

	_, _, _, err = openStore(ctx, StoreOptions{SessionKey: "short"}, logging.NewNop())
	assert.ErrorContains(t, err, "invalid session key")
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- Serve(ctx, ServeOptions{
			Listener:     ln,
			Metrics:      true,
			StoreOptions: StoreOptions{StoreDir: t.TempDir()},
			Stderr:       io.Discard,
		})
	}()

	resp, err := http.Post(base+"/sessions", "application/json", nil)
	require.NoError(t, err)
	var started struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(base+"/sessions/"+started.ID+"/commands", "application/yaml",
		strings.NewReader("speed: 0\nsteps: [{forward: 3}]"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "tortuga_requests_total")

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeMCP_Stdio(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"lookup_color","arguments":{"name":"blue"}}}`,
	}, "\n") + "\n"
	out := &syncBuffer{}

	err := ServeMCP(context.Background(), MCPOptions{
		Stdin:  strings.NewReader(in),
		Stdout: out,
		Stderr: io.Discard,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"id":1`)
	assert.Contains(t, out.String(), "#0000ff")
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	err := ServeMCP(context.Background(), MCPOptions{Transport: "carrier pigeon", Stderr: io.Discard})
	assert.ErrorContains(t, err, fmt.Sprintf("unknown transport: %s", "carrier pigeon"))
}
