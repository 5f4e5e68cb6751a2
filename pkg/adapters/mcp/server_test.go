package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/tortuga"
	"github.com/aretw0/tortuga/pkg/adapters/mcp"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toolResult struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	StructuredContent json.RawMessage `json:"structuredContent"`
	IsError           bool            `json:"isError"`
}

func newServer(t *testing.T) *mcp.Server {
	t.Helper()
	eng := tortuga.New(tortuga.WithRenderer(memory.NewCanvas()), tortuga.WithFrameRate(time.Millisecond))
	errc := make(chan error, 1)
	go func() { errc <- eng.Run(context.Background()) }()
	t.Cleanup(func() {
		eng.Stop()
		<-errc
	})
	return mcp.NewServer(session.NewManager(eng, memory.NewStore()), nil)
}

func rpc(t *testing.T, s *mcp.Server, method string, params any) json.RawMessage {
	t.Helper()
	p, err := json.Marshal(params)
	require.NoError(t, err)
	msg := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":%s}`, method, p)

	resp := s.MCPServer().HandleMessage(context.Background(), []byte(msg))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Nil(t, envelope.Error, "rpc error: %s", raw)
	return envelope.Result
}

func call(t *testing.T, s *mcp.Server, tool string, args map[string]any) toolResult {
	t.Helper()
	var res toolResult
	require.NoError(t, json.Unmarshal(rpc(t, s, "tools/call", map[string]any{"name": tool, "arguments": args}), &res))
	return res
}

func TestServer_SessionTools(t *testing.T) {
	s := newServer(t)

	started := call(t, s, "start_session", nil)
	require.False(t, started.IsError)
	var out mcp.SessionResult
	require.NoError(t, json.Unmarshal(started.StructuredContent, &out))
	require.NotEmpty(t, out.SessionID)
	id := out.SessionID

	ran := call(t, s, "run_script", map[string]any{
		"session_id": id,
		"script":     `{"speed": 0, "steps": [{"forward": 25}, "penup"]}`,
	})
	require.False(t, ran.IsError, ran.Content)
	require.NoError(t, json.Unmarshal(ran.StructuredContent, &out))
	assert.InDelta(t, 25, out.Snapshot.State.Pos().X, 1e-9)
	assert.False(t, out.Snapshot.State.PenDown)
	assert.Empty(t, out.Error)

	got := call(t, s, "get_session", map[string]any{"session_id": id})
	require.False(t, got.IsError)
	var loaded mcp.SessionResult
	require.NoError(t, json.Unmarshal(got.StructuredContent, &loaded))
	assert.Equal(t, out.Snapshot.UndoCount, loaded.Snapshot.UndoCount)

	listed := call(t, s, "list_sessions", nil)
	require.Len(t, listed.Content, 1)
	assert.JSONEq(t, fmt.Sprintf("[%q]", id), listed.Content[0].Text)

	deleted := call(t, s, "delete_session", map[string]any{"session_id": id})
	assert.False(t, deleted.IsError)

	missing := call(t, s, "get_session", map[string]any{"session_id": id})
	assert.True(t, missing.IsError)
}

func TestServer_RunScriptRejectsBadInput(t *testing.T) {
	s := newServer(t)

	res := call(t, s, "run_script", map[string]any{"session_id": "nope", "script": "steps: [{forward: 1}]"})
	assert.True(t, res.IsError)

	started := call(t, s, "start_session", nil)
	var out mcp.SessionResult
	require.NoError(t, json.Unmarshal(started.StructuredContent, &out))

	res = call(t, s, "run_script", map[string]any{"session_id": out.SessionID, "script": "steps: [{fly: 1}]"})
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	assert.Contains(t, res.Content[0].Text, "unknown step")
}

func TestServer_RunScriptRejectsWindowOps(t *testing.T) {
	s := newServer(t)
	started := call(t, s, "start_session", nil)
	var out mcp.SessionResult
	require.NoError(t, json.Unmarshal(started.StructuredContent, &out))

	res := call(t, s, "run_script", map[string]any{"session_id": out.SessionID, "script": "steps: [bye]"})
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	assert.Contains(t, res.Content[0].Text, "shared canvas")

	res = call(t, s, "run_script", map[string]any{"session_id": out.SessionID, "script": "steps: [{forward: 1}]"})
	assert.False(t, res.IsError, "the engine keeps serving the session")
}

func TestServer_LookupColor(t *testing.T) {
	s := newServer(t)

	res := call(t, s, "lookup_color", map[string]any{"name": "red"})
	require.False(t, res.IsError)
	var c mcp.ColorResult
	require.NoError(t, json.Unmarshal(res.StructuredContent, &c))
	assert.Equal(t, "#ff0000", c.Hex)

	assert.True(t, call(t, s, "lookup_color", map[string]any{"name": "no such colour"}).IsError)
	assert.True(t, call(t, s, "lookup_color", map[string]any{"name": "#12"}).IsError)
}

func TestServer_Resources(t *testing.T) {
	s := newServer(t)

	var read struct {
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(rpc(t, s, "resources/read", map[string]any{"uri": "tortuga://colors"}), &read))
	require.Len(t, read.Contents, 1)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(read.Contents[0].Text), &names))
	assert.Contains(t, names, "red")

	started := call(t, s, "start_session", nil)
	var out mcp.SessionResult
	require.NoError(t, json.Unmarshal(started.StructuredContent, &out))

	uri := "tortuga://sessions/" + out.SessionID
	require.NoError(t, json.Unmarshal(rpc(t, s, "resources/read", map[string]any{"uri": uri}), &read))
	require.Len(t, read.Contents, 1)
	assert.Equal(t, uri, read.Contents[0].URI)
	assert.Contains(t, read.Contents[0].Text, `"undo_count":0`)
}
