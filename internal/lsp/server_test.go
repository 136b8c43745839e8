package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/leapasp/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// session builds the input stream of a client.
type session struct {
	buf    bytes.Buffer
	nextID int
}

func (c *session) request(method string, params any) int {
	c.nextID++
	c.write(map[string]any{"jsonrpc": "2.0", "id": c.nextID, "method": method, "params": params})
	return c.nextID
}

func (c *session) notify(method string, params any) {
	c.write(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (c *session) write(msg any) {
	body, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(&c.buf, "Content-Length: %d\r\n\r\n%s", len(body), body)
}

// readMessages splits the server output into messages.
func readMessages(t *testing.T, out []byte) []JSONRPCMessage {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(out))
	var msgs []JSONRPCMessage
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return msgs
		}
		require.NoError(t, err)
		length, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
		require.NoError(t, err)
		_, err = r.ReadString('\n')
		require.NoError(t, err)

		body := make([]byte, length)
		_, err = io.ReadFull(r, body)
		require.NoError(t, err)
		var msg JSONRPCMessage
		require.NoError(t, json.Unmarshal(body, &msg))
		msgs = append(msgs, msg)
	}
}

func runSession(t *testing.T, c *session) ([]JSONRPCMessage, error) {
	t.Helper()
	var out bytes.Buffer
	s := NewServerWithLogger(&c.buf, &out, testutil.NewTestLogger(t))
	err := s.Run(context.Background())
	return readMessages(t, out.Bytes()), err
}

func responseTo(t *testing.T, msgs []JSONRPCMessage, id int) JSONRPCMessage {
	t.Helper()
	for _, msg := range msgs {
		if msg.ID != nil && string(*msg.ID) == strconv.Itoa(id) {
			return msg
		}
	}
	t.Fatalf("no response to request %d", id)
	return JSONRPCMessage{}
}

func initialize(c *session) int {
	id := c.request("initialize", map[string]any{
		"processId": 1,
		"rootUri":   "file:///work",
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"completion": map[string]any{"completionItem": map[string]any{"snippetSupport": true}},
			},
		},
	})
	c.notify("initialized", map[string]any{})
	return id
}

func TestServer_Session(t *testing.T) {
	c := &session{}
	initID := initialize(c)
	c.notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{"uri": testURI, "languageId": "asp", "version": 1, "text": "a :- b.\n"},
	})
	hoverID := c.request("textDocument/hover", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 0, "character": 0},
	})
	c.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": testURI, "version": 2},
		"contentChanges": []map[string]any{{"text": "a :- b.\nb.\n"}},
	})
	completionID := c.request("textDocument/completion", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 2, "character": 0},
	})
	c.notify("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": testURI}})
	shutdownID := c.request("shutdown", nil)
	c.notify("exit", nil)

	msgs, err := runSession(t, c)
	require.NoError(t, err)

	var result InitializeResult
	require.NoError(t, json.Unmarshal(responseTo(t, msgs, initID).Result, &result))
	assert.True(t, result.Capabilities.HoverProvider)
	assert.True(t, result.Capabilities.DefinitionProvider)
	assert.True(t, result.Capabilities.ReferencesProvider)
	assert.Equal(t, TextDocumentSyncKindFull, result.Capabilities.TextDocumentSync.Change)

	var published []PublishDiagnosticsParams
	for _, msg := range msgs {
		if msg.Method == "textDocument/publishDiagnostics" {
			var p PublishDiagnosticsParams
			require.NoError(t, json.Unmarshal(msg.Params, &p))
			published = append(published, p)
		}
	}
	require.Len(t, published, 3)
	require.Len(t, published[0].Diagnostics, 1)
	assert.Equal(t, CodeUndefinedPredicate, published[0].Diagnostics[0].Code)
	assert.Empty(t, published[1].Diagnostics)
	assert.Empty(t, published[2].Diagnostics)

	var hover Hover
	require.NoError(t, json.Unmarshal(responseTo(t, msgs, hoverID).Result, &hover))
	assert.Contains(t, hover.Contents.Value, "**a/0**")

	var list CompletionList
	require.NoError(t, json.Unmarshal(responseTo(t, msgs, completionID).Result, &list))
	assert.Equal(t, []string{"a", "b", "not"}, labels(list.Items))

	assert.Nil(t, responseTo(t, msgs, shutdownID).Error)
}

func TestServer_Errors(t *testing.T) {
	c := &session{}
	earlyID := c.request("textDocument/hover", map[string]any{})
	initialize(c)
	unknownID := c.request("workspace/symbol", map[string]any{})
	badID := c.request("textDocument/hover", []int{1})
	c.notify("$/cancelRequest", map[string]any{"id": 1})
	shutdownID := c.request("shutdown", nil)
	lateID := c.request("textDocument/hover", map[string]any{})
	c.notify("exit", nil)

	msgs, err := runSession(t, c)
	require.NoError(t, err)

	tests := []struct {
		name string
		id   int
		code int
	}{
		{"before initialize", earlyID, codeNotInitialized},
		{"unknown method", unknownID, codeMethodNotFound},
		{"invalid params", badID, codeInvalidParams},
		{"after shutdown", lateID, codeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := responseTo(t, msgs, tt.id)
			require.NotNil(t, msg.Error)
			assert.Equal(t, tt.code, msg.Error.Code)
		})
	}
	assert.Nil(t, responseTo(t, msgs, shutdownID).Error)
}

func TestServer_ExitWithoutShutdown(t *testing.T) {
	c := &session{}
	initialize(c)
	c.notify("exit", nil)

	_, err := runSession(t, c)
	require.ErrorIs(t, err, ErrExitWithoutShutdown)
}

func TestServer_EOF(t *testing.T) {
	c := &session{}
	initialize(c)
	c.buf.WriteString("Content-Length: 100\r\n\r\n{")

	msgs, err := runSession(t, c)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestServer_CanceledContext(t *testing.T) {
	c := &session{}
	initialize(c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	s := NewServerWithLogger(&c.buf, &out, testutil.NewTestLogger(t))
	require.NoError(t, s.Run(ctx))
	assert.Zero(t, out.Len())
}
