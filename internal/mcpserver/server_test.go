package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	r := NewRegistry()
	r.Register(&stubTool{name: "ping"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(r, ServerInfo{Name: "orcaflow", Version: "test"}, logger)
}

func TestHandleMessageNotificationGetsNoResponse(t *testing.T) {
	s := testServer()
	resp := s.handleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, resp)
}

func TestHandleMessageInvalidJSONIsParseError(t *testing.T) {
	s := testServer()
	resp := s.handleMessage(context.Background(), []byte(`{not json`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
}

func TestHandleMessageUnknownMethodIsMethodNotFound(t *testing.T) {
	s := testServer()
	resp := s.handleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"bogus"}`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleMessageToolsList(t *testing.T) {
	s := testServer()
	resp := s.handleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(*ToolsListResult)
	require.True(t, ok)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "ping", result.Tools[0].Name)
}

func TestHandleMessageToolsCallDispatchesToRegisteredTool(t *testing.T) {
	s := testServer()
	params, err := json.Marshal(ToolsCallParams{Name: "ping"})
	require.NoError(t, err)
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/call", Params: params}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.handleMessage(context.Background(), raw)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(*ToolsCallResult)
	require.True(t, ok)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "ok")
}

func TestHandleMessageToolsCallUnknownToolIsMethodNotFound(t *testing.T) {
	s := testServer()
	params, err := json.Marshal(ToolsCallParams{Name: "missing"})
	require.NoError(t, err)
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/call", Params: params}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.handleMessage(context.Background(), raw)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleMessageInitializeReturnsServerInfo(t *testing.T) {
	s := testServer()
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "initialize"}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.handleMessage(context.Background(), raw)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(*InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "orcaflow", result.ServerInfo.Name)
}
