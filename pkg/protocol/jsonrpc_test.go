package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeID(v interface{}) *RequestID {
	id := RequestID(v)
	return &id
}

func TestMessageKind(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want MessageKind
	}{
		{"request", Message{JSONRPC: Version, ID: makeID(float64(1)), Method: "ping"}, KindRequest},
		{"notification", Message{JSONRPC: Version, Method: "notifications/initialized"}, KindNotification},
		{"response", Message{JSONRPC: Version, ID: makeID("a"), Result: json.RawMessage(`{}`)}, KindResponse},
		{"error", Message{JSONRPC: Version, Error: &ErrorObject{Code: ErrCodeInternalError}}, KindError},
		{"empty envelope", Message{JSONRPC: Version}, KindInvalid},
		{"result without id", Message{JSONRPC: Version, Result: json.RawMessage(`{}`)}, KindInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.msg.Kind())
		})
	}
}

func TestNewRequestRoundTrip(t *testing.T) {
	msg, err := NewRequest("req-1", "tools/call", map[string]interface{}{"name": "echo"})
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, Version, decoded.JSONRPC)
	require.NotNil(t, decoded.ID)
	assert.Equal(t, "req-1", *decoded.ID)
	assert.Equal(t, "tools/call", decoded.Method)
	assert.Equal(t, KindRequest, decoded.Kind())
	assert.JSONEq(t, `{"name":"echo"}`, string(decoded.Params))
}

func TestNewRequestRawParamsPassThrough(t *testing.T) {
	raw := json.RawMessage(`{"a":1}`)
	msg, err := NewRequest(float64(2), "tools/call", raw)
	require.NoError(t, err)
	assert.Equal(t, raw, msg.Params)
}

func TestNewResponse(t *testing.T) {
	msg, err := NewResponse(makeID(float64(7)), map[string]string{"ok": "yes"})
	require.NoError(t, err)

	assert.Equal(t, KindResponse, msg.Kind())
	assert.JSONEq(t, `{"ok":"yes"}`, string(msg.Result))
}

func TestNewNotificationHasNoID(t *testing.T) {
	msg, err := NewNotification("notifications/message", map[string]string{"level": "info"})
	require.NoError(t, err)

	assert.Nil(t, msg.ID)
	assert.Equal(t, KindNotification, msg.Kind())
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage(makeID(float64(3)), ErrCodeMethodNotFound, MsgMethodNotFound, "unsupported method: frobnicate")

	assert.Equal(t, KindError, msg.Kind())
	require.NotNil(t, msg.Error)
	assert.Equal(t, ErrCodeMethodNotFound, msg.Error.Code)
	assert.Equal(t, MsgMethodNotFound, msg.Error.Message)
}

func TestNewErrorMessageNilIDSerializesAsNull(t *testing.T) {
	msg := NewErrorMessage(nil, ErrCodeParseError, MsgParseError, nil)

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"id":null`), "wire frame: %s", data)
}
