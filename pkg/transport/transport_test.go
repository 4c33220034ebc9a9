package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcperrors "github.com/toolstream/mcp-core/pkg/errors"
	"github.com/toolstream/mcp-core/pkg/protocol"
)

func TestReceiveReassemblesChunkedMessage(t *testing.T) {
	pr, pw := io.Pipe()
	tr := NewStreamTransport(pr, io.Discard)
	defer tr.Close()

	frame := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	go func() {
		half := len(frame) / 2
		_, _ = pw.Write([]byte(frame[:half]))
		time.Sleep(10 * time.Millisecond)
		_, _ = pw.Write([]byte(frame[half:]))
		pw.Close()
	}()

	msg, err := tr.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ping", msg.Method)
	assert.Equal(t, protocol.KindRequest, msg.Kind())

	_, err = tr.Receive(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestReceiveMalformedFrameKeepsStreamUsable(t *testing.T) {
	input := "this is not json\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n"
	tr := NewStreamTransport(strings.NewReader(input), io.Discard)
	defer tr.Close()

	_, err := tr.Receive(context.Background())
	perr, ok := mcperrors.AsProtocolError(err)
	require.True(t, ok, "expected a protocol error, got %v", err)
	assert.Equal(t, protocol.ErrCodeParseError, perr.Code)

	msg, err := tr.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "notifications/initialized", msg.Method)
}

func TestReceiveSkipsBlankLines(t *testing.T) {
	input := "\n\n" + `{"jsonrpc":"2.0","id":9,"method":"ping"}` + "\n"
	tr := NewStreamTransport(strings.NewReader(input), io.Discard)
	defer tr.Close()

	msg, err := tr.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ping", msg.Method)
}

func TestReceiveFinalUnterminatedLine(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
	tr := NewStreamTransport(strings.NewReader(input), io.Discard)
	defer tr.Close()

	msg, err := tr.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ping", msg.Method)

	_, err = tr.Receive(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestSendWritesNewlineDelimitedFrames(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTransport(strings.NewReader(""), &buf)
	defer tr.Close()

	first, err := protocol.NewRequest(float64(1), "ping", nil)
	require.NoError(t, err)
	second, err := protocol.NewNotification("notifications/message", map[string]string{"level": "info"})
	require.NoError(t, err)

	require.NoError(t, tr.Send(context.Background(), first))
	require.NoError(t, tr.Send(context.Background(), second))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)), "frame is not valid JSON: %s", line)
	}
}

func TestCloseStopsTransport(t *testing.T) {
	pr, _ := io.Pipe()
	tr := NewStreamTransport(pr, io.Discard)
	require.NoError(t, tr.Close())

	_, err := tr.Receive(context.Background())
	assert.ErrorIs(t, err, mcperrors.ErrConnClosed)

	msg, err := protocol.NewNotification("notifications/message", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Send(context.Background(), msg), mcperrors.ErrConnClosed)
}

func TestDecodeMessage(t *testing.T) {
	cases := []struct {
		name  string
		frame string
	}{
		{"malformed json", `{"jsonrpc":`},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`},
		{"missing version", `{"id":1,"method":"ping"}`},
		{"no method or result", `{"jsonrpc":"2.0","id":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(tc.frame))
			perr, ok := mcperrors.AsProtocolError(err)
			require.True(t, ok, "expected a protocol error, got %v", err)
			assert.Equal(t, protocol.ErrCodeParseError, perr.Code)
		})
	}

	msg, err := DecodeMessage([]byte(`{"jsonrpc":"2.0","id":"abc","method":"tools/list"}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.KindRequest, msg.Kind())
	assert.Equal(t, "tools/list", msg.Method)
}
