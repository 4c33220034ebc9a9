// Package transport implements the byte-stream side of the protocol:
// newline-delimited JSON-RPC messages over an io.Reader/io.Writer pair.
//
// Decoding is purely syntactic. A line that is not well-formed JSON, or
// whose envelope is missing the jsonrpc version tag, surfaces as a
// ProtocolError with code -32700; the semantic meaning of method and params
// is the dispatcher's business.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	mcperrors "github.com/toolstream/mcp-core/pkg/errors"
	"github.com/toolstream/mcp-core/pkg/protocol"
)

// Transport represents a bidirectional communication channel for MCP messages.
type Transport interface {
	// Send sends a message to the other end
	Send(ctx context.Context, msg *protocol.Message) error

	// Receive returns the next message from the other end
	Receive(ctx context.Context) (*protocol.Message, error)

	// Close closes the transport
	Close() error
}

type readResult struct {
	line []byte
	err  error
}

// StreamTransport implements Transport over a raw byte stream, one message
// per line. Reads are buffered, so a message split across several physical
// reads is reassembled transparently. Writes are serialized so concurrent
// senders never interleave bytes on the stream.
type StreamTransport struct {
	reader *bufio.Reader
	writer *bufio.Writer

	writeMu sync.Mutex

	readOnce  sync.Once
	lineCh    chan readResult
	closeOnce sync.Once
	closed    chan struct{}
}

// NewStreamTransport creates a Transport over the given reader and writer.
func NewStreamTransport(reader io.Reader, writer io.Writer) *StreamTransport {
	return &StreamTransport{
		reader: bufio.NewReader(reader),
		writer: bufio.NewWriter(writer),
		lineCh: make(chan readResult),
		closed: make(chan struct{}),
	}
}

// Send implements Transport.Send.
func (t *StreamTransport) Send(ctx context.Context, msg *protocol.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.closed:
		return mcperrors.ErrConnClosed
	default:
	}

	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	return nil
}

// Receive implements Transport.Receive. A decode failure is returned as a
// *ProtocolError with code -32700; the stream itself stays usable and the
// next call returns the next line.
func (t *StreamTransport) Receive(ctx context.Context) (*protocol.Message, error) {
	t.readOnce.Do(func() { go t.readLoop() })

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.closed:
			return nil, mcperrors.ErrConnClosed
		case res, ok := <-t.lineCh:
			if !ok {
				return nil, mcperrors.ErrConnClosed
			}
			if res.err != nil {
				if res.err == io.EOF {
					return nil, io.EOF
				}
				return nil, fmt.Errorf("failed to read message: %w", res.err)
			}
			line := bytes.TrimSpace(res.line)
			if len(line) == 0 {
				continue
			}
			return DecodeMessage(line)
		}
	}
}

// readLoop feeds whole lines to Receive. A single goroutine owns the reader,
// so decoding is never concurrent with itself.
func (t *StreamTransport) readLoop() {
	defer close(t.lineCh)
	for {
		line, err := t.reader.ReadBytes('\n')
		if err != nil {
			// A final unterminated line still carries a message.
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case t.lineCh <- readResult{line: line}:
				case <-t.closed:
					return
				}
			}
			select {
			case t.lineCh <- readResult{err: err}:
			case <-t.closed:
			}
			return
		}

		select {
		case t.lineCh <- readResult{line: line}:
		case <-t.closed:
			return
		}
	}
}

// Close implements Transport.Close.
func (t *StreamTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

// DecodeMessage decodes a single frame into a message envelope. Malformed
// JSON and missing or ill-typed envelope fields both map to -32700.
func DecodeMessage(frame []byte) (*protocol.Message, error) {
	var msg protocol.Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeParseError,
			Message: protocol.MsgParseError,
			Data:    err.Error(),
		}
	}

	if msg.JSONRPC != protocol.Version {
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeParseError,
			Message: protocol.MsgParseError,
			Data:    fmt.Sprintf("unsupported jsonrpc version %q", msg.JSONRPC),
		}
	}

	if msg.Kind() == protocol.KindInvalid {
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeParseError,
			Message: protocol.MsgParseError,
			Data:    "message is neither a request, notification, response nor error",
		}
	}

	return &msg, nil
}

// EncodeMessage encodes a message envelope to its wire frame, without the
// trailing newline.
func EncodeMessage(msg *protocol.Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}
