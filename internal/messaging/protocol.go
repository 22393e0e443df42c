package messaging

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxMessageSize is the maximum allowed message size (64MB). Save requests
	// carry whole documents, so this is well above a typical UI message.
	MaxMessageSize = 64 * 1024 * 1024
)

// ErrMessageTooLarge is returned for a frame over MaxMessageSize. The body has
// already been discarded, so the next frame can still be read.
var ErrMessageTooLarge = errors.New("message too large")

// Message is a request from the viewer's command dispatcher
type Message struct {
	Action   string `json:"action"`
	Suffix   string `json:"suffix,omitempty"`
	Contents string `json:"contents,omitempty"`
}

// Response is the single value sent back for each Message
type Response struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	FullPath string `json:"fullpath"`
	Contents string `json:"contents"`
	Status   string `json:"status,omitempty"`
}

// ReadMessage reads a length-prefixed JSON message from the given reader.
// The native messaging framing is a 32-bit little-endian length prefix.
func ReadMessage(r io.Reader) (*Message, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read message length: %w", err)
	}

	if length == 0 {
		return nil, fmt.Errorf("invalid message length: 0")
	}
	if length > MaxMessageSize {
		if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
			return nil, fmt.Errorf("failed to discard oversized message body: %w", err)
		}
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrMessageTooLarge, length, MaxMessageSize)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(buf, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// WriteMessage writes a length-prefixed JSON response to the given writer.
func WriteMessage(w io.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	length := uint32(len(data))
	if err := binary.Write(w, binary.LittleEndian, length); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}

	return nil
}
