package websocket

import (
	"encoding/json"
	"sync"

	apperrors "whiteboard/internal/errors"
)

type mockConn struct {
	id       string
	received [][]byte
	closed   bool
	sendErr  error
	mu       sync.Mutex
}

func newMockConn(id string) *mockConn {
	return &mockConn{id: id}
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return apperrors.ErrStaleConnection
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConn) getReceived() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.received...)
}

// receivedOfType decodes every frame of the given type.
func (m *mockConn) receivedOfType(msgType string) []map[string]any {
	var out []map[string]any
	for _, frame := range m.getReceived() {
		var decoded map[string]any
		if err := json.Unmarshal(frame, &decoded); err != nil {
			continue
		}
		if decoded["type"] == msgType {
			out = append(out, decoded)
		}
	}
	return out
}
