package websocket

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestWritePumpWritesFrames(t *testing.T) {
	hub := NewHub(nil)
	conn := NewMockConnection()
	client := NewClientWithConnection(hub, conn, "", nil)

	done := make(chan struct{})
	go func() {
		client.WritePump()
		close(done)
	}()

	client.send <- []byte(`{"type":"log"}`)

	assert.Eventually(t, func() bool {
		for _, msg := range conn.WrittenMessages() {
			if msg.Type == websocket.TextMessage && string(msg.Data) == `{"type":"log"}` {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	// Closing the send channel ends the pump with a close frame.
	close(client.send)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop")
	}

	var sawClose bool
	for _, msg := range conn.WrittenMessages() {
		if msg.Type == websocket.CloseMessage {
			sawClose = true
		}
	}
	assert.True(t, sawClose)
}

func TestReadPumpUnregistersOnError(t *testing.T) {
	hub := startHub(t)
	conn := NewMockConnection()
	conn.AddReadMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`), nil)

	client := NewClientWithConnection(hub, conn, "trace-1", nil)
	hub.Register(client)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	go client.ReadPump()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), client.messagesReceived)
}
