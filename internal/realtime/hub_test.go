package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := UserChannel(uuid.New())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAssignmentPending, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAssetReturned, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventAssignmentPending {
		t.Fatalf("first event: got=%s", got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventAssetReturned {
		t.Fatalf("second event: got=%s", got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: %d", n)
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAssetLost})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventAssetLost {
		t.Fatalf("reconnect event: got=%s", got.Event)
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "c")

	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(SSEMessage{Channel: "c", Event: SSEEventEventPassIssued})
	}
	if got := len(client.Outbound); got != outboundBuffer {
		t.Fatalf("buffered: want=%d got=%d", outboundBuffer, got)
	}
}
