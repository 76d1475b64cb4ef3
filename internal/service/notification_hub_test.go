package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) (*NotificationHub, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	hub := NewNotificationHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(cancel)
	return hub, cancel, stopped
}

func TestHubDeliversToRegisteredClients(t *testing.T) {
	hub, _, _ := runHub(t)
	client := &Client{Hub: hub, Send: make(chan []byte, 4), UserID: 7}
	require.True(t, hub.Register(client))

	require.Eventually(t, func() bool { return hub.IsUserOnline(7) }, time.Second, 5*time.Millisecond)
	hub.Push([]uint{7, 8}, WSMessage{Type: "notification", Data: "hola"})

	var msg WSMessage
	select {
	case payload := <-client.Send:
		require.NoError(t, json.Unmarshal(payload, &msg))
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	assert.Equal(t, "notification", msg.Type)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return !hub.IsUserOnline(7) }, time.Second, 5*time.Millisecond)
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHubCallsReturnAfterShutdown(t *testing.T) {
	hub, cancel, stopped := runHub(t)
	online := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: 3}
	require.True(t, hub.Register(online))
	require.Eventually(t, func() bool { return hub.IsUserOnline(3) }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-online.Send
	assert.False(t, open)

	tests := []struct {
		name string
		call func()
	}{
		{name: "unregister of closed client", call: func() { hub.Unregister(online) }},
		{name: "late register", call: func() {
			assert.False(t, hub.Register(&Client{Hub: hub, Send: make(chan []byte, 1), UserID: 4}))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			returned := make(chan struct{})
			go func() {
				tt.call()
				close(returned)
			}()
			select {
			case <-returned:
			case <-time.After(time.Second):
				t.Fatal("hub call blocked after shutdown")
			}
		})
	}
	assert.False(t, hub.IsUserOnline(4))
}
