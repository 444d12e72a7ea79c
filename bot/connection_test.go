package bot

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LagrangeDev/LagrangeGo/client"
)

type recordingHandler struct {
	mu           sync.Mutex
	connected    int
	reconnecting []int
	failed       int
}

func (h *recordingHandler) OnConnected(*client.QQClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected++
}

func (h *recordingHandler) OnDisconnected(*client.QQClient, string) {}

func (h *recordingHandler) OnReconnecting(_ *client.QQClient, attempt int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reconnecting = append(h.reconnecting, attempt)
}

func (h *recordingHandler) OnReconnectFailed(*client.QQClient, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed++
}

func newTestConnectionManager(reconnect func() error) (*ConnectionManager, *recordingHandler) {
	cm := NewConnectionManager(nil, reconnect)
	cm.config = &ConnectionConfig{AutoReconnect: true, ReconnectInterval: time.Millisecond, MaxReconnectTries: 3}
	h := &recordingHandler{}
	cm.RegisterEventHandler(h)
	return cm, h
}

func TestReconnect_SucceedsOnSecondAttempt(t *testing.T) {
	attempts := 0
	cm, h := newTestConnectionManager(func() error {
		attempts++
		if attempts < 2 {
			return errors.New("offline")
		}
		return nil
	})

	cm.handleDisconnection("network")
	cm.wg.Wait()

	if cm.GetState() != Connected {
		t.Fatalf("state = %v, want Connected", cm.GetState())
	}
	if attempts != 2 || h.connected != 1 || len(h.reconnecting) != 2 {
		t.Fatalf("attempts=%d connected=%d reconnecting=%v", attempts, h.connected, h.reconnecting)
	}
}

func TestReconnect_GivesUpAfterMaxTries(t *testing.T) {
	cm, h := newTestConnectionManager(func() error { return errors.New("offline") })

	cm.handleDisconnection("network")
	cm.wg.Wait()

	if cm.GetState() != Disconnected {
		t.Fatalf("state = %v, want Disconnected", cm.GetState())
	}
	if h.failed != 1 || len(h.reconnecting) != 3 {
		t.Fatalf("failed=%d reconnecting=%v", h.failed, h.reconnecting)
	}
}

func TestStopMonitoring_CancelsPendingReconnect(t *testing.T) {
	called := false
	cm, _ := newTestConnectionManager(func() error {
		called = true
		return nil
	})
	cm.config.ReconnectInterval = time.Hour

	cm.handleDisconnection("network")
	cm.StopMonitoring()
	cm.StopMonitoring()

	if called {
		t.Fatal("reconnect ran after stop")
	}
	if cm.GetState() != Disconnected {
		t.Fatalf("state = %v, want Disconnected", cm.GetState())
	}
}
