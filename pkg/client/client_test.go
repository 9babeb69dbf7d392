package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"CareLink/pkg/alert"
	"CareLink/pkg/realtime"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []alert.Notification
	alerts        []alert.Alert
}

func (r *recordingNotifier) Notify(n alert.Notification, a alert.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	r.alerts = append(r.alerts, a)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}

func (r *recordingNotifier) last() (alert.Notification, alert.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifications[len(r.notifications)-1], r.alerts[len(r.alerts)-1]
}

func newRelayServer(t *testing.T) (*realtime.Hub, *httptest.Server) {
	gin.SetMode(gin.TestMode)
	hub := realtime.NewHub(nil)
	t.Cleanup(hub.Close)

	router := gin.New()
	realtime.NewHandler(hub).RegisterRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return hub, server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + realtime.RouteWebSocket
}

func TestConsumerJoinAndNotify(t *testing.T) {
	hub, server := newRelayServer(t)

	notifier := &recordingNotifier{}
	consumer := NewConsumer(NewTransport(wsURL(server)), 7, notifier)
	consumer.Start(context.Background())
	defer consumer.Stop()

	require.Eventually(t, func() bool {
		return hub.RoomSize(7) == 1
	}, 3*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return consumer.State() == StateJoined
	}, 3*time.Second, 20*time.Millisecond)

	a := alert.NewCallRequest(1, "John", "Sarah", "555-1234")
	hub.Publish(7, realtime.EventPatientAlert, a)

	require.Eventually(t, func() bool {
		return notifier.count() == 1
	}, 3*time.Second, 20*time.Millisecond)

	n, got := notifier.last()
	assert.Equal(t, "Patient Alert", n.Title)
	assert.Equal(t, "John is calling Sarah (555-1234)", got.Message)
	assert.Equal(t, alert.KindCallRequest, got.Kind)
	assert.True(t, n.AutoDismiss)

	latest, ok := consumer.History().Latest()
	require.True(t, ok)
	assert.Equal(t, a.Message, latest.Message)
}

func TestConsumerEmergencySticky(t *testing.T) {
	hub, server := newRelayServer(t)

	notifier := &recordingNotifier{}
	consumer := NewConsumer(NewTransport(wsURL(server)), 7, notifier)
	consumer.Start(context.Background())
	defer consumer.Stop()

	require.Eventually(t, func() bool {
		return hub.RoomSize(7) == 1
	}, 3*time.Second, 20*time.Millisecond)

	hub.Publish(7, realtime.EventEmergencyAlert, alert.NewEmergency(1, "John"))

	require.Eventually(t, func() bool {
		return notifier.count() == 1
	}, 3*time.Second, 20*time.Millisecond)

	n, got := notifier.last()
	assert.Equal(t, "EMERGENCY!", n.Title)
	assert.False(t, n.AutoDismiss)
	assert.True(t, n.PlaySound)
	assert.Equal(t, "red", n.Color)
	assert.Equal(t, alert.PriorityUrgent, got.Priority)
}

func TestConsumerRejoinsAfterReconnect(t *testing.T) {
	hub, server := newRelayServer(t)

	notifier := &recordingNotifier{}
	consumer := NewConsumer(NewTransport(wsURL(server)), 7, notifier)
	consumer.Start(context.Background())
	defer consumer.Stop()

	require.Eventually(t, func() bool {
		return hub.RoomSize(7) == 1
	}, 3*time.Second, 20*time.Millisecond)

	// 服务端掐断连接，客户端必须重连并重新声明房间
	for _, conn := range hub.RoomConnections(7) {
		conn.Conn.Close()
	}
	require.Eventually(t, func() bool {
		return hub.RoomSize(7) == 0
	}, 3*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return hub.RoomSize(7) == 1
	}, 5*time.Second, 20*time.Millisecond)

	// 重连后的一次发布恰好投递一次
	hub.Publish(7, realtime.EventPatientAlert, alert.NewCallRequest(1, "John", "Sarah", "555-1234"))

	require.Eventually(t, func() bool {
		return notifier.count() >= 1
	}, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, 1, consumer.History().Len())
}

func TestConsumerDisconnectedStateOnConnectionLoss(t *testing.T) {
	hub, server := newRelayServer(t)

	consumer := NewConsumer(NewTransport(wsURL(server)), 7, nil)
	consumer.Start(context.Background())
	defer consumer.Stop()

	require.Eventually(t, func() bool {
		return consumer.State() == StateJoined
	}, 3*time.Second, 20*time.Millisecond)

	// 服务端下线并掐断连接：重连成功前状态必须回到 disconnected
	server.Close()
	for _, conn := range hub.RoomConnections(7) {
		conn.Conn.Close()
	}

	require.Eventually(t, func() bool {
		return consumer.State() == StateDisconnected
	}, 3*time.Second, 20*time.Millisecond)
}

func TestConsumerUnknownKindDegrades(t *testing.T) {
	hub, server := newRelayServer(t)

	notifier := &recordingNotifier{}
	consumer := NewConsumer(NewTransport(wsURL(server)), 7, notifier)
	consumer.Start(context.Background())
	defer consumer.Stop()

	require.Eventually(t, func() bool {
		return hub.RoomSize(7) == 1
	}, 3*time.Second, 20*time.Millisecond)

	hub.Publish(7, realtime.EventPatientAlert, map[string]interface{}{
		"type":     "future_kind",
		"message":  "please upgrade",
		"priority": "medium",
	})

	require.Eventually(t, func() bool {
		return notifier.count() == 1
	}, 3*time.Second, 20*time.Millisecond)

	n, got := notifier.last()
	assert.Equal(t, alert.Kind("future_kind"), got.Kind)
	assert.Equal(t, "alert-circle", n.Icon)
	assert.Equal(t, "yellow", n.Color)
}

func TestTransportOnOff(t *testing.T) {
	hub, server := newRelayServer(t)

	transport := NewTransport(wsURL(server))
	var mu sync.Mutex
	received := 0
	handler := Handler(func(data json.RawMessage) {
		mu.Lock()
		received++
		mu.Unlock()
	})

	transport.On(realtime.EventPatientAlert, handler)
	transport.OnConnect(func() {
		transport.Emit(realtime.EventJoinRoom, map[string]interface{}{"caregiver_id": 7})
	})
	transport.Connect(context.Background())
	defer transport.Close()

	require.Eventually(t, func() bool {
		return hub.RoomSize(7) == 1
	}, 3*time.Second, 20*time.Millisecond)

	hub.Publish(7, realtime.EventPatientAlert, map[string]interface{}{"message": "one"})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received == 1
	}, 3*time.Second, 20*time.Millisecond)

	// 退订后不再收到
	transport.Off(realtime.EventPatientAlert, handler)
	hub.Publish(7, realtime.EventPatientAlert, map[string]interface{}{"message": "two"})
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, received)
}

func TestProducerSendsAndSurfacesErrors(t *testing.T) {
	var mu sync.Mutex
	var paths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	producer := NewProducer(server.URL, 1)
	ctx := context.Background()

	require.NoError(t, producer.SendCallCaregiverAlert(ctx, "Sarah", "555-1234"))
	require.NoError(t, producer.SendEmergencyAlert(ctx))
	require.NoError(t, producer.SendNavigationHelpAlert(ctx, &alert.Location{Address: "Main St"}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/patient-alerts/call-caregiver",
		"/patient-alerts/emergency-call",
		"/patient-alerts/navigation-help",
	}, paths)
}

func TestProducerNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "patient not found", http.StatusNotFound)
	}))
	defer server.Close()

	producer := NewProducer(server.URL, 424242)
	err := producer.SendEmergencyAlert(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestProducerNetworkError(t *testing.T) {
	producer := NewProducer("http://127.0.0.1:1", 1)
	err := producer.SendEmergencyAlert(context.Background())
	require.Error(t, err)
}
