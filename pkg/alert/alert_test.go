package alert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallRequest(t *testing.T) {
	a := NewCallRequest(1, "John", "Sarah", "555-1234")

	assert.Equal(t, KindCallRequest, a.Kind)
	assert.Equal(t, 1, a.PatientID)
	assert.Equal(t, "John is calling Sarah (555-1234)", a.Message)
	assert.Equal(t, PriorityHigh, a.Priority)
	assert.Nil(t, a.Location)
	assert.False(t, a.Timestamp.IsZero())
}

func TestNewEmergency(t *testing.T) {
	a := NewEmergency(1, "John")

	assert.Equal(t, KindEmergency911, a.Kind)
	assert.True(t, a.Kind.IsEmergency())
	assert.Equal(t, "EMERGENCY: John is calling 911!", a.Message)
	assert.Equal(t, PriorityUrgent, a.Priority)
}

func TestNewNavigationHelp(t *testing.T) {
	a := NewNavigationHelp(2, "Mary", Location{Latitude: 40.7, Longitude: -74.0, Address: "5th Avenue"})

	assert.Equal(t, KindNavigationHelp, a.Kind)
	assert.Equal(t, "Mary needs help getting home", a.Message)
	assert.Equal(t, PriorityUrgent, a.Priority)
	require.NotNil(t, a.Location)
	assert.Equal(t, "5th Avenue", a.Location.Address)
}

func TestNewNavigationHelpDefaultAddress(t *testing.T) {
	a := NewNavigationHelp(2, "Mary", Location{Latitude: 40.7, Longitude: -74.0})

	require.NotNil(t, a.Location)
	assert.Equal(t, "Unknown location", a.Location.Address)
}

func TestPriorityOrder(t *testing.T) {
	assert.True(t, PriorityLow.Less(PriorityMedium))
	assert.True(t, PriorityMedium.Less(PriorityHigh))
	assert.True(t, PriorityHigh.Less(PriorityUrgent))
	assert.False(t, PriorityUrgent.Less(PriorityLow))

	// 未知优先级按 low 处理
	assert.Equal(t, 0, Priority("whatever").Rank())
}

func TestAlertWireFormat(t *testing.T) {
	a := NewCallRequest(1, "John", "Sarah", "555-1234")
	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "call_request", m["type"])
	assert.Equal(t, float64(1), m["patient_id"])
	assert.NotContains(t, m, "location")
}

func TestRenderColors(t *testing.T) {
	cases := map[Priority]string{
		PriorityLow:         ColorBlue,
		PriorityMedium:      ColorYellow,
		PriorityHigh:        ColorOrange,
		PriorityUrgent:      ColorRed,
		Priority("unknown"): ColorBlue,
	}
	for priority, want := range cases {
		assert.Equal(t, want, ColorFor(priority), "priority %s", priority)
	}
}

func TestRenderIcons(t *testing.T) {
	cases := map[Kind]string{
		KindCallRequest:    IconPhone,
		KindEmergency911:   IconAlert,
		KindNavigationHelp: IconMapPin,
		KindLocationAlert:  IconMapPin,
		Kind("mystery"):    IconAlert,
	}
	for kind, want := range cases {
		assert.Equal(t, want, IconFor(kind), "kind %s", kind)
	}
}

func TestRenderUrgentSticky(t *testing.T) {
	n := Render(NewEmergency(1, "John"))

	assert.Equal(t, TitleEmergency, n.Title)
	assert.False(t, n.AutoDismiss)
	assert.Equal(t, time.Duration(0), n.DismissAfter)
	assert.True(t, n.PlaySound)
	assert.Equal(t, ColorRed, n.Color)
}

func TestRenderNonUrgentAutoDismiss(t *testing.T) {
	n := Render(NewCallRequest(1, "John", "Sarah", "555-1234"))

	assert.Equal(t, TitleDefault, n.Title)
	assert.True(t, n.AutoDismiss)
	assert.Equal(t, 10*time.Second, n.DismissAfter)
	assert.False(t, n.PlaySound)
}

func TestRenderUnknownKind(t *testing.T) {
	a := Alert{Kind: "future_alert", Message: "something new", Priority: PriorityMedium}

	var n Notification
	assert.NotPanics(t, func() { n = Render(a) })
	assert.Equal(t, TitleDefault, n.Title)
	assert.Equal(t, IconAlert, n.Icon)
	assert.Equal(t, ColorYellow, n.Color)
}

func TestRenderAddressLine(t *testing.T) {
	a := NewNavigationHelp(2, "Mary", Location{Address: "Main St 12"})
	n := Render(a)
	assert.Equal(t, "Location: Main St 12", n.AddressLine)

	// 无位置不是错误
	n = Render(NewEmergency(1, "John"))
	assert.Empty(t, n.AddressLine)
}

func TestHistoryOrderAndCap(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Add(Alert{Message: string(rune('a' + i))})
	}

	assert.Equal(t, 3, h.Len())
	all := h.All()
	// 最新在前
	assert.Equal(t, "e", all[0].Message)
	assert.Equal(t, "d", all[1].Message)
	assert.Equal(t, "c", all[2].Message)

	latest, ok := h.Latest()
	assert.True(t, ok)
	assert.Equal(t, "e", latest.Message)
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, 0, h.Len())
	_, ok := h.Latest()
	assert.False(t, ok)
	assert.Empty(t, h.All())
}
