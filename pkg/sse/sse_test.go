package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedFilter(t *testing.T) {
	feed := NewFeed(time.Minute)

	all := feed.addClient(0)
	only7 := feed.addClient(7)
	defer feed.removeClient(all.id)
	defer feed.removeClient(only7.id)

	assert.Equal(t, 2, feed.ClientCount())

	feed.Publish(7, "patient_alert", map[string]interface{}{"message": "hi"})

	select {
	case msg := <-all.ch:
		assert.Contains(t, msg, "event: patient_alert")
		assert.Contains(t, msg, `"message":"hi"`)
	default:
		t.Fatal("unfiltered client must receive")
	}
	select {
	case <-only7.ch:
	default:
		t.Fatal("caregiver 7 client must receive")
	}

	// 其他护理人的告警被过滤
	feed.Publish(8, "patient_alert", map[string]interface{}{"message": "other"})
	select {
	case <-only7.ch:
		t.Fatal("caregiver 7 client must not receive room 8 alerts")
	default:
	}
	select {
	case <-all.ch:
	default:
		t.Fatal("unfiltered client receives everything")
	}
}

func TestFeedRemoveClient(t *testing.T) {
	feed := NewFeed(0)
	c := feed.addClient(0)
	require.Equal(t, 1, feed.ClientCount())

	feed.removeClient(c.id)
	assert.Equal(t, 0, feed.ClientCount())

	select {
	case <-c.done:
	default:
		t.Fatal("done channel must be closed")
	}

	// 重复移除安全
	feed.removeClient(c.id)
}
