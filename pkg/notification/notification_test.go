package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePushClient struct {
	title    string
	audience map[string]interface{}
}

func (f *fakePushClient) Push(ctx context.Context, title, content string, audience map[string]interface{}, extras map[string]interface{}) error {
	f.title = title
	f.audience = audience
	return nil
}

func TestPushNotConfigured(t *testing.T) {
	push := NewPush(PushConfig{}, nil)
	err := push.PushToCaregiver(context.Background(), "caregiver_7", "Patient Alert", "hi", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	// 未配置不能伪装成取消
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestPushToCaregiverAudience(t *testing.T) {
	cli := &fakePushClient{}
	push := NewPush(PushConfig{}, cli)

	require.NoError(t, push.PushToCaregiver(context.Background(), "alias_7", "EMERGENCY!", "help", nil))
	assert.Equal(t, "EMERGENCY!", cli.title)
	assert.Equal(t, map[string]interface{}{"alias": []string{"alias_7"}}, cli.audience)
}

func TestSMSNotConfigured(t *testing.T) {
	sms := NewSMS(SMSConfig{}, nil)
	err := sms.SendAlertSMS(context.Background(), "555-1234", "John", "help")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	assert.False(t, errors.Is(err, context.Canceled))
}
