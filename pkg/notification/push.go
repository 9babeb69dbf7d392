package notification

import (
	"context"
	"fmt"
)

type PushConfig struct {
	AppKey       string
	MasterSecret string
}

// PushClient 便于替换/注入的推送接口（适配真实 SDK）
type PushClient interface {
	Push(ctx context.Context, title, content string, audience map[string]interface{}, extras map[string]interface{}) error
}

// Push 移动端推送通道，按护理人别名定向
type Push struct {
	cfg PushConfig
	cli PushClient
}

func NewPush(cfg PushConfig, cli PushClient) *Push { return &Push{cfg: cfg, cli: cli} }

// PushToCaregiver 推送给指定护理人的所有已注册设备
func (p *Push) PushToCaregiver(ctx context.Context, caregiverAlias, title, content string, extras map[string]interface{}) error {
	if p.cli == nil {
		return fmt.Errorf("PushClient not configured")
	}
	aud := map[string]interface{}{"alias": []string{caregiverAlias}}
	return p.cli.Push(ctx, title, content, aud, extras)
}
