package notification

import (
	"context"
	"fmt"
)

type SMSConfig struct {
	AccessKeyId     string
	AccessKeySecret string
	SignName        string
	TemplateCode    string
	Endpoint        string
}

// SMSClient 便于替换/注入的短信发送接口（适配真实 SDK）
type SMSClient interface {
	Send(ctx context.Context, phone, sign, template string, params map[string]string) error
}

// SMS 短信通道，房间无人在线时的紧急告警兜底
type SMS struct {
	cfg SMSConfig
	cli SMSClient
}

func NewSMS(cfg SMSConfig, cli SMSClient) *SMS {
	return &SMS{cfg: cfg, cli: cli}
}

// SendAlertSMS 向护理人手机发送告警摘要
func (s *SMS) SendAlertSMS(ctx context.Context, phone, patientName, message string) error {
	if s.cli == nil {
		return fmt.Errorf("SMSClient not configured")
	}
	params := map[string]string{"patient": patientName, "message": message}
	return s.cli.Send(ctx, phone, s.cfg.SignName, s.cfg.TemplateCode, params)
}
