package notification

import (
	"fmt"
	"net/smtp"
	"strings"
)

type MailConfig struct {
	Host     string
	Username string
	Password string
	Port     int64
	From     string
}

// MailNotification SMTP 邮件通道，用于紧急告警升级
type MailNotification struct {
	cfg MailConfig
	// send 可注入，测试时替换真实 SMTP 发送
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailNotification(cfg MailConfig) *MailNotification {
	return &MailNotification{cfg: cfg, send: smtp.SendMail}
}

// SendAlertMail 发送告警升级邮件
func (m *MailNotification) SendAlertMail(to, subject, body string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("mail not configured")
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	return m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
