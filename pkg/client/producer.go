package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"CareLink/pkg/alert"
	"CareLink/pkg/errors"
)

// Producer 患者端告警发送器。每个实例绑定一个患者ID，
// 三个操作同步POST到中继接口；网络失败或非2xx响应
// 以错误返回——这是唯一会暴露给患者界面的失败。
type Producer struct {
	baseURL   string
	patientID int
	client    *http.Client
}

// NewProducer 创建发送器，baseURL 形如 http://host:5001/api
func NewProducer(baseURL string, patientID int) *Producer {
	return &Producer{
		baseURL:   baseURL,
		patientID: patientID,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendCallCaregiverAlert 通知护理人：患者正在呼叫 name (phone)
func (p *Producer) SendCallCaregiverAlert(ctx context.Context, caregiverName, caregiverPhone string) error {
	return p.post(ctx, "/patient-alerts/call-caregiver", map[string]interface{}{
		"patient_id":      p.patientID,
		"caregiver_name":  caregiverName,
		"caregiver_phone": caregiverPhone,
	})
}

// SendEmergencyAlert 通知护理人：患者正在拨打911
func (p *Producer) SendEmergencyAlert(ctx context.Context) error {
	return p.post(ctx, "/patient-alerts/emergency-call", map[string]interface{}{
		"patient_id": p.patientID,
	})
}

// SendNavigationHelpAlert 通知护理人：患者需要回家协助，附带当前位置
func (p *Producer) SendNavigationHelpAlert(ctx context.Context, loc *alert.Location) error {
	payload := map[string]interface{}{
		"patient_id": p.patientID,
	}
	if loc != nil {
		payload["location"] = loc
	}
	return p.post(ctx, "/patient-alerts/navigation-help", payload)
}

func (p *Producer) post(ctx context.Context, path string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send alert")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("alert relay returned %d: %s", resp.StatusCode, data)
	}
	return nil
}
