package alert

import (
	"fmt"
	"time"
)

// Kind 告警类型。集合可扩展：生产端可以新增类型，
// 消费端遇到未知类型必须正常降级展示，不得报错。
type Kind string

const (
	KindCallRequest    Kind = "call_request"
	KindEmergency911   Kind = "emergency_911"
	KindNavigationHelp Kind = "navigation_help"
	KindLocationAlert  Kind = "location_alert"
)

// IsEmergency 是否紧急呼救类型
func (k Kind) IsEmergency() bool { return k == KindEmergency911 }

// Priority 告警优先级，low < medium < high < urgent
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank 返回优先级序号，未知优先级按 low 处理
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Less 优先级全序比较
func (p Priority) Less(other Priority) bool { return p.Rank() < other.Rank() }

// Location 位置载荷，仅导航/定位类告警携带
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Alert 患者触发的一次告警，创建后不可变。
// 字段命名保持与移动端/面板使用的线上格式一致。
type Alert struct {
	Kind        Kind      `json:"type"`
	PatientID   int       `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Message     string    `json:"message"`
	Priority    Priority  `json:"priority"`
	Timestamp   time.Time `json:"timestamp"`
	Location    *Location `json:"location,omitempty"`
}

// NewCallRequest 患者呼叫护理人
func NewCallRequest(patientID int, patientName, caregiverName, caregiverPhone string) Alert {
	return Alert{
		Kind:        KindCallRequest,
		PatientID:   patientID,
		PatientName: patientName,
		Message:     fmt.Sprintf("%s is calling %s (%s)", patientName, caregiverName, caregiverPhone),
		Priority:    PriorityHigh,
		Timestamp:   time.Now().UTC(),
	}
}

// NewEmergency 患者拨打 911
func NewEmergency(patientID int, patientName string) Alert {
	return Alert{
		Kind:        KindEmergency911,
		PatientID:   patientID,
		PatientName: patientName,
		Message:     fmt.Sprintf("EMERGENCY: %s is calling 911!", patientName),
		Priority:    PriorityUrgent,
		Timestamp:   time.Now().UTC(),
	}
}

// NewNavigationHelp 患者使用"带我回家"求助
func NewNavigationHelp(patientID int, patientName string, loc Location) Alert {
	if loc.Address == "" {
		loc.Address = "Unknown location"
	}
	return Alert{
		Kind:        KindNavigationHelp,
		PatientID:   patientID,
		PatientName: patientName,
		Message:     fmt.Sprintf("%s needs help getting home", patientName),
		Priority:    PriorityUrgent,
		Timestamp:   time.Now().UTC(),
		Location:    &loc,
	}
}
